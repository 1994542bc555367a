package registros

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

func saoPaulo(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func TestBuildQueryCombinesFiltersWithAnd(t *testing.T) {
	t.Parallel()

	loc := saoPaulo(t)
	query, opts, err := BuildQuery(Filter{
		StartDate: "2026-08-24",
		EndDate:   "2026-08-30",
		Unidade:   "matriz",
		Gestor:    "carlos",
	}, loc)
	if err != nil {
		t.Fatalf("BuildQuery() error = %v", err)
	}

	if query["unidade"] != "matriz" || query["gestor"] != "carlos" {
		t.Fatalf("identity filters missing: %+v", query)
	}

	dateCond, ok := query["data"].(bson.M)
	if !ok {
		t.Fatalf("data condition missing: %+v", query)
	}
	gte := dateCond["$gte"].(time.Time)
	lt := dateCond["$lt"].(time.Time)
	if !gte.Equal(time.Date(2026, 8, 24, 0, 0, 0, 0, loc)) {
		t.Fatalf("$gte = %v", gte)
	}
	// inclusive range: the bound sits at the midnight after end date
	if !lt.Equal(time.Date(2026, 8, 31, 0, 0, 0, 0, loc)) {
		t.Fatalf("$lt = %v", lt)
	}

	if got := *opts.Limit; got != DefaultLimit {
		t.Fatalf("default limit = %d", got)
	}
}

func TestBuildQuerySortPolicy(t *testing.T) {
	t.Parallel()

	loc := saoPaulo(t)

	_, opts, err := BuildQuery(Filter{StartDate: "2026-08-01"}, loc)
	if err != nil {
		t.Fatalf("BuildQuery() error = %v", err)
	}
	if dir := sortDirection(t, opts.Sort); dir != 1 {
		t.Fatalf("ranged query sort = %d, want ascending", dir)
	}

	_, opts, err = BuildQuery(Filter{Unidade: "matriz"}, loc)
	if err != nil {
		t.Fatalf("BuildQuery() error = %v", err)
	}
	if dir := sortDirection(t, opts.Sort); dir != -1 {
		t.Fatalf("unranged query sort = %d, want descending", dir)
	}
}

func sortDirection(t *testing.T, sort any) int {
	t.Helper()
	d, ok := sort.(bson.D)
	if !ok || len(d) != 1 || d[0].Key != "data" {
		t.Fatalf("unexpected sort: %+v", sort)
	}
	return d[0].Value.(int)
}

func TestBuildQueryRejectsBadDate(t *testing.T) {
	t.Parallel()

	if _, _, err := BuildQuery(Filter{StartDate: "24/08/2026"}, saoPaulo(t)); err == nil {
		t.Fatal("expected error for non ISO date")
	}
}

func TestNewRegistroValidate(t *testing.T) {
	t.Parallel()

	valid := NewRegistro{
		Condenas: []Condena{{Nome: "Aero Saculite", Tipo: "parcial", Quantidade: 3}},
		Empresa:  "igesta",
		Unidade:  "matriz",
		Gestor:   "carlos",
		Turno:    "manhã",
		Lote:     "L-42",
	}
	if err := valid.validate(); err != nil {
		t.Fatalf("validate() error = %v", err)
	}

	missing := valid
	missing.Lote = " "
	if err := missing.validate(); err == nil {
		t.Fatal("expected error for missing lote")
	}

	empty := valid
	empty.Condenas = nil
	if err := empty.validate(); err == nil {
		t.Fatal("expected error for empty condenas")
	}

	zeroQty := valid
	zeroQty.Condenas = []Condena{{Nome: "x", Quantidade: 0}}
	if err := zeroQty.validate(); err == nil {
		t.Fatal("expected error for non-positive quantidade")
	}
}
