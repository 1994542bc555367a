package transacoes

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

func TestParseRef(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		ref      any
		wantKind refKind
		wantID   int64
		wantName string
	}{
		{"json number", float64(3), refID, 3, ""},
		{"int", 7, refID, 7, ""},
		{"numeric string", "12", refID, 12, ""},
		{"name", "despesa", refName, 0, "despesa"},
		{"padded name", "  comida ", refName, 0, "comida"},
		{"nil", nil, refInvalid, 0, ""},
		{"empty string", "   ", refInvalid, 0, ""},
		{"bool", true, refInvalid, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			kind, id, name := parseRef(tt.ref)
			if kind != tt.wantKind || id != tt.wantID || name != tt.wantName {
				t.Fatalf("parseRef(%v) = (%v, %d, %q), want (%v, %d, %q)",
					tt.ref, kind, id, name, tt.wantKind, tt.wantID, tt.wantName)
			}
		})
	}
}

func TestResolutionTagging(t *testing.T) {
	t.Parallel()

	if id, ok := Resolved(9).ID(); !ok || id != 9 {
		t.Fatalf("Resolved(9).ID() = (%d, %v)", id, ok)
	}
	if _, ok := Unresolved().ID(); ok {
		t.Fatal("Unresolved() must not carry an id")
	}
}

func TestUpdateParamsValidateTarget(t *testing.T) {
	t.Parallel()

	id := int64(5)

	if err := (UpdateParams{ID: &id}).ValidateTarget(); err != nil {
		t.Fatalf("id target: %v", err)
	}
	if err := (UpdateParams{Texto: "almoço", Data: "2026-08-30"}).ValidateTarget(); err != nil {
		t.Fatalf("texto+data target: %v", err)
	}
	if err := (UpdateParams{Texto: "almoço"}).ValidateTarget(); !errors.Is(err, ErrSemAlvo) {
		t.Fatalf("texto only: error = %v, want ErrSemAlvo", err)
	}
	if err := (UpdateParams{Data: "2026-08-30"}).ValidateTarget(); !errors.Is(err, ErrSemAlvo) {
		t.Fatalf("data only: error = %v, want ErrSemAlvo", err)
	}
	if err := (UpdateParams{}).ValidateTarget(); !errors.Is(err, ErrSemAlvo) {
		t.Fatalf("no target: error = %v, want ErrSemAlvo", err)
	}
}

func TestUpdateParamsHasFields(t *testing.T) {
	t.Parallel()

	if (UpdateParams{Texto: "x", Data: "2026-01-01"}).HasFields() {
		t.Fatal("locator-only params must report no fields")
	}
	v := 10.5
	if !(UpdateParams{Valor: &v}).HasFields() {
		t.Fatal("valor counts as a field")
	}
	d := "nova descrição"
	if !(UpdateParams{Descricao: &d}).HasFields() {
		t.Fatal("descricao counts as a field")
	}
	if !(UpdateParams{Tipo: "despesa"}).HasFields() {
		t.Fatal("tipo counts as a field")
	}
}

// stubConn records every statement bun issues and answers selects with an
// empty result set. Bun inlines argument values, so the recorded SQL can
// be asserted on directly.
type stubConn struct {
	statements []string
	affected   int64
}

func (c *stubConn) Prepare(query string) (driver.Stmt, error) {
	return nil, errors.New("prepare unsupported")
}

func (c *stubConn) Close() error { return nil }

func (c *stubConn) Begin() (driver.Tx, error) { return nil, errors.New("begin unsupported") }

func (c *stubConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	c.statements = append(c.statements, query)
	return emptyRows{}, nil
}

func (c *stubConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.statements = append(c.statements, query)
	return driver.RowsAffected(c.affected), nil
}

type emptyRows struct{}

func (emptyRows) Columns() []string              { return nil }
func (emptyRows) Close() error                   { return nil }
func (emptyRows) Next(dest []driver.Value) error { return io.EOF }

type stubConnector struct{ conn *stubConn }

func (c stubConnector) Connect(context.Context) (driver.Conn, error) { return c.conn, nil }
func (c stubConnector) Driver() driver.Driver                        { return stubDriver{} }

type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) { return nil, errors.New("open unsupported") }

func newStubStore(t *testing.T, conn *stubConn) *Store {
	t.Helper()
	db := bun.NewDB(sql.OpenDB(stubConnector{conn: conn}), pgdialect.New())
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	store, err := NewStore(db, loc)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return store
}

func hasStatement(statements []string, fragment string) bool {
	for _, stmt := range statements {
		if strings.Contains(stmt, fragment) {
			return true
		}
	}
	return false
}

func TestInsertUnknownTipoNameRejectsWrite(t *testing.T) {
	t.Parallel()

	conn := &stubConn{}
	store := newStubStore(t, conn)

	_, _, err := store.Insert(context.Background(), NewTransacao{
		Valor:          42.50,
		Tipo:           "plantio",
		Descricao:      "insumos",
		FormaPagamento: "pix",
		Unidade:        "matriz",
		Gestor:         "carlos",
	})
	if !errors.Is(err, ErrTipoDesconhecido) {
		t.Fatalf("err = %v, want ErrTipoDesconhecido", err)
	}
	if !hasStatement(conn.statements, "SELECT") {
		t.Fatal("tipo name must be resolved against the lookup table")
	}
	if hasStatement(conn.statements, "INSERT") {
		t.Fatalf("no row may be written for an unknown tipo, got %v", conn.statements)
	}
}

func TestUpdateForeignIDAffectsNothing(t *testing.T) {
	t.Parallel()

	conn := &stubConn{affected: 0}
	store := newStubStore(t, conn)

	id := int64(77)
	v := 99.0
	_, _, err := store.Update(context.Background(), UpdateParams{
		ID:      &id,
		Valor:   &v,
		Unidade: "matriz",
		Gestor:  "carlos",
	})
	if !errors.Is(err, ErrAlvoNaoEncontrado) {
		t.Fatalf("err = %v, want ErrAlvoNaoEncontrado", err)
	}
	if !hasStatement(conn.statements, "UPDATE") {
		t.Fatal("update statement missing")
	}
	// An id from another unidade/gestor matches zero rows; nothing may be
	// read back either.
	if hasStatement(conn.statements, "tipo_nome") {
		t.Fatalf("reload must not run for an unmatched target, got %v", conn.statements)
	}
}

func TestUpdateReloadScopedToTenant(t *testing.T) {
	t.Parallel()

	conn := &stubConn{affected: 1}
	store := newStubStore(t, conn)

	id := int64(5)
	v := 15.0
	_, _, _ = store.Update(context.Background(), UpdateParams{
		ID:      &id,
		Valor:   &v,
		Unidade: "matriz",
		Gestor:  "carlos",
	})

	reload := conn.statements[len(conn.statements)-1]
	if !strings.Contains(reload, "tipo_nome") {
		t.Fatalf("last statement is not the reload: %q", reload)
	}
	if !strings.Contains(reload, "tr.unidade = 'matriz'") || !strings.Contains(reload, "tr.gestor = 'carlos'") {
		t.Fatalf("reload not tenant scoped: %q", reload)
	}
}

func TestLocalDayStart(t *testing.T) {
	t.Parallel()

	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	start, err := localDayStart("2026-08-30", loc)
	if err != nil {
		t.Fatalf("localDayStart() error = %v", err)
	}
	if !start.Equal(time.Date(2026, 8, 30, 0, 0, 0, 0, loc)) {
		t.Fatalf("start = %v", start)
	}
	// São Paulo is UTC-3: local midnight is 03:00 UTC
	if got := start.UTC().Hour(); got != 3 {
		t.Fatalf("start UTC hour = %d, want 3", got)
	}

	if _, err := localDayStart("30/08/2026", loc); err == nil {
		t.Fatal("expected error for non ISO date")
	}
}
