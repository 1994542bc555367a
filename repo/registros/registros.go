// Package registros persists and queries the condemnation-count registry
// documents in Mongo.
package registros

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultLimit caps query results when the caller does not specify one.
const DefaultLimit = 10

type Condena struct {
	Nome       string `bson:"nome" json:"nome"`
	Tipo       string `bson:"tipo" json:"tipo"`
	Quantidade int    `bson:"quantidade" json:"quantidade"`
}

// Registro is one count document. Data is stored as an absolute instant.
type Registro struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Condenas []Condena          `bson:"condenas" json:"condenas"`
	Data     time.Time          `bson:"data" json:"-"`
	Empresa  string             `bson:"empresa" json:"empresa"`
	Unidade  string             `bson:"unidade" json:"unidade"`
	Gestor   string             `bson:"gestor" json:"gestor"`
	Turno    string             `bson:"turno" json:"turno"`
	Lote     string             `bson:"lote" json:"lote"`
}

// View is a registro prepared for display: id stringified, timestamp
// rendered in the fixed local zone.
type View struct {
	ID       string    `json:"_id"`
	Condenas []Condena `json:"condenas"`
	Data     string    `json:"data"`
	Empresa  string    `json:"empresa"`
	Unidade  string    `json:"unidade"`
	Gestor   string    `json:"gestor"`
	Turno    string    `json:"turno"`
	Lote     string    `json:"lote"`
}

// Filter combines optional constraints with logical AND. Dates are local
// calendar dates (YYYY-MM-DD) interpreted in the store's zone.
type Filter struct {
	StartDate string
	EndDate   string
	Unidade   string
	Gestor    string
	Limit     int
}

type NewRegistro struct {
	Condenas []Condena
	Empresa  string
	Unidade  string
	Gestor   string
	Turno    string
	Lote     string
	Data     time.Time // zero means now
}

func (n NewRegistro) validate() error {
	if len(n.Condenas) == 0 {
		return errors.New("condenas list is empty")
	}
	for i, c := range n.Condenas {
		if strings.TrimSpace(c.Nome) == "" {
			return fmt.Errorf("condena %d has no nome", i)
		}
		if c.Quantidade <= 0 {
			return fmt.Errorf("condena %d has non-positive quantidade", i)
		}
	}
	for name, v := range map[string]string{
		"empresa": n.Empresa,
		"unidade": n.Unidade,
		"gestor":  n.Gestor,
		"turno":   n.Turno,
		"lote":    n.Lote,
	} {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%s is required", name)
		}
	}
	return nil
}

type Store struct {
	coll *mongo.Collection
	loc  *time.Location
	now  func() time.Time
}

func NewStore(coll *mongo.Collection, loc *time.Location) (*Store, error) {
	if coll == nil {
		return nil, errors.New("registros collection is required")
	}
	if loc == nil {
		return nil, errors.New("location is required")
	}
	return &Store{coll: coll, loc: loc, now: time.Now}, nil
}

// BuildQuery translates a filter into the Mongo predicate, the sort order
// and the result cap. Sort is chronological ascending when an explicit date
// bound is present, most-recent-first otherwise.
func BuildQuery(f Filter, loc *time.Location) (bson.M, *options.FindOptions, error) {
	query := bson.M{}

	dateCond := bson.M{}
	if f.StartDate != "" {
		start, err := localDayStart(f.StartDate, loc)
		if err != nil {
			return nil, nil, err
		}
		dateCond["$gte"] = start
	}
	if f.EndDate != "" {
		end, err := localDayStart(f.EndDate, loc)
		if err != nil {
			return nil, nil, err
		}
		// inclusive upper bound: strictly before the next local midnight
		dateCond["$lt"] = end.AddDate(0, 0, 1)
	}
	if len(dateCond) > 0 {
		query["data"] = dateCond
	}
	if f.Unidade != "" {
		query["unidade"] = f.Unidade
	}
	if f.Gestor != "" {
		query["gestor"] = f.Gestor
	}

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	sortDir := -1
	if len(dateCond) > 0 {
		sortDir = 1
	}

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "data", Value: sortDir}})
	return query, opts, nil
}

func (s *Store) Query(ctx context.Context, f Filter) ([]View, error) {
	query, opts, err := BuildQuery(f, s.loc)
	if err != nil {
		return nil, err
	}

	cursor, err := s.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("query registros: %w", err)
	}
	defer cursor.Close(ctx)

	var views []View
	for cursor.Next(ctx) {
		var r Registro
		if err := cursor.Decode(&r); err != nil {
			return nil, fmt.Errorf("decode registro: %w", err)
		}
		views = append(views, s.view(r))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate registros: %w", err)
	}
	return views, nil
}

// Insert stores a new count document and returns its id and the effective
// timestamp.
func (s *Store) Insert(ctx context.Context, n NewRegistro) (string, time.Time, error) {
	if err := n.validate(); err != nil {
		return "", time.Time{}, err
	}

	data := n.Data
	if data.IsZero() {
		data = s.now()
	}
	data = data.UTC()

	reg := Registro{
		Condenas: n.Condenas,
		Data:     data,
		Empresa:  n.Empresa,
		Unidade:  n.Unidade,
		Gestor:   n.Gestor,
		Turno:    n.Turno,
		Lote:     n.Lote,
	}
	res, err := s.coll.InsertOne(ctx, reg)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("insert registro: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Sprint(res.InsertedID), data, nil
	}
	return oid.Hex(), data, nil
}

func (s *Store) view(r Registro) View {
	return View{
		ID:       r.ID.Hex(),
		Condenas: r.Condenas,
		Data:     r.Data.In(s.loc).Format(time.RFC3339),
		Empresa:  r.Empresa,
		Unidade:  r.Unidade,
		Gestor:   r.Gestor,
		Turno:    r.Turno,
		Lote:     r.Lote,
	}
}

func localDayStart(date string, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", date)
	}
	return day, nil
}
