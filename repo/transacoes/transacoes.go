// Package transacoes persists financial transactions in Postgres and
// implements the argument-resolution chains the finance tools rely on:
// tipo/categoria name resolution and the fuzzy-text-plus-date fallback row
// locator for updates.
package transacoes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

const (
	// DefaultLimit caps query results when the caller does not specify one.
	DefaultLimit = 10

	// tipoReceita is the income kind; every other kind subtracts from the
	// balance.
	tipoReceita = "receita"
)

var (
	ErrTipoDesconhecido  = errors.New("tipo could not be resolved")
	ErrSemAlvo           = errors.New("update needs an id or both texto and data")
	ErrSemCampos         = errors.New("update has no fields to apply")
	ErrAlvoNaoEncontrado = errors.New("no row matches texto and data")
)

type Store struct {
	db  bun.IDB
	loc *time.Location
	now func() time.Time
}

func NewStore(db bun.IDB, loc *time.Location) (*Store, error) {
	if db == nil {
		return nil, errors.New("database is required")
	}
	if loc == nil {
		return nil, errors.New("location is required")
	}
	return &Store{db: db, loc: loc, now: time.Now}, nil
}

// QueryFilter combines optional constraints with logical AND. De/Ate are
// local calendar dates (YYYY-MM-DD); Unidade and Gestor are mandatory.
type QueryFilter struct {
	De        string
	Ate       string
	Tipo      any
	Categoria any
	Unidade   string
	Gestor    string
	Limit     int
}

func (s *Store) Query(ctx context.Context, f QueryFilter) ([]View, error) {
	if strings.TrimSpace(f.Unidade) == "" || strings.TrimSpace(f.Gestor) == "" {
		return nil, errors.New("unidade and gestor are required")
	}

	q := s.db.NewSelect().
		Model((*Transacao)(nil)).
		ColumnExpr("tr.*").
		ColumnExpr("t.nome AS tipo_nome").
		Join("JOIN tipos AS t ON t.id = tr.tipo_id").
		Where("tr.unidade = ?", f.Unidade).
		Where("tr.gestor = ?", f.Gestor)

	ranged := false
	if f.De != "" {
		start, err := localDayStart(f.De, s.loc)
		if err != nil {
			return nil, err
		}
		q = q.Where("tr.data >= ?", start)
		ranged = true
	}
	if f.Ate != "" {
		end, err := localDayStart(f.Ate, s.loc)
		if err != nil {
			return nil, err
		}
		q = q.Where("tr.data < ?", end.AddDate(0, 0, 1))
		ranged = true
	}

	if f.Tipo != nil {
		res, err := s.ResolveTipo(ctx, f.Tipo)
		if err != nil {
			return nil, err
		}
		if id, ok := res.ID(); ok {
			q = q.Where("tr.tipo_id = ?", id)
		} else {
			// an unknown tipo filter matches nothing, by construction
			return nil, nil
		}
	}
	if f.Categoria != nil {
		res, err := s.ResolveCategoria(ctx, f.Categoria)
		if err != nil {
			return nil, err
		}
		if id, ok := res.ID(); ok {
			q = q.Where("tr.categoria_id = ?", id)
		} else {
			return nil, nil
		}
	}

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if ranged {
		q = q.Order("tr.data ASC")
	} else {
		q = q.Order("tr.data DESC")
	}
	q = q.Limit(limit)

	var views []View
	if err := q.Scan(ctx, &views); err != nil {
		return nil, fmt.Errorf("query transacoes: %w", err)
	}
	for i := range views {
		views[i].DataStr = views[i].Data.In(s.loc).Format(time.RFC3339)
	}
	return views, nil
}

type NewTransacao struct {
	Valor          float64
	Tipo           any
	Categoria      any
	Descricao      string
	FormaPagamento string
	TextoOrigem    string
	Data           time.Time // zero means now
	Unidade        string
	Gestor         string
}

// Insert resolves the tipo (and optional categoria) references and writes
// the row. An unresolvable tipo rejects the write; an unresolvable
// categoria falls back to null.
func (s *Store) Insert(ctx context.Context, n NewTransacao) (int64, time.Time, error) {
	if n.Valor <= 0 {
		return 0, time.Time{}, fmt.Errorf("valor must be positive, got %v", n.Valor)
	}
	if strings.TrimSpace(n.Unidade) == "" || strings.TrimSpace(n.Gestor) == "" {
		return 0, time.Time{}, errors.New("unidade and gestor are required")
	}

	tipoRes, err := s.ResolveTipo(ctx, n.Tipo)
	if err != nil {
		return 0, time.Time{}, err
	}
	tipoID, ok := tipoRes.ID()
	if !ok {
		return 0, time.Time{}, fmt.Errorf("%w: %v", ErrTipoDesconhecido, n.Tipo)
	}

	var categoriaID *int64
	if n.Categoria != nil {
		catRes, err := s.ResolveCategoria(ctx, n.Categoria)
		if err != nil {
			return 0, time.Time{}, err
		}
		if id, ok := catRes.ID(); ok {
			categoriaID = &id
		}
	}

	data := n.Data
	if data.IsZero() {
		data = s.now()
	}
	data = data.UTC()

	row := &Transacao{
		Valor:          n.Valor,
		TipoID:         tipoID,
		CategoriaID:    categoriaID,
		Descricao:      n.Descricao,
		FormaPagamento: n.FormaPagamento,
		Data:           data,
		TextoOrigem:    n.TextoOrigem,
		Unidade:        n.Unidade,
		Gestor:         n.Gestor,
	}
	if _, err := s.db.NewInsert().Model(row).Returning("id").Exec(ctx); err != nil {
		return 0, time.Time{}, fmt.Errorf("insert transacao: %w", err)
	}
	return row.ID, data, nil
}

// UpdateParams carries the target locator and the partial field set. The
// target is either ID, or the (Texto, Data) pair for the fuzzy fallback.
type UpdateParams struct {
	ID    *int64
	Texto string
	Data  string // local calendar date YYYY-MM-DD

	Valor          *float64
	Tipo           any
	Categoria      any
	Descricao      *string
	FormaPagamento *string

	Unidade string
	Gestor  string
}

// ValidateTarget enforces the locator contract without touching the store.
func (p UpdateParams) ValidateTarget() error {
	if p.ID != nil {
		return nil
	}
	if strings.TrimSpace(p.Texto) == "" || strings.TrimSpace(p.Data) == "" {
		return ErrSemAlvo
	}
	return nil
}

// HasFields reports whether any updatable field was supplied.
func (p UpdateParams) HasFields() bool {
	return p.Valor != nil || p.Tipo != nil || p.Categoria != nil ||
		p.Descricao != nil || p.FormaPagamento != nil
}

// Update applies a partial update. When no id is given the target row is
// the most recent one whose free text fuzzily contains Texto and whose
// local calendar date equals Data. Returns rows affected and the
// post-update row.
func (s *Store) Update(ctx context.Context, p UpdateParams) (int64, *View, error) {
	if err := p.ValidateTarget(); err != nil {
		return 0, nil, err
	}
	if !p.HasFields() {
		return 0, nil, ErrSemCampos
	}
	if strings.TrimSpace(p.Unidade) == "" || strings.TrimSpace(p.Gestor) == "" {
		return 0, nil, errors.New("unidade and gestor are required")
	}

	targetID, err := s.locateTarget(ctx, p)
	if err != nil {
		return 0, nil, err
	}

	q := s.db.NewUpdate().
		Model((*Transacao)(nil)).
		Where("id = ?", targetID).
		Where("unidade = ?", p.Unidade).
		Where("gestor = ?", p.Gestor)

	if p.Valor != nil {
		if *p.Valor <= 0 {
			return 0, nil, fmt.Errorf("valor must be positive, got %v", *p.Valor)
		}
		q = q.Set("valor = ?", *p.Valor)
	}
	if p.Tipo != nil {
		res, err := s.ResolveTipo(ctx, p.Tipo)
		if err != nil {
			return 0, nil, err
		}
		id, ok := res.ID()
		if !ok {
			return 0, nil, fmt.Errorf("%w: %v", ErrTipoDesconhecido, p.Tipo)
		}
		q = q.Set("tipo_id = ?", id)
	}
	if p.Categoria != nil {
		res, err := s.ResolveCategoria(ctx, p.Categoria)
		if err != nil {
			return 0, nil, err
		}
		if id, ok := res.ID(); ok {
			q = q.Set("categoria_id = ?", id)
		} else {
			q = q.Set("categoria_id = NULL")
		}
	}
	if p.Descricao != nil {
		q = q.Set("descricao = ?", *p.Descricao)
	}
	if p.FormaPagamento != nil {
		q = q.Set("forma_pagamento = ?", *p.FormaPagamento)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("update transacao: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		// An explicit id outside the caller's unidade/gestor lands here;
		// the tenant filters on the UPDATE made it a no-op.
		return 0, nil, fmt.Errorf("%w: id=%d", ErrAlvoNaoEncontrado, targetID)
	}

	var view View
	err = s.db.NewSelect().
		Model((*Transacao)(nil)).
		ColumnExpr("tr.*").
		ColumnExpr("t.nome AS tipo_nome").
		Join("JOIN tipos AS t ON t.id = tr.tipo_id").
		Where("tr.id = ?", targetID).
		Where("tr.unidade = ?", p.Unidade).
		Where("tr.gestor = ?", p.Gestor).
		Scan(ctx, &view)
	if err != nil {
		return affected, nil, fmt.Errorf("reload transacao: %w", err)
	}
	view.DataStr = view.Data.In(s.loc).Format(time.RFC3339)
	return affected, &view, nil
}

// locateTarget resolves the row id, using the fuzzy+date fallback when no
// explicit id was supplied. Ties break most-recent-row-wins.
func (s *Store) locateTarget(ctx context.Context, p UpdateParams) (int64, error) {
	if p.ID != nil {
		return *p.ID, nil
	}

	start, err := localDayStart(p.Data, s.loc)
	if err != nil {
		return 0, err
	}
	pattern := "%" + strings.ToLower(strings.TrimSpace(p.Texto)) + "%"

	var id int64
	err = s.db.NewSelect().
		Model((*Transacao)(nil)).
		ColumnExpr("tr.id").
		Where("tr.unidade = ?", p.Unidade).
		Where("tr.gestor = ?", p.Gestor).
		Where("tr.data >= ? AND tr.data < ?", start, start.AddDate(0, 0, 1)).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("LOWER(tr.descricao) LIKE ?", pattern).
				WhereOr("LOWER(tr.texto_origem) LIKE ?", pattern)
		}).
		Order("tr.data DESC").
		Limit(1).
		Scan(ctx, &id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%w: texto=%q data=%s", ErrAlvoNaoEncontrado, p.Texto, p.Data)
		}
		return 0, fmt.Errorf("locate transacao: %w", err)
	}
	return id, nil
}

// Saldo computes the signed balance: +valor for receita rows, -valor for
// everything else. Dia optionally restricts the sum to one local calendar
// day. An empty result set yields 0, never an error.
func (s *Store) Saldo(ctx context.Context, unidade, gestor, dia string) (float64, error) {
	if strings.TrimSpace(unidade) == "" || strings.TrimSpace(gestor) == "" {
		return 0, errors.New("unidade and gestor are required")
	}

	q := s.db.NewSelect().
		Model((*Transacao)(nil)).
		ColumnExpr("COALESCE(SUM(CASE WHEN LOWER(t.nome) = ? THEN tr.valor ELSE -tr.valor END), 0)", tipoReceita).
		Join("JOIN tipos AS t ON t.id = tr.tipo_id").
		Where("tr.unidade = ?", unidade).
		Where("tr.gestor = ?", gestor)

	if dia != "" {
		start, err := localDayStart(dia, s.loc)
		if err != nil {
			return 0, err
		}
		q = q.Where("tr.data >= ? AND tr.data < ?", start, start.AddDate(0, 0, 1))
	}

	var saldo float64
	if err := q.Scan(ctx, &saldo); err != nil {
		return 0, fmt.Errorf("saldo: %w", err)
	}
	return saldo, nil
}

func localDayStart(date string, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", date)
	}
	return day, nil
}
