package transacoes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Resolution is the tagged outcome of resolving a caller-supplied tipo or
// categoria reference into a row id.
type Resolution struct {
	id int64
	ok bool
}

func Resolved(id int64) Resolution { return Resolution{id: id, ok: true} }
func Unresolved() Resolution       { return Resolution{} }

// ID returns the resolved id; ok is false when resolution failed.
func (r Resolution) ID() (int64, bool) { return r.id, r.ok }

type refKind int

const (
	refInvalid refKind = iota
	refID
	refName
)

// parseRef classifies a tool-argument reference. JSON numbers arrive as
// float64; numeric strings count as ids; anything else is a name.
func parseRef(ref any) (refKind, int64, string) {
	switch v := ref.(type) {
	case nil:
		return refInvalid, 0, ""
	case float64:
		return refID, int64(v), ""
	case int:
		return refID, int64(v), ""
	case int64:
		return refID, v, ""
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return refInvalid, 0, ""
		}
		if id, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return refID, id, ""
		}
		return refName, 0, trimmed
	default:
		return refInvalid, 0, ""
	}
}

// ResolveTipo resolves a tipo reference (numeric id or name) against the
// lookup table. Unknown references yield Unresolved, not an error; errors
// are reserved for persistence failures.
func (s *Store) ResolveTipo(ctx context.Context, ref any) (Resolution, error) {
	return s.resolveLookup(ctx, ref, (*Tipo)(nil))
}

// ResolveCategoria resolves a categoria reference the same way.
func (s *Store) ResolveCategoria(ctx context.Context, ref any) (Resolution, error) {
	return s.resolveLookup(ctx, ref, (*Categoria)(nil))
}

func (s *Store) resolveLookup(ctx context.Context, ref any, model any) (Resolution, error) {
	kind, id, name := parseRef(ref)
	switch kind {
	case refID:
		exists, err := s.db.NewSelect().Model(model).Where("id = ?", id).Exists(ctx)
		if err != nil {
			return Unresolved(), fmt.Errorf("resolve by id: %w", err)
		}
		if !exists {
			return Unresolved(), nil
		}
		return Resolved(id), nil
	case refName:
		var resolved int64
		err := s.db.NewSelect().
			Model(model).
			Column("id").
			Where("LOWER(nome) = LOWER(?)", name).
			Limit(1).
			Scan(ctx, &resolved)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return Unresolved(), nil
			}
			return Unresolved(), fmt.Errorf("resolve by name: %w", err)
		}
		return Resolved(resolved), nil
	default:
		return Unresolved(), nil
	}
}
