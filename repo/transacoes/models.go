package transacoes

import (
	"time"

	"github.com/uptrace/bun"
)

// Tipo is the transaction-kind lookup table (receita, despesa,
// transferencia). The kind, not the sign of the amount, decides whether a
// row counts as income or expense.
type Tipo struct {
	bun.BaseModel `bun:"table:tipos,alias:t"`

	ID   int64  `bun:"id,pk,autoincrement" json:"id"`
	Nome string `bun:"nome,notnull" json:"nome"`
}

type Categoria struct {
	bun.BaseModel `bun:"table:categorias,alias:c"`

	ID   int64  `bun:"id,pk,autoincrement" json:"id"`
	Nome string `bun:"nome,notnull" json:"nome"`
}

// Transacao is one financial entry. Valor is always positive; Data is an
// absolute instant (timestamptz).
type Transacao struct {
	bun.BaseModel `bun:"table:transacoes,alias:tr"`

	ID             int64     `bun:"id,pk,autoincrement" json:"id"`
	Valor          float64   `bun:"valor,notnull" json:"valor"`
	TipoID         int64     `bun:"tipo_id,notnull" json:"tipo_id"`
	CategoriaID    *int64    `bun:"categoria_id" json:"categoria_id,omitempty"`
	Descricao      string    `bun:"descricao" json:"descricao"`
	FormaPagamento string    `bun:"forma_pagamento" json:"forma_pagamento"`
	Data           time.Time `bun:"data,notnull" json:"-"`
	TextoOrigem    string    `bun:"texto_origem" json:"texto_origem,omitempty"`
	Unidade        string    `bun:"unidade,notnull" json:"unidade"`
	Gestor         string    `bun:"gestor,notnull" json:"gestor"`
}

// View is a transaction prepared for display: the tipo joined in by name
// and the timestamp rendered in the fixed local zone.
type View struct {
	Transacao
	TipoNome string `bun:"tipo_nome" json:"tipo"`
	DataStr  string `bun:"-" json:"data"`
}
