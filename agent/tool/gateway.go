package tool

import (
	"context"
	"errors"
	"fmt"
	"time"

	contractx "github.com/igestadev/assessor/agent/contract"
	registrosx "github.com/igestadev/assessor/repo/registros"
	transacoesx "github.com/igestadev/assessor/repo/transacoes"
	"github.com/rs/zerolog/log"
)

// RegistroStore is the registry persistence surface the gateway needs.
type RegistroStore interface {
	Query(ctx context.Context, f registrosx.Filter) ([]registrosx.View, error)
	Insert(ctx context.Context, n registrosx.NewRegistro) (string, time.Time, error)
}

// TransacaoStore is the transaction persistence surface the gateway needs.
type TransacaoStore interface {
	Query(ctx context.Context, f transacoesx.QueryFilter) ([]transacoesx.View, error)
	Insert(ctx context.Context, n transacoesx.NewTransacao) (int64, time.Time, error)
	Update(ctx context.Context, p transacoesx.UpdateParams) (int64, *transacoesx.View, error)
	Saldo(ctx context.Context, unidade, gestor, dia string) (float64, error)
}

// Gateway dispatches tool requests to the stores, injecting the caller's
// unidade/gestor context into every call. Persistence failures become
// error envelopes; they never abort the turn.
type Gateway struct {
	registros  RegistroStore
	transacoes TransacaoStore
	loc        *time.Location
}

func NewGateway(registros RegistroStore, transacoes TransacaoStore, loc *time.Location) (*Gateway, error) {
	if loc == nil {
		return nil, errors.New("location is required")
	}
	return &Gateway{registros: registros, transacoes: transacoes, loc: loc}, nil
}

func (g *Gateway) Execute(
	ctx context.Context,
	agentType contractx.AgentType,
	qc contractx.QueryContext,
	reqs []contractx.ToolRequest,
) ([]contractx.ToolResult, error) {
	allowed := make(map[string]struct{})
	for _, info := range InfosForAgent(agentType) {
		allowed[info.Name] = struct{}{}
	}

	results := make([]contractx.ToolResult, 0, len(reqs))
	for _, req := range reqs {
		if _, ok := allowed[req.Tool]; !ok {
			results = append(results, contractx.ToolResult{
				Tool:  req.Tool,
				Error: fmt.Sprintf("tool=%s is unavailable for agent=%s", req.Tool, agentType),
			})
			continue
		}
		env := g.dispatch(ctx, req.Tool, qc, req.Args)
		if env.Status == "error" {
			log.Warn().Str("tool", req.Tool).Str("message", env.Message).Msg("tool returned error envelope")
		}
		results = append(results, contractx.ToolResult{Tool: req.Tool, Result: env})
	}
	return results, nil
}

func (g *Gateway) dispatch(ctx context.Context, tool string, qc contractx.QueryContext, args map[string]any) Envelope {
	if args == nil {
		args = map[string]any{}
	}
	switch tool {
	case ToolRegistrosConsultar:
		return g.registrosConsultar(ctx, qc, args)
	case ToolRegistrosInserir:
		return g.registrosInserir(ctx, qc, args)
	case ToolTransacoesConsultar:
		return g.transacoesConsultar(ctx, qc, args)
	case ToolTransacoesInserir:
		return g.transacoesInserir(ctx, qc, args)
	case ToolTransacoesAtualizar:
		return g.transacoesAtualizar(ctx, qc, args)
	case ToolTransacoesSaldo:
		return g.transacoesSaldo(ctx, qc, args)
	default:
		return errEnvelope("unknown tool %s", tool)
	}
}

func (g *Gateway) registrosConsultar(ctx context.Context, qc contractx.QueryContext, args map[string]any) Envelope {
	if g.registros == nil {
		return errEnvelope("registros store is not configured")
	}
	limit, _ := intArg(args, "limit")
	views, err := g.registros.Query(ctx, registrosx.Filter{
		StartDate: stringArg(args, "start_date"),
		EndDate:   stringArg(args, "end_date"),
		Unidade:   qc.Unidade,
		Gestor:    qc.Gestor,
		Limit:     limit,
	})
	if err != nil {
		return errEnvelope("consulta de registros falhou: %v", err)
	}
	return okEnvelope(map[string]any{"registros": views})
}

func (g *Gateway) registrosInserir(ctx context.Context, qc contractx.QueryContext, args map[string]any) Envelope {
	if g.registros == nil {
		return errEnvelope("registros store is not configured")
	}

	rawList, _ := args["condenas"].([]any)
	condenas := make([]registrosx.Condena, 0, len(rawList))
	for _, raw := range rawList {
		item, ok := raw.(map[string]any)
		if !ok {
			return errEnvelope("condena inválida: %v", raw)
		}
		qty, _ := intArg(item, "quantidade")
		condenas = append(condenas, registrosx.Condena{
			Nome:       stringArg(item, "nome"),
			Tipo:       stringArg(item, "tipo"),
			Quantidade: qty,
		})
	}

	n := registrosx.NewRegistro{
		Condenas: condenas,
		Empresa:  stringArg(args, "empresa"),
		Unidade:  qc.Unidade,
		Gestor:   qc.Gestor,
		Turno:    stringArg(args, "turno"),
		Lote:     stringArg(args, "lote"),
	}
	if raw := stringArg(args, "data"); raw != "" {
		when, err := parseWhen(raw, g.loc)
		if err != nil {
			return errEnvelope("%v", err)
		}
		n.Data = when
	}

	id, efetiva, err := g.registros.Insert(ctx, n)
	if err != nil {
		return errEnvelope("inserção de registro falhou: %v", err)
	}
	return okEnvelope(map[string]any{
		"id":   id,
		"data": efetiva.In(g.loc).Format(time.RFC3339),
	})
}

func (g *Gateway) transacoesConsultar(ctx context.Context, qc contractx.QueryContext, args map[string]any) Envelope {
	if g.transacoes == nil {
		return errEnvelope("transacoes store is not configured")
	}
	limit, _ := intArg(args, "limit")
	views, err := g.transacoes.Query(ctx, transacoesx.QueryFilter{
		De:        stringArg(args, "de"),
		Ate:       stringArg(args, "ate"),
		Tipo:      args["tipo"],
		Categoria: args["categoria"],
		Unidade:   qc.Unidade,
		Gestor:    qc.Gestor,
		Limit:     limit,
	})
	if err != nil {
		return errEnvelope("consulta de transações falhou: %v", err)
	}
	return okEnvelope(map[string]any{"transacoes": views})
}

func (g *Gateway) transacoesInserir(ctx context.Context, qc contractx.QueryContext, args map[string]any) Envelope {
	if g.transacoes == nil {
		return errEnvelope("transacoes store is not configured")
	}

	valor, ok := floatArg(args, "valor")
	if !ok {
		return errEnvelope("valor is required")
	}
	n := transacoesx.NewTransacao{
		Valor:          valor,
		Tipo:           args["tipo"],
		Categoria:      args["categoria"],
		Descricao:      stringArg(args, "descricao"),
		FormaPagamento: stringArg(args, "forma_pagamento"),
		TextoOrigem:    stringArg(args, "texto_origem"),
		Unidade:        qc.Unidade,
		Gestor:         qc.Gestor,
	}
	if raw := stringArg(args, "data"); raw != "" {
		when, err := parseWhen(raw, g.loc)
		if err != nil {
			return errEnvelope("%v", err)
		}
		n.Data = when
	}

	id, efetiva, err := g.transacoes.Insert(ctx, n)
	if err != nil {
		return errEnvelope("lançamento falhou: %v", err)
	}
	return okEnvelope(map[string]any{
		"id":   id,
		"data": efetiva.In(g.loc).Format(time.RFC3339),
	})
}

func (g *Gateway) transacoesAtualizar(ctx context.Context, qc contractx.QueryContext, args map[string]any) Envelope {
	if g.transacoes == nil {
		return errEnvelope("transacoes store is not configured")
	}

	p := transacoesx.UpdateParams{
		Texto:   stringArg(args, "texto"),
		Data:    stringArg(args, "data"),
		Tipo:    args["tipo"],
		Unidade: qc.Unidade,
		Gestor:  qc.Gestor,
	}
	if id, ok := intArg(args, "id"); ok {
		id64 := int64(id)
		p.ID = &id64
	}
	if v, ok := floatArg(args, "valor"); ok {
		p.Valor = &v
	}
	if _, ok := args["categoria"]; ok {
		p.Categoria = args["categoria"]
	}
	if v, ok := args["descricao"].(string); ok {
		p.Descricao = &v
	}
	if v, ok := args["forma_pagamento"].(string); ok {
		p.FormaPagamento = &v
	}

	affected, view, err := g.transacoes.Update(ctx, p)
	if err != nil {
		return errEnvelope("atualização falhou: %v", err)
	}
	return okEnvelope(map[string]any{
		"linhas_afetadas": affected,
		"transacao":       view,
	})
}

func (g *Gateway) transacoesSaldo(ctx context.Context, qc contractx.QueryContext, args map[string]any) Envelope {
	if g.transacoes == nil {
		return errEnvelope("transacoes store is not configured")
	}
	saldo, err := g.transacoes.Saldo(ctx, qc.Unidade, qc.Gestor, stringArg(args, "dia"))
	if err != nil {
		return errEnvelope("saldo falhou: %v", err)
	}
	return okEnvelope(map[string]any{"saldo": saldo})
}
