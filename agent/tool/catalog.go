package tool

import (
	"github.com/cloudwego/eino/schema"
	contractx "github.com/igestadev/assessor/agent/contract"
)

const (
	ToolRegistrosConsultar  = "registros.consultar"
	ToolRegistrosInserir    = "registros.inserir"
	ToolTransacoesConsultar = "transacoes.consultar"
	ToolTransacoesInserir   = "transacoes.inserir"
	ToolTransacoesAtualizar = "transacoes.atualizar"
	ToolTransacoesSaldo     = "transacoes.saldo"
)

// InfosForAgent declares the tool schemas each specialist is allowed to
// call. There is deliberately no delete tool: the deletar intent exists in
// the result contract but no tool implements it.
func InfosForAgent(agentType contractx.AgentType) []*schema.ToolInfo {
	switch agentType {
	case contractx.AgentTypeEspecialista:
		return []*schema.ToolInfo{
			{
				Name: ToolRegistrosConsultar,
				Desc: "Consulta registros de condena com filtros de data; unidade e gestor são aplicados automaticamente.",
				ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
					"start_date": {Type: schema.String, Desc: "Data de início (YYYY-MM-DD)"},
					"end_date":   {Type: schema.String, Desc: "Data de fim, inclusiva (YYYY-MM-DD)"},
					"limit":      {Type: schema.Integer, Desc: "Máximo de registros a retornar (padrão 10)"},
				}),
			},
			{
				Name: ToolRegistrosInserir,
				Desc: "Registra uma nova contagem de condenas.",
				ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
					"condenas": {
						Type:     schema.Array,
						Desc:     "Lista de condenas",
						Required: true,
						ElemInfo: &schema.ParameterInfo{
							Type: schema.Object,
							SubParams: map[string]*schema.ParameterInfo{
								"nome":       {Type: schema.String, Desc: "Nome da condena", Required: true},
								"tipo":       {Type: schema.String, Desc: "Tipo (parcial/total)"},
								"quantidade": {Type: schema.Integer, Desc: "Quantidade contada", Required: true},
							},
						},
					},
					"empresa": {Type: schema.String, Desc: "Empresa", Required: true},
					"turno":   {Type: schema.String, Desc: "Turno", Required: true},
					"lote":    {Type: schema.String, Desc: "Lote", Required: true},
					"data":    {Type: schema.String, Desc: "Data/hora explícita; padrão agora"},
				}),
			},
		}
	case contractx.AgentTypeFinanceiro:
		return []*schema.ToolInfo{
			{
				Name: ToolTransacoesConsultar,
				Desc: "Consulta transações com filtros de período, tipo e categoria.",
				ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
					"de":        {Type: schema.String, Desc: "Data de início (YYYY-MM-DD)"},
					"ate":       {Type: schema.String, Desc: "Data de fim, inclusiva (YYYY-MM-DD)"},
					"tipo":      {Type: schema.String, Desc: "Tipo por id ou nome (receita/despesa/transferencia)"},
					"categoria": {Type: schema.String, Desc: "Categoria por id ou nome"},
					"limit":     {Type: schema.Integer, Desc: "Máximo de transações (padrão 10)"},
				}),
			},
			{
				Name: ToolTransacoesInserir,
				Desc: "Lança uma transação. Valor sempre positivo; o sentido vem do tipo.",
				ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
					"valor":           {Type: schema.Number, Desc: "Valor positivo", Required: true},
					"tipo":            {Type: schema.String, Desc: "Tipo por id ou nome", Required: true},
					"categoria":       {Type: schema.String, Desc: "Categoria por id ou nome"},
					"descricao":       {Type: schema.String, Desc: "Descrição curta"},
					"forma_pagamento": {Type: schema.String, Desc: "Forma de pagamento"},
					"texto_origem":    {Type: schema.String, Desc: "Frase original do usuário que gerou o lançamento"},
					"data":            {Type: schema.String, Desc: "Data/hora explícita; padrão agora"},
				}),
			},
			{
				Name: ToolTransacoesAtualizar,
				Desc: "Atualiza uma transação por id, ou por texto aproximado + data quando o id é desconhecido.",
				ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
					"id":              {Type: schema.Integer, Desc: "Id da transação"},
					"texto":           {Type: schema.String, Desc: "Trecho da descrição para localizar a transação"},
					"data":            {Type: schema.String, Desc: "Data local da transação (YYYY-MM-DD)"},
					"valor":           {Type: schema.Number, Desc: "Novo valor"},
					"tipo":            {Type: schema.String, Desc: "Novo tipo por id ou nome"},
					"categoria":       {Type: schema.String, Desc: "Nova categoria por id ou nome"},
					"descricao":       {Type: schema.String, Desc: "Nova descrição"},
					"forma_pagamento": {Type: schema.String, Desc: "Nova forma de pagamento"},
				}),
			},
			{
				Name: ToolTransacoesSaldo,
				Desc: "Calcula o saldo (receitas menos demais lançamentos), total ou de um dia.",
				ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
					"dia": {Type: schema.String, Desc: "Dia local (YYYY-MM-DD); omita para o saldo total"},
				}),
			},
		}
	default:
		return nil
	}
}
