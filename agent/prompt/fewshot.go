package prompt

// Shot is one worked human/assistant example pair appended after the system
// prompt. The router examples demonstrate both output kinds; the specialist
// examples demonstrate the JSON result contract.
type Shot struct {
	Human string
	AI    string
}

// RoteadorShots demonstrates direct answers, the forwarding protocol and
// the single-clarification rule.
func RoteadorShots() []Shot {
	return []Shot{
		{
			Human: "Oi, tudo bem?",
			AI:    "Olá! Posso te ajudar com as contagens ou as finanças da sua empresa; por onde quer começar?",
		},
		{
			Human: "Me conta uma piada.",
			AI:    "Consigo ajudar apenas com contagens ou finanças. Prefere consultar as condenas ou olhar seus gastos?",
		},
		{
			Human: "Quem é você?",
			AI:    "Eu sou o Igestinha, seu assistente virtual para ajudar com as contagens e finanças da sua empresa. Como posso ajudar hoje?",
		},
		{
			Human: "Quais foram as condenas mais frequentes na semana passada?",
			AI:    "ROUTE=especialista\nPERGUNTA_ORIGINAL=Quais foram as condenas mais frequentes na semana passada?\nPERSONA={PERSONA_SISTEMA}\nCLARIFY=",
		},
		{
			Human: "Quanto gastei com mercado no mês passado?",
			AI:    "ROUTE=financeiro\nPERGUNTA_ORIGINAL=Quanto gastei com mercado no mês passado?\nPERSONA={PERSONA_SISTEMA}\nCLARIFY=",
		},
		{
			Human: "Registrar 45 reais",
			AI:    "Esse lançamento de R$ 45 é um gasto ou uma entrada?",
		},
	}
}

// EspecialistaShots shows the registry specialist answering in the JSON
// contract after consulting the tools.
func EspecialistaShots() []Shot {
	return []Shot{
		{
			Human: "ROUTE=especialista\nPERGUNTA_ORIGINAL=Quais foram as condenas mais frequentes na semana passada?\nPERSONA={PERSONA_SISTEMA}\nCLARIFY=",
			AI:    `{"dominio":"especialista","intencao":"consultar","resposta":"Semana passada houve 12 condenas de Aero Saculite e 7 de Sangria inadequada.","recomendacao":"Tome mais cuidado com a Aero Saculite e a Sangria inadequada."}`,
		},
		{
			Human: "ROUTE=especialista\nPERGUNTA_ORIGINAL=Quero um resumo da semana passada\nPERSONA={PERSONA_SISTEMA}\nCLARIFY=",
			AI:    `{"dominio":"especialista","intencao":"resumo","resposta":"Condenas mais contabilizadas: Aero Saculite, Contaminação e Sangria inadequada.","recomendacao":"","janela_tempo":{"de":"2026-08-24","ate":"2026-08-30","rotulo":"semana passada"}}`,
		},
	}
}

// FinanceiroShots shows the finance specialist covering query, insert and
// the clarify-first behavior.
func FinanceiroShots() []Shot {
	return []Shot{
		{
			Human: "ROUTE=financeiro\nPERGUNTA_ORIGINAL=Quanto gastei com mercado no mês passado?\nPERSONA={PERSONA_SISTEMA}\nCLARIFY=",
			AI:    `{"dominio":"financeiro","intencao":"consultar","resposta":"Você gastou R$ 842,75 com 'comida' no mês passado.","recomendacao":"Quer detalhar por estabelecimento?","janela_tempo":{"de":"2026-08-01","ate":"2026-08-31","rotulo":"mês passado (ago/2026)"}}`,
		},
		{
			Human: "ROUTE=financeiro\nPERGUNTA_ORIGINAL=Registrar almoço hoje R$ 45 no débito\nPERSONA={PERSONA_SISTEMA}\nCLARIFY=",
			AI:    `{"dominio":"financeiro","intencao":"inserir","resposta":"Lancei R$ 45,00 em 'comida' hoje (débito).","recomendacao":"Deseja adicionar uma observação?","escrita":{"operacao":"adicionar","id":2045}}`,
		},
		{
			Human: "ROUTE=financeiro\nPERGUNTA_ORIGINAL=Quero um resumo dos gastos\nPERSONA={PERSONA_SISTEMA}\nCLARIFY=",
			AI:    `{"dominio":"financeiro","intencao":"resumo","resposta":"Preciso do período para seguir.","recomendacao":"","esclarecer":"Qual período considerar (ex.: hoje, esta semana, mês passado)?"}`,
		},
	}
}
