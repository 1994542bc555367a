package contract

type AgentType string

const (
	AgentTypeRoteador     AgentType = "roteador"
	AgentTypeEspecialista AgentType = "especialista"
	AgentTypeFinanceiro   AgentType = "financeiro"
)

// Route is the domain token carried on the ROUTE= line of the directive.
type Route string

const (
	RouteEspecialista Route = "especialista"
	RouteFinanceiro   Route = "financeiro"
)

func (r Route) Known() bool {
	switch r {
	case RouteEspecialista, RouteFinanceiro:
		return true
	}
	return false
}

func (r Route) AgentType() AgentType {
	switch r {
	case RouteFinanceiro:
		return AgentTypeFinanceiro
	default:
		return AgentTypeEspecialista
	}
}

// Directive is the forwarding message from the router to a specialist.
// PerguntaOriginal must stay byte-identical to the user's input.
type Directive struct {
	Route            Route
	PerguntaOriginal string
	Persona          string
	Clarify          string
}

type RouterOutputKind string

const (
	RouterDirect  RouterOutputKind = "direct"
	RouterForward RouterOutputKind = "forward"
)

type RouterOutput struct {
	Kind      RouterOutputKind
	Text      string
	Directive Directive
}

type Intencao string

const (
	IntencaoConsultar Intencao = "consultar"
	IntencaoResumo    Intencao = "resumo"
	IntencaoInserir   Intencao = "inserir"
	IntencaoAtualizar Intencao = "atualizar"
	IntencaoDeletar   Intencao = "deletar"
)

func (i Intencao) Known() bool {
	switch i {
	case IntencaoConsultar, IntencaoResumo, IntencaoInserir, IntencaoAtualizar, IntencaoDeletar:
		return true
	}
	return false
}

// Escrita describes a write operation the specialist performed or intends.
// The "deletar" operation is representable but no tool implements it.
type Escrita struct {
	Operacao string `json:"operacao"`
	ID       int64  `json:"id"`
}

type JanelaTempo struct {
	De     string `json:"de"`
	Ate    string `json:"ate"`
	Rotulo string `json:"rotulo,omitempty"`
}

// SpecialistResult is the structured record a specialist emits for the
// orchestrator. Resposta and Recomendacao are always present; Recomendacao
// is the empty string when there is nothing to recommend.
type SpecialistResult struct {
	Dominio        string             `json:"dominio"`
	Intencao       Intencao           `json:"intencao"`
	Resposta       string             `json:"resposta"`
	Recomendacao   string             `json:"recomendacao"`
	Acompanhamento string             `json:"acompanhamento,omitempty"`
	Esclarecer     string             `json:"esclarecer,omitempty"`
	Escrita        *Escrita           `json:"escrita,omitempty"`
	JanelaTempo    *JanelaTempo       `json:"janela_tempo,omitempty"`
	Indicadores    map[string]float64 `json:"indicadores,omitempty"`
}

// QueryContext carries the caller identifiers every tool query must filter on.
type QueryContext struct {
	Unidade string
	Gestor  string
}

type ToolRequest struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

type ToolResult struct {
	Tool   string `json:"tool"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}
