package specialist

import (
	"context"
	"errors"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/igestadev/assessor/agent/contract"
	statex "github.com/igestadev/assessor/agent/state"
	toolx "github.com/igestadev/assessor/agent/tool"
)

type fakeToolCallingModel struct {
	responses []*schema.Message
	err       error
	idx       int
	inputs    [][]*schema.Message
}

func (f *fakeToolCallingModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return nil, f.err
	}
	if f.idx >= len(f.responses) {
		return nil, errors.New("no fake response left")
	}
	msg := f.responses[f.idx]
	f.idx++
	return msg, nil
}

func (f *fakeToolCallingModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not implemented in fake model")
}

func (f *fakeToolCallingModel) WithTools(tools []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	return f, nil
}

type fakeGateway struct {
	agentType contractx.AgentType
	qc        contractx.QueryContext
	reqs      []contractx.ToolRequest
	results   []contractx.ToolResult
	err       error
}

func (g *fakeGateway) Execute(
	ctx context.Context,
	agentType contractx.AgentType,
	qc contractx.QueryContext,
	reqs []contractx.ToolRequest,
) ([]contractx.ToolResult, error) {
	g.agentType = agentType
	g.qc = qc
	g.reqs = reqs
	if g.err != nil {
		return nil, g.err
	}
	return g.results, nil
}

func consultaDirective() contractx.Directive {
	return contractx.Directive{
		Route:            contractx.RouteEspecialista,
		PerguntaOriginal: "Quais foram as condenas mais frequentes na semana passada?",
		Persona:          "Igestinha, assistente da unidade",
	}
}

func toolCallMessage(name, args string) *schema.Message {
	return &schema.Message{
		Role: schema.Assistant,
		ToolCalls: []schema.ToolCall{
			{
				ID:   "call_1",
				Type: "function",
				Function: schema.FunctionCall{
					Name:      name,
					Arguments: args,
				},
			},
		},
	}
}

func TestHandleRunsToolsThenAnswers(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			toolCallMessage(toolx.ToolRegistrosConsultar, `{"start_date":"2026-08-24","end_date":"2026-08-30"}`),
			{Content: `{"dominio":"especialista","intencao":"consultar","resposta":"Foram 12 condenas, 7 de Aero Saculite.","recomendacao":"Atenção à Aero Saculite."}`},
		},
	}
	gateway := &fakeGateway{
		results: []contractx.ToolResult{
			{Tool: toolx.ToolRegistrosConsultar, Result: map[string]any{"status": "ok"}},
		},
	}

	spec, err := newSpecialist(context.Background(), contractx.AgentTypeEspecialista, fake,
		"prompt do especialista", nil, statex.NewMemoryStore(), gateway)
	if err != nil {
		t.Fatalf("newSpecialist() error = %v", err)
	}

	qc := contractx.QueryContext{Unidade: "matriz", Gestor: "carlos"}
	res, err := spec.Handle(context.Background(), "u:g:c1", consultaDirective(), qc)
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	if res.Intencao != contractx.IntencaoConsultar {
		t.Fatalf("intencao = %s", res.Intencao)
	}
	if res.Resposta == "" || res.Recomendacao == "" {
		t.Fatalf("result incomplete: %+v", res)
	}
	if gateway.agentType != contractx.AgentTypeEspecialista {
		t.Fatalf("gateway agent = %s", gateway.agentType)
	}
	if gateway.qc != qc {
		t.Fatalf("gateway qc = %+v", gateway.qc)
	}
	if len(gateway.reqs) != 1 || gateway.reqs[0].Tool != toolx.ToolRegistrosConsultar {
		t.Fatalf("gateway reqs = %+v", gateway.reqs)
	}
	if gateway.reqs[0].Args["start_date"] != "2026-08-24" {
		t.Fatalf("args = %+v", gateway.reqs[0].Args)
	}
	if len(fake.inputs) != 2 {
		t.Fatalf("model calls = %d, want 2", len(fake.inputs))
	}
}

func TestHandleFeedsSessionHistoryToBothPasses(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			toolCallMessage(toolx.ToolTransacoesConsultar, `{"start_date":"2026-07-01","end_date":"2026-07-31"}`),
			{Content: `{"dominio":"financeiro","intencao":"consultar","resposta":"Em julho foram R$ 2.300,00.","recomendacao":""}`},
		},
	}
	gateway := &fakeGateway{
		results: []contractx.ToolResult{
			{Tool: toolx.ToolTransacoesConsultar, Result: map[string]any{"status": "ok"}},
		},
	}

	store := statex.NewMemoryStore()
	sessionKey := "matriz:carlos:c1"
	if err := store.Append(context.Background(), sessionKey,
		statex.Turn{Role: statex.RoleUser, Text: "Quanto gastei em agosto?"},
		statex.Turn{Role: statex.RoleAssistant, Text: "Em agosto foram R$ 1.800,00."},
	); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	spec, err := newSpecialist(context.Background(), contractx.AgentTypeFinanceiro, fake,
		"prompt do financeiro", nil, store, gateway)
	if err != nil {
		t.Fatalf("newSpecialist() error = %v", err)
	}

	_, err = spec.Handle(context.Background(), sessionKey, contractx.Directive{
		Route:            contractx.RouteFinanceiro,
		PerguntaOriginal: "E comparado com o mês anterior?",
	}, contractx.QueryContext{Unidade: "matriz", Gestor: "carlos"})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	if len(fake.inputs) != 2 {
		t.Fatalf("model calls = %d, want 2", len(fake.inputs))
	}
	for pass, input := range fake.inputs {
		var userTurn, assistantTurn bool
		for _, msg := range input {
			if msg.Role == schema.User && msg.Content == "Quanto gastei em agosto?" {
				userTurn = true
			}
			if msg.Role == schema.Assistant && msg.Content == "Em agosto foram R$ 1.800,00." {
				assistantTurn = true
			}
		}
		if !userTurn || !assistantTurn {
			t.Fatalf("pass %d missing history turns (user=%v assistant=%v)", pass, userTurn, assistantTurn)
		}
	}
}

func TestHandleDirectJSONSkipsSecondPass(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			{Content: `{"dominio":"financeiro","intencao":"resumo","resposta":"Preciso do período para seguir.","recomendacao":"","esclarecer":"Qual período considerar?"}`},
		},
	}
	gateway := &fakeGateway{}

	spec, err := newSpecialist(context.Background(), contractx.AgentTypeFinanceiro, fake,
		"prompt do financeiro", nil, statex.NewMemoryStore(), gateway)
	if err != nil {
		t.Fatalf("newSpecialist() error = %v", err)
	}

	res, err := spec.Handle(context.Background(), "u:g:c1", contractx.Directive{
		Route:            contractx.RouteFinanceiro,
		PerguntaOriginal: "Quero um resumo dos gastos",
	}, contractx.QueryContext{Unidade: "u", Gestor: "g"})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if res.Esclarecer == "" {
		t.Fatalf("esclarecer lost: %+v", res)
	}
	if len(fake.inputs) != 1 {
		t.Fatalf("model calls = %d, want 1", len(fake.inputs))
	}
	if gateway.reqs != nil {
		t.Fatalf("gateway called with %+v", gateway.reqs)
	}
}

func TestHandleToolErrorEnvelopeStillAnswers(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			toolCallMessage(toolx.ToolTransacoesSaldo, `{}`),
			{Content: `{"dominio":"financeiro","intencao":"consultar","resposta":"Não consegui consultar o saldo agora, tente de novo em instantes.","recomendacao":""}`},
		},
	}
	gateway := &fakeGateway{
		results: []contractx.ToolResult{
			{Tool: toolx.ToolTransacoesSaldo, Result: map[string]any{"status": "error", "message": "connection refused"}},
		},
	}

	spec, err := newSpecialist(context.Background(), contractx.AgentTypeFinanceiro, fake,
		"prompt do financeiro", nil, statex.NewMemoryStore(), gateway)
	if err != nil {
		t.Fatalf("newSpecialist() error = %v", err)
	}

	res, err := spec.Handle(context.Background(), "u:g:c1", contractx.Directive{
		Route:            contractx.RouteFinanceiro,
		PerguntaOriginal: "Qual meu saldo?",
	}, contractx.QueryContext{Unidade: "u", Gestor: "g"})
	if err != nil {
		t.Fatalf("Handle() must not fail on tool error envelope: %v", err)
	}
	if res.Resposta == "" {
		t.Fatalf("resposta empty: %+v", res)
	}
}

func TestHandleUnparseableAnswerIsSchemaViolation(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			toolCallMessage(toolx.ToolRegistrosConsultar, `{}`),
			{Content: "Foram 12 condenas na semana passada."},
		},
	}

	spec, err := newSpecialist(context.Background(), contractx.AgentTypeEspecialista, fake,
		"prompt do especialista", nil, statex.NewMemoryStore(), &fakeGateway{})
	if err != nil {
		t.Fatalf("newSpecialist() error = %v", err)
	}

	_, err = spec.Handle(context.Background(), "u:g:c1", consultaDirective(),
		contractx.QueryContext{Unidade: "u", Gestor: "g"})
	if !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("err = %v, want ErrSchemaViolation", err)
	}

	var raw *RawAnswerError
	if !errors.As(err, &raw) {
		t.Fatalf("err = %T, want *RawAnswerError", err)
	}
	if raw.Raw != "Foram 12 condenas na semana passada." {
		t.Fatalf("raw = %q", raw.Raw)
	}
}

func TestHandleModelFailureWrapsModelInvoke(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{err: errors.New("upstream 503")}
	spec, err := newSpecialist(context.Background(), contractx.AgentTypeEspecialista, fake,
		"prompt do especialista", nil, statex.NewMemoryStore(), &fakeGateway{})
	if err != nil {
		t.Fatalf("newSpecialist() error = %v", err)
	}

	_, err = spec.Handle(context.Background(), "u:g:c1", consultaDirective(),
		contractx.QueryContext{Unidade: "u", Gestor: "g"})
	if !errors.Is(err, contractx.ErrModelInvoke) {
		t.Fatalf("err = %v, want ErrModelInvoke", err)
	}
}

func TestRegistrySpecialistLookup(t *testing.T) {
	t.Parallel()

	reg := &registryImpl{
		especialista: &specialistImpl{agentType: contractx.AgentTypeEspecialista},
		financeiro:   &specialistImpl{agentType: contractx.AgentTypeFinanceiro},
	}

	if _, ok := reg.Specialist(contractx.RouteEspecialista); !ok {
		t.Fatal("especialista route missing")
	}
	if _, ok := reg.Specialist(contractx.RouteFinanceiro); !ok {
		t.Fatal("financeiro route missing")
	}
	if _, ok := reg.Specialist(contractx.Route("juridico")); ok {
		t.Fatal("unknown route must not resolve")
	}
}
