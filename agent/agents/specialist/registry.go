package specialist

import (
	"context"
	"fmt"

	routerx "github.com/igestadev/assessor/agent/agents/router"
	contractx "github.com/igestadev/assessor/agent/contract"
	llmx "github.com/igestadev/assessor/agent/llm"
	promptx "github.com/igestadev/assessor/agent/prompt"
	statex "github.com/igestadev/assessor/agent/state"
)

type registryImpl struct {
	router       contractx.Router
	especialista contractx.Specialist
	financeiro   contractx.Specialist
}

func (r *registryImpl) Router() contractx.Router {
	return r.router
}

func (r *registryImpl) Specialist(route contractx.Route) (contractx.Specialist, bool) {
	switch route {
	case contractx.RouteEspecialista:
		return r.especialista, true
	case contractx.RouteFinanceiro:
		return r.financeiro, true
	}
	return nil, false
}

// NewRegistry builds the router and both specialists from one model config.
// todayLocal is resolved once at startup and baked into every prompt.
func NewRegistry(
	ctx context.Context,
	cfg llmx.Config,
	store statex.Store,
	tools contractx.ToolGateway,
	todayLocal string,
) (contractx.Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	prompts := promptx.LoadPromptSet()

	roteadorModelCfg := cfg.OpenRouterFor(contractx.AgentTypeRoteador)
	roteadorModel, err := roteadorModelCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create roteador model: %v", contractx.ErrModelInvoke, err)
	}
	especialistaModelCfg := cfg.OpenRouterFor(contractx.AgentTypeEspecialista)
	especialistaModel, err := especialistaModelCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create especialista model: %v", contractx.ErrModelInvoke, err)
	}
	financeiroModelCfg := cfg.OpenRouterFor(contractx.AgentTypeFinanceiro)
	financeiroModel, err := financeiroModelCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create financeiro model: %v", contractx.ErrModelInvoke, err)
	}

	router, err := routerx.New(ctx, roteadorModel, promptx.WithToday(prompts.Roteador, todayLocal), store)
	if err != nil {
		return nil, err
	}

	especialista, err := newSpecialist(ctx, contractx.AgentTypeEspecialista, especialistaModel,
		promptx.WithToday(prompts.Especialista, todayLocal), promptx.EspecialistaShots(), store, tools)
	if err != nil {
		return nil, err
	}
	financeiro, err := newSpecialist(ctx, contractx.AgentTypeFinanceiro, financeiroModel,
		promptx.WithToday(prompts.Financeiro, todayLocal), promptx.FinanceiroShots(), store, tools)
	if err != nil {
		return nil, err
	}

	return &registryImpl{
		router:       router,
		especialista: especialista,
		financeiro:   financeiro,
	}, nil
}
