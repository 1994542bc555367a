package contract

import "context"

type Router interface {
	Route(ctx context.Context, sessionKey string, input string) (RouterOutput, error)
}

type Specialist interface {
	Handle(ctx context.Context, sessionKey string, directive Directive, qc QueryContext) (SpecialistResult, error)
}

type Registry interface {
	Router() Router
	Specialist(route Route) (Specialist, bool)
}

type ToolGateway interface {
	Execute(ctx context.Context, agentType AgentType, qc QueryContext, reqs []ToolRequest) ([]ToolResult, error)
}
