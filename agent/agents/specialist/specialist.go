// Package specialist implements the domain agents that answer forwarded
// questions. A specialist runs two model passes per turn: a planning pass
// with the data tools bound, then an answering pass that turns the tool
// results into the structured JSON record the orchestrator renders.
package specialist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/igestadev/assessor/agent/contract"
	protocolx "github.com/igestadev/assessor/agent/protocol"
	promptx "github.com/igestadev/assessor/agent/prompt"
	statex "github.com/igestadev/assessor/agent/state"
	toolx "github.com/igestadev/assessor/agent/tool"
)

// RawAnswerError reports an answering pass that produced prose instead of
// the JSON contract. Raw carries the model text so the caller can degrade
// to it rather than drop the turn.
type RawAnswerError struct {
	Raw string
	Err error
}

func (e *RawAnswerError) Error() string {
	return e.Err.Error()
}

func (e *RawAnswerError) Unwrap() error {
	return e.Err
}

type specialistImpl struct {
	agentType    contractx.AgentType
	planRunner   compose.Runnable[planInput, *schema.Message]
	answerRunner compose.Runnable[answerInput, *schema.Message]
	store        statex.Store
	tools        contractx.ToolGateway
}

var _ contractx.Specialist = (*specialistImpl)(nil)

func newSpecialist(
	ctx context.Context,
	agentType contractx.AgentType,
	chatModel einomodel.ToolCallingChatModel,
	systemPrompt string,
	shots []promptx.Shot,
	store statex.Store,
	tools contractx.ToolGateway,
) (*specialistImpl, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: state store is required", contractx.ErrValidation)
	}
	if tools == nil {
		return nil, fmt.Errorf("%w: tool gateway is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, contractx.ErrPromptMissing
	}

	toolModel, err := chatModel.WithTools(toolx.InfosForAgent(agentType))
	if err != nil {
		return nil, fmt.Errorf("%w: bind tools for agent=%s: %v", contractx.ErrModelInvoke, agentType, err)
	}

	planRunner, err := compilePlanGraph(ctx, toolModel, systemPrompt, shots)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}
	answerRunner, err := compileAnswerGraph(ctx, chatModel, systemPrompt, shots)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}

	return &specialistImpl{
		agentType:    agentType,
		planRunner:   planRunner,
		answerRunner: answerRunner,
		store:        store,
		tools:        tools,
	}, nil
}

func (s *specialistImpl) Handle(
	ctx context.Context,
	sessionKey string,
	directive contractx.Directive,
	qc contractx.QueryContext,
) (contractx.SpecialistResult, error) {
	directiveText := protocolx.FormatDirective(directive)

	// Same session thread the router classified on. Without it a forwarded
	// follow-up loses the turns it refers back to.
	history, err := s.store.History(ctx, sessionKey)
	if err != nil {
		return contractx.SpecialistResult{}, fmt.Errorf("%w: load history: %v", contractx.ErrValidation, err)
	}

	planMsg, err := s.planRunner.Invoke(ctx, planInput{History: history, Directive: directiveText})
	if err != nil {
		return contractx.SpecialistResult{}, fmt.Errorf("%w: plan invoke: %v", contractx.ErrModelInvoke, err)
	}
	if planMsg == nil {
		return contractx.SpecialistResult{}, fmt.Errorf("%w: empty planning response", contractx.ErrSchemaViolation)
	}

	reqs, err := toToolRequests(planMsg.ToolCalls)
	if err != nil {
		return contractx.SpecialistResult{}, err
	}

	var results []contractx.ToolResult
	if len(reqs) == 0 {
		// The model may answer directly when no lookup is needed, e.g. a
		// clarification. Accept that only when it already satisfies the
		// result contract; otherwise force the answering pass.
		if res, parseErr := protocolx.ParseResult(planMsg.Content); parseErr == nil {
			return res, nil
		}
	} else {
		results, err = s.tools.Execute(ctx, s.agentType, qc, reqs)
		if err != nil {
			return contractx.SpecialistResult{}, fmt.Errorf("execute tools for agent=%s: %w", s.agentType, err)
		}
	}

	answerMsg, err := s.answerRunner.Invoke(ctx, answerInput{
		History:     history,
		Directive:   directiveText,
		PlanMessage: planMsg,
		Results:     results,
	})
	if err != nil {
		return contractx.SpecialistResult{}, fmt.Errorf("%w: answer invoke: %v", contractx.ErrModelInvoke, err)
	}
	if answerMsg == nil {
		return contractx.SpecialistResult{}, fmt.Errorf("%w: empty answer response", contractx.ErrSchemaViolation)
	}

	result, err := protocolx.ParseResult(answerMsg.Content)
	if err != nil {
		return contractx.SpecialistResult{}, &RawAnswerError{
			Raw: strings.TrimSpace(answerMsg.Content),
			Err: fmt.Errorf("%w: %v", contractx.ErrSchemaViolation, err),
		}
	}
	return result, nil
}

func toToolRequests(calls []schema.ToolCall) ([]contractx.ToolRequest, error) {
	if len(calls) == 0 {
		return nil, nil
	}
	reqs := make([]contractx.ToolRequest, 0, len(calls))
	for _, call := range calls {
		name := strings.TrimSpace(call.Function.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: tool call name is empty", contractx.ErrSchemaViolation)
		}

		args := map[string]any{}
		rawArgs := strings.TrimSpace(call.Function.Arguments)
		if rawArgs != "" {
			if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
				return nil, fmt.Errorf("%w: invalid tool args for tool=%s: %v", contractx.ErrSchemaViolation, name, err)
			}
		}

		reqs = append(reqs, contractx.ToolRequest{Tool: name, Args: args})
	}
	return reqs, nil
}
