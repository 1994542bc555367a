package specialist

import (
	"context"
	"encoding/json"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/igestadev/assessor/agent/contract"
	promptx "github.com/igestadev/assessor/agent/prompt"
	statex "github.com/igestadev/assessor/agent/state"
)

type planInput struct {
	History   []statex.Turn
	Directive string
}

type answerInput struct {
	History     []statex.Turn
	Directive   string
	PlanMessage *schema.Message
	Results     []contractx.ToolResult
}

// Like the router, the few-shot replies are literal JSON, so both graphs
// assemble their message lists in lambdas instead of FString templates.

func compilePlanGraph(
	ctx context.Context,
	toolModel einomodel.BaseChatModel,
	systemPrompt string,
	shots []promptx.Shot,
) (compose.Runnable[planInput, *schema.Message], error) {
	graph := compose.NewGraph[planInput, *schema.Message]()

	if err := graph.AddLambdaNode("assemble_messages",
		compose.InvokableLambda(func(ctx context.Context, in planInput) ([]*schema.Message, error) {
			return baseMessages(systemPrompt, shots, in.History, in.Directive), nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add plan assemble node: %w", err)
	}
	if err := graph.AddChatModelNode("model", toolModel); err != nil {
		return nil, fmt.Errorf("add plan model node: %w", err)
	}
	if err := addLinearEdges(graph, "assemble_messages", "model"); err != nil {
		return nil, err
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("especialista.plan_graph"))
	if err != nil {
		return nil, fmt.Errorf("compile plan graph: %w", err)
	}
	return runner, nil
}

func compileAnswerGraph(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	systemPrompt string,
	shots []promptx.Shot,
) (compose.Runnable[answerInput, *schema.Message], error) {
	graph := compose.NewGraph[answerInput, *schema.Message]()

	if err := graph.AddLambdaNode("assemble_messages",
		compose.InvokableLambda(func(ctx context.Context, in answerInput) ([]*schema.Message, error) {
			messages := baseMessages(systemPrompt, shots, in.History, in.Directive)
			if in.PlanMessage != nil {
				messages = append(messages, in.PlanMessage)
			}
			toolCalls := []schema.ToolCall{}
			if in.PlanMessage != nil {
				toolCalls = in.PlanMessage.ToolCalls
			}
			for i, res := range in.Results {
				payload, err := json.Marshal(res)
				if err != nil {
					return nil, fmt.Errorf("marshal result for tool=%s: %w", res.Tool, err)
				}
				callID := ""
				if i < len(toolCalls) {
					callID = toolCalls[i].ID
				}
				messages = append(messages, schema.ToolMessage(string(payload), callID))
			}
			return messages, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add answer assemble node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add answer model node: %w", err)
	}
	if err := addLinearEdges(graph, "assemble_messages", "model"); err != nil {
		return nil, err
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("especialista.answer_graph"))
	if err != nil {
		return nil, fmt.Errorf("compile answer graph: %w", err)
	}
	return runner, nil
}

// baseMessages is the shared prefix of both passes: system prompt, shots,
// then the session turns so follow-up directives can resolve references to
// earlier answers, and finally the directive itself.
func baseMessages(systemPrompt string, shots []promptx.Shot, history []statex.Turn, directive string) []*schema.Message {
	messages := make([]*schema.Message, 0, 2+2*len(shots)+len(history))
	messages = append(messages, schema.SystemMessage(systemPrompt))
	for _, shot := range shots {
		messages = append(messages,
			schema.UserMessage(shot.Human),
			schema.AssistantMessage(shot.AI, nil),
		)
	}
	for _, turn := range history {
		switch turn.Role {
		case statex.RoleAssistant:
			messages = append(messages, schema.AssistantMessage(turn.Text, nil))
		default:
			messages = append(messages, schema.UserMessage(turn.Text))
		}
	}
	return append(messages, schema.UserMessage(directive))
}

func addLinearEdges[I, O any](graph *compose.Graph[I, O], nodes ...string) error {
	prev := compose.START
	for _, node := range nodes {
		if err := graph.AddEdge(prev, node); err != nil {
			return fmt.Errorf("add edge %s->%s: %w", prev, node, err)
		}
		prev = node
	}
	if err := graph.AddEdge(prev, compose.END); err != nil {
		return fmt.Errorf("add edge %s->end: %w", prev, err)
	}
	return nil
}
