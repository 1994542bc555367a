package router

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	promptx "github.com/igestadev/assessor/agent/prompt"
	statex "github.com/igestadev/assessor/agent/state"
)

type routerInput struct {
	History []statex.Turn
	Input   string
}

// The few-shot replies contain literal JSON and protocol braces, so the
// message list is assembled in a lambda instead of an FString template.
func compileRouterGraph(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	systemPrompt string,
	shots []promptx.Shot,
) (compose.Runnable[routerInput, *schema.Message], error) {
	graph := compose.NewGraph[routerInput, *schema.Message]()

	if err := graph.AddLambdaNode("assemble_messages",
		compose.InvokableLambda(func(ctx context.Context, in routerInput) ([]*schema.Message, error) {
			messages := make([]*schema.Message, 0, 2+2*len(shots)+len(in.History))
			messages = append(messages, schema.SystemMessage(systemPrompt))
			for _, shot := range shots {
				messages = append(messages,
					schema.UserMessage(shot.Human),
					schema.AssistantMessage(shot.AI, nil),
				)
			}
			for _, turn := range in.History {
				switch turn.Role {
				case statex.RoleAssistant:
					messages = append(messages, schema.AssistantMessage(turn.Text, nil))
				default:
					messages = append(messages, schema.UserMessage(turn.Text))
				}
			}
			messages = append(messages, schema.UserMessage(in.Input))
			return messages, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add router assemble node: %w", err)
	}

	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add router model node: %w", err)
	}
	if err := graph.AddEdge(compose.START, "assemble_messages"); err != nil {
		return nil, fmt.Errorf("add router edge start->assemble: %w", err)
	}
	if err := graph.AddEdge("assemble_messages", "model"); err != nil {
		return nil, fmt.Errorf("add router edge assemble->model: %w", err)
	}
	if err := graph.AddEdge("model", compose.END); err != nil {
		return nil, fmt.Errorf("add router edge model->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("roteador.model_graph"))
	if err != nil {
		return nil, fmt.Errorf("compile router graph: %w", err)
	}
	return runner, nil
}
