// Package router implements the first stage of the conversation: it decides
// whether a message is answered directly (greetings, off-topic, a single
// clarifying question) or forwarded to a specialist through the line
// directive protocol.
package router

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/igestadev/assessor/agent/contract"
	protocolx "github.com/igestadev/assessor/agent/protocol"
	promptx "github.com/igestadev/assessor/agent/prompt"
	statex "github.com/igestadev/assessor/agent/state"
	"github.com/rs/zerolog/log"
)

type routerImpl struct {
	store  statex.Store
	runner compose.Runnable[routerInput, *schema.Message]
}

var _ contractx.Router = (*routerImpl)(nil)

// New compiles the router model graph. The store is read-only here: the
// handler owns history writes so the forwarded leg of a turn is never
// double-recorded.
func New(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	systemPrompt string,
	store statex.Store,
) (contractx.Router, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: state store is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, contractx.ErrPromptMissing
	}

	runner, err := compileRouterGraph(ctx, chatModel, systemPrompt, promptx.RoteadorShots())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}
	return &routerImpl{store: store, runner: runner}, nil
}

func (r *routerImpl) Route(ctx context.Context, sessionKey string, input string) (contractx.RouterOutput, error) {
	if strings.TrimSpace(input) == "" {
		return contractx.RouterOutput{}, fmt.Errorf("%w: message is empty", contractx.ErrValidation)
	}

	history, err := r.store.History(ctx, sessionKey)
	if err != nil {
		return contractx.RouterOutput{}, fmt.Errorf("%w: load history: %v", contractx.ErrValidation, err)
	}

	msg, err := r.runner.Invoke(ctx, routerInput{History: history, Input: input})
	if err != nil {
		return contractx.RouterOutput{}, fmt.Errorf("%w: router invoke: %v", contractx.ErrModelInvoke, err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return contractx.RouterOutput{}, fmt.Errorf("%w: router reply is empty", contractx.ErrSchemaViolation)
	}

	content := strings.TrimSpace(msg.Content)
	if !protocolx.HasRouteMarker(content) {
		return contractx.RouterOutput{Kind: contractx.RouterDirect, Text: content}, nil
	}

	directive, err := protocolx.ParseDirective(content)
	if err != nil {
		// A malformed directive degrades to the direct path instead of
		// failing the turn.
		log.Warn().Err(err).Str("session", sessionKey).Msg("router emitted malformed directive")
		return contractx.RouterOutput{Kind: contractx.RouterDirect, Text: content}, nil
	}

	return contractx.RouterOutput{Kind: contractx.RouterForward, Directive: directive}, nil
}
