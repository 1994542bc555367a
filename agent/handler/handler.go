// Package handler runs one conversation turn end to end: route, optionally
// dispatch a specialist, render the reply, and record the exchange.
package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	orchestratorx "github.com/igestadev/assessor/agent/agents/orchestrator"
	specialistx "github.com/igestadev/assessor/agent/agents/specialist"
	contractx "github.com/igestadev/assessor/agent/contract"
	statex "github.com/igestadev/assessor/agent/state"
	"github.com/rs/zerolog/log"
)

type Request struct {
	Unidade  string
	Gestor   string
	ChatID   string
	Mensagem string
}

type Handler struct {
	registry contractx.Registry
	store    statex.Store
}

func New(registry contractx.Registry, store statex.Store) (*Handler, error) {
	if registry == nil {
		return nil, errors.New("registry is required")
	}
	if store == nil {
		return nil, errors.New("state store is required")
	}
	return &Handler{registry: registry, store: store}, nil
}

// Handle processes a single turn. The message reaches the router byte for
// byte; only the emptiness check trims.
func (h *Handler) Handle(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.Mensagem) == "" {
		return "", fmt.Errorf("%w: message is empty", contractx.ErrValidation)
	}
	if strings.TrimSpace(req.Unidade) == "" || strings.TrimSpace(req.Gestor) == "" {
		return "", fmt.Errorf("%w: unidade and gestor are required", contractx.ErrValidation)
	}

	key := statex.SessionKey(req.Unidade, req.Gestor, req.ChatID)

	out, err := h.registry.Router().Route(ctx, key, req.Mensagem)
	if err != nil {
		log.Error().Err(err).Str("session", key).Msg("router failed")
		return "", err
	}

	var reply string
	switch out.Kind {
	case contractx.RouterForward:
		reply, err = h.dispatch(ctx, key, out.Directive, req)
		if err != nil {
			return "", err
		}
	default:
		reply = out.Text
	}

	if err := h.store.Append(ctx, key,
		statex.Turn{Role: statex.RoleUser, Text: req.Mensagem},
		statex.Turn{Role: statex.RoleAssistant, Text: reply},
	); err != nil {
		// The reply is already computed; losing one history entry must not
		// fail the turn.
		log.Warn().Err(err).Str("session", key).Msg("append history failed")
	}
	return reply, nil
}

func (h *Handler) dispatch(ctx context.Context, key string, directive contractx.Directive, req Request) (string, error) {
	spec, ok := h.registry.Specialist(directive.Route)
	if !ok {
		return "", fmt.Errorf("%w: no specialist for route=%s", contractx.ErrValidation, directive.Route)
	}

	qc := contractx.QueryContext{Unidade: req.Unidade, Gestor: req.Gestor}
	result, err := spec.Handle(ctx, key, directive, qc)
	if err != nil {
		var rawErr *specialistx.RawAnswerError
		if errors.As(err, &rawErr) && rawErr.Raw != "" {
			log.Warn().Err(err).Str("session", key).Str("route", string(directive.Route)).
				Msg("specialist reply degraded to raw text")
			return rawErr.Raw, nil
		}
		log.Error().Err(err).Str("session", key).Str("route", string(directive.Route)).
			Msg("specialist failed")
		return "", err
	}

	return orchestratorx.Present(result), nil
}
