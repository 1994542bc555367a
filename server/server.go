// Package server exposes the conversation handler and the chat history
// lookup over HTTP. It is thin glue: decode, dispatch, encode.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	contractx "github.com/igestadev/assessor/agent/contract"
	handlerx "github.com/igestadev/assessor/agent/handler"
	statex "github.com/igestadev/assessor/agent/state"
	"github.com/rs/zerolog/log"
)

// TurnHandler processes one conversation turn.
type TurnHandler interface {
	Handle(ctx context.Context, req handlerx.Request) (string, error)
}

// HistoryFinder retrieves persisted chat entries.
type HistoryFinder interface {
	Find(ctx context.Context, unidade, cargo, idUser, idChat string) ([]statex.ChatEntry, error)
}

type chatRequest struct {
	Usuario string `json:"usuario"`
	Gestor  string `json:"gestor"`
	IDChat  string `json:"id_chat"`
}

type Server struct {
	turns   TurnHandler
	history HistoryFinder
	mux     *http.ServeMux
}

func New(turns TurnHandler, history HistoryFinder) (*Server, error) {
	if turns == nil {
		return nil, errors.New("turn handler is required")
	}

	s := &Server{turns: turns, history: history, mux: http.NewServeMux()}
	s.mux.HandleFunc("POST /{unidade}/chat", s.handleChat)
	s.mux.HandleFunc("GET /historico/{unidade}/{cargo}/{id_user}/{id_chat}", s.handleHistorico)
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Info().Str("addr", addr).Msg("http server listening")
	return srv.ListenAndServe()
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "Dados não fornecidos ou formato inválido!",
		})
		return
	}
	if strings.TrimSpace(req.Usuario) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "A mensagem do usuário está vazia!",
		})
		return
	}

	// Mint an id when the caller starts a thread without one; echoing it
	// back lets the client keep the conversation going.
	chatID := strings.TrimSpace(req.IDChat)
	if chatID == "" {
		chatID = statex.NewChatID()
	}

	resposta, err := s.turns.Handle(r.Context(), handlerx.Request{
		Unidade:  r.PathValue("unidade"),
		Gestor:   req.Gestor,
		ChatID:   chatID,
		Mensagem: req.Usuario,
	})
	if err != nil {
		if errors.Is(err, contractx.ErrValidation) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		log.Error().Err(err).Str("unidade", r.PathValue("unidade")).Msg("chat turn failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Erro ao processar a solicitação.",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"resposta": resposta, "id_chat": chatID})
}

func (s *Server) handleHistorico(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Erro ao conectar ao banco de dados.",
		})
		return
	}

	entries, err := s.history.Find(r.Context(),
		r.PathValue("unidade"),
		r.PathValue("cargo"),
		r.PathValue("id_user"),
		r.PathValue("id_chat"),
	)
	if err != nil {
		if errors.Is(err, statex.ErrHistoryNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error": "Nenhum histórico encontrado.",
			})
			return
		}
		log.Error().Err(err).Msg("history lookup failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Erro ao buscar o histórico.",
		})
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Warn().Err(err).Msg("encode response failed")
	}
}
