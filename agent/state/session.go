package state

import (
	"strings"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry of a conversation history. Order is chronological and
// semantically significant; histories are append-only.
type Turn struct {
	Role Role
	Text string
}

// SessionKey derives a per-conversation key from the caller identifiers.
// Every caller dimension participates so distinct users never share a
// history thread.
func SessionKey(unidade, gestor, chatID string) string {
	unidade = strings.TrimSpace(unidade)
	gestor = strings.TrimSpace(gestor)
	chatID = strings.TrimSpace(chatID)
	if chatID == "" {
		chatID = "default"
	}
	return unidade + ":" + gestor + ":" + chatID
}

// NewChatID mints a chat id for callers that did not supply one.
func NewChatID() string {
	return uuid.NewString()
}
