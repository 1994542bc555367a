package state

import (
	"context"
	"errors"
	"strings"
	"sync"
)

var ErrInvalidSession = errors.New("session key is empty")

// Store is the conversation-history contract injected into the stages.
// Entries are created lazily on first access per key.
type Store interface {
	History(ctx context.Context, key string) ([]Turn, error)
	Append(ctx context.Context, key string, turns ...Turn) error
}

// StoreOption customizes MemoryStore.
type StoreOption func(*MemoryStore)

// WithMaxTurns caps how many turns History returns per session (most recent
// kept). Zero means unbounded.
func WithMaxTurns(n int) StoreOption {
	return func(s *MemoryStore) {
		if n > 0 {
			s.maxTurns = n
		}
	}
}

// MemoryStore keeps histories in process memory behind a mutex so
// concurrent requests sharing a session key cannot corrupt each other.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]Turn
	maxTurns int
}

func NewMemoryStore(opts ...StoreOption) *MemoryStore {
	s := &MemoryStore{
		sessions: make(map[string][]Turn),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *MemoryStore) History(ctx context.Context, key string) ([]Turn, error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrInvalidSession
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := s.sessions[key]
	if s.maxTurns > 0 && len(turns) > s.maxTurns {
		turns = turns[len(turns)-s.maxTurns:]
	}
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out, nil
}

func (s *MemoryStore) Append(ctx context.Context, key string, turns ...Turn) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidSession
	}
	if len(turns) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[key] = append(s.sessions[key], turns...)
	return nil
}
