package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestSessionKeyDerivation(t *testing.T) {
	t.Parallel()

	if got := SessionKey("matriz", "carlos", "chat-1"); got != "matriz:carlos:chat-1" {
		t.Fatalf("SessionKey() = %q", got)
	}
	if got := SessionKey(" matriz ", "carlos", ""); got != "matriz:carlos:default" {
		t.Fatalf("SessionKey() with empty chat = %q", got)
	}
	if SessionKey("a", "b", "c") == SessionKey("a", "b", "d") {
		t.Fatal("distinct chat ids must not collide")
	}
}

func TestMemoryStoreLazyCreateAndOrder(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	history, err := store.History(ctx, "k")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("fresh session must be empty, got %d turns", len(history))
	}

	if err := store.Append(ctx, "k", Turn{Role: RoleUser, Text: "oi"}, Turn{Role: RoleAssistant, Text: "olá"}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := store.Append(ctx, "k", Turn{Role: RoleUser, Text: "resumo"}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	history, err = store.History(ctx, "k")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	want := []string{"oi", "olá", "resumo"}
	if len(history) != len(want) {
		t.Fatalf("len(history) = %d, want %d", len(history), len(want))
	}
	for i, text := range want {
		if history[i].Text != text {
			t.Fatalf("history[%d].Text = %q, want %q", i, history[i].Text, text)
		}
	}
}

func TestMemoryStoreEmptyKey(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	if _, err := store.History(context.Background(), "  "); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("History() error = %v, want ErrInvalidSession", err)
	}
	if err := store.Append(context.Background(), "", Turn{}); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("Append() error = %v, want ErrInvalidSession", err)
	}
}

func TestMemoryStoreMaxTurns(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(WithMaxTurns(2))
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := store.Append(ctx, "k", Turn{Role: RoleUser, Text: fmt.Sprintf("m%d", i)}); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}
	history, err := store.History(ctx, "k")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 2 || history[0].Text != "m3" || history[1].Text != "m4" {
		t.Fatalf("capped history = %+v", history)
	}
}

func TestMemoryStoreConcurrentAppend(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	const writers = 16
	const perWriter = 50
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				_ = store.Append(ctx, "shared", Turn{Role: RoleUser, Text: "x"})
			}
		}()
	}
	wg.Wait()

	history, err := store.History(ctx, "shared")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != writers*perWriter {
		t.Fatalf("len(history) = %d, want %d", len(history), writers*perWriter)
	}
}
