package conversation

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)

	state, err := store.Get(ctx, 1)
	if err != nil || state != StateIdle {
		t.Fatalf("Get() on empty store = %q, %v", state, err)
	}

	if err := store.Set(ctx, 1, StateAwaitingPromocode); err != nil {
		t.Fatal(err)
	}

	if state, _ := store.Get(ctx, 1); state != StateAwaitingPromocode {
		t.Errorf("Get() = %q, want %q", state, StateAwaitingPromocode)
	}
	if state, _ := store.Get(ctx, 2); state != StateIdle {
		t.Errorf("state leaked to another user: %q", state)
	}

	if err := store.Clear(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if state, _ := store.Get(ctx, 1); state != StateIdle {
		t.Errorf("Get() after Clear() = %q", state)
	}
}

func TestMemoryStoreExpires(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(20 * time.Millisecond)

	if err := store.Set(ctx, 1, StateAwaitingPromocode); err != nil {
		t.Fatal(err)
	}

	time.Sleep(50 * time.Millisecond)

	if state, _ := store.Get(ctx, 1); state != StateIdle {
		t.Errorf("state did not expire: %q", state)
	}
}

func TestKey(t *testing.T) {
	if got := key(42); got != "conversation:42" {
		t.Errorf("key() = %q", got)
	}
}
