package kv

import (
	"context"
	"testing"
)

func TestMemoryRoundTrip(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "missing"); ok || err != nil {
		t.Fatalf("expected absent key, got ok=%v err=%v", ok, err)
	}

	if err := store.Set(ctx, "k", []byte("v1")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	value, ok, err := store.Get(ctx, "k")
	if err != nil || !ok || string(value) != "v1" {
		t.Fatalf("Get = %q, %v, %v", value, ok, err)
	}

	// Mutating the returned slice must not corrupt the stored value.
	value[0] = 'X'
	value, _, _ = store.Get(ctx, "k")
	if string(value) != "v1" {
		t.Fatalf("stored value mutated: %q", value)
	}

	if err := store.Remove(ctx, "k"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "k"); ok {
		t.Fatal("key should be gone after Remove")
	}

	// Removing twice is a no-op.
	if err := store.Remove(ctx, "k"); err != nil {
		t.Fatalf("second Remove: %v", err)
	}
}
