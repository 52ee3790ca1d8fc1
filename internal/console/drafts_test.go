package console

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agrilink/agrilink-backend/internal/orderrequests"
	"github.com/agrilink/agrilink-backend/pkg/kv"
)

func TestDraftRoundTrip(t *testing.T) {
	store, err := NewDraftStore(kv.NewMemory())
	if err != nil {
		t.Fatalf("NewDraftStore: %v", err)
	}

	draft := orderrequests.SubmitInput{
		CustomerID:   uuid.New(),
		CustomerName: "Meera Nair",
		ProductType:  "Cardamom",
		Quantity:     decimal.NewFromInt(50),
		PreferredHub: "Kumily Cardamom Hub",
	}
	if err := store.Save(context.Background(), draft); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, ok, err := store.Load(context.Background())
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if loaded.CustomerName != draft.CustomerName || !loaded.Quantity.Equal(draft.Quantity) {
		t.Fatalf("loaded draft does not match: %+v", loaded)
	}

	if err := store.Discard(context.Background()); err != nil {
		t.Fatalf("Discard: %v", err)
	}
	if _, ok, _ := store.Load(context.Background()); ok {
		t.Fatal("draft should be gone after discard")
	}
}

func TestLoadMissingDraft(t *testing.T) {
	store, err := NewDraftStore(kv.NewMemory())
	if err != nil {
		t.Fatalf("NewDraftStore: %v", err)
	}
	if _, ok, err := store.Load(context.Background()); ok || err != nil {
		t.Fatalf("expected no draft, got ok=%v err=%v", ok, err)
	}
}

func TestLoadCorruptDraftIsAbsent(t *testing.T) {
	backing := kv.NewMemory()
	if err := backing.Set(context.Background(), draftKey, []byte("{broken")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	store, err := NewDraftStore(backing)
	if err != nil {
		t.Fatalf("NewDraftStore: %v", err)
	}
	if _, ok, err := store.Load(context.Background()); ok || err != nil {
		t.Fatalf("corrupt draft must read as absent, got ok=%v err=%v", ok, err)
	}
}
