package console

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/agrilink/agrilink-backend/internal/orderrequests"
	"github.com/agrilink/agrilink-backend/pkg/kv"
)

const draftKey = "order-request-draft"

// DraftStore persists an in-progress submission form so a console restart
// does not lose the customer's typing. Drafts are plain key-value blobs;
// discarding one that does not exist is a no-op.
type DraftStore struct {
	store kv.Store
}

// NewDraftStore wraps a kv store for draft persistence.
func NewDraftStore(store kv.Store) (*DraftStore, error) {
	if store == nil {
		return nil, fmt.Errorf("kv store required")
	}
	return &DraftStore{store: store}, nil
}

// Save overwrites the current draft.
func (d *DraftStore) Save(ctx context.Context, input orderrequests.SubmitInput) error {
	raw, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := d.store.Set(ctx, draftKey, raw); err != nil {
		return fmt.Errorf("persist draft: %w", err)
	}
	return nil
}

// Load returns the saved draft, reporting whether one exists. A corrupt
// draft is treated as absent rather than blocking the form.
func (d *DraftStore) Load(ctx context.Context) (orderrequests.SubmitInput, bool, error) {
	var input orderrequests.SubmitInput

	raw, ok, err := d.store.Get(ctx, draftKey)
	if err != nil {
		return input, false, fmt.Errorf("load draft: %w", err)
	}
	if !ok {
		return input, false, nil
	}
	if err := json.Unmarshal(raw, &input); err != nil {
		return input, false, nil
	}
	return input, true, nil
}

// Discard drops the saved draft, typically after a successful submission.
func (d *DraftStore) Discard(ctx context.Context) error {
	if err := d.store.Remove(ctx, draftKey); err != nil {
		return fmt.Errorf("discard draft: %w", err)
	}
	return nil
}
