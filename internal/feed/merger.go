package feed

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/agrilink/agrilink-backend/pkg/enums"
	"github.com/agrilink/agrilink-backend/pkg/types"
)

// DefaultEphemeralTTL bounds how long a local toast stays in the feed.
const DefaultEphemeralTTL = 5 * time.Minute

// Entry is one element of the merged bell feed.
type Entry struct {
	ID        string                   `json:"id"`
	Title     string                   `json:"title"`
	Message   string                   `json:"message"`
	Type      enums.NotificationType   `json:"type"`
	Icon      string                   `json:"icon,omitempty"`
	CreatedAt time.Time                `json:"createdAt"`
	Read      bool                     `json:"read"`
	Origin    enums.NotificationOrigin `json:"origin"`
	Data      types.JSONMap            `json:"data,omitempty"`

	expiresAt time.Time
}

// EphemeralInput describes a locally generated toast.
type EphemeralInput struct {
	Title   string
	Message string
	Type    enums.NotificationType
	Icon    string
	Data    types.JSONMap
}

// ReadMarker flips the read state of a durable entry in the backing store.
type ReadMarker interface {
	MarkRead(ctx context.Context, id uuid.UUID) error
}

// Merger combines the durable, server-issued notification stream with local
// ephemeral toasts into one ordered, deduplicated, read-tracked feed. It is
// created at app start and torn down at logout; nothing here outlives the
// session.
type Merger struct {
	mu           sync.Mutex
	marker       ReadMarker
	now          func() time.Time
	ephemeralTTL time.Duration
	nextLocalID  uint64
	ephemeral    []Entry
	durable      map[string]Entry
}

// NewMerger builds an empty feed. The marker is required because durable
// read-state changes must round-trip through the store before taking effect.
func NewMerger(marker ReadMarker, ephemeralTTL time.Duration) (*Merger, error) {
	if marker == nil {
		return nil, fmt.Errorf("read marker required")
	}
	if ephemeralTTL <= 0 {
		ephemeralTTL = DefaultEphemeralTTL
	}
	return &Merger{
		marker:       marker,
		now:          time.Now,
		ephemeralTTL: ephemeralTTL,
		durable:      make(map[string]Entry),
	}, nil
}

// PushEphemeral adds a local toast with a monotonic local id. Ephemeral
// entries are never persisted and expire after the configured TTL.
func (m *Merger) PushEphemeral(input EphemeralInput) Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextLocalID++
	now := m.now()
	entry := Entry{
		ID:        fmt.Sprintf("local-%d", m.nextLocalID),
		Title:     input.Title,
		Message:   input.Message,
		Type:      input.Type,
		Icon:      input.Icon,
		CreatedAt: now,
		Origin:    enums.NotificationOriginEphemeral,
		Data:      input.Data,
		expiresAt: now.Add(m.ephemeralTTL),
	}
	if !entry.Type.IsValid() {
		entry.Type = enums.NotificationTypeInfo
	}
	m.ephemeral = append(m.ephemeral, entry)
	return entry
}

// ReplaceDurable swaps the durable list wholesale with the latest fetch.
// Replacing rather than patching avoids partial-update races; the most
// recently fetched version of an id wins, including its read state.
func (m *Merger) ReplaceDurable(entries []Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	durable := make(map[string]Entry, len(entries))
	for _, entry := range entries {
		entry.Origin = enums.NotificationOriginDurable
		durable[entry.ID] = entry
	}
	m.durable = durable
}

// Merge returns the combined feed ordered by createdAt descending, with at
// most one entry per durable id and expired toasts pruned.
func (m *Merger) Merge() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pruneLocked()

	merged := make([]Entry, 0, len(m.ephemeral)+len(m.durable))
	merged = append(merged, m.ephemeral...)
	for _, entry := range m.durable {
		merged = append(merged, entry)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if !merged[i].CreatedAt.Equal(merged[j].CreatedAt) {
			return merged[i].CreatedAt.After(merged[j].CreatedAt)
		}
		return merged[i].ID > merged[j].ID
	})
	return merged
}

// UnreadCount is derived from the merged list, never stored.
func (m *Merger) UnreadCount() int {
	count := 0
	for _, entry := range m.Merge() {
		if !entry.Read {
			count++
		}
	}
	return count
}

// MarkRead flips one entry. Ephemeral entries flip synchronously; durable
// entries round-trip through the store first and stay unread when that fails.
func (m *Merger) MarkRead(ctx context.Context, id string) error {
	m.mu.Lock()
	for i := range m.ephemeral {
		if m.ephemeral[i].ID == id {
			m.ephemeral[i].Read = true
			m.mu.Unlock()
			return nil
		}
	}
	entry, ok := m.durable[id]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("notification %q not in feed", id)
	}

	durableID, err := uuid.Parse(entry.ID)
	if err != nil {
		return fmt.Errorf("durable notification id %q invalid: %w", id, err)
	}
	if err := m.marker.MarkRead(ctx, durableID); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if entry, ok := m.durable[id]; ok {
		entry.Read = true
		m.durable[id] = entry
	}
	return nil
}

// MarkAllRead applies MarkRead to every known entry. Each sub-operation is
// independent; a partial failure leaves exactly the failed entries unread and
// the combined error reports every one of them.
func (m *Merger) MarkAllRead(ctx context.Context) error {
	var combined error
	for _, entry := range m.Merge() {
		if entry.Read {
			continue
		}
		if err := m.MarkRead(ctx, entry.ID); err != nil {
			combined = multierr.Append(combined, err)
		}
	}
	return combined
}

// ClearEphemeral drops every local toast.
func (m *Merger) ClearEphemeral() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ephemeral = nil
}

func (m *Merger) pruneLocked() {
	now := m.now()
	kept := m.ephemeral[:0]
	for _, entry := range m.ephemeral {
		if entry.expiresAt.After(now) {
			kept = append(kept, entry)
		}
	}
	m.ephemeral = kept
}
