package hubnetwork

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agrilink/agrilink-backend/pkg/db/models"
	"github.com/agrilink/agrilink-backend/pkg/enums"
	"github.com/agrilink/agrilink-backend/pkg/kv"
	"github.com/agrilink/agrilink-backend/pkg/logger"
)

const snapshotKey = "hub-network-index"

// Record is the per-request summary stored in a district bucket.
type Record struct {
	RequestID    uuid.UUID           `json:"requestId"`
	CustomerName string              `json:"customerName"`
	OrderDate    time.Time           `json:"orderDate"`
	TotalAmount  decimal.Decimal     `json:"totalAmount"`
	Status       enums.RequestStatus `json:"status"`
}

// Summary rolls a district bucket up for reporting dashboards.
type Summary struct {
	District     string          `json:"district"`
	RequestCount int             `json:"requestCount"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
}

// RequestSource lists every accepted request, used to rebuild the index.
type RequestSource interface {
	ListAccepted(ctx context.Context) ([]models.OrderRequest, error)
}

// Aggregator groups accepted requests by hub district. Its state is a derived
// cache of the request store: the kv snapshot only saves a rebuild on restart
// and can be flushed at any time.
type Aggregator struct {
	mu      sync.Mutex
	store   kv.Store
	logg    *logger.Logger
	buckets map[string][]Record
	seen    map[uuid.UUID]string
}

// NewAggregator builds the index, loading any previous snapshot. A corrupt or
// missing snapshot starts empty; callers rebuild from the store when needed.
func NewAggregator(ctx context.Context, store kv.Store, logg *logger.Logger) (*Aggregator, error) {
	if store == nil {
		return nil, fmt.Errorf("kv store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}

	a := &Aggregator{
		store:   store,
		logg:    logg,
		buckets: make(map[string][]Record),
		seen:    make(map[uuid.UUID]string),
	}

	raw, ok, err := store.Get(ctx, snapshotKey)
	if err != nil {
		logg.Error(ctx, "hub network snapshot load failed", err)
		return a, nil
	}
	if !ok {
		return a, nil
	}

	var snapshot map[string][]Record
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		logg.Error(ctx, "hub network snapshot corrupt, starting empty", err)
		return a, nil
	}
	a.buckets = snapshot
	for district, records := range snapshot {
		for _, record := range records {
			a.seen[record.RequestID] = district
		}
	}
	return a, nil
}

// OnAccepted appends the request to its district bucket. Idempotent: a request
// id already indexed anywhere is left untouched.
func (a *Aggregator) OnAccepted(ctx context.Context, request *models.OrderRequest) error {
	if request == nil {
		return fmt.Errorf("request required")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, indexed := a.seen[request.ID]; indexed {
		return nil
	}

	district := request.HubDistrict
	a.buckets[district] = append(a.buckets[district], recordFromRequest(request))
	a.seen[request.ID] = district

	return a.persistLocked(ctx)
}

// GetByDistrict returns the bucket's records in insertion order.
func (a *Aggregator) GetByDistrict(district string) []Record {
	a.mu.Lock()
	defer a.mu.Unlock()

	records := a.buckets[district]
	copied := make([]Record, len(records))
	copy(copied, records)
	return copied
}

// ListDistrictSummaries returns one summary per non-empty district, in no
// particular order.
func (a *Aggregator) ListDistrictSummaries() []Summary {
	a.mu.Lock()
	defer a.mu.Unlock()

	summaries := make([]Summary, 0, len(a.buckets))
	for district, records := range a.buckets {
		if len(records) == 0 {
			continue
		}
		total := decimal.Zero
		for _, record := range records {
			total = total.Add(record.TotalAmount)
		}
		summaries = append(summaries, Summary{
			District:     district,
			RequestCount: len(records),
			TotalAmount:  total,
		})
	}
	return summaries
}

// Rebuild replays every accepted request from the source and replaces the
// index wholesale, repairing a lost or inconsistent cache.
func (a *Aggregator) Rebuild(ctx context.Context, source RequestSource) error {
	if source == nil {
		return fmt.Errorf("request source required")
	}

	accepted, err := source.ListAccepted(ctx)
	if err != nil {
		return fmt.Errorf("list accepted requests: %w", err)
	}

	buckets := make(map[string][]Record)
	seen := make(map[uuid.UUID]string)
	for i := range accepted {
		request := &accepted[i]
		if _, indexed := seen[request.ID]; indexed {
			continue
		}
		buckets[request.HubDistrict] = append(buckets[request.HubDistrict], recordFromRequest(request))
		seen[request.ID] = request.HubDistrict
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.buckets = buckets
	a.seen = seen
	return a.persistLocked(ctx)
}

func (a *Aggregator) persistLocked(ctx context.Context) error {
	raw, err := json.Marshal(a.buckets)
	if err != nil {
		return fmt.Errorf("encode hub network snapshot: %w", err)
	}
	if err := a.store.Set(ctx, snapshotKey, raw); err != nil {
		return fmt.Errorf("persist hub network snapshot: %w", err)
	}
	return nil
}

func recordFromRequest(request *models.OrderRequest) Record {
	return Record{
		RequestID:    request.ID,
		CustomerName: request.CustomerName,
		OrderDate:    request.CreatedAt,
		TotalAmount:  decimal.Zero,
		Status:       request.Status,
	}
}
