package hubnetwork

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/agrilink/agrilink-backend/pkg/db/models"
	"github.com/agrilink/agrilink-backend/pkg/enums"
	"github.com/agrilink/agrilink-backend/pkg/kv"
	"github.com/agrilink/agrilink-backend/pkg/logger"
)

func newTestAggregator(t *testing.T, store kv.Store) *Aggregator {
	t.Helper()
	aggregator, err := NewAggregator(context.Background(), store, logger.New(logger.Options{ServiceName: "test"}))
	if err != nil {
		t.Fatalf("NewAggregator: %v", err)
	}
	return aggregator
}

func acceptedRequest(district string) *models.OrderRequest {
	return &models.OrderRequest{
		ID:           uuid.New(),
		CustomerName: "Meera Nair",
		HubDistrict:  district,
		Status:       enums.RequestStatusAccepted,
	}
}

type staticSource struct {
	requests []models.OrderRequest
	err      error
}

func (s staticSource) ListAccepted(context.Context) ([]models.OrderRequest, error) {
	return s.requests, s.err
}

func TestOnAcceptedBucketsByDistrict(t *testing.T) {
	aggregator := newTestAggregator(t, kv.NewMemory())

	idukki := acceptedRequest("Idukki")
	wayanad := acceptedRequest("Wayanad")
	for _, request := range []*models.OrderRequest{idukki, wayanad} {
		if err := aggregator.OnAccepted(context.Background(), request); err != nil {
			t.Fatalf("OnAccepted: %v", err)
		}
	}

	records := aggregator.GetByDistrict("Idukki")
	if len(records) != 1 || records[0].RequestID != idukki.ID {
		t.Fatalf("expected one Idukki record for %s, got %v", idukki.ID, records)
	}
	if got := aggregator.GetByDistrict("Wayanad"); len(got) != 1 {
		t.Fatalf("expected one Wayanad record, got %v", got)
	}
	if got := aggregator.GetByDistrict("Ernakulam"); len(got) != 0 {
		t.Fatalf("expected empty bucket, got %v", got)
	}
}

func TestOnAcceptedIsIdempotentPerRequestID(t *testing.T) {
	aggregator := newTestAggregator(t, kv.NewMemory())
	request := acceptedRequest("Idukki")

	for i := 0; i < 3; i++ {
		if err := aggregator.OnAccepted(context.Background(), request); err != nil {
			t.Fatalf("OnAccepted: %v", err)
		}
	}

	if records := aggregator.GetByDistrict("Idukki"); len(records) != 1 {
		t.Fatalf("replayed accept must not duplicate, got %d records", len(records))
	}
}

func TestSnapshotSurvivesRestart(t *testing.T) {
	store := kv.NewMemory()
	aggregator := newTestAggregator(t, store)

	request := acceptedRequest("Idukki")
	if err := aggregator.OnAccepted(context.Background(), request); err != nil {
		t.Fatalf("OnAccepted: %v", err)
	}

	reloaded := newTestAggregator(t, store)
	records := reloaded.GetByDistrict("Idukki")
	if len(records) != 1 || records[0].RequestID != request.ID {
		t.Fatalf("expected snapshot to restore the bucket, got %v", records)
	}

	// And the restored index must stay idempotent.
	if err := reloaded.OnAccepted(context.Background(), request); err != nil {
		t.Fatalf("OnAccepted: %v", err)
	}
	if records := reloaded.GetByDistrict("Idukki"); len(records) != 1 {
		t.Fatalf("restored index duplicated a replayed accept: %v", records)
	}
}

func TestCorruptSnapshotStartsEmpty(t *testing.T) {
	store := kv.NewMemory()
	if err := store.Set(context.Background(), "hub-network-index", []byte("{not json")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	aggregator := newTestAggregator(t, store)
	if summaries := aggregator.ListDistrictSummaries(); len(summaries) != 0 {
		t.Fatalf("corrupt snapshot must start empty, got %v", summaries)
	}
}

func TestRebuildReplacesIndexWholesale(t *testing.T) {
	aggregator := newTestAggregator(t, kv.NewMemory())

	stale := acceptedRequest("Idukki")
	if err := aggregator.OnAccepted(context.Background(), stale); err != nil {
		t.Fatalf("OnAccepted: %v", err)
	}

	fresh := acceptedRequest("Wayanad")
	source := staticSource{requests: []models.OrderRequest{*fresh}}
	if err := aggregator.Rebuild(context.Background(), source); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	if records := aggregator.GetByDistrict("Idukki"); len(records) != 0 {
		t.Fatalf("rebuild must drop entries absent from the source, got %v", records)
	}
	if records := aggregator.GetByDistrict("Wayanad"); len(records) != 1 || records[0].RequestID != fresh.ID {
		t.Fatalf("rebuild must install the source's requests, got %v", records)
	}
}

func TestListDistrictSummaries(t *testing.T) {
	aggregator := newTestAggregator(t, kv.NewMemory())

	for i := 0; i < 2; i++ {
		if err := aggregator.OnAccepted(context.Background(), acceptedRequest("Idukki")); err != nil {
			t.Fatalf("OnAccepted: %v", err)
		}
	}

	summaries := aggregator.ListDistrictSummaries()
	if len(summaries) != 1 {
		t.Fatalf("expected one district summary, got %v", summaries)
	}
	if summaries[0].District != "Idukki" || summaries[0].RequestCount != 2 {
		t.Fatalf("unexpected summary %+v", summaries[0])
	}
}
