package orderrequests

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/agrilink/agrilink-backend/pkg/db/models"
	"github.com/agrilink/agrilink-backend/pkg/enums"
	pkgerrors "github.com/agrilink/agrilink-backend/pkg/errors"
	"github.com/agrilink/agrilink-backend/pkg/logger"
	"github.com/agrilink/agrilink-backend/pkg/pagination"
)

type fakeRequestRepo struct {
	requests map[uuid.UUID]*models.OrderRequest

	transitionWins bool
	transitionErr  error
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{
		requests:       map[uuid.UUID]*models.OrderRequest{},
		transitionWins: true,
	}
}

func (f *fakeRequestRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRequestRepo) Create(_ context.Context, request *models.OrderRequest) error {
	copied := *request
	f.requests[request.ID] = &copied
	return nil
}

func (f *fakeRequestRepo) FindByID(_ context.Context, id uuid.UUID) (*models.OrderRequest, error) {
	request, ok := f.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *request
	return &copied, nil
}

func (f *fakeRequestRepo) List(context.Context, ListFilters, pagination.Params) ([]models.OrderRequest, int64, error) {
	return nil, 0, nil
}

func (f *fakeRequestRepo) CountsByStatus(context.Context, uuid.UUID) (map[enums.RequestStatus]int64, error) {
	return nil, nil
}

func (f *fakeRequestRepo) TransitionStatus(_ context.Context, id uuid.UUID, from, to enums.RequestStatus, response *string, now time.Time) (bool, error) {
	if f.transitionErr != nil {
		return false, f.transitionErr
	}
	if !f.transitionWins {
		return false, nil
	}
	request, ok := f.requests[id]
	if !ok {
		return false, nil
	}
	request.Status = to
	if from == enums.RequestStatusPending {
		request.HubResponse = response
		request.RespondedAt = &now
	}
	return true, nil
}

type fakeNotifier struct {
	dispatched []*models.Notification
	err        error
}

func (f *fakeNotifier) Dispatch(_ context.Context, notification *models.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.dispatched = append(f.dispatched, notification)
	return nil
}

func validSubmitInput() SubmitInput {
	return SubmitInput{
		CustomerID:    uuid.New(),
		CustomerName:  "Meera Nair",
		CustomerEmail: "meera@example.com",
		CustomerPhone: "+91 98470 12345",
		ProductType:   "Cardamom",
		Grade:         string(enums.GradeA),
		Quantity:      decimal.NewFromInt(50),
		Description:   "Green cardamom pods for the festival season bulk order",
		BudgetMin:     decimal.NewFromInt(800),
		BudgetMax:     decimal.NewFromInt(1000),
		PreferredHub:  "Kumily Cardamom Hub",
	}
}

func newTestService(t *testing.T, repo Repository, notifier Notifier) Service {
	t.Helper()
	svc, err := NewService(repo, notifier, logger.New(logger.Options{ServiceName: "test"}))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestSubmitStartsPendingAndNotifiesReviewers(t *testing.T) {
	repo := newFakeRequestRepo()
	notifier := &fakeNotifier{}
	svc := newTestService(t, repo, notifier)

	created, err := svc.Submit(context.Background(), validSubmitInput())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if created.Status != enums.RequestStatusPending {
		t.Fatalf("expected pending status, got %s", created.Status)
	}
	if created.HubDistrict != "Idukki" {
		t.Fatalf("expected Kumily hub to resolve to Idukki, got %q", created.HubDistrict)
	}
	if created.Unit != "kg" {
		t.Fatalf("expected default unit kg, got %q", created.Unit)
	}
	if created.Urgency != enums.UrgencyNormal {
		t.Fatalf("expected default urgency normal, got %s", created.Urgency)
	}

	if len(notifier.dispatched) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifier.dispatched))
	}
	notification := notifier.dispatched[0]
	if notification.Audience == nil || *notification.Audience != enums.RoleAdmin {
		t.Fatalf("expected admin audience notification, got %+v", notification.Audience)
	}
}

func TestSubmitValidationEnumeratesEveryBadField(t *testing.T) {
	svc := newTestService(t, newFakeRequestRepo(), &fakeNotifier{})

	input := validSubmitInput()
	input.CustomerEmail = "not-an-email"
	input.BudgetMin = decimal.NewFromInt(1000)
	input.BudgetMax = decimal.NewFromInt(800)
	input.Description = "too short"

	_, err := svc.Submit(context.Background(), input)
	if err == nil {
		t.Fatal("expected validation error")
	}

	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %v", err)
	}

	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field map details, got %T", typed.Details())
	}
	for _, field := range []string{"customerEmail", "budgetMax", "description"} {
		if _, present := details[field]; !present {
			t.Fatalf("expected %q in validation details, got %v", field, details)
		}
	}
	if _, present := details["budgetMin"]; present {
		t.Fatalf("budgetMin is valid on its own, details should key the relation on budgetMax: %v", details)
	}
}

func TestSubmitFailedDispatchDoesNotFailSubmission(t *testing.T) {
	repo := newFakeRequestRepo()
	notifier := &fakeNotifier{err: pkgerrors.New(pkgerrors.CodeDispatch, "boom")}
	svc := newTestService(t, repo, notifier)

	created, err := svc.Submit(context.Background(), validSubmitInput())
	if err != nil {
		t.Fatalf("Submit should succeed despite dispatch failure: %v", err)
	}
	if _, ok := repo.requests[created.ID]; !ok {
		t.Fatal("request was not persisted")
	}
}

func TestTransitionAcceptRequiresMessage(t *testing.T) {
	repo := newFakeRequestRepo()
	svc := newTestService(t, repo, &fakeNotifier{})

	created, err := svc.Submit(context.Background(), validSubmitInput())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	_, err = svc.Transition(context.Background(), TransitionInput{ID: created.ID, Target: enums.RequestStatusAccepted})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for missing message, got %v", err)
	}
}

func TestTransitionAcceptedNotifiesCustomerWithHubMessage(t *testing.T) {
	repo := newFakeRequestRepo()
	notifier := &fakeNotifier{}
	svc := newTestService(t, repo, notifier)

	created, err := svc.Submit(context.Background(), validSubmitInput())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	updated, err := svc.Transition(context.Background(), TransitionInput{
		ID:      created.ID,
		Target:  enums.RequestStatusAccepted,
		Message: "We will process your order.",
	})
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if updated.Status != enums.RequestStatusAccepted {
		t.Fatalf("expected accepted, got %s", updated.Status)
	}
	if updated.HubResponse == nil || *updated.HubResponse != "We will process your order." {
		t.Fatalf("expected hub response recorded, got %+v", updated.HubResponse)
	}

	// Submission notification + transition notification.
	if len(notifier.dispatched) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(notifier.dispatched))
	}
	notification := notifier.dispatched[1]
	if notification.RecipientID == nil || *notification.RecipientID != created.CustomerID {
		t.Fatalf("transition notification should target the customer, got %+v", notification.RecipientID)
	}
	if notification.Type != enums.NotificationTypeSuccess {
		t.Fatalf("expected success notification, got %s", notification.Type)
	}
}

func TestTransitionFromTerminalStatusConflicts(t *testing.T) {
	repo := newFakeRequestRepo()
	svc := newTestService(t, repo, &fakeNotifier{})

	created, err := svc.Submit(context.Background(), validSubmitInput())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := svc.Transition(context.Background(), TransitionInput{
		ID: created.ID, Target: enums.RequestStatusRejected, Message: "Out of stock this month.",
	}); err != nil {
		t.Fatalf("Transition: %v", err)
	}

	_, err = svc.Transition(context.Background(), TransitionInput{
		ID: created.ID, Target: enums.RequestStatusAccepted, Message: "Changed my mind.",
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}

	details, ok := pkgerrors.As(err).Details().(map[string]string)
	if !ok || details["currentStatus"] != string(enums.RequestStatusRejected) {
		t.Fatalf("conflict should report the authoritative current status, got %v", details)
	}
}

func TestTransitionLosingTheRaceReportsLatestState(t *testing.T) {
	repo := newFakeRequestRepo()
	svc := newTestService(t, repo, &fakeNotifier{})

	created, err := svc.Submit(context.Background(), validSubmitInput())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	// The guarded update misses: another reviewer moved the row between our
	// read and our write.
	repo.transitionWins = false
	repo.requests[created.ID].Status = enums.RequestStatusAccepted

	_, err = svc.Transition(context.Background(), TransitionInput{
		ID: created.ID, Target: enums.RequestStatusRejected, Message: "Too late.",
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
}
