package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agrilink/agrilink-backend/pkg/db/models"
	"github.com/agrilink/agrilink-backend/pkg/enums"
	pkgerrors "github.com/agrilink/agrilink-backend/pkg/errors"
)

type fakeNotificationsRepo struct {
	created   []*models.Notification
	createErr error

	markResult markResult
	markErr    error
	markedID   uuid.UUID
}

func (f *fakeNotificationsRepo) WithTx(*gorm.DB) Repository {
	return f
}

func (f *fakeNotificationsRepo) Create(_ context.Context, notification *models.Notification) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, notification)
	return nil
}

func (f *fakeNotificationsRepo) List(context.Context, listNotificationsParams) ([]models.Notification, error) {
	return nil, nil
}

func (f *fakeNotificationsRepo) MarkRead(_ context.Context, _ Scope, notificationID uuid.UUID, _ time.Time) (markResult, error) {
	f.markedID = notificationID
	return f.markResult, f.markErr
}

func (f *fakeNotificationsRepo) MarkAllRead(context.Context, Scope, time.Time) (int64, error) {
	return 0, nil
}

func TestDispatchFillsDefaults(t *testing.T) {
	repo := &fakeNotificationsRepo{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	recipient := uuid.New()
	notification := &models.Notification{
		RecipientID: &recipient,
		Title:       "Request accepted",
		Message:     "Your cardamom request was accepted by Kumily Cardamom Hub.",
		Type:        enums.NotificationType("shiny"),
	}
	if err := svc.Dispatch(context.Background(), notification); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if len(repo.created) != 1 {
		t.Fatalf("expected one persisted notification, got %d", len(repo.created))
	}
	created := repo.created[0]
	if created.ID == uuid.Nil {
		t.Fatal("expected generated id")
	}
	if created.Type != enums.NotificationTypeInfo {
		t.Fatalf("unknown type must fall back to info, got %s", created.Type)
	}
}

func TestDispatchRequiresAddressing(t *testing.T) {
	svc, _ := NewService(&fakeNotificationsRepo{})

	err := svc.Dispatch(context.Background(), &models.Notification{
		Title:   "orphan",
		Message: "no recipient and no audience",
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDispatchWrapsPersistenceFailures(t *testing.T) {
	repo := &fakeNotificationsRepo{createErr: errors.New("connection reset")}
	svc, _ := NewService(repo)

	audience := enums.RoleAdmin
	err := svc.Dispatch(context.Background(), &models.Notification{
		Audience: &audience,
		Title:    "New custom order request",
		Message:  "Meera Nair requested 50 kg of Cardamom.",
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeDispatch) {
		t.Fatalf("expected dispatch error, got %v", err)
	}
}

func TestMarkReadTranslatesRepoOutcomes(t *testing.T) {
	scope := Scope{RecipientID: uuid.New(), Role: enums.RoleCustomer}
	notificationID := uuid.New()

	repo := &fakeNotificationsRepo{markResult: markResult{Found: true, Updated: true}}
	svc, _ := NewService(repo)
	if err := svc.MarkRead(context.Background(), scope, notificationID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if repo.markedID != notificationID {
		t.Fatalf("marked wrong notification: %s", repo.markedID)
	}

	// Already-read is idempotent success; missing is not-found.
	repo.markResult = markResult{Found: true, Updated: false}
	if err := svc.MarkRead(context.Background(), scope, notificationID); err != nil {
		t.Fatalf("second MarkRead should be a no-op, got %v", err)
	}

	repo.markResult = markResult{}
	err := svc.MarkRead(context.Background(), scope, notificationID)
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestMarkReadValidatesScope(t *testing.T) {
	svc, _ := NewService(&fakeNotificationsRepo{})

	err := svc.MarkRead(context.Background(), Scope{}, uuid.New())
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for empty scope, got %v", err)
	}

	err = svc.MarkRead(context.Background(), Scope{RecipientID: uuid.New()}, uuid.Nil)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for nil id, got %v", err)
	}
}
