package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/agrilink/agrilink-backend/pkg/db/models"
	"github.com/agrilink/agrilink-backend/pkg/enums"
	pkgerrors "github.com/agrilink/agrilink-backend/pkg/errors"
)

// Service defines notification list/read/dispatch operations.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	MarkRead(ctx context.Context, scope Scope, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, scope Scope) (int64, error)
	Dispatch(ctx context.Context, notification *models.Notification) error
}

type service struct {
	repo Repository
}

// ListParams configures a feed read for one dashboard.
type ListParams struct {
	Scope      Scope
	Limit      int
	UnreadOnly bool
}

// ListResult wraps the returned notifications.
type ListResult struct {
	Notifications []models.Notification `json:"notifications"`
}

// NewService wires notifications dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.Scope.RecipientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient id required")
	}

	rows, err := s.repo.List(ctx, listNotificationsParams{
		Scope:      params.Scope,
		Limit:      params.Limit,
		UnreadOnly: params.UnreadOnly,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	return &ListResult{Notifications: rows}, nil
}

func (s *service) MarkRead(ctx context.Context, scope Scope, notificationID uuid.UUID) error {
	if scope.RecipientID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipient id required")
	}
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	result, err := s.repo.MarkRead(ctx, scope, notificationID, time.Now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if !result.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, scope Scope) (int64, error) {
	if scope.RecipientID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "recipient id required")
	}

	updated, err := s.repo.MarkAllRead(ctx, scope, time.Now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark all notifications read")
	}
	return updated, nil
}

// Dispatch persists a durable notification. Callers treat failures as
// best-effort: a dispatch error never rolls back the action that emitted it.
func (s *service) Dispatch(ctx context.Context, notification *models.Notification) error {
	if notification == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification required")
	}
	if notification.RecipientID == nil && notification.Audience == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification recipient or audience required")
	}
	if notification.Title == "" || notification.Message == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification title and message required")
	}
	if !notification.Type.IsValid() {
		notification.Type = enums.NotificationTypeInfo
	}
	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}

	if err := s.repo.Create(ctx, notification); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDispatch, err, "persist notification")
	}
	return nil
}
