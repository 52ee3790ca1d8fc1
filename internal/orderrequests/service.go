package orderrequests

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agrilink/agrilink-backend/pkg/db/models"
	"github.com/agrilink/agrilink-backend/pkg/enums"
	pkgerrors "github.com/agrilink/agrilink-backend/pkg/errors"
	"github.com/agrilink/agrilink-backend/pkg/logger"
	"github.com/agrilink/agrilink-backend/pkg/types"
)

// Notifier dispatches a durable notification. Delivery is best-effort: the
// store never rolls back a transition because a dispatch failed.
type Notifier interface {
	Dispatch(ctx context.Context, notification *models.Notification) error
}

// Service owns the request lifecycle: creation in pending and the bounded
// forward-only transition graph.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*models.OrderRequest, error)
	Get(ctx context.Context, id uuid.UUID) (*models.OrderRequest, error)
	Transition(ctx context.Context, input TransitionInput) (*models.OrderRequest, error)
}

type service struct {
	repo     Repository
	notifier Notifier
	logg     *logger.Logger
}

// NewService builds the request store service.
func NewService(repo Repository, notifier Notifier, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order request repository required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, notifier: notifier, logg: logg}, nil
}

func (s *service) Submit(ctx context.Context, input SubmitInput) (*models.OrderRequest, error) {
	if problems := input.validate(); problems != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(problems)
	}

	urgency := enums.Urgency(input.Urgency)
	if urgency == "" {
		urgency = enums.UrgencyNormal
	}
	unit := strings.TrimSpace(input.Unit)
	if unit == "" {
		unit = "kg"
	}

	request := &models.OrderRequest{
		ID:            uuid.New(),
		CustomerID:    input.CustomerID,
		CustomerName:  strings.TrimSpace(input.CustomerName),
		CustomerEmail: strings.TrimSpace(input.CustomerEmail),
		CustomerPhone: strings.TrimSpace(input.CustomerPhone),
		ProductType:   strings.TrimSpace(input.ProductType),
		Grade:         enums.Grade(input.Grade),
		Quantity:      input.Quantity,
		Unit:          unit,
		Description:   strings.TrimSpace(input.Description),
		Urgency:       urgency,
		BudgetMin:     input.BudgetMin,
		BudgetMax:     input.BudgetMax,
		PreferredHub:  strings.TrimSpace(input.PreferredHub),
		HubDistrict:   ResolveDistrict(input.PreferredHub, input.HubDistrict),
		Status:        enums.RequestStatusPending,
	}

	if err := s.repo.Create(ctx, request); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order request")
	}

	s.dispatch(ctx, submittedNotification(request))
	return request, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.OrderRequest, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order request")
	}
	return request, nil
}

// Transition moves the request to the target status. Concurrent attempts on
// the same id are serialized by the guarded update: the first writer wins and
// later callers observe the post-transition state as a conflict.
func (s *service) Transition(ctx context.Context, input TransitionInput) (*models.OrderRequest, error) {
	if input.ID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	if !input.Target.IsValid() || input.Target == enums.RequestStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid target status")
	}

	current, err := s.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransitionTo(input.Target) {
		return nil, transitionConflict(current.Status, input.Target)
	}

	var response *string
	if current.Status == enums.RequestStatusPending {
		message := strings.TrimSpace(input.Message)
		if message == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "response message required").
				WithDetails(map[string]string{"message": "is required"})
		}
		response = &message
	}

	won, err := s.repo.TransitionStatus(ctx, input.ID, current.Status, input.Target, response, time.Now().UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update request status")
	}
	if !won {
		// Another reviewer got there first; re-read to report the real state.
		latest, err := s.Get(ctx, input.ID)
		if err != nil {
			return nil, err
		}
		return nil, transitionConflict(latest.Status, input.Target)
	}

	updated, err := s.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	s.dispatch(ctx, transitionNotification(updated))
	return updated, nil
}

func transitionConflict(current, target enums.RequestStatus) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "request already handled by another reviewer").
		WithDetails(map[string]string{
			"currentStatus":   string(current),
			"requestedStatus": string(target),
		})
}

// dispatch delivers a notification without letting a failure surface: spec'd
// best-effort delivery, logged only.
func (s *service) dispatch(ctx context.Context, notification *models.Notification) {
	if notification == nil {
		return
	}
	if err := s.notifier.Dispatch(ctx, notification); err != nil {
		ctx = s.logg.WithField(ctx, "notification_title", notification.Title)
		s.logg.Error(ctx, "notification dispatch failed", err)
	}
}

func submittedNotification(request *models.OrderRequest) *models.Notification {
	audience := enums.RoleAdmin
	return &models.Notification{
		Audience: &audience,
		Type:     enums.NotificationTypeInfo,
		Icon:     "inbox",
		Title:    "New custom order request",
		Message:  fmt.Sprintf("%s requested %s %s of %s (%s).", request.CustomerName, request.Quantity, request.Unit, request.ProductType, request.Grade),
		Data: types.JSONMap{
			"orderRequestId": request.ID.String(),
			"status":         string(request.Status),
		},
	}
}

func transitionNotification(request *models.OrderRequest) *models.Notification {
	recipient := request.CustomerID
	notification := &models.Notification{
		RecipientID: &recipient,
		Data: types.JSONMap{
			"orderRequestId": request.ID.String(),
			"status":         string(request.Status),
		},
	}

	switch request.Status {
	case enums.RequestStatusAccepted:
		notification.Type = enums.NotificationTypeSuccess
		notification.Icon = "check-circle"
		notification.Title = "Order request accepted"
		notification.Message = fmt.Sprintf("Your request for %s was accepted by %s.", request.ProductType, request.PreferredHub)
	case enums.RequestStatusRejected:
		notification.Type = enums.NotificationTypeWarning
		notification.Icon = "x-circle"
		notification.Title = "Order request rejected"
		notification.Message = fmt.Sprintf("Your request for %s was rejected.", request.ProductType)
	case enums.RequestStatusCompleted:
		notification.Type = enums.NotificationTypeInfo
		notification.Icon = "flag"
		notification.Title = "Order request completed"
		notification.Message = fmt.Sprintf("Your order for %s has been completed.", request.ProductType)
	default:
		return nil
	}

	if request.HubResponse != nil && *request.HubResponse != "" && request.Status != enums.RequestStatusCompleted {
		notification.Message = fmt.Sprintf("%s Hub says: %s", notification.Message, *request.HubResponse)
	}
	return notification
}
