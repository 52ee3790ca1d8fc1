package reviewer

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/agrilink/agrilink-backend/internal/orderrequests"
	"github.com/agrilink/agrilink-backend/pkg/db/models"
	"github.com/agrilink/agrilink-backend/pkg/enums"
	pkgerrors "github.com/agrilink/agrilink-backend/pkg/errors"
	"github.com/agrilink/agrilink-backend/pkg/logger"
	"github.com/agrilink/agrilink-backend/pkg/pagination"
)

// Decision is the high-level call a reviewer can make on a pending request.
type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

// ParseDecision accepts both the command form (accept/reject) and the target
// status form (accepted/rejected) used by older dashboard builds.
func ParseDecision(value string) (Decision, error) {
	switch value {
	case string(DecisionAccept), string(enums.RequestStatusAccepted):
		return DecisionAccept, nil
	case string(DecisionReject), string(enums.RequestStatusRejected):
		return DecisionReject, nil
	}
	return "", fmt.Errorf("invalid decision %q", value)
}

func (d Decision) targetStatus() enums.RequestStatus {
	if d == DecisionAccept {
		return enums.RequestStatusAccepted
	}
	return enums.RequestStatusRejected
}

// AcceptListener observes requests entering accepted, e.g. to refresh the
// hub-network district index. Listener failures never undo the transition;
// the index is a derived cache and can always be rebuilt.
type AcceptListener interface {
	OnAccepted(ctx context.Context, request *models.OrderRequest) error
}

// Service is the role-scoped query/command surface for reviewer consoles.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Respond(ctx context.Context, input RespondInput) (*models.OrderRequest, error)
	Complete(ctx context.Context, id uuid.UUID) (*models.OrderRequest, error)
}

// ListParams narrows a request listing for one dashboard.
type ListParams struct {
	Role       enums.Role
	ActorID    uuid.UUID
	Status     string
	District   string
	Query      string
	Pagination pagination.Params
}

// ListResult is the gateway's listing contract. CountsByStatus always covers
// the unfiltered population (scoped only by role visibility) so status tabs
// show accurate badges.
type ListResult struct {
	Items          []models.OrderRequest         `json:"items"`
	Total          int64                         `json:"total"`
	CountsByStatus map[enums.RequestStatus]int64 `json:"countsByStatus"`
}

// RespondInput carries a reviewer decision on a pending request.
type RespondInput struct {
	ID       uuid.UUID
	Decision Decision
	Message  string
}

type service struct {
	store    orderrequests.Service
	repo     orderrequests.Repository
	onAccept AcceptListener
	logg     *logger.Logger
}

// NewService builds the reviewer gateway. The accept listener is optional.
func NewService(store orderrequests.Service, repo orderrequests.Repository, onAccept AcceptListener, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("order request service required")
	}
	if repo == nil {
		return nil, fmt.Errorf("order request repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{store: store, repo: repo, onAccept: onAccept, logg: logg}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	filters := orderrequests.ListFilters{
		District: params.District,
		Query:    params.Query,
	}

	if params.Status != "" {
		status, err := enums.ParseRequestStatus(params.Status)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter").
				WithDetails(map[string]string{"status": "must be one of pending, accepted, rejected, completed"})
		}
		filters.Status = status
	}

	// Customers only ever see their own requests; reviewers see everything.
	if !params.Role.IsReviewer() {
		if params.ActorID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "customer identity missing")
		}
		filters.CustomerID = params.ActorID
	}

	items, total, err := s.repo.List(ctx, filters, params.Pagination)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list order requests")
	}

	counts, err := s.repo.CountsByStatus(ctx, filters.CustomerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count order requests")
	}

	return &ListResult{
		Items:          items,
		Total:          total,
		CountsByStatus: counts,
	}, nil
}

func (s *service) Respond(ctx context.Context, input RespondInput) (*models.OrderRequest, error) {
	updated, err := s.store.Transition(ctx, orderrequests.TransitionInput{
		ID:      input.ID,
		Target:  input.Decision.targetStatus(),
		Message: input.Message,
	})
	if err != nil {
		return nil, err
	}

	if updated.Status == enums.RequestStatusAccepted {
		s.notifyAccepted(ctx, updated)
	}
	return updated, nil
}

func (s *service) Complete(ctx context.Context, id uuid.UUID) (*models.OrderRequest, error) {
	return s.store.Transition(ctx, orderrequests.TransitionInput{
		ID:     id,
		Target: enums.RequestStatusCompleted,
	})
}

func (s *service) notifyAccepted(ctx context.Context, request *models.OrderRequest) {
	if s.onAccept == nil {
		return
	}
	if err := s.onAccept.OnAccepted(ctx, request); err != nil {
		ctx = s.logg.WithField(ctx, "order_request_id", request.ID.String())
		s.logg.Error(ctx, "hub network index update failed", err)
	}
}
