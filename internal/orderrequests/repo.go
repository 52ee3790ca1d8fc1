package orderrequests

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agrilink/agrilink-backend/pkg/db/models"
	"github.com/agrilink/agrilink-backend/pkg/enums"
	"github.com/agrilink/agrilink-backend/pkg/pagination"
)

// Repository exposes persistence helpers for order requests.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, request *models.OrderRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.OrderRequest, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.OrderRequest, int64, error)
	CountsByStatus(ctx context.Context, customerID uuid.UUID) (map[enums.RequestStatus]int64, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to enums.RequestStatus, response *string, now time.Time) (bool, error)
}

// ListFilters narrows a request listing. Zero values mean "no filter".
// CustomerID is the role-scoping filter: set for customer dashboards, empty
// for reviewer consoles.
type ListFilters struct {
	Status     enums.RequestStatus
	District   string
	Query      string
	CustomerID uuid.UUID
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an order request repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, request *models.OrderRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.OrderRequest, error) {
	var request models.OrderRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func applyFilters(query *gorm.DB, filters ListFilters) *gorm.DB {
	if filters.CustomerID != uuid.Nil {
		query = query.Where("customer_id = ?", filters.CustomerID)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.District != "" {
		query = query.Where("hub_district = ?", filters.District)
	}
	if q := strings.TrimSpace(filters.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("lower(customer_name) LIKE ? OR lower(CAST(id AS TEXT)) LIKE ?", like, like)
	}
	return query
}

func (r *repositoryImpl) List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.OrderRequest, int64, error) {
	params = params.Normalize()
	query := applyFilters(r.db.WithContext(ctx).Model(&models.OrderRequest{}), filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var requests []models.OrderRequest
	err := query.
		Order("created_at DESC, id DESC").
		Limit(params.Limit).
		Offset(params.Offset()).
		Find(&requests).Error
	if err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

// CountsByStatus tallies the whole population (scoped only by customer when
// set) so status tabs show accurate badges regardless of active filters.
func (r *repositoryImpl) CountsByStatus(ctx context.Context, customerID uuid.UUID) (map[enums.RequestStatus]int64, error) {
	query := r.db.WithContext(ctx).Model(&models.OrderRequest{})
	if customerID != uuid.Nil {
		query = query.Where("customer_id = ?", customerID)
	}

	var rows []struct {
		Status enums.RequestStatus
		Total  int64
	}
	if err := query.Select("status, COUNT(*) AS total").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := map[enums.RequestStatus]int64{
		enums.RequestStatusPending:   0,
		enums.RequestStatusAccepted:  0,
		enums.RequestStatusRejected:  0,
		enums.RequestStatusCompleted: 0,
	}
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

// TransitionStatus performs the guarded status move. The WHERE clause pins
// the expected current status, so under concurrent reviewers exactly one
// update wins and the loser sees zero rows affected.
func (r *repositoryImpl) TransitionStatus(ctx context.Context, id uuid.UUID, from, to enums.RequestStatus, response *string, now time.Time) (bool, error) {
	updates := map[string]any{
		"status":     to,
		"updated_at": now,
	}
	if from == enums.RequestStatusPending {
		updates["hub_response"] = response
		updates["responded_at"] = now
	}

	result := r.db.WithContext(ctx).
		Model(&models.OrderRequest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
