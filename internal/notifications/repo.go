package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agrilink/agrilink-backend/pkg/db/models"
	"github.com/agrilink/agrilink-backend/pkg/enums"
	"github.com/agrilink/agrilink-backend/pkg/pagination"
)

// Repository exposes persistence helpers for durable notifications.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, notification *models.Notification) error
	List(ctx context.Context, params listNotificationsParams) ([]models.Notification, error)
	MarkRead(ctx context.Context, scope Scope, notificationID uuid.UUID, now time.Time) (markResult, error)
	MarkAllRead(ctx context.Context, scope Scope, now time.Time) (int64, error)
}

// Scope limits reads and read-state writes to one dashboard's feed: entries
// addressed to the user directly plus entries broadcast to the user's role.
type Scope struct {
	RecipientID uuid.UUID
	Role        enums.Role
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a notifications repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listNotificationsParams struct {
	Scope      Scope
	Limit      int
	UnreadOnly bool
}

type markResult struct {
	Updated bool
	Found   bool
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func scoped(query *gorm.DB, scope Scope) *gorm.DB {
	return query.Where("recipient_id = ? OR audience = ?", scope.RecipientID, scope.Role)
}

func (r *repositoryImpl) List(ctx context.Context, params listNotificationsParams) ([]models.Notification, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	query := scoped(r.db.WithContext(ctx).Model(&models.Notification{}), params.Scope)
	if params.UnreadOnly {
		query = query.Where("read_at IS NULL")
	}

	var notifications []models.Notification
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *repositoryImpl) MarkRead(ctx context.Context, scope Scope, notificationID uuid.UUID, now time.Time) (markResult, error) {
	result := scoped(r.db.WithContext(ctx).Model(&models.Notification{}), scope).
		Where("id = ? AND read_at IS NULL", notificationID).
		UpdateColumn("read_at", now)
	if result.Error != nil {
		return markResult{}, result.Error
	}

	mark := markResult{Updated: result.RowsAffected > 0}
	if result.RowsAffected > 0 {
		mark.Found = true
		return mark, nil
	}

	var count int64
	if err := scoped(r.db.WithContext(ctx).Model(&models.Notification{}), scope).
		Where("id = ?", notificationID).
		Count(&count).Error; err != nil {
		return markResult{}, err
	}
	mark.Found = count > 0
	return mark, nil
}

func (r *repositoryImpl) MarkAllRead(ctx context.Context, scope Scope, now time.Time) (int64, error) {
	result := scoped(r.db.WithContext(ctx).Model(&models.Notification{}), scope).
		Where("read_at IS NULL").
		UpdateColumn("read_at", now)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
