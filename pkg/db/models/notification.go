package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/agrilink/agrilink-backend/pkg/enums"
	"github.com/agrilink/agrilink-backend/pkg/types"
)

// Notification stores durable in-app notification payloads. An entry is
// addressed either to a single recipient or broadcast to a whole role's
// dashboards; exactly one of RecipientID/Audience is set.
type Notification struct {
	ID          uuid.UUID              `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	RecipientID *uuid.UUID             `gorm:"column:recipient_id;type:uuid;index" json:"recipientId,omitempty"`
	Audience    *enums.Role            `gorm:"column:audience;type:text;index" json:"audience,omitempty"`
	Type        enums.NotificationType `gorm:"column:type;type:text;not null" json:"type"`
	Icon        string                 `gorm:"column:icon;type:text" json:"icon,omitempty"`
	Title       string                 `gorm:"column:title;type:text;not null" json:"title"`
	Message     string                 `gorm:"column:message;type:text;not null" json:"message"`
	Data        types.JSONMap          `gorm:"column:data;type:jsonb;serializer:json" json:"data,omitempty"`
	ReadAt      *time.Time             `gorm:"column:read_at" json:"readAt,omitempty"`
	CreatedAt   time.Time              `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

// Read reports whether the entry has been marked read.
func (n Notification) Read() bool {
	return n.ReadAt != nil
}
