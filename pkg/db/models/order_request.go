package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agrilink/agrilink-backend/pkg/enums"
)

// OrderRequest is a customer-submitted custom order awaiting reviewer action.
// Customer and product fields are immutable after creation; only the reviewer
// transition path mutates status, hub response and updated_at.
type OrderRequest struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	CustomerID    uuid.UUID           `gorm:"column:customer_id;type:uuid;not null;index" json:"customerId"`
	CustomerName  string              `gorm:"column:customer_name;type:text;not null" json:"customerName"`
	CustomerEmail string              `gorm:"column:customer_email;type:text;not null" json:"customerEmail"`
	CustomerPhone string              `gorm:"column:customer_phone;type:text;not null" json:"customerPhone"`
	ProductType   string              `gorm:"column:product_type;type:text;not null" json:"productType"`
	Grade         enums.Grade         `gorm:"column:grade;type:text;not null" json:"grade"`
	Quantity      decimal.Decimal     `gorm:"column:quantity;type:numeric;not null" json:"quantity"`
	Unit          string              `gorm:"column:unit;type:text;not null;default:'kg'" json:"unit"`
	Description   string              `gorm:"column:description;type:text;not null" json:"description"`
	Urgency       enums.Urgency       `gorm:"column:urgency;type:text;not null;default:'normal'" json:"urgency"`
	BudgetMin     decimal.Decimal     `gorm:"column:budget_min;type:numeric;not null" json:"budgetMin"`
	BudgetMax     decimal.Decimal     `gorm:"column:budget_max;type:numeric;not null" json:"budgetMax"`
	PreferredHub  string              `gorm:"column:preferred_hub;type:text;not null" json:"preferredHub"`
	HubDistrict   string              `gorm:"column:hub_district;type:text;not null;index" json:"hubDistrict"`
	Status        enums.RequestStatus `gorm:"column:status;type:text;not null;default:'pending';index" json:"status"`
	HubResponse   *string             `gorm:"column:hub_response;type:text" json:"hubResponse,omitempty"`
	RespondedAt   *time.Time          `gorm:"column:responded_at" json:"respondedAt,omitempty"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
