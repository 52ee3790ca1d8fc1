package orderrequests

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agrilink/agrilink-backend/pkg/enums"
)

// MinDescriptionLength is the shortest accepted request description.
const MinDescriptionLength = 20

// SubmitInput carries everything a customer provides when filing a request.
type SubmitInput struct {
	CustomerID    uuid.UUID       `json:"customerId" validate:"required"`
	CustomerName  string          `json:"customerName" validate:"required"`
	CustomerEmail string          `json:"customerEmail" validate:"required"`
	CustomerPhone string          `json:"customerPhone" validate:"required"`
	ProductType   string          `json:"productType" validate:"required"`
	Grade         string          `json:"grade" validate:"required"`
	Quantity      decimal.Decimal `json:"quantity"`
	Unit          string          `json:"unit"`
	Description   string          `json:"description" validate:"required"`
	Urgency       string          `json:"urgency"`
	BudgetMin     decimal.Decimal `json:"budgetMin"`
	BudgetMax     decimal.Decimal `json:"budgetMax"`
	PreferredHub  string          `json:"preferredHub" validate:"required"`
	HubDistrict   string          `json:"hubDistrict"`
}

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^\+?[0-9][0-9\s-]{8,14}$`)
)

// validate checks every field and returns a field→message map so the form
// boundary can surface all problems at once.
func (in SubmitInput) validate() map[string]string {
	problems := map[string]string{}

	if in.CustomerID == uuid.Nil {
		problems["customerId"] = "is required"
	}
	if strings.TrimSpace(in.CustomerName) == "" {
		problems["customerName"] = "is required"
	}
	if !emailRe.MatchString(strings.TrimSpace(in.CustomerEmail)) {
		problems["customerEmail"] = "must be a valid email"
	}
	if !phoneRe.MatchString(strings.TrimSpace(in.CustomerPhone)) {
		problems["customerPhone"] = "must be a valid phone number"
	}
	if strings.TrimSpace(in.ProductType) == "" {
		problems["productType"] = "is required"
	}
	if !enums.Grade(in.Grade).IsValid() {
		problems["grade"] = "must be a valid grade"
	}
	if in.Quantity.Sign() <= 0 {
		problems["quantity"] = "must be greater than zero"
	}
	if len(strings.TrimSpace(in.Description)) < MinDescriptionLength {
		problems["description"] = "must be at least 20 characters"
	}
	if in.Urgency != "" && !enums.Urgency(in.Urgency).IsValid() {
		problems["urgency"] = "must be one of normal, urgent, immediate"
	}
	if in.BudgetMin.Sign() <= 0 {
		problems["budgetMin"] = "must be greater than zero"
	}
	if in.BudgetMax.Sign() <= 0 {
		problems["budgetMax"] = "must be greater than zero"
	} else if in.BudgetMin.Sign() > 0 && in.BudgetMax.LessThan(in.BudgetMin) {
		problems["budgetMax"] = "must be greater than or equal to budgetMin"
	}
	if strings.TrimSpace(in.PreferredHub) == "" {
		problems["preferredHub"] = "is required"
	}

	if len(problems) == 0 {
		return nil
	}
	return problems
}

// TransitionInput carries a reviewer's decision on a request.
type TransitionInput struct {
	ID      uuid.UUID
	Target  enums.RequestStatus
	Message string
}
