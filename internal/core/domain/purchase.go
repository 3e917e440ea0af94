package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseStatus represents the lifecycle state of a meal plan purchase.
type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "pending"
	PurchaseStatusCompleted PurchaseStatus = "completed"
	PurchaseStatusFailed    PurchaseStatus = "failed"
)

// Purchase represents a meal plan purchase awaiting or past gateway settlement.
// It is created pending at checkout time and transitions exactly once to
// completed or failed when a verified ITN arrives.
type Purchase struct {
	ID               uuid.UUID       `json:"id"`
	Email            string          `json:"email"`
	MealPlan         *string         `json:"meal_plan,omitempty"`
	Amount           decimal.Decimal `json:"amount"`
	Status           PurchaseStatus  `json:"status"`
	PaymentReference string          `json:"payment_reference,omitempty"` // gateway pf_payment_id
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// IsTerminal returns true if the purchase is in a final state.
func (p *Purchase) IsTerminal() bool {
	return p.Status == PurchaseStatusCompleted || p.Status == PurchaseStatusFailed
}
