package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CommissionStatus tracks payout state; amounts themselves are immutable.
type CommissionStatus string

const (
	CommissionStatusPending   CommissionStatus = "PENDING"
	CommissionStatusPaid      CommissionStatus = "PAID"
	CommissionStatusCancelled CommissionStatus = "CANCELLED"
)

// CommissionRecord is derived once from a TicketRecord at sale time, one row
// per benefiting tier. The amount is never recomputed when the org
// assignment later changes.
type CommissionRecord struct {
	ID            string
	TicketID      string
	BeneficiaryID string
	Role          OrgRole
	Amount        decimal.Decimal
	Status        CommissionStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
