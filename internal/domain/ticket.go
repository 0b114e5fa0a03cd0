package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TicketStatus enumerates lifecycle states for sold tickets.
type TicketStatus string

const (
	TicketStatusActive    TicketStatus = "ACTIVE"
	TicketStatusValidated TicketStatus = "VALIDATED"
	TicketStatusDisabled  TicketStatus = "DISABLED"
	TicketStatusCancelled TicketStatus = "CANCELLED"
)

// Customer captures the buyer contact embedded in a ticket.
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// CommissionBreakdown holds the per-tier amounts frozen at sale time.
type CommissionBreakdown struct {
	PromoterCut   decimal.Decimal `json:"promoter_cut"`
	TeamLeaderCut decimal.Decimal `json:"team_leader_cut"`
	ManagerCut    decimal.Decimal `json:"manager_cut"`
}

// Total returns the sum of all tier cuts.
func (b CommissionBreakdown) Total() decimal.Decimal {
	return b.PromoterCut.Add(b.TeamLeaderCut).Add(b.ManagerCut)
}

// TicketRecord is the aggregate for a committed sale. Records are never
// physically deleted; cancellation is a status.
type TicketRecord struct {
	ID          string
	EventID     string
	EventDateID string
	TicketType  TicketTypeRef
	Quantity    int
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
	Customer    Customer
	SellerID    string
	Code        string
	Status      TicketStatus
	Commission  CommissionBreakdown
	ValidatorID *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ValidatedAt *time.Time
	CancelledAt *time.Time
}

var allowedTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusActive:    {TicketStatusValidated, TicketStatusDisabled, TicketStatusCancelled},
	TicketStatusDisabled:  {TicketStatusActive, TicketStatusCancelled},
	TicketStatusValidated: {},
	TicketStatusCancelled: {},
}

// CanTransition consults the transition table. Validated and cancelled are
// terminal; there is no implicit reversal.
func CanTransition(current, next TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}
