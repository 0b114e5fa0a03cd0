package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/box-office/internal/domain"
)

// CreateSaleRequest payload. TicketType is raw because upstream clients
// send it either as a bare string or as an {id,name} object; the domain
// type normalizes it.
type CreateSaleRequest struct {
	EventID     string          `json:"event_id"`
	EventDateID string          `json:"event_date_id"`
	TicketType  json.RawMessage `json:"ticket_type"`
	Quantity    int             `json:"quantity"`
	Customer    CustomerPayload `json:"customer"`
}

// CustomerPayload carries buyer contact details.
type CustomerPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// ValidateRequest payload; Code may itself be a structured scan payload.
type ValidateRequest struct {
	Code string `json:"code"`
}

// TicketResponse is the full ticket representation.
type TicketResponse struct {
	ID          string               `json:"id"`
	EventID     string               `json:"event_id"`
	EventDateID string               `json:"event_date_id"`
	TicketType  domain.TicketTypeRef `json:"ticket_type"`
	Quantity    int                  `json:"quantity"`
	UnitPrice   decimal.Decimal      `json:"unit_price"`
	TotalPrice  decimal.Decimal      `json:"total_price"`
	Customer    CustomerPayload      `json:"customer"`
	SellerID    string               `json:"seller_id"`
	Code        string               `json:"code"`
	Status      domain.TicketStatus  `json:"status"`
	Commission  CommissionPayload    `json:"commission"`
	ValidatorID *string              `json:"validator_id,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	ValidatedAt *time.Time           `json:"validated_at,omitempty"`
	CancelledAt *time.Time           `json:"cancelled_at,omitempty"`
}

// CommissionPayload mirrors the frozen breakdown.
type CommissionPayload struct {
	PromoterCut   decimal.Decimal `json:"promoter_cut"`
	TeamLeaderCut decimal.Decimal `json:"team_leader_cut"`
	ManagerCut    decimal.Decimal `json:"manager_cut"`
}

// ValidationResponse reports a successful gate scan.
type ValidationResponse struct {
	Accepted bool           `json:"accepted"`
	Ticket   TicketResponse `json:"ticket"`
}
