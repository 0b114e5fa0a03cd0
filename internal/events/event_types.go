package events

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/box-office/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketSold      EventType = "ticket_sold"
	EventTicketValidated EventType = "ticket_validated"
	EventTicketDisabled  EventType = "ticket_disabled"
	EventTicketEnabled   EventType = "ticket_enabled"
	EventTicketCancelled EventType = "ticket_cancelled"
)

// Event represents a domain event emitted by services after commit.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketSoldPayload payload. OrgChainIDs routes notifications up the
// seller's ancestor chain.
type TicketSoldPayload struct {
	Code        string               `json:"code"`
	EventID     string               `json:"event_id"`
	EventDateID string               `json:"event_date_id"`
	TicketType  domain.TicketTypeRef `json:"ticket_type"`
	Quantity    int                  `json:"quantity"`
	TotalPrice  decimal.Decimal      `json:"total_price"`
	SellerID    string               `json:"seller_id"`
	OrgChainIDs []string             `json:"org_chain_ids"`
}

// TicketValidatedPayload payload.
type TicketValidatedPayload struct {
	Code        string    `json:"code"`
	ValidatorID string    `json:"validator_id"`
	ValidatedAt time.Time `json:"validated_at"`
	SellerID    string    `json:"seller_id"`
}

// TicketStatusChangedPayload covers the administrative transitions.
type TicketStatusChangedPayload struct {
	Code      string              `json:"code"`
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	SellerID  string              `json:"seller_id"`
}
