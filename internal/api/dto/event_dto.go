package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateEventRequest payload.
type CreateEventRequest struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Dates       []EventDatePayload   `json:"dates"`
}

// EventDatePayload describes one date and its offers.
type EventDatePayload struct {
	StartsAt    time.Time            `json:"starts_at"`
	TicketTypes []TicketOfferPayload `json:"ticket_types"`
	TableTypes  []TableOfferPayload  `json:"table_types"`
}

// TicketOfferPayload describes a ticket tier.
type TicketOfferPayload struct {
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	TotalQuantity int             `json:"total_quantity"`
}

// TableOfferPayload describes a table tier.
type TableOfferPayload struct {
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Seats         int             `json:"seats"`
	TotalQuantity int             `json:"total_quantity"`
}

// EventResponse representation.
type EventResponse struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Dates       []EventDateResponse `json:"dates"`
	CreatedAt   time.Time           `json:"created_at"`
}

// EventDateResponse representation.
type EventDateResponse struct {
	ID          string               `json:"id"`
	StartsAt    time.Time            `json:"starts_at"`
	TicketTypes []OfferResponse      `json:"ticket_types"`
	TableTypes  []TableOfferResponse `json:"table_types"`
}

// OfferResponse representation.
type OfferResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	TotalQuantity int             `json:"total_quantity"`
	Remaining     *int            `json:"remaining,omitempty"`
}

// TableOfferResponse representation.
type TableOfferResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Seats         int             `json:"seats"`
	TotalQuantity int             `json:"total_quantity"`
	Remaining     *int            `json:"remaining,omitempty"`
}
