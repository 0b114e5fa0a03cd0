package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Event is a sellable happening with one or more dates.
type Event struct {
	ID          string
	Name        string
	Description string
	Dates       []EventDate
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EventDate is one occurrence of an event offering its own inventory.
type EventDate struct {
	ID          string
	EventID     string
	StartsAt    time.Time
	TicketTypes []TicketTypeOffer
	TableTypes  []TableTypeOffer
}

// TicketTypeOffer describes a ticket tier on sale for a date.
// TotalQuantity is fixed at creation.
type TicketTypeOffer struct {
	ID            string
	EventDateID   string
	Name          string
	Price         decimal.Decimal
	TotalQuantity int
}

// TableTypeOffer describes a table tier on sale for a date. A table offer
// shares the inventory keyspace with ticket offers.
type TableTypeOffer struct {
	ID            string
	EventDateID   string
	Name          string
	Price         decimal.Decimal
	Seats         int
	TotalQuantity int
}

// TicketTypeRef is the canonical tagged form of a ticket type reference.
// Upstream data carries the type inconsistently as either a bare identifier
// string or an {id, name} object; UnmarshalJSON accepts both so every
// component past ingestion sees one shape.
type TicketTypeRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ticketTypeObject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UnmarshalJSON accepts "general" as well as {"id":"general","name":"General"}.
func (r *TicketTypeRef) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, `"`) {
		var bare string
		if err := json.Unmarshal(data, &bare); err != nil {
			return err
		}
		r.ID = strings.TrimSpace(bare)
		r.Name = ""
		return nil
	}
	var obj ticketTypeObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("ticket type must be a string or an {id,name} object: %w", err)
	}
	r.ID = strings.TrimSpace(obj.ID)
	r.Name = strings.TrimSpace(obj.Name)
	return nil
}

// Canonical returns the reference with a non-empty ID, falling back to the
// display name when only a name was supplied.
func (r TicketTypeRef) Canonical() TicketTypeRef {
	if r.ID == "" {
		r.ID = r.Name
	}
	return r
}

// Key is the grouping key used by rollups.
func (r TicketTypeRef) Key() string {
	return r.Canonical().ID
}
