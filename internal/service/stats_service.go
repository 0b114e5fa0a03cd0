package service

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/box-office/internal/domain"
	"github.com/spec-kit/box-office/internal/repository"
)

// StatsService computes on-demand rollups over an org node's full
// descendant subtree. No materialized counters: every call folds the
// current TicketRecord set, and identical datasets produce byte-identical
// results, which is what makes external caching of responses safe.
type StatsService struct {
	tickets repository.TicketRepository
	org     *OrgService
}

// NewStatsService constructs the service.
func NewStatsService(tickets repository.TicketRepository, org *OrgService) *StatsService {
	return &StatsService{tickets: tickets, org: org}
}

// RollupScope narrows a rollup to an event and/or time window.
type RollupScope struct {
	EventID     *string
	EventDateID *string
	From        *time.Time
	To          *time.Time
}

// EventRollupRow aggregates one (event, date) group.
type EventRollupRow struct {
	EventID     string          `json:"event_id"`
	EventDateID string          `json:"event_date_id"`
	Tickets     int             `json:"tickets"`
	Revenue     decimal.Decimal `json:"revenue"`
	Commission  decimal.Decimal `json:"commission"`
}

// TicketTypeRollupRow aggregates one canonical ticket type.
type TicketTypeRollupRow struct {
	TicketType domain.TicketTypeRef `json:"ticket_type"`
	Tickets    int                  `json:"tickets"`
	Revenue    decimal.Decimal      `json:"revenue"`
	Commission decimal.Decimal      `json:"commission"`
}

// Rollup is the full aggregation for one org node.
type Rollup struct {
	OrgNodeID       string                `json:"org_node_id"`
	TotalTickets    int                   `json:"total_tickets"`
	TotalRevenue    decimal.Decimal       `json:"total_revenue"`
	TotalCommission decimal.Decimal       `json:"total_commission"`
	PerEvent        []EventRollupRow      `json:"per_event"`
	PerTicketType   []TicketTypeRollupRow `json:"per_ticket_type"`
}

// Rollup aggregates tickets, revenue and commission for the subtree rooted
// at orgNodeID. Only ACTIVE and VALIDATED tickets count; disabled and
// cancelled ones are excluded. Org resolution failures surface rather than
// defaulting totals to zero.
func (s *StatsService) Rollup(ctx context.Context, orgNodeID string, scope RollupScope) (*Rollup, error) {
	snapshot, err := s.org.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	sellerIDs, err := snapshot.SubtreeIDs(orgNodeID)
	if err != nil {
		return nil, err
	}

	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{
		SellerIDs:   sellerIDs,
		EventID:     scope.EventID,
		EventDateID: scope.EventDateID,
		Statuses:    []domain.TicketStatus{domain.TicketStatusActive, domain.TicketStatusValidated},
		CreatedFrom: scope.From,
		CreatedTo:   scope.To,
	})
	if err != nil {
		return nil, err
	}

	result := &Rollup{
		OrgNodeID:       orgNodeID,
		TotalRevenue:    decimal.Zero,
		TotalCommission: decimal.Zero,
	}
	perEvent := map[string]*EventRollupRow{}
	perType := map[string]*TicketTypeRollupRow{}

	for i := range tickets {
		ticket := &tickets[i]
		// Ingestion already canonicalizes, but stored rows may predate
		// that; normalize again before grouping.
		typeRef := ticket.TicketType.Canonical()
		commission := ticket.Commission.Total()

		result.TotalTickets += ticket.Quantity
		result.TotalRevenue = result.TotalRevenue.Add(ticket.TotalPrice)
		result.TotalCommission = result.TotalCommission.Add(commission)

		eventKey := ticket.EventID + "|" + ticket.EventDateID
		eventRow, ok := perEvent[eventKey]
		if !ok {
			eventRow = &EventRollupRow{
				EventID:     ticket.EventID,
				EventDateID: ticket.EventDateID,
				Revenue:     decimal.Zero,
				Commission:  decimal.Zero,
			}
			perEvent[eventKey] = eventRow
		}
		eventRow.Tickets += ticket.Quantity
		eventRow.Revenue = eventRow.Revenue.Add(ticket.TotalPrice)
		eventRow.Commission = eventRow.Commission.Add(commission)

		typeRow, ok := perType[typeRef.Key()]
		if !ok {
			typeRow = &TicketTypeRollupRow{
				TicketType: typeRef,
				Revenue:    decimal.Zero,
				Commission: decimal.Zero,
			}
			perType[typeRef.Key()] = typeRow
		}
		typeRow.Tickets += ticket.Quantity
		typeRow.Revenue = typeRow.Revenue.Add(ticket.TotalPrice)
		typeRow.Commission = typeRow.Commission.Add(commission)
	}

	result.PerEvent = make([]EventRollupRow, 0, len(perEvent))
	for _, row := range perEvent {
		result.PerEvent = append(result.PerEvent, *row)
	}
	sort.Slice(result.PerEvent, func(i, j int) bool {
		if result.PerEvent[i].EventID != result.PerEvent[j].EventID {
			return result.PerEvent[i].EventID < result.PerEvent[j].EventID
		}
		return result.PerEvent[i].EventDateID < result.PerEvent[j].EventDateID
	})

	result.PerTicketType = make([]TicketTypeRollupRow, 0, len(perType))
	for _, row := range perType {
		result.PerTicketType = append(result.PerTicketType, *row)
	}
	sort.Slice(result.PerTicketType, func(i, j int) bool {
		return result.PerTicketType[i].TicketType.Key() < result.PerTicketType[j].TicketType.Key()
	})

	return result, nil
}
