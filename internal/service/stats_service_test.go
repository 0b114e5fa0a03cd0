package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/box-office/internal/domain"
	"github.com/spec-kit/box-office/internal/repository"
)

func (f *saleFixture) statsService() *StatsService {
	return NewStatsService(f.tickets, f.org)
}

// seedSales sells 2 units as the promoter, 1 as the team leader and 1 as the
// manager, all against the fixture's single offer at 50 apiece.
func seedSales(t *testing.T, f *saleFixture) {
	t.Helper()
	ctx := context.Background()
	svc := f.saleService()

	_, err := svc.SellTicket(ctx, f.saleInput(f.promoter.ID, 2))
	require.NoError(t, err)
	_, err = svc.SellTicket(ctx, f.saleInput(f.leader.ID, 1))
	require.NoError(t, err)
	_, err = svc.SellTicket(ctx, f.saleInput(f.manager.ID, 1))
	require.NoError(t, err)
}

func TestRollupSubtreeTotals(t *testing.T) {
	f := newSaleFixture(t)
	seedSales(t, f)
	svc := f.statsService()
	ctx := context.Background()

	manager, err := svc.Rollup(ctx, f.manager.ID, RollupScope{})
	require.NoError(t, err)
	assert.Equal(t, 4, manager.TotalTickets)
	assert.Equal(t, "200.00", manager.TotalRevenue.StringFixed(2))
	assert.Equal(t, "21.50", manager.TotalCommission.StringFixed(2))

	leader, err := svc.Rollup(ctx, f.leader.ID, RollupScope{})
	require.NoError(t, err)
	assert.Equal(t, 3, leader.TotalTickets)
	assert.Equal(t, "150.00", leader.TotalRevenue.StringFixed(2))

	promoter, err := svc.Rollup(ctx, f.promoter.ID, RollupScope{})
	require.NoError(t, err)
	assert.Equal(t, 2, promoter.TotalTickets)
	assert.Equal(t, "100.00", promoter.TotalRevenue.StringFixed(2))
}

func TestRollupAdditivity(t *testing.T) {
	f := newSaleFixture(t)
	seedSales(t, f)
	svc := f.statsService()
	ctx := context.Background()

	manager, err := svc.Rollup(ctx, f.manager.ID, RollupScope{})
	require.NoError(t, err)
	leader, err := svc.Rollup(ctx, f.leader.ID, RollupScope{})
	require.NoError(t, err)

	// The manager's own direct sales plus the leader subtree must equal the
	// manager subtree exactly.
	ownSales, err := f.tickets.ListWithFilter(ctx, repository.TicketFilter{
		SellerIDs: []string{f.manager.ID},
		Statuses:  []domain.TicketStatus{domain.TicketStatusActive, domain.TicketStatusValidated},
	})
	require.NoError(t, err)
	ownRevenue := decimal.Zero
	ownTickets := 0
	for _, ticket := range ownSales {
		ownRevenue = ownRevenue.Add(ticket.TotalPrice)
		ownTickets += ticket.Quantity
	}

	assert.Equal(t, manager.TotalTickets, leader.TotalTickets+ownTickets)
	assert.True(t, manager.TotalRevenue.Equal(leader.TotalRevenue.Add(ownRevenue)))
}

func TestRollupExcludesCancelledAndDisabled(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	sale := f.saleService()
	admin := f.ticketService()

	kept, err := sale.SellTicket(ctx, f.saleInput(f.promoter.ID, 1))
	require.NoError(t, err)
	cancelled, err := sale.SellTicket(ctx, f.saleInput(f.promoter.ID, 1))
	require.NoError(t, err)
	disabled, err := sale.SellTicket(ctx, f.saleInput(f.promoter.ID, 1))
	require.NoError(t, err)

	_, err = admin.Cancel(ctx, cancelled.ID, "adm-1")
	require.NoError(t, err)
	_, err = admin.Disable(ctx, disabled.ID, "adm-1")
	require.NoError(t, err)

	rollup, err := f.statsService().Rollup(ctx, f.promoter.ID, RollupScope{})
	require.NoError(t, err)
	assert.Equal(t, 1, rollup.TotalTickets)
	assert.True(t, rollup.TotalRevenue.Equal(kept.TotalPrice))
}

func TestRollupCountsValidatedTickets(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	sold := f.sellOne(t)

	validation := NewValidationService(f.tickets, nil, testClock, nil)
	_, err := validation.Validate(ctx, sold.Code, "val-1")
	require.NoError(t, err)

	rollup, err := f.statsService().Rollup(ctx, f.promoter.ID, RollupScope{})
	require.NoError(t, err)
	assert.Equal(t, 1, rollup.TotalTickets)
}

func TestRollupNormalizesTicketTypeForms(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()

	// Stored rows carry the type in both historical shapes; grouping must
	// land them in one row.
	bare := &domain.TicketRecord{
		EventID: f.event.ID, EventDateID: f.dateID,
		TicketType: domain.TicketTypeRef{ID: "vip"},
		Quantity:   1, UnitPrice: decimal.NewFromInt(80), TotalPrice: decimal.NewFromInt(80),
		Customer: domain.Customer{Name: "A"}, SellerID: f.promoter.ID,
		Code: "CODE0001", Status: domain.TicketStatusActive, CreatedAt: testNow,
	}
	object := &domain.TicketRecord{
		EventID: f.event.ID, EventDateID: f.dateID,
		TicketType: domain.TicketTypeRef{ID: "vip", Name: "VIP"},
		Quantity:   2, UnitPrice: decimal.NewFromInt(80), TotalPrice: decimal.NewFromInt(160),
		Customer: domain.Customer{Name: "B"}, SellerID: f.promoter.ID,
		Code: "CODE0002", Status: domain.TicketStatusActive, CreatedAt: testNow,
	}
	require.NoError(t, f.tickets.CreateWithCommissions(ctx, bare, nil))
	require.NoError(t, f.tickets.CreateWithCommissions(ctx, object, nil))

	rollup, err := f.statsService().Rollup(ctx, f.promoter.ID, RollupScope{})
	require.NoError(t, err)
	require.Len(t, rollup.PerTicketType, 1)
	row := rollup.PerTicketType[0]
	assert.Equal(t, "vip", row.TicketType.Key())
	assert.Equal(t, 3, row.Tickets)
	assert.Equal(t, "240.00", row.Revenue.StringFixed(2))
}

func TestRollupDeterministic(t *testing.T) {
	f := newSaleFixture(t)
	seedSales(t, f)
	svc := f.statsService()
	ctx := context.Background()

	first, err := svc.Rollup(ctx, f.manager.ID, RollupScope{})
	require.NoError(t, err)
	second, err := svc.Rollup(ctx, f.manager.ID, RollupScope{})
	require.NoError(t, err)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(firstJSON), string(secondJSON))
}

func TestRollupScopeFilters(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	seedSales(t, f)
	svc := f.statsService()

	eventID := f.event.ID
	scoped, err := svc.Rollup(ctx, f.manager.ID, RollupScope{EventID: &eventID})
	require.NoError(t, err)
	assert.Equal(t, 4, scoped.TotalTickets)

	other := "some-other-event"
	empty, err := svc.Rollup(ctx, f.manager.ID, RollupScope{EventID: &other})
	require.NoError(t, err)
	assert.Equal(t, 0, empty.TotalTickets)
	assert.True(t, empty.TotalRevenue.IsZero())

	cutoff := testNow.Add(-time.Hour)
	past, err := svc.Rollup(ctx, f.manager.ID, RollupScope{To: &cutoff})
	require.NoError(t, err)
	assert.Equal(t, 0, past.TotalTickets)
}

func TestRollupUnknownOrgNode(t *testing.T) {
	f := newSaleFixture(t)
	_, err := f.statsService().Rollup(context.Background(), "ghost", RollupScope{})
	assert.ErrorIs(t, err, domain.ErrOrgUserNotFound)
}
