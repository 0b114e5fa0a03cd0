package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/box-office/internal/domain"
	"github.com/spec-kit/box-office/internal/events"
	"github.com/spec-kit/box-office/internal/repository"
)

func TestSellTicketSuccess(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()

	ticket, err := f.saleService().SellTicket(ctx, f.saleInput(f.promoter.ID, 2))
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusActive, ticket.Status)
	assert.Equal(t, f.promoter.ID, ticket.SellerID)
	assert.Len(t, ticket.Code, 8)
	assert.True(t, decimal.NewFromInt(100).Equal(ticket.TotalPrice), "total %s", ticket.TotalPrice)
	assert.True(t, decimal.NewFromInt(50).Equal(ticket.UnitPrice))

	// Full chain: 10% promoter, 5% team leader, 2% manager of 100.
	assert.Equal(t, "10.00", ticket.Commission.PromoterCut.StringFixed(2))
	assert.Equal(t, "5.00", ticket.Commission.TeamLeaderCut.StringFixed(2))
	assert.Equal(t, "2.00", ticket.Commission.ManagerCut.StringFixed(2))

	assert.Equal(t, 8, f.remaining(t))

	records, err := f.commissions.ListByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for _, record := range records {
		assert.Equal(t, domain.CommissionStatusPending, record.Status)
	}
}

func TestSellTicketPublishesOrgChain(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()

	dispatcher := events.NewInMemoryDispatcher()
	received := make(chan events.Event, 1)
	dispatcher.Subscribe(events.EventTicketSold, func(_ context.Context, event events.Event) error {
		received <- event
		return nil
	})

	svc := NewSaleService(SaleDependencies{
		TicketRepo:    f.tickets,
		InventoryRepo: f.inventory,
		EventRepo:     f.events,
		Org:           f.org,
		Dispatcher:    dispatcher,
		Rates:         DefaultCommissionRates(),
		Clock:         testClock,
	})

	ticket, err := svc.SellTicket(ctx, f.saleInput(f.promoter.ID, 1))
	require.NoError(t, err)

	select {
	case event := <-received:
		assert.Equal(t, ticket.ID, event.TicketID)
		payload, ok := event.Payload.(events.TicketSoldPayload)
		require.True(t, ok)
		assert.Equal(t, []string{f.promoter.ID, f.leader.ID, f.manager.ID}, payload.OrgChainIDs)
	case <-time.After(2 * time.Second):
		t.Fatal("no ticket_sold event delivered")
	}
}

func TestSellTicketRoundTripByCode(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()

	sold := f.sellOne(t)
	fetched, err := f.tickets.GetByCode(ctx, sold.Code)
	require.NoError(t, err)
	assert.Equal(t, sold.ID, fetched.ID)
	assert.Equal(t, sold.Code, fetched.Code)
	assert.True(t, sold.TotalPrice.Equal(fetched.TotalPrice))
}

func TestSellTicketValidation(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	svc := f.saleService()

	_, err := svc.SellTicket(ctx, f.saleInput(f.promoter.ID, 0))
	assert.Error(t, err)

	input := f.saleInput(f.promoter.ID, 1)
	input.Customer.Name = "   "
	_, err = svc.SellTicket(ctx, input)
	assert.Error(t, err)

	assert.Equal(t, 10, f.remaining(t), "failed validation must not consume inventory")
}

func TestSellTicketSellerChecks(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	svc := f.saleService()

	_, err := svc.SellTicket(ctx, f.saleInput("nobody", 1))
	assert.ErrorIs(t, err, domain.ErrOrgUserNotFound)

	validator := &domain.OrgUser{ID: "val-1", Name: "Vera", Email: "vera@example.com", Role: domain.OrgRoleValidator, Status: domain.OrgStatusActive}
	require.NoError(t, f.orgRepo.Create(ctx, validator))
	_, err = svc.SellTicket(ctx, f.saleInput(validator.ID, 1))
	assert.ErrorIs(t, err, domain.ErrSellerInactive)

	_, err = f.org.SetStatus(ctx, f.promoter.ID, domain.OrgStatusSuspended)
	require.NoError(t, err)
	_, err = svc.SellTicket(ctx, f.saleInput(f.promoter.ID, 1))
	assert.ErrorIs(t, err, domain.ErrSellerInactive)

	assert.Equal(t, 10, f.remaining(t))
}

func TestSellTicketInsufficientInventory(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	svc := f.saleService()

	_, err := svc.SellTicket(ctx, f.saleInput(f.promoter.ID, 11))
	assert.ErrorIs(t, err, domain.ErrInsufficientInventory)
	assert.Equal(t, 10, f.remaining(t))

	_, err = svc.SellTicket(ctx, f.saleInput(f.promoter.ID, 10))
	require.NoError(t, err)
	_, err = svc.SellTicket(ctx, f.saleInput(f.promoter.ID, 1))
	assert.ErrorIs(t, err, domain.ErrInsufficientInventory)
	assert.Equal(t, 0, f.remaining(t))
}

func TestSellTicketConcurrentNeverOversells(t *testing.T) {
	f := newSaleFixture(t)
	svc := f.saleService()

	const attempts = 40
	var successes atomic.Int32
	var wg sync.WaitGroup
	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			defer wg.Done()
			if _, err := svc.SellTicket(context.Background(), f.saleInput(f.promoter.ID, 1)); err == nil {
				successes.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(10), successes.Load())
	assert.Equal(t, 0, f.remaining(t))
}

type failingTicketRepository struct {
	repository.TicketRepository
}

func (r *failingTicketRepository) CreateWithCommissions(ctx context.Context, ticket *domain.TicketRecord, commissions []domain.CommissionRecord) error {
	return errors.New("persist failed")
}

func TestSellTicketCompensatesInventoryOnPersistFailure(t *testing.T) {
	f := newSaleFixture(t)
	svc := NewSaleService(SaleDependencies{
		TicketRepo:    &failingTicketRepository{TicketRepository: f.tickets},
		InventoryRepo: f.inventory,
		EventRepo:     f.events,
		Org:           f.org,
		Rates:         DefaultCommissionRates(),
		Clock:         testClock,
	})

	_, err := svc.SellTicket(context.Background(), f.saleInput(f.promoter.ID, 3))
	require.Error(t, err)
	assert.Equal(t, 10, f.remaining(t), "reserved units must be released after persist failure")
}

type fixedCodeGenerator struct{ code string }

func (g fixedCodeGenerator) NewCode() (string, error) { return g.code, nil }

func TestSellTicketCodeCollisionExhausted(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	svc := NewSaleService(SaleDependencies{
		TicketRepo:      f.tickets,
		InventoryRepo:   f.inventory,
		EventRepo:       f.events,
		Org:             f.org,
		Codes:           fixedCodeGenerator{code: "SAMECODE"},
		Rates:           DefaultCommissionRates(),
		MaxCodeAttempts: 3,
		Clock:           testClock,
	})

	first, err := svc.SellTicket(ctx, f.saleInput(f.promoter.ID, 1))
	require.NoError(t, err)
	assert.Equal(t, "SAMECODE", first.Code)

	_, err = svc.SellTicket(ctx, f.saleInput(f.promoter.ID, 1))
	assert.ErrorIs(t, err, domain.ErrCollisionRetryExhausted)
	assert.Equal(t, 9, f.remaining(t), "exhausted retry must release the reservation")
}

func TestSellTicketBrokenChainFailsSale(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()

	orphan := &domain.OrgUser{ID: "pr-orphan", Name: "Odd", Email: "odd@example.com", Role: domain.OrgRolePromoter, ParentID: strPtr("gone"), Status: domain.OrgStatusActive}
	require.NoError(t, f.orgRepo.Create(ctx, orphan))

	_, err := f.saleService().SellTicket(ctx, f.saleInput(orphan.ID, 1))
	assert.ErrorIs(t, err, domain.ErrDanglingReference)
	assert.Equal(t, 10, f.remaining(t), "commission on a broken chain must never be silently zeroed")
}

func TestSellTicketUnattachedSellerGetsPartialChain(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()

	solo := &domain.OrgUser{ID: "tl-solo", Name: "Sol", Email: "sol@example.com", Role: domain.OrgRoleTeamLeader, Status: domain.OrgStatusActive}
	require.NoError(t, f.orgRepo.Create(ctx, solo))

	ticket, err := f.saleService().SellTicket(ctx, f.saleInput(solo.ID, 1))
	require.NoError(t, err)
	assert.True(t, ticket.Commission.PromoterCut.IsZero())
	assert.Equal(t, "2.50", ticket.Commission.TeamLeaderCut.StringFixed(2))
	assert.True(t, ticket.Commission.ManagerCut.IsZero())
}

func TestSellTicketUnknownOffer(t *testing.T) {
	f := newSaleFixture(t)
	input := f.saleInput(f.promoter.ID, 1)
	input.TicketType = domain.TicketTypeRef{ID: "no-such-offer"}

	_, err := f.saleService().SellTicket(context.Background(), input)
	assert.ErrorIs(t, err, domain.ErrOfferNotFound)
	assert.Equal(t, 10, f.remaining(t))
}
