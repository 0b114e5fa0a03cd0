package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/box-office/internal/domain"
	"github.com/spec-kit/box-office/internal/repository"
)

var testNow = time.Date(2026, 6, 15, 20, 0, 0, 0, time.UTC)

func testClock() time.Time { return testNow }

func strPtr(s string) *string { return &s }

// saleFixture wires the in-memory repositories with a small seeded org
// (manager -> team leader -> promoter), one event date and one ticket type
// offer with 10 units of inventory.
type saleFixture struct {
	store       *repository.MemoryStore
	tickets     repository.TicketRepository
	inventory   repository.InventoryRepository
	events      repository.EventRepository
	orgRepo     repository.OrgRepository
	commissions repository.CommissionRepository
	org         *OrgService

	manager  *domain.OrgUser
	leader   *domain.OrgUser
	promoter *domain.OrgUser

	event  *domain.Event
	dateID string
	offer  *domain.TicketTypeOffer
}

func newSaleFixture(t *testing.T) *saleFixture {
	t.Helper()
	ctx := context.Background()

	store := repository.NewMemoryStore()
	f := &saleFixture{
		store:       store,
		tickets:     repository.NewMemoryTicketRepository(store),
		inventory:   repository.NewMemoryInventoryRepository(store),
		events:      repository.NewMemoryEventRepository(store),
		orgRepo:     repository.NewMemoryOrgRepository(store),
		commissions: repository.NewMemoryCommissionRepository(store),
	}
	f.org = NewOrgService(f.orgRepo, 4)

	f.manager = &domain.OrgUser{ID: "mgr-1", Name: "Mara", Email: "mara@example.com", Role: domain.OrgRoleManager, Status: domain.OrgStatusActive}
	f.leader = &domain.OrgUser{ID: "tl-1", Name: "Lena", Email: "lena@example.com", Role: domain.OrgRoleTeamLeader, ParentID: strPtr("mgr-1"), Status: domain.OrgStatusActive}
	f.promoter = &domain.OrgUser{ID: "pr-1", Name: "Pau", Email: "pau@example.com", Role: domain.OrgRolePromoter, ParentID: strPtr("tl-1"), Status: domain.OrgStatusActive}
	for _, user := range []*domain.OrgUser{f.manager, f.leader, f.promoter} {
		require.NoError(t, f.orgRepo.Create(ctx, user))
	}

	f.event = &domain.Event{
		Name: "Summer Night",
		Dates: []domain.EventDate{{
			StartsAt: testNow.Add(24 * time.Hour),
			TicketTypes: []domain.TicketTypeOffer{{
				Name:          "General",
				Price:         decimal.NewFromInt(50),
				TotalQuantity: 10,
			}},
		}},
	}
	require.NoError(t, f.events.Create(ctx, f.event))
	f.dateID = f.event.Dates[0].ID
	f.offer = &f.event.Dates[0].TicketTypes[0]
	require.NoError(t, f.inventory.Init(ctx, f.dateID, f.offer.ID, f.offer.TotalQuantity))

	return f
}

func (f *saleFixture) saleService() *SaleService {
	return NewSaleService(SaleDependencies{
		TicketRepo:    f.tickets,
		InventoryRepo: f.inventory,
		EventRepo:     f.events,
		Org:           f.org,
		Rates:         DefaultCommissionRates(),
		Clock:         testClock,
	})
}

func (f *saleFixture) saleInput(sellerID string, quantity int) SaleInput {
	return SaleInput{
		EventID:     f.event.ID,
		EventDateID: f.dateID,
		TicketType:  domain.TicketTypeRef{ID: f.offer.ID},
		Quantity:    quantity,
		Customer:    domain.Customer{Name: "Kim Buyer", Email: "kim@example.com"},
		SellerID:    sellerID,
	}
}

func (f *saleFixture) remaining(t *testing.T) int {
	t.Helper()
	remaining, err := f.inventory.Remaining(context.Background(), f.dateID, f.offer.ID)
	require.NoError(t, err)
	return remaining
}

func (f *saleFixture) sellOne(t *testing.T) *domain.TicketRecord {
	t.Helper()
	ticket, err := f.saleService().SellTicket(context.Background(), f.saleInput(f.promoter.ID, 1))
	require.NoError(t, err)
	return ticket
}
