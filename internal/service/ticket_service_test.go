package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/box-office/internal/domain"
)

func (f *saleFixture) ticketService() *TicketService {
	return NewTicketService(TicketDependencies{
		TicketRepo:     f.tickets,
		InventoryRepo:  f.inventory,
		CommissionRepo: f.commissions,
		Clock:          testClock,
	})
}

func TestDisableEnableRoundTrip(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	sold := f.sellOne(t)
	svc := f.ticketService()

	disabled, err := svc.Disable(ctx, sold.ID, "adm-1")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusDisabled, disabled.Status)

	// Disabling keeps the units committed against inventory.
	assert.Equal(t, 9, f.remaining(t))

	enabled, err := svc.Enable(ctx, sold.ID, "adm-1")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusActive, enabled.Status)
}

func TestDisableRejectsNonActive(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	sold := f.sellOne(t)
	svc := f.ticketService()

	validation := NewValidationService(f.tickets, nil, testClock, nil)
	_, err := validation.Validate(ctx, sold.Code, "val-1")
	require.NoError(t, err)

	_, err = svc.Disable(ctx, sold.ID, "adm-1")
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestEnableRejectsActive(t *testing.T) {
	f := newSaleFixture(t)
	sold := f.sellOne(t)

	_, err := f.ticketService().Enable(context.Background(), sold.ID, "adm-1")
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestCancelReleasesInventoryAndCommissions(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	svc := f.ticketService()

	sold, err := f.saleService().SellTicket(ctx, f.saleInput(f.promoter.ID, 3))
	require.NoError(t, err)
	require.Equal(t, 7, f.remaining(t))

	cancelled, err := svc.Cancel(ctx, sold.ID, "adm-1")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)
	assert.True(t, cancelled.CancelledAt.Equal(testNow))

	assert.Equal(t, 10, f.remaining(t), "cancelled units return to the pool")

	records, err := f.commissions.ListByTicket(ctx, sold.ID)
	require.NoError(t, err)
	require.NotEmpty(t, records)
	for _, record := range records {
		assert.Equal(t, domain.CommissionStatusCancelled, record.Status)
	}
}

func TestCancelDisabledTicket(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	sold := f.sellOne(t)
	svc := f.ticketService()

	_, err := svc.Disable(ctx, sold.ID, "adm-1")
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, sold.ID, "adm-1")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusCancelled, cancelled.Status)
	assert.Equal(t, 10, f.remaining(t))
}

func TestCancelRejectsValidated(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	sold := f.sellOne(t)

	validation := NewValidationService(f.tickets, nil, testClock, nil)
	_, err := validation.Validate(ctx, sold.Code, "val-1")
	require.NoError(t, err)

	_, err = f.ticketService().Cancel(ctx, sold.ID, "adm-1")
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	assert.Equal(t, 9, f.remaining(t), "a used ticket never hands units back")
}

func TestCancelledTicketCannotRevalidate(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	sold := f.sellOne(t)

	_, err := f.ticketService().Cancel(ctx, sold.ID, "adm-1")
	require.NoError(t, err)

	validation := NewValidationService(f.tickets, nil, testClock, nil)
	_, err = validation.Validate(ctx, sold.Code, "val-1")
	assert.ErrorIs(t, err, domain.ErrTicketCancelled)
}

func TestGetByCodeNormalizes(t *testing.T) {
	f := newSaleFixture(t)
	sold := f.sellOne(t)

	ticket, err := f.ticketService().GetByCode(context.Background(), "  "+sold.Code+"  ")
	require.NoError(t, err)
	assert.Equal(t, sold.ID, ticket.ID)
}
