package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/box-office/internal/domain"
)

func TestNormalizeCode(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"bare code", "abc123", "ABC123"},
		{"trims whitespace", "  abc123  ", "ABC123"},
		{"already upper", "ABC123", "ABC123"},
		{"json code field", `{"code":"abc123"}`, "ABC123"},
		{"json ticket_code field", `{"ticket_code":"xyz789"}`, "XYZ789"},
		{"json prefers code", `{"code":"aaa","ticket_code":"bbb"}`, "AAA"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeCode(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	t.Run("empty rejected", func(t *testing.T) {
		_, err := NormalizeCode("   ")
		assert.Error(t, err)
	})
	t.Run("unreadable json rejected", func(t *testing.T) {
		_, err := NormalizeCode(`{"code":`)
		assert.Error(t, err)
	})
	t.Run("json without code rejected", func(t *testing.T) {
		_, err := NormalizeCode(`{"other":"x"}`)
		assert.Error(t, err)
	})
}

func TestValidateSuccess(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	sold := f.sellOne(t)

	svc := NewValidationService(f.tickets, nil, testClock, nil)
	validated, err := svc.Validate(ctx, sold.Code, "val-1")
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusValidated, validated.Status)
	require.NotNil(t, validated.ValidatorID)
	assert.Equal(t, "val-1", *validated.ValidatorID)
	require.NotNil(t, validated.ValidatedAt)
	assert.True(t, validated.ValidatedAt.Equal(testNow))
}

func TestValidateCaseInsensitive(t *testing.T) {
	f := newSaleFixture(t)
	sold := f.sellOne(t)

	svc := NewValidationService(f.tickets, nil, testClock, nil)
	_, err := svc.Validate(context.Background(), strings.ToLower(sold.Code), "val-1")
	assert.NoError(t, err)
}

func TestValidateExactlyOnce(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	sold := f.sellOne(t)
	svc := NewValidationService(f.tickets, nil, testClock, nil)

	_, err := svc.Validate(ctx, sold.Code, "val-1")
	require.NoError(t, err)

	_, err = svc.Validate(ctx, sold.Code, "val-2")
	assert.ErrorIs(t, err, domain.ErrTicketAlreadyValidated)

	// The winning validator's attribution is untouched by the replay.
	current, err := f.tickets.GetByID(ctx, sold.ID)
	require.NoError(t, err)
	require.NotNil(t, current.ValidatorID)
	assert.Equal(t, "val-1", *current.ValidatorID)
}

func TestValidateConcurrentSingleWinner(t *testing.T) {
	f := newSaleFixture(t)
	sold := f.sellOne(t)
	svc := NewValidationService(f.tickets, nil, testClock, nil)

	const scans = 25
	var successes, alreadyValidated atomic.Int32
	var wg sync.WaitGroup
	wg.Add(scans)
	for i := 0; i < scans; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.Validate(context.Background(), sold.Code, "val-gate")
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, domain.ErrTicketAlreadyValidated):
				alreadyValidated.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
	assert.Equal(t, int32(scans-1), alreadyValidated.Load())
}

func TestValidateFailurePrecedence(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	svc := NewValidationService(f.tickets, nil, testClock, nil)

	t.Run("unknown code", func(t *testing.T) {
		_, err := svc.Validate(ctx, "NOPE1234", "val-1")
		assert.ErrorIs(t, err, domain.ErrTicketNotFound)
	})

	t.Run("disabled ticket", func(t *testing.T) {
		sold := f.sellOne(t)
		applied, err := f.tickets.TransitionStatus(ctx, sold.ID, domain.TicketStatusActive, domain.TicketStatusDisabled, testNow)
		require.NoError(t, err)
		require.True(t, applied)

		_, err = svc.Validate(ctx, sold.Code, "val-1")
		assert.ErrorIs(t, err, domain.ErrTicketDisabled)
	})

	t.Run("cancelled ticket", func(t *testing.T) {
		sold := f.sellOne(t)
		applied, err := f.tickets.TransitionStatus(ctx, sold.ID, domain.TicketStatusActive, domain.TicketStatusCancelled, testNow)
		require.NoError(t, err)
		require.True(t, applied)

		_, err = svc.Validate(ctx, sold.Code, "val-1")
		assert.ErrorIs(t, err, domain.ErrTicketCancelled)
	})
}

func TestValidateJSONScanPayload(t *testing.T) {
	f := newSaleFixture(t)
	sold := f.sellOne(t)
	svc := NewValidationService(f.tickets, nil, testClock, nil)

	_, err := svc.Validate(context.Background(), `{"code":"`+sold.Code+`"}`, "val-1")
	assert.NoError(t, err)
}
