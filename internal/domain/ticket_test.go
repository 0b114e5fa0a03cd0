package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		name    string
		from    TicketStatus
		to      TicketStatus
		allowed bool
	}{
		{"active to validated", TicketStatusActive, TicketStatusValidated, true},
		{"active to disabled", TicketStatusActive, TicketStatusDisabled, true},
		{"active to cancelled", TicketStatusActive, TicketStatusCancelled, true},
		{"disabled to active", TicketStatusDisabled, TicketStatusActive, true},
		{"disabled to cancelled", TicketStatusDisabled, TicketStatusCancelled, true},
		{"disabled to validated", TicketStatusDisabled, TicketStatusValidated, false},
		{"validated is terminal", TicketStatusValidated, TicketStatusActive, false},
		{"validated cannot cancel", TicketStatusValidated, TicketStatusCancelled, false},
		{"cancelled is terminal", TicketStatusCancelled, TicketStatusActive, false},
		{"cancelled cannot validate", TicketStatusCancelled, TicketStatusValidated, false},
		{"no self transition", TicketStatusActive, TicketStatusActive, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, CanTransition(tc.from, tc.to))
		})
	}
}

func TestCommissionBreakdownTotal(t *testing.T) {
	breakdown := CommissionBreakdown{
		PromoterCut:   decimal.NewFromFloat(10),
		TeamLeaderCut: decimal.NewFromFloat(5),
		ManagerCut:    decimal.NewFromFloat(2),
	}
	assert.True(t, decimal.NewFromFloat(17).Equal(breakdown.Total()))
}
