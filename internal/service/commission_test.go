package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/box-office/internal/domain"
)

func TestCalculateCommissionFullChain(t *testing.T) {
	chain := domain.OrgChain{
		{ID: "p1", Role: domain.OrgRolePromoter},
		{ID: "tl1", Role: domain.OrgRoleTeamLeader},
		{ID: "m1", Role: domain.OrgRoleManager},
	}
	breakdown := CalculateCommission(decimal.NewFromInt(100), chain, DefaultCommissionRates())

	assert.True(t, decimal.NewFromInt(10).Equal(breakdown.PromoterCut), "promoter cut %s", breakdown.PromoterCut)
	assert.True(t, decimal.NewFromInt(5).Equal(breakdown.TeamLeaderCut), "team leader cut %s", breakdown.TeamLeaderCut)
	assert.True(t, decimal.NewFromInt(2).Equal(breakdown.ManagerCut), "manager cut %s", breakdown.ManagerCut)
	assert.True(t, decimal.NewFromInt(17).Equal(breakdown.Total()))
}

func TestCalculateCommissionPartialChain(t *testing.T) {
	chain := domain.OrgChain{{ID: "p1", Role: domain.OrgRolePromoter}}
	breakdown := CalculateCommission(decimal.NewFromInt(100), chain, DefaultCommissionRates())

	assert.True(t, decimal.NewFromInt(10).Equal(breakdown.PromoterCut))
	assert.True(t, breakdown.TeamLeaderCut.IsZero())
	assert.True(t, breakdown.ManagerCut.IsZero())
}

func TestCalculateCommissionSellerIsManager(t *testing.T) {
	chain := domain.OrgChain{{ID: "m1", Role: domain.OrgRoleManager}}
	breakdown := CalculateCommission(decimal.NewFromInt(200), chain, DefaultCommissionRates())

	assert.True(t, breakdown.PromoterCut.IsZero())
	assert.True(t, breakdown.TeamLeaderCut.IsZero())
	assert.True(t, decimal.NewFromInt(4).Equal(breakdown.ManagerCut))
}

func TestCalculateCommissionRounding(t *testing.T) {
	chain := domain.OrgChain{{ID: "p1", Role: domain.OrgRolePromoter}}
	breakdown := CalculateCommission(decimal.NewFromFloat(33.33), chain, DefaultCommissionRates())

	// 33.33 * 0.10 = 3.333, rounded half-up to cents.
	assert.Equal(t, "3.33", breakdown.PromoterCut.StringFixed(2))
}

func TestCalculateCommissionDeterministic(t *testing.T) {
	chain := domain.OrgChain{
		{ID: "p1", Role: domain.OrgRolePromoter},
		{ID: "tl1", Role: domain.OrgRoleTeamLeader},
	}
	first := CalculateCommission(decimal.NewFromFloat(149.99), chain, DefaultCommissionRates())
	second := CalculateCommission(decimal.NewFromFloat(149.99), chain, DefaultCommissionRates())

	assert.True(t, first.PromoterCut.Equal(second.PromoterCut))
	assert.True(t, first.TeamLeaderCut.Equal(second.TeamLeaderCut))
	assert.True(t, first.ManagerCut.Equal(second.ManagerCut))
}

func TestCommissionRecordsOnePerBeneficiary(t *testing.T) {
	chain := domain.OrgChain{
		{ID: "p1", Role: domain.OrgRolePromoter},
		{ID: "tl1", Role: domain.OrgRoleTeamLeader},
		{ID: "m1", Role: domain.OrgRoleManager},
	}
	breakdown := CalculateCommission(decimal.NewFromInt(100), chain, DefaultCommissionRates())
	records := commissionRecords(chain, breakdown)

	require.Len(t, records, 3)
	byRole := map[domain.OrgRole]domain.CommissionRecord{}
	for _, record := range records {
		assert.Equal(t, domain.CommissionStatusPending, record.Status)
		byRole[record.Role] = record
	}
	assert.Equal(t, "p1", byRole[domain.OrgRolePromoter].BeneficiaryID)
	assert.Equal(t, "tl1", byRole[domain.OrgRoleTeamLeader].BeneficiaryID)
	assert.Equal(t, "m1", byRole[domain.OrgRoleManager].BeneficiaryID)
}

func TestCommissionRecordsSkipsMissingTiers(t *testing.T) {
	chain := domain.OrgChain{{ID: "p1", Role: domain.OrgRolePromoter}}
	breakdown := CalculateCommission(decimal.NewFromInt(50), chain, DefaultCommissionRates())
	records := commissionRecords(chain, breakdown)

	require.Len(t, records, 1)
	assert.Equal(t, domain.OrgRolePromoter, records[0].Role)
}
