package service

import (
	"github.com/shopspring/decimal"

	"github.com/spec-kit/box-office/internal/domain"
)

// CommissionRates holds the per-tier fractions of a sale's total price.
type CommissionRates struct {
	Promoter   decimal.Decimal
	TeamLeader decimal.Decimal
	Manager    decimal.Decimal
}

// DefaultCommissionRates returns the standard 10% / 5% / 2% split.
func DefaultCommissionRates() CommissionRates {
	return CommissionRates{
		Promoter:   decimal.NewFromFloat(0.10),
		TeamLeader: decimal.NewFromFloat(0.05),
		Manager:    decimal.NewFromFloat(0.02),
	}
}

// CalculateCommission splits totalPrice across the resolved org chain. Pure
// and deterministic: identical inputs always produce identical amounts, so
// audits can re-run it against the frozen CommissionRecord values. Tiers
// absent from the chain contribute zero.
func CalculateCommission(totalPrice decimal.Decimal, chain domain.OrgChain, rates CommissionRates) domain.CommissionBreakdown {
	breakdown := domain.CommissionBreakdown{
		PromoterCut:   decimal.Zero,
		TeamLeaderCut: decimal.Zero,
		ManagerCut:    decimal.Zero,
	}
	if chain.ByRole(domain.OrgRolePromoter) != nil {
		breakdown.PromoterCut = totalPrice.Mul(rates.Promoter).Round(2)
	}
	if chain.ByRole(domain.OrgRoleTeamLeader) != nil {
		breakdown.TeamLeaderCut = totalPrice.Mul(rates.TeamLeader).Round(2)
	}
	if chain.ByRole(domain.OrgRoleManager) != nil {
		breakdown.ManagerCut = totalPrice.Mul(rates.Manager).Round(2)
	}
	return breakdown
}

// commissionRecords expands a breakdown into one pending record per
// benefiting chain member.
func commissionRecords(chain domain.OrgChain, breakdown domain.CommissionBreakdown) []domain.CommissionRecord {
	var records []domain.CommissionRecord
	add := func(role domain.OrgRole, amount decimal.Decimal) {
		member := chain.ByRole(role)
		if member == nil {
			return
		}
		records = append(records, domain.CommissionRecord{
			BeneficiaryID: member.ID,
			Role:          role,
			Amount:        amount,
			Status:        domain.CommissionStatusPending,
		})
	}
	add(domain.OrgRolePromoter, breakdown.PromoterCut)
	add(domain.OrgRoleTeamLeader, breakdown.TeamLeaderCut)
	add(domain.OrgRoleManager, breakdown.ManagerCut)
	return records
}
