package simulator

import (
	"github.com/shopspring/decimal"

	"card-fee-simulator/internal/models"
)

// IsEligible applies the requested filters to a (terminal, plan) pair.
// A nil criteria set always passes.
func IsEligible(offer *models.TerminalOffer, plan *models.PricingPlan, criteria *models.FilterCriteria) bool {
	if criteria == nil {
		return true
	}

	if criteria.NoMonthlyFee && !isFeeFree(offer, plan) {
		return false
	}
	if criteria.Ecommerce && !offer.Ecommerce {
		return false
	}
	if criteria.MagStripe && !offer.MagStripe {
		return false
	}
	if criteria.Contactless && !offer.Contactless {
		return false
	}
	if criteria.Chip && !offer.Chip {
		return false
	}
	// "sem fio": the terminal must work without a physical cable.
	if criteria.Wireless && offer.RequiresWire {
		return false
	}
	if criteria.PJ && !offer.SupportsPJ {
		return false
	}
	if criteria.PF && !offer.SupportsPF {
		return false
	}
	if criteria.WiFi && !offer.HasConnectivity(models.ConnectivityWiFi) {
		return false
	}
	if criteria.PrintsReceipt && !offer.PrintsReceipt {
		return false
	}
	if criteria.NoPhone && offer.RequiresPhone {
		return false
	}
	if criteria.MealVoucher && !offer.MealVoucher {
		return false
	}

	return true
}

// isFeeFree reports whether the pair carries no monthly fee. A controle plan always
// counts as paid unless the terminal is explicitly flagged fee-free.
func isFeeFree(offer *models.TerminalOffer, plan *models.PricingPlan) bool {
	if offer.FeeFree {
		return true
	}
	if plan.IsControle() {
		return false
	}
	return offer.MonthlyFee.IsZero()
}

// monthlyFee returns the nominal monthly fee shown for the pair, before any waiver.
func monthlyFee(offer *models.TerminalOffer, plan *models.PricingPlan) decimal.Decimal {
	if offer.FeeFree {
		return decimal.Zero
	}
	if plan.IsControle() && len(plan.Tiers) > 0 && plan.Tiers[0].Price != nil {
		return *plan.Tiers[0].Price
	}
	return offer.MonthlyFee
}
