package simulator

import (
	"github.com/shopspring/decimal"

	"card-fee-simulator/internal/models"
	"card-fee-simulator/internal/money"
)

// maxWarrantyYears bounds the warranty used for amortization; larger values are treated as unset.
const maxWarrantyYears = 100

// amortizationMonths returns the months over which the equipment price is spread.
func amortizationMonths(warrantyYears int) int64 {
	if warrantyYears <= 0 || warrantyYears >= maxWarrantyYears {
		return 12
	}
	return int64(warrantyYears) * 12
}

// equipmentCost spreads the (promotional) equipment price over the warranty period.
func equipmentCost(c money.Context, offer *models.TerminalOffer) (decimal.Decimal, error) {
	return c.Div(offer.EquipmentPrice(), decimal.NewFromInt(amortizationMonths(offer.WarrantyYears)))
}

// rentalCost returns the monthly rental owed at the given revenue (major units).
//
// A conditional rate charges the shortfall below its revenue threshold. Otherwise the
// nominal monthly fee applies, waived once revenue reaches the terminal's waiver threshold.
func rentalCost(c money.Context, offer *models.TerminalOffer, plan *models.PricingPlan, revenue decimal.Decimal) decimal.Decimal {
	if plan.ConditionalRate != nil && plan.ConditionalThreshold != nil &&
		revenue.LessThan(*plan.ConditionalThreshold) {
		return c.Mul(c.Sub(*plan.ConditionalThreshold, revenue), *plan.ConditionalRate)
	}

	if subscriptionInTierPrice(plan) {
		return decimal.Zero
	}
	fee := monthlyFee(offer, plan)
	if fee.IsZero() {
		return decimal.Zero
	}
	if offer.MonthlyFeeWaiver != nil && revenue.GreaterThanOrEqual(*offer.MonthlyFeeWaiver) {
		return decimal.Zero
	}
	return fee
}

// subscriptionInTierPrice reports whether the plan's flat tier price already is the monthly
// subscription, so no separate rental is owed.
func subscriptionInTierPrice(plan *models.PricingPlan) bool {
	return plan.Model == models.BillingModelRevenueTier && plan.TierKind == models.TierKindFlatPrice
}

// aggregate folds transaction fees, equipment and rental into one monthly figure (major units).
func aggregate(c money.Context, req models.SimulationRequest, offer *models.TerminalOffer, plan *models.PricingPlan, fees Fees) (models.CostBreakdown, Fees, error) {
	if !fees.TierPriced {
		fees.Rates.Debit = plan.DebitRate
		fees.Rates.Credit = plan.CreditRate
		fees.Debit = c.Mul(req.DebitVolume, plan.DebitRate)
		fees.Credit = c.Mul(req.CreditVolume, plan.CreditRate)
	}

	equipment, err := equipmentCost(c, offer)
	if err != nil {
		return models.CostBreakdown{}, fees, err
	}

	revenue := money.ToMajor(req.TotalVolume())
	breakdown := models.CostBreakdown{
		TransactionFees: money.ToMajor(fees.Total(c)),
		Equipment:       equipment,
		Rental:          rentalCost(c, offer, plan, revenue),
	}
	breakdown.Total = c.Sum(breakdown.TransactionFees, breakdown.Equipment, breakdown.Rental)
	return breakdown, fees, nil
}

// discountPercent returns the promotional discount over the base price, if any.
func discountPercent(c money.Context, offer *models.TerminalOffer) *float64 {
	if offer.PromoPrice == nil || !offer.Price.IsPositive() || !offer.PromoPrice.LessThan(offer.Price) {
		return nil
	}
	pct := money.Display(c.Percent(c.Sub(offer.Price, *offer.PromoPrice), offer.Price))
	return &pct
}
