package simulator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"card-fee-simulator/internal/models"
	"card-fee-simulator/internal/money"
)

func TestAmortizationMonths(t *testing.T) {
	tests := []struct {
		warranty int
		months   int64
	}{
		{-1, 12},
		{0, 12},
		{1, 12},
		{2, 24},
		{5, 60},
		{99, 1188},
		{100, 12},
		{250, 12},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.months, amortizationMonths(tt.warranty), "warranty %d", tt.warranty)
	}
}

func TestEquipmentCost(t *testing.T) {
	c := money.DefaultContext()

	offer := buildTerminal(1)
	offer.Price = dec("120")
	cost, err := equipmentCost(c, &offer)
	require.NoError(t, err)
	assert.True(t, cost.Equal(dec("10")))

	offer.WarrantyYears = 2
	cost, err = equipmentCost(c, &offer)
	require.NoError(t, err)
	assert.True(t, cost.Equal(dec("5")))

	offer.PromoPrice = decPtr("48")
	cost, err = equipmentCost(c, &offer)
	require.NoError(t, err)
	assert.True(t, cost.Equal(dec("2")), "promotional price is amortized")
}

func TestRentalCost(t *testing.T) {
	c := money.DefaultContext()

	t.Run("conditional rate below threshold", func(t *testing.T) {
		offer := buildTerminal(1)
		offer.MonthlyFee = dec("39.90")
		plan := buildPlan(1, func(p *models.PricingPlan) {
			p.ConditionalRate = decPtr("0.01")
			p.ConditionalThreshold = decPtr("5000")
		})
		rental := rentalCost(c, &offer, &plan, dec("3000"))
		assert.True(t, rental.Equal(dec("20")), "rental = %s", rental)
	})

	t.Run("conditional rate met falls back to nominal fee", func(t *testing.T) {
		offer := buildTerminal(1)
		offer.MonthlyFee = dec("39.90")
		plan := buildPlan(1, func(p *models.PricingPlan) {
			p.ConditionalRate = decPtr("0.01")
			p.ConditionalThreshold = decPtr("5000")
		})
		rental := rentalCost(c, &offer, &plan, dec("6000"))
		assert.True(t, rental.Equal(dec("39.90")))
	})

	t.Run("waiver reached", func(t *testing.T) {
		offer := buildTerminal(1)
		offer.MonthlyFee = dec("39.90")
		offer.MonthlyFeeWaiver = decPtr("5000")
		plan := buildPlan(1)
		assert.True(t, rentalCost(c, &offer, &plan, dec("5000")).IsZero())
		assert.True(t, rentalCost(c, &offer, &plan, dec("4999.99")).Equal(dec("39.90")))
	})

	t.Run("controle plan on standard model charges first tier price", func(t *testing.T) {
		offer := buildTerminal(1)
		offer.MonthlyFee = dec("30")
		plan := buildPlan(1, func(p *models.PricingPlan) {
			p.Group = models.GroupControle
			p.Tiers = revenueTiers()
		})
		assert.True(t, rentalCost(c, &offer, &plan, dec("10000")).Equal(dec("59.90")))
		assert.True(t, monthlyFee(&offer, &plan).Equal(dec("59.90")), "shown and charged fee agree")

		offer.MonthlyFeeWaiver = decPtr("5000")
		assert.True(t, rentalCost(c, &offer, &plan, dec("10000")).IsZero())
		assert.True(t, rentalCost(c, &offer, &plan, dec("4999.99")).Equal(dec("59.90")))

		offer.MonthlyFeeWaiver = nil
		offer.FeeFree = true
		assert.True(t, rentalCost(c, &offer, &plan, dec("10000")).IsZero())
		assert.True(t, monthlyFee(&offer, &plan).IsZero())
	})

	t.Run("flat price tier already carries the subscription", func(t *testing.T) {
		offer := buildTerminal(1)
		offer.MonthlyFee = dec("30")
		plan := buildPlan(1, func(p *models.PricingPlan) {
			p.Model = models.BillingModelRevenueTier
			p.TierKind = models.TierKindFlatPrice
			p.Group = models.GroupControle
			p.Tiers = revenueTiers()
		})
		assert.True(t, rentalCost(c, &offer, &plan, dec("100")).IsZero())

		plan.TierKind = models.TierKindRate
		assert.True(t, rentalCost(c, &offer, &plan, dec("100")).Equal(dec("59.90")))
	})

	t.Run("fee-free terminal", func(t *testing.T) {
		offer := buildTerminal(1)
		offer.MonthlyFee = dec("39.90")
		offer.FeeFree = true
		plan := buildPlan(1)
		assert.True(t, rentalCost(c, &offer, &plan, dec("100")).IsZero())
	})
}

func TestAggregate_WorkedExample(t *testing.T) {
	c := money.DefaultContext()
	offer := buildTerminal(1)
	plan := buildPlan(1)
	req := buildRequest(500000, 300000, 200000, 6)

	fees, err := evaluate(c, req, &plan)
	require.NoError(t, err)

	cost, fees, err := aggregate(c, req, &offer, &plan, fees)
	require.NoError(t, err)

	assert.True(t, fees.Debit.Equal(dec("9950")))
	assert.True(t, fees.Credit.Equal(dec("8970")))
	assert.True(t, fees.Installment.Equal(dec("10980")))
	assert.True(t, cost.TransactionFees.Equal(dec("299")), "fees = %s", cost.TransactionFees)
	assert.True(t, cost.Equipment.IsZero())
	assert.True(t, cost.Rental.IsZero())
	assert.True(t, cost.Total.Equal(dec("299")))
}

func TestAggregate_ControleOnStandardModel(t *testing.T) {
	c := money.DefaultContext()
	offer := buildTerminal(1)
	offer.MonthlyFee = dec("30")
	plan := buildPlan(1, func(p *models.PricingPlan) {
		p.Group = models.GroupControle
		p.Tiers = revenueTiers()
	})
	req := buildRequest(500000, 300000, 200000, 6)

	fees, err := evaluate(c, req, &plan)
	require.NoError(t, err)
	cost, _, err := aggregate(c, req, &offer, &plan, fees)
	require.NoError(t, err)

	assert.True(t, cost.TransactionFees.Equal(dec("299")))
	assert.True(t, cost.Rental.Equal(dec("59.90")), "rental = %s", cost.Rental)
	assert.True(t, cost.Total.Equal(dec("358.90")), "total = %s", cost.Total)
	assert.True(t, cost.Rental.Equal(monthlyFee(&offer, &plan)), "charged rental matches the shown fee")
}

func TestAggregate_TierPricedSkipsChannelFees(t *testing.T) {
	c := money.DefaultContext()
	offer := buildTerminal(1)
	offer.Price = dec("240")
	offer.WarrantyYears = 2
	plan := buildPlan(1, func(p *models.PricingPlan) {
		p.Model = models.BillingModelRevenueTier
		p.TierKind = models.TierKindFlatPrice
		p.Tiers = revenueTiers()
	})
	req := buildRequest(100000, 100000, 100000, 2)

	fees, err := evaluate(c, req, &plan)
	require.NoError(t, err)
	cost, fees, err := aggregate(c, req, &offer, &plan, fees)
	require.NoError(t, err)

	assert.True(t, fees.Debit.IsZero())
	assert.True(t, fees.Credit.IsZero())
	assert.True(t, cost.TransactionFees.Equal(dec("59.90")))
	assert.True(t, cost.Equipment.Equal(dec("10")))
	assert.True(t, cost.Total.Equal(dec("69.90")))
}

func TestDiscountPercent(t *testing.T) {
	c := money.DefaultContext()
	offer := buildTerminal(1)
	offer.Price = dec("118.80")

	assert.Nil(t, discountPercent(c, &offer))

	offer.PromoPrice = decPtr("94.80")
	pct := discountPercent(c, &offer)
	require.NotNil(t, pct)
	assert.Equal(t, 20.2, *pct)

	offer.PromoPrice = decPtr("130")
	assert.Nil(t, discountPercent(c, &offer), "a higher promotional price is not a discount")

	offer.Price = decimal.Zero
	assert.Nil(t, discountPercent(c, &offer))
}
