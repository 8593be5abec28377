package simulator

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"card-fee-simulator/internal/models"
	"card-fee-simulator/internal/money"
)

var (
	// ErrNoViableOffers means no (terminal, plan) pair survived filtering and evaluation.
	ErrNoViableOffers = errors.New("no matching offers")
	// ErrPlanNotViable means a plan cannot price this request and must be skipped.
	ErrPlanNotViable = errors.New("plan not viable for request")
	// ErrDataInconsistency means a plan lacks the pricing data its model requires.
	ErrDataInconsistency = fmt.Errorf("%w: inconsistent pricing data", ErrPlanNotViable)
)

var one = decimal.NewFromInt(1)

// Fees are the fee components of one plan evaluation, in minor units.
type Fees struct {
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Installment decimal.Decimal
	Flat        decimal.Decimal
	Surcharge   decimal.Decimal
	Rates       models.AppliedRates
	// TierPriced is set when the tier output already covers debit and credit sales.
	TierPriced bool
}

// Total sums every component.
func (f Fees) Total(c money.Context) decimal.Decimal {
	return c.Sum(f.Debit, f.Credit, f.Installment, f.Flat, f.Surcharge)
}

// evaluate dispatches to the evaluator selected by the plan's billing model.
func evaluate(c money.Context, req models.SimulationRequest, plan *models.PricingPlan) (Fees, error) {
	amount := req.InstallmentVolume
	n := req.Installments

	switch plan.Model {
	case models.BillingModelStandard:
		fee, rate, err := StandardFee(c, amount, n, plan)
		if err != nil {
			return Fees{}, err
		}
		return Fees{Installment: fee, Rates: models.AppliedRates{Installment: rate}}, nil

	case models.BillingModelSimpleAnticipation:
		fee, rate := SimpleAnticipationFee(c, amount, n, plan)
		return Fees{Installment: fee, Rates: models.AppliedRates{Installment: rate}}, nil

	case models.BillingModelCompoundAnticipation:
		fee, err := CompoundAnticipationFee(c, amount, n, plan)
		if err != nil {
			return Fees{}, err
		}
		rate := decimal.Zero
		if !amount.IsZero() {
			rate, _ = c.Div(fee, amount)
		}
		return Fees{Installment: fee, Rates: models.AppliedRates{Installment: rate}}, nil

	case models.BillingModelRevenueTier:
		return RevenueTierFees(c, req, plan)

	default:
		return Fees{}, fmt.Errorf("%w: unknown billing model %q", ErrDataInconsistency, plan.Model)
	}
}

// linearRate returns base + increment*(n-1). With one installment the increment term is zero.
func linearRate(c money.Context, base, increment decimal.Decimal, n int) decimal.Decimal {
	if n <= 1 {
		return base
	}
	return c.Add(base, c.Mul(increment, decimal.NewFromInt(int64(n-1))))
}

// StandardFee prices installment sales with a flat rate or an explicit per-installment table.
//
// With no table, or a single entry used as the base, the rate grows linearly with the
// installment count. A larger table must list the requested count or the plan is skipped.
func StandardFee(c money.Context, amount decimal.Decimal, n int, plan *models.PricingPlan) (decimal.Decimal, decimal.Decimal, error) {
	var rate decimal.Decimal
	switch len(plan.InstallmentRates) {
	case 0:
		rate = linearRate(c, plan.CreditRate, plan.InstallmentIncrement, n)
	case 1:
		rate = linearRate(c, plan.InstallmentRates[0].Rate, plan.InstallmentIncrement, n)
	default:
		r, ok := plan.RateFor(n)
		if !ok {
			return decimal.Zero, decimal.Zero, fmt.Errorf("%w: no rate for %d installments", ErrPlanNotViable, n)
		}
		rate = r
	}
	return c.Mul(amount, rate), rate, nil
}

// SimpleAnticipationFee computes the net amount left after a linear anticipation discount
// and returns the difference to the gross amount as the fee.
func SimpleAnticipationFee(c money.Context, amount decimal.Decimal, n int, plan *models.PricingPlan) (decimal.Decimal, decimal.Decimal) {
	rate := linearRate(c, plan.CreditRate, plan.InstallmentIncrement, n)
	net := c.Mul(amount, c.Sub(one, rate))
	return c.Sub(amount, net), rate
}

// CompoundAnticipationFee anticipates each installment share separately.
//
// The amount is split into n shares, the first absorbing the division remainder. Every
// share is discounted by the base credit rate. Share i (i >= 1) additionally loses an
// accreting rate (1+increment)^(2i) - 1, built up step by step, so later installments
// carry more of the anticipation cost. The fee is the gross amount minus the liquidated
// total.
func CompoundAnticipationFee(c money.Context, amount decimal.Decimal, n int, plan *models.PricingPlan) (decimal.Decimal, error) {
	count := decimal.NewFromInt(int64(n))
	share, err := c.Div(amount, count)
	if err != nil {
		return decimal.Zero, err
	}
	remainder := c.Sub(amount, c.Mul(share, count))

	keep := c.Sub(one, plan.CreditRate)
	step, err := c.Pow(c.Add(one, plan.InstallmentIncrement), 2)
	if err != nil {
		return decimal.Zero, err
	}

	liquidated := c.Mul(c.Add(share, remainder), keep)
	discounted := c.Mul(share, keep)
	factor := one
	// The squared step keeps the fee at or above simple anticipation for the same plan.
	for i := 1; i < n; i++ {
		factor = c.Mul(factor, step)
		accretion := c.Sub(factor, one)
		liquidated = c.Add(liquidated, c.Sub(discounted, c.Mul(share, accretion)))
	}

	return c.Sub(amount, liquidated), nil
}

// RevenueTierFees prices all three channels from the tier matching the total revenue.
// Revenue above the last tier's maximum is charged at the plan's excess rate.
func RevenueTierFees(c money.Context, req models.SimulationRequest, plan *models.PricingPlan) (Fees, error) {
	revenue := money.ToMajor(req.TotalVolume())
	match, err := selectTier(plan.Tiers, revenue)
	if err != nil {
		return Fees{}, err
	}

	fees := Fees{TierPriced: true}
	if match.Overflow {
		fees.Surcharge = c.Mul(money.ToMinor(match.Excess), plan.ExcessRate)
	}

	tier := match.Tier
	switch plan.TierKind {
	case models.TierKindFlatPrice:
		if tier.Price == nil {
			return Fees{}, fmt.Errorf("%w: tier %d has no price", ErrDataInconsistency, match.Index)
		}
		fees.Flat = money.ToMinor(*tier.Price)
		return fees, nil

	case models.TierKindRate:
		installment := tier.InstallmentRateUpTo6
		if req.Installments > 6 {
			installment = tier.InstallmentRateOver6
		}
		if installment == nil || tier.CreditRate == nil {
			return Fees{}, fmt.Errorf("%w: tier %d is missing rates", ErrDataInconsistency, match.Index)
		}
		fees.Rates = models.AppliedRates{
			Debit:       valueOr(tier.DebitRate, plan.DebitRate),
			Credit:      *tier.CreditRate,
			Installment: *installment,
		}

	case models.TierKindAdditiveRate:
		if tier.BaseInstallmentRate == nil {
			return Fees{}, fmt.Errorf("%w: tier %d has no base installment rate", ErrDataInconsistency, match.Index)
		}
		fees.Rates = models.AppliedRates{
			Debit:       valueOr(tier.DebitRate, plan.DebitRate),
			Credit:      valueOr(tier.CreditRate, plan.CreditRate),
			Installment: linearRate(c, *tier.BaseInstallmentRate, plan.InstallmentIncrement, req.Installments),
		}

	default:
		return Fees{}, fmt.Errorf("%w: unknown tier kind %q", ErrDataInconsistency, plan.TierKind)
	}

	fees.Debit = c.Mul(req.DebitVolume, fees.Rates.Debit)
	fees.Credit = c.Mul(req.CreditVolume, fees.Rates.Credit)
	fees.Installment = c.Mul(req.InstallmentVolume, fees.Rates.Installment)
	return fees, nil
}

func valueOr(v *decimal.Decimal, fallback decimal.Decimal) decimal.Decimal {
	if v == nil {
		return fallback
	}
	return *v
}
