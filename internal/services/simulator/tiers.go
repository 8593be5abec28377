package simulator

import (
	"github.com/shopspring/decimal"

	"card-fee-simulator/internal/models"
)

// tierMatch is the outcome of a revenue-tier lookup.
type tierMatch struct {
	Tier     models.RevenueTier
	Index    int
	Overflow bool
	// Excess is the revenue above the overflow tier's maximum, in major units.
	Excess decimal.Decimal
}

// selectTier finds the tier for a monthly revenue (major units).
//
// Phase one scans in order and returns the first tier containing the revenue. Phase two
// only looks at the last tier: if its minimum is covered, the revenue overflows it and the
// excess over its maximum is reported. Anything else makes the plan non-viable.
func selectTier(tiers []models.RevenueTier, revenue decimal.Decimal) (tierMatch, error) {
	if len(tiers) == 0 {
		return tierMatch{}, ErrDataInconsistency
	}

	for i, t := range tiers {
		if t.Contains(revenue) {
			return tierMatch{Tier: t, Index: i, Excess: decimal.Zero}, nil
		}
	}

	last := len(tiers) - 1
	tier := tiers[last]
	if tier.MinOrZero().GreaterThan(revenue) || tier.Max == nil {
		return tierMatch{}, ErrPlanNotViable
	}

	return tierMatch{
		Tier:     tier,
		Index:    last,
		Overflow: true,
		Excess:   revenue.Sub(*tier.Max),
	}, nil
}
