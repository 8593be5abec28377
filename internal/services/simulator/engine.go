// Package simulator implements the card-terminal fee simulation and ranking pipeline.
package simulator

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"card-fee-simulator/internal/models"
	"card-fee-simulator/internal/money"
)

// DefaultMinCost is the total monthly cost at or below which a plan is not comparable.
var DefaultMinCost = decimal.New(1, -4)

// Skip reasons reported in logs and stats.
const (
	skipNoActivePlans = "no_active_plans"
	skipFilters       = "filters"
	skipInstallments  = "installments_unsupported"
	skipSector        = "sector"
	skipNotViable     = "not_viable"
	skipInconsistent  = "data_inconsistency"
	skipInsignificant = "insignificant_cost"
)

// Engine evaluates a request against an offer snapshot. It holds no mutable state and is
// safe for concurrent use.
type Engine struct {
	ctx     money.Context
	minCost decimal.Decimal
	logger  *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithDecimalContext sets the arithmetic precision and rounding.
func WithDecimalContext(c money.Context) Option {
	return func(e *Engine) { e.ctx = c }
}

// WithMinCost sets the significance threshold for results.
func WithMinCost(d decimal.Decimal) Option {
	return func(e *Engine) { e.minCost = d }
}

// WithLogger sets the logger used for skip and summary messages.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates an engine with 19-digit half-up arithmetic unless overridden.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		ctx:     money.DefaultContext(),
		minCost: DefaultMinCost,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Stats counts what happened during one simulation.
type Stats struct {
	Offers         int            `json:"maquininhas"`
	PlansEvaluated int            `json:"planos_avaliados"`
	Skipped        map[string]int `json:"descartados,omitempty"`
}

func (s *Stats) skip(reason string) {
	if s.Skipped == nil {
		s.Skipped = make(map[string]int)
	}
	s.Skipped[reason]++
}

// Simulate filters, prices and ranks every active plan of every offer.
// It returns ErrNoViableOffers when nothing survives.
func (e *Engine) Simulate(req models.SimulationRequest, offers []models.TerminalOffer) (*Ranking, error) {
	if req.Installments < 1 {
		return nil, fmt.Errorf("%w: %w", models.ErrInvalidRequest, models.ErrInvalidInstallments)
	}

	start := time.Now()
	stats := Stats{Offers: len(offers)}
	results := make([]models.SimulationResult, 0)

	for i := range offers {
		offer := &offers[i]
		plans := offer.ActivePlans()
		if len(plans) == 0 {
			stats.skip(skipNoActivePlans)
			continue
		}

		for j := range plans {
			plan := &plans[j]
			stats.PlansEvaluated++

			result, reason, err := e.evaluatePlan(req, offer, plan)
			if err != nil {
				return nil, err
			}
			if reason != "" {
				stats.skip(reason)
				e.logger.Debug("Plan skipped",
					zap.Int64("terminal_id", offer.ID),
					zap.Int64("plan_id", plan.ID),
					zap.String("reason", reason),
				)
				continue
			}
			results = append(results, result)
		}
	}

	e.logger.Info("Simulation complete",
		zap.Int("offers", stats.Offers),
		zap.Int("plans_evaluated", stats.PlansEvaluated),
		zap.Int("results", len(results)),
		zap.Duration("processing_time", time.Since(start)),
	)

	if len(results) == 0 {
		return nil, ErrNoViableOffers
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Rating > results[b].Rating
	})

	return &Ranking{Input: req, Results: results, Stats: stats}, nil
}

// evaluatePlan returns a result, or a skip reason, or an error that must abort the run.
func (e *Engine) evaluatePlan(req models.SimulationRequest, offer *models.TerminalOffer, plan *models.PricingPlan) (models.SimulationResult, string, error) {
	if !IsEligible(offer, plan, req.Filters) {
		return models.SimulationResult{}, skipFilters, nil
	}
	if req.Installments > max(offer.MaxInstallments, 1) {
		return models.SimulationResult{}, skipInstallments, nil
	}
	if !plan.AllowsSector(req.Sector) {
		return models.SimulationResult{}, skipSector, nil
	}

	fees, err := evaluate(e.ctx, req, plan)
	if err != nil {
		return models.SimulationResult{}, e.skipReason(offer, plan, err), unlessNotViable(err)
	}

	cost, fees, err := aggregate(e.ctx, req, offer, plan, fees)
	if err != nil {
		return models.SimulationResult{}, "", err
	}
	if cost.Total.LessThanOrEqual(e.minCost) {
		return models.SimulationResult{}, skipInsignificant, nil
	}

	return e.project(offer, plan, cost, fees), "", nil
}

func (e *Engine) skipReason(offer *models.TerminalOffer, plan *models.PricingPlan, err error) string {
	switch {
	case errors.Is(err, ErrDataInconsistency):
		e.logger.Warn("Plan has inconsistent pricing data",
			zap.Int64("terminal_id", offer.ID),
			zap.Int64("plan_id", plan.ID),
			zap.Error(err),
		)
		return skipInconsistent
	case errors.Is(err, ErrPlanNotViable):
		return skipNotViable
	default:
		return ""
	}
}

func unlessNotViable(err error) error {
	if errors.Is(err, ErrPlanNotViable) {
		return nil
	}
	return err
}

// project builds the display result for a priced pair.
func (e *Engine) project(offer *models.TerminalOffer, plan *models.PricingPlan, cost models.CostBreakdown, fees Fees) models.SimulationResult {
	var promo *float64
	if offer.PromoPrice != nil {
		p := money.Display(*offer.PromoPrice)
		promo = &p
	}

	return models.SimulationResult{
		TerminalID:    offer.ID,
		TerminalName:  offer.Name,
		ImageURL:      offer.ImageURL,
		VendorName:    offer.VendorName,
		VendorLogoURL: offer.VendorLogoURL,
		PlanID:        plan.ID,
		PlanName:      plan.Name,

		Cost:         cost,
		MonthlyCost:  money.Display(cost.Total),
		Rates:        fees.Rates,
		Model:        plan.Model,
		DiscountPct:  discountPercent(e.ctx, offer),
		Price:        money.Display(offer.Price),
		PromoPrice:   promo,
		MonthlyFee:   money.Display(monthlyFee(offer, plan)),
		Rating:       plan.Rating,
		ContractURL:  plan.ContractURL,
		Anticipation: plan.Anticipation,

		DebitSettlementDays:       plan.DebitSettlementDays,
		CreditSettlementDays:      plan.CreditSettlementDays,
		InstallmentSettlementDays: plan.InstallmentSettlementDays,
		SettlementDayUnit:         plan.SettlementDayUnit,
		InstallmentPayout:         plan.InstallmentPayout,

		WarrantyYears:   offer.WarrantyYears,
		MaxInstallments: offer.MaxInstallments,
		Chip:            offer.Chip,
		MagStripe:       offer.MagStripe,
		Contactless:     offer.Contactless,
		RequiresWire:    offer.RequiresWire,
		PrintsReceipt:   offer.PrintsReceipt,
		RequiresPhone:   offer.RequiresPhone,
		Ecommerce:       offer.Ecommerce,
		TransparentFees: offer.TransparentFees,
		MealVoucher:     offer.MealVoucher,
		SupportsPF:      offer.SupportsPF,
		SupportsPJ:      offer.SupportsPJ,
		Connectivity:    offer.Connectivity,
		CardNetworks:    offer.CardNetworks,
		ReceiptMethods:  offer.ReceiptMethods,
	}
}
