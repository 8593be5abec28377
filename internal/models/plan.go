package models

import (
	"github.com/shopspring/decimal"
)

// BillingModel selects the fee algorithm used for a plan's installment sales.
type BillingModel string

const (
	BillingModelStandard             BillingModel = "standard"
	BillingModelSimpleAnticipation   BillingModel = "simple_anticipation"
	BillingModelCompoundAnticipation BillingModel = "compound_anticipation"
	BillingModelRevenueTier          BillingModel = "revenue_tier"
)

// IsValid checks if the billing model is known.
func (m BillingModel) IsValid() bool {
	switch m {
	case BillingModelStandard, BillingModelSimpleAnticipation,
		BillingModelCompoundAnticipation, BillingModelRevenueTier:
		return true
	}
	return false
}

// TierKind is the sub-variant of revenue-tier pricing.
type TierKind string

const (
	// TierKindFlatPrice charges the tier's monthly price instead of transaction fees.
	TierKindFlatPrice TierKind = "flat_price"
	// TierKindRate takes per-channel rates from the tier.
	TierKindRate TierKind = "tiered_rate"
	// TierKindAdditiveRate adds the plan increment to the tier's base installment rate.
	TierKindAdditiveRate TierKind = "tiered_additive_rate"
)

// DayUnit qualifies settlement lags.
type DayUnit string

const (
	DayUnitBusiness DayUnit = "business"
	DayUnitCalendar DayUnit = "calendar"
)

// PayoutMode describes how installment sales are settled.
type PayoutMode string

const (
	PayoutIncremental PayoutMode = "incremental"
	PayoutLumpSum     PayoutMode = "lump_sum"
)

// GroupControle marks flat-subscription plans whose monthly fee comes from the first tier.
const GroupControle = "controle"

// Sector is a business category a plan may be restricted to.
type Sector struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"nome" db:"name"`
}

// RevenueTier is a [Min, Max] monthly revenue band (major units) with band-specific pricing.
// A nil Max leaves the band open-ended.
type RevenueTier struct {
	Min *decimal.Decimal `json:"minimo" db:"min_revenue"`
	Max *decimal.Decimal `json:"maximo" db:"max_revenue"`

	Price *decimal.Decimal `json:"valor,omitempty" db:"price"`

	DebitRate            *decimal.Decimal `json:"taxa_debito,omitempty" db:"debit_rate"`
	CreditRate           *decimal.Decimal `json:"taxa_credito_vista,omitempty" db:"credit_rate"`
	InstallmentRateUpTo6 *decimal.Decimal `json:"taxa_parcelado_ate_6,omitempty" db:"installment_rate_up_to_6"`
	InstallmentRateOver6 *decimal.Decimal `json:"taxa_parcelado_acima_6,omitempty" db:"installment_rate_over_6"`

	BaseInstallmentRate *decimal.Decimal `json:"taxa_base_parcelado,omitempty" db:"base_installment_rate"`
}

// MinOrZero returns the lower bound, treating a missing bound as zero.
func (t RevenueTier) MinOrZero() decimal.Decimal {
	if t.Min == nil {
		return decimal.Zero
	}
	return *t.Min
}

// Contains reports whether revenue falls inside [Min, Max].
func (t RevenueTier) Contains(revenue decimal.Decimal) bool {
	if revenue.LessThan(t.MinOrZero()) {
		return false
	}
	return t.Max == nil || revenue.LessThanOrEqual(*t.Max)
}

// InstallmentRate is an explicit rate for one installment count.
type InstallmentRate struct {
	Installments int             `json:"parcela" db:"installments"`
	Rate         decimal.Decimal `json:"taxa" db:"rate"`
}

// PricingPlan is one commercial plan under a terminal.
type PricingPlan struct {
	ID     int64  `json:"id" db:"id"`
	Name   string `json:"nome" db:"name"`
	Active bool   `json:"ativo" db:"active"`

	DebitRate            decimal.Decimal `json:"taxa_debito" db:"debit_rate"`
	CreditRate           decimal.Decimal `json:"taxa_credito_vista" db:"credit_rate"`
	InstallmentIncrement decimal.Decimal `json:"taxa_adicional_parcela" db:"installment_increment"`

	DebitSettlementDays       int        `json:"dias_debito" db:"debit_settlement_days"`
	CreditSettlementDays      int        `json:"dias_credito" db:"credit_settlement_days"`
	InstallmentSettlementDays int        `json:"dias_parcelado" db:"installment_settlement_days"`
	SettlementDayUnit         DayUnit    `json:"tipo_dias" db:"settlement_day_unit"`
	InstallmentPayout         PayoutMode `json:"recebimento_parcelado" db:"installment_payout"`

	Model        BillingModel `json:"modelo" db:"billing_model"`
	Anticipation bool         `json:"antecipacao" db:"anticipation"`
	TierKind     TierKind     `json:"tipo_faixa,omitempty" db:"tier_kind"`

	Tiers            []RevenueTier     `json:"faixas,omitempty"`
	InstallmentRates []InstallmentRate `json:"taxas_parcelas,omitempty"`
	ExcessRate       decimal.Decimal   `json:"taxa_excedente" db:"excess_rate"`

	// ConditionalRate is charged on the shortfall below ConditionalThreshold (major units).
	ConditionalRate      *decimal.Decimal `json:"taxa_condicional,omitempty" db:"conditional_rate"`
	ConditionalThreshold *decimal.Decimal `json:"faturamento_condicional,omitempty" db:"conditional_threshold"`

	Rating      float64  `json:"avaliacao" db:"rating"`
	ContractURL string   `json:"url_contratacao,omitempty" db:"contract_url"`
	Group       string   `json:"grupo,omitempty" db:"plan_group"`
	Sectors     []Sector `json:"segmentos,omitempty"`
}

// IsControle reports whether the plan is a flat-subscription "controle" plan.
func (p *PricingPlan) IsControle() bool {
	return p.Group == GroupControle
}

// AllowsSector applies the plan's sector restriction. An unrestricted plan accepts any
// request; a restricted plan requires a matching sector.
func (p *PricingPlan) AllowsSector(sector *int64) bool {
	if len(p.Sectors) == 0 {
		return true
	}
	if sector == nil {
		return false
	}
	for _, s := range p.Sectors {
		if s.ID == *sector {
			return true
		}
	}
	return false
}

// RateFor looks up the explicit installment rate for n installments.
func (p *PricingPlan) RateFor(n int) (decimal.Decimal, bool) {
	for _, r := range p.InstallmentRates {
		if r.Installments == n {
			return r.Rate, true
		}
	}
	return decimal.Zero, false
}
