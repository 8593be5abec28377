package simulator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"card-fee-simulator/internal/models"
)

func TestIsEligible_NoCriteria(t *testing.T) {
	offer := buildTerminal(1)
	offer.RequiresWire = true
	plan := buildPlan(1)

	assert.True(t, IsEligible(&offer, &plan, nil))
	assert.True(t, IsEligible(&offer, &plan, &models.FilterCriteria{}))
}

func TestIsEligible_Criteria(t *testing.T) {
	plan := buildPlan(1)

	tests := []struct {
		name     string
		criteria models.FilterCriteria
		mutate   func(*models.TerminalOffer)
	}{
		{"ecommerce", models.FilterCriteria{Ecommerce: true}, func(o *models.TerminalOffer) { o.Ecommerce = false }},
		{"mag stripe", models.FilterCriteria{MagStripe: true}, func(o *models.TerminalOffer) { o.MagStripe = false }},
		{"contactless", models.FilterCriteria{Contactless: true}, func(o *models.TerminalOffer) { o.Contactless = false }},
		{"chip", models.FilterCriteria{Chip: true}, func(o *models.TerminalOffer) { o.Chip = false }},
		{"wireless", models.FilterCriteria{Wireless: true}, func(o *models.TerminalOffer) { o.RequiresWire = true }},
		{"pj", models.FilterCriteria{PJ: true}, func(o *models.TerminalOffer) { o.SupportsPJ = false }},
		{"pf", models.FilterCriteria{PF: true}, func(o *models.TerminalOffer) { o.SupportsPF = false }},
		{"wifi", models.FilterCriteria{WiFi: true}, func(o *models.TerminalOffer) { o.Connectivity = []string{"chip"} }},
		{"prints receipt", models.FilterCriteria{PrintsReceipt: true}, func(o *models.TerminalOffer) { o.PrintsReceipt = false }},
		{"no phone", models.FilterCriteria{NoPhone: true}, func(o *models.TerminalOffer) { o.RequiresPhone = true }},
		{"meal voucher", models.FilterCriteria{MealVoucher: true}, func(o *models.TerminalOffer) { o.MealVoucher = false }},
		{"no monthly fee", models.FilterCriteria{NoMonthlyFee: true}, func(o *models.TerminalOffer) { o.MonthlyFee = decimal.NewFromInt(30) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offer := buildTerminal(1)
			criteria := tt.criteria
			assert.True(t, IsEligible(&offer, &plan, &criteria), "capable terminal passes")

			tt.mutate(&offer)
			assert.False(t, IsEligible(&offer, &plan, &criteria), "missing capability fails")
		})
	}
}

func TestIsEligible_WiFiCaseInsensitive(t *testing.T) {
	offer := buildTerminal(1)
	offer.Connectivity = []string{" Wi-Fi ", "WIFI"}
	plan := buildPlan(1)

	assert.True(t, IsEligible(&offer, &plan, &models.FilterCriteria{WiFi: true}))
}

func TestIsEligible_NoMonthlyFeeControle(t *testing.T) {
	offer := buildTerminal(1)
	plan := buildPlan(1, func(p *models.PricingPlan) {
		p.Group = models.GroupControle
		p.Tiers = revenueTiers()
	})
	criteria := &models.FilterCriteria{NoMonthlyFee: true}

	assert.False(t, IsEligible(&offer, &plan, criteria), "controle plans carry a monthly fee")

	offer.FeeFree = true
	assert.True(t, IsEligible(&offer, &plan, criteria), "unless the terminal is flagged fee-free")

	paid := buildTerminal(2)
	paid.MonthlyFee = decimal.NewFromInt(20)
	paid.FeeFree = true
	standard := buildPlan(2)
	assert.True(t, IsEligible(&paid, &standard, criteria))
}

func TestIsEligible_AllCriteriaMustHold(t *testing.T) {
	offer := buildTerminal(1)
	offer.RequiresPhone = true
	plan := buildPlan(1)

	criteria := &models.FilterCriteria{Chip: true, Contactless: true, NoPhone: true}
	assert.False(t, IsEligible(&offer, &plan, criteria))
}
