package simulator

import (
	"github.com/shopspring/decimal"

	"card-fee-simulator/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func sector(id int64) *int64 {
	return &id
}

// buildPlan returns an active standard plan with the rates used across the tests.
func buildPlan(id int64, overrides ...func(*models.PricingPlan)) models.PricingPlan {
	plan := models.PricingPlan{
		ID:                   id,
		Name:                 "Plano",
		Active:               true,
		Model:                models.BillingModelStandard,
		DebitRate:            dec("0.0199"),
		CreditRate:           dec("0.0299"),
		InstallmentIncrement: dec("0.005"),
		Rating:               4.0,
	}
	for _, o := range overrides {
		o(&plan)
	}
	return plan
}

// buildTerminal returns a free, fully capable terminal accepting up to 12 installments.
func buildTerminal(id int64, plans ...models.PricingPlan) models.TerminalOffer {
	return models.TerminalOffer{
		ID:              id,
		Name:            "Maquininha",
		VendorName:      "Empresa",
		Price:           decimal.Zero,
		MonthlyFee:      decimal.Zero,
		MaxInstallments: 12,
		Chip:            true,
		MagStripe:       true,
		Contactless:     true,
		PrintsReceipt:   true,
		Ecommerce:       true,
		MealVoucher:     true,
		SupportsPF:      true,
		SupportsPJ:      true,
		Connectivity:    []string{models.ConnectivityWiFi, models.ConnectivityChip},
		Plans:           plans,
	}
}

func buildRequest(debit, credit, installment int64, n int) models.SimulationRequest {
	return models.SimulationRequest{
		DebitVolume:       decimal.NewFromInt(debit),
		CreditVolume:      decimal.NewFromInt(credit),
		InstallmentVolume: decimal.NewFromInt(installment),
		Installments:      n,
	}
}

// revenueTiers are contiguous bands: [0, 5000], [5000.01, 10000], [10000.01, 20000].
func revenueTiers() []models.RevenueTier {
	return []models.RevenueTier{
		{Min: decPtr("0"), Max: decPtr("5000"), Price: decPtr("59.90"),
			DebitRate: decPtr("0.0150"), CreditRate: decPtr("0.0250"),
			InstallmentRateUpTo6: decPtr("0.0350"), InstallmentRateOver6: decPtr("0.0450"),
			BaseInstallmentRate: decPtr("0.0300")},
		{Min: decPtr("5000.01"), Max: decPtr("10000"), Price: decPtr("99.90"),
			DebitRate: decPtr("0.0120"), CreditRate: decPtr("0.0220"),
			InstallmentRateUpTo6: decPtr("0.0320"), InstallmentRateOver6: decPtr("0.0420"),
			BaseInstallmentRate: decPtr("0.0280")},
		{Min: decPtr("10000.01"), Max: decPtr("20000"), Price: decPtr("199.90"),
			DebitRate: decPtr("0.0100"), CreditRate: decPtr("0.0200"),
			InstallmentRateUpTo6: decPtr("0.0300"), InstallmentRateOver6: decPtr("0.0400"),
			BaseInstallmentRate: decPtr("0.0250")},
	}
}
