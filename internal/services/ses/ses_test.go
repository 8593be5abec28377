package ses_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"card-fee-simulator/internal/models"
	"card-fee-simulator/internal/services/ses"
)

func sampleSummary() ses.SummaryParams {
	scenario := &models.BatchScenario{
		ScenarioID: "PADARIA",
		Email:      "dono@padaria.com.br",
		Request: models.SimulationRequest{
			DebitVolume:       decimal.NewFromInt(100000),
			CreditVolume:      decimal.NewFromInt(50000),
			InstallmentVolume: decimal.NewFromInt(29900),
			Installments:      3,
		},
	}
	outcome := models.ScenarioOutcome{
		ScenarioID:  "PADARIA",
		ResultCount: 2,
		TopByCost: []models.SimulationResult{
			{TerminalName: "Mini", VendorName: "Acme", PlanName: "Na hora", MonthlyCost: 45.9, Rating: 4.1},
		},
		TopByRating: []models.SimulationResult{
			{TerminalName: "Smart", VendorName: "Beta", PlanName: "Controle", MonthlyCost: 89.9, Rating: 4.8,
				ContractURL: "https://example.com/contratar"},
		},
	}
	return ses.BuildSummaryParams(scenario, outcome, "https://results.example.com/b1.json", "https://app.example.com")
}

func TestBuildSummaryParams(t *testing.T) {
	params := sampleSummary()

	assert.Equal(t, "PADARIA", params.ScenarioID)
	assert.Equal(t, "dono@padaria.com.br", params.Email)
	assert.Equal(t, 2, params.ResultCount)
	assert.Equal(t, 3, params.Installments)
	assert.InDelta(t, 1799.00, params.TotalVolume, 0.001)
	require.Len(t, params.TopByCost, 1)
	assert.Equal(t, "Mini", params.TopByCost[0].TerminalName)
	require.Len(t, params.TopByRating, 1)
	assert.Equal(t, "https://example.com/contratar", params.TopByRating[0].ContractURL)
}

func TestRenderSummaryHTML(t *testing.T) {
	html, err := ses.RenderSummaryHTML(sampleSummary())
	require.NoError(t, err)

	assert.Contains(t, html, "R$ 1799.00")
	assert.Contains(t, html, "Mini · Na hora")
	assert.Contains(t, html, "R$ 45.90 / mês")
	assert.Contains(t, html, "nota 4.8")
	assert.Contains(t, html, "https://results.example.com/b1.json")
}

func TestRenderSummaryText(t *testing.T) {
	text := ses.RenderSummaryText(sampleSummary())

	assert.Contains(t, text, "Encontramos 2 ofertas para R$ 1799.00")
	assert.Contains(t, text, "1. Mini (Acme) - Na hora: R$ 45.90/mês")
	assert.Contains(t, text, "1. Smart (Beta) - Controle: nota 4.8, R$ 89.90/mês")
	assert.Contains(t, text, "Nova simulação: https://app.example.com")
}
