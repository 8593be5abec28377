package simulator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"card-fee-simulator/internal/models"
)

func TestParseOrder(t *testing.T) {
	assert.Equal(t, OrderCost, ParseOrder("custo"))
	assert.Equal(t, OrderCost, ParseOrder(" Cost "))
	assert.Equal(t, OrderRating, ParseOrder("avaliacao"))
	assert.Equal(t, OrderRating, ParseOrder(""))
	assert.Equal(t, OrderRating, ParseOrder("whatever"))
}

func rankingFixture(t *testing.T) *Ranking {
	t.Helper()
	plan := func(id int64, rating float64, debitRate string) models.PricingPlan {
		return buildPlan(id, func(p *models.PricingPlan) {
			p.Rating = rating
			p.DebitRate = dec(debitRate)
		})
	}
	offers := []models.TerminalOffer{
		buildTerminal(1, plan(10, 4.0, "0.0300"), plan(11, 4.8, "0.0250")),
		buildTerminal(2, plan(20, 4.5, "0.0100"), plan(21, 3.9, "0.0100")),
	}

	ranking, err := newTestEngine().Simulate(buildRequest(100000, 0, 0, 1), offers)
	require.NoError(t, err)
	return ranking
}

func planIDs(results []models.SimulationResult) []int64 {
	ids := make([]int64, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.PlanID)
	}
	return ids
}

func TestRanking_Orders(t *testing.T) {
	ranking := rankingFixture(t)

	assert.Equal(t, []int64{11, 20, 10, 21}, planIDs(ranking.ByRating()))
	// 20 and 21 cost the same; the rating order breaks the tie.
	assert.Equal(t, []int64{20, 21, 11, 10}, planIDs(ranking.ByCost()))
	assert.Equal(t, []int64{11, 20, 10, 21}, planIDs(ranking.Results), "cost view does not reorder the results")
}

func TestRanking_BestAndTop(t *testing.T) {
	ranking := rankingFixture(t)

	assert.Equal(t, int64(11), ranking.Best(OrderRating).PlanID)
	assert.Equal(t, int64(20), ranking.Best(OrderCost).PlanID)
	assert.Equal(t, []int64{20, 21}, planIDs(ranking.Top(OrderCost, 2)))
	assert.Len(t, ranking.Top(OrderRating, 10), 4)
	assert.Len(t, ranking.Top(OrderRating, -1), 4)
}

func TestRanking_ViewsAreCopies(t *testing.T) {
	ranking := rankingFixture(t)

	view := ranking.ByCost()
	view[0].PlanName = "changed"
	assert.NotEqual(t, "changed", ranking.Results[1].PlanName)
}
