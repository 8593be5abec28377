package simulator

import (
	"sort"
	"strings"

	"card-fee-simulator/internal/models"
)

// Order selects how results are presented.
type Order string

const (
	OrderRating Order = "avaliacao"
	OrderCost   Order = "custo"
)

// ParseOrder maps a query value to an Order, defaulting to rating.
func ParseOrder(s string) Order {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "custo", "cost", "price":
		return OrderCost
	default:
		return OrderRating
	}
}

// Ranking is the outcome of one simulation. Results are held in rating order; the
// cost order is derived from the same slice without re-evaluating anything.
type Ranking struct {
	Input   models.SimulationRequest  `json:"entrada"`
	Results []models.SimulationResult `json:"resultados"`
	Stats   Stats                     `json:"estatisticas"`
}

// ByRating returns a copy of the results, best rated first.
func (r *Ranking) ByRating() []models.SimulationResult {
	out := make([]models.SimulationResult, len(r.Results))
	copy(out, r.Results)
	return out
}

// ByCost returns a copy of the results, cheapest first. Equal costs keep rating order.
func (r *Ranking) ByCost() []models.SimulationResult {
	out := r.ByRating()
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Cost.Total.LessThan(out[b].Cost.Total)
	})
	return out
}

// Ordered returns the results in the requested order.
func (r *Ranking) Ordered(order Order) []models.SimulationResult {
	if order == OrderCost {
		return r.ByCost()
	}
	return r.ByRating()
}

// Best returns the first result in the requested order.
func (r *Ranking) Best(order Order) models.SimulationResult {
	return r.Ordered(order)[0]
}

// Top returns at most n results in the requested order.
func (r *Ranking) Top(order Order, n int) []models.SimulationResult {
	ordered := r.Ordered(order)
	if n >= 0 && len(ordered) > n {
		return ordered[:n]
	}
	return ordered
}
