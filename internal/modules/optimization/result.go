package optimization

import (
	"time"

	"github.com/Bhoomi3044/optivest/internal/domain"
	"github.com/Bhoomi3044/optivest/internal/modules/frontier"
	"github.com/Bhoomi3044/optivest/internal/modules/sampling"
	"github.com/Bhoomi3044/optivest/internal/modules/selection"
)

// Result is the outcome of one optimization run.
type Result struct {
	RunID          string          `json:"run_id" msgpack:"run_id"`
	Seed           uint64          `json:"seed" msgpack:"seed"`
	Method         sampling.Method `json:"method" msgpack:"method"`
	Source         string          `json:"source" msgpack:"source"`
	Assets         []string        `json:"assets" msgpack:"assets"`
	PeriodsPerYear int             `json:"periods_per_year" msgpack:"periods_per_year"`
	RiskFreeRate   float64         `json:"risk_free_rate" msgpack:"risk_free_rate"`

	Prices  Preview `json:"prices_preview" msgpack:"prices_preview"`
	Returns Preview `json:"returns_preview" msgpack:"returns_preview"`

	Trials        *domain.TrialSet    `json:"trials" msgpack:"trials"`
	Selection     selection.Selection `json:"selection" msgpack:"selection"`
	BestSharpe    Portfolio           `json:"best_sharpe" msgpack:"best_sharpe"`
	LowestRisk    Portfolio           `json:"lowest_risk" msgpack:"lowest_risk"`
	HighestReturn Portfolio           `json:"highest_return" msgpack:"highest_return"`
	Recommended   Recommendation      `json:"recommended" msgpack:"recommended"`
	Frontier      []frontier.Point    `json:"frontier" msgpack:"frontier"`

	Elapsed time.Duration `json:"elapsed_ns" msgpack:"elapsed_ns"`
}

// Portfolio is one named trial with its weights keyed by asset.
type Portfolio struct {
	Index   int                     `json:"index" msgpack:"index"`
	Metrics domain.PortfolioMetrics `json:"metrics" msgpack:"metrics"`
	Weights map[string]float64      `json:"weights" msgpack:"weights"`
}

// Recommendation is the portfolio matching the investor's risk choice.
// A balanced recommendation is not itself a trial, so it carries its own metrics.
type Recommendation struct {
	Choice      domain.RecommendationChoice `json:"choice" msgpack:"choice"`
	Title       string                      `json:"title" msgpack:"title"`
	Description string                      `json:"description" msgpack:"description"`
	Metrics     domain.PortfolioMetrics     `json:"metrics" msgpack:"metrics"`
	Weights     map[string]float64          `json:"weights" msgpack:"weights"`
}

// Preview holds the leading rows of a price or returns table.
type Preview struct {
	Dates []time.Time `json:"dates" msgpack:"dates"`
	Rows  [][]float64 `json:"rows" msgpack:"rows"`
}

func previewPrices(p domain.PriceTable) Preview {
	return Preview{Dates: p.Dates, Rows: p.Rows}
}

func previewReturns(r domain.ReturnsTable) Preview {
	return Preview{Dates: r.Dates, Rows: r.Rows}
}

func newPortfolio(ts *domain.TrialSet, i int) Portfolio {
	return Portfolio{
		Index:   i,
		Metrics: ts.Metrics[i],
		Weights: ts.Weights[i].Labeled(ts.Assets),
	}
}
