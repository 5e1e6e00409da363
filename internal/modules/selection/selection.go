// Package selection picks named portfolios out of a trial set and maps an
// investor's risk tolerance to a recommended weight vector.
package selection

import (
	"github.com/Bhoomi3044/optivest/internal/domain"
)

// Selection holds the indices of the notable trials. Ties resolve to the
// earliest trial so repeated calls on the same set agree.
type Selection struct {
	BestSharpe    int `json:"best_sharpe" msgpack:"best_sharpe"`
	LowestRisk    int `json:"lowest_risk" msgpack:"lowest_risk"`
	HighestReturn int `json:"highest_return" msgpack:"highest_return"`
	// SharpeDefined is false when every trial is riskless; BestSharpe then
	// falls back to LowestRisk.
	SharpeDefined bool `json:"sharpe_defined" msgpack:"sharpe_defined"`
}

// SelectBest scans the trial set once. Trials with an undefined Sharpe ratio
// never win the Sharpe comparison.
func SelectBest(ts *domain.TrialSet) (Selection, error) {
	if err := ts.Validate(); err != nil {
		return Selection{}, err
	}

	sel := Selection{BestSharpe: -1}
	for i, m := range ts.Metrics {
		if m.Risk < ts.Metrics[sel.LowestRisk].Risk {
			sel.LowestRisk = i
		}
		if m.Return > ts.Metrics[sel.HighestReturn].Return {
			sel.HighestReturn = i
		}
		if m.SharpeDefined && (sel.BestSharpe < 0 || m.Sharpe > ts.Metrics[sel.BestSharpe].Sharpe) {
			sel.BestSharpe = i
		}
	}

	sel.SharpeDefined = sel.BestSharpe >= 0
	if !sel.SharpeDefined {
		sel.BestSharpe = sel.LowestRisk
	}
	return sel, nil
}

// Recommend returns the weight vector matching the investor's choice:
// the lowest-risk trial, the best-Sharpe trial, or the midpoint of the two.
// The result is a fresh slice; the trial set is not modified.
func Recommend(ts *domain.TrialSet, choice domain.RecommendationChoice) (domain.WeightVector, error) {
	sel, err := SelectBest(ts)
	if err != nil {
		return nil, err
	}
	return sel.Recommend(ts, choice)
}

// Recommend applies a choice to an existing selection over ts.
func (sel Selection) Recommend(ts *domain.TrialSet, choice domain.RecommendationChoice) (domain.WeightVector, error) {
	safest := ts.Weights[sel.LowestRisk]
	best := ts.Weights[sel.BestSharpe]

	switch choice {
	case domain.Conservative:
		return safest.Clone(), nil
	case domain.Balanced:
		return safest.Midpoint(best), nil
	case domain.Aggressive:
		return best.Clone(), nil
	default:
		return nil, &domain.ValidationError{Field: "risk_choice", Reason: "unknown choice " + choice.String()}
	}
}
