package domain

import "fmt"

// TrialSet is the output of one frontier sampling run: index-aligned
// metrics and the weight vectors that produced them.
type TrialSet struct {
	Assets  []string           `json:"assets" msgpack:"assets"`
	Metrics []PortfolioMetrics `json:"metrics" msgpack:"metrics"`
	Weights []WeightVector     `json:"weights" msgpack:"weights"`
}

// Len returns the number of trials.
func (ts *TrialSet) Len() int {
	if ts == nil {
		return 0
	}
	return len(ts.Metrics)
}

// Validate checks that the set is non-empty and index-aligned.
func (ts *TrialSet) Validate() error {
	if ts.Len() == 0 {
		return &ValidationError{Field: "trials", Reason: "trial set is empty"}
	}
	if len(ts.Weights) != len(ts.Metrics) {
		return &ValidationError{Field: "trials", Reason: fmt.Sprintf("%d metrics for %d weight vectors", len(ts.Metrics), len(ts.Weights))}
	}
	return nil
}
