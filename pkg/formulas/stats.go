// Package formulas holds small statistical helpers shared by the
// returns, evaluation and data source modules.
package formulas

import (
	"gonum.org/v1/gonum/stat"
)

// DefaultPeriodsPerYear is the number of trading days used to annualize daily figures.
const DefaultPeriodsPerYear = 252

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// AnnualizedMeanReturn scales the arithmetic mean of periodic returns by periodsPerYear.
func AnnualizedMeanReturn(returns []float64, periodsPerYear int) float64 {
	if periodsPerYear <= 0 {
		periodsPerYear = DefaultPeriodsPerYear
	}
	return Mean(returns) * float64(periodsPerYear)
}

// PercentChange converts prices to simple returns.
// Returns[i] = (Price[i+1] - Price[i]) / Price[i]
// Callers must ensure every price is strictly positive.
func PercentChange(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}

	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		returns[i-1] = (prices[i] - prices[i-1]) / prices[i-1]
	}
	return returns
}

// CumulativeProduct returns start * Π(1 + increments[0..i]) for each i.
func CumulativeProduct(start float64, increments []float64) []float64 {
	out := make([]float64, len(increments))
	level := start
	for i, inc := range increments {
		level *= 1 + inc
		out[i] = level
	}
	return out
}
