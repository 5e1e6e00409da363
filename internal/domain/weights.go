package domain

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// WeightTolerance bounds how far a weight vector's sum may drift from 1.
const WeightTolerance = 1e-9

// WeightVector is a long-only, fully invested allocation: one non-negative
// weight per asset, summing to 1.
type WeightVector []float64

// Sum returns the total weight.
func (w WeightVector) Sum() float64 {
	return floats.Sum(w)
}

// Validate checks the simplex invariants against the expected asset count.
func (w WeightVector) Validate(assetCount int) error {
	if len(w) != assetCount {
		return &ValidationError{Field: "weights", Reason: fmt.Sprintf("length %d, expected %d", len(w), assetCount)}
	}
	for i, v := range w {
		if v < 0 || math.IsNaN(v) {
			return &ValidationError{Field: "weights", Reason: fmt.Sprintf("component %d is %g", i, v)}
		}
	}
	if s := w.Sum(); math.Abs(s-1) > WeightTolerance {
		return &ValidationError{Field: "weights", Reason: fmt.Sprintf("sum is %.12f, expected 1", s)}
	}
	return nil
}

// Midpoint returns the elementwise mean of w and other.
// Both vectors must have the same length.
func (w WeightVector) Midpoint(other WeightVector) WeightVector {
	out := make(WeightVector, len(w))
	for i := range w {
		out[i] = (w[i] + other[i]) / 2
	}
	return out
}

// Labeled pairs each weight with its asset identifier.
func (w WeightVector) Labeled(assets []string) map[string]float64 {
	out := make(map[string]float64, len(w))
	for i, a := range assets {
		if i < len(w) {
			out[a] = w[i]
		}
	}
	return out
}

// Clone returns an independent copy.
func (w WeightVector) Clone() WeightVector {
	return append(WeightVector(nil), w...)
}
