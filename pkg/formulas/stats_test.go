package formulas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentChange(t *testing.T) {
	tests := []struct {
		name     string
		prices   []float64
		expected []float64
	}{
		{
			name:     "empty",
			prices:   []float64{},
			expected: []float64{},
		},
		{
			name:     "single price",
			prices:   []float64{100},
			expected: []float64{},
		},
		{
			name:     "rise then fall",
			prices:   []float64{100, 110, 99},
			expected: []float64{0.10, -0.10},
		},
		{
			name:     "flat",
			prices:   []float64{5, 5, 5},
			expected: []float64{0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PercentChange(tt.prices)
			assert.Len(t, got, len(tt.expected))
			for i := range tt.expected {
				assert.InDelta(t, tt.expected[i], got[i], 1e-12)
			}
		})
	}
}

func TestAnnualizedMeanReturn(t *testing.T) {
	assert.InDelta(t, 0.252, AnnualizedMeanReturn([]float64{0.001, 0.001}, 252), 1e-12)
	assert.Equal(t, 0.0, AnnualizedMeanReturn(nil, 252))
	assert.InDelta(t, 0.252, AnnualizedMeanReturn([]float64{0.001, 0.001}, 0), 1e-12, "non-positive periods fall back to 252")
}

func TestCumulativeProduct(t *testing.T) {
	got := CumulativeProduct(1, []float64{0.1, -0.5, 1})
	assert.InDeltaSlice(t, []float64{1.1, 0.55, 1.1}, got, 1e-12)
	assert.Empty(t, CumulativeProduct(1, nil))
}
