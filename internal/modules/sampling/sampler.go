// Package sampling draws random long-only, fully invested weight vectors.
package sampling

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/Bhoomi3044/optivest/internal/domain"
)

// Method selects how raw draws are generated before normalization.
type Method string

const (
	// MethodUniform normalizes independent U[0,1) draws. Cheap, but not uniform over the simplex.
	MethodUniform Method = "uniform"
	// MethodDirichlet draws from Dirichlet(1,...,1), which is uniform over the simplex.
	MethodDirichlet Method = "dirichlet"
)

// DefaultMaxRetries bounds how many degenerate draws are tolerated in a row.
const DefaultMaxRetries = 8

// ParseMethod validates a sampling method name.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case MethodUniform, MethodDirichlet:
		return m, nil
	case "":
		return MethodUniform, nil
	default:
		return "", &domain.ValidationError{Field: "sampling_method", Reason: fmt.Sprintf("unknown method %q", s)}
	}
}

// drawFunc fills dst with non-negative raw weights.
type drawFunc func(dst []float64, rng *rand.Rand)

// Sampler produces WeightVectors. It holds no random state of its own; every
// call takes the generator to draw from, so one Sampler can serve many workers.
type Sampler struct {
	method     Method
	maxRetries int
	draw       drawFunc
}

// NewSampler creates a sampler for the given method.
func NewSampler(method Method) (*Sampler, error) {
	s := &Sampler{method: method, maxRetries: DefaultMaxRetries}
	switch method {
	case MethodUniform:
		s.draw = drawUniform
	case MethodDirichlet:
		s.draw = drawDirichlet
	default:
		return nil, &domain.ValidationError{Field: "sampling_method", Reason: fmt.Sprintf("unknown method %q", method)}
	}
	return s, nil
}

// Method reports the configured sampling method.
func (s *Sampler) Method() Method {
	return s.method
}

// Sample draws one weight vector over assetCount assets. A draw whose raw
// values sum to zero cannot be normalized and is redrawn; after maxRetries
// such draws in a row a *domain.SamplingError is returned.
func (s *Sampler) Sample(assetCount int, rng *rand.Rand) (domain.WeightVector, error) {
	if assetCount < 1 {
		return nil, &domain.ValidationError{Field: "asset_count", Reason: fmt.Sprintf("must be at least 1, got %d", assetCount)}
	}

	w := make([]float64, assetCount)
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		s.draw(w, rng)
		sum := floats.Sum(w)
		if sum > 0 {
			floats.Scale(1/sum, w)
			return domain.WeightVector(w), nil
		}
	}
	return nil, &domain.SamplingError{AssetCount: assetCount, Attempts: s.maxRetries}
}

func drawUniform(dst []float64, rng *rand.Rand) {
	for i := range dst {
		dst[i] = rng.Float64()
	}
}

func drawDirichlet(dst []float64, rng *rand.Rand) {
	alpha := make([]float64, len(dst))
	for i := range alpha {
		alpha[i] = 1
	}
	distmv.NewDirichlet(alpha, rng).Rand(dst)
}
