// Package evaluation scores weight vectors against a returns history:
// annualized expected return, volatility from the covariance matrix, and Sharpe ratio.
package evaluation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/Bhoomi3044/optivest/internal/domain"
	"github.com/Bhoomi3044/optivest/pkg/formulas"
)

// RiskEpsilon is the volatility below which a portfolio counts as riskless
// and its Sharpe ratio is reported as undefined.
const RiskEpsilon = 1e-12

// Options configures annualization and the Sharpe ratio hurdle.
type Options struct {
	PeriodsPerYear int
	// RiskFreeRate is subtracted from the annualized return before dividing by
	// volatility. Zero reproduces the plain return/volatility ratio.
	RiskFreeRate float64
}

// DefaultOptions returns daily data annualization with a zero risk-free rate.
func DefaultOptions() Options {
	return Options{PeriodsPerYear: formulas.DefaultPeriodsPerYear}
}

// ValidateRiskFreeRate rejects rates that would make every Sharpe ratio
// NaN or infinite.
func ValidateRiskFreeRate(rate float64) error {
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return &domain.ValidationError{Field: "risk_free_rate", Reason: fmt.Sprintf("must be a finite number, got %v", rate)}
	}
	return nil
}

// Evaluator holds the annualized mean vector and covariance matrix of one
// returns table. It is immutable after construction and safe for concurrent use.
type Evaluator struct {
	assets []string
	mean   *mat.VecDense
	cov    *mat.SymDense
	opts   Options
}

// NewEvaluator estimates the return moments once so that each Evaluate call
// costs a single quadratic form.
func NewEvaluator(returns domain.ReturnsTable, opts Options) (*Evaluator, error) {
	if opts.PeriodsPerYear < 1 {
		return nil, &domain.ValidationError{Field: "periods_per_year", Reason: fmt.Sprintf("must be at least 1, got %d", opts.PeriodsPerYear)}
	}
	if err := ValidateRiskFreeRate(opts.RiskFreeRate); err != nil {
		return nil, err
	}
	n := returns.NumAssets()
	if n < 1 {
		return nil, &domain.ValidationError{Field: "asset_count", Reason: "returns table has no assets"}
	}
	obs := returns.NumRows()
	if obs < 2 {
		return nil, domain.NewDataError("estimate covariance", fmt.Sprintf("need at least 2 return observations (3 prices), got %d", obs))
	}

	x := mat.NewDense(obs, n, nil)
	for t, row := range returns.Rows {
		if len(row) != n {
			return nil, &domain.DataError{Op: "estimate covariance", Row: t, Reason: fmt.Sprintf("%d values for %d assets", len(row), n)}
		}
		x.SetRow(t, row)
	}

	periods := float64(opts.PeriodsPerYear)

	cov := mat.NewSymDense(n, nil)
	stat.CovarianceMatrix(cov, x, nil)
	cov.ScaleSym(periods, cov)

	mean := mat.NewVecDense(n, nil)
	for j := 0; j < n; j++ {
		mean.SetVec(j, formulas.AnnualizedMeanReturn(mat.Col(nil, j, x), opts.PeriodsPerYear))
	}

	return &Evaluator{
		assets: append([]string(nil), returns.Assets...),
		mean:   mean,
		cov:    cov,
		opts:   opts,
	}, nil
}

// NumAssets returns the dimension weight vectors must have.
func (e *Evaluator) NumAssets() int {
	return len(e.assets)
}

// Assets returns the asset identifiers in column order.
func (e *Evaluator) Assets() []string {
	return append([]string(nil), e.assets...)
}

// ExpectedReturns returns the annualized mean return of each asset.
func (e *Evaluator) ExpectedReturns() []float64 {
	return mat.Col(nil, 0, e.mean)
}

// Covariance returns a copy of the annualized covariance matrix.
func (e *Evaluator) Covariance() *mat.SymDense {
	c := mat.NewSymDense(e.cov.SymmetricDim(), nil)
	c.CopySym(e.cov)
	return c
}

// Options returns the annualization settings.
func (e *Evaluator) Options() Options {
	return e.opts
}

// Evaluate computes the metrics of one weight vector. Riskless portfolios
// get SharpeDefined=false and a NaN Sharpe instead of ±Inf.
func (e *Evaluator) Evaluate(w domain.WeightVector) (domain.PortfolioMetrics, error) {
	n := len(e.assets)
	if len(w) != n {
		return domain.PortfolioMetrics{}, &domain.ValidationError{Field: "weights", Reason: fmt.Sprintf("length %d, expected %d", len(w), n)}
	}

	wv := mat.NewVecDense(n, append([]float64(nil), w...))
	ret := mat.Dot(e.mean, wv)

	// Rounding can push a near-singular quadratic form slightly below zero.
	variance := mat.Inner(wv, e.cov, wv)
	if variance < 0 {
		variance = 0
	}
	risk := math.Sqrt(variance)

	m := domain.PortfolioMetrics{Risk: risk, Return: ret, Sharpe: math.NaN()}
	if risk > RiskEpsilon {
		if sharpe := (ret - e.opts.RiskFreeRate) / risk; !math.IsNaN(sharpe) && !math.IsInf(sharpe, 0) {
			m.Sharpe = sharpe
			m.SharpeDefined = true
		}
	}
	return m, nil
}

// Evaluate is a one-shot helper for callers scoring a single vector.
// Hot loops should build an Evaluator once instead.
func Evaluate(w domain.WeightVector, returns domain.ReturnsTable, periodsPerYear int) (domain.PortfolioMetrics, error) {
	e, err := NewEvaluator(returns, Options{PeriodsPerYear: periodsPerYear})
	if err != nil {
		return domain.PortfolioMetrics{}, err
	}
	return e.Evaluate(w)
}
