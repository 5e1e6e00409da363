package evaluation

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"github.com/Bhoomi3044/optivest/internal/domain"
)

func returnsTable(assets []string, rows [][]float64) domain.ReturnsTable {
	dates := make([]time.Time, len(rows))
	for i := range dates {
		dates[i] = time.Date(2023, 1, 2+i, 0, 0, 0, 0, time.UTC)
	}
	return domain.ReturnsTable{Dates: dates, Assets: assets, Rows: rows}
}

func randomReturns(seed uint64, obs, n int) domain.ReturnsTable {
	rng := rand.New(rand.NewPCG(seed, 0))
	rows := make([][]float64, obs)
	for i := range rows {
		rows[i] = make([]float64, n)
		for j := range rows[i] {
			rows[i][j] = 0.0005*float64(j+1) + 0.02*rng.NormFloat64()
		}
	}
	assets := make([]string, n)
	for j := range assets {
		assets[j] = string(rune('A' + j))
	}
	return returnsTable(assets, rows)
}

func TestEvaluate_MatchesBruteForce(t *testing.T) {
	returns := randomReturns(1, 120, 4)
	w := domain.WeightVector{0.1, 0.2, 0.3, 0.4}

	e, err := NewEvaluator(returns, DefaultOptions())
	require.NoError(t, err)
	got, err := e.Evaluate(w)
	require.NoError(t, err)

	// Independent computation from pairwise covariances.
	var expRet, variance float64
	for i := range w {
		expRet += stat.Mean(returns.Column(i), nil) * w[i]
		for j := range w {
			variance += w[i] * w[j] * stat.Covariance(returns.Column(i), returns.Column(j), nil) * 252
		}
	}
	expRet *= 252

	assert.InDelta(t, expRet, got.Return, 1e-12)
	assert.InDelta(t, math.Sqrt(variance), got.Risk, 1e-12)
	assert.True(t, got.SharpeDefined)
	assert.InDelta(t, expRet/math.Sqrt(variance), got.Sharpe, 1e-9)
}

func TestEvaluate_SingleAssetRiskIsAnnualizedStdDev(t *testing.T) {
	returns := randomReturns(5, 60, 1)

	for _, periods := range []int{252, 52, 12} {
		m, err := Evaluate(domain.WeightVector{1}, returns, periods)
		require.NoError(t, err)
		assert.InDelta(t, stat.StdDev(returns.Column(0), nil)*math.Sqrt(float64(periods)), m.Risk, 1e-12)
		assert.InDelta(t, stat.Mean(returns.Column(0), nil)*float64(periods), m.Return, 1e-12)
	}
}

func TestEvaluate_ZeroRiskPortfolio(t *testing.T) {
	// A never moves, B alternates +1%/-1%.
	rows := make([][]float64, 10)
	for i := range rows {
		b := 0.01
		if i%2 == 1 {
			b = -0.01
		}
		rows[i] = []float64{0, b}
	}
	e, err := NewEvaluator(returnsTable([]string{"A", "B"}, rows), DefaultOptions())
	require.NoError(t, err)

	m, err := e.Evaluate(domain.WeightVector{1, 0})
	require.NoError(t, err)
	assert.InDelta(t, 0, m.Risk, 1e-15)
	assert.False(t, m.SharpeDefined)
	assert.True(t, math.IsNaN(m.Sharpe))
	_, err = m.SharpeRatio()
	assert.ErrorIs(t, err, domain.ErrUndefinedMetric)

	// Risk is driven only by the exposure to B.
	sdB := stat.StdDev(returnsTable(nil, rows).Column(1), nil) * math.Sqrt(252)
	for _, wb := range []float64{0.25, 0.5, 1} {
		m, err := e.Evaluate(domain.WeightVector{1 - wb, wb})
		require.NoError(t, err)
		assert.InDelta(t, wb*sdB, m.Risk, 1e-12)
		assert.True(t, m.SharpeDefined)
	}
}

func TestEvaluate_RiskFreeRate(t *testing.T) {
	returns := randomReturns(9, 80, 2)
	w := domain.WeightVector{0.5, 0.5}

	base, err := NewEvaluator(returns, DefaultOptions())
	require.NoError(t, err)
	hurdle, err := NewEvaluator(returns, Options{PeriodsPerYear: 252, RiskFreeRate: 0.03})
	require.NoError(t, err)

	m0, err := base.Evaluate(w)
	require.NoError(t, err)
	m1, err := hurdle.Evaluate(w)
	require.NoError(t, err)

	assert.Equal(t, m0.Risk, m1.Risk)
	assert.InDelta(t, (m0.Return-0.03)/m0.Risk, m1.Sharpe, 1e-12)
}

func TestEvaluate_RiskNeverNegative(t *testing.T) {
	returns := randomReturns(3, 30, 6)
	e, err := NewEvaluator(returns, DefaultOptions())
	require.NoError(t, err)

	rng := rand.New(rand.NewPCG(3, 3))
	for i := 0; i < 1000; i++ {
		w := make(domain.WeightVector, 6)
		var sum float64
		for j := range w {
			w[j] = rng.Float64()
			sum += w[j]
		}
		for j := range w {
			w[j] /= sum
		}
		m, err := e.Evaluate(w)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, m.Risk, 0.0)
	}
}

func TestEvaluate_DoesNotMutateInputs(t *testing.T) {
	returns := randomReturns(4, 20, 3)
	before := returns.Column(0)
	w := domain.WeightVector{0.2, 0.3, 0.5}

	_, err := Evaluate(w, returns, 252)
	require.NoError(t, err)

	assert.Equal(t, domain.WeightVector{0.2, 0.3, 0.5}, w)
	assert.Equal(t, before, returns.Column(0))
}

func TestNewEvaluator_Errors(t *testing.T) {
	_, err := NewEvaluator(randomReturns(1, 1, 2), DefaultOptions())
	var dataErr *domain.DataError
	assert.ErrorAs(t, err, &dataErr)

	_, err = NewEvaluator(randomReturns(1, 10, 2), Options{PeriodsPerYear: 0})
	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "periods_per_year", validationErr.Field)

	for _, rate := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err = NewEvaluator(randomReturns(1, 10, 2), Options{PeriodsPerYear: 252, RiskFreeRate: rate})
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "risk_free_rate", validationErr.Field)
	}

	_, err = NewEvaluator(returnsTable(nil, [][]float64{{}, {}}), DefaultOptions())
	assert.ErrorAs(t, err, &validationErr)

	e, err := NewEvaluator(randomReturns(1, 10, 2), DefaultOptions())
	require.NoError(t, err)
	_, err = e.Evaluate(domain.WeightVector{1})
	assert.ErrorAs(t, err, &validationErr)
}

func TestEvaluator_Accessors(t *testing.T) {
	returns := randomReturns(2, 40, 3)
	e, err := NewEvaluator(returns, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 3, e.NumAssets())
	assert.Equal(t, []string{"A", "B", "C"}, e.Assets())
	assert.Len(t, e.ExpectedReturns(), 3)

	cov := e.Covariance()
	cov.SetSym(0, 0, 1e6)
	assert.NotEqual(t, 1e6, e.Covariance().At(0, 0), "covariance accessor returns a copy")
}
