package optimization

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bhoomi3044/optivest/internal/domain"
	"github.com/Bhoomi3044/optivest/internal/modules/datasource"
	"github.com/Bhoomi3044/optivest/internal/modules/sampling"
)

type recordedRun struct {
	source string
	trials int
	err    error
}

type fakeRecorder struct {
	runs []recordedRun
}

func (f *fakeRecorder) ObserveRun(source string, trials int, _ time.Duration, err error) {
	f.runs = append(f.runs, recordedRun{source: source, trials: trials, err: err})
}

func seeded(seed uint64) *uint64 { return &seed }

func newTestService(rec Recorder) *Service {
	return NewService(Config{Workers: 2}, rec, zerolog.Nop())
}

func samplePrices(t *testing.T) domain.PriceTable {
	t.Helper()
	prices, err := datasource.Synthetic(datasource.DefaultSyntheticConfig())
	require.NoError(t, err)
	return prices
}

func TestOptimize(t *testing.T) {
	rec := &fakeRecorder{}
	svc := newTestService(rec)

	opts := DefaultRunOptions()
	opts.TrialCount = 1000
	opts.Seed = seeded(7)

	result, err := svc.Optimize(context.Background(), samplePrices(t), opts)
	require.NoError(t, err)

	_, err = uuid.Parse(result.RunID)
	assert.NoError(t, err)
	assert.Equal(t, uint64(7), result.Seed)
	assert.Equal(t, []string{"AAPL", "MSFT", "GOOG", "AMZN"}, result.Assets)
	assert.Equal(t, 1000, result.Trials.Len())

	assert.Len(t, result.Prices.Rows, PreviewRows)
	assert.Len(t, result.Returns.Rows, PreviewRows)

	sel := result.Selection
	assert.True(t, sel.SharpeDefined)
	assert.Equal(t, sel.BestSharpe, result.BestSharpe.Index)
	assert.Equal(t, result.Trials.Metrics[sel.LowestRisk], result.LowestRisk.Metrics)
	assert.Equal(t, result.Trials.Metrics[sel.HighestReturn], result.HighestReturn.Metrics)

	for i, m := range result.Trials.Metrics {
		assert.GreaterOrEqual(t, m.Risk, result.LowestRisk.Metrics.Risk, "trial %d", i)
		assert.LessOrEqual(t, m.Return, result.HighestReturn.Metrics.Return, "trial %d", i)
	}

	// Balanced is the midpoint of the lowest-risk and best-Sharpe weights.
	rc := result.Recommended
	assert.Equal(t, domain.Balanced, rc.Choice)
	assert.Equal(t, "Moderate", rc.Title)
	for _, a := range result.Assets {
		want := (result.LowestRisk.Weights[a] + result.BestSharpe.Weights[a]) / 2
		assert.InDelta(t, want, rc.Weights[a], 1e-12, a)
	}
	assert.Positive(t, rc.Metrics.Risk)

	require.NotEmpty(t, result.Frontier)
	for i := 1; i < len(result.Frontier); i++ {
		assert.Greater(t, result.Frontier[i].Risk, result.Frontier[i-1].Risk)
		assert.Greater(t, result.Frontier[i].Return, result.Frontier[i-1].Return)
	}

	require.Len(t, rec.runs, 1)
	assert.Equal(t, SourceFile, rec.runs[0].source)
	assert.Equal(t, 1000, rec.runs[0].trials)
	assert.NoError(t, rec.runs[0].err)
}

func TestOptimize_SeedReproducesRun(t *testing.T) {
	prices := samplePrices(t)
	opts := DefaultRunOptions()
	opts.TrialCount = 600
	opts.Seed = seeded(99)

	first, err := NewService(Config{Workers: 1}, nil, zerolog.Nop()).Optimize(context.Background(), prices, opts)
	require.NoError(t, err)
	second, err := NewService(Config{Workers: 4}, nil, zerolog.Nop()).Optimize(context.Background(), prices, opts)
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, first.Trials, second.Trials)
	assert.Equal(t, first.Selection, second.Selection)
	assert.Equal(t, first.Recommended.Weights, second.Recommended.Weights)
}

func TestOptimize_EntropySeedIsReported(t *testing.T) {
	prices := samplePrices(t)
	opts := DefaultRunOptions()
	opts.TrialCount = 300

	first, err := newTestService(nil).Optimize(context.Background(), prices, opts)
	require.NoError(t, err)

	opts.Seed = seeded(first.Seed)
	replay, err := newTestService(nil).Optimize(context.Background(), prices, opts)
	require.NoError(t, err)
	assert.Equal(t, first.Trials, replay.Trials)
}

func TestOptimize_Choices(t *testing.T) {
	prices := samplePrices(t)

	for _, choice := range domain.Choices {
		t.Run(choice.String(), func(t *testing.T) {
			opts := DefaultRunOptions()
			opts.TrialCount = 500
			opts.Seed = seeded(1)
			opts.Choice = choice
			opts.Method = sampling.MethodDirichlet

			result, err := newTestService(nil).Optimize(context.Background(), prices, opts)
			require.NoError(t, err)

			switch choice {
			case domain.Conservative:
				assert.Equal(t, result.LowestRisk.Weights, result.Recommended.Weights)
				assert.Equal(t, result.LowestRisk.Metrics, result.Recommended.Metrics)
			case domain.Aggressive:
				assert.Equal(t, result.BestSharpe.Weights, result.Recommended.Weights)
			}
			assert.Equal(t, choice.Description(), result.Recommended.Description)
			assert.Equal(t, sampling.MethodDirichlet, result.Method)
		})
	}
}

func TestOptimize_Errors(t *testing.T) {
	prices := samplePrices(t)

	tests := []struct {
		name   string
		prices domain.PriceTable
		mutate func(*RunOptions)
	}{
		{
			name:   "zero trials",
			prices: prices,
			mutate: func(o *RunOptions) { o.TrialCount = 0 },
		},
		{
			name:   "zero periods",
			prices: prices,
			mutate: func(o *RunOptions) { o.PeriodsPerYear = 0 },
		},
		{
			name:   "unknown method",
			prices: prices,
			mutate: func(o *RunOptions) { o.Method = "sobol" },
		},
		{
			name:   "unknown choice",
			prices: prices,
			mutate: func(o *RunOptions) { o.Choice = domain.RecommendationChoice(9) },
		},
		{
			name:   "too few rows",
			prices: prices.Head(2),
			mutate: func(*RunOptions) {},
		},
		{
			name:   "empty table",
			prices: domain.PriceTable{},
			mutate: func(*RunOptions) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &fakeRecorder{}
			opts := DefaultRunOptions()
			opts.TrialCount = 50
			opts.Seed = seeded(3)
			tt.mutate(&opts)

			result, err := newTestService(rec).Optimize(context.Background(), tt.prices, opts)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, domain.IsUserError(err), "got %v", err)

			require.Len(t, rec.runs, 1)
			assert.Equal(t, err, rec.runs[0].err)
		})
	}
}

func TestOptimize_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := DefaultRunOptions()
	_, err := newTestService(nil).Optimize(ctx, samplePrices(t), opts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, domain.IsUserError(err))
}

func TestOptimizeSample(t *testing.T) {
	rec := &fakeRecorder{}
	opts := DefaultRunOptions()
	opts.TrialCount = 400

	first, err := newTestService(rec).OptimizeSample(context.Background(), opts)
	require.NoError(t, err)
	second, err := newTestService(nil).OptimizeSample(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, uint64(datasource.SampleSeed), first.Seed)
	assert.Equal(t, SourceSample, first.Source)
	assert.Equal(t, first.Trials, second.Trials)

	require.Len(t, rec.runs, 1)
	assert.Equal(t, SourceSample, rec.runs[0].source)
}
