// Package optimization runs the full portfolio pipeline: returns, frontier
// sampling, selection, recommendation and the frontier envelope.
package optimization

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Bhoomi3044/optivest/internal/domain"
	"github.com/Bhoomi3044/optivest/internal/modules/datasource"
	"github.com/Bhoomi3044/optivest/internal/modules/evaluation"
	"github.com/Bhoomi3044/optivest/internal/modules/frontier"
	"github.com/Bhoomi3044/optivest/internal/modules/returns"
	"github.com/Bhoomi3044/optivest/internal/modules/sampling"
	"github.com/Bhoomi3044/optivest/internal/modules/selection"
	"github.com/Bhoomi3044/optivest/pkg/formulas"
)

// PreviewRows is the number of leading price and return rows kept in a Result.
const PreviewRows = 5

// Run sources, used as a metrics label.
const (
	SourceSample = "sample"
	SourceUpload = "upload"
	SourceFile   = "file"
)

// RunOptions parameterizes a single optimization.
type RunOptions struct {
	TrialCount     int
	PeriodsPerYear int
	RiskFreeRate   float64
	Choice         domain.RecommendationChoice
	Method         sampling.Method
	// Seed fixes the random streams. Nil draws a seed from system entropy;
	// the seed actually used is reported in the Result.
	Seed    *uint64
	Buckets int
	Source  string
}

// DefaultRunOptions returns the standard run: 5000 uniform trials over daily
// data with a zero risk-free rate and a balanced recommendation.
func DefaultRunOptions() RunOptions {
	return RunOptions{
		TrialCount:     frontier.DefaultTrialCount,
		PeriodsPerYear: formulas.DefaultPeriodsPerYear,
		Choice:         domain.Balanced,
		Method:         sampling.MethodUniform,
		Buckets:        frontier.DefaultBuckets,
		Source:         SourceFile,
	}
}

// Recorder receives one observation per completed or failed run.
type Recorder interface {
	ObserveRun(source string, trials int, elapsed time.Duration, err error)
}

type nopRecorder struct{}

func (nopRecorder) ObserveRun(string, int, time.Duration, error) {}

// Config holds the parallelism settings shared by every run.
type Config struct {
	Workers   int
	BlockSize int
}

// Service orchestrates optimization runs.
type Service struct {
	cfg      Config
	recorder Recorder
	log      zerolog.Logger
}

// NewService creates an optimization service. A nil recorder disables metrics.
func NewService(cfg Config, recorder Recorder, log zerolog.Logger) *Service {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Service{
		cfg:      cfg,
		recorder: recorder,
		log:      log.With().Str("component", "optimization").Logger(),
	}
}

// Optimize runs the pipeline over prices.
func (s *Service) Optimize(ctx context.Context, prices domain.PriceTable, opts RunOptions) (*Result, error) {
	start := time.Now()
	result, err := s.optimize(ctx, prices, opts)
	s.recorder.ObserveRun(opts.Source, opts.TrialCount, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// OptimizeSample runs the pipeline over the bundled synthetic data set.
// Without an explicit seed the sample run is fully reproducible.
func (s *Service) OptimizeSample(ctx context.Context, opts RunOptions) (*Result, error) {
	prices, err := datasource.Synthetic(datasource.DefaultSyntheticConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to generate sample data: %w", err)
	}
	if opts.Seed == nil {
		seed := uint64(datasource.SampleSeed)
		opts.Seed = &seed
	}
	opts.Source = SourceSample
	return s.Optimize(ctx, prices, opts)
}

func (s *Service) optimize(ctx context.Context, prices domain.PriceTable, opts RunOptions) (*Result, error) {
	start := time.Now()
	runID := uuid.New().String()

	if opts.Method == "" {
		opts.Method = sampling.MethodUniform
	}
	if opts.Buckets < 1 {
		opts.Buckets = frontier.DefaultBuckets
	}

	rets, err := returns.Compute(prices)
	if err != nil {
		return nil, err
	}

	ev, err := evaluation.NewEvaluator(rets, evaluation.Options{
		PeriodsPerYear: opts.PeriodsPerYear,
		RiskFreeRate:   opts.RiskFreeRate,
	})
	if err != nil {
		return nil, err
	}

	weights, err := sampling.NewSampler(opts.Method)
	if err != nil {
		return nil, err
	}

	streams := sampling.EntropyStreams()
	if opts.Seed != nil {
		streams = sampling.NewStreams(*opts.Seed)
	}

	sampler := frontier.NewSampler(weights, frontier.Config{
		Workers:   s.cfg.Workers,
		BlockSize: s.cfg.BlockSize,
	}, s.log)

	trials, err := sampler.RunWithEvaluator(ctx, ev, opts.TrialCount, streams)
	if err != nil {
		return nil, fmt.Errorf("frontier sampling failed: %w", err)
	}

	sel, err := selection.SelectBest(trials)
	if err != nil {
		return nil, err
	}

	recommended, err := sel.Recommend(trials, opts.Choice)
	if err != nil {
		return nil, err
	}
	recommendedMetrics, err := ev.Evaluate(recommended)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate recommended portfolio: %w", err)
	}

	assets := trials.Assets
	result := &Result{
		RunID:          runID,
		Seed:           streams.Seed(),
		Method:         opts.Method,
		Source:         opts.Source,
		Assets:         assets,
		PeriodsPerYear: opts.PeriodsPerYear,
		RiskFreeRate:   opts.RiskFreeRate,
		Prices:         previewPrices(prices.Head(PreviewRows)),
		Returns:        previewReturns(rets.Head(PreviewRows)),
		Trials:         trials,
		Selection:      sel,
		BestSharpe:     newPortfolio(trials, sel.BestSharpe),
		LowestRisk:     newPortfolio(trials, sel.LowestRisk),
		HighestReturn:  newPortfolio(trials, sel.HighestReturn),
		Recommended: Recommendation{
			Choice:      opts.Choice,
			Title:       opts.Choice.Title(),
			Description: opts.Choice.Description(),
			Metrics:     recommendedMetrics,
			Weights:     recommended.Labeled(assets),
		},
		Frontier: frontier.Envelope(trials, opts.Buckets),
		Elapsed:  time.Since(start),
	}

	s.log.Info().
		Str("run_id", runID).
		Str("source", opts.Source).
		Int("trials", trials.Len()).
		Int("assets", len(assets)).
		Uint64("seed", result.Seed).
		Str("method", string(opts.Method)).
		Str("choice", opts.Choice.String()).
		Bool("sharpe_defined", sel.SharpeDefined).
		Dur("elapsed", result.Elapsed).
		Msg("Optimization completed")

	return result, nil
}
