// Package frontier runs the Monte Carlo sweep over random portfolios and
// extracts the sampled efficient frontier.
package frontier

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Bhoomi3044/optivest/internal/domain"
	"github.com/Bhoomi3044/optivest/internal/modules/evaluation"
	"github.com/Bhoomi3044/optivest/internal/modules/sampling"
)

const (
	// DefaultTrialCount is the number of random portfolios per run.
	DefaultTrialCount = 5000
	// DefaultBlockSize is the number of consecutive trials drawn from one random stream.
	DefaultBlockSize = 256
)

// Config controls parallelism. Results never depend on Workers: trial i is
// always drawn from stream i/BlockSize, whichever worker picks the block up.
type Config struct {
	Workers   int
	BlockSize int
}

// Sampler draws and evaluates trialCount portfolios.
type Sampler struct {
	weights *sampling.Sampler
	cfg     Config
	log     zerolog.Logger
}

// NewSampler creates a frontier sampler.
func NewSampler(weights *sampling.Sampler, cfg Config, log zerolog.Logger) *Sampler {
	if cfg.Workers < 1 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.BlockSize < 1 {
		cfg.BlockSize = DefaultBlockSize
	}
	return &Sampler{
		weights: weights,
		cfg:     cfg,
		log:     log.With().Str("component", "frontier").Logger(),
	}
}

// Run builds an evaluator for returns and samples trialCount portfolios.
func (s *Sampler) Run(ctx context.Context, returns domain.ReturnsTable, trialCount int, opts evaluation.Options, streams sampling.Streams) (*domain.TrialSet, error) {
	ev, err := evaluation.NewEvaluator(returns, opts)
	if err != nil {
		return nil, err
	}
	return s.RunWithEvaluator(ctx, ev, trialCount, streams)
}

// RunWithEvaluator samples trialCount portfolios against a prepared evaluator.
// The returned set has exactly trialCount entries, index-aligned.
// Cancellation is checked between trials.
func (s *Sampler) RunWithEvaluator(ctx context.Context, ev *evaluation.Evaluator, trialCount int, streams sampling.Streams) (*domain.TrialSet, error) {
	if trialCount < 1 {
		return nil, &domain.ValidationError{Field: "trial_count", Reason: fmt.Sprintf("must be at least 1, got %d", trialCount)}
	}

	start := time.Now()
	assetCount := ev.NumAssets()
	metrics := make([]domain.PortfolioMetrics, trialCount)
	weights := make([]domain.WeightVector, trialCount)

	blocks := (trialCount + s.cfg.BlockSize - 1) / s.cfg.BlockSize

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)

	for b := 0; b < blocks; b++ {
		lo := b * s.cfg.BlockSize
		hi := min(lo+s.cfg.BlockSize, trialCount)
		rng := streams.Stream(uint64(b))

		g.Go(func() error {
			// Each block owns metrics[lo:hi] and weights[lo:hi] exclusively.
			for i := lo; i < hi; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				w, err := s.weights.Sample(assetCount, rng)
				if err != nil {
					return fmt.Errorf("trial %d: %w", i, err)
				}
				m, err := ev.Evaluate(w)
				if err != nil {
					return fmt.Errorf("trial %d: %w", i, err)
				}
				weights[i] = w
				metrics[i] = m
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.log.Debug().
		Int("trials", trialCount).
		Int("assets", assetCount).
		Int("blocks", blocks).
		Int("workers", s.cfg.Workers).
		Str("method", string(s.weights.Method())).
		Dur("elapsed", time.Since(start)).
		Msg("Frontier sampled")

	return &domain.TrialSet{
		Assets:  ev.Assets(),
		Metrics: metrics,
		Weights: weights,
	}, nil
}
