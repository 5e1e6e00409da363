package datasource

import (
	"fmt"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/Bhoomi3044/optivest/internal/domain"
	"github.com/Bhoomi3044/optivest/pkg/formulas"
)

// SampleSeed is the fixed seed behind the bundled sample data.
const SampleSeed = 42

// AssetParams describes one synthetic asset's per-period increment distribution.
type AssetParams struct {
	Symbol     string
	Drift      float64
	Volatility float64
}

// SyntheticConfig controls sample data generation.
type SyntheticConfig struct {
	Start  time.Time
	Rows   int
	Seed   uint64
	Assets []AssetParams
}

// DefaultSyntheticConfig is 300 daily rows of four large-cap tickers.
func DefaultSyntheticConfig() SyntheticConfig {
	return SyntheticConfig{
		Start: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		Rows:  300,
		Seed:  SampleSeed,
		Assets: []AssetParams{
			{Symbol: "AAPL", Drift: 0.0005, Volatility: 0.02},
			{Symbol: "MSFT", Drift: 0.0004, Volatility: 0.018},
			{Symbol: "GOOG", Drift: 0.0006, Volatility: 0.022},
			{Symbol: "AMZN", Drift: 0.0003, Volatility: 0.019},
		},
	}
}

// Synthetic generates a price table whose assets follow independent Gaussian
// increments compounded from a starting level of 1. Each asset draws from its
// own stream, so adding an asset does not change the others' paths.
func Synthetic(cfg SyntheticConfig) (domain.PriceTable, error) {
	if cfg.Rows < 2 {
		return domain.PriceTable{}, &domain.ValidationError{Field: "rows", Reason: fmt.Sprintf("must be at least 2, got %d", cfg.Rows)}
	}
	if len(cfg.Assets) == 0 {
		return domain.PriceTable{}, &domain.ValidationError{Field: "assets", Reason: "no synthetic assets configured"}
	}

	dates := make([]time.Time, cfg.Rows)
	for i := range dates {
		dates[i] = cfg.Start.AddDate(0, 0, i)
	}

	assets := make([]string, len(cfg.Assets))
	rows := make([][]float64, cfg.Rows)
	for i := range rows {
		rows[i] = make([]float64, len(cfg.Assets))
	}

	for j, a := range cfg.Assets {
		if a.Volatility <= 0 {
			return domain.PriceTable{}, &domain.ValidationError{Field: "volatility", Reason: fmt.Sprintf("asset %s: must be positive", a.Symbol)}
		}
		assets[j] = a.Symbol

		dist := distuv.Normal{Mu: a.Drift, Sigma: a.Volatility, Src: rand.NewPCG(cfg.Seed, uint64(j))}
		increments := make([]float64, cfg.Rows)
		for i := range increments {
			increments[i] = dist.Rand()
		}
		for i, p := range formulas.CumulativeProduct(1, increments) {
			rows[i][j] = p
		}
	}

	return domain.NewPriceTable(dates, assets, rows)
}
