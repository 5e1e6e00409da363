package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Bhoomi3044/optivest/internal/domain"
	"github.com/Bhoomi3044/optivest/internal/modules/charts"
	"github.com/Bhoomi3044/optivest/internal/modules/datasource"
	"github.com/Bhoomi3044/optivest/internal/modules/evaluation"
	"github.com/Bhoomi3044/optivest/internal/modules/optimization"
	"github.com/Bhoomi3044/optivest/internal/modules/report"
	"github.com/Bhoomi3044/optivest/internal/modules/sampling"
)

type runFlags struct {
	prices       string
	trials       int
	periods      int
	riskFreeRate float64
	risk         string
	seed         uint64
	method       string
	workers      int
	format       string
	output       string
	chart        string
	pie          string
}

func newRunCommand(g *globalOptions) *cobra.Command {
	f := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Sample portfolios and recommend an allocation",
		Long: `Sample random long-only portfolios over a price history and report the
lowest-risk, best-Sharpe and highest-return portfolios, the sampled efficient
frontier and the allocation recommended for the chosen risk tolerance.

Without --prices the bundled synthetic data set (AAPL, MSFT, GOOG, AMZN) is
used. Without --risk, an interactive terminal is asked to pick one; otherwise
the configured default applies.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOptimize(cmd, g, f)
		},
	}

	cmd.Flags().StringVarP(&f.prices, "prices", "p", "", "CSV price file (date column + one column per asset)")
	cmd.Flags().IntVarP(&f.trials, "trials", "n", 0, "Number of random portfolios (default from config: 5000)")
	cmd.Flags().IntVar(&f.periods, "periods", 0, "Observation periods per year (default from config: 252)")
	cmd.Flags().Float64Var(&f.riskFreeRate, "risk-free-rate", 0, "Annual risk-free rate subtracted in the Sharpe ratio")
	cmd.Flags().StringVarP(&f.risk, "risk", "r", "", "Risk tolerance: conservative, balanced, aggressive")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "Random seed (default: 42 for sample data, system entropy for files)")
	cmd.Flags().StringVar(&f.method, "method", "", "Weight sampling method: uniform, dirichlet")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "Parallel sampling workers (default: logical CPUs)")
	cmd.Flags().StringVarP(&f.format, "format", "f", "table", "Output format: table, json, msgpack")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().StringVar(&f.chart, "chart", "", "Write the risk/return scatter chart to a PNG file")
	cmd.Flags().StringVar(&f.pie, "pie", "", "Write the recommended allocation pie chart to a PNG file")

	return cmd
}

func runOptimize(cmd *cobra.Command, g *globalOptions, f *runFlags) error {
	opts, err := g.cfg.RunOptions()
	if err != nil {
		return err
	}
	if err := f.apply(cmd, &opts); err != nil {
		return err
	}

	if !cmd.Flags().Changed("risk") {
		if choice, ok := promptRiskChoice(cmd.InOrStdin(), cmd.ErrOrStderr(), opts.Choice); ok {
			opts.Choice = choice
		}
	}

	format, err := report.ParseFormat(f.format)
	if err != nil {
		return err
	}

	svcCfg := g.cfg.ServiceConfig()
	if cmd.Flags().Changed("workers") {
		if f.workers < 1 {
			return &domain.ValidationError{Field: "workers", Reason: fmt.Sprintf("must be at least 1, got %d", f.workers)}
		}
		svcCfg.Workers = f.workers
	}
	svc := optimization.NewService(svcCfg, nil, g.log)

	var result *optimization.Result
	if f.prices == "" {
		result, err = svc.OptimizeSample(cmd.Context(), opts)
	} else {
		var prices domain.PriceTable
		prices, err = datasource.LoadCSVFile(f.prices)
		if err != nil {
			return err
		}
		opts.Source = optimization.SourceFile
		result, err = svc.Optimize(cmd.Context(), prices, opts)
	}
	if err != nil {
		return err
	}

	if err := writeOutput(cmd.OutOrStdout(), f.output, func(w io.Writer) error {
		return report.Write(w, format, result)
	}); err != nil {
		return err
	}

	chartSvc := charts.NewService(g.log)
	if f.chart != "" {
		if err := writeFile(f.chart, func(w io.Writer) error { return chartSvc.RenderFrontier(w, result) }); err != nil {
			return err
		}
	}
	if f.pie != "" {
		if err := writeFile(f.pie, func(w io.Writer) error { return chartSvc.RenderAllocation(w, result) }); err != nil {
			return err
		}
	}

	return nil
}

// apply overlays explicitly set flags on the configured run options.
func (f *runFlags) apply(cmd *cobra.Command, opts *optimization.RunOptions) error {
	flags := cmd.Flags()

	if flags.Changed("trials") {
		if f.trials < 1 {
			return &domain.ValidationError{Field: "trials", Reason: fmt.Sprintf("must be at least 1, got %d", f.trials)}
		}
		opts.TrialCount = f.trials
	}
	if flags.Changed("periods") {
		opts.PeriodsPerYear = f.periods
	}
	if flags.Changed("risk-free-rate") {
		if err := evaluation.ValidateRiskFreeRate(f.riskFreeRate); err != nil {
			return err
		}
		opts.RiskFreeRate = f.riskFreeRate
	}
	if flags.Changed("risk") {
		choice, err := domain.ParseRecommendationChoice(f.risk)
		if err != nil {
			return err
		}
		opts.Choice = choice
	}
	if flags.Changed("method") {
		method, err := sampling.ParseMethod(f.method)
		if err != nil {
			return err
		}
		opts.Method = method
	}
	if flags.Changed("seed") {
		seed := f.seed
		opts.Seed = &seed
	}
	return nil
}

// writeOutput writes to path, or to stdout when path is empty.
func writeOutput(stdout io.Writer, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(stdout)
	}
	return writeFile(path, write)
}

// writeFile renders into memory first so a failed render leaves no partial file.
func writeFile(path string, write func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
