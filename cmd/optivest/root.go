package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Bhoomi3044/optivest/internal/config"
	"github.com/Bhoomi3044/optivest/pkg/logger"
)

var version = "dev"

// globalOptions carries the persistent flags and what PersistentPreRunE
// builds from them.
type globalOptions struct {
	configPath string
	logLevel   string

	cfg *config.Config
	log zerolog.Logger
}

func newRootCommand() *cobra.Command {
	g := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "optivest",
		Short: "Optivest - Monte Carlo portfolio sampler",
		Long: `Optivest samples thousands of random long-only portfolios over a price
history, reports the lowest-risk, best-Sharpe and highest-return portfolios,
traces the sampled efficient frontier and recommends an allocation for a
conservative, balanced or aggressive investor.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&g.configPath, "config", "", "YAML config file (default: $OPTIVEST_CONFIG)")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return g.load(cmd)
	}

	// Add subcommands
	cmd.AddCommand(newRunCommand(g))
	cmd.AddCommand(newSampleCommand(g))
	cmd.AddCommand(newServeCommand(g))

	return cmd
}

func (g *globalOptions) load(cmd *cobra.Command) error {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return err
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	g.cfg = cfg

	stderr := cmd.ErrOrStderr()
	pretty := false
	if f, ok := stderr.(*os.File); ok {
		pretty = term.IsTerminal(int(f.Fd()))
	}

	g.log = logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: pretty,
		Output: stderr,
	})
	logger.SetGlobalLogger(g.log)
	return nil
}

func execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return newRootCommand().ExecuteContext(ctx)
}
