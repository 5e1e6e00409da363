package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Bhoomi3044/optivest/internal/domain"
	"github.com/Bhoomi3044/optivest/internal/modules/charts"
	"github.com/Bhoomi3044/optivest/internal/modules/optimization"
	"github.com/Bhoomi3044/optivest/internal/server"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand(g *globalOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API.

Endpoints:
  GET  /api/optimizer/sample              Optimize the synthetic data set
  GET  /api/optimizer/sample/chart.png    Risk/return scatter of a sample run
  GET  /api/optimizer/sample/allocation.png
  POST /api/optimizer/run                 Optimize an uploaded CSV (body or multipart "file")
  GET  /api/system/status                 Host and process status
  GET  /metrics                           Prometheus metrics

Query parameters trials, periods, risk, method, seed and risk_free_rate
override the configured defaults. Send "Accept: application/msgpack" for a
MessagePack response.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := g.cfg
			if cmd.Flags().Changed("port") {
				if port < 1 || port > 65535 {
					return &domain.ValidationError{Field: "port", Reason: fmt.Sprintf("out of range: %d", port)}
				}
				cfg.Port = port
			}

			defaults, err := cfg.RunOptions()
			if err != nil {
				return err
			}

			metrics := server.NewMetrics()
			srv := server.New(server.Config{
				Log:      g.log,
				Port:     cfg.Port,
				DevMode:  cfg.DevMode,
				Version:  version,
				Service:  optimization.NewService(cfg.ServiceConfig(), metrics, g.log),
				Charts:   charts.NewService(g.log),
				Defaults: defaults,
				Metrics:  metrics,
			})

			return serveUntilDone(cmd.Context(), srv, g)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "Port to listen on (default from config: 8080)")

	return cmd
}

// serveUntilDone runs srv until ctx is cancelled (SIGINT/SIGTERM) or the
// listener fails, then shuts down gracefully.
func serveUntilDone(ctx context.Context, srv *server.Server, g *globalOptions) error {
	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egCtx.Done()
		g.log.Info().Msg("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		g.log.Info().Msg("Server stopped")
		return nil
	})

	return eg.Wait()
}
