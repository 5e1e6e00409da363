package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Bhoomi3044/optivest/internal/domain"
)

// Metrics holds the Prometheus collectors for optimization runs. It
// implements optimization.Recorder.
type Metrics struct {
	registry *prometheus.Registry

	Runs        *prometheus.CounterVec
	Trials      *prometheus.CounterVec
	RunDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors on a private registry, together with
// the standard Go runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "optivest_runs_total",
				Help: "Total number of optimization runs by source and result",
			},
			[]string{"source", "result"},
		),

		Trials: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "optivest_trials_total",
				Help: "Total number of portfolios sampled by successful runs",
			},
			[]string{"source"},
		),

		RunDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "optivest_run_duration_seconds",
				Help:    "Duration of optimization runs in seconds by source and result",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"source", "result"},
		),
	}

	m.registry.MustRegister(
		m.Runs,
		m.Trials,
		m.RunDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveRun records one optimization run. Durations are split by result so
// quick rejections do not skew the latency of completed runs.
func (m *Metrics) ObserveRun(source string, trials int, elapsed time.Duration, err error) {
	result := "ok"
	switch {
	case err == nil:
		m.Trials.WithLabelValues(source).Add(float64(trials))
	case domain.IsUserError(err):
		result = "invalid"
	default:
		result = "error"
	}

	m.Runs.WithLabelValues(source, result).Inc()
	m.RunDuration.WithLabelValues(source, result).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
