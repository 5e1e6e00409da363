package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bhoomi3044/optivest/internal/domain"
	"github.com/Bhoomi3044/optivest/internal/modules/charts"
	"github.com/Bhoomi3044/optivest/internal/modules/optimization"
)

func newTestServer(t *testing.T) (*Server, *Metrics) {
	t.Helper()
	log := zerolog.Nop()
	metrics := NewMetrics()

	defaults := optimization.DefaultRunOptions()
	defaults.TrialCount = 100

	srv := New(Config{
		Log:      log,
		Port:     0,
		DevMode:  true,
		Version:  "test",
		Service:  optimization.NewService(optimization.Config{Workers: 2}, metrics, log),
		Charts:   charts.NewService(log),
		Defaults: defaults,
		Metrics:  metrics,
	})
	return srv, metrics
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestServer_Health(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := get(t, srv.Handler(), "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, "optivest", resp["service"])
	assert.Equal(t, "test", resp["version"])
}

func TestServer_Routes(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		path string
		code int
	}{
		{"/api/system/status", http.StatusOK},
		{"/api/optimizer/sample", http.StatusOK},
		{"/api/optimizer/sample?trials=0", http.StatusBadRequest},
		{"/optimizer/sample", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := get(t, srv.Handler(), tt.path)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestServer_MetricsEndpoint(t *testing.T) {
	srv, metrics := newTestServer(t)

	require.Equal(t, http.StatusOK, get(t, srv.Handler(), "/api/optimizer/sample").Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Runs.WithLabelValues(optimization.SourceSample, "ok")))
	assert.Equal(t, 100.0, testutil.ToFloat64(metrics.Trials.WithLabelValues(optimization.SourceSample)))

	rec := get(t, srv.Handler(), "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `optivest_runs_total{result="ok",source="sample"} 1`)
	assert.Contains(t, string(body), `optivest_run_duration_seconds_count{result="ok",source="sample"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestMetrics_ObserveRun(t *testing.T) {
	m := NewMetrics()

	m.ObserveRun(optimization.SourceUpload, 500, 20*time.Millisecond, nil)
	m.ObserveRun(optimization.SourceUpload, 500, time.Millisecond, &domain.ValidationError{Field: "trials", Reason: "bad"})
	m.ObserveRun(optimization.SourceUpload, 500, time.Millisecond, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues(optimization.SourceUpload, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues(optimization.SourceUpload, "invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues(optimization.SourceUpload, "error")))
	assert.Equal(t, 500.0, testutil.ToFloat64(m.Trials.WithLabelValues(optimization.SourceUpload)))
	assert.Equal(t, 3, testutil.CollectAndCount(m.RunDuration), "one duration series per result")
}
