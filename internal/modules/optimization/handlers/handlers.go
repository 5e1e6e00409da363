// Package handlers provides HTTP handlers for portfolio optimization.
package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/Bhoomi3044/optivest/internal/domain"
	"github.com/Bhoomi3044/optivest/internal/modules/charts"
	"github.com/Bhoomi3044/optivest/internal/modules/datasource"
	"github.com/Bhoomi3044/optivest/internal/modules/evaluation"
	"github.com/Bhoomi3044/optivest/internal/modules/optimization"
	"github.com/Bhoomi3044/optivest/internal/modules/sampling"
)

const (
	// MaxTrials caps the trial count a single request may ask for.
	MaxTrials = 200_000
	// MaxUploadBytes caps the size of an uploaded price file.
	MaxUploadBytes = 10 << 20

	contentTypeMsgpack = "application/msgpack"
)

// Handler handles optimizer HTTP requests
type Handler struct {
	service  *optimization.Service
	charts   *charts.Service
	defaults optimization.RunOptions
	log      zerolog.Logger
}

// NewHandler creates a new optimizer handler. defaults supplies every run
// option a request does not override.
func NewHandler(
	service *optimization.Service,
	chartService *charts.Service,
	defaults optimization.RunOptions,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		service:  service,
		charts:   chartService,
		defaults: defaults,
		log:      log.With().Str("handler", "optimization").Logger(),
	}
}

type metadata struct {
	Timestamp string `json:"timestamp" msgpack:"timestamp"`
	RunID     string `json:"run_id" msgpack:"run_id"`
	Source    string `json:"source" msgpack:"source"`
}

type envelope struct {
	Data     *optimization.Result `json:"data" msgpack:"data"`
	Metadata metadata             `json:"metadata" msgpack:"metadata"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Field  string `json:"field,omitempty"`
	Row    *int   `json:"row,omitempty"`
	Column string `json:"column,omitempty"`
}

// HandleSample handles GET /api/optimizer/sample
func (h *Handler) HandleSample(w http.ResponseWriter, r *http.Request) {
	result, ok := h.runSample(w, r)
	if !ok {
		return
	}
	h.writeResult(w, r, result)
}

// HandleSampleChart handles GET /api/optimizer/sample/chart.png
func (h *Handler) HandleSampleChart(w http.ResponseWriter, r *http.Request) {
	result, ok := h.runSample(w, r)
	if !ok {
		return
	}
	h.writePNG(w, func(buf *bytes.Buffer) error { return h.charts.RenderFrontier(buf, result) })
}

// HandleSampleAllocation handles GET /api/optimizer/sample/allocation.png
func (h *Handler) HandleSampleAllocation(w http.ResponseWriter, r *http.Request) {
	result, ok := h.runSample(w, r)
	if !ok {
		return
	}
	h.writePNG(w, func(buf *bytes.Buffer) error { return h.charts.RenderAllocation(buf, result) })
}

// HandleRun handles POST /api/optimizer/run. The price table is the request
// body (text/csv) or the "file" field of a multipart form.
func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	opts, err := h.parseRunOptions(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	opts.Source = optimization.SourceUpload

	body, err := h.uploadedFile(w, r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	defer body.Close()

	prices, err := datasource.LoadCSV(body)
	if err != nil {
		h.writeError(w, err)
		return
	}

	result, err := h.service.Optimize(r.Context(), prices, opts)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeResult(w, r, result)
}

func (h *Handler) runSample(w http.ResponseWriter, r *http.Request) (*optimization.Result, bool) {
	opts, err := h.parseRunOptions(r)
	if err != nil {
		h.writeError(w, err)
		return nil, false
	}

	result, err := h.service.OptimizeSample(r.Context(), opts)
	if err != nil {
		h.writeError(w, err)
		return nil, false
	}
	return result, true
}

func (h *Handler) uploadedFile(w http.ResponseWriter, r *http.Request) (io.ReadCloser, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.Body, nil
	}

	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, &domain.ValidationError{Field: "file", Reason: err.Error()}
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, &domain.ValidationError{Field: "file", Reason: "multipart field \"file\" is required"}
	}
	return file, nil
}

// parseRunOptions overlays query parameters on the configured defaults.
func (h *Handler) parseRunOptions(r *http.Request) (optimization.RunOptions, error) {
	opts := h.defaults
	q := r.URL.Query()

	if v := q.Get("trials"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > MaxTrials {
			return opts, &domain.ValidationError{Field: "trials", Reason: fmt.Sprintf("must be an integer between 1 and %d", MaxTrials)}
		}
		opts.TrialCount = n
	}
	if v := q.Get("periods"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return opts, &domain.ValidationError{Field: "periods", Reason: "must be a positive integer"}
		}
		opts.PeriodsPerYear = n
	}
	if v := q.Get("risk_free_rate"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, &domain.ValidationError{Field: "risk_free_rate", Reason: "must be a number"}
		}
		if err := evaluation.ValidateRiskFreeRate(f); err != nil {
			return opts, err
		}
		opts.RiskFreeRate = f
	}
	if v := q.Get("risk"); v != "" {
		choice, err := domain.ParseRecommendationChoice(v)
		if err != nil {
			return opts, err
		}
		opts.Choice = choice
	}
	if v := q.Get("method"); v != "" {
		method, err := sampling.ParseMethod(v)
		if err != nil {
			return opts, err
		}
		opts.Method = method
	}
	if v := q.Get("seed"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return opts, &domain.ValidationError{Field: "seed", Reason: "must be a non-negative integer"}
		}
		opts.Seed = &seed
	}
	return opts, nil
}

func (h *Handler) writeResult(w http.ResponseWriter, r *http.Request, result *optimization.Result) {
	resp := envelope{
		Data: result,
		Metadata: metadata{
			Timestamp: time.Now().Format(time.RFC3339),
			RunID:     result.RunID,
			Source:    result.Source,
		},
	}

	if wantsMsgpack(r) {
		data, err := msgpack.Marshal(resp)
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to encode msgpack response")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", contentTypeMsgpack)
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(data); err != nil {
			h.log.Error().Err(err).Msg("Failed to write msgpack response")
		}
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) writePNG(w http.ResponseWriter, render func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		h.log.Error().Err(err).Msg("Failed to render chart")
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		h.log.Error().Err(err).Msg("Failed to write chart")
	}
}

// writeError maps the error taxonomy onto HTTP statuses: bad parameters are
// 400, unusable price data is 422, anything else is a 500.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var (
		dataErr       *domain.DataError
		validationErr *domain.ValidationError
		tooLarge      *http.MaxBytesError
	)

	resp := errorResponse{Error: err.Error()}
	status := http.StatusInternalServerError

	switch {
	case errors.As(err, &tooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
		resp.Field = validationErr.Field
	case errors.As(err, &dataErr):
		status = http.StatusUnprocessableEntity
		if dataErr.Row >= 0 {
			row := dataErr.Row
			resp.Row = &row
		}
		resp.Column = dataErr.Column
	default:
		h.log.Error().Err(err).Msg("Optimization failed")
		resp.Error = "optimization failed"
	}

	h.writeJSON(w, status, resp)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func wantsMsgpack(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err == nil && (mediaType == contentTypeMsgpack || mediaType == "application/x-msgpack") {
			return true
		}
	}
	return false
}
