// Package api exposes the analysis pipeline over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ftorres/b3score/internal/analyzer"
	"github.com/ftorres/b3score/internal/api/response"
	"github.com/ftorres/b3score/internal/collector"
	"github.com/ftorres/b3score/internal/core"
	"github.com/ftorres/b3score/internal/metrics"
	"github.com/ftorres/b3score/internal/storage/archive"
	"github.com/ftorres/b3score/internal/storage/report"
)

// Config holds server configuration.
type Config struct {
	Host             string
	Port             int
	BatchConcurrency int
	MetricsPath      string
}

// Server is the HTTP front of the analyzer.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	log        *zap.Logger

	analyzer     *analyzer.Analyzer
	fundamentals collector.Fundamentals
	store        report.Store
	archiver     *archive.Archiver // nil when archiving is disabled
	registry     *metrics.Registry
	concurrency  int
}

// Option wires optional collaborators into the server.
type Option func(*Server)

// WithArchiver enables archiving of finished analyses.
func WithArchiver(ar *archive.Archiver) Option {
	return func(s *Server) { s.archiver = ar }
}

// WithLogger sets the server's logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Server) { s.log = log }
}

// NewServer builds the HTTP server and its routes.
func NewServer(cfg Config, an *analyzer.Analyzer, fund collector.Fundamentals, store report.Store, reg *metrics.Registry, opts ...Option) *Server {
	mux := http.NewServeMux()

	s := &Server{
		mux:          mux,
		log:          zap.NewNop(),
		analyzer:     an,
		fundamentals: fund,
		store:        store,
		registry:     reg,
		concurrency:  cfg.BatchConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.routes(cfg.MetricsPath)

	var handler http.Handler = mux
	if reg != nil {
		handler = metrics.HTTPMiddleware(reg)(mux)
	}
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) routes(metricsPath string) {
	s.mux.HandleFunc("POST /api/v1/analyze", s.handleAnalyze)
	s.mux.HandleFunc("POST /api/v1/batch", s.handleBatch)
	s.mux.HandleFunc("GET /api/v1/analyses", s.handleListAnalyses)
	s.mux.HandleFunc("GET /api/v1/analyses/{code}", s.handleGetAnalysis)
	s.mux.HandleFunc("GET /api/v1/health", s.handleHealth)

	if s.registry != nil {
		if metricsPath == "" {
			metricsPath = "/metrics"
		}
		s.mux.Handle("GET "+metricsPath, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
}

// Start runs the server until Shutdown.
func (s *Server) Start() error {
	s.log.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

type analyzeRequest struct {
	Code   string                `json:"code,omitempty"`
	Record *core.FinancialRecord `json:"record,omitempty"`
}

// handleAnalyze analyzes one stock, either fetched by code or from an inline
// record.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrConfigInvalid, fmt.Errorf("invalid request body: %w", err)))
		return
	}

	rec, err := s.resolveRecord(r.Context(), req)
	if err != nil {
		response.Error(w, statusFor(err), err)
		return
	}

	start := time.Now()
	analysis, err := s.analyzer.Analyze(r.Context(), rec)
	if err != nil {
		response.Error(w, statusFor(err), err)
		return
	}
	s.finish(r.Context(), analysis, time.Since(start))

	response.JSON(w, http.StatusOK, analysis)
}

type batchRequest struct {
	Codes   []string               `json:"codes,omitempty"`
	Records []core.FinancialRecord `json:"records,omitempty"`
}

// handleBatch analyzes a set of stocks and ranks them by sector.
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrConfigInvalid, fmt.Errorf("invalid request body: %w", err)))
		return
	}
	if len(req.Codes) == 0 && len(req.Records) == 0 {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrConfigInvalid, fmt.Errorf("codes or records required")))
		return
	}

	records, fetchErrs := collector.FetchAll(r.Context(), s.fundamentals, req.Codes, s.concurrency, s.observeFetch)
	records = append(records, req.Records...)

	res := s.analyzer.AnalyzeBatch(r.Context(), records, s.concurrency)
	for code, err := range fetchErrs {
		res.Failures = append(res.Failures, analyzer.Failure{Code: code, Error: err.Error()})
	}
	sort.Slice(res.Failures, func(i, j int) bool {
		return res.Failures[i].Code < res.Failures[j].Code
	})

	for _, a := range res.Analyses {
		s.finish(r.Context(), a, 0)
	}
	if s.registry != nil {
		s.registry.RecordBatch("ok", len(res.Analyses))
	}

	response.JSON(w, http.StatusOK, res)
}

// observeFetch meters one fundamentals fetch during a batch.
func (s *Server) observeFetch(code string, err error) {
	if s.registry == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.registry.RecordCollectorRequest(s.fundamentals.Name(), status)
}

func (s *Server) resolveRecord(ctx context.Context, req analyzeRequest) (core.FinancialRecord, error) {
	if req.Record != nil {
		return *req.Record, nil
	}
	if req.Code == "" {
		return core.FinancialRecord{},
			core.WrapError(core.ErrConfigInvalid, fmt.Errorf("code or record required"))
	}
	if s.fundamentals == nil {
		return core.FinancialRecord{},
			core.WrapError(core.ErrCollectorFailed, fmt.Errorf("no collector configured"))
	}

	rec, err := s.fundamentals.Fetch(ctx, req.Code)
	if s.registry != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		s.registry.RecordCollectorRequest(s.fundamentals.Name(), status)
	}
	return rec, err
}

// finish persists and meters a completed analysis. Storage problems are
// logged, never surfaced; the analysis itself already succeeded.
func (s *Server) finish(ctx context.Context, a core.QualityAnalysis, took time.Duration) {
	if err := s.store.Save(ctx, a); err != nil {
		s.log.Warn("saving analysis", zap.String("code", a.Code), zap.Error(err))
	}
	if s.archiver != nil {
		if err := s.archiver.SaveAnalysis(ctx, a); err != nil {
			s.log.Warn("archiving analysis", zap.String("code", a.Code), zap.Error(err))
		}
	}
	if s.registry != nil {
		s.registry.RecordAnalysis(string(a.Recommendation), string(a.Tier), a.Sector,
			a.Composite.Value, took.Seconds())
		for _, f := range a.RedFlags {
			s.registry.RecordRedFlag(string(f.Severity))
		}
	}
}

// handleListAnalyses lists stored analyses, newest first.
func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := report.ListFilter{
		Sector:         q.Get("sector"),
		Recommendation: core.Recommendation(q.Get("recommendation")),
		Tier:           core.QualityTier(q.Get("tier")),
	}
	if v := q.Get("min_score"); v != "" {
		score, err := strconv.ParseFloat(v, 64)
		if err != nil {
			response.Error(w, http.StatusBadRequest,
				core.WrapError(core.ErrConfigInvalid, fmt.Errorf("invalid min_score %q", v)))
			return
		}
		filter.MinScore = score
	}
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	filter.Offset, _ = strconv.Atoi(q.Get("offset"))

	analyses, err := s.store.List(r.Context(), filter)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err)
		return
	}
	total, _ := s.store.Count(r.Context(), filter)

	response.JSON(w, http.StatusOK, map[string]any{
		"analyses": analyses,
		"total":    total,
	})
}

// handleGetAnalysis returns the latest analysis for one stock.
func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	analysis, err := s.store.Latest(r.Context(), code)
	if err != nil {
		response.Error(w, statusFor(err), err)
		return
	}
	response.JSON(w, http.StatusOK, analysis)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrStockNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrEmptyRecord), errors.Is(err, core.ErrConfigInvalid):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrCollectorTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, core.ErrCollectorFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
