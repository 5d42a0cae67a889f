package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Business metrics
	analysesTotal     *prometheus.CounterVec
	analysisDuration  prometheus.Histogram
	batchesTotal      *prometheus.CounterVec
	batchSize         prometheus.Histogram
	redFlagsRaised    *prometheus.CounterVec
	collectorRequests *prometheus.CounterVec
	reasonerCalls     *prometheus.CounterVec
	sectorCacheHits   prometheus.Counter
	sectorCacheMisses prometheus.Counter
	compositeScore    *prometheus.HistogramVec
}

// NewRegistry creates a metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	r.analysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "b3score_analyses_total",
			Help: "Total number of stock analyses by recommendation",
		},
		[]string{"recommendation", "tier"},
	)
	r.analysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "b3score_analysis_duration_seconds",
			Help:    "Single-stock analysis duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
	r.batchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "b3score_batches_total",
			Help: "Total number of batch analyses",
		},
		[]string{"status"},
	)
	r.batchSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "b3score_batch_size",
			Help:    "Number of stocks per batch",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250},
		},
	)
	r.redFlagsRaised = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "b3score_red_flags_total",
			Help: "Total number of red flags raised by severity",
		},
		[]string{"severity"},
	)
	r.collectorRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "b3score_collector_requests_total",
			Help: "Total number of collector fetches",
		},
		[]string{"provider", "status"},
	)
	r.reasonerCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "b3score_reasoner_calls_total",
			Help: "Total number of LLM refinement calls",
		},
		[]string{"provider", "status"},
	)
	r.sectorCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "b3score_sector_cache_hits_total",
			Help: "Sector comparison cache hits",
		},
	)
	r.sectorCacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "b3score_sector_cache_misses_total",
			Help: "Sector comparison cache misses",
		},
	)
	r.compositeScore = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "b3score_composite_score",
			Help:    "Distribution of composite scores",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
		[]string{"sector"},
	)

	reg.MustRegister(r.analysesTotal)
	reg.MustRegister(r.analysisDuration)
	reg.MustRegister(r.batchesTotal)
	reg.MustRegister(r.batchSize)
	reg.MustRegister(r.redFlagsRaised)
	reg.MustRegister(r.collectorRequests)
	reg.MustRegister(r.reasonerCalls)
	reg.MustRegister(r.sectorCacheHits)
	reg.MustRegister(r.sectorCacheMisses)
	reg.MustRegister(r.compositeScore)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	r.httpRequestsTotal.WithLabelValues(method, path, statusToString(status)).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() { r.httpRequestsInFlight.Inc() }

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() { r.httpRequestsInFlight.Dec() }

// RecordAnalysis records one completed stock analysis.
func (r *Registry) RecordAnalysis(recommendation, tier, sector string, score, duration float64) {
	r.analysesTotal.WithLabelValues(recommendation, tier).Inc()
	r.analysisDuration.Observe(duration)
	r.compositeScore.WithLabelValues(sector).Observe(score)
}

// RecordBatch records one batch run.
func (r *Registry) RecordBatch(status string, size int) {
	r.batchesTotal.WithLabelValues(status).Inc()
	r.batchSize.Observe(float64(size))
}

// RecordRedFlag records one raised red flag.
func (r *Registry) RecordRedFlag(severity string) {
	r.redFlagsRaised.WithLabelValues(severity).Inc()
}

// RecordCollectorRequest records one fundamentals fetch.
func (r *Registry) RecordCollectorRequest(provider, status string) {
	r.collectorRequests.WithLabelValues(provider, status).Inc()
}

// RecordReasonerCall records one LLM refinement attempt.
func (r *Registry) RecordReasonerCall(provider, status string) {
	r.reasonerCalls.WithLabelValues(provider, status).Inc()
}

// RecordSectorCache updates the sector cache counters.
func (r *Registry) RecordSectorCache(hit bool) {
	if hit {
		r.sectorCacheHits.Inc()
	} else {
		r.sectorCacheMisses.Inc()
	}
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
