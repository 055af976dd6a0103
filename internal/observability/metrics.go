package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Cache lookup outcomes.
const (
	CacheHit    = "hit"
	CacheMiss   = "miss"
	CacheBypass = "bypass"
)

// Metrics holds the dashboard's Prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	// Dashboard metrics
	RendersTotal       *prometheus.CounterVec
	CacheLookupsTotal  *prometheus.CounterVec
	FetchFailuresTotal *prometheus.CounterVec
	FetchDuration      *prometheus.HistogramVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all collectors with registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		RendersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cfdash_renders_total",
				Help: "Total number of dashboard renders",
			},
			[]string{"range", "metric", "status"},
		),
		CacheLookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cfdash_cache_lookups_total",
				Help: "Analytics cache lookups by outcome",
			},
			[]string{"result"},
		),
		FetchFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cfdash_fetch_failures_total",
				Help: "Total number of failed analytics fetches",
			},
			[]string{"range"},
		),
		FetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cfdash_fetch_duration_seconds",
				Help:    "Analytics fetch duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"range"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cfdash_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cfdash_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}

	registry.MustRegister(
		m.RendersTotal,
		m.CacheLookupsTotal,
		m.FetchFailuresTotal,
		m.FetchDuration,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)

	return m
}

// ObserveRender counts a finished render.
func (m *Metrics) ObserveRender(rangeKey, metric string, ok bool) {
	if m == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "failed"
	}
	m.RendersTotal.WithLabelValues(rangeKey, metric, status).Inc()
}

// ObserveCacheLookup counts a cache lookup with one of CacheHit, CacheMiss
// or CacheBypass.
func (m *Metrics) ObserveCacheLookup(result string) {
	if m == nil {
		return
	}
	m.CacheLookupsTotal.WithLabelValues(result).Inc()
}

// ObserveFetch records a fetch's duration and, if err is non-nil, a failure.
func (m *Metrics) ObserveFetch(rangeKey string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.FetchDuration.WithLabelValues(rangeKey).Observe(d.Seconds())
	if err != nil {
		m.FetchFailuresTotal.WithLabelValues(rangeKey).Inc()
	}
}

// StatusRecorder wraps http.ResponseWriter to capture the status code.
type StatusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rw *StatusRecorder) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Status returns the captured status code.
func (rw *StatusRecorder) Status() int { return rw.statusCode }

// WrapResponseWriter returns w wrapped so its status code can be read back
// after the handler ran.
func WrapResponseWriter(w http.ResponseWriter) *StatusRecorder {
	return &StatusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
}

// HTTPMetricsMiddleware instruments HTTP requests with Prometheus metrics.
// The path label is produced by route, which should return a template
// rather than the raw path to keep label cardinality bounded.
func HTTPMetricsMiddleware(metrics *Metrics, route func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if metrics == nil {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rw := WrapResponseWriter(w)

			next.ServeHTTP(rw, r)

			path := r.URL.Path
			if route != nil {
				path = route(r)
			}
			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rw.statusCode)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

// Handler returns the /metrics handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
