package obs

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	cacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "user_list_cache_hits_total",
		Help: "User list cache hits.",
	})

	cacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "user_list_cache_misses_total",
		Help: "User list cache misses.",
	})

	throttledTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ratelimit_throttled_total",
		Help: "Requests rejected by the rate limiter.",
	})
)

var initOnce sync.Once

// Init registers metrics in the default registry. Safe to call once from main.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			httpInFlight,
			httpRequestsTotal,
			httpRequestDuration,
			cacheHitsTotal,
			cacheMissesTotal,
			throttledTotal,
		)
	})
}

// Handler exposes the Prometheus pull endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// CacheHit records a user list cache hit.
func CacheHit() { cacheHitsTotal.Inc() }

// CacheMiss records a user list cache miss.
func CacheMiss() { cacheMissesTotal.Inc() }

// Throttled records a rate limited request.
func Throttled() { throttledTotal.Inc() }

// CanonicalPath bounds metric label cardinality: the route set is fixed, so
// anything outside it collapses to "other".
func CanonicalPath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	switch path {
	case "/", "/register", "/login", "/users", "/admin", "/protected", "/metrics", "/healthz", "/readyz":
		return path
	}
	return "other"
}

// Instrument wraps a handler with RPS/latency/in-flight measurements.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := CanonicalPath(r.URL.Path)
		method := r.Method

		httpInFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: 200}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(sw.code)

		httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpInFlight.Dec()
	})
}

// statusWriter captures the response code for instrumentation.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
