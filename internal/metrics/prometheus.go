package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "canteen"

// PrometheusRecorder exports metrics through its own Prometheus registry.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	records      *prometheus.CounterVec
	signIns      *prometheus.CounterVec
	rateLimited  *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpInFlight prometheus.Gauge
}

// NewPrometheus creates a recorder with process and Go runtime collectors.
func NewPrometheus() *PrometheusRecorder {
	p := &PrometheusRecorder{
		registry: prometheus.NewRegistry(),
		records: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_total",
				Help:      "Records changed, by resource and action.",
			},
			[]string{"resource", "action"},
		),
		signIns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "session",
				Name:      "sign_ins_total",
				Help:      "Sign-in attempts by outcome.",
			},
			[]string{"outcome"},
		),
		rateLimited: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "rate_limited_total",
				Help:      "Requests rejected by a rate limiter.",
			},
			[]string{"scope"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled.",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
			},
			[]string{"method", "route"},
		),
		httpInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "inflight_requests",
				Help:      "Current number of in-flight HTTP requests.",
			},
		),
	}

	p.registry.MustRegister(
		p.records,
		p.signIns,
		p.rateLimited,
		p.httpRequests,
		p.httpDuration,
		p.httpInFlight,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return p
}

// Registry returns the underlying registry.
func (p *PrometheusRecorder) Registry() *prometheus.Registry {
	return p.registry
}

// Handler returns an HTTP handler exposing the registered metrics.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// IncCreated counts a created record.
func (p *PrometheusRecorder) IncCreated(resource Resource) {
	p.records.WithLabelValues(string(resource), "created").Inc()
}

// IncUpdated counts an updated record.
func (p *PrometheusRecorder) IncUpdated(resource Resource) {
	p.records.WithLabelValues(string(resource), "updated").Inc()
}

// IncDeleted counts a deleted record.
func (p *PrometheusRecorder) IncDeleted(resource Resource) {
	p.records.WithLabelValues(string(resource), "deleted").Inc()
}

// IncSignIn counts a sign-in attempt.
func (p *PrometheusRecorder) IncSignIn(success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	p.signIns.WithLabelValues(outcome).Inc()
}

// IncRateLimited counts a rejected request.
func (p *PrometheusRecorder) IncRateLimited(scope string) {
	p.rateLimited.WithLabelValues(scope).Inc()
}

// ObserveRequest records a handled request.
func (p *PrometheusRecorder) ObserveRequest(method, route string, status int, duration time.Duration) {
	p.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Instrument wraps next with in-flight tracking and request observation.
// Routes are labelled by their chi pattern to keep cardinality bounded.
func (p *PrometheusRecorder) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.httpInFlight.Inc()
		defer p.httpInFlight.Dec()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r)

		p.ObserveRequest(r.Method, RoutePattern(r), rec.status, time.Since(start))
	})
}

// RoutePattern returns the matched chi route pattern, or "unmatched".
func RoutePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
