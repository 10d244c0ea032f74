package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	durationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}
	projectBuckets  = []float64{0, 1, 2, 5, 10, 25, 50, 100}
)

// PrometheusRecorder exports metrics through a Prometheus registry.
type PrometheusRecorder struct {
	registry       *prometheus.Registry
	lookups        *prometheus.CounterVec
	lookupDuration prometheus.Histogram
	projects       prometheus.Histogram
	rateLimited    prometheus.Counter
}

// NewPrometheus registers the application collectors on a fresh registry.
func NewPrometheus() *PrometheusRecorder {
	r := &PrometheusRecorder{
		registry: prometheus.NewRegistry(),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "userprojects",
			Subsystem: "api",
			Name:      "user_lookups_total",
			Help:      "User projects lookups by outcome",
		}, []string{"outcome"}),
		lookupDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "userprojects",
			Subsystem: "api",
			Name:      "user_lookup_duration_seconds",
			Help:      "Latency of the user and projects queries",
			Buckets:   durationBuckets,
		}),
		projects: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "userprojects",
			Subsystem: "api",
			Name:      "projects_per_response",
			Help:      "Number of projects returned per successful lookup",
			Buckets:   projectBuckets,
		}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "userprojects",
			Subsystem: "api",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter",
		}),
	}

	r.registry.MustRegister(
		r.lookups,
		r.lookupDuration,
		r.projects,
		r.rateLimited,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return r
}

// IncUserLookup increments the lookup counter for an outcome.
func (r *PrometheusRecorder) IncUserLookup(outcome string) {
	r.lookups.WithLabelValues(outcome).Inc()
}

// ObserveLookupDuration records lookup latency.
func (r *PrometheusRecorder) ObserveLookupDuration(duration time.Duration) {
	r.lookupDuration.Observe(duration.Seconds())
}

// ObserveProjectsReturned records the size of a projects list.
func (r *PrometheusRecorder) ObserveProjectsReturned(count int) {
	r.projects.Observe(float64(count))
}

// IncRateLimited increments the rate limited counter.
func (r *PrometheusRecorder) IncRateLimited() {
	r.rateLimited.Inc()
}

// Handler serves the registry in Prometheus exposition format.
func (r *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
