package handler

import (
	"net/http"
)

// MetricsExporter serves collected metrics in an exposition format.
// *metrics.PrometheusRecorder satisfies it.
type MetricsExporter interface {
	Handler() http.Handler
}

// MetricsHandler exposes application metrics.
type MetricsHandler struct {
	exporter http.Handler
}

// NewMetricsHandler creates a new MetricsHandler.
// A nil exporter makes the endpoint report 503.
func NewMetricsHandler(exporter MetricsExporter) *MetricsHandler {
	h := &MetricsHandler{}
	if exporter != nil {
		h.exporter = exporter.Handler()
	}
	return h
}

// Metrics returns metrics in Prometheus exposition format.
// GET /metrics
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil {
		writeDetail(w, http.StatusServiceUnavailable, "Metrics unavailable")
		return
	}
	h.exporter.ServeHTTP(w, r)
}
