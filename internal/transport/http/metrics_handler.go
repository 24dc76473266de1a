package http

import (
	"net/http"
)

// MetricsHandler exposes the Prometheus registry
type MetricsHandler struct {
	prometheus http.Handler
}

// NewMetricsHandler creates a metrics handler. A nil handler means metrics
// are disabled and the endpoint answers 404.
func NewMetricsHandler(prometheus http.Handler) *MetricsHandler {
	return &MetricsHandler{prometheus: prometheus}
}

// ServeHTTP handles GET /metrics
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.prometheus == nil {
		http.Error(w, "metrics disabled", http.StatusNotFound)
		return
	}
	h.prometheus.ServeHTTP(w, r)
}
