package http

import (
	"net/http"

	apierrors "sheetcalc/internal/errors"
)

// MetricsHandler exposes the Prometheus scrape endpoint.
type MetricsHandler struct {
	exposition   http.Handler
	errorHandler *apierrors.ErrorHandler
}

// NewMetricsHandler wraps the exporter's handler. A nil exposition handler
// means metrics are disabled and the endpoint answers 503.
func NewMetricsHandler(exposition http.Handler, errorHandler *apierrors.ErrorHandler) *MetricsHandler {
	return &MetricsHandler{exposition: exposition, errorHandler: errorHandler}
}

// ServeHTTP handles GET /metrics
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.exposition == nil {
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusServiceUnavailable,
			apierrors.CodeServiceUnavailable,
			"Metrics are disabled",
			"set telemetry.enable_metrics and telemetry.metric_exporter=prometheus",
		))
		return
	}
	h.exposition.ServeHTTP(w, r)
}
