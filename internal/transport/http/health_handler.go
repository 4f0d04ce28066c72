package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	api "sheetcalc/pkg/contracts/api/v1"
)

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	service HealthChecker
	logger  *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(service HealthChecker, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "health")),
	}
}

// HealthCheck handles GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := h.service.HealthCheck(r.Context())
	render.JSON(w, r, api.HealthResponse{
		Status:  status.Status,
		Version: status.Version,
		Uptime:  status.Uptime,
	})
}

// ReadinessCheck handles GET /api/health/ready
func (h *HealthHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	status := h.service.ReadinessCheck(r.Context())

	resp := api.HealthResponse{
		Status:  status.Status,
		Version: status.Version,
		Checks:  make(map[string]string, len(status.Checks)),
	}
	for name, check := range status.Checks {
		resp.Checks[name] = check.Status
		if check.Message != "" {
			resp.Checks[name] += ": " + check.Message
		}
	}

	if status.Status != "ready" {
		render.Status(r, http.StatusServiceUnavailable)
	}
	render.JSON(w, r, resp)
}

// LivenessCheck handles GET /api/health/live
func (h *HealthHandler) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.LivenessCheck(r.Context()))
}

// Version handles GET /api/version
func (h *HealthHandler) Version(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Version())
}
