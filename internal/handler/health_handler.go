package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/internship-portal/internal/service"
	appErrors "github.com/noah-isme/internship-portal/pkg/errors"
	"github.com/noah-isme/internship-portal/pkg/response"
)

const readyTimeout = 3 * time.Second

// HealthHandler exposes liveness, readiness and metrics endpoints.
type HealthHandler struct {
	backend levelSource
	metrics *service.MetricsService
}

// NewHealthHandler constructs the handler. Readiness checks the backend
// through the public level catalogue.
func NewHealthHandler(backend levelSource, metrics *service.MetricsService) *HealthHandler {
	return &HealthHandler{backend: backend, metrics: metrics}
}

// Health responds with a generic OK payload for liveness usage.
func (h *HealthHandler) Health(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports whether the backend answers.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
	defer cancel()
	if _, err := h.backend.Levels(ctx); err != nil {
		response.JSON(c, http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": appErrors.UserMessage(err)})
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "ready", "metrics": h.metrics.Snapshot()})
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *HealthHandler) Prometheus(c *gin.Context) {
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}
