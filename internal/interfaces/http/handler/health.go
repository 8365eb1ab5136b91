package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/marketplace/portal/internal/interfaces/http/dto"
)

// HealthChecker is a dependency the readiness probe pings
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves liveness and readiness
type HealthHandler struct {
	BaseHandler
	version   string
	startTime time.Time
	checks    map[string]HealthChecker
}

// NewHealthHandler creates a new HealthHandler. checks is keyed by the
// dependency name shown in the response.
func NewHealthHandler(version string, checks map[string]HealthChecker) *HealthHandler {
	return &HealthHandler{
		version:   version,
		startTime: time.Now(),
		checks:    checks,
	}
}

// HealthResponse is the body of the health endpoint
type HealthResponse struct {
	Status       string            `json:"status" example:"healthy"`
	Version      string            `json:"version" example:"1.0.0"`
	GoVersion    string            `json:"go_version" example:"go1.25.5"`
	Uptime       string            `json:"uptime" example:"1h30m45s"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// Health handles GET /health. Any failing dependency turns the answer into
// a 503 so load balancers take the instance out.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status:    "healthy",
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}
	status := http.StatusOK
	if len(h.checks) > 0 {
		resp.Dependencies = make(map[string]string, len(h.checks))
		for name, check := range h.checks {
			if err := check.Ping(ctx); err != nil {
				resp.Dependencies[name] = "unhealthy: " + err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Dependencies[name] = "healthy"
		}
	}
	c.JSON(status, dto.NewSuccessResponse(resp))
}
