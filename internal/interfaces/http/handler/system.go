package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jneralrex/stratos-backend/internal/interfaces/http/dto"
)

// HealthChecker reports whether a dependency is reachable
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthCheckFunc adapts a function to HealthChecker
type HealthCheckFunc func(ctx context.Context) error

// Ping calls f
func (f HealthCheckFunc) Ping(ctx context.Context) error { return f(ctx) }

// SystemHandler serves liveness, readiness and build information
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	startTime time.Time
	checks    map[string]HealthChecker
	timeout   time.Duration
}

// NewSystemHandler creates a new SystemHandler. checks are probed by Ready,
// each bounded by timeout.
func NewSystemHandler(name, version string, checks map[string]HealthChecker, timeout time.Duration) *SystemHandler {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &SystemHandler{
		name:      name,
		version:   version,
		startTime: time.Now(),
		checks:    checks,
		timeout:   timeout,
	}
}

// HealthResponse is the liveness payload
type HealthResponse struct {
	Status    string `json:"status" example:"ok"`
	Name      string `json:"name" example:"stratos-backend"`
	Version   string `json:"version" example:"1.0.0"`
	GoVersion string `json:"goVersion" example:"go1.25.5"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
}

// ReadyResponse lists each dependency's state
type ReadyResponse struct {
	Status string            `json:"status" example:"ok"`
	Checks map[string]string `json:"checks"`
}

// Health godoc
// @Summary      Liveness probe
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=HealthResponse}
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	h.Success(c, HealthResponse{
		Status:    "ok",
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}

// Ready godoc
// @Summary      Readiness probe
// @Description  Pings the database and other configured dependencies
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=ReadyResponse}
// @Failure      503 {object} dto.Response{data=ReadyResponse}
// @Router       /health/ready [get]
func (h *SystemHandler) Ready(c *gin.Context) {
	resp := ReadyResponse{Status: "ok", Checks: make(map[string]string, len(h.checks))}
	for name, check := range h.checks {
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
		err := check.Ping(ctx)
		cancel()
		if err != nil {
			resp.Status = "unavailable"
			resp.Checks[name] = err.Error()
			continue
		}
		resp.Checks[name] = "ok"
	}

	if resp.Status != "ok" {
		c.JSON(http.StatusServiceUnavailable, dto.Response{Success: false, Data: resp})
		return
	}
	h.Success(c, resp)
}
