package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/interfaces/http/dto"
)

// HealthCheck probes one dependency
type HealthCheck func(ctx context.Context) error

// HealthHandler reports liveness and the state of optional dependencies
type HealthHandler struct {
	BaseHandler
	version string
	checks  map[string]HealthCheck
	timeout time.Duration
	now     func() time.Time
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{
		version: version,
		checks:  make(map[string]HealthCheck),
		timeout: 2 * time.Second,
		now:     time.Now,
	}
}

// AddCheck registers a dependency probe
func (h *HealthHandler) AddCheck(name string, check HealthCheck) {
	h.checks[name] = check
}

// Health answers GET /health. A failing dependency degrades the status to 503.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	resp := dto.HealthResponse{
		Status:  "ok",
		Version: h.version,
		Time:    h.now().UTC(),
	}

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	if len(names) > 0 {
		resp.Checks = make(map[string]string, len(names))
	}
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "degraded"
			continue
		}
		resp.Checks[name] = "ok"
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, dto.NewSuccessResponse(resp))
}
