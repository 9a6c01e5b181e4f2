package http

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Check reports whether a dependency is reachable.
type Check func(ctx context.Context) error

type HealthHandler struct {
	serviceName string
	version     string
	checks      map[string]Check
}

func NewHealthHandler(serviceName, version string) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		checks:      map[string]Check{},
	}
}

// AddCheck registers a named dependency probe.
func (h *HealthHandler) AddCheck(name string, check Check) *HealthHandler {
	h.checks[name] = check
	return h
}

func (h *HealthHandler) run(ctx context.Context) (map[string]string, bool) {
	if len(h.checks) == 0 {
		return nil, true
	}
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]string, len(names))
	healthy := true
	for _, name := range names {
		pingCtx, cancel := context.WithTimeout(ctx, 1*time.Second)
		err := h.checks[name](pingCtx)
		cancel()
		if err != nil {
			out[name] = "down"
			healthy = false
		} else {
			out[name] = "up"
		}
	}
	return out, healthy
}

// HealthCheck answers 200 even when a dependency is down; status then
// reads "degraded".
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	checks, healthy := h.run(c.Request.Context())
	status := "healthy"
	if !healthy {
		status = "degraded"
	}
	c.JSON(http.StatusOK, h.response(status, checks))
}

// Ready answers 503 until every dependency is reachable.
func (h *HealthHandler) Ready(c *gin.Context) {
	checks, healthy := h.run(c.Request.Context())
	if !healthy {
		c.JSON(http.StatusServiceUnavailable, h.response("unavailable", checks))
		return
	}
	c.JSON(http.StatusOK, h.response("ready", checks))
}

func (h *HealthHandler) response(status string, checks map[string]string) HealthResponse {
	return HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.version,
		Checks:    checks,
	}
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
	r.GET("/readyz", h.Ready)
}
