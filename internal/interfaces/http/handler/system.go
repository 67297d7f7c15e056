package handler

import (
	"context"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/roombook/backend/internal/interfaces/http/dto"
)

// ReadinessCheck checks one dependency
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// SystemHandler serves liveness and readiness checks
type SystemHandler struct {
	BaseHandler
	version   string
	startTime time.Time
	checks    []ReadinessCheck
	timeout   time.Duration
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(version string, checks ...ReadinessCheck) *SystemHandler {
	return &SystemHandler{
		version:   version,
		startTime: time.Now(),
		checks:    checks,
		timeout:   2 * time.Second,
	}
}

// HealthResponse is the liveness payload
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// ReadyResponse is the readiness payload; Checks maps dependency to "ok" or the error
type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Health answers as long as the process serves HTTP
func (h *SystemHandler) Health(c *gin.Context) {
	h.Success(c, HealthResponse{
		Status:    "ok",
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}

// Ready pings every dependency concurrently and answers 503 if any fails
func (h *SystemHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		ready = true
		resp  = ReadyResponse{Status: "ready", Checks: make(map[string]string, len(h.checks))}
	)
	for _, check := range h.checks {
		wg.Add(1)
		go func(check ReadinessCheck) {
			defer wg.Done()
			result := "ok"
			if err := check.Check(ctx); err != nil {
				result = err.Error()
			}
			mu.Lock()
			defer mu.Unlock()
			resp.Checks[check.Name] = result
			if result != "ok" {
				ready = false
			}
		}(check)
	}
	wg.Wait()

	if !ready {
		resp.Status = "not_ready"
		c.JSON(http.StatusServiceUnavailable, dto.Response{Success: false, Data: resp})
		return
	}
	h.Success(c, resp)
}
