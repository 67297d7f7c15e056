package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/roombook/backend/internal/infrastructure/logger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	// ServiceName is the name of the service for trace identification.
	ServiceName string
	// Enabled controls whether tracing is active.
	Enabled bool
	// SkipPaths are never traced (health checks and scrapes).
	SkipPaths []string
	// TracerProvider overrides the global provider when set.
	TracerProvider trace.TracerProvider
}

// DefaultTracingConfig returns default tracing configuration.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "roombook-backend",
		Enabled:     true,
		SkipPaths:   []string{"/health", "/ready", "/metrics"},
	}
}

// TracingWithConfig returns the otelgin middleware followed by a step that
// tags the server span with request_id and, once authentication has run,
// profile_id. Span names are the route template ("GET /api/v1/rooms/:id").
func TracingWithConfig(cfg TracingConfig) []gin.HandlerFunc {
	if !cfg.Enabled {
		return nil
	}

	skip := make(map[string]bool, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = true
	}
	opts := []otelgin.Option{
		otelgin.WithFilter(func(r *http.Request) bool { return !skip[r.URL.Path] }),
	}
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgin.WithTracerProvider(cfg.TracerProvider))
	}

	return []gin.HandlerFunc{otelgin.Middleware(cfg.ServiceName, opts...), enrichSpan}
}

func enrichSpan(c *gin.Context) {
	span := trace.SpanFromContext(c.Request.Context())
	if !span.IsRecording() {
		c.Next()
		return
	}
	if requestID := GetRequestID(c); requestID != "" {
		span.SetAttributes(attribute.String("request_id", requestID))
	}

	c.Next()

	if id := logger.GetProfileID(c.Request.Context()); id != "" {
		span.SetAttributes(attribute.String("profile_id", id))
	}
}
