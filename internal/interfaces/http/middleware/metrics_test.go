package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/roombook/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsMiddleware(t *testing.T) {
	m := telemetry.NewMetrics("test")
	router := gin.New()
	router.Use(Metrics(m, "/metrics"))
	router.GET("/rooms/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", gin.WrapH(m.Handler()))

	for _, path := range []string{"/rooms/a", "/rooms/b", "/missing", "/metrics"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	expected := `
# HELP test_http_requests_total HTTP requests by method, route template and status code.
# TYPE test_http_requests_total counter
test_http_requests_total{method="GET",route="/rooms/:id",status="200"} 2
test_http_requests_total{method="GET",route="unmatched",status="404"} 1
`
	err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "test_http_requests_total")
	require.NoError(t, err)

	inFlight, err := testutil.GatherAndCount(m.Registry(), "test_http_requests_in_flight")
	require.NoError(t, err)
	assert.Equal(t, 1, inFlight)
}
