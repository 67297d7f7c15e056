package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func findEntry(t *testing.T, recorded *observer.ObservedLogs, msg string) observer.LoggedEntry {
	t.Helper()
	entries := recorded.FilterMessage(msg).All()
	require.NotEmpty(t, entries, "expected log entry %q", msg)
	return entries[0]
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, recorded := observer.New(zapcore.DebugLevel)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(GinRequestIDKey, "test-req-123")
		c.Next()
	})
	router.Use(GinMiddleware(zap.New(core)))

	var ctxRequestID string
	router.GET("/rooms", func(c *gin.Context) {
		ctxRequestID = GetRequestID(c.Request.Context())
		GetGinLogger(c).Info("inside handler")
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/rooms?status=active", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "test-req-123", ctxRequestID)

	entry := findEntry(t, recorded, "HTTP Request")
	assert.Equal(t, zapcore.InfoLevel, entry.Level)
	fields := entry.ContextMap()
	assert.Equal(t, "test-req-123", fields["request_id"])
	assert.Equal(t, "status=active", fields["query"])
	assert.EqualValues(t, http.StatusOK, fields["status"])

	handlerEntry := findEntry(t, recorded, "inside handler")
	assert.Equal(t, "/rooms", handlerEntry.ContextMap()["path"])
}

func TestGinMiddleware_LevelByStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		path  string
		code  int
		level zapcore.Level
	}{
		{"/boom", http.StatusInternalServerError, zapcore.ErrorLevel},
		{"/missing", http.StatusNotFound, zapcore.WarnLevel},
		{"/health", http.StatusOK, zapcore.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			core, recorded := observer.New(zapcore.DebugLevel)
			router := gin.New()
			router.Use(GinMiddleware(zap.New(core)))
			router.GET(tt.path, func(c *gin.Context) { c.Status(tt.code) })

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.level, findEntry(t, recorded, "HTTP Request").Level)
		})
	}
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, recorded := observer.New(zapcore.ErrorLevel)
	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
	entry := findEntry(t, recorded, "Panic recovered")
	assert.Equal(t, "kaboom", entry.ContextMap()["error"])
}

func TestGetGinLogger_Missing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.NotNil(t, GetGinLogger(c))
}
