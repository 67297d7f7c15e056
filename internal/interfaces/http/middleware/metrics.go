package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPObserver receives one observation per served request
type HTTPObserver interface {
	ObserveHTTPRequest(method, route string, status int, d time.Duration)
	RequestStarted() func()
}

// Metrics records request count, latency and in-flight requests. The route
// label is the matched template, so /rooms/:id is one series regardless of
// the ID; unmatched paths share a single label.
func Metrics(observer HTTPObserver, skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = true
	}

	return func(c *gin.Context) {
		if skip[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		done := observer.RequestStarted()
		defer done()

		c.Next()

		observer.ObserveHTTPRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
