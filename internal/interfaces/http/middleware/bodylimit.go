package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/roombook/backend/internal/interfaces/http/dto"
)

// BodyLimit returns a middleware that limits request body size. Requests
// that declare a larger Content-Length are refused up front; streamed bodies
// fail when the handler reads past the limit.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			abortWithError(c, http.StatusRequestEntityTooLarge, dto.ErrCodeTooLarge,
				"Request body exceeds maximum allowed size")
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
