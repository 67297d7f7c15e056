package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/roombook/backend/internal/domain/shared"
	"github.com/roombook/backend/internal/infrastructure/logger"
	"github.com/roombook/backend/internal/interfaces/http/dto"
	"github.com/roombook/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
}

// HandleError converts domain errors to HTTP responses. Field-level
// INVALID_<FIELD> codes become VALIDATION_ERROR with a detail for the field.
// Anything that is not a domain error is logged and answered with a 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestID := middleware.GetRequestID(c)

	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) {
		logger.GetGinLogger(c).Error("Unhandled error", zap.Error(err))
		_ = c.Error(err)
		h.InternalError(c)
		return
	}

	code, field := dto.NormalizeErrorCode(domainErr.Code)
	if field != "" {
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(domainErr.Message, requestID,
			[]dto.ValidationDetail{{Field: field, Message: domainErr.Message}}))
		return
	}
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, domainErr.Message, requestID))
}

// bindJSON binds the body and answers the request itself when binding fails
func (h *BaseHandler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.HandleBindError(c, err)
		return false
	}
	return true
}

// bindQuery binds query parameters and answers the request itself when binding fails
func (h *BaseHandler) bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		middleware.HandleBindError(c, err)
		return false
	}
	return true
}

// pathID parses a UUID path parameter. An invalid ID answers 404, since no
// resource can have it.
func (h *BaseHandler) pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, "Resource not found")
		return uuid.Nil, false
	}
	return id, true
}

// caller returns the authenticated profile ID
func (h *BaseHandler) caller(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.GetProfileID(c)
	if !ok {
		h.Unauthorized(c)
	}
	return id, ok
}
