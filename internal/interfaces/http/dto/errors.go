package dto

import (
	"net/http"
	"strings"
)

// Error codes raised by the HTTP layer itself. Domain errors keep their own
// codes (see ErrorCodeHTTPStatus).
const (
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeInvalidJSON  = "INVALID_JSON"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeTooLarge     = "PAYLOAD_TOO_LARGE"
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "INVALID_TOKEN"
	ErrCodeTokenRevoked = "TOKEN_REVOKED"

	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeConflict     = "CONFLICT"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	// Request errors -> 400 Bad Request
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
	"INVALID_SIGNATURE": http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,
	ErrCodeTokenRevoked: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	"ACCOUNT_SUSPENDED": http.StatusForbidden,
	"SELF_ACTION":       http.StatusForbidden,

	// Resource errors
	ErrCodeNotFound:      http.StatusNotFound,
	"UPLOAD_NOT_FOUND":   http.StatusNotFound,
	"ALREADY_EXISTS":     http.StatusConflict,
	"EMAIL_TAKEN":        http.StatusConflict,
	"SLUG_TAKEN":         http.StatusConflict,
	"AMENITY_EXISTS":     http.StatusConflict,
	"ALREADY_SUBSCRIBED": http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,
	"ROOM_HAS_BOOKINGS":  http.StatusConflict,
	"ROOM_IN_USE":        http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	"INVALID_STATE":         http.StatusUnprocessableEntity,
	"LAST_ADMIN":            http.StatusUnprocessableEntity,
	"ROOM_UNAVAILABLE":      http.StatusUnprocessableEntity,
	"OVER_CAPACITY":         http.StatusUnprocessableEntity,
	"START_IN_PAST":         http.StatusUnprocessableEntity,
	"MISALIGNED_SLOT":       http.StatusUnprocessableEntity,
	"BOOKING_TOO_LONG":      http.StatusUnprocessableEntity,
	"BEYOND_HORIZON":        http.StatusUnprocessableEntity,
	"OUTSIDE_OPENING_HOURS": http.StatusUnprocessableEntity,
	"CANCELLATION_CLOSED":   http.StatusUnprocessableEntity,
	"QUOTA_EXCEEDED":        http.StatusUnprocessableEntity,
	"PLAN_NOT_PURCHASABLE":  http.StatusUnprocessableEntity,
	"NO_BILLING_ACCOUNT":    http.StatusUnprocessableEntity,

	// Media errors
	"FILE_TOO_LARGE":         http.StatusRequestEntityTooLarge,
	ErrCodeTooLarge:          http.StatusRequestEntityTooLarge,
	"UNSUPPORTED_MEDIA_TYPE": http.StatusUnsupportedMediaType,

	"BILLING_DISABLED": http.StatusServiceUnavailable,

	// Rate limiting -> 429 Too Many Requests
	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unlisted INVALID_* codes are field validation failures (400); anything
// else unknown is a 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// NormalizeErrorCode folds field-level INVALID_<FIELD> domain codes into
// VALIDATION_ERROR. The returned field is the lower-cased suffix, or "" when
// the code is passed through unchanged.
func NormalizeErrorCode(code string) (string, string) {
	if _, ok := ErrorCodeHTTPStatus[code]; ok {
		return code, ""
	}
	if field, ok := strings.CutPrefix(code, "INVALID_"); ok && field != "" {
		return ErrCodeValidation, strings.ToLower(field)
	}
	return code, ""
}
