package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/roombook/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slotRequest struct {
	Title   string    `json:"title" binding:"required,max=10"`
	StartAt time.Time `json:"start_at" binding:"required"`
	EndAt   time.Time `json:"end_at" binding:"required,gtfield=StartAt"`
}

type dayQuery struct {
	Date string `form:"date" binding:"required,dateonly"`
}

func newValidationRouter() *gin.Engine {
	SetupValidator()
	router := gin.New()
	router.Use(RequestID(), BodyLimit(256))
	router.POST("/slots", func(c *gin.Context) {
		var req slotRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleBindError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})
	router.GET("/day", func(c *gin.Context) {
		var q dayQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			HandleBindError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})
	return router
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorInfo {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return *resp.Error
}

func postJSON(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/slots", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleBindError_Validation(t *testing.T) {
	router := newValidationRouter()

	w := postJSON(router, `{"title":"a very long title","start_at":"2026-05-04T10:00:00Z","end_at":"2026-05-04T09:00:00Z"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	info := decodeError(t, w)
	assert.Equal(t, dto.ErrCodeValidation, info.Code)
	assert.NotEmpty(t, info.RequestID)
	require.Len(t, info.Details, 2)
	assert.Equal(t, dto.ValidationDetail{Field: "title", Message: "Must be at most 10 characters"}, info.Details[0])
	assert.Equal(t, dto.ValidationDetail{Field: "end_at", Message: "Must be after start_at"}, info.Details[1])
}

func TestHandleBindError_MalformedJSON(t *testing.T) {
	router := newValidationRouter()

	w := postJSON(router, `{"title":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidJSON, decodeError(t, w).Code)
}

func TestHandleBindError_WrongType(t *testing.T) {
	router := newValidationRouter()

	w := postJSON(router, `{"title":42}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	info := decodeError(t, w)
	assert.Equal(t, dto.ErrCodeValidation, info.Code)
	require.Len(t, info.Details, 1)
	assert.Equal(t, "title", info.Details[0].Field)
}

func TestHandleBindError_TooLarge(t *testing.T) {
	router := newValidationRouter()

	req := httptest.NewRequest(http.MethodPost, "/slots",
		strings.NewReader(`{"title":"`+strings.Repeat("x", 400)+`"}`))
	req.Header.Set("Content-Type", "application/json")
	req.ContentLength = -1
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestDateOnlyValidator(t *testing.T) {
	router := newValidationRouter()

	for query, status := range map[string]int{
		"?date=2026-05-04": http.StatusOK,
		"?date=04.05.2026": http.StatusBadRequest,
		"?date=2026-02-30": http.StatusBadRequest,
		"":                 http.StatusBadRequest,
	} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/day"+query, nil))
		assert.Equal(t, status, w.Code, query)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/day?date=tomorrow", nil))
	info := decodeError(t, w)
	assert.Equal(t, "date", info.Details[0].Field)
	assert.Equal(t, "Must be a date in YYYY-MM-DD format", info.Details[0].Message)
}
