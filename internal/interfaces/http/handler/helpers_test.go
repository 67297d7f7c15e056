package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appidentity "github.com/roombook/backend/internal/application/identity"
	"github.com/roombook/backend/internal/domain/identity"
	"github.com/roombook/backend/internal/interfaces/http/dto"
	"github.com/roombook/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// caller is the identity the test router injects in place of token auth
type testCaller struct {
	id    uuid.UUID
	admin bool
}

func asUser(id uuid.UUID) *testCaller  { return &testCaller{id: id} }
func asAdmin(id uuid.UUID) *testCaller { return &testCaller{id: id, admin: true} }

// newTestRouter returns an engine with request IDs and, when who is set, the
// context values the auth middleware chain would have stored
func newTestRouter(who *testCaller) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID())
	if who != nil {
		router.Use(func(c *gin.Context) {
			role := identity.RoleUser
			if who.admin {
				role = identity.RoleAdmin
			}
			c.Set(middleware.ProfileIDKey, who.id)
			c.Set(middleware.AccessStateKey, &appidentity.AccessState{
				UserID:  who.id,
				Role:    role,
				Status:  identity.ProfileStatusActive,
				IsAdmin: who.admin,
			})
			c.Next()
		})
	}
	return router
}

func perform(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			_ = json.NewEncoder(&buf).Encode(b)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// decode unmarshals the envelope and, when data is non-nil, its data field
func decode(t *testing.T, w *httptest.ResponseRecorder, data any) dto.Response {
	t.Helper()
	var raw struct {
		dto.Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw), w.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return raw.Response
}

func errorInfo(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorInfo {
	t.Helper()
	resp := decode(t, w, nil)
	require.NotNil(t, resp.Error, w.Body.String())
	return *resp.Error
}

func newRawRequest(method, path, body string) *http.Request {
	return httptest.NewRequest(method, path, strings.NewReader(body))
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
