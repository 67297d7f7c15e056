package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func reply(body string) gin.HandlerFunc {
	return func(c *gin.Context) { c.String(http.StatusOK, body) }
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	rooms := NewDomainGroup("rooms", "/rooms")
	rooms.GET("", reply("rooms"))
	amenities := NewDomainGroup("amenities", "/amenities")
	amenities.GET("", reply("amenities"))

	NewRouter(engine).Register(rooms).Register(amenities).Setup()

	w := serve(engine, http.MethodGet, "/api/v1/rooms")
	assert.Equal(t, "rooms", w.Body.String())
	w = serve(engine, http.MethodGet, "/api/v1/amenities")
	assert.Equal(t, "amenities", w.Body.String())
}

func TestDomainGroup(t *testing.T) {
	t.Run("name and prefix", func(t *testing.T) {
		g := NewDomainGroup("bookings", "/bookings")
		assert.Equal(t, "bookings", g.Name())
		assert.Equal(t, "/bookings", g.Prefix())
	})

	t.Run("all methods", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("bookings", "/bookings")
		g.GET("/:id", reply("get")).
			POST("", reply("post")).
			PUT("/:id", reply("put")).
			PATCH("/:id", reply("patch")).
			DELETE("/:id", reply("delete"))
		g.RegisterRoutes(engine.Group("/api/v1"))

		for method, body := range map[string]string{
			http.MethodGet:    "get",
			http.MethodPut:    "put",
			http.MethodPatch:  "patch",
			http.MethodDelete: "delete",
		} {
			w := serve(engine, method, "/api/v1/bookings/42")
			assert.Equal(t, http.StatusOK, w.Code, method)
			assert.Equal(t, body, w.Body.String())
		}
		w := serve(engine, http.MethodPost, "/api/v1/bookings")
		assert.Equal(t, "post", w.Body.String())
	})

	t.Run("middleware reaches subgroups only through their parent", func(t *testing.T) {
		engine := gin.New()
		guarded := NewDomainGroup("admin", "/admin").Use(func(c *gin.Context) {
			c.Header("X-Guarded", "yes")
			c.Next()
		})
		guarded.Group("rooms", "/rooms").GET("", reply("admin rooms"))
		open := NewDomainGroup("public", "")
		open.GET("/rooms", reply("rooms"))

		NewRouter(engine).Register(open, guarded).Setup()

		w := serve(engine, http.MethodGet, "/api/v1/admin/rooms")
		assert.Equal(t, "admin rooms", w.Body.String())
		assert.Equal(t, "yes", w.Header().Get("X-Guarded"))

		w = serve(engine, http.MethodGet, "/api/v1/rooms")
		assert.Equal(t, "rooms", w.Body.String())
		assert.Empty(t, w.Header().Get("X-Guarded"))
	})
}
