package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/roombook/backend/internal/infrastructure/logger"
	"github.com/roombook/backend/internal/interfaces/http/dto"
	"github.com/roombook/backend/internal/interfaces/http/handler"
	"github.com/roombook/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Handlers are the HTTP handlers the API is built from
type Handlers struct {
	System       *handler.SystemHandler
	Rooms        *handler.RoomHandler
	Amenities    *handler.AmenityHandler
	Profile      *handler.ProfileHandler
	Bookings     *handler.BookingHandler
	Subscription *handler.SubscriptionHandler
	Webhook      *handler.StripeWebhookHandler
	Users        *handler.UserAdminHandler
	Dashboard    *handler.DashboardHandler
}

// Options configure the global middleware chain and authentication
type Options struct {
	Logger         *zap.Logger
	TrustedProxies []string
	CORS           middleware.CORSConfig
	Security       middleware.SecurityConfig
	Tracing        middleware.TracingConfig
	// Metrics records request metrics when set; MetricsHandler is served on MetricsPath
	Metrics        middleware.HTTPObserver
	MetricsHandler http.Handler
	MetricsPath    string
	MaxBodySize    int64
	// RateLimiter is optional
	RateLimiter *middleware.RateLimiter
	Auth        middleware.JWTMiddlewareConfig
	Profiles    middleware.ProfileProvisioner
	// Swagger serves the API documentation under /swagger/ when set
	Swagger gin.HandlerFunc
}

// New builds the engine: the global middleware chain, the root health checks and
// the /api/v1 route table
func New(h Handlers, opts Options) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Auth.Logger == nil {
		opts.Auth.Logger = log
	}
	metricsPath := opts.MetricsPath
	if metricsPath == "" {
		metricsPath = "/metrics"
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(opts.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(opts.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.TracingWithConfig(opts.Tracing)...)
	if opts.Metrics != nil {
		engine.Use(middleware.Metrics(opts.Metrics, "/health", "/ready", metricsPath))
	}
	engine.Use(middleware.SecureWithConfig(opts.Security))
	engine.Use(middleware.CORSWithConfig(opts.CORS))
	engine.Use(middleware.BodyLimit(opts.MaxBodySize))
	if opts.RateLimiter != nil {
		engine.Use(middleware.RateLimit(opts.RateLimiter))
	}

	engine.GET("/health", h.System.Health)
	engine.GET("/ready", h.System.Ready)
	if opts.MetricsHandler != nil {
		engine.GET(metricsPath, gin.WrapH(opts.MetricsHandler))
	}
	if opts.Swagger != nil {
		engine.GET("/swagger/*any", swaggerCSP, opts.Swagger)
	}

	authenticated := []gin.HandlerFunc{
		middleware.JWTAuthMiddleware(opts.Auth),
		middleware.ProvisionProfile(opts.Profiles),
	}

	r := NewRouter(engine, WithAPIVersion("v1"))
	r.Register(
		publicRoutes(h),
		userRoutes(h).Use(authenticated...),
		adminRoutes(h).Use(authenticated...).Use(middleware.AdminOnly()),
	)
	r.Setup()

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, notFound(c))
	})
	return engine
}

// swaggerUIPolicy lets the Swagger UI page run its inline bootstrap script
const swaggerUIPolicy = "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:"

func swaggerCSP(c *gin.Context) {
	c.Header("Content-Security-Policy", swaggerUIPolicy)
	c.Next()
}

func publicRoutes(h Handlers) *DomainGroup {
	g := NewDomainGroup("public", "")
	g.GET("/rooms", h.Rooms.List)
	g.GET("/rooms/slug/:slug", h.Rooms.GetBySlug)
	g.GET("/rooms/:id", h.Rooms.Get)
	g.GET("/rooms/:id/availability", h.Rooms.Availability)
	g.GET("/amenities", h.Amenities.List)
	g.GET("/plans", h.Subscription.ListPlans)
	g.POST("/webhooks/stripe", h.Webhook.Handle)
	return g
}

func userRoutes(h Handlers) *DomainGroup {
	g := NewDomainGroup("user", "")

	me := g.Group("profile", "/me")
	me.GET("", h.Profile.Get)
	me.PUT("", h.Profile.Update)
	me.POST("/avatar/upload-url", h.Profile.AvatarUploadURL)
	me.PUT("/avatar", h.Profile.ConfirmAvatar)
	me.DELETE("/avatar", h.Profile.RemoveAvatar)

	bookings := g.Group("bookings", "/bookings")
	bookings.POST("", h.Bookings.Create)
	bookings.GET("", h.Bookings.ListMine)
	bookings.GET("/:id", h.Bookings.Get)
	bookings.PUT("/:id", h.Bookings.Update)
	bookings.POST("/:id/cancel", h.Bookings.Cancel)

	sub := g.Group("subscription", "/subscription")
	sub.GET("", h.Subscription.GetMine)
	sub.POST("/checkout", h.Subscription.Checkout)
	sub.POST("/portal", h.Subscription.Portal)
	sub.POST("/cancel", h.Subscription.Cancel)
	sub.POST("/resume", h.Subscription.Resume)
	return g
}

func adminRoutes(h Handlers) *DomainGroup {
	g := NewDomainGroup("admin", "/admin")
	g.GET("/overview", h.Dashboard.Overview)

	rooms := g.Group("rooms", "/rooms")
	rooms.GET("", h.Rooms.List)
	rooms.POST("", h.Rooms.Create)
	rooms.GET("/:id", h.Rooms.Get)
	rooms.PUT("/:id", h.Rooms.Update)
	rooms.DELETE("/:id", h.Rooms.Delete)
	rooms.PUT("/:id/status", h.Rooms.SetStatus)
	rooms.PUT("/:id/amenities", h.Rooms.SetAmenities)
	rooms.POST("/:id/image/upload-url", h.Rooms.ImageUploadURL)
	rooms.PUT("/:id/image", h.Rooms.ConfirmImage)
	rooms.DELETE("/:id/image", h.Rooms.RemoveImage)

	amenities := g.Group("amenities", "/amenities")
	amenities.GET("", h.Amenities.List)
	amenities.POST("", h.Amenities.Create)
	amenities.GET("/:id", h.Amenities.Get)
	amenities.PUT("/:id", h.Amenities.Update)
	amenities.DELETE("/:id", h.Amenities.Delete)

	bookings := g.Group("bookings", "/bookings")
	bookings.GET("", h.Bookings.AdminList)
	bookings.GET("/:id", h.Bookings.AdminGet)
	bookings.DELETE("/:id", h.Bookings.AdminDelete)
	bookings.POST("/:id/confirm", h.Bookings.Confirm)
	bookings.POST("/:id/cancel", h.Bookings.AdminCancel)

	subs := g.Group("subscriptions", "/subscriptions")
	subs.GET("", h.Subscription.AdminList)
	subs.GET("/:id", h.Subscription.AdminGet)
	subs.PUT("/:id", h.Subscription.Override)

	users := g.Group("users", "/users")
	users.GET("", h.Users.List)
	users.GET("/:id", h.Users.Get)
	users.DELETE("/:id", h.Users.Delete)
	users.PUT("/:id/role", h.Users.SetRole)
	users.POST("/:id/suspend", h.Users.Suspend)
	users.POST("/:id/reactivate", h.Users.Reactivate)
	return g
}

func notFound(c *gin.Context) dto.Response {
	return dto.NewErrorResponseWithRequestID(dto.ErrCodeNotFound, "Route not found", middleware.GetRequestID(c))
}
