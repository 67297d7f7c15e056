package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/roombook/backend/docs"
	"github.com/roombook/backend/internal/application/admin"
	appbilling "github.com/roombook/backend/internal/application/billing"
	appbooking "github.com/roombook/backend/internal/application/booking"
	appevent "github.com/roombook/backend/internal/application/event"
	appidentity "github.com/roombook/backend/internal/application/identity"
	"github.com/roombook/backend/internal/application/media"
	approom "github.com/roombook/backend/internal/application/room"
	"github.com/roombook/backend/internal/domain/booking"
	"github.com/roombook/backend/internal/infrastructure/auth"
	billinginfra "github.com/roombook/backend/internal/infrastructure/billing"
	"github.com/roombook/backend/internal/infrastructure/cache"
	"github.com/roombook/backend/internal/infrastructure/config"
	"github.com/roombook/backend/internal/infrastructure/event"
	"github.com/roombook/backend/internal/infrastructure/logger"
	"github.com/roombook/backend/internal/infrastructure/persistence"
	"github.com/roombook/backend/internal/infrastructure/scheduler"
	"github.com/roombook/backend/internal/infrastructure/storage"
	"github.com/roombook/backend/internal/infrastructure/telemetry"
	"github.com/roombook/backend/internal/interfaces/http/handler"
	"github.com/roombook/backend/internal/interfaces/http/middleware"
	"github.com/roombook/backend/internal/interfaces/http/router"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const (
	slowQueryThreshold    = 200 * time.Millisecond
	rateLimiterSweepEvery = time.Minute
)

//	@title			Roombook API
//	@version		1.0
//	@description	Meeting room booking API: room catalog, availability, bookings, subscriptions and back-office administration
//	@termsOfService	http://swagger.io/terms/

//	@contact.name	API Support
//	@contact.url	https://github.com/roombook/backend
//	@contact.email	support@roombook.example.com

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

//	@externalDocs.description	OpenAPI
//	@externalDocs.url			https://swagger.io/resources/open-api/

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting roombook backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Tracing first, so the database plugin picks up the global provider
	tracer, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, version, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), slowQueryThreshold)
	db, err := persistence.NewDatabase(ctx, &cfg.Database, gormLog, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := telemetry.RegisterDBTracing(db.DB, telemetry.DefaultDBTracingConfig(), log); err != nil {
			log.Warn("Database tracing disabled", zap.Error(err))
		}
	}

	// Repositories
	profileRepo := persistence.NewGormProfileRepository(db.DB)
	roomRepo := persistence.NewGormRoomRepository(db.DB)
	amenityRepo := persistence.NewGormAmenityRepository(db.DB)
	bookingRepo := persistence.NewGormBookingRepository(db.DB)
	subscriptionRepo := persistence.NewGormSubscriptionRepository(db.DB)

	readiness := []handler.ReadinessCheck{{Name: db.Name(), Check: db.Ping}}

	// Redis backs the token blacklist, webhook de-duplication and the room
	// cache. Without it each falls back to a process-local implementation.
	var (
		redisClient *cache.RedisClient
		blacklist   auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
		roomCache   approom.RoomCache   = cache.NoopRoomCache{}
	)
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis, cfg.Database.ConnectAttempts, log)
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing redis", zap.Error(err))
			}
		}()
		blacklist = auth.NewRedisTokenBlacklist(redisClient.Client)
		roomCache = cache.NewRedisRoomCache(redisClient.Client, cfg.Redis.RoomCacheTTL, log)
		readiness = append(readiness, handler.ReadinessCheck{Name: redisClient.Name(), Check: redisClient.Ping})
	}
	idempotency, err := cache.NewIdempotencyStoreFactory(redisClient,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.App.IsProduction()),
		cache.WithKeyPrefix("roombook:idem:"),
	).CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		_ = idempotency.Close()
	}()

	// Object storage
	var objects media.ObjectStorage
	if cfg.Storage.Enabled {
		s3, err := storage.NewS3ObjectStorage(ctx, &cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		objects = s3
	} else {
		log.Warn("Object storage disabled, upload URLs point at a local stub")
		objects = storage.NewStubObjectStorage(cfg.Storage.PublicBaseURL)
	}
	uploader := media.NewUploader(objects, cfg.Storage.MaxUploadSize, cfg.Storage.PresignExpiration, log)

	// Billing
	catalog, err := appbilling.BuildCatalog(cfg.Plans)
	if err != nil {
		log.Fatal("Invalid plan configuration", zap.Error(err))
	}
	var gateway appbilling.PaymentGateway
	if cfg.Stripe.Enabled() {
		stripeGateway, err := billinginfra.NewStripeGateway(cfg.Stripe, log)
		if err != nil {
			log.Fatal("Failed to initialize Stripe gateway", zap.Error(err))
		}
		gateway = stripeGateway
	} else {
		log.Warn("Stripe is not configured, paid plans are unavailable")
	}

	siteRules, err := bookingRules(cfg.Booking)
	if err != nil {
		log.Fatal("Invalid booking configuration", zap.Error(err))
	}

	// Events and metrics
	metrics := telemetry.NewMetrics(cfg.Metrics.Namespace)
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(metrics)
	if cfg.Event.NATSURL != "" {
		conn, err := event.ConnectNATS(ctx, cfg.Event.NATSURL, cfg.Database.ConnectAttempts, log)
		if err != nil {
			log.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		defer conn.Close()
		eventBus.Subscribe(event.NewNATSForwarder(conn, cfg.Event.SubjectPrefix, log))
	}
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()
	dispatcher := appevent.NewDispatcher(eventBus, log)

	// Application services
	profileService := appidentity.NewProfileService(profileRepo, subscriptionRepo, uploader, dispatcher, cfg.Auth.AdminEmails, log)
	userAdminService := appidentity.NewUserAdminService(profileRepo, subscriptionRepo, blacklist, cfg.Auth.TokenTTL, uploader, dispatcher, log)
	amenityService := approom.NewAmenityService(amenityRepo, roomCache, log)
	roomService := approom.NewRoomService(roomRepo, amenityRepo, bookingRepo, uploader, roomCache, log)
	bookingService := appbooking.NewBookingService(bookingRepo, roomRepo, profileRepo, subscriptionRepo, catalog, siteRules, dispatcher, log)
	subscriptionService := appbilling.NewSubscriptionService(subscriptionRepo, profileRepo, gateway, catalog, dispatcher, log)
	webhookService := appbilling.NewStripeWebhookService(appbilling.StripeWebhookServiceConfig{
		Gateway:       gateway,
		Subscriptions: subscriptionRepo,
		Idempotency:   idempotency,
		Events:        dispatcher,
		Observer:      metrics,
		Logger:        log,
	})
	dashboardService := admin.NewDashboardService(roomRepo, profileRepo, bookingRepo, subscriptionRepo, siteRules.Location, log)

	// Scheduler
	maintenance, err := scheduler.NewBookingMaintenanceScheduler(bookingService, metrics, log, scheduler.BookingMaintenanceConfig{
		Enabled:    cfg.Scheduler.Enabled,
		Interval:   cfg.Scheduler.CompletionInterval,
		JobTimeout: cfg.Scheduler.JobTimeout,
	})
	if err != nil {
		log.Fatal("Failed to create booking scheduler", zap.Error(err))
	}
	if err := maintenance.Start(ctx); err != nil {
		log.Fatal("Failed to start booking scheduler", zap.Error(err))
	}
	defer func() {
		if err := maintenance.Stop(context.Background()); err != nil {
			log.Error("Error stopping booking scheduler", zap.Error(err))
		}
	}()

	// HTTP
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	var limiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst)
		go limiter.Run(ctx, rateLimiterSweepEvery)
	}

	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	securityCfg := middleware.DefaultSecurityConfig()
	securityCfg.HSTSEnabled = cfg.App.IsProduction()

	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		metricsHandler = metrics.Handler()
	}

	engine := router.New(router.Handlers{
		System:       handler.NewSystemHandler(version, readiness...),
		Rooms:        handler.NewRoomHandler(roomService, bookingService),
		Amenities:    handler.NewAmenityHandler(amenityService),
		Profile:      handler.NewProfileHandler(profileService),
		Bookings:     handler.NewBookingHandler(bookingService),
		Subscription: handler.NewSubscriptionHandler(subscriptionService),
		Webhook:      handler.NewStripeWebhookHandler(webhookService, cfg.HTTP.WebhookMaxPayload),
		Users:        handler.NewUserAdminHandler(userAdminService),
		Dashboard:    handler.NewDashboardHandler(dashboardService),
	}, router.Options{
		Logger:         log,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		CORS:           corsCfg,
		Security:       securityCfg,
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     tracer.IsEnabled(),
		},
		Metrics:        metrics,
		MetricsHandler: metricsHandler,
		MetricsPath:    cfg.Metrics.Path,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		RateLimiter:    limiter,
		Auth: middleware.JWTMiddlewareConfig{
			Verifier:       auth.NewTokenVerifier(cfg.Auth),
			TokenBlacklist: blacklist,
			Logger:         log,
		},
		Profiles: profileService,
		Swagger:  ginSwagger.WrapHandler(swaggerFiles.Handler),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	stop()

	log.Info("Server exited")
}

// bookingRules turns the site settings into the rules every booking is
// checked against. Plan limits are layered on per request.
func bookingRules(cfg config.BookingConfig) (booking.Rules, error) {
	loc, err := cfg.Location()
	if err != nil {
		return booking.Rules{}, err
	}
	open, err := cfg.OpenOffset()
	if err != nil {
		return booking.Rules{}, err
	}
	closing, err := cfg.CloseOffset()
	if err != nil {
		return booking.Rules{}, err
	}
	days, err := cfg.Weekdays()
	if err != nil {
		return booking.Rules{}, err
	}
	return booking.Rules{
		Slot:     cfg.Slot(),
		Location: loc,
		OpeningHours: booking.OpeningHours{
			Open:  open,
			Close: closing,
			Days:  days,
		},
	}, nil
}
