package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables that override config.toml
const EnvPrefix = "ROOMBOOK"

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Storage   StorageConfig
	Stripe    StripeConfig
	Booking   BookingConfig
	Plans     map[string]PlanOverride
	Event     EventConfig
	Scheduler SchedulerConfig
	Telemetry TelemetryConfig
	Metrics   MetricsConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// IsProduction reports whether the service runs with production safeguards
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
	ConnectAttempts int
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled      bool
	Host         string
	Port         int
	Password     string
	DB           int
	RoomCacheTTL time.Duration
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// AuthConfig describes the tokens issued by the external identity provider
type AuthConfig struct {
	JWTSecret   string
	Issuer      string
	Audience    string
	Leeway      time.Duration
	AdminEmails []string // profiles with these emails are promoted on first sight
	// TokenTTL is the longest lifetime of a provider-issued access token;
	// user revocations are remembered this long
	TokenTTL time.Duration
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxBodySize       int64
	RateLimitEnabled  bool
	RateLimitRPS      float64
	RateLimitBurst    int
	CORSAllowOrigins  []string
	CORSAllowMethods  []string
	CORSAllowHeaders  []string
	TrustedProxies    []string
	ShutdownTimeout   time.Duration
	WebhookMaxPayload int64
}

// StorageConfig holds S3-compatible object storage settings
type StorageConfig struct {
	Enabled           bool
	Endpoint          string
	Region            string
	Bucket            string
	AccessKeyID       string
	SecretAccessKey   string
	UsePathStyle      bool
	PublicBaseURL     string // when set, download URLs are built from it instead of presigned
	PresignExpiration time.Duration
	MaxUploadSize     int64
}

// StripeConfig holds payment provider settings
type StripeConfig struct {
	SecretKey       string
	PublishableKey  string
	WebhookSecret   string
	PriceIDs        map[string]string // plan id -> price id
	SuccessURL      string
	CancelURL       string
	PortalReturnURL string
	Currency        string
}

// Enabled reports whether billing calls can be made
func (s StripeConfig) Enabled() bool {
	return s.SecretKey != ""
}

// BookingConfig holds site-wide scheduling rules
type BookingConfig struct {
	Timezone    string
	SlotMinutes int
	OpenTime    string // HH:MM
	CloseTime   string // HH:MM
	OpenDays    []string
}

// PlanOverride replaces the built-in price or limits of a plan. Nil fields are kept.
type PlanOverride struct {
	MonthlyPrice     *string
	BookingsPerMonth *int
	MaxBookingHours  *int
	HorizonDays      *int
}

// EventConfig holds domain event forwarding settings
type EventConfig struct {
	NATSURL       string
	SubjectPrefix string
}

// SchedulerConfig holds background job settings
type SchedulerConfig struct {
	Enabled            bool
	CompletionInterval time.Duration
	JobTimeout         time.Duration
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	Insecure          bool
	DBTraceEnabled    bool
}

// MetricsConfig holds Prometheus exposition settings
type MetricsConfig struct {
	Enabled   bool
	Path      string
	Namespace string
}

var planIDs = []string{"free", "pro", "business"}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with ROOMBOOK_ prefix (e.g., ROOMBOOK_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")
	v.AddConfigPath("/etc/roombook")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
			ConnectAttempts: v.GetInt("database.connect_attempts"),
		},
		Redis: RedisConfig{
			Enabled:      v.GetBool("redis.enabled"),
			Host:         v.GetString("redis.host"),
			Port:         v.GetInt("redis.port"),
			Password:     v.GetString("redis.password"),
			DB:           v.GetInt("redis.db"),
			RoomCacheTTL: v.GetDuration("redis.room_cache_ttl"),
		},
		Auth: AuthConfig{
			JWTSecret:   v.GetString("auth.jwt_secret"),
			Issuer:      v.GetString("auth.issuer"),
			Audience:    v.GetString("auth.audience"),
			Leeway:      v.GetDuration("auth.leeway"),
			AdminEmails: v.GetStringSlice("auth.admin_emails"),
			TokenTTL:    v.GetDuration("auth.token_ttl"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
			MaxBodySize:       v.GetInt64("http.max_body_size"),
			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRPS:      v.GetFloat64("http.rate_limit_rps"),
			RateLimitBurst:    v.GetInt("http.rate_limit_burst"),
			CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:  v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:  v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
			ShutdownTimeout:   v.GetDuration("http.shutdown_timeout"),
			WebhookMaxPayload: v.GetInt64("http.webhook_max_payload"),
		},
		Storage: StorageConfig{
			Enabled:           v.GetBool("storage.enabled"),
			Endpoint:          v.GetString("storage.endpoint"),
			Region:            v.GetString("storage.region"),
			Bucket:            v.GetString("storage.bucket"),
			AccessKeyID:       v.GetString("storage.access_key_id"),
			SecretAccessKey:   v.GetString("storage.secret_access_key"),
			UsePathStyle:      v.GetBool("storage.use_path_style"),
			PublicBaseURL:     v.GetString("storage.public_base_url"),
			PresignExpiration: v.GetDuration("storage.presign_expiration"),
			MaxUploadSize:     v.GetInt64("storage.max_upload_size"),
		},
		Stripe: StripeConfig{
			SecretKey:       v.GetString("stripe.secret_key"),
			PublishableKey:  v.GetString("stripe.publishable_key"),
			WebhookSecret:   v.GetString("stripe.webhook_secret"),
			PriceIDs:        v.GetStringMapString("stripe.price_ids"),
			SuccessURL:      v.GetString("stripe.success_url"),
			CancelURL:       v.GetString("stripe.cancel_url"),
			PortalReturnURL: v.GetString("stripe.portal_return_url"),
			Currency:        v.GetString("stripe.currency"),
		},
		Booking: BookingConfig{
			Timezone:    v.GetString("booking.timezone"),
			SlotMinutes: v.GetInt("booking.slot_minutes"),
			OpenTime:    v.GetString("booking.open_time"),
			CloseTime:   v.GetString("booking.close_time"),
			OpenDays:    v.GetStringSlice("booking.open_days"),
		},
		Plans: loadPlanOverrides(v),
		Event: EventConfig{
			NATSURL:       v.GetString("event.nats_url"),
			SubjectPrefix: v.GetString("event.subject_prefix"),
		},
		Scheduler: SchedulerConfig{
			Enabled:            v.GetBool("scheduler.enabled"),
			CompletionInterval: v.GetDuration("scheduler.completion_interval"),
			JobTimeout:         v.GetDuration("scheduler.job_timeout"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
		},
		Metrics: MetricsConfig{
			Enabled:   v.GetBool("metrics.enabled"),
			Path:      v.GetString("metrics.path"),
			Namespace: v.GetString("metrics.namespace"),
		},
	}

	// Price IDs may also be given one by one through the environment,
	// e.g. ROOMBOOK_STRIPE_PRICE_IDS_PRO.
	for _, id := range planIDs {
		if price := v.GetString("stripe.price_ids." + id); price != "" {
			if cfg.Stripe.PriceIDs == nil {
				cfg.Stripe.PriceIDs = make(map[string]string)
			}
			cfg.Stripe.PriceIDs[id] = price
		}
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadPlanOverrides(v *viper.Viper) map[string]PlanOverride {
	out := make(map[string]PlanOverride)
	for _, id := range planIDs {
		prefix := "plans." + id + "."
		var o PlanOverride
		set := false
		if v.IsSet(prefix + "monthly_price") {
			price := v.GetString(prefix + "monthly_price")
			o.MonthlyPrice = &price
			set = true
		}
		if v.IsSet(prefix + "bookings_per_month") {
			n := v.GetInt(prefix + "bookings_per_month")
			o.BookingsPerMonth = &n
			set = true
		}
		if v.IsSet(prefix + "max_booking_hours") {
			n := v.GetInt(prefix + "max_booking_hours")
			o.MaxBookingHours = &n
			set = true
		}
		if v.IsSet(prefix + "horizon_days") {
			n := v.GetInt(prefix + "horizon_days")
			o.HorizonDays = &n
			set = true
		}
		if set {
			out[id] = o
		}
	}
	return out
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "roombook"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "roombook"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Database.ConnectAttempts == 0 {
		cfg.Database.ConnectAttempts = 5
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Redis.RoomCacheTTL == 0 {
		cfg.Redis.RoomCacheTTL = 5 * time.Minute
	}
	if cfg.Auth.Audience == "" {
		cfg.Auth.Audience = "authenticated"
	}
	if cfg.Auth.Leeway == 0 {
		cfg.Auth.Leeway = 30 * time.Second
	}
	if cfg.Auth.TokenTTL == 0 {
		cfg.Auth.TokenTTL = 24 * time.Hour
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB, uploads go straight to object storage
	}
	if cfg.HTTP.RateLimitRPS == 0 {
		cfg.HTTP.RateLimitRPS = 10
	}
	if cfg.HTTP.RateLimitBurst == 0 {
		cfg.HTTP.RateLimitBurst = 40
	}
	// CORS origins have no fallback: an empty list allows no cross-origin requests.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 30 * time.Second
	}
	if cfg.HTTP.WebhookMaxPayload == 0 {
		cfg.HTTP.WebhookMaxPayload = 65536
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.PresignExpiration == 0 {
		cfg.Storage.PresignExpiration = 15 * time.Minute
	}
	if cfg.Storage.MaxUploadSize == 0 {
		cfg.Storage.MaxUploadSize = 5 << 20 // 5MB
	}
	if cfg.Stripe.Currency == "" {
		cfg.Stripe.Currency = "usd"
	}
	if cfg.Stripe.PriceIDs == nil {
		cfg.Stripe.PriceIDs = make(map[string]string)
	}
	if cfg.Booking.Timezone == "" {
		cfg.Booking.Timezone = "UTC"
	}
	if cfg.Booking.SlotMinutes == 0 {
		cfg.Booking.SlotMinutes = 30
	}
	if cfg.Booking.OpenTime == "" {
		cfg.Booking.OpenTime = "08:00"
	}
	if cfg.Booking.CloseTime == "" {
		cfg.Booking.CloseTime = "20:00"
	}
	if len(cfg.Booking.OpenDays) == 0 {
		cfg.Booking.OpenDays = []string{"mon", "tue", "wed", "thu", "fri"}
	}
	if cfg.Event.SubjectPrefix == "" {
		cfg.Event.SubjectPrefix = "roombook.events"
	}
	if cfg.Scheduler.CompletionInterval == 0 {
		cfg.Scheduler.CompletionInterval = 10 * time.Minute
	}
	if cfg.Scheduler.JobTimeout == 0 {
		cfg.Scheduler.JobTimeout = time.Minute
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "roombook"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "roombook"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if _, err := c.Booking.Location(); err != nil {
		return err
	}
	if c.Booking.SlotMinutes < 5 || c.Booking.SlotMinutes > 240 {
		return fmt.Errorf("booking.slot_minutes must be between 5 and 240, got %d", c.Booking.SlotMinutes)
	}
	open, err := c.Booking.OpenOffset()
	if err != nil {
		return err
	}
	closing, err := c.Booking.CloseOffset()
	if err != nil {
		return err
	}
	if closing <= open {
		return fmt.Errorf("booking.close_time must be after booking.open_time")
	}
	if _, err := c.Booking.Weekdays(); err != nil {
		return err
	}
	for id, o := range c.Plans {
		if o.MonthlyPrice != nil {
			if _, err := parseDecimal(*o.MonthlyPrice); err != nil {
				return fmt.Errorf("plans.%s.monthly_price: %w", id, err)
			}
		}
	}

	if c.App.IsProduction() {
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("auth.jwt_secret is required in production")
		}
		if len(c.Auth.JWTSecret) < 32 {
			return fmt.Errorf("auth.jwt_secret must be at least 32 characters in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		if c.Stripe.Enabled() && c.Stripe.WebhookSecret == "" {
			return fmt.Errorf("stripe.webhook_secret is required in production when stripe is enabled")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
