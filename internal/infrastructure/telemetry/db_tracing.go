package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool          // include query variables in spans; never in production
	SlowQueryThresh time.Duration // queries above this get db.slow_query=true
	DBName          string
	TracerProvider  trace.TracerProvider // nil uses the global provider
}

// DefaultDBTracingConfig returns default configuration for database tracing.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		SlowQueryThresh: 200 * time.Millisecond,
		DBName:          "roombook",
	}
}

type contextKey string

const queryStartTimeKey contextKey = "otel_query_start_time"

// RegisterDBTracing installs otelgorm on db plus callbacks that annotate the
// span with table, rows affected and a slow-query flag.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBName)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(cfg.TracerProvider))
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartTimeKey, time.Now())
		}
	}
	after := func(tx *gorm.DB) { annotateSpan(tx, cfg.SlowQueryThresh) }

	cb := db.Callback()
	if err := cb.Create().Before("gorm:create").Register("roombook_timing:before_create", before); err != nil {
		return err
	}
	if err := cb.Query().Before("gorm:query").Register("roombook_timing:before_query", before); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("roombook_timing:before_update", before); err != nil {
		return err
	}
	if err := cb.Delete().Before("gorm:delete").Register("roombook_timing:before_delete", before); err != nil {
		return err
	}
	if err := cb.Row().Before("gorm:row").Register("roombook_timing:before_row", before); err != nil {
		return err
	}
	if err := cb.Raw().Before("gorm:raw").Register("roombook_timing:before_raw", before); err != nil {
		return err
	}
	if err := cb.Create().After("gorm:create").Register("roombook_timing:after_create", after); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register("roombook_timing:after_query", after); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("roombook_timing:after_update", after); err != nil {
		return err
	}
	if err := cb.Delete().After("gorm:delete").Register("roombook_timing:after_delete", after); err != nil {
		return err
	}
	if err := cb.Row().After("gorm:row").Register("roombook_timing:after_row", after); err != nil {
		return err
	}
	if err := cb.Raw().After("gorm:raw").Register("roombook_timing:after_raw", after); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
	)
	return nil
}

func annotateSpan(tx *gorm.DB, slowThreshold time.Duration) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	if tx.Statement.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", tx.Statement.RowsAffected))
	}
	if tx.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", tx.Statement.Table))
	}
	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, tx.Error.Error())
		span.RecordError(tx.Error)
	}

	if start, ok := ctx.Value(queryStartTimeKey).(time.Time); ok && slowThreshold > 0 {
		if elapsed := time.Since(start); elapsed > slowThreshold {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
		}
	}
}
