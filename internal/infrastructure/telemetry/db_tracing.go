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
	LogFullSQL      bool          // include bound variables in spans; never in production
	SlowQueryThresh time.Duration // queries slower than this get a slow_query event
	DBSystem        string
	// TracerProvider overrides the global provider. Tests only.
	TracerProvider trace.TracerProvider
}

// DefaultDBTracingConfig returns default configuration for database tracing.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		SlowQueryThresh: 200 * time.Millisecond,
		DBSystem:        "postgresql",
	}
}

type queryStartKey struct{}

// RegisterDBTracing installs the otelgorm plugin on db, plus callbacks that
// tag spans with rows affected, the table and slow-query markers.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		logger.Debug("Database tracing disabled")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBSystem)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(cfg.TracerProvider))
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	if err := registerTimingCallbacks(db); err != nil {
		return err
	}
	if err := registerSpanCallbacks(db, cfg.SlowQueryThresh); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
	)
	return nil
}

func markQueryStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

func registerTimingCallbacks(db *gorm.DB) error {
	cb := db.Callback()
	return errors.Join(
		cb.Create().Before("gorm:create").Register("stratos_timing:before_create", markQueryStart),
		cb.Query().Before("gorm:query").Register("stratos_timing:before_query", markQueryStart),
		cb.Update().Before("gorm:update").Register("stratos_timing:before_update", markQueryStart),
		cb.Delete().Before("gorm:delete").Register("stratos_timing:before_delete", markQueryStart),
		cb.Row().Before("gorm:row").Register("stratos_timing:before_row", markQueryStart),
		cb.Raw().Before("gorm:raw").Register("stratos_timing:before_raw", markQueryStart),
	)
}

func registerSpanCallbacks(db *gorm.DB, slowThresh time.Duration) error {
	annotate := func(db *gorm.DB) { annotateSpan(db, slowThresh) }
	cb := db.Callback()
	return errors.Join(
		cb.Create().After("gorm:create").Before("otel:after:create").Register("stratos_span:create", annotate),
		cb.Query().After("gorm:query").Before("otel:after:query").Register("stratos_span:query", annotate),
		cb.Update().After("gorm:update").Before("otel:after:update").Register("stratos_span:update", annotate),
		cb.Delete().After("gorm:delete").Before("otel:after:delete").Register("stratos_span:delete", annotate),
		cb.Row().After("gorm:row").Before("otel:after:row").Register("stratos_span:row", annotate),
		cb.Raw().After("gorm:raw").Before("otel:after:raw").Register("stratos_span:raw", annotate),
	)
}

// annotateSpan decorates the span otelgorm opened for the statement. It must
// run before otelgorm's after hook ends that span.
func annotateSpan(db *gorm.DB, slowThresh time.Duration) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}

	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return
	}
	if elapsed := time.Since(start); elapsed > slowThresh {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
		span.AddEvent("slow_query", trace.WithAttributes(
			attribute.Int64("threshold_ms", slowThresh.Milliseconds()),
		))
	}
}
