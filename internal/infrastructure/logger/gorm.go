package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultSlowQuery is the statement duration above which a query is reported
// as slow
const DefaultSlowQuery = 200 * time.Millisecond

// SQLLogger writes gorm statement logs through zap. Every line carries the
// request id, caller and trace id of the context the query ran under, so a
// failed confirm can be followed from the HTTP log down to the SQL it issued.
type SQLLogger struct {
	base         *zap.Logger
	level        gormlogger.LogLevel
	slowQuery    time.Duration
	keepNotFound bool
}

// SQLOption tunes an SQLLogger
type SQLOption func(*SQLLogger)

// SlowQueryThreshold overrides DefaultSlowQuery; zero turns slow query
// reporting off
func SlowQueryThreshold(d time.Duration) SQLOption {
	return func(l *SQLLogger) { l.slowQuery = d }
}

// ReportNotFound logs lookups that matched no row as errors. They are
// dropped by default since repositories map them to NOT_FOUND.
func ReportNotFound() SQLOption {
	return func(l *SQLLogger) { l.keepNotFound = true }
}

// NewSQLLogger returns an SQLLogger writing to base under the "sql" name
func NewSQLLogger(base *zap.Logger, level gormlogger.LogLevel, opts ...SQLOption) *SQLLogger {
	l := &SQLLogger{
		base:      base.Named("sql"),
		level:     level,
		slowQuery: DefaultSlowQuery,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SQLLevel translates the application log level into the gorm level that
// produces a comparable amount of output. Only "debug" logs every statement.
func SQLLevel(appLevel string) gormlogger.LogLevel {
	switch appLevel {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

func (l *SQLLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	next := *l
	next.level = level
	return &next
}

func (l *SQLLogger) Info(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Info, zapcore.InfoLevel, msg, data)
}

func (l *SQLLogger) Warn(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Warn, zapcore.WarnLevel, msg, data)
}

func (l *SQLLogger) Error(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Error, zapcore.ErrorLevel, msg, data)
}

func (l *SQLLogger) printf(ctx context.Context, min gormlogger.LogLevel, lvl zapcore.Level, msg string, data []any) {
	if l.level < min {
		return
	}
	if ce := Enrich(ctx, l.base).Check(lvl, fmt.Sprintf(msg, data...)); ce != nil {
		ce.Write()
	}
}

// Trace reports one executed statement. Failures win over slowness, and
// ordinary statements are only written at debug.
func (l *SQLLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	var (
		lvl zapcore.Level
		msg string
	)
	switch {
	case err != nil:
		if l.level < gormlogger.Error || (!l.keepNotFound && errors.Is(err, gormlogger.ErrRecordNotFound)) {
			return
		}
		lvl, msg = zapcore.ErrorLevel, "sql failed"
	case l.slowQuery > 0 && elapsed > l.slowQuery:
		if l.level < gormlogger.Warn {
			return
		}
		lvl, msg = zapcore.WarnLevel, "slow sql"
	default:
		if l.level < gormlogger.Info {
			return
		}
		lvl, msg = zapcore.DebugLevel, "sql"
	}

	ce := Enrich(ctx, l.base).Check(lvl, msg)
	if ce == nil {
		return
	}
	statement, rows := fc()
	fields := []zap.Field{zap.String("sql", statement), zap.Duration("elapsed", elapsed)}
	// gorm passes -1 when the driver cannot report affected rows
	if rows >= 0 {
		fields = append(fields, zap.Int64("rows", rows))
	}
	if lvl == zapcore.WarnLevel {
		fields = append(fields, zap.Duration("threshold", l.slowQuery))
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	ce.Write(fields...)
}

var _ gormlogger.Interface = (*SQLLogger)(nil)
