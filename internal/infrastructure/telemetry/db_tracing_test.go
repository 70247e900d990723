package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type tracedRow struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:100"`
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedRow{}))
	return db
}

func attrMap(kvs []attribute.KeyValue) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value, len(kvs))
	for _, kv := range kvs {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestDefaultDBTracingConfig(t *testing.T) {
	cfg := DefaultDBTracingConfig()
	assert.False(t, cfg.Enabled)
	assert.False(t, cfg.LogFullSQL)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThresh)
	assert.Equal(t, "postgresql", cfg.DBSystem)
}

func TestRegisterDBTracing_Disabled(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, RegisterDBTracing(db, DefaultDBTracingConfig(), zap.NewNop()))
	assert.Nil(t, db.Callback().Query().Get("stratos_span:query"))
}

func TestRegisterDBTracing_Enabled(t *testing.T) {
	db := setupTestDB(t)
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	cfg := DefaultDBTracingConfig()
	cfg.Enabled = true
	cfg.DBSystem = "sqlite"
	cfg.TracerProvider = tp
	require.NoError(t, RegisterDBTracing(db, cfg, zap.NewNop()))

	assert.NotNil(t, db.Callback().Query().Get("stratos_span:query"))
	assert.NotNil(t, db.Callback().Create().Get("stratos_timing:before_create"))

	ctx := context.Background()
	require.NoError(t, db.WithContext(ctx).Create(&tracedRow{Name: "receipt"}).Error)
	var rows []tracedRow
	require.NoError(t, db.WithContext(ctx).Find(&rows).Error)
	assert.Len(t, rows, 1)

	assert.NotEmpty(t, recorder.Ended())
}

// =============================================================================
// Span annotation
// =============================================================================

func annotatedSpan(t *testing.T, prepare func(tx *gorm.DB), thresh time.Duration) sdktrace.ReadOnlySpan {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	ctx, span := tp.Tracer("test").Start(context.Background(), "gorm.Query")
	tx := setupTestDB(t).WithContext(ctx)
	prepare(tx)

	annotateSpan(tx, thresh)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	return ended[0]
}

func TestAnnotateSpan_RowsAndTable(t *testing.T) {
	span := annotatedSpan(t, func(tx *gorm.DB) {
		tx.Statement.RowsAffected = 3
		tx.Statement.Table = "commissions"
	}, time.Hour)

	attrs := attrMap(span.Attributes())
	assert.Equal(t, int64(3), attrs["db.rows_affected"].AsInt64())
	assert.Equal(t, "commissions", attrs["db.sql.table"].AsString())
	_, slow := attrs["db.slow_query"]
	assert.False(t, slow)
	assert.Equal(t, codes.Unset, span.Status().Code)
}

func TestAnnotateSpan_MarksErrors(t *testing.T) {
	span := annotatedSpan(t, func(tx *gorm.DB) {
		tx.Error = errors.New("unique constraint failed")
	}, time.Hour)

	assert.Equal(t, codes.Error, span.Status().Code)
	assert.Equal(t, "unique constraint failed", span.Status().Description)
}

func TestAnnotateSpan_IgnoresRecordNotFound(t *testing.T) {
	span := annotatedSpan(t, func(tx *gorm.DB) {
		tx.Error = gorm.ErrRecordNotFound
	}, time.Hour)

	assert.Equal(t, codes.Unset, span.Status().Code)
}

func TestAnnotateSpan_SlowQuery(t *testing.T) {
	span := annotatedSpan(t, func(tx *gorm.DB) {
		tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now().Add(-time.Second))
	}, 10*time.Millisecond)

	attrs := attrMap(span.Attributes())
	assert.True(t, attrs["db.slow_query"].AsBool())
	require.Len(t, span.Events(), 1)
	assert.Equal(t, "slow_query", span.Events()[0].Name)
}
