package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext(t *testing.T) {
	l := zap.NewExample()
	ctx := WithContext(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))

	assert.NotNil(t, FromContext(context.Background()))
	assert.NotNil(t, FromContext(context.WithValue(context.Background(), loggerKey, "not a logger")))
}

func TestContextValues(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithCaller(ctx, "user-1", "salesRep")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "user-1", GetUserID(ctx))
	assert.Equal(t, "salesRep", GetRole(ctx))

	empty := context.Background()
	assert.Empty(t, GetRequestID(empty))
	assert.Empty(t, GetUserID(empty))
	assert.Empty(t, GetRole(empty))
	assert.Empty(t, GetTraceID(empty))
}

func TestL(t *testing.T) {
	t.Run("adds caller and request fields", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)
		ctx := WithContext(context.Background(), zap.New(core))
		ctx = WithRequestID(ctx, "req-9")
		ctx = WithCaller(ctx, "user-9", "student")

		L(ctx).Info("hello")

		require.Equal(t, 1, recorded.Len())
		fields := recorded.All()[0].ContextMap()
		assert.Equal(t, "req-9", fields["request_id"])
		assert.Equal(t, "user-9", fields["user_id"])
		assert.Equal(t, "student", fields["role"])
		assert.NotContains(t, fields, "trace_id")
	})

	t.Run("adds trace fields from active span", func(t *testing.T) {
		tp := sdktrace.NewTracerProvider()
		defer func() { _ = tp.Shutdown(context.Background()) }()

		core, recorded := observer.New(zapcore.InfoLevel)
		ctx := WithContext(context.Background(), zap.New(core))
		ctx, span := tp.Tracer("test").Start(ctx, "op")
		defer span.End()

		L(ctx).Info("traced")

		fields := recorded.All()[0].ContextMap()
		assert.Equal(t, span.SpanContext().TraceID().String(), fields["trace_id"])
		assert.Equal(t, span.SpanContext().SpanID().String(), fields["span_id"])
		assert.Equal(t, span.SpanContext().TraceID().String(), GetTraceID(ctx))
	})

	t.Run("nil base logger does not panic", func(t *testing.T) {
		assert.NotPanics(t, func() {
			Enrich(context.Background(), nil).Info("ignored")
		})
	})
}
