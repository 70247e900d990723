package telemetry

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"
)

func TestNewMeterProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	mp, err := NewMeterProvider(ctx, MetricsConfig{ServiceName: "stratos-test"}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter(MeterName))
	assert.NoError(t, mp.ForceFlush(ctx))
	assert.NoError(t, mp.Shutdown(ctx))

	// Instruments on the no-op meter accept measurements
	m, err := NewLedgerMetrics(mp.Meter(MeterName))
	require.NoError(t, err)
	m.RecordTransaction(ctx, "confirmed", decimal.NewFromInt(10))
}

func TestMeterProvider_WithReader(t *testing.T) {
	prev := otel.GetMeterProvider()
	t.Cleanup(func() { otel.SetMeterProvider(prev) })

	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	mp, err := newMeterProvider(MetricsConfig{Enabled: true, ServiceName: "stratos-test"}, reader, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.True(t, mp.IsEnabled())

	m, err := NewLedgerMetrics(mp.Meter(MeterName))
	require.NoError(t, err)
	m.RecordCommission(ctx, "sale", decimal.NewFromInt(50))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	findMetric(t, rm, MetricCommissionsTotal)

	assert.NoError(t, mp.Shutdown(ctx))
}

// =============================================================================
// Ledger metrics
// =============================================================================

func newLedgerMetricsWithReader(t *testing.T) (*LedgerMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := NewLedgerMetrics(provider.Meter(MeterName))
	require.NoError(t, err)
	return m, reader
}

func findMetric(t *testing.T, rm metricdata.ResourceMetrics, name string) metricdata.Metrics {
	t.Helper()
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m
			}
		}
	}
	t.Fatalf("metric %s not collected", name)
	return metricdata.Metrics{}
}

func sumsByAttribute[N int64 | float64](t *testing.T, m metricdata.Metrics, key string) map[string]N {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[N])
	require.True(t, ok, "metric %s is not a sum", m.Name)

	out := make(map[string]N, len(sum.DataPoints))
	for _, dp := range sum.DataPoints {
		v, _ := dp.Attributes.Value(attribute.Key(key))
		out[v.AsString()] = dp.Value
	}
	return out
}

func TestLedgerMetrics_RecordTransaction(t *testing.T) {
	ctx := context.Background()
	m, reader := newLedgerMetricsWithReader(t)

	m.RecordTransaction(ctx, "pending", decimal.NewFromInt(1000))
	m.RecordTransaction(ctx, "confirmed", decimal.NewFromInt(1000))
	m.RecordTransaction(ctx, "confirmed", decimal.NewFromInt(500))
	m.RecordTransaction(ctx, "rejected", decimal.RequireFromString("20.50"))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	counts := sumsByAttribute[int64](t, findMetric(t, rm, MetricTransactionsTotal), "status")
	assert.Equal(t, map[string]int64{"pending": 1, "confirmed": 2, "rejected": 1}, counts)

	hist, ok := findMetric(t, rm, MetricTransactionAmount).Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	for _, dp := range hist.DataPoints {
		status, _ := dp.Attributes.Value("status")
		if status.AsString() == "confirmed" {
			assert.Equal(t, uint64(2), dp.Count)
			assert.InDelta(t, 1500.0, dp.Sum, 0.001)
		}
	}
}

func TestLedgerMetrics_RecordCommission(t *testing.T) {
	ctx := context.Background()
	m, reader := newLedgerMetricsWithReader(t)

	m.RecordCommission(ctx, "referral", decimal.NewFromInt(100))
	m.RecordCommission(ctx, "sale", decimal.NewFromInt(50))
	m.RecordCommission(ctx, "sale", decimal.RequireFromString("16.67"))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	counts := sumsByAttribute[int64](t, findMetric(t, rm, MetricCommissionsTotal), "type")
	assert.Equal(t, map[string]int64{"referral": 1, "sale": 2}, counts)

	amounts := sumsByAttribute[float64](t, findMetric(t, rm, MetricCommissionAmount), "type")
	assert.InDelta(t, 100.0, amounts["referral"], 0.001)
	assert.InDelta(t, 66.67, amounts["sale"], 0.001)
}
