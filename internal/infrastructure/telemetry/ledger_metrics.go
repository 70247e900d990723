package telemetry

import (
	"context"

	financeapp "github.com/jneralrex/stratos-backend/internal/application/finance"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope of the ledger instruments
const MeterName = "github.com/jneralrex/stratos-backend/ledger"

// Metric names
const (
	MetricTransactionsTotal = "stratos.transactions.total"
	MetricTransactionAmount = "stratos.transactions.amount"
	MetricCommissionsTotal  = "stratos.commissions.total"
	MetricCommissionAmount  = "stratos.commissions.amount"
)

// LedgerMetrics records transaction and commission activity as OpenTelemetry
// instruments. Amounts are exported as floats; the ledger itself stays exact.
type LedgerMetrics struct {
	transactionsTotal metric.Int64Counter
	transactionAmount metric.Float64Histogram
	commissionsTotal  metric.Int64Counter
	commissionAmount  metric.Float64Counter
}

// NewLedgerMetrics creates the ledger instruments on meter
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	m := &LedgerMetrics{}
	var err error

	m.transactionsTotal, err = meter.Int64Counter(MetricTransactionsTotal,
		metric.WithDescription("Transactions by resulting status"),
		metric.WithUnit("{transaction}"),
	)
	if err != nil {
		return nil, &MetricsError{Metric: MetricTransactionsTotal, Err: err}
	}

	m.transactionAmount, err = meter.Float64Histogram(MetricTransactionAmount,
		metric.WithDescription("Transaction amounts by resulting status"),
		metric.WithUnit("{currency}"),
		metric.WithExplicitBucketBoundaries(10, 50, 100, 250, 500, 1000, 2500, 5000, 10000),
	)
	if err != nil {
		return nil, &MetricsError{Metric: MetricTransactionAmount, Err: err}
	}

	m.commissionsTotal, err = meter.Int64Counter(MetricCommissionsTotal,
		metric.WithDescription("Commission ledger entries written"),
		metric.WithUnit("{commission}"),
	)
	if err != nil {
		return nil, &MetricsError{Metric: MetricCommissionsTotal, Err: err}
	}

	m.commissionAmount, err = meter.Float64Counter(MetricCommissionAmount,
		metric.WithDescription("Commission amounts accrued"),
		metric.WithUnit("{currency}"),
	)
	if err != nil {
		return nil, &MetricsError{Metric: MetricCommissionAmount, Err: err}
	}

	return m, nil
}

// RecordTransaction counts a transaction reaching status
func (m *LedgerMetrics) RecordTransaction(ctx context.Context, status string, amount decimal.Decimal) {
	attrs := metric.WithAttributes(attribute.String("status", status))
	m.transactionsTotal.Add(ctx, 1, attrs)
	m.transactionAmount.Record(ctx, amount.InexactFloat64(), attrs)
}

// RecordCommission counts a commission entry of the given type
func (m *LedgerMetrics) RecordCommission(ctx context.Context, commissionType string, amount decimal.Decimal) {
	attrs := metric.WithAttributes(attribute.String("type", commissionType))
	m.commissionsTotal.Add(ctx, 1, attrs)
	m.commissionAmount.Add(ctx, amount.InexactFloat64(), attrs)
}

// MetricsError reports an instrument that could not be created
type MetricsError struct {
	Metric string
	Err    error
}

func (e *MetricsError) Error() string {
	return "failed to create metric " + e.Metric + ": " + e.Err.Error()
}

func (e *MetricsError) Unwrap() error {
	return e.Err
}

var _ financeapp.BusinessMetrics = (*LedgerMetrics)(nil)
