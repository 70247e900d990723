package finance

import (
	"context"
	"fmt"

	"github.com/jneralrex/stratos-backend/internal/domain/finance"
	"github.com/jneralrex/stratos-backend/internal/domain/shared"
	"github.com/jneralrex/stratos-backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// LedgerMetricsHandler records business metrics for committed ledger
// activity and logs confirmations.
type LedgerMetricsHandler struct {
	metrics BusinessMetrics
	logger  *zap.Logger
}

// NewLedgerMetricsHandler creates a new handler. metrics may be nil, in which
// case events are only logged.
func NewLedgerMetricsHandler(metrics BusinessMetrics, logger *zap.Logger) *LedgerMetricsHandler {
	return &LedgerMetricsHandler{metrics: metrics, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *LedgerMetricsHandler) EventTypes() []string {
	return []string{
		finance.EventTypeTransactionCreated,
		finance.EventTypeTransactionConfirmed,
		finance.EventTypeTransactionRejected,
		finance.EventTypeCommissionCreated,
		finance.EventTypeCommissionPaid,
	}
}

// Handle processes a ledger event
func (h *LedgerMetricsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *finance.TransactionCreatedEvent:
		if h.metrics != nil {
			h.metrics.RecordTransaction(ctx, finance.TransactionStatusPending.String(), e.Amount)
		}
	case *finance.TransactionConfirmedEvent:
		if h.metrics != nil {
			h.metrics.RecordTransaction(ctx, finance.TransactionStatusConfirmed.String(), e.Amount)
		}
		logger.Enrich(ctx, h.logger).Info("Payment confirmed",
			zap.String("transaction_id", e.TransactionID.String()),
			zap.String("student_id", e.StudentID.String()),
			zap.String("confirmed_by", e.ConfirmedBy.String()),
			zap.String("amount", e.Amount.StringFixed(2)),
		)
	case *finance.TransactionRejectedEvent:
		if h.metrics != nil {
			h.metrics.RecordTransaction(ctx, finance.TransactionStatusRejected.String(), e.Amount)
		}
	case *finance.CommissionCreatedEvent:
		if h.metrics != nil {
			h.metrics.RecordCommission(ctx, e.Type.String(), e.Amount)
		}
	case *finance.CommissionPaidEvent:
		logger.Enrich(ctx, h.logger).Debug("Commission payout recorded",
			zap.String("commission_id", e.CommissionID.String()),
			zap.String("amount", e.Amount.StringFixed(2)),
		)
	default:
		return fmt.Errorf("unexpected event type %T for %s", event, event.EventType())
	}
	return nil
}

var _ shared.EventHandler = (*LedgerMetricsHandler)(nil)
