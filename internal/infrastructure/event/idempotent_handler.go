package event

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/jneralrex/stratos-backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultDeliveryWindow is how long a handled event ID is remembered
const DefaultDeliveryWindow = 24 * time.Hour

// Claimer grants a key to the first caller within a window. The auth token
// stores (Redis SETNX or in-memory) satisfy it.
type Claimer interface {
	Acquire(ctx context.Context, key string, window time.Duration) (bool, error)
}

// IdempotencyStats is a snapshot of an IdempotentHandler's counters
type IdempotencyStats struct {
	Processed int64 `json:"processed"`
	Duplicate int64 `json:"duplicate"`
	Failed    int64 `json:"failed"`
}

// IdempotentHandler wraps an EventHandler so a redelivered event (same
// EventID) is handled at most once per window.
type IdempotentHandler struct {
	handler shared.EventHandler
	claims  Claimer
	window  time.Duration
	logger  *zap.Logger

	processed atomic.Int64
	duplicate atomic.Int64
	failed    atomic.Int64
}

// IdempotentHandlerOption configures an IdempotentHandler
type IdempotentHandlerOption func(*IdempotentHandler)

// WithDeliveryWindow overrides DefaultDeliveryWindow
func WithDeliveryWindow(window time.Duration) IdempotentHandlerOption {
	return func(h *IdempotentHandler) {
		if window > 0 {
			h.window = window
		}
	}
}

// NewIdempotentHandler wraps handler with duplicate suppression
func NewIdempotentHandler(handler shared.EventHandler, claims Claimer, logger *zap.Logger, opts ...IdempotentHandlerOption) *IdempotentHandler {
	h := &IdempotentHandler{
		handler: handler,
		claims:  claims,
		window:  DefaultDeliveryWindow,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// EventTypes delegates to the wrapped handler
func (h *IdempotentHandler) EventTypes() []string {
	return h.handler.EventTypes()
}

// Handle runs the wrapped handler unless the event was already claimed.
// When the claim store is unreachable the event is handled anyway.
func (h *IdempotentHandler) Handle(ctx context.Context, evt shared.DomainEvent) error {
	eventID := evt.EventID().String()

	first, err := h.claims.Acquire(ctx, "event:"+eventID, h.window)
	switch {
	case err != nil:
		h.logger.Warn("Idempotency check failed, handling event anyway",
			zap.String("event_id", eventID),
			zap.String("event_type", evt.EventType()),
			zap.Error(err),
		)
	case !first:
		h.duplicate.Add(1)
		h.logger.Debug("Duplicate event skipped",
			zap.String("event_id", eventID),
			zap.String("event_type", evt.EventType()),
		)
		return nil
	}

	if err := h.handler.Handle(ctx, evt); err != nil {
		// the claim is kept so a failing event is not retried until it expires
		h.failed.Add(1)
		return err
	}
	h.processed.Add(1)
	return nil
}

// Stats returns the handler's counters
func (h *IdempotentHandler) Stats() IdempotencyStats {
	return IdempotencyStats{
		Processed: h.processed.Load(),
		Duplicate: h.duplicate.Load(),
		Failed:    h.failed.Load(),
	}
}

var _ shared.EventHandler = (*IdempotentHandler)(nil)
