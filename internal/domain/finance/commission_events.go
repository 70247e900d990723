package finance

import (
	"github.com/google/uuid"
	"github.com/jneralrex/stratos-backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	AggregateTypeCommission = "Commission"

	EventTypeCommissionCreated = "CommissionCreated"
	EventTypeCommissionPaid    = "CommissionPaid"
)

// CommissionCreatedEvent is raised for every ledger entry written
type CommissionCreatedEvent struct {
	shared.BaseDomainEvent
	CommissionID   uuid.UUID        `json:"commission_id"`
	UserID         uuid.UUID        `json:"user_id"`
	TransactionID  uuid.UUID        `json:"transaction_id"`
	ReferredUserID uuid.UUID        `json:"referred_user_id"`
	Amount         decimal.Decimal  `json:"amount"`
	Type           CommissionType   `json:"type"`
	Status         CommissionStatus `json:"status"`
}

// NewCommissionCreatedEvent creates a new CommissionCreatedEvent
func NewCommissionCreatedEvent(c *Commission) *CommissionCreatedEvent {
	return &CommissionCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCommissionCreated, AggregateTypeCommission, c.ID),
		CommissionID:    c.ID,
		UserID:          c.UserID,
		TransactionID:   c.TransactionID,
		ReferredUserID:  c.ReferredUserID,
		Amount:          c.Amount,
		Type:            c.Type,
		Status:          c.Status,
	}
}

// CommissionPaidEvent is raised when a payout is recorded
type CommissionPaidEvent struct {
	shared.BaseDomainEvent
	CommissionID uuid.UUID       `json:"commission_id"`
	UserID       uuid.UUID       `json:"user_id"`
	Amount       decimal.Decimal `json:"amount"`
}

// NewCommissionPaidEvent creates a new CommissionPaidEvent
func NewCommissionPaidEvent(c *Commission) *CommissionPaidEvent {
	return &CommissionPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCommissionPaid, AggregateTypeCommission, c.ID),
		CommissionID:    c.ID,
		UserID:          c.UserID,
		Amount:          c.Amount,
	}
}
