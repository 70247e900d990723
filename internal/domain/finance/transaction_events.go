package finance

import (
	"github.com/google/uuid"
	"github.com/jneralrex/stratos-backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event type constants for transactions
const (
	AggregateTypeTransaction = "Transaction"

	EventTypeTransactionCreated   = "TransactionCreated"
	EventTypeTransactionConfirmed = "TransactionConfirmed"
	EventTypeTransactionRejected  = "TransactionRejected"
)

// TransactionCreatedEvent is raised when a student submits a payment claim
type TransactionCreatedEvent struct {
	shared.BaseDomainEvent
	TransactionID uuid.UUID       `json:"transaction_id"`
	StudentID     uuid.UUID       `json:"student_id"`
	Amount        decimal.Decimal `json:"amount"`
	HasReceipt    bool            `json:"has_receipt"`
}

// NewTransactionCreatedEvent creates a new TransactionCreatedEvent
func NewTransactionCreatedEvent(t *Transaction) *TransactionCreatedEvent {
	return &TransactionCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionCreated, AggregateTypeTransaction, t.ID),
		TransactionID:   t.ID,
		StudentID:       t.StudentID,
		Amount:          t.Amount,
		HasReceipt:      !t.Receipt.IsEmpty(),
	}
}

// TransactionConfirmedEvent is raised when a sales rep accepts a payment
type TransactionConfirmedEvent struct {
	shared.BaseDomainEvent
	TransactionID uuid.UUID       `json:"transaction_id"`
	StudentID     uuid.UUID       `json:"student_id"`
	Amount        decimal.Decimal `json:"amount"`
	ConfirmedBy   uuid.UUID       `json:"confirmed_by"`
}

// NewTransactionConfirmedEvent creates a new TransactionConfirmedEvent
func NewTransactionConfirmedEvent(t *Transaction) *TransactionConfirmedEvent {
	var confirmedBy uuid.UUID
	if t.ConfirmedBy != nil {
		confirmedBy = *t.ConfirmedBy
	}
	return &TransactionConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionConfirmed, AggregateTypeTransaction, t.ID),
		TransactionID:   t.ID,
		StudentID:       t.StudentID,
		Amount:          t.Amount,
		ConfirmedBy:     confirmedBy,
	}
}

// TransactionRejectedEvent is raised when a payment claim is refused
type TransactionRejectedEvent struct {
	shared.BaseDomainEvent
	TransactionID uuid.UUID       `json:"transaction_id"`
	StudentID     uuid.UUID       `json:"student_id"`
	Amount        decimal.Decimal `json:"amount"`
}

// NewTransactionRejectedEvent creates a new TransactionRejectedEvent
func NewTransactionRejectedEvent(t *Transaction) *TransactionRejectedEvent {
	return &TransactionRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionRejected, AggregateTypeTransaction, t.ID),
		TransactionID:   t.ID,
		StudentID:       t.StudentID,
		Amount:          t.Amount,
	}
}
