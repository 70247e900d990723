package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jneralrex/stratos-backend/internal/domain/identity"
	"github.com/jneralrex/stratos-backend/internal/domain/shared"
	"github.com/jneralrex/stratos-backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// TransactionStatus represents the lifecycle state of a payment claim
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"   // Awaiting review by a sales rep
	TransactionStatusConfirmed TransactionStatus = "confirmed" // Payment accepted, commissions distributed
	TransactionStatusRejected  TransactionStatus = "rejected"  // Payment refused
)

// IsValid checks if the status is a valid TransactionStatus
func (s TransactionStatus) IsValid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusConfirmed, TransactionStatusRejected:
		return true
	}
	return false
}

// String returns the string representation of TransactionStatus
func (s TransactionStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no further transitions are allowed
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusConfirmed || s == TransactionStatusRejected
}

// CanConfirm returns true if the transaction can be confirmed in this status
func (s TransactionStatus) CanConfirm() bool {
	return s == TransactionStatusPending
}

// CanReject returns true if the transaction can be rejected in this status
func (s TransactionStatus) CanReject() bool {
	return s == TransactionStatusPending
}

// CanAmend returns true if amount and receipt may still be edited
func (s TransactionStatus) CanAmend() bool {
	return s == TransactionStatusPending
}

// ParseTransactionStatus parses a status string, rejecting unknown values
func ParseTransactionStatus(s string) (TransactionStatus, error) {
	status := TransactionStatus(strings.TrimSpace(s))
	if !status.IsValid() {
		return "", shared.NewValidationError("Invalid status")
	}
	return status, nil
}

// Receipt is the evidence attached to a transaction. Both fields are opaque
// values handed back by the blob store.
type Receipt struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

// IsEmpty reports whether no evidence is attached
func (r Receipt) IsEmpty() bool {
	return r.URL == "" && r.PublicID == ""
}

// Transaction is the aggregate root for a student's payment claim
type Transaction struct {
	shared.BaseAggregateRoot
	StudentID   uuid.UUID
	Amount      decimal.Decimal
	Receipt     Receipt
	Status      TransactionStatus
	ConfirmedBy *uuid.UUID
	ConfirmedAt *time.Time
	RejectedAt  *time.Time
}

// NewTransaction creates a pending transaction for the given student
func NewTransaction(studentID uuid.UUID, amount decimal.Decimal, receipt Receipt) (*Transaction, error) {
	if studentID == uuid.Nil {
		return nil, shared.NewValidationError("Student is required")
	}
	validAmount, err := positiveAmount(amount)
	if err != nil {
		return nil, err
	}

	t := &Transaction{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		StudentID:         studentID,
		Amount:            validAmount,
		Receipt:           receipt,
		Status:            TransactionStatusPending,
	}
	t.AddDomainEvent(NewTransactionCreatedEvent(t))
	return t, nil
}

// TransactionPatch lists the fields a pending transaction may change.
// Nil fields are left untouched.
type TransactionPatch struct {
	Amount          *decimal.Decimal
	ReceiptURL      *string
	ReceiptPublicID *string
}

// IsEmpty reports whether the patch changes nothing
func (p TransactionPatch) IsEmpty() bool {
	return p.Amount == nil && p.ReceiptURL == nil && p.ReceiptPublicID == nil
}

// Amend applies a patch while the transaction is still pending
func (t *Transaction) Amend(patch TransactionPatch) error {
	if !t.Status.CanAmend() {
		return shared.ErrAlreadyProcessed
	}
	if patch.Amount != nil {
		validAmount, err := positiveAmount(*patch.Amount)
		if err != nil {
			return err
		}
		t.Amount = validAmount
	}
	if patch.ReceiptURL != nil {
		t.Receipt.URL = *patch.ReceiptURL
	}
	if patch.ReceiptPublicID != nil {
		t.Receipt.PublicID = *patch.ReceiptPublicID
	}
	t.Touch()
	t.IncrementVersion()
	return nil
}

// Confirm moves the transaction to confirmed on behalf of a sales rep.
// The caller must persist the change with a status compare-and-swap and
// distribute commissions in the same unit of work.
func (t *Transaction) Confirm(confirmedBy uuid.UUID) error {
	if !t.Status.CanConfirm() {
		return shared.ErrAlreadyProcessed
	}
	if confirmedBy == uuid.Nil {
		return shared.NewValidationError("Confirming user ID is required")
	}

	now := time.Now()
	t.Status = TransactionStatusConfirmed
	t.ConfirmedBy = &confirmedBy
	t.ConfirmedAt = &now
	t.UpdatedAt = now
	t.IncrementVersion()

	t.AddDomainEvent(NewTransactionConfirmedEvent(t))
	return nil
}

// Reject moves the transaction to rejected
func (t *Transaction) Reject() error {
	if !t.Status.CanReject() {
		return shared.ErrAlreadyProcessed
	}

	now := time.Now()
	t.Status = TransactionStatusRejected
	t.RejectedAt = &now
	t.UpdatedAt = now
	t.IncrementVersion()

	t.AddDomainEvent(NewTransactionRejectedEvent(t))
	return nil
}

// IsOwnedBy reports whether userID is the paying student
func (t *Transaction) IsOwnedBy(userID uuid.UUID) bool {
	return t.StudentID == userID
}

// EnsureReadableBy enforces that students only read their own transactions
func (t *Transaction) EnsureReadableBy(actor Actor) error {
	if actor.Role == identity.RoleStudent && !t.IsOwnedBy(actor.UserID) {
		return shared.NewForbiddenError("You can only view your own transactions")
	}
	return nil
}

// EnsureAmendableBy enforces that students only update their own transactions
func (t *Transaction) EnsureAmendableBy(actor Actor) error {
	if actor.Role == identity.RoleStudent && !t.IsOwnedBy(actor.UserID) {
		return shared.NewForbiddenError("You can only update your own transactions")
	}
	return nil
}

// GetAmountMoney returns the amount as a Money value object
func (t *Transaction) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoney(t.Amount)
}

// IsPending returns true if the transaction awaits review
func (t *Transaction) IsPending() bool {
	return t.Status == TransactionStatusPending
}

// ValidateAmount checks that amount is a positive value in whole minor units
func ValidateAmount(amount decimal.Decimal) error {
	_, err := positiveAmount(amount)
	return err
}

func positiveAmount(amount decimal.Decimal) (decimal.Decimal, error) {
	money, err := valueobject.NewPositiveMoney(amount)
	if err != nil {
		return decimal.Zero, shared.NewValidationError("Invalid amount: " + err.Error())
	}
	return money.Amount(), nil
}

// Actor is the already-authenticated caller of a finance operation
type Actor struct {
	UserID uuid.UUID
	Role   identity.Role
}

// String renders the actor for log fields
func (a Actor) String() string {
	return fmt.Sprintf("%s(%s)", a.Role, a.UserID)
}
