package finance

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jneralrex/stratos-backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CommissionType distinguishes why a commission was earned
type CommissionType string

const (
	CommissionTypeReferral CommissionType = "referral" // Affiliate who referred the paying student
	CommissionTypeSale     CommissionType = "sale"     // Sales rep who confirmed the payment
)

// IsValid checks if the type is a valid CommissionType
func (t CommissionType) IsValid() bool {
	return t == CommissionTypeReferral || t == CommissionTypeSale
}

// String returns the string representation of CommissionType
func (t CommissionType) String() string {
	return string(t)
}

// CommissionStatus represents the payout state of a commission
type CommissionStatus string

const (
	CommissionStatusPending  CommissionStatus = "pending"
	CommissionStatusApproved CommissionStatus = "approved"
	CommissionStatusPaid     CommissionStatus = "paid"
)

// IsValid checks if the status is a valid CommissionStatus
func (s CommissionStatus) IsValid() bool {
	switch s {
	case CommissionStatusPending, CommissionStatusApproved, CommissionStatusPaid:
		return true
	}
	return false
}

// String returns the string representation of CommissionStatus
func (s CommissionStatus) String() string {
	return string(s)
}

// CanApprove returns true if the commission can be approved in this status
func (s CommissionStatus) CanApprove() bool {
	return s == CommissionStatusPending
}

// CanPay returns true if the commission can be marked as paid in this status
func (s CommissionStatus) CanPay() bool {
	return s == CommissionStatusApproved
}

// IsEarned returns true if the commission counts towards total earnings
func (s CommissionStatus) IsEarned() bool {
	return s == CommissionStatusApproved || s == CommissionStatusPaid
}

// Commission is an append-only ledger entry crediting a beneficiary with a
// share of a confirmed transaction. Amount never changes after creation;
// only Status advances.
type Commission struct {
	shared.BaseAggregateRoot
	UserID         uuid.UUID // beneficiary
	TransactionID  uuid.UUID
	ReferredUserID uuid.UUID // the paying student
	Amount         decimal.Decimal
	Type           CommissionType
	Status         CommissionStatus
	ApprovedAt     *time.Time
	PaidAt         *time.Time
}

// NewCommission creates a ledger entry. Amount must be non-negative and is
// expected to be already rounded to the minor unit.
func NewCommission(
	userID, transactionID, referredUserID uuid.UUID,
	amount decimal.Decimal,
	commissionType CommissionType,
	status CommissionStatus,
) (*Commission, error) {
	if userID == uuid.Nil {
		return nil, shared.NewValidationError("Commission beneficiary is required")
	}
	if transactionID == uuid.Nil {
		return nil, shared.NewValidationError("Commission transaction is required")
	}
	if amount.IsNegative() {
		return nil, shared.NewValidationError("Commission amount cannot be negative")
	}
	if !commissionType.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("Invalid commission type: %s", commissionType))
	}
	if !status.IsValid() || status == CommissionStatusPaid {
		return nil, shared.NewValidationError(fmt.Sprintf("Invalid initial commission status: %s", status))
	}

	c := &Commission{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		TransactionID:     transactionID,
		ReferredUserID:    referredUserID,
		Amount:            amount,
		Type:              commissionType,
		Status:            status,
	}
	if status == CommissionStatusApproved {
		approvedAt := c.CreatedAt
		c.ApprovedAt = &approvedAt
	}

	c.AddDomainEvent(NewCommissionCreatedEvent(c))
	return c, nil
}

// Approve moves a pending commission to approved
func (c *Commission) Approve() error {
	if !c.Status.CanApprove() {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot approve commission in %s status", c.Status))
	}

	now := time.Now()
	c.Status = CommissionStatusApproved
	c.ApprovedAt = &now
	c.UpdatedAt = now
	c.IncrementVersion()
	return nil
}

// MarkPaid records that an approved commission has been paid out
func (c *Commission) MarkPaid() error {
	if !c.Status.CanPay() {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot pay commission in %s status", c.Status))
	}

	now := time.Now()
	c.Status = CommissionStatusPaid
	c.PaidAt = &now
	c.UpdatedAt = now
	c.IncrementVersion()

	c.AddDomainEvent(NewCommissionPaidEvent(c))
	return nil
}
