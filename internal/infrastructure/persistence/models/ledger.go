package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/jneralrex/stratos-backend/internal/domain/finance"
	"github.com/shopspring/decimal"
)

// TransactionModel is the persistence model for the Transaction aggregate.
type TransactionModel struct {
	AggregateModel
	StudentID       uuid.UUID                 `gorm:"type:uuid;not null;index"`
	Amount          decimal.Decimal           `gorm:"type:decimal(18,2);not null"`
	ReceiptURL      string                    `gorm:"type:varchar(1000)"`
	ReceiptPublicID string                    `gorm:"type:varchar(500)"`
	Status          finance.TransactionStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	ConfirmedBy     *uuid.UUID                `gorm:"type:uuid;index"`
	ConfirmedAt     *time.Time
	RejectedAt      *time.Time
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToDomain converts the persistence model to a domain Transaction.
func (m *TransactionModel) ToDomain() *finance.Transaction {
	return &finance.Transaction{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		StudentID:         m.StudentID,
		Amount:            m.Amount,
		Receipt: finance.Receipt{
			URL:      m.ReceiptURL,
			PublicID: m.ReceiptPublicID,
		},
		Status:      m.Status,
		ConfirmedBy: m.ConfirmedBy,
		ConfirmedAt: m.ConfirmedAt,
		RejectedAt:  m.RejectedAt,
	}
}

// FromDomain populates the persistence model from a domain Transaction.
func (m *TransactionModel) FromDomain(t *finance.Transaction) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.StudentID = t.StudentID
	m.Amount = t.Amount
	m.ReceiptURL = t.Receipt.URL
	m.ReceiptPublicID = t.Receipt.PublicID
	m.Status = t.Status
	m.ConfirmedBy = t.ConfirmedBy
	m.ConfirmedAt = t.ConfirmedAt
	m.RejectedAt = t.RejectedAt
}

// TransactionModelFromDomain creates a new persistence model from a domain Transaction.
func TransactionModelFromDomain(t *finance.Transaction) *TransactionModel {
	m := &TransactionModel{}
	m.FromDomain(t)
	return m
}

// CommissionModel is the persistence model for a commission ledger entry.
// The (transaction_id, type) unique index makes a second distribution for
// the same transaction fail instead of double-paying.
type CommissionModel struct {
	AggregateModel
	UserID         uuid.UUID                `gorm:"type:uuid;not null;index"`
	TransactionID  uuid.UUID                `gorm:"type:uuid;not null;uniqueIndex:idx_commissions_transaction_type"`
	ReferredUserID uuid.UUID                `gorm:"type:uuid;not null"`
	Amount         decimal.Decimal          `gorm:"type:decimal(18,2);not null"`
	Type           finance.CommissionType   `gorm:"type:varchar(20);not null;uniqueIndex:idx_commissions_transaction_type"`
	Status         finance.CommissionStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	ApprovedAt     *time.Time
	PaidAt         *time.Time
}

// TableName returns the table name for GORM
func (CommissionModel) TableName() string {
	return "commissions"
}

// ToDomain converts the persistence model to a domain Commission.
func (m *CommissionModel) ToDomain() *finance.Commission {
	return &finance.Commission{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		UserID:            m.UserID,
		TransactionID:     m.TransactionID,
		ReferredUserID:    m.ReferredUserID,
		Amount:            m.Amount,
		Type:              m.Type,
		Status:            m.Status,
		ApprovedAt:        m.ApprovedAt,
		PaidAt:            m.PaidAt,
	}
}

// FromDomain populates the persistence model from a domain Commission.
func (m *CommissionModel) FromDomain(c *finance.Commission) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.UserID = c.UserID
	m.TransactionID = c.TransactionID
	m.ReferredUserID = c.ReferredUserID
	m.Amount = c.Amount
	m.Type = c.Type
	m.Status = c.Status
	m.ApprovedAt = c.ApprovedAt
	m.PaidAt = c.PaidAt
}

// CommissionModelFromDomain creates a new persistence model from a domain Commission.
func CommissionModelFromDomain(c *finance.Commission) *CommissionModel {
	m := &CommissionModel{}
	m.FromDomain(c)
	return m
}
