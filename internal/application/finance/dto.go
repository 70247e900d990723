package finance

import (
	"github.com/google/uuid"
	"github.com/jneralrex/stratos-backend/internal/domain/finance"
	"github.com/jneralrex/stratos-backend/internal/domain/identity"
	"github.com/shopspring/decimal"
)

// CreateTransactionInput carries a new payment claim. StudentID is only read
// for admin callers; students always create transactions for themselves.
// Receipt evidence is either an uploaded file or an already-hosted URL.
type CreateTransactionInput struct {
	StudentID       *uuid.UUID
	Amount          decimal.Decimal
	Upload          *ReceiptUpload
	ReceiptURL      string
	ReceiptPublicID string
}

// UpdateTransactionInput carries the fields of a pending transaction to change
type UpdateTransactionInput struct {
	Amount          *decimal.Decimal
	ReceiptURL      *string
	ReceiptPublicID *string
	Upload          *ReceiptUpload
}

func (in UpdateTransactionInput) isEmpty() bool {
	return in.Amount == nil && in.ReceiptURL == nil && in.ReceiptPublicID == nil && in.Upload == nil
}

// UserSummary is the minimal user projection embedded in transaction views
type UserSummary struct {
	ID       uuid.UUID
	Username string
	Email    string
}

func summarize(u *identity.User) *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, Username: u.Username, Email: u.Email}
}

// TransactionView is a transaction with its student and confirmer resolved
type TransactionView struct {
	Transaction *finance.Transaction
	Student     *UserSummary
	ConfirmedBy *UserSummary
}

// ConfirmResult is the outcome of a successful confirmation
type ConfirmResult struct {
	Transaction TransactionView
	Commissions []*finance.Commission
}

// ListTransactionsInput narrows a transaction listing
type ListTransactionsInput struct {
	StudentID *uuid.UUID
	Status    string
}
