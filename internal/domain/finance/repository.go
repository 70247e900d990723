package finance

import (
	"context"

	"github.com/google/uuid"
)

// TransactionFilter narrows transaction listings. Nil fields match all rows.
type TransactionFilter struct {
	StudentID *uuid.UUID
	Status    *TransactionStatus
}

// TransactionRepository defines the interface for transaction persistence.
// Find methods return shared.ErrNotFound when no row matches.
type TransactionRepository interface {
	// Create inserts a new pending transaction
	Create(ctx context.Context, tx *Transaction) error

	// UpdatePending saves amended amount/receipt. The aggregate's Version has
	// already been bumped; the stored row must still be pending at Version-1,
	// otherwise shared.ErrAlreadyProcessed or a CONFLICT error is returned.
	UpdatePending(ctx context.Context, tx *Transaction) error

	// TransitionStatus persists a status change with a compare-and-swap on
	// the stored status and version: the row is only written while its
	// status equals from and its version is tx.Version-1. A row that already
	// left from yields shared.ErrAlreadyProcessed; a row amended since it was
	// read yields a CONFLICT error.
	TransitionStatus(ctx context.Context, tx *Transaction, from TransactionStatus) error

	// FindByID finds a transaction by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// FindAll lists transactions matching the filter, newest first
	FindAll(ctx context.Context, filter TransactionFilter) ([]*Transaction, error)

	// Delete hard-deletes a transaction regardless of status
	Delete(ctx context.Context, id uuid.UUID) error
}

// CommissionRepository defines the interface for the commission ledger.
// Rows are never deleted and their amount never changes.
type CommissionRepository interface {
	// CreateBatch appends ledger entries
	CreateBatch(ctx context.Context, commissions []*Commission) error

	// UpdateStatus persists a status change using the version for optimistic locking
	UpdateStatus(ctx context.Context, commission *Commission) error

	// FindByID finds a commission by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Commission, error)

	// FindByUser returns every ledger row credited to userID, newest first
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*Commission, error)

	// FindByTransaction returns the ledger rows generated by one transaction
	FindByTransaction(ctx context.Context, transactionID uuid.UUID) ([]*Commission, error)
}
