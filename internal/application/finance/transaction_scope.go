package finance

import (
	"context"

	"github.com/jneralrex/stratos-backend/internal/domain/finance"
	"github.com/jneralrex/stratos-backend/internal/domain/identity"
)

// TransactionScope provides transactional access to the ledger repositories.
// All repository calls made through the TransactionalRepositories handed to fn
// share one database transaction, committed when fn returns nil and rolled
// back otherwise.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the repositories bound to the current
// transaction.
//
// Confirmation touches all three: the transaction status CAS, the commission
// ledger append and the cached commission summary of each beneficiary.
type TransactionalRepositories interface {
	Users() identity.UserRepository
	Transactions() finance.TransactionRepository
	Commissions() finance.CommissionRepository
}

// NoOpTransactionScope runs fn directly against the given repositories
// without a transaction. Used in unit tests.
type NoOpTransactionScope struct {
	users        identity.UserRepository
	transactions finance.TransactionRepository
	commissions  finance.CommissionRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	users identity.UserRepository,
	transactions finance.TransactionRepository,
	commissions finance.CommissionRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		users:        users,
		transactions: transactions,
		commissions:  commissions,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Users returns the user repository.
func (s *NoOpTransactionScope) Users() identity.UserRepository { return s.users }

// Transactions returns the transaction repository.
func (s *NoOpTransactionScope) Transactions() finance.TransactionRepository { return s.transactions }

// Commissions returns the commission repository.
func (s *NoOpTransactionScope) Commissions() finance.CommissionRepository { return s.commissions }

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)
