package persistence

import (
	"context"

	financeapp "github.com/jneralrex/stratos-backend/internal/application/finance"
	"github.com/jneralrex/stratos-backend/internal/domain/finance"
	"github.com/jneralrex/stratos-backend/internal/domain/identity"
	"gorm.io/gorm"
)

// GormTransactionScope implements financeapp.TransactionScope using GORM
// transactions. Confirmation runs its status CAS, ledger append and summary
// refresh through one scope so they commit or roll back together.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos financeapp.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// Users returns the user repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Users() identity.UserRepository {
	return NewGormUserRepository(r.tx)
}

// Transactions returns the transaction repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Transactions() finance.TransactionRepository {
	return NewGormTransactionRepository(r.tx)
}

// Commissions returns the commission repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Commissions() finance.CommissionRepository {
	return NewGormCommissionRepository(r.tx)
}

var (
	_ financeapp.TransactionScope          = (*GormTransactionScope)(nil)
	_ financeapp.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
