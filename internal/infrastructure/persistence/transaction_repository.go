package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jneralrex/stratos-backend/internal/domain/finance"
	"github.com/jneralrex/stratos-backend/internal/domain/shared"
	"github.com/jneralrex/stratos-backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTransactionRepository implements finance.TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// Create inserts a new transaction
func (r *GormTransactionRepository) Create(ctx context.Context, tx *finance.Transaction) error {
	return r.db.WithContext(ctx).Create(models.TransactionModelFromDomain(tx)).Error
}

// UpdatePending writes an amended amount and receipt. The row must still be
// pending and at the version the aggregate was loaded with.
func (r *GormTransactionRepository) UpdatePending(ctx context.Context, tx *finance.Transaction) error {
	result := r.db.WithContext(ctx).
		Model(&models.TransactionModel{}).
		Where("id = ? AND status = ? AND version = ?", tx.ID, finance.TransactionStatusPending, tx.Version-1).
		Updates(map[string]any{
			"amount":            tx.Amount,
			"receipt_url":       tx.Receipt.URL,
			"receipt_public_id": tx.Receipt.PublicID,
			"version":           tx.Version,
			"updated_at":        tx.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 1 {
		return nil
	}
	return r.explainMiss(ctx, tx.ID)
}

// TransitionStatus writes a status change only while the stored row still
// has status from and the version the aggregate was loaded at. A confirmer
// holding a stale amount therefore cannot commit commissions computed on it.
func (r *GormTransactionRepository) TransitionStatus(ctx context.Context, tx *finance.Transaction, from finance.TransactionStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.TransactionModel{}).
		Where("id = ? AND status = ? AND version = ?", tx.ID, from, tx.Version-1).
		Updates(map[string]any{
			"status":       tx.Status,
			"confirmed_by": tx.ConfirmedBy,
			"confirmed_at": tx.ConfirmedAt,
			"rejected_at":  tx.RejectedAt,
			"version":      tx.Version,
			"updated_at":   tx.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 1 {
		return nil
	}
	return r.explainMiss(ctx, tx.ID)
}

// explainMiss works out why a guarded update matched no row: the row is
// gone, already left pending, or was amended since it was read.
func (r *GormTransactionRepository) explainMiss(ctx context.Context, id uuid.UUID) error {
	current, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if current.Status != finance.TransactionStatusPending {
		return shared.ErrAlreadyProcessed
	}
	return shared.NewConflictError("Transaction was modified by another request")
}

// FindByID finds a transaction by ID
func (r *GormTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Transaction, error) {
	var model models.TransactionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists transactions matching the filter, newest first
func (r *GormTransactionRepository) FindAll(ctx context.Context, filter finance.TransactionFilter) ([]*finance.Transaction, error) {
	query := r.db.WithContext(ctx).Model(&models.TransactionModel{})
	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var rows []models.TransactionModel
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	txs := make([]*finance.Transaction, len(rows))
	for i := range rows {
		txs[i] = rows[i].ToDomain()
	}
	return txs, nil
}

// Delete hard-deletes a transaction. Commission rows it produced stay in
// the ledger.
func (r *GormTransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.TransactionModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ finance.TransactionRepository = (*GormTransactionRepository)(nil)
