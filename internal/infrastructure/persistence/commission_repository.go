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

// GormCommissionRepository implements finance.CommissionRepository using GORM
type GormCommissionRepository struct {
	db *gorm.DB
}

// NewGormCommissionRepository creates a new GormCommissionRepository
func NewGormCommissionRepository(db *gorm.DB) *GormCommissionRepository {
	return &GormCommissionRepository{db: db}
}

// CreateBatch appends ledger entries. A second batch for the same
// transaction and type violates the unique index and is reported as
// already processed.
func (r *GormCommissionRepository) CreateBatch(ctx context.Context, commissions []*finance.Commission) error {
	if len(commissions) == 0 {
		return nil
	}
	rows := make([]*models.CommissionModel, len(commissions))
	for i, c := range commissions {
		rows[i] = models.CommissionModelFromDomain(c)
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyProcessed
		}
		return err
	}
	return nil
}

// UpdateStatus persists a payout status change with optimistic locking
func (r *GormCommissionRepository) UpdateStatus(ctx context.Context, commission *finance.Commission) error {
	result := r.db.WithContext(ctx).
		Model(&models.CommissionModel{}).
		Where("id = ? AND version = ?", commission.ID, commission.Version-1).
		Updates(map[string]any{
			"status":      commission.Status,
			"approved_at": commission.ApprovedAt,
			"paid_at":     commission.PaidAt,
			"version":     commission.Version,
			"updated_at":  commission.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewConflictError("Commission was modified by another request")
	}
	return nil
}

// FindByID finds a commission by ID
func (r *GormCommissionRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Commission, error) {
	var model models.CommissionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByUser returns every ledger row credited to userID, newest first
func (r *GormCommissionRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*finance.Commission, error) {
	return r.findWhere(ctx, "created_at DESC", "user_id = ?", userID)
}

// FindByTransaction returns the ledger rows generated by one transaction
func (r *GormCommissionRepository) FindByTransaction(ctx context.Context, transactionID uuid.UUID) ([]*finance.Commission, error) {
	return r.findWhere(ctx, "type ASC", "transaction_id = ?", transactionID)
}

func (r *GormCommissionRepository) findWhere(ctx context.Context, order, query string, args ...any) ([]*finance.Commission, error) {
	var rows []models.CommissionModel
	if err := r.db.WithContext(ctx).Where(query, args...).Order(order).Find(&rows).Error; err != nil {
		return nil, err
	}
	commissions := make([]*finance.Commission, len(rows))
	for i := range rows {
		commissions[i] = rows[i].ToDomain()
	}
	return commissions, nil
}

var _ finance.CommissionRepository = (*GormCommissionRepository)(nil)
