package finance

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jneralrex/stratos-backend/internal/domain/finance"
	"github.com/jneralrex/stratos-backend/internal/domain/shared"
	"github.com/jneralrex/stratos-backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// CommissionService advances ledger rows through payout
type CommissionService struct {
	scope  TransactionScope
	engine *CommissionEngine
	events shared.EventPublisher
	logger *zap.Logger
}

// NewCommissionService creates a new CommissionService
func NewCommissionService(scope TransactionScope, engine *CommissionEngine, events shared.EventPublisher, logger *zap.Logger) *CommissionService {
	return &CommissionService{scope: scope, engine: engine, events: events, logger: logger}
}

// MarkPaid records the payout of an approved commission and refreshes the
// beneficiary's summary in the same database transaction.
func (s *CommissionService) MarkPaid(ctx context.Context, id uuid.UUID) (*finance.Commission, error) {
	var paid *finance.Commission
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		c, err := repos.Commissions().FindByID(ctx, id)
		if err != nil {
			if shared.IsNotFound(err) {
				return shared.NewNotFoundError("Commission")
			}
			return fmt.Errorf("failed to load commission: %w", err)
		}
		if err := c.MarkPaid(); err != nil {
			return err
		}
		if err := repos.Commissions().UpdateStatus(ctx, c); err != nil {
			if isDomainError(err) {
				return err
			}
			return fmt.Errorf("failed to update commission: %w", err)
		}
		if _, err := s.engine.UpdateUserTotals(ctx, repos, c.UserID); err != nil {
			return err
		}
		paid = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		if err := s.events.Publish(ctx, paid.GetDomainEvents()...); err != nil {
			logger.Enrich(ctx, s.logger).Error("Failed to publish events", zap.Error(err))
		}
	}
	paid.ClearDomainEvents()

	logger.Enrich(ctx, s.logger).Info("Commission paid",
		zap.String("commission_id", paid.ID.String()),
		zap.String("user_id", paid.UserID.String()),
		zap.String("amount", paid.Amount.StringFixed(2)),
	)
	return paid, nil
}
