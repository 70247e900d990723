package finance

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jneralrex/stratos-backend/internal/domain/finance"
	"github.com/jneralrex/stratos-backend/internal/domain/identity"
	"github.com/jneralrex/stratos-backend/internal/domain/shared"
	"github.com/jneralrex/stratos-backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// AffiliateService serves the read side of the referral program
type AffiliateService struct {
	users       identity.UserRepository
	commissions finance.CommissionRepository
	scope       TransactionScope
	engine      *CommissionEngine
	logger      *zap.Logger
}

// NewAffiliateService creates a new AffiliateService
func NewAffiliateService(
	users identity.UserRepository,
	commissions finance.CommissionRepository,
	scope TransactionScope,
	engine *CommissionEngine,
	logger *zap.Logger,
) *AffiliateService {
	return &AffiliateService{
		users:       users,
		commissions: commissions,
		scope:       scope,
		engine:      engine,
		logger:      logger,
	}
}

// Earnings aggregates the commission ledger rows credited to userID
func (s *AffiliateService) Earnings(ctx context.Context, userID uuid.UUID) (*finance.Earnings, error) {
	entries, err := s.commissions.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load commissions: %w", err)
	}
	earnings := finance.ComputeEarnings(entries)
	return &earnings, nil
}

// Referrals lists the users referred by userID as public profiles
func (s *AffiliateService) Referrals(ctx context.Context, userID uuid.UUID) ([]identity.PublicProfile, error) {
	users, err := s.users.FindByReferrer(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load referrals: %w", err)
	}
	profiles := make([]identity.PublicProfile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.Public())
	}
	return profiles, nil
}

// RecomputeSummary rebuilds a user's cached commission totals from the ledger
func (s *AffiliateService) RecomputeSummary(ctx context.Context, userID uuid.UUID) (identity.CommissionsSummary, error) {
	var summary identity.CommissionsSummary
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		summary, err = s.engine.UpdateUserTotals(ctx, repos, userID)
		return err
	})
	if err != nil {
		if !shared.IsNotFound(err) {
			logger.Enrich(ctx, s.logger).Error("Failed to recompute commission summary",
				zap.String("user_id", userID.String()), zap.Error(err))
		}
		return identity.CommissionsSummary{}, err
	}

	logger.Enrich(ctx, s.logger).Info("Commission summary recomputed",
		zap.String("user_id", userID.String()),
		zap.String("total_earned", summary.TotalEarned.StringFixed(2)),
	)
	return summary, nil
}
