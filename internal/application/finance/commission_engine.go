package finance

import (
	"bytes"
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/jneralrex/stratos-backend/internal/domain/finance"
	"github.com/jneralrex/stratos-backend/internal/domain/identity"
	"github.com/jneralrex/stratos-backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CommissionEngine writes the commission ledger entries owed for a
// confirmation and keeps beneficiaries' cached totals in step with the ledger.
// It only ever runs inside a TransactionScope opened by its caller.
// Beneficiary rows are locked in ascending ID order before the ledger is
// re-read, so two confirmations paying the same user serialize.
type CommissionEngine struct {
	rates  finance.CommissionRates
	logger *zap.Logger
}

// NewCommissionEngine creates an engine paying the given rates
func NewCommissionEngine(rates finance.CommissionRates, logger *zap.Logger) *CommissionEngine {
	return &CommissionEngine{rates: rates, logger: logger}
}

// Rates returns the configured commission rates
func (e *CommissionEngine) Rates() finance.CommissionRates {
	return e.rates
}

// Distribute creates the referral and sale commissions for a transaction that
// has just been moved to confirmed, then refreshes every beneficiary's
// summary. Any error must abort the enclosing database transaction.
func (e *CommissionEngine) Distribute(ctx context.Context, repos TransactionalRepositories, tx *finance.Transaction) ([]*finance.Commission, error) {
	referrer, err := e.findReferrer(ctx, repos.Users(), tx.StudentID)
	if err != nil {
		return nil, err
	}

	commissions, err := finance.CalculateCommissions(tx, referrer, e.rates)
	if err != nil {
		return nil, err
	}

	beneficiaries := make([]uuid.UUID, 0, len(commissions))
	for _, c := range commissions {
		if !slices.Contains(beneficiaries, c.UserID) {
			beneficiaries = append(beneficiaries, c.UserID)
		}
	}
	slices.SortFunc(beneficiaries, func(a, b uuid.UUID) int { return bytes.Compare(a[:], b[:]) })
	if err := repos.Users().LockForUpdate(ctx, beneficiaries...); err != nil {
		return nil, fmt.Errorf("failed to lock beneficiaries: %w", err)
	}

	if err := repos.Commissions().CreateBatch(ctx, commissions); err != nil {
		return nil, fmt.Errorf("failed to save commissions: %w", err)
	}
	for _, userID := range beneficiaries {
		if _, err := e.refreshTotals(ctx, repos, userID); err != nil {
			return nil, err
		}
	}

	e.logger.Info("Commissions distributed",
		zap.String("transaction_id", tx.ID.String()),
		zap.Int("entries", len(commissions)),
		zap.Bool("referred", referrer != nil),
	)
	return commissions, nil
}

// UpdateUserTotals rebuilds a user's cached commission summary from the
// ledger. The user's row is locked first so a concurrent rebuild cannot
// overwrite this one with totals computed from an older ledger read.
func (e *CommissionEngine) UpdateUserTotals(ctx context.Context, repos TransactionalRepositories, userID uuid.UUID) (identity.CommissionsSummary, error) {
	if err := repos.Users().LockForUpdate(ctx, userID); err != nil {
		return identity.CommissionsSummary{}, fmt.Errorf("failed to lock user: %w", err)
	}
	return e.refreshTotals(ctx, repos, userID)
}

// refreshTotals expects the caller to hold the user's row lock
func (e *CommissionEngine) refreshTotals(ctx context.Context, repos TransactionalRepositories, userID uuid.UUID) (identity.CommissionsSummary, error) {
	entries, err := repos.Commissions().FindByUser(ctx, userID)
	if err != nil {
		return identity.CommissionsSummary{}, fmt.Errorf("failed to load commissions: %w", err)
	}

	summary := finance.SummarizeCommissions(entries)
	if err := repos.Users().UpdateCommissionsSummary(ctx, userID, summary); err != nil {
		if shared.IsNotFound(err) {
			return identity.CommissionsSummary{}, shared.NewNotFoundError("User")
		}
		return identity.CommissionsSummary{}, fmt.Errorf("failed to update commission summary: %w", err)
	}
	return summary, nil
}

// findReferrer resolves the student's referring user. A dangling referredBy
// pointer means no referral commission is owed.
func (e *CommissionEngine) findReferrer(ctx context.Context, users identity.UserRepository, studentID uuid.UUID) (*identity.User, error) {
	student, err := users.FindByID(ctx, studentID)
	if err != nil {
		if shared.IsNotFound(err) {
			e.logger.Warn("Confirmed transaction has no student record", zap.String("student_id", studentID.String()))
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load student: %w", err)
	}
	if student.ReferredBy == nil {
		return nil, nil
	}

	referrer, err := users.FindByID(ctx, *student.ReferredBy)
	if err != nil {
		if shared.IsNotFound(err) {
			e.logger.Warn("Referrer no longer exists",
				zap.String("student_id", studentID.String()),
				zap.String("referrer_id", student.ReferredBy.String()),
			)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load referrer: %w", err)
	}
	return referrer, nil
}
