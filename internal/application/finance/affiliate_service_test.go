package finance

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jneralrex/stratos-backend/internal/domain/finance"
	"github.com/jneralrex/stratos-backend/internal/domain/identity"
	"github.com/jneralrex/stratos-backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newLedgerEntry(t *testing.T, userID uuid.UUID, amount string, status finance.CommissionStatus) *finance.Commission {
	t.Helper()
	c, err := finance.NewCommission(userID, uuid.New(), uuid.New(), decimal.RequireFromString(amount), finance.CommissionTypeReferral, finance.CommissionStatusPending)
	require.NoError(t, err)
	switch status {
	case finance.CommissionStatusApproved:
		require.NoError(t, c.Approve())
	case finance.CommissionStatusPaid:
		require.NoError(t, c.Approve())
		require.NoError(t, c.MarkPaid())
	}
	c.ClearDomainEvents()
	return c
}

func newAffiliateService() (*AffiliateService, *MockUserRepository, *MockCommissionRepository) {
	users := new(MockUserRepository)
	commissions := new(MockCommissionRepository)
	scope := NewNoOpTransactionScope(users, new(MockTransactionRepository), commissions)
	engine := NewCommissionEngine(finance.DefaultCommissionRates(), zap.NewNop())
	return NewAffiliateService(users, commissions, scope, engine, zap.NewNop()), users, commissions
}

// =============================================================================
// Earnings / Referrals
// =============================================================================

func TestAffiliateService_Earnings(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("totals reconcile with the ledger", func(t *testing.T) {
		svc, _, commissions := newAffiliateService()
		entries := []*finance.Commission{
			newLedgerEntry(t, userID, "100.00", finance.CommissionStatusApproved),
			newLedgerEntry(t, userID, "20.50", finance.CommissionStatusPending),
			newLedgerEntry(t, userID, "30.25", finance.CommissionStatusPaid),
		}
		commissions.On("FindByUser", mock.Anything, userID).Return(entries, nil)

		earnings, err := svc.Earnings(ctx, userID)

		require.NoError(t, err)
		assert.Equal(t, "150.75", earnings.TotalEarnings.StringFixed(2))
		assert.Equal(t, "100.00", earnings.ApprovedEarnings.StringFixed(2))
		assert.Equal(t, "20.50", earnings.PendingEarnings.StringFixed(2))
		assert.Len(t, earnings.Commissions, 3)
	})

	t.Run("no ledger rows yields zeros", func(t *testing.T) {
		svc, _, commissions := newAffiliateService()
		commissions.On("FindByUser", mock.Anything, userID).Return([]*finance.Commission{}, nil)

		earnings, err := svc.Earnings(ctx, userID)

		require.NoError(t, err)
		assert.True(t, earnings.TotalEarnings.IsZero())
		assert.NotNil(t, earnings.Commissions)
	})

	t.Run("repository failure is wrapped", func(t *testing.T) {
		svc, _, commissions := newAffiliateService()
		commissions.On("FindByUser", mock.Anything, userID).Return(nil, errors.New("boom"))

		_, err := svc.Earnings(ctx, userID)

		assert.ErrorContains(t, err, "failed to load commissions")
	})
}

func TestAffiliateService_Referrals(t *testing.T) {
	svc, users, _ := newAffiliateService()
	affiliateID := uuid.New()
	referred := newTestUser(identity.RoleStudent, "sam")
	referred.PasswordHash = "secret-hash"
	users.On("FindByReferrer", mock.Anything, affiliateID).Return([]*identity.User{referred}, nil)

	profiles, err := svc.Referrals(context.Background(), affiliateID)

	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, referred.ID, profiles[0].ID)
	assert.Equal(t, "sam", profiles[0].Username)
}

// =============================================================================
// RecomputeSummary
// =============================================================================

func TestAffiliateService_RecomputeSummary(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("summary counts approved and paid as earned", func(t *testing.T) {
		svc, users, commissions := newAffiliateService()
		users.On("LockForUpdate", mock.Anything, []uuid.UUID{userID}).Return(nil)
		commissions.On("FindByUser", mock.Anything, userID).Return([]*finance.Commission{
			newLedgerEntry(t, userID, "100", finance.CommissionStatusApproved),
			newLedgerEntry(t, userID, "40", finance.CommissionStatusPaid),
			newLedgerEntry(t, userID, "5", finance.CommissionStatusPending),
		}, nil)
		users.On("UpdateCommissionsSummary", mock.Anything, userID, mock.Anything).Return(nil)

		summary, err := svc.RecomputeSummary(ctx, userID)

		require.NoError(t, err)
		assert.Equal(t, "140.00", summary.TotalEarned.StringFixed(2))
		assert.Equal(t, "5.00", summary.Pending.StringFixed(2))
		assert.Equal(t, "40.00", summary.PaidOut.StringFixed(2))
		assert.Equal(t, "LockForUpdate", users.Calls[0].Method)
		stored := users.Calls[1].Arguments.Get(2).(identity.CommissionsSummary)
		assert.True(t, stored.Equal(summary))
	})

	t.Run("unknown user is not found", func(t *testing.T) {
		svc, users, commissions := newAffiliateService()
		users.On("LockForUpdate", mock.Anything, []uuid.UUID{userID}).Return(nil)
		commissions.On("FindByUser", mock.Anything, userID).Return([]*finance.Commission{}, nil)
		users.On("UpdateCommissionsSummary", mock.Anything, userID, mock.Anything).Return(shared.ErrNotFound)

		_, err := svc.RecomputeSummary(ctx, userID)

		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("lock failure stops the rebuild", func(t *testing.T) {
		svc, users, commissions := newAffiliateService()
		users.On("LockForUpdate", mock.Anything, []uuid.UUID{userID}).Return(errors.New("lock timeout"))

		_, err := svc.RecomputeSummary(ctx, userID)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to lock user")
		commissions.AssertNotCalled(t, "FindByUser", mock.Anything, mock.Anything)
		users.AssertNotCalled(t, "UpdateCommissionsSummary", mock.Anything, mock.Anything, mock.Anything)
	})
}
