//go:build integration

package integration

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	financeapp "github.com/jneralrex/stratos-backend/internal/application/finance"
	"github.com/jneralrex/stratos-backend/internal/domain/finance"
	"github.com/jneralrex/stratos-backend/internal/domain/identity"
	"github.com/jneralrex/stratos-backend/internal/domain/shared"
	"github.com/jneralrex/stratos-backend/internal/infrastructure/persistence"
	"github.com/jneralrex/stratos-backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type ledger struct {
	db           *TestDB
	users        *persistence.GormUserRepository
	transactions *persistence.GormTransactionRepository
	commissions  *persistence.GormCommissionRepository
	service      *financeapp.TransactionService
	events       *testutil.RecordingPublisher
}

func newLedger(t *testing.T) *ledger {
	t.Helper()
	db := NewTestDB(t)
	l := &ledger{
		db:           db,
		users:        persistence.NewGormUserRepository(db.DB),
		transactions: persistence.NewGormTransactionRepository(db.DB),
		commissions:  persistence.NewGormCommissionRepository(db.DB),
		events:       testutil.NewRecordingPublisher(),
	}
	engine := financeapp.NewCommissionEngine(finance.DefaultCommissionRates(), zap.NewNop())
	l.service = financeapp.NewTransactionService(l.users, l.transactions,
		persistence.NewGormTransactionScope(db.DB), engine, nil, l.events, zap.NewNop())
	return l
}

func (l *ledger) store(t *testing.T, u *identity.User) *identity.User {
	t.Helper()
	require.NoError(t, l.users.Create(context.Background(), u))
	return u
}

func (l *ledger) pending(t *testing.T, studentID uuid.UUID, amount string) *finance.Transaction {
	t.Helper()
	tx := l.db.Fixtures.PendingTransaction(studentID)
	tx.Amount = decimal.RequireFromString(amount)
	require.NoError(t, l.transactions.Create(context.Background(), tx))
	return tx
}

// ==================== Confirmation ====================

func TestLedger_ConcurrentConfirmationsPayOnce(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	f := l.db.Fixtures

	affiliate := l.store(t, f.User(identity.RoleAffiliate))
	student := l.store(t, f.ReferredStudent(affiliate))
	tx := l.pending(t, student.ID, "2500")

	reps := make([]*identity.User, 8)
	for i := range reps {
		reps[i] = l.store(t, f.User(identity.RoleSalesRep))
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		winners   []uuid.UUID
		processed int
	)
	for _, rep := range reps {
		wg.Add(1)
		go func(repID uuid.UUID) {
			defer wg.Done()
			_, err := l.service.Confirm(ctx, finance.Actor{UserID: repID, Role: identity.RoleSalesRep}, tx.ID)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				winners = append(winners, repID)
				return
			}
			if assert.ErrorIs(t, err, shared.ErrAlreadyProcessed) {
				processed++
			}
		}(rep.ID)
	}
	wg.Wait()

	require.Len(t, winners, 1)
	assert.Equal(t, len(reps)-1, processed)

	rows, err := l.commissions.FindByTransaction(ctx, tx.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	stored, err := l.transactions.FindByID(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, finance.TransactionStatusConfirmed, stored.Status)
	assert.Equal(t, winners[0], *stored.ConfirmedBy)

	aff, err := l.users.FindByID(ctx, affiliate.ID)
	require.NoError(t, err)
	assert.True(t, aff.Commissions.TotalEarned.Equal(decimal.NewFromInt(250)), aff.Commissions.TotalEarned.String())

	winner, err := l.users.FindByID(ctx, winners[0])
	require.NoError(t, err)
	assert.True(t, winner.Commissions.TotalEarned.Equal(decimal.RequireFromString("125")))

	assert.Equal(t, 1, l.events.Count(finance.EventTypeTransactionConfirmed))
}

func TestLedger_ConfirmRejectRace(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	f := l.db.Fixtures

	student := l.store(t, f.User(identity.RoleStudent))
	rep := l.store(t, f.User(identity.RoleSalesRep))
	actor := finance.Actor{UserID: rep.ID, Role: identity.RoleSalesRep}

	for range 5 {
		tx := l.pending(t, student.ID, "100")

		var wg sync.WaitGroup
		var confirmErr, rejectErr error
		wg.Add(2)
		go func() { defer wg.Done(); _, confirmErr = l.service.Confirm(ctx, actor, tx.ID) }()
		go func() { defer wg.Done(); _, rejectErr = l.service.Reject(ctx, actor, tx.ID) }()
		wg.Wait()

		require.True(t, (confirmErr == nil) != (rejectErr == nil), "exactly one transition wins: %v / %v", confirmErr, rejectErr)

		rows, err := l.commissions.FindByTransaction(ctx, tx.ID)
		require.NoError(t, err)
		if confirmErr == nil {
			assert.Len(t, rows, 1, "unreferred student pays only the sale commission")
		} else {
			assert.Empty(t, rows)
		}
	}
}

func TestLedger_ConcurrentPayoutsKeepSummariesInStep(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	f := l.db.Fixtures

	affiliate := l.store(t, f.User(identity.RoleAffiliate))
	rep := l.store(t, f.User(identity.RoleSalesRep))
	actor := finance.Actor{UserID: rep.ID, Role: identity.RoleSalesRep}
	engine := financeapp.NewCommissionEngine(finance.DefaultCommissionRates(), zap.NewNop())
	payouts := financeapp.NewCommissionService(persistence.NewGormTransactionScope(l.db.DB), engine, nil, zap.NewNop())

	// Some sale commissions exist before the rush so payouts can race confirmations
	var payable []uuid.UUID
	for range 3 {
		student := l.store(t, f.ReferredStudent(affiliate))
		result, err := l.service.Confirm(ctx, actor, l.pending(t, student.ID, "400").ID)
		require.NoError(t, err)
		for _, c := range result.Commissions {
			if c.Type == finance.CommissionTypeSale {
				payable = append(payable, c.ID)
			}
		}
	}

	pending := make([]*finance.Transaction, 12)
	for i := range pending {
		student := l.store(t, f.ReferredStudent(affiliate))
		pending[i] = l.pending(t, student.ID, "1000")
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(pending)+len(payable))
	for _, tx := range pending {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			_, err := l.service.Confirm(ctx, actor, id)
			errs <- err
		}(tx.ID)
	}
	for _, id := range payable {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			_, err := payouts.MarkPaid(ctx, id)
			errs <- err
		}(id)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	for _, beneficiary := range []*identity.User{rep, affiliate} {
		entries, err := l.commissions.FindByUser(ctx, beneficiary.ID)
		require.NoError(t, err)
		require.Len(t, entries, 15)

		stored, err := l.users.FindByID(ctx, beneficiary.ID)
		require.NoError(t, err)
		assert.True(t, stored.Commissions.Equal(finance.SummarizeCommissions(entries)),
			"%s cached %+v", beneficiary.Role, stored.Commissions)
	}

	stored, err := l.users.FindByID(ctx, rep.ID)
	require.NoError(t, err)
	assert.Equal(t, "660.00", stored.Commissions.TotalEarned.StringFixed(2))
	assert.Equal(t, "60.00", stored.Commissions.PaidOut.StringFixed(2))

	aff, err := l.users.FindByID(ctx, affiliate.ID)
	require.NoError(t, err)
	assert.Equal(t, "1320.00", aff.Commissions.TotalEarned.StringFixed(2))
}

// ==================== Schema constraints ====================

func TestLedger_CommissionPerTypeIsUnique(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	f := l.db.Fixtures

	student := l.store(t, f.User(identity.RoleStudent))
	rep := l.store(t, f.User(identity.RoleSalesRep))
	tx := l.pending(t, student.ID, "300")
	require.NoError(t, tx.Confirm(rep.ID))

	first, err := finance.CalculateCommissions(tx, nil, finance.DefaultCommissionRates())
	require.NoError(t, err)
	require.NoError(t, l.commissions.CreateBatch(ctx, first))

	again, err := finance.CalculateCommissions(tx, nil, finance.DefaultCommissionRates())
	require.NoError(t, err)
	assert.ErrorIs(t, l.commissions.CreateBatch(ctx, again), shared.ErrAlreadyProcessed)
}

func TestLedger_ReferralCodesAreUnique(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	f := l.db.Fixtures

	a := l.store(t, f.User(identity.RoleAffiliate))
	b := f.User(identity.RoleAffiliate)
	b.ReferralCode = a.ReferralCode

	err := l.users.Create(ctx, b)
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, shared.CodeValidation, de.Code)

	// Any number of non-affiliates carry no code
	for range 3 {
		l.store(t, f.User(identity.RoleStudent))
	}
}

func TestLedger_AmountMustBePositive(t *testing.T) {
	l := newLedger(t)
	student := l.store(t, l.db.Fixtures.User(identity.RoleStudent))

	err := l.db.DB.Exec(
		"INSERT INTO transactions (id, student_id, amount, status) VALUES (?, ?, ?, 'pending')",
		uuid.New(), student.ID, "-5",
	).Error
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chk_transactions_amount")
}
