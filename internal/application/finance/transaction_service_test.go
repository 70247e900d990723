package finance

import (
	"bytes"
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

// =============================================================================
// Fixtures
// =============================================================================

type txServiceFixture struct {
	users        *MockUserRepository
	transactions *MockTransactionRepository
	commissions  *MockCommissionRepository
	blobs        *MockBlobStore
	events       *MockEventPublisher
	service      *TransactionService
}

func newTxServiceFixture() *txServiceFixture {
	f := &txServiceFixture{
		users:        new(MockUserRepository),
		transactions: new(MockTransactionRepository),
		commissions:  new(MockCommissionRepository),
		blobs:        new(MockBlobStore),
		events:       new(MockEventPublisher),
	}
	scope := NewNoOpTransactionScope(f.users, f.transactions, f.commissions)
	engine := NewCommissionEngine(finance.DefaultCommissionRates(), zap.NewNop())
	f.service = NewTransactionService(f.users, f.transactions, scope, engine, f.blobs, f.events, zap.NewNop())
	return f
}

func newTestUser(role identity.Role, username string) *identity.User {
	return &identity.User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Username:          username,
		Email:             username + "@example.com",
		FullName:          "Test " + username,
		Role:              role,
		IsVerified:        true,
		Commissions:       identity.ZeroCommissionsSummary(),
	}
}

func newPendingTx(t *testing.T, studentID uuid.UUID, amount string) *finance.Transaction {
	t.Helper()
	tx, err := finance.NewTransaction(studentID, decimal.RequireFromString(amount), finance.Receipt{URL: "https://cdn/r.png", PublicID: "receipts/r.png"})
	require.NoError(t, err)
	tx.ClearDomainEvents()
	return tx
}

func studentActor(u *identity.User) finance.Actor {
	return finance.Actor{UserID: u.ID, Role: identity.RoleStudent}
}

var adminActor = finance.Actor{UserID: uuid.New(), Role: identity.RoleSuperAdmin}

// =============================================================================
// Create
// =============================================================================

func TestTransactionService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("student creates own transaction with uploaded receipt", func(t *testing.T) {
		f := newTxServiceFixture()
		student := newTestUser(identity.RoleStudent, "sam")
		upload := ReceiptUpload{Filename: "r.png", ContentType: "image/png", Data: []byte("png")}

		f.users.On("FindByID", mock.Anything, student.ID).Return(student, nil)
		f.blobs.On("Store", mock.Anything, upload).Return(finance.Receipt{URL: "https://cdn/receipts/x.png", PublicID: "receipts/x.png"}, nil)
		f.transactions.On("Create", mock.Anything, mock.AnythingOfType("*finance.Transaction")).Return(nil)
		f.events.On("Publish", mock.Anything, mock.Anything).Return(nil)

		view, err := f.service.Create(ctx, studentActor(student), CreateTransactionInput{
			Amount: decimal.NewFromInt(1000),
			Upload: &upload,
		})

		require.NoError(t, err)
		assert.Equal(t, student.ID, view.Transaction.StudentID)
		assert.Equal(t, finance.TransactionStatusPending, view.Transaction.Status)
		assert.Equal(t, "receipts/x.png", view.Transaction.Receipt.PublicID)
		assert.Equal(t, "sam", view.Student.Username)
		assert.Empty(t, view.Transaction.GetDomainEvents())
		f.events.AssertCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("student cannot create for another student", func(t *testing.T) {
		f := newTxServiceFixture()
		student := newTestUser(identity.RoleStudent, "sam")
		other := uuid.New()

		_, err := f.service.Create(ctx, studentActor(student), CreateTransactionInput{StudentID: &other, Amount: decimal.NewFromInt(10)})

		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("admin must name the student", func(t *testing.T) {
		f := newTxServiceFixture()

		_, err := f.service.Create(ctx, adminActor, CreateTransactionInput{Amount: decimal.NewFromInt(10)})

		assert.ErrorIs(t, err, shared.NewValidationError(""))
	})

	t.Run("non-positive amount is rejected before any upload", func(t *testing.T) {
		f := newTxServiceFixture()
		student := newTestUser(identity.RoleStudent, "sam")

		_, err := f.service.Create(ctx, studentActor(student), CreateTransactionInput{
			Amount: decimal.Zero,
			Upload: &ReceiptUpload{Filename: "r.png"},
		})

		assert.ErrorIs(t, err, shared.NewValidationError(""))
		f.blobs.AssertNotCalled(t, "Store", mock.Anything, mock.Anything)
	})

	t.Run("unknown student is not found", func(t *testing.T) {
		f := newTxServiceFixture()
		missing := uuid.New()
		f.users.On("FindByID", mock.Anything, missing).Return(nil, shared.ErrNotFound)

		_, err := f.service.Create(ctx, adminActor, CreateTransactionInput{StudentID: &missing, Amount: decimal.NewFromInt(10)})

		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("uploaded receipt is removed when the insert fails", func(t *testing.T) {
		f := newTxServiceFixture()
		student := newTestUser(identity.RoleStudent, "sam")
		upload := ReceiptUpload{Filename: "r.pdf", ContentType: "application/pdf", Data: []byte("%PDF")}

		f.users.On("FindByID", mock.Anything, student.ID).Return(student, nil)
		f.blobs.On("Store", mock.Anything, upload).Return(finance.Receipt{URL: "u", PublicID: "receipts/y.pdf"}, nil)
		f.transactions.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))
		f.blobs.On("Delete", mock.Anything, "receipts/y.pdf").Return(true, nil)

		_, err := f.service.Create(ctx, studentActor(student), CreateTransactionInput{Amount: decimal.NewFromInt(10), Upload: &upload})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to save transaction")
		f.blobs.AssertCalled(t, "Delete", mock.Anything, "receipts/y.pdf")
		f.events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})
}

// =============================================================================
// Update
// =============================================================================

func TestTransactionService_Update(t *testing.T) {
	ctx := context.Background()
	newAmount := decimal.NewFromInt(1500)

	t.Run("owner amends pending transaction", func(t *testing.T) {
		f := newTxServiceFixture()
		student := newTestUser(identity.RoleStudent, "sam")
		tx := newPendingTx(t, student.ID, "1000")

		f.transactions.On("FindByID", mock.Anything, tx.ID).Return(tx, nil)
		f.transactions.On("UpdatePending", mock.Anything, tx).Return(nil)
		f.users.On("FindByIDs", mock.Anything, []uuid.UUID{student.ID}).Return([]*identity.User{student}, nil)

		view, err := f.service.Update(ctx, studentActor(student), tx.ID, UpdateTransactionInput{Amount: &newAmount})

		require.NoError(t, err)
		assert.True(t, view.Transaction.Amount.Equal(newAmount))
	})

	t.Run("other student is forbidden", func(t *testing.T) {
		f := newTxServiceFixture()
		tx := newPendingTx(t, uuid.New(), "1000")
		intruder := newTestUser(identity.RoleStudent, "eve")
		f.transactions.On("FindByID", mock.Anything, tx.ID).Return(tx, nil)

		_, err := f.service.Update(ctx, studentActor(intruder), tx.ID, UpdateTransactionInput{Amount: &newAmount})

		assert.ErrorIs(t, err, shared.ErrForbidden)
		f.transactions.AssertNotCalled(t, "UpdatePending", mock.Anything, mock.Anything)
	})

	t.Run("terminal transaction is already processed", func(t *testing.T) {
		f := newTxServiceFixture()
		tx := newPendingTx(t, uuid.New(), "1000")
		require.NoError(t, tx.Reject())
		f.transactions.On("FindByID", mock.Anything, tx.ID).Return(tx, nil)

		_, err := f.service.Update(ctx, adminActor, tx.ID, UpdateTransactionInput{Amount: &newAmount})

		assert.ErrorIs(t, err, shared.ErrAlreadyProcessed)
	})

	t.Run("missing transaction is not found", func(t *testing.T) {
		f := newTxServiceFixture()
		id := uuid.New()
		f.transactions.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

		_, err := f.service.Update(ctx, adminActor, id, UpdateTransactionInput{Amount: &newAmount})

		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("empty patch is a validation error", func(t *testing.T) {
		f := newTxServiceFixture()

		_, err := f.service.Update(ctx, adminActor, uuid.New(), UpdateTransactionInput{})

		assert.ErrorIs(t, err, shared.NewValidationError(""))
	})

	t.Run("replacing the receipt deletes the previous blob", func(t *testing.T) {
		f := newTxServiceFixture()
		student := newTestUser(identity.RoleStudent, "sam")
		tx := newPendingTx(t, student.ID, "1000")
		upload := ReceiptUpload{Filename: "new.png", Data: []byte("x")}

		f.transactions.On("FindByID", mock.Anything, tx.ID).Return(tx, nil)
		f.blobs.On("Store", mock.Anything, upload).Return(finance.Receipt{URL: "https://cdn/new.png", PublicID: "receipts/new.png"}, nil)
		f.transactions.On("UpdatePending", mock.Anything, tx).Return(nil)
		f.blobs.On("Delete", mock.Anything, "receipts/r.png").Return(true, nil)
		f.users.On("FindByIDs", mock.Anything, mock.Anything).Return([]*identity.User{student}, nil)

		view, err := f.service.Update(ctx, studentActor(student), tx.ID, UpdateTransactionInput{Upload: &upload})

		require.NoError(t, err)
		assert.Equal(t, "receipts/new.png", view.Transaction.Receipt.PublicID)
		f.blobs.AssertCalled(t, "Delete", mock.Anything, "receipts/r.png")
	})
}

// =============================================================================
// Confirm
// =============================================================================

func TestTransactionService_Confirm(t *testing.T) {
	ctx := context.Background()

	t.Run("referred student pays referral and sale commissions", func(t *testing.T) {
		f := newTxServiceFixture()
		affiliate := newTestUser(identity.RoleAffiliate, "aff")
		student := newTestUser(identity.RoleStudent, "sam")
		student.ReferredBy = &affiliate.ID
		rep := newTestUser(identity.RoleSalesRep, "rep")
		tx := newPendingTx(t, student.ID, "1000")

		var written []*finance.Commission
		f.transactions.On("FindByID", mock.Anything, tx.ID).Return(tx, nil)
		f.transactions.On("TransitionStatus", mock.Anything, tx, finance.TransactionStatusPending).Return(nil)
		f.users.On("FindByID", mock.Anything, student.ID).Return(student, nil)
		f.users.On("FindByID", mock.Anything, affiliate.ID).Return(affiliate, nil)
		f.users.On("LockForUpdate", mock.Anything, mock.Anything).Return(nil)
		f.commissions.On("CreateBatch", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			written = args.Get(1).([]*finance.Commission)
		}).Return(nil)
		f.commissions.On("FindByUser", mock.Anything, mock.Anything).Return([]*finance.Commission{}, nil)
		f.users.On("UpdateCommissionsSummary", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		f.events.On("Publish", mock.Anything, mock.Anything).Return(nil)
		f.users.On("FindByIDs", mock.Anything, mock.Anything).Return([]*identity.User{student, rep}, nil)

		result, err := f.service.Confirm(ctx, finance.Actor{UserID: rep.ID, Role: identity.RoleSalesRep}, tx.ID)

		require.NoError(t, err)
		assert.Equal(t, finance.TransactionStatusConfirmed, result.Transaction.Transaction.Status)
		assert.Equal(t, "rep", result.Transaction.ConfirmedBy.Username)
		require.Len(t, written, 2)
		assert.Equal(t, affiliate.ID, written[0].UserID)
		assert.Equal(t, finance.CommissionTypeReferral, written[0].Type)
		assert.True(t, written[0].Amount.Equal(decimal.NewFromInt(100)))
		assert.Equal(t, rep.ID, written[1].UserID)
		assert.Equal(t, finance.CommissionTypeSale, written[1].Type)
		assert.True(t, written[1].Amount.Equal(decimal.NewFromInt(50)))
		for _, c := range written {
			assert.Equal(t, finance.CommissionStatusApproved, c.Status)
			assert.Equal(t, student.ID, c.ReferredUserID)
		}
		f.users.AssertCalled(t, "UpdateCommissionsSummary", mock.Anything, affiliate.ID, mock.Anything)
		f.users.AssertCalled(t, "UpdateCommissionsSummary", mock.Anything, rep.ID, mock.Anything)

		// Both beneficiaries are locked in ascending ID order before the ledger write
		locked := lockedIDs(f.users)
		require.Len(t, locked, 2)
		assert.ElementsMatch(t, []uuid.UUID{affiliate.ID, rep.ID}, locked)
		assert.Negative(t, bytes.Compare(locked[0][:], locked[1][:]))

		published := f.events.Calls[0].Arguments.Get(1).([]shared.DomainEvent)
		assert.Len(t, published, 3)
		assert.Equal(t, finance.EventTypeTransactionConfirmed, published[0].EventType())
	})

	t.Run("unreferred student pays only the sale commission", func(t *testing.T) {
		f := newTxServiceFixture()
		student := newTestUser(identity.RoleStudent, "sam")
		rep := newTestUser(identity.RoleSalesRep, "rep")
		tx := newPendingTx(t, student.ID, "333.33")

		var written []*finance.Commission
		f.transactions.On("FindByID", mock.Anything, tx.ID).Return(tx, nil)
		f.transactions.On("TransitionStatus", mock.Anything, tx, finance.TransactionStatusPending).Return(nil)
		f.users.On("FindByID", mock.Anything, student.ID).Return(student, nil)
		f.users.On("LockForUpdate", mock.Anything, []uuid.UUID{rep.ID}).Return(nil)
		f.commissions.On("CreateBatch", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			written = args.Get(1).([]*finance.Commission)
		}).Return(nil)
		f.commissions.On("FindByUser", mock.Anything, rep.ID).Return([]*finance.Commission{}, nil)
		f.users.On("UpdateCommissionsSummary", mock.Anything, rep.ID, mock.Anything).Return(nil)
		f.events.On("Publish", mock.Anything, mock.Anything).Return(nil)
		f.users.On("FindByIDs", mock.Anything, mock.Anything).Return([]*identity.User{student, rep}, nil)

		result, err := f.service.Confirm(ctx, finance.Actor{UserID: rep.ID, Role: identity.RoleSalesRep}, tx.ID)

		require.NoError(t, err)
		require.Len(t, written, 1)
		assert.Len(t, result.Commissions, 1)
		assert.Equal(t, "16.67", written[0].Amount.StringFixed(2))
	})

	t.Run("user lookup failure after commit still reports the confirmation", func(t *testing.T) {
		f := newTxServiceFixture()
		student := newTestUser(identity.RoleStudent, "sam")
		rep := newTestUser(identity.RoleSalesRep, "rep")
		tx := newPendingTx(t, student.ID, "1000")

		f.transactions.On("FindByID", mock.Anything, tx.ID).Return(tx, nil)
		f.transactions.On("TransitionStatus", mock.Anything, tx, finance.TransactionStatusPending).Return(nil)
		f.users.On("FindByID", mock.Anything, student.ID).Return(student, nil)
		f.users.On("LockForUpdate", mock.Anything, []uuid.UUID{rep.ID}).Return(nil)
		f.commissions.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)
		f.commissions.On("FindByUser", mock.Anything, rep.ID).Return([]*finance.Commission{}, nil)
		f.users.On("UpdateCommissionsSummary", mock.Anything, rep.ID, mock.Anything).Return(nil)
		f.events.On("Publish", mock.Anything, mock.Anything).Return(nil)
		f.users.On("FindByIDs", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset"))

		result, err := f.service.Confirm(ctx, finance.Actor{UserID: rep.ID, Role: identity.RoleSalesRep}, tx.ID)

		require.NoError(t, err)
		assert.Equal(t, finance.TransactionStatusConfirmed, result.Transaction.Transaction.Status)
		assert.Nil(t, result.Transaction.Student)
		assert.Nil(t, result.Transaction.ConfirmedBy)
		assert.Len(t, result.Commissions, 1)
		f.events.AssertCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("lost compare-and-swap is already processed and writes nothing", func(t *testing.T) {
		f := newTxServiceFixture()
		tx := newPendingTx(t, uuid.New(), "1000")
		f.transactions.On("FindByID", mock.Anything, tx.ID).Return(tx, nil)
		f.transactions.On("TransitionStatus", mock.Anything, tx, finance.TransactionStatusPending).Return(shared.ErrAlreadyProcessed)

		_, err := f.service.Confirm(ctx, finance.Actor{UserID: uuid.New(), Role: identity.RoleSalesRep}, tx.ID)

		assert.ErrorIs(t, err, shared.ErrAlreadyProcessed)
		f.commissions.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
		f.events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("terminal transaction is already processed", func(t *testing.T) {
		f := newTxServiceFixture()
		tx := newPendingTx(t, uuid.New(), "1000")
		require.NoError(t, tx.Confirm(uuid.New()))
		f.transactions.On("FindByID", mock.Anything, tx.ID).Return(tx, nil)

		_, err := f.service.Confirm(ctx, finance.Actor{UserID: uuid.New(), Role: identity.RoleSalesRep}, tx.ID)

		assert.ErrorIs(t, err, shared.ErrAlreadyProcessed)
		f.transactions.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ledger failure aborts the confirmation", func(t *testing.T) {
		f := newTxServiceFixture()
		student := newTestUser(identity.RoleStudent, "sam")
		tx := newPendingTx(t, student.ID, "1000")
		f.transactions.On("FindByID", mock.Anything, tx.ID).Return(tx, nil)
		f.transactions.On("TransitionStatus", mock.Anything, tx, finance.TransactionStatusPending).Return(nil)
		f.users.On("FindByID", mock.Anything, student.ID).Return(student, nil)
		f.users.On("LockForUpdate", mock.Anything, mock.Anything).Return(nil)
		f.commissions.On("CreateBatch", mock.Anything, mock.Anything).Return(errors.New("insert failed"))

		_, err := f.service.Confirm(ctx, finance.Actor{UserID: uuid.New(), Role: identity.RoleSalesRep}, tx.ID)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to save commissions")
		f.events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})
}

// =============================================================================
// Reject / Delete
// =============================================================================

func TestTransactionService_Reject(t *testing.T) {
	ctx := context.Background()

	t.Run("pending transaction is rejected without commissions", func(t *testing.T) {
		f := newTxServiceFixture()
		student := newTestUser(identity.RoleStudent, "sam")
		tx := newPendingTx(t, student.ID, "1000")
		f.transactions.On("FindByID", mock.Anything, tx.ID).Return(tx, nil)
		f.transactions.On("TransitionStatus", mock.Anything, tx, finance.TransactionStatusPending).Return(nil)
		f.events.On("Publish", mock.Anything, mock.Anything).Return(nil)
		f.users.On("FindByIDs", mock.Anything, mock.Anything).Return([]*identity.User{student}, nil)

		view, err := f.service.Reject(ctx, adminActor, tx.ID)

		require.NoError(t, err)
		assert.Equal(t, finance.TransactionStatusRejected, view.Transaction.Status)
		f.commissions.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
	})

	t.Run("user lookup failure after commit still reports the rejection", func(t *testing.T) {
		f := newTxServiceFixture()
		tx := newPendingTx(t, uuid.New(), "1000")
		f.transactions.On("FindByID", mock.Anything, tx.ID).Return(tx, nil)
		f.transactions.On("TransitionStatus", mock.Anything, tx, finance.TransactionStatusPending).Return(nil)
		f.events.On("Publish", mock.Anything, mock.Anything).Return(nil)
		f.users.On("FindByIDs", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset"))

		view, err := f.service.Reject(ctx, adminActor, tx.ID)

		require.NoError(t, err)
		assert.Equal(t, finance.TransactionStatusRejected, view.Transaction.Status)
		assert.Nil(t, view.Student)
	})

	t.Run("rejected transaction cannot be rejected again", func(t *testing.T) {
		f := newTxServiceFixture()
		tx := newPendingTx(t, uuid.New(), "1000")
		require.NoError(t, tx.Reject())
		f.transactions.On("FindByID", mock.Anything, tx.ID).Return(tx, nil)

		_, err := f.service.Reject(ctx, adminActor, tx.ID)

		assert.ErrorIs(t, err, shared.ErrAlreadyProcessed)
	})
}

func TestTransactionService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes row and receipt", func(t *testing.T) {
		f := newTxServiceFixture()
		tx := newPendingTx(t, uuid.New(), "1000")
		require.NoError(t, tx.Confirm(uuid.New()))
		f.transactions.On("FindByID", mock.Anything, tx.ID).Return(tx, nil)
		f.transactions.On("Delete", mock.Anything, tx.ID).Return(nil)
		f.blobs.On("Delete", mock.Anything, "receipts/r.png").Return(true, nil)

		require.NoError(t, f.service.Delete(ctx, adminActor, tx.ID))
		f.blobs.AssertExpectations(t)
	})

	t.Run("receipt failure does not fail the delete", func(t *testing.T) {
		f := newTxServiceFixture()
		tx := newPendingTx(t, uuid.New(), "1000")
		f.transactions.On("FindByID", mock.Anything, tx.ID).Return(tx, nil)
		f.transactions.On("Delete", mock.Anything, tx.ID).Return(nil)
		f.blobs.On("Delete", mock.Anything, "receipts/r.png").Return(false, errors.New("s3 down"))

		assert.NoError(t, f.service.Delete(ctx, adminActor, tx.ID))
	})

	t.Run("missing transaction is not found", func(t *testing.T) {
		f := newTxServiceFixture()
		id := uuid.New()
		f.transactions.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

		err := f.service.Delete(ctx, adminActor, id)

		assert.True(t, shared.IsNotFound(err))
	})
}

// =============================================================================
// Queries
// =============================================================================

func TestTransactionService_GetByID(t *testing.T) {
	ctx := context.Background()
	student := newTestUser(identity.RoleStudent, "sam")
	tx := newPendingTx(t, student.ID, "1000")

	t.Run("owner reads own transaction", func(t *testing.T) {
		f := newTxServiceFixture()
		f.transactions.On("FindByID", mock.Anything, tx.ID).Return(tx, nil)
		f.users.On("FindByIDs", mock.Anything, []uuid.UUID{student.ID}).Return([]*identity.User{student}, nil)

		view, err := f.service.GetByID(ctx, studentActor(student), tx.ID)

		require.NoError(t, err)
		assert.Equal(t, student.Email, view.Student.Email)
		assert.Nil(t, view.ConfirmedBy)
	})

	t.Run("other student is forbidden", func(t *testing.T) {
		f := newTxServiceFixture()
		f.transactions.On("FindByID", mock.Anything, tx.ID).Return(tx, nil)

		_, err := f.service.GetByID(ctx, studentActor(newTestUser(identity.RoleStudent, "eve")), tx.ID)

		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("sales rep reads any transaction", func(t *testing.T) {
		f := newTxServiceFixture()
		f.transactions.On("FindByID", mock.Anything, tx.ID).Return(tx, nil)
		f.users.On("FindByIDs", mock.Anything, mock.Anything).Return([]*identity.User{student}, nil)

		_, err := f.service.GetByID(ctx, finance.Actor{UserID: uuid.New(), Role: identity.RoleSalesRep}, tx.ID)

		assert.NoError(t, err)
	})
}

func TestTransactionService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("list by status", func(t *testing.T) {
		f := newTxServiceFixture()
		status := finance.TransactionStatusPending
		tx := newPendingTx(t, uuid.New(), "10")
		f.transactions.On("FindAll", mock.Anything, finance.TransactionFilter{Status: &status}).Return([]*finance.Transaction{tx}, nil)
		f.users.On("FindByIDs", mock.Anything, mock.Anything).Return([]*identity.User{}, nil)

		views, err := f.service.ListByStatus(ctx, "pending")

		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Nil(t, views[0].Student)
	})

	t.Run("invalid status", func(t *testing.T) {
		f := newTxServiceFixture()

		_, err := f.service.ListByStatus(ctx, "archived")

		assert.ErrorIs(t, err, shared.NewValidationError(""))
	})

	t.Run("list mine filters by caller", func(t *testing.T) {
		f := newTxServiceFixture()
		student := newTestUser(identity.RoleStudent, "sam")
		f.transactions.On("FindAll", mock.Anything, finance.TransactionFilter{StudentID: &student.ID}).Return([]*finance.Transaction{}, nil)

		views, err := f.service.ListMine(ctx, studentActor(student))

		require.NoError(t, err)
		assert.Empty(t, views)
		f.users.AssertNotCalled(t, "FindByIDs", mock.Anything, mock.Anything)
	})
}

// lockedIDs returns the IDs passed to the first LockForUpdate call
func lockedIDs(users *MockUserRepository) []uuid.UUID {
	for _, call := range users.Calls {
		if call.Method == "LockForUpdate" {
			return call.Arguments.Get(1).([]uuid.UUID)
		}
	}
	return nil
}
