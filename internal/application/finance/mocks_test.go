package finance

import (
	"context"

	"github.com/google/uuid"
	"github.com/jneralrex/stratos-backend/internal/domain/finance"
	"github.com/jneralrex/stratos-backend/internal/domain/identity"
	"github.com/jneralrex/stratos-backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock Repositories
// =============================================================================

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*identity.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByReferralCode(ctx context.Context, code string) (*identity.User, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByReferrer(ctx context.Context, referrerID uuid.UUID) ([]*identity.User, error) {
	args := m.Called(ctx, referrerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) UpdateCommissionsSummary(ctx context.Context, id uuid.UUID, summary identity.CommissionsSummary) error {
	return m.Called(ctx, id, summary).Error(0)
}

func (m *MockUserRepository) LockForUpdate(ctx context.Context, ids ...uuid.UUID) error {
	return m.Called(ctx, ids).Error(0)
}

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *finance.Transaction) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockTransactionRepository) UpdatePending(ctx context.Context, tx *finance.Transaction) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockTransactionRepository) TransitionStatus(ctx context.Context, tx *finance.Transaction, from finance.TransactionStatus) error {
	return m.Called(ctx, tx, from).Error(0)
}

func (m *MockTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindAll(ctx context.Context, filter finance.TransactionFilter) ([]*finance.Transaction, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*finance.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockCommissionRepository struct {
	mock.Mock
}

func (m *MockCommissionRepository) CreateBatch(ctx context.Context, commissions []*finance.Commission) error {
	return m.Called(ctx, commissions).Error(0)
}

func (m *MockCommissionRepository) UpdateStatus(ctx context.Context, commission *finance.Commission) error {
	return m.Called(ctx, commission).Error(0)
}

func (m *MockCommissionRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Commission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Commission), args.Error(1)
}

func (m *MockCommissionRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*finance.Commission, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*finance.Commission), args.Error(1)
}

func (m *MockCommissionRepository) FindByTransaction(ctx context.Context, transactionID uuid.UUID) ([]*finance.Commission, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*finance.Commission), args.Error(1)
}

// =============================================================================
// Mock Ports
// =============================================================================

type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Store(ctx context.Context, file ReceiptUpload) (finance.Receipt, error) {
	args := m.Called(ctx, file)
	return args.Get(0).(finance.Receipt), args.Error(1)
}

func (m *MockBlobStore) Delete(ctx context.Context, identifier string) (bool, error) {
	args := m.Called(ctx, identifier)
	return args.Bool(0), args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	return m.Called(ctx, events).Error(0)
}

type MockBusinessMetrics struct {
	mock.Mock
}

func (m *MockBusinessMetrics) RecordTransaction(ctx context.Context, status string, amount decimal.Decimal) {
	m.Called(ctx, status, amount)
}

func (m *MockBusinessMetrics) RecordCommission(ctx context.Context, commissionType string, amount decimal.Decimal) {
	m.Called(ctx, commissionType, amount)
}

var (
	_ identity.UserRepository       = (*MockUserRepository)(nil)
	_ finance.TransactionRepository = (*MockTransactionRepository)(nil)
	_ finance.CommissionRepository  = (*MockCommissionRepository)(nil)
	_ BlobStore                     = (*MockBlobStore)(nil)
	_ shared.EventPublisher         = (*MockEventPublisher)(nil)
	_ BusinessMetrics               = (*MockBusinessMetrics)(nil)
)
