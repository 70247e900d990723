package finance

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jneralrex/stratos-backend/internal/domain/finance"
	"github.com/jneralrex/stratos-backend/internal/domain/identity"
	"github.com/jneralrex/stratos-backend/internal/domain/shared"
	"github.com/jneralrex/stratos-backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// TransactionService manages the transaction lifecycle: creation with an
// optional receipt, amendment while pending, confirmation with commission
// distribution, rejection, deletion and queries.
type TransactionService struct {
	users        identity.UserRepository
	transactions finance.TransactionRepository
	scope        TransactionScope
	engine       *CommissionEngine
	blobs        BlobStore
	events       shared.EventPublisher
	logger       *zap.Logger
}

// NewTransactionService creates a new TransactionService. blobs and events
// may be nil.
func NewTransactionService(
	users identity.UserRepository,
	transactions finance.TransactionRepository,
	scope TransactionScope,
	engine *CommissionEngine,
	blobs BlobStore,
	events shared.EventPublisher,
	logger *zap.Logger,
) *TransactionService {
	return &TransactionService{
		users:        users,
		transactions: transactions,
		scope:        scope,
		engine:       engine,
		blobs:        blobs,
		events:       events,
		logger:       logger,
	}
}

// Create records a pending payment claim
func (s *TransactionService) Create(ctx context.Context, actor finance.Actor, input CreateTransactionInput) (*TransactionView, error) {
	studentID, err := resolveStudent(actor, input.StudentID)
	if err != nil {
		return nil, err
	}
	if err := finance.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	student, err := s.users.FindByID(ctx, studentID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NewNotFoundError("Student")
		}
		return nil, fmt.Errorf("failed to load student: %w", err)
	}

	receipt := finance.Receipt{URL: input.ReceiptURL, PublicID: input.ReceiptPublicID}
	uploaded := false
	if input.Upload != nil {
		receipt, err = s.storeReceipt(ctx, *input.Upload)
		if err != nil {
			return nil, err
		}
		uploaded = true
	}

	tx, err := finance.NewTransaction(studentID, input.Amount, receipt)
	if err == nil {
		err = s.transactions.Create(ctx, tx)
		if err != nil {
			err = fmt.Errorf("failed to save transaction: %w", err)
		}
	}
	if err != nil {
		if uploaded {
			s.discardReceipt(ctx, receipt.PublicID)
		}
		return nil, err
	}

	s.publish(ctx, tx.GetDomainEvents()...)
	tx.ClearDomainEvents()

	logger.Enrich(ctx, s.logger).Info("Transaction created",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("student_id", studentID.String()),
		zap.String("amount", tx.Amount.StringFixed(2)),
		zap.Bool("has_receipt", !tx.Receipt.IsEmpty()),
	)
	return &TransactionView{Transaction: tx, Student: summarize(student)}, nil
}

// Update amends the amount or receipt of a pending transaction
func (s *TransactionService) Update(ctx context.Context, actor finance.Actor, id uuid.UUID, input UpdateTransactionInput) (*TransactionView, error) {
	if input.isEmpty() {
		return nil, shared.NewValidationError("Nothing to update")
	}

	tx, err := s.find(ctx, s.transactions, id)
	if err != nil {
		return nil, err
	}
	if err := tx.EnsureAmendableBy(actor); err != nil {
		return nil, err
	}
	if !tx.IsPending() {
		return nil, shared.ErrAlreadyProcessed
	}

	patch := finance.TransactionPatch{
		Amount:          input.Amount,
		ReceiptURL:      input.ReceiptURL,
		ReceiptPublicID: input.ReceiptPublicID,
	}
	previous := tx.Receipt
	var uploaded *finance.Receipt
	if input.Upload != nil {
		receipt, err := s.storeReceipt(ctx, *input.Upload)
		if err != nil {
			return nil, err
		}
		uploaded = &receipt
		patch.ReceiptURL = &receipt.URL
		patch.ReceiptPublicID = &receipt.PublicID
	}

	if err = tx.Amend(patch); err == nil {
		if err = s.transactions.UpdatePending(ctx, tx); err != nil && !isDomainError(err) {
			err = fmt.Errorf("failed to update transaction: %w", err)
		}
	}
	if err != nil {
		if uploaded != nil {
			s.discardReceipt(ctx, uploaded.PublicID)
		}
		return nil, err
	}

	if uploaded != nil && previous.PublicID != "" && previous.PublicID != uploaded.PublicID {
		s.discardReceipt(ctx, previous.PublicID)
	}

	logger.Enrich(ctx, s.logger).Info("Transaction updated",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("actor", actor.String()),
	)
	return s.committedView(ctx, tx), nil
}

// Confirm accepts a pending transaction on behalf of a sales rep and
// distributes commissions. The status change, the ledger entries and the
// beneficiaries' summaries commit together or not at all.
func (s *TransactionService) Confirm(ctx context.Context, actor finance.Actor, id uuid.UUID) (*ConfirmResult, error) {
	var (
		confirmed   *finance.Transaction
		commissions []*finance.Commission
	)

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		tx, err := s.find(ctx, repos.Transactions(), id)
		if err != nil {
			return err
		}
		if err := tx.Confirm(actor.UserID); err != nil {
			return err
		}
		if err := repos.Transactions().TransitionStatus(ctx, tx, finance.TransactionStatusPending); err != nil {
			if isDomainError(err) {
				return err
			}
			return fmt.Errorf("failed to confirm transaction: %w", err)
		}

		commissions, err = s.engine.Distribute(ctx, repos, tx)
		if err != nil {
			return err
		}
		confirmed = tx
		return nil
	})
	if err != nil {
		log := logger.Enrich(ctx, s.logger).With(zap.String("transaction_id", id.String()))
		if shared.IsConflict(err) {
			log.Warn("Confirmation refused", zap.Error(err))
		} else if !shared.IsNotFound(err) {
			log.Error("Confirmation rolled back", zap.Error(err))
		}
		return nil, err
	}

	events := confirmed.GetDomainEvents()
	for _, c := range commissions {
		events = append(events, c.GetDomainEvents()...)
		c.ClearDomainEvents()
	}
	confirmed.ClearDomainEvents()
	s.publish(ctx, events...)

	logger.Enrich(ctx, s.logger).Info("Transaction confirmed",
		zap.String("transaction_id", confirmed.ID.String()),
		zap.String("confirmed_by", actor.UserID.String()),
		zap.String("amount", confirmed.Amount.StringFixed(2)),
		zap.Int("commissions", len(commissions)),
	)

	view := s.committedView(ctx, confirmed)
	return &ConfirmResult{Transaction: *view, Commissions: commissions}, nil
}

// Reject refuses a pending transaction. No commissions are created.
func (s *TransactionService) Reject(ctx context.Context, actor finance.Actor, id uuid.UUID) (*TransactionView, error) {
	tx, err := s.find(ctx, s.transactions, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Reject(); err != nil {
		return nil, err
	}
	if err := s.transactions.TransitionStatus(ctx, tx, finance.TransactionStatusPending); err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to reject transaction: %w", err)
	}

	s.publish(ctx, tx.GetDomainEvents()...)
	tx.ClearDomainEvents()

	logger.Enrich(ctx, s.logger).Info("Transaction rejected",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("actor", actor.String()),
	)
	return s.committedView(ctx, tx), nil
}

// Delete hard-deletes a transaction in any status and removes its receipt
func (s *TransactionService) Delete(ctx context.Context, actor finance.Actor, id uuid.UUID) error {
	tx, err := s.find(ctx, s.transactions, id)
	if err != nil {
		return err
	}
	if err := s.transactions.Delete(ctx, id); err != nil {
		if shared.IsNotFound(err) {
			return shared.NewNotFoundError("Transaction")
		}
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if tx.Receipt.PublicID != "" {
		s.discardReceipt(ctx, tx.Receipt.PublicID)
	}

	logger.Enrich(ctx, s.logger).Info("Transaction deleted",
		zap.String("transaction_id", id.String()),
		zap.String("status", tx.Status.String()),
		zap.String("actor", actor.String()),
	)
	return nil
}

// GetByID returns one transaction; students may only read their own
func (s *TransactionService) GetByID(ctx context.Context, actor finance.Actor, id uuid.UUID) (*TransactionView, error) {
	tx, err := s.find(ctx, s.transactions, id)
	if err != nil {
		return nil, err
	}
	if err := tx.EnsureReadableBy(actor); err != nil {
		return nil, err
	}
	return s.view(ctx, tx)
}

// List returns transactions matching the input, newest first
func (s *TransactionService) List(ctx context.Context, input ListTransactionsInput) ([]TransactionView, error) {
	filter := finance.TransactionFilter{StudentID: input.StudentID}
	if input.Status != "" {
		status, err := finance.ParseTransactionStatus(input.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = &status
	}

	txs, err := s.transactions.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return s.views(ctx, txs)
}

// ListMine returns the caller's own transactions
func (s *TransactionService) ListMine(ctx context.Context, actor finance.Actor) ([]TransactionView, error) {
	id := actor.UserID
	return s.List(ctx, ListTransactionsInput{StudentID: &id})
}

// ListByStatus returns every transaction in the given status
func (s *TransactionService) ListByStatus(ctx context.Context, status string) ([]TransactionView, error) {
	if status == "" {
		return nil, shared.NewValidationError("Invalid status")
	}
	return s.List(ctx, ListTransactionsInput{Status: status})
}

// resolveStudent picks the student a new transaction belongs to
func resolveStudent(actor finance.Actor, requested *uuid.UUID) (uuid.UUID, error) {
	if actor.Role == identity.RoleStudent {
		if requested != nil && *requested != actor.UserID {
			return uuid.Nil, shared.NewForbiddenError("Students can only create their own transactions")
		}
		return actor.UserID, nil
	}
	if requested == nil || *requested == uuid.Nil {
		return uuid.Nil, shared.NewValidationError("studentId is required")
	}
	return *requested, nil
}

func (s *TransactionService) find(ctx context.Context, repo finance.TransactionRepository, id uuid.UUID) (*finance.Transaction, error) {
	tx, err := repo.FindByID(ctx, id)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NewNotFoundError("Transaction")
		}
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}
	return tx, nil
}

func (s *TransactionService) storeReceipt(ctx context.Context, upload ReceiptUpload) (finance.Receipt, error) {
	if s.blobs == nil {
		return finance.Receipt{}, shared.NewValidationError("Receipt uploads are not enabled")
	}
	receipt, err := s.blobs.Store(ctx, upload)
	if err != nil {
		if isDomainError(err) {
			return finance.Receipt{}, err
		}
		return finance.Receipt{}, fmt.Errorf("failed to store receipt: %w", err)
	}
	return receipt, nil
}

// discardReceipt removes a blob whose owning row is gone or was never saved.
// Failures leave an orphaned file and are only logged.
func (s *TransactionService) discardReceipt(ctx context.Context, identifier string) {
	if s.blobs == nil || identifier == "" {
		return
	}
	found, err := s.blobs.Delete(ctx, identifier)
	log := logger.Enrich(ctx, s.logger).With(zap.String("receipt_id", identifier))
	switch {
	case err != nil:
		log.Warn("Failed to delete receipt", zap.Error(err))
	case !found:
		log.Debug("Receipt already absent")
	}
}

func (s *TransactionService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		logger.Enrich(ctx, s.logger).Error("Failed to publish events", zap.Error(err))
	}
}

// committedView enriches a transaction whose change is already committed.
// A failed user lookup must not turn that success into an error, so the
// transaction is returned without summaries instead.
func (s *TransactionService) committedView(ctx context.Context, tx *finance.Transaction) *TransactionView {
	view, err := s.view(ctx, tx)
	if err != nil {
		logger.Enrich(ctx, s.logger).Warn("Returning transaction without user summaries",
			zap.String("transaction_id", tx.ID.String()),
			zap.Error(err),
		)
		return &TransactionView{Transaction: tx}
	}
	return view
}

func (s *TransactionService) view(ctx context.Context, tx *finance.Transaction) (*TransactionView, error) {
	views, err := s.views(ctx, []*finance.Transaction{tx})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// views resolves student and confirmer summaries with one user lookup
func (s *TransactionService) views(ctx context.Context, txs []*finance.Transaction) ([]TransactionView, error) {
	ids := make([]uuid.UUID, 0, len(txs)*2)
	seen := make(map[uuid.UUID]bool)
	add := func(id uuid.UUID) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, tx := range txs {
		add(tx.StudentID)
		if tx.ConfirmedBy != nil {
			add(*tx.ConfirmedBy)
		}
	}

	byID := make(map[uuid.UUID]*identity.User, len(ids))
	if len(ids) > 0 {
		users, err := s.users.FindByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to load transaction users: %w", err)
		}
		for _, u := range users {
			byID[u.ID] = u
		}
	}

	views := make([]TransactionView, 0, len(txs))
	for _, tx := range txs {
		v := TransactionView{Transaction: tx, Student: summarize(byID[tx.StudentID])}
		if tx.ConfirmedBy != nil {
			v.ConfirmedBy = summarize(byID[*tx.ConfirmedBy])
		}
		views = append(views, v)
	}
	return views, nil
}

func isDomainError(err error) bool {
	var de *shared.DomainError
	return errors.As(err, &de)
}
