package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence.
// Find methods return shared.ErrNotFound when no row matches.
type UserRepository interface {
	// Create inserts a new user
	Create(ctx context.Context, user *User) error

	// Update saves profile, role and verification state
	Update(ctx context.Context, user *User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByIDs loads the users with the given IDs; missing IDs are skipped
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*User, error)

	// FindByEmail finds a user by email (case-insensitive)
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByReferralCode finds the affiliate owning a referral code
	FindByReferralCode(ctx context.Context, code string) (*User, error)

	// FindByReferrer returns every user whose referredBy is referrerID
	FindByReferrer(ctx context.Context, referrerID uuid.UUID) ([]*User, error)

	// ExistsByEmail checks if an email is already registered
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// ExistsByUsername checks if a username is already taken
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// LockForUpdate row-locks the given users, in ID order, until the
	// enclosing database transaction ends. Callers rebuilding a cached
	// summary take the lock before reading the ledger so concurrent
	// rebuilds for the same user serialize.
	LockForUpdate(ctx context.Context, ids ...uuid.UUID) error

	// UpdateCommissionsSummary overwrites only the cached commission totals
	UpdateCommissionsSummary(ctx context.Context, id uuid.UUID, summary CommissionsSummary) error
}
