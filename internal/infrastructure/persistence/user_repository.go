package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jneralrex/stratos-backend/internal/domain/identity"
	"github.com/jneralrex/stratos-backend/internal/domain/shared"
	"github.com/jneralrex/stratos-backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUserRepository implements identity.UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user. A unique index hit on email, username or
// referral code is reported as a validation error.
func (r *GormUserRepository) Create(ctx context.Context, user *identity.User) error {
	model := models.UserModelFromDomain(user)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.NewValidationError("User already exists")
		}
		return err
	}
	return nil
}

// Update saves profile, role, verification and OTP state. The cached
// commission totals are left alone; they belong to UpdateCommissionsSummary.
func (r *GormUserRepository) Update(ctx context.Context, user *identity.User) error {
	model := models.UserModelFromDomain(user)
	result := r.db.WithContext(ctx).
		Model(&models.UserModel{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"full_name":            model.FullName,
			"phone_number":         model.PhoneNumber,
			"country_of_residence": model.CountryOfResidence,
			"username":             model.Username,
			"email":                model.Email,
			"password_hash":        model.PasswordHash,
			"course":               model.Course,
			"role":                 model.Role,
			"is_verified":          model.IsVerified,
			"is_blocked":           model.IsBlocked,
			"referral_code":        model.ReferralCode,
			"otp_hash":             model.OTPHash,
			"otp_expires_at":       model.OTPExpiresAt,
			"version":              model.Version,
			"updated_at":           time.Now(),
		})
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return shared.NewConflictError("Username, email or referral code already in use")
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs loads the users with the given IDs in one query
func (r *GormUserRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*identity.User, error) {
	if len(ids) == 0 {
		return []*identity.User{}, nil
	}
	var rows []models.UserModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return usersToDomain(rows), nil
}

// FindByEmail finds a user by email, ignoring case
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, shared.ErrNotFound
	}
	return r.findOne(ctx, "LOWER(email) = ?", email)
}

// FindByReferralCode finds the affiliate owning a referral code
func (r *GormUserRepository) FindByReferralCode(ctx context.Context, code string) (*identity.User, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.ErrNotFound
	}
	return r.findOne(ctx, "referral_code = ?", code)
}

// FindByReferrer returns every user referred by referrerID, oldest first
func (r *GormUserRepository) FindByReferrer(ctx context.Context, referrerID uuid.UUID) ([]*identity.User, error) {
	var rows []models.UserModel
	if err := r.db.WithContext(ctx).
		Where("referred_by = ?", referrerID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return usersToDomain(rows), nil
}

// ExistsByEmail checks if an email is already registered
func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email)))
}

// ExistsByUsername checks if a username is already taken
func (r *GormUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "LOWER(username) = ?", strings.ToLower(strings.TrimSpace(username)))
}

// LockForUpdate takes row locks on the users with SELECT ... FOR UPDATE.
// Sorting by id keeps the lock order identical across transactions.
func (r *GormUserRepository) LockForUpdate(ctx context.Context, ids ...uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	var locked []uuid.UUID
	return r.db.WithContext(ctx).
		Model(&models.UserModel{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id").
		Pluck("id", &locked).Error
}

// UpdateCommissionsSummary overwrites only the cached commission totals
func (r *GormUserRepository) UpdateCommissionsSummary(ctx context.Context, id uuid.UUID, summary identity.CommissionsSummary) error {
	result := r.db.WithContext(ctx).
		Model(&models.UserModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"commissions_total_earned": summary.TotalEarned,
			"commissions_pending":      summary.Pending,
			"commissions_paid_out":     summary.PaidOut,
			"updated_at":               time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormUserRepository) findOne(ctx context.Context, query string, args ...any) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).Where(query, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormUserRepository) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.UserModel{}).
		Where(query, args...).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func usersToDomain(rows []models.UserModel) []*identity.User {
	users := make([]*identity.User, len(rows))
	for i := range rows {
		users[i] = rows[i].ToDomain()
	}
	return users
}

var _ identity.UserRepository = (*GormUserRepository)(nil)
