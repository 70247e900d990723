package identity

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/jneralrex/stratos-backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Role is the single platform role a user holds
type Role string

const (
	RoleStudent    Role = "student"
	RoleAffiliate  Role = "affiliate"
	RoleSalesRep   Role = "salesRep"
	RoleSuperAdmin Role = "superAdmin"
)

// IsValid checks if the role is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleAffiliate, RoleSalesRep, RoleSuperAdmin:
		return true
	}
	return false
}

// String returns the string representation of Role
func (r Role) String() string {
	return string(r)
}

// IsSelfAssignable reports whether the role may be chosen at public sign-up
func (r Role) IsSelfAssignable() bool {
	return r == RoleStudent || r == RoleAffiliate || r == RoleSuperAdmin
}

// IsAdminAssignable reports whether an admin may create a user with this role
func (r Role) IsAdminAssignable() bool {
	return r == RoleSalesRep || r == RoleSuperAdmin
}

const (
	bcryptCost       = 12
	referralCodeSize = 4
)

// CommissionsSummary is a cached projection of the commission ledger for one
// beneficiary. It is rebuilt from ledger rows and never edited directly.
type CommissionsSummary struct {
	TotalEarned decimal.Decimal `json:"totalEarned"` // approved + paid
	Pending     decimal.Decimal `json:"pending"`
	PaidOut     decimal.Decimal `json:"paidOut"`
}

// ZeroCommissionsSummary returns an all-zero summary
func ZeroCommissionsSummary() CommissionsSummary {
	return CommissionsSummary{
		TotalEarned: decimal.Zero,
		Pending:     decimal.Zero,
		PaidOut:     decimal.Zero,
	}
}

// Equal compares two summaries numerically
func (s CommissionsSummary) Equal(other CommissionsSummary) bool {
	return s.TotalEarned.Equal(other.TotalEarned) &&
		s.Pending.Equal(other.Pending) &&
		s.PaidOut.Equal(other.PaidOut)
}

// ReferralCodeGenerator produces a new affiliate referral code
type ReferralCodeGenerator func() (string, error)

// RandomReferralCode returns 4 random bytes hex-encoded (8 characters)
func RandomReferralCode() (string, error) {
	b := make([]byte, referralCodeSize)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate referral code: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// User is the aggregate root for accounts, roles and the referral link
type User struct {
	shared.BaseAggregateRoot
	FullName           string
	PhoneNumber        string
	CountryOfResidence string
	Username           string
	Email              string
	PasswordHash       string
	Course             string
	Role               Role
	IsVerified         bool
	IsBlocked          bool
	ReferralCode       string     // only set while Role == RoleAffiliate
	ReferredBy         *uuid.UUID // set once at creation
	OTPHash            string
	OTPExpiresAt       *time.Time
	Commissions        CommissionsSummary
}

// NewUserParams carries the fields needed to register a user
type NewUserParams struct {
	FullName           string
	PhoneNumber        string
	CountryOfResidence string
	Username           string
	Email              string
	Password           string
	Course             string
	Role               Role
	ReferredBy         *uuid.UUID
}

// NewUser validates input, hashes the password and assigns a referral code
// when the user is an affiliate.
func NewUser(p NewUserParams, genCode ReferralCodeGenerator) (*User, error) {
	if !p.Role.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("Invalid role: %s", p.Role))
	}
	if err := validateEmail(p.Email); err != nil {
		return nil, err
	}
	if err := validateUsername(p.Username); err != nil {
		return nil, err
	}
	if strings.TrimSpace(p.FullName) == "" {
		return nil, shared.NewValidationError("Full name is required")
	}
	if p.Role == RoleStudent && strings.TrimSpace(p.Course) == "" {
		return nil, shared.NewValidationError("Students must select a course")
	}
	if err := ValidatePassword(p.Password); err != nil {
		return nil, err
	}

	hash, err := hashSecret(p.Password, bcryptCost)
	if err != nil {
		return nil, err
	}

	u := &User{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		FullName:           normalizeFullName(p.FullName),
		PhoneNumber:        strings.TrimSpace(p.PhoneNumber),
		CountryOfResidence: strings.TrimSpace(p.CountryOfResidence),
		Username:           strings.TrimSpace(p.Username),
		Email:              strings.ToLower(strings.TrimSpace(p.Email)),
		PasswordHash:       hash,
		Role:               p.Role,
		Commissions:        ZeroCommissionsSummary(),
	}
	if p.Role == RoleStudent {
		u.Course = strings.TrimSpace(p.Course)
	}
	if p.ReferredBy != nil {
		if *p.ReferredBy == uuid.Nil {
			return nil, shared.NewValidationError("Referrer ID cannot be empty")
		}
		ref := *p.ReferredBy
		u.ReferredBy = &ref
	}
	if err := u.syncReferralCode(genCode); err != nil {
		return nil, err
	}

	u.AddDomainEvent(NewUserCreatedEvent(u))
	return u, nil
}

// ChangeRole moves the user to a new role, keeping the referral-code
// invariant: affiliates always have a code, everyone else has none.
func (u *User) ChangeRole(role Role, genCode ReferralCodeGenerator) error {
	if !role.IsValid() {
		return shared.NewValidationError(fmt.Sprintf("Invalid role: %s", role))
	}
	if role == u.Role {
		return nil
	}
	old := u.Role
	u.Role = role
	if role != RoleStudent {
		u.Course = ""
	}
	if err := u.syncReferralCode(genCode); err != nil {
		u.Role = old
		return err
	}
	u.Touch()
	u.IncrementVersion()
	u.AddDomainEvent(NewUserRoleChangedEvent(u, old))
	return nil
}

func (u *User) syncReferralCode(genCode ReferralCodeGenerator) error {
	if u.Role != RoleAffiliate {
		u.ReferralCode = ""
		return nil
	}
	if u.ReferralCode != "" {
		return nil
	}
	if genCode == nil {
		genCode = RandomReferralCode
	}
	code, err := genCode()
	if err != nil {
		return err
	}
	u.ReferralCode = code
	return nil
}

// ReferralLink returns the public sign-up link for an affiliate, or "" for
// any other role.
func (u *User) ReferralLink(frontendURL string) string {
	if u.Role != RoleAffiliate || u.ReferralCode == "" {
		return ""
	}
	return fmt.Sprintf("%s/stratuslab/courses/register?ref=%s", strings.TrimRight(frontendURL, "/"), u.ReferralCode)
}

// IsAffiliate returns true if the user currently holds the affiliate role
func (u *User) IsAffiliate() bool {
	return u.Role == RoleAffiliate
}

// MarkVerified activates the account without an OTP (admin-created users)
func (u *User) MarkVerified() {
	u.IsVerified = true
	u.OTPHash = ""
	u.OTPExpiresAt = nil
	u.Touch()
}

// VerifyPassword reports whether password matches the stored hash
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// CanSignIn returns a domain error describing why the user cannot sign in
func (u *User) CanSignIn() error {
	if u.IsBlocked {
		return shared.NewForbiddenError("Account is blocked")
	}
	if !u.IsVerified {
		return shared.NewForbiddenError("Account not verified")
	}
	return nil
}

// ErrOTPExpired is returned by VerifyOTP when the stored code has expired.
// Callers are expected to issue and send a fresh code.
var ErrOTPExpired = shared.NewValidationError("OTP expired. A new OTP has been sent.")

// IssueOTP generates a numeric one-time code, stores its hash and expiry and
// returns the plain code for delivery.
func (u *User) IssueOTP(now time.Time, ttl time.Duration, cost int) (string, error) {
	otp, err := randomOTP()
	if err != nil {
		return "", err
	}
	hash, err := hashSecret(otp, cost)
	if err != nil {
		return "", err
	}
	expires := now.Add(ttl)
	u.OTPHash = hash
	u.OTPExpiresAt = &expires
	u.Touch()
	return otp, nil
}

// VerifyOTP checks otp against the stored hash and verifies the account
func (u *User) VerifyOTP(otp string, now time.Time) error {
	if u.IsVerified {
		return shared.NewValidationError("User is already verified")
	}
	if otp == "" || u.OTPHash == "" || u.OTPExpiresAt == nil {
		return shared.NewValidationError("OTP expired or invalid")
	}
	if now.After(*u.OTPExpiresAt) {
		return ErrOTPExpired
	}
	if bcrypt.CompareHashAndPassword([]byte(u.OTPHash), []byte(otp)) != nil {
		return shared.NewValidationError("Invalid OTP")
	}

	u.MarkVerified()
	u.IncrementVersion()
	u.AddDomainEvent(NewUserVerifiedEvent(u))
	return nil
}

// ApplyCommissionsSummary replaces the cached summary with one rebuilt from
// the ledger
func (u *User) ApplyCommissionsSummary(s CommissionsSummary) {
	u.Commissions = s
	u.Touch()
}

// PublicProfile is the safe projection exposed to other users
type PublicProfile struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// Public returns the safe projection of the user
func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:        u.ID,
		FullName:  u.FullName,
		Email:     u.Email,
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
	}
}

// Validation functions

var (
	emailRegex    = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)
)

const passwordSpecials = `!@#$%^&*(),.?":{}|<>`

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" || !emailRegex.MatchString(email) {
		return shared.NewValidationError("Invalid email format")
	}
	if len(email) > 200 {
		return shared.NewValidationError("Email cannot exceed 200 characters")
	}
	return nil
}

func validateUsername(username string) error {
	username = strings.TrimSpace(username)
	if len(username) < 3 {
		return shared.NewValidationError("Username must be at least 3 characters")
	}
	if len(username) > 100 {
		return shared.NewValidationError("Username cannot exceed 100 characters")
	}
	if !usernameRegex.MatchString(username) {
		return shared.NewValidationError("Username can only contain letters, numbers, underscores, hyphens, and dots")
	}
	return nil
}

// ValidatePassword enforces at least 8 characters with one uppercase letter,
// one lowercase letter, one digit, one special character and no whitespace.
func ValidatePassword(password string) error {
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsSpace(r):
			return passwordPolicyError()
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	if len(password) < 8 || !upper || !lower || !digit || !special {
		return passwordPolicyError()
	}
	return nil
}

func passwordPolicyError() error {
	return shared.NewValidationError("Password must be at least 8 characters long, contain at least one uppercase letter, " +
		"one lowercase letter, one number, one special character (e.g., " + passwordSpecials + "), and must not contain spaces.")
}

func normalizeFullName(name string) string {
	return cases.Title(language.Und).String(strings.Join(strings.Fields(name), " "))
}

func hashSecret(secret string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", shared.NewDomainError(shared.CodeInternal, "Failed to hash secret")
	}
	return string(hash), nil
}

// randomOTP returns a uniformly random code in [100000, 999999]
func randomOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}
