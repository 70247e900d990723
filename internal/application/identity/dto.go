package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/jneralrex/stratos-backend/internal/domain/identity"
)

// SignUpInput contains the public registration form
type SignUpInput struct {
	FullName           string
	PhoneNumber        string
	CountryOfResidence string
	Username           string
	Email              string
	Password           string
	Course             string
	Role               string
	ReferralCode       string
}

// SignUpResult is returned after registration. Referral fields are only set
// for affiliates.
type SignUpResult struct {
	UserID       uuid.UUID
	Email        string
	ReferralCode string
	RefLink      string
}

// CreateUserInput contains the fields an admin supplies for a staff account
type CreateUserInput struct {
	FullName           string
	PhoneNumber        string
	CountryOfResidence string
	Username           string
	Email              string
	Password           string
	Role               string
}

// CreatedUser identifies an account created by an admin
type CreatedUser struct {
	ID    uuid.UUID
	Email string
	Role  identity.Role
}

// SignInInput contains login credentials
type SignInInput struct {
	Email    string
	Password string
}

// UserInfo represents the user returned on sign-in
type UserInfo struct {
	ID       uuid.UUID
	Username string
	Email    string
	Role     identity.Role
	RefLink  string
}

// SessionResult contains a token pair and, on sign-in, the user
type SessionResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
	User                  *UserInfo
}

// LogoutInput identifies the tokens to revoke. RefreshToken may be empty.
type LogoutInput struct {
	UserID         uuid.UUID
	AccessTokenJTI string
	AccessTokenTTL time.Duration
	RefreshToken   string
}
