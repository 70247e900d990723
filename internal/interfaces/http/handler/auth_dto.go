package handler

import (
	"time"

	"github.com/google/uuid"
	identityapp "github.com/jneralrex/stratos-backend/internal/application/identity"
)

// =====================
// Auth Request DTOs
// =====================

// SignUpRequest represents the public registration form
type SignUpRequest struct {
	FullName           string `json:"fullName" binding:"required,max=200"`
	PhoneNumber        string `json:"phoneNumber" binding:"required,max=32"`
	CountryOfResidence string `json:"countryOfResidence" binding:"required,max=100"`
	Username           string `json:"username" binding:"required,min=3,max=50"`
	Email              string `json:"email" binding:"required,email,max=254"`
	Password           string `json:"password" binding:"required,min=8,max=128"`
	Course             string `json:"course" binding:"max=200"`
	Role               string `json:"role" binding:"omitempty,max=32"`
	ReferralCode       string `json:"referralCode" binding:"omitempty,max=64"`
}

// CreateUserRequest represents a staff account created by an admin
type CreateUserRequest struct {
	FullName           string `json:"fullName" binding:"required,max=200"`
	PhoneNumber        string `json:"phoneNumber" binding:"required,max=32"`
	CountryOfResidence string `json:"countryOfResidence" binding:"required,max=100"`
	Username           string `json:"username" binding:"required,min=3,max=50"`
	Email              string `json:"email" binding:"required,email,max=254"`
	Password           string `json:"password" binding:"required,min=8,max=128"`
	Role               string `json:"role" binding:"required,role"`
}

// VerifyOTPRequest represents an OTP submission
type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=6,numeric"`
}

// ResendOTPRequest asks for a fresh OTP
type ResendOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// SignInRequest represents login credentials
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest represents the request body for token refresh
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// LogoutRequest optionally names the refresh token to revoke too
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// =====================
// Auth Response DTOs
// =====================

// SignUpResponse is returned after registration
type SignUpResponse struct {
	UserID       uuid.UUID `json:"userId"`
	Email        string    `json:"email"`
	ReferralCode string    `json:"referralCode,omitempty"`
	RefLink      string    `json:"refLink,omitempty"`
}

// CreatedUserResponse identifies an admin-created account
type CreatedUserResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

// TokenResponse represents the token data in auth responses
type TokenResponse struct {
	AccessToken           string    `json:"accessToken"`
	RefreshToken          string    `json:"refreshToken"`
	AccessTokenExpiresAt  time.Time `json:"accessTokenExpiresAt"`
	RefreshTokenExpiresAt time.Time `json:"refreshTokenExpiresAt"`
	TokenType             string    `json:"tokenType"`
}

// AuthUserResponse represents the signed-in user
type AuthUserResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	RefLink  string    `json:"refLink,omitempty"`
}

// SessionResponse is returned by sign-in and refresh. User is only set on
// sign-in.
type SessionResponse struct {
	Token TokenResponse     `json:"token"`
	User  *AuthUserResponse `json:"user,omitempty"`
}

func toSessionResponse(r *identityapp.SessionResult) SessionResponse {
	resp := SessionResponse{
		Token: TokenResponse{
			AccessToken:           r.AccessToken,
			RefreshToken:          r.RefreshToken,
			AccessTokenExpiresAt:  r.AccessTokenExpiresAt,
			RefreshTokenExpiresAt: r.RefreshTokenExpiresAt,
			TokenType:             r.TokenType,
		},
	}
	if r.User != nil {
		resp.User = &AuthUserResponse{
			ID:       r.User.ID,
			Username: r.User.Username,
			Email:    r.User.Email,
			Role:     r.User.Role.String(),
			RefLink:  r.User.RefLink,
		}
	}
	return resp
}
