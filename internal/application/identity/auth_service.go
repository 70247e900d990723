package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jneralrex/stratos-backend/internal/domain/identity"
	"github.com/jneralrex/stratos-backend/internal/domain/shared"
	"github.com/jneralrex/stratos-backend/internal/infrastructure/auth"
	"github.com/jneralrex/stratos-backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// AuthServiceConfig contains configuration for the auth service
type AuthServiceConfig struct {
	OTPTTL         time.Duration // How long an emailed code stays valid
	ResendCooldown time.Duration // Minimum gap between two resend requests
	OTPBcryptCost  int
	FrontendURL    string // Base of affiliate referral links
}

// DefaultAuthServiceConfig returns default configuration
func DefaultAuthServiceConfig() AuthServiceConfig {
	return AuthServiceConfig{
		OTPTTL:         10 * time.Minute,
		ResendCooldown: time.Minute,
		OTPBcryptCost:  10,
		FrontendURL:    "http://localhost:3000",
	}
}

// AuthService handles registration, verification and sessions
type AuthService struct {
	users      identity.UserRepository
	jwtService *auth.JWTService
	revoked    auth.TokenBlacklist
	cooldown   auth.Cooldown
	notifier   Notifier
	events     shared.EventPublisher
	config     AuthServiceConfig
	logger     *zap.Logger

	genCode identity.ReferralCodeGenerator
	now     func() time.Time
}

// NewAuthService creates a new authentication service. cooldown and events
// may be nil.
func NewAuthService(
	users identity.UserRepository,
	jwtService *auth.JWTService,
	revoked auth.TokenBlacklist,
	cooldown auth.Cooldown,
	notifier Notifier,
	events shared.EventPublisher,
	config AuthServiceConfig,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		users:      users,
		jwtService: jwtService,
		revoked:    revoked,
		cooldown:   cooldown,
		notifier:   notifier,
		events:     events,
		config:     config,
		logger:     logger,
		genCode:    identity.RandomReferralCode,
		now:        time.Now,
	}
}

// SignUp registers a user from the public form and emails a verification code
func (s *AuthService) SignUp(ctx context.Context, input SignUpInput) (*SignUpResult, error) {
	log := logger.Enrich(ctx, s.logger)

	role := identity.Role(strings.TrimSpace(input.Role))
	if !role.IsSelfAssignable() {
		role = identity.RoleStudent
	}

	if err := s.ensureAvailable(ctx, input.Email, input.Username); err != nil {
		return nil, err
	}

	params := identity.NewUserParams{
		FullName:           input.FullName,
		PhoneNumber:        input.PhoneNumber,
		CountryOfResidence: input.CountryOfResidence,
		Username:           input.Username,
		Email:              input.Email,
		Password:           input.Password,
		Course:             input.Course,
		Role:               role,
	}

	if code := strings.TrimSpace(input.ReferralCode); code != "" {
		referrer, err := s.users.FindByReferralCode(ctx, code)
		if err != nil {
			if shared.IsNotFound(err) {
				return nil, shared.NewValidationError("Invalid referral code")
			}
			return nil, fmt.Errorf("failed to resolve referral code: %w", err)
		}
		params.ReferredBy = &referrer.ID
	}

	user, err := identity.NewUser(params, s.genCode)
	if err != nil {
		return nil, err
	}
	otp, err := user.IssueOTP(s.now(), s.config.OTPTTL, s.config.OTPBcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to issue otp: %w", err)
	}

	if err := s.users.Create(ctx, user); err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.publish(ctx, user)
	s.sendOTP(ctx, user.Email, otp)

	log.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("role", user.Role.String()),
		zap.Bool("referred", user.ReferredBy != nil),
	)

	result := &SignUpResult{UserID: user.ID, Email: user.Email}
	if user.IsAffiliate() {
		result.ReferralCode = user.ReferralCode
		result.RefLink = user.ReferralLink(s.config.FrontendURL)
	}
	return result, nil
}

// CreateUserByAdmin creates an already-verified staff account
func (s *AuthService) CreateUserByAdmin(ctx context.Context, input CreateUserInput) (*CreatedUser, error) {
	role := identity.Role(strings.TrimSpace(input.Role))
	if !role.IsAdminAssignable() {
		return nil, shared.NewValidationError("Invalid role for admin creation")
	}
	if err := s.ensureAvailable(ctx, input.Email, input.Username); err != nil {
		return nil, err
	}

	user, err := identity.NewUser(identity.NewUserParams{
		FullName:           input.FullName,
		PhoneNumber:        input.PhoneNumber,
		CountryOfResidence: input.CountryOfResidence,
		Username:           input.Username,
		Email:              input.Email,
		Password:           input.Password,
		Role:               role,
	}, s.genCode)
	if err != nil {
		return nil, err
	}
	user.MarkVerified()

	if err := s.users.Create(ctx, user); err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.publish(ctx, user)

	logger.Enrich(ctx, s.logger).Info("Staff account created",
		zap.String("user_id", user.ID.String()),
		zap.String("role", role.String()),
	)
	return &CreatedUser{ID: user.ID, Email: user.Email, Role: user.Role}, nil
}

// VerifyOTP activates an account. An expired code is replaced by a fresh one
// and identity.ErrOTPExpired is returned.
func (s *AuthService) VerifyOTP(ctx context.Context, email, otp string) error {
	user, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}

	err = user.VerifyOTP(strings.TrimSpace(otp), s.now())
	if errors.Is(err, identity.ErrOTPExpired) {
		if reissueErr := s.reissueOTP(ctx, user); reissueErr != nil {
			return reissueErr
		}
		return identity.ErrOTPExpired
	}
	if err != nil {
		return err
	}

	if err := s.users.Update(ctx, user); err != nil {
		if isDomainError(err) {
			return err
		}
		return fmt.Errorf("failed to verify user: %w", err)
	}
	s.publish(ctx, user)

	logger.Enrich(ctx, s.logger).Info("Account verified", zap.String("user_id", user.ID.String()))
	return nil
}

// ResendOTP emails a new code to an unverified user
func (s *AuthService) ResendOTP(ctx context.Context, email string) error {
	user, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return shared.NewValidationError("User is already verified")
	}

	if s.cooldown != nil && s.config.ResendCooldown > 0 {
		ok, err := s.cooldown.Acquire(ctx, "otp:"+user.Email, s.config.ResendCooldown)
		if err != nil {
			return fmt.Errorf("failed to check otp cooldown: %w", err)
		}
		if !ok {
			return shared.NewValidationError("Please wait before requesting another OTP")
		}
	}

	return s.reissueOTP(ctx, user)
}

// SignIn checks credentials and opens a session
func (s *AuthService) SignIn(ctx context.Context, input SignInInput) (*SessionResult, error) {
	if strings.TrimSpace(input.Email) == "" || input.Password == "" {
		return nil, shared.NewValidationError("Email and password are required")
	}

	user, err := s.findByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if err := user.CanSignIn(); err != nil {
		logger.Enrich(ctx, s.logger).Warn("Sign-in refused",
			zap.String("user_id", user.ID.String()), zap.String("reason", err.Error()))
		return nil, err
	}
	if !user.VerifyPassword(input.Password) {
		logger.Enrich(ctx, s.logger).Warn("Invalid password attempt", zap.String("user_id", user.ID.String()))
		return nil, shared.NewValidationError("Invalid credentials")
	}

	pair, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	logger.Enrich(ctx, s.logger).Info("User signed in",
		zap.String("user_id", user.ID.String()),
		zap.String("role", user.Role.String()),
	)

	result := sessionFrom(pair)
	result.User = &UserInfo{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
		RefLink:  user.ReferralLink(s.config.FrontendURL),
	}
	return result, nil
}

// Refresh rotates a refresh token. The presented token is revoked so it
// cannot be replayed.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*SessionResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		logger.Enrich(ctx, s.logger).Debug("Refresh token rejected", zap.Error(err))
		return nil, tokenError(err)
	}

	revoked, err := s.revoked.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, tokenError(auth.ErrTokenBlacklisted)
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, tokenError(auth.ErrInvalidClaims)
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NewDomainError(shared.CodeUnauthorized, "Invalid refresh token")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if err := user.CanSignIn(); err != nil {
		return nil, err
	}

	pair, err := s.jwtService.RefreshTokenPair(refreshToken, user.Username, user.Role.String())
	if err != nil {
		return nil, tokenError(err)
	}
	if err := s.revoked.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		return nil, fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	logger.Enrich(ctx, s.logger).Info("Session refreshed", zap.String("user_id", user.ID.String()))
	return sessionFrom(pair), nil
}

// Logout revokes the caller's access token and, when given, their refresh token
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if input.AccessTokenJTI != "" {
		if err := s.revoked.AddToBlacklist(ctx, input.AccessTokenJTI, input.AccessTokenTTL); err != nil {
			return fmt.Errorf("failed to revoke access token: %w", err)
		}
	}

	if input.RefreshToken != "" {
		claims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
		switch {
		case err != nil:
			logger.Enrich(ctx, s.logger).Debug("Ignoring unusable refresh token on logout", zap.Error(err))
		case claims.UserID != input.UserID.String():
			return shared.NewForbiddenError("Refresh token belongs to another user")
		default:
			if err := s.revoked.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
				return fmt.Errorf("failed to revoke refresh token: %w", err)
			}
		}
	}

	logger.Enrich(ctx, s.logger).Info("User logged out", zap.String("user_id", input.UserID.String()))
	return nil
}

func (s *AuthService) ensureAvailable(ctx context.Context, email, username string) error {
	taken, err := s.users.ExistsByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return shared.NewValidationError("User already exists")
	}

	taken, err = s.users.ExistsByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return shared.NewValidationError("username already exists")
	}
	return nil
}

func (s *AuthService) findByEmail(ctx context.Context, email string) (*identity.User, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NewNotFoundError("User")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

func (s *AuthService) reissueOTP(ctx context.Context, user *identity.User) error {
	otp, err := user.IssueOTP(s.now(), s.config.OTPTTL, s.config.OTPBcryptCost)
	if err != nil {
		return fmt.Errorf("failed to issue otp: %w", err)
	}
	if err := s.users.Update(ctx, user); err != nil {
		if isDomainError(err) {
			return err
		}
		return fmt.Errorf("failed to store otp: %w", err)
	}
	s.sendOTP(ctx, user.Email, otp)
	return nil
}

// sendOTP delivers a code after the user row is committed. A failed delivery
// leaves the account intact; the user can ask for another code.
func (s *AuthService) sendOTP(ctx context.Context, email, otp string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.SendOTP(ctx, email, otp); err != nil {
		logger.Enrich(ctx, s.logger).Error("Failed to send OTP", zap.String("email", email), zap.Error(err))
	}
}

func (s *AuthService) publish(ctx context.Context, user *identity.User) {
	events := user.GetDomainEvents()
	user.ClearDomainEvents()
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		logger.Enrich(ctx, s.logger).Error("Failed to publish events", zap.Error(err))
	}
}

func sessionFrom(pair *auth.TokenPair) *SessionResult {
	return &SessionResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
	}
}

// tokenError maps JWT failures to an UNAUTHORIZED domain error
func tokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.NewDomainError(shared.CodeUnauthorized, "Refresh token has expired")
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return shared.NewDomainError(shared.CodeUnauthorized, "Maximum token refresh count exceeded. Please sign in again")
	case errors.Is(err, auth.ErrTokenBlacklisted):
		return shared.NewDomainError(shared.CodeUnauthorized, "Refresh token has been revoked")
	default:
		return shared.NewDomainError(shared.CodeUnauthorized, "Invalid or expired refresh token")
	}
}

func isDomainError(err error) bool {
	var de *shared.DomainError
	return errors.As(err, &de)
}
