package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jneralrex/stratos-backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "test-issuer",
		MaxRefreshCount:        10,
	}
}

func newTestInput() GenerateTokenInput {
	return GenerateTokenInput{
		UserID:   uuid.New(),
		Username: "ada",
		Role:     "affiliate",
	}
}

// sharedSecretService signs access and refresh tokens with one key so token
// type checks are exercised instead of signature checks
func sharedSecretService() *JWTService {
	cfg := newTestJWTConfig()
	cfg.RefreshSecret = cfg.Secret
	return NewJWTService(cfg)
}

func TestNewJWTService(t *testing.T) {
	cfg := newTestJWTConfig()
	svc := NewJWTService(cfg)

	assert.Equal(t, []byte(cfg.Secret), svc.accessSecret)
	assert.Equal(t, []byte(cfg.RefreshSecret), svc.refreshSecret)
	assert.Equal(t, cfg.AccessTokenExpiration, svc.GetAccessTokenExpiration())
	assert.Equal(t, cfg.RefreshTokenExpiration, svc.GetRefreshTokenExpiration())

	cfg.RefreshSecret = ""
	svc = NewJWTService(cfg)
	assert.Equal(t, []byte(cfg.Secret), svc.refreshSecret)
}

func TestGenerateTokenPair(t *testing.T) {
	svc := NewJWTService(newTestJWTConfig())
	input := newTestInput()

	pair, err := svc.GenerateTokenPair(input)
	require.NoError(t, err)

	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.True(t, pair.RefreshTokenExpiresAt.After(pair.AccessTokenExpiresAt))

	access, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	refresh, err := svc.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, access.ID, refresh.ID, "each token has its own jti")
}

func TestValidateAccessToken(t *testing.T) {
	t.Run("returns identity and role", func(t *testing.T) {
		svc := NewJWTService(newTestJWTConfig())
		input := newTestInput()
		pair, err := svc.GenerateTokenPair(input)
		require.NoError(t, err)

		claims, err := svc.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)

		assert.Equal(t, input.UserID.String(), claims.UserID)
		assert.Equal(t, "ada", claims.Username)
		assert.Equal(t, "affiliate", claims.Role)
		assert.Equal(t, TokenTypeAccess, claims.TokenType)

		id, err := claims.GetUserUUID()
		require.NoError(t, err)
		assert.Equal(t, input.UserID, id)
		assert.Greater(t, claims.GetRemainingTTL(), 14*time.Minute)
	})

	t.Run("expired", func(t *testing.T) {
		cfg := newTestJWTConfig()
		cfg.AccessTokenExpiration = -time.Hour
		svc := NewJWTService(cfg)
		pair, err := svc.GenerateTokenPair(newTestInput())
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("garbage", func(t *testing.T) {
		svc := NewJWTService(newTestJWTConfig())
		_, err := svc.ValidateAccessToken("invalid-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("different secret", func(t *testing.T) {
		pair, err := NewJWTService(newTestJWTConfig()).GenerateTokenPair(newTestInput())
		require.NoError(t, err)

		other := newTestJWTConfig()
		other.Secret = "another-secret-key-at-least-32-chars"
		_, err = NewJWTService(other).ValidateAccessToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("refresh token presented as access token", func(t *testing.T) {
		svc := sharedSecretService()
		pair, err := svc.GenerateTokenPair(newTestInput())
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(pair.RefreshToken)
		assert.ErrorIs(t, err, ErrInvalidTokenType)
	})

	t.Run("missing role", func(t *testing.T) {
		svc := NewJWTService(newTestJWTConfig())
		input := newTestInput()
		input.Role = ""
		pair, err := svc.GenerateTokenPair(input)
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrMissingRole)
	})
}

func TestValidateRefreshToken(t *testing.T) {
	svc := sharedSecretService()
	input := newTestInput()
	pair, err := svc.GenerateTokenPair(input)
	require.NoError(t, err)

	claims, err := svc.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, input.UserID.String(), claims.UserID)
	assert.Equal(t, TokenTypeRefresh, claims.TokenType)
	assert.Equal(t, 0, claims.RefreshCount)

	_, err = svc.ValidateRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidTokenType)
}

func TestRefreshTokenPair(t *testing.T) {
	t.Run("rotates tokens with the current role", func(t *testing.T) {
		svc := NewJWTService(newTestJWTConfig())
		pair, err := svc.GenerateTokenPair(newTestInput())
		require.NoError(t, err)

		next, err := svc.RefreshTokenPair(pair.RefreshToken, "ada", "student")
		require.NoError(t, err)
		assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

		access, err := svc.ValidateAccessToken(next.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "student", access.Role)

		refresh, err := svc.ValidateRefreshToken(next.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, 1, refresh.RefreshCount)
	})

	t.Run("enforces max refresh count", func(t *testing.T) {
		cfg := newTestJWTConfig()
		cfg.MaxRefreshCount = 2
		svc := NewJWTService(cfg)
		pair, err := svc.GenerateTokenPair(newTestInput())
		require.NoError(t, err)

		pair, err = svc.RefreshTokenPair(pair.RefreshToken, "ada", "affiliate")
		require.NoError(t, err)
		pair, err = svc.RefreshTokenPair(pair.RefreshToken, "ada", "affiliate")
		require.NoError(t, err)

		_, err = svc.RefreshTokenPair(pair.RefreshToken, "ada", "affiliate")
		assert.ErrorIs(t, err, ErrMaxRefreshExceeded)
	})

	t.Run("rejects access token", func(t *testing.T) {
		svc := sharedSecretService()
		pair, err := svc.GenerateTokenPair(newTestInput())
		require.NoError(t, err)

		_, err = svc.RefreshTokenPair(pair.AccessToken, "ada", "affiliate")
		assert.ErrorIs(t, err, ErrInvalidTokenType)
	})
}
