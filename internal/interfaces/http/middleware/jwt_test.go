package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jneralrex/stratos-backend/internal/domain/identity"
	"github.com/jneralrex/stratos-backend/internal/infrastructure/auth"
	"github.com/jneralrex/stratos-backend/internal/infrastructure/config"
	"github.com/jneralrex/stratos-backend/internal/infrastructure/logger"
	"github.com/jneralrex/stratos-backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWTService(accessTTL time.Duration) *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  accessTTL,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "test-issuer",
		MaxRefreshCount:        10,
	})
}

func issueToken(t *testing.T, svc *auth.JWTService, role identity.Role) (*auth.TokenPair, uuid.UUID) {
	t.Helper()
	userID := uuid.New()
	pair, err := svc.GenerateTokenPair(auth.GenerateTokenInput{UserID: userID, Username: "ada", Role: string(role)})
	require.NoError(t, err)
	return pair, userID
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) *dto.ErrorInfo {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	return resp.Error
}

type stubBlacklist struct {
	revoked map[string]bool
	err     error
}

func (s *stubBlacklist) AddToBlacklist(_ context.Context, jti string, _ time.Duration) error {
	s.revoked[jti] = true
	return nil
}

func (s *stubBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	return s.revoked[jti], s.err
}

func protectedRouter(cfg JWTMiddlewareConfig, handler gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), JWTAuth(cfg))
	r.GET("/me", handler)
	return r
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ==================== JWTAuth ====================

func TestJWTAuth_ValidToken(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)
	pair, userID := issueToken(t, svc, identity.RoleAffiliate)

	r := protectedRouter(JWTMiddlewareConfig{JWTService: svc}, func(c *gin.Context) {
		claims := GetJWTClaims(c)
		require.NotNil(t, claims)
		assert.Equal(t, userID.String(), GetJWTUserID(c))
		assert.Equal(t, identity.RoleAffiliate, GetJWTRole(c))
		assert.Equal(t, userID.String(), logger.GetUserID(c.Request.Context()))
		assert.Equal(t, "affiliate", logger.GetRole(c.Request.Context()))
		c.Status(http.StatusOK)
	})

	w := get(r, "/me", pair.AccessToken)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWTAuth_Rejections(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)
	pair, _ := issueToken(t, svc, identity.RoleStudent)
	expired, _ := issueToken(t, newTestJWTService(-time.Minute), identity.RoleStudent)

	tests := []struct {
		name  string
		token string
		code  string
	}{
		{"missing header", "", dto.ErrCodeUnauthorized},
		{"garbage", "not-a-jwt", dto.ErrCodeTokenInvalid},
		{"refresh token as access", pair.RefreshToken, dto.ErrCodeTokenInvalid},
		{"expired", expired.AccessToken, dto.ErrCodeTokenExpired},
	}

	r := protectedRouter(JWTMiddlewareConfig{JWTService: svc}, func(c *gin.Context) {
		t.Fatal("handler must not run")
	})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, "/me", tt.token)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			info := decodeError(t, w)
			assert.Equal(t, tt.code, info.Code)
			assert.NotEmpty(t, info.RequestID)
		})
	}
}

func TestJWTAuth_RevokedToken(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)
	pair, _ := issueToken(t, svc, identity.RoleStudent)
	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)

	blacklist := &stubBlacklist{revoked: map[string]bool{claims.ID: true}}
	r := protectedRouter(JWTMiddlewareConfig{JWTService: svc, TokenBlacklist: blacklist}, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := get(r, "/me", pair.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeTokenRevoked, decodeError(t, w).Code)
}

func TestJWTAuth_BlacklistOutageFailsOpen(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)
	pair, _ := issueToken(t, svc, identity.RoleStudent)

	blacklist := &stubBlacklist{revoked: map[string]bool{}, err: assert.AnError}
	r := protectedRouter(JWTMiddlewareConfig{JWTService: svc, TokenBlacklist: blacklist}, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, get(r, "/me", pair.AccessToken).Code)
}

// ==================== RequireRoles ====================

func TestRequireRoles(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)

	r := gin.New()
	r.Use(JWTAuth(JWTMiddlewareConfig{JWTService: svc}))
	r.GET("/admin", RequireRoles(identity.RoleSuperAdmin, identity.RoleSalesRep), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	admin, _ := issueToken(t, svc, identity.RoleSuperAdmin)
	rep, _ := issueToken(t, svc, identity.RoleSalesRep)
	student, _ := issueToken(t, svc, identity.RoleStudent)

	assert.Equal(t, http.StatusOK, get(r, "/admin", admin.AccessToken).Code)
	assert.Equal(t, http.StatusOK, get(r, "/admin", rep.AccessToken).Code)

	w := get(r, "/admin", student.AccessToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, dto.ErrCodeForbidden, decodeError(t, w).Code)
}

func TestRequireRoles_WithoutAuthentication(t *testing.T) {
	r := gin.New()
	r.GET("/admin", RequireRoles(identity.RoleSuperAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := get(r, "/admin", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
