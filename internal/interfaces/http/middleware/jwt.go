package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jneralrex/stratos-backend/internal/domain/identity"
	"github.com/jneralrex/stratos-backend/internal/infrastructure/auth"
	"github.com/jneralrex/stratos-backend/internal/infrastructure/logger"
	"github.com/jneralrex/stratos-backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey = "jwt_claims"
	JWTUserIDKey = "jwt_user_id"
	JWTRoleKey   = "jwt_role"
	BearerPrefix = "Bearer "
)

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	JWTService *auth.JWTService
	// TokenBlacklist is optional; when set, revoked JTIs are refused
	TokenBlacklist auth.TokenBlacklist
	Logger         *zap.Logger
}

// JWTAuth requires a valid, unrevoked access token and stores its claims on
// the gin context and the caller on the request context
func JWTAuth(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, BearerPrefix)
		if !ok || strings.TrimSpace(token) == "" {
			abortUnauthorized(c, log, auth.ErrInvalidToken, "Authentication required")
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(strings.TrimSpace(token))
		if err != nil {
			abortUnauthorized(c, log, err, "")
			return
		}

		if cfg.TokenBlacklist != nil && claims.ID != "" {
			revoked, err := cfg.TokenBlacklist.IsBlacklisted(c.Request.Context(), claims.ID)
			switch {
			case err != nil:
				// Fail open: a store outage must not log everyone out
				log.Error("Failed to check token blacklist", zap.String("jti", claims.ID), zap.Error(err))
			case revoked:
				abortUnauthorized(c, log, auth.ErrTokenBlacklisted, "")
				return
			}
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID)
		c.Set(JWTRoleKey, claims.Role)
		c.Request = c.Request.WithContext(logger.WithCaller(c.Request.Context(), claims.UserID, claims.Role))

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, log *zap.Logger, err error, message string) {
	code := dto.ErrCodeTokenInvalid
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, message = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenBlacklisted):
		code, message = dto.ErrCodeTokenRevoked, "Token has been revoked"
	case message == "":
		message = "Invalid token"
	default:
		code = dto.ErrCodeUnauthorized
	}

	log.Debug("JWT authentication failed",
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
	)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// GetJWTClaims retrieves the claims stored by JWTAuth
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(JWTClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetJWTUserID retrieves the authenticated user ID
func GetJWTUserID(c *gin.Context) string {
	return c.GetString(JWTUserIDKey)
}

// GetJWTRole retrieves the authenticated role
func GetJWTRole(c *gin.Context) identity.Role {
	return identity.Role(c.GetString(JWTRoleKey))
}
