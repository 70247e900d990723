package router

import (
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/jneralrex/stratos-backend/internal/domain/identity"
	"github.com/jneralrex/stratos-backend/internal/infrastructure/auth"
	"github.com/jneralrex/stratos-backend/internal/infrastructure/logger"
	"github.com/jneralrex/stratos-backend/internal/interfaces/http/handler"
	"github.com/jneralrex/stratos-backend/internal/interfaces/http/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Handlers are the HTTP handlers mounted by New
type Handlers struct {
	Auth         *handler.AuthHandler
	Transactions *handler.TransactionHandler
	Affiliates   *handler.AffiliateHandler
	Commissions  *handler.CommissionHandler
	System       *handler.SystemHandler
}

// Config holds everything the middleware chain needs
type Config struct {
	Logger         *zap.Logger
	JWTService     *auth.JWTService
	TokenBlacklist auth.TokenBlacklist

	ServiceName      string
	TracingEnabled   bool
	Meter            metric.Meter // nil disables HTTP metrics
	ProfilingEnabled bool

	CORS           middleware.CORSConfig
	HSTS           bool
	TrustedProxies []string
	MaxBodySize    int64
	MaxUploadSize  int64

	// AuthLimiter throttles the public auth endpoints; nil disables it
	AuthLimiter *middleware.RateLimiter
	Swagger     middleware.SwaggerConfig
}

// Role sets allowed on each route family
var (
	superAdmin        = []identity.Role{identity.RoleSuperAdmin}
	transactionWriter = []identity.Role{identity.RoleStudent, identity.RoleSuperAdmin}
	transactionRater  = []identity.Role{identity.RoleSalesRep, identity.RoleSuperAdmin}
	transactionLister = []identity.Role{identity.RoleSuperAdmin, identity.RoleAffiliate}
	transactionReader = []identity.Role{identity.RoleSuperAdmin, identity.RoleSalesRep, identity.RoleStudent}
	affiliateReader   = []identity.Role{identity.RoleAffiliate, identity.RoleSuperAdmin}
)

// New builds the engine with the global middleware chain and every route
func New(cfg Config, h Handlers) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	httpMetrics, err := middleware.HTTPMetrics(cfg.Meter)
	if err != nil {
		return nil, err
	}

	profiling := middleware.DefaultProfilingConfig()
	profiling.Enabled = cfg.ProfilingEnabled

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		middleware.TracingWithConfig(middleware.TracingConfig{ServiceName: cfg.ServiceName, Enabled: cfg.TracingEnabled}),
		middleware.TracingAttributes(),
		middleware.SpanErrorMarker(),
		logger.GinMiddleware(log),
		httpMetrics,
		middleware.Secure(cfg.HSTS),
		middleware.CORSWithConfig(cfg.CORS),
		middleware.BodyLimit(cfg.MaxBodySize, cfg.MaxUploadSize),
	)

	jwtAuth := middleware.JWTAuth(middleware.JWTMiddlewareConfig{
		JWTService:     cfg.JWTService,
		TokenBlacklist: cfg.TokenBlacklist,
		Logger:         log,
	})
	authenticated := []gin.HandlerFunc{
		jwtAuth,
		middleware.TracingAttributes(),
		middleware.ProfilingWithConfig(profiling),
	}
	guard := func(roles []identity.Role, hf gin.HandlerFunc) []gin.HandlerFunc {
		return []gin.HandlerFunc{middleware.RequireRoles(roles...), hf}
	}
	withAuth := func(hs ...gin.HandlerFunc) []gin.HandlerFunc {
		return append(slices.Clone(authenticated), hs...)
	}
	throttle := middleware.RateLimit(cfg.AuthLimiter)

	engine.GET("/health", h.System.Health)
	engine.GET("/health/ready", h.System.Ready)
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(cfg.Swagger, jwtAuth),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	authGroup := NewGroup("auth", "/auth").
		POST("/signup", throttle, h.Auth.SignUp).
		POST("/verify-otp", throttle, h.Auth.VerifyOTP).
		POST("/resend-otp", throttle, h.Auth.ResendOTP).
		POST("/signin", throttle, h.Auth.SignIn).
		POST("/refresh-token", throttle, h.Auth.RefreshToken).
		POST("/logout", withAuth(h.Auth.Logout)...).
		POST("/users", withAuth(guard(superAdmin, h.Auth.CreateUser)...)...)

	transactions := NewGroup("transactions", "/transactions").
		Use(authenticated...).
		POST("", guard(transactionWriter, h.Transactions.Create)...).
		GET("", guard(transactionLister, h.Transactions.List)...).
		GET("/user/me", guard(transactionWriter, h.Transactions.ListMine)...).
		GET("/status/:status", guard(transactionRater, h.Transactions.ListByStatus)...).
		GET("/:id", guard(transactionReader, h.Transactions.GetByID)...).
		PUT("/:id", guard(transactionWriter, h.Transactions.Update)...).
		DELETE("/:id", guard(superAdmin, h.Transactions.Delete)...).
		POST("/:id/confirm", guard(transactionRater, h.Transactions.Confirm)...).
		POST("/:id/reject", guard(transactionRater, h.Transactions.Reject)...)

	affiliates := NewGroup("affiliates", "/affiliates").
		Use(authenticated...).
		GET("/earnings", guard(affiliateReader, h.Affiliates.Earnings)...).
		GET("/referrals", guard(affiliateReader, h.Affiliates.Referrals)...).
		POST("/:id/recompute", guard(superAdmin, h.Affiliates.RecomputeSummary)...)

	commissions := NewGroup("commissions", "/commissions").
		Use(authenticated...).
		POST("/:id/pay", guard(superAdmin, h.Commissions.MarkPaid)...)

	if err := Mount(engine, APIVersion, authGroup, transactions, affiliates, commissions); err != nil {
		return nil, err
	}
	return engine, nil
}
