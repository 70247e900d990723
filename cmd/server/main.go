package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	financeapp "github.com/jneralrex/stratos-backend/internal/application/finance"
	identityapp "github.com/jneralrex/stratos-backend/internal/application/identity"
	"github.com/jneralrex/stratos-backend/internal/domain/finance"
	"github.com/jneralrex/stratos-backend/internal/domain/shared"
	"github.com/jneralrex/stratos-backend/internal/infrastructure/auth"
	"github.com/jneralrex/stratos-backend/internal/infrastructure/config"
	"github.com/jneralrex/stratos-backend/internal/infrastructure/event"
	"github.com/jneralrex/stratos-backend/internal/infrastructure/logger"
	"github.com/jneralrex/stratos-backend/internal/infrastructure/notification"
	"github.com/jneralrex/stratos-backend/internal/infrastructure/persistence"
	"github.com/jneralrex/stratos-backend/internal/infrastructure/storage"
	"github.com/jneralrex/stratos-backend/internal/infrastructure/telemetry"
	"github.com/jneralrex/stratos-backend/internal/interfaces/http/handler"
	"github.com/jneralrex/stratos-backend/internal/interfaces/http/middleware"
	"github.com/jneralrex/stratos-backend/internal/interfaces/http/router"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	_ "github.com/jneralrex/stratos-backend/docs"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Stratos Backend API
//	@version		1.0
//	@description	Payments, referrals and commission ledger for Stratos

//	@contact.name	API Support

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	// OpenTelemetry log bridge; the logger is rebuilt so every entry is
	// exported as well as written locally
	logsProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize log exporter", zap.Error(err))
	}
	if logsProvider.IsEnabled() {
		log, err = logger.New(logCfg, logsProvider.Core(logger.ParseLevel(cfg.Log.Level)))
		if err != nil {
			panic("Failed to initialize logger: " + err.Error())
		}
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Stratos backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.ProfilingServer,
		ApplicationName: cfg.Telemetry.ServiceName,
		Environment:     cfg.App.Env,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() && tracerProvider.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}

	// Database
	gormLog := logger.NewSQLLogger(log, logger.SQLLevel(cfg.Log.Level))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	dbTracing := telemetry.DefaultDBTracingConfig()
	dbTracing.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
	dbTracing.LogFullSQL = cfg.Telemetry.DBLogFullSQL
	if cfg.Telemetry.DBSlowQueryThresh > 0 {
		dbTracing.SlowQueryThresh = cfg.Telemetry.DBSlowQueryThresh
	}
	if err := telemetry.RegisterDBTracing(db.DB, dbTracing, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
		log.Warn("Schema auto-migrated; use cmd/migrate outside development")
	}

	checks := map[string]handler.HealthChecker{
		"database": handler.HealthCheckFunc(func(context.Context) error { return db.Ping() }),
	}

	// Token revocation and OTP resend cooldown
	var tokens interface {
		auth.TokenBlacklist
		auth.Cooldown
	}
	var closeTokens func() error
	if cfg.Redis.Enabled {
		client, err := auth.NewRedisClient(ctx, cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		store := auth.NewRedisTokenStore(client)
		tokens, closeTokens = store, store.Close
		checks["redis"] = handler.HealthCheckFunc(func(ctx context.Context) error { return client.Ping(ctx).Err() })
		log.Info("Token store backed by Redis", zap.String("addr", cfg.Redis.Addr()))
	} else {
		tokens = auth.NewInMemoryTokenStore()
		log.Warn("Redis disabled; revoked tokens are kept in memory and lost on restart")
	}

	receipts, err := newReceiptStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize receipt storage", zap.Error(err))
	}

	var notifier identityapp.Notifier = notification.NewLogNotifier(log)
	if cfg.Mail.Enabled {
		notifier, err = notification.NewSMTPNotifier(cfg.Mail, cfg.OTP.TTL, log)
		if err != nil {
			log.Fatal("Failed to initialize mailer", zap.Error(err))
		}
	}

	// Event bus; ledger metrics are recorded after commit
	var eventBus shared.EventBus = event.NewInMemoryEventBus(log)
	var meter metric.Meter
	var ledgerMetrics financeapp.BusinessMetrics
	if meterProvider.IsEnabled() {
		meter = meterProvider.Meter(telemetry.MeterName)
		lm, err := telemetry.NewLedgerMetrics(meter)
		if err != nil {
			log.Fatal("Failed to create ledger metrics", zap.Error(err))
		}
		ledgerMetrics = lm
	}
	eventBus.Subscribe(event.NewIdempotentHandler(financeapp.NewLedgerMetricsHandler(ledgerMetrics, log), tokens, log))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Repositories and services
	userRepo := persistence.NewGormUserRepository(db.DB)
	transactionRepo := persistence.NewGormTransactionRepository(db.DB)
	commissionRepo := persistence.NewGormCommissionRepository(db.DB)
	scope := persistence.NewGormTransactionScope(db.DB)

	rates, err := finance.NewCommissionRates(cfg.Commission.AffiliateRate, cfg.Commission.SalesRepRate)
	if err != nil {
		log.Fatal("Invalid commission rates", zap.Error(err))
	}
	engine := financeapp.NewCommissionEngine(rates, log)

	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, tokens, tokens, notifier, eventBus,
		identityapp.AuthServiceConfig{
			OTPTTL:         cfg.OTP.TTL,
			ResendCooldown: cfg.OTP.ResendCooldown,
			OTPBcryptCost:  cfg.OTP.BcryptCost,
			FrontendURL:    cfg.Referral.FrontendURL,
		}, log)
	transactionService := financeapp.NewTransactionService(userRepo, transactionRepo, scope, engine, receipts, eventBus, log)
	affiliateService := financeapp.NewAffiliateService(userRepo, commissionRepo, scope, engine, log)
	commissionService := financeapp.NewCommissionService(scope, engine, eventBus, log)

	// HTTP
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	var authLimiter *middleware.RateLimiter
	if cfg.HTTP.AuthRateLimit > 0 {
		authLimiter = middleware.NewRateLimiter(cfg.HTTP.AuthRateLimit, cfg.HTTP.AuthRateWindow)
		defer authLimiter.Stop()
	}

	httpEngine, err := router.New(router.Config{
		Logger:           log,
		JWTService:       jwtService,
		TokenBlacklist:   tokens,
		ServiceName:      cfg.Telemetry.ServiceName,
		TracingEnabled:   tracerProvider.IsEnabled(),
		Meter:            meter,
		ProfilingEnabled: profiler.IsEnabled(),
		CORS: middleware.CORSConfig{
			AllowOrigins:  cfg.HTTP.CORSAllowOrigins,
			AllowMethods:  cfg.HTTP.CORSAllowMethods,
			AllowHeaders:  cfg.HTTP.CORSAllowHeaders,
			ExposeHeaders: []string{middleware.RequestIDHeader, "Retry-After"},
			MaxAge:        12 * time.Hour,
		},
		HSTS:           cfg.IsProduction(),
		TrustedProxies: cfg.HTTP.TrustedProxies,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		MaxUploadSize:  cfg.HTTP.MaxUploadSize,
		AuthLimiter:    authLimiter,
		Swagger: middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		},
	}, router.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		Transactions: handler.NewTransactionHandler(transactionService, cfg.HTTP.MaxUploadSize),
		Affiliates:   handler.NewAffiliateHandler(affiliateService),
		Commissions:  handler.NewCommissionHandler(commissionService),
		System:       handler.NewSystemHandler(cfg.App.Name, version, checks, 3*time.Second),
	})
	if err != nil {
		log.Fatal("Failed to build router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        httpEngine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	if closeTokens != nil {
		if err := closeTokens(); err != nil {
			log.Error("Error closing Redis", zap.Error(err))
		}
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
	if err := logsProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down log exporter", zap.Error(err))
	}
}

// newReceiptStore picks S3-compatible storage when configured. Without it
// receipts are kept in process memory, which only suits development.
func newReceiptStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (financeapp.BlobStore, error) {
	if !cfg.Storage.Enabled {
		log.Warn("Object storage disabled; receipts are kept in memory")
		return storage.NewMemoryReceiptStore(""), nil
	}

	store, err := storage.NewS3ReceiptStore(ctx, &cfg.Storage,
		storage.WithLogger(log),
		storage.WithMaxSize(cfg.HTTP.MaxUploadSize),
	)
	if err != nil {
		return nil, err
	}
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	log.Info("Receipts stored in bucket", zap.String("bucket", store.Bucket()))
	return store, nil
}
