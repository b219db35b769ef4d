// Package dependency provides dependency injection for the application.
package dependency

import (
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/salon-ledger/backend/config"
	"github.com/salon-ledger/backend/internal/application/adapter"
	"github.com/salon-ledger/backend/internal/application/service"
	"github.com/salon-ledger/backend/internal/application/usecase/auth"
	"github.com/salon-ledger/backend/internal/application/usecase/calendar"
	"github.com/salon-ledger/backend/internal/application/usecase/settlement"
	"github.com/salon-ledger/backend/internal/domain/entity"
	"github.com/salon-ledger/backend/internal/infra/server/router"
	"github.com/salon-ledger/backend/internal/integration/adapters"
	"github.com/salon-ledger/backend/internal/integration/email"
	"github.com/salon-ledger/backend/internal/integration/entrypoint/controller"
	"github.com/salon-ledger/backend/internal/integration/entrypoint/middleware"
	"github.com/salon-ledger/backend/internal/integration/persistence"
)

// Options overrides external integrations, used by the integration tests.
type Options struct {
	// Verifiers replaces the provider identity verifiers.
	Verifiers map[entity.AuthProvider]adapter.IdentityVerifier
	// ReportSender replaces the Resend report sender.
	ReportSender adapter.ReportSender
}

// Injector holds all application dependencies.
type Injector struct {
	Config       *config.Config
	DB           *gorm.DB
	Router       *router.Router
	Worker       *email.Worker
	TokenService adapter.TokenService
}

// NewInjector creates a new dependency injector with all dependencies wired.
func NewInjector(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, opts Options) *Injector {
	// Create repositories
	userRepo := persistence.NewUserRepository(db)
	tokenRepo := persistence.NewTokenRepository(db)
	reportQueue := persistence.NewReportQueueRepository(db)
	documentStore := persistence.NewDocumentStore(db)

	// Create adapters/services
	tokenService := adapters.NewTokenService(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry, cfg.JWT.RefreshTokenExpiry, tokenRepo)
	nonceStore := adapters.NewNonceStore(redisClient, cfg.Redis.NonceTTL)

	verifiers := opts.Verifiers
	if verifiers == nil {
		verifiers = buildVerifiers(cfg)
	}

	reportSender := opts.ReportSender
	if reportSender == nil {
		reportSender = email.NewResendClient(cfg.Email.ResendAPIKey, cfg.Email.FromName, cfg.Email.FromEmail)
	}

	// Create entity services
	treatments := service.NewTreatmentService(documentStore)
	categories := service.NewCategoryService(documentStore)
	records := service.NewRecordService(documentStore)
	adjustments := service.NewAdjustmentService(documentStore)
	expenses := service.NewExpenseService(documentStore)

	// Create aggregators
	calendarAggregator := calendar.NewAggregator(records, adjustments, treatments)
	settlementAggregator := settlement.NewAggregator(treatments, categories, records, adjustments, expenses, reportQueue)

	// Create auth use cases
	signInUseCase := auth.NewSignInUseCase(verifiers, nonceStore, userRepo, tokenService, categories)
	refreshTokenUseCase := auth.NewRefreshTokenUseCase(tokenService)
	logoutUseCase := auth.NewLogoutUseCase(tokenService)

	// Create controllers
	healthController := controller.NewHealthController(func() bool {
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	})
	authController := controller.NewAuthController(signInUseCase, refreshTokenUseCase, logoutUseCase)
	treatmentController := controller.NewTreatmentController(treatments)
	categoryController := controller.NewCategoryController(categories)
	calendarController := controller.NewCalendarController(calendarAggregator, records, adjustments, treatments)
	settlementController := controller.NewSettlementController(settlementAggregator, userRepo)

	// Create middleware
	// Use higher rate limits for the test environment to prevent flaky tests
	var signInRateLimiter *middleware.RateLimiter
	if cfg.Server.Environment == "test" {
		signInRateLimiter = middleware.NewRateLimiterWithConfig(1000, 1*time.Minute)
	} else {
		signInRateLimiter = middleware.NewRateLimiter()
	}
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	r := router.NewRouter(
		healthController,
		authController,
		treatmentController,
		categoryController,
		calendarController,
		settlementController,
		signInRateLimiter,
		authMiddleware,
	)

	worker := email.NewWorker(reportQueue, reportSender, email.WorkerConfig{
		PollInterval: cfg.Email.PollInterval,
		BatchSize:    cfg.Email.BatchSize,
	})

	return &Injector{
		Config:       cfg,
		DB:           db,
		Router:       r,
		Worker:       worker,
		TokenService: tokenService,
	}
}

// buildVerifiers creates the real provider verifiers from configuration.
// Providers without a configured client id are left out.
func buildVerifiers(cfg *config.Config) map[entity.AuthProvider]adapter.IdentityVerifier {
	verifiers := make(map[entity.AuthProvider]adapter.IdentityVerifier)

	if cfg.Auth.GoogleClientID != "" {
		verifiers[entity.AuthProviderGoogle] = adapters.NewGoogleVerifier(cfg.Auth.GoogleClientID)
	}
	if cfg.Auth.AppleClientID != "" {
		appleVerifier, err := adapters.NewAppleVerifier(cfg.Auth.AppleClientID)
		if err != nil {
			slog.Warn("failed to initialize apple verifier, apple sign-in disabled", "error", err)
		} else {
			verifiers[entity.AuthProviderApple] = appleVerifier
		}
	}
	return verifiers
}
