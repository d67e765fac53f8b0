package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/marketsquare/identity-service/docs"
	"github.com/marketsquare/identity-service/internal/api/handler"
	"github.com/marketsquare/identity-service/internal/api/middleware"
	"github.com/marketsquare/identity-service/internal/core/ports"
	"github.com/marketsquare/identity-service/internal/core/service"
	"github.com/marketsquare/identity-service/internal/infrastructure/config"
	"github.com/marketsquare/identity-service/internal/infrastructure/crypto"
	mongodb "github.com/marketsquare/identity-service/internal/infrastructure/db/mongo"
	redisdb "github.com/marketsquare/identity-service/internal/infrastructure/db/redis"
	"github.com/marketsquare/identity-service/internal/token"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, notifier ports.Notifier, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("identity"))

	// --- Dependencies ---
	accountRepo := mongodb.NewAccountRepository(db)
	refreshRepo := mongodb.NewRefreshTokenRepository(db, cfg.RefreshTokenTTL())
	activationRepo := mongodb.NewActivationTokenRepository(db, cfg.ActivationTokenTTL())
	resetRepo := mongodb.NewPasswordResetTokenRepository(db, cfg.ResetTokenTTL())
	blacklist := redisdb.NewBlacklist(rdb, cfg.BlacklistMaxSize)
	codec := token.NewCodec(cfg.JWTSecret, cfg.AccessTokenTTL())
	hasher := crypto.NewBcryptHasher(0)

	authService := service.NewAuthService(
		accountRepo, refreshRepo, codec, blacklist, hasher, notifier,
		cfg.PasswordMaxAge(), log,
	)
	lifecycleService := service.NewLifecycleService(
		accountRepo, activationRepo, resetRepo, hasher, notifier, log,
	)

	authHandler := handler.NewAuthHandler(authService)
	lifecycleHandler := handler.NewLifecycleHandler(lifecycleService)
	session := middleware.Session(codec, blacklist, accountRepo)

	// --- Auth routes ---
	auth := e.Group("/auth")
	auth.POST("/register", lifecycleHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout, session)
	auth.POST("/refresh", authHandler.Refresh)
	auth.GET("/activate", lifecycleHandler.Activate)
	auth.POST("/resend-activation", lifecycleHandler.ResendActivation)
	auth.POST("/forgot-password", lifecycleHandler.ForgotPassword)
	auth.POST("/reset-password", lifecycleHandler.ResetPassword)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
