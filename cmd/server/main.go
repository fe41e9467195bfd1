package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/josmejia2401/jac-vision/internal/cache"
	"github.com/josmejia2401/jac-vision/internal/config"
	"github.com/josmejia2401/jac-vision/internal/controllers"
	"github.com/josmejia2401/jac-vision/internal/database"
	"github.com/josmejia2401/jac-vision/internal/logger"
	"github.com/josmejia2401/jac-vision/internal/middleware"
	"github.com/josmejia2401/jac-vision/internal/repositories"
	"github.com/josmejia2401/jac-vision/internal/routes"
	"github.com/josmejia2401/jac-vision/internal/security"
	"github.com/josmejia2401/jac-vision/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	rootLogger := logger.New(cfg.Logging)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.Connect(ctx, &cfg.Database)
	if err != nil {
		rootLogger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer func() {
		if err := db.Close(context.Background()); err != nil {
			rootLogger.Error().Err(err).Msg("error closing database")
		}
	}()

	if err := db.EnsureIndexes(ctx); err != nil {
		rootLogger.Fatal().Err(err).Msg("failed to ensure indexes")
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		rootLogger.Fatal().Err(err).Msg("failed to connect redis")
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			rootLogger.Error().Err(err).Msg("error closing redis")
		}
	}()

	tokenLife, err := cfg.JWT.GetTokenLife()
	if err != nil {
		rootLogger.Fatal().Err(err).Msg("invalid jwt.token_life")
	}
	cacheTTL, err := cfg.Auth.GetCacheTTL()
	if err != nil {
		rootLogger.Fatal().Err(err).Msg("invalid auth.cache_ttl")
	}
	lockDuration, err := cfg.Auth.GetLockDuration()
	if err != nil {
		rootLogger.Fatal().Err(err).Msg("invalid auth.lock_duration")
	}

	jwtUtil := security.NewJWTUtil(cfg.JWT.Secret, cfg.JWT.AppName, tokenLife)
	idgen := security.NewUniqueNumber()

	// Repositories and services
	userRepo := repositories.NewUserRepository(db.Database())
	tokenRepo := repositories.NewTokenRepository(db.Database())

	tokenService := services.NewTokenService(tokenRepo, redisClient, jwtUtil, idgen, cacheTTL, rootLogger)
	authService := services.NewAuthService(userRepo, tokenService, cfg.Auth.MaxLoginAttempts, lockDuration, rootLogger)
	userService := services.NewUserService(userRepo, idgen)

	// Controllers
	authController := controllers.NewAuthController(authService)
	userController := controllers.NewUserController(userService)

	// Setup router
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID(rootLogger))
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS())

	authMiddleware := middleware.Auth(tokenService, jwtUtil)
	routes.SetupRoutes(router, authController, userController, authMiddleware)

	go cleanupExpiredTokens(ctx, cfg.Cleanup, tokenService, rootLogger)

	addr := cfg.Server.Host + ":" + strconv.Itoa(cfg.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}
	if d, err := cfg.Server.GetReadTimeout(); err == nil && d > 0 {
		server.ReadTimeout = d
	}
	if d, err := cfg.Server.GetWriteTimeout(); err == nil && d > 0 {
		server.WriteTimeout = d
	}

	go func() {
		rootLogger.Info().Str("addr", addr).Msg("server running")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			rootLogger.Fatal().Err(err).Msg("failed to run server")
		}
	}()

	waitForShutdown(cfg, server, rootLogger, cancel)
}

// cleanupExpiredTokens purges expired session records on a fixed
// interval. Expiry is also enforced lazily on every lookup; this just
// keeps the tokens collection from growing without bound.
func cleanupExpiredTokens(ctx context.Context, cfg config.CleanupConfig, tokens *services.TokenService, l zerolog.Logger) {
	interval, err := cfg.GetInterval()
	if err != nil || interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := tokens.DeleteExpired(ctx)
			if err != nil {
				l.Error().Err(err).Msg("token cleanup failed")
				continue
			}
			if deleted > 0 {
				l.Info().Int64("deleted", deleted).Msg("expired tokens purged")
			}
		}
	}
}

func waitForShutdown(cfg *config.Config, server *http.Server, l zerolog.Logger, cancel context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	l.Info().Msg("shutting down server...")
	cancel()

	timeout, err := cfg.Server.GetShutdownTimeout()
	if err != nil || timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancelShutdown := context.WithTimeout(context.Background(), timeout)
	defer cancelShutdown()

	if err := server.Shutdown(ctx); err != nil {
		l.Error().Err(err).Msg("forced shutdown")
	}
}
