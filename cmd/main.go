package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/ZenGuideTeam/zg-account-server/internal/config"
	"github.com/ZenGuideTeam/zg-account-server/internal/handlers"
	"github.com/ZenGuideTeam/zg-account-server/internal/logger"
	"github.com/ZenGuideTeam/zg-account-server/internal/middleware"
	"github.com/ZenGuideTeam/zg-account-server/internal/repository"
	"github.com/ZenGuideTeam/zg-account-server/internal/repository/memory"
	redis_repo "github.com/ZenGuideTeam/zg-account-server/internal/repository/redis"
	sql_repo "github.com/ZenGuideTeam/zg-account-server/internal/repository/sql"
	"github.com/ZenGuideTeam/zg-account-server/internal/router"
	"github.com/ZenGuideTeam/zg-account-server/internal/server"
	"github.com/ZenGuideTeam/zg-account-server/internal/service"
)

const (
	// how long an expired reset record stays readable so verify can answer "expired"
	expiredRetention = time.Hour
	cleanupInterval  = time.Minute
	shutdownTimeout  = 10 * time.Second
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init(cfg.LogLevel, cfg.AppEnv, cfg.AppName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sqlx.Open(cfg.DatabaseDriver, cfg.DatabaseSettings)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DatabaseDriver).Msg("Failed opening database connection")
	}
	defer db.Close()
	if cfg.DatabaseDriver == "sqlite3" {
		db.SetMaxOpenConns(1)
	}

	userRepo := sql_repo.NewSQLUserRepository(db)
	// Run the schema migration.
	if err := userRepo.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed creating schema resources")
	}
	tourRepo := sql_repo.NewSQLTourRepository(db)
	if err := tourRepo.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed creating tour schema resources")
	}
	settingsRepo := sql_repo.NewSQLSettingsRepository(db)

	var redisClient *redis.Client
	if cfg.ResetStore == "redis" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisSettings.Address,
			Password: cfg.RedisSettings.Password,
			DB:       cfg.RedisSettings.DB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("address", cfg.RedisSettings.Address).Msg("Failed to connect to redis")
		}
	}

	var resetRepo repository.ResetRequestRepository
	if redisClient != nil {
		resetRepo = redis_repo.NewRedisResetRequestRepository(redisClient, expiredRetention)
	} else {
		memoryRepo := memory.NewMemoryResetRequestRepository()
		go cleanupExpiredResetRequests(ctx, memoryRepo)
		resetRepo = memoryRepo
		log.Warn().Msg("Using in-memory password reset store. Not for production use.")
	}

	rateLimitStore, err := middleware.NewRateLimitStore(redisClient)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create rate limit store")
	}
	rateLimit := middleware.RateLimit(rateLimitStore, cfg.RateLimit.Requests, cfg.RateLimit.Period)

	tokenService := service.NewTokenService(cfg.JWTSecret, cfg.SessionConfig.AccessTokenDuration)
	emailService := service.NewSMTPEmailService(&cfg.SMTP, cfg.AppName)

	app := server.New()

	router.SetupPasswordResetRoutes(app, handlers.NewPasswordResetHandler(
		service.NewPasswordResetService(
			resetRepo,
			userRepo,
			emailService,
			tokenService,
			&cfg.Security,
		),
	), rateLimit)
	jwtAuth := middleware.JWTAuth(tokenService)
	router.SetupUserRoutes(app, handlers.NewUserHandler(
		service.NewUserService(userRepo, tokenService, &cfg.Security),
	), rateLimit, jwtAuth)
	router.SetupSettingsRoutes(app, handlers.NewSettingsHandler(service.NewSettingsService(settingsRepo)), jwtAuth)

	tourService := service.NewTourService(tourRepo)
	router.SetupTourRoutes(app, handlers.NewTourHandler(tourService), jwtAuth)
	router.SetupPublicTourRoutes(app, handlers.NewPublicTourHandler(tourService), rateLimit)

	go func() {
		log.Info().Str("port", cfg.Port).Str("resetStore", cfg.ResetStore).Msg("Server starting")
		if err := app.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("Server stopped gracefully.")
}

func cleanupExpiredResetRequests(ctx context.Context, repo *memory.MemoryResetRequestRepository) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := repo.CleanupExpired(time.Now().UTC().Add(-expiredRetention)); removed > 0 {
				log.Debug().Int("removed", removed).Msg("Cleaned up expired password reset requests")
			}
		}
	}
}
