package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/mkarlsen/kontor/internal/app"
	"github.com/mkarlsen/kontor/internal/auth"
	"github.com/mkarlsen/kontor/internal/config"
	"github.com/mkarlsen/kontor/internal/crypto"
	"github.com/mkarlsen/kontor/internal/database"
	"github.com/mkarlsen/kontor/internal/logging"
	"github.com/mkarlsen/kontor/internal/redis"
	"github.com/mkarlsen/kontor/internal/server"
	"github.com/mkarlsen/kontor/internal/token"
)

func setupConfig() *config.Config {
	// Best effort; in deployment the environment is set by the platform.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.RunMigrations(ctx, db); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return db
}

func setupRedis(ctx context.Context, cfg *config.Config) *goredis.Client {
	if cfg.RedisURL == "" {
		slog.Warn("REDIS_URL not set, login throttling and reuse detection disabled")
		return nil
	}

	client, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func setupCipher(cfg *config.Config) crypto.Cipher {
	cipher, err := crypto.NewAESCipher(cfg.FieldEncryptionKey)
	if err != nil {
		slog.Error("Failed to create field cipher", "error", err)
		os.Exit(1)
	}
	return cipher
}

func runGracefulShutdown(srv *server.Server, authSvc *app.AuthService) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		authSvc.Stop()
		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	pool := setupDB(cfg)
	defer pool.Close()

	redisClient := setupRedis(context.Background(), cfg)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	cipher := setupCipher(cfg)

	userRepo := database.NewUserRepo(pool)
	orgRepo := database.NewOrganizationRepo(pool)
	bankAccountRepo := database.NewBankAccountRepo(pool, cipher)
	documentRepo := database.NewDocumentRepo(pool)
	auditRepo := database.NewAuditRepo(pool)
	refreshTokenRepo := database.NewRefreshTokenRepo(pool)
	permissionRepo := database.NewPermissionRepo(pool)

	tokenSvc := token.NewService(cfg.JWTSecret, cfg.AccessTokenTTL, clock)

	var limiter *redis.LoginLimiter
	var reuseGuard *redis.ReuseGuard
	if redisClient != nil {
		limiter = redis.NewLoginLimiter(redisClient)
		reuseGuard = redis.NewReuseGuard(redisClient)
	}

	authSvc := app.NewAuthService(userRepo, refreshTokenRepo, auditRepo, tokenSvc, limiter, reuseGuard, cfg.RefreshTokenTTL, clock)

	permCache := auth.NewPermissionCache(permissionRepo, clock)

	services := server.Services{
		Auth:          authSvc,
		Organizations: app.NewOrganizationService(orgRepo, userRepo, auditRepo),
		BankAccounts:  app.NewBankAccountService(bankAccountRepo, userRepo, auditRepo),
		Documents:     app.NewDocumentService(documentRepo, userRepo, auditRepo, cfg.MaxDocumentSizeMB),
		Users:         app.NewUserService(userRepo, auditRepo),
		Permissions:   app.NewPermissionService(permissionRepo, userRepo, auditRepo, permCache),
		Audit:         app.NewAuditService(auditRepo),
	}

	authmw := auth.NewMiddleware(tokenSvc, permCache)

	// Pass nil explicitly to avoid a typed-nil interface value.
	var srv *server.Server
	if redisClient != nil {
		srv = server.NewServer(cfg, services, authmw, pool, redisClient)
	} else {
		srv = server.NewServer(cfg, services, authmw, pool, nil)
	}

	done := runGracefulShutdown(srv, authSvc)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
