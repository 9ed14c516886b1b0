package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"

	"github.com/mkarlsen/kontor/internal/app"
	"github.com/mkarlsen/kontor/internal/auth"
	"github.com/mkarlsen/kontor/internal/config"
	apperrors "github.com/mkarlsen/kontor/internal/errors"
)

// postgresHealthChecker is a minimal interface for PostgreSQL health checks.
type postgresHealthChecker interface {
	Ping(ctx context.Context) error
}

// redisHealthChecker is a minimal interface for Redis health checks. Nil when
// Redis is not configured; the readiness probe then skips the check.
type redisHealthChecker interface {
	Ping(ctx context.Context) *goredis.StatusCmd
}

// Services bundles the application services the handlers depend on.
type Services struct {
	Auth          *app.AuthService
	Organizations *app.OrganizationService
	BankAccounts  *app.BankAccountService
	Documents     *app.DocumentService
	Users         *app.UserService
	Permissions   *app.PermissionService
	Audit         *app.AuditService
}

type Server struct {
	echo      *echo.Echo
	config    *config.Config
	validate  *validator.Validate
	authmw    *auth.Middleware
	services  Services
	db        postgresHealthChecker
	redis     redisHealthChecker
	startTime time.Time
}

func NewServer(cfg *config.Config, services Services, authmw *auth.Middleware, db postgresHealthChecker, redis redisHealthChecker) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(apperrors.Middleware())
	// Document uploads are the largest payloads; everything else is small JSON.
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dM", cfg.MaxDocumentSizeMB+1)))

	srv := &Server{
		echo:      e,
		config:    cfg,
		validate:  validator.New(),
		authmw:    authmw,
		services:  services,
		db:        db,
		redis:     redis,
		startTime: time.Now(),
	}
	srv.registerRoutes()
	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port, "env", s.config.AppEnv)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
