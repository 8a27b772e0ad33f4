package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/staffsync/staffsync-api/internal/api/http"
	"github.com/staffsync/staffsync-api/internal/api/http/handlers"
	"github.com/staffsync/staffsync-api/internal/auth"
	"github.com/staffsync/staffsync-api/internal/config"
	"github.com/staffsync/staffsync-api/internal/events"
	"github.com/staffsync/staffsync-api/internal/observability"
	"github.com/staffsync/staffsync-api/internal/persistence"
	"github.com/staffsync/staffsync-api/internal/seed"
	"github.com/staffsync/staffsync-api/internal/service"
	"github.com/staffsync/staffsync-api/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repos, err := persistence.OpenRepositories(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to open repositories", zap.Error(err))
	}
	defer repos.Close()

	if repos.InMemory {
		seedMemory(ctx, cfg.Seed, repos, logger)
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var sessions auth.SessionStore
	if redis.Reachable {
		sessions = auth.NewRedisSessionStore(redis.Client, cfg.Redis.SessionPrefix)
	} else {
		logger.Warn("redis unreachable; sessions are kept in memory")
		sessions = auth.NewMemorySessionStore()
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	notifications := service.NewNotificationService(logger, cfg.Notification)
	notifyWorker := worker.StartNotificationWorker(ctx, dispatcher, notifications, logger)

	auditService := service.NewAuditService(repos.AuditLogs, logger)
	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:   repos.Users,
		Transactor: repos.Transactor,
		Sessions:   sessions,
		Audit:      auditService,
		Dispatcher: dispatcher,
		Logger:     logger,

		PasswordResetRepo: repos.PasswordResets,
	})
	profileService := service.NewProfileService(service.ProfileDependencies{
		UserRepo:          repos.Users,
		ProfileChangeRepo: repos.ProfileChanges,
		Transactor:        repos.Transactor,
		Audit:             auditService,
		Dispatcher:        dispatcher,
		Metrics:           metrics,
		Logger:            logger,
	})
	personnelService := service.NewPersonnelService(repos.Personnel, cfg.Personnel.PageSize)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), sessions, repos.Users)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, httptransport.MiddlewareConfig{
		Logger:      logger,
		Metrics:     metrics,
		Timeout:     cfg.App.RequestTimeout(),
		CORSOrigins: cfg.App.CORSOrigins,
	})

	probes := map[string]handlers.Pinger{}
	if repos.Postgres.Enabled() {
		probes["postgres"] = repos.Postgres
	}
	if redis.Reachable {
		probes["redis"] = redis
	}

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, probes, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Profile:        handlers.NewProfileHandler(profileService),
		Personnel:      handlers.NewPersonnelHandler(personnelService),
		Audit:          handlers.NewAuditHandler(auditService),
		AuditService:   auditService,
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Warn("fiber shutdown", zap.Error(err))
	}
	notifyWorker.Stop()
}

func seedMemory(ctx context.Context, cfg config.SeedConfig, repos *persistence.Repositories, logger *zap.Logger) {
	ref, err := seed.LoadFile(cfg.File)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("no seed file; starting with an empty store", zap.String("file", cfg.File))
			return
		}
		logger.Fatal("failed to load seed file", zap.String("file", cfg.File), zap.Error(err))
	}
	_, err = seed.Apply(ctx, seed.Dependencies{
		Users:      repos.Users,
		Personnel:  repos.Personnel,
		Transactor: repos.Transactor,
		Logger:     logger,
	}, ref)
	if err != nil {
		logger.Fatal("failed to apply seed", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
