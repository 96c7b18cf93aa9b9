package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/report-service/internal/api/http"
	"github.com/spec-kit/report-service/internal/api/http/handlers"
	"github.com/spec-kit/report-service/internal/auth"
	"github.com/spec-kit/report-service/internal/cache"
	"github.com/spec-kit/report-service/internal/config"
	"github.com/spec-kit/report-service/internal/observability"
	"github.com/spec-kit/report-service/internal/persistence"
	"github.com/spec-kit/report-service/internal/repository"
	"github.com/spec-kit/report-service/internal/service"
	"github.com/spec-kit/report-service/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, cfg.Postgres, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	objects, err := storage.NewMinioStore(ctx, cfg.Minio)
	if err != nil {
		logger.Fatal("failed to connect object storage", zap.Error(err))
	}

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	refreshRepo := repository.NewRefreshTokenRepository(pool)
	reportRepo := repository.NewReportRepository(pool)
	reportCache := cache.NewReportCache(redis.Client, cfg.Redis.ReportCacheTTL(), logger)

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:         userRepo,
		RefreshTokenRepo: refreshRepo,
	}, logger)
	reportService := service.NewReportService(reportRepo, objects, reportCache, cfg.Upload, logger)
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	authService.SweepExpiredTokens(ctx)

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: int(cfg.Upload.MaxFileSizeBytes) + 1024*1024,
	})
	httptransport.RegisterMiddlewares(app, cfg, logger, metrics)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Reports:        handlers.NewReportsHandler(reportService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
