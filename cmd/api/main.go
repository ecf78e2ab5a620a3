package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/civicvoice/complaint-service/internal/api/http"
	"github.com/civicvoice/complaint-service/internal/api/http/handlers"
	"github.com/civicvoice/complaint-service/internal/auth"
	"github.com/civicvoice/complaint-service/internal/classifier"
	"github.com/civicvoice/complaint-service/internal/config"
	"github.com/civicvoice/complaint-service/internal/events"
	"github.com/civicvoice/complaint-service/internal/observability"
	"github.com/civicvoice/complaint-service/internal/persistence"
	"github.com/civicvoice/complaint-service/internal/repository"
	"github.com/civicvoice/complaint-service/internal/service"
	"github.com/civicvoice/complaint-service/internal/worker"
)

type repositories struct {
	complaints    repository.ComplaintRepository
	users         repository.UserRepository
	notifications repository.NotificationRepository
}

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

	if pg.PoolHandle() != nil && cfg.Postgres.RunMigrations {
		applied, err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger)
		if err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
		logger.Info("migrations complete", zap.Int("applied", applied))
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	repos := newRepositories(pg, logger)

	publisher := redis.Publisher(ctx)

	queue, stopDelivery, err := worker.StartDeliveryWorker(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to start delivery worker", zap.Error(err))
	}
	defer stopDelivery()

	dispatcher := events.NewInMemoryDispatcher(logger)
	metrics := observability.NewMetrics()
	metrics.RegisterHandlers(dispatcher)

	clock := service.Clock(nil)
	keywords := classifier.NewKeyword()

	complaintService := service.NewComplaintService(service.ComplaintDependencies{
		ComplaintRepo: repos.complaints,
		Classifier:    keywords,
		Dispatcher:    dispatcher,
		Config:        cfg.Lifecycle,
		Clock:         clock,
		Logger:        logger,
	})
	engagementService := service.NewEngagementService(service.EngagementDependencies{
		ComplaintRepo: repos.complaints,
		Dispatcher:    dispatcher,
		Clock:         clock,
		Logger:        logger,
	})
	service.NewLedgerService(service.LedgerDependencies{
		UserRepo: repos.users,
		Config:   cfg.Lifecycle,
		Logger:   logger,
	}).RegisterHandlers(dispatcher)

	notificationService := service.NewNotificationService(service.NotificationDependencies{
		NotificationRepo: repos.notifications,
		UserRepo:         repos.users,
		Publisher:        publisher,
		Queue:            queue,
		Config:           cfg.Notification,
		Clock:            clock,
		Logger:           logger,
	})
	notificationService.RegisterHandlers(dispatcher)
	statsService := service.NewStatsService(repos.complaints, clock)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokens, repos.users)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	dependencies := map[string]handlers.Pinger{"redis": redis}
	if pg.PoolHandle() != nil {
		dependencies["postgres"] = pg
	}

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, dependencies, metrics),
		Complaints:     handlers.NewComplaintsHandler(complaintService, engagementService, keywords),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		Stats:          handlers.NewStatsHandler(statsService),
		Users:          handlers.NewUsersHandler(service.NewDirectoryService(repos.users)),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

// newRepositories falls back to in-process stores when no database is configured.
func newRepositories(pg *persistence.Postgres, logger *zap.Logger) repositories {
	pool := pg.PoolHandle()
	if pool == nil {
		logger.Warn("using in-memory repositories; data will not survive a restart")
		return repositories{
			complaints:    repository.NewMemoryComplaintRepository(),
			users:         repository.NewMemoryUserRepository(),
			notifications: repository.NewMemoryNotificationRepository(),
		}
	}
	return repositories{
		complaints:    repository.NewComplaintRepository(pool),
		users:         repository.NewUserRepository(pool),
		notifications: repository.NewNotificationRepository(pool),
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
