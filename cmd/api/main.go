package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/box-office/internal/api/http"
	"github.com/spec-kit/box-office/internal/api/http/handlers"
	"github.com/spec-kit/box-office/internal/auth"
	"github.com/spec-kit/box-office/internal/config"
	"github.com/spec-kit/box-office/internal/events"
	"github.com/spec-kit/box-office/internal/observability"
	"github.com/spec-kit/box-office/internal/persistence"
	"github.com/spec-kit/box-office/internal/repository"
	"github.com/spec-kit/box-office/internal/service"
	"github.com/spec-kit/box-office/internal/worker"
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
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()

	pool := pg.PoolHandle()
	var (
		ticketRepo     repository.TicketRepository
		inventoryRepo  repository.InventoryRepository
		orgRepo        repository.OrgRepository
		eventRepo      repository.EventRepository
		commissionRepo repository.CommissionRepository
	)
	if pool != nil {
		ticketRepo = repository.NewTicketRepository(pool)
		inventoryRepo = repository.NewInventoryRepository(pool)
		orgRepo = repository.NewOrgRepository(pool)
		eventRepo = repository.NewEventRepository(pool)
		commissionRepo = repository.NewCommissionRepository(pool)
	} else {
		logger.Warn("running with in-memory repositories; data will not survive restarts")
		store := repository.NewMemoryStore()
		ticketRepo = repository.NewMemoryTicketRepository(store)
		inventoryRepo = repository.NewMemoryInventoryRepository(store)
		orgRepo = repository.NewMemoryOrgRepository(store)
		eventRepo = repository.NewMemoryEventRepository(store)
		commissionRepo = repository.NewMemoryCommissionRepository(store)
	}

	dispatcher := events.NewInMemoryDispatcher()

	orgService := service.NewOrgService(orgRepo, cfg.Auth.BcryptCost)
	authService := service.NewAuthService(*cfg, orgRepo)
	saleService := service.NewSaleService(service.SaleDependencies{
		TicketRepo:    ticketRepo,
		InventoryRepo: inventoryRepo,
		EventRepo:     eventRepo,
		Org:           orgService,
		Dispatcher:    dispatcher,
		Codes:         service.RandomCodeGenerator{Length: cfg.Sales.CodeLength},
		Rates: service.CommissionRates{
			Promoter:   cfg.Sales.PromoterRate,
			TeamLeader: cfg.Sales.TeamLeaderRate,
			Manager:    cfg.Sales.ManagerRate,
		},
		MaxCodeAttempts: cfg.Sales.MaxCodeAttempts,
		Logger:          logger,
	})
	validationService := service.NewValidationService(ticketRepo, dispatcher, service.UTCNow, logger)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     ticketRepo,
		InventoryRepo:  inventoryRepo,
		CommissionRepo: commissionRepo,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})
	statsService := service.NewStatsService(ticketRepo, orgService)

	notifier := service.NewRedisNotifier(redis, cfg.Notification.RedisChannel, logger)
	notificationService := service.NewNotificationService(dispatcher, notifier, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), orgRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Org:            handlers.NewOrgHandler(orgService, authService),
		Events:         handlers.NewEventsHandler(eventRepo, inventoryRepo),
		Sales:          handlers.NewSalesHandler(saleService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Validation:     handlers.NewValidationHandler(validationService),
		Stats:          handlers.NewStatsHandler(statsService),
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
