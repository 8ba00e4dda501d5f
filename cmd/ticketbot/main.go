package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/lukepickard18/botz/internal/api/http"
	"github.com/lukepickard18/botz/internal/api/http/handlers"
	"github.com/lukepickard18/botz/internal/config"
	"github.com/lukepickard18/botz/internal/events"
	"github.com/lukepickard18/botz/internal/observability"
	"github.com/lukepickard18/botz/internal/persistence"
	"github.com/lukepickard18/botz/internal/platform"
	"github.com/lukepickard18/botz/internal/repository"
	"github.com/lukepickard18/botz/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		var missing *config.MissingError
		if errors.As(err, &missing) {
			log.Fatalf("refusing to start: %v", missing)
		}
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()

	store, err := openCounterStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open ticket counter store", zap.Error(err))
	}
	defer store.close()

	counter, err := service.NewCounterService(ctx, store.repo, logger, metrics)
	if err != nil {
		logger.Fatal("failed to load ticket counter", zap.Error(err))
	}

	session, err := platform.NewDiscordSession(cfg.Discord.Token)
	if err != nil {
		logger.Fatal("failed to create discord session", zap.Error(err))
	}
	gateway := platform.NewDiscordGateway(session, logger)

	dispatcher := events.NewInMemoryDispatcher(logger)
	controllers := service.RouterControllers{
		Panel: service.NewPanelService(gateway, cfg.Ticket, logger, metrics),
		Intake: service.NewIntakeService(service.IntakeDependencies{
			Gateway:    gateway,
			Counter:    counter,
			Config:     cfg.Ticket,
			Dispatcher: dispatcher,
			Logger:     logger,
			Metrics:    metrics,
		}),
		Close: service.NewCloseService(service.CloseDependencies{
			Gateway:    gateway,
			Config:     cfg.Ticket,
			Dispatcher: dispatcher,
			Logger:     logger,
			Metrics:    metrics,
		}),
		Notification: service.NewNotificationService(dispatcher, logger, cfg.Notification),
	}
	if cfg.Verify.Enabled() {
		controllers.Verification = service.NewVerificationService(gateway, cfg.Verify, logger, metrics)
	} else {
		logger.Info("VERIFY_CHANNEL_ID or VERIFY_ROLE_ID not set; member verification disabled")
	}

	router := service.NewEventRouter(dispatcher, logger, controllers)
	gateway.Register(ctx, router.Handlers())

	if err := gateway.Open(); err != nil {
		logger.Fatal("failed to open discord gateway", zap.Error(err))
	}
	defer gateway.Close() //nolint:errcheck

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, 0)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, gateway, store.pingers),
		Metrics: handlers.NewMetricsHandler(metrics),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()
	logger.Info("health server listening", zap.String("addr", cfg.App.Addr()))

	waitForShutdown(logger)

	_ = app.Shutdown()
}

type counterStore struct {
	repo    repository.CounterRepository
	pingers map[string]handlers.Pinger
	close   func()
}

// openCounterStore connects the configured counter backend. Connection failures are fatal
// so a misconfigured store never silently restarts numbering.
func openCounterStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*counterStore, error) {
	switch cfg.Counter.Backend {
	case config.CounterBackendRedis:
		rdb, err := persistence.NewRedis(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, err
		}
		return &counterStore{
			repo:    repository.NewRedisCounterRepository(rdb.Client, cfg.Counter.RedisKey),
			pingers: map[string]handlers.Pinger{"redis": rdb},
			close:   rdb.Close,
		}, nil

	case config.CounterBackendPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, err
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				pg.Close()
				return nil, err
			}
		}
		return &counterStore{
			repo:    repository.NewPostgresCounterRepository(pg.PoolHandle(), cfg.Counter.Name),
			pingers: map[string]handlers.Pinger{"postgres": pg},
			close:   pg.Close,
		}, nil

	case config.CounterBackendFile:
		logger.Info("ticket counter stored on disk", zap.String("path", cfg.Counter.FilePath))
		return &counterStore{
			repo:  repository.NewFileCounterRepository(cfg.Counter.FilePath),
			close: func() {},
		}, nil
	}
	return nil, fmt.Errorf("unsupported counter backend %q", cfg.Counter.Backend)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
