package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/ovenly-backend/api/controllers"
	"github.com/angelmondragon/ovenly-backend/api/routes"
	"github.com/angelmondragon/ovenly-backend/internal/address"
	"github.com/angelmondragon/ovenly-backend/internal/cart"
	"github.com/angelmondragon/ovenly-backend/internal/catalog"
	"github.com/angelmondragon/ovenly-backend/internal/checkout"
	"github.com/angelmondragon/ovenly-backend/internal/notifications"
	"github.com/angelmondragon/ovenly-backend/internal/orders"
	"github.com/angelmondragon/ovenly-backend/internal/stock"
	"github.com/angelmondragon/ovenly-backend/internal/vendors"
	"github.com/angelmondragon/ovenly-backend/pkg/config"
	"github.com/angelmondragon/ovenly-backend/pkg/db"
	"github.com/angelmondragon/ovenly-backend/pkg/logger"
	"github.com/angelmondragon/ovenly-backend/pkg/messaging"
	"github.com/angelmondragon/ovenly-backend/pkg/metrics"
	"github.com/angelmondragon/ovenly-backend/pkg/migrate"
	"github.com/angelmondragon/ovenly-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
		Env:         cfg.App.Env,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api exited", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	deps := routes.Deps{
		Config: cfg,
		Logger: logg,
		Health: controllers.Dependencies{"database": dbClient},
	}

	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		deps.Health["redis"] = redisClient
		deps.Idempotency = redisClient
		deps.RateLimiter = redisClient
	} else {
		logg.Warn(ctx, "redis disabled; idempotency and rate limiting are off")
	}

	notificationRepo := notifications.NewRepository(dbClient.DB())
	var publisher notifications.Publisher
	if cfg.Kafka.Enabled() {
		producer, err := messaging.NewProducer(cfg.Kafka)
		if err != nil {
			return err
		}
		defer func() {
			if err := producer.Close(); err != nil {
				logg.Error(context.Background(), "error closing kafka producer", err)
			}
		}()
		publisher = producer
		logg.Info(logg.WithField(ctx, "topic", producer.Topic()), "kafka notifications enabled")
	}
	dispatcher, err := notifications.NewDispatcher(notificationRepo, publisher)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	deps.Registry = registry
	deps.HTTPMetrics = metrics.NewHTTPMetrics(registry)
	orderMetrics := metrics.NewOrderMetrics(registry)

	fees, err := checkout.NewFlatFees(cfg.Pricing)
	if err != nil {
		return err
	}

	conn := dbClient.DB()
	products := catalog.NewRepository(conn)
	cartRepo := cart.NewRepository(conn)
	orderRepo := orders.NewRepository(conn)
	vendorDirectory := vendors.NewRepository(conn)
	ledger := stock.NewLedger(conn)

	if deps.Cart, err = cart.NewService(cartRepo, dbClient, products); err != nil {
		return err
	}
	if deps.Checkout, err = checkout.NewService(checkout.Deps{
		Tx:        dbClient,
		Carts:     cartRepo,
		Orders:    orderRepo,
		Products:  products,
		Addresses: address.NewRepository(conn),
		Vendors:   vendorDirectory,
		Stock:     ledger,
		Fees:      fees,
		Notifier:  dispatcher,
		Metrics:   orderMetrics,
		Logger:    logg,
	}); err != nil {
		return err
	}
	if deps.Orders, err = orders.NewService(orders.Deps{
		Repo:     orderRepo,
		Tx:       dbClient,
		Vendors:  vendorDirectory,
		Stock:    ledger,
		Notifier: dispatcher,
		Metrics:  orderMetrics,
		Logger:   logg,
	}); err != nil {
		return err
	}
	if deps.Notifications, err = notifications.NewService(notificationRepo); err != nil {
		return err
	}

	server := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           routes.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(logg.WithField(ctx, "port", cfg.App.Port), "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logg.Info(context.Background(), "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
