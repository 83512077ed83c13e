package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/ovenly-backend/internal/cron"
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

func main() {
	once := flag.String("job", "", "run one named job (order-expiry|notification-cleanup) and exit")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
		Env:         cfg.App.Env,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg, *once); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(context.Background(), "cron worker shutting down gracefully")
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger, once string) error {
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

	var lock cron.Lock = &cron.LocalLock{}
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
		if lock, err = cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), 0); err != nil {
			return err
		}
	} else {
		logg.Warn(ctx, "redis disabled; cron lock is process-local")
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
	}
	dispatcher, err := notifications.NewDispatcher(notificationRepo, publisher)
	if err != nil {
		return err
	}

	jobMetrics := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	orderMetrics := metrics.NewOrderMetrics(prometheus.DefaultRegisterer)

	conn := dbClient.DB()
	expirer, err := orders.NewExpirer(orders.Deps{
		Repo:     orders.NewRepository(conn),
		Tx:       dbClient,
		Vendors:  vendors.NewRepository(conn),
		Stock:    stock.NewLedger(conn),
		Notifier: dispatcher,
		Metrics:  orderMetrics,
		Logger:   logg,
	})
	if err != nil {
		return err
	}

	expiryJob, err := cron.NewOrderExpiryJob(cron.OrderExpiryJobParams{
		Logger:  logg,
		Expirer: expirer,
		Metrics: jobMetrics,
		TTL:     cfg.Cron.PendingOrderTTL,
	})
	if err != nil {
		return err
	}
	cleanupJob, err := cron.NewNotificationCleanupJob(cron.NotificationCleanupJobParams{
		Logger:     logg,
		Repository: notificationRepo,
		Metrics:    jobMetrics,
		Retention:  time.Duration(cfg.Cron.NotificationRetentionDays) * 24 * time.Hour,
	})
	if err != nil {
		return err
	}

	registry, err := cron.NewRegistry(expiryJob, cleanupJob)
	if err != nil {
		return err
	}
	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  jobMetrics,
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		return err
	}

	if once != "" {
		return service.RunOnce(logg.WithField(ctx, "job", once), once)
	}

	ctx = logg.WithFields(ctx, map[string]any{"interval": cfg.Cron.Interval.String()})
	logg.Info(ctx, "starting cron worker")
	return service.Run(ctx)
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return redis.LockKey("cron-worker:" + env)
}
