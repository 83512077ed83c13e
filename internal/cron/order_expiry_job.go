package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/ovenly-backend/pkg/logger"
	"github.com/angelmondragon/ovenly-backend/pkg/metrics"
)

const (
	defaultPendingOrderTTL = 2 * time.Hour
	defaultExpiryBatch     = 200
)

// OrderExpiryJobParams configure the stale order scheduler.
type OrderExpiryJobParams struct {
	Logger  *logger.Logger
	Expirer pendingOrderExpirer
	Metrics *metrics.CronJobMetrics
	TTL     time.Duration
	Batch   int
}

type pendingOrderExpirer interface {
	ExpirePending(ctx context.Context, cutoff time.Time, limit int) (int, error)
}

// NewOrderExpiryJob builds the job that cancels orders left in
// pending_confirmation longer than TTL.
func NewOrderExpiryJob(params OrderExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Expirer == nil {
		return nil, fmt.Errorf("order expirer required")
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = defaultPendingOrderTTL
	}
	batch := params.Batch
	if batch <= 0 {
		batch = defaultExpiryBatch
	}
	return &orderExpiryJob{
		logg:    params.Logger,
		expirer: params.Expirer,
		metrics: params.Metrics,
		ttl:     ttl,
		batch:   batch,
		now:     time.Now,
	}, nil
}

type orderExpiryJob struct {
	logg    *logger.Logger
	expirer pendingOrderExpirer
	metrics *metrics.CronJobMetrics
	ttl     time.Duration
	batch   int
	now     func() time.Time
}

func (j *orderExpiryJob) Name() string { return "order-expiry" }

func (j *orderExpiryJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.ttl)
	expired, err := j.expirer.ExpirePending(ctx, cutoff, j.batch)
	j.metrics.AddAffected(j.Name(), int64(expired))

	logCtx := j.logg.WithFields(ctx, map[string]any{"cutoff": cutoff, "expired": expired})
	if err != nil {
		return fmt.Errorf("expire pending orders: %w", err)
	}
	j.logg.Info(logCtx, "order expiration loop complete")
	return nil
}
