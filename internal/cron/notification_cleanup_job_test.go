package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/ovenly-backend/pkg/logger"
	"github.com/angelmondragon/ovenly-backend/pkg/metrics"
)

type purgeCall struct {
	cutoff time.Time
}

type fakePurger struct {
	calls  []purgeCall
	purged int64
	err    error
}

func (f *fakePurger) DeleteReadBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.calls = append(f.calls, purgeCall{cutoff: cutoff})
	return f.purged, f.err
}

func TestNotificationCleanupJob(t *testing.T) {
	now := time.Date(2026, 5, 20, 8, 30, 0, 0, time.FixedZone("AST", 3*60*60))

	tests := []struct {
		name       string
		retention  time.Duration
		wantCutoff time.Time
	}{
		{name: "default retention", wantCutoff: now.UTC().AddDate(0, 0, -30)},
		{name: "custom retention", retention: 72 * time.Hour, wantCutoff: now.UTC().Add(-72 * time.Hour)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			purger := &fakePurger{purged: 7}
			reg := prometheus.NewRegistry()
			jobMetrics := metrics.NewCronJobMetrics(reg)

			job, err := NewNotificationCleanupJob(NotificationCleanupJobParams{
				Logger:     logger.Nop(),
				Repository: purger,
				Metrics:    jobMetrics,
				Retention:  tc.retention,
			})
			require.NoError(t, err)
			job.(*notificationCleanupJob).now = func() time.Time { return now }

			require.NoError(t, job.Run(context.Background()))
			require.Len(t, purger.calls, 1)
			assert.True(t, purger.calls[0].cutoff.Equal(tc.wantCutoff), "cutoff %s", purger.calls[0].cutoff)
			assert.Equal(t, time.UTC, purger.calls[0].cutoff.Location())
			assert.Equal(t, 7.0, affectedRows(t, reg, "notification-cleanup"))
		})
	}
}

func affectedRows(t *testing.T, reg *prometheus.Registry, job string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != "cron_job_rows_affected_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "job" && label.GetValue() == job {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestNotificationCleanupJobWrapsRepositoryErrors(t *testing.T) {
	cause := errors.New("connection reset")
	job, err := NewNotificationCleanupJob(NotificationCleanupJobParams{
		Logger:     logger.Nop(),
		Repository: &fakePurger{err: cause},
	})
	require.NoError(t, err)

	err = job.Run(context.Background())
	assert.ErrorIs(t, err, cause)
	assert.ErrorContains(t, err, "purge read notifications")
}

func TestNewNotificationCleanupJobValidatesParams(t *testing.T) {
	_, err := NewNotificationCleanupJob(NotificationCleanupJobParams{Repository: &fakePurger{}})
	assert.Error(t, err)
	_, err = NewNotificationCleanupJob(NotificationCleanupJobParams{Logger: logger.Nop()})
	assert.Error(t, err)
}
