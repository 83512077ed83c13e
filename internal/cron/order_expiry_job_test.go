package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/ovenly-backend/pkg/logger"
)

type fakeExpirer struct {
	cutoff  time.Time
	limit   int
	expired int
	err     error
}

func (f *fakeExpirer) ExpirePending(_ context.Context, cutoff time.Time, limit int) (int, error) {
	f.cutoff = cutoff
	f.limit = limit
	return f.expired, f.err
}

func TestOrderExpiryJobUsesTTLCutoff(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	expirer := &fakeExpirer{expired: 3}
	job, err := NewOrderExpiryJob(OrderExpiryJobParams{Logger: logger.Nop(), Expirer: expirer, TTL: 90 * time.Minute})
	require.NoError(t, err)
	job.(*orderExpiryJob).now = func() time.Time { return now }

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, now.Add(-90*time.Minute), expirer.cutoff)
	assert.Equal(t, defaultExpiryBatch, expirer.limit)
}

func TestOrderExpiryJobReportsPartialFailure(t *testing.T) {
	expirer := &fakeExpirer{expired: 1, err: errors.New("lock timeout")}
	job, err := NewOrderExpiryJob(OrderExpiryJobParams{Logger: logger.Nop(), Expirer: expirer})
	require.NoError(t, err)

	assert.Error(t, job.Run(context.Background()))
}

func TestNewOrderExpiryJobRequiresExpirer(t *testing.T) {
	_, err := NewOrderExpiryJob(OrderExpiryJobParams{Logger: logger.Nop()})
	assert.Error(t, err)
}
