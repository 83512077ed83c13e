package notifications

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/angelmondragon/ovenly-backend/pkg/db/models"
	"github.com/angelmondragon/ovenly-backend/pkg/enums"
)

type recordingPublisher struct {
	keys []string
	msgs []Message
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, key string, event any) error {
	if p.err != nil {
		return p.err
	}
	p.keys = append(p.keys, key)
	p.msgs = append(p.msgs, event.(Message))
	return nil
}

func TestDispatcherPersistsAndPublishes(t *testing.T) {
	repo := &recordingRepo{}
	pub := &recordingPublisher{}
	d, err := NewDispatcher(repo, pub)
	require.NoError(t, err)

	order := &models.Order{ID: uuid.New(), OrderStatus: enums.OrderStatusPreparing}
	user := uuid.New()
	require.NoError(t, d.Notify(context.Background(), user, OrderStatusUpdated(order)))

	require.Len(t, repo.created, 1)
	row := repo.created[0]
	assert.Equal(t, user, row.UserID)
	assert.Equal(t, enums.NotificationTypeOrderStatusUpdated, row.Type)
	assert.Contains(t, row.MessageEN, "being prepared")
	assert.Contains(t, row.MessageAR, "قيد التحضير")
	require.NotNil(t, row.OrderID)
	assert.Equal(t, order.ID, *row.OrderID)

	require.Len(t, pub.msgs, 1)
	assert.Equal(t, order.ID.String(), pub.keys[0])
	assert.Equal(t, row.ID, pub.msgs[0].ID)
	assert.False(t, pub.msgs[0].CreatedAt.IsZero())
}

func TestDispatcherCombinesFailures(t *testing.T) {
	repo := &recordingRepo{err: errors.New("db down")}
	pub := &recordingPublisher{err: errors.New("broker down")}
	d, err := NewDispatcher(repo, pub)
	require.NoError(t, err)

	err = d.Notify(context.Background(), uuid.New(), OrderCreated(&models.Order{ID: uuid.New()}))
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
}

func TestDispatcherWithoutPublisher(t *testing.T) {
	repo := &recordingRepo{}
	d, err := NewDispatcher(repo, nil)
	require.NoError(t, err)

	require.NoError(t, d.Notify(context.Background(), uuid.New(), OrderReceived(&models.Order{ID: uuid.New()})))
	assert.Len(t, repo.created, 1)

	require.NoError(t, d.Notify(context.Background(), uuid.Nil, OrderReceived(&models.Order{ID: uuid.New()})))
	assert.Len(t, repo.created, 1, "nil recipients are skipped")

	_, err = NewDispatcher(nil, nil)
	assert.Error(t, err)
}
