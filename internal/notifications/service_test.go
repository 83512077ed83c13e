package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/ovenly-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/ovenly-backend/pkg/errors"
	"github.com/angelmondragon/ovenly-backend/pkg/pagination"
)

// recordingRepo captures the arguments the service passes down and returns
// canned results.
type recordingRepo struct {
	created []*models.Notification

	listParams listNotificationsParams
	listRows   []models.Notification
	listNext   *pagination.Cursor

	markedAt   time.Time
	markResult notificationMarkResult
	markAll    int64

	err error
}

func (r *recordingRepo) WithTx(*gorm.DB) Repository { return r }

func (r *recordingRepo) Create(_ context.Context, n *models.Notification) error {
	if r.err != nil {
		return r.err
	}
	n.ID = uuid.New()
	r.created = append(r.created, n)
	return nil
}

func (r *recordingRepo) List(_ context.Context, params listNotificationsParams) ([]models.Notification, *pagination.Cursor, error) {
	r.listParams = params
	return r.listRows, r.listNext, r.err
}

func (r *recordingRepo) MarkRead(_ context.Context, _, _ uuid.UUID, now time.Time) (notificationMarkResult, error) {
	r.markedAt = now
	return r.markResult, r.err
}

func (r *recordingRepo) MarkAllRead(_ context.Context, _ uuid.UUID, now time.Time) (int64, error) {
	r.markedAt = now
	return r.markAll, r.err
}

func (r *recordingRepo) DeleteReadBefore(context.Context, time.Time) (int64, error) { return 0, r.err }

var fixedNow = time.Date(2026, 4, 2, 9, 15, 0, 0, time.UTC)

func newTestService(t *testing.T, repo Repository) *service {
	t.Helper()
	svc, err := NewService(repo)
	require.NoError(t, err)
	s := svc.(*service)
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestListPassesFiltersAndEncodesNextCursor(t *testing.T) {
	user := uuid.New()
	next := pagination.Cursor{CreatedAt: fixedNow.Add(-time.Hour), ID: uuid.New()}
	inbound := pagination.Cursor{CreatedAt: fixedNow, ID: uuid.New()}
	repo := &recordingRepo{
		listRows: []models.Notification{{ID: uuid.New(), UserID: user}},
		listNext: &next,
	}

	result, err := newTestService(t, repo).List(context.Background(), ListParams{
		UserID:     user,
		Limit:      1,
		UnreadOnly: true,
		Cursor:     pagination.EncodeCursor(inbound),
	})
	require.NoError(t, err)

	assert.Equal(t, user, repo.listParams.UserID)
	assert.Equal(t, 1, repo.listParams.Limit)
	assert.True(t, repo.listParams.UnreadOnly)
	require.NotNil(t, repo.listParams.Cursor)
	assert.Equal(t, inbound.ID, repo.listParams.Cursor.ID)

	assert.Len(t, result.Items, 1)
	decoded, err := pagination.ParseCursor(result.Cursor)
	require.NoError(t, err)
	assert.Equal(t, next.ID, decoded.ID)
}

func TestListEmptyPageIsNotNil(t *testing.T) {
	result, err := newTestService(t, &recordingRepo{}).List(context.Background(), ListParams{UserID: uuid.New()})
	require.NoError(t, err)
	assert.NotNil(t, result.Items)
	assert.Empty(t, result.Cursor)
}

func TestServiceErrors(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name string
		repo *recordingRepo
		call func(*service) error
		code pkgerrors.Code
	}{
		{
			name: "list signed out",
			repo: &recordingRepo{},
			call: func(s *service) error { _, err := s.List(context.Background(), ListParams{}); return err },
			code: pkgerrors.CodeUnauthorized,
		},
		{
			name: "list bad cursor",
			repo: &recordingRepo{},
			call: func(s *service) error {
				_, err := s.List(context.Background(), ListParams{UserID: uuid.New(), Cursor: "bad"})
				return err
			},
			code: pkgerrors.CodeValidation,
		},
		{
			name: "list repository failure",
			repo: &recordingRepo{err: boom},
			call: func(s *service) error {
				_, err := s.List(context.Background(), ListParams{UserID: uuid.New()})
				return err
			},
			code: pkgerrors.CodeInternal,
		},
		{
			name: "mark read missing",
			repo: &recordingRepo{markResult: notificationMarkResult{Found: false}},
			call: func(s *service) error { return s.MarkRead(context.Background(), uuid.New(), uuid.New()) },
			code: pkgerrors.CodeNotFound,
		},
		{
			name: "mark read signed out",
			repo: &recordingRepo{},
			call: func(s *service) error { return s.MarkRead(context.Background(), uuid.Nil, uuid.New()) },
			code: pkgerrors.CodeUnauthorized,
		},
		{
			name: "mark all failure",
			repo: &recordingRepo{err: boom},
			call: func(s *service) error { _, err := s.MarkAllRead(context.Background(), uuid.New()); return err },
			code: pkgerrors.CodeInternal,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.call(newTestService(t, tc.repo))
			require.Error(t, err)
			assert.True(t, pkgerrors.IsCode(err, tc.code), "got %v", err)
		})
	}
}

func TestMarkReadIsIdempotentAndStampsClock(t *testing.T) {
	repo := &recordingRepo{markResult: notificationMarkResult{Found: true, Updated: false}}
	require.NoError(t, newTestService(t, repo).MarkRead(context.Background(), uuid.New(), uuid.New()))
	assert.Equal(t, fixedNow, repo.markedAt)
}

func TestMarkAllReadReturnsAffectedCount(t *testing.T) {
	repo := &recordingRepo{markAll: 3}
	count, err := newTestService(t, repo).MarkAllRead(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
	assert.Equal(t, fixedNow, repo.markedAt)
}

func TestNewServiceRequiresRepository(t *testing.T) {
	_, err := NewService(nil)
	assert.Error(t, err)
}
