package scheduler

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lurkingpods/backend/internal/domain"
)

type fakeStore struct {
	categories []domain.Category
	createdErr error
	created    []*domain.GenerationJob

	deleted    int64
	deletedErr error

	due       []domain.Notification
	delivered []domain.Notification

	notifiable []domain.User
	scheduled  []*domain.Notification
}

func (s *fakeStore) ListActiveCategories(context.Context) ([]domain.Category, error) {
	return s.categories, nil
}

func (s *fakeStore) CreateJob(_ context.Context, job *domain.GenerationJob) error {
	if s.createdErr != nil {
		return s.createdErr
	}
	s.created = append(s.created, job)
	return nil
}

func (s *fakeStore) DeleteExpiredPodcasts(context.Context, time.Time) (int64, error) {
	return s.deleted, s.deletedErr
}

func (s *fakeStore) ListNotifiableUsers(context.Context) ([]domain.User, error) {
	return s.notifiable, nil
}

func (s *fakeStore) CreateNotification(_ context.Context, n *domain.Notification) error {
	s.scheduled = append(s.scheduled, n)
	return nil
}

func (s *fakeStore) ListDueNotifications(context.Context, time.Time) ([]domain.Notification, error) {
	return s.due, nil
}

func (s *fakeStore) UpdateNotificationDelivery(_ context.Context, n *domain.Notification) error {
	s.delivered = append(s.delivered, *n)
	return nil
}

type fakePublisher struct {
	published []string
	err       error
}

func (p *fakePublisher) PublishJob(_ context.Context, jobID string) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, jobID)
	return nil
}

type fakeSender struct {
	failFor map[string]bool
	sent    []string
}

func (s *fakeSender) Send(_ context.Context, n *domain.Notification) error {
	if s.failFor[n.ID] {
		return errors.New("device unreachable")
	}
	s.sent = append(s.sent, n.ID)
	return nil
}

func newTestScheduler(store *fakeStore, publisher *fakePublisher, sender *fakeSender) *Scheduler {
	return New(&Config{
		Logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
		Store:             store,
		Publisher:         publisher,
		Sender:            sender,
		GenerationCron:    "0 0 * * *",
		CleanupCron:       "0 1 * * *",
		NotificationsCron: "5 0 * * *",
		MaxRetries:        3,
	})
}

func TestFanOutGeneration(t *testing.T) {
	store := &fakeStore{categories: []domain.Category{
		{ID: "cat-1", Name: "technology"},
		{ID: "cat-2", Name: "science"},
	}}
	publisher := &fakePublisher{}
	s := newTestScheduler(store, publisher, &fakeSender{})

	require.NoError(t, s.FanOutGeneration(context.Background()))

	// One job per category per language.
	require.Len(t, store.created, 4)
	require.Len(t, publisher.published, 4)

	languages := map[domain.Language]int{}
	for _, job := range store.created {
		assert.Equal(t, domain.JobStatusPending, job.Status)
		assert.Equal(t, 3, job.MaxRetries)
		languages[job.Language]++
	}
	assert.Equal(t, 2, languages[domain.LanguageEN])
	assert.Equal(t, 2, languages[domain.LanguageTR])
}

func TestFanOutGeneration_PublishFailureContinues(t *testing.T) {
	store := &fakeStore{categories: []domain.Category{{ID: "cat-1"}}}
	publisher := &fakePublisher{err: errors.New("broker down")}
	s := newTestScheduler(store, publisher, &fakeSender{})

	// Jobs are still created even when publishing fails; they stay pending
	// for a later fan-out or manual enqueue.
	require.NoError(t, s.FanOutGeneration(context.Background()))
	assert.Len(t, store.created, 2)
	assert.Empty(t, publisher.published)
}

func TestCleanupExpiredPodcasts(t *testing.T) {
	store := &fakeStore{deleted: 7}
	s := newTestScheduler(store, &fakePublisher{}, &fakeSender{})
	require.NoError(t, s.CleanupExpiredPodcasts(context.Background()))

	store.deletedErr = errors.New("db unavailable")
	require.Error(t, s.CleanupExpiredPodcasts(context.Background()))
}

func TestDispatchDueNotifications(t *testing.T) {
	store := &fakeStore{due: []domain.Notification{
		{ID: "n1", UserID: "u1", DeliveryStatus: domain.DeliveryPending},
		{ID: "n2", UserID: "u2", DeliveryStatus: domain.DeliveryPending},
	}}
	sender := &fakeSender{failFor: map[string]bool{"n2": true}}
	s := newTestScheduler(store, &fakePublisher{}, sender)

	require.NoError(t, s.DispatchDueNotifications(context.Background()))

	require.Len(t, store.delivered, 2)
	assert.Equal(t, domain.DeliverySent, store.delivered[0].DeliveryStatus)
	assert.True(t, store.delivered[0].SentAt.Valid)
	assert.Equal(t, domain.DeliveryFailed, store.delivered[1].DeliveryStatus)
	assert.False(t, store.delivered[1].SentAt.Valid)
	assert.Equal(t, []string{"n1"}, sender.sent)
}

func notifiableUser(id, notifyAt, token string) domain.User {
	user := *domain.NewUser(id+"@example.com", "$2a$10$fakehash", domain.LanguageEN)
	user.ID = id
	user.NotificationTime = notifyAt
	if token != "" {
		user.DeviceToken = sql.NullString{String: token, Valid: true}
	}
	return user
}

func TestScheduleDailyContentNotifications(t *testing.T) {
	store := &fakeStore{notifiable: []domain.User{
		notifiableUser("u1", "09:00", "token-1"),
		notifiableUser("u2", "00:05", "token-2"),
		notifiableUser("u3", "09:00", ""),
		notifiableUser("u4", "not-a-time", "token-4"),
	}}
	s := newTestScheduler(store, &fakePublisher{}, &fakeSender{})

	now := time.Date(2030, 9, 1, 0, 5, 0, 0, time.UTC)
	require.NoError(t, s.ScheduleDailyContentNotifications(context.Background(), now))

	// Users without a device or with a broken time setting are skipped.
	require.Len(t, store.scheduled, 2)

	first := store.scheduled[0]
	assert.Equal(t, "u1", first.UserID)
	assert.Equal(t, domain.NotificationDailyContent, first.Type)
	assert.Equal(t, domain.DeliveryPending, first.DeliveryStatus)
	assert.Equal(t, "token-1", first.DeviceToken)
	assert.Equal(t, time.Date(2030, 9, 1, 9, 0, 0, 0, time.UTC), first.ScheduledFor)
	assert.NotEmpty(t, first.Title(domain.LanguageTR))

	// A time equal to now rolls to the next day.
	second := store.scheduled[1]
	assert.Equal(t, "u2", second.UserID)
	assert.Equal(t, time.Date(2030, 9, 2, 0, 5, 0, 0, time.UTC), second.ScheduledFor)
}

func TestNextNotificationTime(t *testing.T) {
	now := time.Date(2030, 9, 1, 8, 30, 0, 0, time.UTC)

	at, err := nextNotificationTime(now, "09:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2030, 9, 1, 9, 0, 0, 0, time.UTC), at)

	at, err = nextNotificationTime(now, "08:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2030, 9, 2, 8, 0, 0, 0, time.UTC), at)

	_, err = nextNotificationTime(now, "25:99")
	assert.Error(t, err)
}
