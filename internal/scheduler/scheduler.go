// Package scheduler runs the daily cron jobs: generation fan-out, expired
// podcast cleanup and notification dispatch.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/lurkingpods/backend/internal/domain"
)

// Store is the storage surface the cron jobs run against.
type Store interface {
	ListActiveCategories(ctx context.Context) ([]domain.Category, error)
	CreateJob(ctx context.Context, job *domain.GenerationJob) error
	DeleteExpiredPodcasts(ctx context.Context, now time.Time) (int64, error)
	ListNotifiableUsers(ctx context.Context) ([]domain.User, error)
	CreateNotification(ctx context.Context, notification *domain.Notification) error
	ListDueNotifications(ctx context.Context, now time.Time) ([]domain.Notification, error)
	UpdateNotificationDelivery(ctx context.Context, notification *domain.Notification) error
}

// JobPublisher enqueues generation jobs for the worker.
type JobPublisher interface {
	PublishJob(ctx context.Context, jobID string) error
}

// NotificationSender delivers one push notification to a device.
type NotificationSender interface {
	Send(ctx context.Context, notification *domain.Notification) error
}

// Config holds scheduler dependencies and cron expressions.
type Config struct {
	Logger    *slog.Logger
	Store     Store
	Publisher JobPublisher
	Sender    NotificationSender

	GenerationCron    string
	CleanupCron       string
	NotificationsCron string
	MaxRetries        int
}

// Scheduler owns the cron runner.
type Scheduler struct {
	logger     *slog.Logger
	store      Store
	publisher  JobPublisher
	sender     NotificationSender
	maxRetries int
	cron       *cron.Cron

	generationCron    string
	cleanupCron       string
	notificationsCron string
}

// New creates a scheduler. Jobs are registered on Start.
func New(cfg *Config) *Scheduler {
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = domain.DefaultMaxRetries
	}

	return &Scheduler{
		logger:            cfg.Logger,
		store:             cfg.Store,
		publisher:         cfg.Publisher,
		sender:            cfg.Sender,
		maxRetries:        maxRetries,
		cron:              cron.New(),
		generationCron:    cfg.GenerationCron,
		cleanupCron:       cfg.CleanupCron,
		notificationsCron: cfg.NotificationsCron,
	}
}

// Start registers the cron jobs and starts the runner.
func (s *Scheduler) Start(ctx context.Context) error {
	jobs := []struct {
		name string
		spec string
		run  func(context.Context) error
	}{
		{"generation fan-out", s.generationCron, s.FanOutGeneration},
		{"expired podcast cleanup", s.cleanupCron, s.CleanupExpiredPodcasts},
		{"notification dispatch", s.notificationsCron, s.DispatchDueNotifications},
	}

	for _, job := range jobs {
		job := job
		_, err := s.cron.AddFunc(job.spec, func() {
			if err := job.run(ctx); err != nil {
				s.logger.Error("Scheduled job failed",
					slog.String("job", job.name),
					slog.String("error", err.Error()),
				)
			}
		})
		if err != nil {
			return err
		}

		s.logger.Info("Scheduled job registered",
			slog.String("job", job.name),
			slog.String("cron", job.spec),
		)
	}

	s.cron.Start()
	return nil
}

// Stop stops the cron runner and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.logger.Info("Scheduler stopped")
}

// FanOutGeneration creates and enqueues one generation job per active category
// and language. A failure on one job does not stop the fan-out.
func (s *Scheduler) FanOutGeneration(ctx context.Context) error {
	categories, err := s.store.ListActiveCategories(ctx)
	if err != nil {
		return err
	}

	languages := []domain.Language{domain.LanguageEN, domain.LanguageTR}

	var enqueued, failed int
	for _, category := range categories {
		for _, language := range languages {
			job := domain.NewGenerationJob(category.ID, language, s.maxRetries)

			if err := s.store.CreateJob(ctx, job); err != nil {
				failed++
				s.logger.Error("Failed to create generation job",
					slog.String("category_id", category.ID),
					slog.String("language", string(language)),
					slog.String("error", err.Error()),
				)
				continue
			}

			if err := s.publisher.PublishJob(ctx, job.ID); err != nil {
				failed++
				s.logger.Error("Failed to enqueue generation job",
					slog.String("job_id", job.ID),
					slog.String("error", err.Error()),
				)
				continue
			}

			enqueued++
		}
	}

	s.logger.Info("Generation fan-out finished",
		slog.Int("categories", len(categories)),
		slog.Int("enqueued", enqueued),
		slog.Int("failed", failed),
	)
	return nil
}

// CleanupExpiredPodcasts deletes podcasts past their expiry timestamp.
func (s *Scheduler) CleanupExpiredPodcasts(ctx context.Context) error {
	deleted, err := s.store.DeleteExpiredPodcasts(ctx, time.Now().UTC())
	if err != nil {
		return err
	}

	s.logger.Info("Expired podcast cleanup finished",
		slog.Int64("deleted", deleted),
	)
	return nil
}

// Daily-content notification text, both locales.
const (
	dailyContentTitleEN = "Your daily podcasts are ready"
	dailyContentTitleTR = "Günlük podcastleriniz hazır"
	dailyContentBodyEN  = "Fresh episodes are waiting in your daily mix."
	dailyContentBodyTR  = "Yeni bölümler günlük listenizde sizi bekliyor."
)

// nextNotificationTime returns the next occurrence of an HH:MM wall-clock time
// in UTC, strictly after now.
func nextNotificationTime(now time.Time, hhmm string) (time.Time, error) {
	parsed, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, err
	}

	now = now.UTC()
	at := time.Date(now.Year(), now.Month(), now.Day(), parsed.Hour(), parsed.Minute(), 0, 0, time.UTC)
	if !at.After(now) {
		at = at.Add(24 * time.Hour)
	}
	return at, nil
}

// ScheduleDailyContentNotifications creates one pending daily-content
// notification per opted-in user with a registered device, scheduled at the
// next occurrence of that user's notification time. Runs once per daily cron
// tick, so each user gets at most one notification per day.
func (s *Scheduler) ScheduleDailyContentNotifications(ctx context.Context, now time.Time) error {
	users, err := s.store.ListNotifiableUsers(ctx)
	if err != nil {
		return err
	}

	var scheduled int
	for i := range users {
		user := &users[i]
		if !user.DeviceToken.Valid || user.DeviceToken.String == "" {
			continue
		}

		at, err := nextNotificationTime(now, user.NotificationTime)
		if err != nil {
			s.logger.Error("Invalid notification time on user",
				slog.String("user_id", user.ID),
				slog.String("notification_time", user.NotificationTime),
			)
			continue
		}

		notification, err := domain.NewNotification(domain.CreateNotificationParams{
			UserID:       user.ID,
			Type:         domain.NotificationDailyContent,
			TitleEN:      dailyContentTitleEN,
			TitleTR:      dailyContentTitleTR,
			BodyEN:       dailyContentBodyEN,
			BodyTR:       dailyContentBodyTR,
			ScheduledFor: at,
			DeviceToken:  user.DeviceToken.String,
		})
		if err != nil {
			s.logger.Error("Failed to build daily notification",
				slog.String("user_id", user.ID),
				slog.String("error", err.Error()),
			)
			continue
		}

		if err := s.store.CreateNotification(ctx, notification); err != nil {
			s.logger.Error("Failed to schedule daily notification",
				slog.String("user_id", user.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		scheduled++
	}

	s.logger.Info("Daily notifications scheduled",
		slog.Int("users", len(users)),
		slog.Int("scheduled", scheduled),
	)
	return nil
}

// DispatchDueNotifications schedules the day's content notifications, then
// sends every pending notification whose scheduled time has passed and records
// the delivery outcome.
func (s *Scheduler) DispatchDueNotifications(ctx context.Context) error {
	now := time.Now().UTC()

	if err := s.ScheduleDailyContentNotifications(ctx, now); err != nil {
		s.logger.Error("Failed to schedule daily notifications",
			slog.String("error", err.Error()),
		)
	}

	due, err := s.store.ListDueNotifications(ctx, now)
	if err != nil {
		return err
	}

	var sent, failed int
	for i := range due {
		notification := &due[i]

		if err := s.sender.Send(ctx, notification); err != nil {
			notification.MarkFailed()
			failed++
			s.logger.Error("Failed to send notification",
				slog.String("notification_id", notification.ID),
				slog.String("user_id", notification.UserID),
				slog.String("error", err.Error()),
			)
		} else {
			notification.MarkSent(time.Now().UTC())
			sent++
		}

		if err := s.store.UpdateNotificationDelivery(ctx, notification); err != nil {
			s.logger.Error("Failed to record notification delivery",
				slog.String("notification_id", notification.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.Info("Notification dispatch finished",
		slog.Int("due", len(due)),
		slog.Int("sent", sent),
		slog.Int("failed", failed),
	)
	return nil
}
