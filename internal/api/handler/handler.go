// Package handler implements the HTTP endpoints of the API service.
package handler

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lurkingpods/backend/internal/domain"
	"github.com/lurkingpods/backend/internal/storage"
)

// Store is the storage surface the handlers run against.
type Store interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUserPreferences(ctx context.Context, user *domain.User) error
	UpdateUserSubscription(ctx context.Context, userID string, status domain.SubscriptionStatus, subType sql.NullString, endDate sql.NullTime) error

	ListActiveCategories(ctx context.Context) ([]domain.Category, error)
	GetCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error)
	CreateCategory(ctx context.Context, category *domain.Category) error
	CountActiveCategories(ctx context.Context) (int, error)

	GetPodcastByID(ctx context.Context, podcastID string) (*domain.Podcast, error)
	ListPodcastsByCategory(ctx context.Context, categoryID string, language domain.Language) ([]domain.Podcast, error)
	GetDailyMix(ctx context.Context, language domain.Language, limit int) ([]domain.Podcast, error)
	IncrementPlayCount(ctx context.Context, podcastID string) (int, error)
	SetFeatured(ctx context.Context, podcastID string, featured bool) error
	DeleteExpiredPodcasts(ctx context.Context, now time.Time) (int64, error)
	CountPodcasts(ctx context.Context) (int, error)

	CreateSubscription(ctx context.Context, sub *domain.Subscription) error
	GetLatestSubscriptionByUserID(ctx context.Context, userID string) (*domain.Subscription, error)
	CancelSubscription(ctx context.Context, subscriptionID string, now time.Time) (*domain.Subscription, error)

	CreateJob(ctx context.Context, job *domain.GenerationJob) error
	GetJobByID(ctx context.Context, jobID string) (*domain.GenerationJob, error)
	ListJobsByStatus(ctx context.Context, status domain.JobStatus) ([]domain.GenerationJob, error)
	GetJobStats(ctx context.Context) (*storage.JobStats, error)
}

// JobPublisher enqueues generation jobs for the worker.
type JobPublisher interface {
	PublishJob(ctx context.Context, jobID string) error
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger     *slog.Logger
	Store      Store
	Publisher  JobPublisher
	MaxRetries int
}

// ContextUserIDKey is the gin context key the auth middleware stores the
// authenticated user ID under.
const ContextUserIDKey = "auth_user_id"

// AuthedUserID returns the authenticated user ID set by the auth middleware.
func AuthedUserID(c *gin.Context) string {
	return c.GetString(ContextUserIDKey)
}

// RequireAccess blocks content routes for users whose trial and subscription
// have both lapsed.
func RequireAccess(deps *Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := deps.Store.GetUserByID(c.Request.Context(), AuthedUserID(c))
		if err != nil {
			respondError(c, deps.Logger, err)
			c.Abort()
			return
		}
		if !user.HasAccess(time.Now()) {
			c.JSON(http.StatusForbidden, gin.H{"error": "subscription required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// respondError maps a domain error to an HTTP status and writes the response.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	var validationErr *domain.ValidationError
	var transitionErr *domain.TransitionError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})

	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})

	case errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrJobNotRetryable),
		errors.As(err, &transitionErr):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, domain.ErrJobNotFound),
		errors.Is(err, domain.ErrPodcastNotFound),
		errors.Is(err, domain.ErrCategoryNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrSubscriptionNotFound),
		errors.Is(err, domain.ErrNotificationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	default:
		logger.Error("Request failed",
			slog.String("path", c.Request.URL.Path),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
