package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lurkingpods/backend/internal/domain"
	"github.com/lurkingpods/backend/internal/storage"
)

// fakeStore is an in-memory Store for handler tests.
type fakeStore struct {
	mu            sync.Mutex
	users         map[string]*domain.User
	categories    map[string]*domain.Category
	podcasts      map[string]*domain.Podcast
	subscriptions map[string]*domain.Subscription
	jobs          map[string]*domain.GenerationJob
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:         make(map[string]*domain.User),
		categories:    make(map[string]*domain.Category),
		podcasts:      make(map[string]*domain.Podcast),
		subscriptions: make(map[string]*domain.Subscription),
		jobs:          make(map[string]*domain.GenerationJob),
	}
}

func (s *fakeStore) CreateUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *fakeStore) GetUserByID(_ context.Context, userID string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (s *fakeStore) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *fakeStore) UpdateUserPreferences(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *fakeStore) UpdateUserSubscription(_ context.Context, userID string, status domain.SubscriptionStatus, subType sql.NullString, endDate sql.NullTime) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.SubscriptionStatus = status
	user.SubscriptionType = subType
	user.SubscriptionEndDate = endDate
	return nil
}

func (s *fakeStore) ListActiveCategories(_ context.Context) ([]domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Category
	for _, c := range s.categories {
		if c.IsActive {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (s *fakeStore) GetCategoryByID(_ context.Context, categoryID string) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[categoryID]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	clone := *c
	return &clone, nil
}

func (s *fakeStore) CreateCategory(_ context.Context, category *domain.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *category
	s.categories[category.ID] = &clone
	return nil
}

func (s *fakeStore) CountActiveCategories(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, c := range s.categories {
		if c.IsActive {
			count++
		}
	}
	return count, nil
}

func (s *fakeStore) GetPodcastByID(_ context.Context, podcastID string) (*domain.Podcast, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.podcasts[podcastID]
	if !ok {
		return nil, domain.ErrPodcastNotFound
	}
	clone := *p
	return &clone, nil
}

func (s *fakeStore) ListPodcastsByCategory(_ context.Context, categoryID string, language domain.Language) ([]domain.Podcast, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Podcast
	for _, p := range s.podcasts {
		if p.CategoryID == categoryID && p.Language == language {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *fakeStore) GetDailyMix(_ context.Context, language domain.Language, limit int) ([]domain.Podcast, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Podcast
	for _, p := range s.podcasts {
		if p.Language == language && len(out) < limit {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *fakeStore) IncrementPlayCount(_ context.Context, podcastID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.podcasts[podcastID]
	if !ok {
		return 0, domain.ErrPodcastNotFound
	}
	p.PlayCount++
	return p.PlayCount, nil
}

func (s *fakeStore) SetFeatured(_ context.Context, podcastID string, featured bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.podcasts[podcastID]
	if !ok {
		return domain.ErrPodcastNotFound
	}
	p.IsFeatured = featured
	return nil
}

func (s *fakeStore) DeleteExpiredPodcasts(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int64
	for id, p := range s.podcasts {
		if p.IsExpired(now) {
			delete(s.podcasts, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *fakeStore) CountPodcasts(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.podcasts), nil
}

func (s *fakeStore) CreateSubscription(_ context.Context, sub *domain.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *sub
	s.subscriptions[sub.UserID] = &clone
	return nil
}

func (s *fakeStore) GetLatestSubscriptionByUserID(_ context.Context, userID string) (*domain.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subscriptions[userID]
	if !ok {
		return nil, domain.ErrSubscriptionNotFound
	}
	clone := *sub
	return &clone, nil
}

func (s *fakeStore) CancelSubscription(_ context.Context, subscriptionID string, now time.Time) (*domain.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subscriptions {
		if sub.ID == subscriptionID {
			sub.Status = domain.SubscriptionStatusCancelled
			sub.CancelledAt = sql.NullTime{Time: now, Valid: true}
			clone := *sub
			return &clone, nil
		}
	}
	return nil, domain.ErrSubscriptionNotFound
}

func (s *fakeStore) CreateJob(_ context.Context, job *domain.GenerationJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *job
	s.jobs[job.ID] = &clone
	return nil
}

func (s *fakeStore) GetJobByID(_ context.Context, jobID string) (*domain.GenerationJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	clone := *job
	return &clone, nil
}

func (s *fakeStore) ListJobsByStatus(_ context.Context, status domain.JobStatus) ([]domain.GenerationJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.GenerationJob
	for _, job := range s.jobs {
		if job.Status == status {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (s *fakeStore) GetJobStats(_ context.Context) (*storage.JobStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := &storage.JobStats{}
	for _, job := range s.jobs {
		stats.TotalJobs++
		switch job.Status {
		case domain.JobStatusPending:
			stats.PendingJobs++
		case domain.JobStatusGenerating:
			stats.GeneratingJobs++
		case domain.JobStatusCompleted:
			stats.CompletedJobs++
		case domain.JobStatusFailed:
			stats.FailedJobs++
		}
	}
	return stats, nil
}

// fakePublisher records enqueued job IDs.
type fakePublisher struct {
	mu        sync.Mutex
	published []string
	err       error
}

func (p *fakePublisher) PublishJob(_ context.Context, jobID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, jobID)
	return nil
}

func testDeps(store *fakeStore, publisher *fakePublisher) *Dependencies {
	return &Dependencies{
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Store:      store,
		Publisher:  publisher,
		MaxRetries: 3,
	}
}

// setupRouter wires every handler route the way the API service does, with
// an optional pre-authenticated user in place of the auth middleware.
func setupRouter(deps *Dependencies, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if userID != "" {
		r.Use(func(c *gin.Context) {
			c.Set(ContextUserIDKey, userID)
		})
	}

	authHandler := NewAuthHandler(deps)
	contentHandler := NewContentHandler(deps)
	userHandler := NewUserHandler(deps)
	subscriptionHandler := NewSubscriptionHandler(deps)
	adminHandler := NewAdminHandler(deps)

	r.POST("/auth/register", authHandler.Register)
	r.POST("/auth/login", authHandler.Login)
	r.GET("/content/daily-mix", contentHandler.DailyMix)
	r.GET("/content/categories", contentHandler.ListCategories)
	r.GET("/content/categories/:category_id/podcasts", contentHandler.ListCategoryPodcasts)
	r.GET("/content/podcasts/:podcast_id", contentHandler.GetPodcast)
	r.POST("/content/podcasts/:podcast_id/play", contentHandler.RecordPlay)
	r.GET("/users/me", userHandler.Me)
	r.PUT("/users/me/preferences", userHandler.UpdatePreferences)
	r.GET("/subscriptions/status", subscriptionHandler.Status)
	r.GET("/subscriptions/prices", subscriptionHandler.Prices)
	r.POST("/subscriptions/purchase", subscriptionHandler.Purchase)
	r.POST("/subscriptions/cancel", subscriptionHandler.Cancel)
	r.POST("/admin/generate-content", adminHandler.GenerateContent)
	r.GET("/admin/jobs", adminHandler.ListJobs)
	r.GET("/admin/jobs/:job_id", adminHandler.GetJob)
	r.POST("/admin/jobs/:job_id/retry", adminHandler.RetryJob)
	r.DELETE("/admin/content/expired", adminHandler.CleanupExpired)
	r.GET("/admin/stats", adminHandler.Stats)
	r.POST("/admin/categories", adminHandler.CreateCategory)
	r.PUT("/admin/podcasts/:podcast_id/featured", adminHandler.SetFeatured)

	return r
}

func doRequest(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response body: %v (body %q)", err, w.Body.String())
	}
	return out
}

func seedCategory(t *testing.T, store *fakeStore) *domain.Category {
	t.Helper()
	category, err := domain.NewCategory(domain.CreateCategoryParams{
		Name:          "technology",
		DisplayNameEN: "Technology",
		DisplayNameTR: "Teknoloji",
		ColorHex:      "#1A2B3C",
	})
	if err != nil {
		t.Fatalf("seed category: %v", err)
	}
	if err := store.CreateCategory(context.Background(), category); err != nil {
		t.Fatalf("seed category: %v", err)
	}
	return category
}

func seedPodcast(t *testing.T, store *fakeStore, categoryID string, language domain.Language) *domain.Podcast {
	t.Helper()
	now := time.Now().UTC()
	podcast := &domain.Podcast{
		ID:             uuid.New().String(),
		CategoryID:     categoryID,
		Language:       language,
		Title:          "Daily Tech Briefing",
		ScriptContent:  "Speaker 1: Hello and welcome to the show.\nSpeaker 2: Glad to be here.",
		AudioFileURL:   "https://cdn.example.com/audio.mp3",
		AudioDuration:  60,
		GenerationDate: now,
		CreatedAt:      now,
		ExpiresAt:      now.Add(7 * 24 * time.Hour),
		QualityScore:   0.9,
	}
	store.mu.Lock()
	store.podcasts[podcast.ID] = podcast
	store.mu.Unlock()
	return podcast
}
