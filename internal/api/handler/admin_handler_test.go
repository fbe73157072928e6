package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lurkingpods/backend/internal/api/dto"
	"github.com/lurkingpods/backend/internal/domain"
)

func TestGenerateContent(t *testing.T) {
	store := newFakeStore()
	category := seedCategory(t, store)
	publisher := &fakePublisher{}

	r := setupRouter(testDeps(store, publisher), "")

	t.Run("enqueues a pending job", func(t *testing.T) {
		w := doRequest(t, r, http.MethodPost, "/admin/generate-content", dto.GenerateContentRequest{
			CategoryID: category.ID,
			Language:   "en",
		})
		require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

		body := decodeBody(t, w)
		jobID, ok := body["id"].(string)
		require.True(t, ok)
		assert.Equal(t, "pending", body["status"])

		job, err := store.GetJobByID(context.Background(), jobID)
		require.NoError(t, err)
		assert.Equal(t, domain.JobStatusPending, job.Status)
		assert.Equal(t, 3, job.MaxRetries)

		require.Len(t, publisher.published, 1)
		assert.Equal(t, jobID, publisher.published[0])
	})

	t.Run("unknown category", func(t *testing.T) {
		w := doRequest(t, r, http.MethodPost, "/admin/generate-content", dto.GenerateContentRequest{
			CategoryID: "2b8ffbd1-4081-4c9d-a04c-5d37824fe230",
			Language:   "en",
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unknown language", func(t *testing.T) {
		w := doRequest(t, r, http.MethodPost, "/admin/generate-content", dto.GenerateContentRequest{
			CategoryID: category.ID,
			Language:   "de",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestListJobs(t *testing.T) {
	store := newFakeStore()
	category := seedCategory(t, store)

	pending := domain.NewGenerationJob(category.ID, domain.LanguageEN, 3)
	failed := domain.NewGenerationJob(category.ID, domain.LanguageTR, 3)
	failed.Status = domain.JobStatusFailed
	failed.RetryCount = 1
	require.NoError(t, store.CreateJob(context.Background(), pending))
	require.NoError(t, store.CreateJob(context.Background(), failed))

	r := setupRouter(testDeps(store, &fakePublisher{}), "")

	t.Run("defaults to failed jobs", func(t *testing.T) {
		w := doRequest(t, r, http.MethodGet, "/admin/jobs", nil)
		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, "failed", body["status"])
		assert.Len(t, body["jobs"], 1)
	})

	t.Run("filter by status", func(t *testing.T) {
		w := doRequest(t, r, http.MethodGet, "/admin/jobs?status=pending", nil)
		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		assert.Len(t, body["jobs"], 1)
	})

	t.Run("unknown status", func(t *testing.T) {
		w := doRequest(t, r, http.MethodGet, "/admin/jobs?status=stalled", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRetryJob(t *testing.T) {
	store := newFakeStore()
	category := seedCategory(t, store)
	publisher := &fakePublisher{}

	r := setupRouter(testDeps(store, publisher), "")

	t.Run("failed job with budget left", func(t *testing.T) {
		job := domain.NewGenerationJob(category.ID, domain.LanguageEN, 3)
		job.Status = domain.JobStatusFailed
		job.RetryCount = 1
		require.NoError(t, store.CreateJob(context.Background(), job))

		w := doRequest(t, r, http.MethodPost, "/admin/jobs/"+job.ID+"/retry", nil)
		require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

		require.Len(t, publisher.published, 1)
		assert.Equal(t, job.ID, publisher.published[0])
	})

	t.Run("exhausted budget", func(t *testing.T) {
		job := domain.NewGenerationJob(category.ID, domain.LanguageEN, 3)
		job.Status = domain.JobStatusFailed
		job.RetryCount = 3
		require.NoError(t, store.CreateJob(context.Background(), job))

		w := doRequest(t, r, http.MethodPost, "/admin/jobs/"+job.ID+"/retry", nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("completed job is not retryable", func(t *testing.T) {
		job := domain.NewGenerationJob(category.ID, domain.LanguageEN, 3)
		job.Status = domain.JobStatusCompleted
		require.NoError(t, store.CreateJob(context.Background(), job))

		w := doRequest(t, r, http.MethodPost, "/admin/jobs/"+job.ID+"/retry", nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("unknown job", func(t *testing.T) {
		w := doRequest(t, r, http.MethodPost, "/admin/jobs/2b8ffbd1-4081-4c9d-a04c-5d37824fe230/retry", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCleanupExpired(t *testing.T) {
	store := newFakeStore()
	category := seedCategory(t, store)
	seedPodcast(t, store, category.ID, domain.LanguageEN)

	expired := seedPodcast(t, store, category.ID, domain.LanguageEN)
	store.mu.Lock()
	store.podcasts[expired.ID].ExpiresAt = time.Now().UTC().Add(-time.Hour)
	store.mu.Unlock()

	r := setupRouter(testDeps(store, &fakePublisher{}), "")

	w := doRequest(t, r, http.MethodDelete, "/admin/content/expired", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decodeBody(t, w)["deleted"])

	count, err := store.CountPodcasts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStats(t *testing.T) {
	store := newFakeStore()
	category := seedCategory(t, store)
	seedPodcast(t, store, category.ID, domain.LanguageEN)

	pending := domain.NewGenerationJob(category.ID, domain.LanguageEN, 3)
	failed := domain.NewGenerationJob(category.ID, domain.LanguageTR, 3)
	failed.Status = domain.JobStatusFailed
	require.NoError(t, store.CreateJob(context.Background(), pending))
	require.NoError(t, store.CreateJob(context.Background(), failed))

	r := setupRouter(testDeps(store, &fakePublisher{}), "")

	w := doRequest(t, r, http.MethodGet, "/admin/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	jobs, ok := body["jobs"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(2), jobs["total"])
	assert.Equal(t, float64(1), jobs["pending"])
	assert.Equal(t, float64(1), jobs["failed"])
	assert.Equal(t, float64(1), body["podcasts"])
	assert.Equal(t, float64(1), body["active_categories"])
}

func TestCreateCategory(t *testing.T) {
	store := newFakeStore()
	r := setupRouter(testDeps(store, &fakePublisher{}), "")

	t.Run("valid category", func(t *testing.T) {
		w := doRequest(t, r, http.MethodPost, "/admin/categories", dto.CreateCategoryRequest{
			Name:          "science",
			DisplayNameEN: "Science",
			DisplayNameTR: "Bilim",
			ColorHex:      "#00FF00",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		count, err := store.CountActiveCategories(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("bad color", func(t *testing.T) {
		w := doRequest(t, r, http.MethodPost, "/admin/categories", dto.CreateCategoryRequest{
			Name:          "science",
			DisplayNameEN: "Science",
			DisplayNameTR: "Bilim",
			ColorHex:      "green",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSetFeatured(t *testing.T) {
	store := newFakeStore()
	category := seedCategory(t, store)
	podcast := seedPodcast(t, store, category.ID, domain.LanguageEN)

	r := setupRouter(testDeps(store, &fakePublisher{}), "")

	w := doRequest(t, r, http.MethodPut, "/admin/podcasts/"+podcast.ID+"/featured", map[string]any{
		"featured": true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	stored, err := store.GetPodcastByID(context.Background(), podcast.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsFeatured)
}
