package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from JobStatus
		to   JobStatus
		want bool
	}{
		{name: "pending to generating", from: JobStatusPending, to: JobStatusGenerating, want: true},
		{name: "pending to failed", from: JobStatusPending, to: JobStatusFailed, want: true},
		{name: "generating to completed", from: JobStatusGenerating, to: JobStatusCompleted, want: true},
		{name: "generating to failed", from: JobStatusGenerating, to: JobStatusFailed, want: true},
		{name: "failed to pending", from: JobStatusFailed, to: JobStatusPending, want: true},
		{name: "pending to completed", from: JobStatusPending, to: JobStatusCompleted, want: false},
		{name: "completed is terminal", from: JobStatusCompleted, to: JobStatusPending, want: false},
		{name: "completed to generating", from: JobStatusCompleted, to: JobStatusGenerating, want: false},
		{name: "generating to pending", from: JobStatusGenerating, to: JobStatusPending, want: false},
		{name: "failed to completed", from: JobStatusFailed, to: JobStatusCompleted, want: false},
		{name: "no self transition", from: JobStatusPending, to: JobStatusPending, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestParseJobStatus(t *testing.T) {
	for _, valid := range []string{"pending", "generating", "completed", "failed"} {
		status, err := ParseJobStatus(valid)
		require.NoError(t, err)
		assert.Equal(t, JobStatus(valid), status)
	}

	_, err := ParseJobStatus("running")
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "status", verr.Field)
}

func TestNewGenerationJob(t *testing.T) {
	job := NewGenerationJob("c1", LanguageEN, 0)

	assert.NotEmpty(t, job.ID)
	assert.Equal(t, JobStatusPending, job.Status)
	assert.Equal(t, 0, job.RetryCount)
	assert.Equal(t, DefaultMaxRetries, job.MaxRetries)
	assert.False(t, job.CompletedAt.Valid)
	assert.False(t, job.GeneratedPodcastID.Valid)

	job = NewGenerationJob("c1", LanguageTR, 5)
	assert.Equal(t, 5, job.MaxRetries)
}

func TestGenerationJob_MarkStarted(t *testing.T) {
	now := time.Now().UTC()

	job := NewGenerationJob("c1", LanguageEN, 3)
	require.NoError(t, job.MarkStarted(now))
	assert.Equal(t, JobStatusGenerating, job.Status)
	assert.Equal(t, now, job.StartedAt)
	assert.Equal(t, 0, job.RetryCount)

	// A completed job must reject re-processing and stay unmodified.
	completed := NewGenerationJob("c1", LanguageEN, 3)
	require.NoError(t, completed.MarkStarted(now))
	require.NoError(t, completed.MarkCompleted("p1", now))

	err := completed.MarkStarted(now)
	require.Error(t, err)
	var terr *TransitionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, JobStatusCompleted, terr.From)
	assert.Equal(t, JobStatusGenerating, terr.To)
	assert.Equal(t, JobStatusCompleted, completed.Status)
}

func TestGenerationJob_MarkCompleted(t *testing.T) {
	now := time.Now().UTC()

	job := NewGenerationJob("c1", LanguageEN, 3)
	require.NoError(t, job.MarkStarted(now))
	require.NoError(t, job.MarkCompleted("podcast-1", now))

	assert.Equal(t, JobStatusCompleted, job.Status)
	assert.True(t, job.CompletedAt.Valid)
	require.True(t, job.GeneratedPodcastID.Valid)
	assert.Equal(t, "podcast-1", job.GeneratedPodcastID.String)

	// generated_podcast_id set iff completed
	failed := NewGenerationJob("c1", LanguageEN, 3)
	require.NoError(t, failed.MarkStarted(now))
	require.NoError(t, failed.MarkFailed("boom", now))
	assert.False(t, failed.GeneratedPodcastID.Valid)
}

func TestGenerationJob_MarkFailed_CountsEveryAttempt(t *testing.T) {
	now := time.Now().UTC()
	job := NewGenerationJob("c1", LanguageEN, 3)

	for i := 1; i <= 3; i++ {
		require.NoError(t, job.MarkStarted(now))
		require.NoError(t, job.MarkFailed("provider exploded", now))
		assert.Equal(t, i, job.RetryCount)
		assert.True(t, job.CompletedAt.Valid)
		require.True(t, job.ErrorMessage.Valid)
		assert.Equal(t, "provider exploded", job.ErrorMessage.String)
		assert.LessOrEqual(t, job.RetryCount, job.MaxRetries)

		if i < 3 {
			require.NoError(t, job.ResetForRetry(now))
		}
	}

	assert.Equal(t, 3, job.RetryCount)
	assert.False(t, job.CanRetry())
}

func TestGenerationJob_ResetForRetry(t *testing.T) {
	now := time.Now().UTC()
	job := NewGenerationJob("c1", LanguageEN, 3)
	require.NoError(t, job.MarkStarted(now))
	require.NoError(t, job.MarkFailed("boom", now))

	later := now.Add(time.Minute)
	require.NoError(t, job.ResetForRetry(later))

	assert.Equal(t, JobStatusPending, job.Status)
	assert.Equal(t, later, job.StartedAt)
	assert.False(t, job.CompletedAt.Valid)
	assert.False(t, job.ErrorMessage.Valid)
	// failure count survives the reset
	assert.Equal(t, 1, job.RetryCount)
}

func TestGenerationJob_CanRetry(t *testing.T) {
	now := time.Now().UTC()

	job := NewGenerationJob("c1", LanguageEN, 3)
	assert.False(t, job.CanRetry(), "pending job is not retryable")

	require.NoError(t, job.MarkStarted(now))
	assert.False(t, job.CanRetry(), "generating job is not retryable")

	require.NoError(t, job.MarkFailed("boom", now))
	assert.True(t, job.CanRetry())

	job.RetryCount = job.MaxRetries
	assert.False(t, job.CanRetry(), "exhausted budget is not retryable")
}
