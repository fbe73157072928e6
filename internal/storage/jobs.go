package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lurkingpods/backend/internal/domain"
)

const jobColumns = `
	id, category_id, language, status, started_at, completed_at,
	error_message, retry_count, max_retries, generated_podcast_id, created_at
`

// CreateJob inserts a new generation job.
func (s *Storage) CreateJob(ctx context.Context, job *domain.GenerationJob) error {
	query := `
		INSERT INTO generation_jobs (
			id, category_id, language, status, started_at, completed_at,
			error_message, retry_count, max_retries, generated_podcast_id, created_at
		) VALUES (
			:id, :category_id, :language, :status, :started_at, :completed_at,
			:error_message, :retry_count, :max_retries, :generated_podcast_id, :created_at
		)
	`

	if _, err := s.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("failed to create generation job: %w", err)
	}

	return nil
}

// GetJobByID retrieves a generation job by its id.
func (s *Storage) GetJobByID(ctx context.Context, jobID string) (*domain.GenerationJob, error) {
	query := `SELECT ` + jobColumns + ` FROM generation_jobs WHERE id = $1`

	var job domain.GenerationJob
	if err := s.db.GetContext(ctx, &job, query, jobID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get generation job: %w", err)
	}

	return &job, nil
}

// ListJobsByStatus retrieves jobs in the given status, oldest first.
func (s *Storage) ListJobsByStatus(ctx context.Context, status domain.JobStatus) ([]domain.GenerationJob, error) {
	query := `SELECT ` + jobColumns + ` FROM generation_jobs WHERE status = $1 ORDER BY created_at ASC`

	var jobs []domain.GenerationJob
	if err := s.db.SelectContext(ctx, &jobs, query, status); err != nil {
		return nil, fmt.Errorf("failed to list generation jobs: %w", err)
	}

	return jobs, nil
}

// ClaimJob moves a pending job to generating using a compare-and-swap on status,
// so at most one processor wins a concurrent claim. Returns the claimed job, or
// ErrJobNotFound / TransitionError when the job is absent or no longer pending.
func (s *Storage) ClaimJob(ctx context.Context, jobID string, now time.Time) (*domain.GenerationJob, error) {
	query := `
		UPDATE generation_jobs
		SET status = $1,
		    started_at = $2
		WHERE id = $3
		  AND status = $4
		RETURNING ` + jobColumns

	var job domain.GenerationJob
	err := s.db.QueryRowxContext(ctx, query, domain.JobStatusGenerating, now, jobID, domain.JobStatusPending).StructScan(&job)
	if err == nil {
		s.logger.Info("generation job claimed",
			slog.String("job_id", jobID),
		)
		return &job, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to claim generation job: %w", err)
	}

	// Lost the swap: either the job is gone or another processor holds it.
	current, getErr := s.GetJobByID(ctx, jobID)
	if getErr != nil {
		return nil, getErr
	}

	s.logger.Warn("generation job claim rejected",
		slog.String("job_id", jobID),
		slog.String("status", string(current.Status)),
	)
	return nil, &domain.TransitionError{From: current.Status, To: domain.JobStatusGenerating}
}

// UpdateJob persists the mutable job fields.
func (s *Storage) UpdateJob(ctx context.Context, job *domain.GenerationJob) error {
	query := `
		UPDATE generation_jobs
		SET status = :status,
		    started_at = :started_at,
		    completed_at = :completed_at,
		    error_message = :error_message,
		    retry_count = :retry_count,
		    generated_podcast_id = :generated_podcast_id
		WHERE id = :id
	`

	result, err := s.db.NamedExecContext(ctx, query, job)
	if err != nil {
		return fmt.Errorf("failed to update generation job: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrJobNotFound
	}

	return nil
}

// JobStats are the counters surfaced on the admin stats endpoint.
type JobStats struct {
	TotalJobs      int          `db:"total_jobs"`
	PendingJobs    int          `db:"pending_jobs"`
	GeneratingJobs int          `db:"generating_jobs"`
	CompletedJobs  int          `db:"completed_jobs"`
	FailedJobs     int          `db:"failed_jobs"`
	LastGeneration sql.NullTime `db:"last_generation"`
}

// GetJobStats aggregates job counters in a single query.
func (s *Storage) GetJobStats(ctx context.Context) (*JobStats, error) {
	query := `
		SELECT
			COUNT(*) AS total_jobs,
			COUNT(*) FILTER (WHERE status = $1) AS pending_jobs,
			COUNT(*) FILTER (WHERE status = $2) AS generating_jobs,
			COUNT(*) FILTER (WHERE status = $3) AS completed_jobs,
			COUNT(*) FILTER (WHERE status = $4) AS failed_jobs,
			MAX(completed_at) FILTER (WHERE status = $3) AS last_generation
		FROM generation_jobs
	`

	var stats JobStats
	err := s.db.GetContext(ctx, &stats, query,
		domain.JobStatusPending, domain.JobStatusGenerating,
		domain.JobStatusCompleted, domain.JobStatusFailed)
	if err != nil {
		return nil, fmt.Errorf("failed to get job stats: %w", err)
	}

	return &stats, nil
}
