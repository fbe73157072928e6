package domain

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// JobStatus is the lifecycle state of a content generation job.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusGenerating JobStatus = "generating"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// ParseJobStatus validates a raw status value read from outside the process.
func ParseJobStatus(s string) (JobStatus, error) {
	switch JobStatus(s) {
	case JobStatusPending, JobStatusGenerating, JobStatusCompleted, JobStatusFailed:
		return JobStatus(s), nil
	}
	return "", &ValidationError{Field: "status", Rule: "be one of pending, generating, completed, failed"}
}

// jobTransitions is the fixed transition table. A transition absent from this
// table is illegal and must leave the job unmodified.
var jobTransitions = map[JobStatus][]JobStatus{
	JobStatusPending:    {JobStatusGenerating, JobStatusFailed},
	JobStatusGenerating: {JobStatusCompleted, JobStatusFailed},
	JobStatusCompleted:  {},
	JobStatusFailed:     {JobStatusPending}, // retry path
}

// CanTransition reports whether from -> to is a legal status transition.
func CanTransition(from, to JobStatus) bool {
	for _, next := range jobTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// DefaultMaxRetries is the retry budget assigned to jobs created without one.
const DefaultMaxRetries = 3

// GenerationJob tracks one attempt to produce a podcast for a category/language pair.
type GenerationJob struct {
	ID                 string         `db:"id"`
	CategoryID         string         `db:"category_id"`
	Language           Language       `db:"language"`
	Status             JobStatus      `db:"status"`
	StartedAt          time.Time      `db:"started_at"`
	CompletedAt        sql.NullTime   `db:"completed_at"`
	ErrorMessage       sql.NullString `db:"error_message"`
	RetryCount         int            `db:"retry_count"`
	MaxRetries         int            `db:"max_retries"`
	GeneratedPodcastID sql.NullString `db:"generated_podcast_id"`
	CreatedAt          time.Time      `db:"created_at"`
}

// NewGenerationJob creates a pending job. maxRetries <= 0 selects the default budget.
func NewGenerationJob(categoryID string, language Language, maxRetries int) *GenerationJob {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	now := time.Now().UTC()
	return &GenerationJob{
		ID:         uuid.New().String(),
		CategoryID: categoryID,
		Language:   language,
		Status:     JobStatusPending,
		StartedAt:  now,
		RetryCount: 0,
		MaxRetries: maxRetries,
		CreatedAt:  now,
	}
}

// transition applies a status change after consulting the transition table.
func (j *GenerationJob) transition(to JobStatus) error {
	if !CanTransition(j.Status, to) {
		return &TransitionError{From: j.Status, To: to}
	}
	j.Status = to
	return nil
}

// MarkStarted moves the job to generating and stamps started_at.
// Retry bookkeeping is untouched.
func (j *GenerationJob) MarkStarted(now time.Time) error {
	if err := j.transition(JobStatusGenerating); err != nil {
		return err
	}
	j.StartedAt = now
	return nil
}

// MarkCompleted moves the job to completed, stamps completed_at and links the
// produced podcast.
func (j *GenerationJob) MarkCompleted(podcastID string, now time.Time) error {
	if err := j.transition(JobStatusCompleted); err != nil {
		return err
	}
	j.CompletedAt = sql.NullTime{Time: now, Valid: true}
	j.GeneratedPodcastID = sql.NullString{String: podcastID, Valid: true}
	return nil
}

// MarkFailed moves the job to failed, records the error and increments the retry
// counter. The increment happens on every failure, including the first attempt,
// so RetryCount measures total failed attempts.
func (j *GenerationJob) MarkFailed(errorMessage string, now time.Time) error {
	if err := j.transition(JobStatusFailed); err != nil {
		return err
	}
	j.CompletedAt = sql.NullTime{Time: now, Valid: true}
	j.ErrorMessage = sql.NullString{String: errorMessage, Valid: true}
	j.RetryCount++
	return nil
}

// ResetForRetry returns a failed job to pending, clearing the failure record.
func (j *GenerationJob) ResetForRetry(now time.Time) error {
	if err := j.transition(JobStatusPending); err != nil {
		return err
	}
	j.StartedAt = now
	j.CompletedAt = sql.NullTime{}
	j.ErrorMessage = sql.NullString{}
	return nil
}

// CanRetry reports whether the retry operation may run on this job.
func (j *GenerationJob) CanRetry() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}
