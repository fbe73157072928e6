package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrJobNotFound is returned when a generation job cannot be found in the database
	ErrJobNotFound = errors.New("generation job not found")

	// ErrJobNotRetryable is returned when retrying a job that is not failed or has
	// exhausted its retry budget
	ErrJobNotRetryable = errors.New("job cannot be retried")

	// ErrPodcastNotFound is returned when a podcast cannot be found
	ErrPodcastNotFound = errors.New("podcast not found")

	// ErrCategoryNotFound is returned when a category cannot be found
	ErrCategoryNotFound = errors.New("category not found")

	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrSubscriptionNotFound is returned when a user has no subscription record
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// ErrNotificationNotFound is returned when a notification cannot be found
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrEmailTaken is returned when registering with an email that already exists
	ErrEmailTaken = errors.New("email already in use")

	// ErrInvalidCredentials is returned on a failed login attempt
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError reports a field that violated one of the entity validation rules.
// The Rule text names the violated constraint so callers can branch without parsing.
type ValidationError struct {
	Field string
	Rule  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s must %s", e.Field, e.Rule)
}

// TransitionError reports an illegal job status transition. The entity is left
// unmodified when this error is returned.
type TransitionError struct {
	From JobStatus
	To   JobStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid status transition: %s -> %s", e.From, e.To)
}

// ProviderStage identifies which external collaborator failed during generation.
type ProviderStage string

const (
	StageScript  ProviderStage = "script"
	StageAudio   ProviderStage = "audio"
	StageStorage ProviderStage = "storage"
)

// ProviderError wraps an error from one of the generation collaborators.
type ProviderError struct {
	Stage ProviderStage
	Err   error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider: %s", e.Stage, e.Err.Error())
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError wraps err as a failure of the given stage.
func NewProviderError(stage ProviderStage, err error) error {
	return &ProviderError{Stage: stage, Err: err}
}
