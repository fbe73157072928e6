package generation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lurkingpods/backend/internal/domain"
)

// Default timeouts for the external provider calls. A timeout surfaces as a
// ProviderError for that stage, same as any other provider failure.
const (
	DefaultScriptTimeout = 2 * time.Minute
	DefaultAudioTimeout  = 3 * time.Minute
	DefaultUploadTimeout = 1 * time.Minute

	// failurePersistTimeout bounds the detached write that records a failure.
	failurePersistTimeout = 10 * time.Second
)

// Config holds the orchestrator dependencies. All collaborators are injected so
// tests can substitute fakes.
type Config struct {
	Jobs       JobStore
	Podcasts   PodcastStore
	Categories CategoryStore
	Scripts    ScriptGenerator
	Speech     SpeechSynthesizer
	Store      ObjectStore
	Logger     *slog.Logger

	ScriptTimeout time.Duration
	AudioTimeout  time.Duration
	UploadTimeout time.Duration
}

// Orchestrator drives a generation job through its state machine: claim the job,
// generate a script, synthesize audio, upload it, persist the podcast and close
// the job out. Any failure moves the job to failed and is still returned to the
// caller, so the failure is durable even if the caller crashes.
type Orchestrator struct {
	jobs       JobStore
	podcasts   PodcastStore
	categories CategoryStore
	scripts    ScriptGenerator
	speech     SpeechSynthesizer
	store      ObjectStore
	logger     *slog.Logger

	scriptTimeout time.Duration
	audioTimeout  time.Duration
	uploadTimeout time.Duration
}

// NewOrchestrator creates an orchestrator, applying default timeouts where the
// config leaves them zero.
func NewOrchestrator(cfg *Config) *Orchestrator {
	o := &Orchestrator{
		jobs:          cfg.Jobs,
		podcasts:      cfg.Podcasts,
		categories:    cfg.Categories,
		scripts:       cfg.Scripts,
		speech:        cfg.Speech,
		store:         cfg.Store,
		logger:        cfg.Logger,
		scriptTimeout: cfg.ScriptTimeout,
		audioTimeout:  cfg.AudioTimeout,
		uploadTimeout: cfg.UploadTimeout,
	}
	if o.scriptTimeout <= 0 {
		o.scriptTimeout = DefaultScriptTimeout
	}
	if o.audioTimeout <= 0 {
		o.audioTimeout = DefaultAudioTimeout
	}
	if o.uploadTimeout <= 0 {
		o.uploadTimeout = DefaultUploadTimeout
	}
	return o
}

// ProcessJob runs a pending job through the full generation sequence. The job
// must be in pending status; anything else is rejected with a TransitionError
// before any mutation.
func (o *Orchestrator) ProcessJob(ctx context.Context, jobID string) error {
	job, err := o.jobs.GetJobByID(ctx, jobID)
	if err != nil {
		return err
	}

	if !domain.CanTransition(job.Status, domain.JobStatusGenerating) {
		return &domain.TransitionError{From: job.Status, To: domain.JobStatusGenerating}
	}

	// Compare-and-swap on status: if a concurrent processor claimed the job
	// between the check above and here, the claim loses and nothing was mutated.
	job, err = o.jobs.ClaimJob(ctx, jobID, time.Now().UTC())
	if err != nil {
		return err
	}

	o.logger.Info("processing generation job",
		slog.String("job_id", job.ID),
		slog.String("category_id", job.CategoryID),
		slog.String("language", string(job.Language)),
		slog.Int("retry_count", job.RetryCount),
	)

	category, err := o.categories.GetCategoryByID(ctx, job.CategoryID)
	if err != nil {
		return o.fail(ctx, job, err)
	}

	script, err := o.generateScript(ctx, category.Name, job.Language)
	if err != nil {
		return o.fail(ctx, job, err)
	}

	audio, err := o.synthesizeAudio(ctx, script.Content, job.Language)
	if err != nil {
		return o.fail(ctx, job, err)
	}

	audioURL, err := o.uploadAudio(ctx, job, audio)
	if err != nil {
		return o.fail(ctx, job, err)
	}

	podcast, err := domain.NewPodcast(domain.CreatePodcastParams{
		CategoryID:      job.CategoryID,
		Language:        job.Language,
		Title:           script.Title,
		Description:     script.Description,
		ScriptContent:   script.Content,
		AudioFileURL:    audioURL,
		AudioDuration:   script.Duration,
		Speaker1VoiceID: script.Speaker1VoiceID,
		Speaker2VoiceID: script.Speaker2VoiceID,
		QualityScore:    script.QualityScore,
	})
	if err != nil {
		// A script that fails podcast validation is a generation failure too.
		return o.fail(ctx, job, err)
	}

	if err := o.podcasts.CreatePodcast(ctx, podcast); err != nil {
		return o.fail(ctx, job, err)
	}

	if err := job.MarkCompleted(podcast.ID, time.Now().UTC()); err != nil {
		return o.fail(ctx, job, err)
	}
	if err := o.jobs.UpdateJob(ctx, job); err != nil {
		return err
	}

	o.logger.Info("generation job completed",
		slog.String("job_id", job.ID),
		slog.String("podcast_id", podcast.ID),
		slog.Int("audio_bytes", len(audio)),
	)
	return nil
}

// Dispatch routes a queued job by its current status: failed jobs go through
// the retry path, everything else through normal processing.
func (o *Orchestrator) Dispatch(ctx context.Context, jobID string) error {
	job, err := o.jobs.GetJobByID(ctx, jobID)
	if err != nil {
		return err
	}

	if job.Status == domain.JobStatusFailed {
		return o.RetryFailedJob(ctx, jobID)
	}
	return o.ProcessJob(ctx, jobID)
}

// RetryFailedJob resets a failed job to pending and runs it again. Only jobs in
// failed status with remaining retry budget are accepted.
func (o *Orchestrator) RetryFailedJob(ctx context.Context, jobID string) error {
	job, err := o.jobs.GetJobByID(ctx, jobID)
	if err != nil {
		return err
	}

	if !job.CanRetry() {
		return fmt.Errorf("%w: status=%s retry_count=%d max_retries=%d",
			domain.ErrJobNotRetryable, job.Status, job.RetryCount, job.MaxRetries)
	}

	if err := job.ResetForRetry(time.Now().UTC()); err != nil {
		return err
	}
	if err := o.jobs.UpdateJob(ctx, job); err != nil {
		return err
	}

	o.logger.Info("retrying failed generation job",
		slog.String("job_id", job.ID),
		slog.Int("retry_count", job.RetryCount),
		slog.Int("max_retries", job.MaxRetries),
	)

	return o.ProcessJob(ctx, jobID)
}

func (o *Orchestrator) generateScript(ctx context.Context, categoryName string, language domain.Language) (*domain.Script, error) {
	ctx, cancel := context.WithTimeout(ctx, o.scriptTimeout)
	defer cancel()

	script, err := o.scripts.GenerateScript(ctx, categoryName, language)
	if err != nil {
		return nil, domain.NewProviderError(domain.StageScript, err)
	}
	return script, nil
}

func (o *Orchestrator) synthesizeAudio(ctx context.Context, scriptContent string, language domain.Language) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, o.audioTimeout)
	defer cancel()

	audio, err := o.speech.SynthesizeAudio(ctx, scriptContent, language)
	if err != nil {
		return nil, domain.NewProviderError(domain.StageAudio, err)
	}
	return audio, nil
}

func (o *Orchestrator) uploadAudio(ctx context.Context, job *domain.GenerationJob, audio []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.uploadTimeout)
	defer cancel()

	path := fmt.Sprintf("audio/%s/%s.mp3", job.Language, job.ID)
	url, err := o.store.Upload(ctx, audio, path, "audio/mpeg")
	if err != nil {
		return "", domain.NewProviderError(domain.StageStorage, err)
	}
	return url, nil
}

// fail records the failure on the job and re-returns the original error, so the
// caller sees it while the stored job durably reflects it.
func (o *Orchestrator) fail(ctx context.Context, job *domain.GenerationJob, cause error) error {
	if err := job.MarkFailed(cause.Error(), time.Now().UTC()); err != nil {
		o.logger.Error("failed to mark job as failed",
			slog.String("job_id", job.ID),
			slog.String("error", err.Error()),
		)
		return cause
	}

	// The cause may be ctx itself dying (job timeout, shutdown), so the
	// failure record is written on a detached context with its own deadline.
	// Otherwise the job row would stay generating and no claim could ever
	// pick it up again.
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), failurePersistTimeout)
	defer cancel()
	if err := o.jobs.UpdateJob(persistCtx, job); err != nil {
		o.logger.Error("failed to persist job failure",
			slog.String("job_id", job.ID),
			slog.String("error", err.Error()),
		)
	}

	o.logger.Error("generation job failed",
		slog.String("job_id", job.ID),
		slog.Int("retry_count", job.RetryCount),
		slog.Int("max_retries", job.MaxRetries),
		slog.String("error", cause.Error()),
	)
	return cause
}
