package generation

import (
	"context"
	"time"

	"github.com/lurkingpods/backend/internal/domain"
)

// ScriptGenerator produces a two-speaker dialogue script for a category/language pair.
type ScriptGenerator interface {
	GenerateScript(ctx context.Context, categoryName string, language domain.Language) (*domain.Script, error)
}

// SpeechSynthesizer turns a speaker-labeled script into one audio payload.
type SpeechSynthesizer interface {
	SynthesizeAudio(ctx context.Context, scriptContent string, language domain.Language) ([]byte, error)
}

// ObjectStore uploads a payload and returns its public URL.
type ObjectStore interface {
	Upload(ctx context.Context, data []byte, path string, contentType string) (string, error)
}

// JobStore is the persistence surface the orchestrator needs for jobs.
type JobStore interface {
	GetJobByID(ctx context.Context, jobID string) (*domain.GenerationJob, error)
	ClaimJob(ctx context.Context, jobID string, now time.Time) (*domain.GenerationJob, error)
	UpdateJob(ctx context.Context, job *domain.GenerationJob) error
}

// PodcastStore persists generated podcasts.
type PodcastStore interface {
	CreatePodcast(ctx context.Context, podcast *domain.Podcast) error
}

// CategoryStore resolves the category a job generates for.
type CategoryStore interface {
	GetCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error)
}
