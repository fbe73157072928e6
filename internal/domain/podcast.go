package domain

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// PodcastTTL is how long a generated podcast stays available before the cleanup
// sweep removes it. Fixed at creation, never recomputed.
const PodcastTTL = 7 * 24 * time.Hour

const (
	minTitleLen  = 3
	maxTitleLen  = 100
	minScriptLen = 100
	maxScriptLen = 5000
	minDuration  = 45
	maxDuration  = 75
)

// Podcast is one generated episode, produced by a successful generation job.
type Podcast struct {
	ID              string    `db:"id"`
	CategoryID      string    `db:"category_id"`
	Language        Language  `db:"language"`
	Title           string    `db:"title"`
	Description     string    `db:"description"`
	ScriptContent   string    `db:"script_content"`
	AudioFileURL    string    `db:"audio_file_url"`
	AudioDuration   int       `db:"audio_duration"`
	Speaker1VoiceID string    `db:"speaker_1_voice_id"`
	Speaker2VoiceID string    `db:"speaker_2_voice_id"`
	GenerationDate  time.Time `db:"generation_date"`
	CreatedAt       time.Time `db:"created_at"`
	ExpiresAt       time.Time `db:"expires_at"`
	QualityScore    float64   `db:"quality_score"`
	PlayCount       int       `db:"play_count"`
	IsFeatured      bool      `db:"is_featured"`
}

// CreatePodcastParams carries the fields supplied by a completed generation run.
type CreatePodcastParams struct {
	CategoryID      string
	Language        Language
	Title           string
	Description     string
	ScriptContent   string
	AudioFileURL    string
	AudioDuration   int
	Speaker1VoiceID string
	Speaker2VoiceID string
	QualityScore    float64
}

// Validate applies the podcast validation rules. The first violated rule is
// returned as a ValidationError.
func (p *CreatePodcastParams) Validate() error {
	// Lengths count characters, not bytes; Turkish text is multi-byte.
	if n := utf8.RuneCountInString(p.Title); n < minTitleLen || n > maxTitleLen {
		return &ValidationError{Field: "title", Rule: "be between 3 and 100 characters"}
	}
	if n := utf8.RuneCountInString(p.ScriptContent); n < minScriptLen || n > maxScriptLen {
		return &ValidationError{Field: "script_content", Rule: "be between 100 and 5000 characters"}
	}
	if p.AudioDuration < minDuration || p.AudioDuration > maxDuration {
		return &ValidationError{Field: "audio_duration", Rule: "be between 45 and 75 seconds"}
	}
	if p.QualityScore < 0.0 || p.QualityScore > 1.0 {
		return &ValidationError{Field: "quality_score", Rule: "be between 0.0 and 1.0"}
	}
	return nil
}

// NewPodcast validates params and builds a podcast with its expiry fixed to
// creation time plus the TTL.
func NewPodcast(params CreatePodcastParams) (*Podcast, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Podcast{
		ID:              uuid.New().String(),
		CategoryID:      params.CategoryID,
		Language:        params.Language,
		Title:           params.Title,
		Description:     params.Description,
		ScriptContent:   params.ScriptContent,
		AudioFileURL:    params.AudioFileURL,
		AudioDuration:   params.AudioDuration,
		Speaker1VoiceID: params.Speaker1VoiceID,
		Speaker2VoiceID: params.Speaker2VoiceID,
		GenerationDate:  now,
		CreatedAt:       now,
		ExpiresAt:       now.Add(PodcastTTL),
		QualityScore:    params.QualityScore,
		PlayCount:       0,
		IsFeatured:      false,
	}, nil
}

// IsExpired reports whether the podcast has passed its expiry.
func (p *Podcast) IsExpired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}
