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

const podcastColumns = `
	id, category_id, language, title, description, script_content,
	audio_file_url, audio_duration, speaker_1_voice_id, speaker_2_voice_id,
	generation_date, created_at, expires_at, quality_score, play_count, is_featured
`

// CreatePodcast inserts a generated podcast.
func (s *Storage) CreatePodcast(ctx context.Context, podcast *domain.Podcast) error {
	query := `
		INSERT INTO podcasts (
			id, category_id, language, title, description, script_content,
			audio_file_url, audio_duration, speaker_1_voice_id, speaker_2_voice_id,
			generation_date, created_at, expires_at, quality_score, play_count, is_featured
		) VALUES (
			:id, :category_id, :language, :title, :description, :script_content,
			:audio_file_url, :audio_duration, :speaker_1_voice_id, :speaker_2_voice_id,
			:generation_date, :created_at, :expires_at, :quality_score, :play_count, :is_featured
		)
	`

	if _, err := s.db.NamedExecContext(ctx, query, podcast); err != nil {
		return fmt.Errorf("failed to create podcast: %w", err)
	}

	return nil
}

// GetPodcastByID retrieves a podcast by its id.
func (s *Storage) GetPodcastByID(ctx context.Context, podcastID string) (*domain.Podcast, error) {
	query := `SELECT ` + podcastColumns + ` FROM podcasts WHERE id = $1`

	var podcast domain.Podcast
	if err := s.db.GetContext(ctx, &podcast, query, podcastID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPodcastNotFound
		}
		return nil, fmt.Errorf("failed to get podcast: %w", err)
	}

	return &podcast, nil
}

// ListPodcastsByCategory retrieves podcasts for a category, newest first.
// An empty language matches both languages.
func (s *Storage) ListPodcastsByCategory(ctx context.Context, categoryID string, language domain.Language) ([]domain.Podcast, error) {
	query := `SELECT ` + podcastColumns + ` FROM podcasts WHERE category_id = $1`
	args := []interface{}{categoryID}

	if language != "" {
		query += ` AND language = $2`
		args = append(args, language)
	}
	query += ` ORDER BY created_at DESC`

	var podcasts []domain.Podcast
	if err := s.db.SelectContext(ctx, &podcasts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list podcasts: %w", err)
	}

	return podcasts, nil
}

// GetDailyMix retrieves up to limit featured podcasts for the language, newest first.
func (s *Storage) GetDailyMix(ctx context.Context, language domain.Language, limit int) ([]domain.Podcast, error) {
	query := `
		SELECT ` + podcastColumns + `
		FROM podcasts
		WHERE language = $1 AND is_featured = TRUE
		ORDER BY created_at DESC
		LIMIT $2
	`

	var podcasts []domain.Podcast
	if err := s.db.SelectContext(ctx, &podcasts, query, language, limit); err != nil {
		return nil, fmt.Errorf("failed to get daily mix: %w", err)
	}

	return podcasts, nil
}

// IncrementPlayCount bumps a podcast's play counter and returns the new value.
func (s *Storage) IncrementPlayCount(ctx context.Context, podcastID string) (int, error) {
	query := `
		UPDATE podcasts
		SET play_count = play_count + 1
		WHERE id = $1
		RETURNING play_count
	`

	var playCount int
	if err := s.db.GetContext(ctx, &playCount, query, podcastID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrPodcastNotFound
		}
		return 0, fmt.Errorf("failed to increment play count: %w", err)
	}

	return playCount, nil
}

// SetFeatured toggles a podcast's featured flag.
func (s *Storage) SetFeatured(ctx context.Context, podcastID string, featured bool) error {
	query := `UPDATE podcasts SET is_featured = $1 WHERE id = $2`

	result, err := s.db.ExecContext(ctx, query, featured, podcastID)
	if err != nil {
		return fmt.Errorf("failed to set featured flag: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrPodcastNotFound
	}

	return nil
}

// DeleteExpiredPodcasts removes every podcast whose expiry has passed and
// returns the deleted count.
func (s *Storage) DeleteExpiredPodcasts(ctx context.Context, now time.Time) (int64, error) {
	query := `DELETE FROM podcasts WHERE expires_at < $1`

	result, err := s.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired podcasts: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	s.logger.Info("expired podcasts deleted",
		slog.Int64("count", deleted),
	)
	return deleted, nil
}

// CountPodcasts returns the total podcast count for the admin stats endpoint.
func (s *Storage) CountPodcasts(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM podcasts`); err != nil {
		return 0, fmt.Errorf("failed to count podcasts: %w", err)
	}
	return count, nil
}
