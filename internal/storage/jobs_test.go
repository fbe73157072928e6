package storage

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lurkingpods/backend/internal/domain"
)

func newTestStorage(t *testing.T) (*Storage, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewStorageWithDB(sqlxDB, logger), mock
}

func jobRows(status domain.JobStatus) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "category_id", "language", "status", "started_at", "completed_at",
		"error_message", "retry_count", "max_retries", "generated_podcast_id", "created_at",
	}).AddRow("job-1", "c1", "en", string(status), now, nil, nil, 0, 3, nil, now)
}

func TestGetJobByID(t *testing.T) {
	store, mock := newTestStorage(t)

	mock.ExpectQuery(`SELECT(.|\s)*FROM generation_jobs WHERE id = \$1`).
		WithArgs("job-1").
		WillReturnRows(jobRows(domain.JobStatusPending))

	job, err := store.GetJobByID(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, "job-1", job.ID)
	assert.Equal(t, domain.JobStatusPending, job.Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetJobByID_NotFound(t *testing.T) {
	store, mock := newTestStorage(t)

	mock.ExpectQuery(`SELECT(.|\s)*FROM generation_jobs WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.GetJobByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrJobNotFound)
}

func TestClaimJob(t *testing.T) {
	store, mock := newTestStorage(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`UPDATE generation_jobs(.|\s)*WHERE id = \$3(.|\s)*AND status = \$4(.|\s)*RETURNING`).
		WithArgs(string(domain.JobStatusGenerating), now, "job-1", string(domain.JobStatusPending)).
		WillReturnRows(jobRows(domain.JobStatusGenerating))

	job, err := store.ClaimJob(context.Background(), "job-1", now)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusGenerating, job.Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimJob_LostRace(t *testing.T) {
	store, mock := newTestStorage(t)
	now := time.Now().UTC()

	// CAS matches zero rows: another processor already moved the job.
	mock.ExpectQuery(`UPDATE generation_jobs(.|\s)*RETURNING`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT(.|\s)*FROM generation_jobs WHERE id = \$1`).
		WithArgs("job-1").
		WillReturnRows(jobRows(domain.JobStatusGenerating))

	_, err := store.ClaimJob(context.Background(), "job-1", now)
	require.Error(t, err)

	var terr *domain.TransitionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, domain.JobStatusGenerating, terr.From)
	assert.Equal(t, domain.JobStatusGenerating, terr.To)
}

func TestClaimJob_Missing(t *testing.T) {
	store, mock := newTestStorage(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`UPDATE generation_jobs(.|\s)*RETURNING`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT(.|\s)*FROM generation_jobs WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.ClaimJob(context.Background(), "missing", now)
	assert.ErrorIs(t, err, domain.ErrJobNotFound)
}

func TestDeleteExpiredPodcasts(t *testing.T) {
	store, mock := newTestStorage(t)
	now := time.Now().UTC()

	mock.ExpectExec(`DELETE FROM podcasts WHERE expires_at < \$1`).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 4))

	deleted, err := store.DeleteExpiredPodcasts(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(4), deleted)
}
