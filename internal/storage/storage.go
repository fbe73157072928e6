package storage

import (
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/lurkingpods/backend/shared/postgresql"
)

// Storage handles all database operations, one entity per file.
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStorage creates a Storage backed by the shared PostgreSQL client.
func NewStorage(pg *postgresql.Client, logger *slog.Logger) *Storage {
	return &Storage{
		db: pg.GetDB(),
		logger: logger,
	}
}

// NewStorageWithDB creates a Storage around an existing sqlx handle. Used by tests.
func NewStorageWithDB(db *sqlx.DB, logger *slog.Logger) *Storage {
	return &Storage{db: db, logger: logger}
}
