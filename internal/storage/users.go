package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/lurkingpods/backend/internal/domain"
)

const pqUniqueViolation = "23505"

const userColumns = `
	id, email, password_hash, trial_start_date, trial_end_date,
	subscription_status, subscription_type, subscription_end_date,
	language_preference, notification_enabled, notification_time, device_token,
	favorite_categories, theme_preference, created_at, updated_at
`

// CreateUser inserts a new account. A duplicate email surfaces as ErrEmailTaken.
func (s *Storage) CreateUser(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (
			id, email, password_hash, trial_start_date, trial_end_date,
			subscription_status, subscription_type, subscription_end_date,
			language_preference, notification_enabled, notification_time, device_token,
			favorite_categories, theme_preference, created_at, updated_at
		) VALUES (
			:id, :email, :password_hash, :trial_start_date, :trial_end_date,
			:subscription_status, :subscription_type, :subscription_end_date,
			:language_preference, :notification_enabled, :notification_time, :device_token,
			:favorite_categories, :theme_preference, :created_at, :updated_at
		)
	`

	if _, err := s.db.NamedExecContext(ctx, query, user); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user by id.
func (s *Storage) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var user domain.User
	if err := s.db.GetContext(ctx, &user, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// GetUserByEmail retrieves a user by email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	var user domain.User
	if err := s.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}

// UpdateUserPreferences persists the user-editable preference fields.
func (s *Storage) UpdateUserPreferences(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET language_preference = :language_preference,
		    notification_enabled = :notification_enabled,
		    notification_time = :notification_time,
		    device_token = :device_token,
		    favorite_categories = :favorite_categories,
		    theme_preference = :theme_preference,
		    updated_at = :updated_at
		WHERE id = :id
	`

	user.UpdatedAt = time.Now().UTC()
	result, err := s.db.NamedExecContext(ctx, query, user)
	if err != nil {
		return fmt.Errorf("failed to update user preferences: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrUserNotFound
	}

	return nil
}

// UpdateUserSubscription mirrors a subscription change onto the account record.
func (s *Storage) UpdateUserSubscription(ctx context.Context, userID string, status domain.SubscriptionStatus, subType sql.NullString, endDate sql.NullTime) error {
	query := `
		UPDATE users
		SET subscription_status = $1,
		    subscription_type = $2,
		    subscription_end_date = $3,
		    updated_at = $4
		WHERE id = $5
	`

	result, err := s.db.ExecContext(ctx, query, status, subType, endDate, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to update user subscription: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrUserNotFound
	}

	return nil
}

// ListNotifiableUsers retrieves users who opted into notifications and have a
// registered device to deliver to.
func (s *Storage) ListNotifiableUsers(ctx context.Context) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE notification_enabled = TRUE AND device_token IS NOT NULL`

	var users []domain.User
	if err := s.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("failed to list notifiable users: %w", err)
	}

	return users, nil
}
