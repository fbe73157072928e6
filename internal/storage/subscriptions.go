package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lurkingpods/backend/internal/domain"
)

const subscriptionColumns = `
	id, user_id, subscription_type, status, start_date, end_date, renewal_date,
	payment_method, transaction_id, amount, currency, cancelled_at, created_at
`

// CreateSubscription inserts a verified purchase.
func (s *Storage) CreateSubscription(ctx context.Context, sub *domain.Subscription) error {
	query := `
		INSERT INTO subscriptions (
			id, user_id, subscription_type, status, start_date, end_date, renewal_date,
			payment_method, transaction_id, amount, currency, cancelled_at, created_at
		) VALUES (
			:id, :user_id, :subscription_type, :status, :start_date, :end_date, :renewal_date,
			:payment_method, :transaction_id, :amount, :currency, :cancelled_at, :created_at
		)
	`

	if _, err := s.db.NamedExecContext(ctx, query, sub); err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	return nil
}

// GetLatestSubscriptionByUserID retrieves the user's most recent subscription.
func (s *Storage) GetLatestSubscriptionByUserID(ctx context.Context, userID string) (*domain.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var sub domain.Subscription
	if err := s.db.GetContext(ctx, &sub, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	return &sub, nil
}

// CancelSubscription marks a subscription cancelled and stamps cancelled_at.
func (s *Storage) CancelSubscription(ctx context.Context, subscriptionID string, now time.Time) (*domain.Subscription, error) {
	query := `
		UPDATE subscriptions
		SET status = $1,
		    cancelled_at = $2
		WHERE id = $3
		RETURNING ` + subscriptionColumns

	var sub domain.Subscription
	err := s.db.QueryRowxContext(ctx, query, domain.SubscriptionStatusCancelled, now, subscriptionID).StructScan(&sub)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to cancel subscription: %w", err)
	}

	return &sub, nil
}
