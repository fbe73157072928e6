package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/lurkingpods/backend/internal/domain"
)

const notificationColumns = `
	id, user_id, type, title_en, title_tr, body_en, body_tr,
	scheduled_for, sent_at, delivery_status, device_token, created_at
`

// CreateNotification inserts a scheduled notification.
func (s *Storage) CreateNotification(ctx context.Context, notification *domain.Notification) error {
	query := `
		INSERT INTO notifications (
			id, user_id, type, title_en, title_tr, body_en, body_tr,
			scheduled_for, sent_at, delivery_status, device_token, created_at
		) VALUES (
			:id, :user_id, :type, :title_en, :title_tr, :body_en, :body_tr,
			:scheduled_for, :sent_at, :delivery_status, :device_token, :created_at
		)
	`

	if _, err := s.db.NamedExecContext(ctx, query, notification); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// ListDueNotifications retrieves pending notifications whose scheduled time has
// passed, oldest first.
func (s *Storage) ListDueNotifications(ctx context.Context, now time.Time) ([]domain.Notification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE delivery_status = $1 AND scheduled_for <= $2
		ORDER BY scheduled_for ASC
	`

	var notifications []domain.Notification
	if err := s.db.SelectContext(ctx, &notifications, query, domain.DeliveryPending, now); err != nil {
		return nil, fmt.Errorf("failed to list due notifications: %w", err)
	}

	return notifications, nil
}

// UpdateNotificationDelivery persists the delivery outcome.
func (s *Storage) UpdateNotificationDelivery(ctx context.Context, notification *domain.Notification) error {
	query := `
		UPDATE notifications
		SET sent_at = :sent_at,
		    delivery_status = :delivery_status
		WHERE id = :id
	`

	result, err := s.db.NamedExecContext(ctx, query, notification)
	if err != nil {
		return fmt.Errorf("failed to update notification delivery: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotificationNotFound
	}

	return nil
}
