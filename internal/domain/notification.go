package domain

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// NotificationType classifies a push notification.
type NotificationType string

const (
	NotificationDailyContent         NotificationType = "daily_content"
	NotificationSubscriptionReminder NotificationType = "subscription_reminder"
	NotificationTrialExpiry          NotificationType = "trial_expiry"
)

// DeliveryStatus is the send state of a notification.
type DeliveryStatus string

const (
	DeliveryPending DeliveryStatus = "pending"
	DeliverySent    DeliveryStatus = "sent"
	DeliveryFailed  DeliveryStatus = "failed"
)

// Notification is one scheduled push message.
type Notification struct {
	ID             string           `db:"id"`
	UserID         string           `db:"user_id"`
	Type           NotificationType `db:"type"`
	TitleEN        string           `db:"title_en"`
	TitleTR        string           `db:"title_tr"`
	BodyEN         string           `db:"body_en"`
	BodyTR         string           `db:"body_tr"`
	ScheduledFor   time.Time        `db:"scheduled_for"`
	SentAt         sql.NullTime     `db:"sent_at"`
	DeliveryStatus DeliveryStatus   `db:"delivery_status"`
	DeviceToken    string           `db:"device_token"`
	CreatedAt      time.Time        `db:"created_at"`
}

// CreateNotificationParams carries the fields of a new scheduled notification.
type CreateNotificationParams struct {
	UserID       string
	Type         NotificationType
	TitleEN      string
	TitleTR      string
	BodyEN       string
	BodyTR       string
	ScheduledFor time.Time
	DeviceToken  string
}

// Validate applies the notification validation rules.
func (p *CreateNotificationParams) Validate() error {
	if p.DeviceToken == "" {
		return &ValidationError{Field: "device_token", Rule: "be non-empty"}
	}
	if !p.ScheduledFor.After(time.Now()) {
		return &ValidationError{Field: "scheduled_for", Rule: "be in the future"}
	}
	return nil
}

// NewNotification validates params and builds a pending notification.
func NewNotification(params CreateNotificationParams) (*Notification, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Notification{
		ID:             uuid.New().String(),
		UserID:         params.UserID,
		Type:           params.Type,
		TitleEN:        params.TitleEN,
		TitleTR:        params.TitleTR,
		BodyEN:         params.BodyEN,
		BodyTR:         params.BodyTR,
		ScheduledFor:   params.ScheduledFor,
		DeliveryStatus: DeliveryPending,
		DeviceToken:    params.DeviceToken,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// Title returns the localized title.
func (n *Notification) Title(language Language) string {
	if language == LanguageTR {
		return n.TitleTR
	}
	return n.TitleEN
}

// Body returns the localized body.
func (n *Notification) Body(language Language) string {
	if language == LanguageTR {
		return n.BodyTR
	}
	return n.BodyEN
}

// MarkSent records a successful delivery.
func (n *Notification) MarkSent(now time.Time) {
	n.SentAt = sql.NullTime{Time: now, Valid: true}
	n.DeliveryStatus = DeliverySent
}

// MarkFailed records a failed delivery attempt.
func (n *Notification) MarkFailed() {
	n.DeliveryStatus = DeliveryFailed
}
