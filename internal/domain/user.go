package domain

import (
	"database/sql"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// TrialDuration is the access window granted to a new account before a
// subscription is required.
const TrialDuration = 2 * 24 * time.Hour

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// SubscriptionStatus is the account-level access state of a user.
type SubscriptionStatus string

const (
	SubscriptionStatusTrial     SubscriptionStatus = "trial"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

// ThemePreference is the client theme setting stored per user.
type ThemePreference string

const (
	ThemeLight  ThemePreference = "light"
	ThemeDark   ThemePreference = "dark"
	ThemeSystem ThemePreference = "system"
)

// ParseThemePreference validates a raw theme value.
func ParseThemePreference(s string) (ThemePreference, error) {
	switch ThemePreference(s) {
	case ThemeLight, ThemeDark, ThemeSystem:
		return ThemePreference(s), nil
	}
	return "", &ValidationError{Field: "theme_preference", Rule: `be "light", "dark" or "system"`}
}

// User is a registered account.
type User struct {
	ID                  string             `db:"id"`
	Email               string             `db:"email"`
	PasswordHash        string             `db:"password_hash"`
	TrialStartDate      time.Time          `db:"trial_start_date"`
	TrialEndDate        time.Time          `db:"trial_end_date"`
	SubscriptionStatus  SubscriptionStatus `db:"subscription_status"`
	SubscriptionType    sql.NullString     `db:"subscription_type"`
	SubscriptionEndDate sql.NullTime       `db:"subscription_end_date"`
	LanguagePreference  Language           `db:"language_preference"`
	NotificationEnabled bool               `db:"notification_enabled"`
	NotificationTime    string             `db:"notification_time"`
	DeviceToken         sql.NullString     `db:"device_token"`
	FavoriteCategories  pq.StringArray     `db:"favorite_categories"`
	ThemePreference     ThemePreference    `db:"theme_preference"`
	CreatedAt           time.Time          `db:"created_at"`
	UpdatedAt           time.Time          `db:"updated_at"`
}

// ValidateEmail checks the registration email format.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return &ValidationError{Field: "email", Rule: "be a valid email address"}
	}
	return nil
}

// ValidatePassword checks the minimum password length.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return &ValidationError{Field: "password", Rule: "be at least 8 characters"}
	}
	return nil
}

// NewUser builds a trial account. passwordHash must already be hashed.
func NewUser(email, passwordHash string, language Language) *User {
	now := time.Now().UTC()
	return &User{
		ID:                  uuid.New().String(),
		Email:               email,
		PasswordHash:        passwordHash,
		TrialStartDate:      now,
		TrialEndDate:        now.Add(TrialDuration),
		SubscriptionStatus:  SubscriptionStatusTrial,
		LanguagePreference:  language,
		NotificationEnabled: true,
		NotificationTime:    "00:05",
		FavoriteCategories:  pq.StringArray{},
		ThemePreference:     ThemeSystem,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// IsTrialExpired reports whether the trial window has passed.
func (u *User) IsTrialExpired(now time.Time) bool {
	return now.After(u.TrialEndDate)
}

// HasActiveSubscription reports whether the user holds a paid subscription that
// has not yet ended.
func (u *User) HasActiveSubscription(now time.Time) bool {
	return u.SubscriptionStatus == SubscriptionStatusActive &&
		u.SubscriptionEndDate.Valid &&
		now.Before(u.SubscriptionEndDate.Time)
}

// HasAccess reports whether the user may consume content: an unexpired trial or
// an active subscription.
func (u *User) HasAccess(now time.Time) bool {
	return !u.IsTrialExpired(now) || u.HasActiveSubscription(now)
}
