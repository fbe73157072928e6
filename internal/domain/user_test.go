package domain

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email   string
		wantErr bool
	}{
		{email: "user@example.com", wantErr: false},
		{email: "a@b.co", wantErr: false},
		{email: "no-at-sign", wantErr: true},
		{email: "spaces in@example.com", wantErr: true},
		{email: "missing@tld", wantErr: true},
		{email: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	assert.Error(t, ValidatePassword("short12"))
	assert.NoError(t, ValidatePassword("long enough"))
}

func TestNewUser(t *testing.T) {
	user := NewUser("user@example.com", "$2a$12$hash", LanguageTR)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, SubscriptionStatusTrial, user.SubscriptionStatus)
	assert.Equal(t, user.TrialStartDate.Add(TrialDuration), user.TrialEndDate)
	assert.True(t, user.NotificationEnabled)
	assert.Equal(t, "00:05", user.NotificationTime)
	assert.Equal(t, ThemeSystem, user.ThemePreference)
	assert.Empty(t, user.FavoriteCategories)
}

func TestUser_Access(t *testing.T) {
	user := NewUser("user@example.com", "hash", LanguageEN)
	now := user.TrialStartDate

	assert.True(t, user.HasAccess(now), "fresh trial grants access")
	assert.False(t, user.HasAccess(now.Add(3*24*time.Hour)), "expired trial without subscription")

	user.SubscriptionStatus = SubscriptionStatusActive
	user.SubscriptionEndDate = sql.NullTime{Time: now.AddDate(0, 1, 0), Valid: true}
	assert.True(t, user.HasAccess(now.Add(3*24*time.Hour)), "active subscription outlives trial")
	assert.False(t, user.HasAccess(now.AddDate(0, 2, 0)), "ended subscription")
}

func TestParseThemePreference(t *testing.T) {
	for _, valid := range []string{"light", "dark", "system"} {
		theme, err := ParseThemePreference(valid)
		require.NoError(t, err)
		assert.Equal(t, ThemePreference(valid), theme)
	}

	_, err := ParseThemePreference("neon")
	assert.Error(t, err)
}
