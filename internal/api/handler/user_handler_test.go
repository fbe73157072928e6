package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lurkingpods/backend/internal/domain"
)

func seedUser(t *testing.T, store *fakeStore) *domain.User {
	t.Helper()
	user := domain.NewUser("user@example.com", "$2a$10$fakehash", domain.LanguageEN)
	require.NoError(t, store.CreateUser(context.Background(), user))
	return user
}

func TestMe(t *testing.T) {
	store := newFakeStore()
	user := seedUser(t, store)

	r := setupRouter(testDeps(store, &fakePublisher{}), user.ID)

	w := doRequest(t, r, http.MethodGet, "/users/me", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, user.ID, body["id"])
	assert.Equal(t, "user@example.com", body["email"])
	assert.Equal(t, "trial", body["subscription_status"])
	// Trial users keep access until the trial window closes.
	assert.Equal(t, true, body["has_access"])
}

func TestUpdatePreferences(t *testing.T) {
	store := newFakeStore()
	user := seedUser(t, store)

	r := setupRouter(testDeps(store, &fakePublisher{}), user.ID)

	t.Run("partial update leaves other fields alone", func(t *testing.T) {
		w := doRequest(t, r, http.MethodPut, "/users/me/preferences", map[string]any{
			"language": "tr",
			"theme":    "dark",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		stored, err := store.GetUserByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.LanguageTR, stored.LanguagePreference)
		assert.Equal(t, domain.ThemeDark, stored.ThemePreference)
		assert.True(t, stored.NotificationEnabled)
		assert.Equal(t, "00:05", stored.NotificationTime)
	})

	t.Run("notification settings", func(t *testing.T) {
		enabled := false
		w := doRequest(t, r, http.MethodPut, "/users/me/preferences", map[string]any{
			"notification_enabled": enabled,
			"notification_time":    "07:30",
			"favorite_categories":  []string{"technology"},
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		stored, err := store.GetUserByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.False(t, stored.NotificationEnabled)
		assert.Equal(t, "07:30", stored.NotificationTime)
		assert.Equal(t, []string{"technology"}, []string(stored.FavoriteCategories))
	})

	t.Run("device token registration", func(t *testing.T) {
		w := doRequest(t, r, http.MethodPut, "/users/me/preferences", map[string]any{
			"device_token": "apns-token-1",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		stored, err := store.GetUserByID(context.Background(), user.ID)
		require.NoError(t, err)
		require.True(t, stored.DeviceToken.Valid)
		assert.Equal(t, "apns-token-1", stored.DeviceToken.String)

		// An empty token unregisters the device.
		w = doRequest(t, r, http.MethodPut, "/users/me/preferences", map[string]any{
			"device_token": "",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		stored, err = store.GetUserByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.False(t, stored.DeviceToken.Valid)
	})

	t.Run("invalid language", func(t *testing.T) {
		w := doRequest(t, r, http.MethodPut, "/users/me/preferences", map[string]any{
			"language": "de",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid theme", func(t *testing.T) {
		w := doRequest(t, r, http.MethodPut, "/users/me/preferences", map[string]any{
			"theme": "sepia",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
