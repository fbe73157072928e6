package handler

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"

	"github.com/lurkingpods/backend/internal/api/dto"
	"github.com/lurkingpods/backend/internal/domain"
)

// UserHandler serves the authenticated user's profile and preferences.
type UserHandler struct {
	logger *slog.Logger
	store  Store
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(deps *Dependencies) *UserHandler {
	return &UserHandler{
		logger: deps.Logger,
		store:  deps.Store,
	}
}

// Me handles GET /api/v1/users/me
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.store.GetUserByID(c.Request.Context(), AuthedUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewUserDTO(user, time.Now().UTC()))
}

// UpdatePreferences handles PUT /api/v1/users/me/preferences
// Only fields present in the body are changed.
func (h *UserHandler) UpdatePreferences(c *gin.Context) {
	var req dto.UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	user, err := h.store.GetUserByID(c.Request.Context(), AuthedUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if req.Language != nil {
		language, err := domain.ParseLanguage(*req.Language)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		user.LanguagePreference = language
	}
	if req.Theme != nil {
		theme, err := domain.ParseThemePreference(*req.Theme)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		user.ThemePreference = theme
	}
	if req.NotificationEnabled != nil {
		user.NotificationEnabled = *req.NotificationEnabled
	}
	if req.NotificationTime != nil {
		user.NotificationTime = *req.NotificationTime
	}
	if req.DeviceToken != nil {
		// An empty token unregisters the device.
		user.DeviceToken = sql.NullString{String: *req.DeviceToken, Valid: *req.DeviceToken != ""}
	}
	if req.FavoriteCategories != nil {
		user.FavoriteCategories = pq.StringArray(req.FavoriteCategories)
	}
	user.UpdatedAt = time.Now().UTC()

	if err := h.store.UpdateUserPreferences(c.Request.Context(), user); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("User preferences updated",
		slog.String("user_id", user.ID),
	)

	c.JSON(http.StatusOK, dto.NewUserDTO(user, time.Now().UTC()))
}
