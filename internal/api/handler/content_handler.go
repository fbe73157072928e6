package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lurkingpods/backend/internal/api/dto"
	"github.com/lurkingpods/backend/internal/domain"
)

const defaultDailyMixSize = 6

// ContentHandler serves categories and podcasts.
type ContentHandler struct {
	logger *slog.Logger
	store  Store
}

// NewContentHandler creates a new ContentHandler instance
func NewContentHandler(deps *Dependencies) *ContentHandler {
	return &ContentHandler{
		logger: deps.Logger,
		store:  deps.Store,
	}
}

// requestLanguage reads the language query parameter, defaulting to English.
func requestLanguage(c *gin.Context) (domain.Language, error) {
	raw := c.Query("language")
	if raw == "" {
		return domain.LanguageEN, nil
	}
	return domain.ParseLanguage(raw)
}

// DailyMix handles GET /api/v1/content/daily-mix
// Returns today's featured episodes for one language.
func (h *ContentHandler) DailyMix(c *gin.Context) {
	language, err := requestLanguage(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	limit := defaultDailyMixSize
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	podcasts, err := h.store.GetDailyMix(c.Request.Context(), language, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	response := make([]dto.PodcastDTO, len(podcasts))
	for i := range podcasts {
		response[i] = dto.NewPodcastDTO(&podcasts[i])
	}

	c.JSON(http.StatusOK, gin.H{
		"language":        string(language),
		"podcasts":        response,
		"next_refresh_at": nextDailyRefresh(time.Now().UTC()).Format(time.RFC3339),
	})
}

// nextDailyRefresh returns the next midnight UTC, when the daily mix rolls over.
func nextDailyRefresh(now time.Time) time.Time {
	return now.Truncate(24 * time.Hour).Add(24 * time.Hour)
}

// ListCategories handles GET /api/v1/content/categories
func (h *ContentHandler) ListCategories(c *gin.Context) {
	language, err := requestLanguage(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	categories, err := h.store.ListActiveCategories(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	response := make([]dto.CategoryDTO, len(categories))
	for i := range categories {
		response[i] = dto.NewCategoryDTO(&categories[i], language)
	}

	c.JSON(http.StatusOK, gin.H{"categories": response})
}

// ListCategoryPodcasts handles GET /api/v1/content/categories/:category_id/podcasts
func (h *ContentHandler) ListCategoryPodcasts(c *gin.Context) {
	categoryID := c.Param("category_id")
	if _, err := uuid.Parse(categoryID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category_id must be a valid UUID"})
		return
	}

	language, err := requestLanguage(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if _, err := h.store.GetCategoryByID(c.Request.Context(), categoryID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	podcasts, err := h.store.ListPodcastsByCategory(c.Request.Context(), categoryID, language)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	response := make([]dto.PodcastDTO, len(podcasts))
	for i := range podcasts {
		response[i] = dto.NewPodcastDTO(&podcasts[i])
	}

	c.JSON(http.StatusOK, gin.H{"podcasts": response})
}

// GetPodcast handles GET /api/v1/content/podcasts/:podcast_id
// Expired episodes are indistinguishable from deleted ones.
func (h *ContentHandler) GetPodcast(c *gin.Context) {
	podcastID := c.Param("podcast_id")
	if _, err := uuid.Parse(podcastID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "podcast_id must be a valid UUID"})
		return
	}

	podcast, err := h.store.GetPodcastByID(c.Request.Context(), podcastID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if podcast.IsExpired(time.Now().UTC()) {
		respondError(c, h.logger, domain.ErrPodcastNotFound)
		return
	}

	c.JSON(http.StatusOK, dto.NewPodcastDTO(podcast))
}

// RecordPlay handles POST /api/v1/content/podcasts/:podcast_id/play
func (h *ContentHandler) RecordPlay(c *gin.Context) {
	podcastID := c.Param("podcast_id")
	if _, err := uuid.Parse(podcastID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "podcast_id must be a valid UUID"})
		return
	}

	playCount, err := h.store.IncrementPlayCount(c.Request.Context(), podcastID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"podcast_id": podcastID,
		"play_count": playCount,
	})
}
