package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lurkingpods/backend/internal/api/dto"
	"github.com/lurkingpods/backend/internal/domain"
)

// AdminHandler serves the content generation and moderation endpoints.
type AdminHandler struct {
	logger     *slog.Logger
	store      Store
	publisher  JobPublisher
	maxRetries int
}

// NewAdminHandler creates a new AdminHandler instance
func NewAdminHandler(deps *Dependencies) *AdminHandler {
	maxRetries := deps.MaxRetries
	if maxRetries <= 0 {
		maxRetries = domain.DefaultMaxRetries
	}

	return &AdminHandler{
		logger:     deps.Logger,
		store:      deps.Store,
		publisher:  deps.Publisher,
		maxRetries: maxRetries,
	}
}

// GenerateContent handles POST /api/v1/admin/generate-content
// Creates a generation job and enqueues it for the worker. Generation itself
// is asynchronous; poll the job endpoint for the outcome.
func (h *AdminHandler) GenerateContent(c *gin.Context) {
	var req dto.GenerateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	language, err := domain.ParseLanguage(req.Language)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if _, err := h.store.GetCategoryByID(c.Request.Context(), req.CategoryID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	job := domain.NewGenerationJob(req.CategoryID, language, h.maxRetries)
	if err := h.store.CreateJob(c.Request.Context(), job); err != nil {
		respondError(c, h.logger, err)
		return
	}

	if err := h.publisher.PublishJob(c.Request.Context(), job.ID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("Generation job enqueued",
		slog.String("job_id", job.ID),
		slog.String("category_id", req.CategoryID),
		slog.String("language", string(language)),
	)

	c.JSON(http.StatusAccepted, dto.NewJobDTO(job))
}

// ListJobs handles GET /api/v1/admin/jobs?status=...
func (h *AdminHandler) ListJobs(c *gin.Context) {
	raw := c.DefaultQuery("status", string(domain.JobStatusFailed))
	status, err := domain.ParseJobStatus(raw)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	jobs, err := h.store.ListJobsByStatus(c.Request.Context(), status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	response := make([]dto.JobDTO, len(jobs))
	for i := range jobs {
		response[i] = dto.NewJobDTO(&jobs[i])
	}

	c.JSON(http.StatusOK, gin.H{
		"status": string(status),
		"jobs":   response,
	})
}

// GetJob handles GET /api/v1/admin/jobs/:job_id
func (h *AdminHandler) GetJob(c *gin.Context) {
	jobID := c.Param("job_id")
	if _, err := uuid.Parse(jobID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "job_id must be a valid UUID"})
		return
	}

	job, err := h.store.GetJobByID(c.Request.Context(), jobID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewJobDTO(job))
}

// RetryJob handles POST /api/v1/admin/jobs/:job_id/retry
// Re-enqueues a failed job with remaining retry budget.
func (h *AdminHandler) RetryJob(c *gin.Context) {
	jobID := c.Param("job_id")
	if _, err := uuid.Parse(jobID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "job_id must be a valid UUID"})
		return
	}

	job, err := h.store.GetJobByID(c.Request.Context(), jobID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if !job.CanRetry() {
		respondError(c, h.logger, domain.ErrJobNotRetryable)
		return
	}

	if err := h.publisher.PublishJob(c.Request.Context(), job.ID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("Retry enqueued for failed job",
		slog.String("job_id", job.ID),
		slog.Int("retry_count", job.RetryCount),
		slog.Int("max_retries", job.MaxRetries),
	)

	c.JSON(http.StatusAccepted, dto.NewJobDTO(job))
}

// CleanupExpired handles DELETE /api/v1/admin/content/expired
func (h *AdminHandler) CleanupExpired(c *gin.Context) {
	deleted, err := h.store.DeleteExpiredPodcasts(c.Request.Context(), time.Now().UTC())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("Expired podcasts deleted",
		slog.Int64("deleted", deleted),
	)

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// Stats handles GET /api/v1/admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	jobStats, err := h.store.GetJobStats(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	podcasts, err := h.store.CountPodcasts(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	categories, err := h.store.CountActiveCategories(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	jobs := gin.H{
		"total":      jobStats.TotalJobs,
		"pending":    jobStats.PendingJobs,
		"generating": jobStats.GeneratingJobs,
		"completed":  jobStats.CompletedJobs,
		"failed":     jobStats.FailedJobs,
	}
	if jobStats.LastGeneration.Valid {
		jobs["last_generation"] = jobStats.LastGeneration.Time
	}

	c.JSON(http.StatusOK, gin.H{
		"jobs":              jobs,
		"podcasts":          podcasts,
		"active_categories": categories,
	})
}

// CreateCategory handles POST /api/v1/admin/categories
func (h *AdminHandler) CreateCategory(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	category, err := domain.NewCategory(domain.CreateCategoryParams{
		Name:          req.Name,
		DisplayNameEN: req.DisplayNameEN,
		DisplayNameTR: req.DisplayNameTR,
		DescriptionEN: req.DescriptionEN,
		DescriptionTR: req.DescriptionTR,
		IconURL:       req.IconURL,
		ColorHex:      req.ColorHex,
		SortOrder:     req.SortOrder,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if err := h.store.CreateCategory(c.Request.Context(), category); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("Category created",
		slog.String("category_id", category.ID),
		slog.String("name", category.Name),
	)

	c.JSON(http.StatusCreated, gin.H{"id": category.ID, "name": category.Name})
}

// SetFeatured handles PUT /api/v1/admin/podcasts/:podcast_id/featured
func (h *AdminHandler) SetFeatured(c *gin.Context) {
	podcastID := c.Param("podcast_id")
	if _, err := uuid.Parse(podcastID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "podcast_id must be a valid UUID"})
		return
	}

	var req struct {
		Featured bool `json:"featured"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.store.SetFeatured(c.Request.Context(), podcastID, req.Featured); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"podcast_id": podcastID,
		"featured":   req.Featured,
	})
}
