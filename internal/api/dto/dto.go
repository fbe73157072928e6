// Package dto defines the request and response bodies of the HTTP API.
package dto

import (
	"time"

	"github.com/lurkingpods/backend/internal/domain"
)

// RegisterRequest is the body of POST /api/v1/auth/register.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Language string `json:"language"`
}

// LoginRequest is the body of POST /api/v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse carries the access token and profile returned by auth endpoints.
type AuthResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

// UserDTO is the public view of an account.
type UserDTO struct {
	ID                  string   `json:"id"`
	Email               string   `json:"email"`
	SubscriptionStatus  string   `json:"subscription_status"`
	SubscriptionType    string   `json:"subscription_type,omitempty"`
	TrialEndDate        string   `json:"trial_end_date"`
	LanguagePreference  string   `json:"language_preference"`
	NotificationEnabled bool     `json:"notification_enabled"`
	NotificationTime    string   `json:"notification_time"`
	FavoriteCategories  []string `json:"favorite_categories"`
	ThemePreference     string   `json:"theme_preference"`
	HasAccess           bool     `json:"has_access"`
}

// NewUserDTO maps a user to its public view.
func NewUserDTO(user *domain.User, now time.Time) UserDTO {
	dto := UserDTO{
		ID:                  user.ID,
		Email:               user.Email,
		SubscriptionStatus:  string(user.SubscriptionStatus),
		TrialEndDate:        user.TrialEndDate.Format(time.RFC3339),
		LanguagePreference:  string(user.LanguagePreference),
		NotificationEnabled: user.NotificationEnabled,
		NotificationTime:    user.NotificationTime,
		FavoriteCategories:  user.FavoriteCategories,
		ThemePreference:     string(user.ThemePreference),
		HasAccess:           user.HasAccess(now),
	}
	if user.SubscriptionType.Valid {
		dto.SubscriptionType = user.SubscriptionType.String
	}
	return dto
}

// UpdatePreferencesRequest is the body of PUT /api/v1/users/me/preferences.
// Pointer fields distinguish "not sent" from zero values.
type UpdatePreferencesRequest struct {
	Language            *string  `json:"language"`
	NotificationEnabled *bool    `json:"notification_enabled"`
	NotificationTime    *string  `json:"notification_time"`
	DeviceToken         *string  `json:"device_token"`
	FavoriteCategories  []string `json:"favorite_categories"`
	Theme               *string  `json:"theme"`
}

// PodcastDTO is the public view of an episode.
type PodcastDTO struct {
	ID            string  `json:"id"`
	CategoryID    string  `json:"category_id"`
	Language      string  `json:"language"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	AudioFileURL  string  `json:"audio_file_url"`
	AudioDuration int     `json:"audio_duration"`
	QualityScore  float64 `json:"quality_score"`
	PlayCount     int     `json:"play_count"`
	IsFeatured    bool    `json:"is_featured"`
	CreatedAt     string  `json:"created_at"`
	ExpiresAt     string  `json:"expires_at"`
}

// NewPodcastDTO maps a podcast to its public view.
func NewPodcastDTO(p *domain.Podcast) PodcastDTO {
	return PodcastDTO{
		ID:            p.ID,
		CategoryID:    p.CategoryID,
		Language:      string(p.Language),
		Title:         p.Title,
		Description:   p.Description,
		AudioFileURL:  p.AudioFileURL,
		AudioDuration: p.AudioDuration,
		QualityScore:  p.QualityScore,
		PlayCount:     p.PlayCount,
		IsFeatured:    p.IsFeatured,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
		ExpiresAt:     p.ExpiresAt.Format(time.RFC3339),
	}
}

// CategoryDTO is the public view of a category, localized per request.
type CategoryDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	IconURL     string `json:"icon_url"`
	ColorHex    string `json:"color_hex"`
	SortOrder   int    `json:"sort_order"`
}

// NewCategoryDTO maps a category to its localized public view.
func NewCategoryDTO(c *domain.Category, language domain.Language) CategoryDTO {
	return CategoryDTO{
		ID:          c.ID,
		Name:        c.Name,
		DisplayName: c.DisplayName(language),
		Description: c.Description(language),
		IconURL:     c.IconURL,
		ColorHex:    c.ColorHex,
		SortOrder:   c.SortOrder,
	}
}

// PurchaseRequest is the body of POST /api/v1/subscriptions/purchase.
type PurchaseRequest struct {
	SubscriptionType string  `json:"subscription_type" binding:"required"`
	PaymentMethod    string  `json:"payment_method" binding:"required"`
	TransactionID    string  `json:"transaction_id" binding:"required"`
	Amount           float64 `json:"amount"`
	Currency         string  `json:"currency"`
}

// SubscriptionDTO is the public view of a subscription record.
type SubscriptionDTO struct {
	ID               string  `json:"id"`
	SubscriptionType string  `json:"subscription_type"`
	Status           string  `json:"status"`
	StartDate        string  `json:"start_date"`
	EndDate          string  `json:"end_date"`
	RenewalDate      string  `json:"renewal_date"`
	Amount           float64 `json:"amount"`
	Currency         string  `json:"currency"`
	CancelledAt      string  `json:"cancelled_at,omitempty"`
}

// NewSubscriptionDTO maps a subscription to its public view.
func NewSubscriptionDTO(s *domain.Subscription) SubscriptionDTO {
	dto := SubscriptionDTO{
		ID:               s.ID,
		SubscriptionType: string(s.SubscriptionType),
		Status:           string(s.Status),
		StartDate:        s.StartDate.Format(time.RFC3339),
		EndDate:          s.EndDate.Format(time.RFC3339),
		RenewalDate:      s.RenewalDate.Format(time.RFC3339),
		Amount:           s.Amount,
		Currency:         s.Currency,
	}
	if s.CancelledAt.Valid {
		dto.CancelledAt = s.CancelledAt.Time.Format(time.RFC3339)
	}
	return dto
}

// GenerateContentRequest is the body of POST /api/v1/admin/generate-content.
type GenerateContentRequest struct {
	CategoryID string `json:"category_id" binding:"required"`
	Language   string `json:"language" binding:"required"`
}

// JobDTO is the admin view of a generation job.
type JobDTO struct {
	ID                 string `json:"id"`
	CategoryID         string `json:"category_id"`
	Language           string `json:"language"`
	Status             string `json:"status"`
	RetryCount         int    `json:"retry_count"`
	MaxRetries         int    `json:"max_retries"`
	ErrorMessage       string `json:"error_message,omitempty"`
	GeneratedPodcastID string `json:"generated_podcast_id,omitempty"`
	StartedAt          string `json:"started_at"`
	CompletedAt        string `json:"completed_at,omitempty"`
}

// NewJobDTO maps a generation job to its admin view.
func NewJobDTO(job *domain.GenerationJob) JobDTO {
	dto := JobDTO{
		ID:         job.ID,
		CategoryID: job.CategoryID,
		Language:   string(job.Language),
		Status:     string(job.Status),
		RetryCount: job.RetryCount,
		MaxRetries: job.MaxRetries,
		StartedAt:  job.StartedAt.Format(time.RFC3339),
	}
	if job.ErrorMessage.Valid {
		dto.ErrorMessage = job.ErrorMessage.String
	}
	if job.GeneratedPodcastID.Valid {
		dto.GeneratedPodcastID = job.GeneratedPodcastID.String
	}
	if job.CompletedAt.Valid {
		dto.CompletedAt = job.CompletedAt.Time.Format(time.RFC3339)
	}
	return dto
}

// CreateCategoryRequest is the body of POST /api/v1/admin/categories.
type CreateCategoryRequest struct {
	Name          string `json:"name" binding:"required"`
	DisplayNameEN string `json:"display_name_en"`
	DisplayNameTR string `json:"display_name_tr"`
	DescriptionEN string `json:"description_en"`
	DescriptionTR string `json:"description_tr"`
	IconURL       string `json:"icon_url"`
	ColorHex      string `json:"color_hex" binding:"required"`
	SortOrder     int    `json:"sort_order"`
}
