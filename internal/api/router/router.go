package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lurkingpods/backend/internal/api/handler"
	"github.com/lurkingpods/backend/internal/config"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies, authCfg config.AuthConfig) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "lurkingpods-api",
		})
	})

	authHandler := handler.NewAuthHandler(deps)
	contentHandler := handler.NewContentHandler(deps)
	userHandler := handler.NewUserHandler(deps)
	subscriptionHandler := handler.NewSubscriptionHandler(deps)
	adminHandler := handler.NewAdminHandler(deps)

	// API v1 routes
	v1 := r.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	// Everything below requires a bearer token.
	authed := v1.Group("")
	authed.Use(AuthMiddleware())
	authed.Use(RateLimitMiddleware(authCfg))
	{
		// Content requires an unexpired trial or an active subscription.
		content := authed.Group("/content")
		content.Use(handler.RequireAccess(deps))
		{
			content.GET("/daily-mix", contentHandler.DailyMix)
			content.GET("/categories", contentHandler.ListCategories)
			content.GET("/categories/:category_id/podcasts", contentHandler.ListCategoryPodcasts)
			content.GET("/podcasts/:podcast_id", contentHandler.GetPodcast)
			content.POST("/podcasts/:podcast_id/play", contentHandler.RecordPlay)
		}

		users := authed.Group("/users")
		{
			users.GET("/me", userHandler.Me)
			users.PUT("/me/preferences", userHandler.UpdatePreferences)
		}

		subscriptions := authed.Group("/subscriptions")
		{
			subscriptions.GET("/status", subscriptionHandler.Status)
			subscriptions.GET("/prices", subscriptionHandler.Prices)
			subscriptions.POST("/purchase", subscriptionHandler.Purchase)
			subscriptions.POST("/cancel", subscriptionHandler.Cancel)
		}

		admin := authed.Group("/admin")
		{
			admin.POST("/generate-content", adminHandler.GenerateContent)
			admin.GET("/jobs", adminHandler.ListJobs)
			admin.GET("/jobs/:job_id", adminHandler.GetJob)
			admin.POST("/jobs/:job_id/retry", adminHandler.RetryJob)
			admin.DELETE("/content/expired", adminHandler.CleanupExpired)
			admin.GET("/stats", adminHandler.Stats)
			admin.POST("/categories", adminHandler.CreateCategory)
			admin.PUT("/podcasts/:podcast_id/featured", adminHandler.SetFeatured)
		}
	}

	return r
}
