package router

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/lurkingpods/backend/internal/api/handler"
	"github.com/lurkingpods/backend/internal/config"
)

// LoggerMiddleware logs HTTP requests with slog
func LoggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		// Process request
		c.Next()

		// Calculate latency
		latency := time.Since(start)

		// Log request details
		logger.Info("HTTP Request",
			slog.Int("status", c.Writer.Status()),
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("query", query),
			slog.String("ip", c.ClientIP()),
			slog.String("user_agent", c.Request.UserAgent()),
			slog.Duration("latency", latency),
			slog.Int("body_size", c.Writer.Size()),
		)

		// Log errors if any
		if len(c.Errors) > 0 {
			for _, e := range c.Errors {
				logger.Error("Request error",
					slog.String("error", e.Error()),
					slog.Uint64("type", uint64(e.Type)),
				)
			}
		}
	}
}

// CORSMiddleware handles Cross-Origin Resource Sharing
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Idempotency-Key")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// AuthMiddleware extracts the bearer token and stores the caller's user ID in
// the request context. The token currently IS the user ID; swapping in signed
// tokens only requires changing the parse step here.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header must be a bearer token",
			})
			return
		}

		if _, err := uuid.Parse(token); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid token",
			})
			return
		}

		c.Set(handler.ContextUserIDKey, token)
		c.Next()
	}
}

type userLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func (ul *userLimiters) get(userID string) *rate.Limiter {
	ul.mu.Lock()
	defer ul.mu.Unlock()

	limiter, ok := ul.limiters[userID]
	if !ok {
		limiter = rate.NewLimiter(ul.rate, ul.burst)
		ul.limiters[userID] = limiter
	}
	return limiter
}

// RateLimitMiddleware applies a per-user token bucket. It must run after
// AuthMiddleware so the user ID is present; unauthenticated requests fall
// back to the client IP.
func RateLimitMiddleware(cfg config.AuthConfig) gin.HandlerFunc {
	limiters := &userLimiters{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(cfg.RateLimitPerSecond),
		burst:    cfg.RateLimitBurst,
	}

	return func(c *gin.Context) {
		key := c.GetString(handler.ContextUserIDKey)
		if key == "" {
			key = c.ClientIP()
		}

		if !limiters.get(key).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded",
			})
			return
		}

		c.Next()
	}
}
