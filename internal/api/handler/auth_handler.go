package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/lurkingpods/backend/internal/api/dto"
	"github.com/lurkingpods/backend/internal/domain"
)

// AuthHandler handles registration and login.
type AuthHandler struct {
	logger *slog.Logger
	store  Store
}

// NewAuthHandler creates a new AuthHandler instance
func NewAuthHandler(deps *Dependencies) *AuthHandler {
	return &AuthHandler{
		logger: deps.Logger,
		store:  deps.Store,
	}
}

// Register handles POST /api/v1/auth/register
// Creates an account with a two-day trial.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := domain.ValidateEmail(req.Email); err != nil {
		respondError(c, h.logger, err)
		return
	}
	if err := domain.ValidatePassword(req.Password); err != nil {
		respondError(c, h.logger, err)
		return
	}

	language := domain.LanguageEN
	if req.Language != "" {
		parsed, err := domain.ParseLanguage(req.Language)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		language = parsed
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	user := domain.NewUser(req.Email, string(hash), language)
	if err := h.store.CreateUser(c.Request.Context(), user); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("User registered",
		slog.String("user_id", user.ID),
		slog.String("language", string(language)),
	)

	c.JSON(http.StatusCreated, dto.AuthResponse{
		Token: user.ID,
		User:  dto.NewUserDTO(user, time.Now().UTC()),
	})
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	user, err := h.store.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Same response as a bad password so the endpoint does not leak
			// which emails exist.
			respondError(c, h.logger, domain.ErrInvalidCredentials)
			return
		}
		respondError(c, h.logger, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		respondError(c, h.logger, domain.ErrInvalidCredentials)
		return
	}

	h.logger.Info("User logged in",
		slog.String("user_id", user.ID),
	)

	c.JSON(http.StatusOK, dto.AuthResponse{
		Token: user.ID,
		User:  dto.NewUserDTO(user, time.Now().UTC()),
	})
}
