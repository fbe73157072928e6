package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lurkingpods/backend/internal/api/dto"
	"github.com/lurkingpods/backend/internal/domain"
)

// SubscriptionHandler serves subscription status, purchase and cancellation.
type SubscriptionHandler struct {
	logger *slog.Logger
	store  Store
}

// NewSubscriptionHandler creates a new SubscriptionHandler instance
func NewSubscriptionHandler(deps *Dependencies) *SubscriptionHandler {
	return &SubscriptionHandler{
		logger: deps.Logger,
		store:  deps.Store,
	}
}

// Status handles GET /api/v1/subscriptions/status
func (h *SubscriptionHandler) Status(c *gin.Context) {
	userID := AuthedUserID(c)

	user, err := h.store.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	now := time.Now().UTC()
	response := gin.H{
		"subscription_status": string(user.SubscriptionStatus),
		"has_access":          user.HasAccess(now),
		"trial_end_date":      user.TrialEndDate.Format(time.RFC3339),
	}

	sub, err := h.store.GetLatestSubscriptionByUserID(c.Request.Context(), userID)
	switch {
	case err == nil:
		response["subscription"] = dto.NewSubscriptionDTO(sub)
	case errors.Is(err, domain.ErrSubscriptionNotFound):
		// Trial user with no purchase history.
	default:
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Prices handles GET /api/v1/subscriptions/prices
func (h *SubscriptionHandler) Prices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"currency": "USD",
		"plans": []gin.H{
			{"subscription_type": string(domain.SubscriptionMonthly), "amount": domain.MonthlyPriceUSD},
			{"subscription_type": string(domain.SubscriptionYearly), "amount": domain.YearlyPriceUSD},
		},
	})
}

// Purchase handles POST /api/v1/subscriptions/purchase
func (h *SubscriptionHandler) Purchase(c *gin.Context) {
	var req dto.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	subType, err := domain.ParseSubscriptionType(req.SubscriptionType)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	userID := AuthedUserID(c)

	amount := req.Amount
	if amount == 0 {
		amount = subType.Price()
	}
	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	sub, err := domain.NewSubscription(domain.CreateSubscriptionParams{
		UserID:           userID,
		SubscriptionType: subType,
		PaymentMethod:    req.PaymentMethod,
		TransactionID:    req.TransactionID,
		Amount:           amount,
		Currency:         currency,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if err := h.store.CreateSubscription(c.Request.Context(), sub); err != nil {
		respondError(c, h.logger, err)
		return
	}

	err = h.store.UpdateUserSubscription(c.Request.Context(), userID,
		domain.SubscriptionStatusActive,
		sql.NullString{String: string(subType), Valid: true},
		sql.NullTime{Time: sub.EndDate, Valid: true},
	)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("Subscription purchased",
		slog.String("user_id", userID),
		slog.String("subscription_id", sub.ID),
		slog.String("type", string(subType)),
	)

	c.JSON(http.StatusCreated, dto.NewSubscriptionDTO(sub))
}

// Cancel handles POST /api/v1/subscriptions/cancel
// Access continues until the paid period ends.
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	userID := AuthedUserID(c)

	sub, err := h.store.GetLatestSubscriptionByUserID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	cancelled, err := h.store.CancelSubscription(c.Request.Context(), sub.ID, time.Now().UTC())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	err = h.store.UpdateUserSubscription(c.Request.Context(), userID,
		domain.SubscriptionStatusCancelled,
		sql.NullString{String: string(cancelled.SubscriptionType), Valid: true},
		sql.NullTime{Time: cancelled.EndDate, Valid: true},
	)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("Subscription cancelled",
		slog.String("user_id", userID),
		slog.String("subscription_id", cancelled.ID),
	)

	c.JSON(http.StatusOK, dto.NewSubscriptionDTO(cancelled))
}
