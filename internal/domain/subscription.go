package domain

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// SubscriptionType is the billing period of a paid plan.
type SubscriptionType string

const (
	SubscriptionMonthly SubscriptionType = "monthly"
	SubscriptionYearly  SubscriptionType = "yearly"
)

// ParseSubscriptionType validates a raw plan value.
func ParseSubscriptionType(s string) (SubscriptionType, error) {
	switch SubscriptionType(s) {
	case SubscriptionMonthly, SubscriptionYearly:
		return SubscriptionType(s), nil
	}
	return "", &ValidationError{Field: "subscription_type", Rule: `be "monthly" or "yearly"`}
}

// Plan prices in USD.
const (
	MonthlyPriceUSD = 9.99
	YearlyPriceUSD  = 99.99
)

// Price returns the USD price of the plan.
func (t SubscriptionType) Price() float64 {
	if t == SubscriptionYearly {
		return YearlyPriceUSD
	}
	return MonthlyPriceUSD
}

// Subscription is one paid access record.
type Subscription struct {
	ID               string             `db:"id"`
	UserID           string             `db:"user_id"`
	SubscriptionType SubscriptionType   `db:"subscription_type"`
	Status           SubscriptionStatus `db:"status"`
	StartDate        time.Time          `db:"start_date"`
	EndDate          time.Time          `db:"end_date"`
	RenewalDate      time.Time          `db:"renewal_date"`
	PaymentMethod    string             `db:"payment_method"`
	TransactionID    string             `db:"transaction_id"`
	Amount           float64            `db:"amount"`
	Currency         string             `db:"currency"`
	CancelledAt      sql.NullTime       `db:"cancelled_at"`
	CreatedAt        time.Time          `db:"created_at"`
}

// CreateSubscriptionParams carries the fields of a verified purchase.
type CreateSubscriptionParams struct {
	UserID           string
	SubscriptionType SubscriptionType
	PaymentMethod    string
	TransactionID    string
	Amount           float64
	Currency         string
}

// Validate applies the subscription validation rules.
func (p *CreateSubscriptionParams) Validate() error {
	if p.Amount <= 0 {
		return &ValidationError{Field: "amount", Rule: "be greater than 0"}
	}
	if p.Currency != "USD" {
		return &ValidationError{Field: "currency", Rule: `equal "USD"`}
	}
	if p.TransactionID == "" {
		return &ValidationError{Field: "transaction_id", Rule: "be non-empty"}
	}
	return nil
}

// SubscriptionEndDate computes when a plan started at start runs out.
func SubscriptionEndDate(start time.Time, t SubscriptionType) time.Time {
	if t == SubscriptionMonthly {
		return start.AddDate(0, 1, 0)
	}
	return start.AddDate(1, 0, 0)
}

// NewSubscription validates params and builds an active subscription starting now.
func NewSubscription(params CreateSubscriptionParams) (*Subscription, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	end := SubscriptionEndDate(now, params.SubscriptionType)
	return &Subscription{
		ID:               uuid.New().String(),
		UserID:           params.UserID,
		SubscriptionType: params.SubscriptionType,
		Status:           SubscriptionStatusActive,
		StartDate:        now,
		EndDate:          end,
		RenewalDate:      end,
		PaymentMethod:    params.PaymentMethod,
		TransactionID:    params.TransactionID,
		Amount:           params.Amount,
		Currency:         params.Currency,
		CreatedAt:        now,
	}, nil
}

// IsActive reports whether the subscription grants access right now.
func (s *Subscription) IsActive(now time.Time) bool {
	return s.Status == SubscriptionStatusActive && now.Before(s.EndDate)
}

// IsExpired reports whether the paid period has run out.
func (s *Subscription) IsExpired(now time.Time) bool {
	return now.After(s.EndDate)
}
