package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Subscription mirrors the billing provider's state for one user. Checkout
// and renewal live entirely in the provider; this row is a read model.
type Subscription struct {
	bun.BaseModel `bun:"table:subscriptions,alias:sub"`

	ID               int64     `bun:"id,pk,autoincrement" json:"-"`
	UserID           string    `bun:"user_id,notnull,unique" json:"user_id"`
	Plan             string    `bun:"plan,notnull,default:'free'" json:"plan"`
	Status           string    `bun:"status,notnull,default:'inactive'" json:"status"`
	CurrentPeriodEnd time.Time `bun:"current_period_end" json:"current_period_end"`
	CreatedAt        time.Time `bun:"created_at,notnull,default:current_timestamp" json:"-"`
	UpdatedAt        time.Time `bun:"updated_at,notnull" json:"-"`
}

// Subscription plan constants
const (
	PlanFree    = "free"
	PlanPremium = "premium"
)

// Subscription status constants
const (
	SubscriptionActive   = "active"
	SubscriptionInactive = "inactive"
	SubscriptionPastDue  = "past_due"
)

// IsActive reports whether the subscription grants premium access right now.
func (s *Subscription) IsActive(now time.Time) bool {
	return s != nil && s.Status == SubscriptionActive && now.Before(s.CurrentPeriodEnd)
}
