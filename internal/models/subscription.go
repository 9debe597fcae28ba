package models

import "time"

// Subscription statuses.
const (
	SubscriptionStatusPending  = "pending"
	SubscriptionStatusActive   = "active"
	SubscriptionStatusCanceled = "canceled"
)

// Subscription mirrors the payment processor's view of a user's plan.
// The checkout session itself is created by a remote function; this row
// only tracks the resulting state.
type Subscription struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	UserID            uint       `gorm:"not null;uniqueIndex" json:"user_id"`
	Plan              string     `gorm:"not null" json:"plan"`
	Status            string     `gorm:"not null;default:pending" json:"status"`
	CheckoutSessionID string     `json:"checkout_session_id,omitempty"`
	CurrentPeriodEnd  *time.Time `json:"current_period_end,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}
