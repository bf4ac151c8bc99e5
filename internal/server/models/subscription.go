package models

import "time"

type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionExpired   SubscriptionStatus = "expired"
)

type Subscription struct {
	UserID         string             `json:"-"`
	SubscriptionID string             `json:"subscriptionId"`
	Status         SubscriptionStatus `json:"status"`
	EndsOn         time.Time          `json:"endsOn"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

// ActiveAt reports whether the subscription grants access at t.
func (s *Subscription) ActiveAt(t time.Time) bool {
	return s != nil && s.Status == SubscriptionActive && s.EndsOn.After(t)
}

type Payment struct {
	PaymentID string    `json:"paymentId"`
	UserID    string    `json:"-"`
	Amount    int64     `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}
