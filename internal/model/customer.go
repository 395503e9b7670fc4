package model

import "time"

type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ReminderRecipient is a customer holding an unredeemed, unexpired coupon,
// as selected for a reminder campaign.
type ReminderRecipient struct {
	CustomerName string
	Phone        string
	CouponCode   string
	ExpiresAt    time.Time
}
