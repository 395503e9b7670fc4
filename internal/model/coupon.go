package model

import "time"

type CouponStatus string

const (
	CouponStatusActive   CouponStatus = "active"
	CouponStatusRedeemed CouponStatus = "redeemed"
)

type Coupon struct {
	ID         string       `json:"id"`
	Code       string       `json:"code"`
	MerchantID string       `json:"-"`
	CustomerID string       `json:"-"`
	Status     CouponStatus `json:"status"`
	AuthToken  string       `json:"-"`
	CreatedAt  time.Time    `json:"created_at"`
	ExpiresAt  time.Time    `json:"expires_at"`
	RedeemedAt *time.Time   `json:"redeemed_at,omitempty"`
}

// Expired reports whether the coupon's validity window has passed. Expiry is
// derived at read time; the stored status stays "active" until redemption.
func (c *Coupon) Expired(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}

// VerificationResult is the advisory payload shown to staff between the
// verify and confirm steps.
type VerificationResult struct {
	OfferText     string `json:"name"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
}

// RedeemResult is returned after a successful redemption commit.
type RedeemResult struct {
	Code         string    `json:"code"`
	OfferText    string    `json:"offer"`
	CustomerName string    `json:"customer"`
	RedeemedAt   time.Time `json:"redeemed_at"`
}
