package model

import "time"

// MessageLog is one outbound reminder delivery attempt.
type MessageLog struct {
	ID           int64     `json:"id"`
	MerchantID   string    `json:"merchant_id"`
	CampaignID   string    `json:"campaign_id"`
	ToNumber     string    `json:"to_number"`
	Content      string    `json:"content"`
	Sent         bool      `json:"sent"`
	ErrorMessage string    `json:"error_message,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// CampaignResult summarizes a reminder campaign dispatch.
type CampaignResult struct {
	CampaignID string `json:"campaign_id"`
	Attempted  int    `json:"attempted"`
	Sent       int    `json:"sent"`
	Failed     int    `json:"failed"`
}

// MerchantStats are advisory denormalized counters plus recent activity.
// The coupon rows are authoritative; these may lag.
type MerchantStats struct {
	RedeemedCount    int         `json:"redeemed_count"`
	ClaimedCount     int         `json:"claimed_count"`
	DailyRedemptions []DailyStat `json:"daily_redemptions"`
}

type DailyStat struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}
