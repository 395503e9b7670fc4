package model

import "time"

type ChannelStatus string

const (
	ChannelStatusQR           ChannelStatus = "qr"
	ChannelStatusConnected    ChannelStatus = "connected"
	ChannelStatusDisconnected ChannelStatus = "disconnected"
)

type Merchant struct {
	ID                 string        `json:"id"`
	Slug               string        `json:"slug"`
	Name               string        `json:"name"`
	RedeemPIN          string        `json:"-"`
	IsActive           bool          `json:"is_active"`
	Timezone           string        `json:"timezone"`
	Offer              Offer         `json:"offer"`
	WebhookURL         string        `json:"webhook_url,omitempty"`
	LastReminderSentAt *time.Time    `json:"last_reminder_sent_at,omitempty"`
	WAJid              string        `json:"-"`
	WAStatus           ChannelStatus `json:"wa_status"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// Location resolves the merchant's IANA timezone, falling back to UTC when
// the stored value is missing or invalid.
func (m *Merchant) Location() *time.Location {
	if m.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(m.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
