package model

import "time"

// SessionValidity is how long a staff session token stays usable after the
// PIN check.
const SessionValidity = 8 * time.Hour

// Session is the ephemeral staff session issued after a successful PIN
// check. It travels in a signed token and is never persisted server-side.
type Session struct {
	MerchantID   string    `json:"merchant_id"`
	MerchantName string    `json:"merchant_name"`
	Timezone     string    `json:"timezone"`
	IssuedAt     time.Time `json:"issued_at"`
}
