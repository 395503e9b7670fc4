package webhook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// WebhookService notifies merchant systems of committed redemptions.
// Delivery is fire-and-forget with a short retry; the coupon row is already
// authoritative by the time this runs.
type WebhookService struct {
	Client *http.Client
}

func NewWebhookService() *WebhookService {
	return &WebhookService{
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type RedemptionEvent struct {
	Event        string    `json:"event"`
	MerchantID   string    `json:"merchant_id"`
	CouponCode   string    `json:"coupon_code"`
	Offer        string    `json:"offer"`
	CustomerName string    `json:"customer_name"`
	RedeemedAt   time.Time `json:"redeemed_at"`
}

func (s *WebhookService) SendRedemptionEvent(webhookURL string, event RedemptionEvent) error {
	if webhookURL == "" {
		return nil
	}

	jsonData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	// Simple retry logic (3 times)
	var lastErr error
	for i := 0; i < 3; i++ {
		resp, err := s.Client.Post(webhookURL, "application/json", bytes.NewBuffer(jsonData))
		if err != nil {
			lastErr = err
			time.Sleep(time.Duration(i+1) * time.Second)
			continue
		}
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}

		lastErr = fmt.Errorf("webhook returned status: %d", resp.StatusCode)
		time.Sleep(time.Duration(i+1) * time.Second)
	}

	return fmt.Errorf("failed to send webhook after retries: %w", lastErr)
}
