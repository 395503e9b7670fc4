package events

import (
	"log"

	"kupon-backend/internal/live"
	"kupon-backend/internal/model"
	"kupon-backend/internal/webhook"
)

// Fanout pushes committed redemptions to the staff live feed and to the
// merchant's configured webhook. The redemption is already durable when this
// runs; delivery here is best-effort.
type Fanout struct {
	Hub      *live.Hub
	Webhooks *webhook.WebhookService
}

func NewFanout(hub *live.Hub, webhooks *webhook.WebhookService) *Fanout {
	return &Fanout{Hub: hub, Webhooks: webhooks}
}

func (f *Fanout) RedemptionCommitted(merchant *model.Merchant, result *model.RedeemResult) {
	f.Hub.SendToMerchant(merchant.ID, live.EventRedemption, result)

	if merchant.WebhookURL == "" {
		return
	}
	go func() {
		event := webhook.RedemptionEvent{
			Event:        "coupon.redeemed",
			MerchantID:   merchant.ID,
			CouponCode:   result.Code,
			Offer:        result.OfferText,
			CustomerName: result.CustomerName,
			RedeemedAt:   result.RedeemedAt,
		}
		if err := f.Webhooks.SendRedemptionEvent(merchant.WebhookURL, event); err != nil {
			log.Printf("Failed to deliver redemption webhook for merchant %s: %v", merchant.ID, err)
		}
	}()
}
