package service

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"kupon-backend/internal/model"
)

// CooldownGuard is the per-merchant gate protecting customers from repeat
// bulk campaigns. It is a soft rate limit, not a security boundary.
type CooldownGuard struct {
	Window time.Duration
}

// Check reports whether a campaign is allowed. When it is not, the first
// return value is the number of whole hours remaining, rounded up, which
// strictly decreases as now approaches lastSent+Window.
func (g CooldownGuard) Check(lastSent *time.Time, now time.Time) (int, bool) {
	if lastSent == nil {
		return 0, true
	}
	remaining := g.Window - now.Sub(*lastSent)
	if remaining <= 0 {
		return 0, true
	}
	return int(math.Ceil(remaining.Hours())), false
}

type ReminderMerchantStore interface {
	GetByID(ctx context.Context, id string) (*model.Merchant, error)
	UpdateLastReminderSentAt(ctx context.Context, id string, sentAt time.Time) error
}

type RecipientStore interface {
	GetReminderRecipients(ctx context.Context, merchantID string) ([]model.ReminderRecipient, error)
}

type MessageLogger interface {
	LogMessage(ctx context.Context, m *model.MessageLog) error
}

// Notifier delivers one reminder message on the merchant's channel.
type Notifier interface {
	SendText(ctx context.Context, merchantID, phone, text string) error
}

// ReminderService dispatches reminder campaigns to customers holding
// unredeemed coupons, gated by the 24-hour cooldown.
type ReminderService struct {
	Merchants  ReminderMerchantStore
	Recipients RecipientStore
	Messages   MessageLogger
	Notifier   Notifier
	Guard      CooldownGuard

	now func() time.Time
}

func NewReminderService(merchants ReminderMerchantStore, recipients RecipientStore, messages MessageLogger, notifier Notifier) *ReminderService {
	return &ReminderService{
		Merchants:  merchants,
		Recipients: recipients,
		Messages:   messages,
		Notifier:   notifier,
		Guard:      CooldownGuard{Window: 24 * time.Hour},
		now:        time.Now,
	}
}

// SendCampaign runs the cooldown check and dispatches when allowed.
func (s *ReminderService) SendCampaign(ctx context.Context, merchantID string) (*model.CampaignResult, error) {
	merchant, err := s.loadMerchant(ctx, merchantID)
	if err != nil {
		return nil, err
	}

	if remaining, ok := s.Guard.Check(merchant.LastReminderSentAt, s.now()); !ok {
		return nil, &model.CooldownActiveError{RemainingHours: remaining}
	}

	return s.dispatch(ctx, merchant)
}

// ForceCampaign is the admin override path. It deliberately skips the guard;
// authorization happens at the admin HTTP layer, not here.
func (s *ReminderService) ForceCampaign(ctx context.Context, merchantID string) (*model.CampaignResult, error) {
	merchant, err := s.loadMerchant(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	return s.dispatch(ctx, merchant)
}

func (s *ReminderService) loadMerchant(ctx context.Context, merchantID string) (*model.Merchant, error) {
	merchant, err := s.Merchants.GetByID(ctx, merchantID)
	if err != nil {
		return nil, fmt.Errorf("merchant lookup: %w", err)
	}
	if merchant == nil {
		return nil, fmt.Errorf("merchant %s not found", merchantID)
	}
	return merchant, nil
}

// dispatch sends one message per recipient and records every attempt. The
// cooldown timestamp is persisted only after sends were attempted, so a
// campaign that dies before reaching any customer does not consume the
// window. Partial delivery failures still consume it: customers who did
// receive a message should not be messaged again within 24 hours.
func (s *ReminderService) dispatch(ctx context.Context, merchant *model.Merchant) (*model.CampaignResult, error) {
	recipients, err := s.Recipients.GetReminderRecipients(ctx, merchant.ID)
	if err != nil {
		return nil, fmt.Errorf("load recipients: %w", err)
	}

	result := &model.CampaignResult{
		CampaignID: uuid.NewString(),
		Attempted:  len(recipients),
	}

	loc := merchant.Location()
	for _, rec := range recipients {
		text := fmt.Sprintf(
			"Hi %s! Your coupon %s for %s is still waiting. It expires on %s. Show the code in store to redeem.",
			rec.CustomerName,
			rec.CouponCode,
			merchant.Offer.DisplayText(),
			rec.ExpiresAt.In(loc).Format("Jan 2, 2006"),
		)

		sendErr := s.Notifier.SendText(ctx, merchant.ID, rec.Phone, text)
		entry := &model.MessageLog{
			MerchantID: merchant.ID,
			CampaignID: result.CampaignID,
			ToNumber:   rec.Phone,
			Content:    text,
			Sent:       sendErr == nil,
			Timestamp:  s.now(),
		}
		if sendErr != nil {
			result.Failed++
			entry.ErrorMessage = sendErr.Error()
			log.Printf("Reminder send to %s failed: %v", rec.Phone, sendErr)
		} else {
			result.Sent++
		}

		if logErr := s.Messages.LogMessage(ctx, entry); logErr != nil {
			log.Printf("Failed to log reminder message: %v", logErr)
		}
	}

	if result.Attempted > 0 {
		if err := s.Merchants.UpdateLastReminderSentAt(ctx, merchant.ID, s.now()); err != nil {
			return nil, fmt.Errorf("update cooldown timestamp: %w", err)
		}
	}

	return result, nil
}
