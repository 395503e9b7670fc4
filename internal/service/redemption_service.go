package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"kupon-backend/internal/model"
	"kupon-backend/internal/utils"
)

// CouponStore is the one store with a mutation discipline: Redeem must be an
// atomic conditional write reporting whether it changed the row.
type CouponStore interface {
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)
	Redeem(ctx context.Context, code, merchantID string, now time.Time) (*model.Coupon, bool, error)
}

type CustomerStore interface {
	GetByID(ctx context.Context, id string) (*model.Customer, error)
}

type MerchantStore interface {
	GetByID(ctx context.Context, id string) (*model.Merchant, error)
}

type StatsStore interface {
	IncrementRedeemed(ctx context.Context, merchantID string) error
}

// EventSink receives committed redemptions for fan-out (live staff feed,
// merchant webhooks). Implementations must not block.
type EventSink interface {
	RedemptionCommitted(merchant *model.Merchant, result *model.RedeemResult)
}

// RedemptionService implements the two-phase verify→confirm protocol. Verify
// is purely advisory; Redeem commits through the store's compare-and-set so
// at-most-once holds across any number of processes without app-level locks.
type RedemptionService struct {
	Coupons   CouponStore
	Customers CustomerStore
	Merchants MerchantStore
	Stats     StatsStore
	Events    EventSink

	now func() time.Time
}

func NewRedemptionService(coupons CouponStore, customers CustomerStore, merchants MerchantStore, stats StatsStore, events EventSink) *RedemptionService {
	return &RedemptionService{
		Coupons:   coupons,
		Customers: customers,
		Merchants: merchants,
		Stats:     stats,
		Events:    events,
		now:       time.Now,
	}
}

// lookup runs the shared classification used by both phases. Check order
// matters: ownership is established before any customer data is read, a
// redeemed coupon reports AlreadyRedeemed even when it has also lapsed, and
// expiry is derived from expires_at regardless of the stored status.
func (s *RedemptionService) lookup(ctx context.Context, code, merchantID string) (*model.Coupon, error) {
	code = utils.NormalizeCouponCode(code)
	if code == "" {
		return nil, model.ErrCouponNotFound
	}

	coupon, err := s.Coupons.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("coupon lookup: %w", err)
	}
	if coupon == nil {
		return nil, model.ErrCouponNotFound
	}
	if coupon.MerchantID != merchantID {
		return nil, model.ErrWrongMerchant
	}
	if coupon.Status == model.CouponStatusRedeemed {
		redeemedAt := time.Time{}
		if coupon.RedeemedAt != nil {
			redeemedAt = *coupon.RedeemedAt
		}
		return nil, &model.AlreadyRedeemedError{RedeemedAt: redeemedAt}
	}
	if coupon.Expired(s.now()) {
		return nil, model.ErrExpired
	}
	return coupon, nil
}

// Verify validates a code against the session's merchant and returns the
// confirmation payload for the human-in-the-loop step. It performs no write
// and may be called repeatedly.
func (s *RedemptionService) Verify(ctx context.Context, code, merchantID string) (*model.VerificationResult, error) {
	coupon, err := s.lookup(ctx, code, merchantID)
	if err != nil {
		return nil, err
	}

	merchant, customer, err := s.loadDisplayData(ctx, coupon)
	if err != nil {
		return nil, err
	}

	return &model.VerificationResult{
		OfferText:     merchant.Offer.DisplayText(),
		CustomerName:  customer.Name,
		CustomerPhone: customer.Phone,
	}, nil
}

// Redeem re-validates and then commits the Active → Redeemed transition with
// a single conditional update. A zero-row update means another request won
// the race in the window since our read, which is surfaced as
// AlreadyRedeemed, never as success and never as a storage failure.
func (s *RedemptionService) Redeem(ctx context.Context, code, merchantID string) (*model.RedeemResult, error) {
	coupon, err := s.lookup(ctx, code, merchantID)
	if err != nil {
		return nil, err
	}

	redeemed, ok, err := s.Coupons.Redeem(ctx, coupon.Code, merchantID, s.now())
	if err != nil {
		return nil, fmt.Errorf("redeem coupon: %w", err)
	}
	if !ok {
		// Lost the race. Re-read for the original redemption time; staff
		// still get AlreadyRedeemed if the re-read fails.
		raceErr := &model.AlreadyRedeemedError{}
		if current, lookupErr := s.Coupons.GetByCode(ctx, coupon.Code); lookupErr == nil && current != nil && current.RedeemedAt != nil {
			raceErr.RedeemedAt = *current.RedeemedAt
		}
		return nil, raceErr
	}

	merchant, customer, err := s.loadDisplayData(ctx, redeemed)
	if err != nil {
		return nil, err
	}

	result := &model.RedeemResult{
		Code:         redeemed.Code,
		OfferText:    merchant.Offer.DisplayText(),
		CustomerName: customer.Name,
		RedeemedAt:   *redeemed.RedeemedAt,
	}

	// Counters are advisory; the coupon row is authoritative. A failed
	// increment never rolls back the redemption.
	if err := s.Stats.IncrementRedeemed(ctx, merchantID); err != nil {
		log.Printf("Failed to increment redemption counter for merchant %s: %v", merchantID, err)
	}

	if s.Events != nil {
		s.Events.RedemptionCommitted(merchant, result)
	}

	return result, nil
}

func (s *RedemptionService) loadDisplayData(ctx context.Context, coupon *model.Coupon) (*model.Merchant, *model.Customer, error) {
	merchant, err := s.Merchants.GetByID(ctx, coupon.MerchantID)
	if err != nil {
		return nil, nil, fmt.Errorf("merchant lookup: %w", err)
	}
	if merchant == nil {
		return nil, nil, fmt.Errorf("merchant %s not found for coupon %s", coupon.MerchantID, coupon.Code)
	}

	customer, err := s.Customers.GetByID(ctx, coupon.CustomerID)
	if err != nil {
		return nil, nil, fmt.Errorf("customer lookup: %w", err)
	}
	if customer == nil {
		return nil, nil, fmt.Errorf("customer %s not found for coupon %s", coupon.CustomerID, coupon.Code)
	}

	return merchant, customer, nil
}
