package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"kupon-backend/internal/model"
	"kupon-backend/internal/utils"
)

type CouponIssuer interface {
	Create(ctx context.Context, c *model.Coupon) (*model.Coupon, error)
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)
}

type CustomerCreator interface {
	Create(ctx context.Context, c *model.Customer) (*model.Customer, error)
}

type ClaimStats interface {
	IncrementClaimed(ctx context.Context, merchantID string) error
}

// ErrMerchantNotFound covers both a missing slug and a deactivated merchant
// on the public claim endpoint.
var ErrMerchantNotFound = errors.New("merchant not found")

// CouponService issues coupons when a customer claims a merchant's offer
// from the landing page.
type CouponService struct {
	Merchants MerchantDirectory
	Coupons   CouponIssuer
	Customers CustomerCreator
	Stats     ClaimStats

	now func() time.Time
}

func NewCouponService(merchants MerchantDirectory, coupons CouponIssuer, customers CustomerCreator, stats ClaimStats) *CouponService {
	return &CouponService{
		Merchants: merchants,
		Coupons:   coupons,
		Customers: customers,
		Stats:     stats,
		now:       time.Now,
	}
}

// Claim registers the customer and issues a coupon with a fresh unique code.
// The code is immutable once issued.
func (s *CouponService) Claim(ctx context.Context, merchantSlug, name, phone, email string) (*model.Coupon, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	if name == "" || phone == "" {
		return nil, errors.New("name and phone are required")
	}

	merchant, err := s.Merchants.GetBySlug(ctx, strings.TrimSpace(merchantSlug))
	if err != nil {
		return nil, fmt.Errorf("merchant lookup: %w", err)
	}
	if merchant == nil || !merchant.IsActive {
		return nil, ErrMerchantNotFound
	}

	code, err := s.uniqueCode(ctx)
	if err != nil {
		return nil, err
	}

	authToken, err := utils.GenerateAuthToken()
	if err != nil {
		return nil, fmt.Errorf("generate auth token: %w", err)
	}

	customer, err := s.Customers.Create(ctx, &model.Customer{
		Name:  name,
		Phone: phone,
		Email: strings.TrimSpace(email),
	})
	if err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}

	now := s.now()
	coupon, err := s.Coupons.Create(ctx, &model.Coupon{
		Code:       code,
		MerchantID: merchant.ID,
		CustomerID: customer.ID,
		Status:     model.CouponStatusActive,
		AuthToken:  authToken,
		ExpiresAt:  now.AddDate(0, 0, merchant.Offer.CouponValidity()),
	})
	if err != nil {
		return nil, fmt.Errorf("create coupon: %w", err)
	}

	if err := s.Stats.IncrementClaimed(ctx, merchant.ID); err != nil {
		log.Printf("Failed to increment claim counter for merchant %s: %v", merchant.ID, err)
	}

	return coupon, nil
}

// uniqueCode tries up to 5 times to generate a code no existing coupon uses.
func (s *CouponService) uniqueCode(ctx context.Context) (string, error) {
	for i := 0; i < 5; i++ {
		code, err := utils.GenerateCouponCode()
		if err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}

		existing, err := s.Coupons.GetByCode(ctx, code)
		if err != nil {
			return "", fmt.Errorf("code collision check: %w", err)
		}
		if existing == nil {
			return code, nil
		}
	}
	return "", errors.New("failed to generate unique coupon code")
}
