package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"kupon-backend/internal/config"
	"kupon-backend/internal/model"
	"kupon-backend/internal/utils"
)

// MerchantDirectory is the merchant lookup the authenticator needs.
type MerchantDirectory interface {
	GetBySlug(ctx context.Context, slug string) (*model.Merchant, error)
}

// AuthService validates a staff-entered PIN against a merchant record and
// issues a signed 8-hour session token. Authentication has no side effects
// and is safe to retry.
type AuthService struct {
	Merchants MerchantDirectory
	Config    *config.Config

	now func() time.Time
}

func NewAuthService(merchants MerchantDirectory, cfg *config.Config) *AuthService {
	return &AuthService{
		Merchants: merchants,
		Config:    cfg,
		now:       time.Now,
	}
}

// Login checks the PIN for the merchant identified by slug. A missing
// merchant, an inactive merchant and a wrong PIN are indistinguishable to
// the caller, so slugs cannot be enumerated through this endpoint.
func (s *AuthService) Login(ctx context.Context, merchantSlug, pin string) (string, *model.Session, error) {
	pin = strings.TrimSpace(pin)
	if pin == "" {
		return "", nil, model.ErrInvalidPin
	}

	merchant, err := s.Merchants.GetBySlug(ctx, strings.TrimSpace(merchantSlug))
	if err != nil {
		return "", nil, fmt.Errorf("merchant lookup: %w", err)
	}
	if merchant == nil || !merchant.IsActive || merchant.RedeemPIN != pin {
		return "", nil, model.ErrInvalidPin
	}

	now := s.now()
	token, err := utils.GenerateSessionToken(merchant, s.Config.JWTSecret, now)
	if err != nil {
		return "", nil, fmt.Errorf("sign session token: %w", err)
	}

	session := &model.Session{
		MerchantID:   merchant.ID,
		MerchantName: merchant.Name,
		Timezone:     merchant.Timezone,
		IssuedAt:     now,
	}
	return token, session, nil
}
