package handler

import (
	"context"
	"log"
	"net/http"

	"kupon-backend/internal/model"
	"kupon-backend/internal/utils"
)

// Service ports consumed by the HTTP layer. Handlers accept interfaces so
// they can be exercised against fakes.

type Authenticator interface {
	Login(ctx context.Context, merchantSlug, pin string) (string, *model.Session, error)
}

type Redeemer interface {
	Verify(ctx context.Context, code, merchantID string) (*model.VerificationResult, error)
	Redeem(ctx context.Context, code, merchantID string) (*model.RedeemResult, error)
}

type Claimer interface {
	Claim(ctx context.Context, merchantSlug, name, phone, email string) (*model.Coupon, error)
}

type CampaignSender interface {
	SendCampaign(ctx context.Context, merchantID string) (*model.CampaignResult, error)
	ForceCampaign(ctx context.Context, merchantID string) (*model.CampaignResult, error)
}

type StatsProvider interface {
	GetMerchantStats(ctx context.Context, merchantID string) (*model.MerchantStats, error)
}

type ChannelManager interface {
	Connect(ctx context.Context, merchantID string) (string, error)
	Disconnect(merchantID string)
}

func statusForCode(code string) int {
	switch code {
	case model.CodeInvalidPin:
		return http.StatusUnauthorized
	case model.CodeCouponNotFound:
		return http.StatusNotFound
	case model.CodeWrongMerchant:
		return http.StatusForbidden
	case model.CodeAlreadyRedeemed:
		return http.StatusConflict
	case model.CodeExpired:
		return http.StatusGone
	case model.CodeCooldownActive:
		return http.StatusTooManyRequests
	default:
		return http.StatusUnprocessableEntity
	}
}

// writeError renders business-rule failures with their stable code and hides
// infrastructure failures behind a generic retry message. A failed write
// must never masquerade as a redemption outcome.
func writeError(w http.ResponseWriter, err error) {
	if code, ok := model.ErrorCode(err); ok {
		utils.CodedErrorResponse(w, statusForCode(code), err.Error(), code)
		return
	}
	log.Printf("internal error: %v", err)
	utils.ErrorResponse(w, http.StatusInternalServerError, "something went wrong, please try again")
}
