package handler

import (
	"encoding/json"
	"net/http"

	"kupon-backend/internal/middleware"
	"kupon-backend/internal/utils"
)

type RedemptionHandler struct {
	Redemptions Redeemer
}

func NewRedemptionHandler(redemptions Redeemer) *RedemptionHandler {
	return &RedemptionHandler{Redemptions: redemptions}
}

type redemptionRequest struct {
	CouponCode string `json:"coupon_code"`
	MerchantID string `json:"merchant_id"`
}

// merchantFromRequest resolves the merchant identity for a verify/redeem
// call. The verified session claims are authoritative; a body merchant_id is
// accepted only when it agrees with them, so a client cannot redeem against
// a store it did not authenticate for.
func merchantFromRequest(w http.ResponseWriter, r *http.Request, bodyMerchantID string) (string, bool) {
	claims := middleware.SessionFromContext(r.Context())
	if claims == nil {
		utils.ErrorResponse(w, http.StatusUnauthorized, "Missing session")
		return "", false
	}
	if bodyMerchantID != "" && bodyMerchantID != claims.MerchantID {
		utils.ErrorResponse(w, http.StatusForbidden, "merchant mismatch")
		return "", false
	}
	return claims.MerchantID, true
}

// VerifyCoupon is the advisory read phase: no write happens here, so staff
// can check a code as often as they like before confirming.
func (h *RedemptionHandler) VerifyCoupon(w http.ResponseWriter, r *http.Request) {
	var req redemptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	merchantID, ok := merchantFromRequest(w, r, req.MerchantID)
	if !ok {
		return
	}

	result, err := h.Redemptions.Verify(r.Context(), req.CouponCode, merchantID)
	if err != nil {
		writeError(w, err)
		return
	}

	utils.SuccessResponse(w, http.StatusOK, map[string]interface{}{"coupon": result}, "")
}

// Redeem commits the redemption after the staff confirmation step.
func (h *RedemptionHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	var req redemptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	merchantID, ok := merchantFromRequest(w, r, req.MerchantID)
	if !ok {
		return
	}

	result, err := h.Redemptions.Redeem(r.Context(), req.CouponCode, merchantID)
	if err != nil {
		writeError(w, err)
		return
	}

	utils.SuccessResponse(w, http.StatusOK, map[string]interface{}{"coupon": result}, "Coupon redeemed")
}
