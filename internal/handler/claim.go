package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"kupon-backend/internal/service"
	"kupon-backend/internal/utils"
)

type ClaimHandler struct {
	Coupons Claimer
}

func NewClaimHandler(coupons Claimer) *ClaimHandler {
	return &ClaimHandler{Coupons: coupons}
}

// Claim is the public landing-page endpoint: a customer leaves their contact
// details and receives a coupon code.
func (h *ClaimHandler) Claim(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MerchantSlug string `json:"merchant_slug"`
		Name         string `json:"name"`
		Phone        string `json:"phone"`
		Email        string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Phone) == "" {
		utils.ErrorResponse(w, http.StatusBadRequest, "Name and phone are required")
		return
	}

	coupon, err := h.Coupons.Claim(r.Context(), req.MerchantSlug, req.Name, req.Phone, req.Email)
	if err != nil {
		if errors.Is(err, service.ErrMerchantNotFound) {
			utils.ErrorResponse(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, err)
		return
	}

	utils.SuccessResponse(w, http.StatusCreated, map[string]interface{}{
		"code":       coupon.Code,
		"expires_at": coupon.ExpiresAt,
	}, "Coupon claimed. Show the code in store to redeem.")
}
