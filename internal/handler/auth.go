package handler

import (
	"encoding/json"
	"net/http"

	"kupon-backend/internal/utils"
)

type AuthHandler struct {
	Auth Authenticator
}

func NewAuthHandler(auth Authenticator) *AuthHandler {
	return &AuthHandler{Auth: auth}
}

// VerifyPIN is the staff login: one PIN check per shift, then the returned
// token authorizes verify/redeem calls for up to 8 hours.
func (h *AuthHandler) VerifyPIN(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MerchantSlug string `json:"merchant_slug"`
		PIN          string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, session, err := h.Auth.Login(r.Context(), req.MerchantSlug, req.PIN)
	if err != nil {
		writeError(w, err)
		return
	}

	utils.SuccessResponse(w, http.StatusOK, map[string]interface{}{
		"token":         token,
		"merchant_id":   session.MerchantID,
		"merchant_name": session.MerchantName,
		"timezone":      session.Timezone,
	}, "Login successful")
}

// Logout acknowledges the client dropping its token. Sessions are stateless
// signed claims, so there is nothing to invalidate server-side.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	utils.SuccessResponse(w, http.StatusOK, nil, "Logout successful")
}
