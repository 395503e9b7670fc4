package handler

import (
	"encoding/json"
	"net/http"

	"kupon-backend/internal/middleware"
	"kupon-backend/internal/utils"
)

type ReminderHandler struct {
	Reminders CampaignSender
}

func NewReminderHandler(reminders CampaignSender) *ReminderHandler {
	return &ReminderHandler{Reminders: reminders}
}

// TriggerReminders starts a campaign for the authenticated merchant, subject
// to the 24-hour cooldown.
func (h *ReminderHandler) TriggerReminders(w http.ResponseWriter, r *http.Request) {
	claims := middleware.SessionFromContext(r.Context())
	if claims == nil {
		utils.ErrorResponse(w, http.StatusUnauthorized, "Missing session")
		return
	}

	result, err := h.Reminders.SendCampaign(r.Context(), claims.MerchantID)
	if err != nil {
		writeError(w, err)
		return
	}

	utils.SuccessResponse(w, http.StatusOK, result, "Reminder campaign dispatched")
}

// AdminTriggerReminders bypasses the cooldown. It sits behind the admin key,
// a deliberately separate authorization path from staff sessions.
func (h *ReminderHandler) AdminTriggerReminders(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MerchantID string `json:"merchant_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MerchantID == "" {
		utils.ErrorResponse(w, http.StatusBadRequest, "merchant_id is required")
		return
	}

	result, err := h.Reminders.ForceCampaign(r.Context(), req.MerchantID)
	if err != nil {
		writeError(w, err)
		return
	}

	utils.SuccessResponse(w, http.StatusOK, result, "Reminder campaign dispatched (cooldown bypassed)")
}
