package handler

import (
	"net/http"

	"kupon-backend/internal/middleware"
	"kupon-backend/internal/utils"
)

type StatsHandler struct {
	Stats StatsProvider
}

func NewStatsHandler(stats StatsProvider) *StatsHandler {
	return &StatsHandler{Stats: stats}
}

func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	claims := middleware.SessionFromContext(r.Context())
	if claims == nil {
		utils.ErrorResponse(w, http.StatusUnauthorized, "Missing session")
		return
	}

	stats, err := h.Stats.GetMerchantStats(r.Context(), claims.MerchantID)
	if err != nil {
		writeError(w, err)
		return
	}

	utils.SuccessResponse(w, http.StatusOK, stats, "")
}
