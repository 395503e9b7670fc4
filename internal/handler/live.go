package handler

import (
	"net/http"

	"kupon-backend/internal/config"
	"kupon-backend/internal/live"
	"kupon-backend/internal/utils"
)

type LiveHandler struct {
	Hub    *live.Hub
	Config *config.Config
}

func NewLiveHandler(hub *live.Hub, cfg *config.Config) *LiveHandler {
	return &LiveHandler{Hub: hub, Config: cfg}
}

// WebSocketHandler attaches a staff dashboard to the merchant's live feed.
// The token travels as a query param since browser WS clients can't set
// headers.
func (h *LiveHandler) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		utils.ErrorResponse(w, http.StatusUnauthorized, "Missing token")
		return
	}

	claims, err := utils.ParseSessionToken(token, h.Config.JWTSecret)
	if err != nil {
		utils.ErrorResponse(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	live.ServeWs(h.Hub, w, r, claims.MerchantID, h.Config.AllowedOrigins)
}
