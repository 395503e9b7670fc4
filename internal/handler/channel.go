package handler

import (
	"net/http"

	"kupon-backend/internal/middleware"
	"kupon-backend/internal/utils"
)

type ChannelHandler struct {
	Channels ChannelManager
}

func NewChannelHandler(channels ChannelManager) *ChannelHandler {
	return &ChannelHandler{Channels: channels}
}

// ConnectChannel starts/links the merchant's WhatsApp sender. While pairing,
// the QR code arrives on the live feed.
func (h *ChannelHandler) ConnectChannel(w http.ResponseWriter, r *http.Request) {
	claims := middleware.SessionFromContext(r.Context())
	if claims == nil {
		utils.ErrorResponse(w, http.StatusUnauthorized, "Missing session")
		return
	}

	if h.Channels == nil {
		utils.ErrorResponse(w, http.StatusServiceUnavailable, "WhatsApp channel is disabled")
		return
	}

	status, err := h.Channels.Connect(r.Context(), claims.MerchantID)
	if err != nil {
		writeError(w, err)
		return
	}

	utils.SuccessResponse(w, http.StatusOK, map[string]string{"status": status}, "Channel starting")
}

func (h *ChannelHandler) DisconnectChannel(w http.ResponseWriter, r *http.Request) {
	claims := middleware.SessionFromContext(r.Context())
	if claims == nil {
		utils.ErrorResponse(w, http.StatusUnauthorized, "Missing session")
		return
	}

	if h.Channels == nil {
		utils.ErrorResponse(w, http.StatusServiceUnavailable, "WhatsApp channel is disabled")
		return
	}

	h.Channels.Disconnect(claims.MerchantID)
	utils.SuccessResponse(w, http.StatusOK, nil, "Channel disconnected")
}
