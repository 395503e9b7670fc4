package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"kupon-backend/internal/middleware"
)

// NewRouter wires the HTTP surface. PIN login and coupon claims are public
// (rate limited); everything touching a merchant's coupons requires a
// session token; the cooldown bypass sits behind the admin key.
func NewRouter(
	mw *middleware.Middleware,
	auth *AuthHandler,
	redemption *RedemptionHandler,
	claim *ClaimHandler,
	reminder *ReminderHandler,
	stats *StatsHandler,
	channel *ChannelHandler,
	liveHandler *LiveHandler,
) *mux.Router {
	r := mux.NewRouter()
	r.Use(mw.CORS)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Public endpoints
	api.Handle("/verify-pin", mw.RateLimitMiddleware(http.HandlerFunc(auth.VerifyPIN))).Methods("POST", "OPTIONS")
	api.Handle("/claim", mw.RateLimitMiddleware(http.HandlerFunc(claim.Claim))).Methods("POST", "OPTIONS")
	api.HandleFunc("/logout", auth.Logout).Methods("POST", "OPTIONS")
	api.HandleFunc("/live", liveHandler.WebSocketHandler).Methods("GET")

	// Staff session endpoints
	staff := api.NewRoute().Subrouter()
	staff.Use(mw.SessionMiddleware)
	staff.HandleFunc("/verify-coupon", redemption.VerifyCoupon).Methods("POST", "OPTIONS")
	staff.HandleFunc("/redeem", redemption.Redeem).Methods("POST", "OPTIONS")
	staff.HandleFunc("/reminders", reminder.TriggerReminders).Methods("POST", "OPTIONS")
	staff.HandleFunc("/stats", stats.GetStats).Methods("GET", "OPTIONS")
	staff.HandleFunc("/channel/connect", channel.ConnectChannel).Methods("POST", "OPTIONS")
	staff.HandleFunc("/channel", channel.DisconnectChannel).Methods("DELETE", "OPTIONS")

	// Admin endpoints
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(mw.AdminMiddleware)
	admin.HandleFunc("/reminders", reminder.AdminTriggerReminders).Methods("POST", "OPTIONS")

	return r
}
