package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"sync"
	"time"

	"kupon-backend/internal/config"
	"kupon-backend/internal/utils"
)

type contextKey string

const sessionContextKey contextKey = "session"

type Middleware struct {
	Config       *config.Config
	rateLimiters sync.Map
}

func NewMiddleware(cfg *config.Config) *Middleware {
	return &Middleware{Config: cfg}
}

// SessionMiddleware authenticates the staff session token and places the
// verified claims in the request context. Every verify/redeem handler takes
// the merchant identity from these claims, not from the request body.
func (m *Middleware) SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.parseToken(r.Header.Get("Authorization"))
		if err != nil {
			utils.ErrorResponse(w, http.StatusUnauthorized, err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminMiddleware gates the admin override surface behind the X-Admin-Key
// header. This is a separate authorization path from staff sessions.
func (m *Middleware) AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-Admin-Key")
		if m.Config.AdminAPIKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(m.Config.AdminAPIKey)) != 1 {
			utils.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) parseToken(authHeader string) (*utils.SessionClaims, error) {
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, errors.New("invalid authorization format")
	}
	return utils.ParseSessionToken(parts[1], m.Config.JWTSecret)
}

// SessionFromContext returns the verified session claims placed by
// SessionMiddleware, or nil outside an authenticated request.
func SessionFromContext(ctx context.Context) *utils.SessionClaims {
	claims, _ := ctx.Value(sessionContextKey).(*utils.SessionClaims)
	return claims
}

func (m *Middleware) CORS(next http.Handler) http.Handler {
	allowed := m.Config.AllowedOrigins
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(origin, allowed) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else if len(allowed) == 1 && allowed[0] == "*" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Admin-Key")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func originAllowed(origin string, allowed []string) bool {
	if origin == "" {
		return true // non-browser clients
	}
	for _, o := range allowed {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

// simple token bucket per IP
type limiter struct {
	tokens     int
	lastRefill time.Time
}

func (m *Middleware) RateLimitMiddleware(next http.Handler) http.Handler {
	const (
		maxTokens    = 60
		refillPeriod = time.Minute
	)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := strings.Split(r.RemoteAddr, ":")[0]

		val, _ := m.rateLimiters.LoadOrStore(ip, &limiter{tokens: maxTokens, lastRefill: time.Now()})
		lim := val.(*limiter)

		now := time.Now()
		if since := now.Sub(lim.lastRefill); since > refillPeriod {
			lim.tokens = maxTokens
			lim.lastRefill = now
		}

		if lim.tokens <= 0 {
			utils.ErrorResponse(w, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}
		lim.tokens--

		next.ServeHTTP(w, r)
	})
}
