package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"kupon-backend/internal/model"
)

// SessionClaims is the signed staff-session payload. The merchant identity on
// every verify/redeem call is derived from these verified claims, never from
// a client-supplied field alone.
type SessionClaims struct {
	jwt.RegisteredClaims
	MerchantID   string `json:"merchant_id"`
	MerchantName string `json:"merchant_name"`
	Timezone     string `json:"timezone"`
}

// GenerateSessionToken signs an HS256 session token for the merchant, valid
// for model.SessionValidity from now.
func GenerateSessionToken(m *model.Merchant, secret string, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(model.SessionValidity)),
		},
		MerchantID:   m.ID,
		MerchantName: m.Name,
		Timezone:     m.Timezone,
	})
	return token.SignedString([]byte(secret))
}

// ParseSessionToken validates the token signature and expiry and returns the
// session claims.
func ParseSessionToken(tokenString, secret string) (*SessionClaims, error) {
	if tokenString == "" {
		return nil, errors.New("missing token")
	}

	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.MerchantID == "" {
		return nil, errors.New("invalid merchant ID in token")
	}
	return claims, nil
}
