package utils

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"strings"
)

// Ambiguous characters (0/O, 1/I) are excluded: staff type these codes by
// hand at the counter.
const codeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const codeGroupLen = 4

// GenerateCouponCode returns a customer-facing code like "BDRA-A7K9".
func GenerateCouponCode() (string, error) {
	groups := make([]string, 2)
	for g := range groups {
		b := make([]byte, codeGroupLen)
		for i := range b {
			num, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeCharset))))
			if err != nil {
				return "", err
			}
			b[i] = codeCharset[num.Int64()]
		}
		groups[g] = string(b)
	}
	return strings.Join(groups, "-"), nil
}

// GenerateAuthToken returns the per-coupon bearer secret embedded in wallet
// passes and claim links.
func GenerateAuthToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// NormalizeCouponCode canonicalizes staff input before lookup: codes are
// displayed and entered in uppercase by convention.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
