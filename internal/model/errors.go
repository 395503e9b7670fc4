package model

import (
	"errors"
	"fmt"
	"time"
)

// Stable error codes rendered in the API envelope.
const (
	CodeInvalidPin      = "INVALID_PIN"
	CodeCouponNotFound  = "COUPON_NOT_FOUND"
	CodeWrongMerchant   = "WRONG_MERCHANT"
	CodeAlreadyRedeemed = "ALREADY_REDEEMED"
	CodeExpired         = "EXPIRED"
	CodeCooldownActive  = "COOLDOWN_ACTIVE"
)

// DomainError is a business-rule failure. These are expected outcomes and are
// rendered verbatim to the caller; they are never logged as server errors.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string { return e.Message }

func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

var (
	ErrInvalidPin     = &DomainError{Code: CodeInvalidPin, Message: "invalid merchant or PIN"}
	ErrCouponNotFound = &DomainError{Code: CodeCouponNotFound, Message: "coupon code not found"}
	ErrWrongMerchant  = &DomainError{Code: CodeWrongMerchant, Message: "this coupon does not belong to this store"}
	ErrExpired        = &DomainError{Code: CodeExpired, Message: "coupon has expired"}
)

// AlreadyRedeemedError carries the original redemption time for staff
// context. RedeemedAt may be zero when the caller lost a redemption race and
// the follow-up read could not recover the time.
type AlreadyRedeemedError struct {
	RedeemedAt time.Time
}

func (e *AlreadyRedeemedError) Error() string {
	if e.RedeemedAt.IsZero() {
		return "coupon has already been redeemed"
	}
	return fmt.Sprintf("coupon was already redeemed at %s", e.RedeemedAt.Format(time.RFC3339))
}

// CooldownActiveError reports how long until the next reminder campaign is
// allowed, in whole hours rounded up.
type CooldownActiveError struct {
	RemainingHours int
}

func (e *CooldownActiveError) Error() string {
	return fmt.Sprintf("a reminder was sent recently; next campaign allowed in %d hour(s)", e.RemainingHours)
}

// ErrorCode maps a business error to its envelope code. It returns false for
// infrastructure errors, which must surface as a generic retry message.
func ErrorCode(err error) (string, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code, true
	}
	var ar *AlreadyRedeemedError
	if errors.As(err, &ar) {
		return CodeAlreadyRedeemed, true
	}
	var ca *CooldownActiveError
	if errors.As(err, &ca) {
		return CodeCooldownActive, true
	}
	return "", false
}
