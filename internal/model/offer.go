package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

type OfferType string

const (
	OfferPercentage OfferType = "percentage"
	OfferAmount     OfferType = "amount"
	OfferFreeItem   OfferType = "free_item"
	OfferCustom     OfferType = "custom"
)

// Offer is the merchant's published offer, stored as a jsonb column. It is a
// closed union keyed by Type; only the fields matching the type are set.
type Offer struct {
	Type        OfferType `json:"type"`
	Title       string    `json:"title"`
	PercentOff  *int      `json:"percent_off,omitempty"`
	AmountOff   *float64  `json:"amount_off,omitempty"`
	ItemName    *string   `json:"item_name,omitempty"`
	Description *string   `json:"description,omitempty"`
	ValidDays   int       `json:"valid_days,omitempty"`
}

// Make Offer implement sql.Scanner and driver.Valuer
func (o Offer) Value() (driver.Value, error) {
	return json.Marshal(o)
}

func (o *Offer) Scan(value interface{}) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, o)
}

// DisplayText renders the one-line offer description shown to staff and sent
// in reminder messages.
func (o Offer) DisplayText() string {
	switch o.Type {
	case OfferPercentage:
		if o.PercentOff != nil {
			return fmt.Sprintf("%s (%d%% off)", o.Title, *o.PercentOff)
		}
	case OfferAmount:
		if o.AmountOff != nil {
			return fmt.Sprintf("%s (%.2f off)", o.Title, *o.AmountOff)
		}
	case OfferFreeItem:
		if o.ItemName != nil {
			return fmt.Sprintf("%s (free %s)", o.Title, *o.ItemName)
		}
	case OfferCustom:
		if o.Description != nil && *o.Description != "" {
			return *o.Description
		}
	}
	return o.Title
}

// CouponValidity returns how long a claimed coupon stays valid.
func (o Offer) CouponValidity() int {
	if o.ValidDays <= 0 {
		return 30
	}
	return o.ValidDays
}
