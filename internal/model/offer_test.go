package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOfferDisplayText(t *testing.T) {
	percent := 20
	amount := 5.50
	item := "boba tea"
	desc := "Buy one get one free all weekend"

	cases := []struct {
		name  string
		offer Offer
		want  string
	}{
		{"percentage", Offer{Type: OfferPercentage, Title: "Lunch special", PercentOff: &percent}, "Lunch special (20% off)"},
		{"amount", Offer{Type: OfferAmount, Title: "Happy hour", AmountOff: &amount}, "Happy hour (5.50 off)"},
		{"free item", Offer{Type: OfferFreeItem, Title: "Welcome gift", ItemName: &item}, "Welcome gift (free boba tea)"},
		{"custom", Offer{Type: OfferCustom, Title: "BOGO", Description: &desc}, desc},
		{"percentage missing detail", Offer{Type: OfferPercentage, Title: "Lunch special"}, "Lunch special"},
		{"unknown type", Offer{Type: "mystery", Title: "Something"}, "Something"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.offer.DisplayText())
		})
	}
}

func TestOfferCouponValidity(t *testing.T) {
	assert.Equal(t, 30, Offer{}.CouponValidity())
	assert.Equal(t, 30, Offer{ValidDays: -3}.CouponValidity())
	assert.Equal(t, 14, Offer{ValidDays: 14}.CouponValidity())
}

func TestOfferScanValue(t *testing.T) {
	percent := 25
	in := Offer{Type: OfferPercentage, Title: "Quarter off", PercentOff: &percent, ValidDays: 7}

	v, err := in.Value()
	require.NoError(t, err)

	var out Offer
	require.NoError(t, out.Scan(v))
	assert.Equal(t, in, out)

	// Fields belonging to other offer types stay unset.
	assert.Nil(t, out.AmountOff)
	assert.Nil(t, out.ItemName)
}

func TestOfferScan_RejectsNonBytes(t *testing.T) {
	var o Offer
	assert.Error(t, o.Scan(42))
}
