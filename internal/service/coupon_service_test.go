package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kupon-backend/internal/model"
)

type fakeIssuer struct {
	existing map[string]*model.Coupon
	created  []*model.Coupon
}

func (f *fakeIssuer) Create(ctx context.Context, c *model.Coupon) (*model.Coupon, error) {
	cp := *c
	cp.ID = "c-new"
	f.created = append(f.created, &cp)
	return &cp, nil
}

func (f *fakeIssuer) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	return f.existing[code], nil
}

type fakeCreator struct {
	created []*model.Customer
}

func (f *fakeCreator) Create(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	cp := *c
	cp.ID = "cust-new"
	f.created = append(f.created, &cp)
	return &cp, nil
}

type fakeClaimStats struct {
	claimed map[string]int
}

func (f *fakeClaimStats) IncrementClaimed(ctx context.Context, merchantID string) error {
	if f.claimed == nil {
		f.claimed = make(map[string]int)
	}
	f.claimed[merchantID]++
	return nil
}

func newCouponService(t *testing.T, validDays int) (*CouponService, *fakeIssuer, *fakeCreator, *fakeClaimStats) {
	t.Helper()

	percent := 15
	dir := &fakeDirectory{merchants: map[string]*model.Merchant{
		"bdragon-house": {
			ID:       "m-bdragon",
			Slug:     "bdragon-house",
			IsActive: true,
			Offer: model.Offer{
				Type:       model.OfferPercentage,
				Title:      "Welcome deal",
				PercentOff: &percent,
				ValidDays:  validDays,
			},
		},
		"closed-shop": {ID: "m-closed", Slug: "closed-shop", IsActive: false},
	}}
	issuer := &fakeIssuer{existing: map[string]*model.Coupon{}}
	creator := &fakeCreator{}
	stats := &fakeClaimStats{}

	svc := NewCouponService(dir, issuer, creator, stats)
	svc.now = func() time.Time { return testBase }
	return svc, issuer, creator, stats
}

func TestClaim_IssuesCoupon(t *testing.T) {
	svc, issuer, creator, stats := newCouponService(t, 14)

	coupon, err := svc.Claim(context.Background(), "bdragon-house", "Dana", "15551234567", "dana@example.com")
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^[A-HJ-NP-Z2-9]{4}-[A-HJ-NP-Z2-9]{4}$`), coupon.Code)
	assert.Equal(t, model.CouponStatusActive, coupon.Status)
	assert.Equal(t, "m-bdragon", coupon.MerchantID)
	assert.Equal(t, "cust-new", coupon.CustomerID)
	assert.Len(t, coupon.AuthToken, 32)
	assert.Equal(t, testBase.AddDate(0, 0, 14), coupon.ExpiresAt)

	require.Len(t, issuer.created, 1)
	require.Len(t, creator.created, 1)
	assert.Equal(t, "Dana", creator.created[0].Name)
	assert.Equal(t, 1, stats.claimed["m-bdragon"])
}

func TestClaim_DefaultValidity(t *testing.T) {
	svc, _, _, _ := newCouponService(t, 0)

	coupon, err := svc.Claim(context.Background(), "bdragon-house", "Dana", "15551234567", "")
	require.NoError(t, err)
	assert.Equal(t, testBase.AddDate(0, 0, 30), coupon.ExpiresAt)
}

func TestClaim_UnknownOrInactiveMerchant(t *testing.T) {
	svc, _, _, _ := newCouponService(t, 14)

	for _, slug := range []string{"no-such-shop", "closed-shop"} {
		_, err := svc.Claim(context.Background(), slug, "Dana", "15551234567", "")
		assert.ErrorIs(t, err, ErrMerchantNotFound, "slug %q", slug)
	}
}

func TestClaim_RequiresNameAndPhone(t *testing.T) {
	svc, _, _, _ := newCouponService(t, 14)

	_, err := svc.Claim(context.Background(), "bdragon-house", "  ", "15551234567", "")
	assert.Error(t, err)

	_, err = svc.Claim(context.Background(), "bdragon-house", "Dana", "", "")
	assert.Error(t, err)
}

func TestClaim_CodesAreUnique(t *testing.T) {
	svc, issuer, _, _ := newCouponService(t, 14)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		coupon, err := svc.Claim(context.Background(), "bdragon-house", "Dana", "15551234567", "")
		require.NoError(t, err)
		assert.False(t, seen[coupon.Code], "duplicate code %s", coupon.Code)
		seen[coupon.Code] = true
		issuer.existing[coupon.Code] = coupon
	}
}
