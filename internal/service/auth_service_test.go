package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kupon-backend/internal/config"
	"kupon-backend/internal/model"
	"kupon-backend/internal/utils"
)

type fakeDirectory struct {
	merchants map[string]*model.Merchant
	err       error
}

func (f *fakeDirectory) GetBySlug(ctx context.Context, slug string) (*model.Merchant, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.merchants[slug], nil
}

func newAuthService(t *testing.T) (*AuthService, *fakeDirectory) {
	t.Helper()

	dir := &fakeDirectory{merchants: map[string]*model.Merchant{
		"bdragon-house": {
			ID:        "m-bdragon",
			Slug:      "bdragon-house",
			Name:      "BDragon House",
			RedeemPIN: "4821",
			IsActive:  true,
			Timezone:  "America/New_York",
		},
		"closed-shop": {
			ID:        "m-closed",
			Slug:      "closed-shop",
			Name:      "Closed Shop",
			RedeemPIN: "4821",
			IsActive:  false,
		},
	}}
	svc := NewAuthService(dir, &config.Config{JWTSecret: "test-secret"})
	svc.now = func() time.Time { return testBase }
	return svc, dir
}

func TestLogin_Success(t *testing.T) {
	svc, _ := newAuthService(t)

	token, session, err := svc.Login(context.Background(), "bdragon-house", "4821")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, "m-bdragon", session.MerchantID)
	assert.Equal(t, "BDragon House", session.MerchantName)
	assert.Equal(t, testBase, session.IssuedAt)

	claims, err := utils.ParseSessionToken(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, "m-bdragon", claims.MerchantID)
	assert.Equal(t, "America/New_York", claims.Timezone)
	assert.Equal(t, testBase.Add(model.SessionValidity).Unix(), claims.ExpiresAt.Unix())
}

func TestLogin_TrimsInput(t *testing.T) {
	svc, _ := newAuthService(t)

	_, session, err := svc.Login(context.Background(), " bdragon-house ", " 4821 ")
	require.NoError(t, err)
	assert.Equal(t, "m-bdragon", session.MerchantID)
}

// Wrong PIN, unknown slug and deactivated merchant must all produce the same
// error, so slugs cannot be probed through the login endpoint.
func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	svc, _ := newAuthService(t)

	cases := []struct {
		name string
		slug string
		pin  string
	}{
		{"wrong pin", "bdragon-house", "0000"},
		{"unknown slug", "no-such-shop", "4821"},
		{"inactive merchant", "closed-shop", "4821"},
		{"empty pin", "bdragon-house", ""},
		{"whitespace pin", "bdragon-house", "   "},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			token, session, err := svc.Login(context.Background(), tc.slug, tc.pin)
			assert.ErrorIs(t, err, model.ErrInvalidPin)
			assert.Empty(t, token)
			assert.Nil(t, session)
		})
	}
}

func TestLogin_IsRetryable(t *testing.T) {
	svc, _ := newAuthService(t)

	_, _, err := svc.Login(context.Background(), "bdragon-house", "9999")
	require.ErrorIs(t, err, model.ErrInvalidPin)

	// A failed attempt does not lock the merchant out.
	_, session, err := svc.Login(context.Background(), "bdragon-house", "4821")
	require.NoError(t, err)
	assert.Equal(t, "m-bdragon", session.MerchantID)
}

func TestLogin_StoreFailure(t *testing.T) {
	svc, dir := newAuthService(t)
	dir.err = errors.New("connection refused")

	_, _, err := svc.Login(context.Background(), "bdragon-house", "4821")
	require.Error(t, err)
	assert.NotErrorIs(t, err, model.ErrInvalidPin)
}
