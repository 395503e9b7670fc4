package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"kupon-backend/internal/model"
)

type CouponRepository struct {
	DB *sql.DB
}

func NewCouponRepository(db *sql.DB) *CouponRepository {
	return &CouponRepository{DB: db}
}

func (r *CouponRepository) Create(ctx context.Context, c *model.Coupon) (*model.Coupon, error) {
	query := `
		INSERT INTO coupons (code, merchant_id, customer_id, status, auth_token, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.DB.QueryRowContext(
		ctx,
		query,
		c.Code,
		c.MerchantID,
		c.CustomerID,
		c.Status,
		c.AuthToken,
		c.ExpiresAt,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return nil, err
	}

	return c, nil
}

func (r *CouponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	var c model.Coupon
	var redeemedAt sql.NullTime

	query := `
		SELECT id, code, merchant_id, customer_id, status, auth_token, created_at, expires_at, redeemed_at
		FROM coupons
		WHERE code = $1`

	err := r.DB.QueryRowContext(ctx, query, code).Scan(
		&c.ID,
		&c.Code,
		&c.MerchantID,
		&c.CustomerID,
		&c.Status,
		&c.AuthToken,
		&c.CreatedAt,
		&c.ExpiresAt,
		&redeemedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if redeemedAt.Valid {
		t := redeemedAt.Time
		c.RedeemedAt = &t
	}
	return &c, nil
}

// Redeem is the single conditional write in the system. The row-level
// compare-and-set is what guarantees at-most-once redemption: the update only
// matches a still-active, unexpired coupon owned by the merchant, and the
// returned flag reports whether this call won the transition. ok == false
// with a nil error means the caller lost the race.
func (r *CouponRepository) Redeem(ctx context.Context, code, merchantID string, now time.Time) (*model.Coupon, bool, error) {
	var c model.Coupon
	var redeemedAt time.Time

	query := `
		UPDATE coupons
		SET status = $4, redeemed_at = $3
		WHERE code = $1 AND merchant_id = $2 AND status = $5 AND expires_at > $3
		RETURNING id, code, merchant_id, customer_id, status, auth_token, created_at, expires_at, redeemed_at`

	err := r.DB.QueryRowContext(ctx, query, code, merchantID, now, model.CouponStatusRedeemed, model.CouponStatusActive).Scan(
		&c.ID,
		&c.Code,
		&c.MerchantID,
		&c.CustomerID,
		&c.Status,
		&c.AuthToken,
		&c.CreatedAt,
		&c.ExpiresAt,
		&redeemedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	c.RedeemedAt = &redeemedAt
	return &c, true, nil
}
