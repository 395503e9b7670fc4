package repository

import (
	"context"
	"database/sql"
	"errors"

	"kupon-backend/internal/model"
)

type CustomerRepository struct {
	DB *sql.DB
}

func NewCustomerRepository(db *sql.DB) *CustomerRepository {
	return &CustomerRepository{DB: db}
}

func (r *CustomerRepository) Create(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	query := `
		INSERT INTO customers (name, phone, email)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.DB.QueryRowContext(ctx, query, c.Name, c.Phone, c.Email).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*model.Customer, error) {
	var c model.Customer
	query := `SELECT id, name, phone, email, created_at FROM customers WHERE id = $1`

	err := r.DB.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// GetReminderRecipients selects customers still holding an active, unexpired
// coupon for the merchant. Redeemed and lapsed coupons are not reminded.
func (r *CustomerRepository) GetReminderRecipients(ctx context.Context, merchantID string) ([]model.ReminderRecipient, error) {
	query := `
		SELECT cu.name, cu.phone, co.code, co.expires_at
		FROM coupons co
		JOIN customers cu ON cu.id = co.customer_id
		WHERE co.merchant_id = $1 AND co.status = $2 AND co.expires_at > NOW()
		ORDER BY co.created_at ASC`

	rows, err := r.DB.QueryContext(ctx, query, merchantID, model.CouponStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recipients []model.ReminderRecipient
	for rows.Next() {
		var rec model.ReminderRecipient
		if err := rows.Scan(&rec.CustomerName, &rec.Phone, &rec.CouponCode, &rec.ExpiresAt); err != nil {
			return nil, err
		}
		recipients = append(recipients, rec)
	}
	return recipients, rows.Err()
}
