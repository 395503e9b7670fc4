package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"kupon-backend/internal/model"
)

type MerchantRepository struct {
	DB *sql.DB
}

func NewMerchantRepository(db *sql.DB) *MerchantRepository {
	return &MerchantRepository{DB: db}
}

const merchantColumns = `id, slug, name, redeem_pin, is_active, timezone, offer, webhook_url, last_reminder_sent_at, wa_jid, wa_status, created_at, updated_at`

func (r *MerchantRepository) scanMerchant(row *sql.Row) (*model.Merchant, error) {
	var m model.Merchant
	var lastReminder sql.NullTime

	err := row.Scan(
		&m.ID,
		&m.Slug,
		&m.Name,
		&m.RedeemPIN,
		&m.IsActive,
		&m.Timezone,
		&m.Offer,
		&m.WebhookURL,
		&lastReminder,
		&m.WAJid,
		&m.WAStatus,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if lastReminder.Valid {
		t := lastReminder.Time
		m.LastReminderSentAt = &t
	}
	return &m, nil
}

func (r *MerchantRepository) GetBySlug(ctx context.Context, slug string) (*model.Merchant, error) {
	query := `SELECT ` + merchantColumns + ` FROM merchants WHERE slug = $1`
	return r.scanMerchant(r.DB.QueryRowContext(ctx, query, slug))
}

func (r *MerchantRepository) GetByID(ctx context.Context, id string) (*model.Merchant, error) {
	query := `SELECT ` + merchantColumns + ` FROM merchants WHERE id = $1`
	return r.scanMerchant(r.DB.QueryRowContext(ctx, query, id))
}

func (r *MerchantRepository) UpdateLastReminderSentAt(ctx context.Context, id string, sentAt time.Time) error {
	query := `UPDATE merchants SET last_reminder_sent_at = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.DB.ExecContext(ctx, query, sentAt, id)
	return err
}

// UpdateChannel persists the merchant's WhatsApp pairing state. A nil jid
// leaves the stored JID untouched so reconnects keep working.
func (r *MerchantRepository) UpdateChannel(ctx context.Context, id string, jid *string, status model.ChannelStatus) error {
	if jid != nil {
		query := `UPDATE merchants SET wa_jid = $1, wa_status = $2, updated_at = NOW() WHERE id = $3`
		_, err := r.DB.ExecContext(ctx, query, *jid, status, id)
		return err
	}
	query := `UPDATE merchants SET wa_status = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.DB.ExecContext(ctx, query, status, id)
	return err
}

// GetWithChannel returns merchants that have a stored WhatsApp JID, used to
// reconnect senders on boot.
func (r *MerchantRepository) GetWithChannel(ctx context.Context) ([]*model.Merchant, error) {
	query := `SELECT ` + merchantColumns + ` FROM merchants WHERE wa_jid <> ''`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var merchants []*model.Merchant
	for rows.Next() {
		var m model.Merchant
		var lastReminder sql.NullTime
		err := rows.Scan(
			&m.ID,
			&m.Slug,
			&m.Name,
			&m.RedeemPIN,
			&m.IsActive,
			&m.Timezone,
			&m.Offer,
			&m.WebhookURL,
			&lastReminder,
			&m.WAJid,
			&m.WAStatus,
			&m.CreatedAt,
			&m.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		if lastReminder.Valid {
			t := lastReminder.Time
			m.LastReminderSentAt = &t
		}
		merchants = append(merchants, &m)
	}
	return merchants, rows.Err()
}
