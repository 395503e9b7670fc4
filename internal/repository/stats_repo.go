package repository

import (
	"context"
	"database/sql"

	"kupon-backend/internal/model"
)

// StatsRepository maintains the denormalized merchant counters and the
// reminder delivery log. All writes here are advisory; callers treat
// failures as log-and-continue.
type StatsRepository struct {
	DB *sql.DB
}

func NewStatsRepository(db *sql.DB) *StatsRepository {
	return &StatsRepository{DB: db}
}

func (r *StatsRepository) IncrementRedeemed(ctx context.Context, merchantID string) error {
	query := `
		INSERT INTO merchant_stats (merchant_id, redeemed_count, claimed_count)
		VALUES ($1, 1, 0)
		ON CONFLICT (merchant_id) DO UPDATE SET redeemed_count = merchant_stats.redeemed_count + 1`
	_, err := r.DB.ExecContext(ctx, query, merchantID)
	return err
}

func (r *StatsRepository) IncrementClaimed(ctx context.Context, merchantID string) error {
	query := `
		INSERT INTO merchant_stats (merchant_id, redeemed_count, claimed_count)
		VALUES ($1, 0, 1)
		ON CONFLICT (merchant_id) DO UPDATE SET claimed_count = merchant_stats.claimed_count + 1`
	_, err := r.DB.ExecContext(ctx, query, merchantID)
	return err
}

func (r *StatsRepository) LogMessage(ctx context.Context, m *model.MessageLog) error {
	query := `
		INSERT INTO message_log (merchant_id, campaign_id, to_number, content, sent, error_message, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.DB.ExecContext(ctx, query, m.MerchantID, m.CampaignID, m.ToNumber, m.Content, m.Sent, m.ErrorMessage, m.Timestamp)
	return err
}

func (r *StatsRepository) GetMerchantStats(ctx context.Context, merchantID string) (*model.MerchantStats, error) {
	stats := &model.MerchantStats{
		DailyRedemptions: []model.DailyStat{},
	}

	err := r.DB.QueryRowContext(ctx, `
		SELECT COALESCE(redeemed_count, 0), COALESCE(claimed_count, 0)
		FROM merchant_stats WHERE merchant_id = $1
	`, merchantID).Scan(&stats.RedeemedCount, &stats.ClaimedCount)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT to_char(redeemed_at, 'YYYY-MM-DD') as date, COUNT(*)
		FROM coupons
		WHERE merchant_id = $1 AND redeemed_at > NOW() - INTERVAL '7 days'
		GROUP BY date
		ORDER BY date ASC
	`, merchantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var ds model.DailyStat
		if err := rows.Scan(&ds.Date, &ds.Count); err == nil {
			stats.DailyRedemptions = append(stats.DailyRedemptions, ds)
		}
	}

	return stats, rows.Err()
}
