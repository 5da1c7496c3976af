package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Seed inserts demo brands, campaigns and dayparting schedules. It is safe
// to run repeatedly: every insert is ON CONFLICT DO NOTHING.
func Seed(ctx context.Context, pool *pgxpool.Pool) error {
	brands := []struct {
		name    string
		daily   int64
		monthly int64
	}{
		{"Acme Outdoors", 500, 12000},
		{"Nimbus Coffee", 250, 6000},
		{"Vega Mobility", 1000, 25000},
	}

	for i, b := range brands {
		brandID := int64(i + 1)
		_, err := pool.Exec(ctx, `INSERT INTO brands
	(id, name, daily_budget, monthly_budget)
	VALUES ($1, $2, $3, $4) ON CONFLICT DO NOTHING`,
			brandID, b.name, decimal.NewFromInt(b.daily), decimal.NewFromInt(b.monthly))
		if err != nil {
			return err
		}

		for j := 1; j <= 3; j++ {
			campaignID := brandID*10 + int64(j)
			name := fmt.Sprintf("%s - Campaign %d", b.name, j)
			dailyBudget := decimal.NewFromInt(b.daily / int64(j+1))
			_, err = pool.Exec(ctx, `INSERT INTO campaigns
	(id, brand_id, name, status, daily_budget)
	VALUES ($1, $2, $3, 'active', $4) ON CONFLICT DO NOTHING`,
				campaignID, brandID, name, dailyBudget)
			if err != nil {
				return err
			}
		}

		// Business-hours dayparting on the first campaign of each brand,
		// Monday through Friday 09:00-17:00.
		for day := 0; day < 5; day++ {
			_, err = pool.Exec(ctx, `INSERT INTO dayparting_schedules
	(campaign_id, day_of_week, start_minute, end_minute, timezone, priority)
	VALUES ($1, $2, $3, $4, 'UTC', 10) ON CONFLICT DO NOTHING`,
				brandID*10+1, day, 9*60, 17*60)
			if err != nil {
				return err
			}
		}
	}

	// Keep the sequences ahead of the fixed demo ids.
	for _, seq := range []string{
		`SELECT setval('brands_id_seq', (SELECT max(id) FROM brands))`,
		`SELECT setval('campaigns_id_seq', (SELECT max(id) FROM campaigns))`,
	} {
		if _, err := pool.Exec(ctx, seq); err != nil {
			return err
		}
	}
	return nil
}
