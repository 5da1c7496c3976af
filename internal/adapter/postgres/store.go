package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"adbudget/internal/core/domain"
	"adbudget/internal/core/port"
)

// Store implements port.Store using pgxpool for PostgreSQL. Balance
// mutations run inside transactions that lock the campaign row before the
// brand row, and the reference-id uniqueness check is the table's unique
// constraint.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore returns a new store instance.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const brandColumns = `id, name, daily_budget, monthly_budget, current_daily_spend,
	current_monthly_spend, last_daily_reset, last_monthly_reset, is_active, created_at, updated_at`

const campaignColumns = `id, brand_id, name, status, daily_budget, current_daily_spend,
	last_daily_reset, is_active, created_at, updated_at`

func (s *Store) CreateBrand(ctx context.Context, b *domain.Brand) error {
	return s.pool.QueryRow(ctx, `INSERT INTO brands
	(name, daily_budget, monthly_budget, is_active)
	VALUES ($1, $2, $3, $4)
	RETURNING id, current_daily_spend, current_monthly_spend,
		last_daily_reset, last_monthly_reset, created_at, updated_at`,
		b.Name, b.DailyBudget, b.MonthlyBudget, b.IsActive).
		Scan(&b.ID, &b.CurrentDailySpend, &b.CurrentMonthlySpend,
			&b.LastDailyReset, &b.LastMonthlyReset, &b.CreatedAt, &b.UpdatedAt)
}

func (s *Store) GetBrand(ctx context.Context, id int64) (*domain.Brand, error) {
	var b domain.Brand
	err := s.pool.QueryRow(ctx, `SELECT `+brandColumns+` FROM brands WHERE id = $1`, id).
		Scan(&b.ID, &b.Name, &b.DailyBudget, &b.MonthlyBudget, &b.CurrentDailySpend,
			&b.CurrentMonthlySpend, &b.LastDailyReset, &b.LastMonthlyReset,
			&b.IsActive, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("brand %d: %w", id, port.ErrBrandNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) CreateCampaign(ctx context.Context, c *domain.Campaign) error {
	if c.Status == "" {
		c.Status = domain.StatusActive
	}
	// The status invariant holds from the first row: a non-active status can
	// never be stored with is_active=true.
	isActive := c.IsActive && c.Status == domain.StatusActive
	err := s.pool.QueryRow(ctx, `INSERT INTO campaigns
	(brand_id, name, status, daily_budget, is_active)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, current_daily_spend, last_daily_reset, is_active, created_at, updated_at`,
		c.BrandID, c.Name, c.Status, c.DailyBudget, isActive).
		Scan(&c.ID, &c.CurrentDailySpend, &c.LastDailyReset, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("brand %d: %w", c.BrandID, port.ErrBrandNotFound)
	}
	return err
}

func (s *Store) GetCampaign(ctx context.Context, id int64) (*domain.Campaign, error) {
	var c domain.Campaign
	err := s.pool.QueryRow(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id).
		Scan(&c.ID, &c.BrandID, &c.Name, &c.Status, &c.DailyBudget, &c.CurrentDailySpend,
			&c.LastDailyReset, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("campaign %d: %w", id, port.ErrCampaignNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) SetCampaignActive(ctx context.Context, campaignID int64, active bool) (bool, error) {
	ct, err := s.pool.Exec(ctx, `UPDATE campaigns
	SET is_active = ($2 AND status = 'active'), updated_at = now()
	WHERE id = $1 AND is_active IS DISTINCT FROM ($2 AND status = 'active')`,
		campaignID, active)
	if err != nil {
		return false, err
	}
	if ct.RowsAffected() > 0 {
		return true, nil
	}
	// No change; distinguish a no-op from a missing campaign.
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM campaigns WHERE id = $1)`, campaignID).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, fmt.Errorf("campaign %d: %w", campaignID, port.ErrCampaignNotFound)
	}
	return false, nil
}

func (s *Store) ListActiveCampaigns(ctx context.Context) ([]domain.Campaign, error) {
	return s.listCampaigns(ctx, `SELECT `+campaignColumns+`
	FROM campaigns WHERE status = 'active' ORDER BY id`)
}

func (s *Store) ListReactivationCandidates(ctx context.Context) ([]domain.Campaign, error) {
	return s.listCampaigns(ctx, `SELECT `+campaignColumns+`
	FROM campaigns
	WHERE status = 'active' AND NOT is_active AND current_daily_spend < daily_budget
	ORDER BY id`)
}

func (s *Store) ListScheduledCampaigns(ctx context.Context) ([]domain.Campaign, error) {
	return s.listCampaigns(ctx, `SELECT `+campaignColumns+`
	FROM campaigns c
	WHERE status = 'active'
	  AND EXISTS (SELECT 1 FROM dayparting_schedules ds WHERE ds.campaign_id = c.id)
	ORDER BY id`)
}

func (s *Store) listCampaigns(ctx context.Context, query string, args ...any) ([]domain.Campaign, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Campaign, error) {
		var c domain.Campaign
		err := row.Scan(&c.ID, &c.BrandID, &c.Name, &c.Status, &c.DailyBudget,
			&c.CurrentDailySpend, &c.LastDailyReset, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
		return c, err
	})
}

// resetDay normalizes the stamp written into last_*_reset columns.
func resetDay(day time.Time) time.Time {
	y, m, d := day.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
