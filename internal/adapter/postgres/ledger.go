package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"adbudget/internal/core/domain"
	"adbudget/internal/core/port"
)

// InsertSpend applies one spend record atomically. Lock order is fixed:
// campaign row first, brand row second, so two concurrent events touching
// the same pair can never deadlock. The spend_records unique constraint on
// reference_id makes the idempotency check race-free; a conflicting insert
// leaves every balance untouched.
func (s *Store) InsertSpend(ctx context.Context, rec *domain.SpendRecord) (bool, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	if rec.CampaignID != nil {
		var ownerID int64
		err = tx.QueryRow(ctx,
			`SELECT brand_id FROM campaigns WHERE id = $1 FOR UPDATE`, *rec.CampaignID).
			Scan(&ownerID)
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("campaign %d: %w", *rec.CampaignID, port.ErrCampaignNotFound)
			return false, err
		}
		if err != nil {
			return false, err
		}
		if ownerID != rec.BrandID {
			err = fmt.Errorf("campaign %d, brand %d: %w",
				*rec.CampaignID, rec.BrandID, port.ErrCampaignMismatch)
			return false, err
		}
	}

	var brandID int64
	err = tx.QueryRow(ctx, `SELECT id FROM brands WHERE id = $1 FOR UPDATE`, rec.BrandID).
		Scan(&brandID)
	if errors.Is(err, pgx.ErrNoRows) {
		err = fmt.Errorf("brand %d: %w", rec.BrandID, port.ErrBrandNotFound)
		return false, err
	}
	if err != nil {
		return false, err
	}

	meta := rec.Metadata
	if meta == nil {
		meta = map[string]string{}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return false, err
	}

	err = tx.QueryRow(ctx, `INSERT INTO spend_records
	(brand_id, campaign_id, amount, ts, reference_id, metadata)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (reference_id) DO NOTHING
	RETURNING id, created_at`,
		rec.BrandID, rec.CampaignID, rec.Amount, rec.Timestamp, rec.ReferenceID, metaJSON).
		Scan(&rec.ID, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// Duplicate reference id: report, do not apply.
		err = nil
		return false, nil
	}
	if err != nil {
		return false, err
	}

	_, err = tx.Exec(ctx, `UPDATE brands SET
	current_daily_spend = LEAST(current_daily_spend + $1, daily_budget),
	current_monthly_spend = LEAST(current_monthly_spend + $1, monthly_budget),
	updated_at = now()
	WHERE id = $2`, rec.Amount, rec.BrandID)
	if err != nil {
		return false, err
	}
	if rec.CampaignID != nil {
		_, err = tx.Exec(ctx, `UPDATE campaigns SET
		current_daily_spend = LEAST(current_daily_spend + $1, daily_budget),
		updated_at = now()
		WHERE id = $2`, rec.Amount, *rec.CampaignID)
		if err != nil {
			return false, err
		}
	}
	return true, nil
}

// ResetDailySpend zeroes daily counters for the brands in scope and their
// campaigns. An empty scope means every brand. The UPDATE is idempotent
// within a day by construction.
func (s *Store) ResetDailySpend(ctx context.Context, brandIDs []int64, day time.Time) (int64, int64, error) {
	stamp := resetDay(day)
	ct, err := s.pool.Exec(ctx, `UPDATE brands SET
	current_daily_spend = 0, last_daily_reset = $1, updated_at = now()
	WHERE $2::bigint[] IS NULL OR id = ANY($2::bigint[])`, stamp, nilIfEmpty(brandIDs))
	if err != nil {
		return 0, 0, err
	}
	brands := ct.RowsAffected()

	ct, err = s.pool.Exec(ctx, `UPDATE campaigns SET
	current_daily_spend = 0, last_daily_reset = $1, updated_at = now()
	WHERE $2::bigint[] IS NULL OR brand_id = ANY($2::bigint[])`, stamp, nilIfEmpty(brandIDs))
	if err != nil {
		return brands, 0, err
	}
	return brands, ct.RowsAffected(), nil
}

// ResetMonthlySpend zeroes monthly counters for the brands in scope, or all
// brands when the scope is empty.
func (s *Store) ResetMonthlySpend(ctx context.Context, brandIDs []int64, day time.Time) (int64, error) {
	ct, err := s.pool.Exec(ctx, `UPDATE brands SET
	current_monthly_spend = 0, last_monthly_reset = $1, updated_at = now()
	WHERE $2::bigint[] IS NULL OR id = ANY($2::bigint[])`, resetDay(day), nilIfEmpty(brandIDs))
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func nilIfEmpty(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	return ids
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
