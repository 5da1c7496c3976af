package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"adbudget/internal/core/domain"
	"adbudget/internal/core/port"
)

const scheduleColumns = `id, campaign_id, day_of_week, start_minute, end_minute,
	timezone, is_active, priority, created_at, updated_at`

func (s *Store) CreateSchedule(ctx context.Context, sched *domain.Schedule) error {
	err := s.pool.QueryRow(ctx, `INSERT INTO dayparting_schedules
	(campaign_id, day_of_week, start_minute, end_minute, timezone, is_active, priority)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id, created_at, updated_at`,
		sched.CampaignID, sched.DayOfWeek, int(sched.StartTime), int(sched.EndTime),
		sched.Timezone, sched.IsActive, sched.Priority).
		Scan(&sched.ID, &sched.CreatedAt, &sched.UpdatedAt)
	switch {
	case isForeignKeyViolation(err):
		return fmt.Errorf("campaign %d: %w", sched.CampaignID, port.ErrCampaignNotFound)
	case isUniqueViolation(err):
		return fmt.Errorf("duplicate window for campaign %d: %w",
			sched.CampaignID, port.ErrScheduleInvalid)
	}
	return err
}

func (s *Store) UpdateSchedule(ctx context.Context, sched *domain.Schedule) error {
	// campaign_id is deliberately not updatable.
	ct, err := s.pool.Exec(ctx, `UPDATE dayparting_schedules SET
	day_of_week = $2, start_minute = $3, end_minute = $4,
	timezone = $5, is_active = $6, priority = $7, updated_at = now()
	WHERE id = $1`,
		sched.ID, sched.DayOfWeek, int(sched.StartTime), int(sched.EndTime),
		sched.Timezone, sched.IsActive, sched.Priority)
	if isUniqueViolation(err) {
		return fmt.Errorf("duplicate window for campaign %d: %w",
			sched.CampaignID, port.ErrScheduleInvalid)
	}
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("schedule %d: %w", sched.ID, port.ErrScheduleNotFound)
	}
	return nil
}

func (s *Store) DeleteSchedule(ctx context.Context, id int64) error {
	ct, err := s.pool.Exec(ctx, `DELETE FROM dayparting_schedules WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("schedule %d: %w", id, port.ErrScheduleNotFound)
	}
	return nil
}

func (s *Store) GetSchedule(ctx context.Context, id int64) (*domain.Schedule, error) {
	var sched domain.Schedule
	err := s.pool.QueryRow(ctx,
		`SELECT `+scheduleColumns+` FROM dayparting_schedules WHERE id = $1`, id).
		Scan(&sched.ID, &sched.CampaignID, &sched.DayOfWeek, &sched.StartTime, &sched.EndTime,
			&sched.Timezone, &sched.IsActive, &sched.Priority, &sched.CreatedAt, &sched.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("schedule %d: %w", id, port.ErrScheduleNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &sched, nil
}

func (s *Store) ListSchedules(ctx context.Context, campaignID int64) ([]domain.Schedule, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+scheduleColumns+`
	FROM dayparting_schedules WHERE campaign_id = $1
	ORDER BY day_of_week, start_minute`, campaignID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Schedule, error) {
		var sched domain.Schedule
		err := row.Scan(&sched.ID, &sched.CampaignID, &sched.DayOfWeek, &sched.StartTime,
			&sched.EndTime, &sched.Timezone, &sched.IsActive, &sched.Priority,
			&sched.CreatedAt, &sched.UpdatedAt)
		return sched, err
	})
}
