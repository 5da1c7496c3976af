package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"adbudget/internal/core/domain"
	"adbudget/internal/core/port"
)

// Schedules validates and persists dayparting windows. Every successful
// write triggers re-evaluation of the owning campaign.
type Schedules struct {
	store      port.Store
	activation port.Activation
	logger     *slog.Logger
	now        func() time.Time
}

func NewSchedules(store port.Store, activation port.Activation, logger *slog.Logger) *Schedules {
	return &Schedules{store: store, activation: activation, logger: logger, now: time.Now}
}

// Create validates and stores a new schedule.
func (s *Schedules) Create(ctx context.Context, sched domain.Schedule) (*domain.Schedule, error) {
	if err := s.validate(ctx, &sched); err != nil {
		return nil, err
	}
	if err := s.store.CreateSchedule(ctx, &sched); err != nil {
		return nil, err
	}
	s.reevaluate(ctx, sched.CampaignID)
	return &sched, nil
}

// Update validates and stores an edited schedule. The campaign reference
// cannot be changed: the stored campaign id wins.
func (s *Schedules) Update(ctx context.Context, sched domain.Schedule) (*domain.Schedule, error) {
	existing, err := s.store.GetSchedule(ctx, sched.ID)
	if err != nil {
		return nil, err
	}
	sched.CampaignID = existing.CampaignID
	if err := s.validate(ctx, &sched); err != nil {
		return nil, err
	}
	if err := s.store.UpdateSchedule(ctx, &sched); err != nil {
		return nil, err
	}
	s.reevaluate(ctx, sched.CampaignID)
	return &sched, nil
}

// Delete removes a schedule and re-evaluates the owning campaign.
func (s *Schedules) Delete(ctx context.Context, id int64) error {
	existing, err := s.store.GetSchedule(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteSchedule(ctx, id); err != nil {
		return err
	}
	s.reevaluate(ctx, existing.CampaignID)
	return nil
}

// ListEligibleNow returns the active schedules covering now, ordered by
// priority descending then day of week and start time ascending. Existence
// of any element means the campaign's schedule gate is open.
func (s *Schedules) ListEligibleNow(ctx context.Context, campaignID int64, now time.Time) ([]domain.Schedule, error) {
	all, err := s.store.ListSchedules(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	eligible := make([]domain.Schedule, 0, len(all))
	for _, sched := range all {
		if sched.ActiveAt(now) {
			eligible = append(eligible, sched)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		if eligible[i].Priority != eligible[j].Priority {
			return eligible[i].Priority > eligible[j].Priority
		}
		if eligible[i].DayOfWeek != eligible[j].DayOfWeek {
			return eligible[i].DayOfWeek < eligible[j].DayOfWeek
		}
		return eligible[i].StartTime < eligible[j].StartTime
	})
	return eligible, nil
}

// validate guards the data that ActiveAt later consumes: structural checks,
// the end-after-start rule and overlap against the campaign's other active
// windows on the same day.
func (s *Schedules) validate(ctx context.Context, sched *domain.Schedule) error {
	if sched.Timezone == "" {
		sched.Timezone = "UTC"
	}
	if err := sched.Validate(); err != nil {
		return fmt.Errorf("%w: %s", port.ErrScheduleInvalid, err)
	}
	if !sched.ValidRange() {
		return fmt.Errorf("%s-%s: %w", sched.StartTime, sched.EndTime, port.ErrScheduleInvalidRange)
	}
	if !sched.IsActive {
		return nil
	}
	// The campaign must exist even for the first schedule row.
	if _, err := s.store.GetCampaign(ctx, sched.CampaignID); err != nil {
		return err
	}
	others, err := s.store.ListSchedules(ctx, sched.CampaignID)
	if err != nil {
		return err
	}
	for i := range others {
		other := &others[i]
		if other.ID == sched.ID || !other.IsActive || other.DayOfWeek != sched.DayOfWeek {
			continue
		}
		if domain.Overlaps(sched, other) {
			return fmt.Errorf("window %s-%s conflicts with schedule %d (%s-%s): %w",
				sched.StartTime, sched.EndTime, other.ID, other.StartTime, other.EndTime,
				port.ErrScheduleOverlap)
		}
	}
	return nil
}

func (s *Schedules) reevaluate(ctx context.Context, campaignID int64) {
	if _, err := s.activation.UpdateStatus(ctx, campaignID); err != nil {
		s.logger.Warn("activation re-evaluation failed",
			slog.Int64("campaign_id", campaignID), slog.Any("error", err))
	}
}
