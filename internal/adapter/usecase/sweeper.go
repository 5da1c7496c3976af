package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"adbudget/internal/core/domain"
	"adbudget/internal/core/port"
)

// Sweeper runs the periodic maintenance passes. It owns no timing: an
// external scheduler calls the sweep entry points at whatever cadence it
// likes, and each sweep converges state idempotently. A failure on one
// campaign is logged and collected, never aborting the rest of the pass.
type Sweeper struct {
	store      port.Store
	ledger     port.Ledger
	activation port.Activation
	logger     *slog.Logger
	now        func() time.Time
}

func NewSweeper(store port.Store, ledger port.Ledger, activation port.Activation, logger *slog.Logger) *Sweeper {
	return &Sweeper{store: store, ledger: ledger, activation: activation, logger: logger, now: time.Now}
}

// DailyResetSweep zeroes the daily counters for every brand and campaign,
// then reactivates campaigns that became eligible again.
func (s *Sweeper) DailyResetSweep(ctx context.Context) (port.SweepReport, error) {
	report := port.SweepReport{Timestamp: s.now().UTC()}
	brands, campaigns, err := s.ledger.ResetDaily(ctx)
	if err != nil {
		return report, fmt.Errorf("daily reset: %w", err)
	}
	report.BrandsReset = brands
	report.CampaignsReset = campaigns

	s.reactivate(ctx, &report)
	s.logger.Info("daily reset sweep finished",
		slog.Int64("brands_reset", report.BrandsReset),
		slog.Int64("campaigns_reset", report.CampaignsReset),
		slog.Int("campaigns_reactivated", report.Reactivated),
		slog.Int("errors", len(report.Errors)))
	return report, nil
}

// MonthlyResetSweep zeroes the monthly counters for every brand, then
// reactivates campaigns that became eligible again.
func (s *Sweeper) MonthlyResetSweep(ctx context.Context) (port.SweepReport, error) {
	report := port.SweepReport{Timestamp: s.now().UTC()}
	brands, err := s.ledger.ResetMonthly(ctx)
	if err != nil {
		return report, fmt.Errorf("monthly reset: %w", err)
	}
	report.BrandsReset = brands

	s.reactivate(ctx, &report)
	s.logger.Info("monthly reset sweep finished",
		slog.Int64("brands_reset", report.BrandsReset),
		slog.Int("campaigns_reactivated", report.Reactivated),
		slog.Int("errors", len(report.Errors)))
	return report, nil
}

// ReactivateEligible flips is_active back on for campaigns that are
// operator-active, currently off and have daily budget remaining, provided
// brand and schedule state agree.
func (s *Sweeper) ReactivateEligible(ctx context.Context) (port.SweepReport, error) {
	report := port.SweepReport{Timestamp: s.now().UTC()}
	s.reactivate(ctx, &report)
	return report, nil
}

func (s *Sweeper) reactivate(ctx context.Context, report *port.SweepReport) {
	candidates, err := s.store.ListReactivationCandidates(ctx)
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("list reactivation candidates: %v", err))
		return
	}
	now := s.now().UTC()
	for i := range candidates {
		c := &candidates[i]
		report.Checked++
		b, err := s.store.GetBrand(ctx, c.BrandID)
		if err != nil {
			s.recordError(report, c.ID, "reactivate", err)
			continue
		}
		schedules, err := s.store.ListSchedules(ctx, c.ID)
		if err != nil {
			s.recordError(report, c.ID, "reactivate", err)
			continue
		}
		if !domain.ShouldBeActive(c, b, schedules, now) {
			continue
		}
		changed, err := s.store.SetCampaignActive(ctx, c.ID, true)
		if err != nil {
			s.recordError(report, c.ID, "reactivate", err)
			continue
		}
		if changed {
			report.Reactivated++
			s.logger.Info("campaign reactivated", slog.Int64("campaign_id", c.ID),
				slog.Int64("brand_id", c.BrandID))
		}
	}
}

// BudgetCheckSweep recomputes eligibility for every operator-active campaign
// and flips is_active in either direction as needed.
func (s *Sweeper) BudgetCheckSweep(ctx context.Context) (port.SweepReport, error) {
	report := port.SweepReport{Timestamp: s.now().UTC()}
	campaigns, err := s.store.ListActiveCampaigns(ctx)
	if err != nil {
		return report, fmt.Errorf("list active campaigns: %w", err)
	}
	for i := range campaigns {
		c := &campaigns[i]
		report.Checked++
		changed, err := s.activation.UpdateStatus(ctx, c.ID)
		if err != nil {
			s.recordError(&report, c.ID, "budget check", err)
			continue
		}
		if !changed {
			continue
		}
		if c.IsActive {
			report.Paused++
		} else {
			report.Reactivated++
		}
	}
	s.logger.Info("budget check sweep finished",
		slog.Int("campaigns_checked", report.Checked),
		slog.Int("campaigns_paused", report.Paused),
		slog.Int("campaigns_reactivated", report.Reactivated),
		slog.Int("errors", len(report.Errors)))
	return report, nil
}

// ScheduleCheckSweep recomputes eligibility from dayparting state alone for
// every operator-active campaign that has schedule rows, flipping is_active
// to match the current window.
func (s *Sweeper) ScheduleCheckSweep(ctx context.Context) (port.SweepReport, error) {
	report := port.SweepReport{Timestamp: s.now().UTC()}
	campaigns, err := s.store.ListScheduledCampaigns(ctx)
	if err != nil {
		return report, fmt.Errorf("list scheduled campaigns: %w", err)
	}
	now := s.now().UTC()
	for i := range campaigns {
		c := &campaigns[i]
		report.Checked++
		schedules, err := s.store.ListSchedules(ctx, c.ID)
		if err != nil {
			s.recordError(&report, c.ID, "schedule check", err)
			continue
		}
		want := domain.AnyScheduleActive(schedules, now)
		if want == c.IsActive {
			continue
		}
		changed, err := s.store.SetCampaignActive(ctx, c.ID, want)
		if err != nil {
			s.recordError(&report, c.ID, "schedule check", err)
			continue
		}
		if !changed {
			continue
		}
		if want {
			report.Reactivated++
		} else {
			report.Paused++
		}
		s.logger.Info("campaign dayparting transition",
			slog.Int64("campaign_id", c.ID), slog.Bool("is_active", want))
	}
	return report, nil
}

func (s *Sweeper) recordError(report *port.SweepReport, campaignID int64, op string, err error) {
	msg := fmt.Sprintf("%s: campaign %d: %v", op, campaignID, err)
	report.Errors = append(report.Errors, msg)
	s.logger.Error("sweep item failed",
		slog.String("op", op), slog.Int64("campaign_id", campaignID), slog.Any("error", err))
}
