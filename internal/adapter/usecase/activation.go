package usecase

import (
	"context"
	"log/slog"
	"time"

	"adbudget/internal/core/domain"
	"adbudget/internal/core/port"
)

// Activation computes and persists whether a campaign is allowed to run
// right now. It is invoked explicitly after every spend application and
// schedule write, and by the periodic sweeps; there is no hidden dispatch.
type Activation struct {
	store  port.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewActivation(store port.Store, logger *slog.Logger) *Activation {
	return &Activation{store: store, logger: logger, now: time.Now}
}

// UpdateStatus recomputes the activation decision for the campaign and
// persists it if it changed. Redundant calls are no-ops.
func (a *Activation) UpdateStatus(ctx context.Context, campaignID int64) (bool, error) {
	c, b, schedules, err := a.load(ctx, campaignID)
	if err != nil {
		return false, err
	}
	want := domain.ShouldBeActive(c, b, schedules, a.now().UTC())
	if want == c.IsActive {
		return false, nil
	}
	changed, err := a.store.SetCampaignActive(ctx, campaignID, want)
	if err != nil {
		return false, err
	}
	if changed {
		a.logger.Info("campaign activation changed",
			slog.Int64("campaign_id", campaignID),
			slog.Int64("brand_id", c.BrandID),
			slog.Bool("is_active", want))
	}
	return changed, nil
}

// ShouldBeActive loads the campaign and reports the computed eligibility
// without persisting anything. Used by diagnostics endpoints.
func (a *Activation) ShouldBeActive(ctx context.Context, campaignID int64) (bool, error) {
	c, b, schedules, err := a.load(ctx, campaignID)
	if err != nil {
		return false, err
	}
	return domain.ShouldBeActive(c, b, schedules, a.now().UTC()), nil
}

func (a *Activation) load(ctx context.Context, campaignID int64) (*domain.Campaign, *domain.Brand, []domain.Schedule, error) {
	c, err := a.store.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, nil, nil, err
	}
	b, err := a.store.GetBrand(ctx, c.BrandID)
	if err != nil {
		return nil, nil, nil, err
	}
	schedules, err := a.store.ListSchedules(ctx, campaignID)
	if err != nil {
		return nil, nil, nil, err
	}
	return c, b, schedules, nil
}
