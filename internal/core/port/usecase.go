package port

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"adbudget/internal/core/domain"
)

// SpendEvent is one inbound spend increment from the ad-serving pipeline, a
// batch importer or the simulator. ReferenceID is the idempotency key.
type SpendEvent struct {
	BrandID     int64             `json:"brand_id"`
	CampaignID  *int64            `json:"campaign_id,omitempty"`
	Amount      decimal.Decimal   `json:"amount"`
	ReferenceID string            `json:"reference_id"`
	Timestamp   time.Time         `json:"timestamp,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// SpendResult reports the outcome of applying one spend event. A duplicate
// reference id yields Applied=false with a warning, not an error.
type SpendResult struct {
	Applied  bool     `json:"applied"`
	Warnings []string `json:"warnings,omitempty"`
}

// Ledger applies spend events to brand and campaign balances with
// exactly-once semantics per reference id, and zeroes counters on reset.
type Ledger interface {
	ApplySpend(ctx context.Context, ev SpendEvent) (SpendResult, error)
	// ResetDaily zeroes daily counters for the given brands, or all brands
	// when none are given. Idempotent within a day.
	ResetDaily(ctx context.Context, brandIDs ...int64) (brands, campaigns int64, err error)
	// ResetMonthly zeroes monthly counters for the given brands, or all
	// brands when none are given. Idempotent within a day.
	ResetMonthly(ctx context.Context, brandIDs ...int64) (brands int64, err error)
}

// Activation keeps each campaign's computed is_active flag in sync with its
// budget, brand and schedule state.
type Activation interface {
	// UpdateStatus recomputes whether the campaign should run and persists
	// the flag if it differs from the stored value. Safe to call redundantly.
	UpdateStatus(ctx context.Context, campaignID int64) (changed bool, err error)
}

// Schedules manages dayparting windows. Writes are validated against
// overlapping active windows and trigger re-evaluation of the owning
// campaign.
type Schedules interface {
	Create(ctx context.Context, s domain.Schedule) (*domain.Schedule, error)
	Update(ctx context.Context, s domain.Schedule) (*domain.Schedule, error)
	Delete(ctx context.Context, id int64) error
	// ListEligibleNow returns the active schedules covering now for the
	// campaign, ordered by priority descending then day and start time.
	ListEligibleNow(ctx context.Context, campaignID int64, now time.Time) ([]domain.Schedule, error)
}

// SweepReport summarizes one maintenance sweep. Per-campaign failures are
// collected in Errors and never abort the sweep.
type SweepReport struct {
	Timestamp      time.Time `json:"timestamp"`
	BrandsReset    int64     `json:"brands_reset,omitempty"`
	CampaignsReset int64     `json:"campaigns_reset,omitempty"`
	Checked        int       `json:"campaigns_checked"`
	Paused         int       `json:"campaigns_paused"`
	Reactivated    int       `json:"campaigns_reactivated"`
	Errors         []string  `json:"errors,omitempty"`
}

// Sweeper runs the periodic maintenance entry points. The sweeps contain no
// timing logic; an external scheduler decides when to call them, and running
// any sweep twice in a row with no intervening events is a no-op the second
// time.
type Sweeper interface {
	DailyResetSweep(ctx context.Context) (SweepReport, error)
	MonthlyResetSweep(ctx context.Context) (SweepReport, error)
	ReactivateEligible(ctx context.Context) (SweepReport, error)
	BudgetCheckSweep(ctx context.Context) (SweepReport, error)
	ScheduleCheckSweep(ctx context.Context) (SweepReport, error)
}
