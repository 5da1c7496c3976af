package port

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"adbudget/internal/core/domain"
)

// Store is the persistence layer for budgets, campaigns and schedules. It is
// an outbound port; implementations must make InsertSpend atomic relative to
// all other mutations of the same brand and campaign, locking the campaign
// row before the brand row.
type Store interface {
	CreateBrand(ctx context.Context, b *domain.Brand) error
	GetBrand(ctx context.Context, id int64) (*domain.Brand, error)
	CreateCampaign(ctx context.Context, c *domain.Campaign) error
	GetCampaign(ctx context.Context, id int64) (*domain.Campaign, error)

	// InsertSpend applies one spend record: under campaign-then-brand
	// exclusive locks it persists the record, increments the clamped balance
	// counters and returns applied=true. A record whose reference id was
	// already applied returns applied=false with no mutation and no error;
	// the uniqueness check is a constraint, not a read-then-write.
	InsertSpend(ctx context.Context, rec *domain.SpendRecord) (applied bool, err error)

	// ResetDailySpend zeroes daily counters for the brands in brandIDs (all
	// brands when empty) and their campaigns, stamping day as the reset date.
	// Returns the number of brand and campaign rows updated.
	ResetDailySpend(ctx context.Context, brandIDs []int64, day time.Time) (brands, campaigns int64, err error)
	// ResetMonthlySpend zeroes monthly counters for the brands in brandIDs
	// (all brands when empty), stamping day as the reset date.
	ResetMonthlySpend(ctx context.Context, brandIDs []int64, day time.Time) (brands int64, err error)

	// SetCampaignActive persists the computed activation flag. The stored
	// value is forced to false whenever the campaign status is not active,
	// keeping the status invariant regardless of the caller. Returns whether
	// the stored value changed.
	SetCampaignActive(ctx context.Context, campaignID int64, active bool) (changed bool, err error)

	// ListActiveCampaigns returns all campaigns with operator status active.
	ListActiveCampaigns(ctx context.Context) ([]domain.Campaign, error)
	// ListReactivationCandidates returns campaigns with status active,
	// is_active false and daily budget remaining.
	ListReactivationCandidates(ctx context.Context) ([]domain.Campaign, error)
	// ListScheduledCampaigns returns campaigns with status active that have
	// at least one dayparting schedule row.
	ListScheduledCampaigns(ctx context.Context) ([]domain.Campaign, error)

	CreateSchedule(ctx context.Context, s *domain.Schedule) error
	UpdateSchedule(ctx context.Context, s *domain.Schedule) error
	DeleteSchedule(ctx context.Context, id int64) error
	GetSchedule(ctx context.Context, id int64) (*domain.Schedule, error)
	// ListSchedules returns every schedule row for the campaign, enabled or
	// not, ordered by day of week then start time.
	ListSchedules(ctx context.Context, campaignID int64) ([]domain.Schedule, error)

	// SpendStats aggregates spend records for reporting.
	SpendStats(ctx context.Context, req StatsReq) (*StatsResp, error)
}

// StatsReq selects spend records for aggregation. CampaignID nil means all
// campaigns.
type StatsReq struct {
	From       time.Time
	To         time.Time
	BrandID    *int64
	CampaignID *int64
}

// StatsResp is the aggregate over the selected spend records.
type StatsResp struct {
	Records int64           `json:"records"`
	Total   decimal.Decimal `json:"total"`
}
