package usecase

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"adbudget/internal/adapter/memory"
	"adbudget/internal/core/domain"
)

// 2024-01-01 12:00 UTC, a Monday. All fixtures pin now here so dayparting
// assertions are deterministic.
var mondayNoon = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	store      *memory.Store
	ledger     *Ledger
	activation *Activation
	schedules  *Schedules
	sweeper    *Sweeper
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore()
	activation := NewActivation(store, logger)
	ledger := NewLedger(store, activation, logger)
	schedules := NewSchedules(store, activation, logger)
	sweeper := NewSweeper(store, ledger, activation, logger)

	fixed := func() time.Time { return mondayNoon }
	activation.now = fixed
	ledger.now = fixed
	schedules.now = fixed
	sweeper.now = fixed
	return &testEnv{store: store, ledger: ledger, activation: activation, schedules: schedules, sweeper: sweeper}
}

func (e *testEnv) createBrand(t *testing.T, daily, monthly string) *domain.Brand {
	t.Helper()
	b := &domain.Brand{
		Name:          "brand",
		DailyBudget:   decimal.RequireFromString(daily),
		MonthlyBudget: decimal.RequireFromString(monthly),
		IsActive:      true,
	}
	require.NoError(t, e.store.CreateBrand(context.Background(), b))
	return b
}

func (e *testEnv) createCampaign(t *testing.T, brandID int64, daily string) *domain.Campaign {
	t.Helper()
	c := &domain.Campaign{
		BrandID:     brandID,
		Name:        "campaign",
		Status:      domain.StatusActive,
		DailyBudget: decimal.RequireFromString(daily),
		IsActive:    true,
	}
	require.NoError(t, e.store.CreateCampaign(context.Background(), c))
	return c
}

func (e *testEnv) campaign(t *testing.T, id int64) *domain.Campaign {
	t.Helper()
	c, err := e.store.GetCampaign(context.Background(), id)
	require.NoError(t, err)
	return c
}

func (e *testEnv) brand(t *testing.T, id int64) *domain.Brand {
	t.Helper()
	b, err := e.store.GetBrand(context.Background(), id)
	require.NoError(t, err)
	return b
}
