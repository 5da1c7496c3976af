package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adbudget/internal/core/domain"
	"adbudget/internal/core/port"
)

func spendEvent(brandID int64, campaignID *int64, amount, ref string) port.SpendEvent {
	return port.SpendEvent{
		BrandID:     brandID,
		CampaignID:  campaignID,
		Amount:      decimal.RequireFromString(amount),
		ReferenceID: ref,
	}
}

func TestApplySpend(t *testing.T) {
	env := newTestEnv(t)
	b := env.createBrand(t, "500.00", "5000.00")
	c := env.createCampaign(t, b.ID, "100.00")

	res, err := env.ledger.ApplySpend(context.Background(), spendEvent(b.ID, &c.ID, "30.00", "evt-1"))
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Empty(t, res.Warnings)

	assert.True(t, env.campaign(t, c.ID).CurrentDailySpend.Equal(decimal.RequireFromString("30.00")))
	got := env.brand(t, b.ID)
	assert.True(t, got.CurrentDailySpend.Equal(decimal.RequireFromString("30.00")))
	assert.True(t, got.CurrentMonthlySpend.Equal(decimal.RequireFromString("30.00")))
}

func TestApplySpendBrandOnly(t *testing.T) {
	env := newTestEnv(t)
	b := env.createBrand(t, "500.00", "5000.00")

	res, err := env.ledger.ApplySpend(context.Background(), spendEvent(b.ID, nil, "42.00", "evt-1"))
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.True(t, env.brand(t, b.ID).CurrentDailySpend.Equal(decimal.RequireFromString("42.00")))
}

func TestApplySpendDuplicateReference(t *testing.T) {
	env := newTestEnv(t)
	b := env.createBrand(t, "500.00", "5000.00")
	c := env.createCampaign(t, b.ID, "100.00")

	ev := spendEvent(b.ID, &c.ID, "30.00", "evt-dup")
	res, err := env.ledger.ApplySpend(context.Background(), ev)
	require.NoError(t, err)
	require.True(t, res.Applied)

	// The replay succeeds without error, reports not-applied and leaves
	// every balance untouched.
	res, err = env.ledger.ApplySpend(context.Background(), ev)
	require.NoError(t, err)
	assert.False(t, res.Applied)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "evt-dup")
	assert.True(t, env.campaign(t, c.ID).CurrentDailySpend.Equal(decimal.RequireFromString("30.00")))
	assert.True(t, env.brand(t, b.ID).CurrentDailySpend.Equal(decimal.RequireFromString("30.00")))
}

func TestApplySpendValidation(t *testing.T) {
	env := newTestEnv(t)
	b := env.createBrand(t, "500.00", "5000.00")
	c := env.createCampaign(t, b.ID, "100.00")

	_, err := env.ledger.ApplySpend(context.Background(), spendEvent(b.ID, &c.ID, "0", "evt-zero"))
	assert.ErrorIs(t, err, port.ErrInvalidAmount)

	_, err = env.ledger.ApplySpend(context.Background(), spendEvent(b.ID, &c.ID, "-5.00", "evt-neg"))
	assert.ErrorIs(t, err, port.ErrInvalidAmount)

	_, err = env.ledger.ApplySpend(context.Background(), spendEvent(b.ID, &c.ID, "5.00", ""))
	assert.ErrorIs(t, err, port.ErrInvalidAmount)

	_, err = env.ledger.ApplySpend(context.Background(), spendEvent(99, nil, "5.00", "evt-nobrand"))
	assert.ErrorIs(t, err, port.ErrBrandNotFound)

	var noCampaign int64 = 99
	_, err = env.ledger.ApplySpend(context.Background(), spendEvent(b.ID, &noCampaign, "5.00", "evt-nocamp"))
	assert.ErrorIs(t, err, port.ErrCampaignNotFound)

	// A campaign owned by another brand is rejected before any balance moves.
	other := env.createBrand(t, "500.00", "5000.00")
	foreign := env.createCampaign(t, other.ID, "100.00")
	_, err = env.ledger.ApplySpend(context.Background(), spendEvent(b.ID, &foreign.ID, "5.00", "evt-mismatch"))
	assert.ErrorIs(t, err, port.ErrCampaignMismatch)
	assert.True(t, env.brand(t, b.ID).CurrentDailySpend.IsZero())
}

func TestApplySpendClampsToBudget(t *testing.T) {
	env := newTestEnv(t)
	b := env.createBrand(t, "500.00", "5000.00")
	c := env.createCampaign(t, b.ID, "100.00")

	_, err := env.ledger.ApplySpend(context.Background(), spendEvent(b.ID, &c.ID, "60.00", "evt-1"))
	require.NoError(t, err)
	_, err = env.ledger.ApplySpend(context.Background(), spendEvent(b.ID, &c.ID, "60.00", "evt-2"))
	require.NoError(t, err)

	got := env.campaign(t, c.ID)
	assert.True(t, got.CurrentDailySpend.Equal(decimal.RequireFromString("100.00")),
		"campaign spend clamped to budget, got %s", got.CurrentDailySpend)
	// The brand records the full amount; only the campaign ceiling was hit.
	assert.True(t, env.brand(t, b.ID).CurrentDailySpend.Equal(decimal.RequireFromString("120.00")))
}

func TestApplySpendDeactivatesExhaustedCampaign(t *testing.T) {
	env := newTestEnv(t)
	b := env.createBrand(t, "500.00", "5000.00")
	c := env.createCampaign(t, b.ID, "100.00")

	_, err := env.ledger.ApplySpend(context.Background(), spendEvent(b.ID, &c.ID, "100.00", "evt-1"))
	require.NoError(t, err)

	got := env.campaign(t, c.ID)
	assert.False(t, got.IsActive, "campaign should be switched off once its daily budget is spent")
	assert.Equal(t, domain.StatusActive, got.Status, "operator status is untouched")
}

func TestApplySpendConcurrent(t *testing.T) {
	env := newTestEnv(t)
	b := env.createBrand(t, "10000.00", "100000.00")
	c := env.createCampaign(t, b.ID, "10000.00")

	const workers = 50
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ev := spendEvent(b.ID, &c.ID, "2.00", fmt.Sprintf("evt-%d", i))
			if _, err := env.ledger.ApplySpend(context.Background(), ev); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent spend failed: %v", err)
	}

	want := decimal.RequireFromString("100.00")
	assert.True(t, env.campaign(t, c.ID).CurrentDailySpend.Equal(want))
	assert.True(t, env.brand(t, b.ID).CurrentDailySpend.Equal(want))

	stats, err := env.store.SpendStats(context.Background(), port.StatsReq{
		From: mondayNoon.Add(-time.Hour), To: mondayNoon.Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(workers), stats.Records)
	assert.True(t, stats.Total.Equal(want))
}

func TestApplySpendConcurrentSameReference(t *testing.T) {
	env := newTestEnv(t)
	b := env.createBrand(t, "10000.00", "100000.00")
	c := env.createCampaign(t, b.ID, "10000.00")

	const workers = 20
	var wg sync.WaitGroup
	results := make(chan port.SpendResult, workers)
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := env.ledger.ApplySpend(context.Background(), spendEvent(b.ID, &c.ID, "5.00", "evt-race"))
			if err != nil {
				errs <- err
				return
			}
			results <- res
		}()
	}
	wg.Wait()
	close(results)
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent spend failed: %v", err)
	}

	var wins int
	for res := range results {
		if res.Applied {
			wins++
		}
	}
	assert.Equal(t, 1, wins, "exactly one of the racing duplicates may apply")
	assert.True(t, env.campaign(t, c.ID).CurrentDailySpend.Equal(decimal.RequireFromString("5.00")))
}
