package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestBrandApplySpendClamps(t *testing.T) {
	b := &Brand{
		DailyBudget:   dec("100.00"),
		MonthlyBudget: dec("1000.00"),
	}

	b.ApplySpend(dec("60.00"))
	assert.True(t, b.CurrentDailySpend.Equal(dec("60.00")))
	assert.True(t, b.HasDailyBudget())
	assert.True(t, b.RemainingDailyBudget().Equal(dec("40.00")))

	// Overshoot clamps to the ceiling instead of going past it.
	b.ApplySpend(dec("60.00"))
	assert.True(t, b.CurrentDailySpend.Equal(dec("100.00")))
	assert.True(t, b.CurrentMonthlySpend.Equal(dec("120.00")))
	assert.False(t, b.HasDailyBudget())
	assert.True(t, b.RemainingDailyBudget().IsZero())
	assert.True(t, b.RemainingMonthlyBudget().Equal(dec("880.00")))
}

func TestCampaignApplySpendClamps(t *testing.T) {
	c := &Campaign{DailyBudget: dec("50.00")}

	c.ApplySpend(dec("49.99"))
	assert.True(t, c.HasDailyBudget())
	assert.True(t, c.RemainingDailyBudget().Equal(dec("0.01")))

	c.ApplySpend(dec("10.00"))
	assert.True(t, c.CurrentDailySpend.Equal(dec("50.00")))
	assert.False(t, c.HasDailyBudget())
}

func TestShouldBeActive(t *testing.T) {
	now := mondayUTC(12, 0)
	inWindow := []Schedule{{
		DayOfWeek: 0,
		StartTime: 9 * 60,
		EndTime:   17 * 60,
		Timezone:  "UTC",
		IsActive:  true,
	}}
	offHours := []Schedule{{
		DayOfWeek: 0,
		StartTime: 18 * 60,
		EndTime:   20 * 60,
		Timezone:  "UTC",
		IsActive:  true,
	}}

	base := func() (*Campaign, *Brand) {
		return &Campaign{Status: StatusActive, DailyBudget: dec("100")},
			&Brand{IsActive: true, DailyBudget: dec("500"), MonthlyBudget: dec("5000")}
	}

	t.Run("all conditions met, no schedules", func(t *testing.T) {
		c, b := base()
		assert.True(t, ShouldBeActive(c, b, nil, now))
	})

	t.Run("matching schedule", func(t *testing.T) {
		c, b := base()
		assert.True(t, ShouldBeActive(c, b, inWindow, now))
	})

	t.Run("outside schedule window", func(t *testing.T) {
		c, b := base()
		assert.False(t, ShouldBeActive(c, b, offHours, now))
	})

	t.Run("status not active", func(t *testing.T) {
		c, b := base()
		c.Status = StatusPaused
		assert.False(t, ShouldBeActive(c, b, nil, now))
	})

	t.Run("brand inactive", func(t *testing.T) {
		c, b := base()
		b.IsActive = false
		assert.False(t, ShouldBeActive(c, b, nil, now))
	})

	t.Run("brand daily budget exhausted", func(t *testing.T) {
		c, b := base()
		b.CurrentDailySpend = b.DailyBudget
		assert.False(t, ShouldBeActive(c, b, nil, now))
	})

	t.Run("campaign daily budget exhausted", func(t *testing.T) {
		c, b := base()
		c.CurrentDailySpend = c.DailyBudget
		assert.False(t, ShouldBeActive(c, b, nil, now))
	})
}
