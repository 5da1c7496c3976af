package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Brand is an advertiser account. Monetary values are decimals with two
// fractional digits, stored as numeric(12,2).
type Brand struct {
	ID                  int64
	Name                string
	DailyBudget         decimal.Decimal
	MonthlyBudget       decimal.Decimal
	CurrentDailySpend   decimal.Decimal
	CurrentMonthlySpend decimal.Decimal
	LastDailyReset      time.Time
	LastMonthlyReset    time.Time
	IsActive            bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// HasDailyBudget reports whether the brand still has daily budget left.
func (b *Brand) HasDailyBudget() bool {
	return b.CurrentDailySpend.LessThan(b.DailyBudget)
}

// HasMonthlyBudget reports whether the brand still has monthly budget left.
func (b *Brand) HasMonthlyBudget() bool {
	return b.CurrentMonthlySpend.LessThan(b.MonthlyBudget)
}

// RemainingDailyBudget returns the unspent daily budget, never negative.
func (b *Brand) RemainingDailyBudget() decimal.Decimal {
	return clampRemaining(b.DailyBudget.Sub(b.CurrentDailySpend))
}

// RemainingMonthlyBudget returns the unspent monthly budget, never negative.
func (b *Brand) RemainingMonthlyBudget() decimal.Decimal {
	return clampRemaining(b.MonthlyBudget.Sub(b.CurrentMonthlySpend))
}

// ApplySpend adds amount to both spend counters and clamps each counter to
// its budget ceiling. Callers must hold exclusive access to the brand row.
func (b *Brand) ApplySpend(amount decimal.Decimal) {
	b.CurrentDailySpend = clampSpend(b.CurrentDailySpend.Add(amount), b.DailyBudget)
	b.CurrentMonthlySpend = clampSpend(b.CurrentMonthlySpend.Add(amount), b.MonthlyBudget)
}

func clampSpend(spend, budget decimal.Decimal) decimal.Decimal {
	if spend.GreaterThan(budget) {
		return budget
	}
	return spend
}

func clampRemaining(remaining decimal.Decimal) decimal.Decimal {
	if remaining.Sign() < 0 {
		return decimal.Zero
	}
	return remaining
}
