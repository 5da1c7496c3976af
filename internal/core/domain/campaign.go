package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CampaignStatus is the operator-set intent for a campaign. It is distinct
// from Campaign.IsActive, which is the computed run/no-run flag.
type CampaignStatus string

const (
	StatusActive    CampaignStatus = "active"
	StatusPaused    CampaignStatus = "paused"
	StatusCompleted CampaignStatus = "completed"
	StatusArchived  CampaignStatus = "archived"
)

// Valid reports whether s is one of the known statuses.
func (s CampaignStatus) Valid() bool {
	switch s {
	case StatusActive, StatusPaused, StatusCompleted, StatusArchived:
		return true
	}
	return false
}

// Campaign is an advertising unit owned by exactly one brand. The brand
// reference is immutable after creation.
type Campaign struct {
	ID                int64
	BrandID           int64
	Name              string
	Status            CampaignStatus
	DailyBudget       decimal.Decimal
	CurrentDailySpend decimal.Decimal
	LastDailyReset    time.Time
	IsActive          bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// HasDailyBudget reports whether the campaign still has daily budget left.
func (c *Campaign) HasDailyBudget() bool {
	return c.CurrentDailySpend.LessThan(c.DailyBudget)
}

// RemainingDailyBudget returns the unspent daily budget, never negative.
func (c *Campaign) RemainingDailyBudget() decimal.Decimal {
	return clampRemaining(c.DailyBudget.Sub(c.CurrentDailySpend))
}

// ApplySpend adds amount to the daily spend counter and clamps it to the
// daily budget. Callers must hold exclusive access to the campaign row.
func (c *Campaign) ApplySpend(amount decimal.Decimal) {
	c.CurrentDailySpend = clampSpend(c.CurrentDailySpend.Add(amount), c.DailyBudget)
}

// ShouldBeActive computes the activation decision for a campaign: the
// operator status must be active, the owning brand must be active with daily
// budget remaining, the campaign must have daily budget remaining, and if the
// campaign has any schedules at all, at least one active schedule must match
// now. A campaign without schedules is eligible around the clock.
func ShouldBeActive(c *Campaign, b *Brand, schedules []Schedule, now time.Time) bool {
	if c.Status != StatusActive {
		return false
	}
	if !b.IsActive || !b.HasDailyBudget() {
		return false
	}
	if !c.HasDailyBudget() {
		return false
	}
	if len(schedules) == 0 {
		return true
	}
	return AnyScheduleActive(schedules, now)
}
