package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"adbudget/internal/core/domain"
	"adbudget/internal/core/port"
)

// Ledger applies spend events against brand and campaign budgets. Atomicity
// and lock ordering live in the store; the ledger validates input, maps
// duplicates to warnings and triggers activation re-evaluation for the
// affected campaign.
type Ledger struct {
	store      port.Store
	activation port.Activation
	logger     *slog.Logger

	// now is swappable in tests.
	now func() time.Time
}

// NewLedger creates a ledger backed by the given store. activation may be
// nil when re-evaluation is wired elsewhere (e.g. in batch backfills).
func NewLedger(store port.Store, activation port.Activation, logger *slog.Logger) *Ledger {
	return &Ledger{store: store, activation: activation, logger: logger, now: time.Now}
}

// ApplySpend applies one spend event with exactly-once semantics per
// reference id. A duplicate reference id is reported, not raised: the result
// carries Applied=false and a warning and no balances are touched.
func (l *Ledger) ApplySpend(ctx context.Context, ev port.SpendEvent) (port.SpendResult, error) {
	var res port.SpendResult
	if ev.Amount.Sign() <= 0 {
		return res, fmt.Errorf("amount %s: %w", ev.Amount, port.ErrInvalidAmount)
	}
	if ev.ReferenceID == "" {
		return res, fmt.Errorf("missing reference id: %w", port.ErrInvalidAmount)
	}
	ts := ev.Timestamp
	if ts.IsZero() {
		ts = l.now().UTC()
	}

	rec := &domain.SpendRecord{
		BrandID:     ev.BrandID,
		CampaignID:  ev.CampaignID,
		Amount:      ev.Amount,
		Timestamp:   ts,
		ReferenceID: ev.ReferenceID,
		Metadata:    ev.Metadata,
	}
	applied, err := l.store.InsertSpend(ctx, rec)
	if err != nil {
		return res, err
	}
	if !applied {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("spend with reference id %q was already applied", ev.ReferenceID))
		return res, nil
	}
	res.Applied = true

	l.logger.Info("spend applied",
		slog.Int64("brand_id", ev.BrandID),
		slog.Any("campaign_id", ev.CampaignID),
		slog.String("amount", ev.Amount.StringFixed(2)),
		slog.String("reference_id", ev.ReferenceID))

	if l.activation != nil && ev.CampaignID != nil {
		if _, err := l.activation.UpdateStatus(ctx, *ev.CampaignID); err != nil {
			// The spend itself is durable; a failed re-evaluation converges
			// on the next sweep.
			l.logger.Warn("activation re-evaluation failed",
				slog.Int64("campaign_id", *ev.CampaignID), slog.Any("error", err))
		}
	}
	return res, nil
}

// ResetDaily zeroes daily spend counters for the given brands and their
// campaigns, or for everything when no ids are given. The reset date is
// stamped with today, so repeating the call within a day is a no-op.
func (l *Ledger) ResetDaily(ctx context.Context, brandIDs ...int64) (int64, int64, error) {
	return l.store.ResetDailySpend(ctx, brandIDs, l.today())
}

// ResetMonthly zeroes monthly spend counters for the given brands, or for
// all brands when no ids are given.
func (l *Ledger) ResetMonthly(ctx context.Context, brandIDs ...int64) (int64, error) {
	return l.store.ResetMonthlySpend(ctx, brandIDs, l.today())
}

func (l *Ledger) today() time.Time {
	y, m, d := l.now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
