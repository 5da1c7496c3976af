package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SpendRecord is an immutable, append-only event representing one unit of
// spend. ReferenceID is the caller-supplied idempotency key; a record is
// applied at most once per reference id.
type SpendRecord struct {
	ID          int64
	BrandID     int64
	CampaignID  *int64
	Amount      decimal.Decimal
	Timestamp   time.Time
	ReferenceID string
	Metadata    map[string]string
	CreatedAt   time.Time
}
