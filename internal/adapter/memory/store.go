package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"adbudget/internal/core/domain"
	"adbudget/internal/core/port"
)

// Store is an in-memory implementation of port.Store used by unit tests. It
// enforces the same contracts as the Postgres store: per-entity exclusive
// locks taken campaign before brand,
// reference-id uniqueness as a constraint atomic with record creation, and
// the status/is_active invariant on every campaign write.
type Store struct {
	mu sync.RWMutex

	brands    map[int64]*brandEntry
	campaigns map[int64]*campaignEntry
	schedules map[int64]domain.Schedule

	// recMu is a leaf lock guarding the append-only record log and the
	// reference-id uniqueness set.
	recMu      sync.Mutex
	records    []domain.SpendRecord
	references map[string]struct{}

	nextBrand    int64
	nextCampaign int64
	nextSchedule int64
	nextRecord   int64
}

type brandEntry struct {
	mu sync.Mutex
	b  domain.Brand
}

type campaignEntry struct {
	mu sync.Mutex
	c  domain.Campaign
}

func NewStore() *Store {
	return &Store{
		brands:     make(map[int64]*brandEntry),
		campaigns:  make(map[int64]*campaignEntry),
		schedules:  make(map[int64]domain.Schedule),
		references: make(map[string]struct{}),
	}
}

func (s *Store) CreateBrand(_ context.Context, b *domain.Brand) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextBrand++
	b.ID = s.nextBrand
	now := time.Now().UTC()
	if b.LastDailyReset.IsZero() {
		b.LastDailyReset = midnight(now)
	}
	if b.LastMonthlyReset.IsZero() {
		b.LastMonthlyReset = midnight(now)
	}
	b.CurrentDailySpend = clamp(b.CurrentDailySpend, b.DailyBudget)
	b.CurrentMonthlySpend = clamp(b.CurrentMonthlySpend, b.MonthlyBudget)
	b.CreatedAt, b.UpdatedAt = now, now
	s.brands[b.ID] = &brandEntry{b: *b}
	return nil
}

func (s *Store) GetBrand(_ context.Context, id int64) (*domain.Brand, error) {
	s.mu.RLock()
	entry, ok := s.brands[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("brand %d: %w", id, port.ErrBrandNotFound)
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	b := entry.b
	return &b, nil
}

func (s *Store) CreateCampaign(_ context.Context, c *domain.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.brands[c.BrandID]; !ok {
		return fmt.Errorf("brand %d: %w", c.BrandID, port.ErrBrandNotFound)
	}
	s.nextCampaign++
	c.ID = s.nextCampaign
	now := time.Now().UTC()
	if c.Status == "" {
		c.Status = domain.StatusActive
	}
	if c.LastDailyReset.IsZero() {
		c.LastDailyReset = midnight(now)
	}
	c.CurrentDailySpend = clamp(c.CurrentDailySpend, c.DailyBudget)
	if c.Status != domain.StatusActive {
		c.IsActive = false
	}
	c.CreatedAt, c.UpdatedAt = now, now
	s.campaigns[c.ID] = &campaignEntry{c: *c}
	return nil
}

func (s *Store) GetCampaign(_ context.Context, id int64) (*domain.Campaign, error) {
	s.mu.RLock()
	entry, ok := s.campaigns[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("campaign %d: %w", id, port.ErrCampaignNotFound)
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	c := entry.c
	return &c, nil
}

// InsertSpend applies one spend record under campaign-then-brand locks. The
// reference set plays the role of the unique constraint: membership check
// and insertion happen under one leaf lock, atomically with appending the
// record.
func (s *Store) InsertSpend(_ context.Context, rec *domain.SpendRecord) (bool, error) {
	s.mu.RLock()
	brand, ok := s.brands[rec.BrandID]
	var campaign *campaignEntry
	if ok && rec.CampaignID != nil {
		campaign = s.campaigns[*rec.CampaignID]
	}
	s.mu.RUnlock()

	if !ok {
		return false, fmt.Errorf("brand %d: %w", rec.BrandID, port.ErrBrandNotFound)
	}
	if rec.CampaignID != nil {
		if campaign == nil {
			return false, fmt.Errorf("campaign %d: %w", *rec.CampaignID, port.ErrCampaignNotFound)
		}
		if campaign.c.BrandID != rec.BrandID {
			return false, fmt.Errorf("campaign %d, brand %d: %w",
				*rec.CampaignID, rec.BrandID, port.ErrCampaignMismatch)
		}
	}

	if campaign != nil {
		campaign.mu.Lock()
		defer campaign.mu.Unlock()
	}
	brand.mu.Lock()
	defer brand.mu.Unlock()

	s.recMu.Lock()
	if _, dup := s.references[rec.ReferenceID]; dup {
		s.recMu.Unlock()
		return false, nil
	}
	s.references[rec.ReferenceID] = struct{}{}
	s.nextRecord++
	rec.ID = s.nextRecord
	rec.CreatedAt = time.Now().UTC()
	s.records = append(s.records, *rec)
	s.recMu.Unlock()

	if campaign != nil {
		campaign.c.ApplySpend(rec.Amount)
		campaign.c.UpdatedAt = time.Now().UTC()
	}
	brand.b.ApplySpend(rec.Amount)
	brand.b.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (s *Store) ResetDailySpend(_ context.Context, brandIDs []int64, day time.Time) (int64, int64, error) {
	var brands, campaigns int64
	scope := idSet(brandIDs)
	for _, entry := range s.snapshotBrands() {
		if scope != nil {
			if _, ok := scope[entry.b.ID]; !ok {
				continue
			}
		}
		entry.mu.Lock()
		entry.b.CurrentDailySpend = zero()
		entry.b.LastDailyReset = day
		entry.b.UpdatedAt = time.Now().UTC()
		entry.mu.Unlock()
		brands++
	}
	for _, entry := range s.snapshotCampaigns() {
		if scope != nil {
			if _, ok := scope[entry.c.BrandID]; !ok {
				continue
			}
		}
		entry.mu.Lock()
		entry.c.CurrentDailySpend = zero()
		entry.c.LastDailyReset = day
		entry.c.UpdatedAt = time.Now().UTC()
		entry.mu.Unlock()
		campaigns++
	}
	return brands, campaigns, nil
}

func (s *Store) ResetMonthlySpend(_ context.Context, brandIDs []int64, day time.Time) (int64, error) {
	var brands int64
	scope := idSet(brandIDs)
	for _, entry := range s.snapshotBrands() {
		if scope != nil {
			if _, ok := scope[entry.b.ID]; !ok {
				continue
			}
		}
		entry.mu.Lock()
		entry.b.CurrentMonthlySpend = zero()
		entry.b.LastMonthlyReset = day
		entry.b.UpdatedAt = time.Now().UTC()
		entry.mu.Unlock()
		brands++
	}
	return brands, nil
}

func (s *Store) SetCampaignActive(_ context.Context, campaignID int64, active bool) (bool, error) {
	s.mu.RLock()
	entry, ok := s.campaigns[campaignID]
	s.mu.RUnlock()
	if !ok {
		return false, fmt.Errorf("campaign %d: %w", campaignID, port.ErrCampaignNotFound)
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	// A non-active status always pins is_active to false.
	stored := active && entry.c.Status == domain.StatusActive
	if entry.c.IsActive == stored {
		return false, nil
	}
	entry.c.IsActive = stored
	entry.c.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (s *Store) ListActiveCampaigns(_ context.Context) ([]domain.Campaign, error) {
	return s.listCampaigns(func(c *domain.Campaign) bool {
		return c.Status == domain.StatusActive
	}), nil
}

func (s *Store) ListReactivationCandidates(_ context.Context) ([]domain.Campaign, error) {
	return s.listCampaigns(func(c *domain.Campaign) bool {
		return c.Status == domain.StatusActive && !c.IsActive && c.HasDailyBudget()
	}), nil
}

func (s *Store) ListScheduledCampaigns(_ context.Context) ([]domain.Campaign, error) {
	s.mu.RLock()
	scheduled := make(map[int64]struct{}, len(s.schedules))
	for _, sched := range s.schedules {
		scheduled[sched.CampaignID] = struct{}{}
	}
	s.mu.RUnlock()
	return s.listCampaigns(func(c *domain.Campaign) bool {
		if c.Status != domain.StatusActive {
			return false
		}
		_, ok := scheduled[c.ID]
		return ok
	}), nil
}

func (s *Store) CreateSchedule(_ context.Context, sched *domain.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.campaigns[sched.CampaignID]; !ok {
		return fmt.Errorf("campaign %d: %w", sched.CampaignID, port.ErrCampaignNotFound)
	}
	for _, other := range s.schedules {
		if other.CampaignID == sched.CampaignID && other.DayOfWeek == sched.DayOfWeek &&
			other.StartTime == sched.StartTime && other.EndTime == sched.EndTime {
			return fmt.Errorf("duplicate window for campaign %d: %w",
				sched.CampaignID, port.ErrScheduleInvalid)
		}
	}
	s.nextSchedule++
	sched.ID = s.nextSchedule
	now := time.Now().UTC()
	sched.CreatedAt, sched.UpdatedAt = now, now
	s.schedules[sched.ID] = *sched
	return nil
}

func (s *Store) UpdateSchedule(_ context.Context, sched *domain.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.schedules[sched.ID]
	if !ok {
		return fmt.Errorf("schedule %d: %w", sched.ID, port.ErrScheduleNotFound)
	}
	sched.CampaignID = existing.CampaignID
	sched.CreatedAt = existing.CreatedAt
	sched.UpdatedAt = time.Now().UTC()
	s.schedules[sched.ID] = *sched
	return nil
}

func (s *Store) DeleteSchedule(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.schedules[id]; !ok {
		return fmt.Errorf("schedule %d: %w", id, port.ErrScheduleNotFound)
	}
	delete(s.schedules, id)
	return nil
}

func (s *Store) GetSchedule(_ context.Context, id int64) (*domain.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sched, ok := s.schedules[id]
	if !ok {
		return nil, fmt.Errorf("schedule %d: %w", id, port.ErrScheduleNotFound)
	}
	return &sched, nil
}

func (s *Store) ListSchedules(_ context.Context, campaignID int64) ([]domain.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Schedule, 0)
	for _, sched := range s.schedules {
		if sched.CampaignID == campaignID {
			out = append(out, sched)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DayOfWeek != out[j].DayOfWeek {
			return out[i].DayOfWeek < out[j].DayOfWeek
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

func (s *Store) SpendStats(_ context.Context, req port.StatsReq) (*port.StatsResp, error) {
	s.recMu.Lock()
	defer s.recMu.Unlock()
	resp := &port.StatsResp{Total: zero()}
	for i := range s.records {
		rec := &s.records[i]
		if rec.Timestamp.Before(req.From) || rec.Timestamp.After(req.To) {
			continue
		}
		if req.BrandID != nil && rec.BrandID != *req.BrandID {
			continue
		}
		if req.CampaignID != nil && (rec.CampaignID == nil || *rec.CampaignID != *req.CampaignID) {
			continue
		}
		resp.Records++
		resp.Total = resp.Total.Add(rec.Amount)
	}
	return resp, nil
}

func (s *Store) listCampaigns(keep func(*domain.Campaign) bool) []domain.Campaign {
	out := make([]domain.Campaign, 0)
	for _, entry := range s.snapshotCampaigns() {
		entry.mu.Lock()
		c := entry.c
		entry.mu.Unlock()
		if keep(&c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) snapshotBrands() []*brandEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*brandEntry, 0, len(s.brands))
	for _, entry := range s.brands {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].b.ID < out[j].b.ID })
	return out
}

func (s *Store) snapshotCampaigns() []*campaignEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*campaignEntry, 0, len(s.campaigns))
	for _, entry := range s.campaigns {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].c.ID < out[j].c.ID })
	return out
}

func idSet(ids []int64) map[int64]struct{} {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func clamp(spend, budget decimal.Decimal) decimal.Decimal {
	if spend.GreaterThan(budget) {
		return budget
	}
	return spend
}

func zero() decimal.Decimal {
	return decimal.Zero
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
