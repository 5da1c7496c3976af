package domain

import (
	"fmt"
	"time"
)

// TimeOfDay is a schedule-local wall-clock time expressed as minutes since
// midnight, in [0, 1440).
type TimeOfDay int

const minutesPerDay = 24 * 60

// ParseTimeOfDay parses "HH:MM" into a TimeOfDay.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	return TimeOfDay(h*60 + m), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Schedule is a recurring weekly dayparting window during which a campaign
// is allowed to run. DayOfWeek uses 0=Monday through 6=Sunday.
type Schedule struct {
	ID         int64
	CampaignID int64
	DayOfWeek  int
	StartTime  TimeOfDay
	EndTime    TimeOfDay
	Timezone   string
	IsActive   bool
	Priority   int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// FullDay reports whether the schedule is the explicit 24-hour sentinel,
// start == end == 00:00. A zero-length range at any other time is invalid,
// not a full day.
func (s *Schedule) FullDay() bool {
	return s.StartTime == 0 && s.EndTime == 0
}

// Wraparound reports whether the window crosses midnight, e.g. 22:00-02:00.
func (s *Schedule) Wraparound() bool {
	return !s.FullDay() && s.EndTime <= s.StartTime
}

// ValidRange reports whether the window satisfies the write-time rule: end
// strictly after start, or the full-day sentinel. Wraparound rows are still
// handled by ActiveAt and Overlaps in case they predate this rule.
func (s *Schedule) ValidRange() bool {
	return s.FullDay() || s.EndTime > s.StartTime
}

// Validate checks day of week, time-of-day bounds and priority.
func (s *Schedule) Validate() error {
	if s.DayOfWeek < 0 || s.DayOfWeek > 6 {
		return fmt.Errorf("day of week %d out of range", s.DayOfWeek)
	}
	if s.StartTime < 0 || s.StartTime >= minutesPerDay || s.EndTime < 0 || s.EndTime >= minutesPerDay {
		return fmt.Errorf("time of day out of range")
	}
	if s.Priority < 0 || s.Priority > 100 {
		return fmt.Errorf("priority %d out of range", s.Priority)
	}
	return nil
}

// ActiveAt reports whether the schedule covers nowUTC. The instant is
// converted into the schedule's own time zone (falling back to UTC on an
// unknown zone name) and matched against the schedule's own day of week:
// a Monday 22:00-02:00 window is active at Monday 23:30 and Monday 01:30
// local time, but not on Tuesday.
func (s *Schedule) ActiveAt(nowUTC time.Time) bool {
	if !s.IsActive {
		return false
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		loc = time.UTC
	}
	now := nowUTC.In(loc)
	if weekdayIndex(now.Weekday()) != s.DayOfWeek {
		return false
	}
	if s.FullDay() {
		return true
	}
	t := TimeOfDay(now.Hour()*60 + now.Minute())
	if s.Wraparound() {
		return t >= s.StartTime || t <= s.EndTime
	}
	return t >= s.StartTime && t <= s.EndTime
}

// AnyScheduleActive reports whether at least one schedule covers nowUTC.
func AnyScheduleActive(schedules []Schedule, nowUTC time.Time) bool {
	for i := range schedules {
		if schedules[i].ActiveAt(nowUTC) {
			return true
		}
	}
	return false
}

// Overlaps reports whether two windows on the same campaign and day overlap.
// A full-day window overlaps everything on its day. Wraparound windows are
// expanded into their pre- and post-midnight segments, both attributed to
// the schedule's own day, matching ActiveAt.
func Overlaps(a, b *Schedule) bool {
	for _, sa := range a.segments() {
		for _, sb := range b.segments() {
			if sa.start < sb.end && sa.end > sb.start {
				return true
			}
		}
	}
	return false
}

type segment struct {
	start, end TimeOfDay
}

func (s *Schedule) segments() []segment {
	switch {
	case s.FullDay():
		return []segment{{0, minutesPerDay}}
	case s.Wraparound():
		return []segment{{s.StartTime, minutesPerDay}, {0, s.EndTime}}
	default:
		return []segment{{s.StartTime, s.EndTime}}
	}
}

// weekdayIndex converts Go's Sunday-based weekday to the 0=Monday scheme.
func weekdayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}
