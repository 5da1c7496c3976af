package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2024-01-01 is a Monday.
func mondayUTC(hour, min int) time.Time {
	return time.Date(2024, 1, 1, hour, min, 0, 0, time.UTC)
}

func tuesdayUTC(hour, min int) time.Time {
	return time.Date(2024, 1, 2, hour, min, 0, 0, time.UTC)
}

func mustTime(t *testing.T, s string) TimeOfDay {
	t.Helper()
	tod, err := ParseTimeOfDay(s)
	require.NoError(t, err)
	return tod
}

func TestParseTimeOfDay(t *testing.T) {
	tod := mustTime(t, "09:30")
	assert.Equal(t, TimeOfDay(9*60+30), tod)
	assert.Equal(t, "09:30", tod.String())

	for _, bad := range []string{"24:00", "12:60", "-1:00", "nope"} {
		_, err := ParseTimeOfDay(bad)
		assert.Error(t, err, bad)
	}
}

func TestScheduleActiveAtRegularWindow(t *testing.T) {
	sched := Schedule{
		DayOfWeek: 0, // Monday
		StartTime: mustTime(t, "09:00"),
		EndTime:   mustTime(t, "17:00"),
		Timezone:  "UTC",
		IsActive:  true,
	}

	assert.True(t, sched.ActiveAt(mondayUTC(12, 0)))
	// Bounds are inclusive on both ends.
	assert.True(t, sched.ActiveAt(mondayUTC(9, 0)))
	assert.True(t, sched.ActiveAt(mondayUTC(17, 0)))
	assert.False(t, sched.ActiveAt(mondayUTC(8, 59)))
	assert.False(t, sched.ActiveAt(mondayUTC(17, 1)))
	// Wrong day.
	assert.False(t, sched.ActiveAt(tuesdayUTC(12, 0)))
	// Disabled schedule never matches.
	sched.IsActive = false
	assert.False(t, sched.ActiveAt(mondayUTC(12, 0)))
}

func TestScheduleActiveAtWraparound(t *testing.T) {
	sched := Schedule{
		DayOfWeek: 0, // Monday
		StartTime: mustTime(t, "22:00"),
		EndTime:   mustTime(t, "02:00"),
		Timezone:  "UTC",
		IsActive:  true,
	}

	// Monday 23:30 falls in the pre-midnight segment.
	assert.True(t, sched.ActiveAt(mondayUTC(23, 30)))
	// The post-midnight segment is matched on the schedule's own day:
	// Monday 01:30 is covered, Tuesday 01:30 is not.
	assert.True(t, sched.ActiveAt(mondayUTC(1, 30)))
	assert.False(t, sched.ActiveAt(tuesdayUTC(1, 30)))
	assert.False(t, sched.ActiveAt(mondayUTC(12, 0)))
}

func TestScheduleFullDayMarker(t *testing.T) {
	sched := Schedule{DayOfWeek: 0, Timezone: "UTC", IsActive: true}
	require.True(t, sched.FullDay())
	assert.False(t, sched.Wraparound())
	assert.True(t, sched.ActiveAt(mondayUTC(0, 0)))
	assert.True(t, sched.ActiveAt(mondayUTC(23, 59)))
	assert.False(t, sched.ActiveAt(tuesdayUTC(12, 0)))

	// A zero-length window at any other time is not a full day.
	sched.StartTime = mustTime(t, "08:00")
	sched.EndTime = mustTime(t, "08:00")
	assert.False(t, sched.FullDay())
	assert.False(t, sched.ValidRange())
}

func TestScheduleActiveAtTimezone(t *testing.T) {
	sched := Schedule{
		DayOfWeek: 0, // Monday
		StartTime: mustTime(t, "09:00"),
		EndTime:   mustTime(t, "17:00"),
		Timezone:  "America/New_York",
		IsActive:  true,
	}

	// Monday 15:00 UTC is Monday 10:00 in New York (UTC-5 in January).
	assert.True(t, sched.ActiveAt(mondayUTC(15, 0)))
	// Monday 13:00 UTC is Monday 08:00 in New York.
	assert.False(t, sched.ActiveAt(mondayUTC(13, 0)))
	// Tuesday 01:00 UTC is still Monday 20:00 in New York: right day,
	// outside the window.
	assert.False(t, sched.ActiveAt(tuesdayUTC(1, 0)))
}

func TestScheduleActiveAtUnknownTimezoneFallsBackToUTC(t *testing.T) {
	sched := Schedule{
		DayOfWeek: 0,
		StartTime: mustTime(t, "09:00"),
		EndTime:   mustTime(t, "17:00"),
		Timezone:  "Not/AZone",
		IsActive:  true,
	}
	assert.True(t, sched.ActiveAt(mondayUTC(12, 0)))
	assert.False(t, sched.ActiveAt(mondayUTC(18, 0)))
}

func TestOverlaps(t *testing.T) {
	mk := func(start, end string) *Schedule {
		return &Schedule{
			DayOfWeek: 0,
			StartTime: mustTime(t, start),
			EndTime:   mustTime(t, end),
			IsActive:  true,
		}
	}

	assert.True(t, Overlaps(mk("09:00", "17:00"), mk("12:00", "20:00")))
	assert.True(t, Overlaps(mk("12:00", "20:00"), mk("09:00", "17:00")))
	// Touching windows do not overlap under the strict rule.
	assert.False(t, Overlaps(mk("09:00", "17:00"), mk("17:00", "20:00")))
	assert.False(t, Overlaps(mk("09:00", "12:00"), mk("14:00", "16:00")))

	// The full-day marker covers the whole day.
	fullDay := &Schedule{DayOfWeek: 0, IsActive: true}
	assert.True(t, Overlaps(fullDay, mk("09:00", "10:00")))
	assert.True(t, Overlaps(mk("09:00", "10:00"), fullDay))

	// Wraparound windows overlap through either segment.
	wrap := mk("22:00", "02:00")
	assert.True(t, Overlaps(wrap, mk("01:00", "03:00")))
	assert.True(t, Overlaps(wrap, mk("21:00", "23:00")))
	assert.False(t, Overlaps(wrap, mk("10:00", "12:00")))
	// Two wraparound windows overlapping only past midnight.
	assert.True(t, Overlaps(mk("23:00", "03:00"), mk("22:00", "01:00")))
}

func TestScheduleValidate(t *testing.T) {
	sched := Schedule{DayOfWeek: 0, StartTime: mustTime(t, "09:00"), EndTime: mustTime(t, "17:00")}
	require.NoError(t, sched.Validate())
	assert.True(t, sched.ValidRange())

	sched.DayOfWeek = 7
	assert.Error(t, sched.Validate())
	sched.DayOfWeek = 0

	sched.Priority = 101
	assert.Error(t, sched.Validate())
	sched.Priority = 0

	// Wraparound ranges are rejected at write time.
	sched.StartTime = mustTime(t, "22:00")
	sched.EndTime = mustTime(t, "02:00")
	assert.False(t, sched.ValidRange())
}
