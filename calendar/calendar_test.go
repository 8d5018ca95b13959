package calendar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/meenmo/credlib/calendar"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAdjust_ModifiedFollowingStaysInMonth(t *testing.T) {
	t.Parallel()

	// 2025-05-31 is a Saturday; following would roll into June.
	got := calendar.Adjust(calendar.WeekendsOnly, date(2025, 5, 31))
	assert.Equal(t, date(2025, 5, 30), got)

	got = calendar.AdjustFollowing(calendar.WeekendsOnly, date(2025, 5, 31))
	assert.Equal(t, date(2025, 6, 2), got)
}

func TestRegisterHolidays(t *testing.T) {
	t.Parallel()

	cal := calendar.CalendarID("TEST-HOLIDAYS")
	calendar.RegisterHolidays(cal, date(2025, 12, 25), date(2025, 12, 26))

	assert.False(t, calendar.IsBusinessDay(cal, date(2025, 12, 25)))
	assert.True(t, calendar.IsBusinessDay(calendar.WeekendsOnly, date(2025, 12, 25)))
	assert.Equal(t, date(2025, 12, 29), calendar.AddBusinessDays(cal, date(2025, 12, 24), 1))
	assert.Equal(t, date(2025, 12, 24), calendar.AddBusinessDays(cal, date(2025, 12, 29), -1))
}

func TestIMMDates(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in, next, prev time.Time
	}{
		{date(2025, 1, 10), date(2025, 3, 20), date(2024, 12, 20)},
		{date(2025, 3, 20), date(2025, 6, 20), date(2025, 3, 20)},
		{date(2025, 12, 21), date(2026, 3, 20), date(2025, 12, 20)},
	}
	for _, c := range cases {
		assert.Equal(t, c.next, calendar.NextIMMDate(c.in), "next of %s", c.in.Format("2006-01-02"))
		assert.Equal(t, c.prev, calendar.PreviousIMMDate(c.in), "prev of %s", c.in.Format("2006-01-02"))
	}
}

func TestTARGETClosingDays(t *testing.T) {
	t.Parallel()

	for _, d := range []time.Time{
		date(2025, 1, 1),
		date(2025, 4, 18), // Good Friday
		date(2025, 4, 21), // Easter Monday
		date(2025, 5, 1),
		date(2025, 12, 25),
		date(2025, 12, 26),
		date(2026, 4, 3),
		date(2026, 4, 6),
	} {
		assert.False(t, calendar.IsBusinessDay(calendar.TARGET, d), d.Format("2006-01-02"))
		assert.True(t, calendar.IsBusinessDay(calendar.WeekendsOnly, d), d.Format("2006-01-02"))
	}
	assert.True(t, calendar.IsBusinessDay(calendar.TARGET, date(2025, 4, 17)))
	assert.Equal(t, date(2025, 12, 29), calendar.AdjustFollowing(calendar.TARGET, date(2025, 12, 25)))
}
