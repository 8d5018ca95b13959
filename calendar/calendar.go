package calendar

import (
	"sync"
	"time"
)

// CalendarID identifies a holiday calendar.
type CalendarID string

const (
	// WeekendsOnly treats every Monday-Friday as a business day.
	WeekendsOnly CalendarID = "WEEKENDS"
	TARGET       CalendarID = "TARGET"
	USD          CalendarID = "USD"
	GBP          CalendarID = "GBP"
	JPN          CalendarID = "JPN"
)

var (
	mu       sync.RWMutex
	holidays = map[CalendarID]map[string]struct{}{}
)

// RegisterHolidays adds holiday dates to a calendar. TARGET closing days are
// built in; every other calendar skips only weekends until dates are registered.
func RegisterHolidays(cal CalendarID, dates ...time.Time) {
	mu.Lock()
	defer mu.Unlock()
	set, ok := holidays[cal]
	if !ok {
		set = make(map[string]struct{}, len(dates))
		holidays[cal] = set
	}
	for _, d := range dates {
		set[d.Format("2006-01-02")] = struct{}{}
	}
}

func isHoliday(cal CalendarID, t time.Time) bool {
	if cal == WeekendsOnly || cal == "" {
		return false
	}
	if cal == TARGET && isTargetClosing(t) {
		return true
	}
	mu.RLock()
	defer mu.RUnlock()
	_, ok := holidays[cal][t.Format("2006-01-02")]
	return ok
}

// isTargetClosing reports the fixed TARGET2 closing days: New Year's Day,
// Good Friday, Easter Monday, 1 May, 25 and 26 December.
func isTargetClosing(t time.Time) bool {
	y, m, d := t.Date()
	switch {
	case m == time.January && d == 1,
		m == time.May && d == 1,
		m == time.December && (d == 25 || d == 26):
		return true
	}
	easter := easterSunday(y).YearDay()
	return t.YearDay() == easter-2 || t.YearDay() == easter+1
}

// easterSunday uses the anonymous Gregorian algorithm.
func easterSunday(y int) time.Time {
	a := y % 19
	b, c := y/100, y%100
	d, e := b/4, b%4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i, k := c/4, c%4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(y, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// IsBusinessDay checks weekends and holiday sets.
func IsBusinessDay(cal CalendarID, t time.Time) bool {
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}
	return !isHoliday(cal, t)
}

// Adjust applies Modified Following.
func Adjust(cal CalendarID, t time.Time) time.Time {
	origMonth := t.Month()
	for !IsBusinessDay(cal, t) {
		t = t.AddDate(0, 0, 1)
	}
	if t.Month() != origMonth {
		t = t.AddDate(0, 0, -1)
		for !IsBusinessDay(cal, t) {
			t = t.AddDate(0, 0, -1)
		}
	}
	return t
}

// AdjustFollowing applies a simple Following convention (no month preservation).
// Standard CDS coupon dates roll this way.
func AdjustFollowing(cal CalendarID, t time.Time) time.Time {
	for !IsBusinessDay(cal, t) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// AddBusinessDays advances n business days (n can be negative).
func AddBusinessDays(cal CalendarID, t time.Time, n int) time.Time {
	step := 1
	if n < 0 {
		step = -1
	}
	for n != 0 {
		t = t.AddDate(0, 0, step)
		if IsBusinessDay(cal, t) {
			n -= step
		}
	}
	return t
}

// NextIMMDate returns the first CDS roll date (20 Mar/Jun/Sep/Dec) strictly after t.
func NextIMMDate(t time.Time) time.Time {
	y, m := t.Year(), t.Month()
	for i := 0; i < 5; i++ {
		mm := time.Month(((int(m) - 1 + i) % 12) + 1)
		yy := y + (int(m)-1+i)/12
		if mm%3 != 0 {
			continue
		}
		cand := time.Date(yy, mm, 20, 0, 0, 0, 0, time.UTC)
		if cand.After(t) {
			return cand
		}
	}
	// A quarter month always falls inside the five-month window.
	return time.Date(y+1, time.March, 20, 0, 0, 0, 0, time.UTC)
}

// PreviousIMMDate returns the last CDS roll date on or before t.
func PreviousIMMDate(t time.Time) time.Time {
	next := NextIMMDate(t)
	prev := next.AddDate(0, -3, 0)
	if prev.After(t) {
		return prev.AddDate(0, -3, 0)
	}
	return prev
}
