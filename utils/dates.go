package utils

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// DateLayout is the ISO date layout used for trade files and error messages.
const DateLayout = "2006-01-02"

// SortDates sorts a slice of time.Time in ascending order.
func SortDates(dates []time.Time) {
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})
}

// ParseDate converts YYYY-MM-DD to a UTC time.Time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("ParseDate: %w", err)
	}
	return t, nil
}

// Days returns the (possibly fractional) number of days between two instants.
func Days(start, end time.Time) float64 {
	return end.Sub(start).Hours() / 24
}

// AddMonth behaves like Excel's EDATE, avoiding Go's month normalization surprises.
func AddMonth(t time.Time, months int) time.Time {
	target := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, months, 0)
	if target.Month() == t.AddDate(0, months, 0).Month() {
		return t.AddDate(0, months, 0)
	}

	d := t.AddDate(0, months, 0)
	for d.Month() != target.Month() {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// Interpolate returns the instant a fraction w of the way from start to end.
// w = 0 gives start, w = 1 gives end.
func Interpolate(start, end time.Time, w float64) time.Time {
	if w <= 0 {
		return start
	}
	if w >= 1 {
		return end
	}
	return start.Add(time.Duration(math.Round(float64(end.Sub(start)) * w)))
}

// MaxDate returns the later of a and b.
func MaxDate(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
