// Package grid partitions a time interval into integration sub-steps.
package grid

import (
	"fmt"
	"strings"
	"time"

	"github.com/meenmo/credlib/utils"
)

// Unit is the calendar unit a step size is expressed in.
type Unit string

const (
	Days   Unit = "D"
	Weeks  Unit = "W"
	Months Unit = "M"
	Years  Unit = "Y"
)

// maxSteps bounds a single partition so a tiny step over a long horizon
// cannot allocate without limit.
const maxSteps = 200_000

// Step is the integration granularity. A zero Size means one step per interval.
type Step struct {
	Size int
	Unit Unit
}

// ParseStep parses tenor-style steps such as "1D", "2W", "3M" or "0".
func ParseStep(s string) (Step, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" || s == "0" {
		return Step{}, nil
	}
	var n int
	var u string
	if _, err := fmt.Sscanf(s, "%d%s", &n, &u); err != nil {
		return Step{}, fmt.Errorf("ParseStep: %q: %w", s, err)
	}
	st := Step{Size: n, Unit: Unit(u)}
	if err := st.Validate(); err != nil {
		return Step{}, fmt.Errorf("ParseStep: %w", err)
	}
	return st, nil
}

// Validate reports a negative size or an unknown unit.
func (s Step) Validate() error {
	if s.Size < 0 {
		return fmt.Errorf("negative step size %d", s.Size)
	}
	if s.Size == 0 {
		return nil
	}
	switch s.Unit {
	case Days, Weeks, Months, Years:
		return nil
	default:
		return fmt.Errorf("unknown step unit %q", s.Unit)
	}
}

// String renders the step as a tenor.
func (s Step) String() string {
	if s.Size == 0 {
		return "0"
	}
	return fmt.Sprintf("%d%s", s.Size, s.Unit)
}

// Advance moves t forward by n steps. Month and year steps roll like EDATE from t.
func (s Step) Advance(t time.Time, n int) time.Time {
	switch s.Unit {
	case Weeks:
		return t.AddDate(0, 0, 7*s.Size*n)
	case Months:
		return utils.AddMonth(t, s.Size*n)
	case Years:
		return utils.AddMonth(t, 12*s.Size*n)
	default:
		return t.AddDate(0, 0, s.Size*n)
	}
}

// Partition returns the grid points start = p[0] < p[1] < ... < p[n] = end.
// Points are generated as start + k*step (not by chaining) to avoid month-end drift;
// the last sub-step is shortened to land on end. If end is not after start the
// result is the single point start.
func Partition(start, end time.Time, s Step) []time.Time {
	if !end.After(start) {
		return []time.Time{start}
	}
	if s.Size <= 0 {
		return []time.Time{start, end}
	}
	pts := []time.Time{start}
	for k := 1; k < maxSteps; k++ {
		next := s.Advance(start, k)
		if !next.Before(end) {
			break
		}
		pts = append(pts, next)
	}
	return append(pts, end)
}

// Walk calls fn for every sub-step [t0, t1] of Partition(start, end, s).
// It stops at the first error.
func Walk(start, end time.Time, s Step, fn func(t0, t1 time.Time) error) error {
	pts := Partition(start, end, s)
	for i := 1; i < len(pts); i++ {
		if err := fn(pts[i-1], pts[i]); err != nil {
			return err
		}
	}
	return nil
}
