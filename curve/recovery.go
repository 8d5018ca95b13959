package curve

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/meenmo/credlib/utils"
)

// Recovery is a piecewise-constant recovery rate: the rate of the latest
// pillar on or before t, or the first rate before every pillar.
type Recovery struct {
	dates []time.Time
	rates []float64
}

// FlatRecovery returns a date-independent recovery rate.
func FlatRecovery(rate float64) *Recovery {
	return &Recovery{dates: []time.Time{{}}, rates: []float64{rate}}
}

// NewRecoveryCurve builds a date-dependent recovery curve. Rates must lie in [0,1].
func NewRecoveryCurve(points map[time.Time]float64) (*Recovery, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("NewRecoveryCurve: %w", ErrNoPoints)
	}
	r := &Recovery{}
	for d := range points {
		r.dates = append(r.dates, d)
	}
	utils.SortDates(r.dates)
	for _, d := range r.dates {
		v := points[d]
		if v < 0 || v > 1 || math.IsNaN(v) {
			return nil, fmt.Errorf("NewRecoveryCurve: rate %.6g at %s outside [0,1]", v, d.Format(utils.DateLayout))
		}
		r.rates = append(r.rates, v)
	}
	return r, nil
}

// RecoveryRate returns R(t).
func (r *Recovery) RecoveryRate(t time.Time) float64 {
	i := sort.Search(len(r.dates), func(i int) bool { return r.dates[i].After(t) })
	if i == 0 {
		return r.rates[0]
	}
	return r.rates[i-1]
}

type shiftedRecovery struct {
	base  RecoveryCurve
	delta float64
}

// ShiftRecovery adds delta to every recovery rate, clamped to [0,1].
func ShiftRecovery(base RecoveryCurve, delta float64) RecoveryCurve {
	return shiftedRecovery{base: base, delta: delta}
}

func (s shiftedRecovery) RecoveryRate(t time.Time) float64 {
	return math.Min(1, math.Max(0, s.base.RecoveryRate(t)+s.delta))
}
