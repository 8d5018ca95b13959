package curve

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/meenmo/credlib/utils"
)

// Interpolation selects how a node curve fills the gaps between pillars.
type Interpolation int

const (
	// LogLinear interpolates ln(value) linearly in time and extrapolates the last
	// segment's slope (flat forward / flat hazard).
	LogLinear Interpolation = iota
	// Linear interpolates the value linearly in time and holds it flat outside the pillars.
	Linear
)

// valuer is the shape shared by node-based and analytic curves.
type valuer interface {
	value(t time.Time) float64
}

// nodes is a pillar set anchored at asOf with value anchor at time zero.
type nodes struct {
	asOf   time.Time
	dates  []time.Time
	times  []float64
	values []float64
	method Interpolation
}

func newNodes(asOf time.Time, points map[time.Time]float64, anchor float64, method Interpolation) (*nodes, error) {
	if len(points) == 0 {
		return nil, ErrNoPoints
	}
	dates := make([]time.Time, 0, len(points)+1)
	for d := range points {
		if d.Before(asOf) {
			return nil, fmt.Errorf("curve: pillar %s before as-of %s", d.Format(utils.DateLayout), asOf.Format(utils.DateLayout))
		}
		if !d.Equal(asOf) {
			dates = append(dates, d)
		}
	}
	utils.SortDates(dates)
	dates = append([]time.Time{asOf}, dates...)

	n := &nodes{
		asOf:   asOf,
		dates:  dates,
		times:  make([]float64, len(dates)),
		values: make([]float64, len(dates)),
		method: method,
	}
	for i, d := range dates {
		n.times[i] = yearFrac(asOf, d)
		if v, ok := points[d]; ok {
			n.values[i] = v
		} else {
			n.values[i] = anchor
		}
		if method == LogLinear && n.values[i] <= 0 {
			return nil, fmt.Errorf("curve: non-positive value %.6g at %s", n.values[i], d.Format(utils.DateLayout))
		}
	}
	return n, nil
}

// bracket finds two adjacent pillar indices around x; outside the range it
// returns the nearest boundary pair. Requires at least two pillars.
func (n *nodes) bracket(x float64) (int, int) {
	idx := sort.SearchFloat64s(n.times, x)
	if idx <= 0 {
		return 0, 1
	}
	if idx >= len(n.times) {
		return len(n.times) - 2, len(n.times) - 1
	}
	return idx - 1, idx
}

func (n *nodes) value(t time.Time) float64 {
	if len(n.times) == 1 {
		return n.values[0]
	}
	x := yearFrac(n.asOf, t)
	i, j := n.bracket(x)
	t1, t2 := n.times[i], n.times[j]
	v1, v2 := n.values[i], n.values[j]
	if t2 == t1 {
		return v1
	}

	switch n.method {
	case Linear:
		if x <= n.times[0] {
			return n.values[0]
		}
		if x >= n.times[len(n.times)-1] {
			return n.values[len(n.values)-1]
		}
		return v1 + (v2-v1)*(x-t1)/(t2-t1)
	default:
		forward := math.Log(v1/v2) / (t2 - t1)
		return v1 * math.Exp(-forward*(x-t1))
	}
}

// flat is exp(-rate * t), the analytic flat-rate / flat-hazard curve.
type flat struct {
	asOf time.Time
	rate float64
}

func (f flat) value(t time.Time) float64 {
	return math.Exp(-f.rate * yearFrac(f.asOf, t))
}
