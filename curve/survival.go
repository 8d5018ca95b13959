package curve

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/meenmo/credlib/utils"
)

// Survival is a single-name survival curve. It carries an optional default
// event and an optional recovery curve for the name.
type Survival struct {
	name          string
	asOf          time.Time
	v             valuer
	defaultDate   time.Time
	defaultSettle time.Time
	recovery      RecoveryCurve
}

// NewSurvivalCurve builds a curve from survival probabilities at pillar dates,
// log-linearly interpolated (piecewise-constant hazard). Probabilities must lie
// in (0,1] and be non-increasing in date.
func NewSurvivalCurve(name string, asOf time.Time, probs map[time.Time]float64) (*Survival, error) {
	dates := make([]time.Time, 0, len(probs))
	for d := range probs {
		dates = append(dates, d)
	}
	utils.SortDates(dates)
	prev := 1.0
	for _, d := range dates {
		p := probs[d]
		if p <= 0 || p > 1 || math.IsNaN(p) {
			return nil, fmt.Errorf("NewSurvivalCurve %s: probability %.6g at %s outside (0,1]", name, p, d.Format(utils.DateLayout))
		}
		if p > prev {
			return nil, fmt.Errorf("NewSurvivalCurve %s: probability increases at %s", name, d.Format(utils.DateLayout))
		}
		prev = p
	}
	n, err := newNodes(asOf, probs, 1.0, LogLinear)
	if err != nil {
		return nil, fmt.Errorf("NewSurvivalCurve %s: %w", name, err)
	}
	return &Survival{name: name, asOf: asOf, v: n}, nil
}

// FlatHazardCurve returns S(t) = exp(-hazard * t).
func FlatHazardCurve(name string, asOf time.Time, hazard float64) *Survival {
	return &Survival{name: name, asOf: asOf, v: flat{asOf: asOf, rate: hazard}}
}

// HazardRateCurve builds a piecewise-constant hazard curve from tenor-keyed
// hazard rates ("6M", "1Y", "5Y", ...). Each rate applies from the previous
// tenor to its own; the last rate is extrapolated.
func HazardRateCurve(name string, asOf time.Time, hazards map[string]float64) (*Survival, error) {
	if len(hazards) == 0 {
		return nil, fmt.Errorf("HazardRateCurve %s: %w", name, ErrNoPoints)
	}
	type pillar struct {
		date   time.Time
		hazard float64
	}
	pillars := make([]pillar, 0, len(hazards))
	for tenor, h := range hazards {
		d, err := TenorDate(asOf, tenor)
		if err != nil {
			return nil, fmt.Errorf("HazardRateCurve %s: %w", name, err)
		}
		if h < 0 {
			return nil, fmt.Errorf("HazardRateCurve %s: negative hazard %.6g at %s", name, h, tenor)
		}
		pillars = append(pillars, pillar{date: d, hazard: h})
	}
	sort.Slice(pillars, func(i, j int) bool { return pillars[i].date.Before(pillars[j].date) })

	probs := make(map[time.Time]float64, len(pillars))
	s, prevT := 1.0, 0.0
	for _, p := range pillars {
		t := yearFrac(asOf, p.date)
		s *= math.Exp(-p.hazard * (t - prevT))
		probs[p.date] = s
		prevT = t
	}
	return NewSurvivalCurve(name, asOf, probs)
}

// Name identifies the obligor.
func (c *Survival) Name() string { return c.name }

// AsOf returns the curve's anchor date.
func (c *Survival) AsOf() time.Time { return c.asOf }

// Interpolate returns S(asOf, t); zero on or after the default date.
func (c *Survival) Interpolate(t time.Time) float64 {
	if !c.defaultDate.IsZero() && !t.Before(c.defaultDate) {
		return 0
	}
	return c.v.value(t)
}

// SurvivalProb returns S(d2)/S(d1), or 0 when the name cannot survive to d1.
func (c *Survival) SurvivalProb(d1, d2 time.Time) float64 {
	return survivalRatio(c, d1, d2)
}

// DefaultDate is zero unless the name has defaulted.
func (c *Survival) DefaultDate() time.Time { return c.defaultDate }

// DefaultSettlementDate is the date the default is (or will be) cash settled.
func (c *Survival) DefaultSettlementDate() time.Time { return c.defaultSettle }

// Recovery returns the attached recovery curve, possibly nil.
func (c *Survival) Recovery() RecoveryCurve { return c.recovery }

// WithDefault returns a copy of the curve marked as defaulted on defaultDate,
// cash settled on settleDate (zero if not yet known).
func (c *Survival) WithDefault(defaultDate, settleDate time.Time) *Survival {
	out := *c
	out.defaultDate = defaultDate
	out.defaultSettle = settleDate
	return &out
}

// WithRecovery returns a copy of the curve with r attached.
func (c *Survival) WithRecovery(r RecoveryCurve) *Survival {
	out := *c
	out.recovery = r
	return &out
}

func survivalRatio(c Curve, d1, d2 time.Time) float64 {
	s1 := c.Interpolate(d1)
	if s1 <= 0 {
		return 0
	}
	return c.Interpolate(d2) / s1
}
