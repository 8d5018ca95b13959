package curve

import (
	"fmt"
	"math"
	"time"

	"github.com/meenmo/credlib/utils"
)

// Discount is a discount curve backed by pillars or by a flat continuously
// compounded rate.
type Discount struct {
	asOf time.Time
	v    valuer
}

// NewDiscountCurve creates a curve from explicitly provided discount factors,
// log-linearly interpolated (flat forward between pillars and beyond the last one).
// DF(asOf) is 1 unless a pillar at asOf says otherwise.
func NewDiscountCurve(asOf time.Time, dfs map[time.Time]float64) (*Discount, error) {
	for d, df := range dfs {
		if df <= 0 || math.IsNaN(df) {
			return nil, fmt.Errorf("NewDiscountCurve: invalid discount factor %.6g at %s", df, d.Format(utils.DateLayout))
		}
	}
	n, err := newNodes(asOf, dfs, 1.0, LogLinear)
	if err != nil {
		return nil, fmt.Errorf("NewDiscountCurve: %w", err)
	}
	return &Discount{asOf: asOf, v: n}, nil
}

// FlatDiscountCurve returns DF(t) = exp(-rate * t) with t in ACT/365F years.
func FlatDiscountCurve(asOf time.Time, rate float64) *Discount {
	return &Discount{asOf: asOf, v: flat{asOf: asOf, rate: rate}}
}

// AsOf returns the curve's anchor date.
func (c *Discount) AsOf() time.Time { return c.asOf }

// Interpolate returns DF(asOf, t).
func (c *Discount) Interpolate(t time.Time) float64 { return c.v.value(t) }

// DiscountFactor returns DF(d1, d2) = DF(asOf, d2) / DF(asOf, d1).
func (c *Discount) DiscountFactor(d1, d2 time.Time) float64 {
	return c.Interpolate(d2) / c.Interpolate(d1)
}

// ZeroRateAt returns the continuously compounded zero rate to t, in percent.
func (c *Discount) ZeroRateAt(t time.Time) float64 {
	yf := yearFrac(c.asOf, t)
	if yf == 0 {
		return 0
	}
	return -math.Log(c.Interpolate(t)) / yf * 100
}
