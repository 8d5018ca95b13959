package curve

import (
	"fmt"
	"time"

	"github.com/meenmo/credlib/utils"
)

// Loss is a cumulative expected-loss curve L(t) as a fraction of notional,
// L(asOf) = 0, linear between pillars and flat after the last one.
type Loss struct {
	asOf time.Time
	n    *nodes
}

// NewLossCurve builds a loss curve. Values must lie in [0,1] and be non-decreasing.
func NewLossCurve(asOf time.Time, points map[time.Time]float64) (*Loss, error) {
	n, err := newNodes(asOf, points, 0, Linear)
	if err != nil {
		return nil, fmt.Errorf("NewLossCurve: %w", err)
	}
	for i, v := range n.values {
		if v < 0 || v > 1 {
			return nil, fmt.Errorf("NewLossCurve: loss %.6g at %s outside [0,1]", v, n.dates[i].Format(utils.DateLayout))
		}
		if i > 0 && v < n.values[i-1] {
			return nil, fmt.Errorf("NewLossCurve: loss decreases at %s", n.dates[i].Format(utils.DateLayout))
		}
	}
	return &Loss{asOf: asOf, n: n}, nil
}

// AsOf returns the curve's anchor date.
func (c *Loss) AsOf() time.Time { return c.asOf }

// Interpolate returns L(t).
func (c *Loss) Interpolate(t time.Time) float64 { return c.n.value(t) }
