package basket

import (
	"fmt"
	"time"

	"github.com/meenmo/credlib/curve"
)

// CurveSet is an NthCurveModel over precomputed order-statistic curves.
// Survival[k-1] and Loss[k-1] belong to order k; Loss may be shorter or nil,
// in which case the order's protection is integrated from its survival curve.
type CurveSet struct {
	Survival []curve.SurvivalCurve
	Loss     []curve.Curve
}

func (m CurveSet) Names() int { return len(m.Survival) }

func (m CurveSet) NthSurvivalCurve(k int) curve.SurvivalCurve { return m.Survival[k-1] }

func (m CurveSet) NthLossCurve(k int) curve.Curve {
	if k > len(m.Loss) {
		return nil
	}
	return m.Loss[k-1]
}

// EffectiveSurvival is the survival of order first: the orders after it
// cannot be hit before it is.
func (m CurveSet) EffectiveSurvival(first, count int, date time.Time) float64 {
	return m.Survival[first-1].Interpolate(date)
}

// LossFromSurvival samples L(t) = (1 - S(t)) * (1 - R(t)) on dates, the loss
// curve of an order whose defaults settle at recovery R.
func LossFromSurvival(sc curve.SurvivalCurve, r curve.RecoveryCurve, dates []time.Time) (*curve.Loss, error) {
	if r == nil {
		r = curve.RecoveryOf(sc, nil)
	}
	points := make(map[time.Time]float64, len(dates))
	for _, d := range dates {
		points[d] = (1 - sc.Interpolate(d)) * (1 - r.RecoveryRate(d))
	}
	l, err := curve.NewLossCurve(sc.AsOf(), points)
	if err != nil {
		return nil, fmt.Errorf("LossFromSurvival: %w", err)
	}
	return l, nil
}
