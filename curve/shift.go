package curve

import (
	"math"
	"time"
)

type shiftedDiscount struct {
	DiscountCurve
	spread float64
}

// ShiftDiscount returns a view of base with a continuously compounded spread
// added to every zero rate: DF'(t) = DF(t) * exp(-spread * t).
func ShiftDiscount(base DiscountCurve, spread float64) DiscountCurve {
	return shiftedDiscount{DiscountCurve: base, spread: spread}
}

func (c shiftedDiscount) Interpolate(t time.Time) float64 {
	return c.DiscountCurve.Interpolate(t) * math.Exp(-c.spread*yearFrac(c.AsOf(), t))
}

func (c shiftedDiscount) DiscountFactor(d1, d2 time.Time) float64 {
	return c.Interpolate(d2) / c.Interpolate(d1)
}

type shiftedSurvival struct {
	SurvivalCurve
	spread float64
}

// ShiftSurvival returns a view of base with spread added to the hazard rate at
// every horizon: S'(t) = S(t) * exp(-spread * t). Default state and recovery
// are those of base.
func ShiftSurvival(base SurvivalCurve, spread float64) SurvivalCurve {
	return shiftedSurvival{SurvivalCurve: base, spread: spread}
}

func (c shiftedSurvival) Interpolate(t time.Time) float64 {
	s := c.SurvivalCurve.Interpolate(t)
	if s == 0 {
		return 0
	}
	return math.Min(1, s*math.Exp(-c.spread*yearFrac(c.AsOf(), t)))
}

func (c shiftedSurvival) SurvivalProb(d1, d2 time.Time) float64 {
	return survivalRatio(c, d1, d2)
}
