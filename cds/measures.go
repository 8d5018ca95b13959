package cds

import (
	"errors"
	"fmt"
	"math"

	"github.com/meenmo/credlib/curve"
	"github.com/meenmo/credlib/pricing"
	"github.com/meenmo/credlib/utils"
)

// Initial search intervals; the solver widens them when they do not bracket.
const (
	irrLo, irrHi           = -0.05, 0.25
	discountLo, discountHi = -0.02, 0.05
	hazardLo, hazardHi     = -0.005, 0.05
)

// Irr is the yield y at which the expected flows discount to price * Notional.
// Flows are discounted by (1 + y/freq)^(-freq*t), or exp(-y*t) when freq is
// zero, with t the year fraction from settle under dayCount.
func (p *Pricer) Irr(price float64, dayCount string, freq int) (float64, error) {
	if freq < 0 {
		return 0, fmt.Errorf("Irr: negative frequency %d", freq)
	}
	flows, err := p.ExpectedFlows()
	if err != nil {
		return 0, fmt.Errorf("Irr: %w", err)
	}
	target := price * p.terms.Notional
	times := make([]float64, len(flows))
	for i, f := range flows {
		times[i] = utils.YearFraction(p.settle, f.Date, dayCount)
	}
	objective := func(y float64) (float64, error) {
		var pv float64
		for i, f := range flows {
			df, err := yieldDiscount(y, times[i], freq)
			if err != nil {
				return 0, err
			}
			pv += f.Amount * df
		}
		return pv - target, nil
	}
	y, err := p.solver.Solve(objective, irrLo, irrHi)
	if err != nil {
		p.log.WithError(err).Warnf("Irr: no yield for price %.6f", price)
		return 0, fmt.Errorf("Irr: %w", err)
	}
	return y, nil
}

func yieldDiscount(y, t float64, freq int) (float64, error) {
	if freq == 0 {
		return math.Exp(-y * t), nil
	}
	base := 1 + y/float64(freq)
	if base <= 0 {
		return 0, fmt.Errorf("yield %g below -%d", y, freq)
	}
	return math.Pow(base, -float64(freq)*t), nil
}

// ImpliedDiscountSpread is the parallel shift of the discount zero rates at
// which FullModelPrice equals target.
func (p *Pricer) ImpliedDiscountSpread(target float64) (float64, error) {
	base := p.discount
	objective := func(s float64) (float64, error) {
		r, err := p.WithDiscount(curve.ShiftDiscount(base, s)).Price()
		if err != nil {
			return 0, err
		}
		return r.FullModelPrice() - target, nil
	}
	s, err := p.solver.Solve(objective, discountLo, discountHi)
	if err != nil {
		return 0, fmt.Errorf("ImpliedDiscountSpread: %w", err)
	}
	return s, nil
}

// ImpliedHazardRateSpread is the parallel shift of the hazard rate at which
// FullModelPrice equals target.
func (p *Pricer) ImpliedHazardRateSpread(target float64) (float64, error) {
	base := p.survival
	objective := func(s float64) (float64, error) {
		r, err := p.WithSurvival(curve.ShiftSurvival(base, s)).Price()
		if err != nil {
			return 0, err
		}
		return r.FullModelPrice() - target, nil
	}
	s, err := p.solver.Solve(objective, hazardLo, hazardHi)
	if err != nil {
		return 0, fmt.Errorf("ImpliedHazardRateSpread: %w", err)
	}
	return s, nil
}

// BreakEvenPremium is the running coupon making ProtectionPv + FeePv zero.
// The fee leg is linear in the coupon, so it is one evaluation at a unit
// coupon. A funded note is priced as the equivalent unfunded swap; terms are
// restored on every return path.
func (p *Pricer) BreakEvenPremium() (float64, error) {
	saved := p.terms
	defer func() {
		p.terms = saved
		p.invalidate()
	}()
	if saved.Funded {
		p.log.Debug("BreakEvenPremium: pricing funded note as unfunded")
	}
	p.terms.Funded = false
	p.terms.Coupon = 1
	p.invalidate()

	r, err := p.Price()
	if err != nil {
		return 0, fmt.Errorf("BreakEvenPremium: %w", err)
	}
	if r.FeePv == 0 {
		return 0, &pricing.ComputationError{Op: "BreakEvenPremium", Err: errors.New("zero risky annuity")}
	}
	return -r.ProtectionPv / r.FeePv, nil
}

// BreakEvenFee is the upfront amount per unit notional the holder pays so that
// the trade is worth zero, i.e. FullModelPrice.
func (p *Pricer) BreakEvenFee() (float64, error) {
	r, err := p.Price()
	if err != nil {
		return 0, fmt.Errorf("BreakEvenFee: %w", err)
	}
	return r.FullModelPrice(), nil
}
