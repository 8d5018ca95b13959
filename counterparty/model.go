// Package counterparty combines a reference name's survival with that of a
// protection seller under a Gaussian copula.
//
// The interval [start, end] is cut on the integration grid and the copula is
// applied to each sub-step's marginal survivals; the joint survival over the
// interval is the product of the step survivals.
package counterparty

import (
	"time"

	"github.com/meenmo/credlib/curve"
	"github.com/meenmo/credlib/grid"
)

// OverallSurvivalProbability is the probability that neither the name nor the
// counterparty defaults in (start, end], given both alive at start. Without a
// counterparty it is the name's survival ratio S(end)/S(start).
func OverallSurvivalProbability(start, end time.Time, survival, cp curve.SurvivalCurve, corr float64, step grid.Step) float64 {
	if !end.After(start) {
		return 1
	}
	if cp == nil {
		return survival.SurvivalProb(start, end)
	}
	if shortcut, ok := closedForm(start, end, survival, cp, corr); ok {
		return shortcut
	}
	js := 1.0
	_ = grid.Walk(start, end, step, func(t0, t1 time.Time) error {
		js *= JointStepSurvival(survival.SurvivalProb(t0, t1), cp.SurvivalProb(t0, t1), corr)
		return nil
	})
	return js
}

// CreditDefaultProbability is the probability that the name defaults in
// (start, end] while the counterparty is still alive at the end of the sub-step
// in which the default happens.
func CreditDefaultProbability(start, end time.Time, survival, cp curve.SurvivalCurve, corr float64, step grid.Step) float64 {
	if !end.After(start) {
		return 0
	}
	if cp == nil {
		return 1 - survival.SurvivalProb(start, end)
	}
	var (
		js   = 1.0
		prob float64
	)
	_ = grid.Walk(start, end, step, func(t0, t1 time.Time) error {
		p1, p2 := survival.SurvivalProb(t0, t1), cp.SurvivalProb(t0, t1)
		j := JointStepSurvival(p1, p2, corr)
		prob += js * (p2 - j)
		js *= j
		return nil
	})
	return prob
}

// closedForm covers the cases that need no walk: a riskless counterparty and
// independent defaults.
func closedForm(start, end time.Time, survival, cp curve.SurvivalCurve, corr float64) (float64, bool) {
	sc := cp.SurvivalProb(start, end)
	switch {
	case sc >= 1:
		return survival.SurvivalProb(start, end), true
	case corr == 0:
		return survival.SurvivalProb(start, end) * sc, true
	}
	return 0, false
}
