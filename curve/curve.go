// Package curve holds the read-only term structures the pricing engine consumes:
// discount factors, survival probabilities, recovery rates and cumulative loss.
//
// Every curve is immutable once built. Bumped views (Shift*) wrap a base curve by
// reference, so a bumped pricer shares every curve it did not change.
package curve

import (
	"errors"
	"time"

	"github.com/meenmo/credlib/utils"
)

// DefaultRecoveryRate is used when a recovery rate is required but none is supplied.
const DefaultRecoveryRate = 0.4

// curveDayCount is the time axis for interpolation and rates.
const curveDayCount = utils.Act365F

var (
	// ErrNoPoints is returned when a node curve is built from an empty point set.
	ErrNoPoints = errors.New("curve: no points")
)

// Curve is a function of date anchored at AsOf.
type Curve interface {
	AsOf() time.Time
	Interpolate(t time.Time) float64
}

// DiscountCurve provides discount factors. Interpolate(t) is DF(AsOf, t).
type DiscountCurve interface {
	Curve
	DiscountFactor(d1, d2 time.Time) float64
}

// SurvivalCurve provides risk-neutral survival probabilities of one obligor.
// Interpolate(t) is S(AsOf, t); a zero DefaultDate means the obligor has not defaulted.
type SurvivalCurve interface {
	Curve
	SurvivalProb(d1, d2 time.Time) float64
	DefaultDate() time.Time
	DefaultSettlementDate() time.Time
	Recovery() RecoveryCurve
}

// RecoveryCurve returns the recovery rate in [0,1] for a default at t.
type RecoveryCurve interface {
	RecoveryRate(t time.Time) float64
}

// RecoveryOf picks the recovery curve for a name: an explicit override, the
// curve attached to the survival curve, or a flat DefaultRecoveryRate.
func RecoveryOf(sc SurvivalCurve, override RecoveryCurve) RecoveryCurve {
	if override != nil {
		return override
	}
	if sc != nil {
		if r := sc.Recovery(); r != nil {
			return r
		}
	}
	return FlatRecovery(DefaultRecoveryRate)
}

// yearFrac is the curve time of t relative to asOf, floored at zero.
func yearFrac(asOf, t time.Time) float64 {
	if !t.After(asOf) {
		return 0
	}
	return utils.YearFraction(asOf, t, curveDayCount)
}
