package curve_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/credlib/curve"
)

var asOf = time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

func TestDiscountCurve_LogLinear(t *testing.T) {
	t.Parallel()

	oneY := asOf.AddDate(0, 0, 365)
	twoY := asOf.AddDate(0, 0, 730)
	crv, err := curve.NewDiscountCurve(asOf, map[time.Time]float64{
		oneY: math.Exp(-0.03),
		twoY: math.Exp(-0.07),
	})
	require.NoError(t, err)

	assert.InDelta(t, 1.0, crv.Interpolate(asOf), 1e-15)
	assert.InDelta(t, math.Exp(-0.03), crv.Interpolate(oneY), 1e-15)
	// Flat forward of 4% between 1Y and 2Y.
	mid := asOf.AddDate(0, 0, 365+182)
	assert.InDelta(t, math.Exp(-0.03-0.04*182.0/365.0), crv.Interpolate(mid), 1e-14)
	// Extrapolates the last forward.
	threeY := asOf.AddDate(0, 0, 1095)
	assert.InDelta(t, math.Exp(-0.11), crv.Interpolate(threeY), 1e-14)
	assert.InDelta(t, math.Exp(-0.04), crv.DiscountFactor(oneY, twoY), 1e-14)
	assert.InDelta(t, 3.5, crv.ZeroRateAt(twoY), 1e-10)

	_, err = curve.NewDiscountCurve(asOf, map[time.Time]float64{oneY: -1})
	assert.Error(t, err)
	_, err = curve.NewDiscountCurve(asOf, nil)
	assert.ErrorIs(t, err, curve.ErrNoPoints)
}

func TestSurvivalCurve(t *testing.T) {
	t.Parallel()

	t.Run("flat hazard is exact", func(t *testing.T) {
		sc := curve.FlatHazardCurve("ACME", asOf, 0.02)
		d := asOf.AddDate(0, 0, 730)
		assert.InDelta(t, math.Exp(-0.04), sc.Interpolate(d), 1e-15)
		assert.Equal(t, sc.Interpolate(d)/sc.Interpolate(asOf.AddDate(0, 0, 365)), sc.SurvivalProb(asOf.AddDate(0, 0, 365), d))
	})

	t.Run("piecewise hazard from tenors", func(t *testing.T) {
		sc, err := curve.HazardRateCurve("ACME", asOf, map[string]float64{"1Y": 0.01, "3Y": 0.03})
		require.NoError(t, err)
		oneY, _ := curve.TenorDate(asOf, "1Y")
		twoY, _ := curve.TenorDate(asOf, "2Y")
		s1 := sc.Interpolate(oneY)
		assert.InDelta(t, math.Exp(-0.01*365.0/365.0), s1, 1e-12)
		assert.InDelta(t, s1*math.Exp(-0.03*float64(twoY.Sub(oneY).Hours()/24)/365.0), sc.Interpolate(twoY), 1e-12)
	})

	t.Run("rejects increasing probabilities", func(t *testing.T) {
		_, err := curve.NewSurvivalCurve("BAD", asOf, map[time.Time]float64{
			asOf.AddDate(1, 0, 0): 0.9,
			asOf.AddDate(2, 0, 0): 0.95,
		})
		assert.Error(t, err)
	})

	t.Run("defaulted curve", func(t *testing.T) {
		dd := asOf.AddDate(0, 2, 0)
		sc := curve.FlatHazardCurve("ACME", asOf, 0.02).WithDefault(dd, dd.AddDate(0, 0, 30))
		assert.Equal(t, dd, sc.DefaultDate())
		assert.Equal(t, 0.0, sc.Interpolate(dd))
		assert.Equal(t, 0.0, sc.SurvivalProb(dd, dd.AddDate(0, 1, 0)))
		assert.Greater(t, sc.Interpolate(dd.AddDate(0, 0, -1)), 0.0)
	})
}

func TestShiftedViews(t *testing.T) {
	t.Parallel()

	d := asOf.AddDate(0, 0, 365)
	disc := curve.ShiftDiscount(curve.FlatDiscountCurve(asOf, 0.03), 0.01)
	assert.InDelta(t, math.Exp(-0.04), disc.Interpolate(d), 1e-15)
	assert.InDelta(t, math.Exp(-0.04), disc.DiscountFactor(asOf, d), 1e-15)

	base := curve.FlatHazardCurve("ACME", asOf, 0.02).WithRecovery(curve.FlatRecovery(0.25))
	sc := curve.ShiftSurvival(base, 0.01)
	assert.InDelta(t, math.Exp(-0.03), sc.Interpolate(d), 1e-15)
	assert.InDelta(t, 0.25, sc.Recovery().RecoveryRate(d), 0)
}

func TestRecovery(t *testing.T) {
	t.Parallel()

	r, err := curve.NewRecoveryCurve(map[time.Time]float64{
		asOf:                  0.4,
		asOf.AddDate(2, 0, 0): 0.3,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.4, r.RecoveryRate(asOf.AddDate(-1, 0, 0)))
	assert.Equal(t, 0.4, r.RecoveryRate(asOf.AddDate(1, 0, 0)))
	assert.Equal(t, 0.3, r.RecoveryRate(asOf.AddDate(3, 0, 0)))

	assert.Equal(t, 1.0, curve.ShiftRecovery(curve.FlatRecovery(0.95), 0.1).RecoveryRate(asOf))

	assert.Equal(t, curve.DefaultRecoveryRate, curve.RecoveryOf(curve.FlatHazardCurve("X", asOf, 0.01), nil).RecoveryRate(asOf))

	_, err = curve.NewRecoveryCurve(map[time.Time]float64{asOf: 1.2})
	assert.Error(t, err)
}

func TestLossCurve(t *testing.T) {
	t.Parallel()

	l, err := curve.NewLossCurve(asOf, map[time.Time]float64{
		asOf.AddDate(0, 0, 365): 0.1,
		asOf.AddDate(0, 0, 730): 0.3,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, l.Interpolate(asOf))
	assert.InDelta(t, 0.05, l.Interpolate(asOf.AddDate(0, 0, 182)), 1e-3)
	assert.InDelta(t, 0.3, l.Interpolate(asOf.AddDate(5, 0, 0)), 1e-15)

	_, err = curve.NewLossCurve(asOf, map[time.Time]float64{
		asOf.AddDate(1, 0, 0): 0.3,
		asOf.AddDate(2, 0, 0): 0.1,
	})
	assert.Error(t, err)
}
