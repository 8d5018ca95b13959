package basket_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/credlib/basket"
	"github.com/meenmo/credlib/calendar"
	"github.com/meenmo/credlib/cds"
	"github.com/meenmo/credlib/curve"
	"github.com/meenmo/credlib/pricing"
	"github.com/meenmo/credlib/schedule"
)

const notional = 10_000_000.0

var (
	asOf     = time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)
	maturity = time.Date(2030, 3, 20, 0, 0, 0, 0, time.UTC)
)

func terms() schedule.Terms {
	return schedule.Terms{
		Effective:           asOf,
		Maturity:            maturity,
		Coupon:              0.01,
		Notional:            notional,
		Calendar:            calendar.WeekendsOnly,
		SettlementDelayDays: 3,
	}
}

func names(hazards ...float64) []curve.SurvivalCurve {
	out := make([]curve.SurvivalCurve, len(hazards))
	for i, h := range hazards {
		out[i] = curve.FlatHazardCurve(fmt.Sprintf("N%d", i+1), asOf, h).WithRecovery(curve.FlatRecovery(0.4))
	}
	return out
}

func TestIndex_OneDefaultedConstituent(t *testing.T) {
	t.Parallel()

	settle := time.Date(2025, 8, 18, 0, 0, 0, 0, time.UTC)
	dd := time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)
	disc := curve.FlatDiscountCurve(asOf, 0.03)

	ns := names(0.01, 0.015, 0.02, 0.025, 0.03)
	ns[0] = curve.FlatHazardCurve("N1", asOf, 0.01).WithDefault(dd, time.Time{}).WithRecovery(curve.FlatRecovery(0.3))

	idx := basket.NewIndexPricer(terms(), settle, disc, ns, nil)
	got, err := idx.Price()
	require.NoError(t, err)

	defaulted := cds.NewPricer(terms(), settle, disc, ns[0])
	ps, err := defaulted.Schedule()
	require.NoError(t, err)
	ds, ok := ps.DefaultSettlement()
	require.True(t, ok)
	recovery := 0.7 * notional * disc.DiscountFactor(settle, ds.Pay)

	want := pricing.Result{}
	for i, sc := range ns {
		r, err := cds.NewPricer(terms(), settle, disc, sc).Price()
		require.NoError(t, err)
		if i == 0 {
			assert.InDelta(t, recovery, r.ProtectionPv, 1e-6)
		}
		want = want.Add(r.Scale(1.0 / 5))
	}

	assert.InDelta(t, want.ProtectionPv, got.ProtectionPv, 1e-6)
	assert.InDelta(t, want.FeePv, got.FeePv, 1e-6)
	assert.InDelta(t, want.Accrued, got.Accrued, 1e-6)
	assert.InDelta(t, notional, got.Notional, 1e-6)
	assert.Greater(t, got.ProtectionPv, recovery/5)
}

func TestIndex_SingleNameIsExact(t *testing.T) {
	t.Parallel()

	disc := curve.FlatDiscountCurve(asOf, 0.03)
	ns := names(0.02)

	want, err := cds.NewPricer(terms(), asOf, disc, ns[0]).Price()
	require.NoError(t, err)

	for _, w := range [][]float64{nil, {0.3}, {0.1, 0.2}} {
		got, err := basket.NewIndexPricer(terms(), asOf, disc, ns, w).Price()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestIndex_WeightsAndValidation(t *testing.T) {
	t.Parallel()

	disc := curve.FlatDiscountCurve(asOf, 0.03)
	ns := names(0.01, 0.02, 0.03)

	flat, err := basket.NewIndexPricer(terms(), asOf, disc, ns, nil).Price()
	require.NoError(t, err)
	third := 1.0 / 3
	explicit, err := basket.NewIndexPricer(terms(), asOf, disc, ns, []float64{third, third, third}).Price()
	require.NoError(t, err)
	assert.Equal(t, flat, explicit)

	_, err = basket.NewIndexPricer(terms(), asOf, disc, ns, []float64{0.5, 0.5}).Price()
	var verrs pricing.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "Weights", verrs[0].Field)

	ns[1] = nil
	err = basket.NewIndexPricer(terms(), asOf, disc, ns, nil).Validate()
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "names[1].Survival", verrs[0].Field)
}

func TestIndex_ExpectedLossAndFunded(t *testing.T) {
	t.Parallel()

	disc := curve.FlatDiscountCurve(asOf, 0.03)
	ns := names(0.01, 0.03)
	idx := basket.NewIndexPricer(terms(), asOf, disc, ns, []float64{0.25, 0.75})

	el, err := idx.ExpectedLoss(asOf, maturity)
	require.NoError(t, err)
	var want float64
	for i, w := range []float64{0.25, 0.75} {
		v, err := idx.Pricer(i).ExpectedLoss(asOf, maturity)
		require.NoError(t, err)
		want += w * v
	}
	assert.InDelta(t, want, el, 1e-6)

	idx.SetFunded(true)
	res, err := idx.Price()
	require.NoError(t, err)
	assert.Zero(t, res.ProtectionPv)
	assert.True(t, idx.Pricer(0).Funded())
}

func TestValidateOrderRange(t *testing.T) {
	t.Parallel()

	assert.NoError(t, basket.ValidateOrderRange(1, 1, 1))
	assert.NoError(t, basket.ValidateOrderRange(2, 3, 4))

	tests := []struct {
		first, covered, names int
		field                 string
	}{
		{0, 1, 3, "First"},
		{1, 0, 3, "Covered"},
		{3, 2, 3, "Covered"},
	}
	for _, tt := range tests {
		err := basket.ValidateOrderRange(tt.first, tt.covered, tt.names)
		var verrs pricing.ValidationErrors
		require.True(t, errors.As(err, &verrs), "%+v", tt)
		assert.Equal(t, tt.field, verrs[0].Field)
	}
}

func TestWeight(t *testing.T) {
	t.Parallel()

	for _, n := range []int{1, 3, 7, 125} {
		assert.Equal(t, 1/float64(n), basket.Weight(nil, 0, n))
	}
	assert.Equal(t, 0.2, basket.Weight([]float64{0.8, 0.2}, 1, 2))
}

func orderModel(t *testing.T) basket.CurveSet {
	t.Helper()
	ns := names(0.10, 0.05, 0.02)
	dates := []time.Time{asOf.AddDate(1, 0, 0), asOf.AddDate(3, 0, 0), asOf.AddDate(5, 0, 0), asOf.AddDate(7, 0, 0)}
	m := basket.CurveSet{Survival: ns}
	for _, sc := range ns {
		l, err := basket.LossFromSurvival(sc, nil, dates)
		require.NoError(t, err)
		m.Loss = append(m.Loss, l)
	}
	return m
}

func TestNTD_SumsOrders(t *testing.T) {
	t.Parallel()

	settle := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	disc := curve.FlatDiscountCurve(asOf, 0.03)
	m := orderModel(t)

	ntd := basket.NewNTDPricer(terms(), settle, disc, m, 1, 2)
	got, err := ntd.Price()
	require.NoError(t, err)

	var want pricing.Result
	for k := 1; k <= 2; k++ {
		tm := terms()
		tm.Notional = notional / 2
		p := cds.NewPricer(tm, settle, disc, m.NthSurvivalCurve(k))
		p.SetLoss(m.NthLossCurve(k))
		r, err := p.Price()
		require.NoError(t, err)
		want = want.Add(r)
	}

	s1 := m.Survival[0].Interpolate(settle)
	require.Less(t, s1, 1.0)
	assert.InDelta(t, want.ProtectionPv, got.ProtectionPv, 1e-6)
	assert.InDelta(t, want.FeePv, got.FeePv, 1e-6)
	assert.InDelta(t, want.Accrued*s1, got.Accrued, 1e-6)
	assert.InDelta(t, got.FeePv-got.Accrued, got.FlatFeePv, 1e-9)
	assert.InDelta(t, notional, got.Notional, 1e-6)
	assert.Greater(t, got.ProtectionPv, 0.0)
	assert.Less(t, got.Accrued, 0.0)

	el, err := ntd.ExpectedLoss(asOf, maturity)
	require.NoError(t, err)
	assert.Greater(t, el, 0.0)
}

func TestNTD_Validation(t *testing.T) {
	t.Parallel()

	disc := curve.FlatDiscountCurve(asOf, 0.03)
	m := orderModel(t)

	_, err := basket.NewNTDPricer(terms(), asOf, disc, m, 3, 2).Price()
	var verrs pricing.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "Covered", verrs[0].Field)

	_, err = basket.NewNTDPricer(terms(), asOf, disc, nil, 1, 1).Price()
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "Model", verrs[0].Field)
}

func TestLossFromSurvival(t *testing.T) {
	t.Parallel()

	sc := curve.FlatHazardCurve("X", asOf, 0.02)
	d := asOf.AddDate(5, 0, 0)
	l, err := basket.LossFromSurvival(sc, curve.FlatRecovery(0.25), []time.Time{d})
	require.NoError(t, err)
	assert.InDelta(t, (1-sc.Interpolate(d))*0.75, l.Interpolate(d), 1e-12)
	assert.Zero(t, l.Interpolate(asOf))
}
