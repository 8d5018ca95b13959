package scenario_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/credlib/calendar"
	"github.com/meenmo/credlib/cds"
	"github.com/meenmo/credlib/curve"
	"github.com/meenmo/credlib/scenario"
	"github.com/meenmo/credlib/schedule"
)

var asOf = time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)

func basePricer() *cds.Pricer {
	terms := schedule.Terms{
		Effective: asOf,
		Maturity:  time.Date(2030, 3, 20, 0, 0, 0, 0, time.UTC),
		Coupon:    0.01,
		Notional:  10_000_000,
		Calendar:  calendar.WeekendsOnly,
	}
	sc := curve.FlatHazardCurve("ACME", asOf, 0.02).WithRecovery(curve.FlatRecovery(0.4))
	p := cds.NewPricer(terms, asOf, curve.FlatDiscountCurve(asOf, 0.03), sc)
	p.SetCounterparty(curve.FlatHazardCurve("DEALER", asOf, 0.01), 0.3)
	return p
}

func bumps() []scenario.Bump {
	out := scenario.Ladder(scenario.HazardBump, -0.001, 0.001, 0.01)
	out = append(out, scenario.Ladder(scenario.DiscountBump, -0.0025, 0.0025)...)
	out = append(out, scenario.RecoveryBump(-0.1), scenario.RecoveryBump(0.1), scenario.CorrelationBump(0.2))
	return out
}

func TestRun_MatchesSequentialPricing(t *testing.T) {
	t.Parallel()

	base := basePricer()
	before, err := base.Price()
	require.NoError(t, err)

	got, err := scenario.Run(context.Background(), base, bumps(), 3)
	require.NoError(t, err)
	require.Len(t, got, len(bumps()))

	for i, b := range bumps() {
		c := base.Clone()
		b.Apply(c)
		want, err := c.Price()
		require.NoError(t, err)
		assert.Equal(t, b.Name, got[i].Name)
		assert.Equal(t, want, got[i].Result)
		assert.Equal(t, want.Pv()-before.Pv(), got[i].Delta)
	}

	after, err := base.Price()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRun_Directions(t *testing.T) {
	t.Parallel()

	got, err := scenario.Run(context.Background(), basePricer(), []scenario.Bump{
		scenario.HazardBump(0.001),
		scenario.RecoveryBump(0.1),
	}, 0)
	require.NoError(t, err)
	assert.Greater(t, got[0].Delta, 0.0)
	assert.Less(t, got[1].Delta, 0.0)
	assert.Equal(t, "hazard+10bp", got[0].Name)
}

func TestRun_CorrelationBumpWithoutCounterparty(t *testing.T) {
	t.Parallel()

	base := basePricer()
	base.SetCounterparty(nil, 0)
	got, err := scenario.Run(context.Background(), base, []scenario.Bump{scenario.CorrelationBump(0.5)}, 1)
	require.NoError(t, err)
	assert.Zero(t, got[0].Delta)
}

func TestRun_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := scenario.Run(ctx, basePricer(), bumps(), 2)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRun_InvalidBase(t *testing.T) {
	t.Parallel()

	base := basePricer()
	base.SetDiscount(nil)
	_, err := scenario.Run(context.Background(), base, bumps(), 2)
	assert.Error(t, err)
}
