package tradefile_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/credlib/calendar"
	"github.com/meenmo/credlib/cmd/creditpv/internal/tradefile"
)

const sample = "../../testdata/trades.yaml"

func TestLoadSample(t *testing.T) {
	t.Parallel()

	f, err := tradefile.Load(sample)
	require.NoError(t, err)
	assert.Len(t, f.Trades, 5)
	assert.Len(t, f.Curves, 9)
	assert.Len(t, f.Select(tradefile.TypeCDS, tradefile.TypeCLN), 3)
	assert.Len(t, f.Select(tradefile.TypeIndex), 1)
	assert.Len(t, f.Select(), 5)
}

func TestParse_Rejects(t *testing.T) {
	t.Parallel()

	base := `
asof: 2025-03-20
discount: {flat_rate: 0.03}
curves:
  ACME: {hazard: 0.02}
`
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown field", base + "colour: blue\n", "colour"},
		{"unknown curve", base + "trades:\n  - {id: a, type: cds, reference: NOPE}\n", `unknown curve "NOPE"`},
		{"unknown type", base + "trades:\n  - {id: a, type: swap, reference: ACME}\n", `unknown type "swap"`},
		{"duplicate id", base + "trades:\n  - {id: a, type: cds, reference: ACME}\n  - {id: a, type: cds, reference: ACME}\n", "duplicate id"},
		{"missing discount", "asof: 2025-03-20\n", "flat_rate, dfs or swap_rates"},
		{"bad holiday", base + "holidays:\n  USD: [2025/12/25]\n", "holidays USD"},
		{"curve without hazard", "asof: 2025-03-20\ndiscount: {flat_rate: 0.03}\ncurves:\n  X: {recovery: 0.4}\n", "hazard or hazards"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tradefile.Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParse_NormalisesType(t *testing.T) {
	t.Parallel()

	f, err := tradefile.Parse([]byte(`
asof: 2025-03-20
discount: {dfs: {1Y: 0.97, 5Y: 0.86}}
curves:
  ACME: {hazard: 0.02}
trades:
  - {id: a, type: " CDS ", reference: ACME, maturity: 2030-03-20, notional: 1}
`))
	require.NoError(t, err)
	assert.Equal(t, tradefile.TypeCDS, f.Trades[0].Type)
}

func TestMarket(t *testing.T) {
	t.Parallel()

	f, err := tradefile.Load(sample)
	require.NoError(t, err)
	m, err := tradefile.NewMarket(f)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC), m.AsOf)
	assert.Equal(t, time.Date(2025, 8, 18, 0, 0, 0, 0, time.UTC), m.Settle)
	assert.Equal(t, time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC), m.Curves["OMEGA"].DefaultDate())
	assert.Equal(t, 0.3, m.Curves["OMEGA"].Recovery().RecoveryRate(m.Settle))
	assert.Nil(t, m.Curves["GAMMA"].Recovery())
	assert.Less(t, m.Curves["BETA"].Interpolate(m.AsOf.AddDate(5, 0, 0)), 1.0)

	byID := map[string]tradefile.Trade{}
	for _, tr := range f.Trades {
		byID[tr.ID] = tr
	}

	terms, err := m.Terms(byID["cln-beta-3y"])
	require.NoError(t, err)
	assert.True(t, terms.Funded)
	assert.Equal(t, 0.045, terms.Coupon)

	p, err := m.SingleName(byID["cds-acme-5y-dealer"])
	require.NoError(t, err)
	assert.NotNil(t, p.Counterparty())
	assert.Equal(t, 0.3, p.Correlation())
	r, err := p.Price()
	require.NoError(t, err)
	assert.Greater(t, r.ProtectionPv, 0.0)
	assert.Less(t, r.FeePv, 0.0)

	idx, err := m.Index(byID["index-5"])
	require.NoError(t, err)
	ir, err := idx.Price()
	require.NoError(t, err)
	assert.InDelta(t, 25_000_000, ir.Notional, 1e-6)

	ntd, err := m.NTD(byID["ftd-3"])
	require.NoError(t, err)
	nr, err := ntd.Price()
	require.NoError(t, err)
	assert.Greater(t, nr.ProtectionPv, 0.0)
}

func TestMarket_BadDates(t *testing.T) {
	t.Parallel()

	f, err := tradefile.Parse([]byte(`
asof: 2025-03-20
discount: {flat_rate: 0.03}
curves:
  ACME: {hazard: 0.02}
trades:
  - {id: a, type: cds, reference: ACME, maturity: "2030/03/20", notional: 1}
`))
	require.NoError(t, err)
	m, err := tradefile.NewMarket(f)
	require.NoError(t, err)
	_, err = m.SingleName(f.Trades[0])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maturity")
}

func TestMarket_SwapRateDiscount(t *testing.T) {
	t.Parallel()

	f, err := tradefile.Parse([]byte(`
asof: 2025-03-20
discount:
  swap_rates: {1Y: 0.030, 2Y: 0.031, 5Y: 0.033}
  swap_day_count: ACT/360
curves:
  ACME: {hazard: 0.02}
`))
	require.NoError(t, err)
	m, err := tradefile.NewMarket(f)
	require.NoError(t, err)
	oneY := time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC).AddDate(1, 0, 0)
	assert.InDelta(t, 1/(1+0.03*365.0/360.0), m.Discount.Interpolate(oneY), 1e-12)

	_, err = tradefile.Parse([]byte(`
asof: 2025-03-20
discount: {flat_rate: 0.03, swap_rates: {1Y: 0.03}}
`))
	assert.ErrorContains(t, err, "exclusive")
}

func TestMarket_HolidaysAndIMMRoll(t *testing.T) {
	t.Parallel()

	f, err := tradefile.Parse([]byte(`
asof: 2025-03-20
discount: {flat_rate: 0.03}
holidays:
  mkt-close: [2025-06-20, 2025-12-24]
curves:
  ACME: {hazard: 0.02, recovery: 0.4}
trades:
  - id: imm
    type: cds
    reference: ACME
    effective: 2025-04-02
    maturity: 2030-06-15
    coupon: 0.01
    notional: 1000000
    calendar: mkt-close
    imm: true
`))
	require.NoError(t, err)
	m, err := tradefile.NewMarket(f)
	require.NoError(t, err)

	cal := calendar.CalendarID("MKT-CLOSE")
	assert.False(t, calendar.IsBusinessDay(cal, time.Date(2025, 12, 24, 0, 0, 0, 0, time.UTC)))
	assert.True(t, calendar.IsBusinessDay(cal, time.Date(2025, 12, 23, 0, 0, 0, 0, time.UTC)))

	p, err := m.SingleName(f.Trades[0])
	require.NoError(t, err)
	fees, err := p.FeePayments()
	require.NoError(t, err)
	require.NotEmpty(t, fees)
	assert.Equal(t, time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC), fees[0].Start)
	// 20 Jun 2025 is a registered holiday.
	assert.Equal(t, time.Date(2025, 6, 23, 0, 0, 0, 0, time.UTC), fees[0].Pay)
	assert.Equal(t, time.Date(2030, 6, 20, 0, 0, 0, 0, time.UTC), fees[len(fees)-1].End)
	assert.Len(t, fees, 21)
}
