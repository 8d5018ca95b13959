package tradefile

import (
	"fmt"
	"strings"
	"time"

	"github.com/meenmo/credlib/basket"
	"github.com/meenmo/credlib/calendar"
	"github.com/meenmo/credlib/cds"
	"github.com/meenmo/credlib/curve"
	"github.com/meenmo/credlib/logging"
	"github.com/meenmo/credlib/pricing"
	"github.com/meenmo/credlib/schedule"
	"github.com/meenmo/credlib/utils"
)

// Market holds the curves of a trade file and the settings every pricer
// built from it shares.
type Market struct {
	AsOf     time.Time
	Settle   time.Time
	Discount curve.DiscountCurve
	Curves   map[string]*curve.Survival

	Policy pricing.Policy
	Solver pricing.Solver
	Log    *logging.Logger
}

// NewMarket builds the discount and survival curves of f. Holidays of f are
// registered with the calendar package before any curve is built.
func NewMarket(f *File) (*Market, error) {
	if err := registerHolidays(f.Holidays); err != nil {
		return nil, err
	}
	asOf, err := utils.ParseDate(f.AsOf)
	if err != nil {
		return nil, fmt.Errorf("asof: %w", err)
	}
	settle := asOf
	if f.Settle != "" {
		if settle, err = utils.ParseDate(f.Settle); err != nil {
			return nil, fmt.Errorf("settle: %w", err)
		}
	}

	m := &Market{
		AsOf:   asOf,
		Settle: settle,
		Curves: make(map[string]*curve.Survival, len(f.Curves)),
		Policy: pricing.DefaultPolicy(),
		Solver: pricing.DefaultSolver(),
		Log:    logging.Nop(),
	}
	if m.Discount, err = discountCurve(asOf, f.Discount); err != nil {
		return nil, err
	}
	for name, spec := range f.Curves {
		sc, err := survivalCurve(name, asOf, spec)
		if err != nil {
			return nil, err
		}
		m.Curves[name] = sc
	}
	return m, nil
}

func registerHolidays(cals map[string][]string) error {
	for cal, days := range cals {
		dates := make([]time.Time, 0, len(days))
		for _, d := range days {
			t, err := utils.ParseDate(d)
			if err != nil {
				return fmt.Errorf("holidays %s: %w", cal, err)
			}
			dates = append(dates, t)
		}
		calendar.RegisterHolidays(calendar.CalendarID(strings.ToUpper(cal)), dates...)
	}
	return nil
}

func discountCurve(asOf time.Time, spec DiscountSpec) (curve.DiscountCurve, error) {
	if spec.FlatRate != nil {
		return curve.FlatDiscountCurve(asOf, *spec.FlatRate), nil
	}
	if len(spec.SwapRates) > 0 {
		dc, err := curve.BootstrapDiscountCurve(asOf, curve.SwapQuotes{
			Rates:           spec.SwapRates,
			FrequencyMonths: spec.SwapFrequencyMonths,
			DayCount:        spec.SwapDayCount,
			Calendar:        calendar.CalendarID(strings.ToUpper(spec.Calendar)),
		})
		if err != nil {
			return nil, fmt.Errorf("discount: %w", err)
		}
		return dc, nil
	}
	dfs := make(map[time.Time]float64, len(spec.Factors))
	for tenor, df := range spec.Factors {
		d, err := curve.TenorDate(asOf, tenor)
		if err != nil {
			return nil, fmt.Errorf("discount: %w", err)
		}
		dfs[d] = df
	}
	dc, err := curve.NewDiscountCurve(asOf, dfs)
	if err != nil {
		return nil, fmt.Errorf("discount: %w", err)
	}
	return dc, nil
}

func survivalCurve(name string, asOf time.Time, spec CurveSpec) (*curve.Survival, error) {
	var sc *curve.Survival
	if spec.Hazard != nil {
		sc = curve.FlatHazardCurve(name, asOf, *spec.Hazard)
	} else {
		var err error
		if sc, err = curve.HazardRateCurve(name, asOf, spec.Hazards); err != nil {
			return nil, err
		}
	}
	if spec.Recovery != nil {
		sc = sc.WithRecovery(curve.FlatRecovery(*spec.Recovery))
	}
	if spec.DefaultDate != "" {
		dd, err := utils.ParseDate(spec.DefaultDate)
		if err != nil {
			return nil, fmt.Errorf("curve %s: default_date: %w", name, err)
		}
		var sd time.Time
		if spec.SettleDate != "" {
			if sd, err = utils.ParseDate(spec.SettleDate); err != nil {
				return nil, fmt.Errorf("curve %s: settle_date: %w", name, err)
			}
		}
		sc = sc.WithDefault(dd, sd)
	}
	return sc, nil
}

// Terms converts the contractual fields of t. Effective defaults to the
// as-of date; cln trades are funded.
func (m *Market) Terms(t Trade) (schedule.Terms, error) {
	effective := m.AsOf
	if t.Effective != "" {
		d, err := utils.ParseDate(t.Effective)
		if err != nil {
			return schedule.Terms{}, fmt.Errorf("trade %s: effective: %w", t.ID, err)
		}
		effective = d
	}
	maturity, err := utils.ParseDate(t.Maturity)
	if err != nil {
		return schedule.Terms{}, fmt.Errorf("trade %s: maturity: %w", t.ID, err)
	}
	return schedule.Terms{
		Effective:           effective,
		Maturity:            maturity,
		Coupon:              t.Coupon,
		Notional:            t.Notional,
		FrequencyMonths:     t.FrequencyMonths,
		DayCount:            t.DayCount,
		Calendar:            calendar.CalendarID(strings.ToUpper(t.Calendar)),
		Funded:              t.Type == TypeCLN,
		SettlementDelayDays: t.SettlementDelayDays,
		IMM:                 t.IMM,
	}, nil
}

// SingleName builds the pricer of a cds or cln trade.
func (m *Market) SingleName(t Trade) (*cds.Pricer, error) {
	terms, err := m.Terms(t)
	if err != nil {
		return nil, err
	}
	p := cds.NewPricer(terms, m.Settle, m.Discount, m.survival(t.Reference))
	p.SetPolicy(m.Policy)
	p.SetSolver(m.Solver)
	p.SetLogger(m.Log.WithField("trade", t.ID))
	if t.Counterparty != "" {
		p.SetCounterparty(m.survival(t.Counterparty), t.Correlation)
	}
	return p, nil
}

// Index builds the pricer of an index trade.
func (m *Market) Index(t Trade) (*basket.IndexPricer, error) {
	terms, err := m.Terms(t)
	if err != nil {
		return nil, err
	}
	names := make([]curve.SurvivalCurve, len(t.Names))
	for i, n := range t.Names {
		names[i] = m.survival(n)
	}
	p := basket.NewIndexPricer(terms, m.Settle, m.Discount, names, t.Weights)
	p.SetPolicy(m.Policy)
	p.SetLogger(m.Log.WithField("trade", t.ID))
	if t.Counterparty != "" {
		p.SetCounterparty(m.survival(t.Counterparty), t.Correlation)
	}
	return p, nil
}

// NTD builds the pricer of an nth-to-default trade. Each order's loss curve
// is sampled yearly to maturity from its survival curve and recovery.
// First and Covered default to 1.
func (m *Market) NTD(t Trade) (*basket.NTDPricer, error) {
	terms, err := m.Terms(t)
	if err != nil {
		return nil, err
	}
	_, maturity := terms.Dates()
	var dates []time.Time
	for d := m.AsOf.AddDate(1, 0, 0); d.Before(maturity); d = d.AddDate(1, 0, 0) {
		dates = append(dates, d)
	}
	dates = append(dates, maturity)

	model := basket.CurveSet{}
	for _, n := range t.Orders {
		sc := m.survival(n)
		loss, err := basket.LossFromSurvival(sc, nil, dates)
		if err != nil {
			return nil, fmt.Errorf("trade %s: order %s: %w", t.ID, n, err)
		}
		model.Survival = append(model.Survival, sc)
		model.Loss = append(model.Loss, loss)
	}

	first, covered := t.First, t.Covered
	if first == 0 {
		first = 1
	}
	if covered == 0 {
		covered = 1
	}
	p := basket.NewNTDPricer(terms, m.Settle, m.Discount, model, first, covered)
	p.SetPolicy(m.Policy)
	return p, nil
}

// survival returns the named curve, or a nil interface when it is unknown so
// that pricer validation reports it.
func (m *Market) survival(name string) curve.SurvivalCurve {
	if sc, ok := m.Curves[name]; ok {
		return sc
	}
	return nil
}
