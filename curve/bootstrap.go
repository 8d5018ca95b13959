package curve

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/meenmo/credlib/calendar"
	"github.com/meenmo/credlib/utils"
)

// SwapQuotes describes the par fixed-vs-overnight swaps a discount curve is
// bootstrapped from. Rates are decimals keyed by tenor ("1Y", "18M", ...).
type SwapQuotes struct {
	Rates           map[string]float64
	FrequencyMonths int                 // fixed leg, 12 if zero
	DayCount        string              // fixed leg, ACT/360 if empty
	Calendar        calendar.CalendarID // WeekendsOnly if empty
}

const (
	bootstrapTolerance = 1e-12
	bootstrapMaxIter   = 50
)

// ErrBootstrap is returned when a pillar solve does not converge.
var ErrBootstrap = errors.New("curve: bootstrap did not converge")

type swapCoupon struct {
	pay     time.Time
	accrual float64
}

// BootstrapDiscountCurve solves, pillar by pillar, the discount factors at
// which every quoted swap prices at par:
//
//	rate * sum_i accrual_i * DF(pay_i) + DF(maturity) = 1.
//
// Coupons between two pillars are valued log-linearly against the unknown
// pillar, so each pillar is a 1-D Newton solve.
func BootstrapDiscountCurve(asOf time.Time, q SwapQuotes) (*Discount, error) {
	if len(q.Rates) == 0 {
		return nil, fmt.Errorf("BootstrapDiscountCurve: %w", ErrNoPoints)
	}
	if q.FrequencyMonths == 0 {
		q.FrequencyMonths = 12
	}
	if q.FrequencyMonths < 0 {
		return nil, fmt.Errorf("BootstrapDiscountCurve: negative frequency %d", q.FrequencyMonths)
	}
	if q.DayCount == "" {
		q.DayCount = utils.Act360
	}
	if q.Calendar == "" {
		q.Calendar = calendar.WeekendsOnly
	}

	type quote struct {
		maturity time.Time
		rate     float64
	}
	quotes := make([]quote, 0, len(q.Rates))
	for tenor, r := range q.Rates {
		d, err := TenorDate(asOf, tenor)
		if err != nil {
			return nil, fmt.Errorf("BootstrapDiscountCurve: %w", err)
		}
		quotes = append(quotes, quote{maturity: d, rate: r})
	}
	sort.Slice(quotes, func(i, j int) bool { return quotes[i].maturity.Before(quotes[j].maturity) })

	solved := map[time.Time]float64{}
	prevPillar, dfPrev := asOf, 1.0
	for _, qt := range quotes {
		pillar := calendar.Adjust(q.Calendar, qt.maturity)
		if !pillar.After(prevPillar) {
			return nil, fmt.Errorf("BootstrapDiscountCurve: duplicate pillar %s", pillar.Format(utils.DateLayout))
		}
		var known *nodes
		if len(solved) > 0 {
			var err error
			if known, err = newNodes(asOf, solved, 1.0, LogLinear); err != nil {
				return nil, fmt.Errorf("BootstrapDiscountCurve: %w", err)
			}
		}
		coupons := swapCoupons(asOf, qt.maturity, q)

		df, err := solvePillar(asOf, prevPillar, dfPrev, pillar, qt.rate, coupons, known)
		if err != nil {
			return nil, fmt.Errorf("BootstrapDiscountCurve: %s: %w", pillar.Format(utils.DateLayout), err)
		}
		solved[pillar] = df
		prevPillar, dfPrev = pillar, df
	}
	return NewDiscountCurve(asOf, solved)
}

// swapCoupons rolls the fixed leg backward from maturity; a short first
// period is kept as a front stub.
func swapCoupons(asOf, maturity time.Time, q SwapQuotes) []swapCoupon {
	dates := []time.Time{}
	for k, current := 1, maturity; current.After(asOf); k++ {
		dates = append([]time.Time{current}, dates...)
		current = utils.AddMonth(maturity, -k*q.FrequencyMonths)
	}
	dates = append([]time.Time{asOf}, dates...)

	coupons := make([]swapCoupon, 0, len(dates)-1)
	for i := 0; i+1 < len(dates); i++ {
		start := calendar.Adjust(q.Calendar, dates[i])
		end := calendar.Adjust(q.Calendar, dates[i+1])
		coupons = append(coupons, swapCoupon{pay: end, accrual: utils.YearFraction(start, end, q.DayCount)})
	}
	return coupons
}

func solvePillar(asOf, prevPillar time.Time, dfPrev float64, pillar time.Time, rate float64, coupons []swapCoupon, known *nodes) (float64, error) {
	tPrev := yearFrac(asOf, prevPillar)
	tEnd := yearFrac(asOf, pillar)

	x := dfPrev
	for iter := 0; iter < bootstrapMaxIter; iter++ {
		pv, dpv := 0.0, 0.0
		for _, c := range coupons {
			if !c.pay.After(prevPillar) {
				d := 1.0
				if known != nil {
					d = known.value(c.pay)
				}
				pv += rate * c.accrual * d
				continue
			}
			// log-linear between (prevPillar, dfPrev) and (pillar, x)
			ratio := (yearFrac(asOf, c.pay) - tPrev) / (tEnd - tPrev)
			d := math.Pow(dfPrev, 1-ratio) * math.Pow(x, ratio)
			pv += rate * c.accrual * d
			dpv += rate * c.accrual * ratio * d / x
		}

		f := pv + x - 1
		if math.Abs(f) < bootstrapTolerance {
			return x, nil
		}
		fPrime := dpv + 1
		if math.Abs(fPrime) < 1e-15 || math.IsNaN(f) {
			break
		}
		x -= f / fPrime
		if x <= 0 {
			x = 1e-9
		}
	}
	return 0, ErrBootstrap
}
