package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/meenmo/credlib/calendar"
	"github.com/meenmo/credlib/curve"
	"github.com/meenmo/credlib/utils"
)

// Terms are the contractual conventions of a single-name CDS or credit-linked note.
type Terms struct {
	Effective time.Time
	Maturity  time.Time
	Coupon    float64 // decimal running coupon
	Notional  float64

	FrequencyMonths int    // 3 if zero
	DayCount        string // ACT/360 if empty
	Calendar        calendar.CalendarID

	// Funded notes redeem Notional at maturity.
	Funded bool
	// SettlementDelayDays is the business-day lag from default to cash settlement,
	// used when the survival curve carries no settlement date.
	SettlementDelayDays int
	// Recovery overrides the recovery attached to the survival curve.
	Recovery curve.RecoveryCurve
	// IMM rolls on the standard CDS dates (20 Mar/Jun/Sep/Dec): accrual starts
	// on the roll date on or before Effective, Maturity moves to the roll date on
	// or after it and coupons are quarterly.
	IMM bool
}

// Dates returns the accrual start and final accrual date of the terms.
func (t Terms) Dates() (start, maturity time.Time) {
	if !t.IMM {
		return t.Effective, t.Maturity
	}
	start, maturity = calendar.PreviousIMMDate(t.Effective), t.Maturity
	if !calendar.PreviousIMMDate(maturity).Equal(maturity) {
		maturity = calendar.NextIMMDate(maturity)
	}
	return start, maturity
}

// stubDays is the shortest front period kept as its own stub; anything shorter
// is merged into the first regular period.
const stubDays = 7

func (t Terms) withDefaults() Terms {
	if t.IMM {
		t.Effective, t.Maturity = t.Dates()
		t.FrequencyMonths = 3
	}
	if t.FrequencyMonths == 0 {
		t.FrequencyMonths = 3
	}
	if t.DayCount == "" {
		t.DayCount = utils.Act360
	}
	if t.Calendar == "" {
		t.Calendar = calendar.WeekendsOnly
	}
	return t
}

// Validate checks the terms for structural errors.
func (t Terms) Validate() error {
	var errs []error
	if t.Effective.IsZero() || t.Maturity.IsZero() {
		errs = append(errs, errors.New("effective and maturity dates are required"))
	} else if !t.Maturity.After(t.Effective) {
		errs = append(errs, fmt.Errorf("maturity %s not after effective %s",
			t.Maturity.Format(utils.DateLayout), t.Effective.Format(utils.DateLayout)))
	}
	if t.FrequencyMonths < 0 {
		errs = append(errs, fmt.Errorf("negative frequency %d", t.FrequencyMonths))
	}
	if t.SettlementDelayDays < 0 {
		errs = append(errs, fmt.Errorf("negative settlement delay %d", t.SettlementDelayDays))
	}
	return errors.Join(errs...)
}

type period struct {
	start, end, pay time.Time
}

// periods rolls coupon dates backward from maturity so regular dates line up with
// maturity and any irregular period is a front stub.
func (t Terms) periods() []period {
	var unadjusted []time.Time
	for current, k := t.Maturity, 1; current.After(t.Effective); k++ {
		unadjusted = append([]time.Time{current}, unadjusted...)
		current = utils.AddMonth(t.Maturity, -k*t.FrequencyMonths)
	}
	if len(unadjusted) > 1 {
		if d := utils.Days(t.Effective, unadjusted[0]); d > 0 && d <= stubDays {
			unadjusted = unadjusted[1:]
		}
	}
	unadjusted = append([]time.Time{t.Effective}, unadjusted...)

	out := make([]period, 0, len(unadjusted)-1)
	for i := 1; i < len(unadjusted); i++ {
		start := calendar.AdjustFollowing(t.Calendar, unadjusted[i-1])
		if i == 1 {
			start = unadjusted[0]
		}
		end := calendar.AdjustFollowing(t.Calendar, unadjusted[i])
		pay := end
		if i == len(unadjusted)-1 {
			// The last period accrues to maturity itself.
			end = t.Maturity
		}
		out = append(out, period{start: start, end: end, pay: pay})
	}
	return out
}

// Generate builds the payment schedule of terms as seen on from, for a trade
// valued on settle. Periods paying before from are dropped. When the survival
// curve reports a default on or before settle the coupon stream stops at the
// defaulted period and a DefaultSettlement carries the crystallized amounts.
func Generate(terms Terms, from, settle time.Time, survival curve.SurvivalCurve) (*PaymentSchedule, error) {
	if err := terms.Validate(); err != nil {
		return nil, fmt.Errorf("Generate: %w", err)
	}
	terms = terms.withDefaults()

	var defaultDate time.Time
	if survival != nil {
		if dd := survival.DefaultDate(); !dd.IsZero() && !dd.After(settle) {
			defaultDate = dd
		}
	}

	var payments []Payment
	for _, p := range terms.periods() {
		if !defaultDate.IsZero() && !p.end.Before(defaultDate) {
			ds := terms.defaultSettlement(p, defaultDate, survival)
			if !ds.Pay.Before(from) {
				payments = append(payments, ds)
			}
			return NewPaymentSchedule(payments...)
		}
		if p.pay.Before(from) {
			continue
		}
		payments = append(payments,
			InterestPayment{Start: p.start, End: p.end, Pay: p.pay, Coupon: terms.Coupon, Notional: terms.Notional, DayCount: terms.DayCount},
			ProtectionPayment{Start: p.start, End: p.end, Pay: p.pay, Notional: terms.Notional},
		)
		if terms.Funded && p.end.Equal(terms.Maturity) {
			payments = append(payments, PrincipalExchange{Pay: p.pay, Notional: terms.Notional})
		}
	}
	return NewPaymentSchedule(payments...)
}

func (t Terms) defaultSettlement(p period, defaultDate time.Time, survival curve.SurvivalCurve) DefaultSettlement {
	pay := survival.DefaultSettlementDate()
	if pay.IsZero() {
		pay = calendar.AddBusinessDays(t.Calendar, defaultDate, t.SettlementDelayDays)
	}
	r := curve.RecoveryOf(survival, t.Recovery).RecoveryRate(defaultDate)
	coupon := InterestPayment{Start: p.start, End: p.end, Coupon: t.Coupon, Notional: t.Notional, DayCount: t.DayCount}
	return DefaultSettlement{
		PeriodStart:    p.start,
		Default:        defaultDate,
		Pay:            pay,
		AccrualAmount:  coupon.AccruedAt(defaultDate),
		RecoveryAmount: t.Notional * r,
		LossAmount:     t.Notional * (1 - r),
	}
}
