// Package pricing is the contingent cash-flow engine shared by every credit
// product: it integrates a payment schedule against discount, survival,
// recovery and optional counterparty curves.
//
// The engine is a set of pure functions of Inputs. Product behaviour such as
// funded notes is carried by Policy, not by separate code paths per product.
package pricing

import (
	"math"
	"time"

	"github.com/meenmo/credlib/counterparty"
	"github.com/meenmo/credlib/curve"
	"github.com/meenmo/credlib/grid"
	"github.com/meenmo/credlib/schedule"
	"github.com/meenmo/credlib/utils"
)

// Leg identifies which side of the trade a flow belongs to.
type Leg int

const (
	LegFee Leg = iota
	LegProtection
)

func (l Leg) String() string {
	if l == LegProtection {
		return "protection"
	}
	return "fee"
}

// Flow is an expected, undiscounted cash flow from the holder's side.
// Its present value is Amount * DF(settle, Date).
type Flow struct {
	Date   time.Time
	Amount float64
	Leg    Leg
	Kind   schedule.Kind
}

// Result holds the leg values of one evaluation. FeePv includes the accrued
// premium; FlatFeePv excludes it.
type Result struct {
	ProtectionPv float64
	FeePv        float64
	FlatFeePv    float64
	Accrued      float64
	Notional     float64
}

// Pv is ProtectionPv + FeePv.
func (r Result) Pv() float64 { return r.ProtectionPv + r.FeePv }

// FlatPrice is (ProtectionPv + FeePv - Accrued) / Notional.
func (r Result) FlatPrice() float64 {
	return (r.ProtectionPv + r.FeePv - r.Accrued) / r.Notional
}

// FullModelPrice is (ProtectionPv + FeePv) / Notional.
func (r Result) FullModelPrice() float64 {
	return (r.ProtectionPv + r.FeePv) / r.Notional
}

// Scale multiplies every amount, notional included, by w.
func (r Result) Scale(w float64) Result {
	return Result{
		ProtectionPv: w * r.ProtectionPv,
		FeePv:        w * r.FeePv,
		FlatFeePv:    w * r.FlatFeePv,
		Accrued:      w * r.Accrued,
		Notional:     w * r.Notional,
	}
}

// Add sums two results field by field.
func (r Result) Add(o Result) Result {
	return Result{
		ProtectionPv: r.ProtectionPv + o.ProtectionPv,
		FeePv:        r.FeePv + o.FeePv,
		FlatFeePv:    r.FlatFeePv + o.FlatFeePv,
		Accrued:      r.Accrued + o.Accrued,
		Notional:     r.Notional + o.Notional,
	}
}

func (r Result) hasNaN() bool {
	return math.IsNaN(r.ProtectionPv) || math.IsNaN(r.FeePv) || math.IsNaN(r.Accrued)
}

// Price values both legs at in.Settle.
func Price(in Inputs) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, err
	}
	r := Result{Notional: in.Notional}
	r.Accrued = walk(in, func(f Flow) {
		pv := f.Amount * in.Discount.DiscountFactor(in.Settle, f.Date)
		if f.Leg == LegProtection {
			r.ProtectionPv += pv
		} else {
			r.FeePv += pv
		}
	})
	r.FlatFeePv = r.FeePv - r.Accrued
	if r.hasNaN() {
		return Result{}, &ComputationError{Op: "Price", Err: ErrNaN}
	}
	return r, nil
}

// ExpectedFlows returns the undiscounted expected flows Price discounts, in
// emission order (schedule order, sub-steps ascending).
func ExpectedFlows(in Inputs) ([]Flow, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var flows []Flow
	walk(in, func(f Flow) {
		flows = append(flows, f)
	})
	for _, f := range flows {
		if math.IsNaN(f.Amount) {
			return nil, &ComputationError{Op: "ExpectedFlows", Err: ErrNaN}
		}
	}
	return flows, nil
}

// Accrued is the scheduled premium accrued from the start of the period
// containing settle, independent of survival. For a name that has defaulted
// with an unsettled default settlement it is the recorded accrual.
func Accrued(in Inputs) (float64, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}
	if ds, defaulted := defaultedState(in); defaulted {
		if ds == nil {
			return 0, nil
		}
		return in.Policy.feeSign() * ds.AccrualAmount, nil
	}
	return scheduledAccrued(in), nil
}

// SurvivalProbability is the joint survival of the name and the counterparty
// over [start, end]; without a counterparty exactly S(end)/S(start).
func SurvivalProbability(in Inputs, start, end time.Time) (float64, error) {
	if errs := in.validateCredit(); len(errs) > 0 {
		return 0, errs
	}
	return counterparty.OverallSurvivalProbability(start, end, in.Survival, in.Counterparty, in.Correlation, in.Policy.Step), nil
}

// ExpectedLossRate is (1 - JS(start,end)) * (1 - R(end)).
func ExpectedLossRate(in Inputs, start, end time.Time) (float64, error) {
	js, err := SurvivalProbability(in, start, end)
	if err != nil {
		return 0, err
	}
	return (1 - js) * (1 - in.recovery().RecoveryRate(end)), nil
}

// ExpectedLoss is Notional times the expected loss rate over [start, end], or
// Notional * (L(end) - L(start)) when a loss curve is supplied.
func ExpectedLoss(in Inputs, start, end time.Time) (float64, error) {
	if errs := in.validateCredit(); len(errs) > 0 {
		return 0, errs
	}
	if in.Loss != nil {
		if !end.After(start) {
			return 0, nil
		}
		return in.Notional * (in.Loss.Interpolate(end) - in.Loss.Interpolate(start)), nil
	}
	rate, err := ExpectedLossRate(in, start, end)
	if err != nil {
		return 0, err
	}
	return in.Notional * rate, nil
}

// defaultedState reports whether the name defaulted on or before settle. The
// returned settlement is nil when nothing is left to pay.
func defaultedState(in Inputs) (*schedule.DefaultSettlement, bool) {
	dd := in.Survival.DefaultDate()
	if dd.IsZero() || dd.After(in.Settle) {
		return nil, false
	}
	ds, ok := in.Schedule.DefaultSettlement()
	if !ok || !in.pending(ds.Pay) {
		return nil, true
	}
	return &ds, true
}

func scheduledAccrued(in Inputs) float64 {
	for _, ip := range in.Schedule.Interest() {
		if ip.Contains(in.Settle) {
			return in.Policy.feeSign() * ip.AccruedAt(in.Settle)
		}
	}
	return 0
}

// walker emits the expected flows of one evaluation.
type walker struct {
	in   Inputs
	js   *counterparty.Path
	rec  curve.RecoveryCurve
	sign float64
	emit func(Flow)
}

// walk emits every expected flow of in and returns the accrued premium.
func walk(in Inputs, emit func(Flow)) float64 {
	sign := in.Policy.feeSign()
	if ds, defaulted := defaultedState(in); defaulted {
		if ds == nil {
			return 0
		}
		if in.Policy.Funded {
			emit(Flow{Date: ds.Pay, Amount: ds.AccrualAmount + ds.RecoveryAmount, Leg: LegFee, Kind: schedule.KindDefaultSettlement})
		} else {
			emit(Flow{Date: ds.Pay, Amount: -ds.AccrualAmount, Leg: LegFee, Kind: schedule.KindDefaultSettlement})
			emit(Flow{Date: ds.Pay, Amount: ds.LossAmount, Leg: LegProtection, Kind: schedule.KindDefaultSettlement})
		}
		return sign * ds.AccrualAmount
	}

	w := &walker{
		in:   in,
		js:   counterparty.NewPath(in.Settle, in.Survival, in.Counterparty, in.Correlation, in.Policy.Step),
		rec:  in.recovery(),
		sign: sign,
		emit: emit,
	}
	for _, p := range in.Schedule.Payments() {
		switch p := p.(type) {
		case schedule.InterestPayment:
			w.interest(p)
		case schedule.ProtectionPayment:
			w.protection(p)
		case schedule.PrincipalExchange:
			if in.pending(p.Pay) {
				emit(Flow{Date: p.Pay, Amount: sign * p.Notional * w.js.At(p.Pay), Leg: LegFee, Kind: schedule.KindPrincipal})
			}
		}
	}
	return scheduledAccrued(in)
}

// defaultPoint places the default instant inside [t0, t1].
func (w *walker) defaultPoint(t0, t1 time.Time) time.Time {
	return utils.Interpolate(t0, t1, w.in.Policy.DefaultTiming)
}

func (w *walker) defaultProb(t0, t1 time.Time) float64 {
	return w.js.At(t0) - w.js.At(t1)
}

func (w *walker) interest(p schedule.InterestPayment) {
	pol := w.in.Policy
	if !w.in.pending(p.Pay) {
		return
	}
	w.emit(Flow{Date: p.Pay, Amount: w.sign * p.Amount() * w.js.At(p.End), Leg: LegFee, Kind: schedule.KindInterest})

	if !pol.AccrueOnDefault || pol.AccruedFractionOnDefault == 0 || !p.End.After(w.in.Settle) {
		return
	}
	_ = grid.Walk(utils.MaxDate(p.Start, w.in.Settle), p.End, pol.Step, func(t0, t1 time.Time) error {
		tau := w.defaultPoint(t0, t1)
		date := p.Pay
		if pol.DiscountingAccrued {
			date = tau
		}
		w.emit(Flow{
			Date:   date,
			Amount: w.sign * pol.AccruedFractionOnDefault * p.AccruedAt(tau) * w.defaultProb(t0, t1),
			Leg:    LegFee,
			Kind:   schedule.KindInterest,
		})
		return nil
	})
}

func (w *walker) protection(p schedule.ProtectionPayment) {
	if !p.End.After(w.in.Settle) {
		return
	}
	funded := w.in.Policy.Funded
	loss := w.in.Loss
	_ = grid.Walk(utils.MaxDate(p.Start, w.in.Settle), p.End, w.in.Policy.Step, func(t0, t1 time.Time) error {
		tau := w.defaultPoint(t0, t1)
		switch {
		case funded:
			w.emit(Flow{Date: tau, Amount: p.Notional * w.defaultProb(t0, t1) * w.rec.RecoveryRate(tau), Leg: LegFee, Kind: schedule.KindProtection})
		case loss != nil:
			w.emit(Flow{Date: tau, Amount: p.Notional * (loss.Interpolate(t1) - loss.Interpolate(t0)), Leg: LegProtection, Kind: schedule.KindProtection})
		default:
			w.emit(Flow{Date: tau, Amount: p.Notional * w.defaultProb(t0, t1) * (1 - w.rec.RecoveryRate(tau)), Leg: LegProtection, Kind: schedule.KindProtection})
		}
		return nil
	})
}
