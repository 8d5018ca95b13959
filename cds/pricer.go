// Package cds prices single-name credit default swaps and funded
// credit-linked notes on top of the pricing engine.
package cds

import (
	"fmt"
	"time"

	"github.com/meenmo/credlib/curve"
	"github.com/meenmo/credlib/logging"
	"github.com/meenmo/credlib/pricing"
	"github.com/meenmo/credlib/schedule"
)

// Pricer owns mutable curve references and a memoized payment schedule.
// It is not safe for concurrent mutation; use Clone or the With* methods to
// derive independent pricers.
//
// Every setter and Reset advance the pricer's generation. The schedule memo
// records the generation it was built for, so a stale schedule is never served.
type Pricer struct {
	terms        schedule.Terms
	settle       time.Time
	discount     curve.DiscountCurve
	survival     curve.SurvivalCurve
	counterparty curve.SurvivalCurve
	correlation  float64
	recovery     curve.RecoveryCurve
	loss         curve.Curve
	policy       pricing.Policy
	solver       pricing.Solver
	log          *logging.Logger

	generation uint64
	memo       *scheduleMemo
}

type scheduleMemo struct {
	generation uint64
	ps         *schedule.PaymentSchedule
	err        error
}

// NewPricer creates a pricer with the default policy and solver.
func NewPricer(terms schedule.Terms, settle time.Time, discount curve.DiscountCurve, survival curve.SurvivalCurve) *Pricer {
	return &Pricer{
		terms:    terms,
		settle:   settle,
		discount: discount,
		survival: survival,
		policy:   pricing.DefaultPolicy(),
		solver:   pricing.DefaultSolver(),
		log:      logging.Nop(),
	}
}

func (p *Pricer) invalidate() { p.generation++ }

// Reset drops the memoized schedule.
func (p *Pricer) Reset() { p.invalidate() }

func (p *Pricer) Terms() schedule.Terms             { return p.terms }
func (p *Pricer) Settle() time.Time                 { return p.settle }
func (p *Pricer) Discount() curve.DiscountCurve     { return p.discount }
func (p *Pricer) Survival() curve.SurvivalCurve     { return p.survival }
func (p *Pricer) Counterparty() curve.SurvivalCurve { return p.counterparty }
func (p *Pricer) Correlation() float64              { return p.correlation }
func (p *Pricer) Policy() pricing.Policy            { return p.policy }
func (p *Pricer) Notional() float64                 { return p.terms.Notional }
func (p *Pricer) Funded() bool                      { return p.terms.Funded }

// Recovery is the recovery curve in effect: the override, the survival
// curve's own, or the flat default.
func (p *Pricer) Recovery() curve.RecoveryCurve {
	return curve.RecoveryOf(p.survival, p.recovery)
}

func (p *Pricer) SetTerms(t schedule.Terms)         { p.terms = t; p.invalidate() }
func (p *Pricer) SetSettle(d time.Time)             { p.settle = d; p.invalidate() }
func (p *Pricer) SetDiscount(c curve.DiscountCurve) { p.discount = c; p.invalidate() }
func (p *Pricer) SetSurvival(c curve.SurvivalCurve) { p.survival = c; p.invalidate() }
func (p *Pricer) SetRecovery(r curve.RecoveryCurve) { p.recovery = r; p.invalidate() }
func (p *Pricer) SetLoss(l curve.Curve)             { p.loss = l; p.invalidate() }
func (p *Pricer) SetPolicy(pol pricing.Policy)      { p.policy = pol; p.invalidate() }
func (p *Pricer) SetCoupon(c float64)               { p.terms.Coupon = c; p.invalidate() }
func (p *Pricer) SetNotional(n float64)             { p.terms.Notional = n; p.invalidate() }
func (p *Pricer) SetFunded(funded bool)             { p.terms.Funded = funded; p.invalidate() }
func (p *Pricer) SetSolver(s pricing.Solver)        { p.solver = s }
func (p *Pricer) SetLogger(l *logging.Logger)       { p.log = l }

// SetCounterparty attaches a protection seller curve and its default
// correlation with the reference name. A nil curve removes it.
func (p *Pricer) SetCounterparty(c curve.SurvivalCurve, correlation float64) {
	p.counterparty = c
	p.correlation = correlation
	p.invalidate()
}

// Clone returns an independent pricer. Curves are immutable and shared.
func (p *Pricer) Clone() *Pricer {
	c := *p
	return &c
}

func (p *Pricer) WithSettle(d time.Time) *Pricer {
	c := p.Clone()
	c.SetSettle(d)
	return c
}

func (p *Pricer) WithDiscount(dc curve.DiscountCurve) *Pricer {
	c := p.Clone()
	c.SetDiscount(dc)
	return c
}

func (p *Pricer) WithSurvival(sc curve.SurvivalCurve) *Pricer {
	c := p.Clone()
	c.SetSurvival(sc)
	return c
}

func (p *Pricer) WithRecovery(r curve.RecoveryCurve) *Pricer {
	c := p.Clone()
	c.SetRecovery(r)
	return c
}

func (p *Pricer) WithCounterparty(cp curve.SurvivalCurve, correlation float64) *Pricer {
	c := p.Clone()
	c.SetCounterparty(cp, correlation)
	return c
}

func (p *Pricer) WithPolicy(pol pricing.Policy) *Pricer {
	c := p.Clone()
	c.SetPolicy(pol)
	return c
}

// Schedule returns the payment schedule as of settle, generating it at most
// once per generation.
func (p *Pricer) Schedule() (*schedule.PaymentSchedule, error) {
	if m := p.memo; m != nil && m.generation == p.generation {
		return m.ps, m.err
	}
	ps, err := schedule.Generate(p.terms, p.settle, p.settle, p.survival)
	if err != nil {
		err = fmt.Errorf("Schedule: %w", err)
	}
	p.memo = &scheduleMemo{generation: p.generation, ps: ps, err: err}
	return ps, err
}

// FeePayments are the premium coupons of the current schedule.
func (p *Pricer) FeePayments() ([]schedule.InterestPayment, error) {
	ps, err := p.Schedule()
	if err != nil {
		return nil, err
	}
	return ps.Interest(), nil
}

// ProtectionPayments are the protection periods of the current schedule.
func (p *Pricer) ProtectionPayments() ([]schedule.ProtectionPayment, error) {
	ps, err := p.Schedule()
	if err != nil {
		return nil, err
	}
	return ps.Protection(), nil
}

// Inputs assembles the engine inputs for the current state.
func (p *Pricer) Inputs() (pricing.Inputs, error) {
	ps, err := p.Schedule()
	if err != nil {
		return pricing.Inputs{}, err
	}
	pol := p.policy
	pol.Funded = p.terms.Funded
	return pricing.Inputs{
		Schedule:     ps,
		Discount:     p.discount,
		Survival:     p.survival,
		Counterparty: p.counterparty,
		Correlation:  p.correlation,
		Recovery:     p.recovery,
		Loss:         p.loss,
		Settle:       p.settle,
		Notional:     p.terms.Notional,
		Policy:       pol,
	}, nil
}

// Validate reports every structural problem of the pricer as ValidationErrors.
func (p *Pricer) Validate() error {
	var errs pricing.ValidationErrors
	if err := p.terms.Validate(); err != nil {
		errs = append(errs, pricing.ValidationError{Field: "Terms", Msg: err.Error()})
	}
	pol := p.policy
	pol.Funded = p.terms.Funded
	in := pricing.Inputs{
		Schedule:     &schedule.PaymentSchedule{},
		Discount:     p.discount,
		Survival:     p.survival,
		Counterparty: p.counterparty,
		Correlation:  p.correlation,
		Recovery:     p.recovery,
		Settle:       p.settle,
		Notional:     p.terms.Notional,
		Policy:       pol,
	}
	if err := in.Validate(); err != nil {
		errs = append(errs, err.(pricing.ValidationErrors)...)
	}
	return errs.OrNil()
}

// Price values both legs at settle.
func (p *Pricer) Price() (pricing.Result, error) {
	if err := p.Validate(); err != nil {
		return pricing.Result{}, err
	}
	in, err := p.Inputs()
	if err != nil {
		return pricing.Result{}, err
	}
	return pricing.Price(in)
}

// Pv is ProtectionPv + FeePv.
func (p *Pricer) Pv() (float64, error) {
	r, err := p.Price()
	if err != nil {
		return 0, err
	}
	return r.Pv(), nil
}

// Accrued is the scheduled accrued premium at settle.
func (p *Pricer) Accrued() (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	in, err := p.Inputs()
	if err != nil {
		return 0, err
	}
	return pricing.Accrued(in)
}

// ExpectedFlows returns the undiscounted expected cash flows.
func (p *Pricer) ExpectedFlows() ([]pricing.Flow, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	in, err := p.Inputs()
	if err != nil {
		return nil, err
	}
	return pricing.ExpectedFlows(in)
}

// ExpectedLoss over [start, end] in currency.
func (p *Pricer) ExpectedLoss(start, end time.Time) (float64, error) {
	in, err := p.Inputs()
	if err != nil {
		return 0, err
	}
	return pricing.ExpectedLoss(in, start, end)
}

// SurvivalProbability over [start, end], joint with the counterparty if any.
func (p *Pricer) SurvivalProbability(start, end time.Time) (float64, error) {
	in, err := p.Inputs()
	if err != nil {
		return 0, err
	}
	return pricing.SurvivalProbability(in, start, end)
}
