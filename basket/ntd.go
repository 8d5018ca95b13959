package basket

import (
	"fmt"
	"time"

	"github.com/meenmo/credlib/cds"
	"github.com/meenmo/credlib/curve"
	"github.com/meenmo/credlib/pricing"
	"github.com/meenmo/credlib/schedule"
)

// NTDPricer values an nth-to-default basket covering the orders
// [first, first+covered). Each order carries Notional/covered and is priced
// against the model's order-statistic curves.
type NTDPricer struct {
	terms    schedule.Terms
	settle   time.Time
	discount curve.DiscountCurve
	model    NthCurveModel
	first    int
	covered  int
	policy   pricing.Policy

	orders map[int]*cds.Pricer
}

// NewNTDPricer creates a pricer for the given order range.
func NewNTDPricer(terms schedule.Terms, settle time.Time, discount curve.DiscountCurve, model NthCurveModel, first, covered int) *NTDPricer {
	return &NTDPricer{
		terms:    terms,
		settle:   settle,
		discount: discount,
		model:    model,
		first:    first,
		covered:  covered,
		policy:   pricing.DefaultPolicy(),
	}
}

// Reset drops every per-order pricer.
func (p *NTDPricer) Reset() { p.orders = nil }

func (p *NTDPricer) SetSettle(d time.Time)             { p.settle = d; p.Reset() }
func (p *NTDPricer) SetDiscount(c curve.DiscountCurve) { p.discount = c; p.Reset() }
func (p *NTDPricer) SetModel(m NthCurveModel)          { p.model = m; p.Reset() }
func (p *NTDPricer) SetPolicy(pol pricing.Policy)      { p.policy = pol; p.Reset() }
func (p *NTDPricer) SetFunded(funded bool)             { p.terms.Funded = funded; p.Reset() }

func (p *NTDPricer) order(k int, survival curve.SurvivalCurve, loss curve.Curve) *cds.Pricer {
	if c, ok := p.orders[k]; ok {
		return c
	}
	if p.orders == nil {
		p.orders = map[int]*cds.Pricer{}
	}
	terms := p.terms
	terms.Notional = p.terms.Notional / float64(p.covered)
	c := cds.NewPricer(terms, p.settle, p.discount, survival)
	c.SetLoss(loss)
	c.SetPolicy(p.policy)
	p.orders[k] = c
	return c
}

// Validate checks the order range and the per-order inputs.
func (p *NTDPricer) Validate() error {
	if p.model == nil {
		return pricing.ValidationErrors{{Field: "Model", Msg: "nth curve model is required"}}
	}
	if err := ValidateOrderRange(p.first, p.covered, p.model.Names()); err != nil {
		return err
	}
	var errs pricing.ValidationErrors
	for k := p.first; k < p.first+p.covered; k++ {
		if err := p.order(k, p.model.NthSurvivalCurve(k), p.model.NthLossCurve(k)).Validate(); err != nil {
			errs = append(errs, err.(pricing.ValidationErrors).Prefix(fmt.Sprintf("orders[%d]", k))...)
		}
	}
	return errs.OrNil()
}

// Price sums the order results. The accrued premium is paid only while the
// covered orders survive, so it is scaled by their effective survival at settle.
func (p *NTDPricer) Price() (pricing.Result, error) {
	if err := p.Validate(); err != nil {
		return pricing.Result{}, err
	}
	r, err := EvaluateOrderStatistics(p.first, p.covered, p.model, func(k int, sc curve.SurvivalCurve, loss curve.Curve) (pricing.Result, error) {
		return p.order(k, sc, loss).Price()
	})
	if err != nil {
		return pricing.Result{}, err
	}
	r.Accrued *= p.model.EffectiveSurvival(p.first, p.covered, p.settle)
	r.FlatFeePv = r.FeePv - r.Accrued
	return r, nil
}

// ExpectedLoss sums the orders' expected losses over [start, end].
func (p *NTDPricer) ExpectedLoss(start, end time.Time) (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	var total float64
	for k := p.first; k < p.first+p.covered; k++ {
		el, err := p.order(k, p.model.NthSurvivalCurve(k), p.model.NthLossCurve(k)).ExpectedLoss(start, end)
		if err != nil {
			return 0, fmt.Errorf("order %d: %w", k, err)
		}
		total += el
	}
	return total, nil
}
