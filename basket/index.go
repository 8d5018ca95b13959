package basket

import (
	"fmt"
	"time"

	"github.com/meenmo/credlib/cds"
	"github.com/meenmo/credlib/curve"
	"github.com/meenmo/credlib/logging"
	"github.com/meenmo/credlib/pricing"
	"github.com/meenmo/credlib/schedule"
)

// IndexPricer values a credit index name by name: every constituent is a
// single-name swap on the index terms, combined with EvaluateAdditive.
//
// A constituent that has already defaulted keeps its weight; surviving names
// are not renormalized.
type IndexPricer struct {
	terms        schedule.Terms
	settle       time.Time
	discount     curve.DiscountCurve
	names        []curve.SurvivalCurve
	weights      []float64
	counterparty curve.SurvivalCurve
	correlation  float64
	policy       pricing.Policy
	log          *logging.Logger

	pricers []*cds.Pricer
}

// NewIndexPricer creates an index pricer. weights may be nil for an equally
// weighted index.
func NewIndexPricer(terms schedule.Terms, settle time.Time, discount curve.DiscountCurve, names []curve.SurvivalCurve, weights []float64) *IndexPricer {
	return &IndexPricer{
		terms:    terms,
		settle:   settle,
		discount: discount,
		names:    append([]curve.SurvivalCurve(nil), names...),
		weights:  append([]float64(nil), weights...),
		policy:   pricing.DefaultPolicy(),
		log:      logging.Nop(),
	}
}

// Reset drops every per-name pricer and its schedule.
func (p *IndexPricer) Reset() { p.pricers = nil }

func (p *IndexPricer) SetSettle(d time.Time)             { p.settle = d; p.Reset() }
func (p *IndexPricer) SetDiscount(c curve.DiscountCurve) { p.discount = c; p.Reset() }
func (p *IndexPricer) SetPolicy(pol pricing.Policy)      { p.policy = pol; p.Reset() }
func (p *IndexPricer) SetFunded(funded bool)             { p.terms.Funded = funded; p.Reset() }
func (p *IndexPricer) SetLogger(l *logging.Logger)       { p.log = l }

// SetName replaces the survival curve of constituent i.
func (p *IndexPricer) SetName(i int, sc curve.SurvivalCurve) {
	p.names[i] = sc
	p.Reset()
}

func (p *IndexPricer) SetCounterparty(c curve.SurvivalCurve, correlation float64) {
	p.counterparty, p.correlation = c, correlation
	p.Reset()
}

// Names returns the number of constituents.
func (p *IndexPricer) Names() int { return len(p.names) }

// Weights returns the explicit weights, or nil for an equally weighted index.
func (p *IndexPricer) Weights() []float64 {
	if len(p.weights) == 0 {
		return nil
	}
	return p.weights
}

// Pricer returns the single-name pricer of constituent i.
func (p *IndexPricer) Pricer(i int) *cds.Pricer {
	if p.pricers == nil {
		p.pricers = make([]*cds.Pricer, len(p.names))
		for j, sc := range p.names {
			c := cds.NewPricer(p.terms, p.settle, p.discount, sc)
			c.SetPolicy(p.policy)
			c.SetCounterparty(p.counterparty, p.correlation)
			c.SetLogger(p.log)
			p.pricers[j] = c
		}
	}
	return p.pricers[i]
}

// Validate reports weight problems and every constituent's structural errors.
// A single-name index ignores its weights.
func (p *IndexPricer) Validate() error {
	var errs pricing.ValidationErrors
	if len(p.names) != 1 {
		if err := validateWeights(len(p.names), p.Weights()); err != nil {
			errs = append(errs, err.(pricing.ValidationErrors)...)
		}
	}
	for i := range p.names {
		if err := p.Pricer(i).Validate(); err != nil {
			errs = append(errs, err.(pricing.ValidationErrors).Prefix(fmt.Sprintf("names[%d]", i))...)
		}
	}
	return errs.OrNil()
}

// Price is the weighted sum of the constituents' results.
func (p *IndexPricer) Price() (pricing.Result, error) {
	if err := p.Validate(); err != nil {
		return pricing.Result{}, err
	}
	return EvaluateAdditive(len(p.names), p.Weights(), func(i int) (pricing.Result, error) {
		return p.Pricer(i).Price()
	})
}

// ExpectedLoss is the weighted sum of the constituents' expected losses.
func (p *IndexPricer) ExpectedLoss(start, end time.Time) (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	return EvaluateAdditiveValue(len(p.names), p.Weights(), func(i int) (float64, error) {
		return p.Pricer(i).ExpectedLoss(start, end)
	})
}
