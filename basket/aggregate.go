// Package basket aggregates single-name engine results into multi-name
// products: weighted sums for indices and order statistics for nth-to-default.
package basket

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/meenmo/credlib/curve"
	"github.com/meenmo/credlib/pricing"
)

// NthCurveModel supplies the order-statistic curves of a basket, built by an
// external copula or loss model. Orders k are 1-based.
type NthCurveModel interface {
	Names() int
	NthSurvivalCurve(k int) curve.SurvivalCurve
	NthLossCurve(k int) curve.Curve
	// EffectiveSurvival is the probability that the orders [first, first+count)
	// are all still alive at date.
	EffectiveSurvival(first, count int, date time.Time) float64
}

// Weight returns the weight of name i of n: weights[i], or exactly 1/n when
// weights is nil.
func Weight(weights []float64, i, n int) float64 {
	if weights == nil {
		return 1 / float64(n)
	}
	return weights[i]
}

func validateWeights(n int, weights []float64) error {
	var errs pricing.ValidationErrors
	if n <= 0 {
		errs = append(errs, pricing.ValidationError{Field: "Names", Msg: "basket has no names"})
	}
	if weights != nil {
		if len(weights) != n {
			errs = append(errs, pricing.ValidationError{Field: "Weights", Msg: fmt.Sprintf("%d weights for %d names", len(weights), n)})
		} else if floats.HasNaN(weights) {
			errs = append(errs, pricing.ValidationError{Field: "Weights", Msg: "NaN weight"})
		}
	}
	return errs.OrNil()
}

// EvaluateAdditive returns sum_i w_i * eval(i). With a single name eval(0) is
// returned unchanged and weights are not consulted.
func EvaluateAdditive(n int, weights []float64, eval func(i int) (pricing.Result, error)) (pricing.Result, error) {
	if n == 1 {
		return eval(0)
	}
	if err := validateWeights(n, weights); err != nil {
		return pricing.Result{}, err
	}
	var total pricing.Result
	for i := 0; i < n; i++ {
		r, err := eval(i)
		if err != nil {
			return pricing.Result{}, fmt.Errorf("name %d: %w", i, err)
		}
		total = total.Add(r.Scale(Weight(weights, i, n)))
	}
	return total, nil
}

// EvaluateAdditiveValue is EvaluateAdditive for scalar measures.
func EvaluateAdditiveValue(n int, weights []float64, eval func(i int) (float64, error)) (float64, error) {
	if n == 1 {
		return eval(0)
	}
	if err := validateWeights(n, weights); err != nil {
		return 0, err
	}
	values := make([]float64, n)
	w := make([]float64, n)
	for i := range values {
		v, err := eval(i)
		if err != nil {
			return 0, fmt.Errorf("name %d: %w", i, err)
		}
		values[i] = v
		w[i] = Weight(weights, i, n)
	}
	total := floats.Dot(w, values)
	if math.IsNaN(total) {
		return 0, &pricing.ComputationError{Op: "EvaluateAdditiveValue", Err: pricing.ErrNaN}
	}
	return total, nil
}

// ValidateOrderRange checks that [first, first+covered) lies inside 1..names.
func ValidateOrderRange(first, covered, names int) error {
	var errs pricing.ValidationErrors
	if first < 1 {
		errs = append(errs, pricing.ValidationError{Field: "First", Msg: fmt.Sprintf("first order %d must be at least 1", first)})
	}
	if covered < 1 {
		errs = append(errs, pricing.ValidationError{Field: "Covered", Msg: fmt.Sprintf("number covered %d must be at least 1", covered)})
	}
	if first >= 1 && covered >= 1 && first+covered-1 > names {
		errs = append(errs, pricing.ValidationError{Field: "Covered", Msg: fmt.Sprintf("orders %d..%d exceed %d names", first, first+covered-1, names)})
	}
	return errs.OrNil()
}

// EvaluateOrderStatistics sums eval over the orders k in [first, first+covered),
// each priced against its own survival and loss curves.
func EvaluateOrderStatistics(first, covered int, model NthCurveModel, eval func(k int, survival curve.SurvivalCurve, loss curve.Curve) (pricing.Result, error)) (pricing.Result, error) {
	if model == nil {
		return pricing.Result{}, pricing.ValidationErrors{{Field: "Model", Msg: "nth curve model is required"}}
	}
	if err := ValidateOrderRange(first, covered, model.Names()); err != nil {
		return pricing.Result{}, err
	}
	var total pricing.Result
	for k := first; k < first+covered; k++ {
		r, err := eval(k, model.NthSurvivalCurve(k), model.NthLossCurve(k))
		if err != nil {
			return pricing.Result{}, fmt.Errorf("order %d: %w", k, err)
		}
		total = total.Add(r)
	}
	return total, nil
}
