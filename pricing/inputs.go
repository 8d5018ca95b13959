package pricing

import (
	"fmt"
	"math"
	"time"

	"github.com/meenmo/credlib/curve"
	"github.com/meenmo/credlib/schedule"
)

// Inputs is everything one engine evaluation reads. Curves and the schedule
// are read-only for the duration of the call.
//
// Cash amounts come from the schedule's payments; Notional only normalizes
// the derived prices.
type Inputs struct {
	Schedule *schedule.PaymentSchedule
	Discount curve.DiscountCurve
	Survival curve.SurvivalCurve
	// Counterparty is optional. With it the protection leg pays on the first
	// default of reference or counterparty, so default probabilities come from
	// the joint survival and not from counterparty.CreditDefaultProbability.
	Counterparty curve.SurvivalCurve
	Correlation  float64
	Recovery     curve.RecoveryCurve // optional override of the survival curve's recovery
	Loss         curve.Curve         // optional cumulative loss curve driving the protection leg
	Settle       time.Time
	Notional     float64
	Policy       Policy
}

// Validate returns ValidationErrors listing every structural problem, or nil.
func (in Inputs) Validate() error {
	errs := in.validateCredit()
	if in.Discount == nil {
		errs = append(errs, ValidationError{Field: "Discount", Msg: "discount curve is required"})
	}
	if in.Schedule == nil {
		errs = append(errs, ValidationError{Field: "Schedule", Msg: "payment schedule is required"})
	}
	if in.Notional == 0 || math.IsNaN(in.Notional) {
		errs = append(errs, ValidationError{Field: "Notional", Msg: "notional must be non-zero"})
	}
	p := in.Policy
	if p.DefaultTiming < 0 || p.DefaultTiming > 1 || math.IsNaN(p.DefaultTiming) {
		errs = append(errs, ValidationError{Field: "Policy.DefaultTiming", Msg: fmt.Sprintf("%v outside [0,1]", p.DefaultTiming)})
	}
	if p.AccruedFractionOnDefault < 0 || p.AccruedFractionOnDefault > 1 || math.IsNaN(p.AccruedFractionOnDefault) {
		errs = append(errs, ValidationError{Field: "Policy.AccruedFractionOnDefault", Msg: fmt.Sprintf("%v outside [0,1]", p.AccruedFractionOnDefault)})
	}
	if in.Survival != nil {
		if r := in.recovery().RecoveryRate(in.Settle); r < 0 || r > 1 || math.IsNaN(r) {
			errs = append(errs, ValidationError{Field: "Recovery", Msg: fmt.Sprintf("recovery rate %v outside [0,1]", r)})
		}
	}
	return errs.OrNil()
}

// validateCredit covers the fields the probability measures need.
func (in Inputs) validateCredit() ValidationErrors {
	var errs ValidationErrors
	if in.Survival == nil {
		errs = append(errs, ValidationError{Field: "Survival", Msg: "survival curve is required"})
	}
	if math.IsNaN(in.Correlation) || in.Correlation < -1 || in.Correlation > 1 {
		errs = append(errs, ValidationError{Field: "Correlation", Msg: fmt.Sprintf("%v outside [-1,1]", in.Correlation)})
	}
	if err := in.Policy.Step.Validate(); err != nil {
		errs = append(errs, ValidationError{Field: "Policy.Step", Msg: err.Error()})
	}
	return errs
}

func (in Inputs) recovery() curve.RecoveryCurve {
	return curve.RecoveryOf(in.Survival, in.Recovery)
}

// pending reports whether a payment on d is still to be valued at settle.
func (in Inputs) pending(d time.Time) bool {
	if d.Equal(in.Settle) {
		return in.Policy.IncludeSettlePayments
	}
	return d.After(in.Settle)
}
