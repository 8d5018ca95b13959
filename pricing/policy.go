package pricing

import (
	"fmt"

	"github.com/meenmo/credlib/config"
	"github.com/meenmo/credlib/grid"
)

// Policy holds the integration and product switches of the engine.
type Policy struct {
	// Step is the integration sub-step. A zero size integrates each period in one step.
	Step grid.Step
	// DefaultTiming places the assumed default instant inside a sub-step:
	// 0 at its start, 1 at its end.
	DefaultTiming float64

	AccrueOnDefault          bool
	AccruedFractionOnDefault float64
	// DiscountingAccrued discounts accrual-on-default at the default instant
	// instead of the period pay date.
	DiscountingAccrued bool
	// IncludeSettlePayments keeps payments falling on the settle date.
	IncludeSettlePayments bool

	// Funded notes receive coupons, principal and default recoveries on the
	// fee leg and carry no protection leg.
	Funded bool
}

// DefaultPolicy is monthly integration with mid-step defaults and full,
// exactly discounted accrual on default.
func DefaultPolicy() Policy {
	return Policy{
		Step:                     grid.Step{Size: 1, Unit: grid.Months},
		DefaultTiming:            0.5,
		AccrueOnDefault:          true,
		AccruedFractionOnDefault: 1,
		DiscountingAccrued:       true,
	}
}

// PolicyFromConfig builds a policy from configuration values.
func PolicyFromConfig(c config.PricingConfig) (Policy, error) {
	step, err := grid.ParseStep(c.Step)
	if err != nil {
		return Policy{}, fmt.Errorf("PolicyFromConfig: %w", err)
	}
	return Policy{
		Step:                     step,
		DefaultTiming:            c.DefaultTiming,
		AccrueOnDefault:          c.AccrueOnDefault,
		AccruedFractionOnDefault: c.AccruedFractionOnDefault,
		DiscountingAccrued:       c.DiscountingAccrued,
		IncludeSettlePayments:    c.IncludeSettlePayments,
	}, nil
}

func (p Policy) feeSign() float64 {
	if p.Funded {
		return 1
	}
	return -1
}
