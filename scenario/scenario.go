// Package scenario reprices a single-name pricer under a set of curve bumps.
//
// Every bump is applied to its own clone of the base pricer, so bumped pricers
// share the curves they leave untouched and never mutate the base.
package scenario

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/meenmo/credlib/cds"
	"github.com/meenmo/credlib/curve"
	"github.com/meenmo/credlib/pricing"
)

// Bump is a named mutation of a cloned pricer.
type Bump struct {
	Name  string
	Apply func(p *cds.Pricer)
}

// Outcome is the result of one bumped repricing. Delta is Pv(bumped) - Pv(base).
type Outcome struct {
	Name   string
	Result pricing.Result
	Delta  float64
}

// HazardBump adds spread to the hazard rate of the reference name.
func HazardBump(spread float64) Bump {
	return Bump{
		Name: fmt.Sprintf("hazard%+gbp", spread*1e4),
		Apply: func(p *cds.Pricer) {
			p.SetSurvival(curve.ShiftSurvival(p.Survival(), spread))
		},
	}
}

// DiscountBump adds spread to the continuously compounded discount rate.
func DiscountBump(spread float64) Bump {
	return Bump{
		Name: fmt.Sprintf("discount%+gbp", spread*1e4),
		Apply: func(p *cds.Pricer) {
			p.SetDiscount(curve.ShiftDiscount(p.Discount(), spread))
		},
	}
}

// RecoveryBump shifts the recovery rate by delta, clamped to [0,1].
func RecoveryBump(delta float64) Bump {
	return Bump{
		Name: fmt.Sprintf("recovery%+g", delta),
		Apply: func(p *cds.Pricer) {
			p.SetRecovery(curve.ShiftRecovery(p.Recovery(), delta))
		},
	}
}

// CorrelationBump shifts the counterparty correlation by delta, clamped to [-1,1].
// It leaves pricers without a counterparty unchanged.
func CorrelationBump(delta float64) Bump {
	return Bump{
		Name: fmt.Sprintf("correlation%+g", delta),
		Apply: func(p *cds.Pricer) {
			if p.Counterparty() == nil {
				return
			}
			rho := math.Max(-1, math.Min(1, p.Correlation()+delta))
			p.SetCounterparty(p.Counterparty(), rho)
		},
	}
}

// Ladder returns one bump per size built by mk.
func Ladder(mk func(float64) Bump, sizes ...float64) []Bump {
	out := make([]Bump, len(sizes))
	for i, s := range sizes {
		out[i] = mk(s)
	}
	return out
}

// Run prices base and every bumped clone. Clones are prepared on the calling
// goroutine; pricing runs on at most workers goroutines (all of them when
// workers <= 0). Outcomes are returned in bump order.
func Run(ctx context.Context, base *cds.Pricer, bumps []Bump, workers int) ([]Outcome, error) {
	ref, err := base.Price()
	if err != nil {
		return nil, fmt.Errorf("Run: base: %w", err)
	}

	clones := make([]*cds.Pricer, len(bumps))
	for i, b := range bumps {
		c := base.Clone()
		b.Apply(c)
		clones[i] = c
	}

	out := make([]Outcome, len(bumps))
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i := range clones {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := clones[i].Price()
			if err != nil {
				return fmt.Errorf("Run: %s: %w", bumps[i].Name, err)
			}
			out[i] = Outcome{Name: bumps[i].Name, Result: r, Delta: r.Pv() - ref.Pv()}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
