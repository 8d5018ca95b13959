package pricing

import (
	"errors"
	"fmt"
	"math"

	"github.com/meenmo/credlib/config"
	"github.com/meenmo/credlib/logging"
)

// Objective is a function whose root is sought. A non-nil error marks x as a
// failed evaluation; the solver moves away from it instead of aborting.
type Objective func(x float64) (float64, error)

// Solver is a Brent root finder with bracket expansion.
type Solver struct {
	Tol                float64
	MaxIter            int
	MaxBracketAttempts int
	Logger             *logging.Logger
}

// DefaultSolver returns the solver used when none is configured.
func DefaultSolver() Solver {
	return Solver{Tol: 1e-10, MaxIter: 100, MaxBracketAttempts: 50}
}

// SolverFromConfig builds a solver from configuration values.
func SolverFromConfig(c config.SolverConfig) Solver {
	return Solver{Tol: c.Tolerance, MaxIter: c.MaxIter, MaxBracketAttempts: c.MaxBracketAttempts}
}

const expansionFactor = 1.6

func (s Solver) log() *logging.Logger {
	if s.Logger == nil {
		return logging.Nop()
	}
	return s.Logger
}

func (s Solver) eval(f Objective, x float64) (float64, error) {
	v, err := f(x)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrNaN
	}
	return v, nil
}

// Bracket searches for lo < hi with f(lo), f(hi) of opposite sign, starting
// from the given interval. A failed endpoint is pulled halfway towards the
// other one; a valid non-bracketing pair is widened on the side with the
// smaller |f|.
func (s Solver) Bracket(f Objective, lo, hi float64) (a, b, fa, fb float64, err error) {
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo == hi {
		return 0, 0, 0, 0, &ComputationError{Op: "Bracket", Err: fmt.Errorf("empty interval at %v", lo)}
	}
	var errLo, errHi error
	fa, errLo = s.eval(f, lo)
	fb, errHi = s.eval(f, hi)
	for attempt := 0; ; attempt++ {
		if errLo == nil && errHi == nil && fa*fb <= 0 {
			return lo, hi, fa, fb, nil
		}
		if attempt >= s.MaxBracketAttempts {
			break
		}
		switch {
		case errLo != nil:
			s.log().WithError(errLo).Debugf("bracket: evaluation failed at %g, retrying closer to %g", lo, hi)
			lo = lo + (hi-lo)/2
			fa, errLo = s.eval(f, lo)
		case errHi != nil:
			s.log().WithError(errHi).Debugf("bracket: evaluation failed at %g, retrying closer to %g", hi, lo)
			hi = hi - (hi-lo)/2
			fb, errHi = s.eval(f, hi)
		case math.Abs(fa) < math.Abs(fb):
			lo += expansionFactor * (lo - hi)
			fa, errLo = s.eval(f, lo)
		default:
			hi += expansionFactor * (hi - lo)
			fb, errHi = s.eval(f, hi)
		}
	}
	return 0, 0, 0, 0, &ComputationError{Op: "Bracket", Err: fmt.Errorf("%w in [%g, %g] after %d attempts", ErrNoBracket, lo, hi, s.MaxBracketAttempts)}
}

// Solve finds x with f(x) = 0, bracketing from [lo, hi] first.
func (s Solver) Solve(f Objective, lo, hi float64) (float64, error) {
	a, b, fa, fb, err := s.Bracket(f, lo, hi)
	if err != nil {
		return math.NaN(), err
	}
	return s.brent(f, a, b, fa, fb)
}

// brent is the Brent-Dekker iteration on a valid bracket. A failed evaluation
// halves the step back towards the last good point.
func (s Solver) brent(f Objective, a, b, fa, fb float64) (float64, error) {
	if fa == 0 {
		return a, nil
	}
	if fb == 0 {
		return b, nil
	}
	c, fc := a, fa
	d := b - a
	e := d
	for iter := 0; iter < s.MaxIter; iter++ {
		if (fb > 0 && fc > 0) || (fb < 0 && fc < 0) {
			c, fc = a, fa
			d = b - a
			e = d
		}
		if math.Abs(fc) < math.Abs(fb) {
			a, b, c = b, c, b
			fa, fb, fc = fb, fc, fb
		}
		tol1 := 2*epsilon*math.Abs(b) + 0.5*s.Tol
		xm := 0.5 * (c - b)
		if math.Abs(xm) <= tol1 || fb == 0 {
			return b, nil
		}
		if math.Abs(e) >= tol1 && math.Abs(fa) > math.Abs(fb) {
			// Inverse quadratic interpolation, or secant when only two points are distinct.
			var p, q float64
			sr := fb / fa
			if a == c {
				p = 2 * xm * sr
				q = 1 - sr
			} else {
				qr := fa / fc
				r := fb / fc
				p = sr * (2*xm*qr*(qr-r) - (b-a)*(r-1))
				q = (qr - 1) * (r - 1) * (sr - 1)
			}
			if p > 0 {
				q = -q
			}
			p = math.Abs(p)
			if 2*p < math.Min(3*xm*q-math.Abs(tol1*q), math.Abs(e*q)) {
				e = d
				d = p / q
			} else {
				d = xm
				e = d
			}
		} else {
			d = xm
			e = d
		}
		a, fa = b, fb
		if math.Abs(d) > tol1 {
			b += d
		} else {
			b += math.Copysign(tol1, xm)
		}
		v, err := s.eval(f, b)
		for retry := 0; err != nil; retry++ {
			if retry >= s.MaxBracketAttempts {
				return math.NaN(), &ComputationError{Op: "Solve", Err: fmt.Errorf("evaluation failed at %g: %w", b, err)}
			}
			s.log().WithError(err).Debugf("brent: evaluation failed at %g, stepping back towards %g", b, a)
			d = (b - a) / 2
			e = d
			b = a + d
			v, err = s.eval(f, b)
		}
		fb = v
	}
	return math.NaN(), &ComputationError{Op: "Solve", Err: fmt.Errorf("%w (%d)", ErrMaxIterations, s.MaxIter)}
}

const epsilon = 2.220446049250313e-16

// IsComputation reports whether err is a ComputationError.
func IsComputation(err error) bool {
	var ce *ComputationError
	return errors.As(err, &ce)
}
