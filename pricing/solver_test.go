package pricing_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/credlib/config"
	"github.com/meenmo/credlib/pricing"
)

func TestSolver_Solve(t *testing.T) {
	t.Parallel()

	s := pricing.DefaultSolver()
	tests := []struct {
		name   string
		f      pricing.Objective
		lo, hi float64
		want   float64
	}{
		{
			name: "sqrt two",
			f:    func(x float64) (float64, error) { return x*x - 2, nil },
			lo:   0, hi: 2,
			want: math.Sqrt2,
		},
		{
			name: "bracket expanded downwards",
			f:    func(x float64) (float64, error) { return x - 1, nil },
			lo:   10, hi: 20,
			want: 1,
		},
		{
			name: "failed upper endpoint pulled in",
			f: func(x float64) (float64, error) {
				if x > 1.5 {
					return 0, errors.New("domain")
				}
				return x*x - 2, nil
			},
			lo: 0, hi: 3,
			want: math.Sqrt2,
		},
		{
			name: "failed evaluations inside the bracket",
			f: func(x float64) (float64, error) {
				if x > 0.9 && x < 1.4 {
					return 0, errors.New("domain")
				}
				return x*x - 2, nil
			},
			lo: 0, hi: 2,
			want: math.Sqrt2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Solve(tt.f, tt.lo, tt.hi)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestSolver_Failures(t *testing.T) {
	t.Parallel()

	s := pricing.DefaultSolver()
	_, err := s.Solve(func(x float64) (float64, error) { return x*x + 1, nil }, -1, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, pricing.ErrNoBracket))
	var ce *pricing.ComputationError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "Bracket", ce.Op)

	s.MaxIter = 1
	s.Tol = 1e-15
	_, err = s.Solve(func(x float64) (float64, error) { return x*x*x - 2, nil }, 0, 2)
	assert.True(t, errors.Is(err, pricing.ErrMaxIterations))

	s = pricing.DefaultSolver()
	_, err = s.Solve(func(x float64) (float64, error) { return math.NaN(), nil }, 0, 1)
	assert.True(t, errors.Is(err, pricing.ErrNoBracket))
}

func TestSolverFromConfig(t *testing.T) {
	t.Parallel()

	s := pricing.SolverFromConfig(config.DefaultConfig().Solver)
	assert.Equal(t, pricing.DefaultSolver().MaxIter, s.MaxIter)
	assert.Equal(t, pricing.DefaultSolver().MaxBracketAttempts, s.MaxBracketAttempts)

	pol, err := pricing.PolicyFromConfig(config.DefaultConfig().Pricing)
	require.NoError(t, err)
	assert.Equal(t, pricing.DefaultPolicy(), pol)

	_, err = pricing.PolicyFromConfig(config.PricingConfig{Step: "3X"})
	assert.Error(t, err)
}
