package counterparty

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/stat/distuv"
)

// Gauss-Legendre node counts for the correlation integral. The integrand
// sharpens as |rho| approaches one.
const (
	legendreNodes     = 20
	legendreNodesHigh = 64
	highCorrelation   = 0.925
)

// BivariateNormalCDF returns P(X <= x, Y <= y) for standard normals with
// correlation rho, integrating the density along rho = sin(theta):
//
//	Phi2(x,y;rho) = Phi(x)Phi(y) + 1/(2pi) * Int_0^asin(rho) exp((xy sin t - (x^2+y^2)/2) / cos^2 t) dt
func BivariateNormalCDF(x, y, rho float64) float64 {
	n := distuv.UnitNormal
	switch {
	case math.IsNaN(x) || math.IsNaN(y) || math.IsNaN(rho):
		return math.NaN()
	case math.IsInf(x, -1) || math.IsInf(y, -1):
		return 0
	case math.IsInf(x, 1):
		return n.CDF(y)
	case math.IsInf(y, 1):
		return n.CDF(x)
	}

	px, py := n.CDF(x), n.CDF(y)
	switch {
	case rho >= 1:
		return math.Min(px, py)
	case rho <= -1:
		return math.Max(0, px+py-1)
	case rho == 0:
		return px * py
	}

	hs := (x*x + y*y) / 2
	f := func(theta float64) float64 {
		s, c := math.Sincos(theta)
		return math.Exp((x*y*s - hs) / (c * c))
	}
	nodes := legendreNodes
	if math.Abs(rho) >= highCorrelation {
		nodes = legendreNodesHigh
	}
	asr := math.Asin(rho)
	var integral float64
	if asr > 0 {
		integral = quad.Fixed(f, 0, asr, nodes, quad.Legendre{}, 0)
	} else {
		integral = -quad.Fixed(f, asr, 0, nodes, quad.Legendre{}, 0)
	}
	p := px*py + integral/(2*math.Pi)
	return math.Min(math.Min(px, py), math.Max(0, p))
}

// JointStepSurvival is the Gaussian-copula probability that both obligors
// survive a step, given marginal step survivals p1 and p2.
func JointStepSurvival(p1, p2, corr float64) float64 {
	switch {
	case p2 >= 1:
		return p1
	case p1 >= 1:
		return p2
	case p1 <= 0 || p2 <= 0:
		return 0
	case corr == 0:
		return p1 * p2
	case corr >= 1:
		return math.Min(p1, p2)
	case corr <= -1:
		return math.Max(0, p1+p2-1)
	}
	n := distuv.UnitNormal
	return BivariateNormalCDF(n.Quantile(p1), n.Quantile(p2), corr)
}
