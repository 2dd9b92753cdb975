package integrals

import (
	"math"

	"gonum.org/v1/gonum/integrate"

	"integrals-api/internal/symbol"
)

// rombergSamples must be 2**k + 1 for Romberg integration. Using evenly
// spaced samples also guarantees that the midpoint of the interval (and of
// every bisection) is evaluated, so interior singularities like 1/x at 0
// surface as non-finite sums instead of silently cancelling.
const rombergSamples = 257

// Quadrature tolerances for the symbolic/numeric cross-check.
const (
	definiteAbsTol = 1e-6
	definiteRelTol = 1e-3
)

// Indefinite computes the symbolic antiderivative of f. The constant of
// integration is intentionally omitted, matching the underlying kernel's
// convention. ok is false when the expression has no supported
// antiderivative; callers treat that as fatal to the request.
func Indefinite(f symbol.Expr, variable string) (symbol.Expr, bool) {
	return symbol.Integrate(f, variable)
}

// Definite evaluates ∫_lower^upper f dx as a real number using the
// antiderivative difference F(upper) - F(lower), cross-checked against
// Romberg quadrature of f itself. A rule-based antiderivative cannot detect
// divergence analytically, so any non-finite intermediate or disagreement
// between the two methods reports failure and the caller omits the value.
func Definite(f, antiderivative symbol.Expr, variable string, lower, upper float64) (float64, bool) {
	evalF, err := Compile(antiderivative, variable)
	if err != nil {
		return 0, false
	}
	evalf, err := Compile(f, variable)
	if err != nil {
		return 0, false
	}

	value := evalF(upper) - evalF(lower)
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}

	check, ok := romberg(evalf, lower, upper)
	if !ok {
		return 0, false
	}
	if math.Abs(value-check) > definiteAbsTol+definiteRelTol*math.Abs(value) {
		return 0, false
	}
	return value, true
}

// Area samples f on AreaPoints evenly spaced points over [lower, upper] for
// shaded-area rendering, using the same clamp as every other series.
func Area(f symbol.Expr, variable string, lower, upper float64) ([]float64, []float64, bool) {
	evalf, err := Compile(f, variable)
	if err != nil {
		return nil, nil, false
	}
	xs := Linspace(lower, upper, AreaPoints)
	return xs, Sample(evalf, xs), true
}

func romberg(f EvalFunc, lower, upper float64) (float64, bool) {
	if lower == upper {
		return 0, true
	}
	sign := 1.0
	if lower > upper {
		lower, upper = upper, lower
		sign = -1
	}
	xs := Linspace(lower, upper, rombergSamples)
	ys := make([]float64, len(xs))
	for i, x := range xs {
		y := f(x)
		if math.IsNaN(y) || math.IsInf(y, 0) {
			return 0, false
		}
		ys[i] = y
	}
	v := integrate.Romberg(ys, xs[1]-xs[0])
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return sign * v, true
}
