package integrals

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"integrals-api/internal/symbol"
)

// Sampling defaults: the primary function and its integral are plotted on
// 200 points over [-10, 10]; the shaded area uses 100 points between the
// integration bounds. Values above the clamp limit are unusable for
// plotting and are replaced with NaN before sanitization.
const (
	PlotLo     = -10.0
	PlotHi     = 10.0
	PlotPoints = 200
	AreaPoints = 100
	ClampLimit = 1e6
)

// EvalFunc is a compiled single-variable numeric evaluation function.
type EvalFunc func(float64) float64

// Compile lowers a symbolic expression into a numeric closure over variable.
// It fails when the expression references a symbol other than variable or a
// function outside the allowlist; per the series contract, such a failure
// drops the whole series rather than individual points.
func Compile(e symbol.Expr, variable string) (EvalFunc, error) {
	switch v := e.(type) {
	case *symbol.Num:
		c := v.Float64()
		return func(float64) float64 { return c }, nil

	case *symbol.Const:
		c := v.Value()
		return func(float64) float64 { return c }, nil

	case *symbol.Sym:
		if v.Name() != variable {
			return nil, fmt.Errorf("unknown symbol %q", v.Name())
		}
		return func(x float64) float64 { return x }, nil

	case *symbol.Add:
		fs, err := compileAll(v.Terms(), variable)
		if err != nil {
			return nil, err
		}
		return func(x float64) float64 {
			sum := 0.0
			for _, f := range fs {
				sum += f(x)
			}
			return sum
		}, nil

	case *symbol.Mul:
		fs, err := compileAll(v.Factors(), variable)
		if err != nil {
			return nil, err
		}
		return func(x float64) float64 {
			prod := 1.0
			for _, f := range fs {
				prod *= f(x)
			}
			return prod
		}, nil

	case *symbol.Pow:
		base, err := Compile(v.Base(), variable)
		if err != nil {
			return nil, err
		}
		exp, err := Compile(v.Exponent(), variable)
		if err != nil {
			return nil, err
		}
		return func(x float64) float64 { return math.Pow(base(x), exp(x)) }, nil

	case *symbol.Call:
		fn, ok := numericFuncs[v.Name()]
		if !ok {
			return nil, fmt.Errorf("no numeric implementation for %q", v.Name())
		}
		arg, err := Compile(v.Arg(), variable)
		if err != nil {
			return nil, err
		}
		return func(x float64) float64 { return fn(arg(x)) }, nil
	}
	return nil, fmt.Errorf("unsupported expression node %T", e)
}

func compileAll(exprs []symbol.Expr, variable string) ([]EvalFunc, error) {
	fs := make([]EvalFunc, len(exprs))
	for i, e := range exprs {
		f, err := Compile(e, variable)
		if err != nil {
			return nil, err
		}
		fs[i] = f
	}
	return fs, nil
}

var numericFuncs = map[string]func(float64) float64{
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"asin":  math.Asin,
	"acos":  math.Acos,
	"atan":  math.Atan,
	"sinh":  math.Sinh,
	"cosh":  math.Cosh,
	"tanh":  math.Tanh,
	"exp":   math.Exp,
	"log":   math.Log,
	"sqrt":  math.Sqrt,
	"abs":   math.Abs,
	"floor": math.Floor,
	"ceil":  math.Ceil,
	"sign": func(x float64) float64 {
		switch {
		case x > 0:
			return 1
		case x < 0:
			return -1
		}
		return 0
	},
}

// Linspace returns n evenly spaced points over the closed interval [lo, hi].
func Linspace(lo, hi float64, n int) []float64 {
	return floats.Span(make([]float64, n), lo, hi)
}

// Sample evaluates f at every point of xs, replacing any value whose
// magnitude exceeds ClampLimit with NaN so plot scales stay usable. The
// clamp runs before sanitization and is distinct from the NaN/Inf rule.
func Sample(f EvalFunc, xs []float64) []float64 {
	ys := make([]float64, len(xs))
	for i, x := range xs {
		y := f(x)
		if math.Abs(y) > ClampLimit {
			y = math.NaN()
		}
		ys[i] = y
	}
	return ys
}
