// Package symbol implements the symbolic expression kernel behind the
// integrals API: an immutable expression tree with exact rational
// coefficients, simplification, differentiation and rendering in both
// plain-text and LaTeX form.
package symbol

import (
	"math"
	"math/big"
	"sort"
	"strings"
)

// Expr is an immutable symbolic expression node.
type Expr interface {
	// Simplify returns a canonical, constant-folded form of the expression.
	Simplify() Expr
	// Diff returns the derivative with respect to varName, simplified.
	Diff(varName string) Expr
	// String renders the expression in plain text (powers as **).
	String() string
	// LaTeX renders the expression for typeset display.
	LaTeX() string

	collectVars(out map[string]struct{})
}

// Simplify is the package-level convenience form of e.Simplify().
func Simplify(e Expr) Expr { return e.Simplify() }

// Diff differentiates e with respect to varName.
func Diff(e Expr, varName string) Expr { return e.Diff(varName).Simplify() }

// FreeVars returns the set of free variable names in e. Named constants
// (pi, E) are not free variables.
func FreeVars(e Expr) map[string]struct{} {
	out := map[string]struct{}{}
	e.collectVars(out)
	return out
}

// DependsOn reports whether varName occurs free in e.
func DependsOn(e Expr, varName string) bool {
	_, ok := FreeVars(e)[varName]
	return ok
}

// ---------------------------------------------------------------------------
// Num — exact rational constant
// ---------------------------------------------------------------------------

// Num is an exact rational constant.
type Num struct{ val *big.Rat }

// Int returns the integer constant n.
func Int(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }

// Rat returns the rational constant p/q. q must be non-zero.
func Rat(p, q int64) *Num {
	if q == 0 {
		panic("symbol: zero denominator")
	}
	return &Num{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}

func fromRat(r *big.Rat) *Num { return &Num{val: new(big.Rat).Set(r)} }

func (n *Num) Simplify() Expr { return n }

func (n *Num) Diff(string) Expr { return Int(0) }

func (n *Num) collectVars(map[string]struct{}) {}

func (n *Num) Float64() float64 { f, _ := n.val.Float64(); return f }

func (n *Num) IsZero() bool { return n.val.Sign() == 0 }

func (n *Num) IsOne() bool { return n.val.Cmp(ratOne) == 0 }

func (n *Num) IsInteger() bool { return n.val.IsInt() }

func (n *Num) IsNegative() bool { return n.val.Sign() < 0 }

func (n *Num) Rat() *big.Rat { return new(big.Rat).Set(n.val) }

func (n *Num) String() string { return n.val.RatString() }

func (n *Num) LaTeX() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	v := new(big.Rat).Set(n.val)
	sign := ""
	if v.Sign() < 0 {
		sign = "-"
		v.Neg(v)
	}
	return sign + `\frac{` + v.Num().String() + `}{` + v.Denom().String() + `}`
}

var (
	ratOne    = big.NewRat(1, 1)
	ratNegOne = big.NewRat(-1, 1)
)

// ---------------------------------------------------------------------------
// Sym — free variable
// ---------------------------------------------------------------------------

// Sym is a free variable.
type Sym struct{ name string }

// Var returns the variable named name.
func Var(name string) *Sym { return &Sym{name: name} }

func (s *Sym) Simplify() Expr { return s }
func (s *Sym) Name() string { return s.name }
func (s *Sym) String() string { return s.name }
func (s *Sym) LaTeX() string { return s.name }

func (s *Sym) Diff(varName string) Expr {
	if s.name == varName {
		return Int(1)
	}
	return Int(0)
}

func (s *Sym) collectVars(out map[string]struct{}) { out[s.name] = struct{}{} }

// ---------------------------------------------------------------------------
// Const — named irrational constant (pi, E)
// ---------------------------------------------------------------------------

// Const is a named mathematical constant with a known numeric value.
type Const struct {
	name string
	val  float64
}

// Pi is the circle constant.
func Pi() *Const { return &Const{name: "pi", val: math.Pi} }

// E is Euler's number.
func E() *Const { return &Const{name: "E", val: math.E} }

func (c *Const) Simplify() Expr { return c }

func (c *Const) Diff(string) Expr { return Int(0) }

func (c *Const) collectVars(map[string]struct{}) {}

func (c *Const) Name() string { return c.name }

func (c *Const) Value() float64 { return c.val }

func (c *Const) String() string { return c.name }

func (c *Const) LaTeX() string {
	if c.name == "pi" {
		return `\pi`
	}
	return "e"
}

// ---------------------------------------------------------------------------
// Add — n-ary sum
// ---------------------------------------------------------------------------

// Add is an n-ary sum.
type Add struct{ terms []Expr }

// Sum builds and simplifies a sum of terms.
func Sum(terms ...Expr) Expr { return (&Add{terms: terms}).Simplify() }

func (a *Add) Terms() []Expr { return a.terms }

func (a *Add) Simplify() Expr {
	flat := make([]Expr, 0, len(a.terms))
	for _, t := range a.terms {
		s := t.Simplify()
		if inner, ok := s.(*Add); ok {
			flat = append(flat, inner.terms...)
		} else {
			flat = append(flat, s)
		}
	}

	// Collect like terms by their non-numeric part.
	constant := new(big.Rat)
	type group struct {
		rest  Expr
		coeff *big.Rat
	}
	groups := map[string]*group{}
	keys := []string{}
	for _, t := range flat {
		if n, ok := t.(*Num); ok {
			constant.Add(constant, n.val)
			continue
		}
		coeff, rest := splitCoeff(t)
		key := rest.String()
		g, seen := groups[key]
		if !seen {
			g = &group{rest: rest, coeff: new(big.Rat)}
			groups[key] = g
			keys = append(keys, key)
		}
		g.coeff.Add(g.coeff, coeff)
	}
	sort.Strings(keys)

	result := make([]Expr, 0, len(keys)+1)
	for _, key := range keys {
		g := groups[key]
		switch {
		case g.coeff.Sign() == 0:
		case g.coeff.Cmp(ratOne) == 0:
			result = append(result, g.rest)
		default:
			result = append(result, Prod(fromRat(g.coeff), g.rest))
		}
	}
	if constant.Sign() != 0 {
		result = append(result, fromRat(constant))
	}

	switch len(result) {
	case 0:
		return Int(0)
	case 1:
		return result[0]
	}
	return &Add{terms: result}
}

func (a *Add) Diff(varName string) Expr {
	d := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		d[i] = t.Diff(varName)
	}
	return Sum(d...)
}

func (a *Add) String() string {
	var sb strings.Builder
	for i, t := range a.terms {
		neg, abs := splitSign(t)
		switch {
		case i == 0 && neg:
			sb.WriteString("-")
		case i > 0 && neg:
			sb.WriteString(" - ")
		case i > 0:
			sb.WriteString(" + ")
		}
		sb.WriteString(abs.String())
	}
	return sb.String()
}

func (a *Add) LaTeX() string {
	var sb strings.Builder
	for i, t := range a.terms {
		neg, abs := splitSign(t)
		switch {
		case i == 0 && neg:
			sb.WriteString("- ")
		case i > 0 && neg:
			sb.WriteString(" - ")
		case i > 0:
			sb.WriteString(" + ")
		}
		sb.WriteString(abs.LaTeX())
	}
	return sb.String()
}

func (a *Add) collectVars(out map[string]struct{}) {
	for _, t := range a.terms {
		t.collectVars(out)
	}
}

// splitCoeff separates a term into its rational coefficient and the rest.
func splitCoeff(e Expr) (*big.Rat, Expr) {
	if m, ok := e.(*Mul); ok && len(m.factors) > 1 {
		if n, ok2 := m.factors[0].(*Num); ok2 {
			rest := m.factors[1:]
			if len(rest) == 1 {
				return n.Rat(), rest[0]
			}
			return n.Rat(), &Mul{factors: rest}
		}
	}
	return new(big.Rat).Set(ratOne), e
}

// splitSign separates a leading minus sign from a term for rendering.
func splitSign(e Expr) (bool, Expr) {
	switch v := e.(type) {
	case *Num:
		if v.IsNegative() {
			return true, fromRat(new(big.Rat).Neg(v.val))
		}
	case *Mul:
		if n, ok := v.factors[0].(*Num); ok && n.IsNegative() {
			negated := fromRat(new(big.Rat).Neg(n.val))
			if negated.IsOne() && len(v.factors) == 2 {
				return true, v.factors[1]
			}
			rest := append([]Expr{negated}, v.factors[1:]...)
			return true, &Mul{factors: rest}
		}
	}
	return false, e
}

// ---------------------------------------------------------------------------
// Mul — n-ary product
// ---------------------------------------------------------------------------

// Mul is an n-ary product. After simplification, a rational coefficient
// other than one is always the first factor.
type Mul struct{ factors []Expr }

// Prod builds and simplifies a product of factors.
func Prod(factors ...Expr) Expr { return (&Mul{factors: factors}).Simplify() }

func (m *Mul) Factors() []Expr { return m.factors }

func (m *Mul) Simplify() Expr {
	flat := make([]Expr, 0, len(m.factors))
	for _, f := range m.factors {
		s := f.Simplify()
		if inner, ok := s.(*Mul); ok {
			flat = append(flat, inner.factors...)
		} else {
			flat = append(flat, s)
		}
	}

	coeff := new(big.Rat).Set(ratOne)
	type group struct {
		base Expr
		exps []Expr
	}
	groups := map[string]*group{}
	keys := []string{}
	for _, f := range flat {
		if n, ok := f.(*Num); ok {
			coeff.Mul(coeff, n.val)
			continue
		}
		base, exp := f, Expr(Int(1))
		if p, ok := f.(*Pow); ok {
			base, exp = p.base, p.exp
		}
		key := base.String()
		g, seen := groups[key]
		if !seen {
			g = &group{base: base}
			groups[key] = g
			keys = append(keys, key)
		}
		g.exps = append(g.exps, exp)
	}
	if coeff.Sign() == 0 {
		return Int(0)
	}
	sort.Strings(keys)

	rest := make([]Expr, 0, len(keys))
	for _, key := range keys {
		g := groups[key]
		var f Expr
		if len(g.exps) == 1 {
			if n, ok := g.exps[0].(*Num); ok && n.IsOne() {
				f = g.base
			} else {
				f = Power(g.base, g.exps[0])
			}
		} else {
			f = Power(g.base, Sum(g.exps...))
		}
		if n, ok := f.(*Num); ok {
			coeff.Mul(coeff, n.val)
			continue
		}
		rest = append(rest, f)
	}

	if len(rest) == 0 {
		return fromRat(coeff)
	}
	if coeff.Cmp(ratOne) == 0 {
		if len(rest) == 1 {
			return rest[0]
		}
		return &Mul{factors: rest}
	}
	return &Mul{factors: append([]Expr{fromRat(coeff)}, rest...)}
}

func (m *Mul) Diff(varName string) Expr {
	// Product rule over all factors.
	terms := make([]Expr, len(m.factors))
	for i := range m.factors {
		parts := make([]Expr, 0, len(m.factors))
		parts = append(parts, m.factors[i].Diff(varName))
		for j, f := range m.factors {
			if j != i {
				parts = append(parts, f)
			}
		}
		terms[i] = Prod(parts...)
	}
	return Sum(terms...)
}

func (m *Mul) String() string {
	coeff := new(big.Rat).Set(ratOne)
	parts := make([]string, 0, len(m.factors))
	for _, f := range m.factors {
		if n, ok := f.(*Num); ok {
			coeff.Mul(coeff, n.val)
			continue
		}
		s := f.String()
		if _, ok := f.(*Add); ok {
			s = "(" + s + ")"
		}
		parts = append(parts, s)
	}
	body := strings.Join(parts, "*")

	neg := coeff.Sign() < 0
	abs := new(big.Rat).Abs(coeff)
	out := body
	if abs.Num().Cmp(big.NewInt(1)) != 0 {
		out = abs.Num().String() + "*" + out
	}
	if abs.Denom().Cmp(big.NewInt(1)) != 0 {
		out += "/" + abs.Denom().String()
	}
	if neg {
		out = "-" + out
	}
	return out
}

func (m *Mul) LaTeX() string {
	coeff := new(big.Rat).Set(ratOne)
	parts := make([]string, 0, len(m.factors))
	for _, f := range m.factors {
		if n, ok := f.(*Num); ok {
			coeff.Mul(coeff, n.val)
			continue
		}
		s := f.LaTeX()
		if _, ok := f.(*Add); ok {
			s = `\left(` + s + `\right)`
		}
		parts = append(parts, s)
	}
	body := strings.Join(parts, " ")

	neg := coeff.Sign() < 0
	abs := new(big.Rat).Abs(coeff)
	num := body
	if abs.Num().Cmp(big.NewInt(1)) != 0 {
		num = abs.Num().String() + " " + num
	}
	out := num
	if abs.Denom().Cmp(big.NewInt(1)) != 0 {
		out = `\frac{` + num + `}{` + abs.Denom().String() + `}`
	}
	if neg {
		out = "- " + out
	}
	return out
}

func (m *Mul) collectVars(out map[string]struct{}) {
	for _, f := range m.factors {
		f.collectVars(out)
	}
}

// ---------------------------------------------------------------------------
// Pow — base raised to an exponent
// ---------------------------------------------------------------------------

// Pow is base**exp.
type Pow struct{ base, exp Expr }

// Power builds and simplifies base**exp.
func Power(base, exp Expr) Expr { return (&Pow{base: base, exp: exp}).Simplify() }

func (p *Pow) Base() Expr { return p.base }
func (p *Pow) Exponent() Expr { return p.exp }

func (p *Pow) Simplify() Expr {
	base := p.base.Simplify()
	exp := p.exp.Simplify()

	if en, ok := exp.(*Num); ok {
		if en.IsZero() {
			return Int(1)
		}
		if en.IsOne() {
			return base
		}
		if bn, ok2 := base.(*Num); ok2 {
			if folded, ok3 := ratPow(bn.val, en.val); ok3 {
				return fromRat(folded)
			}
		}
	}
	if bn, ok := base.(*Num); ok {
		if bn.IsOne() {
			return Int(1)
		}
		if bn.IsZero() {
			if en, ok2 := exp.(*Num); !ok2 || !en.IsNegative() && !en.IsZero() {
				return Int(0)
			}
		}
	}
	if inner, ok := base.(*Pow); ok {
		return Power(inner.base, Prod(inner.exp, exp))
	}
	return &Pow{base: base, exp: exp}
}

// ratPow folds r**e exactly for small integer exponents.
func ratPow(r, e *big.Rat) (*big.Rat, bool) {
	if !e.IsInt() || !e.Num().IsInt64() {
		return nil, false
	}
	n := e.Num().Int64()
	if n < -16 || n > 16 {
		return nil, false
	}
	neg := n < 0
	if neg {
		if r.Sign() == 0 {
			return nil, false
		}
		n = -n
	}
	out := new(big.Rat).Set(ratOne)
	for i := int64(0); i < n; i++ {
		out.Mul(out, r)
	}
	if neg {
		out.Inv(out)
	}
	return out, true
}

func (p *Pow) Diff(varName string) Expr {
	db := p.base.Diff(varName)
	de := p.exp.Diff(varName)

	if !DependsOn(p.exp, varName) {
		// d/dx u**c = c * u**(c-1) * u'
		return Prod(p.exp, Power(p.base, Sum(p.exp, Int(-1))), db)
	}
	if !DependsOn(p.base, varName) {
		// d/dx c**u = c**u * log(c) * u'
		return Prod(Power(p.base, p.exp), Fn("log", p.base), de)
	}
	// General case: u**v * (v' log(u) + v u'/u)
	return Prod(
		Power(p.base, p.exp),
		Sum(
			Prod(de, Fn("log", p.base)),
			Prod(p.exp, db, Power(p.base, Int(-1))),
		),
	)
}

func (p *Pow) String() string {
	base := p.base.String()
	if powNeedsParens(p.base) {
		base = "(" + base + ")"
	}
	exp := p.exp.String()
	if powNeedsParens(p.exp) {
		exp = "(" + exp + ")"
	}
	return base + "**" + exp
}

func powNeedsParens(e Expr) bool {
	switch v := e.(type) {
	case *Add, *Mul, *Pow:
		return true
	case *Num:
		return v.IsNegative() || !v.IsInteger()
	}
	return false
}

func (p *Pow) LaTeX() string {
	base := p.base.LaTeX()
	switch v := p.base.(type) {
	case *Add, *Mul, *Pow:
		base = `\left(` + base + `\right)`
	case *Num:
		if v.IsNegative() || !v.IsInteger() {
			base = `\left(` + base + `\right)`
		}
	}
	return base + "^{" + p.exp.LaTeX() + "}"
}

func (p *Pow) collectVars(out map[string]struct{}) {
	p.base.collectVars(out)
	p.exp.collectVars(out)
}

// ---------------------------------------------------------------------------
// Call — named unary function application
// ---------------------------------------------------------------------------

// Call applies a named unary function (sin, cos, exp, log, ...) to an argument.
type Call struct {
	name string
	arg  Expr
}

// Fn builds and simplifies a function application.
func Fn(name string, arg Expr) Expr { return (&Call{name: name, arg: arg}).Simplify() }

func (c *Call) Name() string { return c.name }
func (c *Call) Arg() Expr { return c.arg }

func (c *Call) Simplify() Expr {
	arg := c.arg.Simplify()
	if n, ok := arg.(*Num); ok {
		// Fold only exact identities; transcendental values stay symbolic.
		switch c.name {
		case "sin", "tan", "sinh", "tanh", "asin", "atan":
			if n.IsZero() {
				return Int(0)
			}
		case "cos", "cosh", "exp":
			if n.IsZero() {
				return Int(1)
			}
		case "log":
			if n.IsOne() {
				return Int(0)
			}
		case "sqrt":
			if n.IsZero() || n.IsOne() {
				return n
			}
		case "abs":
			return fromRat(new(big.Rat).Abs(n.val))
		case "floor", "ceil":
			if n.IsInteger() {
				return n
			}
		case "sign":
			return Int(int64(n.val.Sign()))
		}
	}
	if inner, ok := arg.(*Call); ok {
		if c.name == "log" && inner.name == "exp" {
			return inner.arg
		}
		if c.name == "exp" && inner.name == "log" {
			return inner.arg
		}
	}
	return &Call{name: c.name, arg: arg}
}

func (c *Call) Diff(varName string) Expr {
	du := c.arg.Diff(varName)
	var outer Expr
	switch c.name {
	case "sin":
		outer = Fn("cos", c.arg)
	case "cos":
		outer = Prod(Int(-1), Fn("sin", c.arg))
	case "tan":
		outer = Sum(Int(1), Power(Fn("tan", c.arg), Int(2)))
	case "exp":
		outer = Fn("exp", c.arg)
	case "log":
		outer = Power(c.arg, Int(-1))
	case "sqrt":
		outer = Prod(Rat(1, 2), Power(c.arg, Rat(-1, 2)))
	case "asin":
		outer = Power(Sum(Int(1), Prod(Int(-1), Power(c.arg, Int(2)))), Rat(-1, 2))
	case "acos":
		outer = Prod(Int(-1), Power(Sum(Int(1), Prod(Int(-1), Power(c.arg, Int(2)))), Rat(-1, 2)))
	case "atan":
		outer = Power(Sum(Int(1), Power(c.arg, Int(2))), Int(-1))
	case "sinh":
		outer = Fn("cosh", c.arg)
	case "cosh":
		outer = Fn("sinh", c.arg)
	case "tanh":
		outer = Sum(Int(1), Prod(Int(-1), Power(Fn("tanh", c.arg), Int(2))))
	case "abs":
		outer = Fn("sign", c.arg)
	case "floor", "ceil", "sign":
		// Zero almost everywhere.
		return Int(0)
	default:
		outer = Fn("D["+c.name+"]", c.arg)
	}
	return Prod(outer, du)
}

func (c *Call) String() string { return c.name + "(" + c.arg.String() + ")" }

func (c *Call) LaTeX() string {
	arg := c.arg.LaTeX()
	switch c.name {
	case "sin", "cos", "tan", "sinh", "cosh", "tanh", "exp", "log":
		return `\` + c.name + `{\left(` + arg + ` \right)}`
	case "asin":
		return `\operatorname{asin}{\left(` + arg + ` \right)}`
	case "acos":
		return `\operatorname{acos}{\left(` + arg + ` \right)}`
	case "atan":
		return `\operatorname{atan}{\left(` + arg + ` \right)}`
	case "sqrt":
		return `\sqrt{` + arg + `}`
	case "abs":
		return `\left|{` + arg + `}\right|`
	case "floor":
		return `\lfloor{` + arg + `}\rfloor`
	case "ceil":
		return `\lceil{` + arg + `}\rceil`
	}
	return `\operatorname{` + c.name + `}{\left(` + arg + ` \right)}`
}

func (c *Call) collectVars(out map[string]struct{}) { c.arg.collectVars(out) }
