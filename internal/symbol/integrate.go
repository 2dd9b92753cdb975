package symbol

import "math/big"

// Integrate returns the indefinite integral of e with respect to varName,
// or false when no rule applies. Following the usual CAS convention the
// constant of integration is omitted.
//
// Rules: linearity over sums and constant factors, the power rule
// (including x**-1 -> log(|x|)), exponentials with constant base, and the
// elementary functions sin, cos, tan, exp, log and sqrt with arguments
// linear in varName.
func Integrate(e Expr, varName string) (Expr, bool) {
	e = e.Simplify()
	x := Var(varName)

	switch v := e.(type) {
	case *Num, *Const:
		return Prod(v, x), true

	case *Sym:
		if v.name == varName {
			return Prod(Rat(1, 2), Power(x, Int(2))), true
		}
		return Prod(v, x), true

	case *Add:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			it, ok := Integrate(t, varName)
			if !ok {
				return nil, false
			}
			terms[i] = it
		}
		return Sum(terms...), true

	case *Mul:
		consts := []Expr{}
		var dep Expr
		for _, f := range v.factors {
			if !DependsOn(f, varName) {
				consts = append(consts, f)
				continue
			}
			if dep != nil {
				// Products of two varName-dependent factors are out of
				// reach for the rule table.
				return nil, false
			}
			dep = f
		}
		if dep == nil {
			return Prod(append(consts, x)...), true
		}
		inner, ok := Integrate(dep, varName)
		if !ok {
			return nil, false
		}
		return Prod(append(consts, inner)...), true

	case *Pow:
		return integratePow(v, varName)

	case *Call:
		return integrateCall(v, varName)
	}
	return nil, false
}

func integratePow(p *Pow, varName string) (Expr, bool) {
	// u**n with u linear in varName and constant rational n.
	if n, ok := p.exp.(*Num); ok && !DependsOn(p.exp, varName) {
		a, linear := linearCoeff(p.base, varName)
		if !linear {
			return nil, false
		}
		inv := fromRat(new(big.Rat).Inv(a))
		if n.val.Cmp(ratNegOne) == 0 {
			// ∫ du/u = log(|u|)/a
			return Prod(inv, Fn("log", Fn("abs", p.base))), true
		}
		up := new(big.Rat).Add(n.val, ratOne)
		coeff := new(big.Rat).Quo(new(big.Rat).Inv(up), a)
		return Prod(fromRat(coeff), Power(p.base, fromRat(up))), true
	}

	// c**u with constant base and u linear in varName: c**u / (a log(c)).
	if !DependsOn(p.base, varName) && DependsOn(p.exp, varName) {
		a, linear := linearCoeff(p.exp, varName)
		if !linear {
			return nil, false
		}
		return Prod(
			fromRat(new(big.Rat).Inv(a)),
			Power(p.base, p.exp),
			Power(Fn("log", p.base), Int(-1)),
		), true
	}
	return nil, false
}

func integrateCall(c *Call, varName string) (Expr, bool) {
	a, linear := linearCoeff(c.arg, varName)
	if !linear {
		return nil, false
	}
	inv := fromRat(new(big.Rat).Inv(a))
	u := c.arg

	switch c.name {
	case "sin":
		return Prod(Int(-1), inv, Fn("cos", u)), true
	case "cos":
		return Prod(inv, Fn("sin", u)), true
	case "tan":
		return Prod(Int(-1), inv, Fn("log", Fn("abs", Fn("cos", u)))), true
	case "exp":
		return Prod(inv, Fn("exp", u)), true
	case "log":
		// ∫ log(u) du = (u log(u) - u)/a
		return Prod(inv, Sum(Prod(u, Fn("log", u)), Prod(Int(-1), u))), true
	case "sqrt":
		// ∫ sqrt(u) du = 2 u**(3/2) / (3a)
		coeff := new(big.Rat).Quo(big.NewRat(2, 3), a)
		return Prod(fromRat(coeff), Power(u, Rat(3, 2))), true
	}
	return nil, false
}

// linearCoeff reports whether e is linear in varName (a*varName + c with
// rational a != 0 and c free of varName) and returns a.
func linearCoeff(e Expr, varName string) (*big.Rat, bool) {
	d := Diff(e, varName)
	n, ok := d.(*Num)
	if !ok || n.IsZero() {
		return nil, false
	}
	rest := Sum(e, Prod(fromRat(new(big.Rat).Neg(n.val)), Var(varName)))
	if DependsOn(rest, varName) {
		return nil, false
	}
	return n.Rat(), true
}
