package symbol

import (
	"fmt"
	"math/big"
	"strings"
	"unicode"
)

// knownFuncs is the function allowlist shared by the parser and the numeric
// compiler. "ln" is accepted as input and canonicalised to "log".
var knownFuncs = map[string]string{
	"sin": "sin", "cos": "cos", "tan": "tan",
	"asin": "asin", "acos": "acos", "atan": "atan",
	"sinh": "sinh", "cosh": "cosh", "tanh": "tanh",
	"exp": "exp", "log": "log", "ln": "log",
	"sqrt": "sqrt", "abs": "abs",
	"floor": "floor", "ceil": "ceil", "sign": "sign",
}

// IsKnownFunc reports whether name is in the function allowlist.
func IsKnownFunc(name string) bool {
	_, ok := knownFuncs[name]
	return ok
}

// Parse reads a mathematical expression into a simplified Expr.
//
// The grammar supports numbers, identifiers, the operators + - * / ** (or ^),
// parentheses, calls to the allowlisted functions, the constants pi and e,
// and implicit multiplication: "2x", "3(x+1)" and "x sin(x)" all parse.
func Parse(input string) (Expr, error) {
	p := &parser{src: input}
	p.skipSpaces()
	if p.pos >= len(p.src) {
		return nil, fmt.Errorf("empty expression")
	}
	node, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	p.skipSpaces()
	if p.pos < len(p.src) {
		return nil, fmt.Errorf("unexpected trailing input at pos %d: %q", p.pos, p.src[p.pos:])
	}
	return node.Simplify(), nil
}

// parser is a recursive-descent parser.
//
// Precedence (low to high):
//  1. + - (additive)
//  2. * / and implicit multiplication
//  3. unary minus
//  4. ** ^ (right-associative)
//  5. primaries: numbers, identifiers, function calls, (...)
type parser struct {
	src string
	pos int
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) hasPrefix(s string) bool {
	return strings.HasPrefix(p.src[p.pos:], s)
}

func (p *parser) skipSpaces() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) expect(ch byte) error {
	if p.peek() != ch {
		got := p.src[p.pos:]
		if len(got) > 20 {
			got = got[:20] + "..."
		}
		if got == "" {
			return fmt.Errorf("expected %q at pos %d, got end of input", string(ch), p.pos)
		}
		return fmt.Errorf("expected %q at pos %d, got %q", string(ch), p.pos, got)
	}
	p.pos++
	return nil
}

func (p *parser) parseExpr() (Expr, error) {
	return p.parseAddSub()
}

func (p *parser) parseAddSub() (Expr, error) {
	left, err := p.parseMulDiv()
	if err != nil {
		return nil, err
	}
	for {
		p.skipSpaces()
		switch p.peek() {
		case '+':
			p.pos++
			right, err := p.parseMulDiv()
			if err != nil {
				return nil, err
			}
			left = Sum(left, right)
		case '-':
			p.pos++
			right, err := p.parseMulDiv()
			if err != nil {
				return nil, err
			}
			left = Sum(left, Prod(Int(-1), right))
		default:
			return left, nil
		}
	}
}

func (p *parser) parseMulDiv() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		p.skipSpaces()
		switch {
		case p.peek() == '*' && !p.hasPrefix("**"):
			p.pos++
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = Prod(left, right)
		case p.peek() == '/':
			p.pos++
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = Prod(left, Power(right, Int(-1)))
		case p.canStartPrimary():
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = Prod(left, right)
		default:
			return left, nil
		}
	}
}

// canStartPrimary reports whether the current position could begin a new
// primary, triggering implicit multiplication.
func (p *parser) canStartPrimary() bool {
	if p.pos >= len(p.src) {
		return false
	}
	c := rune(p.src[p.pos])
	return unicode.IsDigit(c) || unicode.IsLetter(c) || c == '(' || c == '.'
}

func (p *parser) parseUnary() (Expr, error) {
	p.skipSpaces()
	switch p.peek() {
	case '-':
		p.pos++
		child, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Prod(Int(-1), child), nil
	case '+':
		p.pos++
		return p.parseUnary()
	}
	return p.parsePower()
}

func (p *parser) parsePower() (Expr, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	p.skipSpaces()
	if p.hasPrefix("**") {
		p.pos += 2
	} else if p.peek() == '^' {
		p.pos++
	} else {
		return base, nil
	}
	// Right-associative; unary so x**-2 parses.
	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return Power(base, exp), nil
}

func (p *parser) parsePrimary() (Expr, error) {
	p.skipSpaces()
	if p.pos >= len(p.src) {
		return nil, fmt.Errorf("unexpected end of input at pos %d", p.pos)
	}
	c := rune(p.peek())

	if p.peek() == '(' {
		p.pos++
		node, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return node, nil
	}

	if unicode.IsDigit(c) || c == '.' {
		return p.parseNumber()
	}

	if unicode.IsLetter(c) {
		return p.parseIdent()
	}

	got := p.src[p.pos:]
	if len(got) > 20 {
		got = got[:20] + "..."
	}
	return nil, fmt.Errorf("unexpected token at pos %d: %q", p.pos, got)
}

func (p *parser) parseNumber() (Expr, error) {
	start := p.pos
	sawDot := false
	for p.pos < len(p.src) {
		ch := p.src[p.pos]
		if ch == '.' {
			if sawDot {
				break
			}
			sawDot = true
			p.pos++
			continue
		}
		if !unicode.IsDigit(rune(ch)) {
			break
		}
		p.pos++
	}
	lit := p.src[start:p.pos]
	r, ok := new(big.Rat).SetString(lit)
	if !ok {
		return nil, fmt.Errorf("invalid number %q at pos %d", lit, start)
	}
	return fromRat(r), nil
}

func (p *parser) parseIdent() (Expr, error) {
	start := p.pos
	for p.pos < len(p.src) {
		ch := rune(p.src[p.pos])
		if !unicode.IsLetter(ch) && !unicode.IsDigit(ch) && ch != '_' {
			break
		}
		p.pos++
	}
	name := p.src[start:p.pos]

	if canonical, ok := knownFuncs[name]; ok {
		p.skipSpaces()
		if p.peek() == '(' {
			p.pos++
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if err := p.expect(')'); err != nil {
				return nil, err
			}
			return Fn(canonical, arg), nil
		}
		return nil, fmt.Errorf("function %q at pos %d requires an argument list", name, start)
	}

	switch name {
	case "pi":
		return Pi(), nil
	case "e", "E":
		return E(), nil
	}
	return Var(name), nil
}
