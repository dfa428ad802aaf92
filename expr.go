// Package gonewton finds real roots of user-supplied expressions with the
// Newton-Raphson method.
//
// Design goals:
//   - Closed, table-driven function whitelist; no reflection, no eval
//   - Exact rational constants (math/big.Rat), float64 evaluation
//   - Symbolic first derivative of every accepted expression
//   - Deterministic output: identical input yields identical traces
//   - JSON, LaTeX and tool-call friendly results
package gonewton

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Var is the single free variable accepted in expressions.
const Var = "x"

// Evaluator maps a real input to a real output. Domain errors surface as
// NaN or ±Inf, never as a panic.
type Evaluator func(x float64) float64

// ============================================================
// Core Interface
// ============================================================

type Expr interface {
	Simplify() Expr
	String() string
	LaTeX() string
	Diff(varName string) Expr
	Equal(other Expr) bool
	compile() Evaluator
}

// Num is an exact rational literal. Arithmetic on Nums during simplification
// stays exact; only compile converts to float64.
type Num struct{ r *big.Rat }

func N(n int64) *Num { return rat(new(big.Rat).SetInt64(n)) }

// F returns p/q. It panics when q is zero.
func F(p, q int64) *Num {
	if q == 0 {
		panic("gonewton: denominator is zero")
	}
	return rat(big.NewRat(p, q))
}

// NFloat converts f exactly; 0.1 becomes 3602879701896397/36028797018963968.
func NFloat(f float64) *Num { return rat(new(big.Rat).SetFloat64(f)) }

func rat(r *big.Rat) *Num { return &Num{r: r} }

func (n *Num) Simplify() Expr   { return n }
func (n *Num) Diff(string) Expr { return N(0) }
func (n *Num) Equal(other Expr) bool {
	m, ok := other.(*Num)
	return ok && n.r.Cmp(m.r) == 0
}

func (n *Num) Float64() float64 {
	f, _ := n.r.Float64()
	return f
}

// is reports whether n equals the integer v.
func (n *Num) is(v int64) bool {
	return n.r.IsInt() && n.r.Num().IsInt64() && n.r.Num().Int64() == v
}

func (n *Num) IsZero() bool     { return n.r.Sign() == 0 }
func (n *Num) IsOne() bool      { return n.is(1) }
func (n *Num) IsInteger() bool  { return n.r.IsInt() }
func (n *Num) IsNegative() bool { return n.r.Sign() < 0 }

func (n *Num) String() string {
	if n.r.IsInt() {
		return n.r.Num().String()
	}
	if s, ok := decimalString(n.r); ok {
		return s
	}
	return n.r.RatString()
}

func (n *Num) LaTeX() string {
	if n.r.IsInt() {
		return n.r.Num().String()
	}
	if s, ok := decimalString(n.r); ok {
		return s
	}
	abs := new(big.Rat).Abs(n.r)
	out := `\frac{` + abs.Num().String() + `}{` + abs.Denom().String() + `}`
	if n.IsNegative() {
		return "-" + out
	}
	return out
}

func (n *Num) compile() Evaluator {
	v := n.Float64()
	return func(float64) float64 { return v }
}

// decimalString renders r as a decimal when its expansion terminates, which is
// the case for every literal a user can type.
func decimalString(r *big.Rat) (string, bool) {
	d := new(big.Int).Set(r.Denom())
	twos, fives := 0, 0
	for d.Bit(0) == 0 {
		d.Rsh(d, 1)
		twos++
	}
	five, m := big.NewInt(5), new(big.Int)
	for {
		q, rem := new(big.Int).QuoRem(d, five, m)
		if rem.Sign() != 0 {
			break
		}
		d = q
		fives++
	}
	if d.Cmp(big.NewInt(1)) != 0 {
		return "", false
	}
	places := max(twos, fives)
	if places > 30 {
		return "", false
	}
	return r.FloatString(places), true
}

func sum(a, b *Num) *Num     { return rat(new(big.Rat).Add(a.r, b.r)) }
func product(a, b *Num) *Num { return rat(new(big.Rat).Mul(a.r, b.r)) }
func negate(a *Num) *Num     { return rat(new(big.Rat).Neg(a.r)) }
func reciprocal(a *Num) *Num {
	if a.IsZero() {
		panic("gonewton: division by zero")
	}
	return rat(new(big.Rat).Inv(a.r))
}

// ============================================================
// Sym — the free variable
// ============================================================

type Sym struct{ name string }

func S(name string) *Sym              { return &Sym{name: name} }
func (s *Sym) Simplify() Expr         { return s }
func (s *Sym) String() string         { return s.name }
func (s *Sym) LaTeX() string          { return s.name }
func (s *Sym) Equal(other Expr) bool  { o, ok := other.(*Sym); return ok && s.name == o.name }
func (s *Sym) compile() Evaluator     { return func(x float64) float64 { return x } }
func (s *Sym) Diff(varName string) Expr {
	if s.name == varName {
		return N(1)
	}
	return N(0)
}

// ============================================================
// Const — named real constants (pi, e)
// ============================================================

type Const struct {
	name  string
	latex string
	value float64
}

var (
	Pi = &Const{name: "pi", latex: "\\pi", value: math.Pi}
	E  = &Const{name: "e", latex: "e", value: math.E}
)

func (c *Const) Simplify() Expr        { return c }
func (c *Const) String() string        { return c.name }
func (c *Const) LaTeX() string         { return c.latex }
func (c *Const) Diff(string) Expr      { return N(0) }
func (c *Const) Equal(other Expr) bool { o, ok := other.(*Const); return ok && c.name == o.name }
func (c *Const) Value() float64        { return c.value }
func (c *Const) compile() Evaluator {
	v := c.value
	return func(float64) float64 { return v }
}

// ============================================================
// Add — sum of terms
// ============================================================

type Add struct{ terms []Expr }

func AddOf(terms ...Expr) Expr { return (&Add{terms: terms}).Simplify() }

// Simplify flattens nested sums, folds numbers and merges like terms. Terms
// keep the order in which they first appear; the numeric constant goes last.
func (a *Add) Simplify() Expr {
	flat := flatten(a.terms, func(e Expr) ([]Expr, bool) {
		inner, ok := e.(*Add)
		if !ok {
			return nil, false
		}
		return inner.terms, true
	})
	numAccum := N(0)
	type like struct {
		coeff *Num
		rest  Expr
	}
	var order []string
	groups := map[string]*like{}
	for i, t := range flat {
		if v, ok := t.(*Num); ok {
			numAccum = sum(numAccum, v)
			continue
		}
		coeff, rest := splitCoefficient(t)
		key := rest.String()
		if singular(rest) {
			// Never merged: 1/0 - 1/0 is NaN, not 0.
			key += "#" + strconv.Itoa(i)
		}
		g, seen := groups[key]
		if !seen {
			order = append(order, key)
			groups[key] = &like{coeff: coeff, rest: rest}
			continue
		}
		g.coeff = sum(g.coeff, coeff)
	}
	result := make([]Expr, 0, len(order)+1)
	for _, key := range order {
		g := groups[key]
		switch {
		case g.coeff.IsZero() && !singular(g.rest):
		case g.coeff.IsOne():
			result = append(result, g.rest)
		default:
			result = append(result, MulOf(g.coeff, g.rest))
		}
	}
	if !numAccum.IsZero() {
		result = append(result, numAccum)
	}
	if len(result) == 0 {
		return N(0)
	}
	if len(result) == 1 {
		return result[0]
	}
	return &Add{terms: result}
}

func (a *Add) String() string { return a.join(Expr.String) }
func (a *Add) LaTeX() string  { return a.join(Expr.LaTeX) }

// join writes the terms with binary signs: a negative term after the first
// is rendered as " - |t|".
func (a *Add) join(render func(Expr) string) string {
	var b strings.Builder
	for i, t := range a.terms {
		neg, abs := splitSign(t)
		if i > 0 {
			b.WriteString(" ")
		}
		if neg {
			b.WriteString("-")
		} else if i > 0 {
			b.WriteString("+")
		}
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(render(abs))
	}
	return b.String()
}

// Diff is linear: the sum of the term derivatives.
func (a *Add) Diff(v string) Expr {
	out := make([]Expr, 0, len(a.terms))
	for _, t := range a.terms {
		out = append(out, t.Diff(v))
	}
	return AddOf(out...)
}

func (a *Add) Equal(other Expr) bool {
	o, ok := other.(*Add)
	return ok && equalAll(a.terms, o.terms)
}

func (a *Add) compile() Evaluator {
	fs := make([]Evaluator, len(a.terms))
	for i, t := range a.terms {
		fs[i] = t.compile()
	}
	return func(x float64) float64 {
		acc := 0.0
		for _, f := range fs {
			acc += f(x)
		}
		return acc
	}
}

// ============================================================
// Mul — product of factors
// ============================================================

type Mul struct{ factors []Expr }

func MulOf(factors ...Expr) Expr { return (&Mul{factors: factors}).Simplify() }

// Simplify flattens nested products, folds the numeric coefficient to the
// front and merges repeated bases into a single power.
func (m *Mul) Simplify() Expr {
	flat := flatten(m.factors, func(e Expr) ([]Expr, bool) {
		inner, ok := e.(*Mul)
		if !ok {
			return nil, false
		}
		return inner.factors, true
	})
	coeff := N(1)
	type power struct {
		base Expr
		exps []Expr
	}
	var order []string
	bases := map[string]*power{}
	for _, f := range flat {
		if v, ok := f.(*Num); ok {
			coeff = product(coeff, v)
			continue
		}
		base, exp := Expr(f), Expr(N(1))
		if p, ok := f.(*Pow); ok {
			base, exp = p.base, p.exp
		}
		key := base.String()
		if pw, seen := bases[key]; seen {
			pw.exps = append(pw.exps, exp)
			continue
		}
		order = append(order, key)
		bases[key] = &power{base: base, exps: []Expr{exp}}
	}
	if coeff.IsZero() {
		return zeroProduct(flat)
	}
	others := make([]Expr, 0, len(order))
	for _, key := range order {
		pw := bases[key]
		var f Expr
		if len(pw.exps) == 1 {
			f = PowOf(pw.base, pw.exps[0])
		} else {
			f = PowOf(pw.base, AddOf(pw.exps...))
		}
		if n, ok := f.(*Num); ok {
			coeff = product(coeff, n)
			continue
		}
		others = append(others, f)
	}
	if coeff.IsZero() {
		return zeroProduct(others)
	}
	if len(others) == 0 {
		return coeff
	}
	if coeff.IsOne() {
		if len(others) == 1 {
			return others[0]
		}
		return &Mul{factors: others}
	}
	return &Mul{factors: append([]Expr{coeff}, others...)}
}

func (m *Mul) String() string {
	coeff, num, den := m.fraction()
	parts := make([]string, len(num))
	for i, f := range num {
		parts[i] = factorString(f)
	}
	s := strings.Join(parts, "*")
	coeffStr := coeff.String()
	if !coeff.IsInteger() {
		if _, ok := decimalString(coeff.r); !ok {
			coeffStr = "(" + coeffStr + ")"
		}
	}
	switch {
	case len(num) == 0:
		s = coeffStr
	case coeff.is(-1):
		s = "-" + s
	case !coeff.IsOne():
		s = coeffStr + "*" + s
	}
	if len(den) == 0 {
		return s
	}
	if len(den) == 1 {
		return s + "/" + denominatorString(den[0])
	}
	denStr := make([]string, len(den))
	for i, f := range den {
		denStr[i] = factorString(f)
	}
	return s + "/(" + strings.Join(denStr, "*") + ")"
}

func (m *Mul) LaTeX() string {
	coeff, num, den := m.fraction()
	sign := ""
	if coeff.IsNegative() {
		sign = "-"
		coeff = negate(coeff)
	}
	numCoeff := rat(new(big.Rat).SetInt(coeff.r.Num()))
	denCoeff := rat(new(big.Rat).SetInt(coeff.r.Denom()))
	if _, ok := decimalString(coeff.r); ok && !coeff.IsInteger() && len(den) == 0 {
		// Terminating coefficients read better inline: 0.5 x rather than \frac{1}{2} x.
		numCoeff, denCoeff = coeff, N(1)
	}
	numParts := make([]string, 0, len(num)+1)
	if !numCoeff.IsOne() || len(num) == 0 {
		numParts = append(numParts, numCoeff.LaTeX())
	}
	for _, f := range num {
		numParts = append(numParts, factorLaTeX(f))
	}
	denParts := make([]string, 0, len(den)+1)
	if !denCoeff.IsOne() {
		denParts = append(denParts, denCoeff.LaTeX())
	}
	for _, f := range den {
		denParts = append(denParts, factorLaTeX(f))
	}
	numStr := joinLaTeX(numParts)
	if len(denParts) == 0 {
		return sign + numStr
	}
	return sign + "\\frac{" + numStr + "}{" + joinLaTeX(denParts) + "}"
}

// joinLaTeX juxtaposes factors, switching to \cdot where two numbers would
// otherwise run together.
func joinLaTeX(parts []string) string {
	var b strings.Builder
	for i, p := range parts {
		if i > 0 {
			if p != "" && p[0] >= '0' && p[0] <= '9' {
				b.WriteString(" \\cdot ")
			} else {
				b.WriteString(" ")
			}
		}
		b.WriteString(p)
	}
	return b.String()
}

// fraction splits m into its coefficient, the factors of the numerator and
// the factors of the denominator (negative powers, exponent negated).
func (m *Mul) fraction() (coeff *Num, num, den []Expr) {
	coeff = N(1)
	for _, f := range m.factors {
		if n, ok := f.(*Num); ok {
			coeff = product(coeff, n)
			continue
		}
		if p, ok := f.(*Pow); ok {
			if en, ok2 := p.exp.(*Num); ok2 && en.IsNegative() {
				den = append(den, PowOf(p.base, negate(en)))
				continue
			}
		}
		num = append(num, f)
	}
	return coeff, num, den
}

func factorString(f Expr) string {
	if _, isAdd := f.(*Add); isAdd {
		return "(" + f.String() + ")"
	}
	return f.String()
}

func denominatorString(f Expr) string {
	switch f.(type) {
	case *Add, *Mul:
		return "(" + f.String() + ")"
	}
	return f.String()
}

func factorLaTeX(f Expr) string {
	if _, isAdd := f.(*Add); isAdd {
		return "\\left(" + f.LaTeX() + "\\right)"
	}
	return f.LaTeX()
}

// Diff applies the general product rule: for each factor, its derivative
// times every other factor.
func (m *Mul) Diff(v string) Expr {
	terms := make([]Expr, 0, len(m.factors))
	for i := range m.factors {
		d := m.factors[i].Diff(v)
		if isInt(d, 0) {
			continue
		}
		term := make([]Expr, 0, len(m.factors))
		term = append(term, d)
		term = append(term, m.factors[:i]...)
		term = append(term, m.factors[i+1:]...)
		terms = append(terms, MulOf(term...))
	}
	return AddOf(terms...)
}

func (m *Mul) Equal(other Expr) bool {
	o, ok := other.(*Mul)
	return ok && equalAll(m.factors, o.factors)
}

func (m *Mul) compile() Evaluator {
	fs := make([]Evaluator, len(m.factors))
	for i, f := range m.factors {
		fs[i] = f.compile()
	}
	return func(x float64) float64 {
		acc := 1.0
		for _, f := range fs {
			acc *= f(x)
		}
		return acc
	}
}

// zeroProduct is the value of 0 times factors: 0, unless a factor divides by
// a literal zero, in which case the product stays symbolic and evaluates to
// NaN.
func zeroProduct(factors []Expr) Expr {
	var keep []Expr
	for _, f := range factors {
		if singular(f) {
			keep = append(keep, f)
		}
	}
	if len(keep) == 0 {
		return N(0)
	}
	return &Mul{factors: append([]Expr{N(0)}, keep...)}
}

// singular reports whether e contains a power of the literal 0 that could not
// be folded, such as 0^-1 or 0^x.
func singular(e Expr) bool {
	switch v := e.(type) {
	case *Pow:
		b, ok := v.base.(*Num)
		return ok && b.IsZero()
	case *Mul:
		for _, f := range v.factors {
			if singular(f) {
				return true
			}
		}
	}
	return false
}

// splitCoefficient separates the leading numeric coefficient of e.
func splitCoefficient(e Expr) (*Num, Expr) {
	m, ok := e.(*Mul)
	if !ok {
		return N(1), e
	}
	if c, ok := m.factors[0].(*Num); ok {
		rest := m.factors[1:]
		if len(rest) == 1 {
			return c, rest[0]
		}
		return c, &Mul{factors: rest}
	}
	return N(1), e
}

// splitSign reports whether e prints with a leading minus and returns its
// magnitude.
func splitSign(e Expr) (bool, Expr) {
	switch v := e.(type) {
	case *Num:
		if v.IsNegative() {
			return true, negate(v)
		}
	case *Mul:
		if c, ok := v.factors[0].(*Num); ok && c.IsNegative() {
			if c.is(-1) {
				rest := v.factors[1:]
				if len(rest) == 1 {
					return true, rest[0]
				}
				return true, &Mul{factors: rest}
			}
			return true, &Mul{factors: append([]Expr{negate(c)}, v.factors[1:]...)}
		}
	}
	return false, e
}

// ============================================================
// Pow — base^exponent
// ============================================================

type Pow struct{ base, exp Expr }

func PowOf(base, exp Expr) Expr { return (&Pow{base: base, exp: exp}).Simplify() }

// Simplify folds literal powers exactly while the result stays below
// maxFoldBits; larger ones are left symbolic and evaluate to ±Inf or 0 in
// float64. x^0 is 1 for every base, 0^0 included. A zero base with a negative
// or symbolic exponent is left symbolic, so 0^-1 evaluates to +Inf.
func (p *Pow) Simplify() Expr {
	base, exp := p.base.Simplify(), p.exp.Simplify()
	bn, baseIsNum := base.(*Num)
	en, expIsNum := exp.(*Num)

	switch {
	case expIsNum && en.IsZero():
		return N(1)
	case expIsNum && en.IsOne():
		return base
	case baseIsNum && bn.IsZero():
		if expIsNum && en.r.Sign() > 0 {
			return N(0)
		}
		return &Pow{base: base, exp: exp}
	case baseIsNum && bn.IsOne():
		return N(1)
	case baseIsNum && expIsNum:
		if k, ok := smallInt(en); ok && foldable(bn, k) {
			return intPower(bn, k)
		}
	case expIsNum && en.IsInteger():
		// (b^m)^n = b^(m*n) holds for integer n only. The product exponent
		// goes back through PowOf, which applies the same size bound.
		if inner, ok := base.(*Pow); ok {
			return PowOf(inner.base, MulOf(inner.exp, en))
		}
	}
	return &Pow{base: base, exp: exp}
}

// smallInt returns n as an int64 when it is an integer in [-20, 20].
func smallInt(n *Num) (int64, bool) {
	if !n.IsInteger() || !n.r.Num().IsInt64() {
		return 0, false
	}
	k := n.r.Num().Int64()
	return k, k >= -20 && k <= 20
}

// maxFoldBits bounds the size of a literal power folded to an exact rational.
const maxFoldBits = 4096

// foldable reports whether b^k fits in maxFoldBits.
func foldable(b *Num, k int64) bool {
	if k < 0 {
		k = -k
	}
	bits := int64(b.r.Num().BitLen() + b.r.Denom().BitLen())
	return bits*k <= maxFoldBits
}

// intPower computes b^k exactly by repeated multiplication. b is non-zero.
func intPower(b *Num, k int64) *Num {
	out := N(1)
	for i := int64(0); i < k || i < -k; i++ {
		out = product(out, b)
	}
	if k < 0 {
		return reciprocal(out)
	}
	return out
}

func (p *Pow) String() string {
	if isHalf(p.exp) {
		return "sqrt(" + p.base.String() + ")"
	}
	if en, ok := p.exp.(*Num); ok && en.IsNegative() {
		return "1/" + denominatorString(PowOf(p.base, negate(en)))
	}
	baseStr := p.base.String()
	if _, isFunc := p.base.(*Func); !isFunc && needsBaseParens(p.base) {
		baseStr = "(" + baseStr + ")"
	}
	expStr := p.exp.String()
	switch v := p.exp.(type) {
	case *Sym, *Const:
	case *Num:
		if !v.IsInteger() {
			expStr = "(" + expStr + ")"
		}
	default:
		expStr = "(" + expStr + ")"
	}
	return baseStr + "^" + expStr
}

func (p *Pow) LaTeX() string {
	if isHalf(p.exp) {
		return "\\sqrt{" + p.base.LaTeX() + "}"
	}
	if en, ok := p.exp.(*Num); ok && en.IsNegative() {
		return "\\frac{1}{" + PowOf(p.base, negate(en)).LaTeX() + "}"
	}
	baseStr := p.base.LaTeX()
	if needsBaseParens(p.base) {
		baseStr = "\\left(" + baseStr + "\\right)"
	}
	return baseStr + "^{" + p.exp.LaTeX() + "}"
}

func needsBaseParens(base Expr) bool {
	switch v := base.(type) {
	case *Add, *Mul, *Pow, *Func:
		return true
	case *Num:
		return v.IsNegative() || !v.IsInteger()
	}
	return false
}

func isHalf(e Expr) bool {
	n, ok := e.(*Num)
	return ok && n.r.Cmp(big.NewRat(1, 2)) == 0
}

// Diff uses the power rule when the exponent is constant, the exponential
// rule when the base is, and d(u^v) = u^v (v' ln u + v u'/u) otherwise.
func (p *Pow) Diff(v string) Expr {
	du, dv := p.base.Diff(v), p.exp.Diff(v)
	switch {
	case isInt(dv, 0):
		return MulOf(p.exp, PowOf(p.base, AddOf(p.exp, N(-1))), du)
	case isInt(du, 0):
		return MulOf(p, LnOf(p.base), dv)
	}
	return MulOf(p, AddOf(
		MulOf(dv, LnOf(p.base)),
		MulOf(p.exp, du, PowOf(p.base, N(-1))),
	))
}

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

func (p *Pow) compile() Evaluator {
	base := p.base.compile()
	if isHalf(p.exp) {
		return func(x float64) float64 { return math.Sqrt(base(x)) }
	}
	if en, ok := p.exp.(*Num); ok && en.IsInteger() {
		e := en.Float64()
		return func(x float64) float64 { return math.Pow(base(x), e) }
	}
	exp := p.exp.compile()
	return func(x float64) float64 { return math.Pow(base(x), exp(x)) }
}

// ============================================================
// Func — whitelisted unary function applications
// ============================================================

type Func struct {
	spec *funcSpec
	arg  Expr
}

func funcOf(name string, arg Expr) *Func {
	spec, ok := functions[name]
	if !ok {
		panic("gonewton: unknown function " + name)
	}
	return &Func{spec: spec, arg: arg}
}

func LnOf(arg Expr) Expr    { return funcOf("ln", arg).Simplify() }
func Log10Of(arg Expr) Expr { return funcOf("log10", arg).Simplify() }
func SinOf(arg Expr) Expr   { return funcOf("sin", arg).Simplify() }
func CosOf(arg Expr) Expr   { return funcOf("cos", arg).Simplify() }
func TanOf(arg Expr) Expr   { return funcOf("tan", arg).Simplify() }
func SecOf(arg Expr) Expr   { return funcOf("sec", arg).Simplify() }
func CosecOf(arg Expr) Expr { return funcOf("cosec", arg).Simplify() }
func CotOf(arg Expr) Expr   { return funcOf("cot", arg).Simplify() }
func SqrtOf(arg Expr) Expr  { return funcOf("sqrt", arg).Simplify() }
func ExpOf(arg Expr) Expr   { return funcOf("exp", arg).Simplify() }
func AbsOf(arg Expr) Expr   { return funcOf("abs", arg).Simplify() }

// Simplify applies only identities that hold on the whole real line, so the
// domain of the original expression is preserved.
func (f *Func) Simplify() Expr {
	arg := f.arg.Simplify()
	switch f.spec.name {
	case "sin", "tan":
		if isInt(arg, 0) {
			return N(0)
		}
	case "cos", "exp":
		if isInt(arg, 0) {
			return N(1)
		}
	case "ln":
		if isInt(arg, 1) {
			return N(0)
		}
		if arg.Equal(E) {
			return N(1)
		}
		if inner, ok := arg.(*Func); ok && inner.spec.name == "exp" {
			return inner.arg
		}
	case "log10":
		if isInt(arg, 1) {
			return N(0)
		}
	case "sqrt":
		if n, ok := arg.(*Num); ok && (n.IsZero() || n.IsOne()) {
			return n
		}
	case "abs":
		if n, ok := arg.(*Num); ok {
			if n.IsNegative() {
				return negate(n)
			}
			return n
		}
		if inner, ok := arg.(*Func); ok && inner.spec.name == "abs" {
			return inner
		}
	}
	return &Func{spec: f.spec, arg: arg}
}

func (f *Func) String() string { return f.spec.name + "(" + f.arg.String() + ")" }
func (f *Func) LaTeX() string  { return f.spec.latex(f.arg.LaTeX()) }

func (f *Func) Diff(varName string) Expr {
	du := f.arg.Diff(varName)
	if isInt(du, 0) {
		return N(0)
	}
	return MulOf(f.spec.deriv(f.arg), du)
}

func (f *Func) Equal(other Expr) bool {
	o, ok := other.(*Func)
	return ok && f.spec.name == o.spec.name && f.arg.Equal(o.arg)
}

func (f *Func) compile() Evaluator {
	arg, eval := f.arg.compile(), f.spec.eval
	return func(x float64) float64 { return eval(arg(x)) }
}

func (f *Func) FuncName() string { return f.spec.name }

// flatten simplifies each expression and splices in the children of any
// result that unwrap recognises as the same n-ary node.
func flatten(in []Expr, unwrap func(Expr) ([]Expr, bool)) []Expr {
	out := make([]Expr, 0, len(in))
	for _, e := range in {
		s := e.Simplify()
		if children, ok := unwrap(s); ok {
			out = append(out, children...)
			continue
		}
		out = append(out, s)
	}
	return out
}

func equalAll(a, b []Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// isInt reports whether e is the literal integer v.
func isInt(e Expr, v int64) bool {
	n, ok := e.(*Num)
	return ok && n.is(v)
}

// ============================================================
// Top-level convenience functions
// ============================================================

func Simplify(e Expr) Expr { return e.Simplify() }
func String(e Expr) string { return e.String() }
func LaTeX(e Expr) string  { return e.LaTeX() }

// Diff returns the simplified derivative of expr with respect to varName.
func Diff(expr Expr, varName string) Expr {
	return expr.Diff(varName).Simplify()
}

// EvaluatorOf compiles e into a closure tree.
func EvaluatorOf(e Expr) Evaluator { return e.compile() }
