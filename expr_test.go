package gonewton_test

import (
	"math"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/njchilds90/gonewton"
)

func almostEqual(a, b, tol float64) bool {
	if a == b {
		return true
	}
	scale := math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
	return math.Abs(a-b) <= tol*scale
}

// ============================================================
// Num tests
// ============================================================

func TestNum_String(t *testing.T) {
	cases := []struct {
		n    *gonewton.Num
		want string
	}{
		{gonewton.N(42), "42"},
		{gonewton.N(-7), "-7"},
		{gonewton.F(1, 4), "0.25"},
		{gonewton.F(1, 3), "1/3"},
		{gonewton.NFloat(1.5), "1.5"},
	}
	for _, c := range cases {
		if got := c.n.String(); got != c.want {
			t.Errorf("want %s, got %s", c.want, got)
		}
	}
}

func TestNum_LaTeX_Rational(t *testing.T) {
	if got := gonewton.F(2, 3).LaTeX(); got != `\frac{2}{3}` {
		t.Errorf("want \\frac{2}{3}, got %s", got)
	}
	if got := gonewton.F(-1, 3).LaTeX(); got != `-\frac{1}{3}` {
		t.Errorf("want -\\frac{1}{3}, got %s", got)
	}
}

// ============================================================
// Simplification tests
// ============================================================

func TestSimplify_LikeTerms(t *testing.T) {
	x := gonewton.S("x")
	e := gonewton.AddOf(x, x, gonewton.N(3), gonewton.N(-1))
	if got := e.String(); got != "2*x + 2" {
		t.Errorf("want 2*x + 2, got %s", got)
	}
}

func TestSimplify_SameBase(t *testing.T) {
	x := gonewton.S("x")
	e := gonewton.MulOf(x, gonewton.PowOf(x, gonewton.N(2)), gonewton.N(4))
	if got := e.String(); got != "4*x^3" {
		t.Errorf("want 4*x^3, got %s", got)
	}
}

func TestSimplify_ZeroPowerStaysSymbolic(t *testing.T) {
	e, err := gonewton.Parse("0^-1")
	if err != nil {
		t.Fatal(err)
	}
	if v := gonewton.EvaluatorOf(e)(1); !math.IsInf(v, 1) {
		t.Errorf("0^-1 should evaluate to +Inf, got %g", v)
	}
}

func TestSimplify_ZeroOverZero(t *testing.T) {
	cases := []struct {
		in   string
		want float64 // NaN means undefined
	}{
		{"0^0", 1},
		{"0*x", 0},
		{"0/0", math.NaN()},
		{"x*0/0", math.NaN()},
		{"1/0 - 1/0", math.NaN()},
		{"x + 0/0", math.NaN()},
	}
	for _, c := range cases {
		e, err := gonewton.Parse(c.in)
		if err != nil {
			t.Errorf("Parse(%q): %v", c.in, err)
			continue
		}
		v := gonewton.EvaluatorOf(e)(2)
		if math.IsNaN(c.want) != math.IsNaN(v) || !math.IsNaN(v) && v != c.want {
			t.Errorf("%s at 2 = %g (simplified to %s), want %g", c.in, v, gonewton.String(e), c.want)
		}
	}
	if got := gonewton.String(gonewton.MustCompile("0/0").Expr); got != "0/0" {
		t.Errorf("0/0 simplified to %s", got)
	}
}

func TestSimplify_LiteralPowerFoldIsBounded(t *testing.T) {
	e, err := gonewton.Parse("(2^10)^20")
	if err != nil {
		t.Fatal(err)
	}
	want := new(big.Int).Lsh(big.NewInt(1), 200).String()
	if got := gonewton.String(e); got != want {
		t.Errorf("(2^10)^20 = %s, want %s", got, want)
	}

	done := make(chan gonewton.Expr, 1)
	go func() {
		e, err := gonewton.Parse("((((((9^20)^20)^20)^20)^20)^20)*x - 1")
		if err != nil {
			t.Error(err)
		}
		done <- e
	}()
	select {
	case e := <-done:
		if e == nil {
			return
		}
		if s := gonewton.String(e); !strings.Contains(s, "^") {
			t.Errorf("oversized power was folded: %.40s...", s)
		}
		if v := gonewton.EvaluatorOf(e)(1); !math.IsInf(v, 1) {
			t.Errorf("want +Inf, got %g", v)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("nested literal powers still simplifying after 5s")
	}
}

func TestSimplify_KeepsDomain(t *testing.T) {
	// sqrt(x)^2 is not x for negative x.
	e, err := gonewton.Parse("sqrt(x)^2")
	if err != nil {
		t.Fatal(err)
	}
	if v := gonewton.EvaluatorOf(e)(-4); !math.IsNaN(v) {
		t.Errorf("sqrt(-4)^2 should be NaN, got %g", v)
	}
}

// ============================================================
// Derivative tests
// ============================================================

func TestDiff_String(t *testing.T) {
	cases := []struct{ in, want string }{
		{"x^2 - 2", "2*x"},
		{"x^3", "3*x^2"},
		{"2x", "2"},
		{"5", "0"},
		{"pi", "0"},
		{"sin(x)", "cos(x)"},
		{"cos(x)", "-sin(x)"},
		{"e^x", "e^x"},
		{"exp(x)", "exp(x)"},
		{"ln(x)", "1/x"},
		{"sqrt(x)", "0.5/sqrt(x)"},
	}
	for _, c := range cases {
		fn, err := gonewton.Compile(c.in)
		if err != nil {
			t.Errorf("Compile(%q): %v", c.in, err)
			continue
		}
		if got := fn.Derivative.String(); got != c.want {
			t.Errorf("d/dx %s: want %q, got %q", c.in, c.want, got)
		}
	}
}

// TestDiff_FiniteDifference checks every derivative rule against a central
// difference quotient.
func TestDiff_FiniteDifference(t *testing.T) {
	cases := []struct {
		in string
		x  float64
	}{
		{"x^3 - x - 2", 1.5},
		{"sin(x)cos(x)", 0.7},
		{"exp(x^2)", 0.4},
		{"ln(x)/x", 2},
		{"log(3x+1)", 1},
		{"log10(x)", 3},
		{"sqrt(x) + 1", 4},
		{"tan(x)", 0.5},
		{"sec(x)", 0.5},
		{"cosec(x)", 1},
		{"cot(x)", 1},
		{"abs(x - 1)", 3},
		{"abs(x - 1)", -2},
		{"x^x", 1.5},
		{"2^x", 1},
		{"e^(2x)", 0.3},
		{"(x^2+1)^(1/3)", 2},
		{"1/(x^2 + 1)", 0.5},
		{"x sin(1/x)", 0.8},
		{"sin(x)^2 + cos(x)^2", 1.1},
		{"pi x^2 - e", 1.2},
	}
	const h = 1e-5
	for _, c := range cases {
		fn, err := gonewton.Compile(c.in)
		if err != nil {
			t.Errorf("Compile(%q): %v", c.in, err)
			continue
		}
		numeric := (fn.F(c.x+h) - fn.F(c.x-h)) / (2 * h)
		symbolic := fn.DF(c.x)
		if !almostEqual(symbolic, numeric, 1e-6) {
			t.Errorf("d/dx %s at %g: symbolic %g, numeric %g (f' = %s)",
				c.in, c.x, symbolic, numeric, fn.Derivative.String())
		}
	}
}

// ============================================================
// LaTeX tests
// ============================================================

func TestLaTeX(t *testing.T) {
	cases := []struct{ in, want string }{
		{"x^2 - 2", `x^{2} - 2`},
		{"x^2 - 3x + 1", `x^{2} - 3 x + 1`},
		{"sqrt(x)", `\sqrt{x}`},
		{"x^(1/2)", `\sqrt{x}`},
		{"1/x", `\frac{1}{x}`},
		{"x/2", `0.5 x`},
		{"-x", `-x`},
		{"sin(x)", `\sin\left(x\right)`},
		{"log(x)", `\ln\left(x\right)`},
		{"log10(x)", `\log_{10}\left(x\right)`},
		{"cosec(x)", `\csc\left(x\right)`},
		{"exp(x)", `e^{x}`},
		{"abs(x)", `\left|x\right|`},
		{"2pi", `2 \pi`},
		{"(x+1)^2", `\left(x + 1\right)^{2}`},
	}
	for _, c := range cases {
		e, err := gonewton.Parse(c.in)
		if err != nil {
			t.Errorf("Parse(%q): %v", c.in, err)
			continue
		}
		if got := gonewton.LaTeX(e); got != c.want {
			t.Errorf("LaTeX(%q): want %s, got %s", c.in, c.want, got)
		}
	}
}

func TestLaTeX_Derivative(t *testing.T) {
	fn := gonewton.MustCompile("sqrt(x)")
	if fn.DerivativeLaTeX != `\frac{1}{2 \sqrt{x}}` {
		t.Errorf("got %s", fn.DerivativeLaTeX)
	}
}

// ============================================================
// Evaluator tests
// ============================================================

func TestEvaluator_DomainErrorsDoNotPanic(t *testing.T) {
	cases := []struct {
		in string
		x  float64
	}{
		{"ln(x)", -1},
		{"sqrt(x)", -1},
		{"1/x", 0},
		{"log10(x)", 0},
		{"cot(x)", 0},
		{"x^x", -0.5},
	}
	for _, c := range cases {
		fn := gonewton.MustCompile(c.in)
		v := fn.F(c.x)
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			t.Errorf("%s at %g: want non-finite, got %g", c.in, c.x, v)
		}
	}
}
