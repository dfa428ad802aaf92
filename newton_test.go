package gonewton_test

import (
	"errors"
	"math"
	"testing"

	"github.com/kylelemons/godebug/pretty"
	"github.com/njchilds90/gonewton"
)

func iterate(t *testing.T, src string, x0, epsilon float64) gonewton.Outcome {
	t.Helper()
	fn, err := gonewton.Compile(src)
	if err != nil {
		t.Fatalf("Compile(%q): %v", src, err)
	}
	return gonewton.Iterate(fn.F, fn.DF, x0, epsilon, 0)
}

// ============================================================
// Engine scenarios
// ============================================================

func TestIterate_SquareRootOfTwo(t *testing.T) {
	out, ok := iterate(t, "x^2 - 2", 1, 0.001).(*gonewton.Converged)
	if !ok {
		t.Fatalf("want *Converged")
	}
	if math.Abs(out.Solution-math.Sqrt2) > 1e-6 {
		t.Errorf("want %g, got %g", math.Sqrt2, out.Solution)
	}
	if len(out.Steps) != 4 {
		t.Errorf("want 4 steps, got %d", len(out.Steps))
	}
	first := out.Steps[0]
	if first.X != 1 || first.FX != -1 || first.DFX != 2 || first.Next != 1.5 || first.Error != 0.5 {
		t.Errorf("unexpected first step %+v", first)
	}
}

func TestIterate_Cubic(t *testing.T) {
	out, ok := iterate(t, "x^3 - x - 2", 1.5, 0.001).(*gonewton.Converged)
	if !ok {
		t.Fatalf("want *Converged")
	}
	if math.Abs(out.Solution-1.5213797) > 1e-4 {
		t.Errorf("want ~1.5214, got %g", out.Solution)
	}
}

func TestIterate_DerivativeTooSmall(t *testing.T) {
	out := iterate(t, "x^2 + 1", 0, 0.001)
	f, ok := out.(*gonewton.Failure)
	if !ok {
		t.Fatalf("want *Failure, got %T", out)
	}
	if f.Status() != gonewton.StatusDerivativeTooSmall || f.Iteration != 0 || f.X != 0 {
		t.Errorf("unexpected failure %+v", f)
	}
	if f.Error() != "derivative too small at x = 0" {
		t.Errorf("got reason %q", f.Error())
	}
	if !errors.Is(f, gonewton.ErrDerivativeTooSmall) {
		t.Errorf("want ErrDerivativeTooSmall")
	}
}

// The guard wins even when f(x_n) already satisfies epsilon.
func TestIterate_GuardPrecedesConvergence(t *testing.T) {
	out := iterate(t, "x^2", 0, 0.001)
	if out.Status() != gonewton.StatusDerivativeTooSmall {
		t.Errorf("want derivative_too_small, got %s", out.Status())
	}
}

func TestIterate_GuardNeverComputesNext(t *testing.T) {
	calls := 0
	f := func(x float64) float64 { calls++; return x*x + 1 }
	df := func(x float64) float64 { return 0 }
	out := gonewton.Iterate(f, df, 3, 0.001, 0)
	if out.Status() != gonewton.StatusDerivativeTooSmall {
		t.Fatalf("want derivative_too_small, got %s", out.Status())
	}
	if calls != 1 {
		t.Errorf("f evaluated %d times", calls)
	}
}

func TestIterate_MaxIterations(t *testing.T) {
	fn := gonewton.MustCompile("x^2 + 1")
	out := gonewton.Iterate(fn.F, fn.DF, 0.5, 0.001, 5)
	f, ok := out.(*gonewton.Failure)
	if !ok {
		t.Fatalf("want *Failure, got %T", out)
	}
	if f.Status() != gonewton.StatusMaxIterations || f.Iteration != 5 {
		t.Errorf("unexpected failure %+v", f)
	}
	if f.Error() != "did not converge after 5 iterations" {
		t.Errorf("got reason %q", f.Error())
	}
	if !errors.Is(f, gonewton.ErrNoConvergence) {
		t.Errorf("want ErrNoConvergence")
	}
}

func TestIterate_DefaultCeiling(t *testing.T) {
	calls := 0
	f := func(x float64) float64 { calls++; return 1 }
	df := func(x float64) float64 { return 1 }
	out := gonewton.Iterate(f, df, 0, 0.001, 0)
	if out.Status() != gonewton.StatusMaxIterations || calls != gonewton.MaxIterations {
		t.Errorf("status %s after %d evaluations", out.Status(), calls)
	}
}

// ============================================================
// Trace invariants
// ============================================================

func TestIterate_TraceInvariants(t *testing.T) {
	inputs := []struct {
		src     string
		x0, eps float64
	}{
		{"x^2 - 2", 1, 0.001},
		{"x^3 - x - 2", 1.5, 1e-9},
		{"cos(x) - x", 1, 1e-10},
		{"exp(x) - 3", 0, 0.001},
	}
	for _, in := range inputs {
		out, ok := iterate(t, in.src, in.x0, in.eps).(*gonewton.Converged)
		if !ok {
			t.Errorf("%s: want *Converged", in.src)
			continue
		}
		if len(out.Steps) == 0 || len(out.Steps) > gonewton.MaxIterations {
			t.Errorf("%s: trace length %d", in.src, len(out.Steps))
			continue
		}
		for i, s := range out.Steps {
			if s.Iteration != i {
				t.Errorf("%s: step %d has iteration %d", in.src, i, s.Iteration)
			}
			if s.Error != math.Abs(s.Next-s.X) {
				t.Errorf("%s: step %d error mismatch", in.src, i)
			}
			if i > 0 && s.X != out.Steps[i-1].Next {
				t.Errorf("%s: step %d does not continue from the previous estimate", in.src, i)
			}
		}
		last := out.Steps[len(out.Steps)-1]
		if math.Abs(last.FX) >= in.eps {
			t.Errorf("%s: last |f| = %g not below %g", in.src, math.Abs(last.FX), in.eps)
		}
		if out.Solution != last.Next {
			t.Errorf("%s: solution %g is not the last next estimate %g", in.src, out.Solution, last.Next)
		}
	}
}

func TestIterate_Deterministic(t *testing.T) {
	a := iterate(t, "x^3 - x - 2", 1.5, 1e-9)
	b := iterate(t, "x^3 - x - 2", 1.5, 1e-9)
	if diff := pretty.Compare(a, b); diff != "" {
		t.Errorf("traces differ (-first +second):\n%s", diff)
	}
}

func TestStatus_String(t *testing.T) {
	cases := map[gonewton.Status]string{
		gonewton.StatusConverged:          "converged",
		gonewton.StatusDerivativeTooSmall: "derivative_too_small",
		gonewton.StatusMaxIterations:      "max_iterations_exceeded",
	}
	for s, want := range cases {
		if s.String() != want {
			t.Errorf("want %s, got %s", want, s.String())
		}
	}
}
