package gonewton

import (
	"encoding/json"
	"fmt"
	"math"
)

const (
	// MaxIterations is the hard ceiling on Newton steps.
	MaxIterations = 100
	// DerivativeThreshold is the magnitude below which f'(x) is not divided by.
	DerivativeThreshold = 1e-8
)

// Step is one Newton-Raphson iteration.
type Step struct {
	Iteration int     `json:"iteration"`
	X         float64 `json:"x_n"`
	FX        float64 `json:"f_x"`
	DFX       float64 `json:"df_x"`
	Next      float64 `json:"next_x"`
	Error     float64 `json:"error"`
}

// MarshalJSON writes non-finite fields as null; f'(x) may be infinite in a
// converged trace (sqrt(x) at 0).
func (s Step) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Iteration int   `json:"iteration"`
		X         Value `json:"x_n"`
		FX        Value `json:"f_x"`
		DFX       Value `json:"df_x"`
		Next      Value `json:"next_x"`
		Error     Value `json:"error"`
	}{s.Iteration, Value(s.X), Value(s.FX), Value(s.DFX), Value(s.Next), Value(s.Error)})
}

// Status is the terminal state of an iteration run.
type Status int

const (
	StatusConverged Status = iota
	StatusDerivativeTooSmall
	StatusMaxIterations
)

func (s Status) String() string {
	switch s {
	case StatusConverged:
		return "converged"
	case StatusDerivativeTooSmall:
		return "derivative_too_small"
	case StatusMaxIterations:
		return "max_iterations_exceeded"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Outcome is the result of Iterate: exactly one of *Converged or *Failure.
type Outcome interface {
	Status() Status
	outcome()
}

// Converged holds the full trace of a successful run. Solution is the next
// estimate computed in the last step.
type Converged struct {
	Steps    []Step
	Solution float64
}

func (*Converged) Status() Status { return StatusConverged }
func (*Converged) outcome()       {}

// Failure reports why the method stopped without a root. The partial trace is
// not kept.
type Failure struct {
	Kind      Status
	Iteration int
	X         float64
	Reason    string
}

func (f *Failure) Status() Status { return f.Kind }
func (*Failure) outcome()         {}
func (f *Failure) Error() string  { return f.Reason }

func (f *Failure) Unwrap() error {
	if f.Kind == StatusDerivativeTooSmall {
		return ErrDerivativeTooSmall
	}
	return ErrNoConvergence
}

// Iterate runs Newton-Raphson from x0. A step whose |f'(x_n)| is below
// DerivativeThreshold aborts before x_{n+1} is computed. Otherwise the step is
// recorded, and the run converges when |f(x_n)| < epsilon, reporting x_{n+1}
// as the solution. maxIterations <= 0 selects MaxIterations.
func Iterate(f, df Evaluator, x0, epsilon float64, maxIterations int) Outcome {
	if maxIterations <= 0 {
		maxIterations = MaxIterations
	}
	steps := make([]Step, 0, 8)
	current := x0
	for i := 0; i < maxIterations; i++ {
		fx := f(current)
		dfx := df(current)
		if math.Abs(dfx) < DerivativeThreshold {
			return &Failure{
				Kind:      StatusDerivativeTooSmall,
				Iteration: i,
				X:         current,
				Reason:    fmt.Sprintf("derivative too small at x = %g", current),
			}
		}
		next := current - fx/dfx
		steps = append(steps, Step{
			Iteration: i,
			X:         current,
			FX:        fx,
			DFX:       dfx,
			Next:      next,
			Error:     math.Abs(next - current),
		})
		if math.Abs(fx) < epsilon {
			return &Converged{Steps: steps, Solution: next}
		}
		current = next
	}
	return &Failure{
		Kind:      StatusMaxIterations,
		Iteration: maxIterations,
		X:         current,
		Reason:    fmt.Sprintf("did not converge after %d iterations", maxIterations),
	}
}
