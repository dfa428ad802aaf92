package gonewton

import (
	"fmt"
	"strings"
)

// Function is a user expression ready for iteration: the parsed tree, its
// derivative, numeric evaluators for both and a typeset rendering. It is
// immutable and belongs to a single request.
type Function struct {
	Source          string
	Normalized      string
	Expr            Expr
	Derivative      Expr
	F               Evaluator
	DF              Evaluator
	LaTeX           string
	DerivativeLaTeX string
}

// Compile parses input, differentiates it with respect to x and compiles
// both expressions. Failures are *InputError values wrapping
// ErrEmptyFunction or ErrInvalidExpression; the latter also wraps the
// parser's *SyntaxError.
func Compile(input string) (*Function, error) {
	if strings.TrimSpace(input) == "" {
		return nil, &InputError{Field: "function", Err: ErrEmptyFunction}
	}
	e, err := Parse(input)
	if err != nil {
		return nil, &InputError{Field: "function", Err: fmt.Errorf("%w: %w", ErrInvalidExpression, err)}
	}
	d := Diff(e, Var)
	return &Function{
		Source:          input,
		Normalized:      Normalize(input),
		Expr:            e,
		Derivative:      d,
		F:               EvaluatorOf(e),
		DF:              EvaluatorOf(d),
		LaTeX:           e.LaTeX(),
		DerivativeLaTeX: d.LaTeX(),
	}, nil
}

// MustCompile is like Compile but panics on error. Intended for fixed
// expressions in tests and examples.
func MustCompile(input string) *Function {
	fn, err := Compile(input)
	if err != nil {
		panic("gonewton: " + err.Error())
	}
	return fn
}
