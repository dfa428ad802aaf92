package gonewton

import "errors"

// Input validation errors. They are detected before any iteration runs and
// are always wrapped in an *InputError.
var (
	ErrEmptyFunction     = errors.New("function field is empty")
	ErrFunctionTooLong   = errors.New("function expression is too long")
	ErrInvalidExpression = errors.New("invalid function expression")
	ErrInvalidX0         = errors.New("x0 must be a finite real number")
	ErrInvalidEpsilon    = errors.New("epsilon must be a finite real number")
	ErrEpsilonTooSmall   = errors.New("epsilon is below the minimum tolerance")
)

// Method errors. A *Failure unwraps to one of these.
var (
	ErrDerivativeTooSmall = errors.New("derivative too small")
	ErrNoConvergence      = errors.New("method did not converge")
)

// InputError reports a request field that cannot be used.
type InputError struct {
	Field string
	Err   error
}

func (e *InputError) Error() string { return e.Err.Error() }
func (e *InputError) Unwrap() error { return e.Err }

// IsInputError reports whether err is a bad-input condition.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}

// IsMethodFailure reports whether err means the method ran but produced no
// root.
func IsMethodFailure(err error) bool {
	var f *Failure
	return errors.As(err, &f)
}
