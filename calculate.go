package gonewton

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultEpsilon is the tolerance used when a request omits epsilon.
	DefaultEpsilon = 0.001
	// MinEpsilon is the lowest tolerance any Calculator accepts.
	MinEpsilon = 1e-10
	// DefaultMaxFunctionLength caps the expression length in runes.
	DefaultMaxFunctionLength = 1024
)

// NumberField is a request number that may arrive as a JSON number, a numeric
// string or null. Raw holds the text as received.
type NumberField struct {
	Raw string
	Set bool
}

// Number returns a NumberField holding v.
func Number(v float64) NumberField {
	return NumberField{Raw: strconv.FormatFloat(v, 'g', -1, 64), Set: true}
}

// Text returns a NumberField holding s verbatim.
func Text(s string) NumberField { return NumberField{Raw: s, Set: true} }

// Empty reports whether the field is absent, null or blank.
func (n NumberField) Empty() bool { return !n.Set || strings.TrimSpace(n.Raw) == "" }

// Float parses the field, rejecting non-finite values.
func (n NumberField) Float() (float64, error) {
	s := strings.TrimSpace(n.Raw)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not finite", s)
	}
	return v, nil
}

func (n NumberField) MarshalJSON() ([]byte, error) {
	if !n.Set {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseFloat(n.Raw, 64); err == nil && json.Valid([]byte(n.Raw)) {
		return []byte(n.Raw), nil
	}
	return json.Marshal(n.Raw)
}

func (n *NumberField) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*n = NumberField{}
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = NumberField{Raw: s, Set: true}
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return fmt.Errorf("must be a number or a numeric string")
	}
	*n = NumberField{Raw: num.String(), Set: true}
	return nil
}

// Request carries the three user-supplied fields.
type Request struct {
	Function string      `json:"function"`
	X0       NumberField `json:"x0"`
	Epsilon  NumberField `json:"epsilon"`
}

// Response is the result of a converged calculation.
type Response struct {
	Steps           []Step   `json:"steps"`
	Solution        Value    `json:"solution"`
	Iterations      int      `json:"iterations"`
	Epsilon         float64  `json:"epsilon"`
	FunctionLaTeX   string   `json:"function_latex"`
	DerivativeLaTeX string   `json:"derivative_latex"`
	PlotData        PlotData `json:"plot_data"`
}

// Calculator validates requests and runs the method. The zero value is not
// usable; construct with NewCalculator. A Calculator is read-only and safe for
// concurrent use.
type Calculator struct {
	defaultEpsilon    float64
	minEpsilon        float64
	plotSamples       int
	maxFunctionLength int
	maxIterations     int
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithMinEpsilon raises the epsilon floor. Values below MinEpsilon are ignored.
func WithMinEpsilon(v float64) Option {
	return func(c *Calculator) {
		if v > MinEpsilon {
			c.minEpsilon = v
		}
	}
}

// WithDefaultEpsilon sets the tolerance used when a request omits epsilon.
func WithDefaultEpsilon(v float64) Option {
	return func(c *Calculator) {
		if v > 0 && !math.IsInf(v, 0) {
			c.defaultEpsilon = v
		}
	}
}

// WithPlotSamples sets the number of plot samples.
func WithPlotSamples(n int) Option {
	return func(c *Calculator) {
		if n >= 2 {
			c.plotSamples = n
		}
	}
}

// WithMaxFunctionLength caps the expression length in runes; 0 disables the
// cap.
func WithMaxFunctionLength(n int) Option {
	return func(c *Calculator) {
		if n >= 0 {
			c.maxFunctionLength = n
		}
	}
}

// NewCalculator returns a Calculator with the package defaults overridden by
// opts.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{
		defaultEpsilon:    DefaultEpsilon,
		minEpsilon:        MinEpsilon,
		plotSamples:       DefaultPlotSamples,
		maxFunctionLength: DefaultMaxFunctionLength,
		maxIterations:     MaxIterations,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.defaultEpsilon < c.minEpsilon {
		c.defaultEpsilon = c.minEpsilon
	}
	return c
}

var defaultCalculator = NewCalculator()

// DefaultCalculator returns the shared Calculator used by Calculate.
func DefaultCalculator() *Calculator { return defaultCalculator }

// MinEpsilon returns the epsilon floor enforced by c.
func (c *Calculator) MinEpsilon() float64 { return c.minEpsilon }

// Calculate validates req, compiles the function and iterates from x0.
// Checks run in order: function presence, function length, x0, epsilon,
// expression. Errors are *InputError or *Failure.
func (c *Calculator) Calculate(req Request) (*Response, error) {
	if strings.TrimSpace(req.Function) == "" {
		return nil, &InputError{Field: "function", Err: ErrEmptyFunction}
	}
	if err := c.checkLength(req.Function); err != nil {
		return nil, err
	}
	x0, err := c.x0(req.X0)
	if err != nil {
		return nil, err
	}
	epsilon, err := c.epsilon(req.Epsilon)
	if err != nil {
		return nil, err
	}
	fn, err := Compile(req.Function)
	if err != nil {
		return nil, err
	}

	switch out := Iterate(fn.F, fn.DF, x0, epsilon, c.maxIterations).(type) {
	case *Converged:
		return &Response{
			Steps:           out.Steps,
			Solution:        Value(out.Solution),
			Iterations:      len(out.Steps),
			Epsilon:         epsilon,
			FunctionLaTeX:   fn.LaTeX,
			DerivativeLaTeX: fn.DerivativeLaTeX,
			PlotData:        BuildPlot(fn.F, pathOf(out), c.plotSamples),
		}, nil
	case *Failure:
		return nil, out
	default:
		return nil, fmt.Errorf("gonewton: unexpected outcome %T", out)
	}
}

// checkLength enforces the configured cap on the function field, in
// characters. A zero cap disables it.
func (c *Calculator) checkLength(fn string) error {
	if c.maxFunctionLength > 0 && utf8.RuneCountInString(fn) > c.maxFunctionLength {
		return &InputError{
			Field: "function",
			Err:   fmt.Errorf("%w (limit %d characters)", ErrFunctionTooLong, c.maxFunctionLength),
		}
	}
	return nil
}

func (c *Calculator) x0(f NumberField) (float64, error) {
	if f.Empty() {
		return 0, &InputError{Field: "x0", Err: fmt.Errorf("%w (missing)", ErrInvalidX0)}
	}
	v, err := f.Float()
	if err != nil {
		return 0, &InputError{Field: "x0", Err: fmt.Errorf("%w (got %q)", ErrInvalidX0, f.Raw)}
	}
	return v, nil
}

func (c *Calculator) epsilon(f NumberField) (float64, error) {
	if f.Empty() {
		return c.defaultEpsilon, nil
	}
	v, err := f.Float()
	if err != nil {
		return 0, &InputError{Field: "epsilon", Err: fmt.Errorf("%w (got %q)", ErrInvalidEpsilon, f.Raw)}
	}
	if v < c.minEpsilon {
		return 0, &InputError{
			Field: "epsilon",
			Err:   fmt.Errorf("%w: %g < %g", ErrEpsilonTooSmall, v, c.minEpsilon),
		}
	}
	return v, nil
}

// Calculate runs req through DefaultCalculator.
func Calculate(req Request) (*Response, error) {
	return defaultCalculator.Calculate(req)
}
