package gonewton

import (
	"math"
	"sort"
)

// funcSpec describes one whitelisted function: how many arguments it takes,
// how to evaluate it, its outer derivative d/du f(u), and how to typeset it.
type funcSpec struct {
	name  string
	arity int
	eval  func(float64) float64
	deriv func(u Expr) Expr
	latex func(arg string) string
}

// functions is the closed capability table consulted by the parser. Aliases
// map to the same spec, so "log" builds an "ln" node.
var functions map[string]*funcSpec

// constants holds the named constants accepted in expressions.
var constants = map[string]*Const{
	"pi": Pi,
	"e":  E,
}

func init() {
	ln := &funcSpec{
		name: "ln", arity: 1,
		eval:  math.Log,
		deriv: func(u Expr) Expr { return PowOf(u, N(-1)) },
		latex: wrapped("\\ln"),
	}
	functions = map[string]*funcSpec{
		"ln":  ln,
		"log": ln,
		"log10": {
			name: "log10", arity: 1,
			eval: math.Log10,
			deriv: func(u Expr) Expr {
				return MulOf(PowOf(u, N(-1)), PowOf(LnOf(N(10)), N(-1)))
			},
			latex: wrapped("\\log_{10}"),
		},
		"sin": {
			name: "sin", arity: 1,
			eval:  math.Sin,
			deriv: func(u Expr) Expr { return CosOf(u) },
			latex: wrapped("\\sin"),
		},
		"cos": {
			name: "cos", arity: 1,
			eval:  math.Cos,
			deriv: func(u Expr) Expr { return MulOf(N(-1), SinOf(u)) },
			latex: wrapped("\\cos"),
		},
		"tan": {
			name: "tan", arity: 1,
			eval:  math.Tan,
			deriv: func(u Expr) Expr { return AddOf(N(1), PowOf(TanOf(u), N(2))) },
			latex: wrapped("\\tan"),
		},
		"sec": {
			name: "sec", arity: 1,
			eval:  func(v float64) float64 { return 1 / math.Cos(v) },
			deriv: func(u Expr) Expr { return MulOf(SecOf(u), TanOf(u)) },
			latex: wrapped("\\sec"),
		},
		"cosec": {
			name: "cosec", arity: 1,
			eval:  func(v float64) float64 { return 1 / math.Sin(v) },
			deriv: func(u Expr) Expr { return MulOf(N(-1), CosecOf(u), CotOf(u)) },
			latex: wrapped("\\csc"),
		},
		"cot": {
			name: "cot", arity: 1,
			eval:  func(v float64) float64 { return math.Cos(v) / math.Sin(v) },
			deriv: func(u Expr) Expr { return MulOf(N(-1), AddOf(N(1), PowOf(CotOf(u), N(2)))) },
			latex: wrapped("\\cot"),
		},
		"sqrt": {
			name: "sqrt", arity: 1,
			eval:  math.Sqrt,
			deriv: func(u Expr) Expr { return MulOf(F(1, 2), PowOf(SqrtOf(u), N(-1))) },
			latex: func(arg string) string { return "\\sqrt{" + arg + "}" },
		},
		"exp": {
			name: "exp", arity: 1,
			eval:  math.Exp,
			deriv: func(u Expr) Expr { return ExpOf(u) },
			latex: func(arg string) string { return "e^{" + arg + "}" },
		},
		"abs": {
			name: "abs", arity: 1,
			eval: math.Abs,
			// u/|u|, undefined at 0 like the derivative itself.
			deriv: func(u Expr) Expr { return MulOf(u, PowOf(AbsOf(u), N(-1))) },
			latex: func(arg string) string { return "\\left|" + arg + "\\right|" },
		},
	}
	identifiers = whitelistNames()
}

func wrapped(cmd string) func(string) string {
	return func(arg string) string { return cmd + "\\left(" + arg + "\\right)" }
}

// identifiers lists every accepted name, longest first, for greedy splitting
// of letter runs such as "xsin".
var identifiers []string

func whitelistNames() []string {
	names := []string{Var}
	for name := range functions {
		names = append(names, name)
	}
	for name := range constants {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	return names
}

// Whitelist returns the sorted set of identifiers accepted in expressions.
func Whitelist() []string {
	out := append([]string(nil), identifiers...)
	sort.Strings(out)
	return out
}
