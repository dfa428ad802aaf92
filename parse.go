package gonewton

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// ============================================================
// Normalization
// ============================================================

// normalizer rewrites the look-alike characters that free-text input fields
// tend to produce.
var normalizer = strings.NewReplacer(
	"−", "-", // minus sign
	"‒", "-", // figure dash
	"–", "-", // en dash
	"—", "-", // em dash
	"﹣", "-", // small hyphen-minus
	"－", "-", // fullwidth hyphen-minus
	"×", "*", // multiplication sign
	"·", "*", // middle dot
	"⋅", "*", // dot operator
	"÷", "/", // division sign
	"²", "^2",
	"³", "^3",
	"π", "pi",
	"**", "^",
)

// Normalize maps Unicode look-alikes to ASCII operators, case-folds the input
// (so "X" becomes the canonical variable "x") and trims surrounding space.
func Normalize(input string) string {
	return strings.TrimSpace(strings.ToLower(normalizer.Replace(input)))
}

// ============================================================
// Lexer
// ============================================================

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNum
	tokIdent
	tokOp
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func (t token) describe() string {
	if t.kind == tokEOF {
		return "end of input"
	}
	return strconv.Quote(t.text)
}

// maxExponent bounds the decimal exponent of a literal so exact rationals
// stay small.
const maxExponent = 400

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return c >= 'a' && c <= 'z' || c == '_' }

func lex(src string) ([]token, error) {
	var toks []token
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case isDigit(c) || c == '.' && i+1 < len(src) && isDigit(src[i+1]):
			end := scanNumber(src, i)
			toks = append(toks, token{kind: tokNum, text: src[i:end], pos: i})
			i = end
		case isLetter(c):
			end := i
			for end < len(src) && (isLetter(src[end]) || isDigit(src[end])) {
				end++
			}
			split, err := splitIdentifier(src[i:end], i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, split...)
			i = end
		case strings.IndexByte("+-*/^", c) >= 0:
			toks = append(toks, token{kind: tokOp, text: string(c), pos: i})
			i++
		case c == '(' || c == '[':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: i})
			i++
		case c == ')' || c == ']':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: i})
			i++
		case c == ',':
			toks = append(toks, token{kind: tokComma, text: ",", pos: i})
			i++
		default:
			r := []rune(src[i:])[0]
			return nil, &SyntaxError{Pos: i, Msg: fmt.Sprintf("unexpected character %q", r)}
		}
	}
	return append(toks, token{kind: tokEOF, pos: len(src)}), nil
}

// scanNumber returns the end of the numeric literal starting at i. An "e" is
// only taken as an exponent marker when digits follow it; otherwise it is the
// constant e ("2e" reads as 2*e).
func scanNumber(src string, i int) int {
	j := i
	for j < len(src) && isDigit(src[j]) {
		j++
	}
	if j+1 < len(src) && src[j] == '.' && isDigit(src[j+1]) {
		j++
		for j < len(src) && isDigit(src[j]) {
			j++
		}
	}
	if j < len(src) && src[j] == 'e' {
		k := j + 1
		if k < len(src) && (src[k] == '+' || src[k] == '-') {
			k++
		}
		if k < len(src) && isDigit(src[k]) {
			for k < len(src) && isDigit(src[k]) {
				k++
			}
			j = k
		}
	}
	return j
}

// splitIdentifier breaks a run of letters and digits into whitelisted names
// and numbers, longest name first: "xsin" is x, sin and "x2" is x, 2. A
// function name directly followed by a digit is rejected.
func splitIdentifier(run string, pos int) ([]token, error) {
	var out []token
	for i := 0; i < len(run); {
		if isDigit(run[i]) {
			j := i
			for j < len(run) && isDigit(run[j]) {
				j++
			}
			out = append(out, token{kind: tokNum, text: run[i:j], pos: pos + i})
			i = j
			continue
		}
		matched := ""
		for _, name := range identifiers {
			if strings.HasPrefix(run[i:], name) {
				matched = name
				break
			}
		}
		if matched == "" {
			return nil, &SyntaxError{Pos: pos, Msg: fmt.Sprintf("unknown identifier %q", run)}
		}
		end := i + len(matched)
		if _, isFunc := functions[matched]; isFunc && end < len(run) && isDigit(run[end]) {
			// "log2" and "sin2x" name functions outside the whitelist.
			for end < len(run) && isDigit(run[end]) {
				end++
			}
			return nil, &SyntaxError{Pos: pos + i, Msg: fmt.Sprintf("unknown identifier %q", run[i:end])}
		}
		out = append(out, token{kind: tokIdent, text: matched, pos: pos + i})
		i = end
	}
	return out, nil
}

// ============================================================
// Parser
// ============================================================

// SyntaxError is the diagnostic attached to an invalid expression.
type SyntaxError struct {
	Pos int // byte offset into the normalized input
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at position %d", e.Msg, e.Pos+1)
}

type parser struct {
	toks []token
	pos  int
}

// Parse normalizes input and parses it into a simplified expression over x.
//
// Grammar, loosest binding first:
//
//	expr    = term { ("+" | "-") term }
//	term    = unary { ("*" | "/") unary | power }      implicit multiplication
//	unary   = ("-" | "+") unary | power
//	power   = primary [ "^" unary ]                    right associative
//	primary = number | "x" | const | func call | "(" expr ")"
//	call    = name "(" expr { "," expr } ")" | name power
func Parse(input string) (Expr, error) {
	src := Normalize(input)
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, &SyntaxError{Pos: t.pos, Msg: "unexpected " + t.describe()}
	}
	return e.Simplify(), nil
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) isOp(op string) bool {
	t := p.peek()
	return t.kind == tokOp && t.text == op
}

// startsOperand reports whether the next token can begin an implicit factor.
func (p *parser) startsOperand() bool {
	switch p.peek().kind {
	case tokNum, tokIdent, tokLParen:
		return true
	}
	return false
}

func (p *parser) parseExpr() (Expr, error) {
	first, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	terms := []Expr{first}
	for p.isOp("+") || p.isOp("-") {
		op := p.next().text
		t, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if op == "-" {
			t = &Mul{factors: []Expr{N(-1), t}}
		}
		terms = append(terms, t)
	}
	if len(terms) == 1 {
		return first, nil
	}
	return &Add{terms: terms}, nil
}

func (p *parser) parseTerm() (Expr, error) {
	first, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	factors := []Expr{first}
	for {
		var f Expr
		switch {
		case p.isOp("*"):
			p.next()
			f, err = p.parseUnary()
		case p.isOp("/"):
			p.next()
			f, err = p.parseUnary()
			if err == nil {
				f = &Pow{base: f, exp: N(-1)}
			}
		case p.startsOperand():
			f, err = p.parsePower()
		default:
			if len(factors) == 1 {
				return first, nil
			}
			return &Mul{factors: factors}, nil
		}
		if err != nil {
			return nil, err
		}
		factors = append(factors, f)
	}
}

func (p *parser) parseUnary() (Expr, error) {
	switch {
	case p.isOp("-"):
		p.next()
		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Mul{factors: []Expr{N(-1), e}}, nil
	case p.isOp("+"):
		p.next()
		return p.parseUnary()
	}
	return p.parsePower()
}

func (p *parser) parsePower() (Expr, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if !p.isOp("^") {
		return base, nil
	}
	p.next()
	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &Pow{base: base, exp: exp}, nil
}

func (p *parser) parsePrimary() (Expr, error) {
	t := p.next()
	switch t.kind {
	case tokNum:
		return parseNumber(t)
	case tokIdent:
		if t.text == Var {
			return S(Var), nil
		}
		if c, ok := constants[t.text]; ok {
			return c, nil
		}
		if spec, ok := functions[t.text]; ok {
			return p.parseCall(t, spec)
		}
		return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("unknown identifier %q", t.text)}
	case tokLParen:
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, &SyntaxError{Pos: closing.pos, Msg: "expected \")\", found " + closing.describe()}
		}
		return e, nil
	}
	return nil, &SyntaxError{Pos: t.pos, Msg: "unexpected " + t.describe()}
}

// parseCall reads the arguments of a whitelisted function. Without
// parentheses the argument is a single power-level operand: "sin x^2" is
// sin(x^2).
func (p *parser) parseCall(name token, spec *funcSpec) (Expr, error) {
	var args []Expr
	switch {
	case p.peek().kind == tokLParen:
		p.next()
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.peek().kind != tokComma {
				break
			}
			p.next()
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, &SyntaxError{Pos: closing.pos, Msg: "expected \")\", found " + closing.describe()}
		}
	case p.startsOperand():
		arg, err := p.parsePower()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	default:
		return nil, &SyntaxError{Pos: name.pos, Msg: fmt.Sprintf("function %s expects an argument", name.text)}
	}
	if len(args) != spec.arity {
		return nil, &SyntaxError{Pos: name.pos, Msg: fmt.Sprintf("function %s expects %d argument(s), got %d", name.text, spec.arity, len(args))}
	}
	return &Func{spec: spec, arg: args[0]}, nil
}

// parseNumber converts a literal to an exact rational, rejecting values that
// do not fit a float64.
func parseNumber(t token) (Expr, error) {
	if i := strings.IndexByte(t.text, 'e'); i >= 0 {
		exp, err := strconv.Atoi(strings.TrimPrefix(t.text[i+1:], "+"))
		if err != nil || exp > maxExponent || exp < -maxExponent {
			return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("number %s out of range", t.text)}
		}
	}
	f, err := strconv.ParseFloat(t.text, 64)
	if err != nil || math.IsInf(f, 0) {
		return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("number %s out of range", t.text)}
	}
	text := t.text
	if text[0] == '.' {
		text = "0" + text
	}
	r, ok := new(big.Rat).SetString(text)
	if !ok {
		return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("malformed number %s", t.text)}
	}
	return rat(r), nil
}
