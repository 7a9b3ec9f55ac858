package curve

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// FormulaError reports a custom formula that was rejected, failed to parse,
// or produced non-finite values.
type FormulaError struct {
	Formula string
	Pos     int // byte offset of the problem, -1 when not positional
	Msg     string
}

func (e *FormulaError) Error() string {
	if e.Pos >= 0 {
		return fmt.Sprintf("formula %q: %s at offset %d", e.Formula, e.Msg, e.Pos)
	}
	return fmt.Sprintf("formula %q: %s", e.Formula, e.Msg)
}

// forbiddenWords are refused before parsing. The grammar has no way to
// express them anyway; the check gives a clearer message.
var forbiddenWords = []string{"import", "exec", "eval", "compile", "__"}

var formulaFuncs = map[string]func(float64) float64{
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"exp":   math.Exp,
	"log":   math.Log,
	"log10": math.Log10,
	"sqrt":  math.Sqrt,
	"abs":   math.Abs,
}

var formulaConsts = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

// Formula is a parsed custom curve expression in the variable t.
type Formula struct {
	src  string
	root expr
}

// ParseFormula parses src into a Formula.
//
// Grammar, loosest binding first:
//
//	sum     = product { ("+" | "-") product }
//	product = unary { ("*" | "/" | "%") unary }
//	unary   = ("-" | "+") unary | power
//	power   = primary [ ("**" | "^") unary ]
//	primary = number | "t" | "pi" | "e" | func "(" sum ")" | "(" sum ")"
//
// Power is right-associative and binds tighter than a leading minus, so
// -t**2 is -(t**2).
func ParseFormula(src string) (*Formula, error) {
	lower := strings.ToLower(src)
	for _, w := range forbiddenWords {
		if strings.Contains(lower, w) {
			return nil, &FormulaError{Formula: src, Pos: -1, Msg: fmt.Sprintf("contains forbidden word %q", w)}
		}
	}
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, toks: toks}
	root, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, p.errorf(tok, "unexpected %q", tok.text)
	}
	return &Formula{src: src, root: root}, nil
}

// String returns the formula source.
func (f *Formula) String() string { return f.src }

// Eval evaluates the formula at t. The result may be NaN or Inf.
func (f *Formula) Eval(t float64) float64 { return f.root.eval(t) }

// EvaluateFormula evaluates src at every point in t and min-max normalizes
// the result to [0,1]. A constant result is returned unnormalized.
func EvaluateFormula(src string, t []float64) ([]float64, error) {
	f, err := ParseFormula(src)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(t))
	for i, x := range t {
		out[i] = f.Eval(x)
		if math.IsNaN(out[i]) || math.IsInf(out[i], 0) {
			return nil, &FormulaError{Formula: src, Pos: -1, Msg: fmt.Sprintf("non-finite value at t=%g", x)}
		}
	}
	normalizeInPlace(out)
	return out, nil
}

func normalizeInPlace(v []float64) {
	if len(v) == 0 {
		return
	}
	lo, hi := v[0], v[0]
	for _, x := range v[1:] {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	if hi <= lo {
		return
	}
	for i := range v {
		v[i] = (v[i] - lo) / (hi - lo)
	}
}

// === Expression tree ===

type expr interface {
	eval(t float64) float64
}

type numberExpr float64

func (n numberExpr) eval(float64) float64 { return float64(n) }

type varExpr struct{}

func (varExpr) eval(t float64) float64 { return t }

type negExpr struct{ x expr }

func (n negExpr) eval(t float64) float64 { return -n.x.eval(t) }

type binaryExpr struct {
	op   string
	l, r expr
}

func (b binaryExpr) eval(t float64) float64 {
	l, r := b.l.eval(t), b.r.eval(t)
	switch b.op {
	case "+":
		return l + r
	case "-":
		return l - r
	case "*":
		return l * r
	case "/":
		return l / r
	case "%":
		// Python semantics: result takes the sign of the divisor.
		m := math.Mod(l, r)
		if m != 0 && (m < 0) != (r < 0) {
			m += r
		}
		return m
	default:
		return math.Pow(l, r)
	}
}

type callExpr struct {
	fn  func(float64) float64
	arg expr
}

func (c callExpr) eval(t float64) float64 { return c.fn(c.arg.eval(t)) }

// === Tokenizer ===

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	pos  int
	num  float64
}

func tokenize(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := rune(src[i])
		switch {
		case unicode.IsSpace(c):
			i++
		case c >= '0' && c <= '9' || c == '.':
			start := i
			for i < len(src) && (isDigit(src[i]) || src[i] == '.') {
				i++
			}
			// exponent only when digits follow, so "2e" stays number+ident
			if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
				j := i + 1
				if j < len(src) && (src[j] == '+' || src[j] == '-') {
					j++
				}
				if j < len(src) && isDigit(src[j]) {
					for j < len(src) && isDigit(src[j]) {
						j++
					}
					i = j
				}
			}
			text := src[start:i]
			v, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, &FormulaError{Formula: src, Pos: start, Msg: fmt.Sprintf("invalid number %q", text)}
			}
			toks = append(toks, token{kind: tokNumber, text: text, pos: start, num: v})
		case unicode.IsLetter(c) || c == '_':
			start := i
			for i < len(src) && (isDigit(src[i]) || src[i] == '_' || unicode.IsLetter(rune(src[i]))) {
				i++
			}
			toks = append(toks, token{kind: tokIdent, text: src[start:i], pos: start})
		case c == '*' && i+1 < len(src) && src[i+1] == '*':
			toks = append(toks, token{kind: tokOp, text: "**", pos: i})
			i += 2
		case strings.ContainsRune("+-*/%^", c):
			toks = append(toks, token{kind: tokOp, text: string(c), pos: i})
			i++
		case c == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: i})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: i})
			i++
		default:
			return nil, &FormulaError{Formula: src, Pos: i, Msg: fmt.Sprintf("unexpected character %q", c)}
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(src)})
	return toks, nil
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// === Parser ===

type parser struct {
	src  string
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	tok := p.toks[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) errorf(tok token, format string, args ...interface{}) error {
	return &FormulaError{Formula: p.src, Pos: tok.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) isOp(ops ...string) bool {
	tok := p.peek()
	if tok.kind != tokOp {
		return false
	}
	for _, op := range ops {
		if tok.text == op {
			return true
		}
	}
	return false
}

func (p *parser) parseSum() (expr, error) {
	left, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	for p.isOp("+", "-") {
		op := p.next().text
		right, err := p.parseProduct()
		if err != nil {
			return nil, err
		}
		left = binaryExpr{op: op, l: left, r: right}
	}
	return left, nil
}

func (p *parser) parseProduct() (expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.isOp("*", "/", "%") {
		op := p.next().text
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = binaryExpr{op: op, l: left, r: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (expr, error) {
	if p.isOp("-", "+") {
		op := p.next().text
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if op == "-" {
			return negExpr{x: x}, nil
		}
		return x, nil
	}
	return p.parsePower()
}

func (p *parser) parsePower() (expr, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.isOp("**", "^") {
		p.next()
		exp, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return binaryExpr{op: "**", l: base, r: exp}, nil
	}
	return base, nil
}

func (p *parser) parsePrimary() (expr, error) {
	tok := p.next()
	switch tok.kind {
	case tokNumber:
		return numberExpr(tok.num), nil
	case tokLParen:
		inner, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, p.errorf(closing, "expected ')'")
		}
		return inner, nil
	case tokIdent:
		if tok.text == "t" {
			return varExpr{}, nil
		}
		if v, ok := formulaConsts[tok.text]; ok {
			return numberExpr(v), nil
		}
		fn, ok := formulaFuncs[tok.text]
		if !ok {
			return nil, p.errorf(tok, "unknown name %q", tok.text)
		}
		if open := p.next(); open.kind != tokLParen {
			return nil, p.errorf(open, "expected '(' after %s", tok.text)
		}
		arg, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, p.errorf(closing, "expected ')'")
		}
		return callExpr{fn: fn, arg: arg}, nil
	case tokEOF:
		return nil, p.errorf(tok, "unexpected end of formula")
	default:
		return nil, p.errorf(tok, "unexpected %q", tok.text)
	}
}
