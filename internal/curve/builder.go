package curve

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Pattern names a shape offered by BuildFormula.
type Pattern string

// Patterns accepted by BuildFormula.
const (
	PatternLinear  Pattern = "linear"
	PatternEaseIn  Pattern = "ease_in"
	PatternEaseOut Pattern = "ease_out"
	PatternSCurve  Pattern = "s_curve"
	PatternWave    Pattern = "wave"
	PatternPeak    Pattern = "peak"
	PatternValley  Pattern = "valley"
	PatternGrowth  Pattern = "exponential_growth"
	PatternDecay   Pattern = "exponential_decay"
)

// neutralSlider is the slider setting that leaves a pattern unscaled.
const neutralSlider = 50.0

// Patterns lists every builder pattern in menu order.
var Patterns = []Pattern{
	PatternLinear, PatternEaseIn, PatternEaseOut, PatternSCurve, PatternWave,
	PatternPeak, PatternValley, PatternGrowth, PatternDecay,
}

var patternDescriptions = map[Pattern]string{
	PatternLinear:  "Linear progression from start to end",
	PatternEaseIn:  "Starts gentle, accelerates toward the end",
	PatternEaseOut: "Starts strong, slows down toward the end",
	PatternSCurve:  "Smooth transition, gentle at both ends and faster in the middle",
	PatternWave:    "Oscillating wave",
	PatternPeak:    "Peaks in the middle, low at the edges",
	PatternValley:  "Dips in the middle, high at the edges",
	PatternGrowth:  "Gradual at first, then rapid growth",
	PatternDecay:   "Rapid drop at first, then levels off",
}

// FormulaRequest describes a curve by pattern and sliders instead of math.
// Strength is in [0,100] and Speed in [10,100]; 50 is the neutral setting
// for both.
type FormulaRequest struct {
	Pattern        Pattern `json:"pattern"`
	Strength       float64 `json:"strength"`
	Speed          float64 `json:"speed"`
	NumPoints      int     `json:"num_points"`
	FlipVertical   bool    `json:"flip_vertical"`
	FlipHorizontal bool    `json:"flip_horizontal"`
	Repeat         int     `json:"repeat"`
}

// BuiltFormula is the result of BuildFormula. Formula is accepted by
// ParseFormula and reproduces Values before clamping.
type BuiltFormula struct {
	Formula     string    `json:"formula"`
	T           []float64 `json:"t"`
	Values      []float64 `json:"values"`
	Description string    `json:"description"`
}

// BuildFormula turns a pattern and its sliders into a custom_formula
// expression and samples it over NumPoints, clamped to [0,1].
//
// Horizontal flip and repeat rewrite the variable, so the emitted formula
// is self-contained: u = ((1-t)*repeat) % 1.
func BuildFormula(req FormulaRequest) (*BuiltFormula, error) {
	if _, ok := patternDescriptions[req.Pattern]; !ok {
		return nil, fmt.Errorf("unknown pattern: %s", req.Pattern)
	}
	if req.Strength < 0 || req.Strength > 100 {
		return nil, fmt.Errorf("strength must be between 0 and 100, got %g", req.Strength)
	}
	if req.Speed < 10 || req.Speed > 100 {
		return nil, fmt.Errorf("speed must be between 10 and 100, got %g", req.Speed)
	}
	if req.NumPoints < 2 || req.NumPoints > MaxPoints {
		return nil, fmt.Errorf("num_points must be between 2 and %d, got %d", MaxPoints, req.NumPoints)
	}
	if req.Repeat < 1 {
		req.Repeat = 1
	}

	u := "t"
	if req.FlipHorizontal {
		u = "(1-t)"
	}
	if req.Repeat > 1 {
		u = fmt.Sprintf("(%s*%d%%1)", u, req.Repeat)
	}

	src := patternFormula(req.Pattern, u, req.Strength/neutralSlider, req.Speed/neutralSlider)
	if req.FlipVertical {
		src = "1 - (" + src + ")"
	}

	f, err := ParseFormula(src)
	if err != nil {
		return nil, err
	}
	t := Linspace(0, 1, req.NumPoints)
	values := make([]float64, len(t))
	for i, x := range t {
		v := f.Eval(x)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &FormulaError{Formula: src, Pos: -1, Msg: fmt.Sprintf("non-finite value at t=%g", x)}
		}
		values[i] = math.Max(0, math.Min(1, v))
	}

	return &BuiltFormula{
		Formula:     src,
		T:           t,
		Values:      values,
		Description: describeFormula(req, src),
	}, nil
}

func patternFormula(p Pattern, u string, strength, speed float64) string {
	switch p {
	case PatternEaseIn:
		return fmt.Sprintf("%s**%s", u, num(1+strength))
	case PatternEaseOut:
		return fmt.Sprintf("1-(1-%s)**%s", u, num(1+strength))
	case PatternSCurve:
		s := fmt.Sprintf("(3*%[1]s**2 - 2*%[1]s**3)", u)
		if strength > 0 && strength != 1 {
			s = fmt.Sprintf("%s**%s", s, num(1/strength))
		}
		return s
	case PatternWave:
		return fmt.Sprintf("0.5 + %s*sin(%s*2*pi*%s)", num(strength*0.5), u, num(speed*2))
	case PatternPeak, PatternValley:
		w := num(0.3 / speed)
		s := fmt.Sprintf("%s*exp(-((%s-0.5)**2)/(2*%s**2))", num(strength), u, w)
		if p == PatternValley {
			s = "1 - " + s
		}
		return s
	case PatternGrowth, PatternDecay:
		r := num(speed * 5)
		s := fmt.Sprintf("(exp(%[2]s*%[1]s)-1)/(exp(%[2]s)-1)", u, r)
		if p == PatternDecay {
			s = "(1 - " + s + ")"
		}
		return fmt.Sprintf("%s*%s", num(strength), s)
	}
	return u
}

// num formats v without an exponent so the tokenizer accepts it.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func describeFormula(req FormulaRequest, src string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Pattern: %s\n%s\n\n", req.Pattern, patternDescriptions[req.Pattern])
	fmt.Fprintf(&b, "Strength: %.0f%%\n", req.Strength)
	fmt.Fprintf(&b, "Speed: %.0f%%\n", req.Speed)
	fmt.Fprintf(&b, "Flip vertical: %s\n", yesNo(req.FlipVertical))
	fmt.Fprintf(&b, "Flip horizontal: %s\n", yesNo(req.FlipHorizontal))
	fmt.Fprintf(&b, "Repeat: %dx\n\n", req.Repeat)
	fmt.Fprintf(&b, "Formula: %s\n", src)
	b.WriteString("Use it with curve_type custom_formula.")
	return b.String()
}
