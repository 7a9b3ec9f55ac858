package curve

import (
	"log"
	"math"

	bezier "honnef.co/go/curve"
)

// Family names a curve shape.
type Family string

// Curve families accepted by Evaluate.
const (
	Linear          Family = "linear"
	EaseIn          Family = "ease_in"
	EaseOut         Family = "ease_out"
	EaseInOut       Family = "ease_in_out"
	SineWave        Family = "sine_wave"
	BellCurve       Family = "bell_curve"
	ReverseBell     Family = "reverse_bell"
	Exponential     Family = "exponential"
	Bounce          Family = "bounce"
	CustomBezier    Family = "custom_bezier"
	CustomFormula   Family = "custom_formula"
	EaseInQuad      Family = "ease_in_quad"
	EaseOutQuad     Family = "ease_out_quad"
	EaseInOutQuad   Family = "ease_in_out_quad"
	EaseInCubic     Family = "ease_in_cubic"
	EaseOutCubic    Family = "ease_out_cubic"
	EaseInOutCubic  Family = "ease_in_out_cubic"
	EaseInQuart     Family = "ease_in_quart"
	EaseOutQuart    Family = "ease_out_quart"
	EaseInOutQuart  Family = "ease_in_out_quart"
	StrongToWeak    Family = "strong_to_weak"
	WeakToStrong    Family = "weak_to_strong"
	ExponentialDown Family = "exponential_down"
)

// Families lists every supported family in menu order.
var Families = []Family{
	Linear, EaseIn, EaseOut, EaseInOut,
	EaseInQuad, EaseOutQuad, EaseInOutQuad,
	EaseInCubic, EaseOutCubic, EaseInOutCubic,
	EaseInQuart, EaseOutQuart, EaseInOutQuart,
	SineWave, BellCurve, ReverseBell,
	Exponential, ExponentialDown, Bounce, CustomBezier,
	StrongToWeak, WeakToStrong,
	CustomFormula,
}

// DefaultParam is the shape parameter used when none is supplied.
const DefaultParam = 2.0

// MaxPoints bounds every sample count a caller may request.
const MaxPoints = 1000

const (
	minBellParam  = 0.1
	maxExpParam   = 10.0
	minExpDenom   = 1e-10
	minRootParam  = 1e-6
	bellBaseWidth = 0.15
	bellCenter    = 0.5
)

// Valid reports whether f is a known family.
func (f Family) Valid() bool {
	for _, known := range Families {
		if f == known {
			return true
		}
	}
	return false
}

// Spec selects a curve: a family, its shape parameter and, for
// custom_formula, the expression source.
type Spec struct {
	Family  Family  `json:"family"`
	Param   float64 `json:"param"`
	Formula string  `json:"formula,omitempty"`
}

// Evaluate samples the curve described by spec at each progress value in t.
//
// The returned slice has the same length as t and is never nil for non-empty
// input. Unknown families and failing formulas degrade to the identity curve;
// non-finite output degrades to a linear ramp over len(t) points.
func Evaluate(t []float64, spec Spec) []float64 {
	out := evaluate(t, spec)
	if !allFinite(out) {
		log.Printf("[Error] non-finite values in %s curve, using linear fallback", spec.Family)
		return Linspace(0, 1, len(t))
	}
	return out
}

func evaluate(t []float64, spec Spec) []float64 {
	p := spec.Param
	switch spec.Family {
	case Linear:
		return mapEach(t, func(x float64) float64 { return x })
	case EaseIn:
		return mapEach(t, func(x float64) float64 { return math.Pow(x, p) })
	case EaseOut:
		return mapEach(t, func(x float64) float64 { return 1 - math.Pow(1-x, p) })
	case EaseInOut:
		return mapEach(t, func(x float64) float64 { return easeInOut(x, p) })
	case EaseInQuad:
		return mapEach(t, func(x float64) float64 { return math.Pow(x, 2) })
	case EaseOutQuad:
		return mapEach(t, func(x float64) float64 { return 1 - math.Pow(1-x, 2) })
	case EaseInOutQuad:
		return mapEach(t, func(x float64) float64 { return easeInOut(x, 2) })
	case EaseInCubic:
		return mapEach(t, func(x float64) float64 { return math.Pow(x, 3) })
	case EaseOutCubic:
		return mapEach(t, func(x float64) float64 { return 1 - math.Pow(1-x, 3) })
	case EaseInOutCubic:
		return mapEach(t, func(x float64) float64 { return easeInOut(x, 3) })
	case EaseInQuart:
		return mapEach(t, func(x float64) float64 { return math.Pow(x, 4) })
	case EaseOutQuart:
		return mapEach(t, func(x float64) float64 { return 1 - math.Pow(1-x, 4) })
	case EaseInOutQuart:
		return mapEach(t, func(x float64) float64 { return easeInOut(x, 4) })
	case SineWave:
		return mapEach(t, func(x float64) float64 { return (math.Sin(x*p*2*math.Pi) + 1) / 2 })
	case BellCurve:
		return mapEach(t, func(x float64) float64 { return bell(x, p) })
	case ReverseBell:
		return mapEach(t, func(x float64) float64 { return 1 - bell(x, p) })
	case Exponential:
		return exponential(t, p, false)
	case ExponentialDown:
		return exponential(t, p, true)
	case Bounce:
		return mapEach(t, func(x float64) float64 { return math.Abs(math.Sin(x * p * math.Pi)) })
	case CustomBezier:
		return customBezier(t, p)
	case StrongToWeak:
		root := 1 / math.Max(p, minRootParam)
		return mapEach(t, func(x float64) float64 { return 1 - math.Pow(x, root) })
	case WeakToStrong:
		root := 1 / math.Max(p, minRootParam)
		return mapEach(t, func(x float64) float64 { return math.Pow(x, root) })
	case CustomFormula:
		out, err := EvaluateFormula(spec.Formula, t)
		if err != nil {
			log.Printf("[Error] custom formula evaluation failed: %v", err)
			return mapEach(t, func(x float64) float64 { return x })
		}
		return out
	default:
		log.Printf("[Warning] unknown curve type %q, using linear", spec.Family)
		return mapEach(t, func(x float64) float64 { return x })
	}
}

func easeInOut(x, p float64) float64 {
	if x < 0.5 {
		return math.Pow(2, p-1) * math.Pow(x, p)
	}
	return 1 - math.Pow(-2*x+2, p)/2
}

func bell(x, p float64) float64 {
	width := bellBaseWidth / math.Max(p, minBellParam)
	d := x - bellCenter
	return math.Exp(-(d * d) / (2 * width * width))
}

func exponential(t []float64, p float64, down bool) []float64 {
	safe := math.Min(p, maxExpParam)
	denom := math.Exp(safe) - 1
	if denom < minExpDenom {
		log.Printf("[Warning] exponential curve parameter too small, using linear")
		if down {
			return mapEach(t, func(x float64) float64 { return 1 - x })
		}
		return mapEach(t, func(x float64) float64 { return x })
	}
	return mapEach(t, func(x float64) float64 {
		if down {
			x = 1 - x
		}
		return (math.Exp(safe*x) - 1) / denom
	})
}

// customBezier evaluates the y component of a cubic Bezier whose control
// values are 0, p/10, 1-p/10 and 1. The x controls are spaced evenly so the
// curve parameter and progress coincide.
func customBezier(t []float64, p float64) []float64 {
	seg := bezier.CubicBez{
		P0: bezier.Pt(0, 0),
		P1: bezier.Pt(1.0/3, p/10),
		P2: bezier.Pt(2.0/3, 1-p/10),
		P3: bezier.Pt(1, 1),
	}
	return mapEach(t, func(x float64) float64 { return seg.Eval(x).Y })
}

func mapEach(t []float64, fn func(float64) float64) []float64 {
	out := make([]float64, len(t))
	for i, x := range t {
		out[i] = fn(x)
	}
	return out
}

func allFinite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// Linspace returns n evenly spaced values from start to stop inclusive.
// A single point yields start; n <= 0 yields an empty slice.
func Linspace(start, stop float64, n int) []float64 {
	if n <= 0 {
		return []float64{}
	}
	out := make([]float64, n)
	if n == 1 {
		out[0] = start
		return out
	}
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = stop
	return out
}
