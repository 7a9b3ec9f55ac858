package keyframe

import (
	"fmt"
	"log"
	"math"
	"sort"
	"strings"

	"github.com/ironsheep/curve-tools-mcp/internal/curve"
)

// Default strength bounds accepted by the downstream scheduler.
const (
	DefaultClampMin = 0.0
	DefaultClampMax = 10.0
)

const (
	tinyRange        = 0.01
	manyPointsInTiny = 100
)

// ValidationError lists every problem found in a Build request.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("input validation failed:")
	for _, p := range e.Problems {
		b.WriteString("\n  - ")
		b.WriteString(p)
	}
	return b.String()
}

// Options selects the optional post-processing steps of Build.
type Options struct {
	// Repeat > 1 repeats the curve shape that many times across the points.
	Repeat int

	// Mirror makes the normalized curve symmetric about its midpoint.
	Mirror bool

	// Blend, when set with BlendAmount > 0, mixes in a second curve.
	Blend       *curve.Spec
	BlendAmount float64

	// Invert flips the normalized curve.
	Invert bool

	// Clamp limits strengths to [ClampMin, ClampMax].
	Clamp    bool
	ClampMin float64
	ClampMax float64

	// Adaptive redistributes points toward steep regions.
	Adaptive bool
}

// Params describes a keyframe sequence to build.
type Params struct {
	NumPoints     int
	StartPosition float64
	EndPosition   float64
	StartValue    float64
	EndValue      float64
	Spec          curve.Spec
	Options       Options
}

// Validate checks p and returns non-fatal warnings. The error, if any, is a
// *ValidationError naming every violation.
func Validate(p Params) ([]string, error) {
	var problems, warnings []string

	for name, v := range map[string]float64{
		"start_percent":  p.StartPosition,
		"end_percent":    p.EndPosition,
		"start_strength": p.StartValue,
		"end_strength":   p.EndValue,
		"curve_param":    p.Spec.Param,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			problems = append(problems, fmt.Sprintf("%s (%v) must be finite", name, v))
		}
	}
	if d := p.EndValue - p.StartValue; math.IsInf(d, 0) {
		problems = append(problems, fmt.Sprintf(
			"strength range %g..%g is too wide", p.StartValue, p.EndValue))
	}
	if p.StartPosition >= p.EndPosition {
		problems = append(problems, fmt.Sprintf(
			"start_percent (%g) must be < end_percent (%g)", p.StartPosition, p.EndPosition))
	}
	if p.NumPoints < 2 {
		problems = append(problems, fmt.Sprintf("num_keyframes (%d) must be at least 2", p.NumPoints))
	} else if p.NumPoints > curve.MaxPoints {
		problems = append(problems, fmt.Sprintf("num_keyframes (%d) must be at most %d", p.NumPoints, curve.MaxPoints))
	}
	if p.Options.Clamp && p.Options.ClampMin > p.Options.ClampMax {
		problems = append(problems, fmt.Sprintf(
			"clamp_min (%g) must be <= clamp_max (%g)", p.Options.ClampMin, p.Options.ClampMax))
	}
	if len(problems) > 0 {
		// map iteration order is random; keep messages stable
		sort.Strings(problems)
		return nil, &ValidationError{Problems: problems}
	}

	if p.EndPosition-p.StartPosition < tinyRange && p.NumPoints > manyPointsInTiny {
		warnings = append(warnings, "too many keyframes for such a small range - may cause performance issues")
	}
	if p.StartValue < 0 || p.EndValue < 0 {
		warnings = append(warnings, fmt.Sprintf(
			"negative strength values detected (start: %g, end: %g)", p.StartValue, p.EndValue))
	}
	if p.StartValue == p.EndValue {
		warnings = append(warnings, fmt.Sprintf(
			"start and end strength are identical (%g) - curve will be flat", p.StartValue))
	}
	return warnings, nil
}

// Build samples p.Spec and returns the resulting keyframe sequence.
//
// Validation errors abort before any computation. Warnings are logged and
// recorded on the sequence.
func Build(p Params) (*Sequence, error) {
	warnings, err := Validate(p)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		log.Printf("[Warning] %s", w)
	}

	n := p.NumPoints
	opts := p.Options

	t := RepeatGrid(curve.Linspace(0, 1, n), opts.Repeat)
	c := curve.Evaluate(t, p.Spec)

	if opts.Mirror {
		c = Mirror(c)
	}
	if opts.Blend != nil && opts.BlendAmount > 0 {
		c = Blend(c, curve.Evaluate(t, *opts.Blend), opts.BlendAmount)
	}
	if opts.Invert {
		c = Invert(c)
	}
	if !finite(c) {
		log.Printf("[Error] NaN in curve, using linear")
		c = curve.Linspace(0, 1, n)
	}

	values := MapRange(c, p.StartValue, p.EndValue, p.Spec.Family)
	if !finite(values) {
		warnings = append(warnings, warnf("strengths overflowed for %s, using linear", p.Spec.Family))
		values = MapRange(curve.Linspace(0, 1, n), p.StartValue, p.EndValue, curve.Linear)
	}
	if opts.Clamp {
		values = Clamp(values, opts.ClampMin, opts.ClampMax)
	}

	positions := curve.Linspace(p.StartPosition, p.EndPosition, n)
	if opts.Adaptive && n > 2 {
		positions, values = Redistribute(positions, values)
	}

	kfs := make([]Keyframe, n)
	for i := range kfs {
		kfs[i] = Keyframe{Position: positions[i], Value: values[i], Anchor: i == 0}
	}

	return &Sequence{
		Keyframes:     kfs,
		Spec:          p.Spec,
		StartValue:    p.StartValue,
		EndValue:      p.EndValue,
		StartPosition: p.StartPosition,
		EndPosition:   p.EndPosition,
		Warnings:      warnings,
	}, nil
}

// PercentFromSteps interprets v as a step number when it exceeds 1 and
// converts it to a fraction of totalSteps. Values in [0,1] pass through.
func PercentFromSteps(v float64, totalSteps int) float64 {
	if v <= 1 {
		return v
	}
	return v / float64(max(totalSteps, 1))
}

func finite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

func warnf(format string, args ...interface{}) string {
	msg := fmt.Sprintf(format, args...)
	log.Printf("[Warning] %s", msg)
	return msg
}
