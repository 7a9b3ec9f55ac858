package keyframe

import (
	"math"

	"github.com/ironsheep/curve-tools-mcp/internal/curve"
)

// flatRangeThreshold is the start/end strength difference below which
// oscillating families are centered on the start strength instead of being
// interpolated between nearly equal bounds.
const flatRangeThreshold = 0.01

// oscillating families keep their amplitude when the strength range is flat.
var oscillating = map[curve.Family]bool{
	curve.BellCurve:   true,
	curve.ReverseBell: true,
	curve.SineWave:    true,
}

// RepeatGrid remaps progress values to (t*repeat) mod 1 so the curve shape
// repeats that many times over the same number of points. repeat <= 1
// returns a copy of t.
func RepeatGrid(t []float64, repeat int) []float64 {
	out := make([]float64, len(t))
	for i, x := range t {
		if repeat > 1 {
			x = math.Mod(x*float64(repeat), 1)
		}
		out[i] = x
	}
	return out
}

// Mirror makes the curve symmetric about its midpoint: the second half
// becomes the reflection of the first. For odd lengths the center sample is
// kept.
func Mirror(c []float64) []float64 {
	out := append([]float64(nil), c...)
	n := len(out)
	for i := 0; i < n/2; i++ {
		out[n-1-i] = out[i]
	}
	return out
}

// Blend linearly interpolates a toward b by amount, clamped to [0,1].
// The shorter length wins if the slices differ.
func Blend(a, b []float64, amount float64) []float64 {
	amount = math.Max(0, math.Min(1, amount))
	n := min(len(a), len(b))
	out := make([]float64, n)
	for i := range out {
		out[i] = a[i]*(1-amount) + b[i]*amount
	}
	return out
}

// Invert flips a normalized curve: 1 - c.
func Invert(c []float64) []float64 {
	out := make([]float64, len(c))
	for i, x := range c {
		out[i] = 1 - x
	}
	return out
}

// MapRange maps a normalized curve onto strengths between start and end.
//
// For bell_curve, reverse_bell and sine_wave with |start-end| < 0.01 the
// curve is instead min-max normalized and centered on start, so the
// oscillation amplitude stays proportional to start rather than collapsing
// to a flat line. A constant curve in that case yields start everywhere.
func MapRange(c []float64, start, end float64, family curve.Family) []float64 {
	out := make([]float64, len(c))
	if oscillating[family] && math.Abs(start-end) < flatRangeThreshold {
		lo, hi := bounds(c)
		for i, x := range c {
			if hi > lo {
				out[i] = start + ((x-lo)/(hi-lo)-0.5)*start*2
			} else {
				out[i] = start
			}
		}
		return out
	}
	for i, x := range c {
		out[i] = start + (end-start)*x
	}
	return out
}

// Clamp limits every value to [lo, hi].
func Clamp(v []float64, lo, hi float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = math.Max(lo, math.Min(hi, x))
	}
	return out
}

// Redistribute resamples positions and values so that samples cluster where
// the values change fastest.
//
// The absolute differences between consecutive values are accumulated and
// normalized to [0,1]. New samples are taken at equal steps along that
// cumulative curve, with positions and values linearly interpolated at the
// matching fractional index. The first and last pairs are unchanged. A
// constant sequence, or one with fewer than three points, is returned as a
// copy.
func Redistribute(positions, values []float64) ([]float64, []float64) {
	n := min(len(positions), len(values))
	newPos := append([]float64(nil), positions[:n]...)
	newVal := append([]float64(nil), values[:n]...)
	if n < 3 {
		return newPos, newVal
	}

	cum := make([]float64, n)
	for i := 1; i < n; i++ {
		cum[i] = cum[i-1] + math.Abs(values[i]-values[i-1])
	}
	total := cum[n-1]
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return newPos, newVal
	}
	for i := range cum {
		cum[i] /= total
	}
	cum[n-1] = 1

	seg := 0
	for k := 1; k < n-1; k++ {
		target := float64(k) / float64(n-1)
		for seg < n-2 && cum[seg+1] < target {
			seg++
		}
		frac := 0.0
		if d := cum[seg+1] - cum[seg]; d > 0 {
			frac = (target - cum[seg]) / d
		}
		frac = math.Max(0, math.Min(1, frac))
		newPos[k] = lerp(positions[seg], positions[seg+1], frac)
		newVal[k] = lerp(values[seg], values[seg+1], frac)
	}
	return newPos, newVal
}

func lerp(a, b, f float64) float64 { return a + (b-a)*f }

func bounds(v []float64) (lo, hi float64) {
	if len(v) == 0 {
		return 0, 0
	}
	lo, hi = v[0], v[0]
	for _, x := range v[1:] {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	return lo, hi
}
