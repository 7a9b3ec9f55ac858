// Package stats summarizes sampled strength curves.
package stats

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Errors returned by Summarize.
var (
	ErrEmpty          = errors.New("no samples")
	ErrLengthMismatch = errors.New("positions and values differ in length")
	ErrNonFinite      = errors.New("non-finite sample")
)

// Stats is a read-only summary of a sampled curve.
type Stats struct {
	Mean         float64 `json:"mean"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	PeakPosition float64 `json:"peak_position"`
	Area         float64 `json:"area"`
	MeanAbsDelta float64 `json:"mean_abs_delta"`
	Count        int     `json:"count"`
}

// Summarize computes the mean, extremes, position of the first maximum,
// trapezoidal area over positions and mean absolute first difference of
// values. The inputs are not modified.
func Summarize(positions, values []float64) (Stats, error) {
	n := len(values)
	if n == 0 {
		return Stats{}, ErrEmpty
	}
	if len(positions) != n {
		return Stats{}, fmt.Errorf("%w: %d positions, %d values", ErrLengthMismatch, len(positions), n)
	}
	for i := range values {
		if !isFinite(values[i]) || !isFinite(positions[i]) {
			return Stats{}, fmt.Errorf("%w at index %d", ErrNonFinite, i)
		}
	}

	s := Stats{Min: values[0], Max: values[0], PeakPosition: positions[0], Count: n}
	sum := values[0]
	for i := 1; i < n; i++ {
		v := values[i]
		sum += v
		if v > s.Max {
			s.Max = v
			s.PeakPosition = positions[i]
		}
		s.Min = math.Min(s.Min, v)
		s.Area += (positions[i] - positions[i-1]) * (v + values[i-1]) / 2
		s.MeanAbsDelta += math.Abs(v - values[i-1])
	}
	s.Mean = sum / float64(n)
	if n > 1 {
		s.MeanAbsDelta /= float64(n - 1)
	}
	return s, nil
}

// Report formats s as a short text block for tool output.
func (s Stats) Report() string {
	var b strings.Builder
	b.WriteString("Curve Statistics:\n")
	b.WriteString("============================\n")
	fmt.Fprintf(&b, "Average Strength: %.3f\n", s.Mean)
	fmt.Fprintf(&b, "Max Strength: %.3f (at %.1f%%)\n", s.Max, s.PeakPosition*100)
	fmt.Fprintf(&b, "Min Strength: %.3f\n", s.Min)
	fmt.Fprintf(&b, "Area Under Curve: %.3f\n", s.Area)
	fmt.Fprintf(&b, "Avg Rate of Change: %.4f\n", s.MeanAbsDelta)
	fmt.Fprintf(&b, "Total Keyframes: %d\n", s.Count)
	b.WriteString("============================")
	return b.String()
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
