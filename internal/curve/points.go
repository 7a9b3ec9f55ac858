package curve

import (
	"fmt"
	"math"
	"sort"

	bezier "honnef.co/go/curve"
)

// Interpolation selects how FromPoints connects control points.
type Interpolation string

const (
	InterpLinear      Interpolation = "linear"
	InterpHermite     Interpolation = "hermite"
	InterpCubicSpline Interpolation = "cubic_spline"
)

// maxDesignedValue caps designed curves, which may overshoot between
// control points.
const maxDesignedValue = 2.0

// ControlPoint is a user-placed point on the unit square.
type ControlPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PointCurve is a curve sampled through control points.
type PointCurve struct {
	Method     Interpolation  `json:"method"`
	Points     []ControlPoint `json:"points"`
	T          []float64      `json:"t"`
	Values     []float64      `json:"values"`
	Normalized bool           `json:"normalized"`
}

// FromPoints samples a curve through points at resolution evenly spaced
// progress values.
//
// Points are sorted by X and must have distinct X values. Outside the span
// of the points the curve holds the end values. When normalize is set the
// samples are min-max scaled to [0,1]; the result is always clamped to
// [0,2].
func FromPoints(points []ControlPoint, method Interpolation, resolution int, normalize bool) (*PointCurve, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("need at least 2 points, got %d", len(points))
	}
	if resolution < 2 || resolution > MaxPoints {
		return nil, fmt.Errorf("resolution must be between 2 and %d, got %d", MaxPoints, resolution)
	}

	sorted := make([]ControlPoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].X == sorted[i-1].X {
			return nil, fmt.Errorf("points must have distinct x values (x=%g repeated)", sorted[i].X)
		}
	}

	t := Linspace(0, 1, resolution)
	var values []float64
	switch method {
	case InterpLinear, "":
		method = InterpLinear
		values = mapEach(t, func(x float64) float64 { return interpLinear(sorted, x) })
	case InterpHermite:
		tangents := hermiteTangents(sorted)
		values = mapEach(t, func(x float64) float64 { return interpHermite(sorted, tangents, x) })
	case InterpCubicSpline:
		m := naturalSplineMoments(sorted)
		values = mapEach(t, func(x float64) float64 { return interpSpline(sorted, m, x) })
	default:
		return nil, fmt.Errorf("unknown interpolation method: %s", method)
	}

	if normalize {
		normalizeInPlace(values)
	}
	for i, v := range values {
		values[i] = math.Max(0, math.Min(maxDesignedValue, v))
	}

	return &PointCurve{
		Method:     method,
		Points:     sorted,
		T:          t,
		Values:     values,
		Normalized: normalize,
	}, nil
}

// segment finds the index j with pts[j].X <= x <= pts[j+1].X and the
// local parameter s in [0,1]. x outside the span clamps to an end.
func segment(pts []ControlPoint, x float64) (int, float64) {
	last := len(pts) - 1
	if x <= pts[0].X {
		return 0, 0
	}
	if x >= pts[last].X {
		return last - 1, 1
	}
	j := sort.Search(len(pts), func(i int) bool { return pts[i].X > x }) - 1
	s := (x - pts[j].X) / (pts[j+1].X - pts[j].X)
	return j, s
}

func interpLinear(pts []ControlPoint, x float64) float64 {
	j, s := segment(pts, x)
	return pts[j].Y + (pts[j+1].Y-pts[j].Y)*s
}

// hermiteTangents uses one-sided differences at the ends and central
// differences inside.
func hermiteTangents(pts []ControlPoint) []float64 {
	n := len(pts)
	m := make([]float64, n)
	for i := range pts {
		switch i {
		case 0:
			m[i] = (pts[1].Y - pts[0].Y) / (pts[1].X - pts[0].X)
		case n - 1:
			m[i] = (pts[i].Y - pts[i-1].Y) / (pts[i].X - pts[i-1].X)
		default:
			m[i] = (pts[i+1].Y - pts[i-1].Y) / (pts[i+1].X - pts[i-1].X)
		}
	}
	return m
}

// interpHermite evaluates the cubic Hermite segment as the equivalent
// Bezier: control values y0 + m0*dx/3 and y1 - m1*dx/3.
func interpHermite(pts []ControlPoint, tangents []float64, x float64) float64 {
	j, s := segment(pts, x)
	p0, p1 := pts[j], pts[j+1]
	dx := p1.X - p0.X
	seg := bezier.CubicBez{
		P0: bezier.Pt(p0.X, p0.Y),
		P1: bezier.Pt(p0.X+dx/3, p0.Y+tangents[j]*dx/3),
		P2: bezier.Pt(p1.X-dx/3, p1.Y-tangents[j+1]*dx/3),
		P3: bezier.Pt(p1.X, p1.Y),
	}
	return seg.Eval(s).Y
}

// naturalSplineMoments solves for the second derivatives of a natural
// cubic spline (zero curvature at both ends) with the Thomas algorithm.
func naturalSplineMoments(pts []ControlPoint) []float64 {
	n := len(pts)
	m := make([]float64, n)
	if n < 3 {
		return m
	}
	h := make([]float64, n-1)
	for i := range h {
		h[i] = pts[i+1].X - pts[i].X
	}
	// interior rows i = 1..n-2
	sub := make([]float64, n)
	diag := make([]float64, n)
	sup := make([]float64, n)
	rhs := make([]float64, n)
	for i := 1; i < n-1; i++ {
		sub[i] = h[i-1]
		diag[i] = 2 * (h[i-1] + h[i])
		sup[i] = h[i]
		rhs[i] = 6 * ((pts[i+1].Y-pts[i].Y)/h[i] - (pts[i].Y-pts[i-1].Y)/h[i-1])
	}
	for i := 2; i < n-1; i++ {
		w := sub[i] / diag[i-1]
		diag[i] -= w * sup[i-1]
		rhs[i] -= w * rhs[i-1]
	}
	m[n-2] = rhs[n-2] / diag[n-2]
	for i := n - 3; i >= 1; i-- {
		m[i] = (rhs[i] - sup[i]*m[i+1]) / diag[i]
	}
	return m
}

func interpSpline(pts []ControlPoint, m []float64, x float64) float64 {
	j, s := segment(pts, x)
	h := pts[j+1].X - pts[j].X
	a := 1 - s
	return a*pts[j].Y + s*pts[j+1].Y +
		((a*a*a-a)*m[j]+(s*s*s-s)*m[j+1])*h*h/6
}
