package keyframe

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/ironsheep/curve-tools-mcp/internal/curve"
)

const tolerance = 1e-9

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func linearParams(n int, start, end float64) Params {
	return Params{
		NumPoints:     n,
		StartPosition: 0,
		EndPosition:   1,
		StartValue:    start,
		EndValue:      end,
		Spec:          curve.Spec{Family: curve.Linear, Param: curve.DefaultParam},
	}
}

func assertSlice(t *testing.T, name string, got, want []float64, tol float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s length: got %d, want %d", name, len(got), len(want))
	}
	for i := range want {
		if !almostEqual(got[i], want[i], tol) {
			t.Errorf("%s[%d]: got %v, want %v", name, i, got[i], want[i])
		}
	}
}

func TestBuild_LinearFade(t *testing.T) {
	seq, err := Build(linearParams(5, 1, 0))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	assertSlice(t, "positions", seq.Positions(), []float64{0, 0.25, 0.5, 0.75, 1}, tolerance)
	assertSlice(t, "values", seq.Values(), []float64{1, 0.75, 0.5, 0.25, 0}, tolerance)

	for i, kf := range seq.Keyframes {
		if kf.Anchor != (i == 0) {
			t.Errorf("keyframe %d: anchor = %v", i, kf.Anchor)
		}
	}
	if len(seq.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", seq.Warnings)
	}
}

func TestBuild_PositionWindow(t *testing.T) {
	p := linearParams(3, 0, 1)
	p.StartPosition, p.EndPosition = 0.2, 0.6
	seq, err := Build(p)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	assertSlice(t, "positions", seq.Positions(), []float64{0.2, 0.4, 0.6}, tolerance)
}

func TestBuild_ValidationError(t *testing.T) {
	p := linearParams(1, 1, 0)
	p.StartPosition, p.EndPosition = 0.8, 0.2

	_, err := Build(p)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if len(ve.Problems) != 2 {
		t.Errorf("problems: got %d, want 2: %v", len(ve.Problems), ve.Problems)
	}
	msg := err.Error()
	for _, want := range []string{"input validation failed:", "start_percent (0.8) must be < end_percent (0.2)", "num_keyframes (1)"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
}

func TestBuild_NonFiniteInputRejected(t *testing.T) {
	p := linearParams(5, math.NaN(), 0)
	if _, err := Build(p); err == nil {
		t.Error("expected error for NaN start strength")
	}
}

func TestValidate_Warnings(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		want   string
	}{
		{"flat range", linearParams(5, 0.5, 0.5), "identical"},
		{"negative", linearParams(5, -1, 0), "negative strength"},
		{"crowded window", Params{NumPoints: 200, StartPosition: 0.5, EndPosition: 0.505, StartValue: 1}, "too many keyframes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings, err := Validate(tt.params)
			if err != nil {
				t.Fatalf("Validate failed: %v", err)
			}
			found := false
			for _, w := range warnings {
				if strings.Contains(w, tt.want) {
					found = true
				}
			}
			if !found {
				t.Errorf("warnings %v missing %q", warnings, tt.want)
			}
		})
	}
}

func TestBuild_WarningsRecorded(t *testing.T) {
	seq, err := Build(linearParams(3, 0.4, 0.4))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(seq.Warnings) == 0 {
		t.Error("expected a warning for identical strengths")
	}
}

func TestBuild_InvertMatchesSwappedRange(t *testing.T) {
	p := linearParams(5, 0, 1)
	p.Options.Invert = true
	inverted, err := Build(p)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	swapped, err := Build(linearParams(5, 1, 0))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	assertSlice(t, "values", inverted.Values(), swapped.Values(), tolerance)
}

func TestBuild_Mirror(t *testing.T) {
	p := linearParams(5, 0, 1)
	p.Options.Mirror = true
	seq, err := Build(p)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	assertSlice(t, "values", seq.Values(), []float64{0, 0.25, 0.5, 0.25, 0}, tolerance)
}

func TestBuild_Repeat(t *testing.T) {
	p := linearParams(5, 0, 1)
	p.Options.Repeat = 2
	seq, err := Build(p)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if seq.Len() != 5 {
		t.Fatalf("Len: got %d, want 5", seq.Len())
	}
	assertSlice(t, "values", seq.Values(), []float64{0, 0.5, 0, 0.5, 0}, tolerance)
}

func TestBuild_Blend(t *testing.T) {
	p := linearParams(3, 0, 1)
	p.Options.Blend = &curve.Spec{Family: curve.Linear}
	p.Options.BlendAmount = 0.5
	seq, err := Build(p)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	assertSlice(t, "values", seq.Values(), []float64{0, 0.5, 1}, tolerance)

	p.Options.Blend = &curve.Spec{Family: curve.EaseIn, Param: 2}
	seq, err = Build(p)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	// halfway between 0.5 and 0.25
	if !almostEqual(seq.Values()[1], 0.375, tolerance) {
		t.Errorf("blended mid value: got %v, want 0.375", seq.Values()[1])
	}
}

func TestBuild_Clamp(t *testing.T) {
	p := linearParams(3, 0, 20)
	p.Options.Clamp = true
	p.Options.ClampMin, p.Options.ClampMax = DefaultClampMin, DefaultClampMax
	seq, err := Build(p)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	assertSlice(t, "values", seq.Values(), []float64{0, 10, 10}, tolerance)

	p.Options.ClampMin, p.Options.ClampMax = 2, 5
	seq, err = Build(p)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	assertSlice(t, "values", seq.Values(), []float64{2, 5, 5}, tolerance)
}

func TestBuild_ClampToZero(t *testing.T) {
	p := linearParams(3, 0, 5)
	p.Options.Clamp = true
	seq, err := Build(p)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	assertSlice(t, "values", seq.Values(), []float64{0, 0, 0}, tolerance)
}

func TestBuild_RejectsOverflowingRange(t *testing.T) {
	_, err := Build(linearParams(3, 1e308, -1e308))
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if !strings.Contains(ve.Error(), "too wide") {
		t.Errorf("error should name the strength range: %v", ve)
	}
}

func TestBuild_OverflowFallsBackToLinear(t *testing.T) {
	// bell shapes over a flat range scale by 2*start, which overflows here
	p := linearParams(5, 1e308, 1e308)
	p.Spec = curve.Spec{Family: curve.BellCurve, Param: curve.DefaultParam}
	seq, err := Build(p)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	for i, v := range seq.Values() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("value %d is not finite: %v", i, v)
		}
		if v != 1e308 {
			t.Errorf("value %d: got %v, want 1e308", i, v)
		}
	}
	found := false
	for _, w := range seq.Warnings {
		if strings.Contains(w, "overflowed") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an overflow warning, got %v", seq.Warnings)
	}
}

func TestBuild_TooManyPoints(t *testing.T) {
	_, err := Build(linearParams(curve.MaxPoints+1, 1, 0))
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if !strings.Contains(ve.Error(), "at most") {
		t.Errorf("error should name the maximum: %v", ve)
	}

	if _, err := Build(linearParams(curve.MaxPoints, 1, 0)); err != nil {
		t.Errorf("MaxPoints should be accepted: %v", err)
	}
}

func TestBuild_FlatBellKeepsAmplitude(t *testing.T) {
	p := linearParams(5, 0.5, 0.5)
	p.Spec = curve.Spec{Family: curve.BellCurve, Param: 2}
	seq, err := Build(p)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	v := seq.Values()
	if !almostEqual(v[2], 1.0, 1e-6) {
		t.Errorf("peak: got %v, want 1.0", v[2])
	}
	if !almostEqual(v[0], 0, 1e-6) || !almostEqual(v[4], 0, 1e-6) {
		t.Errorf("ends: got %v and %v, want 0", v[0], v[4])
	}
}

func TestBuild_AdaptiveKeepsEndpoints(t *testing.T) {
	p := linearParams(9, 1, 0)
	p.Spec = curve.Spec{Family: curve.EaseIn, Param: 3}
	p.Options.Adaptive = true
	seq, err := Build(p)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	pos := seq.Positions()
	if pos[0] != 0 || pos[len(pos)-1] != 1 {
		t.Errorf("endpoints moved: %v", pos)
	}
	for i := 1; i < len(pos); i++ {
		if pos[i] < pos[i-1] {
			t.Fatalf("positions decrease at %d: %v", i, pos)
		}
	}
	if v := seq.Values(); v[0] != 1 || !almostEqual(v[len(v)-1], 0, tolerance) {
		t.Errorf("end values changed: %v", v)
	}
}

func TestPercentFromSteps(t *testing.T) {
	tests := []struct {
		v     float64
		total int
		want  float64
	}{
		{0.3, 20, 0.3},
		{1, 20, 1},
		{10, 20, 0.5},
		{5, 0, 5},
	}
	for _, tt := range tests {
		if got := PercentFromSteps(tt.v, tt.total); !almostEqual(got, tt.want, tolerance) {
			t.Errorf("PercentFromSteps(%v, %d): got %v, want %v", tt.v, tt.total, got, tt.want)
		}
	}
}
