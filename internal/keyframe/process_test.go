package keyframe

import (
	"testing"

	"github.com/ironsheep/curve-tools-mcp/internal/curve"
)

func TestRepeatGrid(t *testing.T) {
	grid := []float64{0, 0.25, 0.5, 0.75, 1}
	assertSlice(t, "repeat 2", RepeatGrid(grid, 2), []float64{0, 0.5, 0, 0.5, 0}, tolerance)
	assertSlice(t, "repeat 1", RepeatGrid(grid, 1), grid, tolerance)
}

func TestMirror(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want []float64
	}{
		{"odd", []float64{0, 1, 2, 3, 4}, []float64{0, 1, 2, 1, 0}},
		{"even", []float64{0, 1, 2, 3}, []float64{0, 1, 1, 0}},
		{"single", []float64{7}, []float64{7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Mirror(tt.in)
			assertSlice(t, "mirror", got, tt.want, tolerance)
			for i := range got {
				if got[i] != got[len(got)-1-i] {
					t.Errorf("not symmetric: %v", got)
				}
			}
		})
	}
}

func TestInvert_Twice(t *testing.T) {
	c := curve.Evaluate(curve.Linspace(0, 1, 7), curve.Spec{Family: curve.EaseInOut, Param: 2})
	assertSlice(t, "double invert", Invert(Invert(c)), c, 1e-12)
}

func TestBlend_ClampsAmount(t *testing.T) {
	a := []float64{0, 0}
	b := []float64{1, 1}
	assertSlice(t, "over", Blend(a, b, 2), b, tolerance)
	assertSlice(t, "under", Blend(a, b, -1), a, tolerance)
}

func TestMapRange_FlatConstantCurve(t *testing.T) {
	got := MapRange([]float64{0.3, 0.3, 0.3}, 0.5, 0.5, curve.SineWave)
	assertSlice(t, "values", got, []float64{0.5, 0.5, 0.5}, tolerance)
}

func TestMapRange_NonOscillatingFlatRange(t *testing.T) {
	got := MapRange([]float64{0, 0.5, 1}, 0.5, 0.5, curve.Linear)
	assertSlice(t, "values", got, []float64{0.5, 0.5, 0.5}, tolerance)
}

func TestRedistribute_ClustersAtSteepEnd(t *testing.T) {
	pos := []float64{0, 0.25, 0.5, 0.75, 1}
	val := []float64{0, 0, 0, 0, 1}

	newPos, newVal := Redistribute(pos, val)
	assertSlice(t, "positions", newPos, []float64{0, 0.8125, 0.875, 0.9375, 1}, tolerance)
	assertSlice(t, "values", newVal, []float64{0, 0.25, 0.5, 0.75, 1}, tolerance)

	if pos[1] != 0.25 {
		t.Error("input positions were modified")
	}
}

func TestRedistribute_ConstantUnchanged(t *testing.T) {
	pos := []float64{0, 0.5, 1}
	val := []float64{2, 2, 2}
	newPos, newVal := Redistribute(pos, val)
	assertSlice(t, "positions", newPos, pos, tolerance)
	assertSlice(t, "values", newVal, val, tolerance)
}

func TestAppend_DoesNotMutate(t *testing.T) {
	prev, err := Build(linearParams(3, 1, 0))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	next, err := Build(linearParams(2, 0, 1))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	joined := Append(prev, next)
	if joined.Len() != 5 {
		t.Fatalf("Len: got %d, want 5", joined.Len())
	}
	if prev.Len() != 3 || next.Len() != 2 {
		t.Errorf("inputs changed length: %d, %d", prev.Len(), next.Len())
	}
	joined.Keyframes[0].Value = 99
	if prev.Keyframes[0].Value == 99 {
		t.Error("Append shares storage with prev")
	}
	if joined.StartValue != next.StartValue {
		t.Errorf("metadata: got start %v, want %v", joined.StartValue, next.StartValue)
	}
	if Append(nil, nil).Len() != 0 {
		t.Error("Append(nil, nil) not empty")
	}
}

func TestAttachImages(t *testing.T) {
	seq, err := Build(linearParams(3, 1, 0))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	out := AttachImages(seq, 2)
	for i, kf := range out.Keyframes {
		switch {
		case i < 2 && (kf.ImageIndex == nil || *kf.ImageIndex != i):
			t.Errorf("keyframe %d: image index %v, want %d", i, kf.ImageIndex, i)
		case i >= 2 && kf.ImageIndex != nil:
			t.Errorf("keyframe %d: unexpected image index %d", i, *kf.ImageIndex)
		}
	}
	if len(out.Warnings) != 1 {
		t.Errorf("warnings: got %v, want one mismatch warning", out.Warnings)
	}
	if seq.Keyframes[0].ImageIndex != nil {
		t.Error("AttachImages modified its input")
	}

	if exact := AttachImages(seq, 3); len(exact.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", exact.Warnings)
	}
}
