package curve

import (
	"strings"
	"testing"
)

func formulaRequest(p Pattern) FormulaRequest {
	return FormulaRequest{Pattern: p, Strength: 50, Speed: 50, NumPoints: 5}
}

func TestBuildFormula_Shapes(t *testing.T) {
	tests := []struct {
		name string
		req  func(*FormulaRequest)
		want []float64
	}{
		{"linear", func(r *FormulaRequest) {}, []float64{0, 0.25, 0.5, 0.75, 1}},
		{"ease in squares", func(r *FormulaRequest) { r.Pattern = PatternEaseIn }, []float64{0, 0.0625, 0.25, 0.5625, 1}},
		{"flip horizontal", func(r *FormulaRequest) { r.FlipHorizontal = true }, []float64{1, 0.75, 0.5, 0.25, 0}},
		{"flip vertical", func(r *FormulaRequest) { r.FlipVertical = true }, []float64{1, 0.75, 0.5, 0.25, 0}},
		{"repeat", func(r *FormulaRequest) { r.Repeat = 2 }, []float64{0, 0.5, 0, 0.5, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := formulaRequest(PatternLinear)
			tt.req(&req)
			res, err := BuildFormula(req)
			if err != nil {
				t.Fatalf("BuildFormula failed: %v", err)
			}
			if len(res.Values) != len(tt.want) {
				t.Fatalf("values: got %d, want %d", len(res.Values), len(tt.want))
			}
			for i := range tt.want {
				if !almostEqual(res.Values[i], tt.want[i], tolerance) {
					t.Errorf("value %d: got %v, want %v (formula %s)", i, res.Values[i], tt.want[i], res.Formula)
				}
			}
		})
	}
}

func TestBuildFormula_RoundTripsThroughEvaluateFormula(t *testing.T) {
	for _, p := range Patterns {
		t.Run(string(p), func(t *testing.T) {
			req := formulaRequest(p)
			req.NumPoints = 41
			res, err := BuildFormula(req)
			if err != nil {
				t.Fatalf("BuildFormula failed: %v", err)
			}

			got, err := EvaluateFormula(res.Formula, res.T)
			if err != nil {
				t.Fatalf("emitted formula %q rejected: %v", res.Formula, err)
			}
			want := append([]float64(nil), res.Values...)
			normalizeInPlace(want)
			for i := range want {
				if !almostEqual(got[i], want[i], 1e-9) {
					t.Errorf("t=%v: formula gives %v, builder gives %v", res.T[i], got[i], want[i])
				}
			}
		})
	}
}

func TestBuildFormula_ClampsToUnitRange(t *testing.T) {
	req := formulaRequest(PatternPeak)
	req.Strength = 100
	res, err := BuildFormula(req)
	if err != nil {
		t.Fatalf("BuildFormula failed: %v", err)
	}
	if res.Values[2] != 1 {
		t.Errorf("peak center: got %v, want 1", res.Values[2])
	}
	for i, v := range res.Values {
		if v < 0 || v > 1 {
			t.Errorf("value %d out of [0,1]: %v", i, v)
		}
	}
}

func TestBuildFormula_Description(t *testing.T) {
	res, err := BuildFormula(formulaRequest(PatternWave))
	if err != nil {
		t.Fatalf("BuildFormula failed: %v", err)
	}
	for _, want := range []string{"Pattern: wave", "Repeat: 1x", res.Formula, "custom_formula"} {
		if !strings.Contains(res.Description, want) {
			t.Errorf("description missing %q:\n%s", want, res.Description)
		}
	}
}

func TestBuildFormula_Errors(t *testing.T) {
	tests := []struct {
		name string
		req  func(*FormulaRequest)
	}{
		{"unknown pattern", func(r *FormulaRequest) { r.Pattern = "zigzag" }},
		{"strength too high", func(r *FormulaRequest) { r.Strength = 101 }},
		{"speed too low", func(r *FormulaRequest) { r.Speed = 5 }},
		{"too few points", func(r *FormulaRequest) { r.NumPoints = 1 }},
		{"too many points", func(r *FormulaRequest) { r.NumPoints = MaxPoints + 1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := formulaRequest(PatternSCurve)
			tt.req(&req)
			if _, err := BuildFormula(req); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
