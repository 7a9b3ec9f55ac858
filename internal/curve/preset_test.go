package curve

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPresetRegistry_Builtins(t *testing.T) {
	r := NewPresetRegistry()

	p, ok := r.Get("Fade Out")
	if !ok {
		t.Fatal("Fade Out preset missing")
	}
	if p.StartValue != 1.0 || p.EndValue != 0.0 || p.Family != EaseOut || p.Param != 2.0 {
		t.Errorf("Fade Out: got %+v", p)
	}

	if _, ok := r.Get(CustomPreset); ok {
		t.Error("Custom should not resolve to a preset")
	}
	if _, ok := r.Get("Nope"); ok {
		t.Error("unknown preset should not resolve")
	}

	names := r.Names()
	if names[0] != CustomPreset {
		t.Errorf("Names()[0]: got %q, want %q", names[0], CustomPreset)
	}
	if len(names) != len(builtinPresets)+1 {
		t.Errorf("len(Names()): got %d, want %d", len(names), len(builtinPresets)+1)
	}
}

func TestPreset_Apply(t *testing.T) {
	r := NewPresetRegistry()
	p, _ := r.Get("Oscillating")

	start, end, spec := p.Apply(Spec{Family: Linear, Param: 9, Formula: "t"})
	if start != 0.5 || end != 0.5 {
		t.Errorf("start/end: got %v/%v, want 0.5/0.5", start, end)
	}
	if spec.Family != SineWave || spec.Param != 3.0 {
		t.Errorf("spec: got %+v", spec)
	}
	if spec.Formula != "t" {
		t.Errorf("Formula: got %q, want kept", spec.Formula)
	}
}

func writePresetFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "presets.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write presets: %v", err)
	}
	return path
}

func TestPresetRegistry_LoadFile(t *testing.T) {
	path := writePresetFile(t, `
presets:
  - name: Late Fade
    start_strength: 1.0
    end_strength: 0.2
    curve_type: ease_in
    curve_param: 3
  - name: Fade In
    start_strength: 0.1
    end_strength: 0.9
    curve_type: linear
`)
	r := NewPresetRegistry()
	if err := r.LoadFile(path); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	late, ok := r.Get("Late Fade")
	if !ok {
		t.Fatal("Late Fade missing")
	}
	if late.EndValue != 0.2 || late.Family != EaseIn || late.Param != 3 {
		t.Errorf("Late Fade: got %+v", late)
	}

	fadeIn, _ := r.Get("Fade In")
	if fadeIn.Family != Linear || fadeIn.Param != DefaultParam {
		t.Errorf("Fade In override: got %+v", fadeIn)
	}

	list := r.List()
	if list[len(list)-1].Name != "Late Fade" {
		t.Errorf("new preset should be appended, last is %q", list[len(list)-1].Name)
	}
	if len(list) != len(builtinPresets)+1 {
		t.Errorf("len(List()): got %d, want %d", len(list), len(builtinPresets)+1)
	}
}

func TestPresetRegistry_LoadFileErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad family", "presets:\n  - name: X\n    curve_type: spiral\n"},
		{"empty name", "presets:\n  - curve_type: linear\n"},
		{"custom name", "presets:\n  - name: Custom\n    curve_type: linear\n"},
		{"not yaml", "presets: [unterminated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewPresetRegistry()
			before := len(r.List())
			if err := r.LoadFile(writePresetFile(t, tt.body)); err == nil {
				t.Fatal("expected error, got nil")
			}
			if len(r.List()) != before {
				t.Error("registry changed after failed load")
			}
		})
	}

	if err := NewPresetRegistry().LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
