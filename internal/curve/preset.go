package curve

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CustomPreset is the preset name that applies no overrides.
const CustomPreset = "Custom"

// Preset is a named curve configuration. Applying a preset overrides the
// caller's start/end strength, family and shape parameter.
type Preset struct {
	Name       string  `json:"name" yaml:"name"`
	StartValue float64 `json:"start_strength" yaml:"start_strength"`
	EndValue   float64 `json:"end_strength" yaml:"end_strength"`
	Family     Family  `json:"curve_type" yaml:"curve_type"`
	Param      float64 `json:"curve_param" yaml:"curve_param"`
}

// Apply returns the preset's start/end strength and a spec carrying its
// family and parameter. The formula of spec is kept so custom_formula
// presets still have an expression to evaluate.
func (p Preset) Apply(spec Spec) (start, end float64, out Spec) {
	return p.StartValue, p.EndValue, Spec{Family: p.Family, Param: p.Param, Formula: spec.Formula}
}

var builtinPresets = []Preset{
	{Name: "Fade Out", StartValue: 1.0, EndValue: 0.0, Family: EaseOut, Param: 2.0},
	{Name: "Fade In", StartValue: 0.0, EndValue: 1.0, Family: EaseIn, Param: 2.0},
	{Name: "Peak Control", StartValue: 0.5, EndValue: 0.5, Family: BellCurve, Param: 2.0},
	{Name: "Valley Control", StartValue: 0.5, EndValue: 0.5, Family: ReverseBell, Param: 2.0},
	{Name: "Strong Start+End", StartValue: 0.5, EndValue: 0.5, Family: ReverseBell, Param: 3.0},
	{Name: "Oscillating", StartValue: 0.5, EndValue: 0.5, Family: SineWave, Param: 3.0},
	{Name: "Exponential Decay", StartValue: 1.0, EndValue: 0.0, Family: Exponential, Param: 4.0},
	{Name: "Smooth Transition", StartValue: 1.0, EndValue: 0.0, Family: EaseInOut, Param: 2.0},
}

// PresetRegistry holds the presets known to the server, in display order.
//
// The registry is populated at startup and read afterwards; it is not
// safe for concurrent mutation.
type PresetRegistry struct {
	order   []string
	presets map[string]Preset
}

// NewPresetRegistry returns a registry holding the built-in presets.
func NewPresetRegistry() *PresetRegistry {
	r := &PresetRegistry{presets: make(map[string]Preset)}
	for _, p := range builtinPresets {
		r.Add(p)
	}
	return r
}

// Add registers p, replacing any preset with the same name.
func (r *PresetRegistry) Add(p Preset) {
	if _, ok := r.presets[p.Name]; !ok {
		r.order = append(r.order, p.Name)
	}
	r.presets[p.Name] = p
}

// Get looks up a preset. The Custom preset and unknown names report false.
func (r *PresetRegistry) Get(name string) (Preset, bool) {
	if name == "" || name == CustomPreset {
		return Preset{}, false
	}
	p, ok := r.presets[name]
	return p, ok
}

// List returns the presets in display order.
func (r *PresetRegistry) List() []Preset {
	out := make([]Preset, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.presets[name])
	}
	return out
}

// Names returns Custom followed by every preset name, for tool schemas.
func (r *PresetRegistry) Names() []string {
	return append([]string{CustomPreset}, r.order...)
}

type presetFile struct {
	Presets []Preset `yaml:"presets"`
}

// LoadFile reads additional presets from a YAML file of the form:
//
//	presets:
//	  - name: Late Fade
//	    start_strength: 1.0
//	    end_strength: 0.2
//	    curve_type: ease_in
//	    curve_param: 3
//
// Entries with an unknown curve_type or an empty name are rejected and
// nothing from the file is registered.
func (r *PresetRegistry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read presets: %w", err)
	}
	var f presetFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to parse presets: %w", err)
	}
	for i, p := range f.Presets {
		if p.Name == "" || p.Name == CustomPreset {
			return fmt.Errorf("preset %d: invalid name %q", i, p.Name)
		}
		if !p.Family.Valid() {
			return fmt.Errorf("preset %q: unknown curve_type %q", p.Name, p.Family)
		}
		if p.Param == 0 {
			f.Presets[i].Param = DefaultParam
		}
	}
	for _, p := range f.Presets {
		r.Add(p)
	}
	return nil
}
