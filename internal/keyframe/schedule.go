package keyframe

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ironsheep/curve-tools-mcp/internal/curve"
)

// SlotWindow describes one weighted slot of a per-step schedule.
type SlotWindow struct {
	Name       string     `json:"name"`
	StartStep  int        `json:"start_step"`
	EndStep    int        `json:"end_step"`
	StartValue float64    `json:"start_strength"`
	EndValue   float64    `json:"end_strength"`
	Spec       curve.Spec `json:"curve"`
}

// SlotSchedule is the per-step weight list for one slot.
type SlotSchedule struct {
	Name      string    `json:"name"`
	StartStep int       `json:"start_step"`
	EndStep   int       `json:"end_step"`
	Weights   []float64 `json:"weights"`
	Average   float64   `json:"average_weight"`
}

// StepSchedule builds a weight per sampler step for every slot. Inside
// [StartStep, EndStep) the slot follows its curve from StartValue to
// EndValue; outside it the weight is zero. Window bounds are capped at
// numSteps and slots left with an empty window are skipped with a warning.
func StepSchedule(numSteps int, slots []SlotWindow) ([]SlotSchedule, []string, error) {
	if numSteps < 1 || numSteps > curve.MaxPoints {
		return nil, nil, &ValidationError{Problems: []string{
			fmt.Sprintf("num_steps (%d) must be between 1 and %d", numSteps, curve.MaxPoints),
		}}
	}

	var out []SlotSchedule
	var warnings []string
	for i, s := range slots {
		start := max(0, min(s.StartStep, numSteps))
		end := min(s.EndStep, numSteps)
		name := s.Name
		if name == "" {
			name = fmt.Sprintf("slot %d", i+1)
		}
		if start >= end {
			warnings = append(warnings, warnf("%s has invalid step range %d-%d, skipping", name, s.StartStep, s.EndStep))
			continue
		}

		t := curve.Linspace(0, 1, end-start)
		c := curve.Evaluate(t, s.Spec)
		weights := make([]float64, numSteps)
		sum := 0.0
		for j, x := range c {
			w := s.StartValue + (s.EndValue-s.StartValue)*x
			weights[start+j] = w
			sum += w
		}
		out = append(out, SlotSchedule{
			Name:      name,
			StartStep: start,
			EndStep:   end,
			Weights:   weights,
			Average:   sum / float64(len(c)),
		})
	}
	return out, warnings, nil
}

// Slot is one independently windowed sequence handled by Coordinate.
type Slot struct {
	Label         string     `json:"label"`
	Enabled       bool       `json:"enabled"`
	Preset        string     `json:"preset,omitempty"`
	StartPosition float64    `json:"start_percent"`
	EndPosition   float64    `json:"end_percent"`
	StartValue    float64    `json:"start_strength"`
	EndValue      float64    `json:"end_strength"`
	Spec          curve.Spec `json:"curve"`
}

// SlotResult pairs a slot with its built sequence after presets are applied.
type SlotResult struct {
	Slot     Slot      `json:"slot"`
	Sequence *Sequence `json:"sequence"`
}

// Coordination is the result of Coordinate.
type Coordination struct {
	Slots   []SlotResult `json:"slots"`
	Summary string       `json:"summary"`
}

// Coordinate builds one sequence of numPoints keyframes per enabled slot,
// each over its own percent window. A slot naming a preset found in
// presets takes its strengths and curve from it. Problems from every slot
// are reported together in one *ValidationError.
func Coordinate(numPoints int, slots []Slot, presets *curve.PresetRegistry) (*Coordination, error) {
	var problems []string
	res := &Coordination{}
	var lines []string

	for i, s := range slots {
		if s.Label == "" {
			s.Label = fmt.Sprintf("Slot %c", 'A'+rune(i%26))
		}
		if !s.Enabled {
			continue
		}
		if presets != nil {
			if p, ok := presets.Get(s.Preset); ok {
				s.StartValue, s.EndValue, s.Spec = p.Apply(s.Spec)
			}
		}

		seq, err := Build(Params{
			NumPoints:     numPoints,
			StartPosition: s.StartPosition,
			EndPosition:   s.EndPosition,
			StartValue:    s.StartValue,
			EndValue:      s.EndValue,
			Spec:          s.Spec,
		})
		if err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				for _, p := range ve.Problems {
					problems = append(problems, s.Label+": "+p)
				}
				continue
			}
			return nil, fmt.Errorf("%s: %w", s.Label, err)
		}

		res.Slots = append(res.Slots, SlotResult{Slot: s, Sequence: seq})
		lines = append(lines, fmt.Sprintf("%s: %s | %.2f->%.2f | [%.2f-%.2f]",
			s.Label, s.Spec.Family, s.StartValue, s.EndValue, s.StartPosition, s.EndPosition))
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}
	if len(lines) == 0 {
		res.Summary = "No active slots"
	} else {
		res.Summary = fmt.Sprintf("Active slots: %d\n%s", len(lines), strings.Join(lines, "\n"))
	}
	return res, nil
}
