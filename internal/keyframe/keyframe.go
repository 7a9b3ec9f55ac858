package keyframe

import "github.com/ironsheep/curve-tools-mcp/internal/curve"

// Keyframe is a single (position, strength) control point in a schedule.
type Keyframe struct {
	// Position is normalized generation progress in [0,1].
	Position float64 `json:"percent"`

	// Value is the strength at Position.
	Value float64 `json:"strength"`

	// Anchor marks the keyframe that must persist for at least one step.
	// Only the first keyframe produced by Build sets it.
	Anchor bool `json:"anchor"`

	// ImageIndex selects the batch image driving this keyframe, if any.
	ImageIndex *int `json:"image_index,omitempty"`
}

// Sequence is an ordered run of keyframes together with the inputs that
// produced it.
type Sequence struct {
	Keyframes     []Keyframe `json:"keyframes"`
	Spec          curve.Spec `json:"curve"`
	StartValue    float64    `json:"start_strength"`
	EndValue      float64    `json:"end_strength"`
	StartPosition float64    `json:"start_percent"`
	EndPosition   float64    `json:"end_percent"`
	Warnings      []string   `json:"warnings,omitempty"`
}

// Len returns the number of keyframes.
func (s *Sequence) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Keyframes)
}

// Positions returns a copy of the keyframe positions.
func (s *Sequence) Positions() []float64 {
	out := make([]float64, s.Len())
	for i := range out {
		out[i] = s.Keyframes[i].Position
	}
	return out
}

// Values returns a copy of the keyframe strengths.
func (s *Sequence) Values() []float64 {
	out := make([]float64, s.Len())
	for i := range out {
		out[i] = s.Keyframes[i].Value
	}
	return out
}

// Append returns a new sequence holding prev's keyframes followed by
// next's. Metadata comes from next. Either argument may be nil; neither is
// modified.
func Append(prev, next *Sequence) *Sequence {
	out := &Sequence{}
	if next != nil {
		*out = *next
		out.Warnings = append([]string(nil), next.Warnings...)
	}
	out.Keyframes = make([]Keyframe, 0, prev.Len()+next.Len())
	if prev != nil {
		out.Keyframes = append(out.Keyframes, prev.Keyframes...)
	}
	if next != nil {
		out.Keyframes = append(out.Keyframes, next.Keyframes...)
	}
	return out
}

// AttachImages returns a copy of seq whose first batchSize keyframes carry
// ImageIndex i. A mismatch between batchSize and the keyframe count is
// reported as a warning on the copy.
func AttachImages(seq *Sequence, batchSize int) *Sequence {
	out := Append(nil, seq)
	for i := range out.Keyframes {
		if i >= batchSize {
			break
		}
		idx := i
		out.Keyframes[i].ImageIndex = &idx
	}
	if batchSize != out.Len() {
		out.Warnings = append(out.Warnings, warnf(
			"batch size (%d) != number of keyframes (%d)", batchSize, out.Len()))
	}
	return out
}
