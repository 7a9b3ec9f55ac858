package server

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ironsheep/curve-tools-mcp/internal/curve"
	"github.com/ironsheep/curve-tools-mcp/internal/imaging"
	"github.com/ironsheep/curve-tools-mcp/internal/keyframe"
	"github.com/ironsheep/curve-tools-mcp/internal/stats"
)

// Argument defaults shared by the tool handlers.
const (
	defaultNumPoints     = 10
	defaultSamples       = 100
	defaultTotalSteps    = 20
	defaultStartStrength = 1.0
	defaultEndStrength   = 0.0
	defaultStartSigma    = 0.5
	defaultEndSigma      = 6.0
	maxSigma             = 1e6
	defaultSlider        = 50.0
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "curve_keyframes", "mask_combine").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Resolves presets and loads masks or images as needed
//  4. Calls the appropriate curve/keyframe/stats/imaging function
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(bytes.TrimSpace(args)) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Curve Evaluation
	case "curve_evaluate":
		return s.handleCurveEvaluate(args)
	case "curve_presets":
		return s.handleCurvePresets(args)
	case "curve_from_points":
		return s.handleCurveFromPoints(args)
	case "curve_formula_builder":
		return s.handleCurveFormulaBuilder(args)

	// Keyframe Scheduling
	case "curve_keyframes":
		return s.handleCurveKeyframes(args)
	case "curve_stats":
		return s.handleCurveStats(args)
	case "curve_export_csv":
		return s.handleCurveExportCSV(args)
	case "curve_coordinate":
		return s.handleCurveCoordinate(args)
	case "curve_step_schedule":
		return s.handleCurveStepSchedule(args)

	// Mask Operations
	case "mask_symmetry":
		return s.handleMaskSymmetry(args)
	case "mask_combine":
		return s.handleMaskCombine(args)
	case "mask_clean":
		return s.handleMaskClean(args)

	// Image Operations
	case "image_blur_schedule":
		return s.handleImageBlurSchedule(args)
	case "image_cache_clear":
		return s.handleImageCacheClear(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

func floatOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// === Shared Argument Types ===

// curveArgs selects a curve. A missing family is linear and a missing
// parameter is curve.DefaultParam.
type curveArgs struct {
	CurveType  string   `json:"curve_type"`
	CurveParam *float64 `json:"curve_param"`
	Formula    string   `json:"formula"`
}

func (a curveArgs) spec() curve.Spec {
	return makeSpec(a.CurveType, a.CurveParam, a.Formula)
}

func makeSpec(family string, param *float64, formula string) curve.Spec {
	spec := curve.Spec{
		Family:  curve.Family(family),
		Param:   floatOr(param, curve.DefaultParam),
		Formula: formula,
	}
	if spec.Family == "" {
		spec.Family = curve.Linear
	}
	return spec
}

// windowArgs carries the keyframe count and the position/strength window.
type windowArgs struct {
	NumPoints     int      `json:"num_points"`
	StartPercent  *float64 `json:"start_percent"`
	EndPercent    *float64 `json:"end_percent"`
	StartStrength *float64 `json:"start_strength"`
	EndStrength   *float64 `json:"end_strength"`
}

// params fills a keyframe.Params from the window and curve, then applies
// the named preset, if any.
func (s *Server) params(w windowArgs, c curveArgs, preset string) keyframe.Params {
	if w.NumPoints == 0 {
		w.NumPoints = defaultNumPoints
	}
	p := keyframe.Params{
		NumPoints:     w.NumPoints,
		StartPosition: floatOr(w.StartPercent, 0),
		EndPosition:   floatOr(w.EndPercent, 1),
		StartValue:    floatOr(w.StartStrength, defaultStartStrength),
		EndValue:      floatOr(w.EndStrength, defaultEndStrength),
		Spec:          c.spec(),
	}
	if pr, ok := s.presets.Get(preset); ok {
		p.StartValue, p.EndValue, p.Spec = pr.Apply(p.Spec)
	}
	return p
}

// sequenceGraph renders seq as a single-series graph with its window shaded.
func sequenceGraph(title string, seq *keyframe.Sequence, compare *curve.Spec) (*imaging.ImageResult, error) {
	spec := imaging.GraphSpec{
		Title:    title,
		XLabel:   "Generation Progress (%)",
		YLabel:   "Strength",
		XPercent: true,
		Series: []imaging.Series{{
			Label: string(seq.Spec.Family),
			X:     seq.Positions(),
			Y:     seq.Values(),
		}},
		Windows: []imaging.Window{{Start: seq.StartPosition, End: seq.EndPosition}},
	}
	if compare != nil {
		t := curve.Linspace(0, 1, seq.Len())
		c := keyframe.MapRange(curve.Evaluate(t, *compare), seq.StartValue, seq.EndValue, compare.Family)
		spec.Series = append(spec.Series, imaging.Series{
			Label:  string(compare.Family),
			X:      curve.Linspace(seq.StartPosition, seq.EndPosition, seq.Len()),
			Y:      c,
			Dashed: true,
		})
	}
	return imaging.RenderGraph(spec)
}

// === Curve Evaluation Handlers ===

type curveEvaluateArgs struct {
	curveArgs
	NumPoints int  `json:"num_points"`
	ShowGraph bool `json:"show_graph"`
}

type curveEvaluateResult struct {
	Spec   curve.Spec           `json:"curve"`
	T      []float64            `json:"t"`
	Values []float64            `json:"values"`
	Graph  *imaging.ImageResult `json:"graph,omitempty"`
}

func (s *Server) handleCurveEvaluate(args json.RawMessage) (interface{}, error) {
	var a curveEvaluateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.NumPoints == 0 {
		a.NumPoints = defaultSamples
	}
	if a.NumPoints < 1 || a.NumPoints > curve.MaxPoints {
		return nil, fmt.Errorf("num_points must be between 1 and %d, got %d", curve.MaxPoints, a.NumPoints)
	}

	spec := a.spec()
	t := curve.Linspace(0, 1, a.NumPoints)
	res := &curveEvaluateResult{Spec: spec, T: t, Values: curve.Evaluate(t, spec)}
	if a.ShowGraph {
		g, err := imaging.RenderGraph(imaging.GraphSpec{
			Title:    string(spec.Family),
			XLabel:   "t",
			YLabel:   "Value",
			XPercent: true,
			Series:   []imaging.Series{{Label: string(spec.Family), X: res.T, Y: res.Values}},
		})
		if err != nil {
			return nil, err
		}
		res.Graph = g
	}
	return res, nil
}

func (s *Server) handleCurvePresets(args json.RawMessage) (interface{}, error) {
	return map[string]interface{}{
		"presets": s.presets.List(),
		"names":   s.presets.Names(),
	}, nil
}

type curveFormulaBuilderArgs struct {
	Pattern        string   `json:"pattern"`
	Strength       *float64 `json:"strength"`
	Speed          *float64 `json:"speed"`
	NumPoints      int      `json:"num_points"`
	FlipVertical   bool     `json:"flip_vertical"`
	FlipHorizontal bool     `json:"flip_horizontal"`
	Repeat         int      `json:"repeat"`
	ShowGraph      bool     `json:"show_graph"`
}

type curveFormulaBuilderResult struct {
	*curve.BuiltFormula
	Graph *imaging.ImageResult `json:"graph,omitempty"`
}

func (s *Server) handleCurveFormulaBuilder(args json.RawMessage) (interface{}, error) {
	var a curveFormulaBuilderArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Pattern == "" {
		a.Pattern = string(curve.PatternSCurve)
	}
	if a.NumPoints == 0 {
		a.NumPoints = defaultSamples
	}

	built, err := curve.BuildFormula(curve.FormulaRequest{
		Pattern:        curve.Pattern(a.Pattern),
		Strength:       floatOr(a.Strength, defaultSlider),
		Speed:          floatOr(a.Speed, defaultSlider),
		NumPoints:      a.NumPoints,
		FlipVertical:   a.FlipVertical,
		FlipHorizontal: a.FlipHorizontal,
		Repeat:         a.Repeat,
	})
	if err != nil {
		return nil, err
	}
	res := &curveFormulaBuilderResult{BuiltFormula: built}
	if a.ShowGraph {
		g, err := imaging.RenderGraph(imaging.GraphSpec{
			Title:    a.Pattern,
			XLabel:   "Progress",
			YLabel:   "Strength",
			XPercent: true,
			Series:   []imaging.Series{{Label: a.Pattern, X: built.T, Y: built.Values}},
		})
		if err != nil {
			return nil, err
		}
		res.Graph = g
	}
	return res, nil
}

type curveFromPointsArgs struct {
	Points     []curve.ControlPoint `json:"points"`
	Method     string               `json:"method"`
	Resolution int                  `json:"resolution"`
	Normalize  *bool                `json:"normalize"`
	ShowGraph  bool                 `json:"show_graph"`
}

type curveFromPointsResult struct {
	*curve.PointCurve
	Graph *imaging.ImageResult `json:"graph,omitempty"`
}

func (s *Server) handleCurveFromPoints(args json.RawMessage) (interface{}, error) {
	var a curveFromPointsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Method == "" {
		a.Method = string(curve.InterpCubicSpline)
	}
	if a.Resolution == 0 {
		a.Resolution = defaultSamples
	}

	pc, err := curve.FromPoints(a.Points, curve.Interpolation(a.Method), a.Resolution, boolOr(a.Normalize, true))
	if err != nil {
		return nil, err
	}
	res := &curveFromPointsResult{PointCurve: pc}
	if a.ShowGraph {
		px := make([]float64, len(pc.Points))
		py := make([]float64, len(pc.Points))
		for i, p := range pc.Points {
			px[i], py[i] = p.X, p.Y
		}
		g, err := imaging.RenderGraph(imaging.GraphSpec{
			Title:    "Designed Curve (" + string(pc.Method) + ")",
			XLabel:   "t",
			YLabel:   "Value",
			XPercent: true,
			Series: []imaging.Series{
				{Label: string(pc.Method), X: pc.T, Y: pc.Values},
				{Label: "control points", X: px, Y: py, Dashed: true},
			},
		})
		if err != nil {
			return nil, err
		}
		res.Graph = g
	}
	return res, nil
}

// === Keyframe Scheduling Handlers ===

type curveKeyframesArgs struct {
	windowArgs
	curveArgs
	Preset string `json:"preset"`

	StepsMode  bool `json:"steps_mode"`
	TotalSteps int  `json:"total_steps"`

	Repeat          int      `json:"repeat"`
	Mirror          bool     `json:"mirror"`
	BlendCurveType  string   `json:"blend_curve_type"`
	BlendCurveParam *float64 `json:"blend_curve_param"`
	BlendFormula    string   `json:"blend_formula"`
	BlendAmount     float64  `json:"blend_amount"`
	Invert          bool     `json:"invert"`
	Clamp           bool     `json:"clamp"`
	ClampMin        *float64 `json:"clamp_min"`
	ClampMax        *float64 `json:"clamp_max"`
	Adaptive        bool     `json:"adaptive"`

	BatchSize     int             `json:"batch_size"`
	PrevKeyframes json.RawMessage `json:"prev_keyframes"`

	CSVPath          string `json:"csv_path"`
	ShowGraph        bool   `json:"show_graph"`
	CompareCurveType string `json:"compare_curve_type"`
}

type curveKeyframesResult struct {
	Keyframes *keyframe.Sequence   `json:"keyframes"`
	Stats     stats.Stats          `json:"stats"`
	Report    string               `json:"report"`
	CSVPath   string               `json:"csv_path,omitempty"`
	Graph     *imaging.ImageResult `json:"graph,omitempty"`
}

func (s *Server) handleCurveKeyframes(args json.RawMessage) (interface{}, error) {
	var a curveKeyframesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	p := s.params(a.windowArgs, a.curveArgs, a.Preset)
	if a.StepsMode {
		if a.TotalSteps == 0 {
			a.TotalSteps = defaultTotalSteps
		}
		p.StartPosition = keyframe.PercentFromSteps(p.StartPosition, a.TotalSteps)
		p.EndPosition = keyframe.PercentFromSteps(p.EndPosition, a.TotalSteps)
	}
	p.Options = keyframe.Options{
		Repeat:      a.Repeat,
		Mirror:      a.Mirror,
		BlendAmount: a.BlendAmount,
		Invert:      a.Invert,
		Clamp:       a.Clamp,
		ClampMin:    floatOr(a.ClampMin, keyframe.DefaultClampMin),
		ClampMax:    floatOr(a.ClampMax, keyframe.DefaultClampMax),
		Adaptive:    a.Adaptive,
	}
	if a.BlendCurveType != "" {
		blend := makeSpec(a.BlendCurveType, a.BlendCurveParam, a.BlendFormula)
		p.Options.Blend = &blend
	}

	seq, err := keyframe.Build(p)
	if err != nil {
		return nil, err
	}
	if a.BatchSize > 0 {
		seq = keyframe.AttachImages(seq, a.BatchSize)
	}

	st, err := stats.Summarize(seq.Positions(), seq.Values())
	if err != nil {
		return nil, err
	}
	res := &curveKeyframesResult{Stats: st, Report: st.Report()}

	if a.ShowGraph {
		title := a.Preset
		if title == "" || title == curve.CustomPreset {
			title = "Keyframe Schedule"
		}
		var compare *curve.Spec
		if a.CompareCurveType != "" {
			c := makeSpec(a.CompareCurveType, a.CurveParam, "")
			compare = &c
		}
		g, err := sequenceGraph(title, seq, compare)
		if err != nil {
			return nil, err
		}
		res.Graph = g
	}

	if len(a.PrevKeyframes) > 0 && string(a.PrevKeyframes) != "null" {
		var prev keyframe.Sequence
		if err := json.Unmarshal(a.PrevKeyframes, &prev); err != nil {
			return nil, fmt.Errorf("invalid prev_keyframes: %w", err)
		}
		seq = keyframe.Append(&prev, seq)
	}
	res.Keyframes = seq

	if a.CSVPath != "" {
		if err := keyframe.ExportCSV(a.CSVPath, seq); err != nil {
			return nil, err
		}
		res.CSVPath = a.CSVPath
	}
	return res, nil
}

type curveStatsArgs struct {
	Positions []float64 `json:"positions"`
	Values    []float64 `json:"values"`
}

func (s *Server) handleCurveStats(args json.RawMessage) (interface{}, error) {
	var a curveStatsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	st, err := stats.Summarize(a.Positions, a.Values)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"stats":  st,
		"report": st.Report(),
	}, nil
}

type curveExportCSVArgs struct {
	windowArgs
	curveArgs
	Path   string `json:"path"`
	Preset string `json:"preset"`
}

func (s *Server) handleCurveExportCSV(args json.RawMessage) (interface{}, error) {
	var a curveExportCSVArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}

	seq, err := keyframe.Build(s.params(a.windowArgs, a.curveArgs, a.Preset))
	if err != nil {
		return nil, err
	}
	if err := keyframe.ExportCSV(a.Path, seq); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"path":      a.Path,
		"keyframes": seq.Len(),
		"warnings":  seq.Warnings,
	}, nil
}

type slotArgs struct {
	curveArgs
	Label         string   `json:"label"`
	Enabled       *bool    `json:"enabled"`
	Preset        string   `json:"preset"`
	StartPercent  *float64 `json:"start_percent"`
	EndPercent    *float64 `json:"end_percent"`
	StartStrength *float64 `json:"start_strength"`
	EndStrength   *float64 `json:"end_strength"`
}

type curveCoordinateArgs struct {
	NumPoints int        `json:"num_points"`
	Slots     []slotArgs `json:"slots"`
	ShowGraph bool       `json:"show_graph"`
}

type curveCoordinateResult struct {
	*keyframe.Coordination
	Graph *imaging.ImageResult `json:"graph,omitempty"`
}

func (s *Server) handleCurveCoordinate(args json.RawMessage) (interface{}, error) {
	var a curveCoordinateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.NumPoints == 0 {
		a.NumPoints = defaultNumPoints
	}

	slots := make([]keyframe.Slot, len(a.Slots))
	for i, sa := range a.Slots {
		slots[i] = keyframe.Slot{
			Label:         sa.Label,
			Enabled:       boolOr(sa.Enabled, true),
			Preset:        sa.Preset,
			StartPosition: floatOr(sa.StartPercent, 0),
			EndPosition:   floatOr(sa.EndPercent, 1),
			StartValue:    floatOr(sa.StartStrength, defaultStartStrength),
			EndValue:      floatOr(sa.EndStrength, defaultEndStrength),
			Spec:          sa.spec(),
		}
	}

	coord, err := keyframe.Coordinate(a.NumPoints, slots, s.presets)
	if err != nil {
		return nil, err
	}
	res := &curveCoordinateResult{Coordination: coord}
	if a.ShowGraph {
		spec := imaging.GraphSpec{
			Title:    "Slot Coordination",
			XLabel:   "Generation Progress (%)",
			YLabel:   "Strength",
			XPercent: true,
		}
		for i, sr := range coord.Slots {
			spec.Series = append(spec.Series, imaging.Series{
				Label: sr.Slot.Label,
				X:     sr.Sequence.Positions(),
				Y:     sr.Sequence.Values(),
			})
			spec.Windows = append(spec.Windows, imaging.Window{
				Start: sr.Slot.StartPosition,
				End:   sr.Slot.EndPosition,
				Color: imaging.SeriesColor(i).Hex(),
			})
		}
		g, err := imaging.RenderGraph(spec)
		if err != nil {
			return nil, err
		}
		res.Graph = g
	}
	return res, nil
}

type stepSlotArgs struct {
	curveArgs
	Name          string   `json:"name"`
	StartStep     int      `json:"start_step"`
	EndStep       *int     `json:"end_step"`
	StartStrength *float64 `json:"start_strength"`
	EndStrength   *float64 `json:"end_strength"`
}

type curveStepScheduleArgs struct {
	NumSteps  int            `json:"num_steps"`
	Slots     []stepSlotArgs `json:"slots"`
	ShowGraph bool           `json:"show_graph"`
}

type curveStepScheduleResult struct {
	NumSteps  int                     `json:"num_steps"`
	Schedules []keyframe.SlotSchedule `json:"schedules"`
	Warnings  []string                `json:"warnings,omitempty"`
	Graph     *imaging.ImageResult    `json:"graph,omitempty"`
}

func (s *Server) handleCurveStepSchedule(args json.RawMessage) (interface{}, error) {
	var a curveStepScheduleArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.NumSteps == 0 {
		a.NumSteps = defaultTotalSteps
	}

	windows := make([]keyframe.SlotWindow, len(a.Slots))
	for i, sa := range a.Slots {
		end := a.NumSteps
		if sa.EndStep != nil {
			end = *sa.EndStep
		}
		windows[i] = keyframe.SlotWindow{
			Name:       sa.Name,
			StartStep:  sa.StartStep,
			EndStep:    end,
			StartValue: floatOr(sa.StartStrength, defaultStartStrength),
			EndValue:   floatOr(sa.EndStrength, defaultEndStrength),
			Spec:       sa.spec(),
		}
	}

	schedules, warnings, err := keyframe.StepSchedule(a.NumSteps, windows)
	if err != nil {
		return nil, err
	}
	res := &curveStepScheduleResult{NumSteps: a.NumSteps, Schedules: schedules, Warnings: warnings}
	if a.ShowGraph {
		steps := make([]float64, a.NumSteps)
		for i := range steps {
			steps[i] = float64(i)
		}
		spec := imaging.GraphSpec{
			Title:  "Step Schedule",
			XLabel: "Step",
			YLabel: "Weight",
		}
		for _, sc := range schedules {
			spec.Series = append(spec.Series, imaging.Series{Label: sc.Name, X: steps, Y: sc.Weights})
		}
		g, err := imaging.RenderGraph(spec)
		if err != nil {
			return nil, err
		}
		res.Graph = g
	}
	return res, nil
}

// === Mask Operation Handlers ===

type maskResult struct {
	OutputPath   string  `json:"output_path"`
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	ActivePixels int     `json:"active_pixels"`
}

// saveMask writes m and drops any stale cached copy of the output file.
func (s *Server) saveMask(m *imaging.Mask, path string) (*maskResult, error) {
	if err := imaging.SaveMask(m, path); err != nil {
		return nil, err
	}
	s.cache.Evict(path)
	lo, hi := m.Range()
	return &maskResult{
		OutputPath:   path,
		Width:        m.Width,
		Height:       m.Height,
		Min:          lo,
		Max:          hi,
		ActivePixels: m.ActivePixels(),
	}, nil
}

type maskSymmetryArgs struct {
	Path           string  `json:"path"`
	OutputPath     string  `json:"output_path"`
	Mode           string  `json:"mode"`
	Blend          string  `json:"blend"`
	Strength       float64 `json:"strength"`
	InvertMirrored bool    `json:"invert_mirrored"`
}

func (s *Server) handleMaskSymmetry(args json.RawMessage) (interface{}, error) {
	var a maskSymmetryArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.OutputPath == "" {
		return nil, fmt.Errorf("output_path is required")
	}
	if a.Mode == "" {
		a.Mode = string(imaging.SymmetryHorizontal)
	}

	m, err := imaging.LoadMask(s.cache, a.Path)
	if err != nil {
		return nil, err
	}
	out, err := imaging.MaskSymmetry(m, imaging.SymmetryOptions{
		Mode:           imaging.SymmetryMode(a.Mode),
		Blend:          imaging.SymmetryBlend(a.Blend),
		Strength:       a.Strength,
		InvertMirrored: a.InvertMirrored,
	})
	if err != nil {
		return nil, err
	}
	return s.saveMask(out, a.OutputPath)
}

type maskCombineArgs struct {
	Masks []struct {
		Path     string   `json:"path"`
		Strength *float64 `json:"strength"`
	} `json:"masks"`
	OutputPath   string   `json:"output_path"`
	Mode         string   `json:"mode"`
	BaseStrength *float64 `json:"base_strength"`
	Normalize    *bool    `json:"normalize"`
}

func (s *Server) handleMaskCombine(args json.RawMessage) (interface{}, error) {
	var a maskCombineArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.OutputPath == "" {
		return nil, fmt.Errorf("output_path is required")
	}
	if a.Mode == "" {
		a.Mode = string(imaging.CombineMax)
	}

	var masks []imaging.WeightedMask
	for i, in := range a.Masks {
		if in.Path == "" {
			continue
		}
		m, err := imaging.LoadMask(s.cache, in.Path)
		if err != nil {
			return nil, fmt.Errorf("mask %d: %w", i+1, err)
		}
		masks = append(masks, imaging.WeightedMask{Mask: m, Strength: floatOr(in.Strength, 1)})
	}

	out, err := imaging.CombineMasks(floatOr(a.BaseStrength, 1), masks, imaging.CombineMode(a.Mode), boolOr(a.Normalize, true))
	if err != nil {
		return nil, err
	}
	return s.saveMask(out, a.OutputPath)
}

type maskCleanArgs struct {
	Path       string  `json:"path"`
	OutputPath string  `json:"output_path"`
	BlurRadius float64 `json:"blur_radius"`
}

func (s *Server) handleMaskClean(args json.RawMessage) (interface{}, error) {
	var a maskCleanArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.OutputPath == "" {
		return nil, fmt.Errorf("output_path is required")
	}
	m, err := imaging.LoadMask(s.cache, a.Path)
	if err != nil {
		return nil, err
	}
	return s.saveMask(imaging.CleanMask(m, a.BlurRadius), a.OutputPath)
}

// === Image Operation Handlers ===

type imageBlurScheduleArgs struct {
	curveArgs
	Path         string   `json:"path"`
	OutputDir    string   `json:"output_dir"`
	NumPoints    int      `json:"num_points"`
	StartPercent *float64 `json:"start_percent"`
	EndPercent   *float64 `json:"end_percent"`
	StartSigma   *float64 `json:"start_sigma"`
	EndSigma     *float64 `json:"end_sigma"`
	ShowGraph    bool     `json:"show_graph"`
}

type imageBlurScheduleResult struct {
	Frames    []string             `json:"frames"`
	Sigmas    []float64            `json:"sigmas"`
	Keyframes *keyframe.Sequence   `json:"keyframes"`
	Graph     *imaging.ImageResult `json:"graph,omitempty"`
}

func (s *Server) handleImageBlurSchedule(args json.RawMessage) (interface{}, error) {
	var a imageBlurScheduleArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.OutputDir == "" {
		return nil, fmt.Errorf("output_dir is required")
	}

	startSigma := floatOr(a.StartSigma, defaultStartSigma)
	endSigma := floatOr(a.EndSigma, defaultEndSigma)
	p := s.params(windowArgs{
		NumPoints:     a.NumPoints,
		StartPercent:  a.StartPercent,
		EndPercent:    a.EndPercent,
		StartStrength: &startSigma,
		EndStrength:   &endSigma,
	}, a.curveArgs, "")
	p.Options = keyframe.Options{Clamp: true, ClampMin: 0, ClampMax: maxSigma}

	seq, err := keyframe.Build(p)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	sigmas := seq.Values()
	paths, err := imaging.SaveFrames(imaging.BlurSchedule(img, sigmas), a.OutputDir, "blur")
	if err != nil {
		return nil, err
	}
	res := &imageBlurScheduleResult{Frames: paths, Sigmas: sigmas, Keyframes: seq}
	if a.ShowGraph {
		g, err := sequenceGraph("Blur Sigma Schedule", seq, nil)
		if err != nil {
			return nil, err
		}
		res.Graph = g
	}
	return res, nil
}

func (s *Server) handleImageCacheClear(args json.RawMessage) (interface{}, error) {
	n := s.cache.Len()
	s.cache.Clear()
	return map[string]int{"cleared": n}, nil
}
