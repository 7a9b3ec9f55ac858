package server

import "github.com/ironsheep/curve-tools-mcp/internal/curve"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// familyNames returns the curve family enum shared by every curve tool.
func familyNames() []string {
	names := make([]string, len(curve.Families))
	for i, f := range curve.Families {
		names[i] = string(f)
	}
	return names
}

// curveProperties returns the schema properties selecting a curve. prefix
// is prepended to each property name.
func curveProperties(prefix string) map[string]interface{} {
	return map[string]interface{}{
		prefix + "curve_type": map[string]interface{}{
			"type":        "string",
			"enum":        familyNames(),
			"default":     "linear",
			"description": "Curve family (default: linear)",
		},
		prefix + "curve_param": map[string]interface{}{
			"type":        "number",
			"default":     curve.DefaultParam,
			"description": "Shape parameter: exponent, frequency or width depending on the family (default: 2.0)",
		},
		prefix + "formula": map[string]interface{}{
			"type":        "string",
			"description": "Expression in t for custom_formula, e.g. \"sin(t * pi) ** 2\"",
		},
	}
}

// windowProperties returns the schema properties shared by the keyframe
// building tools.
func windowProperties() map[string]interface{} {
	return map[string]interface{}{
		"num_points": map[string]interface{}{
			"type":        "integer",
			"default":     10,
			"description": "Number of keyframes to generate, at least 2 (default: 10)",
		},
		"start_percent": map[string]interface{}{
			"type":        "number",
			"default":     0.0,
			"description": "Generation progress where the schedule starts, 0-1 (default: 0)",
		},
		"end_percent": map[string]interface{}{
			"type":        "number",
			"default":     1.0,
			"description": "Generation progress where the schedule ends, 0-1 (default: 1)",
		},
		"start_strength": map[string]interface{}{
			"type":        "number",
			"default":     1.0,
			"description": "Strength at the start of the window (default: 1.0)",
		},
		"end_strength": map[string]interface{}{
			"type":        "number",
			"default":     0.0,
			"description": "Strength at the end of the window (default: 0.0)",
		},
	}
}

// merge copies every entry of the given maps into one map.
func merge(maps ...map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

func patternNames() []string {
	names := make([]string, len(curve.Patterns))
	for i, p := range curve.Patterns {
		names[i] = string(p)
	}
	return names
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Curve Evaluation
		{
			Name:        "curve_evaluate",
			Description: "Sample a curve family over evenly spaced progress values from 0 to 1. Use this to preview the shape of a curve before building keyframes.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": merge(curveProperties(""), map[string]interface{}{
					"num_points": map[string]interface{}{
						"type":        "integer",
						"default":     100,
						"description": "Number of samples, at least 1 (default: 100)",
					},
					"show_graph": map[string]interface{}{
						"type":        "boolean",
						"default":     false,
						"description": "Include a PNG graph of the curve (default: false)",
					},
				}),
			},
		},
		{
			Name:        "curve_presets",
			Description: "List the named curve presets. A preset overrides start/end strength, curve type and curve parameter when passed to curve_keyframes or curve_coordinate.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "curve_from_points",
			Description: "Design a curve by placing control points on the unit square and interpolating between them.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"points": map[string]interface{}{
						"type":        "array",
						"description": "Control points, at least 2, with distinct x values",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"x": map[string]interface{}{"type": "number"},
								"y": map[string]interface{}{"type": "number"},
							},
							"required": []string{"x", "y"},
						},
					},
					"method": map[string]interface{}{
						"type":        "string",
						"enum":        []string{string(curve.InterpLinear), string(curve.InterpHermite), string(curve.InterpCubicSpline)},
						"default":     "cubic_spline",
						"description": "Interpolation method (default: cubic_spline)",
					},
					"resolution": map[string]interface{}{
						"type":        "integer",
						"default":     100,
						"description": "Number of samples (default: 100)",
					},
					"normalize": map[string]interface{}{
						"type":        "boolean",
						"default":     true,
						"description": "Scale the samples to 0-1 (default: true)",
					},
					"show_graph": map[string]interface{}{
						"type":        "boolean",
						"default":     false,
						"description": "Include a PNG graph with the control points (default: false)",
					},
				},
				"required": []string{"points"},
			},
		},
		{
			Name:        "curve_formula_builder",
			Description: "Build a custom_formula expression from a named pattern and strength/speed sliders, without writing math. Returns the formula, the sampled curve clamped to 0-1 and a description.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"pattern": map[string]interface{}{
						"type":        "string",
						"enum":        patternNames(),
						"default":     string(curve.PatternSCurve),
						"description": "Basic shape of the curve (default: s_curve)",
					},
					"strength": map[string]interface{}{
						"type":        "number",
						"default":     50.0,
						"description": "How dramatic the effect, 0-100 (default: 50)",
					},
					"speed": map[string]interface{}{
						"type":        "number",
						"default":     50.0,
						"description": "How fast the change happens, 10-100 (default: 50)",
					},
					"num_points": map[string]interface{}{
						"type":        "integer",
						"default":     100,
						"description": "Number of samples (default: 100)",
					},
					"flip_vertical": map[string]interface{}{
						"type":        "boolean",
						"default":     false,
						"description": "Flip the curve upside down (default: false)",
					},
					"flip_horizontal": map[string]interface{}{
						"type":        "boolean",
						"default":     false,
						"description": "Reverse the curve direction (default: false)",
					},
					"repeat": map[string]interface{}{
						"type":        "integer",
						"default":     1,
						"description": "Repeat the pattern this many times (default: 1)",
					},
					"show_graph": map[string]interface{}{
						"type":        "boolean",
						"default":     false,
						"description": "Include a PNG graph of the curve (default: false)",
					},
				},
			},
		},

		// Keyframe Scheduling
		{
			Name:        "curve_keyframes",
			Description: "Build a keyframe schedule: num_points (progress, strength) pairs following a curve from start to end strength over a progress window. Returns the keyframes, statistics and optionally a graph and CSV file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": merge(windowProperties(), curveProperties(""), curveProperties("blend_"), map[string]interface{}{
					"preset": map[string]interface{}{
						"type":        "string",
						"description": "Preset name from curve_presets; \"Custom\" or empty applies none",
					},
					"steps_mode": map[string]interface{}{
						"type":        "boolean",
						"default":     false,
						"description": "Interpret start_percent and end_percent greater than 1 as sampler steps (default: false)",
					},
					"total_steps": map[string]interface{}{
						"type":        "integer",
						"default":     20,
						"description": "Total sampler steps used by steps_mode (default: 20)",
					},
					"repeat": map[string]interface{}{
						"type":        "integer",
						"default":     1,
						"description": "Repeat the curve shape this many times (default: 1)",
					},
					"mirror": map[string]interface{}{
						"type":        "boolean",
						"description": "Make the curve symmetric about its midpoint",
					},
					"blend_amount": map[string]interface{}{
						"type":        "number",
						"default":     0.0,
						"description": "Weight of the blend curve, 0-1 (default: 0)",
					},
					"invert": map[string]interface{}{
						"type":        "boolean",
						"description": "Flip the curve shape",
					},
					"clamp": map[string]interface{}{
						"type":        "boolean",
						"description": "Limit strengths to clamp_min..clamp_max",
					},
					"clamp_min": map[string]interface{}{
						"type":        "number",
						"default":     0.0,
						"description": "Lower clamp bound (default: 0)",
					},
					"clamp_max": map[string]interface{}{
						"type":        "number",
						"default":     10.0,
						"description": "Upper clamp bound (default: 10)",
					},
					"adaptive": map[string]interface{}{
						"type":        "boolean",
						"description": "Place more keyframes where the curve changes fastest",
					},
					"batch_size": map[string]interface{}{
						"type":        "integer",
						"description": "Attach image indices 0..batch_size-1 to the keyframes (default: none)",
					},
					"prev_keyframes": map[string]interface{}{
						"type":        "object",
						"description": "A keyframes object returned by an earlier call; the new keyframes are appended to it",
					},
					"csv_path": map[string]interface{}{
						"type":        "string",
						"description": "Write the keyframes as CSV to this path",
					},
					"show_graph": map[string]interface{}{
						"type":        "boolean",
						"default":     false,
						"description": "Include a PNG graph of the schedule (default: false)",
					},
					"compare_curve_type": map[string]interface{}{
						"type":        "string",
						"enum":        familyNames(),
						"description": "Draw this family as a dashed comparison line on the graph",
					},
				}),
			},
		},
		{
			Name:        "curve_stats",
			Description: "Summarize a schedule: mean, min, max, peak position, area under the curve and average change between keyframes.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"positions": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "number"},
						"description": "Keyframe progress values",
					},
					"values": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "number"},
						"description": "Keyframe strengths, same length as positions",
					},
				},
				"required": []string{"positions", "values"},
			},
		},
		{
			Name:        "curve_export_csv",
			Description: "Build a keyframe schedule and write it as CSV (percent,strength,step) to a file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": merge(windowProperties(), curveProperties(""), map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path of the CSV file to write",
					},
					"preset": map[string]interface{}{
						"type":        "string",
						"description": "Preset name from curve_presets",
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "curve_coordinate",
			Description: "Build independent schedules for several slots, each over its own progress window, and summarize the active ones.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"num_points": map[string]interface{}{
						"type":        "integer",
						"default":     10,
						"description": "Keyframes per slot (default: 10)",
					},
					"slots": map[string]interface{}{
						"type":        "array",
						"description": "Slots to schedule",
						"items": map[string]interface{}{
							"type": "object",
							"properties": merge(curveProperties(""), map[string]interface{}{
								"label":          map[string]interface{}{"type": "string"},
								"enabled":        map[string]interface{}{"type": "boolean"},
								"preset":         map[string]interface{}{"type": "string"},
								"start_percent":  map[string]interface{}{"type": "number"},
								"end_percent":    map[string]interface{}{"type": "number"},
								"start_strength": map[string]interface{}{"type": "number"},
								"end_strength":   map[string]interface{}{"type": "number"},
							}),
						},
					},
					"show_graph": map[string]interface{}{
						"type":        "boolean",
						"default":     false,
						"description": "Include a PNG graph with one line per active slot (default: false)",
					},
				},
				"required": []string{"slots"},
			},
		},
		{
			Name:        "curve_step_schedule",
			Description: "Compute a weight for every sampler step for each slot. Inside its step window a slot follows its curve; outside it the weight is zero.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"num_steps": map[string]interface{}{
						"type":        "integer",
						"default":     20,
						"description": "Total sampler steps (default: 20)",
					},
					"slots": map[string]interface{}{
						"type":        "array",
						"description": "Slots to schedule",
						"items": map[string]interface{}{
							"type": "object",
							"properties": merge(curveProperties(""), map[string]interface{}{
								"name":           map[string]interface{}{"type": "string"},
								"start_step":     map[string]interface{}{"type": "integer"},
								"end_step":       map[string]interface{}{"type": "integer"},
								"start_strength": map[string]interface{}{"type": "number"},
								"end_strength":   map[string]interface{}{"type": "number"},
							}),
						},
					},
					"show_graph": map[string]interface{}{
						"type":        "boolean",
						"default":     false,
						"description": "Include a PNG graph of the weights (default: false)",
					},
				},
				"required": []string{"slots"},
			},
		},

		// Mask Operations
		{
			Name:        "mask_symmetry",
			Description: "Mirror a grayscale mask across an axis or diagonal and blend the mirrored copy with the original. Writes the result to output_path.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the mask image",
					},
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path of the PNG to write",
					},
					"mode": map[string]interface{}{
						"type": "string",
						"enum": []string{"none", "horizontal", "vertical", "both",
							"diagonal_tl_br", "diagonal_tr_bl", "radial_4way"},
						"default":     "horizontal",
						"description": "Symmetry mode (default: horizontal)",
					},
					"blend": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"replace", "add", "max", "average"},
						"default":     "max",
						"description": "How the mirrored copy is merged (default: max)",
					},
					"strength": map[string]interface{}{
						"type":        "number",
						"default":     1.0,
						"description": "Weight of the mirrored copy, 0-1 (default: 1)",
					},
					"invert_mirrored": map[string]interface{}{
						"type":        "boolean",
						"description": "Invert the mirrored copy before blending",
					},
				},
				"required": []string{"path", "output_path"},
			},
		},
		{
			Name:        "mask_combine",
			Description: "Combine weighted masks into one. Masks that differ in size from the first are resized to match it. Writes the result to output_path.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"masks": map[string]interface{}{
						"type":        "array",
						"description": "Masks to combine; empty paths are skipped",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"path":     map[string]interface{}{"type": "string"},
								"strength": map[string]interface{}{"type": "number"},
							},
							"required": []string{"path"},
						},
					},
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path of the PNG to write",
					},
					"mode": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"max", "add", "multiply", "average"},
						"default":     "max",
						"description": "Combination mode (default: max)",
					},
					"base_strength": map[string]interface{}{
						"type":        "number",
						"default":     1.0,
						"description": "Global multiplier applied to every mask (default: 1)",
					},
					"normalize": map[string]interface{}{
						"type":        "boolean",
						"default":     true,
						"description": "Clamp the result to 0-1 (default: true)",
					},
				},
				"required": []string{"masks", "output_path"},
			},
		},
		{
			Name:        "mask_clean",
			Description: "Binarize a mask at mid-gray and optionally soften its edges with a Gaussian blur. Writes the result to output_path.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the mask image",
					},
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path of the PNG to write",
					},
					"blur_radius": map[string]interface{}{
						"type":        "number",
						"default":     0.0,
						"description": "Edge softening radius in pixels, 0 for a hard mask (default: 0)",
					},
				},
				"required": []string{"path", "output_path"},
			},
		},

		// Image Operations
		{
			Name:        "image_cache_clear",
			Description: "Drop every cached mask and image so later calls re-read their files from disk. Use after editing inputs outside this server.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "image_blur_schedule",
			Description: "Blur an image once per keyframe, with the blur sigma following a curve from start_sigma to end_sigma. Writes one PNG per keyframe to output_dir.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": merge(curveProperties(""), map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the source image",
					},
					"output_dir": map[string]interface{}{
						"type":        "string",
						"description": "Directory for the blurred frames",
					},
					"num_points": map[string]interface{}{
						"type":        "integer",
						"default":     10,
						"description": "Number of keyframes and frames (default: 10)",
					},
					"start_percent": map[string]interface{}{
						"type":        "number",
						"default":     0.0,
						"description": "Generation progress of the first frame (default: 0)",
					},
					"end_percent": map[string]interface{}{
						"type":        "number",
						"default":     1.0,
						"description": "Generation progress of the last frame (default: 1)",
					},
					"start_sigma": map[string]interface{}{
						"type":        "number",
						"default":     0.5,
						"description": "Blur sigma of the first frame (default: 0.5)",
					},
					"end_sigma": map[string]interface{}{
						"type":        "number",
						"default":     6.0,
						"description": "Blur sigma of the last frame (default: 6.0)",
					},
					"show_graph": map[string]interface{}{
						"type":        "boolean",
						"default":     false,
						"description": "Include a PNG graph of the sigma schedule (default: false)",
					},
				}),
				"required": []string{"path", "output_dir"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
