// Package server implements the MCP (Model Context Protocol) server for
// curve scheduling and mask tools.
//
// This package provides a JSON-RPC 2.0 server that exposes the curve
// evaluator, keyframe sequencer, statistics and mask processing to node-graph
// image generation hosts and other MCP-compatible clients.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Curve Evaluation:
//   - curve_evaluate: Sample a curve family over [0,1]
//   - curve_presets: List named presets
//   - curve_from_points: Interpolate a curve through control points
//   - curve_formula_builder: Turn a named pattern into a custom formula
//
// Keyframe Scheduling:
//   - curve_keyframes: Build a keyframe schedule with optional graph and CSV
//   - curve_stats: Summarize positions and strengths
//   - curve_export_csv: Write a schedule to a CSV file
//   - curve_coordinate: Build one schedule per slot over its own window
//   - curve_step_schedule: Per-step weights for windowed slots
//
// Mask Operations:
//   - mask_symmetry: Mirror a mask across an axis or diagonal
//   - mask_combine: Merge weighted masks
//   - mask_clean: Binarize and soften a mask
//
// Image Operations:
//   - image_blur_schedule: Blur an image once per keyframe
//   - image_cache_clear: Forget cached masks and images
//
// # Presets
//
// Named presets override the start/end strength and curve of a request. The
// built-in set can be extended from a YAML file at startup; see
// curve.PresetRegistry.LoadFile.
//
// # Image Caching
//
// Masks and images are cached by path and reused across tool calls. Mask
// tools evict their output path so a later call reading it sees the new
// file.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string; validation failures list every problem
//
// Numeric problems inside a curve never fail a call. They are logged to
// stderr and the curve falls back to a linear ramp.
//
// # Usage
//
//	srv := server.New(nil)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
