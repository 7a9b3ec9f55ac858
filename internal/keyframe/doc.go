// Package keyframe builds strength schedules from sampled curves.
//
// Build samples a curve.Spec over a uniform grid, applies the optional
// post-processors and maps the normalized curve onto a strength range across
// a window of generation progress. The result is a Sequence of Keyframes in
// non-decreasing position order whose first entry is the anchor: a keyframe
// the downstream scheduler must honor for at least one step.
//
// # Processing Order
//
// Shape mutations act on the normalized curve; range operations act on
// mapped strengths. Build composes them in this fixed order:
//
//  1. RepeatGrid: remap progress to (t*R) mod 1
//  2. curve.Evaluate
//  3. Mirror
//  4. Blend with a second family
//  5. Invert
//  6. MapRange onto [start, end] strength
//  7. Clamp
//  8. Positions across [start, end] percent
//  9. Redistribute by rate of change
//
// Each step is also exported as a pure function over slices.
//
// # Errors and Warnings
//
// Malformed ranges and counts produce a *ValidationError listing every
// problem. Legal but odd inputs (a flat strength range, many points in a
// tiny window, negative strengths) are logged and recorded on
// Sequence.Warnings; the sequence is still built.
//
// # Accumulation
//
// Sequences are values. Append joins a previous sequence with a new one
// into a fresh Sequence without modifying either input.
package keyframe
