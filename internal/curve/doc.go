// Package curve evaluates parametric curve families over normalized progress.
//
// A curve maps a progress value t in [0,1] to a normalized output, usually
// also in [0,1]. Every family is a closed-form function selected by a Family
// name and shaped by a single parameter (steepness, width, or frequency
// depending on the family). The keyframe package samples these curves to
// build strength schedules.
//
// # Families
//
// The classic families are linear, ease_in, ease_out, ease_in_out, sine_wave,
// bell_curve, reverse_bell, exponential, bounce and custom_bezier. The fixed
// easing table (quad, cubic and quart variants) ignores the shape parameter.
// strong_to_weak, weak_to_strong and exponential_down are the LoRA-style
// decay curves. custom_formula evaluates a user expression of t.
//
// # Custom Formulas
//
// Formulas are parsed into a small expression tree. Only the variable t,
// the constants pi and e, arithmetic operators and the functions sin, cos,
// tan, exp, log, log10, sqrt and abs exist in the grammar, so anything else
// is a parse error rather than something to filter out. The result is
// min-max normalized to [0,1].
//
// # Error Handling
//
// Evaluate never fails. A formula that cannot be parsed or evaluated falls
// back to the identity curve, and any output containing NaN or Inf is
// replaced wholesale by a linear ramp. Both cases are logged.
package curve
