// Package imaging renders curve graphs and processes the masks and images
// that strength schedules are applied to.
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward.
//
// # Graphs
//
// RenderGraph draws one or more series as a PNG line graph and returns it
// base64 encoded. Shapes are drawn at double resolution and downscaled with
// a Lanczos filter; tick labels and the legend use the basicfont 7x13 face.
// Empty or non-finite input yields a 64x64 black placeholder.
//
// # Masks
//
// A Mask holds float64 weights, nominally in [0,1]. MaskSymmetry mirrors a
// mask across an axis or diagonal, CombineMasks merges weighted masks and
// CleanMask binarizes and softens one. Masks load from and save to
// grayscale PNG files.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. All other functions are
// stateless and never modify their inputs.
package imaging
