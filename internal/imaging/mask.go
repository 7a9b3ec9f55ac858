package imaging

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
)

// Mask is a single-channel weight map. Values are nominally in [0,1] but
// may exceed that range while masks are being combined.
type Mask struct {
	Width  int
	Height int
	Pix    []float64
}

// NewMask returns a zero mask of the given size.
func NewMask(width, height int) *Mask {
	return &Mask{Width: width, Height: height, Pix: make([]float64, width*height)}
}

// MaskFromImage converts img to a mask using its luminance, scaled to [0,1].
func MaskFromImage(img image.Image) *Mask {
	b := img.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			g := color.Gray16Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray16)
			m.Pix[y*m.Width+x] = float64(g.Y) / 0xffff
		}
	}
	return m
}

// At returns the value at (x, y).
func (m *Mask) At(x, y int) float64 { return m.Pix[y*m.Width+x] }

// Set stores v at (x, y).
func (m *Mask) Set(x, y int, v float64) { m.Pix[y*m.Width+x] = v }

// Clone returns a deep copy of m.
func (m *Mask) Clone() *Mask {
	out := *m
	out.Pix = append([]float64(nil), m.Pix...)
	return &out
}

// Image renders m as an 8-bit grayscale image, clamping values to [0,1].
func (m *Mask) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for i, v := range m.Pix {
		img.Pix[i] = uint8(math.Round(clamp01(v) * 255))
	}
	return img
}

// Range returns the smallest and largest mask values.
func (m *Mask) Range() (lo, hi float64) {
	if len(m.Pix) == 0 {
		return 0, 0
	}
	lo, hi = m.Pix[0], m.Pix[0]
	for _, v := range m.Pix[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// ActivePixels counts values above the 0.01 visibility threshold.
func (m *Mask) ActivePixels() int {
	n := 0
	for _, v := range m.Pix {
		if v > activeThreshold {
			n++
		}
	}
	return n
}

// transform runs a geometric image operation over m.
func (m *Mask) transform(fn func(image.Image) *image.NRGBA) *Mask {
	return MaskFromImage(fn(m.Image()))
}

// resize scales m with nearest-neighbor sampling so hard edges stay hard.
func (m *Mask) resize(width, height int) *Mask {
	if m.Width == width && m.Height == height {
		return m.Clone()
	}
	return MaskFromImage(imaging.Resize(m.Image(), width, height, imaging.NearestNeighbor))
}

const activeThreshold = 0.01

// SymmetryMode selects how a mask is mirrored.
type SymmetryMode string

// Symmetry modes accepted by MaskSymmetry.
const (
	SymmetryNone       SymmetryMode = "none"
	SymmetryHorizontal SymmetryMode = "horizontal"
	SymmetryVertical   SymmetryMode = "vertical"
	SymmetryBoth       SymmetryMode = "both"
	SymmetryDiagTLBR   SymmetryMode = "diagonal_tl_br"
	SymmetryDiagTRBL   SymmetryMode = "diagonal_tr_bl"
	SymmetryRadial4    SymmetryMode = "radial_4way"
)

// SymmetryBlend selects how the mirrored copy is merged into the mask.
type SymmetryBlend string

// Blend modes accepted by MaskSymmetry.
const (
	BlendReplace SymmetryBlend = "replace"
	BlendAdd     SymmetryBlend = "add"
	BlendMax     SymmetryBlend = "max"
	BlendAverage SymmetryBlend = "average"
)

// SymmetryOptions configures MaskSymmetry.
type SymmetryOptions struct {
	Mode SymmetryMode
	// Blend defaults to max.
	Blend SymmetryBlend
	// Strength scales the mirrored copy before blending. Zero means 1.
	Strength float64
	// InvertMirrored uses 1-v for the mirrored copy.
	InvertMirrored bool
}

// MaskSymmetry mirrors mask according to opts and returns the merged result
// clamped to [0,1].
//
// Horizontal and vertical modes reflect across the center lines. The
// diagonal modes transpose across the main or anti-diagonal and resize back
// to the original size for non-square masks. radial_4way copies the
// top-left quadrant into the other three quadrants and ignores Blend.
func MaskSymmetry(mask *Mask, opts SymmetryOptions) (*Mask, error) {
	if mask == nil || mask.Width == 0 || mask.Height == 0 {
		return nil, fmt.Errorf("mask is empty")
	}
	if opts.Blend == "" {
		opts.Blend = BlendMax
	}
	if opts.Strength == 0 {
		opts.Strength = 1
	}
	switch opts.Blend {
	case BlendReplace, BlendAdd, BlendMax, BlendAverage:
	default:
		return nil, fmt.Errorf("unknown blend mode: %s", opts.Blend)
	}

	out := mask.Clone()
	merge := func(mirrored *Mask) {
		out = blendMirrored(out, mirrored, opts)
	}

	switch opts.Mode {
	case SymmetryNone, "":
	case SymmetryHorizontal:
		merge(mask.transform(imaging.FlipH))
	case SymmetryVertical:
		merge(mask.transform(imaging.FlipV))
	case SymmetryBoth:
		merge(mask.transform(imaging.FlipH))
		merge(mask.transform(imaging.FlipV))
		merge(mask.transform(imaging.Rotate180))
	case SymmetryDiagTLBR:
		merge(mask.transform(imaging.Transpose).resize(mask.Width, mask.Height))
	case SymmetryDiagTRBL:
		merge(mask.transform(imaging.Transverse).resize(mask.Width, mask.Height))
	case SymmetryRadial4:
		out = radial4(mask)
	default:
		return nil, fmt.Errorf("unknown symmetry mode: %s", opts.Mode)
	}

	for i, v := range out.Pix {
		out.Pix[i] = clamp01(v)
	}
	return out, nil
}

func blendMirrored(base, mirrored *Mask, opts SymmetryOptions) *Mask {
	out := base.Clone()
	for i, v := range mirrored.Pix {
		if opts.InvertMirrored {
			v = 1 - v
		}
		v *= opts.Strength
		switch opts.Blend {
		case BlendReplace:
			if v > activeThreshold {
				out.Pix[i] = v
			}
		case BlendAdd:
			out.Pix[i] += v
		case BlendMax:
			out.Pix[i] = math.Max(out.Pix[i], v)
		case BlendAverage:
			out.Pix[i] = (out.Pix[i] + v) / 2
		}
	}
	return out
}

// radial4 reflects the top-left quadrant into the remaining quadrants.
// Odd center rows and columns keep their own values.
func radial4(m *Mask) *Mask {
	out := m.Clone()
	hMid, wMid := m.Height/2, m.Width/2
	for y := 0; y < m.Height; y++ {
		sy := y
		if y >= m.Height-hMid {
			sy = m.Height - 1 - y
		}
		for x := 0; x < m.Width; x++ {
			sx := x
			if x >= m.Width-wMid {
				sx = m.Width - 1 - x
			}
			out.Set(x, y, m.At(sx, sy))
		}
	}
	return out
}

// CombineMode selects how CombineMasks merges weighted masks.
type CombineMode string

// Combine modes accepted by CombineMasks.
const (
	CombineMax      CombineMode = "max"
	CombineAdd      CombineMode = "add"
	CombineMultiply CombineMode = "multiply"
	CombineAverage  CombineMode = "average"
)

// WeightedMask pairs a mask with its strength multiplier.
type WeightedMask struct {
	Mask     *Mask
	Strength float64
}

// CombineMasks merges masks into one, scaling each by its strength and by
// base. Masks that differ in size from the first are resized to match it
// with nearest-neighbor sampling. When normalize is set the result is
// clamped to [0,1].
//
// multiply treats each mask as attenuation: the running result is scaled by
// 1-(1-m)*s, so a full-strength zero region suppresses everything below it.
func CombineMasks(base float64, masks []WeightedMask, mode CombineMode, normalize bool) (*Mask, error) {
	var active []WeightedMask
	for _, wm := range masks {
		if wm.Mask != nil {
			active = append(active, wm)
		}
	}
	if len(active) == 0 {
		return nil, fmt.Errorf("at least one mask must be provided")
	}

	first := active[0].Mask
	out := NewMask(first.Width, first.Height)
	switch mode {
	case CombineMax, CombineAdd, CombineAverage:
	case CombineMultiply:
		for i := range out.Pix {
			out.Pix[i] = 1
		}
	default:
		return nil, fmt.Errorf("unknown combine mode: %s", mode)
	}

	for i, wm := range active {
		m := wm.Mask
		if m.Width != first.Width || m.Height != first.Height {
			log.Printf("[Warning] mask %d is %dx%d, resizing to %dx%d", i+1, m.Width, m.Height, first.Width, first.Height)
			m = m.resize(first.Width, first.Height)
		}
		s := wm.Strength * base
		for j, v := range m.Pix {
			switch mode {
			case CombineMax:
				out.Pix[j] = math.Max(out.Pix[j], v*s)
			case CombineAdd, CombineAverage:
				out.Pix[j] += v * s
			case CombineMultiply:
				out.Pix[j] *= 1 - (1-v)*s
			}
		}
	}

	if mode == CombineAverage {
		for j := range out.Pix {
			out.Pix[j] /= float64(len(active))
		}
	}
	if normalize {
		for j, v := range out.Pix {
			out.Pix[j] = clamp01(v)
		}
	}
	return out, nil
}

// cleanLevel is the 8-bit level at or above which CleanMask keeps a pixel.
const cleanLevel = 129

// CleanMask binarizes m at the midpoint and softens the resulting edges
// with a Gaussian blur of the given radius. A radius of zero returns the
// hard binary mask.
func CleanMask(m *Mask, radius float64) *Mask {
	bin := segment.Threshold(m.Image(), cleanLevel)
	if radius <= 0 {
		return MaskFromImage(bin)
	}
	return MaskFromImage(blur.Gaussian(bin, radius))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
