package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/anthonynsimon/bild/blend"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Series is one polyline drawn by RenderGraph.
type Series struct {
	Label string    `json:"label"`
	X     []float64 `json:"x"`
	Y     []float64 `json:"y"`
	// Color is a hex string such as "#2E86DE". Empty picks from the palette.
	Color string `json:"color,omitempty"`
	// Dashed draws the line dashed and omits the point markers.
	Dashed bool `json:"dashed,omitempty"`
}

// Window is a shaded x range, such as the active span of a slot.
type Window struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Color string  `json:"color,omitempty"`
}

// GraphSpec describes a line graph.
type GraphSpec struct {
	Title   string
	XLabel  string
	YLabel  string
	Series  []Series
	Windows []Window
	// XPercent formats x ticks as percentages of a [0,1] domain.
	XPercent bool
	// Width and Height of the output in pixels. Zero selects 960x560.
	Width  int
	Height int
}

const (
	defaultGraphWidth  = 960
	defaultGraphHeight = 560
	placeholderSize    = 64
	supersample        = 2

	marginLeft   = 64
	marginRight  = 24
	marginTop    = 32
	marginBottom = 44

	tickCount = 5
)

// basePalette holds the first series colors; later series get evenly
// rotated hues.
var basePalette = []string{"#2E86DE", "#EE5A6F", "#10AC84", "#F79F1F"}

// SeriesColor returns the palette color for series index i.
func SeriesColor(i int) colorful.Color {
	if i < len(basePalette) {
		c, _ := colorful.Hex(basePalette[i])
		return c
	}
	return colorful.Hsv(math.Mod(float64(i)*137.508, 360), 0.65, 0.85)
}

// Placeholder returns the 64x64 black image used when there is nothing to
// draw.
func Placeholder() (*ImageResult, error) {
	return EncodePNG(imaging.New(placeholderSize, placeholderSize, color.Black))
}

// RenderGraph draws spec as a PNG line graph with grid, axes, tick labels,
// one colored polyline with point markers per series and shaded windows.
//
// A graph with no points, or with a non-finite coordinate, renders as the
// black placeholder instead of failing.
func RenderGraph(spec GraphSpec) (*ImageResult, error) {
	xr, yr, ok := graphDomain(spec)
	if !ok {
		return Placeholder()
	}
	width, height := spec.Width, spec.Height
	if width <= 0 || height <= 0 {
		width, height = defaultGraphWidth, defaultGraphHeight
	}
	if width <= marginLeft+marginRight || height <= marginTop+marginBottom {
		return nil, fmt.Errorf("graph size %dx%d is too small", width, height)
	}

	// Shapes are drawn at twice the size and downscaled for smooth edges;
	// text is drawn afterwards at the final size.
	pa := plotArea{
		rect: image.Rect(marginLeft*supersample, marginTop*supersample,
			(width-marginRight)*supersample, (height-marginBottom)*supersample),
		x: xr, y: yr,
	}
	canvas := image.NewRGBA(image.Rect(0, 0, width*supersample, height*supersample))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	if len(spec.Windows) > 0 {
		canvas = shadeWindows(canvas, pa, spec.Windows)
	}
	drawGrid(canvas, pa)

	for i, s := range spec.Series {
		c := SeriesColor(i)
		if s.Color != "" {
			if parsed, err := colorful.Hex(s.Color); err == nil {
				c = parsed
			}
		}
		drawSeries(canvas, pa, s, c)
	}

	out := imaging.Resize(canvas, width, height, imaging.Lanczos)

	final := plotArea{
		rect: image.Rect(marginLeft, marginTop, width-marginRight, height-marginBottom),
		x:    xr, y: yr,
	}
	drawLabels(out, final, spec)
	return EncodePNG(out)
}

type axisRange struct{ lo, hi float64 }

func (r axisRange) span() float64 { return r.hi - r.lo }

type plotArea struct {
	rect image.Rectangle
	x, y axisRange
}

func (p plotArea) px(x float64) float64 {
	return float64(p.rect.Min.X) + (x-p.x.lo)/p.x.span()*float64(p.rect.Dx())
}

func (p plotArea) py(y float64) float64 {
	return float64(p.rect.Max.Y) - (y-p.y.lo)/p.y.span()*float64(p.rect.Dy())
}

// graphDomain computes padded axis ranges. The y range always includes 0.
func graphDomain(spec GraphSpec) (axisRange, axisRange, bool) {
	xr := axisRange{math.Inf(1), math.Inf(-1)}
	yr := axisRange{math.Inf(1), math.Inf(-1)}
	points := 0
	for _, s := range spec.Series {
		n := min(len(s.X), len(s.Y))
		for i := 0; i < n; i++ {
			x, y := s.X[i], s.Y[i]
			if !isFinite(x) || !isFinite(y) {
				return xr, yr, false
			}
			xr.lo, xr.hi = math.Min(xr.lo, x), math.Max(xr.hi, x)
			yr.lo, yr.hi = math.Min(yr.lo, y), math.Max(yr.hi, y)
			points++
		}
	}
	if points == 0 {
		return xr, yr, false
	}
	for _, w := range spec.Windows {
		if isFinite(w.Start) && isFinite(w.End) {
			xr.lo, xr.hi = math.Min(xr.lo, w.Start), math.Max(xr.hi, w.End)
		}
	}
	if spec.XPercent {
		xr.lo, xr.hi = math.Min(xr.lo, 0), math.Max(xr.hi, 1)
	}
	if xr.span() == 0 {
		xr.lo, xr.hi = xr.lo-0.5, xr.hi+0.5
	}
	pad := xr.span() * 0.05
	xr.lo, xr.hi = xr.lo-pad, xr.hi+pad

	yr.lo = math.Min(0, yr.lo-0.1)
	yr.hi += 0.1
	return xr, yr, true
}

func shadeWindows(canvas *image.RGBA, pa plotArea, windows []Window) *image.RGBA {
	overlay := image.NewRGBA(canvas.Bounds())
	for i, w := range windows {
		c := SeriesColor(i)
		if w.Color != "" {
			if parsed, err := colorful.Hex(w.Color); err == nil {
				c = parsed
			}
		}
		r, g, b := c.Clamped().RGB255()
		x0 := int(math.Round(pa.px(w.Start)))
		x1 := int(math.Round(pa.px(w.End)))
		rect := image.Rect(x0, pa.rect.Min.Y, x1, pa.rect.Max.Y).Intersect(pa.rect)
		draw.Draw(overlay, rect, image.NewUniform(color.NRGBA{r, g, b, 48}), image.Point{}, draw.Over)
	}
	return blend.Normal(canvas, overlay)
}

var (
	gridColor = color.RGBA{220, 220, 220, 255}
	axisColor = color.RGBA{60, 60, 60, 255}
	textColor = color.RGBA{40, 40, 40, 255}
)

func drawGrid(img *image.RGBA, pa plotArea) {
	r := pa.rect
	for i := 0; i <= tickCount; i++ {
		x := r.Min.X + i*r.Dx()/tickCount
		y := r.Min.Y + i*r.Dy()/tickCount
		dashed(img, x, r.Min.Y, x, r.Max.Y, gridColor)
		dashed(img, r.Min.X, y, r.Max.X, y, gridColor)
	}
	if pa.y.lo < 0 && pa.y.hi > 0 {
		y := int(math.Round(pa.py(0)))
		thickLine(img, float64(r.Min.X), float64(y), float64(r.Max.X), float64(y), 1, color.RGBA{150, 150, 150, 255})
	}
	thickLine(img, float64(r.Min.X), float64(r.Min.Y), float64(r.Min.X), float64(r.Max.Y), 1.5, axisColor)
	thickLine(img, float64(r.Min.X), float64(r.Max.Y), float64(r.Max.X), float64(r.Max.Y), 1.5, axisColor)
}

func drawSeries(img *image.RGBA, pa plotArea, s Series, c colorful.Color) {
	n := min(len(s.X), len(s.Y))
	col := c.Clamped()
	for i := 1; i < n; i++ {
		x0, y0 := pa.px(s.X[i-1]), pa.py(s.Y[i-1])
		x1, y1 := pa.px(s.X[i]), pa.py(s.Y[i])
		if s.Dashed {
			dashed(img, int(x0), int(y0), int(x1), int(y1), col)
			continue
		}
		thickLine(img, x0, y0, x1, y1, 2.5*supersample/2, col)
	}
	if s.Dashed {
		return
	}
	for i := 0; i < n; i++ {
		disc(img, pa.px(s.X[i]), pa.py(s.Y[i]), 3.5*supersample/2, col)
	}
}

// thickLine stamps discs of radius r along the segment.
func thickLine(img *image.RGBA, x0, y0, x1, y1, r float64, c color.Color) {
	steps := int(math.Max(math.Abs(x1-x0), math.Abs(y1-y0)))
	if steps == 0 {
		disc(img, x0, y0, r, c)
		return
	}
	for i := 0; i <= steps; i++ {
		f := float64(i) / float64(steps)
		disc(img, x0+(x1-x0)*f, y0+(y1-y0)*f, r, c)
	}
}

func dashed(img *image.RGBA, x0, y0, x1, y1 int, c color.Color) {
	const on, period = 8, 14
	dx, dy := float64(x1-x0), float64(y1-y0)
	steps := int(math.Max(math.Abs(dx), math.Abs(dy)))
	for i := 0; i <= steps; i++ {
		if i%period >= on {
			continue
		}
		f := 0.0
		if steps > 0 {
			f = float64(i) / float64(steps)
		}
		img.Set(x0+int(math.Round(dx*f)), y0+int(math.Round(dy*f)), c)
	}
}

func disc(img *image.RGBA, cx, cy, r float64, c color.Color) {
	b := img.Bounds()
	for y := int(cy - r); y <= int(cy+r+1); y++ {
		for x := int(cx - r); x <= int(cx+r+1); x++ {
			if !image.Pt(x, y).In(b) {
				continue
			}
			dx, dy := float64(x)-cx, float64(y)-cy
			if dx*dx+dy*dy <= r*r {
				img.Set(x, y, c)
			}
		}
	}
}

func drawLabels(img draw.Image, pa plotArea, spec GraphSpec) {
	face := basicfont.Face7x13
	r := pa.rect

	for i := 0; i <= tickCount; i++ {
		xv := pa.x.lo + pa.x.span()*float64(i)/tickCount
		label := fmt.Sprintf("%.2f", xv)
		if spec.XPercent {
			label = fmt.Sprintf("%.0f%%", xv*100)
		}
		x := r.Min.X + i*r.Dx()/tickCount
		drawText(img, face, label, x-textWidth(face, label)/2, r.Max.Y+16, textColor)

		yv := pa.y.lo + pa.y.span()*float64(i)/tickCount
		label = fmt.Sprintf("%.2f", yv)
		y := r.Max.Y - i*r.Dy()/tickCount
		drawText(img, face, label, r.Min.X-textWidth(face, label)-6, y+4, textColor)
	}

	if spec.Title != "" {
		drawText(img, face, spec.Title, r.Min.X+(r.Dx()-textWidth(face, spec.Title))/2, r.Min.Y-12, textColor)
	}
	if spec.XLabel != "" {
		drawText(img, face, spec.XLabel, r.Min.X+(r.Dx()-textWidth(face, spec.XLabel))/2, r.Max.Y+34, textColor)
	}
	if spec.YLabel != "" {
		drawText(img, face, spec.YLabel, 4, r.Min.Y-12, textColor)
	}

	// legend
	y := r.Min.Y + 16
	for i, s := range spec.Series {
		if s.Label == "" {
			continue
		}
		c := SeriesColor(i)
		if s.Color != "" {
			if parsed, err := colorful.Hex(s.Color); err == nil {
				c = parsed
			}
		}
		swatch := image.Rect(r.Min.X+10, y-8, r.Min.X+20, y+2)
		draw.Draw(img, swatch, image.NewUniform(c.Clamped()), image.Point{}, draw.Src)
		drawText(img, face, s.Label, r.Min.X+26, y+2, textColor)
		y += 16
	}
}

func drawText(img draw.Image, face font.Face, s string, x, y int, c color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func textWidth(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
