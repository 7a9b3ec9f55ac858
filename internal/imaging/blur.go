package imaging

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// minBlurSigma is the sigma below which a frame is passed through unblurred.
const minBlurSigma = 0.01

// BlurSchedule returns one Gaussian-blurred copy of img per sigma, in order.
// The kernel extends three sigmas either side of each pixel.
func BlurSchedule(img image.Image, sigmas []float64) []*image.NRGBA {
	frames := make([]*image.NRGBA, len(sigmas))
	for i, s := range sigmas {
		if s < minBlurSigma {
			frames[i] = imaging.Clone(img)
			continue
		}
		frames[i] = imaging.Blur(img, s)
	}
	return frames
}

// SaveFrames writes frames into dir as <prefix>_000.png, <prefix>_001.png,
// and so on, returning the written paths.
func SaveFrames(frames []*image.NRGBA, dir, prefix string) ([]string, error) {
	paths := make([]string, 0, len(frames))
	for i, f := range frames {
		path := filepath.Join(dir, fmt.Sprintf("%s_%03d.png", prefix, i))
		if err := SaveImage(f, path); err != nil {
			return paths, fmt.Errorf("frame %d: %w", i, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
