package cluster

import (
	"image"

	"shapecluster/types"

	"golang.org/x/image/draw"
)

// Metric measures the dissimilarity of two samples as a value in [0, 1].
// Implementations must be symmetric and safe for concurrent use.
type Metric interface {
	Distance(a, b *types.ImageSample) float64
}

// PixelDiff is the fraction of pixel positions whose intensities differ by
// more than PixelThreshold. The larger sample is resampled to the exact
// dimensions of the smaller one before comparing.
type PixelDiff struct {
	PixelThreshold uint8
	// Interpolator used for resampling. Nil means draw.ApproxBiLinear.
	Interpolator draw.Interpolator
}

// Distance implements Metric.
func (m PixelDiff) Distance(a, b *types.ImageSample) float64 {
	target, other := orderBySize(a, b)

	otherPix := other.Pix
	if other.Width != target.Width || other.Height != target.Height {
		otherPix = m.resample(other, target.Width, target.Height)
	}

	threshold := int(m.PixelThreshold)
	differing := 0
	for i, p := range target.Pix {
		d := int(p) - int(otherPix[i])
		if d < 0 {
			d = -d
		}
		if d > threshold {
			differing++
		}
	}

	return float64(differing) / float64(target.Area())
}

func (m PixelDiff) resample(s *types.ImageSample, width, height int) []uint8 {
	interp := m.Interpolator
	if interp == nil {
		interp = draw.ApproxBiLinear
	}
	dst := image.NewGray(image.Rect(0, 0, width, height))
	src := s.Gray()
	interp.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst.Pix
}

// orderBySize returns the sample whose grid is used for the comparison first.
// The choice depends only on the two sizes, never on argument order, so that
// Distance(a, b) == Distance(b, a).
func orderBySize(a, b *types.ImageSample) (target, other *types.ImageSample) {
	if smallerThan(b, a) {
		return b, a
	}
	return a, b
}

func smallerThan(x, y *types.ImageSample) bool {
	if x.Area() != y.Area() {
		return x.Area() < y.Area()
	}
	if x.Width != y.Width {
		return x.Width < y.Width
	}
	return x.Height < y.Height
}
