package cluster

import (
	"math/rand"
	"testing"

	"shapecluster/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/draw"
)

func TestPixelDiffIdenticalAndInverted(t *testing.T) {
	m := PixelDiff{PixelThreshold: DefaultPixelThreshold}
	black := uniformSample(t, "black", 4, 4, 0)
	white := uniformSample(t, "white", 4, 4, 255)

	assert.Equal(t, 0.0, m.Distance(black, black))
	assert.Equal(t, 1.0, m.Distance(black, white))
}

func TestPixelDiffThresholdIsExclusive(t *testing.T) {
	m := PixelDiff{PixelThreshold: 20}
	base := uniformSample(t, "base", 2, 2, 100)
	atThreshold := uniformSample(t, "at", 2, 2, 120)
	above := uniformSample(t, "above", 2, 2, 121)

	assert.Equal(t, 0.0, m.Distance(base, atThreshold))
	assert.Equal(t, 1.0, m.Distance(base, above))
}

func TestPixelDiffCountsFraction(t *testing.T) {
	m := PixelDiff{PixelThreshold: 20}
	a := patternSample(t, "a", [][]uint8{
		{0, 0},
		{0, 0},
	})
	b := patternSample(t, "b", [][]uint8{
		{0, 200},
		{0, 0},
	})
	assert.InDelta(t, 0.25, m.Distance(a, b), 1e-9)
}

func TestPixelDiffResamplesLargerImage(t *testing.T) {
	m := PixelDiff{PixelThreshold: 20}
	small := uniformSample(t, "small", 4, 4, 50)
	large := uniformSample(t, "large", 16, 12, 50)
	different := uniformSample(t, "different", 16, 12, 200)

	assert.Equal(t, 0.0, m.Distance(small, large))
	assert.Equal(t, 1.0, m.Distance(small, different))
	assert.Equal(t, 1.0, m.Distance(different, small))
}

func TestPixelDiffEqualAreaDifferentShape(t *testing.T) {
	m := PixelDiff{PixelThreshold: 20}
	wide := patternSample(t, "wide", [][]uint8{
		{0, 0, 0, 0, 255, 255, 255, 255},
		{0, 0, 0, 0, 255, 255, 255, 255},
	})
	tall := uniformSample(t, "tall", 2, 8, 0)

	assert.Equal(t, m.Distance(wide, tall), m.Distance(tall, wide))
}

func TestPixelDiffBoundsAndSymmetry(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	metrics := []PixelDiff{
		{PixelThreshold: 20},
		{PixelThreshold: 0},
		{PixelThreshold: 20, Interpolator: draw.NearestNeighbor},
	}

	samples := make([]*types.ImageSample, 0, 12)
	for i := 0; i < 12; i++ {
		w := 1 + rng.Intn(9)
		h := 1 + rng.Intn(9)
		pix := make([]uint8, w*h)
		for p := range pix {
			pix[p] = uint8(rng.Intn(256))
		}
		s, err := types.NewImageSample("random", w, h, pix)
		require.NoError(t, err)
		samples = append(samples, s)
	}

	for _, m := range metrics {
		for i := range samples {
			for j := range samples {
				d := m.Distance(samples[i], samples[j])
				assert.GreaterOrEqual(t, d, 0.0)
				assert.LessOrEqual(t, d, 1.0)
				assert.Equal(t, d, m.Distance(samples[j], samples[i]))
			}
		}
	}
}
