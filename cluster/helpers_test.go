package cluster

import (
	"sync"
	"testing"

	"shapecluster/types"

	"github.com/stretchr/testify/require"
)

// uniformSample returns a w x h sample filled with value v.
func uniformSample(t *testing.T, path string, w, h int, v uint8) *types.ImageSample {
	t.Helper()
	pix := make([]uint8, w*h)
	for i := range pix {
		pix[i] = v
	}
	s, err := types.NewImageSample(path, w, h, pix)
	require.NoError(t, err)
	return s
}

// patternSample builds a sample from rows of intensities.
func patternSample(t *testing.T, path string, rows [][]uint8) *types.ImageSample {
	t.Helper()
	h := len(rows)
	w := len(rows[0])
	pix := make([]uint8, 0, w*h)
	for _, r := range rows {
		require.Len(t, r, w)
		pix = append(pix, r...)
	}
	s, err := types.NewImageSample(path, w, h, pix)
	require.NoError(t, err)
	return s
}

// tableMetric returns fixed distances keyed by sample paths. Unknown pairs
// fall back to def.
type tableMetric struct {
	dist map[[2]string]float64
	def  float64
}

func newTableMetric(def float64) *tableMetric {
	return &tableMetric{dist: make(map[[2]string]float64), def: def}
}

func (m *tableMetric) set(a, b string, d float64) {
	m.dist[[2]string{a, b}] = d
	m.dist[[2]string{b, a}] = d
}

func (m *tableMetric) Distance(a, b *types.ImageSample) float64 {
	if d, ok := m.dist[[2]string{a.Path, b.Path}]; ok {
		return d
	}
	return m.def
}

// countingMetric records every evaluation of the wrapped metric.
type countingMetric struct {
	inner Metric

	mu    sync.Mutex
	calls int
	self  int
}

func (m *countingMetric) Distance(a, b *types.ImageSample) float64 {
	m.mu.Lock()
	m.calls++
	if a == b {
		m.self++
	}
	m.mu.Unlock()
	return m.inner.Distance(a, b)
}

func samplePaths(c *Cluster) []string {
	paths := make([]string, 0, c.Size())
	for _, s := range c.Members() {
		paths = append(paths, s.Path)
	}
	return paths
}
