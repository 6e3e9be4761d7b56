package cluster

import (
	"shapecluster/types"

	"golang.org/x/sync/errgroup"
)

// forEach calls fn for every index in [0, n), on up to workers goroutines.
// Callers write results into index-addressed slots, so the outcome does not
// depend on scheduling.
func forEach(n, workers int, fn func(i int)) {
	if workers <= 1 || n < 2 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			fn(i)
			return nil
		})
	}
	_ = g.Wait()
}

// distanceMatrix evaluates the metric once for every unordered pair of
// samples and returns the full symmetric matrix. The diagonal stays zero and
// is never evaluated.
func distanceMatrix(samples []*types.ImageSample, metric Metric, workers int) [][]float64 {
	n := len(samples)
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}

	forEach(n, workers, func(i int) {
		for j := i + 1; j < n; j++ {
			d := metric.Distance(samples[i], samples[j])
			m[i][j] = d
			m[j][i] = d
		}
	})
	return m
}
