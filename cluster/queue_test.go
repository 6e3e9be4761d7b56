package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func singletons(t *testing.T, paths ...string) []*Cluster {
	t.Helper()
	out := make([]*Cluster, 0, len(paths))
	for i, p := range paths {
		out = append(out, NewSingleton(ID(i+1), uniformSample(t, p, 1, 1, 0)))
	}
	return out
}

func allPairs(clusters []*Cluster) []Pair {
	var pairs []Pair
	for i := range clusters {
		for j := i + 1; j < len(clusters); j++ {
			pairs = append(pairs, MakePair(clusters[i].ID(), clusters[j].ID()))
		}
	}
	return pairs
}

func TestMakePairIsCanonical(t *testing.T) {
	assert.Equal(t, MakePair(3, 9), MakePair(9, 3))
	assert.Equal(t, Pair{Lo: 3, Hi: 9}, MakePair(9, 3))
	assert.True(t, MakePair(3, 9).Has(9))
	assert.False(t, MakePair(3, 9).Has(4))
	assert.Equal(t, "3-9", MakePair(9, 3).String())
}

func TestMergeQueueInitHoldsAllPairs(t *testing.T) {
	m := newTableMetric(0.5)
	clusters := singletons(t, "a", "b", "c", "d", "e")

	q := NewMergeQueue(m, 1)
	q.Init(clusters)

	assert.Equal(t, 10, q.Len())
	assert.Equal(t, allPairs(clusters), q.Keys())
}

func TestMergeQueuePopOrderAndTieBreak(t *testing.T) {
	m := newTableMetric(0.9)
	m.set("c", "d", 0.1)
	m.set("a", "d", 0.2)
	m.set("b", "c", 0.2)
	clusters := singletons(t, "a", "b", "c", "d")

	q := NewMergeQueue(m, 2)
	q.Init(clusters)

	p, d, err := q.PopMin()
	require.NoError(t, err)
	assert.Equal(t, MakePair(3, 4), p)
	assert.Equal(t, 0.1, d)

	// Equal distances: lowest Lo first.
	p, _, err = q.PopMin()
	require.NoError(t, err)
	assert.Equal(t, MakePair(1, 4), p)

	p, _, err = q.PopMin()
	require.NoError(t, err)
	assert.Equal(t, MakePair(2, 3), p)

	// Remaining 0.9 pairs in (Lo, Hi) order.
	for _, want := range []Pair{{1, 2}, {1, 3}, {2, 4}} {
		p, _, err = q.PopMin()
		require.NoError(t, err)
		assert.Equal(t, want, p)
	}

	_, _, err = q.PopMin()
	assert.ErrorIs(t, err, ErrEmptyQueue)
}

func TestMergeQueueRetireRemovesEveryReference(t *testing.T) {
	m := newTableMetric(0.5)
	clusters := singletons(t, "a", "b", "c", "d", "e")
	q := NewMergeQueue(m, 1)
	q.Init(clusters)

	// With the pair still queued: (n-1) + (n-2) entries.
	removed := q.Retire(1, 2)
	assert.Equal(t, 4+3, removed)
	assert.Equal(t, allPairs(clusters[2:]), q.Keys())

	for _, p := range q.Keys() {
		assert.False(t, p.Has(1))
		assert.False(t, p.Has(2))
	}

	// Retiring again is harmless.
	assert.Equal(t, 0, q.Retire(1, 2))
}

func TestMergeQueueRetireAfterPop(t *testing.T) {
	m := newTableMetric(0.5)
	m.set("a", "b", 0.01)
	clusters := singletons(t, "a", "b", "c", "d")
	q := NewMergeQueue(m, 1)
	q.Init(clusters)

	p, _, err := q.PopMin()
	require.NoError(t, err)
	require.Equal(t, MakePair(1, 2), p)

	assert.Equal(t, 2+2, q.Retire(p.Lo, p.Hi))
	assert.Equal(t, []Pair{{3, 4}}, q.Keys())
}

func TestMergeQueueInsertPairs(t *testing.T) {
	m := newTableMetric(0.5)
	m.set("a", "z", 0.05)
	clusters := singletons(t, "a", "b", "c")
	q := NewMergeQueue(m, 1)
	q.Init(clusters)

	z := NewSingleton(10, uniformSample(t, "z", 1, 1, 0))
	q.InsertPairs(z, append(clusters, z))

	assert.Equal(t, 3+3, q.Len())
	assert.True(t, q.Contains(MakePair(1, 10)))
	assert.True(t, q.Contains(MakePair(10, 3)))
	assert.False(t, q.Contains(MakePair(10, 10)))

	d, ok := q.Distance(MakePair(10, 1))
	require.True(t, ok)
	assert.Equal(t, 0.05, d)

	p, _, err := q.PopMin()
	require.NoError(t, err)
	assert.Equal(t, MakePair(1, 10), p)
}

func TestMergeQueuePushUpdatesExisting(t *testing.T) {
	m := newTableMetric(0.5)
	clusters := singletons(t, "a", "b", "c")
	q := NewMergeQueue(m, 1)
	q.Init(clusters)

	q.Push(MakePair(3, 2), 0.01)
	assert.Equal(t, 3, q.Len())

	p, d, err := q.PopMin()
	require.NoError(t, err)
	assert.Equal(t, MakePair(2, 3), p)
	assert.Equal(t, 0.01, d)
}
