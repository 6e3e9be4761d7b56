package cluster

import (
	"container/heap"
	"fmt"
	"sort"
)

// Pair is an unordered pair of cluster IDs stored in canonical order (Lo < Hi),
// so (a, b) and (b, a) are the same key.
type Pair struct {
	Lo, Hi ID
}

// MakePair returns the canonical pair for a and b.
func MakePair(a, b ID) Pair {
	if b < a {
		return Pair{Lo: b, Hi: a}
	}
	return Pair{Lo: a, Hi: b}
}

// Has reports whether id is one of the pair's members.
func (p Pair) Has(id ID) bool { return p.Lo == id || p.Hi == id }

func (p Pair) String() string { return fmt.Sprintf("%d-%d", p.Lo, p.Hi) }

type queueEntry struct {
	pair     Pair
	distance float64
	index    int // maintained by entryHeap
}

// Compile time check to ensure entryHeap satisfies the heap interface.
var _ heap.Interface = (*entryHeap)(nil)

// entryHeap orders entries by distance, then by the lowest cluster IDs.
type entryHeap []*queueEntry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.distance != b.distance {
		return a.distance < b.distance
	}
	if a.pair.Lo != b.pair.Lo {
		return a.pair.Lo < b.pair.Lo
	}
	return a.pair.Hi < b.pair.Hi
}

func (h entryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *entryHeap) Push(x any) {
	e := x.(*queueEntry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// MergeQueue holds the clustroid distance of every pair of live clusters.
// A secondary index from cluster ID to its pairs makes retiring a cluster
// proportional to the number of pairs it takes part in.
type MergeQueue struct {
	heap      entryHeap
	entries   map[Pair]*queueEntry
	byCluster map[ID]map[Pair]struct{}
	metric    Metric
	workers   int
}

// NewMergeQueue creates an empty queue that measures clusters with metric.
func NewMergeQueue(metric Metric, workers int) *MergeQueue {
	return &MergeQueue{
		entries:   make(map[Pair]*queueEntry),
		byCluster: make(map[ID]map[Pair]struct{}),
		metric:    metric,
		workers:   workers,
	}
}

// Init replaces the queue contents with every unordered pair of clusters.
func (q *MergeQueue) Init(clusters []*Cluster) {
	n := len(clusters)
	q.heap = make(entryHeap, 0, n*(n-1)/2)
	q.entries = make(map[Pair]*queueEntry, n*(n-1)/2)
	q.byCluster = make(map[ID]map[Pair]struct{}, n)

	rows := make([][]float64, n)
	forEach(n, q.workers, func(i int) {
		row := make([]float64, n-i-1)
		for j := i + 1; j < n; j++ {
			row[j-i-1] = q.metric.Distance(clusters[i].Clustroid(), clusters[j].Clustroid())
		}
		rows[i] = row
	})

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			e := &queueEntry{
				pair:     MakePair(clusters[i].ID(), clusters[j].ID()),
				distance: rows[i][j-i-1],
				index:    len(q.heap),
			}
			q.heap = append(q.heap, e)
			q.index(e)
		}
	}
	heap.Init(&q.heap)
}

// Push inserts the pair, or updates its distance if it is already queued.
func (q *MergeQueue) Push(p Pair, distance float64) {
	if e, ok := q.entries[p]; ok {
		e.distance = distance
		heap.Fix(&q.heap, e.index)
		return
	}
	e := &queueEntry{pair: p, distance: distance}
	heap.Push(&q.heap, e)
	q.index(e)
}

// PopMin removes and returns the closest pair. Equal distances are resolved
// by the lowest IDs first.
func (q *MergeQueue) PopMin() (Pair, float64, error) {
	if len(q.heap) == 0 {
		return Pair{}, 0, ErrEmptyQueue
	}
	e := heap.Pop(&q.heap).(*queueEntry)
	q.unindex(e)
	return e.pair, e.distance, nil
}

// Retire removes every pair that references a or b and returns how many
// entries were dropped.
func (q *MergeQueue) Retire(a, b ID) int {
	removed := 0
	for _, id := range []ID{a, b} {
		for p := range q.byCluster[id] {
			e := q.entries[p]
			heap.Remove(&q.heap, e.index)
			q.unindex(e)
			removed++
		}
		delete(q.byCluster, id)
	}
	return removed
}

// InsertPairs queues the distance from c to every cluster in others, skipping
// c itself if present.
func (q *MergeQueue) InsertPairs(c *Cluster, others []*Cluster) {
	targets := make([]*Cluster, 0, len(others))
	for _, o := range others {
		if o.ID() != c.ID() {
			targets = append(targets, o)
		}
	}

	dists := make([]float64, len(targets))
	forEach(len(targets), q.workers, func(i int) {
		dists[i] = q.metric.Distance(c.Clustroid(), targets[i].Clustroid())
	})
	for i, o := range targets {
		q.Push(MakePair(c.ID(), o.ID()), dists[i])
	}
}

// Len returns the number of queued pairs.
func (q *MergeQueue) Len() int { return len(q.heap) }

// Contains reports whether p is queued.
func (q *MergeQueue) Contains(p Pair) bool {
	_, ok := q.entries[p]
	return ok
}

// Distance returns the queued distance for p.
func (q *MergeQueue) Distance(p Pair) (float64, bool) {
	e, ok := q.entries[p]
	if !ok {
		return 0, false
	}
	return e.distance, true
}

// Keys returns all queued pairs sorted by (Lo, Hi).
func (q *MergeQueue) Keys() []Pair {
	keys := make([]Pair, 0, len(q.entries))
	for p := range q.entries {
		keys = append(keys, p)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Lo != keys[j].Lo {
			return keys[i].Lo < keys[j].Lo
		}
		return keys[i].Hi < keys[j].Hi
	})
	return keys
}

func (q *MergeQueue) index(e *queueEntry) {
	q.entries[e.pair] = e
	for _, id := range []ID{e.pair.Lo, e.pair.Hi} {
		set, ok := q.byCluster[id]
		if !ok {
			set = make(map[Pair]struct{})
			q.byCluster[id] = set
		}
		set[e.pair] = struct{}{}
	}
}

func (q *MergeQueue) unindex(e *queueEntry) {
	delete(q.entries, e.pair)
	for _, id := range []ID{e.pair.Lo, e.pair.Hi} {
		if set, ok := q.byCluster[id]; ok {
			delete(set, e.pair)
			if len(set) == 0 {
				delete(q.byCluster, id)
			}
		}
	}
}
