package cluster

import (
	"shapecluster/types"
)

// ID identifies a cluster instance. IDs are never reused within a run, so a
// retired cluster's ID cannot collide with a live one.
type ID uint64

// Cluster is an immutable group of samples with its clustroid and diameter
// computed once at construction.
type Cluster struct {
	id             ID
	members        []*types.ImageSample
	clustroidIndex int
	diameter       float64
}

// NewSingleton wraps one sample. Its clustroid is the sample and its diameter is 0.
func NewSingleton(id ID, sample *types.ImageSample) *Cluster {
	return &Cluster{
		id:      id,
		members: []*types.ImageSample{sample},
	}
}

// NewMerged builds the cluster holding a's members followed by b's members.
// Clustroid and diameter are recomputed from all k(k-1)/2 member distances,
// which costs O(k²) metric evaluations. Neither a nor b is modified.
func NewMerged(id ID, a, b *Cluster, metric Metric, workers int) *Cluster {
	members := make([]*types.ImageSample, 0, len(a.members)+len(b.members))
	members = append(members, a.members...)
	members = append(members, b.members...)

	c := &Cluster{id: id, members: members}
	if len(members) > 1 {
		dist := distanceMatrix(members, metric, workers)
		c.clustroidIndex = findClustroid(dist)
		c.diameter = findDiameter(dist)
	}
	return c
}

// findClustroid returns the index with the smallest total distance to every
// other member. Ties go to the earliest index.
func findClustroid(dist [][]float64) int {
	best := 0
	bestSum := 0.0
	for i := range dist {
		sum := 0.0
		for j, d := range dist[i] {
			if j != i {
				sum += d
			}
		}
		if i == 0 || sum < bestSum {
			best = i
			bestSum = sum
		}
	}
	return best
}

func findDiameter(dist [][]float64) float64 {
	diameter := 0.0
	for i := range dist {
		for j := i + 1; j < len(dist); j++ {
			if dist[i][j] > diameter {
				diameter = dist[i][j]
			}
		}
	}
	return diameter
}

// ID returns the identity assigned when the cluster was built.
func (c *Cluster) ID() ID { return c.id }

// Members returns the cluster's samples in merge order. The slice is owned by
// the cluster and must not be modified.
func (c *Cluster) Members() []*types.ImageSample { return c.members }

// Size returns the number of members.
func (c *Cluster) Size() int { return len(c.members) }

// Clustroid returns the member with the smallest total distance to the others.
func (c *Cluster) Clustroid() *types.ImageSample { return c.members[c.clustroidIndex] }

// Diameter is the largest distance between any two members, 0 for a singleton.
func (c *Cluster) Diameter() float64 { return c.diameter }
