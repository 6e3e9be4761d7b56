package cluster

import (
	"fmt"

	"shapecluster/logging"
	"shapecluster/types"
)

// State is the engine's position in its run.
type State int

const (
	Running State = iota
	Halted
)

func (s State) String() string {
	if s == Halted {
		return "halted"
	}
	return "running"
}

// HaltReason tells why an engine stopped merging.
type HaltReason int

const (
	HaltNone HaltReason = iota
	// HaltRejected means the closest pair would have exceeded the diameter threshold.
	HaltRejected
	// HaltSingleCluster means every sample ended up in one cluster.
	HaltSingleCluster
)

func (r HaltReason) String() string {
	switch r {
	case HaltRejected:
		return "rejected"
	case HaltSingleCluster:
		return "single-cluster"
	default:
		return "none"
	}
}

// MergeEvent describes one merge attempt.
type MergeEvent struct {
	Attempt  int
	A, B     ID
	Merged   ID
	Distance float64 // clustroid distance between A and B
	Diameter float64 // diameter of the candidate cluster
	Size     int
	Accepted bool
}

// Result is the final partition of a run.
type Result struct {
	Clusters []*Cluster
	Merges   int
	Attempts int
	Halt     HaltReason
}

// Engine runs the merge loop. An Engine is not safe for concurrent use.
type Engine struct {
	opts   Options
	metric Metric

	nextID   ID // keeps counting across runs of the same engine
	state    State
	halt     HaltReason
	live     []*Cluster
	byID     map[ID]*Cluster
	queue    *MergeQueue
	merges   int
	attempts int
}

// NewEngine validates opts and returns an idle engine.
func NewEngine(opts Options) (*Engine, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &Engine{
		opts:   opts,
		metric: opts.metric(),
		state:  Halted,
	}, nil
}

// Run clusters samples with opts and returns the final partition.
func Run(samples []*types.ImageSample, opts Options) (*Result, error) {
	e, err := NewEngine(opts)
	if err != nil {
		return nil, err
	}
	return e.Run(samples)
}

// Run starts a new run over samples and steps until the engine halts.
func (e *Engine) Run(samples []*types.ImageSample) (*Result, error) {
	if err := e.Start(samples); err != nil {
		return nil, err
	}
	for e.state == Running {
		if err := e.Step(); err != nil {
			return nil, err
		}
	}
	return e.Result(), nil
}

// Start wraps every sample in a singleton cluster and seeds the merge queue
// with all pairwise clustroid distances.
func (e *Engine) Start(samples []*types.ImageSample) error {
	if len(samples) == 0 {
		return ErrEmptyInput
	}

	e.halt = HaltNone
	e.merges = 0
	e.attempts = 0
	e.live = make([]*Cluster, 0, len(samples))
	e.byID = make(map[ID]*Cluster, len(samples))
	for _, s := range samples {
		c := NewSingleton(e.allocID(), s)
		e.live = append(e.live, c)
		e.byID[c.ID()] = c
	}

	e.queue = NewMergeQueue(e.metric, e.opts.Workers)
	e.queue.Init(e.live)
	e.state = Running

	if e.opts.DebugMode {
		logging.DebugLog("Clustering %d images, %d candidate pairs, diameter threshold %.3f",
			len(samples), e.queue.Len(), e.opts.DiameterThreshold)
	}
	return nil
}

// Step performs one merge attempt. It is a no-op once the engine has halted.
func (e *Engine) Step() error {
	if e.state != Running {
		return nil
	}
	if len(e.live) < 2 {
		e.stop(HaltSingleCluster)
		return nil
	}

	pair, distance, err := e.queue.PopMin()
	if err != nil {
		return fmt.Errorf("%d live clusters left: %w", len(e.live), err)
	}
	a, okA := e.byID[pair.Lo]
	b, okB := e.byID[pair.Hi]
	if !okA || !okB {
		return fmt.Errorf("merge queue references retired cluster in pair %s", pair)
	}

	e.attempts++
	merged := NewMerged(e.allocID(), a, b, e.metric, e.opts.Workers)
	event := MergeEvent{
		Attempt:  e.attempts,
		A:        a.ID(),
		B:        b.ID(),
		Merged:   merged.ID(),
		Distance: distance,
		Diameter: merged.Diameter(),
		Size:     merged.Size(),
	}

	if merged.Diameter() > e.opts.DiameterThreshold {
		// A and B stay live, so their pair goes back into the queue.
		e.queue.Push(pair, distance)
		e.notify(event)
		e.stop(HaltRejected)
		return nil
	}

	e.removeLive(a.ID(), b.ID())
	e.queue.Retire(a.ID(), b.ID())
	e.queue.InsertPairs(merged, e.live)
	e.live = append(e.live, merged)
	e.byID[merged.ID()] = merged
	e.merges++

	event.Accepted = true
	e.notify(event)
	return nil
}

// State returns the engine state.
func (e *Engine) State() State { return e.state }

// Live returns the current live clusters. The slice must not be modified.
func (e *Engine) Live() []*Cluster { return e.live }

// Queue exposes the merge queue for inspection.
func (e *Engine) Queue() *MergeQueue { return e.queue }

// Result returns the live clusters and counters of the current run.
func (e *Engine) Result() *Result {
	clusters := make([]*Cluster, len(e.live))
	copy(clusters, e.live)
	return &Result{
		Clusters: clusters,
		Merges:   e.merges,
		Attempts: e.attempts,
		Halt:     e.halt,
	}
}

func (e *Engine) allocID() ID {
	e.nextID++
	return e.nextID
}

func (e *Engine) removeLive(a, b ID) {
	kept := e.live[:0]
	for _, c := range e.live {
		if c.ID() != a && c.ID() != b {
			kept = append(kept, c)
		}
	}
	e.live = kept
	delete(e.byID, a)
	delete(e.byID, b)
}

func (e *Engine) stop(reason HaltReason) {
	e.state = Halted
	e.halt = reason
	if e.opts.DebugMode {
		logging.DebugLog("Clustering halted (%s) after %d merges with %d clusters", reason, e.merges, len(e.live))
	}
}

func (e *Engine) notify(ev MergeEvent) {
	if e.opts.DebugMode {
		verdict := "accepted"
		if !ev.Accepted {
			verdict = "rejected"
		}
		logging.DebugLog("Merge %d %s: clusters %d+%d -> %d (distance %.4f, diameter %.4f, size %d)",
			ev.Attempt, verdict, ev.A, ev.B, ev.Merged, ev.Distance, ev.Diameter, ev.Size)
	}
	if e.opts.OnMerge != nil {
		e.opts.OnMerge(ev)
	}
}
