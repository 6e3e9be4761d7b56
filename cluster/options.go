package cluster

import "fmt"

const (
	// DefaultDiameterThreshold is the largest diameter an accepted merge may have.
	DefaultDiameterThreshold = 0.45
	// DefaultPixelThreshold is the intensity difference (0-255) above which two
	// pixels count as different.
	DefaultPixelThreshold = 20
)

// Options configures an Engine. Start from DefaultOptions; the zero value
// means "threshold 0" for both thresholds, which is valid but rarely wanted.
type Options struct {
	// Merges producing a diameter above this value are rejected and halt the run.
	DiameterThreshold float64
	// Per-pixel intensity threshold used by the default PixelDiff metric.
	PixelThreshold uint8
	// Number of goroutines evaluating independent distances. 0 or 1 runs sequentially.
	Workers int
	// Metric overrides the default PixelDiff metric when set.
	Metric Metric
	// DebugMode logs every merge attempt through the logging package.
	DebugMode bool
	// OnMerge, if set, is called after every merge attempt, accepted or not.
	OnMerge func(MergeEvent)
}

// DefaultOptions returns sequential options with the default thresholds and PixelDiff metric.
func DefaultOptions() Options {
	return Options{
		DiameterThreshold: DefaultDiameterThreshold,
		PixelThreshold:    DefaultPixelThreshold,
		Workers:           1,
	}
}

func (o Options) validate() error {
	if o.DiameterThreshold < 0 || o.DiameterThreshold > 1 {
		return fmt.Errorf("%w: diameter threshold %.3f outside [0,1]", ErrInvalidOptions, o.DiameterThreshold)
	}
	if o.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidOptions, o.Workers)
	}
	return nil
}

func (o Options) metric() Metric {
	if o.Metric != nil {
		return o.Metric
	}
	return PixelDiff{PixelThreshold: o.PixelThreshold}
}
