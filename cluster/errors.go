package cluster

import "errors"

var (
	// ErrEmptyInput is returned when clustering is invoked without samples.
	ErrEmptyInput = errors.New("no images to cluster")

	// ErrEmptyQueue is returned by PopMin when no pairs are left.
	ErrEmptyQueue = errors.New("merge queue is empty")

	// ErrInvalidOptions is returned when engine options are out of range.
	ErrInvalidOptions = errors.New("invalid cluster options")
)
