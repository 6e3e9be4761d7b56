// Package imageprocessor loads image files into grayscale samples.
//
// OpenCV (through gocv) does the decoding for the formats it supports, the
// same grayscale path the rest of the tooling relies on. A pure-Go decoder
// covers GIF and anything OpenCV fails to read.
package imageprocessor

import "shapecluster/types"

// ImageLoader is the interface that all image loaders must implement
type ImageLoader interface {
	// CanLoad checks if the loader can handle the given file
	CanLoad(path string) bool

	// LoadSample decodes the file into a grayscale sample
	LoadSample(path string) (*types.ImageSample, error)
}
