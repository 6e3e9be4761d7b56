package types

import (
	"errors"
	"fmt"
	"image"
)

// ErrInvalidSample is returned when a pixel grid does not match its dimensions
var ErrInvalidSample = errors.New("invalid image sample")

// ImageSample holds a decoded grayscale image and the path it came from.
// Samples are created once by a loader and never modified afterwards.
type ImageSample struct {
	Path   string  `json:"path"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Pix    []uint8 `json:"-"` // row major, stride == Width
}

// NewImageSample validates the grid and wraps it in a sample
func NewImageSample(path string, width, height int, pix []uint8) (*ImageSample, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %s has dimensions %dx%d", ErrInvalidSample, path, width, height)
	}
	if len(pix) != width*height {
		return nil, fmt.Errorf("%w: %s has %d pixels, expected %d", ErrInvalidSample, path, len(pix), width*height)
	}
	return &ImageSample{
		Path:   path,
		Width:  width,
		Height: height,
		Pix:    pix,
	}, nil
}

// Area returns the number of pixels in the sample
func (s *ImageSample) Area() int {
	return s.Width * s.Height
}

// Gray returns an *image.Gray view over the sample's pixels. The view shares
// memory with the sample and must not be written to.
func (s *ImageSample) Gray() *image.Gray {
	return &image.Gray{
		Pix:    s.Pix,
		Stride: s.Width,
		Rect:   image.Rect(0, 0, s.Width, s.Height),
	}
}

// Assignment records where a clustered image ended up
type Assignment struct {
	Path         string `json:"path"`
	Destination  string `json:"destination"`
	ClusterIndex int    `json:"cluster_index"`
	IsClustroid  bool   `json:"is_clustroid"`
}

// RunRecord holds the parameters and outcome of one clustering run
type RunRecord struct {
	ID                string  `json:"id"`
	StartedAt         string  `json:"started_at"`
	Folder            string  `json:"folder"`
	OutputDir         string  `json:"output_dir"`
	DiameterThreshold float64 `json:"diameter_threshold"`
	PixelThreshold    int     `json:"pixel_threshold"`
	ImageCount        int     `json:"image_count"`
	ClusterCount      int     `json:"cluster_count"`
	Merges            int     `json:"merges"`
	HaltReason        string  `json:"halt_reason"`
	DurationMillis    int64   `json:"duration_ms"`
	Partial           bool    `json:"partial"` // placement stopped on an error
}
