package imageprocessor

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"

	"shapecluster/logging"
	"shapecluster/types"
)

// ErrNoLoader is wrapped in a DecodeError when no loader handles a file
var ErrNoLoader = errors.New("no suitable loader")

// ImageLoaderRegistry maps file extensions to an ordered chain of loaders.
// The first loader that succeeds wins.
type ImageLoaderRegistry struct {
	loaders map[string][]ImageLoader
	mutex   sync.RWMutex
}

// NewImageLoaderRegistry creates a registry with OpenCV as primary loader and
// the Go decoders as fallback
func NewImageLoaderRegistry() *ImageLoaderRegistry {
	registry := NewEmptyRegistry()

	standardLoader := NewStandardImageLoader()
	goLoader := NewGoImageLoader()

	for _, ext := range []string{".jpg", ".jpeg", ".png", ".bmp", ".webp", ".tif", ".tiff"} {
		registry.RegisterLoader(ext, standardLoader)
		registry.RegisterLoader(ext, goLoader)
	}
	// OpenCV builds commonly ship without GIF support.
	registry.RegisterLoader(".gif", goLoader)

	return registry
}

// NewEmptyRegistry creates a registry without loaders
func NewEmptyRegistry() *ImageLoaderRegistry {
	return &ImageLoaderRegistry{
		loaders: make(map[string][]ImageLoader),
	}
}

// RegisterLoader appends a loader to the chain for a file extension
func (r *ImageLoaderRegistry) RegisterLoader(ext string, loader ImageLoader) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	ext = strings.ToLower(ext)
	r.loaders[ext] = append(r.loaders[ext], loader)
}

// CanLoadFile checks if any registered loader handles the file's extension
func (r *ImageLoaderRegistry) CanLoadFile(path string) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	ext := strings.ToLower(filepath.Ext(path))
	return len(r.loaders[ext]) > 0
}

// LoadSample tries each loader registered for the file's extension in
// order. It returns a *DecodeError if none of them succeeds.
func (r *ImageLoaderRegistry) LoadSample(path string) (*types.ImageSample, error) {
	r.mutex.RLock()
	chain := r.loaders[strings.ToLower(filepath.Ext(path))]
	r.mutex.RUnlock()

	if len(chain) == 0 {
		return nil, &DecodeError{Path: path, Err: ErrNoLoader}
	}

	var lastErr error
	for i, loader := range chain {
		if !loader.CanLoad(path) {
			continue
		}
		sample, err := safeLoad(loader, path)
		if err == nil {
			return sample, nil
		}
		lastErr = err
		if i < len(chain)-1 {
			logging.LogWarning("Loader %T failed for %s, trying next loader: %v", loader, path, err)
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("%w for %s", ErrNoLoader, path)
	}
	return nil, newDecodeError(path, lastErr)
}

// safeLoad runs a loader, turning panics from the cgo layer into errors
func safeLoad(loader ImageLoader, path string) (sample *types.ImageSample, err error) {
	defer func() {
		if r := recover(); r != nil {
			stackTrace := debug.Stack()
			logging.LogError("Panic during image loading: %v, file: %s\nStack trace: %s", r, path, string(stackTrace))
			sample = nil
			err = newDecodeError(path, fmt.Errorf("panic during image loading: %v", r))
		}
	}()
	return loader.LoadSample(path)
}
