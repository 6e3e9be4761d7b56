package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"shapecluster/imageprocessor"
	"shapecluster/logging"
	"shapecluster/types"
)

// ListImageFiles returns the loadable image files under options.FolderPath, sorted by path
func ListImageFiles(options ScanOptions) ([]string, error) {
	registry := options.registry()
	exts := NormalizeExtensions(options.Extensions)

	info, err := os.Stat(options.FolderPath)
	if err != nil {
		return nil, fmt.Errorf("cannot access folder %s: %w", options.FolderPath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", options.FolderPath)
	}

	var paths []string
	keep := func(path string) {
		if registry.CanLoadFile(path) && hasAllowedExtension(path, exts) {
			paths = append(paths, path)
		}
	}

	if options.Recursive {
		err = filepath.WalkDir(options.FolderPath, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if options.DebugMode {
					logging.LogError("Error accessing path %s: %v", path, err)
				}
				return nil
			}
			if d.IsDir() {
				if path != options.FolderPath && options.SkipDirPrefix != "" && strings.HasPrefix(d.Name(), options.SkipDirPrefix) {
					return filepath.SkipDir
				}
				return nil
			}
			keep(path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	} else {
		entries, err := os.ReadDir(options.FolderPath)
		if err != nil {
			return nil, fmt.Errorf("cannot read folder %s: %w", options.FolderPath, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				keep(filepath.Join(options.FolderPath, entry.Name()))
			}
		}
	}

	sort.Strings(paths)
	return paths, nil
}

// LoadFolder decodes every image in the folder in parallel and returns the
// samples in path order. The first decode failure, in path order, aborts
// the whole load.
func LoadFolder(options ScanOptions) ([]*types.ImageSample, error) {
	paths, err := ListImageFiles(options)
	if err != nil {
		return nil, err
	}
	if options.DebugMode {
		logging.DebugLog("Found %d image files in %s (recursive: %v)", len(paths), options.FolderPath, options.Recursive)
	}
	return LoadFiles(paths, options)
}

// LoadFiles decodes the given files in parallel, keeping their order
func LoadFiles(paths []string, options ScanOptions) ([]*types.ImageSample, error) {
	registry := options.registry()

	workers := options.MaxWorkers
	if workers < 1 {
		workers = 1
	}

	out := options.Output
	if out == nil {
		out = os.Stdout
	}

	samples := make([]*types.ImageSample, len(paths))
	errs := make([]error, len(paths))

	var wg sync.WaitGroup
	resultsChan := make(chan ProcessImageResult, len(paths))
	semaphore := make(chan struct{}, workers) // Limit concurrent goroutines

	tracker := NewProgressTracker(len(paths), resultsChan, out, options.Quiet)

	for i, path := range paths {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(i int, p string) {
			defer wg.Done()
			defer func() { <-semaphore }() // Release semaphore when done

			sample, err := registry.LoadSample(p)
			samples[i] = sample
			errs[i] = err
			resultsChan <- ProcessImageResult{Path: p, Success: err == nil, Error: err}
		}(i, path)
	}

	wg.Wait()
	close(resultsChan)
	tracker.Stop()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return samples, nil
}

func (o ScanOptions) registry() *imageprocessor.ImageLoaderRegistry {
	if o.Registry != nil {
		return o.Registry
	}
	return imageprocessor.NewImageLoaderRegistry()
}
