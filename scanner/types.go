package scanner

import (
	"io"

	"shapecluster/imageprocessor"
)

// ScanOptions defines the options for loading a folder of images
type ScanOptions struct {
	FolderPath string
	// Recursive walks subdirectories; by default only the folder itself is read.
	Recursive bool
	// Extensions restricts loading to these extensions (".jpg"). Empty means
	// every extension the registry can load.
	Extensions []string
	// SkipDirPrefix names directories to skip while walking, such as the
	// output folders of an earlier run.
	SkipDirPrefix string
	DebugMode     bool
	Quiet         bool
	MaxWorkers    int
	// Registry used for decoding. Nil means imageprocessor.NewImageLoaderRegistry().
	Registry *imageprocessor.ImageLoaderRegistry
	// Output receives progress display. Nil means os.Stdout.
	Output io.Writer
}

// ProcessImageResult holds the result of loading one image
type ProcessImageResult struct {
	Path    string
	Success bool
	Error   error
}
