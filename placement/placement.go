// Package placement writes a clustering result to disk by moving or copying
// every image into a numbered folder per cluster.
package placement

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"shapecluster/cluster"
	"shapecluster/logging"
	"shapecluster/types"
)

// DefaultDirPrefix names the cluster folders Cluster_1, Cluster_2, ...
const DefaultDirPrefix = "Cluster_"

// ErrDestinationExists is returned instead of overwriting a file
var ErrDestinationExists = errors.New("destination already exists")

// Mode selects how images reach their cluster folder
type Mode int

const (
	Move Mode = iota
	Copy
)

func (m Mode) String() string {
	if m == Copy {
		return "copy"
	}
	return "move"
}

// Options defines where and how clusters are placed
type Options struct {
	OutputDir string
	DirPrefix string
	Mode      Mode
	// DryRun computes the assignments without touching the filesystem.
	DryRun    bool
	DebugMode bool
}

// Plan assigns cluster indexes 1..k in result order and computes every
// destination path, without touching the filesystem.
func Plan(clusters []*cluster.Cluster, opts Options) ([]types.Assignment, error) {
	prefix := opts.DirPrefix
	if prefix == "" {
		prefix = DefaultDirPrefix
	}

	var assignments []types.Assignment
	seen := make(map[string]string)
	for i, c := range clusters {
		index := i + 1
		dir := filepath.Join(opts.OutputDir, prefix+strconv.Itoa(index))
		clustroid := c.Clustroid()
		for _, s := range c.Members() {
			dest := filepath.Join(dir, filepath.Base(s.Path))
			if other, ok := seen[dest]; ok {
				return nil, fmt.Errorf("%w: %s would receive both %s and %s", ErrDestinationExists, dest, other, s.Path)
			}
			seen[dest] = s.Path
			assignments = append(assignments, types.Assignment{
				Path:         s.Path,
				Destination:  dest,
				ClusterIndex: index,
				IsClustroid:  s == clustroid,
			})
		}
	}
	return assignments, nil
}

// Place moves or copies every clustered image into its cluster folder and
// returns where each one went. Existing files are never overwritten; all
// destinations are checked before the first file is touched. When a move or
// copy fails, the assignments completed before the failure are returned
// along with the error.
func Place(clusters []*cluster.Cluster, opts Options) ([]types.Assignment, error) {
	assignments, err := Plan(clusters, opts)
	if err != nil {
		return nil, err
	}
	if opts.DryRun {
		return assignments, nil
	}

	for _, a := range assignments {
		if _, err := os.Stat(a.Destination); err == nil {
			return nil, fmt.Errorf("%w: %s", ErrDestinationExists, a.Destination)
		}
	}

	placed := make([]types.Assignment, 0, len(assignments))
	for _, a := range assignments {
		if err := os.MkdirAll(filepath.Dir(a.Destination), 0755); err != nil {
			return placed, fmt.Errorf("cannot create cluster folder: %w", err)
		}
		if opts.Mode == Copy {
			err = copyFile(a.Path, a.Destination)
		} else {
			err = moveFile(a.Path, a.Destination)
		}
		if err != nil {
			return placed, fmt.Errorf("cannot %s %s to %s: %w", opts.Mode, a.Path, a.Destination, err)
		}
		placed = append(placed, a)
		if opts.DebugMode {
			logging.DebugLog("Placed %s in cluster %d (%s)", a.Path, a.ClusterIndex, a.Destination)
		}
	}
	return placed, nil
}

// moveFile renames src to dst, copying across filesystems when a rename is not possible
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	} else if _, statErr := os.Stat(src); statErr != nil {
		return err
	}

	if err := copyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
