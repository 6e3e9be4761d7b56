package utils

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"shapecluster/cluster"

	"github.com/spf13/pflag"
)

// ErrUsage is returned when the command line cannot be understood
var ErrUsage = errors.New("invalid usage")

// ClusterConfig holds the flags of the cluster command
type ClusterConfig struct {
	FolderPath        string
	OutputDir         string
	Copy              bool
	DryRun            bool
	Recursive         bool
	Extensions        []string
	DiameterThreshold float64
	PixelThreshold    int
	Workers           int
	DatabasePath      string
	NoDatabase        bool
	DebugMode         bool
	LogPath           string
	Quiet             bool
}

// RunsConfig holds the flags of the runs command
type RunsConfig struct {
	DatabasePath string
	Limit        int
}

// SplitCommand separates the command name from its arguments
func SplitCommand(args []string) (string, []string, error) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return "", nil, fmt.Errorf("%w: missing command", ErrUsage)
	}
	return args[0], args[1:], nil
}

// ParseClusterArgs parses the flags of the cluster command. defaultWorkers
// is used when --workers is not given.
func ParseClusterArgs(args []string, defaultWorkers int) (*ClusterConfig, error) {
	cfg := &ClusterConfig{}
	fs := pflag.NewFlagSet("cluster", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVarP(&cfg.FolderPath, "folder", "f", "", "Folder containing the images to cluster.")
	fs.StringVarP(&cfg.OutputDir, "output", "o", "", "Folder receiving the Cluster_N folders (default: --folder).")
	fs.BoolVar(&cfg.Copy, "copy", false, "Copy images instead of moving them.")
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "Compute clusters without touching any file.")
	fs.BoolVarP(&cfg.Recursive, "recursive", "r", false, "Also load images from subfolders.")
	fs.StringSliceVar(&cfg.Extensions, "ext", nil, "Only load files with these extensions (e.g. .jpg,.png).")
	fs.Float64Var(&cfg.DiameterThreshold, "diameter", cluster.DefaultDiameterThreshold, "Largest allowed cluster diameter (0.0-1.0).")
	fs.IntVar(&cfg.PixelThreshold, "pixel-threshold", cluster.DefaultPixelThreshold, "Gray level difference above which two pixels differ (0-255).")
	fs.IntVarP(&cfg.Workers, "workers", "w", defaultWorkers, "Number of worker goroutines.")
	fs.StringVar(&cfg.DatabasePath, "database", GetDefaultDatabasePath(), "Path to the run catalog.")
	fs.BoolVar(&cfg.NoDatabase, "no-db", false, "Do not record the run.")
	fs.BoolVar(&cfg.DebugMode, "debug", false, "Enable debug mode (logs detailed information).")
	fs.StringVar(&cfg.LogPath, "logfile", "shapecluster.log", "Debug log file path.")
	fs.BoolVarP(&cfg.Quiet, "quiet", "q", false, "Hide the progress spinner and summary.")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = cfg.FolderPath
	}
	return cfg, nil
}

// ValidateClusterConfig checks that the configuration can be run
func ValidateClusterConfig(cfg *ClusterConfig) error {
	if cfg.FolderPath == "" {
		return fmt.Errorf("%w: --folder flag is required", ErrUsage)
	}
	info, err := os.Stat(cfg.FolderPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("folder path does not exist: %s", cfg.FolderPath)
		}
		return fmt.Errorf("cannot access folder path: %s (%v)", cfg.FolderPath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", cfg.FolderPath)
	}
	if _, err := ParseThreshold(cfg.DiameterThreshold); err != nil {
		return err
	}
	if cfg.PixelThreshold < 0 || cfg.PixelThreshold > 255 {
		return fmt.Errorf("--pixel-threshold must be between 0 and 255, got %d", cfg.PixelThreshold)
	}
	if cfg.Workers <= 0 {
		return fmt.Errorf("--workers must be a positive integer")
	}
	return nil
}

// ParseRunsArgs parses the flags of the runs command
func ParseRunsArgs(args []string) (*RunsConfig, error) {
	cfg := &RunsConfig{}
	fs := pflag.NewFlagSet("runs", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.DatabasePath, "database", GetDefaultDatabasePath(), "Path to the run catalog.")
	fs.IntVarP(&cfg.Limit, "limit", "n", 10, "Number of runs to show (0 for all).")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return cfg, nil
}

// GetDefaultDatabasePath returns the default path for the database file
func GetDefaultDatabasePath() string {
	// Get the executable path
	exePath, err := os.Executable()
	if err != nil {
		// Fallback to current directory if executable path can't be determined
		return "shapecluster.db"
	}

	return filepath.Join(filepath.Dir(exePath), "shapecluster.db")
}

// PrintUsage outputs the command-line usage instructions
func PrintUsage(w io.Writer) {
	name := filepath.Base(os.Args[0])
	fmt.Fprintf(w, "Usage:\n")
	fmt.Fprintf(w, "  %s cluster --folder=PATH [--output=DIR] [--copy] [--dry-run] [--recursive] [--ext=.jpg,...]\n", name)
	fmt.Fprintf(w, "           [--diameter=0.45] [--pixel-threshold=20] [--workers=N] [--database=PATH] [--no-db]\n")
	fmt.Fprintf(w, "           [--debug] [--logfile=PATH] [--quiet]\n")
	fmt.Fprintf(w, "  %s runs [--database=PATH] [--limit=N]\n", name)
	fmt.Fprintf(w, "\nParameters:\n")
	fmt.Fprintf(w, "  --folder          : Folder containing the images to cluster\n")
	fmt.Fprintf(w, "  --output          : Folder receiving Cluster_1, Cluster_2, ... (default: --folder)\n")
	fmt.Fprintf(w, "  --copy            : Copy images instead of moving them\n")
	fmt.Fprintf(w, "  --dry-run         : Only print the clusters\n")
	fmt.Fprintf(w, "  --recursive       : Also load images from subfolders\n")
	fmt.Fprintf(w, "  --ext             : Comma separated extensions to load (default: all supported)\n")
	fmt.Fprintf(w, "  --diameter        : Largest allowed cluster diameter (0.0-1.0, default: %.2f)\n", cluster.DefaultDiameterThreshold)
	fmt.Fprintf(w, "  --pixel-threshold : Gray level difference counted as a differing pixel (default: %d)\n", cluster.DefaultPixelThreshold)
	fmt.Fprintf(w, "  --workers         : Number of worker goroutines\n")
	fmt.Fprintf(w, "  --database        : Path to run catalog (default: %s)\n", GetDefaultDatabasePath())
	fmt.Fprintf(w, "  --no-db           : Do not record the run\n")
	fmt.Fprintf(w, "  --debug           : Enable debug mode (logs detailed information)\n")
	fmt.Fprintf(w, "  --logfile         : Specify custom log file path (default: shapecluster.log)\n")
	fmt.Fprintf(w, "  --limit           : Number of runs to list (default: 10)\n")
	fmt.Fprintf(w, "\nExamples:\n")
	fmt.Fprintf(w, "  %s cluster --folder=/path/to/shapes --debug\n", name)
	fmt.Fprintf(w, "  %s cluster --folder=/path/to/shapes --output=/tmp/sorted --copy --diameter=0.3\n", name)
	fmt.Fprintf(w, "  %s runs --limit=5\n", name)
}

// ParseThreshold validates a diameter threshold
func ParseThreshold(threshold float64) (float64, error) {
	if threshold < 0 || threshold > 1 {
		return cluster.DefaultDiameterThreshold, fmt.Errorf("invalid threshold value '%v', must be between 0.0 and 1.0", threshold)
	}
	return threshold, nil
}
