package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"shapecluster/cluster"
	"shapecluster/database"
	"shapecluster/logging"
	"shapecluster/placement"
	"shapecluster/report"
	"shapecluster/scanner"
	"shapecluster/signalhandler"
	"shapecluster/types"
	"shapecluster/utils"
)

func main() {
	// Flush the debug log if the run is interrupted
	signalhandler.SetupHandler(logging.CloseLogger)

	// Set the optimal number of CPUs to use
	runtime.GOMAXPROCS(signalhandler.GetOptimalProcs())

	command, args, err := utils.SplitCommand(os.Args[1:])
	if err != nil {
		utils.PrintUsage(os.Stderr)
		os.Exit(1)
	}

	switch command {
	case "cluster":
		err = handleClusterCommand(args)
	case "runs":
		err = handleRunsCommand(args)
	case "help":
		utils.PrintUsage(os.Stdout)
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		utils.PrintUsage(os.Stderr)
		os.Exit(1)
	}

	if err != nil {
		logging.LogError("%v", err)
		logging.CloseLogger()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, utils.ErrUsage) {
			utils.PrintUsage(os.Stderr)
		}
		os.Exit(1)
	}
}

func handleClusterCommand(args []string) error {
	cfg, err := utils.ParseClusterArgs(args, signalhandler.GetOptimalProcs())
	if err != nil {
		return err
	}
	if err := utils.ValidateClusterConfig(cfg); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Setup debug logging if enabled
	if cfg.DebugMode {
		if err := logging.SetupLogger(cfg.LogPath); err != nil {
			fmt.Printf("Warning: Failed to setup logging: %v\n", err)
		} else {
			fmt.Printf("Debug mode enabled. Logging to: %s\n", cfg.LogPath)
		}
		defer logging.CloseLogger()
	}

	startTime := time.Now()

	var db *sql.DB
	record := !cfg.NoDatabase && !cfg.DryRun
	if record {
		db, err = initDatabaseWithRetry(cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer db.Close()
	}

	samples, err := scanner.LoadFolder(scanner.ScanOptions{
		FolderPath:    cfg.FolderPath,
		Recursive:     cfg.Recursive,
		Extensions:    cfg.Extensions,
		SkipDirPrefix: placement.DefaultDirPrefix,
		DebugMode:     cfg.DebugMode,
		Quiet:         cfg.Quiet,
		MaxWorkers:    cfg.Workers,
	})
	if err != nil {
		return fmt.Errorf("error loading images: %w", err)
	}
	if len(samples) == 0 {
		return fmt.Errorf("no images found in %s", cfg.FolderPath)
	}

	if !cfg.Quiet {
		fmt.Printf("Clustering %d images (diameter threshold %.2f, pixel threshold %d)...\n",
			len(samples), cfg.DiameterThreshold, cfg.PixelThreshold)
	}

	opts := cluster.DefaultOptions()
	opts.DiameterThreshold = cfg.DiameterThreshold
	opts.PixelThreshold = uint8(cfg.PixelThreshold)
	opts.Workers = cfg.Workers
	opts.DebugMode = cfg.DebugMode
	if !cfg.Quiet {
		opts.OnMerge = func(ev cluster.MergeEvent) {
			if ev.Accepted {
				fmt.Printf("  merged %d + %d -> %d (size %d, diameter %.4f)\n", ev.A, ev.B, ev.Merged, ev.Size, ev.Diameter)
			}
		}
	}

	result, err := cluster.Run(samples, opts)
	if err != nil {
		return fmt.Errorf("clustering failed: %w", err)
	}

	mode := placement.Move
	if cfg.Copy {
		mode = placement.Copy
	}
	assignments, err := placement.Place(result.Clusters, placement.Options{
		OutputDir: cfg.OutputDir,
		Mode:      mode,
		DryRun:    cfg.DryRun,
		DebugMode: cfg.DebugMode,
	})
	placeErr := err
	if placeErr != nil && len(assignments) == 0 {
		return fmt.Errorf("error placing images: %w", placeErr)
	}

	if cfg.DryRun || placeErr != nil {
		printAssignments(assignments)
	}

	duration := time.Since(startTime)
	if record {
		run := types.RunRecord{
			StartedAt:         startTime.Format(time.RFC3339),
			Folder:            cfg.FolderPath,
			OutputDir:         cfg.OutputDir,
			DiameterThreshold: cfg.DiameterThreshold,
			PixelThreshold:    cfg.PixelThreshold,
			ImageCount:        len(samples),
			ClusterCount:      len(result.Clusters),
			Merges:            result.Merges,
			HaltReason:        result.Halt.String(),
			Partial:           placeErr != nil,
			DurationMillis:    duration.Milliseconds(),
		}
		id, err := database.StoreRun(db, run, assignments)
		if err != nil {
			// Files already placed stay where they are, so a catalog failure is not fatal
			log.Printf("Warning: could not record run: %v", err)
		} else if !cfg.Quiet {
			fmt.Printf("Run %s recorded in %s\n", id, cfg.DatabasePath)
		}
	}

	if placeErr != nil {
		return fmt.Errorf("error placing images after %d of %d files: %w", len(assignments), len(samples), placeErr)
	}

	if !cfg.Quiet {
		summary := report.Summarize(result)
		summary.Duration = duration
		fmt.Println(report.Render(summary))
	}
	logging.LogInfo("Clustered %d images into %d clusters in %v", len(samples), len(result.Clusters), duration)
	return nil
}

func handleRunsCommand(args []string) error {
	cfg, err := utils.ParseRunsArgs(args)
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfg.DatabasePath); os.IsNotExist(err) {
		return fmt.Errorf("database does not exist: %s. Run the cluster command first", cfg.DatabasePath)
	}

	db, err := database.OpenDatabase(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("error opening database: %w", err)
	}
	defer db.Close()

	runs, err := database.ListRuns(db, cfg.Limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	for i, r := range runs {
		fmt.Printf("%d. %s  %s\n", i+1, r.StartedAt, r.ID)
		fmt.Printf("   Folder: %s -> %s\n", r.Folder, r.OutputDir)
		fmt.Printf("   %d images, %d clusters, %d merges, halted: %s (%dms)\n",
			r.ImageCount, r.ClusterCount, r.Merges, r.HaltReason, r.DurationMillis)
		fmt.Printf("   Thresholds: diameter %.2f, pixel %d\n", r.DiameterThreshold, r.PixelThreshold)
	}

	stats, err := database.GetRunStats(db)
	if err == nil && stats != nil {
		fmt.Printf("\nSummary:\n")
		fmt.Printf("- Total runs: %d\n", stats.TotalRuns)
		fmt.Printf("- Total images clustered: %d\n", stats.TotalImages)
		fmt.Printf("- Total clusters: %d\n", stats.TotalClusters)
	}
	return nil
}

// initDatabaseWithRetry opens the run catalog, retrying while it is locked
func initDatabaseWithRetry(dbPath string) (*sql.DB, error) {
	const maxRetries = 3
	var err error
	for i := 0; i < maxRetries; i++ {
		var db *sql.DB
		db, err = database.InitDatabase(dbPath)
		if err == nil {
			return db, nil
		}

		if i < maxRetries-1 {
			log.Printf("Error initializing database (attempt %d/%d): %v - retrying...",
				i+1, maxRetries, err)
			time.Sleep(time.Second * time.Duration(i+1))
		}
	}
	return nil, fmt.Errorf("error initializing database after %d attempts: %w", maxRetries, err)
}

func printAssignments(assignments []types.Assignment) {
	current := 0
	for _, a := range assignments {
		if a.ClusterIndex != current {
			current = a.ClusterIndex
			fmt.Printf("Cluster %d:\n", current)
		}
		marker := " "
		if a.IsClustroid {
			marker = "*"
		}
		fmt.Printf("  %s %s -> %s\n", marker, a.Path, a.Destination)
	}
}
