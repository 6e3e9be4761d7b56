package database

import (
	"database/sql"
	"fmt"
	"time"

	"shapecluster/logging"
	"shapecluster/types"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// InitDatabase initializes and returns a database connection
func InitDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Create tables if they don't exist
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		folder TEXT NOT NULL,
		output_dir TEXT,
		diameter_threshold REAL,
		pixel_threshold INTEGER,
		image_count INTEGER,
		cluster_count INTEGER,
		merges INTEGER,
		halt_reason TEXT,
		duration_ms INTEGER,
		partial INTEGER DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS assignments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		path TEXT NOT NULL,
		destination TEXT,
		cluster_index INTEGER,
		is_clustroid INTEGER,
		UNIQUE(run_id, path)
	);
	CREATE INDEX IF NOT EXISTS idx_assignments_run ON assignments(run_id);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);`

	_, err = db.Exec(createTableSQL)
	if err != nil {
		db.Close()
		return nil, err
	}

	// Older catalogs were created before these columns existed
	for _, col := range []struct{ name, def string }{
		{"duration_ms", "INTEGER"},
		{"partial", "INTEGER DEFAULT 0"},
	} {
		var hasColumn bool
		err = db.QueryRow("SELECT COUNT(*) FROM pragma_table_info('runs') WHERE name=?", col.name).Scan(&hasColumn)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("error checking for %s column: %v", col.name, err)
		}
		if hasColumn {
			continue
		}
		_, err = db.Exec(fmt.Sprintf("ALTER TABLE runs ADD COLUMN %s %s;", col.name, col.def))
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("error adding %s column: %v", col.name, err)
		}
		logging.DebugLog("Added '%s' column to existing database schema", col.name)
	}

	return db, nil
}

// OpenDatabase opens an existing database connection
func OpenDatabase(dbPath string) (*sql.DB, error) {
	return sql.Open("sqlite3", dbPath)
}

// NewRunID returns a fresh identifier for a clustering run
func NewRunID() string {
	return uuid.NewString()
}

// StoreRun records a run and all of its assignments in one transaction.
// An empty run.ID is replaced by a new one; the stored ID is returned.
func StoreRun(db *sql.DB, run types.RunRecord, assignments []types.Assignment) (string, error) {
	if run.ID == "" {
		run.ID = NewRunID()
	}
	if run.StartedAt == "" {
		run.StartedAt = time.Now().Format(time.RFC3339)
	}

	tx, err := db.Begin()
	if err != nil {
		return "", fmt.Errorf("cannot start transaction for run %s: %v", run.ID, err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (
			id, started_at, folder, output_dir, diameter_threshold, pixel_threshold,
			image_count, cluster_count, merges, halt_reason, duration_ms, partial
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt,
		run.Folder,
		run.OutputDir,
		run.DiameterThreshold,
		run.PixelThreshold,
		run.ImageCount,
		run.ClusterCount,
		run.Merges,
		run.HaltReason,
		run.DurationMillis,
		run.Partial,
	)
	if err != nil {
		return "", fmt.Errorf("cannot insert run %s: %v", run.ID, err)
	}

	// Prepare statement to avoid SQL injection
	stmt, err := tx.Prepare(`
		INSERT INTO assignments (
			run_id, path, destination, cluster_index, is_clustroid
		) VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("cannot prepare statement for run %s: %v", run.ID, err)
	}
	defer stmt.Close()

	for _, a := range assignments {
		if _, err := stmt.Exec(run.ID, a.Path, a.Destination, a.ClusterIndex, a.IsClustroid); err != nil {
			return "", fmt.Errorf("cannot insert assignment for %s: %v", a.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("cannot commit run %s: %v", run.ID, err)
	}

	logging.DebugLog("Stored run %s with %d assignments", run.ID, len(assignments))
	return run.ID, nil
}

// ListRuns returns the most recent runs first. A limit <= 0 returns all runs.
func ListRuns(db *sql.DB, limit int) ([]types.RunRecord, error) {
	query := `SELECT id, started_at, folder, output_dir, diameter_threshold, pixel_threshold,
		image_count, cluster_count, merges, halt_reason, COALESCE(duration_ms, 0), COALESCE(partial, 0)
		FROM runs ORDER BY started_at DESC, id`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %v", err)
	}
	defer rows.Close()

	var runs []types.RunRecord
	for rows.Next() {
		var r types.RunRecord
		err := rows.Scan(
			&r.ID,
			&r.StartedAt,
			&r.Folder,
			&r.OutputDir,
			&r.DiameterThreshold,
			&r.PixelThreshold,
			&r.ImageCount,
			&r.ClusterCount,
			&r.Merges,
			&r.HaltReason,
			&r.DurationMillis,
			&r.Partial,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to read run: %v", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRunAssignments returns the assignments of one run ordered by cluster and path
func GetRunAssignments(db *sql.DB, runID string) ([]types.Assignment, error) {
	rows, err := db.Query(`SELECT path, destination, cluster_index, is_clustroid
		FROM assignments WHERE run_id = ? ORDER BY cluster_index, id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get assignments for run %s: %v", runID, err)
	}
	defer rows.Close()

	var assignments []types.Assignment
	for rows.Next() {
		var a types.Assignment
		if err := rows.Scan(&a.Path, &a.Destination, &a.ClusterIndex, &a.IsClustroid); err != nil {
			return nil, fmt.Errorf("failed to read assignment: %v", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// RunStats contains totals over every recorded run
type RunStats struct {
	TotalRuns     int
	TotalImages   int
	TotalClusters int
}

// GetRunStats retrieves statistics about recorded runs
func GetRunStats(db *sql.DB) (*RunStats, error) {
	var stats RunStats

	err := db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(image_count), 0), COALESCE(SUM(cluster_count), 0) FROM runs`).
		Scan(&stats.TotalRuns, &stats.TotalImages, &stats.TotalClusters)
	if err != nil {
		return nil, fmt.Errorf("failed to get run stats: %v", err)
	}

	return &stats, nil
}
