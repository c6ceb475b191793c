// Package catalog keeps a SQLite ledger of corrected files so interrupted
// batch runs can resume without re-correcting finished files.
package catalog

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Status values recorded per file.
const (
	StatusCorrected = "corrected"
	StatusRejected  = "rejected" // format error, no output produced
)

// Catalog wraps the ledger database. One Catalog serves one batch run.
type Catalog struct {
	db    *sql.DB
	runID string
}

// Record is one file's ledger row.
type Record struct {
	RunID      string
	Source     string
	Output     string
	Status     string
	Warnings   int
	Detail     string
	FinishedAt time.Time
}

// Open opens or creates the ledger at dbPath and registers a fresh run.
func Open(dbPath string) (*Catalog, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping catalog database: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TIMESTAMP NOT NULL
		);
		CREATE TABLE IF NOT EXISTS files (
			run_id TEXT NOT NULL REFERENCES runs(id),
			source TEXT NOT NULL,
			output TEXT,
			status TEXT NOT NULL,
			warnings INTEGER NOT NULL DEFAULT 0,
			detail TEXT,
			finished_at TIMESTAMP NOT NULL,
			PRIMARY KEY (run_id, source)
		);
		CREATE INDEX IF NOT EXISTS idx_files_source ON files(source, status);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create catalog schema: %w", err)
	}

	c := &Catalog{db: db, runID: uuid.New().String()}
	if _, err := db.Exec(`INSERT INTO runs (id, started_at) VALUES (?, ?)`, c.runID, time.Now().UTC()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to register run: %w", err)
	}
	return c, nil
}

// RunID returns the identifier of the current run.
func (c *Catalog) RunID() string { return c.runID }

// AlreadyCorrected reports whether any previous run corrected this source
// file successfully.
func (c *Catalog) AlreadyCorrected(source string) (bool, error) {
	var n int
	err := c.db.QueryRow(
		`SELECT COUNT(*) FROM files WHERE source = ? AND status = ?`,
		source, StatusCorrected,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to query catalog: %w", err)
	}
	return n > 0, nil
}

// Add records one finished file for the current run.
func (c *Catalog) Add(rec Record) error {
	_, err := c.db.Exec(
		`INSERT OR REPLACE INTO files (run_id, source, output, status, warnings, detail, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.runID, rec.Source, rec.Output, rec.Status, rec.Warnings, rec.Detail, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record file: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (c *Catalog) Close() error {
	return c.db.Close()
}
