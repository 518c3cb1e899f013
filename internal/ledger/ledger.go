// Package ledger keeps the history of swagfill runs in a SQLite database
// under the repository state directory.
package ledger

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"swagfill/internal/errors"
)

// File actions recorded per run.
const (
	ActionWritten   = "written"
	ActionPreviewed = "previewed"
	ActionFailed    = "failed"
)

// Run is one recorded run.
type Run struct {
	ID         string    `json:"id" yaml:"id"`
	StartedAt  time.Time `json:"startedAt" yaml:"startedAt"`
	FinishedAt time.Time `json:"finishedAt" yaml:"finishedAt"`
	DryRun     bool      `json:"dryRun" yaml:"dryRun"`
	Operations int       `json:"operationsUpdated" yaml:"operationsUpdated"`
	DTOs       int       `json:"dtosUpdated" yaml:"dtosUpdated"`
	Written    int       `json:"filesWritten" yaml:"filesWritten"`
	Failed     int       `json:"filesFailed" yaml:"filesFailed"`
	Unresolved int       `json:"unresolved" yaml:"unresolved"`
	// Backup is the archive holding the originals, empty when none was made.
	Backup string `json:"backup,omitempty" yaml:"backup,omitempty"`
}

// FileRecord is one file touched by a run.
type FileRecord struct {
	Path   string `json:"path" yaml:"path"`
	Action string `json:"action" yaml:"action"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Store provides persistence for run history.
type Store struct {
	conn   *sql.DB
	logger *slog.Logger
	dbPath string
}

// Open opens or creates the ledger database at dbPath.
func Open(dbPath string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, errors.New(errors.LedgerFailed, "failed to create state directory", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.New(errors.LedgerFailed, "failed to open ledger database", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, errors.New(errors.LedgerFailed, "failed to set pragma", err)
		}
	}

	s := &Store{conn: conn, logger: logger, dbPath: dbPath}
	if err := s.initializeSchema(); err != nil {
		_ = conn.Close()
		return nil, errors.New(errors.LedgerFailed, "failed to initialize ledger schema", err)
	}
	return s, nil
}

func (s *Store) initializeSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			dry_run INTEGER NOT NULL DEFAULT 0,
			operations INTEGER NOT NULL DEFAULT 0,
			dtos INTEGER NOT NULL DEFAULT 0,
			written INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0,
			unresolved INTEGER NOT NULL DEFAULT 0,
			backup TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC);

		CREATE TABLE IF NOT EXISTS run_files (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			path TEXT NOT NULL,
			action TEXT NOT NULL,
			error TEXT,
			PRIMARY KEY (run_id, path)
		);

		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);
		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// Record stores a finished run and its files in one transaction.
func (s *Store) Record(run *Run, files []FileRecord) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return errors.New(errors.LedgerFailed, "failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(`
		INSERT INTO runs (id, started_at, finished_at, dry_run, operations, dtos, written, failed, unresolved, backup)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
		run.DryRun,
		run.Operations,
		run.DTOs,
		run.Written,
		run.Failed,
		run.Unresolved,
		nullString(run.Backup),
	)
	if err != nil {
		return errors.New(errors.LedgerFailed, fmt.Sprintf("failed to record run %s", run.ID), err)
	}

	for _, f := range files {
		if _, err := tx.Exec(`
			INSERT OR REPLACE INTO run_files (run_id, path, action, error) VALUES (?, ?, ?, ?)
		`, run.ID, f.Path, f.Action, nullString(f.Error)); err != nil {
			return errors.New(errors.LedgerFailed, "failed to record file", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.New(errors.LedgerFailed, "failed to commit run", err)
	}
	s.logger.Debug("Recorded run", "runId", run.ID, "files", len(files))
	return nil
}

const runColumns = `id, started_at, finished_at, dry_run, operations, dtos, written, failed, unresolved, backup`

// List returns the most recent runs, newest first.
func (s *Store) List(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.conn.Query(`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.New(errors.LedgerFailed, "failed to list runs", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return runs, nil
}

// Get returns the run with the given ID. A unique ID prefix is accepted.
// It returns nil when no run matches.
func (s *Store) Get(id string) (*Run, error) {
	rows, err := s.conn.Query(`SELECT `+runColumns+` FROM runs WHERE id = ? OR id LIKE ? ORDER BY (id = ?) DESC LIMIT 2`,
		id, id+"%", id)
	if err != nil {
		return nil, errors.New(errors.LedgerFailed, "failed to get run", err)
	}
	defer func() { _ = rows.Close() }()

	var found []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		if run.ID == id {
			return run, nil
		}
		found = append(found, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(found) {
	case 0:
		return nil, nil
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("run ID prefix %q is ambiguous", id)
	}
}

// Files returns the files recorded for a run, ordered by path.
func (s *Store) Files(runID string) ([]FileRecord, error) {
	rows, err := s.conn.Query(`SELECT path, action, error FROM run_files WHERE run_id = ? ORDER BY path`, runID)
	if err != nil {
		return nil, errors.New(errors.LedgerFailed, "failed to list run files", err)
	}
	defer func() { _ = rows.Close() }()

	var files []FileRecord
	for rows.Next() {
		var f FileRecord
		var errMsg sql.NullString
		if err := rows.Scan(&f.Path, &f.Action, &errMsg); err != nil {
			return nil, fmt.Errorf("failed to scan run file: %w", err)
		}
		f.Error = errMsg.String
		files = append(files, f)
	}
	return files, rows.Err()
}

func scanRun(rows *sql.Rows) (*Run, error) {
	var run Run
	var startedAt, finishedAt string
	var backup sql.NullString

	err := rows.Scan(
		&run.ID,
		&startedAt,
		&finishedAt,
		&run.DryRun,
		&run.Operations,
		&run.DTOs,
		&run.Written,
		&run.Failed,
		&run.Unresolved,
		&backup,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
	run.FinishedAt, _ = time.Parse(time.RFC3339Nano, finishedAt)
	run.Backup = backup.String
	return &run, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
