package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore implements TraceStore on a local SQLite database.
type SQLiteStore struct {
	conn *sql.DB
}

// NewSQLiteStore opens (creating if necessary) the trace database under
// dataDir and applies pending migrations.
func NewSQLiteStore(dataDir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "bdaycal.db")
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate trace database: %w", err)
	}

	return &SQLiteStore{conn: conn}, nil
}

// RecordRun stores the run and its entries atomically and returns the run ID.
func (s *SQLiteStore) RecordRun(ctx context.Context, run Run) (int64, error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (source, started_at, completed_at) VALUES (?, ?, ?)`,
		run.Source,
		run.StartedAt.UTC().Format(time.RFC3339),
		run.CompletedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}

	for _, entry := range run.Entries {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_entries (run_id, source_uid, generated_uid, name, month, day, year, year_known)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			runID,
			entry.SourceUID,
			entry.GeneratedUID,
			entry.Name,
			entry.Month,
			entry.Day,
			entry.Year,
			boolToInt(entry.YearKnown),
		); err != nil {
			return 0, fmt.Errorf("insert run entry %q: %w", entry.SourceUID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit run: %w", err)
	}
	return runID, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.conn.QueryContext(ctx,
		`SELECT r.id, r.source, r.started_at, r.completed_at,
		        (SELECT COUNT(*) FROM run_entries e WHERE e.run_id = r.id)
		 FROM runs r
		 ORDER BY r.id DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		var summary RunSummary
		var startedAt, completedAt string
		if err := rows.Scan(&summary.ID, &summary.Source, &startedAt, &completedAt, &summary.EntryCount); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if summary.StartedAt, err = time.Parse(time.RFC3339, startedAt); err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		if summary.CompletedAt, err = time.Parse(time.RFC3339, completedAt); err != nil {
			return nil, fmt.Errorf("parse completed_at: %w", err)
		}
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

// GetRunEntries returns the entries recorded for the run, in insertion order.
func (s *SQLiteStore) GetRunEntries(ctx context.Context, runID int64) ([]RunEntry, error) {
	var exists int
	err := s.conn.QueryRowContext(ctx, `SELECT 1 FROM runs WHERE id = ?`, runID).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %d: %w", runID, ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("check run: %w", err)
	}

	rows, err := s.conn.QueryContext(ctx,
		`SELECT source_uid, generated_uid, name, month, day, year, year_known
		 FROM run_entries
		 WHERE run_id = ?
		 ORDER BY id ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("list run entries: %w", err)
	}
	defer rows.Close()

	var entries []RunEntry
	for rows.Next() {
		var entry RunEntry
		var yearKnown int
		if err := rows.Scan(&entry.SourceUID, &entry.GeneratedUID, &entry.Name, &entry.Month, &entry.Day, &entry.Year, &yearKnown); err != nil {
			return nil, fmt.Errorf("scan run entry: %w", err)
		}
		entry.YearKnown = yearKnown != 0
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// Close closes the underlying connection.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
