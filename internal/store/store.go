// Package store persists harmonization runs so that generated UIDs remain
// traceable back to the legacy records they replaced.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrRunNotFound is returned when a requested run ID does not exist.
var ErrRunNotFound = errors.New("run not found")

// Run captures one completed harmonization run.
type Run struct {
	Source      string
	StartedAt   time.Time
	CompletedAt time.Time
	Entries     []RunEntry
}

// RunEntry maps one source record to its harmonized output.
type RunEntry struct {
	SourceUID    string
	GeneratedUID string
	Name         string
	Month        int
	Day          int
	Year         int
	YearKnown    bool
}

// RunSummary is the lightweight view returned by listings.
type RunSummary struct {
	ID          int64
	Source      string
	StartedAt   time.Time
	CompletedAt time.Time
	EntryCount  int
}

// TraceStore is the storage contract for run traceability.
type TraceStore interface {
	RecordRun(ctx context.Context, run Run) (int64, error)
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)
	// GetRunEntries returns ErrRunNotFound when no run with the ID exists.
	GetRunEntries(ctx context.Context, runID int64) ([]RunEntry, error)
	Ping(ctx context.Context) error
	Close() error
}
