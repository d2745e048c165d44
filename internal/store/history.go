package store

// history.go persists a summary row per batch run so the console can
// show who ran what and with which result. Only the aggregate counters
// and the operator's reason are kept; staged records are transient by
// design and never stored.

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lapidary/console/internal/catalog"
)

// RunKind distinguishes batch run types in the history table.
type RunKind string

const (
	RunImport     RunKind = "import"
	RunBulkUpdate RunKind = "bulk-update"
)

// BatchRun is one recorded batch operation.
type BatchRun struct {
	ID         uuid.UUID `json:"id"`
	Kind       RunKind   `json:"kind"`
	Attempted  int       `json:"attempted"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
	Duplicates int       `json:"duplicateCount"`
	Reason     string    `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// RecordRun stores the summary of a completed batch operation. reason is
// empty for imports.
func (s *Store) RecordRun(ctx context.Context, kind RunKind, out catalog.BatchOutcome, reason string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.db.Exec(ctx, `
		INSERT INTO batch_runs (id, kind, attempted, succeeded, failed, duplicates, reason, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,now())`,
		id, string(kind), out.Attempted, out.Succeeded, out.Failed, out.Duplicates,
		textOrNull(reason),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("record run: %w", err)
	}
	return id, nil
}

// RecentRuns returns the latest batch runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]BatchRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, kind, attempted, succeeded, failed, duplicates, reason, created_at
		FROM batch_runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []BatchRun
	for rows.Next() {
		var run BatchRun
		var reason *string
		if err := rows.Scan(&run.ID, &run.Kind, &run.Attempted, &run.Succeeded,
			&run.Failed, &run.Duplicates, &reason, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Reason = deref(reason)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
