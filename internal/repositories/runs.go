// package repositories provides the persistence layer for upload run history.
package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"spotbatch/internal/shared"
)

// Run records the outcome of one upload run. Only summary counts are stored;
// track data never lands in the database.
type Run struct {
	ID         string
	PlaylistID string
	Source     string // batch directory or file the run processed
	Total      int
	Added      int
	Failed     int
	StartedAt  time.Time
	FinishedAt time.Time
}

// RunRepository persists upload run summaries to SQLite.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a RunRepository on an open database.
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a run record. Assigns an ID when the record has none.
func (r *RunRepository) Create(run *Run) error {
	if run.ID == "" {
		run.ID = shared.GenerateID()
	}

	_, err := r.db.Exec(
		`INSERT INTO runs (id, playlist_id, source, total, added, failed, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.PlaylistID, run.Source, run.Total, run.Added, run.Failed,
		run.StartedAt.UTC(), run.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

// List returns the most recent runs, newest first, up to limit.
func (r *RunRepository) List(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(
		`SELECT id, playlist_id, source, total, added, failed, started_at, finished_at
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(
			&run.ID, &run.PlaylistID, &run.Source, &run.Total,
			&run.Added, &run.Failed, &run.StartedAt, &run.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}
