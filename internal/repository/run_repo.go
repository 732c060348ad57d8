package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Run summarizes one batch invocation
type Run struct {
	ID            string
	StartedAt     time.Time
	FinishedAt    *time.Time
	DocumentCount int
	FlaggedCount  int
}

// RunRepository handles batch run bookkeeping
type RunRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *sql.DB, logger *zap.Logger) *RunRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RunRepository{db: db, logger: logger}
}

// Start records a new run
func (r *RunRepository) Start(ctx context.Context, tx *sql.Tx, runID string, startedAt time.Time) error {
	_, err := conn(r.db, tx).ExecContext(ctx,
		`INSERT INTO runs (run_id, started_at) VALUES (?, ?)`,
		runID, startedAt.UTC())
	if err != nil {
		r.logger.Error("Failed to start run", zap.String("run_id", runID), zap.Error(err))
		return fmt.Errorf("failed to start run: %w", err)
	}
	return nil
}

// Finish stamps the run with its totals. flagged counts documents with at
// least one recorded anomaly.
func (r *RunRepository) Finish(ctx context.Context, tx *sql.Tx, runID string, finishedAt time.Time, documents, flagged int) error {
	res, err := conn(r.db, tx).ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, document_count = ?, flagged_count = ? WHERE run_id = ?`,
		finishedAt.UTC(), documents, flagged, runID)
	if err != nil {
		r.logger.Error("Failed to finish run", zap.String("run_id", runID), zap.Error(err))
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run %s not found", runID)
	}
	return nil
}

// Get returns a run, or nil when it does not exist
func (r *RunRepository) Get(ctx context.Context, runID string) (*Run, error) {
	var run Run
	var finished sql.NullTime

	err := r.db.QueryRowContext(ctx,
		`SELECT run_id, started_at, finished_at, document_count, flagged_count FROM runs WHERE run_id = ?`,
		runID,
	).Scan(&run.ID, &run.StartedAt, &finished, &run.DocumentCount, &run.FlaggedCount)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get run", zap.String("run_id", runID), zap.Error(err))
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	if finished.Valid {
		run.FinishedAt = &finished.Time
	}
	return &run, nil
}
