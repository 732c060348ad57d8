package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/TriAiAdmin/LLM-automation/internal/models"
	"github.com/TriAiAdmin/LLM-automation/pkg/database"
	"go.uber.org/zap"
)

// ResultStore writes a whole batch run atomically
type ResultStore struct {
	db       *database.DB
	runs     *RunRepository
	invoices *InvoiceRepository
	logger   *zap.Logger
}

// NewResultStore creates a store over an already migrated database
func NewResultStore(db *database.DB, logger *zap.Logger) *ResultStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResultStore{
		db:       db,
		runs:     NewRunRepository(db.DB, logger),
		invoices: NewInvoiceRepository(db.DB, logger),
		logger:   logger,
	}
}

// SaveRun records the run and every invoice in one transaction
func (s *ResultStore) SaveRun(ctx context.Context, runID string, startedAt, finishedAt time.Time, invoices []models.NormalizedInvoice) error {
	flagged := 0
	for _, inv := range invoices {
		if inv.HasErrors() {
			flagged++
		}
	}

	err := s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := s.runs.Start(ctx, tx, runID, startedAt); err != nil {
			return err
		}
		for _, inv := range invoices {
			if err := s.invoices.Save(ctx, tx, runID, inv); err != nil {
				return err
			}
		}
		return s.runs.Finish(ctx, tx, runID, finishedAt, len(invoices), flagged)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Batch run stored",
		zap.String("run_id", runID),
		zap.Int("documents", len(invoices)),
		zap.Int("flagged", flagged))
	return nil
}

// Invoices exposes the invoice repository for lookups
func (s *ResultStore) Invoices() *InvoiceRepository {
	return s.invoices
}

// Runs exposes the run repository for lookups
func (s *ResultStore) Runs() *RunRepository {
	return s.runs
}
