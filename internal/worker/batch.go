// Package worker runs the normalization engine over a batch of documents.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/TriAiAdmin/LLM-automation/internal/models"
	"github.com/TriAiAdmin/LLM-automation/pkg/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Normalizer turns one document into one record
type Normalizer interface {
	NormalizeDocument(doc models.Document) models.NormalizedInvoice
	DefaultCurrency() string
}

// ResultStore persists a finished run
type ResultStore interface {
	SaveRun(ctx context.Context, runID string, startedAt, finishedAt time.Time, invoices []models.NormalizedInvoice) error
}

// BatchResult holds the records of one run in input order
type BatchResult struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Invoices   []models.NormalizedInvoice
	Flagged    int
}

// BatchRunner normalizes documents on a bounded pool of goroutines
type BatchRunner struct {
	normalizer      Normalizer
	defaultCurrency string
	store           ResultStore
	workers         int
	now             func() time.Time
	logger          *zap.Logger
}

// NewBatchRunner creates a runner. store may be nil when results are not
// persisted.
func NewBatchRunner(normalizer Normalizer, store ResultStore, workers int, logger *zap.Logger) *BatchRunner {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchRunner{
		normalizer:      normalizer,
		defaultCurrency: normalizer.DefaultCurrency(),
		store:           store,
		workers:         workers,
		now:             time.Now,
		logger:          logger,
	}
}

// Run normalizes every document. A document that panics yields a record with
// defaults and a failure note; its siblings are unaffected. Only context
// cancellation or a store failure aborts the run.
func (r *BatchRunner) Run(ctx context.Context, docs []models.Document) (*BatchResult, error) {
	result := &BatchResult{
		RunID:     uuid.NewString(),
		StartedAt: r.now(),
		Invoices:  make([]models.NormalizedInvoice, len(docs)),
	}
	logger := utils.WithRun(r.logger, result.RunID)
	logger.Info("Batch started", zap.Int("documents", len(docs)), zap.Int("workers", r.workers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i := range docs {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result.Invoices[i] = r.normalizeOne(docs[i], logger)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch %s aborted: %w", result.RunID, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("batch %s aborted: %w", result.RunID, err)
	}

	result.FinishedAt = r.now()
	for _, inv := range result.Invoices {
		if inv.HasErrors() {
			result.Flagged++
		}
	}

	if r.store != nil {
		if err := r.store.SaveRun(ctx, result.RunID, result.StartedAt, result.FinishedAt, result.Invoices); err != nil {
			return nil, fmt.Errorf("failed to store batch %s: %w", result.RunID, err)
		}
	}

	logger.Info("Batch completed",
		zap.Int("documents", len(docs)),
		zap.Int("flagged", result.Flagged),
		zap.Duration("elapsed", result.FinishedAt.Sub(result.StartedAt)))
	return result, nil
}

func (r *BatchRunner) normalizeOne(doc models.Document, logger *zap.Logger) (inv models.NormalizedInvoice) {
	defer func() {
		if p := recover(); p != nil {
			logger.Error("Document normalization panicked",
				zap.String("document_id", doc.ID),
				zap.Any("panic", p))
			inv = models.NormalizedInvoice{
				DocumentID:  doc.ID,
				InvoiceType: models.InvoiceTypeNonTax,
				Currency:    r.defaultCurrency,
				PageCount:   len(doc.Pages),
				Errors:      []string{fmt.Sprintf("normalization failed: %v", p)},
			}
		}
	}()
	return r.normalizer.NormalizeDocument(doc)
}
