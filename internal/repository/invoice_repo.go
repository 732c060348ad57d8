package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/TriAiAdmin/LLM-automation/internal/models"
	"go.uber.org/zap"
)

// InvoiceRepository handles normalized invoice records
type InvoiceRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *sql.DB, logger *zap.Logger) *InvoiceRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceRepository{db: db, logger: logger}
}

// Save stores one record under runID. The full record is kept as JSON next to
// the columns used for lookups. Saving the same document twice in one run
// replaces the earlier row.
func (r *InvoiceRepository) Save(ctx context.Context, tx *sql.Tx, runID string, inv models.NormalizedInvoice) error {
	record, err := json.Marshal(inv)
	if err != nil {
		return fmt.Errorf("failed to encode invoice %s: %w", inv.DocumentID, err)
	}

	var date sql.NullString
	if inv.InvoiceDate != nil {
		date = sql.NullString{String: inv.InvoiceDate.Format("2006-01-02"), Valid: true}
	}

	query := `
		INSERT INTO invoices (
			run_id, document_id, invoice_no, invoice_date, invoice_type, sbu,
			currency, invoice_amount, vendor_code, error_count, record_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id, document_id) DO UPDATE SET
			invoice_no = excluded.invoice_no,
			invoice_date = excluded.invoice_date,
			invoice_type = excluded.invoice_type,
			sbu = excluded.sbu,
			currency = excluded.currency,
			invoice_amount = excluded.invoice_amount,
			vendor_code = excluded.vendor_code,
			error_count = excluded.error_count,
			record_json = excluded.record_json
	`

	_, err = conn(r.db, tx).ExecContext(ctx, query,
		runID,
		inv.DocumentID,
		nullString(inv.InvoiceNo),
		date,
		string(inv.InvoiceType),
		nullString(inv.SBU),
		inv.Currency,
		inv.InvoiceAmount.String(),
		nullString(inv.VendorCode),
		len(inv.Errors),
		string(record),
	)
	if err != nil {
		r.logger.Error("Failed to save invoice",
			zap.String("document_id", inv.DocumentID),
			zap.Error(err))
		return fmt.Errorf("failed to save invoice: %w", err)
	}
	return nil
}

// ListByRun returns the records of a run in insertion order
func (r *InvoiceRepository) ListByRun(ctx context.Context, runID string) ([]models.NormalizedInvoice, error) {
	return r.list(ctx, `SELECT record_json FROM invoices WHERE run_id = ? ORDER BY id`, runID)
}

// FindByInvoiceNo returns every stored record carrying invoiceNo, oldest first
func (r *InvoiceRepository) FindByInvoiceNo(ctx context.Context, invoiceNo string) ([]models.NormalizedInvoice, error) {
	return r.list(ctx, `SELECT record_json FROM invoices WHERE invoice_no = ? ORDER BY id`, invoiceNo)
}

func (r *InvoiceRepository) list(ctx context.Context, query string, arg string) ([]models.NormalizedInvoice, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		r.logger.Error("Failed to query invoices", zap.Error(err))
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer rows.Close()

	var invoices []models.NormalizedInvoice
	for rows.Next() {
		var record string
		if err := rows.Scan(&record); err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		var inv models.NormalizedInvoice
		if err := json.Unmarshal([]byte(record), &inv); err != nil {
			return nil, fmt.Errorf("failed to decode stored invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invoices: %w", err)
	}
	return invoices, nil
}
