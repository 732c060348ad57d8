package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/TriAiAdmin/LLM-automation/internal/models"
	"github.com/TriAiAdmin/LLM-automation/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	logger := zap.NewNop()
	db, err := database.New(database.Config{Path: filepath.Join(t.TempDir(), "results.db")}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, Migrate(context.Background(), db, logger))
	return db
}

func sampleInvoice(docID string) models.NormalizedInvoice {
	no, sbu := "INV-001", "C100"
	date := models.NewDate(2024, 10, 24)
	return models.NormalizedInvoice{
		InvoiceNo:     &no,
		InvoiceDate:   &date,
		InvoiceType:   models.InvoiceTypeTax,
		SBU:           &sbu,
		PONumbers:     []string{"7100000001"},
		POStatuses:    []models.POStatus{models.POStatusCorrect},
		SubTotal:      models.MustAmount("1000"),
		TaxAmount:     models.MustAmount("180"),
		InvoiceAmount: models.MustAmount("1180"),
		VATAmount:     models.MustAmount("180"),
		Currency:      "LKR",
		DocumentID:    docID,
		PODetails: []models.PODescriptor{
			{Raw: "7100000001", Cleaned: "7100000001", DigitsOnly: "7100000001", Status: models.POStatusCorrect, SBU: "C100"},
		},
		PageCount: 1,
	}
}

func TestMigrate_Twice(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(context.Background(), db, zap.NewNop()))
}

func TestInvoiceRepository_SaveAndList(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	runs := NewRunRepository(db.DB, nil)
	invoices := NewInvoiceRepository(db.DB, nil)

	require.NoError(t, runs.Start(ctx, nil, "run-1", time.Now()))
	require.NoError(t, runs.Start(ctx, nil, "run-2", time.Now()))

	first := sampleInvoice("a.pdf")
	second := sampleInvoice("b.pdf")
	second.InvoiceNo = nil
	second.Errors = []string{"invoice_no: missing"}

	require.NoError(t, db.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := invoices.Save(ctx, tx, "run-1", first); err != nil {
			return err
		}
		return invoices.Save(ctx, tx, "run-1", second)
	}))
	require.NoError(t, invoices.Save(ctx, nil, "run-2", first))

	got, err := invoices.ListByRun(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a.pdf", got[0].DocumentID)
	assert.Equal(t, first.PODetails, got[0].PODetails)
	assert.True(t, got[0].InvoiceAmount.Equal(models.MustAmount("1180")))
	assert.Equal(t, "24/10/2024", got[0].InvoiceDate.String())
	assert.Nil(t, got[1].InvoiceNo)
	assert.Equal(t, []string{"invoice_no: missing"}, got[1].Errors)

	byNo, err := invoices.FindByInvoiceNo(ctx, "INV-001")
	require.NoError(t, err)
	assert.Len(t, byNo, 2)

	empty, err := invoices.ListByRun(ctx, "nope")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestInvoiceRepository_SaveReplacesSameDocument(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	invoices := NewInvoiceRepository(db.DB, nil)
	require.NoError(t, NewRunRepository(db.DB, nil).Start(ctx, nil, "run-1", time.Now()))

	inv := sampleInvoice("a.pdf")
	require.NoError(t, invoices.Save(ctx, nil, "run-1", inv))
	inv.Currency = "USD"
	require.NoError(t, invoices.Save(ctx, nil, "run-1", inv))

	got, err := invoices.ListByRun(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "USD", got[0].Currency)
}

func TestInvoiceRepository_UnknownRunRejected(t *testing.T) {
	db := openTestDB(t)
	err := NewInvoiceRepository(db.DB, nil).Save(context.Background(), nil, "missing", sampleInvoice("a.pdf"))
	assert.Error(t, err)
}

func TestRunRepository(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	runs := NewRunRepository(db.DB, zap.NewNop())

	started := time.Date(2024, 11, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, runs.Start(ctx, nil, "run-1", started))

	run, err := runs.Get(ctx, "run-1")
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.True(t, run.StartedAt.Equal(started))
	assert.Nil(t, run.FinishedAt)

	require.NoError(t, runs.Finish(ctx, nil, "run-1", started.Add(time.Minute), 12, 3))
	run, err = runs.Get(ctx, "run-1")
	require.NoError(t, err)
	require.NotNil(t, run.FinishedAt)
	assert.Equal(t, 12, run.DocumentCount)
	assert.Equal(t, 3, run.FlaggedCount)

	assert.Error(t, runs.Finish(ctx, nil, "run-x", started, 0, 0))

	missing, err := runs.Get(ctx, "run-x")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestResultStore_SaveRun(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	store := NewResultStore(db, nil)

	flagged := sampleInvoice("b.pdf")
	flagged.Errors = []string{"po_number: missing"}

	started := time.Date(2024, 11, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveRun(ctx, "run-1", started, started.Add(time.Second),
		[]models.NormalizedInvoice{sampleInvoice("a.pdf"), flagged}))

	run, err := store.Runs().Get(ctx, "run-1")
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, 2, run.DocumentCount)
	assert.Equal(t, 1, run.FlaggedCount)

	got, err := store.Invoices().ListByRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	// a second run with the same id rolls back as a whole
	err = store.SaveRun(ctx, "run-1", started, started, []models.NormalizedInvoice{sampleInvoice("c.pdf")})
	require.Error(t, err)
	got, err = store.Invoices().ListByRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
