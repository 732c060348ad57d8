package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/TriAiAdmin/LLM-automation/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubNormalizer echoes the document id and panics on every call for ids
// listed in panicOn
type stubNormalizer struct {
	panicOn map[string]bool
	calls   atomic.Int32
	delay   time.Duration
}

func (s *stubNormalizer) NormalizeDocument(doc models.Document) models.NormalizedInvoice {
	s.calls.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.panicOn[doc.ID] {
		panic("bad page")
	}
	inv := models.NormalizedInvoice{DocumentID: doc.ID, Currency: "LKR", PageCount: len(doc.Pages)}
	if len(doc.Pages) == 0 {
		inv.Errors = []string{"invoice_no: missing"}
	}
	return inv
}

func (s *stubNormalizer) DefaultCurrency() string {
	return "LKR"
}

type MockResultStore struct {
	mock.Mock
}

func (m *MockResultStore) SaveRun(ctx context.Context, runID string, startedAt, finishedAt time.Time, invoices []models.NormalizedInvoice) error {
	args := m.Called(ctx, runID, startedAt, finishedAt, invoices)
	return args.Error(0)
}

func docs(n int) []models.Document {
	out := make([]models.Document, n)
	for i := range out {
		out[i] = models.Document{ID: fmt.Sprintf("doc-%02d.pdf", i), Pages: []models.RawFieldMap{{}}}
	}
	return out
}

func TestBatchRunner_PreservesOrder(t *testing.T) {
	for _, workers := range []int{1, 3, 16} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			runner := NewBatchRunner(&stubNormalizer{}, nil, workers, zap.NewNop())
			input := docs(20)

			res, err := runner.Run(context.Background(), input)
			require.NoError(t, err)
			require.Len(t, res.Invoices, len(input))
			for i, inv := range res.Invoices {
				assert.Equal(t, input[i].ID, inv.DocumentID)
			}
			assert.NotEmpty(t, res.RunID)
			assert.Zero(t, res.Flagged)
		})
	}
}

func TestBatchRunner_PanicIsolated(t *testing.T) {
	input := docs(3)
	runner := NewBatchRunner(&stubNormalizer{panicOn: map[string]bool{input[1].ID: true}}, nil, 2, zap.NewNop())

	res, err := runner.Run(context.Background(), input)
	require.NoError(t, err)

	assert.Empty(t, res.Invoices[0].Errors)
	assert.Empty(t, res.Invoices[2].Errors)
	assert.Equal(t, input[1].ID, res.Invoices[1].DocumentID)
	assert.Equal(t, []string{"normalization failed: bad page"}, res.Invoices[1].Errors)
	assert.Equal(t, "LKR", res.Invoices[1].Currency)
	assert.Equal(t, models.InvoiceTypeNonTax, res.Invoices[1].InvoiceType)
	assert.Equal(t, "0.00", res.Invoices[1].InvoiceAmount.String())
	assert.Equal(t, 1, res.Flagged)
}

func TestBatchRunner_Store(t *testing.T) {
	store := new(MockResultStore)
	store.On("SaveRun", mock.Anything, mock.AnythingOfType("string"), mock.Anything, mock.Anything,
		mock.MatchedBy(func(invs []models.NormalizedInvoice) bool { return len(invs) == 2 })).
		Return(nil).Once()

	res, err := NewBatchRunner(&stubNormalizer{}, store, 2, nil).Run(context.Background(), docs(2))
	require.NoError(t, err)
	assert.Len(t, res.Invoices, 2)
	store.AssertExpectations(t)
}

func TestBatchRunner_StoreFailure(t *testing.T) {
	store := new(MockResultStore)
	store.On("SaveRun", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("disk full"))

	_, err := NewBatchRunner(&stubNormalizer{}, store, 1, nil).Run(context.Background(), docs(1))
	assert.ErrorContains(t, err, "disk full")
}

func TestBatchRunner_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	norm := &stubNormalizer{}
	_, err := NewBatchRunner(norm, nil, 2, nil).Run(ctx, docs(5))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, norm.calls.Load())
}

func TestBatchRunner_EmptyBatch(t *testing.T) {
	res, err := NewBatchRunner(&stubNormalizer{}, nil, 0, nil).Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, res.Invoices)
}
