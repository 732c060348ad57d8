package normalizer

import (
	"fmt"
	"strings"
	"time"

	"github.com/TriAiAdmin/LLM-automation/internal/models"
	"go.uber.org/zap"
)

// Tables are the reference tables of a batch, loaded once and never mutated
type Tables struct {
	SBU       models.SBUTable
	Vendors   models.VendorMaster
	Countries []models.CountryCurrency
}

// Options configures an Engine
type Options struct {
	POPolicy        POPolicy
	DefaultCurrency string
	DialingCode     string // used for national telephone numbers
	VendorCutoff    int
	Clock           func() time.Time
}

// DefaultOptions match the historical business rules: 8 digit POs padded to
// 10, LKR, Sri Lankan phone numbers and a vendor cutoff of 75
func DefaultOptions() Options {
	return Options{
		POPolicy:        DefaultPOPolicy(),
		DefaultCurrency: "LKR",
		DialingCode:     "94",
		VendorCutoff:    DefaultVendorCutoff,
		Clock:           time.Now,
	}
}

// Engine normalizes raw page extractions into validated invoices. It holds
// only immutable state and is safe for concurrent use.
type Engine struct {
	opts     Options
	sbu      *SBURangeResolver
	po       *POCanonicalizer
	currency *CurrencyResolver
	vendors  *VendorResolver
	logger   *zap.Logger
}

// NewEngine validates every reference table up front. Any error here is a
// configuration error and must stop the batch before a document is read.
func NewEngine(tables Tables, opts Options, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if strings.TrimSpace(opts.DialingCode) == "" {
		return nil, fmt.Errorf("dialing code is required")
	}

	sbu, err := NewSBURangeResolver(tables.SBU)
	if err != nil {
		return nil, fmt.Errorf("failed to load sbu ranges: %w", err)
	}
	po, err := NewPOCanonicalizer(opts.POPolicy, sbu)
	if err != nil {
		return nil, err
	}
	cur, err := NewCurrencyResolver(tables.Countries, opts.DefaultCurrency)
	if err != nil {
		return nil, fmt.Errorf("failed to load country currencies: %w", err)
	}
	vendors, err := NewVendorResolver(tables.Vendors, opts.VendorCutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to load vendor master: %w", err)
	}

	logger.Info("Normalization engine ready",
		zap.Int("sbu_ranges", len(tables.SBU)),
		zap.Int("vendors", len(tables.Vendors)),
		zap.Int("countries", len(tables.Countries)),
		zap.Int("po_min_digits", opts.POPolicy.MinDigits),
		zap.String("po_short_mode", string(opts.POPolicy.ShortMode)),
		zap.String("default_currency", cur.DefaultCode()))

	return &Engine{
		opts:     opts,
		sbu:      sbu,
		po:       po,
		currency: cur,
		vendors:  vendors,
		logger:   logger,
	}, nil
}

// DefaultCurrency is the currency of a document with no currency signal
func (e *Engine) DefaultCurrency() string {
	return e.currency.DefaultCode()
}

// NormalizeDocument normalizes every page of a document and folds them into a
// single invoice. A panic while normalizing a page is confined to that page
// and recorded as an error.
func (e *Engine) NormalizeDocument(doc models.Document) models.NormalizedInvoice {
	ref := e.opts.Clock()

	results := make([]PageResult, 0, len(doc.Pages))
	for i, page := range doc.Pages {
		results = append(results, e.safePage(doc.ID, page, i+1, ref))
	}

	inv := AggregatePages(results, e.currency.DefaultCode())
	inv.DocumentID = doc.ID

	if inv.SupplierName != nil && inv.SupplierAddress != nil {
		m, ok := e.vendors.Match(*inv.SupplierName, *inv.SupplierAddress)
		if ok {
			inv.VendorCode = &m.VendorCode
		} else {
			inv.Errors = append(inv.Errors, fmt.Sprintf("vendor: no match for %q (name score %d, street score %d)",
				*inv.SupplierName, m.NameScore, m.StreetScore))
		}
	}

	e.logger.Debug("Document normalized",
		zap.String("document_id", doc.ID),
		zap.Int("pages", len(doc.Pages)),
		zap.Int("po_count", len(inv.PONumbers)),
		zap.String("invoice_type", string(inv.InvoiceType)),
		zap.Int("errors", len(inv.Errors)))

	return inv
}

func (e *Engine) safePage(docID string, raw models.RawFieldMap, page int, ref time.Time) (res PageResult) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Page normalization panicked",
				zap.String("document_id", docID),
				zap.Int("page", page),
				zap.Any("panic", r))
			res = PageResult{Page: page, Errors: []string{fmt.Sprintf("normalization failed: %v", r)}}
		}
	}()
	return e.NormalizePage(raw, page, ref)
}
