package normalizer

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/TriAiAdmin/LLM-automation/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEngine_NormalizeDocument(t *testing.T) {
	e := newTestEngine(t)

	doc := models.Document{
		ID: "invoice-001.pdf",
		Pages: []models.RawFieldMap{
			{
				models.FieldInvoiceNo:          "INV-2024-118",
				models.FieldInvoiceDate:        "24/Oct/2024",
				models.FieldPONumber:           []any{"71OOOOOO01", "2341234562(1748)"},
				models.FieldSubTotal:           "1,000.00",
				models.FieldVATAmount:          "180.00",
				models.FieldInvoiceAmount:      "1.180.00",
				models.FieldSupplierName:       "ABC TRADERS (PVT) LTD",
				models.FieldSupplierAddress:    "45, Kandy Rd, Kadawatha",
				models.FieldSupplierTelephone:  "011 234 5678",
				models.FieldDeliveryNoteNumber: "DN-77",
			},
			{
				models.FieldPONumber:      "0450000000",
				models.FieldInvoiceAmount: nil,
			},
		},
	}

	inv := e.NormalizeDocument(doc)

	assert.Equal(t, "invoice-001.pdf", inv.DocumentID)
	assert.Equal(t, "INV-2024-118", *inv.InvoiceNo)
	assert.Equal(t, "24/10/2024", inv.InvoiceDate.String())
	assert.Equal(t, models.InvoiceTypeTax, inv.InvoiceType)
	assert.Equal(t, "1000.00", inv.SubTotal.String())
	assert.Equal(t, "180.00", inv.TaxAmount.String())
	assert.Equal(t, "1180.00", inv.InvoiceAmount.String())
	assert.Equal(t, "LKR", inv.Currency)
	assert.Equal(t, "+94112345678", *inv.SupplierTelephone)
	assert.Equal(t, "DN-77", *inv.DeliveryNoteNumber)

	assert.Equal(t, []string{"7100000001", "2341234562", "0450000000"}, inv.PONumbers)
	assert.Equal(t, []models.POStatus{models.POStatusCorrect, models.POStatusWrongRange, models.POStatusCorrect}, inv.POStatuses)
	require.NotNil(t, inv.SBU)
	assert.Equal(t, "C400", *inv.SBU)

	require.NotNil(t, inv.VendorCode)
	assert.Equal(t, "V002", *inv.VendorCode)

	assert.Equal(t, []string{`page 1: po_number "2341234562(1748)": wrong_range`}, inv.Errors)
}

func TestEngine_AbsentPagesUseDefaults(t *testing.T) {
	e := newTestEngine(t)

	inv := e.NormalizeDocument(models.Document{ID: "blank.pdf", Pages: []models.RawFieldMap{nil}})

	assert.Equal(t, "0.00", inv.InvoiceAmount.String())
	assert.Equal(t, "LKR", inv.Currency)
	assert.Equal(t, models.InvoiceTypeNonTax, inv.InvoiceType)
	assert.Nil(t, inv.VendorCode)
	assert.True(t, inv.HasErrors())
}

func TestEngine_FieldAnomaliesAreRecorded(t *testing.T) {
	e := newTestEngine(t)

	inv := e.NormalizeDocument(models.Document{ID: "bad.pdf", Pages: []models.RawFieldMap{{
		models.FieldInvoiceNo:         "X1",
		models.FieldInvoiceDate:       "sometime soon",
		models.FieldPONumber:          "12345",
		models.FieldInvoiceAmount:     "twelve",
		models.FieldCurrency:          "doubloons",
		models.FieldSupplierName:      "Nobody Known",
		models.FieldSupplierAddress:   "Nowhere",
		models.FieldSupplierTelephone: "ext 12",
	}}})

	assert.Equal(t, "0.00", inv.InvoiceAmount.String())
	assert.Nil(t, inv.InvoiceDate)
	assert.Nil(t, inv.SBU)
	assert.Nil(t, inv.VendorCode)
	assert.Equal(t, "ext 12", *inv.SupplierTelephone)

	joined, _ := json.Marshal(inv.Errors)
	for _, want := range []string{"invoice_date", "po_number", "invoice_amount", "currency", "supplier_telephone", "vendor"} {
		assert.Contains(t, string(joined), want)
	}
}

func TestEngine_MalformedAmountOverwritesEarlierPage(t *testing.T) {
	e := newTestEngine(t)

	inv := e.NormalizeDocument(models.Document{ID: "two.pdf", Pages: []models.RawFieldMap{
		{models.FieldInvoiceNo: "INV-2", models.FieldInvoiceAmount: "100.00"},
		{models.FieldInvoiceAmount: "1O0.0O"},
	}})

	assert.Equal(t, "0.00", inv.InvoiceAmount.String())
	assert.Contains(t, inv.Errors, `page 2: invoice_amount: malformed amount: "1O0.0O"`)
	for _, msg := range inv.Errors {
		assert.NotContains(t, msg, "invoice_amount: missing")
	}
}

func TestEngine_MalformedAmountIsNotMissing(t *testing.T) {
	e := newTestEngine(t)

	inv := e.NormalizeDocument(models.Document{ID: "one.pdf", Pages: []models.RawFieldMap{{
		models.FieldInvoiceAmount: "twelve",
	}}})

	assert.Equal(t, "0.00", inv.InvoiceAmount.String())
	assert.Contains(t, inv.Errors, `invoice_amount: malformed amount: "twelve"`)
	assert.NotContains(t, inv.Errors, "invoice_amount: missing")

	inv = e.NormalizeDocument(models.Document{ID: "none.pdf", Pages: []models.RawFieldMap{{
		models.FieldInvoiceNo: "INV-3",
	}}})
	assert.Contains(t, inv.Errors, "invoice_amount: missing")
}

func TestEngine_Idempotent(t *testing.T) {
	e := newTestEngine(t)
	doc := models.Document{ID: "a.pdf", Pages: []models.RawFieldMap{{
		models.FieldInvoiceNo:     "A-1",
		models.FieldInvoiceDate:   "03/04/2024",
		models.FieldPONumber:      "9200000000",
		models.FieldInvoiceAmount: "2145.046.40",
	}}}

	first := e.NormalizeDocument(doc)
	second := e.NormalizeDocument(doc)
	assert.Equal(t, first, second)
	assert.Equal(t, "9200000000", doc.Pages[0][models.FieldPONumber], "raw map must not change")
	assert.Equal(t, []string{"7200000000"}, first.PONumbers)
}

func TestEngine_ConcurrentUse(t *testing.T) {
	e := newTestEngine(t)
	doc := models.Document{ID: "c.pdf", Pages: []models.RawFieldMap{{
		models.FieldPONumber:        "7100000001",
		models.FieldSupplierName:    "Lanka Packaging Solutions",
		models.FieldSupplierAddress: "88 Negombo Road, Wattala",
	}}}
	want := e.NormalizeDocument(doc)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, e.NormalizeDocument(doc))
		}()
	}
	wg.Wait()
}

func TestNewEngine_ConfigurationErrors(t *testing.T) {
	good := Tables{SBU: sbuTable("C800"), Vendors: vendorMaster(), Countries: countryTable()}

	tests := []struct {
		name   string
		tables Tables
		opts   func(*Options)
		err    error
	}{
		{"empty sbu table", Tables{Vendors: good.Vendors, Countries: good.Countries}, nil, models.ErrEmptySBUTable},
		{"empty vendor master", Tables{SBU: good.SBU, Countries: good.Countries}, nil, models.ErrEmptyVendorMaster},
		{"bad country currency", Tables{SBU: good.SBU, Vendors: good.Vendors, Countries: []models.CountryCurrency{{Country: "X", Currency: "XXXX"}}}, nil, models.ErrInvalidCountryCode},
		{"bad po policy", good, func(o *Options) { o.POPolicy.MinDigits = 12 }, ErrInvalidPOPolicy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			if tt.opts != nil {
				tt.opts(&opts)
			}
			_, err := NewEngine(tt.tables, opts, zap.NewNop())
			assert.ErrorIs(t, err, tt.err)
		})
	}
}
