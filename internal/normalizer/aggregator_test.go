package normalizer

import (
	"testing"

	"github.com/TriAiAdmin/LLM-automation/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregatePages_NullNeverOverwrites(t *testing.T) {
	pages := []PageResult{
		{
			Page:          1,
			InvoiceNo:     strPtr("INV-1"),
			InvoiceAmount: amountPtr("100"),
			POs:           []models.PODescriptor{correctPO("7100000001")},
		},
		{
			Page: 2,
			POs:  []models.PODescriptor{correctPO("7100000002")},
		},
	}

	inv := AggregatePages(pages, "LKR")

	assert.Equal(t, "100.00", inv.InvoiceAmount.String())
	require.NotNil(t, inv.InvoiceNo)
	assert.Equal(t, "INV-1", *inv.InvoiceNo)
	assert.Equal(t, []string{"7100000001", "7100000002"}, inv.PONumbers)
	assert.Equal(t, []models.POStatus{models.POStatusCorrect, models.POStatusCorrect}, inv.POStatuses)
	assert.Equal(t, 2, inv.PageCount)
}

func TestAggregatePages_LastNonNullWins(t *testing.T) {
	c100 := sbuTable("C800")[0]
	c400 := sbuTable("C800")[3]

	pages := []PageResult{
		{Page: 1, InvoiceNo: strPtr("INV-1"), SubTotal: amountPtr("10"), Currency: strPtr("USD"), SBU: &c100},
		{Page: 2, InvoiceNo: strPtr("INV-1A"), SubTotal: amountPtr("20"), SBU: &c400},
		{Page: 3, SubTotal: nil},
	}

	inv := AggregatePages(pages, "LKR")

	assert.Equal(t, "INV-1A", *inv.InvoiceNo)
	assert.Equal(t, "20.00", inv.SubTotal.String())
	assert.Equal(t, "USD", inv.Currency)
	require.NotNil(t, inv.SBU)
	assert.Equal(t, "C400", *inv.SBU)
	assert.Equal(t, "CBL Plenty Foods", *inv.SBUCompany)
}

func TestAggregatePages_TypeFromFoldedAmounts(t *testing.T) {
	pages := []PageResult{
		{Page: 1, VATAmount: amountPtr("18"), InvoiceAmount: amountPtr("118")},
		{Page: 2, SuspendedTaxAmount: amountPtr("50")},
	}

	inv := AggregatePages(pages, "LKR")

	assert.Equal(t, models.InvoiceTypeSVAT, inv.InvoiceType)
	assert.Equal(t, "50.00", inv.TaxAmount.String())
	assert.Equal(t, "18.00", inv.VATAmount.String())
}

func TestAggregatePages_Errors(t *testing.T) {
	pages := []PageResult{
		{Page: 1, InvoiceNo: strPtr("A"), InvoiceAmount: amountPtr("1"), POs: []models.PODescriptor{correctPO("7100000001")}, Errors: []string{"sub_total: bad", "sub_total: bad"}},
		{Page: 2, Errors: []string{"vat_amount: bad"}},
	}

	inv := AggregatePages(pages, "LKR")

	assert.Equal(t, []string{
		"page 1: sub_total: bad",
		"page 1: sub_total: bad",
		"page 2: vat_amount: bad",
		"invoice_date: missing",
	}, inv.Errors)
}

func TestAggregatePages_Empty(t *testing.T) {
	inv := AggregatePages(nil, "LKR")

	assert.Nil(t, inv.InvoiceNo)
	assert.Nil(t, inv.InvoiceDate)
	assert.Nil(t, inv.SBU)
	assert.Empty(t, inv.PONumbers)
	assert.Equal(t, "LKR", inv.Currency)
	assert.Equal(t, models.InvoiceTypeNonTax, inv.InvoiceType)
	assert.Equal(t, "0.00", inv.InvoiceAmount.String())
	assert.Equal(t, []string{
		"invoice_no: missing",
		"invoice_date: missing",
		"po_number: missing",
		"invoice_amount: missing",
	}, inv.Errors)
}

func TestAggregatePages_SinglePageErrorsUnprefixed(t *testing.T) {
	date := models.NewDate(2024, 10, 24)
	pages := []PageResult{{
		Page:          1,
		InvoiceNo:     strPtr("A"),
		InvoiceDate:   &date,
		InvoiceAmount: amountPtr("1"),
		POs:           []models.PODescriptor{{Raw: "12", Cleaned: "12", Status: models.POStatusWrongFormat}},
		Errors:        []string{`po_number "12": wrong_format`},
	}}

	inv := AggregatePages(pages, "LKR")
	assert.Equal(t, []string{`po_number "12": wrong_format`}, inv.Errors)
	assert.Nil(t, inv.SBU)
}
