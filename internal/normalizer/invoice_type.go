package normalizer

import "github.com/TriAiAdmin/LLM-automation/internal/models"

// ClassifyInvoiceType labels an invoice from its tax amounts. The first
// matching rule wins: a suspended tax amount makes it SVAT, otherwise a VAT
// amount makes it a tax invoice, otherwise it is non-tax. Keyword evidence is
// weighed upstream by the extractor and is not re-checked here. The sub-total
// and invoice amount do not take part in the decision.
func ClassifyInvoiceType(vat, svat, _, _ models.Amount) models.InvoiceType {
	switch {
	case svat.IsPositive():
		return models.InvoiceTypeSVAT
	case vat.IsPositive():
		return models.InvoiceTypeTax
	default:
		return models.InvoiceTypeNonTax
	}
}

// TaxAmountFor returns the tax figure reported for an invoice type: the
// suspended tax for SVAT, VAT for tax invoices, zero otherwise
func TaxAmountFor(t models.InvoiceType, vat, svat models.Amount) models.Amount {
	switch t {
	case models.InvoiceTypeSVAT:
		return svat
	case models.InvoiceTypeTax:
		return vat
	default:
		return models.ZeroAmount
	}
}
