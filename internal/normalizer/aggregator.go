package normalizer

import (
	"fmt"

	"github.com/TriAiAdmin/LLM-automation/internal/models"
)

// AggregatePages folds page results, in page order, into one invoice.
//
// PO descriptors and errors are concatenated. Every scalar takes the last
// non-nil page value. The business unit comes from the last page that
// resolved one. Amounts still missing after the fold default to 0.00 and the
// currency to defaultCurrency. The invoice type is classified once from the
// folded amounts. Errors of multi-page documents carry their page number.
func AggregatePages(pages []PageResult, defaultCurrency string) models.NormalizedInvoice {
	inv := models.NormalizedInvoice{PageCount: len(pages)}

	var (
		sub, vat, svat, total *models.Amount
		currency              *string
		sbu                   *models.SBURange
		errs                  issues
	)

	for _, p := range pages {
		lastString(&inv.InvoiceNo, p.InvoiceNo)
		lastString(&inv.DeliveryNoteNumber, p.DeliveryNoteNumber)
		lastString(&inv.SupplierName, p.SupplierName)
		lastString(&inv.SupplierAddress, p.SupplierAddress)
		lastString(&inv.SupplierTelephone, p.SupplierTelephone)
		lastString(&inv.SBUAddress, p.SBUAddress)
		lastString(&currency, p.Currency)
		if p.InvoiceDate != nil {
			inv.InvoiceDate = p.InvoiceDate
		}
		if p.SBU != nil {
			sbu = p.SBU
		}
		lastAmount(&sub, p.SubTotal)
		lastAmount(&vat, p.VATAmount)
		lastAmount(&svat, p.SuspendedTaxAmount)
		lastAmount(&total, p.InvoiceAmount)

		for _, d := range p.POs {
			inv.PODetails = append(inv.PODetails, d)
			inv.PONumbers = append(inv.PONumbers, d.Cleaned)
			inv.POStatuses = append(inv.POStatuses, d.Status)
		}

		for _, e := range p.Errors {
			if len(pages) > 1 {
				e = fmt.Sprintf("page %d: %s", p.Page, e)
			}
			errs = append(errs, e)
		}
	}

	inv.SubTotal = amountOrZero(sub)
	inv.VATAmount = amountOrZero(vat)
	inv.SuspendedTaxAmount = amountOrZero(svat)
	inv.InvoiceAmount = amountOrZero(total)

	inv.InvoiceType = ClassifyInvoiceType(inv.VATAmount, inv.SuspendedTaxAmount, inv.SubTotal, inv.InvoiceAmount)
	inv.TaxAmount = TaxAmountFor(inv.InvoiceType, inv.VATAmount, inv.SuspendedTaxAmount)

	inv.Currency = defaultCurrency
	if currency != nil {
		inv.Currency = *currency
	}

	if sbu != nil {
		code, company, address := sbu.Code, sbu.CompanyName, sbu.Address
		inv.SBU = &code
		if company != "" {
			inv.SBUCompany = &company
		}
		if address != "" {
			inv.SBUCompanyAddress = &address
		}
	}

	if inv.InvoiceNo == nil {
		errs.add("invoice_no: missing")
	}
	if inv.InvoiceDate == nil {
		errs.add("invoice_date: missing")
	}
	if len(inv.PODetails) == 0 {
		errs.add("po_number: missing")
	}
	if total == nil {
		errs.add("invoice_amount: missing")
	}

	if len(errs) > 0 {
		inv.Errors = errs
	}
	return inv
}

func lastString(dst **string, v *string) {
	if v != nil {
		*dst = v
	}
}

func lastAmount(dst **models.Amount, v *models.Amount) {
	if v != nil {
		*dst = v
	}
}

func amountOrZero(a *models.Amount) models.Amount {
	if a == nil {
		return models.ZeroAmount
	}
	return *a
}
