package normalizer

import (
	"time"

	"github.com/TriAiAdmin/LLM-automation/internal/models"
)

// PageResult holds the normalized fields of one page. Nil means the field was
// absent on the page, so it never overwrites an earlier page. A malformed
// amount is 0.00, not nil.
type PageResult struct {
	Page               int
	InvoiceNo          *string
	InvoiceDate        *models.Date
	POs                []models.PODescriptor
	SBU                *models.SBURange
	DeliveryNoteNumber *string
	SubTotal           *models.Amount
	VATAmount          *models.Amount
	SuspendedTaxAmount *models.Amount
	InvoiceAmount      *models.Amount
	Currency           *string
	SupplierName       *string
	SupplierAddress    *string
	SupplierTelephone  *string
	SBUAddress         *string
	Errors             []string
}

// NormalizePage normalizes the raw field map of page number page against the
// processing date ref. A nil map yields an empty result. Absent fields are not
// anomalies at page level; AggregatePages reports what is still missing once
// every page has been folded.
func (e *Engine) NormalizePage(raw models.RawFieldMap, page int, ref time.Time) PageResult {
	res := PageResult{Page: page}
	var errs issues

	res.InvoiceNo = raw.String(models.FieldInvoiceNo)
	res.DeliveryNoteNumber = raw.String(models.FieldDeliveryNoteNumber)
	res.SupplierName = raw.String(models.FieldSupplierName)
	res.SupplierAddress = raw.String(models.FieldSupplierAddress)
	res.SBUAddress = raw.String(models.FieldSBUAddress)

	if s := raw.String(models.FieldInvoiceDate); s != nil {
		d, err := ParseDate(s, ref)
		if err != nil {
			errs.add("invoice_date: %v", err)
		}
		res.InvoiceDate = d
	}

	res.POs = e.po.Extract(raw.Strings(models.FieldPONumber))
	for _, d := range res.POs {
		switch {
		case d.Status != models.POStatusCorrect:
			errs.add("po_number %q: %s", d.Raw, d.Status)
		case d.Corrected:
			errs.add("po_number %q: leading digit corrected to %s", d.Raw, d.Cleaned)
		}
		if rng, ok := e.sbu.RangeFor(d); ok {
			res.SBU = &rng
		}
	}

	res.SubTotal = pageAmount(raw, models.FieldSubTotal, &errs)
	res.VATAmount = pageAmount(raw, models.FieldVATAmount, &errs)
	res.SuspendedTaxAmount = pageAmount(raw, models.FieldSuspendedTaxAmount, &errs)
	res.InvoiceAmount = pageAmount(raw, models.FieldInvoiceAmount, &errs)

	currencyText := raw.String(models.FieldCurrency)
	phone := raw.String(models.FieldSupplierTelephone)
	resolved := e.currency.Resolve(currencyText, res.SupplierAddress, phone)
	if resolved.Source != CurrencySourceDefault {
		res.Currency = &resolved.Code
	} else if currencyText != nil {
		errs.add("currency %q not recognised", *currencyText)
	}

	if phone != nil {
		formatted, err := FormatPhone(*phone, e.opts.DialingCode)
		if err != nil {
			errs.add("supplier_telephone: %v", err)
		}
		res.SupplierTelephone = &formatted
	}

	res.Errors = errs
	return res
}

func pageAmount(raw models.RawFieldMap, field string, errs *issues) *models.Amount {
	s := raw.String(field)
	if s == nil {
		return nil
	}
	a, err := ParseAmount(s)
	if err != nil {
		errs.add("%s: %v", field, err)
	}
	return &a
}
