package models

// InvoiceType is derived from the tax amounts, never taken from the source text
type InvoiceType string

// Invoice type constants
const (
	InvoiceTypeTax    InvoiceType = "Tax Invoice"
	InvoiceTypeNonTax InvoiceType = "Non-Tax Invoice"
	InvoiceTypeSVAT   InvoiceType = "SVAT Invoice"
)

// NormalizedInvoice is the validated record produced for one source document.
// Field order follows the downstream column order.
type NormalizedInvoice struct {
	InvoiceNo          *string        `json:"invoice_no"`
	InvoiceDate        *Date          `json:"invoice_date"`
	InvoiceType        InvoiceType    `json:"invoice_type"`
	SBU                *string        `json:"sbu"`
	PONumbers          []string       `json:"po_number"`
	POStatuses         []POStatus     `json:"validate_po_number"`
	DeliveryNoteNumber *string        `json:"delivery_note_number"`
	SubTotal           Amount         `json:"sub_total"`
	TaxAmount          Amount         `json:"tax_amount"`
	InvoiceAmount      Amount         `json:"invoice_amount"`
	Currency           string         `json:"currency"`
	VendorCode         *string        `json:"vendor_code"`
	Errors             []string       `json:"errors"`
	DocumentID         string         `json:"filename"`
	VATAmount          Amount         `json:"vat_amount"`
	SuspendedTaxAmount Amount         `json:"suspended_tax_amount"`
	SBUCompany         *string        `json:"sbu_company,omitempty"`
	SBUCompanyAddress  *string        `json:"sbu_company_address,omitempty"`
	SBUAddress         *string        `json:"sbu_address,omitempty"`
	SupplierName       *string        `json:"supplier_name,omitempty"`
	SupplierAddress    *string        `json:"supplier_address,omitempty"`
	SupplierTelephone  *string        `json:"supplier_telephone,omitempty"`
	PODetails          []PODescriptor `json:"po_details"`
	PageCount          int            `json:"page_count"`
}

// HasErrors reports whether any anomaly was recorded
func (n *NormalizedInvoice) HasErrors() bool {
	return len(n.Errors) > 0
}

// Document is the input unit of a batch: the raw field maps of every page of
// one source file, in page order
type Document struct {
	ID    string        `json:"document_id"`
	Pages []RawFieldMap `json:"pages"`
}
