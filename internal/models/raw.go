package models

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/TriAiAdmin/LLM-automation/pkg/utils"
)

// Raw field names produced by the extraction step for every page
const (
	FieldInvoiceNo          = "invoice_no"
	FieldPONumber           = "po_number"
	FieldInvoiceDate        = "invoice_date"
	FieldCurrency           = "currency"
	FieldVATAmount          = "vat_amount"
	FieldSuspendedTaxAmount = "suspended_tax_amount"
	FieldSubTotal           = "sub_total"
	FieldInvoiceAmount      = "invoice_amount"
	FieldDeliveryNoteNumber = "delivery_note_number"
	FieldSupplierName       = "supplier_name"
	FieldSupplierAddress    = "supplier_address"
	FieldSupplierTelephone  = "supplier_telephone"
	FieldSBUAddress         = "sbu_address"
)

// RawFieldMap is the field map extracted from a single page.
// Values are whatever the extractor decoded from JSON: nil, string, number or
// (for po_number) a list. Accessors never modify the map; a nil map reads as
// "all fields missing".
type RawFieldMap map[string]any

// String returns the trimmed string value of a field, or nil when the field is
// absent, empty or a literal "null".
func (m RawFieldMap) String(field string) *string {
	v, ok := m[field]
	if !ok {
		return nil
	}
	return scalarString(v)
}

// Strings returns the field as a list of non-blank strings. A scalar becomes a
// one-element list; absent and blank values yield an empty list.
func (m RawFieldMap) Strings(field string) []string {
	v, ok := m[field]
	if !ok || v == nil {
		return nil
	}

	var out []string
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if s := scalarString(item); s != nil {
				out = append(out, *s)
			}
		}
	case []string:
		for _, item := range t {
			if s := scalarString(item); s != nil {
				out = append(out, *s)
			}
		}
	default:
		if s := scalarString(t); s != nil {
			out = append(out, *s)
		}
	}
	return out
}

// IsEmpty reports whether the page carries no usable field at all
func (m RawFieldMap) IsEmpty() bool {
	for k := range m {
		if m.String(k) != nil || len(m.Strings(k)) > 0 {
			return false
		}
	}
	return true
}

func scalarString(v any) *string {
	var s string
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		s = t
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		s = t.String()
	case int:
		s = strconv.Itoa(t)
	case int64:
		s = strconv.FormatInt(t, 10)
	case bool:
		return nil
	default:
		return nil
	}

	s = strings.TrimSpace(utils.SanitizeString(s))
	if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "none") {
		return nil
	}
	return &s
}
