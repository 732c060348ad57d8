// Package export renders normalized invoices as a flat spreadsheet and as
// nested JSON.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/TriAiAdmin/LLM-automation/internal/models"
	"github.com/xuri/excelize/v2"
)

// Columns is the fixed column order of the flat rendering
var Columns = []string{
	"invoice_no",
	"invoice_date",
	"invoice_type",
	"sbu",
	"po_number",
	"validate_po_number",
	"delivery_note_number",
	"sub_total",
	"tax_amount",
	"invoice_amount",
	"currency",
	"vendor_code",
	"errors",
	"filename",
	"sbu_address",
	"sbu_company",
	"supplier_name",
	"supplier_telephone",
}

// Column positions of the amount cells, written as numbers
var amountColumns = map[int]bool{7: true, 8: true, 9: true}

// Row flattens an invoice in Columns order. Lists are joined with ", ",
// errors with "; " and missing values become empty cells.
func Row(inv models.NormalizedInvoice) []string {
	date := ""
	if inv.InvoiceDate != nil {
		date = inv.InvoiceDate.String()
	}

	statuses := make([]string, len(inv.POStatuses))
	for i, s := range inv.POStatuses {
		statuses[i] = string(s)
	}

	return []string{
		deref(inv.InvoiceNo),
		date,
		string(inv.InvoiceType),
		deref(inv.SBU),
		strings.Join(inv.PONumbers, ", "),
		strings.Join(statuses, ", "),
		deref(inv.DeliveryNoteNumber),
		inv.SubTotal.String(),
		inv.TaxAmount.String(),
		inv.InvoiceAmount.String(),
		inv.Currency,
		deref(inv.VendorCode),
		strings.Join(inv.Errors, "; "),
		inv.DocumentID,
		deref(inv.SBUAddress),
		deref(inv.SBUCompany),
		deref(inv.SupplierName),
		deref(inv.SupplierTelephone),
	}
}

// WriteXLSX writes one header row and one row per invoice to a new workbook
func WriteXLSX(path, sheet string, invoices []models.NormalizedInvoice) error {
	if sheet == "" {
		sheet = "Invoices"
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetList()[0], sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return fmt.Errorf("failed to create amount style: %w", err)
	}

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(Columns))
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, inv := range invoices {
		cells := rowCells(inv)
		start, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, start, &cells); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", inv.DocumentID, err)
		}
	}

	if len(invoices) > 0 {
		for col := range amountColumns {
			name, _ := excelize.ColumnNumberToName(col + 1)
			if err := f.SetCellStyle(sheet, name+"2", fmt.Sprintf("%s%d", name, len(invoices)+1), amountStyle); err != nil {
				return fmt.Errorf("failed to style amounts: %w", err)
			}
		}
	}

	if err := f.SetColWidth(sheet, "A", lastCol, 18); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	if err := ensureDir(path); err != nil {
		return err
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// rowCells is Row with amounts as numbers so spreadsheets can sum them
func rowCells(inv models.NormalizedInvoice) []any {
	row := Row(inv)
	amounts := []models.Amount{inv.SubTotal, inv.TaxAmount, inv.InvoiceAmount}

	cells := make([]any, len(row))
	next := 0
	for i, v := range row {
		if amountColumns[i] {
			cells[i] = amounts[next].Decimal().InexactFloat64()
			next++
			continue
		}
		cells[i] = v
	}
	return cells
}

// WriteJSON writes the invoices as an indented JSON array
func WriteJSON(w io.Writer, invoices []models.NormalizedInvoice) error {
	if invoices == nil {
		invoices = []models.NormalizedInvoice{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(invoices); err != nil {
		return fmt.Errorf("failed to encode invoices: %w", err)
	}
	return nil
}

// WriteJSONFile writes the invoices to path
func WriteJSONFile(path string, invoices []models.NormalizedInvoice) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteJSON(f, invoices); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func ensureDir(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
