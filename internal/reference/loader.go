// Package reference loads the business reference tables used by the
// normalization engine: SBU purchase-order ranges, the vendor master and the
// country to currency map. Tables come from .csv or .xlsx files whose header
// row names the columns; column order is free.
package reference

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/TriAiAdmin/LLM-automation/internal/models"
	"github.com/xuri/excelize/v2"
)

// Loader errors
var (
	ErrUnsupportedFormat = errors.New("unsupported reference file format")
	ErrMissingColumn     = errors.New("required column missing")
	ErrBadValue          = errors.New("bad reference value")
)

// Accepted header spellings, after normalizeHeader
var (
	sbuColumns = map[string][]string{
		"code":    {"sbu", "sbu_code", "code"},
		"company": {"company", "company_name", "name"},
		"address": {"address", "company_address", "sbu_address"},
		"min":     {"min", "min_po", "po_min", "from", "start"},
		"max":     {"max", "max_po", "po_max", "to", "end"},
	}
	vendorColumns = map[string][]string{
		"name":   {"name", "name_of_vendor", "vendor_name", "vendor", "supplier_name"},
		"street": {"street", "address", "vendor_address", "supplier_address"},
		"code":   {"vendor_code", "code", "vendor_no"},
	}
	countryColumns = map[string][]string{
		"country":  {"country", "country_name"},
		"currency": {"currency", "currency_code"},
		"dialing":  {"dialing_code", "calling_code", "phone_code", "country_code"},
	}
)

// LoadSBUTable reads and validates the SBU range table
func LoadSBUTable(path string) (models.SBUTable, error) {
	rows, cols, err := readTable(path, sbuColumns, "code", "min", "max")
	if err != nil {
		return nil, err
	}

	var table models.SBUTable
	for i, row := range rows {
		line := i + 2
		minPO, err := parsePO(cell(row, cols["min"]))
		if err != nil {
			return nil, fmt.Errorf("%s row %d min: %w", path, line, err)
		}
		maxPO, err := parsePO(cell(row, cols["max"]))
		if err != nil {
			return nil, fmt.Errorf("%s row %d max: %w", path, line, err)
		}
		table = append(table, models.SBURange{
			Code:        cell(row, cols["code"]),
			CompanyName: cell(row, cols["company"]),
			Address:     cell(row, cols["address"]),
			MinPO:       minPO,
			MaxPO:       maxPO,
		})
	}

	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// LoadVendorMaster reads and validates the vendor master
func LoadVendorMaster(path string) (models.VendorMaster, error) {
	rows, cols, err := readTable(path, vendorColumns, "name", "code")
	if err != nil {
		return nil, err
	}

	var master models.VendorMaster
	for _, row := range rows {
		master = append(master, models.VendorRecord{
			Name:       cell(row, cols["name"]),
			Street:     cell(row, cols["street"]),
			VendorCode: cell(row, cols["code"]),
		})
	}

	if err := master.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return master, nil
}

// LoadCountryCurrency reads the country to currency map. An empty path
// returns DefaultCountryCurrencies.
func LoadCountryCurrency(path string) ([]models.CountryCurrency, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultCountryCurrencies(), nil
	}

	rows, cols, err := readTable(path, countryColumns, "country", "currency")
	if err != nil {
		return nil, err
	}

	var out []models.CountryCurrency
	for i, row := range rows {
		cc := models.CountryCurrency{
			Country:     cell(row, cols["country"]),
			Currency:    strings.ToUpper(cell(row, cols["currency"])),
			DialingCode: strings.TrimLeft(cell(row, cols["dialing"]), "+"),
		}
		if cc.Country == "" || len(cc.Currency) != 3 {
			return nil, fmt.Errorf("%w: %s row %d", models.ErrInvalidCountryCode, path, i+2)
		}
		out = append(out, cc)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s has no rows", models.ErrInvalidCountryCode, path)
	}
	return out, nil
}

// readTable returns the data rows of path and the index of every known
// column, or -1 when an optional column is absent
func readTable(path string, aliases map[string][]string, required ...string) ([][]string, map[string]int, error) {
	records, err := readRecords(path)
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%w: %s has no header row", ErrMissingColumn, path)
	}

	header := map[string]int{}
	for i, h := range records[0] {
		if key := normalizeHeader(h); key != "" {
			if _, dup := header[key]; !dup {
				header[key] = i
			}
		}
	}

	cols := map[string]int{}
	for field, names := range aliases {
		cols[field] = -1
		for _, n := range names {
			if idx, ok := header[n]; ok {
				cols[field] = idx
				break
			}
		}
	}
	for _, field := range required {
		if cols[field] < 0 {
			return nil, nil, fmt.Errorf("%w: %s needs one of %v", ErrMissingColumn, path, aliases[field])
		}
	}

	var rows [][]string
	for _, r := range records[1:] {
		if blankRow(r) {
			continue
		}
		rows = append(rows, r)
	}
	return rows, cols, nil
}

func readRecords(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		return readCSV(f)
	case ".xlsx", ".xlsm":
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()

		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%s has no sheets", path)
		}
		rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}
	return records, nil
}

// normalizeHeader maps "Name of vendor" and "name_of_vendor" to the same key
func normalizeHeader(h string) string {
	var b strings.Builder
	sep := false
	for _, r := range strings.ToLower(strings.TrimSpace(h)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if sep && b.Len() > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
			sep = false
			continue
		}
		sep = true
	}
	return b.String()
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parsePO accepts zero-padded digit strings and the float rendering some
// spreadsheets give large integers
func parsePO(s string) (uint64, error) {
	s = strings.ReplaceAll(strings.ReplaceAll(s, ",", ""), " ", "")
	if s == "" {
		return 0, fmt.Errorf("%w: empty purchase order bound", ErrBadValue)
	}
	if v, err := strconv.ParseUint(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || f != math.Trunc(f) || f >= 1e19 {
		return 0, fmt.Errorf("%w: purchase order bound %q", ErrBadValue, s)
	}
	return uint64(f), nil
}
