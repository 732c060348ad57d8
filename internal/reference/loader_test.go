package reference

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/TriAiAdmin/LLM-automation/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeXLSX(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cellName, &row))
	}

	path := filepath.Join(t.TempDir(), "table.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoadSBUTable_CSV(t *testing.T) {
	path := writeFile(t, "sbu.csv", "\ufeffSBU,Company Name,Address,Min PO,Max PO\n"+
		"C100,Ceylon Biscuit Ltd,\"Makumbura, Pannipitiya\",7100000000,7999999999\n"+
		"\n"+
		"C200,CBL Food International,Ranala,0041000000,0051999999\n")

	table, err := LoadSBUTable(path)
	require.NoError(t, err)
	require.Len(t, table, 2)

	assert.Equal(t, "C100", table[0].Code)
	assert.Equal(t, "Makumbura, Pannipitiya", table[0].Address)
	assert.Equal(t, uint64(41000000), table[1].MinPO)
	assert.Equal(t, uint64(51999999), table[1].MaxPO)
}

func TestLoadSBUTable_XLSX(t *testing.T) {
	path := writeXLSX(t, [][]any{
		{"min", "max", "sbu"},
		{"1810000001", "1869999999", "C700"},
		{7100000000, 7999999999, "C100"},
	})

	table, err := LoadSBUTable(path)
	require.NoError(t, err)
	require.Len(t, table, 2)
	assert.Equal(t, "C700", table[0].Code)
	assert.Equal(t, uint64(1810000001), table[0].MinPO)
	assert.Equal(t, uint64(7999999999), table[1].MaxPO)
}

func TestLoadSBUTable_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		err     error
	}{
		{"missing max column", "a.csv", "sbu,min\nC100,1\n", ErrMissingColumn},
		{"bad bound", "b.csv", "sbu,min,max\nC100,abc,10\n", ErrBadValue},
		{"overlap", "c.csv", "sbu,min,max\nC100,1,10\nC200,5,20\n", models.ErrOverlappingRanges},
		{"inverted", "d.csv", "sbu,min,max\nC100,10,1\n", models.ErrInvalidRange},
		{"no rows", "e.csv", "sbu,min,max\n", models.ErrEmptySBUTable},
		{"unsupported", "f.txt", "sbu,min,max\n", ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSBUTable(writeFile(t, tt.file, tt.content))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestLoadVendorMaster(t *testing.T) {
	path := writeFile(t, "vendors.csv", "Name of vendor,Street,Vendor Code\n"+
		"ABC Traders (Pvt) Ltd,\"No 12, Galle Road\",V001\n"+
		"Lanka Packaging,,V003\n")

	master, err := LoadVendorMaster(path)
	require.NoError(t, err)
	assert.Equal(t, models.VendorMaster{
		{Name: "ABC Traders (Pvt) Ltd", Street: "No 12, Galle Road", VendorCode: "V001"},
		{Name: "Lanka Packaging", Street: "", VendorCode: "V003"},
	}, master)

	_, err = LoadVendorMaster(writeFile(t, "bad.csv", "Name of vendor,Vendor Code\nNo Code,\n"))
	assert.ErrorIs(t, err, models.ErrInvalidVendor)
}

func TestLoadCountryCurrency(t *testing.T) {
	defaults, err := LoadCountryCurrency("")
	require.NoError(t, err)
	assert.Equal(t, DefaultCountryCurrencies(), defaults)

	path := writeFile(t, "cc.csv", "Country,Currency,Dialing Code\nSri Lanka,lkr,+94\nIndia,INR,\n")
	got, err := LoadCountryCurrency(path)
	require.NoError(t, err)
	assert.Equal(t, []models.CountryCurrency{
		{Country: "Sri Lanka", Currency: "LKR", DialingCode: "94"},
		{Country: "India", Currency: "INR"},
	}, got)

	_, err = LoadCountryCurrency(writeFile(t, "bad.csv", "country,currency\nNowhere,RUPEES\n"))
	assert.ErrorIs(t, err, models.ErrInvalidCountryCode)
}

func TestLoadAll(t *testing.T) {
	paths := Paths{
		SBUTable:     writeFile(t, "sbu.csv", "sbu,min,max\nC100,7100000000,7999999999\n"),
		VendorMaster: writeFile(t, "v.csv", "name,street,vendor_code\nA,B,V1\n"),
	}

	tables, err := LoadAll(paths, zap.NewNop())
	require.NoError(t, err)
	assert.Len(t, tables.SBU, 1)
	assert.Len(t, tables.Vendors, 1)
	assert.NotEmpty(t, tables.Countries)

	paths.VendorMaster = writeFile(t, "empty.csv", "name,vendor_code\n")
	_, err = LoadAll(paths, zap.NewNop())
	assert.ErrorIs(t, err, models.ErrEmptyVendorMaster)
}

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "name_of_vendor", normalizeHeader(" Name of vendor "))
	assert.Equal(t, "min_po", normalizeHeader("MIN-PO"))
	assert.Equal(t, "vendor_code", normalizeHeader("vendor_code"))
}
