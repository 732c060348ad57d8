package reference

import (
	"fmt"

	"github.com/TriAiAdmin/LLM-automation/internal/models"
	"github.com/TriAiAdmin/LLM-automation/internal/normalizer"
	"go.uber.org/zap"
)

// DefaultCountryCurrencies covers the supplier countries seen on invoices.
// The first row of a shared dialing code wins, so the United States owns +1.
func DefaultCountryCurrencies() []models.CountryCurrency {
	return []models.CountryCurrency{
		{Country: "Sri Lanka", Currency: "LKR", DialingCode: "94"},
		{Country: "India", Currency: "INR", DialingCode: "91"},
		{Country: "Maldives", Currency: "MVR", DialingCode: "960"},
		{Country: "Pakistan", Currency: "PKR", DialingCode: "92"},
		{Country: "Bangladesh", Currency: "BDT", DialingCode: "880"},
		{Country: "Singapore", Currency: "SGD", DialingCode: "65"},
		{Country: "Malaysia", Currency: "MYR", DialingCode: "60"},
		{Country: "Thailand", Currency: "THB", DialingCode: "66"},
		{Country: "Indonesia", Currency: "IDR", DialingCode: "62"},
		{Country: "Vietnam", Currency: "VND", DialingCode: "84"},
		{Country: "China", Currency: "CNY", DialingCode: "86"},
		{Country: "Hong Kong", Currency: "HKD", DialingCode: "852"},
		{Country: "Japan", Currency: "JPY", DialingCode: "81"},
		{Country: "United Arab Emirates", Currency: "AED", DialingCode: "971"},
		{Country: "UAE", Currency: "AED"},
		{Country: "United States", Currency: "USD", DialingCode: "1"},
		{Country: "USA", Currency: "USD"},
		{Country: "Canada", Currency: "CAD", DialingCode: "1"},
		{Country: "United Kingdom", Currency: "GBP", DialingCode: "44"},
		{Country: "UK", Currency: "GBP"},
		{Country: "Germany", Currency: "EUR", DialingCode: "49"},
		{Country: "France", Currency: "EUR", DialingCode: "33"},
		{Country: "Netherlands", Currency: "EUR", DialingCode: "31"},
		{Country: "Italy", Currency: "EUR", DialingCode: "39"},
		{Country: "Switzerland", Currency: "CHF", DialingCode: "41"},
		{Country: "Australia", Currency: "AUD", DialingCode: "61"},
		{Country: "New Zealand", Currency: "NZD", DialingCode: "64"},
	}
}

// Paths locates the reference files
type Paths struct {
	SBUTable        string
	VendorMaster    string
	CountryCurrency string
}

// LoadAll loads every table. Any failure is a configuration error that must
// stop the batch before documents are processed.
func LoadAll(paths Paths, logger *zap.Logger) (normalizer.Tables, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	sbu, err := LoadSBUTable(paths.SBUTable)
	if err != nil {
		return normalizer.Tables{}, fmt.Errorf("failed to load sbu table: %w", err)
	}
	vendors, err := LoadVendorMaster(paths.VendorMaster)
	if err != nil {
		return normalizer.Tables{}, fmt.Errorf("failed to load vendor master: %w", err)
	}
	countries, err := LoadCountryCurrency(paths.CountryCurrency)
	if err != nil {
		return normalizer.Tables{}, fmt.Errorf("failed to load country currencies: %w", err)
	}

	logger.Info("Reference tables loaded",
		zap.String("sbu_table", paths.SBUTable),
		zap.Int("sbu_ranges", len(sbu)),
		zap.String("vendor_master", paths.VendorMaster),
		zap.Int("vendors", len(vendors)),
		zap.Int("countries", len(countries)))

	return normalizer.Tables{SBU: sbu, Vendors: vendors, Countries: countries}, nil
}
