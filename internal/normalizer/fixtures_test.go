package normalizer

import (
	"testing"
	"time"

	"github.com/TriAiAdmin/LLM-automation/internal/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// sbuTable returns the business unit table; globalFoods labels the Alawwa
// Colombo Road range, which has been both C800 and C700
func sbuTable(globalFoods string) models.SBUTable {
	return models.SBUTable{
		{Code: "C100", CompanyName: "Ceylon Biscuit Ltd", Address: "Makumbura, Pannipitiya", MinPO: 7100000000, MaxPO: 7999999999},
		{Code: "C200", CompanyName: "CBL Food International", Address: "Ranala", MinPO: 41000000, MaxPO: 51999999},
		{Code: "C300", CompanyName: "Convenience Food", Address: "Kandawala, Ratmalana", MinPO: 310000001, MaxPO: 389999999},
		{Code: "C400", CompanyName: "CBL Plenty Foods", Address: "Ratmalana", MinPO: 400000000, MaxPO: 469999999},
		{Code: "C500", CompanyName: "CBL Exports", Address: "Seethawaka", MinPO: 5300000000, MaxPO: 5999999999},
		{Code: "C600", CompanyName: "CBL Natural Foods", Address: "Minuwangoda", MinPO: 610000000, MaxPO: 659999999},
		{Code: "C700", CompanyName: "CBL Cocos", Address: "Alawwa", MinPO: 1710000001, MaxPO: 1759999999},
		{Code: globalFoods, CompanyName: "CBL Global Foods", Address: "Colombo Road, Alawwa", MinPO: 1810000001, MaxPO: 1869999999},
	}
}

func vendorMaster() models.VendorMaster {
	return models.VendorMaster{
		{Name: "ABC Traders (Pvt) Ltd", Street: "No 12, Galle Road, Colombo 03", VendorCode: "V001"},
		{Name: "ABC Traders (Pvt) Ltd", Street: "45 Kandy Road, Kadawatha", VendorCode: "V002"},
		{Name: "Lanka Packaging Solutions", Street: "88 Negombo Road, Wattala", VendorCode: "V003"},
	}
}

func countryTable() []models.CountryCurrency {
	return []models.CountryCurrency{
		{Country: "Sri Lanka", Currency: "LKR", DialingCode: "94"},
		{Country: "India", Currency: "INR", DialingCode: "91"},
		{Country: "United States", Currency: "USD", DialingCode: "1"},
		{Country: "United Kingdom", Currency: "GBP", DialingCode: "44"},
		{Country: "Singapore", Currency: "SGD", DialingCode: "65"},
	}
}

// processingDate is the fixed clock used by engine tests
var processingDate = time.Date(2024, time.November, 1, 9, 30, 0, 0, time.UTC)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	opts := DefaultOptions()
	opts.Clock = func() time.Time { return processingDate }
	e, err := NewEngine(Tables{SBU: sbuTable("C800"), Vendors: vendorMaster(), Countries: countryTable()}, opts, zap.NewNop())
	require.NoError(t, err)
	return e
}

func strPtr(s string) *string {
	return &s
}

func amountPtr(s string) *models.Amount {
	a := models.MustAmount(s)
	return &a
}
