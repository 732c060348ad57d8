package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Reference table errors. All of them are fatal for a batch.
var (
	ErrEmptySBUTable      = errors.New("sbu range table is empty")
	ErrInvalidRange       = errors.New("invalid sbu range")
	ErrOverlappingRanges  = errors.New("sbu ranges overlap")
	ErrEmptyVendorMaster  = errors.New("vendor master is empty")
	ErrInvalidVendor      = errors.New("invalid vendor record")
	ErrInvalidCountryCode = errors.New("invalid country currency entry")
)

// SBURange maps an inclusive purchase-order range to a business unit
type SBURange struct {
	Code        string `json:"code"`
	CompanyName string `json:"company_name"`
	Address     string `json:"address"`
	MinPO       uint64 `json:"min_po"`
	MaxPO       uint64 `json:"max_po"`
}

// Contains reports whether po falls inside the inclusive range
func (r SBURange) Contains(po uint64) bool {
	return po >= r.MinPO && po <= r.MaxPO
}

// SBUTable is the ordered range table. It is read-only after loading.
type SBUTable []SBURange

// Validate checks that every row is well formed and no two ranges overlap
func (t SBUTable) Validate() error {
	if len(t) == 0 {
		return ErrEmptySBUTable
	}

	for i, r := range t {
		if strings.TrimSpace(r.Code) == "" {
			return fmt.Errorf("%w: row %d has no code", ErrInvalidRange, i+1)
		}
		if r.MinPO > r.MaxPO {
			return fmt.Errorf("%w: %s min %d > max %d", ErrInvalidRange, r.Code, r.MinPO, r.MaxPO)
		}
	}

	sorted := make(SBUTable, len(t))
	copy(sorted, t)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinPO < sorted[j].MinPO })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].MinPO <= sorted[i-1].MaxPO {
			return fmt.Errorf("%w: %s and %s", ErrOverlappingRanges, sorted[i-1].Code, sorted[i].Code)
		}
	}
	return nil
}

// Lookup returns the range containing po. Ranges never overlap, so at most
// one can match.
func (t SBUTable) Lookup(po uint64) (SBURange, bool) {
	for _, r := range t {
		if r.Contains(po) {
			return r, true
		}
	}
	return SBURange{}, false
}

// ByCode returns the first range carrying code
func (t SBUTable) ByCode(code string) (SBURange, bool) {
	for _, r := range t {
		if r.Code == code {
			return r, true
		}
	}
	return SBURange{}, false
}

// VendorRecord is one row of the vendor master
type VendorRecord struct {
	Name       string `json:"name"`
	Street     string `json:"street"`
	VendorCode string `json:"vendor_code"`
}

// VendorMaster is the ordered vendor reference list
type VendorMaster []VendorRecord

// Validate rejects an empty master and rows without name or code
func (m VendorMaster) Validate() error {
	if len(m) == 0 {
		return ErrEmptyVendorMaster
	}
	for i, v := range m {
		if strings.TrimSpace(v.Name) == "" {
			return fmt.Errorf("%w: row %d has no name", ErrInvalidVendor, i+1)
		}
		if strings.TrimSpace(v.VendorCode) == "" {
			return fmt.Errorf("%w: row %d (%s) has no vendor code", ErrInvalidVendor, i+1, v.Name)
		}
	}
	return nil
}

// CountryCurrency maps a country name, and optionally its dialing code, to an
// ISO 4217 currency
type CountryCurrency struct {
	Country     string `json:"country"`
	Currency    string `json:"currency"`
	DialingCode string `json:"dialing_code,omitempty"`
}
