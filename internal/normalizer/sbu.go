package normalizer

import (
	"strconv"

	"github.com/TriAiAdmin/LLM-automation/internal/models"
)

// SBURangeResolver maps a validated PO to its business unit through the
// ordered range table
type SBURangeResolver struct {
	table models.SBUTable
}

// NewSBURangeResolver validates the table and keeps a private copy of it
func NewSBURangeResolver(table models.SBUTable) (*SBURangeResolver, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	own := make(models.SBUTable, len(table))
	copy(own, table)
	return &SBURangeResolver{table: own}, nil
}

// RangeFor returns the table row a resolved descriptor belongs to. Rows are
// looked up by value because a code may label more than one range.
func (r *SBURangeResolver) RangeFor(d models.PODescriptor) (models.SBURange, bool) {
	if !d.HasSBU() {
		return models.SBURange{}, false
	}
	v, err := strconv.ParseUint(d.Cleaned, 10, 64)
	if err != nil {
		return models.SBURange{}, false
	}
	return r.table.Lookup(v)
}

// Resolve returns a copy of d with the SBU attached.
//
// Descriptors that are not Correct pass through untouched and without an SBU.
// When no range contains the PO, each replacement of the leading digit is
// tried; exactly one hit is accepted and kept as the cleaned value, anything
// else marks the PO WrongRange.
func (r *SBURangeResolver) Resolve(d models.PODescriptor) models.PODescriptor {
	d.SBU = ""
	if d.Status != models.POStatusCorrect {
		return d
	}

	value, err := strconv.ParseUint(d.Cleaned, 10, 64)
	if err != nil {
		d.Status = models.POStatusWrongNonNumeric
		return d
	}
	if rng, ok := r.table.Lookup(value); ok {
		d.SBU = rng.Code
		return d
	}

	var (
		hits    int
		fixed   string
		fixedTo models.SBURange
	)
	rest := d.Cleaned[1:]
	for digit := byte('0'); digit <= '9'; digit++ {
		if digit == d.Cleaned[0] {
			continue
		}
		candidate := string(digit) + rest
		v, err := strconv.ParseUint(candidate, 10, 64)
		if err != nil {
			continue
		}
		if rng, ok := r.table.Lookup(v); ok {
			hits++
			fixed, fixedTo = candidate, rng
		}
	}

	if hits != 1 {
		d.Status = models.POStatusWrongRange
		return d
	}

	d.Cleaned = fixed
	d.DigitsOnly = fixed
	d.SBU = fixedTo.Code
	d.Corrected = true
	return d
}
