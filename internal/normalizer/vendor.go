package normalizer

import (
	"fmt"

	"github.com/TriAiAdmin/LLM-automation/internal/models"
)

// DefaultVendorCutoff is the minimum similarity accepted by both match stages
const DefaultVendorCutoff = 75

// VendorResolver recovers a vendor code from an extracted supplier name and
// address. The master is folded once at construction; Resolve never mutates it.
type VendorResolver struct {
	cutoff  int
	entries []vendorEntry
}

type vendorEntry struct {
	name   string
	street string
	code   string
}

// VendorMatch reports the outcome of both stages, for diagnostics
type VendorMatch struct {
	VendorCode  string
	Name        string
	NameScore   int
	StreetScore int
}

// NewVendorResolver validates the master list and precomputes folded keys
func NewVendorResolver(master models.VendorMaster, cutoff int) (*VendorResolver, error) {
	if err := master.Validate(); err != nil {
		return nil, err
	}
	if cutoff < 0 || cutoff > 100 {
		return nil, fmt.Errorf("vendor cutoff %d must be between 0 and 100", cutoff)
	}

	r := &VendorResolver{cutoff: cutoff, entries: make([]vendorEntry, 0, len(master))}
	for _, rec := range master {
		r.entries = append(r.entries, vendorEntry{
			name:   foldText(rec.Name),
			street: foldText(rec.Street),
			code:   rec.VendorCode,
		})
	}
	return r, nil
}

// Cutoff returns the minimum accepted score
func (r *VendorResolver) Cutoff() int {
	return r.cutoff
}

// Resolve returns the vendor code for name and address, or false when either
// stage scores below the cutoff
func (r *VendorResolver) Resolve(name, address string) (string, bool) {
	m, ok := r.Match(name, address)
	return m.VendorCode, ok
}

// Match runs the name stage over the whole master, then the address stage over
// the rows sharing the best name. Ties keep the earliest row so results are
// stable for identical inputs.
func (r *VendorResolver) Match(name, address string) (VendorMatch, bool) {
	var m VendorMatch

	foldedName := foldText(name)
	best := -1
	for i, e := range r.entries {
		if s := weightedRatio(foldedName, e.name); s > m.NameScore || best < 0 {
			best, m.NameScore = i, s
		}
	}
	if best < 0 || m.NameScore < r.cutoff {
		return m, false
	}
	m.Name = r.entries[best].name

	foldedAddress := foldText(address)
	winner := -1
	for i, e := range r.entries {
		if e.name != m.Name {
			continue
		}
		if s := weightedRatio(foldedAddress, e.street); s > m.StreetScore || winner < 0 {
			winner, m.StreetScore = i, s
		}
	}
	if m.StreetScore < r.cutoff {
		return m, false
	}

	m.VendorCode = r.entries[winner].code
	return m, true
}
