package models

// POStatus is the validation outcome of one purchase-order candidate
type POStatus string

// PO status constants
const (
	POStatusCorrect         POStatus = "correct"
	POStatusWrongFormat     POStatus = "wrong_format"
	POStatusWrongRange      POStatus = "wrong_range"
	POStatusWrongNonNumeric POStatus = "wrong_non_numeric"
)

// PODescriptor describes one purchase-order candidate found in the raw text.
// A descriptor whose status is not Correct never carries an SBU.
type PODescriptor struct {
	Raw        string   `json:"raw"`
	Cleaned    string   `json:"cleaned"`
	DigitsOnly string   `json:"digits_only"`
	Status     POStatus `json:"status"`
	SBU        string   `json:"resolved_sbu,omitempty"`
	Corrected  bool     `json:"leading_digit_corrected,omitempty"`
}

// HasSBU reports whether range resolution attached a business unit
func (d PODescriptor) HasSBU() bool {
	return d.SBU != ""
}
