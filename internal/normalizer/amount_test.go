package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		raw     *string
		want    string
		wantErr bool
	}{
		{"absent", nil, "0.00", false},
		{"plain integer", strPtr("100"), "100.00", false},
		{"thousands commas", strPtr("1,234.50"), "1234.50", false},
		{"embedded spaces", strPtr(" 1 234.5 "), "1234.50", false},
		{"second decimal point is a thousands dot", strPtr("2145.046.40"), "2145046.40", false},
		{"many dots keep the last", strPtr("1.2.3.4"), "123.40", false},
		{"leading dot", strPtr(".5"), "0.50", false},
		{"trailing dot", strPtr("12."), "12.00", false},
		{"rounds half away from zero", strPtr("10.005"), "10.01", false},
		{"letters", strPtr("abc"), "0.00", true},
		{"currency prefix", strPtr("Rs.100"), "0.00", true},
		{"negative", strPtr("-50"), "0.00", true},
		{"only separators", strPtr(", ."), "0.00", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.raw)
			assert.Equal(t, tt.want, got.String())
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedAmount)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestParseAmount_Total checks that garbage never escapes as anything but 0.00
func TestParseAmount_Total(t *testing.T) {
	inputs := []string{"", " ", "..", "1..2", "1e5", "١٢٣", "12,34,56.7.8", "$$$", "\x00", "99999999999999999999999.999"}
	for _, in := range inputs {
		in := in
		assert.NotPanics(t, func() {
			got, err := ParseAmount(&in)
			if err != nil {
				assert.Equal(t, "0.00", got.String(), "input %q", in)
			}
		})
	}
}
