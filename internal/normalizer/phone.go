package normalizer

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedPhone marks a telephone number that cannot be put in +<cc><digits> form
var ErrMalformedPhone = errors.New("malformed telephone number")

// E.164 allows at most 15 digits including the country code
const (
	minPhoneDigits = 8
	maxPhoneDigits = 15
)

// FormatPhone rewrites a telephone number as +<country code><digits>.
//
// Only the first number of a list ("011 234 5678 / 077 123 4567") is used.
// Numbers written with "+" or "00" keep their own country code; national
// numbers drop the trunk "0" and get defaultCC. On failure the input is
// returned unchanged together with an error wrapping ErrMalformedPhone.
func FormatPhone(raw, defaultCC string) (string, error) {
	first := raw
	if i := strings.IndexAny(first, "/,;|"); i >= 0 {
		first = first[:i]
	}

	digits, international := internationalDigits(first)
	if digits == "" {
		return raw, fmt.Errorf("%w: %q", ErrMalformedPhone, raw)
	}

	if !international {
		cc := strings.TrimLeft(strings.TrimSpace(defaultCC), "+")
		if cc == "" {
			return raw, fmt.Errorf("%w: %q has no country code", ErrMalformedPhone, raw)
		}
		// Some extractions already include the country code without "+"
		if !(strings.HasPrefix(digits, cc) && len(digits) > len(cc)+8) {
			digits = cc + strings.TrimPrefix(digits, "0")
		}
	}

	if len(digits) < minPhoneDigits || len(digits) > maxPhoneDigits {
		return raw, fmt.Errorf("%w: %q has %d digits", ErrMalformedPhone, raw, len(digits))
	}
	return "+" + digits, nil
}

// internationalDigits strips formatting from a phone number and reports
// whether it was written in international form ("+" or "00" prefix). The
// "(0)" trunk marker of forms like "+94 (0)11 2345678" is removed.
func internationalDigits(phone string) (string, bool) {
	phone = strings.TrimSpace(strings.ReplaceAll(phone, "(0)", ""))
	international := strings.HasPrefix(phone, "+")

	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	if !international && strings.HasPrefix(digits, "00") {
		international = true
		digits = strings.TrimPrefix(digits, "00")
	}
	return digits, international
}
