package normalizer

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/TriAiAdmin/LLM-automation/internal/models"
	"github.com/shopspring/decimal"
)

// ErrMalformedAmount marks an amount string that could not be repaired
var ErrMalformedAmount = errors.New("malformed amount")

var plainDecimal = regexp.MustCompile(`^(\d+(\.\d+)?|\.\d+)$`)

// ParseAmount repairs an extracted amount string into a canonical amount.
//
// The returned amount is always usable: absent input is 0.00 with no error,
// unrepairable input is 0.00 with an error wrapping ErrMalformedAmount that
// the caller records as an anomaly. When more than one decimal point is
// present, every point but the last is read as a thousands separator, so
// "2145.046.40" becomes 2145046.40.
func ParseAmount(raw *string) (models.Amount, error) {
	if raw == nil {
		return models.ZeroAmount, nil
	}

	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == ',' {
			return -1
		}
		return r
	}, *raw)

	if strings.Count(cleaned, ".") > 1 {
		last := strings.LastIndex(cleaned, ".")
		cleaned = strings.ReplaceAll(cleaned[:last], ".", "") + cleaned[last:]
	}
	cleaned = strings.TrimSuffix(cleaned, ".")

	if !plainDecimal.MatchString(cleaned) {
		return models.ZeroAmount, fmt.Errorf("%w: %q", ErrMalformedAmount, *raw)
	}

	if strings.HasPrefix(cleaned, ".") {
		cleaned = "0" + cleaned
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return models.ZeroAmount, fmt.Errorf("%w: %q: %v", ErrMalformedAmount, *raw, err)
	}
	return models.NewAmount(d), nil
}
