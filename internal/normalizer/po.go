package normalizer

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/TriAiAdmin/LLM-automation/internal/models"
	"github.com/TriAiAdmin/LLM-automation/pkg/utils"
)

// ErrInvalidPOPolicy is returned for a policy that can never accept a PO
var ErrInvalidPOPolicy = errors.New("invalid po policy")

// ShortPOMode decides what happens to a numeric PO shorter than the
// canonical width but not shorter than the minimum digit count
type ShortPOMode string

// Short PO modes
const (
	ShortPOPad    ShortPOMode = "pad"    // left-pad with zeros to the canonical width
	ShortPOKeep   ShortPOMode = "keep"   // accept as written, compared numerically
	ShortPOReject ShortPOMode = "reject" // WrongFormat
)

// POPolicy holds the PO validation rules. The minimum digit count has varied
// between 7, 8 and 9 across business-rule revisions, so it is configuration.
type POPolicy struct {
	MinDigits int
	Width     int
	ShortMode ShortPOMode
}

// DefaultPOPolicy is at least 8 digits, zero-padded to 10
func DefaultPOPolicy() POPolicy {
	return POPolicy{MinDigits: 8, Width: 10, ShortMode: ShortPOPad}
}

// Validate checks the policy is internally consistent
func (p POPolicy) Validate() error {
	if p.Width < 1 || p.Width > 19 {
		return fmt.Errorf("%w: width %d must be between 1 and 19", ErrInvalidPOPolicy, p.Width)
	}
	if p.MinDigits < 1 || p.MinDigits > p.Width {
		return fmt.Errorf("%w: min digits %d must be between 1 and width %d", ErrInvalidPOPolicy, p.MinDigits, p.Width)
	}
	switch p.ShortMode {
	case ShortPOPad, ShortPOKeep, ShortPOReject:
	default:
		return fmt.Errorf("%w: unknown short mode %q", ErrInvalidPOPolicy, p.ShortMode)
	}
	return nil
}

// RangeResolver attaches a business unit to a correctly formatted PO
type RangeResolver interface {
	Resolve(models.PODescriptor) models.PODescriptor
}

// POCanonicalizer turns raw PO field values into validated descriptors
type POCanonicalizer struct {
	policy   POPolicy
	resolver RangeResolver
}

var (
	numericRun     = regexp.MustCompile(`[0-9Oo]+`)
	poListSplitter = regexp.MustCompile(`[,;\n\r|&]+|\s+/\s+`)
	poLabel        = regexp.MustCompile(`^(?i)(?:p\.?\s*o\.?|purchase\s+order)?\s*(?:no\.?|number|num\.?)?\s*[#:\-]*\s*`)
)

// poPlaceholders are "no PO" replies, compared after folding
var poPlaceholders = map[string]bool{
	"":              true,
	"na":            true,
	"no":            true,
	"nopo":          true,
	"nil":           true,
	"none":          true,
	"null":          true,
	"notavailable":  true,
	"notapplicable": true,
}

// NewPOCanonicalizer validates the policy and binds the range resolver
func NewPOCanonicalizer(policy POPolicy, resolver RangeResolver) (*POCanonicalizer, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if resolver == nil {
		return nil, errors.New("po canonicalizer requires a range resolver")
	}
	return &POCanonicalizer{policy: policy, resolver: resolver}, nil
}

// Policy returns the active validation policy
func (c *POCanonicalizer) Policy() POPolicy {
	return c.policy
}

// Extract validates every candidate in input order. Lists inside a single
// value ("4500012345, 4500012346") are split first; a slash separates two
// POs only when surrounded by spaces. Placeholders such as "N/A" yield no
// candidate. Only candidates that pass format validation reach the range
// resolver; an empty input yields an empty result.
func (c *POCanonicalizer) Extract(values []string) []models.PODescriptor {
	var out []models.PODescriptor
	for _, v := range values {
		if isPOPlaceholder(v) {
			continue
		}
		for _, part := range poListSplitter.Split(v, -1) {
			part = strings.TrimSpace(part)
			if isPOPlaceholder(part) {
				continue
			}
			d := c.canonicalize(part)
			if d.Status == models.POStatusCorrect {
				d = c.resolver.Resolve(d)
			}
			out = append(out, d)
		}
	}
	return out
}

func (c *POCanonicalizer) canonicalize(raw string) models.PODescriptor {
	d := models.PODescriptor{Raw: raw}

	s := stripPOLabel(strings.TrimLeft(strings.TrimSpace(raw), "#:"))
	if i := strings.IndexAny(s, " (_/\t"); i >= 0 {
		s = s[:i]
	}
	s = zeroLetterO(s)

	d.Cleaned = s
	d.DigitsOnly = onlyDigits(s)

	n := utf8.RuneCountInString(s)
	switch {
	case n < c.policy.MinDigits:
		d.Status = models.POStatusWrongFormat
	case !utils.IsDigits(s):
		d.Status = models.POStatusWrongNonNumeric
	case n > c.policy.Width:
		d.Status = models.POStatusWrongFormat
	case n < c.policy.Width:
		switch c.policy.ShortMode {
		case ShortPOPad:
			d.Cleaned = strings.Repeat("0", c.policy.Width-n) + s
			d.DigitsOnly = d.Cleaned
			d.Status = models.POStatusCorrect
		case ShortPOKeep:
			d.Status = models.POStatusCorrect
		default:
			d.Status = models.POStatusWrongFormat
		}
	default:
		d.Status = models.POStatusCorrect
	}
	return d
}

// stripPOLabel drops a leading "PO", "P.O. No:" or "No." label. A label
// running straight into another word is left alone.
func stripPOLabel(s string) string {
	end := poLabel.FindStringIndex(s)[1]
	if end == 0 || end == len(s) {
		return s
	}
	if r, _ := utf8.DecodeRuneInString(s[end:]); unicode.IsLetter(r) && r != 'O' && r != 'o' {
		return s
	}
	return s[end:]
}

// zeroLetterO reads O/o as 0 when the whole candidate is an otherwise numeric
// run, or when the letter sits between digits
func zeroLetterO(s string) string {
	toZero := strings.NewReplacer("O", "0", "o", "0")
	if numericRun.FindString(s) == s && strings.ContainsAny(s, "0123456789") {
		return toZero.Replace(s)
	}
	return numericRun.ReplaceAllStringFunc(s, func(run string) string {
		first := strings.IndexAny(run, "0123456789")
		last := strings.LastIndexAny(run, "0123456789")
		if first < 0 || first == last {
			return run
		}
		return run[:first] + toZero.Replace(run[first:last]) + run[last:]
	})
}

func isPOPlaceholder(v string) bool {
	folded := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || strings.ContainsRune("./-_", r) {
			return -1
		}
		return unicode.ToLower(r)
	}, v)
	return poPlaceholders[folded]
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
