package normalizer

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldText lower-cases s, strips diacritics and replaces every run of
// non-alphanumeric characters with a single space. Transformers are built per
// call because they carry state and the engine runs on many goroutines.
func foldText(s string) string {
	stripMarks := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(stripMarks, s); err == nil {
		s = out
	}
	s = cases.Fold().String(s)

	var b strings.Builder
	space := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteRune(r)
			space = false
			continue
		}
		space = true
	}
	return b.String()
}

// issues collects non-fatal anomalies in the order they were found
type issues []string

func (is *issues) add(format string, args ...any) {
	*is = append(*is, fmt.Sprintf(format, args...))
}
