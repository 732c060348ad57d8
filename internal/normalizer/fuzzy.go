package normalizer

import (
	"math"
	"sort"
	"strings"

	"github.com/agext/levenshtein"
)

// Substitution costs two edits, so Similarity becomes 1 - dist/(len(a)+len(b))
var ratioParams = levenshtein.NewParams().SubCost(2)

// ratio is the normalized indel similarity of a and b on a 0-100 scale
func ratio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	return levenshtein.Similarity(a, b, ratioParams) * 100
}

// partialRatio scores the shorter string against every equal-length window
// of the longer one and keeps the best
func partialRatio(a, b string) float64 {
	short, long := []rune(a), []rune(b)
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == 0 {
		return 0
	}
	s := string(short)
	best := 0.0
	for i := 0; i+len(short) <= len(long); i++ {
		if r := ratio(s, string(long[i:i+len(short)])); r > best {
			best = r
			if best == 100 {
				break
			}
		}
	}
	return best
}

func sortedTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func tokenSortRatio(a, b string, score func(string, string) float64) float64 {
	return score(sortedTokens(a), sortedTokens(b))
}

// tokenSetRatio compares the shared tokens against each side's full token set
func tokenSetRatio(a, b string, score func(string, string) float64) float64 {
	inA := map[string]bool{}
	for _, t := range strings.Fields(a) {
		inA[t] = true
	}
	inB := map[string]bool{}
	for _, t := range strings.Fields(b) {
		inB[t] = true
	}

	var common, onlyA, onlyB []string
	for t := range inA {
		if inB[t] {
			common = append(common, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for t := range inB {
		if !inA[t] {
			onlyB = append(onlyB, t)
		}
	}
	sort.Strings(common)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	sect := strings.Join(common, " ")
	withA := strings.TrimSpace(sect + " " + strings.Join(onlyA, " "))
	withB := strings.TrimSpace(sect + " " + strings.Join(onlyB, " "))

	best := score(withA, withB)
	if sect != "" {
		best = math.Max(best, math.Max(score(sect, withA), score(sect, withB)))
	}
	return best
}

// weightedRatio blends whole-string, token and partial scores the way common
// fuzzy matchers do and returns an integer score in 0-100. Inputs are
// expected to be folded already.
func weightedRatio(a, b string) int {
	if a == "" || b == "" {
		return 0
	}

	best := ratio(a, b)
	la, lb := float64(len([]rune(a))), float64(len([]rune(b)))
	lenRatio := math.Max(la, lb) / math.Min(la, lb)

	if lenRatio < 1.5 {
		best = math.Max(best, tokenSortRatio(a, b, ratio)*0.95)
		best = math.Max(best, tokenSetRatio(a, b, ratio)*0.95)
		return int(math.Round(best))
	}

	scale := 0.9
	if lenRatio >= 8 {
		scale = 0.6
	}
	best = math.Max(best, partialRatio(a, b)*scale)
	best = math.Max(best, tokenSortRatio(a, b, partialRatio)*0.95*scale)
	best = math.Max(best, tokenSetRatio(a, b, partialRatio)*0.95*scale)
	return int(math.Round(best))
}
