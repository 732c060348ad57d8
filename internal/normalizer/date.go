package normalizer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/TriAiAdmin/LLM-automation/internal/models"
)

// Date parsing errors
var (
	ErrMissingDate     = errors.New("invoice date missing")
	ErrUnparsableDate  = errors.New("invoice date unparsable")
	ErrFutureDate      = errors.New("invoice date is after the processing date")
	ErrDateMonthRepair = errors.New("invoice date month repaired")
)

var monthNames = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

var weekdayNames = map[string]bool{
	"mon": true, "monday": true, "tue": true, "tues": true, "tuesday": true,
	"wed": true, "wednesday": true, "thu": true, "thur": true, "thurs": true,
	"thursday": true, "fri": true, "friday": true, "sat": true, "saturday": true,
	"sun": true, "sunday": true,
}

// ParseDate parses an extracted invoice date relative to ref, the processing
// date.
//
// Day-first, month-first, year-first and month-name layouts are accepted.
// When both day-first and month-first readings are valid, the most recent
// reading not after ref wins. When every reading lies after ref, the month is
// treated as misread and replaced by the latest month of the same year that
// keeps the date on or before ref. A month token that is neither a number nor
// a month name ("0ct") is repaired the same way. The repaired date is returned
// together with an error wrapping ErrDateMonthRepair. This is a heuristic repair of OCR
// misreads and can still pick the wrong month.
//
// A nil date is returned with ErrMissingDate, ErrUnparsableDate or
// ErrFutureDate when nothing usable can be derived.
func ParseDate(raw *string, ref time.Time) (*models.Date, error) {
	if raw == nil {
		return nil, ErrMissingDate
	}

	today := models.NewDate(ref.Year(), ref.Month(), ref.Day())

	candidates := dateCandidates(*raw, ref)
	if len(candidates) == 0 {
		year, day, ok := unreadableMonth(*raw, ref)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnparsableDate, *raw)
		}
		repaired, ok := latestMonth(year, day, today)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrFutureDate, *raw)
		}
		return &repaired, fmt.Errorf("%w: %q read as %s", ErrDateMonthRepair, *raw, repaired)
	}

	var best *models.Date
	for i := range candidates {
		c := candidates[i]
		if c.After(today.Time) {
			continue
		}
		if best == nil || c.After(best.Time) {
			best = &c
		}
	}
	if best != nil {
		return best, nil
	}

	first := candidates[0]
	if first.Year() != today.Year() {
		return nil, fmt.Errorf("%w: %q", ErrFutureDate, *raw)
	}
	repaired, ok := latestMonth(first.Year(), first.Day(), today)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrFutureDate, *raw)
	}
	return &repaired, fmt.Errorf("%w: %q read as %s", ErrDateMonthRepair, *raw, repaired)
}

// latestMonth returns day/month/year for the latest month of year that keeps
// the date on or before today
func latestMonth(year, day int, today models.Date) (models.Date, bool) {
	if year > today.Year() {
		return models.Date{}, false
	}
	start := time.December
	if year == today.Year() {
		start = today.Month()
	}
	for m := start; m >= time.January; m-- {
		if !validDate(year, m, day) {
			continue
		}
		d := models.NewDate(year, m, day)
		if !d.After(today.Time) {
			return d, true
		}
	}
	return models.Date{}, false
}

// unreadableMonth handles dates whose month token is garbled, such as
// "24/0ct/2024": exactly one of the first two tokens is neither a number nor a
// month name and the other two read as a day and a year.
func unreadableMonth(s string, ref time.Time) (year, day int, ok bool) {
	tokens := dateTokens(s)
	if len(tokens) < 3 {
		return 0, 0, false
	}
	tokens = tokens[:3]

	var nums []string
	garbled := -1
	for i, tok := range tokens {
		if _, err := strconv.Atoi(tok); err == nil {
			nums = append(nums, tok)
			continue
		}
		if _, known := monthNames[tok]; known || garbled >= 0 || !strings.ContainsFunc(tok, unicode.IsLetter) {
			return 0, 0, false
		}
		garbled = i
	}
	// the last token is a year or, year first, a day; never the month
	if garbled < 0 || garbled == 2 {
		return 0, 0, false
	}

	dayTok, yearTok := nums[0], nums[1]
	if len(nums[0]) == 4 {
		dayTok, yearTok = nums[1], nums[0]
	}
	year, ok = parseYear(yearTok, ref)
	if !ok {
		return 0, 0, false
	}
	day, err := strconv.Atoi(dayTok)
	if err != nil || day < 1 || day > 31 {
		return 0, 0, false
	}
	return year, day, true
}

// dateCandidates returns every valid reading of s, day-first reading first
func dateCandidates(s string, ref time.Time) []models.Date {
	tokens := dateTokens(s)
	if len(tokens) < 3 {
		return nil
	}
	tokens = tokens[:3]

	monthAt := -1
	var month time.Month
	for i, tok := range tokens {
		if m, ok := monthNames[tok]; ok {
			monthAt, month = i, m
			break
		}
	}

	if monthAt >= 0 {
		var nums []string
		for i, tok := range tokens {
			if i != monthAt {
				nums = append(nums, tok)
			}
		}
		dayTok, yearTok := nums[0], nums[1]
		if len(nums[0]) == 4 {
			dayTok, yearTok = nums[1], nums[0]
		}
		year, ok := parseYear(yearTok, ref)
		day, err := strconv.Atoi(dayTok)
		if !ok || err != nil || !validDate(year, month, day) {
			return nil
		}
		return []models.Date{models.NewDate(year, month, day)}
	}

	nums := make([]int, 3)
	for i, tok := range tokens {
		n, err := strconv.Atoi(tok)
		if err != nil {
			return nil
		}
		nums[i] = n
	}

	if len(tokens[0]) == 4 {
		if !validDate(nums[0], time.Month(nums[1]), nums[2]) {
			return nil
		}
		return []models.Date{models.NewDate(nums[0], time.Month(nums[1]), nums[2])}
	}

	year, ok := parseYear(tokens[2], ref)
	if !ok {
		return nil
	}

	var out []models.Date
	if validDate(year, time.Month(nums[1]), nums[0]) {
		out = append(out, models.NewDate(year, time.Month(nums[1]), nums[0]))
	}
	if nums[0] != nums[1] && validDate(year, time.Month(nums[0]), nums[1]) {
		out = append(out, models.NewDate(year, time.Month(nums[0]), nums[1]))
	}
	return out
}

// dateTokens splits s into lower-cased alphanumeric tokens, dropping weekday
// names and ordinal suffixes such as "24th"
func dateTokens(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var tokens []string
	for _, f := range fields {
		if weekdayNames[f] {
			continue
		}
		for _, suffix := range []string{"st", "nd", "rd", "th"} {
			if len(f) > len(suffix) && strings.HasSuffix(f, suffix) && unicode.IsDigit(rune(f[len(f)-len(suffix)-1])) {
				f = strings.TrimSuffix(f, suffix)
				break
			}
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// parseYear accepts four-digit years and two-digit years; a two-digit year
// maps to the latest century that does not put it after ref
func parseYear(tok string, ref time.Time) (int, bool) {
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, false
	}
	switch len(tok) {
	case 4:
		return n, true
	case 2:
		year := 2000 + n
		if year > ref.Year() {
			year -= 100
		}
		return year, true
	}
	return 0, false
}

func validDate(year int, month time.Month, day int) bool {
	if month < time.January || month > time.December || day < 1 || year < 1 {
		return false
	}
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	return day <= last
}
