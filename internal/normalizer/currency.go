package normalizer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/TriAiAdmin/LLM-automation/internal/models"
	"golang.org/x/text/currency"
)

// CurrencySource tells which signal decided the currency
type CurrencySource string

// Currency source constants, in resolution order
const (
	CurrencySourceExplicit CurrencySource = "explicit"
	CurrencySourceAddress  CurrencySource = "address"
	CurrencySourcePhone    CurrencySource = "phone"
	CurrencySourceDefault  CurrencySource = "default"
)

// CurrencyResolution is the outcome of CurrencyResolver.Resolve
type CurrencyResolution struct {
	Code   string
	Source CurrencySource
}

// currencySymbols is checked longest symbol first
var currencySymbols = map[string]string{
	"US$": "USD", "A$": "AUD", "C$": "CAD", "S$": "SGD", "NZ$": "NZD", "HK$": "HKD",
	"$": "USD", "€": "EUR", "£": "GBP", "¥": "JPY", "₹": "INR", "රු": "LKR",
	"Rs.": "LKR", "Rs": "LKR", "RMB": "CNY", "RM": "MYR", "฿": "THB",
}

// CurrencyResolver maps currency, address and phone signals to an ISO 4217
// code. It is immutable after construction and safe for concurrent use.
type CurrencyResolver struct {
	defaultCode string
	symbols     []string
	countries   []countryEntry
	dialing     []dialEntry
}

type countryEntry struct {
	name string
	code string
}

type dialEntry struct {
	prefix string
	code   string
}

// NewCurrencyResolver builds a resolver from the country table. Every code in
// the table and the default code must be a recognised ISO 4217 currency.
func NewCurrencyResolver(table []models.CountryCurrency, defaultCode string) (*CurrencyResolver, error) {
	def, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(defaultCode)))
	if err != nil {
		return nil, fmt.Errorf("%w: default currency %q", models.ErrInvalidCountryCode, defaultCode)
	}

	r := &CurrencyResolver{defaultCode: def.String()}

	seenDial := map[string]bool{}
	for _, row := range table {
		unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(row.Currency)))
		if err != nil {
			return nil, fmt.Errorf("%w: %s -> %q", models.ErrInvalidCountryCode, row.Country, row.Currency)
		}
		if name := foldText(row.Country); name != "" {
			r.countries = append(r.countries, countryEntry{name: name, code: unit.String()})
		}
		dial := strings.TrimLeft(strings.TrimSpace(row.DialingCode), "+")
		if dial != "" && !seenDial[dial] {
			seenDial[dial] = true
			r.dialing = append(r.dialing, dialEntry{prefix: dial, code: unit.String()})
		}
	}

	// Longest names and prefixes first so "united states" beats "states" and
	// "353" beats "35".
	sort.SliceStable(r.countries, func(i, j int) bool {
		return len(r.countries[i].name) > len(r.countries[j].name)
	})
	sort.SliceStable(r.dialing, func(i, j int) bool {
		return len(r.dialing[i].prefix) > len(r.dialing[j].prefix)
	})

	for sym := range currencySymbols {
		r.symbols = append(r.symbols, sym)
	}
	sort.Slice(r.symbols, func(i, j int) bool {
		if len(r.symbols[i]) != len(r.symbols[j]) {
			return len(r.symbols[i]) > len(r.symbols[j])
		}
		return r.symbols[i] < r.symbols[j]
	})

	return r, nil
}

// DefaultCode returns the currency used when no signal is found
func (r *CurrencyResolver) DefaultCode() string {
	return r.defaultCode
}

// Resolve applies, first match wins: an explicit code or symbol in
// currencyText, a country named in addressText, the international dialing
// prefix of phoneText, then the default currency.
func (r *CurrencyResolver) Resolve(currencyText, addressText, phoneText *string) CurrencyResolution {
	if currencyText != nil {
		if code, ok := r.explicit(*currencyText); ok {
			return CurrencyResolution{Code: code, Source: CurrencySourceExplicit}
		}
	}
	if addressText != nil {
		if code, ok := r.fromAddress(*addressText); ok {
			return CurrencyResolution{Code: code, Source: CurrencySourceAddress}
		}
	}
	if phoneText != nil {
		if code, ok := r.fromPhone(*phoneText); ok {
			return CurrencyResolution{Code: code, Source: CurrencySourcePhone}
		}
	}
	return CurrencyResolution{Code: r.defaultCode, Source: CurrencySourceDefault}
}

func (r *CurrencyResolver) explicit(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}

	// A bare three-letter field is taken in any case; inside longer text only
	// upper-case tokens count, so words like "all" are not read as codes.
	if len(text) == 3 {
		if unit, err := currency.ParseISO(strings.ToUpper(text)); err == nil {
			return unit.String(), true
		}
	}
	for _, tok := range letterRuns(text) {
		if len(tok) != 3 || tok != strings.ToUpper(tok) {
			continue
		}
		if unit, err := currency.ParseISO(tok); err == nil {
			return unit.String(), true
		}
	}

	for _, sym := range r.symbols {
		if strings.Contains(text, sym) {
			return currencySymbols[sym], true
		}
	}
	return "", false
}

func (r *CurrencyResolver) fromAddress(address string) (string, bool) {
	folded := " " + foldText(address) + " "
	for _, c := range r.countries {
		if strings.Contains(folded, " "+c.name+" ") {
			return c.code, true
		}
	}
	return "", false
}

func (r *CurrencyResolver) fromPhone(phone string) (string, bool) {
	digits, international := internationalDigits(phone)
	if !international {
		return "", false
	}
	for _, d := range r.dialing {
		if strings.HasPrefix(digits, d.prefix) {
			return d.code, true
		}
	}
	return "", false
}

// letterRuns splits s into runs of ASCII letters
func letterRuns(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return (r < 'A' || r > 'Z') && (r < 'a' || r > 'z')
	})
}
