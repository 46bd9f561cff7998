package canonical

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	headerInvalidChars = regexp.MustCompile(`[^a-z0-9_]`)
	headerUnderscores  = regexp.MustCompile(`_+`)
)

// NormalizeHeader canonicalizes a raw column header for comparison:
// trimmed, lower-cased, non-alphanumerics collapsed into single underscores.
// "Policy No." and "policy_no" normalize to the same key.
func NormalizeHeader(header string) string {
	h := strings.ToLower(strings.TrimSpace(header))
	if h == "" {
		return ""
	}
	h = headerInvalidChars.ReplaceAllString(h, "_")
	h = headerUnderscores.ReplaceAllString(h, "_")
	return strings.Trim(h, "_")
}

// dateFormats is the fixed, ordered list of accepted date layouts.
// The first successful parse wins; output is always an ISO 8601 date.
var dateFormats = []string{
	"2006-01-02",      // ISO 8601
	"02/01/2006",      // DD/MM/YYYY
	"01-02-2006",      // MM-DD-YYYY
	"2006/01/02",      // YYYY/MM/DD
	"02-01-2006",      // DD-MM-YYYY
	"02.01.2006",      // DD.MM.YYYY
	"20060102",        // YYYYMMDD
	"2 January 2006",  // 15 January 2024
	"2 Jan 2006",      // 15 Jan 2024
	"January 2, 2006", // January 15, 2024
	"Jan 2, 2006",     // Jan 15, 2024
	"02/01/06",        // DD/MM/YY
}

// ParseDate parses a raw cell into a date, trying each accepted format in
// order. Time-of-day components are discarded.
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date value")
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %q", s)
}

// currencyMarkers are symbols and codes stripped before decimal parsing.
var currencyMarkers = []string{"USD", "EUR", "GBP", "ZAR", "$", "€", "£", "¥", "₹", "R"}

// ParseDecimal parses a raw monetary cell into an exact decimal, stripping
// currency symbols and thousands separators. Both US (1,234.56) and
// European (1.234,56) separators are handled.
func ParseDecimal(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("empty numeric value")
	}

	for _, marker := range currencyMarkers {
		s = strings.ReplaceAll(s, marker, "")
	}
	s = strings.TrimSpace(s)

	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")
	switch {
	case hasComma && hasDot:
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			// European: 1.234,56
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			// US: 1,234.56
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasComma:
		// A single trailing comma group of two digits reads as a decimal
		// separator; everything else as thousands separators.
		if idx := strings.LastIndex(s, ","); strings.Count(s, ",") == 1 && len(s)-idx-1 == 2 {
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}

	// Drop any remaining stray characters (spaces between digit groups etc).
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" || cleaned == "." || cleaned == "-" {
		return decimal.Decimal{}, fmt.Errorf("no numeric content in %q", raw)
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse decimal %q: %w", raw, err)
	}
	return d, nil
}

// currencyAliases maps common currency spellings to ISO codes.
var currencyAliases = map[string]string{
	"US DOLLAR":          "USD",
	"DOLLAR":             "USD",
	"DOLLARS":            "USD",
	"US$":                "USD",
	"$":                  "USD",
	"EURO":               "EUR",
	"EUROS":              "EUR",
	"€":                  "EUR",
	"POUND":              "GBP",
	"POUNDS":             "GBP",
	"POUND STERLING":     "GBP",
	"£":                  "GBP",
	"YEN":                "JPY",
	"¥":                  "JPY",
	"SWISS FRANC":        "CHF",
	"RAND":               "ZAR",
	"SOUTH AFRICAN RAND": "ZAR",
	"NAIRA":              "NGN",
	"CEDI":               "GHS",
	"KENYAN SHILLING":    "KES",
	"CANADIAN DOLLAR":    "CAD",
	"AUSTRALIAN DOLLAR":  "AUD",
}

// NormalizeCurrency maps a raw currency cell to an upper-case ISO-style code.
// Unknown values pass through upper-cased and trimmed rather than failing,
// since currency is a plain string field in the canonical schema.
func NormalizeCurrency(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	if code, ok := currencyAliases[s]; ok {
		return code
	}
	return s
}

// NormalizeString trims surrounding whitespace, preserving case.
func NormalizeString(raw string) string {
	return strings.TrimSpace(raw)
}
