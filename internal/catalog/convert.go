package catalog

// convert.go provides the type-coercion vocabulary shared by the ingest
// parser and the export serializer.
//
// These functions handle the messy reality of user-provided CSV data:
//   - Currency symbols and thousand separators in money columns
//   - Accounting format (parentheses for negative)
//   - Various boolean representations (yes/no, true/false, 1/0)
//   - Excel formula prefixes (="value")
//
// Money and measurements are fixed-point with two fractional digits,
// scaled to integer minor units with round-half-away-from-zero, so that
// no float ever touches a monetary value and parse/format round-trip
// exactly.

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// HeaderIndex maps column names (lowercase) to their position in the CSV row.
type HeaderIndex map[string]int

// MakeHeaderIndex creates a HeaderIndex from a CSV header row.
// Keys are lowercased for case-insensitive matching.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		idx[strings.ToLower(CleanCell(h))] = i
	}
	return idx
}

// CleanCell removes common CSV artifacts from a cell value:
// trims whitespace, strips the Excel formula prefix (="..."), and
// removes surrounding quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.Trim(s, `"'`)
}

// ParseAmount converts monetary text in major units (e.g. "125.00") to an
// Amount in integer minor units. Currency symbols, thousands separators,
// and accounting parentheses are tolerated. Blank input yields an invalid
// Amount; malformed input returns an error.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, nil
	}

	// Accounting negative "(123.45)"
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "€", "") // Euro
	s = strings.ReplaceAll(s, "£", "") // Pound
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	cents, err := parseFixed2(s)
	if err != nil {
		return Amount{}, err
	}
	if negative {
		cents = -cents
	}
	return Amount{Cents: cents, Valid: true}, nil
}

// FormatAmount renders an Amount as decimal major-unit text ("125.00").
// Invalid amounts render as empty text, never "0".
func FormatAmount(a Amount) string {
	if !a.Valid {
		return ""
	}
	return formatFixed2(a.Cents)
}

// ParseDecimal converts measurement text (carat weight, millimetre
// dimensions) to a fixed-point Decimal in hundredths. Blank input is
// "unspecified", not an error. Negative values are rejected here because
// no catalog measurement can be negative.
func ParseDecimal(s string) (Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Decimal{}, nil
	}

	h, err := parseFixed2(s)
	if err != nil {
		return Decimal{}, err
	}
	if h < 0 {
		return Decimal{}, fmt.Errorf("must not be negative")
	}
	return Decimal{Hundredths: h, Valid: true}, nil
}

// FormatDecimal renders a Decimal as two-digit fixed-point text ("1.25").
// Unspecified values render as empty text.
func FormatDecimal(d Decimal) string {
	if !d.Valid {
		return ""
	}
	return formatFixed2(d.Hundredths)
}

// ParseFlag converts boolean-like text to a Flag. The accepted spellings
// are the closed set true/t/yes/y/1 and false/f/no/n/0, matched
// case-insensitively. FormatFlag writes the symmetric yes/no form.
func ParseFlag(s string) (Flag, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return Flag{}, nil
	}

	switch s {
	case "true", "t", "yes", "y", "1":
		return Flag{Bool: true, Valid: true}, nil
	case "false", "f", "no", "n", "0":
		return Flag{Bool: false, Valid: true}, nil
	default:
		return Flag{}, fmt.Errorf("must be yes/no, true/false, or 1/0")
	}
}

// FormatFlag renders a Flag as "yes" or "no", or empty when unspecified.
func FormatFlag(f Flag) string {
	if !f.Valid {
		return ""
	}
	if f.Bool {
		return "yes"
	}
	return "no"
}

// parseFixed2 parses decimal text into integer hundredths, rounding half
// away from zero when more than two fractional digits are supplied.
func parseFixed2(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("invalid number format")
	}

	negative := false
	switch s[0] {
	case '-':
		negative = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	intPart := s
	fracPart := ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart = s[:dot]
		fracPart = s[dot+1:]
	}
	if intPart == "" && fracPart == "" {
		return 0, fmt.Errorf("invalid number format")
	}
	if intPart == "" {
		intPart = "0"
	}

	whole, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number format")
	}

	for i := 0; i < len(fracPart); i++ {
		if fracPart[i] < '0' || fracPart[i] > '9' {
			return 0, fmt.Errorf("invalid number format")
		}
	}

	var cents int64
	switch {
	case len(fracPart) == 0:
		cents = 0
	case len(fracPart) == 1:
		cents = int64(fracPart[0]-'0') * 10
	default:
		cents = int64(fracPart[0]-'0')*10 + int64(fracPart[1]-'0')
		// Round half away from zero on the third digit.
		if len(fracPart) > 2 && fracPart[2] >= '5' {
			cents++
		}
	}

	// Scaling to hundredths must not wrap.
	if whole > (math.MaxInt64-99)/100 {
		return 0, fmt.Errorf("number out of range")
	}
	total := whole*100 + cents
	if negative {
		total = -total
	}
	return total, nil
}

// formatFixed2 renders integer hundredths as decimal text with exactly
// two fractional digits.
func formatFixed2(h int64) string {
	sign := ""
	if h < 0 {
		sign = "-"
		h = -h
	}
	return fmt.Sprintf("%s%d.%02d", sign, h/100, h%100)
}
