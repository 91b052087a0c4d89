package workbook

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var numericCleaner = strings.NewReplacer(
	"$", "",
	"€", "",
	"£", "",
	",", "",
	"%", "",
	" ", "",
	" ", "",
)

// cleanNumeric strips the formatting Excel reports wrap around numbers:
// currency symbols, thousands separators, percent signs and accounting
// parentheses for negatives. The second return is false when nothing
// numeric remains.
func cleanNumeric(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}

	negative := false
	if strings.HasPrefix(trimmed, "(") && strings.HasSuffix(trimmed, ")") {
		negative = true
		trimmed = trimmed[1 : len(trimmed)-1]
	}

	cleaned := strings.TrimSpace(numericCleaner.Replace(trimmed))
	if cleaned == "" || cleaned == "-" {
		return "", false
	}
	if negative && !strings.HasPrefix(cleaned, "-") {
		cleaned = "-" + cleaned
	}
	return cleaned, true
}

// ParseNumber converts a formatted cell value to a float. Empty and
// non-numeric values report ok=false; they are value gaps, not errors.
func ParseNumber(raw string) (float64, bool) {
	cleaned, ok := cleanNumeric(raw)
	if !ok {
		return 0, false
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// ParseDecimal is ParseNumber for money paths, keeping exact decimal
// precision.
func ParseDecimal(raw string) (decimal.Decimal, bool) {
	cleaned, ok := cleanNumeric(raw)
	if !ok {
		return decimal.Decimal{}, false
	}
	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return value, true
}
