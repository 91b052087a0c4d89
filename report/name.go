package report

import (
	"strings"
	"unicode"
)

const maxNameLength = 60

// LooksLikeName reports whether a cell plausibly holds a person's display
// name ("SMITH, JOHN", "Jane Doe") rather than a label or a number. The
// exclusion set is explicit so report-specific labels never have to be
// baked in here; matching is substring-based after normalization.
func LooksLikeName(value string, exclusions []string) bool {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || len(trimmed) > maxNameLength {
		return false
	}

	norm := Normalize(trimmed)
	if norm == "" {
		return false
	}
	for _, exclusion := range exclusions {
		if key := Normalize(exclusion); key != "" && strings.Contains(norm, key) {
			return false
		}
	}

	// A name needs at least two alphabetic words. Purely numeric tokens
	// (an employee number sharing the cell) are ignored; tokens mixing
	// letters and digits disqualify the cell.
	words := 0
	for _, token := range strings.FieldsFunc(trimmed, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	}) {
		letters, digits := 0, 0
		for _, r := range token {
			switch {
			case unicode.IsLetter(r):
				letters++
			case unicode.IsDigit(r):
				digits++
			}
		}
		switch {
		case letters > 0 && digits > 0:
			return false
		case letters > 0:
			words++
		}
	}
	return words >= 2
}
