package workbook

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	refPattern      = regexp.MustCompile(`^\$?([A-Za-z]{1,3})\$?([0-9]+)$`)
	sheetRefPattern = regexp.MustCompile(`^=?'?([^'!]+)'?!(\$?[A-Za-z]{1,3}\$?[0-9]+)$`)
)

// ParseRef parses an A1-style cell reference into 1-based column and row
// numbers. Absolute markers ($D$6) and lowercase letters are accepted.
func ParseRef(ref string) (col, row int, err error) {
	match := refPattern.FindStringSubmatch(strings.TrimSpace(ref))
	if match == nil {
		return 0, 0, fmt.Errorf("invalid cell reference %q", ref)
	}
	for _, letter := range strings.ToUpper(match[1]) {
		col = col*26 + int(letter-'A') + 1
	}
	row, err = strconv.Atoi(match[2])
	if err != nil || row < 1 {
		return 0, 0, fmt.Errorf("invalid cell reference %q", ref)
	}
	return col, row, nil
}

type sheetRef struct {
	sheet string
	ref   string
}

// parseSheetRef recognizes the one supported formula shape, a direct
// cross-sheet cell reference such as 'Nissan 5'!D6 or Summary!$B$12.
// Anything else (arithmetic, ranges, functions) is not followed.
func parseSheetRef(formula string) (sheetRef, bool) {
	match := sheetRefPattern.FindStringSubmatch(strings.TrimSpace(formula))
	if match == nil {
		return sheetRef{}, false
	}
	ref := strings.ToUpper(strings.ReplaceAll(match[2], "$", ""))
	return sheetRef{sheet: strings.TrimSpace(match[1]), ref: ref}, true
}
