package report

import (
	"fmt"
	"strings"
)

// HeaderInfo describes a located header row. Row is the 0-based index
// into the sheet rows; Columns holds the raw header texts; LabelCol is
// the column carrying row labels, -1 when the spec names none or the
// keyword was not found.
type HeaderInfo struct {
	Row      int
	Columns  []string
	LabelCol int
}

// FindHeader scans at most spec.MaxScanRows rows for the header. Rows
// with fewer than spec.MinMatches distinct keyword hits are passed over;
// running out of rows is a structural failure.
func FindHeader(rows [][]string, spec HeaderSpec) (HeaderInfo, error) {
	maxRows := spec.MaxScanRows
	if maxRows <= 0 {
		maxRows = defaultScanRows
	}
	minMatches := spec.MinMatches
	if minMatches <= 0 {
		minMatches = defaultMinMatches
	}

	for r := 0; r < len(rows) && r < maxRows; r++ {
		matched := make(map[string]struct{})
		labelCol := -1
		for c, text := range rows[r] {
			norm := Normalize(text)
			if norm == "" {
				continue
			}
			for _, keyword := range spec.Keywords {
				if strings.Contains(norm, Normalize(keyword)) {
					matched[keyword] = struct{}{}
				}
			}
			if labelCol == -1 && spec.LabelKeyword != "" && strings.Contains(norm, Normalize(spec.LabelKeyword)) {
				labelCol = c
			}
		}
		if len(matched) >= minMatches {
			return HeaderInfo{Row: r, Columns: rows[r], LabelCol: labelCol}, nil
		}
	}
	return HeaderInfo{}, fmt.Errorf("no header row found in the first %d rows", maxRows)
}

// Column returns the trimmed header text for a 0-based column, empty when
// the column lies beyond the header.
func (h HeaderInfo) Column(col int) string {
	if col < 0 || col >= len(h.Columns) {
		return ""
	}
	return strings.TrimSpace(h.Columns[col])
}
