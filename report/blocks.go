package report

import "strings"

type BlockKind int

const (
	BlockEntity BlockKind = iota
	BlockSection
)

// Block is a detected block boundary: either the start of an entity
// section ("Advisor 1234 - Jane Doe") or a summary section marker that
// ends the current entity.
type Block struct {
	Kind   BlockKind
	Number string
	Name   string
	Marker string
	Col    int
}

// DetectBlock scans the first spec.ScanCols cells of a row left to right
// and stops at the first cell matching a section marker or the entity
// pattern. Rows matching neither report ok=false.
func DetectBlock(row []string, spec BlockSpec) (Block, bool) {
	cols := spec.ScanCols
	if cols <= 0 {
		cols = defaultScanCols
	}

	for c := 0; c < len(row) && c < cols; c++ {
		text := strings.TrimSpace(row[c])
		if text == "" {
			continue
		}
		norm := Normalize(text)
		for _, marker := range spec.SectionMarkers {
			if key := Normalize(marker); key != "" && strings.Contains(norm, key) {
				return Block{Kind: BlockSection, Marker: marker, Name: text, Col: c}, true
			}
		}
		if spec.EntityPattern != nil {
			if m := spec.EntityPattern.FindStringSubmatch(text); m != nil {
				return Block{
					Kind:   BlockEntity,
					Number: strings.TrimSpace(m[1]),
					Name:   strings.TrimSpace(m[2]),
					Col:    c,
				}, true
			}
		}
	}
	return Block{}, false
}
