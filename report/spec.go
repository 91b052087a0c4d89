// Package report locates and parses the service-department reports stores
// upload: service-advisor productivity and technician hours. The sheet
// geometry of these exports varies by DMS version, so nothing is matched
// by fixed coordinates; header rows, entity blocks and row categories are
// found heuristically, driven by explicit keyword data on the spec structs
// rather than hard-coded constants.
package report

import "regexp"

const (
	defaultScanRows   = 30
	defaultScanCols   = 5
	defaultMinMatches = 2
	defaultMinDates   = 2
)

// HeaderSpec drives header row detection. A row qualifies as the header
// when at least MinMatches distinct Keywords appear in its cells,
// case-insensitive, at any column positions.
type HeaderSpec struct {
	Keywords     []string
	LabelKeyword string
	MinMatches   int
	MaxScanRows  int
}

// Category pairs a canonical name with the keywords that select it.
// Categories are matched in slice order; put broad labels such as "total"
// last so specific ones win.
type Category struct {
	Name     string
	Keywords []string
}

// BlockSpec drives entity-block and section-marker detection.
type BlockSpec struct {
	EntityPattern  *regexp.Regexp
	SectionMarkers []string
	ScanCols       int
}

// ProductivitySpec carries every heuristic used by the advisor
// productivity parser.
type ProductivitySpec struct {
	Header   HeaderSpec
	Blocks   BlockSpec
	PayTypes []Category
}

// TechHoursSpec carries every heuristic used by the technician hours
// parser. The date row doubles as the header; it is located within
// DateScanRows by finding a row with at least MinDates parseable dates.
type TechHoursSpec struct {
	DateScanRows   int
	MinDates       int
	RowKinds       []Category
	SectionMarkers []string
	NameExclusions []string
	ScanCols       int
}

var advisorPattern = regexp.MustCompile(`(?i)^Advisor\s+(\d+)\s*-\s*(.+)$`)

func DefaultProductivitySpec() ProductivitySpec {
	return ProductivitySpec{
		Header: HeaderSpec{
			Keywords:     []string{"pay type", "ro count", "sold hours", "labor sales", "parts sales", "hours per ro"},
			LabelKeyword: "pay type",
			MinMatches:   defaultMinMatches,
			MaxScanRows:  defaultScanRows,
		},
		Blocks: BlockSpec{
			EntityPattern:  advisorPattern,
			SectionMarkers: []string{"All Repair Orders", "Department Total", "Grand Total"},
			ScanCols:       defaultScanCols,
		},
		PayTypes: []Category{
			{Name: "customer", Keywords: []string{"customer"}},
			{Name: "warranty", Keywords: []string{"warranty"}},
			{Name: "internal", Keywords: []string{"internal"}},
			{Name: "total", Keywords: []string{"total"}},
		},
	}
}

func DefaultTechHoursSpec() TechHoursSpec {
	return TechHoursSpec{
		DateScanRows: defaultScanRows,
		MinDates:     defaultMinDates,
		RowKinds: []Category{
			{Name: RowSoldHours, Keywords: []string{"sold hours", "flag hours", "flagged hours"}},
			{Name: RowClockedHours, Keywords: []string{"clocked in", "clock in", "actual hours", "attendance"}},
		},
		SectionMarkers: []string{"All Repair Orders", "Department Total", "Grand Total"},
		NameExclusions: []string{
			"total", "technician", "name", "date", "week", "hours",
			"department", "grand", "all repair orders", "page", "report",
		},
		ScanCols: defaultScanCols,
	}
}

// Row kinds produced by the technician hours classifier.
const (
	RowSoldHours    = "sold"
	RowClockedHours = "clocked"
)
