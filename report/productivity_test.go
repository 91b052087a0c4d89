package report

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"dealerops/workbook"
)

func buildWorkbook(t *testing.T, rows [][]any) *workbook.Workbook {
	t.Helper()

	file := excelize.NewFile()
	for r, row := range rows {
		start, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := file.SetSheetRow("Sheet1", start, &row); err != nil {
			t.Fatalf("set row %d: %v", r+1, err)
		}
	}
	buf, err := file.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	wb, err := workbook.LoadXLSX(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("load workbook: %v", err)
	}
	return wb
}

func advisorByName(t *testing.T, parsed *ProductivityReport, name string) AdvisorData {
	t.Helper()
	for _, advisor := range parsed.Advisors {
		if advisor.Name == name {
			return advisor
		}
	}
	t.Fatalf("advisor %q not found", name)
	return AdvisorData{}
}

func TestParseProductivity(t *testing.T) {
	t.Parallel()

	wb := buildWorkbook(t, [][]any{
		{"Service Advisor Performance"},
		{},
		{"Pay Type", "RO Count", "Sold Hours", "Labor Sales"},
		{"Advisor 100 - SMITH, JOHN"},
		{"Customer Pay", 12, 34.5, "$1,234.50"},
		{"Warranty", 3, 8, "$500"},
		{"Internal", 1, 2, "(100)"},
		{"Total", 16, 44.5, "$1,634.50"},
		{"Shop Supplies", 1, 1, 1},
		{"All Repair Orders"},
		{"Customer Pay", 99, 99, 99},
		{"Advisor 200 - DOE, JANE"},
		{"Customer Pay", 5, 10, "$800"},
		{"Advisor 100 - SMITH, JOHN"},
		{"Customer Pay", 2, 3, "$100"},
		{"Grand Total"},
	})

	parsed, err := ParseProductivity(wb, DefaultProductivitySpec())
	if err != nil {
		t.Fatalf("ParseProductivity: %v", err)
	}

	if len(parsed.Advisors) != 2 {
		t.Fatalf("expected 2 advisors after merge, got %d", len(parsed.Advisors))
	}
	if parsed.Advisors[0].Name != "SMITH, JOHN" || parsed.Advisors[1].Name != "DOE, JANE" {
		t.Fatalf("advisors out of order: %s, %s", parsed.Advisors[0].Name, parsed.Advisors[1].Name)
	}

	smith := advisorByName(t, parsed, "SMITH, JOHN")
	if smith.AdvisorID != "100" {
		t.Fatalf("unexpected advisor id %q", smith.AdvisorID)
	}
	// The continuation block merges into the first appearance.
	if got := smith.Categories["customer"]["RO Count"]; got != 14 {
		t.Fatalf("customer RO Count = %v, want 14", got)
	}
	if got := smith.Categories["customer"]["Labor Sales"]; got != 1334.5 {
		t.Fatalf("customer Labor Sales = %v, want 1334.5", got)
	}
	if got := smith.Categories["internal"]["Labor Sales"]; got != -100 {
		t.Fatalf("internal Labor Sales = %v, want -100", got)
	}
	if got := smith.Categories["total"]["Sold Hours"]; got != 44.5 {
		t.Fatalf("total Sold Hours = %v, want 44.5", got)
	}

	doe := advisorByName(t, parsed, "DOE, JANE")
	if got := doe.Categories["customer"]["RO Count"]; got != 5 {
		t.Fatalf("rows after a section marker must not leak into the next advisor, got %v", got)
	}

	found := false
	for _, diag := range parsed.Diagnostics {
		if diag.Reason == `unrecognized pay type "Shop Supplies"` {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a diagnostic for the unrecognized pay type, got %+v", parsed.Diagnostics)
	}
}

func TestParseProductivityWithoutHeader(t *testing.T) {
	t.Parallel()

	wb := buildWorkbook(t, [][]any{
		{"no"},
		{"recognizable"},
		{"header"},
	})
	if _, err := ParseProductivity(wb, DefaultProductivitySpec()); err == nil {
		t.Fatal("expected a structural error when the header is missing")
	}
}

func TestParseProductivityValueGaps(t *testing.T) {
	t.Parallel()

	wb := buildWorkbook(t, [][]any{
		{"Pay Type", "RO Count", "Sold Hours"},
		{"Advisor 1 - GAP, GUY"},
		{"Customer Pay", "", "n/a"},
	})

	parsed, err := ParseProductivity(wb, DefaultProductivitySpec())
	if err != nil {
		t.Fatalf("value gaps must not abort the parse: %v", err)
	}
	advisor := advisorByName(t, parsed, "GAP, GUY")
	if _, ok := advisor.Categories["customer"]["RO Count"]; ok {
		t.Fatal("empty cells must not produce metric values")
	}
	if _, ok := advisor.Categories["customer"]["Sold Hours"]; ok {
		t.Fatal("unparsable cells must not produce metric values")
	}
	if len(parsed.Diagnostics) == 0 {
		t.Fatal("unparsable non-empty cells should be reported as diagnostics")
	}
}
