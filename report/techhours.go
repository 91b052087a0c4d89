package report

import (
	"fmt"
	"strings"
	"time"

	"dealerops/internal/timeutil"
	"dealerops/workbook"
)

// Hours is a sold/clocked pair used for daily values and for weekly and
// monthly rollups alike.
type Hours struct {
	Sold    float64 `json:"sold"`
	Clocked float64 `json:"clocked"`
}

// Productivity is sold hours over clocked hours. Nil when no clocked
// hours exist; a zero denominator is a data gap, not a zero ratio.
func (h Hours) Productivity() *float64 {
	if h.Clocked == 0 {
		return nil
	}
	ratio := h.Sold / h.Clocked
	return &ratio
}

// TechnicianData holds one technician's hours keyed by calendar date
// (YYYY-MM-DD). Rollups are derived from the days on demand so merged
// data never carries stale totals.
type TechnicianData struct {
	Name       string           `json:"name"`
	EmployeeID string           `json:"employee_id"`
	Days       map[string]Hours `json:"days"`
}

// WeeklyTotals buckets the days by the Monday starting their week.
func (t *TechnicianData) WeeklyTotals() map[string]Hours {
	weeks := make(map[string]Hours)
	for day, hours := range t.Days {
		date, err := timeutil.ParseDay(day)
		if err != nil {
			continue
		}
		key := timeutil.DayKey(timeutil.MondayOf(date))
		total := weeks[key]
		total.Sold += hours.Sold
		total.Clocked += hours.Clocked
		weeks[key] = total
	}
	return weeks
}

// MonthlyTotals buckets the days by month key (YYYY-MM).
func (t *TechnicianData) MonthlyTotals() map[string]Hours {
	months := make(map[string]Hours)
	for day, hours := range t.Days {
		date, err := timeutil.ParseDay(day)
		if err != nil {
			continue
		}
		key := timeutil.MonthKey(date)
		total := months[key]
		total.Sold += hours.Sold
		total.Clocked += hours.Clocked
		months[key] = total
	}
	return months
}

// Total sums every recorded day.
func (t *TechnicianData) Total() Hours {
	var total Hours
	for _, hours := range t.Days {
		total.Sold += hours.Sold
		total.Clocked += hours.Clocked
	}
	return total
}

type TechHoursReport struct {
	Technicians []TechnicianData `json:"technicians"`
	Diagnostics Diagnostics      `json:"diagnostics,omitempty"`
}

// ParseTechHours parses a technician hours export from the first sheet.
// The date row maps columns to calendar days; technician blocks open at a
// row whose leading cell looks like a name and contain sold-hours and
// clocked-hours rows classified by their labels. A technician appearing
// in several blocks merges by date, later blocks replacing earlier values
// for the same day, so re-ingesting a repeated page cannot double-count.
func ParseTechHours(wb *workbook.Workbook, spec TechHoursSpec) (*TechHoursReport, error) {
	sheet := wb.FirstSheet()
	if sheet == nil {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows := sheet.Values()

	dateRow, dates, err := findDateRow(rows, spec)
	if err != nil {
		return nil, fmt.Errorf("technician hours: %w", err)
	}

	report := &TechHoursReport{}
	byName := make(map[string]*TechnicianData)
	var order []string
	var current *TechnicianData

	flush := func() {
		if current == nil {
			return
		}
		key := Normalize(current.Name)
		existing, seen := byName[key]
		if !seen {
			byName[key] = current
			order = append(order, key)
		} else {
			if existing.EmployeeID == "" {
				existing.EmployeeID = current.EmployeeID
			}
			for day, hours := range current.Days {
				existing.Days[day] = hours
			}
		}
		current = nil
	}

	blocks := BlockSpec{SectionMarkers: spec.SectionMarkers, ScanCols: spec.ScanCols}

	for r := dateRow + 1; r < len(rows); r++ {
		row := rows[r]
		if rowEmpty(row) {
			continue
		}
		if block, ok := DetectBlock(row, blocks); ok && block.Kind == BlockSection {
			flush()
			continue
		}

		col, text := firstNonEmpty(row, spec.ScanCols)
		if col < 0 {
			continue
		}

		if kind, ok := ClassifyLabel(text, spec.RowKinds); ok {
			if current == nil {
				report.Diagnostics.Add(sheet.Name, rowLocation(r), "%s row before any technician", kind)
				continue
			}
			accumulateHours(current, kind, row, dates, sheet.Name, r, &report.Diagnostics)
			continue
		}

		if LooksLikeName(text, spec.NameExclusions) {
			flush()
			name, id := splitNameAndID(text)
			if id == "" {
				id = trailingEmployeeID(row, col, spec.ScanCols)
			}
			current = &TechnicianData{Name: name, EmployeeID: id, Days: make(map[string]Hours)}
			continue
		}

		report.Diagnostics.Add(sheet.Name, rowLocation(r), "unrecognized row %q", text)
	}
	flush()

	report.Technicians = make([]TechnicianData, 0, len(order))
	for _, key := range order {
		report.Technicians = append(report.Technicians, *byName[key])
	}
	return report, nil
}

func accumulateHours(tech *TechnicianData, kind string, row []string, dates map[int]time.Time, sheetName string, r int, diagnostics *Diagnostics) {
	for col, raw := range row {
		day, isDateCol := dates[col]
		if !isDateCol {
			continue
		}
		value, ok := workbook.ParseNumber(raw)
		if !ok {
			if strings.TrimSpace(raw) != "" {
				diagnostics.Add(sheetName, rowLocation(r), "unparsable %s hours %q", kind, strings.TrimSpace(raw))
			}
			continue
		}
		key := timeutil.DayKey(day)
		hours := tech.Days[key]
		if kind == RowSoldHours {
			hours.Sold += value
		} else {
			hours.Clocked += value
		}
		tech.Days[key] = hours
	}
}

// findDateRow locates the row mapping columns to calendar days: the first
// row within the scan cap carrying at least MinDates parseable dates.
func findDateRow(rows [][]string, spec TechHoursSpec) (int, map[int]time.Time, error) {
	maxRows := spec.DateScanRows
	if maxRows <= 0 {
		maxRows = defaultScanRows
	}
	minDates := spec.MinDates
	if minDates <= 0 {
		minDates = defaultMinDates
	}

	for r := 0; r < len(rows) && r < maxRows; r++ {
		dates := make(map[int]time.Time)
		for c, text := range rows[r] {
			if when, ok := parseReportDate(text); ok {
				dates[c] = when
			}
		}
		if len(dates) >= minDates {
			return r, dates, nil
		}
	}
	return 0, nil, fmt.Errorf("no date row found in the first %d rows", maxRows)
}

var dateLayouts = []string{
	"1/2/2006",
	"1/2/06",
	"2006-01-02",
	"Jan 2, 2006",
	"2-Jan-06",
	"Mon 1/2/2006",
}

func parseReportDate(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

func firstNonEmpty(row []string, maxCols int) (int, string) {
	if maxCols <= 0 {
		maxCols = defaultScanCols
	}
	for c := 0; c < len(row) && c < maxCols; c++ {
		if text := strings.TrimSpace(row[c]); text != "" {
			return c, text
		}
	}
	return -1, ""
}

// splitNameAndID pulls an employee number out of a name cell such as
// "JOHNSON, MIKE #4521".
func splitNameAndID(text string) (string, string) {
	fields := strings.Fields(text)
	kept := make([]string, 0, len(fields))
	id := ""
	for _, field := range fields {
		if candidate := strings.TrimLeft(field, "#"); id == "" && isDigits(candidate) {
			id = candidate
			continue
		}
		kept = append(kept, field)
	}
	return strings.Join(kept, " "), id
}

func trailingEmployeeID(row []string, nameCol, scanCols int) string {
	if scanCols <= 0 {
		scanCols = defaultScanCols
	}
	for c := nameCol + 1; c < len(row) && c <= nameCol+scanCols; c++ {
		if candidate := strings.TrimSpace(row[c]); isDigits(candidate) {
			return candidate
		}
	}
	return ""
}

func isDigits(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
