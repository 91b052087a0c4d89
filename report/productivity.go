package report

import (
	"fmt"
	"strings"

	"dealerops/workbook"
)

// AdvisorData aggregates one service advisor's numbers, nested as
// pay-type category → metric label → value. Metric labels come from the
// located header row.
type AdvisorData struct {
	Name       string                        `json:"name"`
	AdvisorID  string                        `json:"advisor_id"`
	Categories map[string]map[string]float64 `json:"categories"`
}

type ProductivityReport struct {
	Advisors    []AdvisorData `json:"advisors"`
	Diagnostics Diagnostics   `json:"diagnostics,omitempty"`
}

// ParseProductivity parses a service-advisor productivity export. The
// report lives on the first sheet. Advisor blocks open with a cell
// matching the entity pattern and close at the next block or section
// marker; rows inside a block are keyed by the pay-type label column.
// Advisors repeated across continuation pages merge into one entry, so
// display names are unique in the result.
func ParseProductivity(wb *workbook.Workbook, spec ProductivitySpec) (*ProductivityReport, error) {
	sheet := wb.FirstSheet()
	if sheet == nil {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows := sheet.Values()

	header, err := FindHeader(rows, spec.Header)
	if err != nil {
		return nil, fmt.Errorf("advisor productivity: %w", err)
	}
	labelCol := header.LabelCol
	if labelCol < 0 {
		labelCol = 0
	}

	report := &ProductivityReport{}
	byName := make(map[string]*AdvisorData)
	var order []string
	var current *AdvisorData

	for r := header.Row + 1; r < len(rows); r++ {
		row := rows[r]
		if rowEmpty(row) {
			continue
		}

		if block, ok := DetectBlock(row, spec.Blocks); ok {
			if block.Kind == BlockSection {
				current = nil
				continue
			}
			key := Normalize(block.Name)
			advisor, seen := byName[key]
			if !seen {
				advisor = &AdvisorData{
					Name:       block.Name,
					AdvisorID:  block.Number,
					Categories: make(map[string]map[string]float64),
				}
				byName[key] = advisor
				order = append(order, key)
			}
			current = advisor
			continue
		}

		if current == nil {
			continue
		}

		label := ""
		if labelCol < len(row) {
			label = row[labelCol]
		}
		category, ok := ClassifyLabel(label, spec.PayTypes)
		if !ok {
			if strings.TrimSpace(label) != "" {
				report.Diagnostics.Add(sheet.Name, rowLocation(r), "unrecognized pay type %q", strings.TrimSpace(label))
			}
			continue
		}

		metrics := current.Categories[category]
		if metrics == nil {
			metrics = make(map[string]float64)
			current.Categories[category] = metrics
		}
		for c, raw := range row {
			if c == labelCol {
				continue
			}
			metric := header.Column(c)
			if metric == "" {
				continue
			}
			value, ok := workbook.ParseNumber(raw)
			if !ok {
				if strings.TrimSpace(raw) != "" {
					report.Diagnostics.Add(sheet.Name, rowLocation(r), "unparsable %s value %q", metric, strings.TrimSpace(raw))
				}
				continue
			}
			metrics[metric] += value
		}
	}

	report.Advisors = make([]AdvisorData, 0, len(order))
	for _, key := range order {
		report.Advisors = append(report.Advisors, *byName[key])
	}
	return report, nil
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
