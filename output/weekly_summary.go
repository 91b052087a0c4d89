package output

import (
	"fmt"
	"math"
	"sort"

	"dealerops/report"
)

// WeeklySummary is one technician's hours for one week, the row shape
// used by the weekly export and the web preview.
type WeeklySummary struct {
	Technician   string
	EmployeeID   string
	WeekStart    string
	SoldHours    float64
	ClockedHours float64
	Productivity *float64
}

// BuildWeeklySummaries rolls each technician's days up into weeks.
// Technicians keep their report order; weeks sort ascending within a
// technician.
func BuildWeeklySummaries(technicians []report.TechnicianData) []WeeklySummary {
	summaries := make([]WeeklySummary, 0, len(technicians))

	for i := range technicians {
		tech := &technicians[i]
		weeks := tech.WeeklyTotals()

		starts := make([]string, 0, len(weeks))
		for start := range weeks {
			starts = append(starts, start)
		}
		sort.Strings(starts)

		for _, start := range starts {
			hours := weeks[start]
			summaries = append(summaries, WeeklySummary{
				Technician:   tech.Name,
				EmployeeID:   tech.EmployeeID,
				WeekStart:    start,
				SoldHours:    roundHours(hours.Sold),
				ClockedHours: roundHours(hours.Clocked),
				Productivity: hours.Productivity(),
			})
		}
	}

	return summaries
}

func roundHours(value float64) float64 {
	return math.Round(value*100) / 100
}

func formatProductivity(value *float64) string {
	if value == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *value)
}

func WriteWeeklySummaries(path, format string, summaries []WeeklySummary) error {
	switch normalizeFormat(format) {
	case "csv":
		return writeWeeklySummariesCSV(path, summaries)
	case "excel", "xlsx":
		return writeWeeklySummariesExcel(path, summaries)
	default:
		return fmt.Errorf("unsupported output format for weekly summaries: %s", format)
	}
}
