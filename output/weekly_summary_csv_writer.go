package output

import (
	"encoding/csv"
	"fmt"
	"os"
)

func writeWeeklySummariesCSV(path string, summaries []WeeklySummary) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv output %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	headers := []string{"Technician", "EmployeeID", "WeekStart", "SoldHours", "ClockedHours", "Productivity"}
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}

	for _, summary := range summaries {
		row := []string{
			summary.Technician,
			summary.EmployeeID,
			summary.WeekStart,
			fmt.Sprintf("%.2f", summary.SoldHours),
			fmt.Sprintf("%.2f", summary.ClockedHours),
			formatProductivity(summary.Productivity),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv output: %w", err)
	}

	return nil
}
