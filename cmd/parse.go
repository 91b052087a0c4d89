package cmd

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"dealerops/config"
	"dealerops/output"
	"dealerops/report"
	"dealerops/workbook"
)

var (
	parseInput        string
	parseKind         string
	parseJSON         bool
	parseWeeklyOut    string
	parseWeeklyFormat string
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse a service report workbook and print the extracted data",
	Long: `Read one Excel workbook, locate the report structure heuristically, and print
the extracted per-person numbers.

Kinds:
- productivity: service advisor productivity export (pay-type categories per advisor)
- techhours: technician hours export (sold/clocked hours per technician and day)

Rows the parser cannot place are reported as warnings, never silently dropped.
For techhours, --weekly-out additionally writes per-week rollups to CSV or Excel.`,
	Example: `
  # Print advisor productivity as a summary
  dealerops parse -i AdvisorPerformance202602.xlsx --kind productivity

  # Print the full parse result as JSON
  dealerops parse -i AdvisorPerformance202602.xlsx --kind productivity --json

  # Parse technician hours from a legacy .xls export
  dealerops parse -i TechHours202602.xls --kind techhours

  # Write weekly technician rollups next to the summary
  dealerops parse -i TechHours202602.xls --kind techhours --weekly-out ./weekly.xlsx
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		kind := strings.ToLower(strings.TrimSpace(parseKind))
		if kind != "productivity" && kind != "techhours" {
			return fmt.Errorf("invalid parse kind %q (supported: productivity|techhours)", parseKind)
		}
		if parseWeeklyOut != "" && kind != "techhours" {
			return fmt.Errorf("--weekly-out applies to --kind techhours only")
		}

		wb, err := workbook.Load(parseInput)
		if err != nil {
			return err
		}

		switch kind {
		case "productivity":
			parsed, err := report.ParseProductivity(wb, cfg.ProductivitySpec())
			if err != nil {
				return err
			}
			if parseJSON {
				return printJSON(parsed)
			}
			printProductivitySummary(parsed)
		case "techhours":
			parsed, err := report.ParseTechHours(wb, cfg.TechHoursSpec())
			if err != nil {
				return err
			}
			if parseJSON {
				if err := printJSON(parsed); err != nil {
					return err
				}
			} else {
				printTechHoursSummary(parsed)
			}
			if parseWeeklyOut != "" {
				if err := writeWeeklyRollups(parsed, parseWeeklyOut, parseWeeklyFormat); err != nil {
					return err
				}
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVarP(&parseInput, "input", "i", "", "Input workbook path (.xlsx, .xlsm, .xls)")
	parseCmd.Flags().StringVarP(&parseKind, "kind", "k", "productivity", "Report kind: productivity|techhours")
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "Print the full parse result as JSON")
	parseCmd.Flags().StringVar(&parseWeeklyOut, "weekly-out", "", "Write weekly technician rollups to this file (techhours only)")
	parseCmd.Flags().StringVar(&parseWeeklyFormat, "weekly-format", "", "Weekly rollup format: csv|excel (optional, inferred from extension)")

	_ = parseCmd.MarkFlagRequired("input")
}

func printJSON(value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode parse result: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func printProductivitySummary(parsed *report.ProductivityReport) {
	fmt.Printf("Parsed advisor productivity. Advisors: %d, Warnings: %d\n", len(parsed.Advisors), len(parsed.Diagnostics))

	for _, advisor := range parsed.Advisors {
		fmt.Printf("%s (#%s)\n", advisor.Name, advisor.AdvisorID)

		categories := make([]string, 0, len(advisor.Categories))
		for category := range advisor.Categories {
			categories = append(categories, category)
		}
		sort.Strings(categories)

		for _, category := range categories {
			metrics := advisor.Categories[category]
			labels := make([]string, 0, len(metrics))
			for label := range metrics {
				labels = append(labels, label)
			}
			sort.Strings(labels)

			parts := make([]string, 0, len(labels))
			for _, label := range labels {
				parts = append(parts, fmt.Sprintf("%s=%.2f", label, metrics[label]))
			}
			fmt.Printf("  %s: %s\n", category, strings.Join(parts, ", "))
		}
	}
	printDiagnostics(parsed.Diagnostics)
}

func printTechHoursSummary(parsed *report.TechHoursReport) {
	fmt.Printf("Parsed technician hours. Technicians: %d, Warnings: %d\n", len(parsed.Technicians), len(parsed.Diagnostics))

	for i := range parsed.Technicians {
		tech := &parsed.Technicians[i]
		total := tech.Total()
		fmt.Printf("%s (#%s): days=%d, sold=%.2f, clocked=%.2f, productivity=%s\n",
			tech.Name,
			tech.EmployeeID,
			len(tech.Days),
			total.Sold,
			total.Clocked,
			formatRatio(total.Productivity()),
		)
	}
	printDiagnostics(parsed.Diagnostics)
}

func writeWeeklyRollups(parsed *report.TechHoursReport, path, format string) error {
	if strings.TrimSpace(format) == "" {
		inferred, err := output.FormatForPath(path)
		if err != nil {
			return err
		}
		format = inferred
	}

	summaries := output.BuildWeeklySummaries(parsed.Technicians)
	if err := output.WriteWeeklySummaries(path, format, summaries); err != nil {
		return err
	}
	fmt.Printf("Weekly rollups written. Rows: %d, Format: %s, File: %s\n", len(summaries), format, path)
	return nil
}

func printDiagnostics(diagnostics report.Diagnostics) {
	for _, d := range diagnostics {
		fmt.Printf("Warning: %s %s: %s\n", d.Sheet, d.Location, d.Reason)
	}
}

func formatRatio(value *float64) string {
	if value == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", *value*100)
}
