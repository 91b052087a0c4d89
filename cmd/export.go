package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dealerops/internal/timeutil"
	"dealerops/output"
	"dealerops/storage"
)

var (
	exportMonth  string
	exportBrand  string
	exportFormat string
	exportOutput string
	exportDBPath string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored financial entries to CSV/Excel",
	Long: `Export the financial entries stored for one month.

Sub-metric rows are decoded into display name, parent metric and order columns
so the sheet reads like the statement did. Output format can be selected
explicitly via --format or inferred from the --output extension.`,
	Example: `
  # Export February to CSV
  dealerops export --month 2026-02 --output ./february.csv

  # Export a single brand to Excel
  dealerops export --month 2026-02 --brand nissan --output ./february-nissan.xlsx

  # Force Excel format independent of extension
  dealerops export --month 2026-02 --format excel --output ./february.out
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := timeutil.ParseMonth(exportMonth); err != nil {
			return fmt.Errorf("invalid month %q (expected YYYY-MM)", exportMonth)
		}

		format := exportFormat
		if strings.TrimSpace(format) == "" {
			inferred, err := output.FormatForPath(exportOutput)
			if err != nil {
				return err
			}
			format = inferred
		}

		writer, err := output.WriterForFormat(format)
		if err != nil {
			return err
		}

		store, err := storage.OpenSQLite(resolveDBPath(exportDBPath))
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.ListMonthEntries(exportMonth, exportBrand)
		if err != nil {
			return err
		}

		if err := writer.Write(exportOutput, entries); err != nil {
			return err
		}
		fmt.Printf("Export completed. Rows: %d, Format: %s, File: %s\n", len(entries), format, exportOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportMonth, "month", "", "Statement month to export (YYYY-MM)")
	exportCmd.Flags().StringVar(&exportBrand, "brand", "", "Restrict the export to one brand (optional)")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "Output format: csv|excel (optional, inferred from output extension)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path")
	exportCmd.Flags().StringVar(&exportDBPath, "db", "", "Path to local SQLite database (default from config storage.db_path)")

	_ = exportCmd.MarkFlagRequired("month")
	_ = exportCmd.MarkFlagRequired("output")
}
