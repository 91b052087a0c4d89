package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"dealerops/mapping"
	"dealerops/storage"
	"dealerops/workbook"
)

var (
	verifyInput     string
	verifyBrand     string
	verifyMonth     string
	verifyTolerance string
	verifyDBPath    string
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Cross-check a statement's sub-metric sums against their parents",
	Long: `Verify a financial statement workbook without writing anything.

The configured cell mappings are resolved against the workbook and every
parent metric is compared to the sum of its sub-metrics. Groups that differ
by more than the tolerance are reported.`,
	Example: `
  # Verify the February statement for nissan
  dealerops verify --input ./statement.xlsx --brand nissan --month 2026-02

  # Allow rounding drift up to half a unit
  dealerops verify --input ./statement.xlsx --brand nissan --month 2026-02 --tolerance 0.5
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tolerance, err := decimal.NewFromString(verifyTolerance)
		if err != nil {
			return fmt.Errorf("invalid tolerance %q: %w", verifyTolerance, err)
		}

		store, err := storage.OpenSQLite(resolveDBPath(verifyDBPath))
		if err != nil {
			return err
		}
		defer store.Close()

		mappings, err := store.ListCellMappings(verifyBrand)
		if err != nil {
			return err
		}

		wb, err := workbook.Load(verifyInput)
		if err != nil {
			return err
		}

		statement, diagnostics, err := mapping.NewResolver(logger).Resolve(wb, mappings, verifyBrand, verifyMonth)
		if err != nil {
			return err
		}
		printDiagnostics(diagnostics)

		findings := mapping.VerifyStatement(statement, tolerance)
		if len(findings) == 0 {
			fmt.Printf("Verified. Departments: %d, no inconsistencies above tolerance %s.\n", len(statement.Departments), tolerance.String())
			return nil
		}

		for _, finding := range findings {
			fmt.Printf("%s / %s: parent=%s, sub sum=%s\n", finding.Department, finding.Metric, finding.Parent.String(), finding.SubSum.String())
		}
		return fmt.Errorf("found %d inconsistent metric groups", len(findings))
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVarP(&verifyInput, "input", "i", "", "Path to the statement workbook (.xlsx, .xlsm or .xls)")
	verifyCmd.Flags().StringVar(&verifyBrand, "brand", "", "Brand the statement belongs to")
	verifyCmd.Flags().StringVar(&verifyMonth, "month", "", "Statement month (YYYY-MM)")
	verifyCmd.Flags().StringVar(&verifyTolerance, "tolerance", "0.01", "Largest accepted difference between a parent and its sub-metric sum")
	verifyCmd.Flags().StringVar(&verifyDBPath, "db", "", "Path to local SQLite database (default from config storage.db_path)")

	_ = verifyCmd.MarkFlagRequired("input")
	_ = verifyCmd.MarkFlagRequired("brand")
	_ = verifyCmd.MarkFlagRequired("month")
}
