package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"dealerops/mapping"
	"dealerops/storage"
)

var (
	mappingsAddBrand      string
	mappingsAddDepartment string
	mappingsAddMetric     string
	mappingsAddSheet      string
	mappingsAddCell       string
	mappingsAddNameCell   string
	mappingsAddParent     string
	mappingsAddYear       int
	mappingsAddDBPath     string
)

var mappingsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add one cell mapping.",
	Long: `Insert a single cell mapping into the database.

For sub-metrics, pass the packed metric key directly (sub:<parent>:<order>:<name>)
and optionally --name-cell so the display name follows the workbook cell.`,
	Example: `
  # Map a plain department metric
  dealerops mappings add --brand nissan --department "New Vehicle" --metric total_sales --sheet "Page 1" --cell C7

  # Map a sub-metric with a dynamic name cell
  dealerops mappings add --brand nissan --department "New Vehicle" --metric "sub:total_sales:001:Retail" --sheet "Page 1" --cell C9 --name-cell A9

  # Scope a mapping to one statement year
  dealerops mappings add --brand nissan --department Service --metric labor_revenue --sheet "Page 3" --cell D12 --year 2026
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		m := mapping.CellMapping{
			Brand:         mappingsAddBrand,
			Department:    mappingsAddDepartment,
			MetricKey:     mappingsAddMetric,
			SheetName:     mappingsAddSheet,
			CellRef:       mappingsAddCell,
			NameCellRef:   mappingsAddNameCell,
			ParentMetric:  mappingsAddParent,
			EffectiveYear: mappingsAddYear,
		}
		if err := m.Validate(); err != nil {
			return err
		}

		store, err := storage.OpenSQLite(resolveDBPath(mappingsAddDBPath))
		if err != nil {
			return err
		}
		defer store.Close()

		id, err := store.InsertCellMapping(m)
		if err != nil {
			return err
		}

		fmt.Printf("Mapping added. ID: %d, %s / %s / %s -> %s!%s\n", id, m.Brand, m.Department, m.MetricKey, m.SheetName, m.CellRef)
		return nil
	},
}

func init() {
	mappingsCmd.AddCommand(mappingsAddCmd)

	mappingsAddCmd.Flags().StringVar(&mappingsAddBrand, "brand", "", "Brand the mapping belongs to")
	mappingsAddCmd.Flags().StringVar(&mappingsAddDepartment, "department", "", "Department the metric belongs to")
	mappingsAddCmd.Flags().StringVar(&mappingsAddMetric, "metric", "", "Metric key (plain name or sub:<parent>:<order>:<name>)")
	mappingsAddCmd.Flags().StringVar(&mappingsAddSheet, "sheet", "", "Sheet name holding the value cell")
	mappingsAddCmd.Flags().StringVar(&mappingsAddCell, "cell", "", "Value cell reference, for example C7")
	mappingsAddCmd.Flags().StringVar(&mappingsAddNameCell, "name-cell", "", "Optional cell reference whose text names the sub-metric")
	mappingsAddCmd.Flags().StringVar(&mappingsAddParent, "parent", "", "Optional parent metric override")
	mappingsAddCmd.Flags().IntVar(&mappingsAddYear, "year", 0, "Restrict the mapping to one statement year (0 = every year)")
	mappingsAddCmd.Flags().StringVar(&mappingsAddDBPath, "db", "", "Path to local SQLite database (default from config storage.db_path)")

	_ = mappingsAddCmd.MarkFlagRequired("brand")
	_ = mappingsAddCmd.MarkFlagRequired("department")
	_ = mappingsAddCmd.MarkFlagRequired("metric")
	_ = mappingsAddCmd.MarkFlagRequired("sheet")
	_ = mappingsAddCmd.MarkFlagRequired("cell")
}
