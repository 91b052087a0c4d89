package cmd

import "github.com/spf13/cobra"

var mappingsCmd = &cobra.Command{
	Use:   "mappings",
	Short: "Manage persisted cell mappings for financial statements.",
	Long: `Manage the cell mappings that resolve financial statement workbooks.

Each mapping names the sheet and cell feeding one department metric for one
brand. Sub-metric mappings use a metric key of the form sub:<parent>:<order>:<name>;
a name cell reference makes the sub-metric name follow the workbook instead.`,
	Example: `
  # List mappings for one brand
  dealerops mappings list --brand nissan

  # Add a single mapping
  dealerops mappings add --brand nissan --department "New Vehicle" --metric total_sales --sheet "Page 1" --cell C7

  # Bulk-load mappings from CSV
  dealerops mappings load -i ./nissan-mappings.csv

  # Delete a mapping by id
  dealerops mappings delete --id 12
`,
}

func init() {
	rootCmd.AddCommand(mappingsCmd)
}
