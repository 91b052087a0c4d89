package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"dealerops/storage"
)

var (
	mappingsListBrand  string
	mappingsListDBPath string
)

var mappingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List persisted cell mappings.",
	Long: `List cell mappings stored in the database, optionally filtered by brand.

Mappings order by brand, department, and metric key.`,
	Example: `
  # List every mapping
  dealerops mappings list

  # List mappings for one brand
  dealerops mappings list --brand nissan
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := storage.OpenSQLite(resolveDBPath(mappingsListDBPath))
		if err != nil {
			return err
		}
		defer store.Close()

		mappings, err := store.ListCellMappings(mappingsListBrand)
		if err != nil {
			return err
		}

		fmt.Printf("Mappings: %d\n", len(mappings))
		for _, m := range mappings {
			line := fmt.Sprintf("[%d] %s / %s / %s -> %s!%s", m.ID, m.Brand, m.Department, m.MetricKey, m.SheetName, m.CellRef)
			if m.NameCellRef != "" {
				line += fmt.Sprintf(" (name from %s)", m.NameCellRef)
			}
			if m.EffectiveYear != 0 {
				line += fmt.Sprintf(" (year %d)", m.EffectiveYear)
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	mappingsCmd.AddCommand(mappingsListCmd)

	mappingsListCmd.Flags().StringVar(&mappingsListBrand, "brand", "", "Only list mappings for this brand")
	mappingsListCmd.Flags().StringVar(&mappingsListDBPath, "db", "", "Path to local SQLite database (default from config storage.db_path)")
}
