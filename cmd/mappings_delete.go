package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"dealerops/storage"
)

var (
	mappingsDeleteID     int64
	mappingsDeleteDBPath string
)

var mappingsDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete one cell mapping by id.",
	Long: `Delete a single cell mapping.

Use "mappings list" to find the id. Stored entries produced by earlier imports
are not touched.`,
	Example: `
  # Delete mapping 12
  dealerops mappings delete --id 12
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if mappingsDeleteID <= 0 {
			return fmt.Errorf("--id must be > 0")
		}

		store, err := storage.OpenSQLite(resolveDBPath(mappingsDeleteDBPath))
		if err != nil {
			return err
		}
		defer store.Close()

		m, found, err := store.GetCellMappingByID(mappingsDeleteID)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("mapping %d not found", mappingsDeleteID)
		}

		deleted, err := store.DeleteCellMapping(mappingsDeleteID)
		if err != nil {
			return err
		}
		if !deleted {
			return fmt.Errorf("mapping %d not found", mappingsDeleteID)
		}

		fmt.Printf("Mapping deleted. ID: %d, %s / %s / %s -> %s!%s\n", m.ID, m.Brand, m.Department, m.MetricKey, m.SheetName, m.CellRef)
		return nil
	},
}

func init() {
	mappingsCmd.AddCommand(mappingsDeleteCmd)

	mappingsDeleteCmd.Flags().Int64Var(&mappingsDeleteID, "id", 0, "Mapping id to delete")
	mappingsDeleteCmd.Flags().StringVar(&mappingsDeleteDBPath, "db", "", "Path to local SQLite database (default from config storage.db_path)")

	_ = mappingsDeleteCmd.MarkFlagRequired("id")
}
