package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"dealerops/importer"
	"dealerops/storage"
)

var (
	mappingsLoadInput  string
	mappingsLoadDBPath string
)

var mappingsLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Bulk-load cell mappings from a CSV file.",
	Long: `Read cell mappings from a CSV file and upsert them into the database.

The header row names the columns; order and spelling variants do not matter
("Cell Reference", "cell_ref" and "cell" all match). Existing mappings with the
same brand, department, metric key, and year are overwritten in place. Every
row is validated before anything is written.`,
	Example: `
  # Load a brand's mapping sheet
  dealerops mappings load -i ./nissan-mappings.csv

  # Load into an explicit database file
  dealerops mappings load -i ./nissan-mappings.csv --db ./dealerops.db
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mappings, err := importer.ReadMappingsCSV(mappingsLoadInput)
		if err != nil {
			return err
		}

		store, err := storage.OpenSQLite(resolveDBPath(mappingsLoadDBPath))
		if err != nil {
			return err
		}
		defer store.Close()

		written, err := store.UpsertCellMappings(mappings)
		if err != nil {
			return err
		}

		fmt.Printf("Mappings loaded. Rows read: %d, Rows written: %d, File: %s\n", len(mappings), written, mappingsLoadInput)
		return nil
	},
}

func init() {
	mappingsCmd.AddCommand(mappingsLoadCmd)

	mappingsLoadCmd.Flags().StringVarP(&mappingsLoadInput, "input", "i", "", "CSV file with mapping rows")
	mappingsLoadCmd.Flags().StringVar(&mappingsLoadDBPath, "db", "", "Path to local SQLite database (default from config storage.db_path)")

	_ = mappingsLoadCmd.MarkFlagRequired("input")
}
