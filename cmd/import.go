package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dealerops/config"
	"dealerops/importer"
	"dealerops/storage"
)

var (
	importInput   string
	importBrand   string
	importMonth   string
	importDBPath  string
	importDryRun  bool
	importYTDMode string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a monthly financial statement into the local SQLite database",
	Long: `Resolve one financial statement workbook through the brand's persisted cell
mappings and replace the stored month for every mapped department.

Each resolved metric is classified as new, changed, or unchanged against the
currently stored entries. With --dry-run the classification is printed and
nothing is written.

Brands configured with ytd_submetrics report sub-metric values as year-to-date
totals; those are converted to monthly values using the prior month's stored
snapshots. The --ytd flag can force the conversion on or off for one run.`,
	Example: `
  # Import a statement for one brand and month
  dealerops import -i NissanStatement202602.xlsx --brand nissan --month 2026-02

  # Preview the import without writing
  dealerops import -i NissanStatement202602.xlsx --brand nissan --month 2026-02 --dry-run

  # Force year-to-date conversion off for this run
  dealerops import -i NissanStatement202602.xlsx --brand nissan --month 2026-02 --ytd off

  # Import with custom config file
  dealerops --configFile ./custom-dealerops.yaml import -i ./statement.xlsx --brand nissan --month 2026-02
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		configDefault := false
		if policy, ok := cfg.BrandPolicy(importBrand); ok {
			configDefault = policy.YTDSubMetrics
		}
		convertYTD, err := resolveYTDMode(importYTDMode, configDefault)
		if err != nil {
			return err
		}

		store, err := storage.OpenSQLite(resolveDBPath(importDBPath))
		if err != nil {
			return err
		}
		defer store.Close()

		result, err := importer.Run(store, importInput, importer.RunOptions{
			Brand:      importBrand,
			Month:      importMonth,
			DryRun:     importDryRun,
			ConvertYTD: convertYTD,
			Log:        logger,
		})
		if err != nil {
			return err
		}

		verb := "Import completed."
		if result.DryRun {
			verb = "Dry run completed, nothing written."
		}
		fmt.Printf("%s Departments: %d, Metrics: %d, Sub-metrics: %d, New: %d, Changed: %d, Unchanged: %d, Entries persisted: %d\n",
			verb,
			result.Departments,
			result.Metrics,
			result.SubMetrics,
			result.New,
			result.Changed,
			result.Unchanged,
			result.EntriesWritten,
		)
		for _, change := range result.Changes {
			fmt.Printf("Changed %s / %s: %s -> %s\n", change.Department, change.Metric, change.Previous, change.Current)
		}
		printDiagnostics(result.Diagnostics)

		if !result.DryRun {
			fmt.Printf("Batch: %s\n", result.BatchID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVarP(&importInput, "input", "i", "", "Financial statement workbook path")
	importCmd.Flags().StringVar(&importBrand, "brand", "", "Brand whose cell mappings resolve the statement")
	importCmd.Flags().StringVar(&importMonth, "month", "", "Statement month, format YYYY-MM")
	importCmd.Flags().StringVar(&importDBPath, "db", "", "Path to local SQLite database (default from config storage.db_path)")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Classify against stored entries without writing")
	importCmd.Flags().StringVar(&importYTDMode, "ytd", "auto", "Year-to-date sub-metric conversion: auto|on|off")

	_ = importCmd.MarkFlagRequired("input")
	_ = importCmd.MarkFlagRequired("brand")
	_ = importCmd.MarkFlagRequired("month")
}

func resolveYTDMode(mode string, configDefault bool) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "auto":
		return configDefault, nil
	case "on", "true", "yes":
		return true, nil
	case "off", "false", "no":
		return false, nil
	default:
		return false, fmt.Errorf("invalid ytd mode %q (supported: auto|on|off)", mode)
	}
}
