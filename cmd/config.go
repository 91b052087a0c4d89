package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage dealerops configuration file values.",
	Long: `Create, edit, display, and delete the dealerops configuration file.

The configuration stores application-wide values and per-brand import policy:
- storage.db_path / server.port
- mail.url / mail.token / mail.from
- brands[].name / brands[].ytd_submetrics
- reports.name_exclusions / reports.header_scan_rows`,
	Example: `
  # Create default config in $HOME/.dealerops.yaml
  dealerops config create

  # Show active config and source file
  dealerops config show

  # Open active config in editor (creates example if missing)
  dealerops config edit

  # Delete active config file
  dealerops config delete
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
