package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"dealerops/config"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show active configuration values.",
	Long: `Display the currently loaded configuration and the resolved config file path.

This command validates the configuration before printing values.`,
	Example: `
  # Show active configuration
  dealerops config show
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			fmt.Println("Invalid config:", err)
			return
		}

		if configPath := viper.ConfigFileUsed(); configPath != "" {
			fmt.Println("Config file loaded from:", configPath)
			fmt.Println("Configuration:")
			fmt.Printf("storage.db_path: %s\n", cfg.Storage.DBPath)
			fmt.Printf("server.port: %d\n", cfg.Server.Port)
			fmt.Printf("mail.url: %s\n", cfg.Mail.URL)
			fmt.Printf("mail.from: %s\n", cfg.Mail.From)
			fmt.Printf("mail.token set: %t\n", strings.TrimSpace(cfg.Mail.Token) != "")
			fmt.Printf("mail enabled: %t\n", cfg.Mail.Enabled())
			fmt.Printf("brands: %d\n", len(cfg.Brands))
			for i, brand := range cfg.Brands {
				fmt.Printf("brands[%d].name: %s\n", i, brand.Name)
				fmt.Printf("brands[%d].ytd_submetrics: %t\n", i, brand.YTDSubMetrics)
			}
			fmt.Printf("reports.header_scan_rows: %d\n", cfg.Reports.HeaderScanRows)
			fmt.Printf("reports.name_exclusions: %d\n", len(cfg.Reports.NameExclusions))
			for i, exclusion := range cfg.Reports.NameExclusions {
				fmt.Printf("reports.name_exclusions[%d]: %s\n", i, exclusion)
			}
		}
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
