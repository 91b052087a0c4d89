/*
Copyright © 2025 riad@rsworld.eu

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"github.com/spf13/viper"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"dealerops/config"
)

var (
	cfgFile string
	verbose bool
	logger  *zap.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dealerops",
	Short: "Parse dealership Excel reports, import financial statements, and review stored results.",
	Long: `
**********************************************
*              DEALER OPS                    *
**********************************************

This CLI parses service advisor productivity and technician hours workbooks,
imports monthly financial statements into a local SQLite database through
persisted cell mappings, verifies sub-metric groups against parent totals,
renders and sends report emails, and serves a local review UI.

Supported workbook formats:
- Excel: .xlsx, .xlsm, .xls
`,
	Example: `
  # Create configuration file
  dealerops config create

  # Parse a service advisor productivity workbook
  dealerops parse -i AdvisorPerformance202602.xlsx --kind productivity --json

  # Parse technician hours and export weekly rollups
  dealerops parse -i TechHours202602.xls --kind techhours --weekly-out ./weekly.csv

  # Import a monthly financial statement
  dealerops import -i NissanStatement202602.xlsx --brand nissan --month 2026-02

  # Preview an import without writing (dry run)
  dealerops import -i NissanStatement202602.xlsx --brand nissan --month 2026-02 --dry-run

  # Verify sub-metric groups against their parent totals
  dealerops verify -i NissanStatement202602.xlsx --brand nissan --month 2026-02

  # Export stored entries for a month
  dealerops export --month 2026-02 --output ./entries.csv

  # Email a rendered report
  dealerops email -i AdvisorPerformance202602.xlsx --to controller@dealer.example --month 2026-02

  # Start the local review UI
  dealerops serve
`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	config.SetDefaults()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "configFile", "", "Config file override (default discovery: $HOME/.dealerops.yaml, then ./.dealerops.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		built, err := buildLogger(verbose)
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
		logger = built

		if !requiresConfig(cmd) {
			return nil
		}
		_, err = config.LoadAndValidate()
		return err
	}
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	}
}

func requiresConfig(cmd *cobra.Command) bool {
	return cmd != nil && (cmd.Name() == "import" || cmd.Name() == "serve")
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

// resolveDBPath picks the database path in flag, config, default order.
func resolveDBPath(flagValue string) string {
	if strings.TrimSpace(flagValue) != "" {
		return flagValue
	}
	if path := viper.GetString(config.KeyStorageDBPath); strings.TrimSpace(path) != "" {
		return path
	}
	return config.DefaultDBPath
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".dealerops" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".dealerops")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "No config file found. Create one first with: dealerops config create")
	}
}
