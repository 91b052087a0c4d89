package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"dealerops/internal/timeutil"
	"dealerops/storage"
)

var (
	deleteMonth  string
	deleteBrand  string
	deleteAll    bool
	deleteDBPath string
)

var (
	deletePromptInput  io.Reader = os.Stdin
	deletePromptOutput io.Writer = os.Stdout
)

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete stored entries for a month, or the whole database file",
	Long: `Destructive database cleanup command.

With --month the financial entries stored for that month are removed, optionally
restricted to one brand with --brand. With --all the complete SQLite database
file is deleted. Before deletion, an interactive security prompt requires typing
exactly "Y".`,
	Example: `
  # Delete the February entries (requires interactive confirmation)
  dealerops delete --month 2026-02

  # Delete the February entries for one brand only
  dealerops delete --month 2026-02 --brand nissan

  # Delete the complete SQLite file
  dealerops delete --all --db ./dealerops.db
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if deleteAll && deleteMonth != "" {
			return fmt.Errorf("--month and --all are mutually exclusive")
		}
		if !deleteAll && deleteMonth == "" {
			return fmt.Errorf("either --month or --all is required")
		}

		dbPath := resolveDBPath(deleteDBPath)

		if deleteAll {
			confirmed, err := confirmDeletePrompt(deletePromptInput, deletePromptOutput, fmt.Sprintf("database file %q", dbPath))
			if err != nil {
				return err
			}
			if !confirmed {
				return fmt.Errorf("delete aborted: confirmation was not 'Y'")
			}

			if err := removeDatabaseFile(dbPath); err != nil {
				return err
			}
			fmt.Printf("Deleted database file: %s\n", dbPath)
			return nil
		}

		if _, err := timeutil.ParseMonth(deleteMonth); err != nil {
			return fmt.Errorf("invalid month %q (expected YYYY-MM)", deleteMonth)
		}

		subject := fmt.Sprintf("entries for %s", deleteMonth)
		if deleteBrand != "" {
			subject = fmt.Sprintf("entries for %s (brand %s)", deleteMonth, deleteBrand)
		}
		confirmed, err := confirmDeletePrompt(deletePromptInput, deletePromptOutput, subject)
		if err != nil {
			return err
		}
		if !confirmed {
			return fmt.Errorf("delete aborted: confirmation was not 'Y'")
		}

		store, err := storage.OpenSQLite(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		deleted, err := store.DeleteMonthEntries(deleteMonth, deleteBrand)
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %d entries for %s\n", deleted, deleteMonth)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)

	deleteCmd.Flags().StringVar(&deleteMonth, "month", "", "Delete the entries stored for this month (YYYY-MM)")
	deleteCmd.Flags().StringVar(&deleteBrand, "brand", "", "Restrict --month deletion to one brand")
	deleteCmd.Flags().BoolVar(&deleteAll, "all", false, "Delete the complete SQLite database file")
	deleteCmd.Flags().StringVar(&deleteDBPath, "db", "", "Path to local SQLite database (default from config storage.db_path)")
}

func confirmDeletePrompt(input io.Reader, output io.Writer, subject string) (bool, error) {
	if input == nil {
		return false, fmt.Errorf("delete confirmation input is not available")
	}

	if output == nil {
		output = io.Discard
	}

	if _, err := fmt.Fprintf(output, "Delete %s? Type Y to confirm: ", subject); err != nil {
		return false, fmt.Errorf("write delete confirmation prompt: %w", err)
	}

	line, err := bufio.NewReader(input).ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			line = strings.TrimSpace(line)
			return line == "Y", nil
		}
		return false, fmt.Errorf("read delete confirmation: %w", err)
	}
	return strings.TrimSpace(line) == "Y", nil
}

func removeDatabaseFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("database file not found: %s", path)
		}
		return fmt.Errorf("stat database file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("database path is a directory: %s", path)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("delete database file: %w", err)
	}
	return nil
}
