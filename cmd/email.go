package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"dealerops/config"
	"dealerops/email"
	"dealerops/internal/timeutil"
	"dealerops/mailer"
	"dealerops/report"
	"dealerops/storage"
	"dealerops/workbook"
)

var (
	emailInput      string
	emailKind       string
	emailTo         string
	emailBrand      string
	emailMonth      string
	emailDealership string
	emailOut        string
	emailDBPath     string
)

var emailCmd = &cobra.Command{
	Use:   "email",
	Short: "Render an operations report as HTML email and send it",
	Long: `Render a report as an HTML email and hand it to the configured mail relay.

The productivity and techhours kinds parse a report workbook given with
--input. The statement kind renders the financial entries already stored for
--brand and --month, no workbook needed.

With --out the rendered HTML is written to a file instead, which needs no
mail configuration and is handy for previewing the layout.`,
	Example: `
  # Email the advisor productivity report
  dealerops email --input ./advisors.xlsx --to manager@example.com --month 2026-02 --dealership "Henley Nissan"

  # Email technician hours to several recipients
  dealerops email --input ./hours.xls --kind techhours --to "manager@example.com, owner@example.com"

  # Email the stored February statement
  dealerops email --kind statement --brand nissan --month 2026-02 --to owner@example.com

  # Preview the rendered HTML without sending
  dealerops email --input ./advisors.xlsx --out ./preview.html
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		kind := strings.TrimSpace(strings.ToLower(emailKind))
		switch kind {
		case "productivity", "techhours", "statement":
		default:
			return fmt.Errorf("invalid report kind %q (supported: productivity|techhours|statement)", emailKind)
		}
		if emailMonth != "" {
			if _, err := timeutil.ParseMonth(emailMonth); err != nil {
				return fmt.Errorf("invalid month %q (expected YYYY-MM)", emailMonth)
			}
		}

		var (
			html    string
			subject string
		)
		if kind == "statement" {
			if emailBrand == "" || emailMonth == "" {
				return fmt.Errorf("--brand and --month are required for --kind statement")
			}

			store, err := storage.OpenSQLite(resolveDBPath(emailDBPath))
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.ListMonthEntries(emailMonth, emailBrand)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				return fmt.Errorf("no entries stored for brand %s in %s", emailBrand, emailMonth)
			}

			statement := storage.StatementFromEntries(emailBrand, emailMonth, entries)
			html, err = email.RenderStatementEmail(statement, email.Meta{
				Dealership: emailDealership,
				Brand:      emailBrand,
				Month:      emailMonth,
			})
			if err != nil {
				return err
			}
			subject = "Financial statement"
		} else {
			if emailInput == "" {
				return fmt.Errorf("--input is required for --kind %s", kind)
			}

			wb, err := workbook.Load(emailInput)
			if err != nil {
				return err
			}

			meta := email.Meta{
				Dealership: emailDealership,
				Month:      emailMonth,
				SourceFile: filepath.Base(emailInput),
			}

			switch kind {
			case "productivity":
				parsed, err := report.ParseProductivity(wb, cfg.ProductivitySpec())
				if err != nil {
					return err
				}
				printDiagnostics(parsed.Diagnostics)
				html, err = email.RenderAdvisorEmail(parsed, meta)
				if err != nil {
					return err
				}
				subject = "Service advisor productivity"
			case "techhours":
				parsed, err := report.ParseTechHours(wb, cfg.TechHoursSpec())
				if err != nil {
					return err
				}
				printDiagnostics(parsed.Diagnostics)
				html, err = email.RenderTechHoursEmail(parsed, meta)
				if err != nil {
					return err
				}
				subject = "Technician hours"
			}
		}

		if emailOut != "" {
			if err := os.WriteFile(emailOut, []byte(html), 0o644); err != nil {
				return err
			}
			fmt.Printf("Rendered %s report to %s\n", kind, emailOut)
			return nil
		}

		recipients := splitAddressList(emailTo)
		if len(recipients) == 0 {
			return fmt.Errorf("at least one recipient is required (--to), or use --out to render to a file")
		}
		if !cfg.Mail.Enabled() {
			return fmt.Errorf("mail delivery is not configured; set mail.url, mail.token and mail.from, or use --out to render to a file")
		}

		client, err := mailer.NewClient(mailer.ClientConfig{
			BaseURL:   cfg.Mail.URL,
			APIToken:  cfg.Mail.Token,
			From:      cfg.Mail.From,
			UserAgent: "dealerops-email/1.0",
		})
		if err != nil {
			return err
		}

		if emailMonth != "" {
			subject = fmt.Sprintf("%s for %s", subject, timeutil.MonthLabel(emailMonth))
		}
		receipt, err := client.Send(cmd.Context(), mailer.Message{
			To:      recipients,
			Subject: subject,
			HTML:    html,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Email sent. ID: %s, Accepted: %d\n", receipt.ID, receipt.Accepted)
		return nil
	},
}

// splitAddressList accepts comma or semicolon separated addresses and
// drops empty items.
func splitAddressList(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';'
	})
	addresses := make([]string, 0, len(fields))
	for _, field := range fields {
		if trimmed := strings.TrimSpace(field); trimmed != "" {
			addresses = append(addresses, trimmed)
		}
	}
	return addresses
}

func init() {
	rootCmd.AddCommand(emailCmd)

	emailCmd.Flags().StringVarP(&emailInput, "input", "i", "", "Path to the report workbook (.xlsx, .xlsm or .xls)")
	emailCmd.Flags().StringVarP(&emailKind, "kind", "k", "productivity", "Report kind: productivity|techhours|statement")
	emailCmd.Flags().StringVar(&emailTo, "to", "", "Recipient addresses, comma or semicolon separated")
	emailCmd.Flags().StringVar(&emailBrand, "brand", "", "Brand of the stored statement (statement kind)")
	emailCmd.Flags().StringVar(&emailMonth, "month", "", "Reporting month for the subject and header (YYYY-MM)")
	emailCmd.Flags().StringVar(&emailDealership, "dealership", "", "Dealership name shown in the email header (optional)")
	emailCmd.Flags().StringVar(&emailOut, "out", "", "Write the rendered HTML to this file instead of sending")
	emailCmd.Flags().StringVar(&emailDBPath, "db", "", "Path to local SQLite database (default from config storage.db_path)")
}
