package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"dealerops/config"
	"dealerops/mailer"
	"dealerops/storage"
	"dealerops/web"
)

var (
	servePort   int
	serveDBPath string
	serveNoOpen bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web UI for imports, stored entries and report emails",
	Long: `Start a local HTTP server with the dashboard and entry pages.

Financial statements can be imported and report workbooks parsed straight from
the browser. Report emails are available when mail delivery is configured.`,
	Example: `
  # Start the local server on the configured port
  dealerops serve

  # Start with an explicit database and custom port
  dealerops serve --port 9090 --db ./dealerops.db
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		store, err := storage.OpenSQLite(resolveDBPath(serveDBPath))
		if err != nil {
			return err
		}
		defer store.Close()

		var mail mailer.Client
		if cfg.Mail.Enabled() {
			client, err := mailer.NewClient(mailer.ClientConfig{
				BaseURL:   cfg.Mail.URL,
				APIToken:  cfg.Mail.Token,
				From:      cfg.Mail.From,
				UserAgent: "dealerops-serve/1.0",
			})
			if err != nil {
				return err
			}
			mail = client
		}

		port := resolveListenPort(servePort, cfg.Server.Port)
		server := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: web.NewServer(store, mail, *cfg, logger),
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.ListenAndServe()
		}()

		listenURL := fmt.Sprintf("http://localhost:%d", port)
		fmt.Printf("Listening on %s\n", listenURL)
		if !serveNoOpen {
			if openErr := openURLInBrowser(listenURL); openErr != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to open browser: %v\n", openErr)
			}
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-sigCh:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("shutdown server: %w", err)
			}
			err := <-errCh
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&servePort, "port", 0, "HTTP port for the local web server (default from config server.port)")
	serveCmd.Flags().StringVar(&serveDBPath, "db", "", "Path to local SQLite database (default from config storage.db_path)")
	serveCmd.Flags().BoolVar(&serveNoOpen, "no-open", false, "Do not open browser automatically")
}

func resolveListenPort(flagPort, configPort int) int {
	if flagPort > 0 {
		return flagPort
	}
	if configPort > 0 {
		return configPort
	}
	return config.DefaultServerPort
}

func openURLInBrowser(rawURL string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", rawURL)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL)
	default:
		cmd = exec.Command("xdg-open", rawURL)
	}
	return cmd.Start()
}
