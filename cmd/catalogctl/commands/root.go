// Package commands implements the catalogctl command tree.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/storefront/backend/internal/bootstrap"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

var (
	// Global flags
	logLevel   string
	jsonOutput bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "catalogctl",
	Short: "Operate the storefront catalog from the command line",
	Long: `catalogctl runs storefront maintenance tasks against the configured database.

It reads the same config.toml and SHOP_* environment variables as the server.

Commands:
  migrate  - Manage the Postgres schema
  import   - Load the category and product CSV feeds
  export   - Write a catalog snapshot to the configured sink
  reindex  - Rebuild the in-memory search index and report its size
  order    - Inspect or move orders through their lifecycle
  token    - Mint an admin API token`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

// loadConfig reads configuration and builds a console logger on stderr
func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}
	log, err := logger.New(&logger.Config{
		Level:  logLevel,
		Format: "console",
		Output: "stderr",
	})
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// withApp wires the services, runs fn and releases everything afterwards
func withApp(ctx context.Context, fn func(app *bootstrap.App) error, opts ...bootstrap.Option) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync(log) }()

	app, err := bootstrap.New(ctx, cfg, log, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := app.Close(); cerr != nil {
			log.Warn("Error releasing resources", zap.Error(cerr))
		}
	}()
	return fn(app)
}

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
