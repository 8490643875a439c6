// Package main provides the prospect CLI for finding and managing leads.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/FranksOps/prospect/internal/config"
	"github.com/FranksOps/prospect/internal/storage"
	"github.com/FranksOps/prospect/internal/storage/jsonbackend"
	"github.com/FranksOps/prospect/internal/storage/postgres"
	"github.com/FranksOps/prospect/internal/storage/sqlite"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "prospect",
	Short: "Find leads with templated searches over social sites",
	Long: "Prospect runs templated Google Custom Search queries against social sites, " +
		"extracts contact details from the results, deduplicates them against the lead " +
		"store, and exports new leads to CSV or JSON.",
	SilenceUsage: true,
}

var verbose bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func main() {
	cobra.OnInitialize(setupLogging)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setupLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// openBackend constructs the lead store named by the configuration, or by
// the --backend/--dsn overrides when set.
func openBackend(ctx context.Context, cfg *config.Config, backendFlag, dsnFlag string) (storage.Backend, error) {
	name := cfg.Backend
	if backendFlag != "" {
		name = backendFlag
	}

	switch name {
	case config.BackendSQLite:
		path := cfg.SQLitePath
		if dsnFlag != "" {
			path = dsnFlag
		}
		return sqlite.New(path)
	case config.BackendPostgres:
		dsn := cfg.PostgresDSN
		if dsnFlag != "" {
			dsn = dsnFlag
		}
		return postgres.New(ctx, dsn)
	case config.BackendJSON:
		path := cfg.JSONPath
		if dsnFlag != "" {
			path = dsnFlag
		}
		return jsonbackend.New(path)
	default:
		return nil, fmt.Errorf("unknown backend %q, expected sqlite, postgres, or json", name)
	}
}
