package main

import (
	"fmt"
	"os"

	"github.com/FranksOps/prospect/internal/cleanup"
	"github.com/FranksOps/prospect/internal/config"
	"github.com/spf13/cobra"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Prune stale reddit leads",
	Long: "Backfill missing reddit post dates and remove leads whose posts are older than " +
		"the retention window. Runs in preview mode unless --apply is set.",
	RunE: runCleanup,
}

var (
	cleanupApply   bool
	cleanupLimit   int
	cleanupBackend string
	cleanupDSN     string
)

func init() {
	cleanupCmd.Flags().BoolVar(&cleanupApply, "apply", false, "Actually delete stale leads (default: preview only)")
	cleanupCmd.Flags().IntVarP(&cleanupLimit, "limit", "n", 0, "Maximum number of leads to scan (0 = all)")
	cleanupCmd.Flags().StringVar(&cleanupBackend, "backend", "", "Lead store backend: sqlite, postgres, or json")
	cleanupCmd.Flags().StringVar(&cleanupDSN, "dsn", "", "Backend connection string or file path")

	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	backend, err := openBackend(ctx, cfg, cleanupBackend, cleanupDSN)
	if err != nil {
		return fmt.Errorf("failed to open lead store: %w", err)
	}
	defer backend.Close()

	runCfg := cleanup.Config{Apply: cleanupApply, Limit: cleanupLimit}
	cleaner, err := cleanup.New(backend, runCfg, nil)
	if err != nil {
		return err
	}

	report, err := cleaner.Run(ctx, runCfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Scanned %d reddit leads: %d dates backfilled, %d stale, %d unresolved, %d deleted\n",
		report.Scanned, report.Backfilled, report.Stale, report.Unresolved, report.Deleted)
	if !cleanupApply && report.Stale > 0 {
		fmt.Fprintln(os.Stdout, "Preview only; re-run with --apply to delete")
	}
	return nil
}
