package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/FranksOps/prospect/internal/config"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show lead store statistics",
	RunE:  runStats,
}

var (
	statsBackend string
	statsDSN     string
)

func init() {
	statsCmd.Flags().StringVar(&statsBackend, "backend", "", "Lead store backend: sqlite, postgres, or json")
	statsCmd.Flags().StringVar(&statsDSN, "dsn", "", "Backend connection string or file path")

	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	backend, err := openBackend(ctx, cfg, statsBackend, statsDSN)
	if err != nil {
		return fmt.Errorf("failed to open lead store: %w", err)
	}
	defer backend.Close()

	stats, err := backend.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintf(w, "Total leads\t%d\n", stats.TotalLeads)
	fmt.Fprintf(w, "With email\t%d\n", stats.LeadsWithEmail)
	fmt.Fprintf(w, "With phone\t%d\n", stats.LeadsWithPhone)
	fmt.Fprintf(w, "New today\t%d\n", stats.NewToday)
	fmt.Fprintf(w, "Total searches\t%d\n", stats.TotalSearches)
	fmt.Fprintf(w, "Most used template\t%s\n", stats.MostUsedTemplate)
	return w.Flush()
}
