package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/FranksOps/prospect/internal/config"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent search runs",
	RunE:  runHistory,
}

var (
	historyLimit   int
	historyBackend string
	historyDSN     string
)

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of runs to show")
	historyCmd.Flags().StringVar(&historyBackend, "backend", "", "Lead store backend: sqlite, postgres, or json")
	historyCmd.Flags().StringVar(&historyDSN, "dsn", "", "Backend connection string or file path")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	backend, err := openBackend(ctx, cfg, historyBackend, historyDSN)
	if err != nil {
		return fmt.Errorf("failed to open lead store: %w", err)
	}
	defer backend.Close()

	records, err := backend.History(ctx, historyLimit)
	if err != nil {
		return fmt.Errorf("failed to load search history: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tTEMPLATE\tLOCATIONS\tRESULTS\tNEW\tDUP\tQUERIES")
	for _, rec := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
			rec.Timestamp.Format("2006-01-02 15:04"),
			rec.Template, rec.Locations, rec.NumResults,
			rec.NewLeads, rec.DuplicateLeads, rec.QueriesUsed)
	}
	return w.Flush()
}
