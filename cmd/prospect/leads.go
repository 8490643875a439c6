package main

import (
	"fmt"
	"os"

	"github.com/FranksOps/prospect/internal/config"
	"github.com/FranksOps/prospect/internal/export"
	"github.com/FranksOps/prospect/internal/storage"
	"github.com/spf13/cobra"
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Export stored leads",
	Long:  "Export leads from the lead store, optionally filtered by template or source, to stdout or a file.",
	RunE:  runLeads,
}

var (
	leadsTemplate string
	leadsSource   string
	leadsLimit    int
	leadsOutput   string
	leadsFormat   string
	leadsBackend  string
	leadsDSN      string
)

func init() {
	leadsCmd.Flags().StringVarP(&leadsTemplate, "template", "t", "", "Only leads found by this template")
	leadsCmd.Flags().StringVarP(&leadsSource, "source", "s", "", "Only leads from this site (e.g. reddit)")
	leadsCmd.Flags().IntVarP(&leadsLimit, "limit", "n", 0, "Maximum number of leads (0 = all)")
	leadsCmd.Flags().StringVarP(&leadsOutput, "output", "o", "", "Output filename (default: stdout)")
	leadsCmd.Flags().StringVarP(&leadsFormat, "format", "f", "csv", "Output format: csv or json")
	leadsCmd.Flags().StringVar(&leadsBackend, "backend", "", "Lead store backend: sqlite, postgres, or json")
	leadsCmd.Flags().StringVar(&leadsDSN, "dsn", "", "Backend connection string or file path")

	rootCmd.AddCommand(leadsCmd)
}

func runLeads(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if leadsFormat != "csv" && leadsFormat != "json" {
		return fmt.Errorf("unknown format %q, expected csv or json", leadsFormat)
	}

	ctx := cmd.Context()
	backend, err := openBackend(ctx, cfg, leadsBackend, leadsDSN)
	if err != nil {
		return fmt.Errorf("failed to open lead store: %w", err)
	}
	defer backend.Close()

	leads, err := backend.Leads(ctx, storage.Filter{
		Template:   leadsTemplate,
		LeadSource: leadsSource,
		Limit:      leadsLimit,
	})
	if err != nil {
		return fmt.Errorf("failed to load leads: %w", err)
	}

	if leadsOutput == "" {
		if leadsFormat == "json" {
			return export.WriteJSON(os.Stdout, leads)
		}
		return export.WriteCSV(os.Stdout, leads)
	}

	path, err := export.ToFile(leads, leadsOutput, leadsFormat, cfg.OutputDir)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Exported %d leads to %s\n", len(leads), path)
	return nil
}
