package main

import (
	"context"
	"fmt"
	"os"

	"github.com/FranksOps/prospect/internal/config"
	"github.com/FranksOps/prospect/internal/metrics"
	"github.com/FranksOps/prospect/internal/pipeline"
	"github.com/FranksOps/prospect/internal/report"
	"github.com/FranksOps/prospect/internal/search"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run a templated lead search and export new leads",
	Long: "Run a templated search against the Google Custom Search API, extract contact " +
		"details from the results, store the new leads, and export them to a file.",
	RunE: runSearch,
}

var (
	searchTemplate  string
	searchLocations []string
	searchSites     []string
	searchResults   int
	searchOutput    string
	searchFormat    string
	searchQuery     string
	searchNoEmails  bool
	searchNoExport  bool
	searchBackend   string
	searchDSN       string
)

func init() {
	searchCmd.Flags().StringVarP(&searchTemplate, "template", "t", "realtors", "Search template to use (see 'prospect templates')")
	searchCmd.Flags().StringSliceVarP(&searchLocations, "locations", "l", []string{"Boston MA", "Cambridge MA", "Somerville MA", "Brookline MA", "Newton MA"}, "Locations to search")
	searchCmd.Flags().StringSliceVar(&searchSites, "sites", nil, "Override the template's site list (e.g. instagram.com,facebook.com)")
	searchCmd.Flags().IntVarP(&searchResults, "results", "n", 100, "Maximum number of search results to fetch")
	searchCmd.Flags().StringVarP(&searchOutput, "output", "o", "", "Output filename (default: auto-generated with timestamp)")
	searchCmd.Flags().StringVarP(&searchFormat, "format", "f", "csv", "Output format: csv or json")
	searchCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "Use a custom search query instead of a template")
	searchCmd.Flags().BoolVar(&searchNoEmails, "no-emails", false, "Don't include email domains in the search query")
	searchCmd.Flags().BoolVar(&searchNoExport, "no-export", false, "Store leads without writing an output file")
	searchCmd.Flags().StringVar(&searchBackend, "backend", "", "Lead store backend: sqlite, postgres, or json")
	searchCmd.Flags().StringVar(&searchDSN, "dsn", "", "Backend connection string or file path")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.RequireSearchCredentials(); err != nil {
		return err
	}
	if searchFormat != "csv" && searchFormat != "json" {
		return fmt.Errorf("unknown format %q, expected csv or json", searchFormat)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if cfg.MetricsPort > 0 {
		srv := metrics.Start(cfg.MetricsPort)
		defer srv.Stop(ctx)
	}

	provider, err := search.NewGoogleClient(search.GoogleConfig{
		APIKey:            cfg.GoogleAPIKey,
		CSEID:             cfg.GoogleCSEID,
		Timeout:           cfg.SearchTimeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
	})
	if err != nil {
		return err
	}

	backend, err := openBackend(ctx, cfg, searchBackend, searchDSN)
	if err != nil {
		return fmt.Errorf("failed to open lead store: %w", err)
	}
	defer backend.Close()

	p := pipeline.New(provider, backend, nil)
	result, err := p.Run(ctx, pipeline.Config{
		Template:      searchTemplate,
		Locations:     searchLocations,
		Sites:         searchSites,
		MaxResults:    searchResults,
		IncludeEmails: !searchNoEmails,
		CustomQuery:   searchQuery,
		OutputPath:    searchOutput,
		OutputDir:     cfg.OutputDir,
		Format:        searchFormat,
		SkipExport:    searchNoExport,
	})
	if err != nil {
		return err
	}

	if result.Partial {
		fmt.Fprintln(os.Stderr, "Warning: search API quota exhausted, exported partial results")
	}
	if err := report.WriteText(os.Stdout, result.Summary); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	if result.ExportPath != "" {
		fmt.Fprintf(os.Stdout, "Exported to %s\n", result.ExportPath)
	}
	return nil
}
