package main

import (
	"context"
	"fmt"
	"os"

	"github.com/FranksOps/prospect/internal/config"
	"github.com/FranksOps/prospect/internal/pipeline"
	"github.com/FranksOps/prospect/internal/report"
	"github.com/FranksOps/prospect/internal/search"
	"github.com/FranksOps/prospect/pkg/ratelimit"
	"github.com/spf13/cobra"
)

var placesCmd = &cobra.Command{
	Use:   "places",
	Short: "Find leads through Google Places instead of web search",
	Long: "Search the Google Places API for businesses matching a template around the " +
		"given locations, pull their website and phone, and run the hits through the " +
		"same extraction, dedup, and export stages as a web search.",
	RunE: runPlaces,
}

var (
	placesTemplate  string
	placesLocations []string
	placesResults   int
	placesRadius    int
	placesNoDetails bool
	placesOutput    string
	placesFormat    string
	placesNoExport  bool
	placesBackend   string
	placesDSN       string
)

func init() {
	placesCmd.Flags().StringVarP(&placesTemplate, "template", "t", "realtors", "Template naming the business category")
	placesCmd.Flags().StringSliceVarP(&placesLocations, "locations", "l", []string{"Boston MA", "Cambridge MA", "Somerville MA", "Brookline MA", "Newton MA"}, "Locations to search around")
	placesCmd.Flags().IntVarP(&placesResults, "results", "n", 30, "Maximum number of places to fetch")
	placesCmd.Flags().IntVar(&placesRadius, "radius", 25, "Search radius in miles around each location")
	placesCmd.Flags().BoolVar(&placesNoDetails, "no-details", false, "Skip the per-place website/phone lookup")
	placesCmd.Flags().StringVarP(&placesOutput, "output", "o", "", "Output filename (default: auto-generated with timestamp)")
	placesCmd.Flags().StringVarP(&placesFormat, "format", "f", "csv", "Output format: csv or json")
	placesCmd.Flags().BoolVar(&placesNoExport, "no-export", false, "Store leads without writing an output file")
	placesCmd.Flags().StringVar(&placesBackend, "backend", "", "Lead store backend: sqlite, postgres, or json")
	placesCmd.Flags().StringVar(&placesDSN, "dsn", "", "Backend connection string or file path")

	rootCmd.AddCommand(placesCmd)
}

func runPlaces(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if placesFormat != "csv" && placesFormat != "json" {
		return fmt.Errorf("unknown format %q, expected csv or json", placesFormat)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	client, err := search.NewPlacesClient(search.PlacesConfig{
		APIKey:  cfg.PlacesAPIKey,
		Timeout: cfg.SearchTimeout,
	})
	if err != nil {
		return err
	}

	limiter := ratelimit.NewLimiter(cfg.RequestsPerSecond, 0)
	defer limiter.Stop()

	provider := &search.PlacesProvider{
		Client:       client,
		Locations:    placesLocations,
		RadiusMiles:  placesRadius,
		FetchDetails: !placesNoDetails,
		Limiter:      limiter,
	}

	backend, err := openBackend(ctx, cfg, placesBackend, placesDSN)
	if err != nil {
		return fmt.Errorf("failed to open lead store: %w", err)
	}
	defer backend.Close()

	p := pipeline.New(provider, backend, nil)
	result, err := p.Run(ctx, pipeline.Config{
		Template:    placesTemplate,
		Locations:   placesLocations,
		MaxResults:  placesResults,
		CustomQuery: search.PlacesQuery(placesTemplate),
		OutputPath:  placesOutput,
		OutputDir:   cfg.OutputDir,
		Format:      placesFormat,
		SkipExport:  placesNoExport,
	})
	if err != nil {
		return err
	}

	if err := report.WriteText(os.Stdout, result.Summary); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	if result.ExportPath != "" {
		fmt.Fprintf(os.Stdout, "Exported to %s\n", result.ExportPath)
	}
	return nil
}
