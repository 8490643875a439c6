package main

import (
	"fmt"
	"os"
	"time"

	"github.com/FranksOps/prospect/internal/config"
	"github.com/FranksOps/prospect/internal/enrich"
	"github.com/FranksOps/prospect/internal/fingerprint"
	"github.com/FranksOps/prospect/pkg/proxy"
	"github.com/FranksOps/prospect/pkg/ratelimit"
	"github.com/spf13/cobra"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Re-verify stored leads against their live pages",
	Long: "Fetch the page behind each stored lead and refresh its intent flag from the " +
		"full page text. Search snippets are truncated, so this catches intent phrasing " +
		"the original search missed.",
	RunE: runEnrich,
}

var (
	enrichTemplate    string
	enrichLimit       int
	enrichConcurrency int
	enrichRPS         float64
	enrichProfile     string
	enrichProxyFile   string
	enrichNoRobots    bool
	enrichBackend     string
	enrichDSN         string
)

func init() {
	enrichCmd.Flags().StringVarP(&enrichTemplate, "template", "t", "", "Only leads found by this template")
	enrichCmd.Flags().IntVarP(&enrichLimit, "limit", "n", 0, "Maximum number of leads to process (0 = all)")
	enrichCmd.Flags().IntVarP(&enrichConcurrency, "concurrency", "c", 4, "Concurrent page fetches")
	enrichCmd.Flags().Float64Var(&enrichRPS, "rps", 1, "Page fetches per second")
	enrichCmd.Flags().StringVar(&enrichProfile, "fingerprint", "chrome", "TLS fingerprint profile: chrome, firefox, safari, go, or random")
	enrichCmd.Flags().StringVar(&enrichProxyFile, "proxies", "", "File with proxy URLs, one per line")
	enrichCmd.Flags().BoolVar(&enrichNoRobots, "no-robots", false, "Skip robots.txt checks")
	enrichCmd.Flags().StringVar(&enrichBackend, "backend", "", "Lead store backend: sqlite, postgres, or json")
	enrichCmd.Flags().StringVar(&enrichDSN, "dsn", "", "Backend connection string or file path")

	rootCmd.AddCommand(enrichCmd)
}

func runEnrich(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	backend, err := openBackend(ctx, cfg, enrichBackend, enrichDSN)
	if err != nil {
		return fmt.Errorf("failed to open lead store: %w", err)
	}
	defer backend.Close()

	var proxyPool *proxy.Pool
	if enrichProxyFile != "" {
		proxyPool = proxy.NewPool(proxy.Config{})
		if err := proxyPool.LoadFile(enrichProxyFile); err != nil {
			return fmt.Errorf("failed to load proxies: %w", err)
		}
	}

	limiter := ratelimit.NewLimiter(enrichRPS, 0.3)
	defer limiter.Stop()

	fetcher, err := enrich.NewFetcher(enrich.FetchConfig{
		Timeout:     20 * time.Second,
		ProxyPool:   proxyPool,
		Fingerprint: fingerprint.Profile(enrichProfile),
		Limiter:     limiter,
	})
	if err != nil {
		return err
	}

	var robots *enrich.RobotsCache
	if !enrichNoRobots {
		robots, err = enrich.NewRobotsCache(10*time.Second, "prospect-enrich/1.0")
		if err != nil {
			return err
		}
	}

	enricher := enrich.New(backend, fetcher, robots, nil)
	report, err := enricher.Run(ctx, enrich.Config{
		Template:      enrichTemplate,
		Limit:         enrichLimit,
		Concurrency:   enrichConcurrency,
		RespectRobots: !enrichNoRobots,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Scanned %d leads: %d updated, %d skipped, %d failed\n",
		report.Scanned, report.Updated, report.Skipped, report.Failed)
	return nil
}
