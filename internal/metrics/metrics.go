package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SearchQueriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "prospect_search_queries_total",
			Help: "Total number of search API queries issued (quota units)",
		},
	)

	QuotaExhaustionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "prospect_quota_exhaustions_total",
			Help: "Times a run was terminated by search API quota exhaustion",
		},
	)

	LeadsExtractedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prospect_leads_extracted_total",
			Help: "Leads extracted from search results",
		},
		[]string{"template", "source"},
	)

	DuplicatesSuppressedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prospect_duplicates_suppressed_total",
			Help: "Leads dropped from the export set as duplicates",
		},
		[]string{"template"},
	)

	EnrichFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prospect_enrich_fetches_total",
			Help: "Lead-page fetches performed during enrichment",
		},
		[]string{"status"},
	)

	PipelineDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "prospect_pipeline_duration_seconds",
			Help:    "End-to-end duration of a search pipeline run",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)
)

// Server encapsulates an HTTP server for Prometheus metrics.
type Server struct {
	srv *http.Server
}

// Start begins listening on the specified port and exposes /metrics.
func Start(port int) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		// Suppress the error from intentional shutdown
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("metrics server failed: %v\n", err)
		}
	}()

	return &Server{srv: srv}
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
