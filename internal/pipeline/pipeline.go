// Package pipeline wires the stages of a lead search run: build the query
// from a template, fetch search results, extract contacts, deduplicate
// against the stored history, persist, and export. One invocation processes
// one bounded batch to completion; there is no retry or checkpointing.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/FranksOps/prospect/internal/dedupe"
	"github.com/FranksOps/prospect/internal/export"
	"github.com/FranksOps/prospect/internal/extract"
	"github.com/FranksOps/prospect/internal/metrics"
	"github.com/FranksOps/prospect/internal/report"
	"github.com/FranksOps/prospect/internal/search"
	"github.com/FranksOps/prospect/internal/storage"
	"github.com/FranksOps/prospect/internal/templates"
)

// Config describes one search run.
type Config struct {
	Template      string
	Locations     []string
	Sites         []string // overrides the template's site list when set
	MaxResults    int
	IncludeEmails bool
	// CustomQuery bypasses the template catalog entirely when set.
	CustomQuery string
	OutputPath  string
	OutputDir   string
	Format      string // "csv" or "json"
	// SkipExport persists leads without writing an output file.
	SkipExport bool
}

// Result carries the outcome of a run. Err-returning paths may still fill
// it partially so callers can export what was collected before a quota or
// network failure.
type Result struct {
	Query      string
	Summary    report.Summary
	ExportPath string
	// Partial is set when the search terminated early (quota exhausted)
	// and the run continued with the results collected so far.
	Partial bool
}

// Pipeline orchestrates the stages of a search run.
type Pipeline struct {
	Provider search.Provider
	Backend  storage.Backend
	Logger   *slog.Logger
}

// New creates a pipeline. A nil logger falls back to slog.Default.
func New(provider search.Provider, backend storage.Backend, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{Provider: provider, Backend: backend, Logger: logger}
}

// Run executes one complete search run. Quota exhaustion mid-search does
// not discard the pages already collected: the run finishes with a partial
// result set and Result.Partial set.
func (p *Pipeline) Run(ctx context.Context, cfg Config) (*Result, error) {
	if p.Provider == nil {
		return nil, errors.New("search provider is nil")
	}
	if p.Backend == nil {
		return nil, errors.New("storage backend is nil")
	}

	start := time.Now()
	defer func() {
		metrics.PipelineDuration.Observe(time.Since(start).Seconds())
	}()

	query, tmpl, err := p.buildQuery(cfg)
	if err != nil {
		return nil, err
	}

	res := &Result{Query: query}
	p.Logger.Info("starting search", "template", cfg.Template, "query", query, "max_results", cfg.MaxResults)

	results, err := p.Provider.Search(ctx, query, cfg.MaxResults)
	if err != nil {
		if !errors.Is(err, search.ErrQuotaExceeded) || len(results) == 0 {
			return res, fmt.Errorf("search failed: %w", err)
		}
		// Quota ran out mid-run; keep going with what we have.
		p.Logger.Warn("search quota exhausted, continuing with partial results", "collected", len(results))
		res.Partial = true
	}
	if len(results) == 0 {
		return res, errors.New("no search results found, try adjusting the search parameters")
	}

	extractor := extract.New(tmpl, cfg.Locations)
	candidates := make([]*storage.Lead, 0, len(results))
	for _, r := range results {
		lead := extractor.Extract(r)
		// A usable lead needs a URL to key on and at least one contact
		// channel.
		if lead.WebsiteURL == "" || !lead.HasContact() {
			continue
		}
		candidates = append(candidates, lead)
		metrics.LeadsExtractedTotal.WithLabelValues(cfg.Template, lead.LeadSource).Inc()
	}
	p.Logger.Info("extracted contacts", "results", len(results), "usable", len(candidates))

	prior, err := p.Backend.Leads(ctx, storage.Filter{})
	if err != nil {
		return res, fmt.Errorf("failed to load stored leads: %w", err)
	}
	parts := dedupe.Partition(candidates, prior)
	metrics.DuplicatesSuppressedTotal.WithLabelValues(cfg.Template).Add(float64(len(parts.Duplicates)))

	queriesUsed := (len(results) + 9) / 10
	if qc, ok := p.Provider.(interface{ QueriesUsed() int }); ok {
		queriesUsed = qc.QueriesUsed()
	}

	inserted, known, err := p.Backend.AddLeads(ctx, candidates, storage.SearchRecord{
		Template:    cfg.Template,
		Locations:   strings.Join(cfg.Locations, ", "),
		NumResults:  len(results),
		QueriesUsed: queriesUsed,
	})
	if err != nil {
		return res, fmt.Errorf("failed to persist leads: %w", err)
	}
	p.Logger.Info("persisted leads", "new", len(inserted), "known", len(known))

	summary := report.GenerateSummary(parts.New)
	summary.Template = cfg.Template
	summary.Query = query
	summary.TotalResults = len(results)
	summary.NewLeads = len(inserted)
	summary.DuplicateLeads = len(parts.Duplicates)
	summary.QueriesUsed = queriesUsed
	summary.StartTime = start
	summary.Duration = time.Since(start).Round(time.Millisecond)
	res.Summary = summary

	if !cfg.SkipExport && len(parts.New) > 0 {
		format := cfg.Format
		if format == "" {
			format = "csv"
		}
		path, err := export.ToFile(parts.New, cfg.OutputPath, format, cfg.OutputDir)
		if err != nil {
			return res, fmt.Errorf("failed to export leads: %w", err)
		}
		res.ExportPath = path
		p.Logger.Info("exported leads", "path", path, "count", len(parts.New))
	}

	return res, nil
}

// buildQuery resolves the template and assembles the query string. The
// template lookup happens before any network call so an unknown name fails
// fast.
func (p *Pipeline) buildQuery(cfg Config) (string, templates.Template, error) {
	if cfg.CustomQuery != "" {
		tmpl := templates.Template{Name: cfg.Template}
		return cfg.CustomQuery, tmpl, nil
	}

	tmpl, err := templates.Get(cfg.Template)
	if err != nil {
		return "", templates.Template{}, err
	}

	sites := tmpl.Sites
	if len(cfg.Sites) > 0 {
		sites = cfg.Sites
	}

	var emailDomains []string
	if cfg.IncludeEmails {
		emailDomains = templates.EmailDomains
	}

	query := search.BuildQuery(search.QuerySpec{
		Keywords:     tmpl.Keywords,
		Locations:    cfg.Locations,
		Sites:        sites,
		EmailDomains: emailDomains,
		ExcludeTerms: tmpl.ExcludeTerms,
	})
	return query, tmpl, nil
}
