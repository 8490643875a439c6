// Package enrich re-verifies stored leads against their live pages. Search
// snippets are truncated, so a lead whose snippet missed the intent phrasing
// can still match once the full page text is inspected.
package enrich

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/FranksOps/prospect/internal/storage"
	"github.com/FranksOps/prospect/internal/templates"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"
)

// maxTextChars bounds how much page text is scanned for intent keywords.
const maxTextChars = 20000

// Config controls an enrichment run.
type Config struct {
	Template      string // restrict to leads from this template; empty means all
	Limit         int    // max leads to process; 0 means no limit
	Concurrency   int
	RespectRobots bool
}

// Report summarizes an enrichment run.
type Report struct {
	Scanned int
	Updated int
	Skipped int
	Failed  int
}

// Enricher fetches stored lead pages and refreshes their intent flags.
type Enricher struct {
	backend storage.Backend
	fetcher *Fetcher
	robots  *RobotsCache
	logger  *slog.Logger
}

// New creates an Enricher. The robots cache may be nil when robots.txt
// checks are disabled.
func New(backend storage.Backend, fetcher *Fetcher, robots *RobotsCache, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{backend: backend, fetcher: fetcher, robots: robots, logger: logger}
}

// Run processes stored leads concurrently and updates intent flags that
// changed. Individual page failures are counted, not fatal.
func (e *Enricher) Run(ctx context.Context, cfg Config) (*Report, error) {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}

	leads, err := e.backend.Leads(ctx, storage.Filter{
		Template: cfg.Template,
		Limit:    cfg.Limit,
	})
	if err != nil {
		return nil, err
	}

	report := &Report{}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)

	for _, lead := range leads {
		lead := lead
		g.Go(func() error {
			outcome := e.process(gctx, cfg, lead)
			mu.Lock()
			report.Scanned++
			switch outcome {
			case outcomeUpdated:
				report.Updated++
			case outcomeSkipped:
				report.Skipped++
			case outcomeFailed:
				report.Failed++
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report, err
	}
	return report, nil
}

type outcome int

const (
	outcomeUnchanged outcome = iota
	outcomeUpdated
	outcomeSkipped
	outcomeFailed
)

func (e *Enricher) process(ctx context.Context, cfg Config, lead *storage.Lead) outcome {
	tmpl, err := templates.Get(lead.Template)
	if err != nil {
		e.logger.Debug("skipping lead with unknown template",
			"lead", lead.ID, "template", lead.Template)
		return outcomeSkipped
	}

	if cfg.RespectRobots && e.robots != nil && !e.robots.Allowed(ctx, lead.WebsiteURL) {
		e.logger.Debug("robots.txt disallows fetch", "url", lead.WebsiteURL)
		return outcomeSkipped
	}

	result := e.fetcher.Fetch(ctx, lead.WebsiteURL)
	if result.Error != "" || result.StatusCode >= 400 {
		e.logger.Warn("lead page fetch failed",
			"url", lead.WebsiteURL, "status", result.StatusCode, "error", result.Error)
		return outcomeFailed
	}

	text := pageText(result.Body)
	match := matchesIntent(text, tmpl)
	if match == lead.IntentMatch {
		return outcomeUnchanged
	}

	if err := e.backend.SetIntentMatch(ctx, lead.ID, match); err != nil {
		e.logger.Warn("failed to update intent flag", "lead", lead.ID, "error", err)
		return outcomeFailed
	}
	e.logger.Info("intent flag updated", "lead", lead.ID, "url", lead.WebsiteURL, "intent_match", match)
	return outcomeUpdated
}

// matchesIntent scans page text for any of the template's keywords or intent
// phrases. A template with neither always matches.
func matchesIntent(text string, tmpl templates.Template) bool {
	phrases := make([]string, 0, len(tmpl.Keywords)+len(tmpl.IntentPhrases))
	phrases = append(phrases, tmpl.Keywords...)
	phrases = append(phrases, tmpl.IntentPhrases...)
	if len(phrases) == 0 {
		return true
	}

	lower := strings.ToLower(text)
	for _, phrase := range phrases {
		if strings.Contains(lower, strings.ToLower(phrase)) {
			return true
		}
	}
	return false
}

// pageText extracts visible text from an HTML document, dropping script and
// style content, and caps the result.
func pageText(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	doc.Find("script, style, noscript").Remove()

	text := strings.Join(strings.Fields(doc.Text()), " ")
	if len(text) > maxTextChars {
		text = text[:maxTextChars]
	}
	return text
}
