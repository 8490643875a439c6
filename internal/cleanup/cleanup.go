// Package cleanup prunes stale reddit leads. Reddit posts go quiet fast;
// a lead pointing at a post older than the retention window is unlikely to
// convert and only clutters exports.
package cleanup

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/FranksOps/prospect/internal/storage"
	"github.com/FranksOps/prospect/pkg/httpclient"
	"github.com/FranksOps/prospect/pkg/ratelimit"
)

// MaxPostAge is how long a reddit lead stays useful after the post date.
const MaxPostAge = 60 * 24 * time.Hour

const defaultUserAgent = "prospect-cleanup/1.0"

// Config controls a cleanup run.
type Config struct {
	Apply             bool // false previews deletions without touching the store
	Limit             int  // max leads to scan; 0 means all
	RequestsPerSecond float64
	Timeout           time.Duration
	UserAgent         string
}

// Report summarizes a cleanup run.
type Report struct {
	Scanned    int
	Backfilled int // post dates resolved via the reddit JSON endpoint
	Stale      int // leads marked for deletion (deleted when Apply is set)
	Unresolved int // leads whose post date could not be determined
	Deleted    int
}

// Cleaner scans reddit-sourced leads, backfills missing post dates from
// reddit's public JSON endpoint, and removes leads past the retention window.
type Cleaner struct {
	backend storage.Backend
	client  *httpclient.Client
	limiter *ratelimit.Limiter
	logger  *slog.Logger
	now     func() time.Time
}

// New creates a Cleaner.
func New(backend storage.Backend, cfg Config, logger *slog.Logger) (*Cleaner, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = 1
	}
	client, err := httpclient.New(httpclient.Config{Timeout: cfg.Timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to create cleanup client: %w", err)
	}
	return &Cleaner{
		backend: backend,
		client:  client,
		limiter: ratelimit.NewLimiter(cfg.RequestsPerSecond, 0.3),
		logger:  logger,
		now:     time.Now,
	}, nil
}

// Run scans reddit leads and applies the retention policy. Without
// cfg.Apply it only reports what would be deleted.
func (c *Cleaner) Run(ctx context.Context, cfg Config) (*Report, error) {
	defer c.limiter.Stop()

	leads, err := c.backend.Leads(ctx, storage.Filter{
		LeadSource: "reddit",
		Limit:      cfg.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load reddit leads: %w", err)
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	report := &Report{}
	cutoff := c.now().Add(-MaxPostAge)

	for _, lead := range leads {
		report.Scanned++

		postedAt := lead.PostCreatedAt
		if postedAt == nil {
			ts, err := c.fetchPostDate(ctx, lead.WebsiteURL, userAgent)
			if err != nil {
				// A reddit post whose date cannot be resolved is gone or
				// inaccessible; the lead is dead weight either way.
				c.logger.Debug("could not resolve post date",
					"lead", lead.ID, "url", lead.WebsiteURL, "error", err)
				report.Unresolved++
				c.remove(ctx, cfg, report, lead, "missing post date")
				continue
			}
			if setErr := c.backend.SetPostCreatedAt(ctx, lead.ID, ts); setErr != nil {
				c.logger.Warn("failed to record post date", "lead", lead.ID, "error", setErr)
			} else {
				report.Backfilled++
			}
			postedAt = &ts
		}

		if postedAt.Before(cutoff) {
			c.remove(ctx, cfg, report, lead, "post too old")
		}
	}

	return report, nil
}

func (c *Cleaner) remove(ctx context.Context, cfg Config, report *Report, lead *storage.Lead, reason string) {
	report.Stale++
	if !cfg.Apply {
		c.logger.Info("would delete lead",
			"lead", lead.ID, "url", lead.WebsiteURL, "reason", reason)
		return
	}
	if err := c.backend.DeleteLead(ctx, lead.ID); err != nil {
		c.logger.Warn("failed to delete lead", "lead", lead.ID, "error", err)
		return
	}
	report.Deleted++
	c.logger.Info("deleted lead", "lead", lead.ID, "url", lead.WebsiteURL, "reason", reason)
}

// redditListing mirrors the shape of reddit's <post-url>.json response.
type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				CreatedUTC float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// fetchPostDate resolves a post's creation time by appending .json to the
// post URL, the public endpoint reddit exposes for every listing.
func (c *Cleaner) fetchPostDate(ctx context.Context, postURL, userAgent string) (time.Time, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return time.Time{}, err
	}

	jsonURL := strings.TrimRight(postURL, "/") + ".json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, jsonURL, nil)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(ctx, req)
	if err != nil {
		return time.Time{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return time.Time{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var listings []redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listings); err != nil {
		return time.Time{}, fmt.Errorf("failed to decode listing: %w", err)
	}

	for _, listing := range listings {
		for _, child := range listing.Data.Children {
			if child.Data.CreatedUTC > 0 {
				return time.Unix(int64(child.Data.CreatedUTC), 0).UTC(), nil
			}
		}
	}
	return time.Time{}, fmt.Errorf("no created_utc in listing")
}
