package enrich

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/FranksOps/prospect/pkg/httpclient"
	"github.com/temoto/robotstxt"
)

// RobotsCache fetches and caches robots.txt per host so enrichment can skip
// pages the site operator disallows. A host whose robots.txt is missing or
// unreachable is treated as allowing everything, matching crawler convention.
type RobotsCache struct {
	client    *httpclient.Client
	userAgent string

	mu      sync.Mutex
	entries map[string]*robotstxt.RobotsData
}

// NewRobotsCache creates a cache keyed by URL scheme+host.
func NewRobotsCache(timeout time.Duration, userAgent string) (*RobotsCache, error) {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	client, err := httpclient.New(httpclient.Config{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to create robots client: %w", err)
	}
	return &RobotsCache{
		client:    client,
		userAgent: userAgent,
		entries:   make(map[string]*robotstxt.RobotsData),
	}, nil
}

// Allowed reports whether the target URL may be fetched under the host's
// robots.txt rules. Malformed URLs are allowed; the fetch itself will fail
// with a clearer error.
func (r *RobotsCache) Allowed(ctx context.Context, targetURL string) bool {
	parsed, err := url.Parse(targetURL)
	if err != nil || parsed.Host == "" {
		return true
	}

	data := r.lookup(ctx, parsed.Scheme+"://"+parsed.Host)
	if data == nil {
		return true
	}
	return data.TestAgent(parsed.Path, r.userAgent)
}

func (r *RobotsCache) lookup(ctx context.Context, origin string) *robotstxt.RobotsData {
	r.mu.Lock()
	if data, ok := r.entries[origin]; ok {
		r.mu.Unlock()
		return data
	}
	r.mu.Unlock()

	data := r.fetch(ctx, origin)

	r.mu.Lock()
	r.entries[origin] = data
	r.mu.Unlock()
	return data
}

func (r *RobotsCache) fetch(ctx context.Context, origin string) *robotstxt.RobotsData {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin+"/robots.txt", nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(ctx, req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil
	}
	return data
}
