package enrich

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/FranksOps/prospect/internal/fingerprint"
	"github.com/FranksOps/prospect/internal/metrics"
	"github.com/FranksOps/prospect/pkg/httpclient"
	"github.com/FranksOps/prospect/pkg/proxy"
	"github.com/FranksOps/prospect/pkg/ratelimit"
	"github.com/FranksOps/prospect/pkg/useragent"
	"github.com/google/uuid"
)

type contextKey string

const proxyKey contextKey = "proxy_url"

// maxBodyBytes caps how much of a lead page is read. Pages are only scanned
// for keywords; anything past this adds nothing.
const maxBodyBytes = 2 << 20

// FetchConfig configures lead-page fetches.
type FetchConfig struct {
	Timeout      time.Duration
	MaxRedirects int
	UseCookieJar bool
	ProxyPool    *proxy.Pool
	UAPool       *useragent.Pool
	Fingerprint  fingerprint.Profile
	Limiter      *ratelimit.Limiter
}

// FetchResult captures one page fetch. A failed fetch fills Error instead of
// failing the enrichment batch.
type FetchResult struct {
	ID         string
	URL        string
	StatusCode int
	Body       []byte
	Duration   time.Duration
	Error      string
}

// Fetcher retrieves lead pages with the configured evasion strategies.
// Social sites hosting lead posts block naive clients, so fetches rotate
// User-Agents, present a browser TLS fingerprint, and can route through a
// proxy pool.
type Fetcher struct {
	config FetchConfig
	client *httpclient.Client
}

// NewFetcher initializes a Fetcher. Holding a single client across requests
// keeps cookie jars (if configured) alive for the Fetcher's lifetime.
func NewFetcher(cfg FetchConfig) (*Fetcher, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.UAPool == nil {
		cfg.UAPool = useragent.NewPool(nil)
	}
	if string(cfg.Fingerprint) == "" {
		cfg.Fingerprint = fingerprint.ProfileChrome
	}

	// One transport per fetcher for connection pooling; per-request proxy
	// rotation goes through the request context because mutating
	// Transport.Proxy concurrently is not safe.
	proxyFunc := func(req *http.Request) (*url.URL, error) {
		if val := req.Context().Value(proxyKey); val != nil {
			if u, ok := val.(*url.URL); ok {
				return u, nil
			}
		}
		return http.ProxyFromEnvironment(req)
	}

	transport, err := fingerprint.Transport(cfg.Fingerprint, proxyFunc)
	if err != nil {
		return nil, fmt.Errorf("failed to setup transport: %w", err)
	}

	client, err := httpclient.New(httpclient.Config{
		Timeout:      cfg.Timeout,
		MaxRedirects: cfg.MaxRedirects,
		UseCookieJar: cfg.UseCookieJar,
		Transport:    transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Fetcher{config: cfg, client: client}, nil
}

// Fetch executes a GET request to the target URL and captures the response.
// Errors are recorded on the result, never returned; one unreachable page
// must not abort the batch.
func (f *Fetcher) Fetch(ctx context.Context, targetURL string) *FetchResult {
	result := &FetchResult{
		ID:  uuid.New().String(),
		URL: targetURL,
	}

	if f.config.Limiter != nil {
		if err := f.config.Limiter.Wait(ctx); err != nil {
			result.Error = fmt.Sprintf("rate limiter interrupted: %v", err)
			return result
		}
	}

	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		result.Error = fmt.Sprintf("failed to create request: %v", err)
		result.Duration = time.Since(start)
		return result
	}

	var activeProxy *url.URL
	if f.config.ProxyPool != nil {
		if activeProxy = f.config.ProxyPool.Next(); activeProxy != nil {
			req = req.WithContext(context.WithValue(req.Context(), proxyKey, activeProxy))
		}
	}

	req.Header.Set("User-Agent", f.config.UAPool.GetSequential())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req.Context(), req)
	if err != nil {
		if activeProxy != nil {
			_ = f.config.ProxyPool.MarkFailure(activeProxy)
		}
		result.Error = fmt.Sprintf("request failed: %v", err)
		result.Duration = time.Since(start)
		metrics.EnrichFetchesTotal.WithLabelValues("error").Inc()
		return result
	}
	defer resp.Body.Close()

	if activeProxy != nil {
		_ = f.config.ProxyPool.MarkSuccess(activeProxy)
	}

	result.StatusCode = resp.StatusCode
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		result.Error = fmt.Sprintf("failed to read body: %v", err)
	} else {
		result.Body = body
	}
	result.Duration = time.Since(start)

	status := "ok"
	if resp.StatusCode >= 400 {
		status = "blocked"
	}
	metrics.EnrichFetchesTotal.WithLabelValues(status).Inc()

	return result
}
