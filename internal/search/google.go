package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/FranksOps/prospect/internal/metrics"
	"github.com/FranksOps/prospect/pkg/httpclient"
	"github.com/FranksOps/prospect/pkg/ratelimit"
)

// DefaultBaseURL is the Google Custom Search JSON API endpoint.
const DefaultBaseURL = "https://www.googleapis.com/customsearch/v1"

// resultsPerPage is the API maximum per request.
const resultsPerPage = 10

// ErrQuotaExceeded is returned when the API reports daily quota exhaustion.
// The run cannot continue; results collected so far are still returned.
var ErrQuotaExceeded = errors.New("search API quota exceeded")

// ensure GoogleClient implements Provider
var _ Provider = (*GoogleClient)(nil)

// GoogleConfig configures the Custom Search client.
type GoogleConfig struct {
	APIKey string
	CSEID  string
	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL string
	Timeout time.Duration
	// RequestsPerSecond limits page fetches (0 = unlimited).
	RequestsPerSecond float64
	Logger            *slog.Logger
}

// GoogleClient calls the Google Custom Search JSON API with pagination and
// tracks the number of queries spent against the daily quota.
type GoogleClient struct {
	cfg     GoogleConfig
	client  *httpclient.Client
	limiter *ratelimit.Limiter
	logger  *slog.Logger
	queries atomic.Int64
}

// NewGoogleClient validates credentials and builds a client. Missing
// credentials are a configuration error reported before any network call.
func NewGoogleClient(cfg GoogleConfig) (*GoogleClient, error) {
	if cfg.APIKey == "" || cfg.CSEID == "" {
		return nil, errors.New("search API key and engine id are required, set GOOGLE_API_KEY and GOOGLE_CSE_ID")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	client, err := httpclient.New(httpclient.Config{Timeout: cfg.Timeout, MaxRedirects: 3})
	if err != nil {
		return nil, fmt.Errorf("failed to create http client: %w", err)
	}

	return &GoogleClient{
		cfg:     cfg,
		client:  client,
		limiter: ratelimit.NewLimiter(cfg.RequestsPerSecond, 0),
		logger:  cfg.Logger,
	}, nil
}

// QueriesUsed returns how many API queries this client has spent.
func (g *GoogleClient) QueriesUsed() int {
	return int(g.queries.Load())
}

// Search fetches up to limit results, paging through the API ten results at
// a time. Pagination stops at the first empty page. On quota exhaustion the
// pages collected so far are returned together with ErrQuotaExceeded.
func (g *GoogleClient) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = resultsPerPage
	}
	pages := (limit + resultsPerPage - 1) / resultsPerPage

	var all []Result
	for page := 0; page < pages; page++ {
		if page > 0 {
			if err := g.limiter.Wait(ctx); err != nil {
				return all, fmt.Errorf("rate limiter interrupted: %w", err)
			}
		}

		start := page*resultsPerPage + 1
		g.logger.Debug("fetching search page", "page", page+1, "pages", pages, "start", start)

		results, err := g.searchPage(ctx, query, resultsPerPage, start)
		if err != nil {
			if errors.Is(err, ErrQuotaExceeded) {
				metrics.QuotaExhaustionsTotal.Inc()
				return all, err
			}
			return all, err
		}

		if len(results) == 0 {
			g.logger.Debug("no more results", "page", page+1)
			break
		}
		all = append(all, results...)
	}

	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// apiResponse mirrors the slice of the JSON API response we consume.
type apiResponse struct {
	Items []struct {
		Title       string `json:"title"`
		Link        string `json:"link"`
		Snippet     string `json:"snippet"`
		DisplayLink string `json:"displayLink"`
	} `json:"items"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
		Errors  []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

func (g *GoogleClient) searchPage(ctx context.Context, query string, num, start int) ([]Result, error) {
	params := url.Values{}
	params.Set("key", g.cfg.APIKey)
	params.Set("cx", g.cfg.CSEID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(num))
	params.Set("start", strconv.Itoa(start))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.cfg.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}

	g.queries.Add(1)
	metrics.SearchQueriesTotal.Inc()

	resp, err := g.client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if isQuotaError(resp.StatusCode, &parsed) {
			return nil, ErrQuotaExceeded
		}
		msg := http.StatusText(resp.StatusCode)
		if parsed.Error != nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
		return nil, fmt.Errorf("search API returned %d: %s", resp.StatusCode, msg)
	}

	results := make([]Result, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		results = append(results, Result{
			Title:       item.Title,
			Snippet:     item.Snippet,
			URL:         item.Link,
			DisplayLink: item.DisplayLink,
		})
	}
	return results, nil
}

// isQuotaError recognizes the daily-quota responses the API emits: a plain
// 429, or a 403 carrying a quota/rate-limit reason.
func isQuotaError(status int, parsed *apiResponse) bool {
	if status == http.StatusTooManyRequests {
		return true
	}
	if status != http.StatusForbidden || parsed.Error == nil {
		return false
	}
	if parsed.Error.Status == "RESOURCE_EXHAUSTED" {
		return true
	}
	for _, e := range parsed.Error.Errors {
		switch e.Reason {
		case "dailyLimitExceeded", "rateLimitExceeded", "quotaExceeded", "userRateLimitExceeded":
			return true
		}
	}
	return strings.Contains(strings.ToLower(parsed.Error.Message), "quota")
}
