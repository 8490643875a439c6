// Package httpclient wraps net/http with the redirect, timeout, and cookie
// policies shared by the search client and the lead-page fetcher.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"time"
)

const defaultTimeout = 30 * time.Second

// Config selects the client's policies.
type Config struct {
	Timeout time.Duration
	// MaxRedirects caps how many redirects are followed; a negative value
	// returns redirect responses to the caller unfollowed.
	MaxRedirects int
	UseCookieJar bool
	// Transport overrides the default, e.g. a fingerprinted or proxied one.
	Transport http.RoundTripper
}

// Client is an http.Client with the policies from Config applied.
type Client struct {
	*http.Client
}

// New builds a client. The zero Config gives a 30s timeout, no redirects,
// no cookies, and the default transport.
func New(cfg Config) (*Client, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	hc := &http.Client{
		Timeout:       timeout,
		CheckRedirect: redirectPolicy(cfg.MaxRedirects),
		Transport:     cfg.Transport,
	}

	if cfg.UseCookieJar {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		hc.Jar = jar
	}

	return &Client{Client: hc}, nil
}

func redirectPolicy(max int) func(*http.Request, []*http.Request) error {
	if max < 0 {
		return func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return fmt.Errorf("stopped after %d redirects", max)
		}
		return nil
	}
}

// Do sends the request bound to ctx, which governs cancellation on top of
// the client timeout.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if ctx == nil {
		return nil, errors.New("context cannot be nil")
	}

	resp, err := c.Client.Do(req.Clone(ctx))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}
