// Package proxy rotates lead-page fetches across a set of proxy endpoints,
// benching endpoints that keep failing and reviving them after a cooldown.
package proxy

import (
	"bufio"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"
)

// entry tracks one endpoint's health inside the pool.
type entry struct {
	url       *url.URL
	failures  int
	successes int
	lastUsed  time.Time
	benchedTo time.Time // zero when healthy
}

func (e *entry) benched(now time.Time) bool {
	return !e.benchedTo.IsZero() && now.Before(e.benchedTo)
}

// Config tunes the health policy.
type Config struct {
	// MaxFailures is the consecutive-failure budget before an endpoint
	// is benched. Defaults to 3.
	MaxFailures int
	// Cooldown is how long a benched endpoint sits out. Defaults to 5m.
	Cooldown time.Duration
}

// Pool is a round-robin rotation over healthy proxy endpoints. All methods
// are safe for concurrent use.
type Pool struct {
	mu          sync.Mutex
	entries     []*entry
	byKey       map[string]*entry
	cursor      int
	maxFailures int
	cooldown    time.Duration
}

// NewPool builds an empty pool; add endpoints with Add or LoadFile.
func NewPool(cfg Config) *Pool {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 5 * time.Minute
	}
	return &Pool{
		byKey:       make(map[string]*entry),
		maxFailures: cfg.MaxFailures,
		cooldown:    cfg.Cooldown,
	}
}

// LoadFile adds endpoints from a file with one URL per line. Blank lines
// and '#' comments are skipped.
func (p *Pool) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open proxy file: %w", err)
	}
	defer f.Close()

	var raw []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		raw = append(raw, line)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("failed to read proxy file: %w", err)
	}
	return p.Add(raw...)
}

// Add parses and registers endpoint URLs. A bare host:port is assumed to be
// an HTTP proxy.
func (p *Pool) Add(rawURLs ...string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, raw := range rawURLs {
		if !strings.Contains(raw, "://") {
			raw = "http://" + raw
		}
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid proxy url %q: %w", raw, err)
		}
		e := &entry{url: u}
		p.entries = append(p.entries, e)
		p.byKey[u.String()] = e
	}
	return nil
}

// Next returns the next healthy endpoint, or nil when the pool is empty or
// every endpoint is benched. A bench that has expired heals the endpoint.
func (p *Pool) Next() *url.URL {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	for i := 0; i < len(p.entries); i++ {
		e := p.entries[p.cursor]
		p.cursor = (p.cursor + 1) % len(p.entries)

		if !e.benchedTo.IsZero() && !e.benched(now) {
			e.benchedTo = time.Time{}
			e.failures = 0
		}
		if e.benched(now) {
			continue
		}
		e.lastUsed = now
		return e.url
	}
	return nil
}

// MarkSuccess credits an endpoint, paying down one earlier failure.
func (p *Pool) MarkSuccess(proxyURL *url.URL) error {
	e, err := p.lookup(proxyURL)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	e.successes++
	if e.failures > 0 {
		e.failures--
	}
	return nil
}

// MarkFailure charges an endpoint; exhausting the failure budget benches it
// for the cooldown period.
func (p *Pool) MarkFailure(proxyURL *url.URL) error {
	e, err := p.lookup(proxyURL)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	e.failures++
	if e.failures >= p.maxFailures {
		e.benchedTo = time.Now().Add(p.cooldown)
	}
	return nil
}

func (p *Pool) lookup(proxyURL *url.URL) (*entry, error) {
	if proxyURL == nil {
		return nil, errors.New("proxyURL cannot be nil")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.byKey[proxyURL.String()]
	if !ok {
		return nil, errors.New("proxy not found in pool")
	}
	return e, nil
}
