// Package useragent rotates browser User-Agent strings across lead-page
// fetches so a batch of requests does not share one identity.
package useragent

import (
	"math/rand"
	"sync/atomic"
)

// DefaultPool covers current desktop Chrome, Firefox, Safari and Edge.
var DefaultPool = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:123.0) Gecko/20100101 Firefox/123.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:124.0) Gecko/20100101 Firefox/124.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.3 Safari/605.1.15",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36 Edg/122.0.0.0",
}

// Pool hands out User-Agents either round-robin or at random. The agent
// list is fixed at construction; all methods are safe for concurrent use.
type Pool struct {
	agents []string
	cursor atomic.Uint64
}

// NewPool builds a pool from the given agents, falling back to DefaultPool
// when the slice is empty. The input is copied.
func NewPool(agents []string) *Pool {
	if len(agents) == 0 {
		agents = DefaultPool
	}
	owned := append([]string(nil), agents...)
	return &Pool{agents: owned}
}

// GetSequential returns agents in strict rotation order.
func (p *Pool) GetSequential() string {
	if len(p.agents) == 0 {
		return ""
	}
	n := p.cursor.Add(1) - 1
	return p.agents[n%uint64(len(p.agents))]
}

// GetRandom returns a uniformly random agent from the pool.
func (p *Pool) GetRandom() string {
	if len(p.agents) == 0 {
		return ""
	}
	return p.agents[rand.Intn(len(p.agents))]
}

// Size reports how many agents the pool cycles through.
func (p *Pool) Size() int {
	return len(p.agents)
}
