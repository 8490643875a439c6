package search

import "context"

// Result is one raw record returned by a search provider. It is immutable
// and consumed exactly once by the contact extractor.
type Result struct {
	Title       string `json:"title"`
	Snippet     string `json:"snippet"`
	URL         string `json:"url"`
	DisplayLink string `json:"displayLink"`
}

// Provider abstracts a search engine that can return result records for a
// query. Implementations may use official APIs or other mechanisms. The
// limit parameter caps the number of results returned.
type Provider interface {
	Search(ctx context.Context, query string, limit int) ([]Result, error)
}
