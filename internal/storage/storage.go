package storage

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"strings"
	"time"
)

// Lead is a structured contact record extracted from one search result.
// Optional fields stay empty when extraction found nothing; a sparse record
// never fails the batch.
type Lead struct {
	ID            string
	FirstName     string
	LastName      string
	CompanyName   string
	WebsiteURL    string
	Email         string
	Phone         string
	LocationMatch bool
	IntentMatch   bool
	LeadSource    string // e.g. "reddit", "instagram", derived from the display link
	PostCreatedAt *time.Time
	Template      string
	Locations     string
	CreatedAt     time.Time
	LastSeen      time.Time
	TimesSeen     int
}

// HasContact reports whether the lead carries at least an email or a phone
// number. Leads without a contact channel are not worth persisting.
func (l *Lead) HasContact() bool {
	return l.Email != "" || l.Phone != ""
}

// URLHash returns the duplicate-detection key for the lead's website URL.
func (l *Lead) URLHash() string {
	return HashURL(l.WebsiteURL)
}

// HashURL lowercases and trims a URL and returns its MD5 hex digest. Used as
// the unique key for duplicate suppression across searches.
func HashURL(url string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(url))))
	return hex.EncodeToString(sum[:])
}

// SearchRecord is one append-only audit entry describing a completed search.
type SearchRecord struct {
	ID             string
	Template       string
	Locations      string
	NumResults     int
	NewLeads       int
	DuplicateLeads int
	QueriesUsed    int
	Timestamp      time.Time
}

// Stats aggregates database-wide counters for the stats command.
type Stats struct {
	TotalLeads       int
	LeadsWithEmail   int
	LeadsWithPhone   int
	NewToday         int
	TotalSearches    int
	MostUsedTemplate string
}

// Filter narrows lead queries.
type Filter struct {
	Template   string
	LeadSource string
	Limit      int
	Offset     int
}

// Backend defines the persisted lead history consulted by the deduplicator
// and maintained by the enrich/cleanup commands.
type Backend interface {
	// AddLeads persists a batch, refreshing leads already seen (matched by
	// URL hash) instead of inserting them again, and appends one
	// SearchRecord for the run. It returns the batch partitioned into
	// inserted and already-known leads.
	AddLeads(ctx context.Context, leads []*Lead, rec SearchRecord) (inserted, known []*Lead, err error)
	Leads(ctx context.Context, filter Filter) ([]*Lead, error)
	History(ctx context.Context, limit int) ([]*SearchRecord, error)
	Stats(ctx context.Context) (*Stats, error)
	// SetIntentMatch updates the derived intent flag after page-text
	// re-verification.
	SetIntentMatch(ctx context.Context, id string, match bool) error
	// SetPostCreatedAt backfills the source post timestamp for a lead.
	SetPostCreatedAt(ctx context.Context, id string, ts time.Time) error
	DeleteLead(ctx context.Context, id string) error
	Close() error
}
