// Package jsonbackend stores the lead history in a single JSON document.
// Useful for portable local setups where even SQLite is too much; the whole
// file is loaded into memory and rewritten atomically on change.
package jsonbackend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/FranksOps/prospect/internal/storage"
	"github.com/google/uuid"
)

// ensure jsonBackend implements storage.Backend
var _ storage.Backend = (*jsonBackend)(nil)

type document struct {
	Leads   []*storage.Lead         `json:"leads"`
	History []*storage.SearchRecord `json:"search_history"`
}

type jsonBackend struct {
	mu   sync.Mutex
	path string
	doc  document
}

// New creates a JSON-file-backed storage.Backend, loading existing data when
// the file is present.
func New(path string) (storage.Backend, error) {
	b := &jsonBackend{path: path}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// fresh store
	case err != nil:
		return nil, fmt.Errorf("failed to read store: %w", err)
	default:
		if err := json.Unmarshal(data, &b.doc); err != nil {
			return nil, fmt.Errorf("failed to parse store: %w", err)
		}
	}

	return b, nil
}

// flush rewrites the document atomically. Caller holds the lock.
func (b *jsonBackend) flush() error {
	data, err := json.MarshalIndent(&b.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode store: %w", err)
	}

	tmp := b.path + ".tmp"
	if dir := filepath.Dir(b.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create store directory: %w", err)
		}
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write store: %w", err)
	}
	if err := os.Rename(tmp, b.path); err != nil {
		return fmt.Errorf("failed to replace store: %w", err)
	}
	return nil
}

func (b *jsonBackend) findByHash(hash string) *storage.Lead {
	for _, l := range b.doc.Leads {
		if l.URLHash() == hash {
			return l
		}
	}
	return nil
}

func (b *jsonBackend) AddLeads(ctx context.Context, leads []*storage.Lead, rec storage.SearchRecord) ([]*storage.Lead, []*storage.Lead, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now().UTC()
	var inserted, known []*storage.Lead

	for _, lead := range leads {
		if lead.WebsiteURL == "" {
			continue
		}

		if existing := b.findByHash(lead.URLHash()); existing != nil {
			existing.LastSeen = now
			existing.TimesSeen++
			refresh(&existing.Email, lead.Email)
			refresh(&existing.Phone, lead.Phone)
			refresh(&existing.FirstName, lead.FirstName)
			refresh(&existing.LastName, lead.LastName)
			refresh(&existing.CompanyName, lead.CompanyName)
			lead.ID = existing.ID
			known = append(known, lead)
			continue
		}

		if lead.ID == "" {
			lead.ID = uuid.New().String()
		}
		lead.CreatedAt = now
		lead.LastSeen = now
		lead.TimesSeen = 1
		lead.Template = rec.Template
		lead.Locations = rec.Locations
		b.doc.Leads = append(b.doc.Leads, lead)
		inserted = append(inserted, lead)
	}

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = now
	}
	rec.NewLeads = len(inserted)
	rec.DuplicateLeads = len(known)
	b.doc.History = append(b.doc.History, &rec)

	if err := b.flush(); err != nil {
		return nil, nil, err
	}
	return inserted, known, nil
}

func (b *jsonBackend) Leads(ctx context.Context, filter storage.Filter) ([]*storage.Lead, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var matched []*storage.Lead
	for _, l := range b.doc.Leads {
		if filter.Template != "" && l.Template != filter.Template {
			continue
		}
		if filter.LeadSource != "" && l.LeadSource != filter.LeadSource {
			continue
		}
		matched = append(matched, l)
	}

	// Newest first (insertion order is oldest first)
	for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
		matched[i], matched[j] = matched[j], matched[i]
	}

	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return []*storage.Lead{}, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func (b *jsonBackend) History(ctx context.Context, limit int) ([]*storage.SearchRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if limit <= 0 {
		limit = 50
	}

	records := make([]*storage.SearchRecord, len(b.doc.History))
	copy(records, b.doc.History)
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	if limit < len(records) {
		records = records[:limit]
	}
	return records, nil
}

func (b *jsonBackend) Stats(ctx context.Context) (*storage.Stats, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := &storage.Stats{
		TotalLeads:       len(b.doc.Leads),
		TotalSearches:    len(b.doc.History),
		MostUsedTemplate: "None",
	}

	midnight := time.Now().UTC().Truncate(24 * time.Hour)
	for _, l := range b.doc.Leads {
		if l.Email != "" {
			s.LeadsWithEmail++
		}
		if l.Phone != "" {
			s.LeadsWithPhone++
		}
		if !l.CreatedAt.Before(midnight) {
			s.NewToday++
		}
	}

	counts := make(map[string]int)
	for _, r := range b.doc.History {
		counts[r.Template]++
		if counts[r.Template] > counts[s.MostUsedTemplate] {
			s.MostUsedTemplate = r.Template
		}
	}
	return s, nil
}

func (b *jsonBackend) SetIntentMatch(ctx context.Context, id string, match bool) error {
	return b.update(id, func(l *storage.Lead) {
		l.IntentMatch = match
	})
}

func (b *jsonBackend) SetPostCreatedAt(ctx context.Context, id string, ts time.Time) error {
	return b.update(id, func(l *storage.Lead) {
		t := ts.UTC()
		l.PostCreatedAt = &t
	})
}

func (b *jsonBackend) update(id string, apply func(*storage.Lead)) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, l := range b.doc.Leads {
		if l.ID == id {
			apply(l)
			return b.flush()
		}
	}
	return fmt.Errorf("lead %s not found", id)
}

func (b *jsonBackend) DeleteLead(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, l := range b.doc.Leads {
		if l.ID == id {
			b.doc.Leads = append(b.doc.Leads[:i], b.doc.Leads[i+1:]...)
			return b.flush()
		}
	}
	return nil
}

func (b *jsonBackend) Close() error {
	return nil
}

// refresh replaces the stored value when the new extraction found one.
func refresh(dst *string, val string) {
	if val != "" {
		*dst = val
	}
}
