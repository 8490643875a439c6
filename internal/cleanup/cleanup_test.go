package cleanup

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/FranksOps/prospect/internal/storage"
)

// fakeBackend serves reddit leads and records mutations.
type fakeBackend struct {
	leads      []*storage.Lead
	deleted    []string
	backfilled map[string]time.Time
}

func (f *fakeBackend) Leads(ctx context.Context, filter storage.Filter) ([]*storage.Lead, error) {
	if filter.LeadSource != "reddit" {
		return nil, fmt.Errorf("unexpected filter %+v", filter)
	}
	return f.leads, nil
}

func (f *fakeBackend) SetPostCreatedAt(ctx context.Context, id string, ts time.Time) error {
	if f.backfilled == nil {
		f.backfilled = make(map[string]time.Time)
	}
	f.backfilled[id] = ts
	return nil
}

func (f *fakeBackend) DeleteLead(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeBackend) AddLeads(ctx context.Context, leads []*storage.Lead, rec storage.SearchRecord) ([]*storage.Lead, []*storage.Lead, error) {
	return nil, nil, nil
}
func (f *fakeBackend) History(ctx context.Context, limit int) ([]*storage.SearchRecord, error) {
	return nil, nil
}
func (f *fakeBackend) Stats(ctx context.Context) (*storage.Stats, error) { return nil, nil }
func (f *fakeBackend) SetIntentMatch(ctx context.Context, id string, match bool) error {
	return nil
}
func (f *fakeBackend) Close() error { return nil }

var _ storage.Backend = (*fakeBackend)(nil)

func tp(t time.Time) *time.Time { return &t }

func newTestCleaner(t *testing.T, backend storage.Backend) *Cleaner {
	t.Helper()
	c, err := New(backend, Config{RequestsPerSecond: 100}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestRun_DeletesStaleLeads(t *testing.T) {
	now := time.Now().UTC()
	backend := &fakeBackend{leads: []*storage.Lead{
		{ID: "fresh", WebsiteURL: "https://reddit.com/r/x/1", LeadSource: "reddit", PostCreatedAt: tp(now.Add(-24 * time.Hour))},
		{ID: "stale", WebsiteURL: "https://reddit.com/r/x/2", LeadSource: "reddit", PostCreatedAt: tp(now.Add(-90 * 24 * time.Hour))},
	}}

	c := newTestCleaner(t, backend)
	report, err := c.Run(context.Background(), Config{Apply: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Scanned != 2 || report.Stale != 1 || report.Deleted != 1 {
		t.Errorf("report = %+v", report)
	}
	if len(backend.deleted) != 1 || backend.deleted[0] != "stale" {
		t.Errorf("deleted = %v", backend.deleted)
	}
}

func TestRun_PreviewDoesNotDelete(t *testing.T) {
	now := time.Now().UTC()
	backend := &fakeBackend{leads: []*storage.Lead{
		{ID: "stale", WebsiteURL: "https://reddit.com/r/x/2", LeadSource: "reddit", PostCreatedAt: tp(now.Add(-90 * 24 * time.Hour))},
	}}

	c := newTestCleaner(t, backend)
	report, err := c.Run(context.Background(), Config{Apply: false})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Stale != 1 || report.Deleted != 0 {
		t.Errorf("report = %+v", report)
	}
	if len(backend.deleted) != 0 {
		t.Errorf("preview must not delete, got %v", backend.deleted)
	}
}

func TestRun_BackfillsPostDates(t *testing.T) {
	recent := float64(time.Now().UTC().Add(-48 * time.Hour).Unix())
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ".json") {
			t.Errorf("expected .json suffix, got %s", r.URL.Path)
		}
		if r.Header.Get("User-Agent") == "" {
			t.Error("expected a User-Agent header")
		}
		fmt.Fprintf(w, `[{"data":{"children":[{"data":{"created_utc":%f}}]}}]`, recent)
	}))
	defer ts.Close()

	backend := &fakeBackend{leads: []*storage.Lead{
		{ID: "nodate", WebsiteURL: ts.URL + "/r/x/comments/abc/title/", LeadSource: "reddit"},
	}}

	c := newTestCleaner(t, backend)
	report, err := c.Run(context.Background(), Config{Apply: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Backfilled != 1 {
		t.Errorf("report = %+v", report)
	}
	if _, ok := backend.backfilled["nodate"]; !ok {
		t.Error("post date not recorded")
	}
	if report.Stale != 0 || len(backend.deleted) != 0 {
		t.Errorf("recent post must be kept: %+v", report)
	}
}

func TestRun_UnresolvedDateDeleted(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	backend := &fakeBackend{leads: []*storage.Lead{
		{ID: "nodate", WebsiteURL: ts.URL + "/r/x/comments/abc", LeadSource: "reddit"},
	}}

	c := newTestCleaner(t, backend)
	report, err := c.Run(context.Background(), Config{Apply: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// A post whose date cannot be resolved is treated as dead.
	if report.Unresolved != 1 || report.Deleted != 1 {
		t.Errorf("report = %+v", report)
	}
	if len(backend.deleted) != 1 || backend.deleted[0] != "nodate" {
		t.Errorf("deleted = %v", backend.deleted)
	}
}
