//go:build integration

package test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/FranksOps/prospect/internal/pipeline"
	"github.com/FranksOps/prospect/internal/search"
	"github.com/FranksOps/prospect/internal/storage"
	"github.com/FranksOps/prospect/internal/storage/sqlite"
)

// cseItem mirrors the Custom Search item shape the client consumes.
type cseItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Snippet     string `json:"snippet"`
	DisplayLink string `json:"displayLink"`
}

func newCSEServer(t *testing.T, pages map[int][]cseItem) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") == "" || r.URL.Query().Get("cx") == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		start, _ := strconv.Atoi(r.URL.Query().Get("start"))
		if start == 0 {
			start = 1
		}
		resp := struct {
			Items []cseItem `json:"items"`
		}{Items: pages[start]}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
}

func TestIntegration_SearchPipelineWithSQLite(t *testing.T) {
	// 1. Mock Custom Search API with two pages of results.
	pages := map[int][]cseItem{
		1: {
			{
				Title:       "Jane Doe - Real Estate Agent | Instagram",
				Link:        "https://instagram.com/janedoe.realty",
				Snippet:     "Realtor in Boston MA. Contact jane.doe@gmail.com or call (617) 555-0101.",
				DisplayLink: "www.instagram.com",
			},
			{
				Title:       "Mark Lee | LinkedIn",
				Link:        "https://linkedin.com/in/marklee",
				Snippet:     "Real estate broker serving Cambridge MA. mark.lee@yahoo.com",
				DisplayLink: "www.linkedin.com",
			},
			{
				Title:       "No contact here",
				Link:        "https://instagram.com/nocontact",
				Snippet:     "Just listing photos, nothing else.",
				DisplayLink: "www.instagram.com",
			},
		},
		11: {
			{
				Title:       "Sue Chen Realty | Facebook",
				Link:        "https://facebook.com/suechenrealty",
				Snippet:     "Buying or selling in Somerville MA? Call (617) 555-0199 today.",
				DisplayLink: "www.facebook.com",
			},
		},
	}
	apiServer := newCSEServer(t, pages)
	defer apiServer.Close()

	// 2. Real client and a real sqlite backend on a temp file.
	client, err := search.NewGoogleClient(search.GoogleConfig{
		APIKey:  "test-key",
		CSEID:   "test-cx",
		BaseURL: apiServer.URL,
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewGoogleClient: %v", err)
	}

	dir := t.TempDir()
	backend, err := sqlite.New(filepath.Join(dir, "leads.db"))
	if err != nil {
		t.Fatalf("sqlite.New: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()
	p := pipeline.New(client, backend, nil)

	cfg := pipeline.Config{
		Template:   "realtors",
		Locations:  []string{"Boston MA", "Cambridge MA"},
		MaxResults: 20,
		OutputDir:  dir,
		Format:     "csv",
	}

	// 3. First run: three usable leads, exported and persisted.
	res, err := p.Run(ctx, cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Summary.NewLeads != 3 {
		t.Errorf("NewLeads = %d, want 3", res.Summary.NewLeads)
	}
	if res.Partial {
		t.Error("run should not be partial")
	}
	if res.ExportPath == "" {
		t.Fatal("no export written")
	}
	data, err := os.ReadFile(res.ExportPath)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(data), "jane.doe@gmail.com") {
		t.Error("export missing extracted email")
	}

	leads, err := backend.Leads(ctx, storage.Filter{})
	if err != nil {
		t.Fatalf("Leads: %v", err)
	}
	if len(leads) != 3 {
		t.Errorf("persisted %d leads, want 3", len(leads))
	}

	// 4. Second run over identical results: everything is a duplicate.
	cfg.SkipExport = true
	res, err = p.Run(ctx, cfg)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if res.Summary.NewLeads != 0 {
		t.Errorf("second run NewLeads = %d, want 0", res.Summary.NewLeads)
	}
	if res.Summary.DuplicateLeads != 3 {
		t.Errorf("second run DuplicateLeads = %d, want 3", res.Summary.DuplicateLeads)
	}

	// 5. Search history recorded both runs.
	history, err := backend.History(ctx, 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 2 {
		t.Errorf("history entries = %d, want 2", len(history))
	}
	for _, rec := range history {
		if rec.Template != "realtors" {
			t.Errorf("history template = %q", rec.Template)
		}
	}
}

func TestIntegration_QuotaExhaustionMidRun(t *testing.T) {
	var hits int
	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits > 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		items := []cseItem{{
			Title:       "Pat Kim Homes | Instagram",
			Link:        "https://instagram.com/patkimhomes",
			Snippet:     "Listings daily. pat.kim@gmail.com",
			DisplayLink: "www.instagram.com",
		}}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(struct {
			Items []cseItem `json:"items"`
		}{items})
	}))
	defer apiServer.Close()

	client, err := search.NewGoogleClient(search.GoogleConfig{
		APIKey:  "test-key",
		CSEID:   "test-cx",
		BaseURL: apiServer.URL,
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewGoogleClient: %v", err)
	}

	dir := t.TempDir()
	backend, err := sqlite.New(filepath.Join(dir, "leads.db"))
	if err != nil {
		t.Fatalf("sqlite.New: %v", err)
	}
	defer backend.Close()

	p := pipeline.New(client, backend, nil)
	res, err := p.Run(context.Background(), pipeline.Config{
		Template:   "realtors",
		Locations:  []string{"Boston MA"},
		MaxResults: 20,
		OutputDir:  dir,
		Format:     "csv",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Partial {
		t.Error("quota exhaustion should mark the run partial")
	}
	if res.Summary.NewLeads != 1 {
		t.Errorf("NewLeads = %d, want 1 from the page before exhaustion", res.Summary.NewLeads)
	}
}
