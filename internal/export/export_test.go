package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/FranksOps/prospect/internal/storage"
)

func sampleLeads() []*storage.Lead {
	return []*storage.Lead{
		{
			FirstName:   "John",
			LastName:    "Smith",
			CompanyName: "Back Bay Realty",
			WebsiteURL:  "https://instagram.com/johnsmith",
			Email:       "john@gmail.com",
			Phone:       "(617) 555-0142",
		},
		{
			WebsiteURL: "https://reddit.com/r/realestate/1",
			Email:      "buyer@yahoo.com",
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleLeads()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header + 2 rows", len(lines))
	}
	if lines[0] != "first_name,last_name,company_name,website_url,email,phone" {
		t.Errorf("header = %s", lines[0])
	}
	if lines[1] != "John,Smith,Back Bay Realty,https://instagram.com/johnsmith,john@gmail.com,(617) 555-0142" {
		t.Errorf("row = %s", lines[1])
	}
	if lines[2] != ",,,https://reddit.com/r/realestate/1,buyer@yahoo.com," {
		t.Errorf("sparse row = %s", lines[2])
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleLeads()); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var rows []map[string]string
	if err := json.Unmarshal(buf.Bytes(), &rows); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0]["email"] != "john@gmail.com" || rows[1]["website_url"] != "https://reddit.com/r/realestate/1" {
		t.Errorf("rows = %v", rows)
	}
}

func TestToFile_ExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path, err := ToFile(sampleLeads(), filepath.Join(dir, "out"), "csv", "")
	if err != nil {
		t.Fatalf("ToFile: %v", err)
	}
	if !strings.HasSuffix(path, "out.csv") {
		t.Errorf("extension not appended: %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("file not written: %v", err)
	}
}

func TestToFile_GeneratedName(t *testing.T) {
	dir := t.TempDir()
	path, err := ToFile(sampleLeads(), "", "json", dir)
	if err != nil {
		t.Fatalf("ToFile: %v", err)
	}
	base := filepath.Base(path)
	if !strings.HasPrefix(base, "leads_") || !strings.HasSuffix(base, ".json") {
		t.Errorf("generated name = %s", base)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("file written outside dir: %s", path)
	}
}

func TestToFile_UnknownFormat(t *testing.T) {
	if _, err := ToFile(nil, filepath.Join(t.TempDir(), "out"), "xlsx", ""); err == nil {
		t.Error("expected error for unknown format")
	}
}
