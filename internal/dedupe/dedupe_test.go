package dedupe

import (
	"testing"

	"github.com/FranksOps/prospect/internal/storage"
)

func lead(url, email string) *storage.Lead {
	return &storage.Lead{WebsiteURL: url, Email: email}
}

func TestPartition_URLMatch(t *testing.T) {
	prior := []*storage.Lead{lead("https://instagram.com/a", "")}
	candidates := []*storage.Lead{
		lead("https://instagram.com/a", ""),
		lead("https://instagram.com/b", ""),
	}

	res := Partition(candidates, prior)
	if len(res.New) != 1 || res.New[0].WebsiteURL != "https://instagram.com/b" {
		t.Errorf("New = %v", res.New)
	}
	if len(res.Duplicates) != 1 {
		t.Errorf("Duplicates = %v", res.Duplicates)
	}
}

func TestPartition_EmailCaseInsensitive(t *testing.T) {
	prior := []*storage.Lead{lead("https://site/a", "Jane@Gmail.com")}
	candidates := []*storage.Lead{
		lead("https://site/b", "jane@gmail.com"),
		lead("https://site/c", "other@gmail.com"),
	}

	res := Partition(candidates, prior)
	if len(res.New) != 1 || res.New[0].Email != "other@gmail.com" {
		t.Errorf("New = %v", res.New)
	}
	if len(res.Duplicates) != 1 || res.Duplicates[0].WebsiteURL != "https://site/b" {
		t.Errorf("Duplicates = %v", res.Duplicates)
	}
}

func TestPartition_EmptyEmailsNeverMatch(t *testing.T) {
	prior := []*storage.Lead{lead("https://site/a", "")}
	candidates := []*storage.Lead{
		lead("https://site/b", ""),
		lead("https://site/c", ""),
	}

	res := Partition(candidates, prior)
	if len(res.New) != 2 {
		t.Errorf("expected both leads new, got New=%d Dup=%d", len(res.New), len(res.Duplicates))
	}
}

func TestPartition_WithinBatch(t *testing.T) {
	candidates := []*storage.Lead{
		lead("https://site/a", "a@gmail.com"),
		lead("https://site/a", ""),            // same URL
		lead("https://site/b", "A@GMAIL.COM"), // same email, different case
		lead("https://site/c", "c@gmail.com"),
	}

	res := Partition(candidates, nil)
	if len(res.New) != 2 {
		t.Fatalf("New = %d, want 2", len(res.New))
	}
	if res.New[0].WebsiteURL != "https://site/a" || res.New[1].WebsiteURL != "https://site/c" {
		t.Errorf("first-seen order violated: %v %v", res.New[0].WebsiteURL, res.New[1].WebsiteURL)
	}
	if len(res.Duplicates) != 2 {
		t.Errorf("Duplicates = %d, want 2", len(res.Duplicates))
	}
}

func TestPartition_Idempotent(t *testing.T) {
	candidates := []*storage.Lead{
		lead("https://site/a", "a@gmail.com"),
		lead("https://site/a", "a@gmail.com"),
		lead("https://site/b", ""),
	}

	first := Partition(candidates, nil)
	second := Partition(first.New, nil)
	if len(second.New) != len(first.New) || len(second.Duplicates) != 0 {
		t.Errorf("second pass changed the set: New=%d Dup=%d", len(second.New), len(second.Duplicates))
	}
}

func TestPartition_Empty(t *testing.T) {
	res := Partition(nil, nil)
	if len(res.New) != 0 || len(res.Duplicates) != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}
}
