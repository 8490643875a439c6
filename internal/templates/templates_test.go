package templates

import (
	"sort"
	"strings"
	"testing"
)

func TestGet_KnownTemplate(t *testing.T) {
	tmpl, err := Get("realtors")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tmpl.Name != "realtors" {
		t.Errorf("Name = %q", tmpl.Name)
	}
	if len(tmpl.Keywords) == 0 || len(tmpl.IntentPhrases) == 0 {
		t.Error("expected keywords and intent phrases")
	}
	if len(tmpl.Sites) != len(SocialSites) {
		t.Errorf("expected default site list, got %v", tmpl.Sites)
	}
}

func TestGet_UnknownTemplate(t *testing.T) {
	_, err := Get("foo")
	if err == nil {
		t.Fatal("expected error for unknown template")
	}
	msg := err.Error()
	if !strings.Contains(msg, `"foo"`) {
		t.Errorf("error should name the bad template: %s", msg)
	}
	for _, name := range Names() {
		if !strings.Contains(msg, name) {
			t.Errorf("error should list template %q: %s", name, msg)
		}
	}
}

func TestNames_SortedAndComplete(t *testing.T) {
	names := Names()
	if len(names) != 11 {
		t.Fatalf("expected 11 templates, got %d: %v", len(names), names)
	}
	if !sort.StringsAreSorted(names) {
		t.Errorf("names not sorted: %v", names)
	}
	for _, name := range names {
		if _, err := Get(name); err != nil {
			t.Errorf("Get(%q) failed: %v", name, err)
		}
	}
}

func TestCategories_CoverAllTemplates(t *testing.T) {
	seen := make(map[string]bool)
	for _, names := range Categories() {
		for _, name := range names {
			if seen[name] {
				t.Errorf("template %q listed in more than one category", name)
			}
			seen[name] = true
		}
	}
	for _, name := range Names() {
		if !seen[name] {
			t.Errorf("template %q missing from categories", name)
		}
	}
}

func TestList_HasDescriptions(t *testing.T) {
	for name, desc := range List() {
		if desc == "" {
			t.Errorf("template %q has no description", name)
		}
	}
}
