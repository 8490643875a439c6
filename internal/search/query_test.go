package search

import "testing"

func TestBuildQuery_AllComponents(t *testing.T) {
	got := BuildQuery(QuerySpec{
		Keywords:     []string{"realtor", "real estate agent"},
		Locations:    []string{"Boston MA", "Cambridge MA"},
		Sites:        []string{"instagram.com", "facebook.com"},
		EmailDomains: []string{"@gmail.com", "@yahoo.com"},
		ExcludeTerms: []string{"job", "hiring"},
	})

	want := `(site:instagram.com OR site:facebook.com) ` +
		`("realtor" OR "real estate agent") ` +
		`("@gmail.com" OR "@yahoo.com") ` +
		`("Boston MA" OR "Cambridge MA") ` +
		`-job -hiring`
	if got != want {
		t.Errorf("BuildQuery =\n%s\nwant\n%s", got, want)
	}
}

func TestBuildQuery_SkipsEmptyGroups(t *testing.T) {
	got := BuildQuery(QuerySpec{
		Keywords: []string{"contractor"},
		Sites:    []string{"reddit.com"},
	})
	want := `(site:reddit.com) ("contractor")`
	if got != want {
		t.Errorf("BuildQuery = %s, want %s", got, want)
	}
}

func TestBuildQuery_Empty(t *testing.T) {
	if got := BuildQuery(QuerySpec{}); got != "" {
		t.Errorf("BuildQuery = %q, want empty", got)
	}
}

func TestBuildQuery_ExclusionsOnly(t *testing.T) {
	if got := BuildQuery(QuerySpec{ExcludeTerms: []string{"spam"}}); got != "-spam" {
		t.Errorf("BuildQuery = %q, want -spam", got)
	}
}
