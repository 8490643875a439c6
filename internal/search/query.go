package search

import (
	"fmt"
	"strings"
)

// QuerySpec carries the components a search query is assembled from.
type QuerySpec struct {
	Keywords     []string
	Locations    []string
	Sites        []string
	EmailDomains []string
	ExcludeTerms []string
}

// BuildQuery assembles a deterministic query string. Component groups are
// OR-joined and parenthesized, exclusions appended as -term. Empty groups
// are skipped.
func BuildQuery(spec QuerySpec) string {
	var parts []string

	if len(spec.Sites) > 0 {
		sites := make([]string, len(spec.Sites))
		for i, s := range spec.Sites {
			sites[i] = "site:" + s
		}
		parts = append(parts, "("+strings.Join(sites, " OR ")+")")
	}

	if len(spec.Keywords) > 0 {
		parts = append(parts, quotedGroup(spec.Keywords))
	}
	if len(spec.EmailDomains) > 0 {
		parts = append(parts, quotedGroup(spec.EmailDomains))
	}
	if len(spec.Locations) > 0 {
		parts = append(parts, quotedGroup(spec.Locations))
	}

	query := strings.Join(parts, " ")

	if len(spec.ExcludeTerms) > 0 {
		exclusions := make([]string, len(spec.ExcludeTerms))
		for i, term := range spec.ExcludeTerms {
			exclusions[i] = "-" + term
		}
		query = query + " " + strings.Join(exclusions, " ")
	}

	return strings.TrimSpace(query)
}

func quotedGroup(terms []string) string {
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = fmt.Sprintf("%q", t)
	}
	return "(" + strings.Join(quoted, " OR ") + ")"
}
