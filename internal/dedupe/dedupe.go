// Package dedupe partitions freshly extracted leads against previously
// stored ones. Two leads are duplicates when their website URLs match
// exactly, or both carry a non-empty email and the emails match
// case-insensitively.
package dedupe

import (
	"strings"

	"github.com/FranksOps/prospect/internal/storage"
)

// Result is the outcome of one deduplication pass.
type Result struct {
	// New holds unique leads in first-seen order.
	New []*storage.Lead
	// Duplicates are dropped from the export set but counted for reporting.
	Duplicates []*storage.Lead
}

// Partition splits candidates into {new, duplicate} against the prior lead
// set. A single linear pass with set-membership checks; each unique lead
// appears exactly once in New, in first-seen order, so running Partition on
// its own output removes nothing further.
func Partition(candidates []*storage.Lead, prior []*storage.Lead) Result {
	seenURLs := make(map[string]struct{}, len(prior))
	seenEmails := make(map[string]struct{}, len(prior))
	for _, l := range prior {
		if l.WebsiteURL != "" {
			seenURLs[l.WebsiteURL] = struct{}{}
		}
		if l.Email != "" {
			seenEmails[strings.ToLower(l.Email)] = struct{}{}
		}
	}

	var res Result
	for _, l := range candidates {
		email := strings.ToLower(l.Email)

		dup := false
		if _, ok := seenURLs[l.WebsiteURL]; ok && l.WebsiteURL != "" {
			dup = true
		}
		if !dup && email != "" {
			_, dup = seenEmails[email]
		}

		if dup {
			res.Duplicates = append(res.Duplicates, l)
			continue
		}

		res.New = append(res.New, l)
		if l.WebsiteURL != "" {
			seenURLs[l.WebsiteURL] = struct{}{}
		}
		if email != "" {
			seenEmails[email] = struct{}{}
		}
	}
	return res
}
