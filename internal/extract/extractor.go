// Package extract turns raw search results into structured leads by applying
// ordered pattern rules over the result title and snippet. Extraction is a
// pure function of its input plus the active template and location
// configuration: a malformed record yields a lead with empty optional fields,
// never an error that would abort the batch.
package extract

import (
	"regexp"
	"strings"

	"github.com/FranksOps/prospect/internal/search"
	"github.com/FranksOps/prospect/internal/storage"
	"github.com/FranksOps/prospect/internal/templates"
)

var (
	// Emails restricted to common consumer providers; business mailboxes
	// behind contact forms are not reachable leads anyway.
	emailPattern = regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@(?:gmail|outlook|hotmail|live|yahoo|icloud|me|aol|comcast|verizon|att)\.(?:com|net)\b`)

	// North-American phone numbers with optional country code, parentheses
	// and separators.
	phonePattern = regexp.MustCompile(`(?:\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`)

	// Title cleanup: drop everything after the first separator or
	// parenthetical/handle marker.
	titleSepPattern    = regexp.MustCompile(`[|—-]+.*$`)
	titleMarkerPattern = regexp.MustCompile(`\s*[@()]\s*.*$`)

	capitalizedWord = regexp.MustCompile(`\b[A-Z][a-z]+\b`)

	companyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:at|with|@)\s+([A-Z][A-Za-z\s&]+(?:Realty|Properties|Homes|Group|Team|Real Estate))`),
		regexp.MustCompile(`([A-Z][A-Za-z\s&]+(?:Realty|Properties|Homes|Group|Team|Real Estate))`),
	}

	spacesPattern = regexp.MustCompile(`\s+`)
	nonDigit      = regexp.MustCompile(`[^\d]`)
)

// nameStopwords filters business words out of name candidates.
var nameStopwords = map[string]struct{}{
	"inc": {}, "llc": {}, "ltd": {}, "corp": {}, "company": {},
	"group": {}, "team": {}, "realty": {}, "properties": {}, "homes": {},
	"real estate": {}, "realtor": {},
}

// Extractor applies the pattern rules for one template/location
// configuration.
type Extractor struct {
	template  string
	locations []string // lowercased
	intents   []string // lowercased
}

// New builds an extractor for the given template and target locations.
func New(tmpl templates.Template, locations []string) *Extractor {
	lowered := make([]string, len(locations))
	for i, loc := range locations {
		lowered[i] = strings.ToLower(loc)
	}
	intents := make([]string, len(tmpl.IntentPhrases))
	for i, phrase := range tmpl.IntentPhrases {
		intents[i] = strings.ToLower(phrase)
	}
	return &Extractor{
		template:  tmpl.Name,
		locations: lowered,
		intents:   intents,
	}
}

// Extract produces one lead from a search result. All fields are
// best-effort; missing input fields simply leave the corresponding lead
// fields empty.
func (e *Extractor) Extract(res search.Result) *storage.Lead {
	combined := res.Title + " " + res.Snippet
	combinedLower := strings.ToLower(combined)

	first, last := NameFromTitle(res.Title)

	return &storage.Lead{
		FirstName:     first,
		LastName:      last,
		CompanyName:   CompanyName(combined),
		WebsiteURL:    res.URL,
		Email:         Email(combined),
		Phone:         Phone(combined),
		LocationMatch: containsAny(combinedLower, e.locations),
		IntentMatch:   containsAny(combinedLower, e.intents),
		LeadSource:    Source(res.DisplayLink),
		Template:      e.template,
	}
}

// Email returns the first provider-restricted email address in text, or "".
func Email(text string) string {
	return emailPattern.FindString(text)
}

// AllEmails returns every matching email address in text.
func AllEmails(text string) []string {
	return emailPattern.FindAllString(text, -1)
}

// Phone returns the first phone number in text normalized to a canonical
// display form, or "" when nothing matches or the digits do not form a
// valid NANP number.
func Phone(text string) string {
	match := phonePattern.FindString(text)
	if match == "" {
		return ""
	}
	return normalizePhone(match)
}

// AllPhones returns every valid phone number in text in canonical form.
func AllPhones(text string) []string {
	var phones []string
	for _, match := range phonePattern.FindAllString(text, -1) {
		if p := normalizePhone(match); p != "" {
			phones = append(phones, p)
		}
	}
	return phones
}

func normalizePhone(match string) string {
	digits := nonDigit.ReplaceAllString(match, "")
	switch {
	case len(digits) == 10:
		return "(" + digits[:3] + ") " + digits[3:6] + "-" + digits[6:]
	case len(digits) == 11 && digits[0] == '1':
		return "+1 (" + digits[1:4] + ") " + digits[4:7] + "-" + digits[7:]
	}
	return ""
}

// NameFromTitle attempts to split a result title into a "First Last" pair.
// Best-effort: the leading segment before any separator is scanned for
// capitalized words, business stopwords are dropped, and the first two
// survivors become the name. Fewer than two survivors fill what they can.
func NameFromTitle(title string) (first, last string) {
	if title == "" {
		return "", ""
	}

	title = titleSepPattern.ReplaceAllString(title, "")
	title = titleMarkerPattern.ReplaceAllString(title, "")

	var names []string
	for _, w := range capitalizedWord.FindAllString(title, -1) {
		if _, stop := nameStopwords[strings.ToLower(w)]; stop {
			continue
		}
		names = append(names, w)
	}

	switch {
	case len(names) >= 2:
		return names[0], names[1]
	case len(names) == 1:
		return names[0], ""
	}
	return "", ""
}

// CompanyName extracts a company name from text using keyword-adjacent
// heuristics ("at X Realty", bare "X Real Estate"). May return "".
func CompanyName(text string) string {
	if text == "" {
		return ""
	}
	for _, pattern := range companyPatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		company := spacesPattern.ReplaceAllString(strings.TrimSpace(m[1]), " ")
		if len(company) > 3 {
			return company
		}
	}
	return ""
}

// Source derives a lead source label from a result's display link, e.g.
// "www.reddit.com" -> "reddit", "m.facebook.com" -> "facebook".
func Source(displayLink string) string {
	host := strings.ToLower(strings.TrimSpace(displayLink))
	if host == "" {
		return ""
	}
	host = strings.TrimPrefix(host, "www.")
	labels := strings.Split(host, ".")
	if len(labels) >= 2 {
		return labels[len(labels)-2]
	}
	return labels[0]
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
