// Package templates holds the pre-built search templates for each lead
// category, plus the shared site and email-domain lists the query builder
// draws from.
package templates

import (
	"fmt"
	"sort"
	"strings"
)

// EmailDomains are the consumer email providers worth surfacing in query
// strings. Results mentioning one of these usually expose a direct contact.
var EmailDomains = []string{
	"@gmail.com", "@outlook.com", "@hotmail.com", "@live.com",
	"@yahoo.com", "@icloud.com", "@me.com", "@aol.com",
	"@comcast.net", "@verizon.net", "@att.net",
}

// SocialSites are the sites searched by default.
var SocialSites = []string{
	"instagram.com",
	"facebook.com",
	"twitter.com",
	"linkedin.com",
	"reddit.com",
	"tiktok.com",
	"nextdoor.com",
	"youtube.com",
	"pinterest.com",
	"craigslist.org",
}

// Template is a named preset combining search keywords, target sites and
// intent phrases for one lead category.
type Template struct {
	Name          string
	Keywords      []string
	IntentPhrases []string
	Sites         []string
	ExcludeTerms  []string
	Description   string
}

var catalog = map[string]Template{
	"realtors": {
		Keywords: []string{
			"realtor", "real estate agent", "listing agent",
			"buyer's agent", "broker", "real estate broker",
		},
		IntentPhrases: []string{
			"looking for a realtor", "need a realtor", "recommend a realtor",
			"real estate agent recommendations", "seeking a realtor",
			"looking for a real estate agent",
		},
		ExcludeTerms: []string{"job", "hiring", "career"},
		Description:  "Find real estate agents and realtors",
	},
	"contractors": {
		Keywords: []string{
			"contractor", "general contractor", "licensed contractor",
			"home improvement", "handyman", "remodeling", "renovation",
			"home renovation",
		},
		IntentPhrases: []string{
			"looking for a contractor", "need a contractor",
			"recommend a contractor", "any contractor recommendations",
			"looking for a handyman", "need a handyman",
		},
		ExcludeTerms: []string{"job", "hiring", "career"},
		Description:  "Find contractors and home improvement professionals",
	},
	"home_buyers": {
		Keywords: []string{
			"just bought a house", "new homeowner", "bought my first home",
			"closed on my house", "new home purchase", "house closing",
			"finally a homeowner", "offer accepted", "under contract",
		},
		IntentPhrases: []string{
			"looking to buy a home", "house hunting", "first time buyer",
			"buying a house", "pre-approved for mortgage",
		},
		ExcludeTerms: []string{"realtor", "agent", "for sale", "listing"},
		Description:  "Find people who recently bought homes",
	},
	"first_time_buyers": {
		Keywords: []string{
			"first time home buyer", "first home", "buying my first house",
			"looking to buy a home", "house hunting",
			"pre-approved for mortgage", "mortgage pre-approval",
		},
		IntentPhrases: []string{
			"first time buyer", "buying my first home", "looking to buy a home",
			"house hunting", "need a mortgage",
		},
		ExcludeTerms: []string{"realtor", "agent", "tips", "advice"},
		Description:  "Find first-time home buyers",
	},
	"home_sellers": {
		Keywords: []string{
			"selling my house", "need to sell my home", "house for sale",
			"looking for a realtor", "need a real estate agent",
			"want to list my house", "sell my home", "list my home",
		},
		IntentPhrases: []string{
			"need to sell my house", "looking to sell my home",
			"want to list my house", "selling my home", "need a realtor",
		},
		ExcludeTerms: []string{"realtor", "agent", "I can help"},
		Description:  "Find people looking to sell their homes",
	},
	"downsizing": {
		Keywords: []string{
			"downsizing our home", "empty nester", "moving to smaller house",
			"selling family home", "too much house", "retiring and moving",
			"downsizing house",
		},
		IntentPhrases: []string{
			"looking to downsize", "downsizing our home",
			"moving to a smaller house", "sell family home",
			"empty nest downsizing",
		},
		ExcludeTerms: []string{"realtor", "agent"},
		Description:  "Find people downsizing/selling homes",
	},
	"renovation_needed": {
		Keywords: []string{
			"need renovation", "fixer upper", "home improvement needed",
			"need to remodel", "kitchen renovation", "bathroom remodel",
			"need contractor", "home remodel", "renovation project",
		},
		IntentPhrases: []string{
			"need a contractor", "looking for a contractor", "need renovation",
			"need to remodel", "remodeling contractor",
		},
		ExcludeTerms: []string{"contractor", "business", "hire me"},
		Description:  "Find people needing home renovations",
	},
	"home_repair": {
		Keywords: []string{
			"need handyman", "home repair needed", "roof repair", "roof leak",
			"leaking roof", "plumbing leak", "plumbing issue", "water heater",
			"pipe burst", "electrical problem", "electrical repair",
			"hvac repair", "ac repair", "furnace repair", "sump pump",
			"foundation crack", "drywall repair", "water damage",
		},
		IntentPhrases: []string{
			"need repair", "need a handyman", "looking for repair", "fix my",
			"repair needed", "plumber recommendation",
			"electrician recommendation", "roof repair", "plumbing issue",
			"hvac repair", "water heater repair",
		},
		ExcludeTerms: []string{"contractor", "business", "hire me"},
		Description:  "Find people needing home repairs",
	},
	"relocating": {
		Keywords: []string{
			"moving to", "relocating to", "transferring to", "new job in",
			"just moved to", "looking for housing in", "moving for work",
			"relocation",
		},
		IntentPhrases: []string{
			"moving to", "relocating to", "just moved to",
			"looking for housing", "relocation assistance",
		},
		ExcludeTerms: []string{"realtor", "agent", "moving company"},
		Description:  "Find people relocating to new areas",
	},
	"investors": {
		Keywords: []string{
			"investment property", "rental property",
			"looking to invest in real estate", "building portfolio",
			"fix and flip", "house flipping", "cash buyer",
			"real estate investor",
		},
		IntentPhrases: []string{
			"looking to invest", "seeking investment property",
			"buying rental property", "fix and flip", "real estate investor",
		},
		ExcludeTerms: []string{"course", "coaching", "mentor"},
		Description:  "Find real estate investors",
	},
	"urgent_sellers": {
		Keywords: []string{
			"need to sell fast", "quick sale needed", "divorce selling house",
			"inherited house", "foreclosure", "sell house quickly",
			"motivated seller", "need to sell quickly",
		},
		IntentPhrases: []string{
			"need to sell fast", "sell my house quickly", "urgent sale",
			"motivated seller", "sell fast",
		},
		ExcludeTerms: []string{"buy houses", "we buy", "cash offer"},
		Description:  "Find people who need to sell quickly",
	},
}

// Get returns the template with the given name. Unknown names fail with an
// error listing every valid name; the caller surfaces it directly, no retry.
func Get(name string) (Template, error) {
	t, ok := catalog[name]
	if !ok {
		return Template{}, fmt.Errorf("template %q not found, available templates: %s",
			name, strings.Join(Names(), ", "))
	}
	t.Name = name
	if len(t.Sites) == 0 {
		t.Sites = SocialSites
	}
	return t, nil
}

// Names returns all template names in stable alphabetical order.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List returns template names mapped to their descriptions.
func List() map[string]string {
	out := make(map[string]string, len(catalog))
	for name, t := range catalog {
		out[name] = t.Description
	}
	return out
}

// Categories groups template names for display.
func Categories() map[string][]string {
	return map[string][]string{
		"Service Providers": {"realtors", "contractors"},
		"Home Buyers":       {"home_buyers", "first_time_buyers"},
		"Home Sellers":      {"home_sellers", "downsizing", "urgent_sellers"},
		"Home Improvement":  {"renovation_needed", "home_repair"},
		"Other":             {"relocating", "investors"},
	}
}
