package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/FranksOps/prospect/pkg/ratelimit"
)

// metersPerMile converts the CLI's radius flag for the Places API.
const metersPerMile = 1609.34

// placesPageSize is the Places text search maximum per request.
const placesPageSize = 20

// ensure PlacesProvider implements Provider
var _ Provider = (*PlacesProvider)(nil)

// PlacesQuery maps a template name to a short business-category query for
// the Places API. Places matches categories, not the long keyword queries
// built for web search.
func PlacesQuery(templateName string) string {
	switch templateName {
	case "realtors":
		return "realtor"
	case "contractors":
		return "contractor"
	case "investors":
		return "real estate investor"
	}
	return strings.ReplaceAll(templateName, "_", " ")
}

// PlacesProvider adapts the Places client to the Provider interface so
// geo-targeted business hits flow through the same extract, dedupe, and
// export stages as web search results.
type PlacesProvider struct {
	Client    *PlacesClient
	Locations []string
	// RadiusMiles biases each location's search circle. Zero skips the
	// bias and lets the API rank on the query text alone.
	RadiusMiles int
	// FetchDetails looks up website and phone per hit. Address-only hits
	// carry no contact channel and would be dropped downstream.
	FetchDetails bool
	Limiter      *ratelimit.Limiter
	Logger       *slog.Logger

	queries atomic.Int64
}

// QueriesUsed reports API calls spent, including geocoding and details.
func (pp *PlacesProvider) QueriesUsed() int {
	return int(pp.queries.Load())
}

func (pp *PlacesProvider) logger() *slog.Logger {
	if pp.Logger != nil {
		return pp.Logger
	}
	return slog.Default()
}

func (pp *PlacesProvider) wait(ctx context.Context) error {
	if pp.Limiter == nil {
		return nil
	}
	return pp.Limiter.Wait(ctx)
}

// Search geocodes each configured location and pages through Places text
// search around it, deduplicating hits by place ID across locations. The
// query is the short category form, not a web search expression.
func (pp *PlacesProvider) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = placesPageSize
	}
	radiusMeters := int(float64(pp.RadiusMiles) * metersPerMile)

	locations := pp.Locations
	if len(locations) == 0 {
		locations = []string{""}
	}

	seen := make(map[string]bool)
	var results []Result

	for _, loc := range locations {
		if len(results) >= limit {
			break
		}

		if err := pp.wait(ctx); err != nil {
			return results, fmt.Errorf("rate limiter interrupted: %w", err)
		}
		pp.queries.Add(1)
		center, err := pp.Client.Geocode(ctx, loc)
		if err != nil {
			return results, fmt.Errorf("geocode %q failed: %w", loc, err)
		}
		if loc != "" && center == nil {
			pp.logger().Warn("location did not geocode, skipping", "location", loc)
			continue
		}

		locQuery := query
		if loc != "" {
			locQuery = query + " in " + loc
		}

		pageToken := ""
		for len(results) < limit {
			if err := pp.wait(ctx); err != nil {
				return results, fmt.Errorf("rate limiter interrupted: %w", err)
			}

			want := limit - len(results)
			if want > placesPageSize {
				want = placesPageSize
			}
			pp.queries.Add(1)
			places, next, err := pp.Client.TextSearch(ctx, locQuery, center, radiusMeters, pageToken, want)
			if err != nil {
				return results, fmt.Errorf("places search failed for %q: %w", loc, err)
			}

			for _, pl := range places {
				if pl.ID == "" || seen[pl.ID] {
					continue
				}
				seen[pl.ID] = true

				if pp.FetchDetails {
					pp.queries.Add(1)
					det, err := pp.Client.Details(ctx, pl.ID)
					if err != nil {
						pp.logger().Warn("place details failed", "place_id", pl.ID, "error", err)
					} else {
						pl = *det
					}
				}

				results = append(results, placeResult(pl))
				if len(results) >= limit {
					break
				}
			}

			if next == "" {
				break
			}
			pageToken = next
		}
	}

	return results, nil
}

// placeResult shapes a place like a web search hit so the contact extractor
// can process it unchanged. The phone rides in the snippet where the
// extractor's number pattern finds it.
func placeResult(pl Place) Result {
	link := pl.WebsiteURI
	if link == "" && pl.ID != "" {
		link = "https://www.google.com/maps/place/?q=place_id:" + pl.ID
	}

	snippet := pl.FormattedAddress
	if pl.Phone != "" {
		if snippet != "" {
			snippet += ". "
		}
		snippet += "Phone: " + pl.Phone
	}

	return Result{
		Title:       pl.DisplayName,
		URL:         link,
		Snippet:     snippet,
		DisplayLink: "google.com",
	}
}
