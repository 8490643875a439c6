package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestPlacesQuery(t *testing.T) {
	cases := map[string]string{
		"realtors":    "realtor",
		"contractors": "contractor",
		"investors":   "real estate investor",
		"home_buyers": "home buyers",
	}
	for name, want := range cases {
		if got := PlacesQuery(name); got != want {
			t.Errorf("PlacesQuery(%q) = %q, want %q", name, got, want)
		}
	}
}

// newPlacesTestServer serves geocode, text search, and details on one mux.
func newPlacesTestServer(t *testing.T) (*httptest.Server, *PlacesClient) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/geocode", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[{"geometry":{"location":{"lat":42.36,"lng":-71.06}}}]}`)
	})
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"places":[
			{"id":"p1","displayName":{"text":"Beacon Hill Realty"},"formattedAddress":"Boston, MA"},
			{"id":"p2","displayName":{"text":"Charles River Homes"},"formattedAddress":"Cambridge, MA"}
		]}`)
	})
	mux.HandleFunc("/details/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/details/")
		fmt.Fprintf(w, `{"id":%q,"displayName":{"text":"Beacon Hill Realty"},"formattedAddress":"Boston, MA","websiteUri":"https://%s.example.com","internationalPhoneNumber":"+1 617-555-0142"}`, id, id)
	})

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	client, err := NewPlacesClient(PlacesConfig{
		APIKey:          "k",
		GeocodeURL:      ts.URL + "/geocode",
		PlacesSearchURL: ts.URL + "/search",
		PlaceDetailsURL: ts.URL + "/details/",
	})
	if err != nil {
		t.Fatalf("NewPlacesClient: %v", err)
	}
	return ts, client
}

func TestPlacesProvider_Search(t *testing.T) {
	_, client := newPlacesTestServer(t)

	provider := &PlacesProvider{
		Client:       client,
		Locations:    []string{"Boston MA"},
		RadiusMiles:  25,
		FetchDetails: true,
	}

	results, err := provider.Search(context.Background(), "realtor", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].URL != "https://p1.example.com" {
		t.Errorf("URL = %q, want the place website", results[0].URL)
	}
	if !strings.Contains(results[0].Snippet, "+1 617-555-0142") {
		t.Errorf("snippet should carry the phone, got %q", results[0].Snippet)
	}
	// geocode + search + two details lookups
	if provider.QueriesUsed() != 4 {
		t.Errorf("QueriesUsed = %d, want 4", provider.QueriesUsed())
	}
}

func TestPlacesProvider_DedupesAcrossLocations(t *testing.T) {
	_, client := newPlacesTestServer(t)

	provider := &PlacesProvider{
		Client:    client,
		Locations: []string{"Boston MA", "Cambridge MA"},
	}

	// Both locations return the same two place IDs.
	results, err := provider.Search(context.Background(), "realtor", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("got %d results, want 2 after ID dedup", len(results))
	}
}

func TestPlacesProvider_WithoutDetailsUsesMapsLink(t *testing.T) {
	_, client := newPlacesTestServer(t)

	provider := &PlacesProvider{
		Client:    client,
		Locations: []string{"Boston MA"},
	}

	results, err := provider.Search(context.Background(), "realtor", 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if want := "https://www.google.com/maps/place/?q=place_id:p1"; results[0].URL != want {
		t.Errorf("URL = %q, want %q", results[0].URL, want)
	}
	if strings.Contains(results[0].Snippet, "Phone") {
		t.Errorf("snippet should not carry a phone without details, got %q", results[0].Snippet)
	}
}

func TestPlaceResult_EmptyWebsite(t *testing.T) {
	r := placeResult(Place{ID: "x1", DisplayName: "Test Realty", FormattedAddress: "Boston, MA"})
	if r.DisplayLink != "google.com" {
		t.Errorf("DisplayLink = %q", r.DisplayLink)
	}
	if r.Snippet != "Boston, MA" {
		t.Errorf("Snippet = %q", r.Snippet)
	}
}
