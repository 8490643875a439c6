package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPlacesClient_RequiresKey(t *testing.T) {
	if _, err := NewPlacesClient(PlacesConfig{}); err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestGeocode(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("address") != "Boston MA" {
			t.Errorf("address = %q", r.URL.Query().Get("address"))
		}
		fmt.Fprint(w, `{"results":[{"geometry":{"location":{"lat":42.36,"lng":-71.06}}}]}`)
	}))
	defer ts.Close()

	client, err := NewPlacesClient(PlacesConfig{APIKey: "k", GeocodeURL: ts.URL})
	if err != nil {
		t.Fatal(err)
	}

	loc, err := client.Geocode(context.Background(), "Boston MA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc == nil || loc.Lat != 42.36 || loc.Lng != -71.06 {
		t.Errorf("loc = %+v", loc)
	}
}

func TestGeocode_NoResults(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[]}`)
	}))
	defer ts.Close()

	client, _ := NewPlacesClient(PlacesConfig{APIKey: "k", GeocodeURL: ts.URL})
	loc, err := client.Geocode(context.Background(), "Nowhere Zplace")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc != nil {
		t.Errorf("expected nil location, got %+v", loc)
	}
}

func TestTextSearch_SendsFieldMask(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Goog-Api-Key") != "k" {
			t.Error("missing API key header")
		}
		if r.Header.Get("X-Goog-FieldMask") == "" {
			t.Error("missing field mask header")
		}
		fmt.Fprint(w, `{"places":[{"id":"p1","displayName":{"text":"Beacon Hill Realty"},"formattedAddress":"Boston, MA"}],"nextPageToken":"tok"}`)
	}))
	defer ts.Close()

	client, _ := NewPlacesClient(PlacesConfig{APIKey: "k", PlacesSearchURL: ts.URL})
	places, token, err := client.TextSearch(context.Background(), "realtors in Boston", &LatLng{Lat: 42.36, Lng: -71.06}, 5000, "", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(places) != 1 || places[0].DisplayName != "Beacon Hill Realty" {
		t.Errorf("places = %+v", places)
	}
	if token != "tok" {
		t.Errorf("token = %q", token)
	}
}

func TestDetails(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"p1","displayName":{"text":"Beacon Hill Realty"},"websiteUri":"https://bhr.example.com","internationalPhoneNumber":"+1 617-555-0142"}`)
	}))
	defer ts.Close()

	client, _ := NewPlacesClient(PlacesConfig{APIKey: "k", PlaceDetailsURL: ts.URL + "/"})
	place, err := client.Details(context.Background(), "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if place.WebsiteURI != "https://bhr.example.com" || place.Phone != "+1 617-555-0142" {
		t.Errorf("place = %+v", place)
	}
}
