package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/FranksOps/prospect/pkg/httpclient"
)

// Default Google Maps Platform endpoints, overridable for tests.
const (
	DefaultGeocodeURL      = "https://maps.googleapis.com/maps/api/geocode/json"
	DefaultPlacesSearchURL = "https://places.googleapis.com/v1/places:searchText"
	DefaultPlaceDetailsURL = "https://places.googleapis.com/v1/places/"
)

// Place is a geo-targeted business hit from the Places API.
type Place struct {
	ID               string
	DisplayName      string
	FormattedAddress string
	WebsiteURI       string
	Phone            string
}

// LatLng is a geographic coordinate pair.
type LatLng struct {
	Lat float64
	Lng float64
}

// PlacesConfig configures the Places client.
type PlacesConfig struct {
	APIKey          string
	GeocodeURL      string
	PlacesSearchURL string
	PlaceDetailsURL string
	Timeout         time.Duration
}

// PlacesClient performs geo-targeted business searches (geocode, text
// search with location bias, place details).
type PlacesClient struct {
	cfg    PlacesConfig
	client *httpclient.Client
}

// NewPlacesClient validates the key and builds a client.
func NewPlacesClient(cfg PlacesConfig) (*PlacesClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("places API key is required, set GOOGLE_PLACES_API_KEY")
	}
	if cfg.GeocodeURL == "" {
		cfg.GeocodeURL = DefaultGeocodeURL
	}
	if cfg.PlacesSearchURL == "" {
		cfg.PlacesSearchURL = DefaultPlacesSearchURL
	}
	if cfg.PlaceDetailsURL == "" {
		cfg.PlaceDetailsURL = DefaultPlaceDetailsURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}

	client, err := httpclient.New(httpclient.Config{Timeout: cfg.Timeout, MaxRedirects: 3})
	if err != nil {
		return nil, fmt.Errorf("failed to create http client: %w", err)
	}
	return &PlacesClient{cfg: cfg, client: client}, nil
}

// Geocode resolves a location string to coordinates. A location with no
// geocoding result returns (nil, nil).
func (p *PlacesClient) Geocode(ctx context.Context, location string) (*LatLng, error) {
	if location == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("address", location)
	params.Set("key", p.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.GeocodeURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create geocode request: %w", err)
	}

	var parsed struct {
		Results []struct {
			Geometry struct {
				Location struct {
					Lat float64 `json:"lat"`
					Lng float64 `json:"lng"`
				} `json:"location"`
			} `json:"geometry"`
		} `json:"results"`
	}
	if err := p.doJSON(ctx, req, &parsed); err != nil {
		return nil, fmt.Errorf("geocode failed: %w", err)
	}
	if len(parsed.Results) == 0 {
		return nil, nil
	}
	loc := parsed.Results[0].Geometry.Location
	return &LatLng{Lat: loc.Lat, Lng: loc.Lng}, nil
}

// TextSearch runs a Places text search, optionally biased to a circle around
// the given center. It returns places and the token for the next page.
func (p *PlacesClient) TextSearch(ctx context.Context, query string, center *LatLng, radiusMeters int, pageToken string, maxResults int) ([]Place, string, error) {
	if maxResults <= 0 {
		maxResults = 20
	}

	payload := map[string]any{
		"textQuery":      query,
		"maxResultCount": maxResults,
	}
	if center != nil && radiusMeters > 0 {
		payload["locationBias"] = map[string]any{
			"circle": map[string]any{
				"center": map[string]any{"latitude": center.Lat, "longitude": center.Lng},
				"radius": radiusMeters,
			},
		}
	}
	if pageToken != "" {
		payload["pageToken"] = pageToken
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode places request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.PlacesSearchURL, bytes.NewReader(body))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create places request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", p.cfg.APIKey)
	req.Header.Set("X-Goog-FieldMask", "places.id,places.displayName,places.formattedAddress,nextPageToken")

	var parsed struct {
		Places []struct {
			ID          string `json:"id"`
			DisplayName struct {
				Text string `json:"text"`
			} `json:"displayName"`
			FormattedAddress string `json:"formattedAddress"`
		} `json:"places"`
		NextPageToken string `json:"nextPageToken"`
	}
	if err := p.doJSON(ctx, req, &parsed); err != nil {
		return nil, "", fmt.Errorf("places search failed: %w", err)
	}

	places := make([]Place, 0, len(parsed.Places))
	for _, pl := range parsed.Places {
		places = append(places, Place{
			ID:               pl.ID,
			DisplayName:      pl.DisplayName.Text,
			FormattedAddress: pl.FormattedAddress,
		})
	}
	return places, parsed.NextPageToken, nil
}

// Details fetches website and phone for a place.
func (p *PlacesClient) Details(ctx context.Context, placeID string) (*Place, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.PlaceDetailsURL+placeID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create details request: %w", err)
	}
	req.Header.Set("X-Goog-Api-Key", p.cfg.APIKey)
	req.Header.Set("X-Goog-FieldMask", "id,displayName,formattedAddress,websiteUri,internationalPhoneNumber")

	var parsed struct {
		ID          string `json:"id"`
		DisplayName struct {
			Text string `json:"text"`
		} `json:"displayName"`
		FormattedAddress         string `json:"formattedAddress"`
		WebsiteURI               string `json:"websiteUri"`
		InternationalPhoneNumber string `json:"internationalPhoneNumber"`
	}
	if err := p.doJSON(ctx, req, &parsed); err != nil {
		return nil, fmt.Errorf("place details failed: %w", err)
	}

	return &Place{
		ID:               parsed.ID,
		DisplayName:      parsed.DisplayName.Text,
		FormattedAddress: parsed.FormattedAddress,
		WebsiteURI:       parsed.WebsiteURI,
		Phone:            parsed.InternationalPhoneNumber,
	}, nil
}

func (p *PlacesClient) doJSON(ctx context.Context, req *http.Request, out any) error {
	resp, err := p.client.Do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
