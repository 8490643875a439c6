// Package config loads runtime configuration from environment variables and
// an optional .env file. Fail-fast: search commands refuse to start without
// the Google API credentials.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Backend names accepted for LEADS_BACKEND.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendJSON     = "json"
)

// Config holds all runtime settings.
type Config struct {
	GoogleAPIKey      string
	GoogleCSEID       string
	PlacesAPIKey      string
	Backend           string
	SQLitePath        string
	PostgresDSN       string
	JSONPath          string
	OutputDir         string
	RequestsPerSecond float64
	SearchTimeout     time.Duration
	MetricsPort       int
}

// Load reads the optional .env file, binds environment variables, and
// returns the resulting Config. Credential validation is deferred to
// RequireSearchCredentials so read-only commands work without API keys.
func Load() (*Config, error) {
	// Missing .env is fine; real environments set variables directly.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("LEADS_BACKEND", BackendSQLite)
	v.SetDefault("LEADS_SQLITE_PATH", "data/leads.db")
	v.SetDefault("LEADS_JSON_PATH", "data/leads.json")
	v.SetDefault("LEADS_OUTPUT_DIR", "output")
	v.SetDefault("SEARCH_REQUESTS_PER_SECOND", 0.5)
	v.SetDefault("SEARCH_TIMEOUT_SECONDS", 30)
	v.SetDefault("METRICS_PORT", 0)

	cfg := &Config{
		GoogleAPIKey:      v.GetString("GOOGLE_API_KEY"),
		GoogleCSEID:       v.GetString("GOOGLE_CSE_ID"),
		PlacesAPIKey:      v.GetString("GOOGLE_PLACES_API_KEY"),
		Backend:           v.GetString("LEADS_BACKEND"),
		SQLitePath:        v.GetString("LEADS_SQLITE_PATH"),
		PostgresDSN:       v.GetString("LEADS_POSTGRES_DSN"),
		JSONPath:          v.GetString("LEADS_JSON_PATH"),
		OutputDir:         v.GetString("LEADS_OUTPUT_DIR"),
		RequestsPerSecond: v.GetFloat64("SEARCH_REQUESTS_PER_SECOND"),
		SearchTimeout:     time.Duration(v.GetInt("SEARCH_TIMEOUT_SECONDS")) * time.Second,
		MetricsPort:       v.GetInt("METRICS_PORT"),
	}

	switch cfg.Backend {
	case BackendSQLite, BackendJSON:
	case BackendPostgres:
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("LEADS_POSTGRES_DSN is required when LEADS_BACKEND=postgres")
		}
	default:
		return nil, fmt.Errorf("unknown LEADS_BACKEND %q, expected sqlite, postgres, or json", cfg.Backend)
	}

	return cfg, nil
}

// RequireSearchCredentials verifies the Google Custom Search credentials are
// present. Called before any network activity so a misconfigured run fails
// immediately.
func (c *Config) RequireSearchCredentials() error {
	if c.GoogleAPIKey == "" {
		return fmt.Errorf("GOOGLE_API_KEY is required")
	}
	if c.GoogleCSEID == "" {
		return fmt.Errorf("GOOGLE_CSE_ID is required")
	}
	return nil
}
