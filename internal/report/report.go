package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/template"
	"time"

	"github.com/FranksOps/prospect/internal/storage"
)

// Summary aggregates the outcome of one search run.
type Summary struct {
	Template        string
	Query           string
	TotalResults    int
	TotalLeads      int
	WithEmail       int
	WithPhone       int
	WithName        int
	WithCompany     int
	LocationMatches int
	IntentMatches   int
	NewLeads        int
	DuplicateLeads  int
	QueriesUsed     int
	StartTime       time.Time
	Duration        time.Duration
}

// GenerateSummary computes extraction hit counts over the final lead set.
// New/duplicate/query counters come from the pipeline and are filled by the
// caller.
func GenerateSummary(leads []*storage.Lead) Summary {
	var s Summary
	s.TotalLeads = len(leads)
	for _, l := range leads {
		if l.Email != "" {
			s.WithEmail++
		}
		if l.Phone != "" {
			s.WithPhone++
		}
		if l.FirstName != "" || l.LastName != "" {
			s.WithName++
		}
		if l.CompanyName != "" {
			s.WithCompany++
		}
		if l.LocationMatch {
			s.LocationMatches++
		}
		if l.IntentMatch {
			s.IntentMatches++
		}
	}
	return s
}

// Pct renders a count as a percentage of total leads, for templates.
func (s Summary) Pct(n int) string {
	if s.TotalLeads == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(n)/float64(s.TotalLeads)*100)
}

// WriteJSON writes the summary to the provided writer in JSON format.
func WriteJSON(w io.Writer, summary Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	return nil
}

// WriteText writes a human-readable text summary to the provided writer.
func WriteText(w io.Writer, summary Summary) error {
	const textTmpl = `Lead Search Summary
-------------------
Template:         {{.Template}}
Results fetched:  {{.TotalResults}}
API queries used: {{.QueriesUsed}}
Duration:         {{.Duration}}

Leads extracted:  {{.TotalLeads}}
  with email:     {{.WithEmail}} ({{.Pct .WithEmail}})
  with phone:     {{.WithPhone}} ({{.Pct .WithPhone}})
  with name:      {{.WithName}} ({{.Pct .WithName}})
  with company:   {{.WithCompany}} ({{.Pct .WithCompany}})
  location match: {{.LocationMatches}}
  intent match:   {{.IntentMatches}}

New leads:        {{.NewLeads}}
Duplicates:       {{.DuplicateLeads}}
`

	t, err := template.New("textReport").Parse(textTmpl)
	if err != nil {
		return fmt.Errorf("failed to parse report template: %w", err)
	}
	if err := t.Execute(w, summary); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

// WriteHTML writes a basic HTML report to the provided writer.
func WriteHTML(w io.Writer, summary Summary) error {
	const htmlTmpl = `<!DOCTYPE html>
<html>
<head>
<title>Lead Search Report</title>
<style>
  body { font-family: sans-serif; margin: 40px; color: #333; }
  h1 { border-bottom: 2px solid #ccc; padding-bottom: 10px; }
  .stat-card { display: inline-block; padding: 20px; margin: 10px 10px 10px 0; background: #f4f4f4; border-radius: 5px; min-width: 150px; }
  .stat-val { font-size: 24px; font-weight: bold; }
  table { border-collapse: collapse; margin-top: 10px; }
  th, td { padding: 8px 12px; border: 1px solid #ccc; text-align: left; }
  th { background: #eaeaea; }
</style>
</head>
<body>
  <h1>Lead Search Report</h1>
  <p><strong>Template:</strong> {{.Template}} &mdash; {{.TotalResults}} results in {{.Duration}} ({{.QueriesUsed}} API queries)</p>

  <div class="stat-card">
    <div>Leads Extracted</div>
    <div class="stat-val">{{.TotalLeads}}</div>
  </div>
  <div class="stat-card">
    <div>New Leads</div>
    <div class="stat-val" style="color: {{if gt .NewLeads 0}}green{{else}}red{{end}};">{{.NewLeads}}</div>
  </div>
  <div class="stat-card">
    <div>Duplicates</div>
    <div class="stat-val">{{.DuplicateLeads}}</div>
  </div>

  <h3>Extraction Hit Rates</h3>
  <table>
    <tr><th>Field</th><th>Count</th><th>Rate</th></tr>
    <tr><td>Email</td><td>{{.WithEmail}}</td><td>{{.Pct .WithEmail}}</td></tr>
    <tr><td>Phone</td><td>{{.WithPhone}}</td><td>{{.Pct .WithPhone}}</td></tr>
    <tr><td>Name</td><td>{{.WithName}}</td><td>{{.Pct .WithName}}</td></tr>
    <tr><td>Company</td><td>{{.WithCompany}}</td><td>{{.Pct .WithCompany}}</td></tr>
    <tr><td>Location match</td><td>{{.LocationMatches}}</td><td>{{.Pct .LocationMatches}}</td></tr>
    <tr><td>Intent match</td><td>{{.IntentMatches}}</td><td>{{.Pct .IntentMatches}}</td></tr>
  </table>
</body>
</html>
`
	t, err := template.New("htmlReport").Parse(htmlTmpl)
	if err != nil {
		return fmt.Errorf("failed to parse report template: %w", err)
	}
	if err := t.Execute(w, summary); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}
