// Package export serializes final lead sets to spreadsheet-friendly files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/FranksOps/prospect/internal/storage"
)

// Columns is the fixed export column set, in order.
var Columns = []string{
	"first_name",
	"last_name",
	"company_name",
	"website_url",
	"email",
	"phone",
}

// WriteCSV writes leads to w with the fixed column set.
func WriteCSV(w io.Writer, leads []*storage.Lead) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, l := range leads {
		record := []string{
			l.FirstName,
			l.LastName,
			l.CompanyName,
			l.WebsiteURL,
			l.Email,
			l.Phone,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write lead: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

// WriteJSON writes leads to w as an indented JSON array of the exported
// fields.
func WriteJSON(w io.Writer, leads []*storage.Lead) error {
	type row struct {
		FirstName   string `json:"first_name"`
		LastName    string `json:"last_name"`
		CompanyName string `json:"company_name"`
		WebsiteURL  string `json:"website_url"`
		Email       string `json:"email"`
		Phone       string `json:"phone"`
	}

	rows := make([]row, 0, len(leads))
	for _, l := range leads {
		rows = append(rows, row{
			FirstName:   l.FirstName,
			LastName:    l.LastName,
			CompanyName: l.CompanyName,
			WebsiteURL:  l.WebsiteURL,
			Email:       l.Email,
			Phone:       l.Phone,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("failed to encode leads: %w", err)
	}
	return nil
}

// ToFile writes leads to path in the given format ("csv" or "json"),
// creating parent directories. An empty path gets a timestamped name under
// dir. It returns the path written.
func ToFile(leads []*storage.Lead, path, format, dir string) (string, error) {
	ext := "." + format
	if path == "" {
		if dir == "" {
			dir = "output"
		}
		path = filepath.Join(dir, "leads_"+time.Now().Format("20060102_150405")+ext)
	} else if !strings.HasSuffix(path, ext) {
		path += ext
	}

	if parent := filepath.Dir(path); parent != "." && parent != "" {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return "", fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	switch format {
	case "csv":
		err = WriteCSV(f, leads)
	case "json":
		err = WriteJSON(f, leads)
	default:
		return "", fmt.Errorf("unknown export format %q (want csv or json)", format)
	}
	if err != nil {
		return "", err
	}
	return path, nil
}
