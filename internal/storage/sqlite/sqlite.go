package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/FranksOps/prospect/internal/storage"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ensure sqliteBackend implements storage.Backend
var _ storage.Backend = (*sqliteBackend)(nil)

type sqliteBackend struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS leads (
	id TEXT PRIMARY KEY,
	first_name TEXT,
	last_name TEXT,
	company_name TEXT,
	website_url TEXT UNIQUE,
	email TEXT,
	phone TEXT,
	location_match BOOLEAN NOT NULL DEFAULT 0,
	intent_match BOOLEAN NOT NULL DEFAULT 0,
	lead_source TEXT,
	post_created_at DATETIME,
	template TEXT,
	locations TEXT,
	url_hash TEXT UNIQUE,
	created_at DATETIME NOT NULL,
	last_seen DATETIME NOT NULL,
	times_seen INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS search_history (
	id TEXT PRIMARY KEY,
	template TEXT,
	locations TEXT,
	num_results INTEGER NOT NULL,
	new_leads INTEGER NOT NULL,
	duplicate_leads INTEGER NOT NULL,
	queries_used INTEGER NOT NULL,
	timestamp DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_leads_url_hash ON leads(url_hash);
CREATE INDEX IF NOT EXISTS idx_leads_email ON leads(email);
CREATE INDEX IF NOT EXISTS idx_leads_template ON leads(template);
`

// New creates a new SQLite-backed storage.Backend, creating the database
// file's directory when needed.
func New(dsn string) (storage.Backend, error) {
	if dir := filepath.Dir(dsn); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &sqliteBackend{db: db}, nil
}

func (b *sqliteBackend) AddLeads(ctx context.Context, leads []*storage.Lead, rec storage.SearchRecord) ([]*storage.Lead, []*storage.Lead, error) {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	var inserted, known []*storage.Lead

	for _, lead := range leads {
		if lead.WebsiteURL == "" {
			continue // nothing to key the duplicate check on
		}
		hash := lead.URLHash()

		var existingID string
		var timesSeen int
		err := tx.QueryRowContext(ctx,
			`SELECT id, times_seen FROM leads WHERE url_hash = ?`, hash,
		).Scan(&existingID, &timesSeen)

		switch {
		case err == sql.ErrNoRows:
			if lead.ID == "" {
				lead.ID = uuid.New().String()
			}
			lead.CreatedAt = now
			lead.LastSeen = now
			lead.TimesSeen = 1

			_, err := tx.ExecContext(ctx, `
				INSERT INTO leads (
					id, first_name, last_name, company_name, website_url,
					email, phone, location_match, intent_match, lead_source,
					post_created_at, template, locations, url_hash,
					created_at, last_seen, times_seen
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)`,
				lead.ID, lead.FirstName, lead.LastName, lead.CompanyName,
				lead.WebsiteURL, lead.Email, lead.Phone, lead.LocationMatch,
				lead.IntentMatch, lead.LeadSource, nullableTime(lead.PostCreatedAt),
				rec.Template, rec.Locations, hash, now, now,
			)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to insert lead: %w", err)
			}
			inserted = append(inserted, lead)

		case err == nil:
			// Refresh the existing row: bump seen counters and fill fields
			// the new extraction found that the stored lead lacks.
			_, err := tx.ExecContext(ctx, `
				UPDATE leads SET
					last_seen = ?,
					times_seen = ?,
					email = COALESCE(NULLIF(?, ''), email),
					phone = COALESCE(NULLIF(?, ''), phone),
					first_name = COALESCE(NULLIF(?, ''), first_name),
					last_name = COALESCE(NULLIF(?, ''), last_name),
					company_name = COALESCE(NULLIF(?, ''), company_name)
				WHERE id = ?`,
				now, timesSeen+1, lead.Email, lead.Phone,
				lead.FirstName, lead.LastName, lead.CompanyName, existingID,
			)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to refresh lead: %w", err)
			}
			lead.ID = existingID
			known = append(known, lead)

		default:
			return nil, nil, fmt.Errorf("failed to check for duplicate: %w", err)
		}
	}

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = now
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO search_history (
			id, template, locations, num_results, new_leads,
			duplicate_leads, queries_used, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Template, rec.Locations, rec.NumResults,
		len(inserted), len(known), rec.QueriesUsed, rec.Timestamp,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to record search: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit: %w", err)
	}
	return inserted, known, nil
}

const leadColumns = `id, first_name, last_name, company_name, website_url,
	email, phone, location_match, intent_match, lead_source, post_created_at,
	template, locations, created_at, last_seen, times_seen`

func (b *sqliteBackend) Leads(ctx context.Context, filter storage.Filter) ([]*storage.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE 1=1`
	args := []any{}

	if filter.Template != "" {
		query += ` AND template = ?`
		args = append(args, filter.Template)
	}
	if filter.LeadSource != "" {
		query += ` AND lead_source = ?`
		args = append(args, filter.LeadSource)
	}

	query += ` ORDER BY created_at DESC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leads: %w", err)
	}
	defer rows.Close()

	var leads []*storage.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read leads: %w", err)
	}
	return leads, nil
}

func scanLead(rows *sql.Rows) (*storage.Lead, error) {
	var l storage.Lead
	var postCreated sql.NullTime
	err := rows.Scan(
		&l.ID, &l.FirstName, &l.LastName, &l.CompanyName, &l.WebsiteURL,
		&l.Email, &l.Phone, &l.LocationMatch, &l.IntentMatch, &l.LeadSource,
		&postCreated, &l.Template, &l.Locations, &l.CreatedAt, &l.LastSeen,
		&l.TimesSeen,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan lead: %w", err)
	}
	if postCreated.Valid {
		t := postCreated.Time
		l.PostCreatedAt = &t
	}
	return &l, nil
}

func (b *sqliteBackend) History(ctx context.Context, limit int) ([]*storage.SearchRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := b.db.QueryContext(ctx, `
		SELECT id, template, locations, num_results, new_leads,
			duplicate_leads, queries_used, timestamp
		FROM search_history ORDER BY timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var records []*storage.SearchRecord
	for rows.Next() {
		var r storage.SearchRecord
		err := rows.Scan(&r.ID, &r.Template, &r.Locations, &r.NumResults,
			&r.NewLeads, &r.DuplicateLeads, &r.QueriesUsed, &r.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("failed to scan search record: %w", err)
		}
		records = append(records, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	return records, nil
}

func (b *sqliteBackend) Stats(ctx context.Context) (*storage.Stats, error) {
	var s storage.Stats

	row := b.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(CASE WHEN email != '' THEN 1 END),
			COUNT(CASE WHEN phone != '' THEN 1 END)
		FROM leads`)
	if err := row.Scan(&s.TotalLeads, &s.LeadsWithEmail, &s.LeadsWithPhone); err != nil {
		return nil, fmt.Errorf("failed to read lead stats: %w", err)
	}

	midnight := time.Now().UTC().Truncate(24 * time.Hour)
	row = b.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM leads WHERE created_at >= ?`, midnight)
	if err := row.Scan(&s.NewToday); err != nil {
		return nil, fmt.Errorf("failed to count today's leads: %w", err)
	}

	row = b.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM search_history`)
	if err := row.Scan(&s.TotalSearches); err != nil {
		return nil, fmt.Errorf("failed to count searches: %w", err)
	}

	row = b.db.QueryRowContext(ctx, `
		SELECT template FROM search_history
		GROUP BY template ORDER BY COUNT(*) DESC LIMIT 1`)
	if err := row.Scan(&s.MostUsedTemplate); err != nil {
		if err != sql.ErrNoRows {
			return nil, fmt.Errorf("failed to find most used template: %w", err)
		}
		s.MostUsedTemplate = "None"
	}

	return &s, nil
}

func (b *sqliteBackend) SetIntentMatch(ctx context.Context, id string, match bool) error {
	_, err := b.db.ExecContext(ctx,
		`UPDATE leads SET intent_match = ? WHERE id = ?`, match, id)
	if err != nil {
		return fmt.Errorf("failed to update intent match: %w", err)
	}
	return nil
}

func (b *sqliteBackend) SetPostCreatedAt(ctx context.Context, id string, ts time.Time) error {
	_, err := b.db.ExecContext(ctx,
		`UPDATE leads SET post_created_at = ? WHERE id = ?`, ts.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update post timestamp: %w", err)
	}
	return nil
}

func (b *sqliteBackend) DeleteLead(ctx context.Context, id string) error {
	_, err := b.db.ExecContext(ctx, `DELETE FROM leads WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete lead: %w", err)
	}
	return nil
}

func (b *sqliteBackend) Close() error {
	return b.db.Close()
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
