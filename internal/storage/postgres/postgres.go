package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/FranksOps/prospect/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ensure postgresBackend implements storage.Backend
var _ storage.Backend = (*postgresBackend)(nil)

type postgresBackend struct {
	pool *pgxpool.Pool
}

const schema = `
CREATE TABLE IF NOT EXISTS leads (
	id TEXT PRIMARY KEY,
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	company_name TEXT NOT NULL DEFAULT '',
	website_url TEXT UNIQUE,
	email TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	location_match BOOLEAN NOT NULL DEFAULT FALSE,
	intent_match BOOLEAN NOT NULL DEFAULT FALSE,
	lead_source TEXT NOT NULL DEFAULT '',
	post_created_at TIMESTAMPTZ,
	template TEXT NOT NULL DEFAULT '',
	locations TEXT NOT NULL DEFAULT '',
	url_hash TEXT UNIQUE,
	created_at TIMESTAMPTZ NOT NULL,
	last_seen TIMESTAMPTZ NOT NULL,
	times_seen INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS search_history (
	id TEXT PRIMARY KEY,
	template TEXT NOT NULL DEFAULT '',
	locations TEXT NOT NULL DEFAULT '',
	num_results INTEGER NOT NULL,
	new_leads INTEGER NOT NULL,
	duplicate_leads INTEGER NOT NULL,
	queries_used INTEGER NOT NULL,
	timestamp TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_leads_url_hash ON leads(url_hash);
CREATE INDEX IF NOT EXISTS idx_leads_email ON leads(email);
CREATE INDEX IF NOT EXISTS idx_leads_template ON leads(template);
`

// New creates a new Postgres-backed storage.Backend.
func New(ctx context.Context, dsn string) (storage.Backend, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &postgresBackend{pool: pool}, nil
}

func (b *postgresBackend) AddLeads(ctx context.Context, leads []*storage.Lead, rec storage.SearchRecord) ([]*storage.Lead, []*storage.Lead, error) {
	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	var inserted, known []*storage.Lead

	for _, lead := range leads {
		if lead.WebsiteURL == "" {
			continue
		}
		hash := lead.URLHash()

		var existingID string
		var timesSeen int
		err := tx.QueryRow(ctx,
			`SELECT id, times_seen FROM leads WHERE url_hash = $1`, hash,
		).Scan(&existingID, &timesSeen)

		switch {
		case errors.Is(err, pgx.ErrNoRows):
			if lead.ID == "" {
				lead.ID = uuid.New().String()
			}
			lead.CreatedAt = now
			lead.LastSeen = now
			lead.TimesSeen = 1

			_, err := tx.Exec(ctx, `
				INSERT INTO leads (
					id, first_name, last_name, company_name, website_url,
					email, phone, location_match, intent_match, lead_source,
					post_created_at, template, locations, url_hash,
					created_at, last_seen, times_seen
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, 1)`,
				lead.ID, lead.FirstName, lead.LastName, lead.CompanyName,
				lead.WebsiteURL, lead.Email, lead.Phone, lead.LocationMatch,
				lead.IntentMatch, lead.LeadSource, lead.PostCreatedAt,
				rec.Template, rec.Locations, hash, now, now,
			)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to insert lead: %w", err)
			}
			inserted = append(inserted, lead)

		case err == nil:
			_, err := tx.Exec(ctx, `
				UPDATE leads SET
					last_seen = $1,
					times_seen = $2,
					email = COALESCE(NULLIF($3, ''), email),
					phone = COALESCE(NULLIF($4, ''), phone),
					first_name = COALESCE(NULLIF($5, ''), first_name),
					last_name = COALESCE(NULLIF($6, ''), last_name),
					company_name = COALESCE(NULLIF($7, ''), company_name)
				WHERE id = $8`,
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
	_, err = tx.Exec(ctx, `
		INSERT INTO search_history (
			id, template, locations, num_results, new_leads,
			duplicate_leads, queries_used, timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.Template, rec.Locations, rec.NumResults,
		len(inserted), len(known), rec.QueriesUsed, rec.Timestamp,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to record search: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to commit: %w", err)
	}
	return inserted, known, nil
}

func (b *postgresBackend) Leads(ctx context.Context, filter storage.Filter) ([]*storage.Lead, error) {
	query := `SELECT id, first_name, last_name, company_name, website_url,
		email, phone, location_match, intent_match, lead_source,
		post_created_at, template, locations, created_at, last_seen, times_seen
	FROM leads WHERE TRUE`
	args := []any{}

	if filter.Template != "" {
		args = append(args, filter.Template)
		query += fmt.Sprintf(` AND template = $%d`, len(args))
	}
	if filter.LeadSource != "" {
		args = append(args, filter.LeadSource)
		query += fmt.Sprintf(` AND lead_source = $%d`, len(args))
	}

	query += ` ORDER BY created_at DESC`

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := b.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leads: %w", err)
	}
	defer rows.Close()

	var leads []*storage.Lead
	for rows.Next() {
		var l storage.Lead
		err := rows.Scan(
			&l.ID, &l.FirstName, &l.LastName, &l.CompanyName, &l.WebsiteURL,
			&l.Email, &l.Phone, &l.LocationMatch, &l.IntentMatch,
			&l.LeadSource, &l.PostCreatedAt, &l.Template, &l.Locations,
			&l.CreatedAt, &l.LastSeen, &l.TimesSeen,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read leads: %w", err)
	}
	return leads, nil
}

func (b *postgresBackend) History(ctx context.Context, limit int) ([]*storage.SearchRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := b.pool.Query(ctx, `
		SELECT id, template, locations, num_results, new_leads,
			duplicate_leads, queries_used, timestamp
		FROM search_history ORDER BY timestamp DESC LIMIT $1`, limit)
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

func (b *postgresBackend) Stats(ctx context.Context) (*storage.Stats, error) {
	var s storage.Stats

	err := b.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE email != ''),
			COUNT(*) FILTER (WHERE phone != ''),
			COUNT(*) FILTER (WHERE created_at >= date_trunc('day', now()))
		FROM leads`).Scan(&s.TotalLeads, &s.LeadsWithEmail, &s.LeadsWithPhone, &s.NewToday)
	if err != nil {
		return nil, fmt.Errorf("failed to read lead stats: %w", err)
	}

	if err := b.pool.QueryRow(ctx, `SELECT COUNT(*) FROM search_history`).Scan(&s.TotalSearches); err != nil {
		return nil, fmt.Errorf("failed to count searches: %w", err)
	}

	err = b.pool.QueryRow(ctx, `
		SELECT template FROM search_history
		GROUP BY template ORDER BY COUNT(*) DESC LIMIT 1`).Scan(&s.MostUsedTemplate)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("failed to find most used template: %w", err)
		}
		s.MostUsedTemplate = "None"
	}

	return &s, nil
}

func (b *postgresBackend) SetIntentMatch(ctx context.Context, id string, match bool) error {
	_, err := b.pool.Exec(ctx,
		`UPDATE leads SET intent_match = $1 WHERE id = $2`, match, id)
	if err != nil {
		return fmt.Errorf("failed to update intent match: %w", err)
	}
	return nil
}

func (b *postgresBackend) SetPostCreatedAt(ctx context.Context, id string, ts time.Time) error {
	_, err := b.pool.Exec(ctx,
		`UPDATE leads SET post_created_at = $1 WHERE id = $2`, ts.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update post timestamp: %w", err)
	}
	return nil
}

func (b *postgresBackend) DeleteLead(ctx context.Context, id string) error {
	_, err := b.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete lead: %w", err)
	}
	return nil
}

func (b *postgresBackend) Close() error {
	b.pool.Close()
	return nil
}
