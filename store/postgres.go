package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/use-agent/fahndung/config"
	"github.com/use-agent/fahndung/models"
)

// pingTimeout bounds the connectivity check in Connect.
const pingTimeout = 5 * time.Second

// uniqueViolation is the Postgres SQLSTATE for a unique constraint violation.
const uniqueViolation = "23505"

// Connect opens a pooled Postgres connection and verifies it.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// table describes where one content type is stored.
type table struct {
	name string
	id   string
}

var tables = map[models.ContentType]table{
	models.ContentWanted:  {name: "wanted_persons", id: "crawled_url"},
	models.ContentMissing: {name: "missing_persons", id: "crawled_url"},
	models.ContentNews:    {name: "news_posts", id: "link"},
}

func tableFor(ct models.ContentType) (table, error) {
	t, ok := tables[ct]
	if !ok {
		return table{}, fmt.Errorf("unknown content type %q", ct)
	}
	return t, nil
}

const (
	insertWanted = `
		INSERT INTO wanted_persons (crawled_from, crawled_url, submit_tip_link, is_unknown,
			first_name, last_name, offenses, crime_scene_location, crime_scene_date_crawled,
			crime_scene_date, bounty, description, appearance, age, gender, height, nationality)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	insertMissing = `
		INSERT INTO missing_persons (crawled_from, crawled_url, submit_tip_link,
			first_name, last_name, last_seen_location, last_seen_date_crawled, last_seen_date,
			description, appearance, age, gender, height)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	insertNews = `
		INSERT INTO news_posts (crawled_from, link, title, description, location, date)
		VALUES ($1, $2, $3, $4, $5, $6)`

	onConflictSkip = ` ON CONFLICT DO NOTHING`
)

// Postgres is the production store.
type Postgres struct {
	db *sqlx.DB
}

// NewPostgres wraps an open connection.
func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

// Migrate applies the embedded schema. Every statement is idempotent.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// KnownIdentifiers implements Store.
func (p *Postgres) KnownIdentifiers(ctx context.Context, j models.Jurisdiction, ct models.ContentType) ([]string, error) {
	t, err := tableFor(ct)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE crawled_from = $1`, t.id, t.name)

	var ids []string
	if err := p.db.SelectContext(ctx, &ids, query, string(j)); err != nil {
		return nil, persistenceError("failed to load known identifiers", err)
	}
	return ids, nil
}

// InsertOne implements Store.
func (p *Postgres) InsertOne(ctx context.Context, rec *models.DraftRecord) error {
	query, args, err := insertStatement(rec)
	if err != nil {
		return err
	}
	if _, err := p.db.ExecContext(ctx, query, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrConflict
		}
		return persistenceError("failed to insert record", err)
	}
	return nil
}

// InsertMany implements Store. All records are written in one transaction;
// duplicates are skipped by the database and counted as conflicts.
func (p *Postgres) InsertMany(ctx context.Context, recs []*models.DraftRecord) (BatchResult, error) {
	var res BatchResult
	if len(recs) == 0 {
		return res, nil
	}

	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return res, persistenceError("failed to begin transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, rec := range recs {
		query, args, err := insertStatement(rec)
		if err != nil {
			return BatchResult{}, err
		}
		result, err := tx.ExecContext(ctx, query+onConflictSkip, args...)
		if err != nil {
			return BatchResult{}, persistenceError("failed to insert record", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return BatchResult{}, persistenceError("failed to read affected rows", err)
		}
		if n == 0 {
			res.Conflicts++
		} else {
			res.Inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return BatchResult{}, persistenceError("failed to commit batch", err)
	}
	return res, nil
}

// DeleteCreatedBefore implements Store.
func (p *Postgres) DeleteCreatedBefore(ctx context.Context, ct models.ContentType, cutoff time.Time) (int64, error) {
	t, err := tableFor(ct)
	if err != nil {
		return 0, err
	}
	result, err := p.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE created_at < $1`, t.name), cutoff)
	if err != nil {
		return 0, persistenceError("failed to delete expired records", err)
	}
	return result.RowsAffected()
}

// Close closes the connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}

func insertStatement(rec *models.DraftRecord) (string, []any, error) {
	switch {
	case rec.Wanted != nil:
		w := rec.Wanted
		return insertWanted, []any{
			string(rec.CrawledFrom), rec.CrawledURL, rec.SubmitTipLink, w.IsUnknown,
			nullIfEmpty(w.FirstName), nullIfEmpty(w.LastName), pq.Array(nonNil(w.Offenses)),
			nullIfEmpty(w.CrimeSceneLocation), nullIfEmpty(w.CrimeSceneDateCrawled),
			w.CrimeSceneDate, w.Bounty, w.Description, pq.Array(w.Appearance),
			w.Age, string(w.Gender), w.Height, w.Nationality,
		}, nil
	case rec.Missing != nil:
		m := rec.Missing
		return insertMissing, []any{
			string(rec.CrawledFrom), rec.CrawledURL, rec.SubmitTipLink,
			nullIfEmpty(m.FirstName), nullIfEmpty(m.LastName),
			nullIfEmpty(m.LastSeenLocation), nullIfEmpty(m.LastSeenDateCrawled), m.LastSeenDate,
			m.Description, pq.Array(m.Appearance), m.Age, string(m.Gender), m.Height,
		}, nil
	case rec.News != nil:
		n := rec.News
		return insertNews, []any{
			string(rec.CrawledFrom), rec.Identifier(), n.Title,
			nullIfEmpty(n.Description), nullIfEmpty(n.Location), n.Date,
		}, nil
	}
	return "", nil, models.NewCrawlError(models.ErrCodeInvalidInput, "record has no content", nil)
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
