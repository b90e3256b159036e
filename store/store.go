// Package store persists normalized records. Identifiers are unique per
// jurisdiction and content type; inserting one twice is a conflict, not an
// error.
package store

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/use-agent/fahndung/config"
	"github.com/use-agent/fahndung/models"
)

//go:embed schema.sql
var Schema string

// ErrConflict is returned by InsertOne when the record is already stored.
var ErrConflict = models.NewCrawlError(models.ErrCodePersistenceConflict, "record already stored", nil)

// BatchResult reports the outcome of InsertMany.
type BatchResult struct {
	Inserted  int
	Conflicts int
}

// Store is the persistence boundary of the crawl engine.
type Store interface {
	// KnownIdentifiers returns every stored identifier for one source.
	KnownIdentifiers(ctx context.Context, j models.Jurisdiction, ct models.ContentType) ([]string, error)
	// InsertOne stores rec, returning ErrConflict for duplicates.
	InsertOne(ctx context.Context, rec *models.DraftRecord) error
	// InsertMany stores recs, skipping duplicates.
	InsertMany(ctx context.Context, recs []*models.DraftRecord) (BatchResult, error)
	// DeleteCreatedBefore removes records of one content type that were
	// stored before cutoff and reports how many were deleted.
	DeleteCreatedBefore(ctx context.Context, ct models.ContentType, cutoff time.Time) (int64, error)
	Close() error
}

// Open returns the store selected by cfg. Postgres stores are migrated when
// AutoMigrate is set.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (Store, error) {
	switch cfg.Driver {
	case "memory":
		logger.Warn("using in-memory store, records are lost on exit")
		return NewMemory(), nil
	case "postgres", "":
		db, err := Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		pg := NewPostgres(db)
		if cfg.AutoMigrate {
			if err := pg.Migrate(ctx); err != nil {
				pg.Close()
				return nil, err
			}
			logger.Info("database schema applied")
		}
		return pg, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

func persistenceError(message string, err error) error {
	return models.NewCrawlError(models.ErrCodePersistenceFailure, message, err)
}
