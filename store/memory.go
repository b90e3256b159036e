package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/use-agent/fahndung/models"
)

type memoryRow struct {
	rec     *models.DraftRecord
	created time.Time
}

// Memory is a Store kept in process memory, for tests and dry runs.
type Memory struct {
	mu   sync.Mutex
	rows map[models.ContentType]map[string]memoryRow

	// Now stamps inserted rows; it defaults to time.Now.
	Now func() time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{rows: map[models.ContentType]map[string]memoryRow{}, Now: time.Now}
}

func memoryKey(j models.Jurisdiction, id string) string {
	return string(j) + "\x00" + id
}

// KnownIdentifiers implements Store.
func (m *Memory) KnownIdentifiers(_ context.Context, j models.Jurisdiction, ct models.ContentType) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for _, row := range m.rows[ct] {
		if row.rec.CrawledFrom == j {
			ids = append(ids, row.rec.Identifier())
		}
	}
	return ids, nil
}

// InsertOne implements Store.
func (m *Memory) InsertOne(ctx context.Context, rec *models.DraftRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insert(ctx, rec)
}

func (m *Memory) insert(ctx context.Context, rec *models.DraftRecord) error {
	if err := ctx.Err(); err != nil {
		return persistenceError("context done", err)
	}
	if rec.Identifier() == "" {
		return models.NewCrawlError(models.ErrCodeInvalidInput, "record has no identifier", nil)
	}
	byID := m.rows[rec.Type]
	if byID == nil {
		byID = map[string]memoryRow{}
		m.rows[rec.Type] = byID
	}
	key := memoryKey(rec.CrawledFrom, rec.Identifier())
	if _, ok := byID[key]; ok {
		return ErrConflict
	}
	byID[key] = memoryRow{rec: rec, created: m.Now()}
	return nil
}

// InsertMany implements Store.
func (m *Memory) InsertMany(ctx context.Context, recs []*models.DraftRecord) (BatchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res BatchResult
	for _, rec := range recs {
		switch err := m.insert(ctx, rec); {
		case err == nil:
			res.Inserted++
		case errors.Is(err, ErrConflict):
			res.Conflicts++
		default:
			return res, err
		}
	}
	return res, nil
}

// DeleteCreatedBefore implements Store.
func (m *Memory) DeleteCreatedBefore(_ context.Context, ct models.ContentType, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for key, row := range m.rows[ct] {
		if row.created.Before(cutoff) {
			delete(m.rows[ct], key)
			n++
		}
	}
	return n, nil
}

// Records returns the stored records of one content type in no particular
// order.
func (m *Memory) Records(ct models.ContentType) []*models.DraftRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.DraftRecord, 0, len(m.rows[ct]))
	for _, row := range m.rows[ct] {
		out = append(out, row.rec)
	}
	return out
}

// Close implements Store.
func (m *Memory) Close() error { return nil }
