// Package history keeps the most recent session reports in memory so the
// API can answer "what happened in the last runs".
package history

import (
	"slices"
	"sync"
	"time"

	"github.com/use-agent/fahndung/models"
)

// entry holds a report with the time it was last updated.
type entry struct {
	report    models.SessionReport
	updatedAt time.Time
}

// History is a bounded in-memory log of session reports. It is safe for
// concurrent use and implements session.Observer.
type History struct {
	mu         sync.RWMutex
	store      map[string]*entry
	maxEntries int
	ttl        time.Duration

	now func() time.Time
}

// New creates a History keeping at most maxEntries reports, each for at most
// ttl after its last update. A zero ttl keeps reports until they are evicted
// by size.
func New(maxEntries int, ttl time.Duration) *History {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &History{
		store:      make(map[string]*entry),
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
	}
}

// Get returns the report with the given session ID.
func (h *History) Get(id string) (models.SessionReport, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	e, ok := h.store[id]
	if !ok || h.expired(e) {
		return models.SessionReport{}, false
	}
	return e.report, true
}

// List returns up to limit reports, newest first. limit <= 0 returns all.
func (h *History) List(limit int) []models.SessionReport {
	h.mu.RLock()
	out := make([]models.SessionReport, 0, len(h.store))
	for _, e := range h.store {
		if !h.expired(e) {
			out = append(out, e.report)
		}
	}
	h.mu.RUnlock()

	slices.SortFunc(out, func(a, b models.SessionReport) int {
		return b.StartedAt.Compare(a.StartedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Put stores or replaces a report. When the history is full the least
// recently updated report is evicted.
func (h *History) Put(r models.SessionReport) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.prune()
	if _, exists := h.store[r.ID]; !exists && len(h.store) >= h.maxEntries {
		var oldest string
		var oldestAt time.Time
		for id, e := range h.store {
			if oldest == "" || e.updatedAt.Before(oldestAt) {
				oldest, oldestAt = id, e.updatedAt
			}
		}
		delete(h.store, oldest)
	}
	h.store[r.ID] = &entry{report: r, updatedAt: h.now()}
}

func (h *History) expired(e *entry) bool {
	return h.ttl > 0 && h.now().Sub(e.updatedAt) > h.ttl
}

// prune drops expired reports. The caller holds the write lock.
func (h *History) prune() {
	for id, e := range h.store {
		if h.expired(e) {
			delete(h.store, id)
		}
	}
}

func (h *History) SessionStarted(r models.SessionReport) {
	h.Put(r)
}

// AdapterFinished appends the outcome to the running report so progress is
// visible before the session ends.
func (h *History) AdapterFinished(r models.SessionReport, o models.CrawlOutcome) {
	h.mu.Lock()
	defer h.mu.Unlock()

	e, ok := h.store[r.ID]
	if !ok {
		return
	}
	e.report.Outcomes = append(slices.Clone(e.report.Outcomes), o)
	e.updatedAt = h.now()
}

func (h *History) SessionFinished(r models.SessionReport) {
	h.Put(r)
}
