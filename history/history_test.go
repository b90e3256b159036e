package history

import (
	"testing"
	"time"

	"github.com/use-agent/fahndung/models"
)

func report(id string, started time.Time) models.SessionReport {
	return models.SessionReport{ID: id, Kind: "persons", State: models.SessionRunning, StartedAt: started}
}

func TestHistory_Lifecycle(t *testing.T) {
	h := New(10, time.Hour)
	start := time.Date(2024, time.June, 15, 8, 0, 0, 0, time.UTC)

	r := report("s1", start)
	h.SessionStarted(r)
	h.AdapterFinished(r, models.CrawlOutcome{Source: "Berlin/wanted", Persisted: 2})

	got, ok := h.Get("s1")
	if !ok {
		t.Fatal("running session not found")
	}
	if got.State != models.SessionRunning || len(got.Outcomes) != 1 {
		t.Errorf("running report = %+v", got)
	}

	r.State = models.SessionCompleted
	r.Outcomes = []models.CrawlOutcome{{Source: "Berlin/wanted", Persisted: 2}, {Source: "Hessen/wanted"}}
	h.SessionFinished(r)

	got, _ = h.Get("s1")
	if got.State != models.SessionCompleted || len(got.Outcomes) != 2 {
		t.Errorf("finished report = %+v", got)
	}
}

func TestHistory_ListNewestFirst(t *testing.T) {
	h := New(10, 0)
	base := time.Date(2024, time.June, 15, 8, 0, 0, 0, time.UTC)
	h.Put(report("a", base))
	h.Put(report("c", base.Add(2*time.Hour)))
	h.Put(report("b", base.Add(time.Hour)))

	list := h.List(2)
	if len(list) != 2 || list[0].ID != "c" || list[1].ID != "b" {
		t.Errorf("List(2) = %v", list)
	}
	if len(h.List(0)) != 3 {
		t.Error("List(0) must return everything")
	}
}

func TestHistory_EvictsOldestWhenFull(t *testing.T) {
	h := New(2, 0)
	now := time.Date(2024, time.June, 15, 8, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return now }

	h.Put(report("first", now))
	now = now.Add(time.Minute)
	h.Put(report("second", now))
	now = now.Add(time.Minute)
	h.Put(report("third", now))

	if _, ok := h.Get("first"); ok {
		t.Error("oldest report was not evicted")
	}
	if _, ok := h.Get("third"); !ok {
		t.Error("newest report missing")
	}
}

func TestHistory_TTL(t *testing.T) {
	h := New(10, time.Hour)
	now := time.Date(2024, time.June, 15, 8, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return now }

	h.Put(report("old", now))
	now = now.Add(2 * time.Hour)

	if _, ok := h.Get("old"); ok {
		t.Error("expired report still returned")
	}
	if len(h.List(0)) != 0 {
		t.Error("expired report still listed")
	}
}
