package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/use-agent/fahndung/models"
)

func TestMetrics_SessionLifecycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	report := models.SessionReport{ID: "s1", Kind: "persons", State: models.SessionRunning}
	m.SessionStarted(report)
	if got := testutil.ToFloat64(m.SessionsRunning.WithLabelValues("persons")); got != 1 {
		t.Fatalf("running = %v, want 1", got)
	}

	m.AdapterFinished(report, models.CrawlOutcome{
		Source:      "Berlin/wanted",
		Termination: models.TerminatedExhausted,
		Pages:       2,
		Persisted:   4,
		Conflicts:   1,
		Failed:      []models.ItemFailure{{URL: "x", Code: models.ErrCodeItemExtraction}},
		Duration:    3 * time.Second,
	})

	report.State = models.SessionCompleted
	m.SessionFinished(report)

	if got := testutil.ToFloat64(m.SessionsRunning.WithLabelValues("persons")); got != 0 {
		t.Errorf("running = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.SessionsTotal.WithLabelValues("persons", "completed")); got != 1 {
		t.Errorf("sessions_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ItemsPersisted.WithLabelValues("Berlin/wanted")); got != 4 {
		t.Errorf("persisted = %v, want 4", got)
	}
	if got := testutil.ToFloat64(m.ItemFailures.WithLabelValues("Berlin/wanted", models.ErrCodeItemExtraction)); got != 1 {
		t.Errorf("failures = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.AdapterRuns.WithLabelValues("Berlin/wanted", "exhausted")); got != 1 {
		t.Errorf("adapter runs = %v, want 1", got)
	}
}

func TestMetrics_RetentionDeleted(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.SessionStarted(models.SessionReport{Kind: "retention"})
	m.SessionFinished(models.SessionReport{Kind: "retention", State: models.SessionCompleted, Deleted: 7})

	if got := testutil.ToFloat64(m.RetentionDeleted); got != 7 {
		t.Errorf("deleted = %v, want 7", got)
	}
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.SessionStarted(models.SessionReport{Kind: "news"})

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `fahndung_sessions_running{kind="news"} 1`) {
		t.Errorf("metrics output missing running gauge:\n%s", rec.Body.String())
	}
}
