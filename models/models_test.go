package models

import (
	"errors"
	"fmt"
	"testing"
)

func TestCodeOf(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", ItemError("https://example.org/1", errors.New("boom")))
	if got := CodeOf(err); got != ErrCodeItemExtraction {
		t.Errorf("CodeOf() = %q, want %q", got, ErrCodeItemExtraction)
	}
	if got := CodeOf(errors.New("plain")); got != ErrCodeInternal {
		t.Errorf("CodeOf(plain) = %q, want %q", got, ErrCodeInternal)
	}
}

func TestHasCode(t *testing.T) {
	crash := NewCrawlError(ErrCodeBrowserCrash, "target closed", nil)
	err := AdapterError("Berlin/wanted", errors.Join(errors.New("listing"), crash))

	if !HasCode(err, ErrCodeBrowserCrash) {
		t.Error("HasCode() did not find the nested browser crash")
	}
	if !HasCode(err, ErrCodeAdapterFailure) {
		t.Error("HasCode() did not find the outer code")
	}
	if HasCode(err, ErrCodeTimeout) || HasCode(nil, ErrCodeTimeout) {
		t.Error("HasCode() reported a code that is not in the chain")
	}
}

func TestJurisdiction(t *testing.T) {
	if len(Jurisdictions) != 16 {
		t.Fatalf("got %d jurisdictions, want 16", len(Jurisdictions))
	}
	if _, err := ParseJurisdiction("Baden-Württemberg"); err != nil {
		t.Errorf("ParseJurisdiction() error = %v", err)
	}
	if _, err := ParseJurisdiction("baden-württemberg"); err == nil {
		t.Error("ParseJurisdiction() must match exactly")
	}
}

func TestDescriptor(t *testing.T) {
	d := SourceDescriptor{Jurisdiction: Berlin, ContentType: ContentNews, Ordering: NewestFirst, RecrawlThreshold: 10}
	if d.Name() != "Berlin/news" {
		t.Errorf("Name() = %q", d.Name())
	}
	if !d.EarlyStop() {
		t.Error("newest-first source must stop early")
	}
	d.Ordering = Unordered
	if d.EarlyStop() {
		t.Error("unordered source must not stop early")
	}
	if RetentionFor(ContentNews) != NewsRetention || RetentionFor(ContentWanted) != PersonRetention {
		t.Error("unexpected retention windows")
	}
}

func TestSessionReportTotals(t *testing.T) {
	r := &SessionReport{Outcomes: []CrawlOutcome{
		{Persisted: 3, Conflicts: 1, Failed: []ItemFailure{{URL: "a"}}},
		{Persisted: 2, Failed: []ItemFailure{{URL: "b"}, {URL: "c"}}},
	}}
	persisted, conflicts, failed := r.Totals()
	if persisted != 5 || conflicts != 1 || failed != 3 {
		t.Errorf("Totals() = %d, %d, %d", persisted, conflicts, failed)
	}
}

func TestIdentifier(t *testing.T) {
	news := NewNews(Bayern, "https://www.polizei.bayern.de/aktuelles/1.html")
	if news.Identifier() != news.News.Link {
		t.Errorf("news identifier = %q", news.Identifier())
	}
	w := NewWanted(Berlin, "https://www.berlin.de/x")
	if w.Identifier() != w.CrawledURL || !w.Wanted.IsUnknown || w.Wanted.Nationality != DefaultNationality {
		t.Errorf("wanted defaults = %+v", w.Wanted)
	}
}
