package models

import (
	"fmt"
	"time"
)

// Jurisdiction is one of the sixteen German states. The value is the German
// display name, which is also what gets persisted as crawled_from.
type Jurisdiction string

const (
	BadenWuerttemberg     Jurisdiction = "Baden-Württemberg"
	Bayern                Jurisdiction = "Bayern"
	Berlin                Jurisdiction = "Berlin"
	Brandenburg           Jurisdiction = "Brandenburg"
	Bremen                Jurisdiction = "Bremen"
	Hamburg               Jurisdiction = "Hamburg"
	Hessen                Jurisdiction = "Hessen"
	Niedersachsen         Jurisdiction = "Niedersachsen"
	MecklenburgVorpommern Jurisdiction = "Mecklenburg-Vorpommern"
	NordrheinWestfalen    Jurisdiction = "Nordrhein-Westfalen"
	RheinlandPfalz        Jurisdiction = "Rheinland-Pfalz"
	Saarland              Jurisdiction = "Saarland"
	Sachsen               Jurisdiction = "Sachsen"
	SachsenAnhalt         Jurisdiction = "Sachsen-Anhalt"
	SchleswigHolstein     Jurisdiction = "Schleswig-Holstein"
	Thueringen            Jurisdiction = "Thüringen"
)

// Jurisdictions lists every valid jurisdiction in display order.
var Jurisdictions = []Jurisdiction{
	BadenWuerttemberg, Bayern, Berlin, Brandenburg, Bremen, Hamburg, Hessen,
	Niedersachsen, MecklenburgVorpommern, NordrheinWestfalen, RheinlandPfalz,
	Saarland, Sachsen, SachsenAnhalt, SchleswigHolstein, Thueringen,
}

// Valid reports whether j is one of the sixteen states.
func (j Jurisdiction) Valid() bool {
	for _, v := range Jurisdictions {
		if v == j {
			return true
		}
	}
	return false
}

// ParseJurisdiction resolves a display name. Matching is exact.
func ParseJurisdiction(s string) (Jurisdiction, error) {
	j := Jurisdiction(s)
	if !j.Valid() {
		return "", fmt.Errorf("unknown jurisdiction %q", s)
	}
	return j, nil
}

// ContentType distinguishes the three record shapes.
type ContentType string

const (
	ContentWanted  ContentType = "wanted"
	ContentMissing ContentType = "missing"
	ContentNews    ContentType = "news"
)

// IsPerson reports whether records of this type are person notices.
func (c ContentType) IsPerson() bool {
	return c == ContentWanted || c == ContentMissing
}

// ParseContentType accepts "wanted", "missing" or "news".
func ParseContentType(s string) (ContentType, error) {
	switch ContentType(s) {
	case ContentWanted, ContentMissing, ContentNews:
		return ContentType(s), nil
	}
	return "", fmt.Errorf("unknown content type %q", s)
}

// PaginationKind names the advance strategy a listing uses.
type PaginationKind string

const (
	PaginationNumbered PaginationKind = "numbered"
	PaginationOffset   PaginationKind = "offset"
	PaginationLoadMore PaginationKind = "load-more"
	PaginationSingle   PaginationKind = "single"
	PaginationNextLink PaginationKind = "next-link"
)

// Ordering describes how a source sorts its listing.
type Ordering string

const (
	// NewestFirst listings allow pagination to stop early once
	// previously ingested or expired items show up.
	NewestFirst Ordering = "newest-first"
	// Unordered listings are always read to exhaustion.
	Unordered Ordering = "unordered"
)

const (
	// PersonRetention is how far back wanted and missing notices are ingested.
	PersonRetention = 365 * 24 * time.Hour
	// NewsRetention is how far back news briefs are ingested.
	NewsRetention = 90 * 24 * time.Hour
	// DefaultRecrawlThreshold is the number of already-known items after
	// which a newest-first listing stops paginating.
	DefaultRecrawlThreshold = 10
)

// RetentionFor returns the crawl-back window for a content type.
func RetentionFor(ct ContentType) time.Duration {
	if ct == ContentNews {
		return NewsRetention
	}
	return PersonRetention
}

// SourceDescriptor is the immutable description of one crawlable source.
type SourceDescriptor struct {
	Jurisdiction     Jurisdiction
	ContentType      ContentType
	Pagination       PaginationKind
	Retention        time.Duration
	Ordering         Ordering
	RecrawlThreshold int
	NeedsBrowser     bool
}

// Name is a stable identifier such as "Berlin/wanted".
func (d SourceDescriptor) Name() string {
	return string(d.Jurisdiction) + "/" + string(d.ContentType)
}

// EarlyStop reports whether the recrawl heuristic applies to this source.
func (d SourceDescriptor) EarlyStop() bool {
	return d.Ordering == NewestFirst && d.RecrawlThreshold > 0
}
