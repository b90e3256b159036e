// Package adapter holds one crawler per police website. Every adapter
// discovers candidate links on its listing, filters them against the store
// snapshot and the retention window, and turns each remaining detail page
// into a normalized draft record.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/fahndung/dedup"
	"github.com/use-agent/fahndung/models"
	"github.com/use-agent/fahndung/normalize"
	"github.com/use-agent/fahndung/pagination"
	"github.com/use-agent/fahndung/recency"
	"github.com/use-agent/fahndung/scraper"
)

// Adapter crawls one source.
type Adapter interface {
	Source() models.SourceDescriptor
	// Run paginates the listing on page and hands every extracted record or
	// item failure to yield, stopping early when yield returns false. The
	// returned error is non-nil only when the listing itself could not be
	// read; item failures never surface here.
	Run(ctx context.Context, page scraper.Page, filter *dedup.Filter, yield func(Result) bool) (Discovery, error)
}

// Result is one item outcome: a record ready to persist or an item error.
type Result struct {
	URL    string
	Record *models.DraftRecord
	Err    *models.CrawlError
}

// Discovery summarises the listing walk of one run.
type Discovery struct {
	Pages       int
	Candidates  int
	Known       int
	Expired     int
	Attempted   int
	Termination models.Termination
}

// Discoverer reads the candidate links off a loaded listing page. Links of
// mixed listings carry their content type; links of other types are counted
// for pagination but not crawled. A discoverer error fails the adapter.
type Discoverer func(ctx context.Context, page scraper.Page, doc *goquery.Document) ([]models.CandidateLink, error)

// Extractor builds a draft record from a loaded detail page.
type Extractor func(doc *goquery.Document, link models.CandidateLink, n *normalize.Normalizer) (*models.DraftRecord, error)

// Listing is the generic adapter: a descriptor plus the site specific
// discovery and extraction functions.
type Listing struct {
	Desc models.SourceDescriptor
	// Cursors returns fresh cursors for every listing the source publishes
	// for this content type, walked in order.
	Cursors  func() []pagination.Cursor
	Discover Discoverer
	Extract  Extractor
	// Format is how listing dates are written; DetailFormat how the raw
	// dates on detail pages are written. A nil DetailFormat reuses Format.
	Format       *recency.Format
	DetailFormat *recency.Format
	// Known overrides the dedup lookup, e.g. for fingerprint identifiers.
	Known func(f *dedup.Filter, id string) bool
	// StopWhenStale ends pagination after a page without a single new and
	// fresh candidate.
	StopWhenStale bool
	// MaxPages caps every cursor of the listing; 0 keeps the cursor's own cap.
	MaxPages int

	Normalizer *normalize.Normalizer
	Logger     *slog.Logger
}

// Source implements Adapter.
func (l *Listing) Source() models.SourceDescriptor { return l.Desc }

func (l *Listing) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.Default()
	}
	return l.Logger
}

func (l *Listing) known(f *dedup.Filter, id string) bool {
	if l.Known != nil {
		return l.Known(f, id)
	}
	return f.IsKnown(id)
}

// Run implements Adapter. The listing is walked completely before the first
// detail page is visited, because visiting a detail page replaces the
// listing in page.
func (l *Listing) Run(ctx context.Context, page scraper.Page, filter *dedup.Filter, yield func(Result) bool) (Discovery, error) {
	disc := Discovery{Termination: models.TerminatedExhausted}
	pending, listErr := l.discover(ctx, page, filter, &disc)

	for _, cand := range pending {
		if err := ctx.Err(); err != nil {
			listErr = errors.Join(listErr, err)
			break
		}
		disc.Attempted++
		rec, err := l.item(ctx, page, cand)
		var res Result
		if err != nil {
			res = Result{URL: cand.URL, Err: models.ItemError(cand.URL, err)}
		} else {
			res = Result{URL: cand.URL, Record: rec}
		}
		if !yield(res) {
			break
		}
	}

	if listErr != nil {
		disc.Termination = models.TerminatedFailed
		return disc, models.AdapterError(l.Desc.Name(), listErr)
	}
	return disc, nil
}

// discover walks every cursor and returns the candidates that are neither
// known nor expired, in listing order.
func (l *Listing) discover(ctx context.Context, page scraper.Page, filter *dedup.Filter, disc *Discovery) ([]models.CandidateLink, error) {
	gate := recency.NewGate(l.Desc.Retention, l.Format)
	if l.Normalizer != nil && l.Normalizer.Now != nil {
		gate.Now = l.Normalizer.Now
	}
	seen := map[string]bool{}
	var pending []models.CandidateLink

	for _, cur := range l.Cursors() {
		if lim, ok := cur.(pagination.Limiter); ok {
			lim.Limit(l.MaxPages)
		}
		tracker := recency.NewTracker(l.Desc.RecrawlThreshold, l.Desc.EarlyStop())
		term, err := l.walk(ctx, page, cur, func(cands []models.CandidateLink) int {
			fresh := 0
			for _, c := range cands {
				if c.URL == "" || seen[c.URL] {
					continue
				}
				if c.ContentType != "" && c.ContentType != l.Desc.ContentType {
					continue
				}
				seen[c.URL] = true
				disc.Candidates++
				if l.known(filter, c.URL) {
					disc.Known++
					tracker.SeenKnown()
					continue
				}
				if gate.Admit(c.SourceDate) == recency.Expired {
					disc.Expired++
					tracker.SeenExpired()
					continue
				}
				pending = append(pending, c)
				fresh++
			}
			return fresh
		}, tracker)
		disc.Pages += cur.Pages()
		if err != nil {
			return pending, err
		}
		if term != models.TerminatedExhausted || disc.Termination == models.TerminatedExhausted {
			disc.Termination = term
		}
	}
	return pending, nil
}

func (l *Listing) walk(ctx context.Context, page scraper.Page, cur pagination.Cursor, admit func([]models.CandidateLink) int, tracker *recency.Tracker) (models.Termination, error) {
	if err := cur.Start(ctx, page); err != nil {
		return models.TerminatedFailed, err
	}
	for {
		doc, err := page.Document(ctx)
		if err != nil {
			return models.TerminatedFailed, err
		}
		cands, err := l.Discover(ctx, page, doc)
		if err != nil {
			return models.TerminatedFailed, err
		}
		for i := range cands {
			if cands[i].Listing == "" {
				cands[i].Listing = cur.Current()
			}
			if cands[i].ContentType == "" {
				cands[i].ContentType = l.Desc.ContentType
			}
		}
		cur.Observe(len(cands))
		fresh := admit(cands)

		l.logger().Debug("listing page read",
			"source", l.Desc.Name(),
			"url", cur.Current(),
			"links", len(cands),
			"fresh", fresh,
			"known", tracker.Known(),
		)

		switch {
		case tracker.ThresholdReached():
			return models.TerminatedRecrawl, nil
		case tracker.PastWindow():
			return models.TerminatedExpired, nil
		case l.StopWhenStale && fresh == 0:
			return models.TerminatedExhausted, nil
		case cur.Exhausted():
			if cur.Capped() {
				return models.TerminatedIterationCap, nil
			}
			return models.TerminatedExhausted, nil
		}

		if err := ctx.Err(); err != nil {
			return models.TerminatedFailed, err
		}
		if err := cur.Advance(ctx, page); err != nil {
			if cur.Exhausted() && cur.Capped() {
				return models.TerminatedIterationCap, nil
			}
			return models.TerminatedFailed, err
		}
	}
}

// item extracts one candidate. Inline candidates need no navigation.
func (l *Listing) item(ctx context.Context, page scraper.Page, cand models.CandidateLink) (rec *models.DraftRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec, err = nil, fmt.Errorf("extraction panicked: %v", r)
		}
	}()

	format := l.DetailFormat
	if format == nil {
		format = l.Format
	}

	if cand.Inline != nil {
		rec = cand.Inline
		return rec, l.Normalizer.Finalize(rec, format)
	}

	start := time.Now()
	if err := page.Navigate(ctx, cand.URL); err != nil {
		return nil, err
	}
	doc, err := page.Document(ctx)
	if err != nil {
		return nil, err
	}
	rec, err = l.Extract(doc, cand, l.Normalizer)
	if err != nil {
		return nil, err
	}

	err = l.Normalizer.Finalize(rec, format)
	if errors.Is(err, normalize.ErrNoContent) {
		if body, ok := mainContent(doc, cand.URL); ok {
			setDescription(rec, body)
			err = l.Normalizer.Finalize(rec, format)
		}
	}
	l.logger().Debug("detail page extracted",
		"source", l.Desc.Name(),
		"url", cand.URL,
		"ok", err == nil,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return rec, err
}

// mainContent is the last resort when the description container of a detail
// page was not found.
func mainContent(doc *goquery.Document, pageURL string) (string, bool) {
	raw, err := doc.Html()
	if err != nil {
		return "", false
	}
	return normalize.MainContent(raw, pageURL)
}

func setDescription(rec *models.DraftRecord, s string) {
	switch {
	case rec.Wanted != nil:
		rec.Wanted.Description = s
	case rec.Missing != nil:
		rec.Missing.Description = s
	case rec.News != nil:
		rec.News.Description = s
	}
}
