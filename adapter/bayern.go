package adapter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/fahndung/models"
	"github.com/use-agent/fahndung/normalize"
	"github.com/use-agent/fahndung/pagination"
	"github.com/use-agent/fahndung/recency"
	"github.com/use-agent/fahndung/scraper"
)

const (
	bayernOrigin  = "https://www.polizei.bayern.de"
	bayernWanted  = bayernOrigin + "/fahndung/personen/unbekannte-straftaeter/index.html"
	bayernMissing = bayernOrigin + "/fahndung/personen/vermisste/index.html"
	bayernPress   = bayernOrigin + "/aktuelles/pressemitteilungen/index.html"

	// montageGlobal is the script variable the Bayern listings are
	// rendered from.
	montageGlobal = "montagedata"
)

var (
	bayernLabels = css(".bp-fahndung-container .bp-fahndung-label")
	bayernText   = css(".bp-textblock-image .hyphens")
)

// montageEntry is one element of the montagedata array. Hrefs are relative
// to the site origin.
type montageEntry struct {
	Href         string `json:"href"`
	Date         string `json:"date"`
	Title        string `json:"title"`
	Teaser       string `json:"teaser"`
	Organization struct {
		Name string `json:"name"`
	} `json:"organization"`
}

func readMontage(ctx context.Context, page scraper.Page) ([]montageEntry, error) {
	var entries []montageEntry
	if err := scraper.ReadGlobal(ctx, page, montageGlobal, &entries); err != nil {
		return nil, fmt.Errorf("reading %s: %w", montageGlobal, err)
	}
	return entries, nil
}

func bayernDiscover(ctx context.Context, page scraper.Page, _ *goquery.Document) ([]models.CandidateLink, error) {
	entries, err := readMontage(ctx, page)
	if err != nil {
		return nil, err
	}
	var out []models.CandidateLink
	for _, e := range entries {
		if !strings.HasPrefix(e.Href, "/fahndung") {
			continue
		}
		out = append(out, models.CandidateLink{URL: bayernOrigin + e.Href, SourceDate: e.Date})
	}
	return out, nil
}

func bayern(o Options) []*Listing {
	return []*Listing{
		{
			Desc:         o.describe(models.Bayern, models.ContentWanted, models.PaginationSingle, models.Unordered),
			Cursors:      func() []pagination.Cursor { return []pagination.Cursor{pagination.NewSingle(bayernWanted)} },
			Discover:     bayernDiscover,
			Extract:      bayernDetail,
			DetailFormat: recency.DotDate,
		},
		{
			Desc:         o.describe(models.Bayern, models.ContentMissing, models.PaginationSingle, models.Unordered),
			Cursors:      func() []pagination.Cursor { return []pagination.Cursor{pagination.NewSingle(bayernMissing)} },
			Discover:     bayernDiscover,
			Extract:      bayernDetail,
			DetailFormat: recency.DotDate,
		},
	}
}

// bayernDetail reads the label/value pairs of the notice. Values are the
// text node following each label element.
func bayernDetail(doc *goquery.Document, link models.CandidateLink, n *normalize.Normalizer) (*models.DraftRecord, error) {
	rec := draft(models.Bayern, link)

	doc.FindMatcher(bayernLabels).Each(func(_ int, s *goquery.Selection) {
		n.Apply(rec, text(s), nextSiblingText(s))
	})

	setDescription(rec, normalize.Description(doc.FindMatcher(bayernText).Eq(1), domain(doc)))
	return rec, nil
}

// Bayern press releases are rendered entirely from montagedata, so every
// item is complete without visiting it.
func bayernNews(o Options) []*Listing {
	return []*Listing{{
		Desc:     o.describe(models.Bayern, models.ContentNews, models.PaginationSingle, models.Unordered),
		Cursors:  func() []pagination.Cursor { return []pagination.Cursor{pagination.NewSingle(bayernPress)} },
		Discover: bayernNewsDiscover,
	}}
}

func bayernNewsDiscover(ctx context.Context, page scraper.Page, _ *goquery.Document) ([]models.CandidateLink, error) {
	entries, err := readMontage(ctx, page)
	if err != nil {
		return nil, err
	}
	out := make([]models.CandidateLink, 0, len(entries))
	for _, e := range entries {
		if e.Href == "" {
			continue
		}
		link := bayernOrigin + e.Href
		rec := models.NewNews(models.Bayern, link)
		rec.News.Title = e.Title
		rec.News.Description = normalize.Teaser(e.Teaser, normalize.NewsTeaserLength)
		rec.News.Location = e.Organization.Name
		rec.News.Date = parseOrZero(nil, e.Date)
		out = append(out, models.CandidateLink{URL: link, SourceDate: e.Date, Inline: rec})
	}
	return out, nil
}

// parseOrZero parses raw with format and yields the zero time on failure;
// the normalizer rejects news items without a date.
func parseOrZero(format *recency.Format, raw string) time.Time {
	t, err := format.Parse(raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
