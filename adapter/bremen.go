package adapter

import (
	"context"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/fahndung/dedup"
	"github.com/use-agent/fahndung/models"
	"github.com/use-agent/fahndung/normalize"
	"github.com/use-agent/fahndung/pagination"
	"github.com/use-agent/fahndung/recency"
	"github.com/use-agent/fahndung/scraper"
)

const bremenWanted = "https://www.polizei.bremen.de/fahndung/unbekannte-taeter-22608"

// bremenNearBits is the fingerprint distance under which two Bremen notices
// count as the same notice.
const bremenNearBits = 3

var bremenEntries = css(".centerframe .article .main_article .entry-wrapper-1col")

// Bremen lists every notice in full on one page without per-notice links.
// Each entry is identified by the list URL plus the fingerprint of its text.
func bremen(o Options) []*Listing {
	return []*Listing{{
		Desc:     o.describe(models.Bremen, models.ContentWanted, models.PaginationSingle, models.Unordered),
		Cursors:  func() []pagination.Cursor { return []pagination.Cursor{pagination.NewSingle(bremenWanted)} },
		Discover: bremenDiscover,
		Format:   recency.DotDate,
		Known: func(f *dedup.Filter, id string) bool {
			return f.IsKnownNear(id, bremenNearBits)
		},
	}}
}

func bremenDiscover(_ context.Context, _ scraper.Page, doc *goquery.Document) ([]models.CandidateLink, error) {
	listing := bremenWanted
	if doc.Url != nil {
		listing = doc.Url.String()
	}

	var out []models.CandidateLink
	doc.FindMatcher(bremenEntries).Each(func(_ int, entry *goquery.Selection) {
		paragraphs := entry.Find("p")
		description := normalize.Description(slice(paragraphs, 2, -1), domain(doc))
		if description == "" {
			return
		}
		id := dedup.FingerprintID(listing, description)

		rec := models.NewWanted(models.Bremen, id)
		rec.SubmitTipLink = listing
		rec.Wanted.Description = description

		scene := paragraphs.Eq(1)
		location := normalize.After(firstChildText(scene), "Ort:")
		date := normalize.After(lastChildText(scene), "Zeit:")
		setPlace(rec, location, date)

		out = append(out, models.CandidateLink{URL: id, SourceDate: date, Inline: rec})
	})
	return out, nil
}
