package adapter

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/fahndung/models"
	"github.com/use-agent/fahndung/normalize"
	"github.com/use-agent/fahndung/pagination"
	"github.com/use-agent/fahndung/recency"
	"github.com/use-agent/fahndung/scraper"
)

const (
	hessenHost    = "www.polizei.hessen.de"
	hessenPersons = "https://" + hessenHost + "/Fahndungen/Personen/"
	hessenKnown   = hessenPersons + "Bekannte-Personen/"
	hessenUnknown = hessenPersons + "Unbekannte-Personen/"
	hessenMissing = hessenPersons + "Vermisste-Personen/"

	// The trigger turns into a plain element once everything is loaded.
	hessenLoadMore = "a#loadMoreButton"
)

var (
	hessenLinks    = css("#content #loadmoreContainer div article h2 > a")
	hessenDachzeil = css("#detail article .dachzeile")
	hessenText     = css("#detail .maincontenttext")
)

func hessen(o Options) []*Listing {
	return []*Listing{
		{
			Desc: o.describe(models.Hessen, models.ContentWanted, models.PaginationLoadMore, models.Unordered),
			Cursors: func() []pagination.Cursor {
				return []pagination.Cursor{
					o.loadMore(hessenKnown, hessenLoadMore),
					o.loadMore(hessenUnknown, hessenLoadMore),
				}
			},
			Discover: hessenDiscover,
			Extract:  hessenDetail,
			Format:   recency.DotDate,
		},
		{
			Desc: o.describe(models.Hessen, models.ContentMissing, models.PaginationLoadMore, models.Unordered),
			Cursors: func() []pagination.Cursor {
				return []pagination.Cursor{o.loadMore(hessenMissing, hessenLoadMore)}
			},
			Discover: hessenDiscover,
			Extract:  hessenDetail,
			Format:   recency.DotDate,
		},
	}
}

// hessenDiscover skips notices of other states that Hessen mirrors.
func hessenDiscover(_ context.Context, _ scraper.Page, doc *goquery.Document) ([]models.CandidateLink, error) {
	var out []models.CandidateLink
	for _, c := range links(doc, hessenLinks) {
		u, err := url.Parse(c.URL)
		if err != nil || u.Host != hessenHost {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// hessenDetail reads "date | location" from the kicker line. Whether a
// wanted person is known follows from the list the link was found on.
func hessenDetail(doc *goquery.Document, link models.CandidateLink, _ *normalize.Normalizer) (*models.DraftRecord, error) {
	rec := draft(models.Hessen, link)
	if rec.Wanted != nil {
		rec.Wanted.IsUnknown = !strings.HasPrefix(link.Listing, hessenKnown)
	}

	parts := strings.Split(text(doc.FindMatcher(hessenDachzeil).First()), " | ")
	var date, location string
	if len(parts) > 0 {
		date = parts[0]
	}
	if len(parts) > 1 {
		location = parts[1]
	}
	setPlace(rec, location, date)

	setDescription(rec, normalize.Description(doc.FindMatcher(hessenText).First(), domain(doc)))
	return rec, nil
}
