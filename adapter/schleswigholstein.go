package adapter

import (
	"context"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/fahndung/models"
	"github.com/use-agent/fahndung/normalize"
	"github.com/use-agent/fahndung/pagination"
	"github.com/use-agent/fahndung/recency"
	"github.com/use-agent/fahndung/scraper"
)

const (
	shBase    = "https://www.schleswig-holstein.de/DE/landesregierung/ministerien-behoerden/POLIZEI/Fahndungen/"
	shWanted  = shBase + "startseite_taeterfahndung.html"
	shMissing = shBase + "startseite_fahndung_vermisstePersonen.html"
	shNext    = ".c-nav-index__item.c-nav-index__item--next > a"
)

var (
	shRows     = css("table.c-table-dateandtitle tbody tr")
	shRowDate  = css("td:first-child")
	shRowLink  = css("a")
	shRichtext = css("#content .s-richtext.js-richtext")
)

func schleswigHolstein(o Options) []*Listing {
	return []*Listing{
		{
			Desc:     o.describe(models.SchleswigHolstein, models.ContentWanted, models.PaginationNextLink, models.NewestFirst),
			Cursors:  func() []pagination.Cursor { return []pagination.Cursor{pagination.NewNextLink(shWanted, shNext)} },
			Discover: shDiscover,
			Extract:  shDetail,
			Format:   recency.DotDate,
		},
		{
			Desc:     o.describe(models.SchleswigHolstein, models.ContentMissing, models.PaginationNextLink, models.NewestFirst),
			Cursors:  func() []pagination.Cursor { return []pagination.Cursor{pagination.NewNextLink(shMissing, shNext)} },
			Discover: shDiscover,
			Extract:  shDetail,
			Format:   recency.DotDate,
		},
	}
}

func shDiscover(_ context.Context, _ scraper.Page, doc *goquery.Document) ([]models.CandidateLink, error) {
	var out []models.CandidateLink
	doc.FindMatcher(shRows).Each(func(_ int, s *goquery.Selection) {
		link := href(doc, s.FindMatcher(shRowLink))
		if link == "" {
			return
		}
		out = append(out, models.CandidateLink{URL: link, SourceDate: text(s.FindMatcher(shRowDate).First())})
	})
	return out, nil
}

func shDetail(doc *goquery.Document, link models.CandidateLink, _ *normalize.Normalizer) (*models.DraftRecord, error) {
	rec := draft(models.SchleswigHolstein, link)
	setDescription(rec, normalize.Description(doc.FindMatcher(shRichtext).First(), domain(doc)))
	return rec, nil
}
