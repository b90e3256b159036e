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
	berlinWanted  = "https://www.berlin.de/polizei/polizeimeldungen/gesuchte-personen/"
	berlinMissing = "https://www.berlin.de/polizei/polizeimeldungen/vermisste/"
	berlinPress   = "https://www.berlin.de/polizei/polizeimeldungen/?page_at_1_6=%d"
)

var (
	berlinLinks     = css("#layout-grid__area--maincontent .modul-autoteaser .modul-teaser a")
	berlinText      = css("#layout-grid__area--maincontent .text")
	berlinTextile   = css("#layout-grid__area--maincontent .textile")
	berlinNewsRows  = css("#layout-grid__area--maincontent ul.list--tablelist li")
	berlinNewsDate  = css(".cell.date")
	berlinNewsTitle = css(".cell.text a")
	berlinNewsPlace = css(".cell.text span")
)

func berlin(o Options) []*Listing {
	discover := func(_ context.Context, _ scraper.Page, doc *goquery.Document) ([]models.CandidateLink, error) {
		return links(doc, berlinLinks), nil
	}
	return []*Listing{
		{
			Desc:     o.describe(models.Berlin, models.ContentWanted, models.PaginationSingle, models.Unordered),
			Cursors:  func() []pagination.Cursor { return []pagination.Cursor{pagination.NewSingle(berlinWanted)} },
			Discover: discover,
			Extract:  berlinDetail,
			Format:   recency.DotDate,
		},
		{
			Desc:     o.describe(models.Berlin, models.ContentMissing, models.PaginationSingle, models.Unordered),
			Cursors:  func() []pagination.Cursor { return []pagination.Cursor{pagination.NewSingle(berlinMissing)} },
			Discover: discover,
			Extract:  berlinDetail,
			Format:   recency.DotDate,
		},
	}
}

// berlinDetail keeps only the notice text. Older notices use a textile
// container instead of the regular text block.
func berlinDetail(doc *goquery.Document, link models.CandidateLink, _ *normalize.Normalizer) (*models.DraftRecord, error) {
	rec := draft(models.Berlin, link)

	body := doc.FindMatcher(berlinText).First()
	if text(body) == "" {
		body = doc.FindMatcher(berlinTextile).First()
	}
	setDescription(rec, normalize.StripRunningNumber(normalize.Description(body, domain(doc))))
	return rec, nil
}

func berlinNews(o Options) []*Listing {
	return []*Listing{{
		Desc: o.describe(models.Berlin, models.ContentNews, models.PaginationNumbered, models.NewestFirst),
		Cursors: func() []pagination.Cursor {
			return []pagination.Cursor{pagination.NewNumbered(pagination.Format(berlinPress), 1)}
		},
		Discover: berlinNewsDiscover,
		Format:   recency.DotDateTime,
	}}
}

func berlinNewsDiscover(_ context.Context, _ scraper.Page, doc *goquery.Document) ([]models.CandidateLink, error) {
	var out []models.CandidateLink
	doc.FindMatcher(berlinNewsRows).Each(func(_ int, s *goquery.Selection) {
		title := s.FindMatcher(berlinNewsTitle).First()
		link := href(doc, title)
		if link == "" {
			return
		}
		date := text(s.FindMatcher(berlinNewsDate).First())

		rec := models.NewNews(models.Berlin, link)
		rec.News.Title = text(title)
		rec.News.Location = normalize.After(text(s.FindMatcher(berlinNewsPlace).First()), "Ereignisort:")
		rec.News.Date = parseOrZero(recency.DotDateTime, date)
		out = append(out, models.CandidateLink{URL: link, SourceDate: date, Inline: rec})
	})
	return out, nil
}
