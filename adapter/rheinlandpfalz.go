package adapter

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/fahndung/models"
	"github.com/use-agent/fahndung/normalize"
	"github.com/use-agent/fahndung/pagination"
	"github.com/use-agent/fahndung/recency"
	"github.com/use-agent/fahndung/scraper"
)

const rlpList = "https://www.polizei.rlp.de/fahndung/personenfahndungen/seite-%d"

var (
	rlpItems    = css(".news-list-view ul li.list-group-item")
	rlpItemDate = css(".subtitle .date")
	rlpInfo     = css("main .article .article-content .row:last-child > div > .row > .fahndung-information")
)

// Rheinland-Pfalz mixes wanted and missing persons in one newest-first list;
// a notice older than the retention window ends the walk.
func rheinlandPfalz(o Options) []*Listing {
	cursor := func() []pagination.Cursor {
		return []pagination.Cursor{pagination.NewNumbered(pagination.Format(rlpList), 1)}
	}
	return []*Listing{
		{
			Desc:     o.describe(models.RheinlandPfalz, models.ContentWanted, models.PaginationNumbered, models.NewestFirst),
			Cursors:  cursor,
			Discover: rlpDiscover,
			Extract:  rlpDetail,
			Format:   recency.DotDate,
		},
		{
			Desc:     o.describe(models.RheinlandPfalz, models.ContentMissing, models.PaginationNumbered, models.NewestFirst),
			Cursors:  cursor,
			Discover: rlpDiscover,
			Extract:  rlpDetail,
			Format:   recency.DotDate,
		},
	}
}

func rlpDiscover(_ context.Context, _ scraper.Page, doc *goquery.Document) ([]models.CandidateLink, error) {
	var out []models.CandidateLink
	doc.FindMatcher(rlpItems).Each(func(_ int, s *goquery.Selection) {
		link := href(doc, s.Find("a"))
		if link == "" {
			return
		}
		ct := models.ContentWanted
		if strings.Contains(strings.ToLower(text(s.Find("h2").First())), "vermisst") {
			ct = models.ContentMissing
		}
		out = append(out, models.CandidateLink{
			URL:         link,
			SourceDate:  text(s.FindMatcher(rlpItemDate).First()),
			ContentType: ct,
		})
	})
	return out, nil
}

// rlpDetail: the first three blocks of the information box are the notice
// text, the blocks from the third on carry h4 labels with p values.
func rlpDetail(doc *goquery.Document, link models.CandidateLink, n *normalize.Normalizer) (*models.DraftRecord, error) {
	rec := draft(models.RheinlandPfalz, link)

	blocks := doc.FindMatcher(rlpInfo).First().Find("div")
	var parts []string
	slice(blocks, 0, 3).Each(func(_ int, s *goquery.Selection) {
		if t := normalize.Text(s); t != "" {
			parts = append(parts, t)
		}
	})
	setDescription(rec, strings.Join(parts, "\n\n"))

	slice(blocks, 2, -1).Each(func(_ int, s *goquery.Selection) {
		label := s.Find("h4").First()
		if label.Length() == 0 {
			return
		}
		n.Apply(rec, text(label), text(s.Find("p").First()))
	})
	return rec, nil
}
