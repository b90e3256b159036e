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

const mvWanted = "https://www.polizei.mvnet.de/Presse/Fahndungen/Fahndungen-nach-Personen/?pager.items.offset=%d"

// mvPageSize is the number of teasers per listing page.
const mvPageSize = 10

var (
	mvEmpty      = css(".element .resultlist .element.emptylist")
	mvTeasers    = css(".element .resultlist .teaser .teaser_text")
	mvTeaserDate = css(".teaser_meta .dtstart")
	mvTeaserLink = css("h3 a")
	mvAuthority  = css("#page .element .absatz .teaser_meta span:last-child")
	mvDate       = css("#page .element .absatz .teaser_meta .dtstart")
	mvText       = css("#page .element .absatz p")
)

func mecklenburgVorpommern(o Options) []*Listing {
	return []*Listing{{
		Desc: o.describe(models.MecklenburgVorpommern, models.ContentWanted, models.PaginationOffset, models.NewestFirst),
		Cursors: func() []pagination.Cursor {
			return []pagination.Cursor{pagination.NewOffset(pagination.Format(mvWanted), mvPageSize)}
		},
		Discover: mvDiscover,
		Extract:  mvDetail,
		Format:   recency.DotDate,
	}}
}

func mvDiscover(_ context.Context, _ scraper.Page, doc *goquery.Document) ([]models.CandidateLink, error) {
	if doc.FindMatcher(mvEmpty).Length() > 0 {
		return nil, nil
	}
	var out []models.CandidateLink
	doc.FindMatcher(mvTeasers).Each(func(_ int, s *goquery.Selection) {
		link := href(doc, s.FindMatcher(mvTeaserLink))
		if link == "" {
			return
		}
		out = append(out, models.CandidateLink{
			URL:        link,
			SourceDate: text(s.FindMatcher(mvTeaserDate).First()),
		})
	})
	return out, nil
}

// mvDetail uses the issuing police headquarters as the location.
func mvDetail(doc *goquery.Document, link models.CandidateLink, _ *normalize.Normalizer) (*models.DraftRecord, error) {
	rec := draft(models.MecklenburgVorpommern, link)

	authority := text(doc.FindMatcher(mvAuthority).First())
	location := normalize.After(authority, "Polizeipräsidium")
	if location == "" && !strings.Contains(authority, "Polizeipräsidium") {
		location = authority
	}
	setPlace(rec, location, text(doc.FindMatcher(mvDate).First()))

	setDescription(rec, normalize.Description(doc.FindMatcher(mvText), domain(doc)))
	return rec, nil
}
