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

const nrwList = "https://polizei.nrw/fahndungen?page=%d"

// nrwForeignPrefix marks Mecklenburg-Vorpommern notices mirrored on the NRW
// portal; those are crawled from their own site.
const nrwForeignPrefix = "https://www.polizei.mvnet.de"

var (
	nrwRows      = css("#block-police-content .views-element-container .view-content .views-row .related-manhunt-data")
	nrwCategory  = css(".manhunt-cat")
	nrwTitle     = css(".manhunt-title a")
	nrwKnownTag  = css("#block-police-content .intro-block .field .field__item a:first-child")
	nrwDate      = css("#block-police-content .informationzen_zur_tat .date-wrapper-manhunt .field__item")
	nrwPlace     = css("#block-police-content .informationzen_zur_tat .location-wrapper-manhunt .field__item")
	nrwSince     = css("#block-police-content .informationzen_zur_person .field--name-field-manhunt-missing-since .field__item")
	nrwSubtitle  = css("#block-police-content .intro-block .field__item .second-title")
	nrwText      = css("#block-police-content .body-text-wrap .text-formatted.field__item")
	nrwPerson    = css("#block-police-content .informationzen_zur_person")
	nrwDescribed = css("#block-police-content .beschreibung_der_person")
	nrwGender    = css(".field--name-field-manhunt-gender .field__item")
	nrwHeight    = css(".field--name-field-manhunt-height .field__item")
	nrwFeatures  = css(".field--name-field-mahunt-special-features .field__item")
)

// NRW publishes wanted and missing persons in one list. Both adapters walk
// the whole list and keep their own type.
func nordrheinWestfalen(o Options) []*Listing {
	cursor := func() []pagination.Cursor {
		return []pagination.Cursor{pagination.NewNumbered(pagination.Format(nrwList), 0)}
	}
	return []*Listing{
		{
			Desc:     o.describe(models.NordrheinWestfalen, models.ContentWanted, models.PaginationNumbered, models.Unordered),
			Cursors:  cursor,
			Discover: nrwDiscover,
			Extract:  nrwDetail,
			Format:   recency.DotDate,
		},
		{
			Desc:     o.describe(models.NordrheinWestfalen, models.ContentMissing, models.PaginationNumbered, models.Unordered),
			Cursors:  cursor,
			Discover: nrwDiscover,
			Extract:  nrwDetail,
			Format:   recency.DotDate,
		},
	}
}

func nrwDiscover(_ context.Context, _ scraper.Page, doc *goquery.Document) ([]models.CandidateLink, error) {
	var out []models.CandidateLink
	doc.FindMatcher(nrwRows).Each(func(_ int, s *goquery.Selection) {
		category := text(s.FindMatcher(nrwCategory).First())
		link := href(doc, s.FindMatcher(nrwTitle))
		if link == "" || strings.Contains(category, "Gegenstände") || strings.HasPrefix(link, nrwForeignPrefix) {
			return
		}
		ct := models.ContentWanted
		if strings.Contains(category, "Vermisste") {
			ct = models.ContentMissing
		}
		out = append(out, models.CandidateLink{URL: link, ContentType: ct})
	})
	return out, nil
}

func nrwDetail(doc *goquery.Document, link models.CandidateLink, n *normalize.Normalizer) (*models.DraftRecord, error) {
	rec := draft(models.NordrheinWestfalen, link)

	// Missing persons describe gender and height in the description block,
	// wanted persons in the person block.
	attrs := doc.FindMatcher(nrwPerson)
	if rec.Missing != nil {
		attrs = doc.FindMatcher(nrwDescribed)
	}
	n.Apply(rec, "Geschlecht", text(attrs.FindMatcher(nrwGender).First()))
	n.Apply(rec, "Größe", text(attrs.FindMatcher(nrwHeight).First()))
	n.Apply(rec, "Besondere Merkmale", text(doc.FindMatcher(nrwDescribed).FindMatcher(nrwFeatures).First()))

	switch {
	case rec.Wanted != nil:
		rec.Wanted.IsUnknown = !strings.Contains(text(doc.FindMatcher(nrwKnownTag).First()), "Bekannte Tatverdächtige")
		setPlace(rec, text(doc.FindMatcher(nrwPlace).First()), text(doc.FindMatcher(nrwDate).First()))
	case rec.Missing != nil:
		place, _, _ := strings.Cut(text(doc.FindMatcher(nrwSubtitle).First()), " - ")
		setPlace(rec, place, text(doc.FindMatcher(nrwSince).First()))
	}

	setDescription(rec, normalize.Description(doc.FindMatcher(nrwText).First(), domain(doc)))
	return rec, nil
}
