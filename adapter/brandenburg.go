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

const (
	bbSearch      = "https://polizei.brandenburg.de/suche/typ/"
	bbWanted      = bbSearch + "Fahndung/kategorie/Gesuchte%20Straft%C3%A4ter/"
	bbMissing     = bbSearch + "Fahndung/kategorie/Vermisste%20Personen/"
	bbNews        = bbSearch + "Meldungen/kategorie/null/"
	bbFullResults = "limit/50?fullResultList=1"
)

var (
	bbItems        = css("#pbb-search-result-pager > .pbb-searchlist > li")
	bbItemDate     = css("p span")
	bbItemLink     = css("a")
	bbPlace        = css("#pbb-article .pbb-ort")
	bbLead         = css("#pbb-article .pbb-article-text > p:first-child span strong")
	bbMetaDate     = css(`#pbb-article #pbb-metadata dd[data-iw-field="datum"]`)
	bbText         = css("#pbb-article .pbb-article-text")
	bbNewsItems    = css("#pbb-subcontent ul.pbb-searchlist li")
	bbNewsTitle    = css("h4 a strong")
	bbNewsLink     = css("h4 a")
	bbNewsLocation = css("p span a")
)

// The search switches to 50 results per page once the limit URL was visited
// in the same browser session; the numbered pages keep that setting.
func brandenburg(o Options) []*Listing {
	cursor := func(base string) func() []pagination.Cursor {
		return func() []pagination.Cursor {
			c := pagination.NewNumbered(numbered(base, "/1"), 1)
			c.Prime = base + bbFullResults
			return []pagination.Cursor{c}
		}
	}
	return []*Listing{
		{
			Desc:     o.describe(models.Brandenburg, models.ContentWanted, models.PaginationNumbered, models.NewestFirst),
			Cursors:  cursor(bbWanted),
			Discover: bbDiscover,
			Extract:  bbDetail,
			Format:   recency.DotDate,
		},
		{
			Desc:     o.describe(models.Brandenburg, models.ContentMissing, models.PaginationNumbered, models.NewestFirst),
			Cursors:  cursor(bbMissing),
			Discover: bbDiscover,
			Extract:  bbDetail,
			Format:   recency.DotDate,
		},
	}
}

func bbDiscover(_ context.Context, _ scraper.Page, doc *goquery.Document) ([]models.CandidateLink, error) {
	var out []models.CandidateLink
	doc.FindMatcher(bbItems).Each(func(_ int, s *goquery.Selection) {
		link := href(doc, s.FindMatcher(bbItemLink))
		if link == "" {
			return
		}
		out = append(out, models.CandidateLink{
			URL:        link,
			SourceDate: firstChildText(s.FindMatcher(bbItemDate)),
		})
	})
	return out, nil
}

// bbDetail prefers the "Tatzeit:" lead line over the publication date.
func bbDetail(doc *goquery.Document, link models.CandidateLink, _ *normalize.Normalizer) (*models.DraftRecord, error) {
	rec := draft(models.Brandenburg, link)

	date := text(doc.FindMatcher(bbMetaDate).First())
	if lead := text(doc.FindMatcher(bbLead).First()); strings.Contains(lead, "Tatzeit") {
		if v := normalize.After(lead, "Tatzeit:"); v != "" {
			date = v
		}
	}
	setPlace(rec, text(doc.FindMatcher(bbPlace).First()), date)

	setDescription(rec, normalize.Description(doc.FindMatcher(bbText).First(), domain(doc)))
	return rec, nil
}

// Brandenburg news pages are read until a page brings nothing new and fresh.
func brandenburgNews(o Options) []*Listing {
	return []*Listing{{
		Desc: o.describe(models.Brandenburg, models.ContentNews, models.PaginationNumbered, models.NewestFirst),
		Cursors: func() []pagination.Cursor {
			c := pagination.NewNumbered(numbered(bbNews, "/1"), 1)
			c.First = bbNews + bbFullResults
			return []pagination.Cursor{c}
		},
		Discover:      bbNewsDiscover,
		Format:        recency.DotDate,
		StopWhenStale: true,
	}}
}

func bbNewsDiscover(_ context.Context, _ scraper.Page, doc *goquery.Document) ([]models.CandidateLink, error) {
	var out []models.CandidateLink
	doc.FindMatcher(bbNewsItems).Each(func(_ int, s *goquery.Selection) {
		meta := firstChildText(s.FindMatcher(bbItemDate))
		if strings.Contains(meta, "Termin") {
			return
		}
		link := href(doc, s.FindMatcher(bbNewsLink))
		if link == "" {
			return
		}
		date := normalize.After(meta, "Artikel vom")
		if date == "" {
			date = meta
		}

		rec := models.NewNews(models.Brandenburg, link)
		rec.News.Title = text(s.FindMatcher(bbNewsTitle).First())
		rec.News.Location = text(s.FindMatcher(bbNewsLocation).First())
		if rec.News.Location == "" {
			rec.News.Location = string(models.Brandenburg)
		}
		rec.News.Date = parseOrZero(recency.DotDate, date)
		out = append(out, models.CandidateLink{URL: link, SourceDate: date, Inline: rec})
	})
	return out, nil
}
