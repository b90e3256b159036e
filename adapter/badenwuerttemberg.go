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

const bwList = "https://fahndung.polizei-bw.de/"

var (
	bwWantedLinks  = css("#grd_straftaeter > div > section > div > a")
	bwMissingLinks = css("#grd_vermisst > div > section > div > a")
	bwTrace        = css(".tracing-detail .trace-location")
	bwRows         = css(".mobile .collapse > .card-body > section")
	bwText         = css(".container > .tracing-special")
)

// Both grids are on the same start page.
func badenWuerttemberg(o Options) []*Listing {
	grid := func(m goquery.Matcher) Discoverer {
		return func(_ context.Context, _ scraper.Page, doc *goquery.Document) ([]models.CandidateLink, error) {
			return links(doc, m), nil
		}
	}
	return []*Listing{
		{
			Desc:     o.describe(models.BadenWuerttemberg, models.ContentWanted, models.PaginationSingle, models.Unordered),
			Cursors:  func() []pagination.Cursor { return []pagination.Cursor{pagination.NewSingle(bwList)} },
			Discover: grid(bwWantedLinks),
			Extract:  bwDetail,
			Format:   recency.DotDate,
		},
		{
			Desc:     o.describe(models.BadenWuerttemberg, models.ContentMissing, models.PaginationSingle, models.Unordered),
			Cursors:  func() []pagination.Cursor { return []pagination.Cursor{pagination.NewSingle(bwList)} },
			Discover: grid(bwMissingLinks),
			Extract:  bwDetail,
			Format:   recency.DotDate,
		},
	}
}

func bwDetail(doc *goquery.Document, link models.CandidateLink, n *normalize.Normalizer) (*models.DraftRecord, error) {
	rec := draft(models.BadenWuerttemberg, link)

	trace := doc.FindMatcher(bwTrace)
	setPlace(rec, text(trace.Eq(0)), text(trace.Eq(1)))

	doc.FindMatcher(bwRows).Each(func(_ int, s *goquery.Selection) {
		n.Apply(rec, text(s.Find("h2").First()), text(s.Find("p").First()))
	})

	setDescription(rec, normalize.Description(doc.FindMatcher(bwText).First(), domain(doc)))
	return rec, nil
}
