package adapter

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/use-agent/fahndung/models"
	"github.com/use-agent/fahndung/normalize"
	"github.com/use-agent/fahndung/pagination"
	"github.com/use-agent/fahndung/scraper"
	"golang.org/x/net/html"
)

// css compiles a selector once at package initialisation. An invalid
// selector panics at start-up, which the registry tests catch.
func css(selector string) cascadia.Selector {
	return cascadia.MustCompile(selector)
}

// text is the single-line text content of s.
func text(s *goquery.Selection) string {
	return normalize.Line(s.Text())
}

// href resolves the href of the first element in s.
func href(doc *goquery.Document, s *goquery.Selection) string {
	v, ok := s.First().Attr("href")
	if !ok {
		return ""
	}
	return scraper.Resolve(doc, v)
}

// links returns one candidate per element matched by m, in document order.
func links(doc *goquery.Document, m goquery.Matcher) []models.CandidateLink {
	var out []models.CandidateLink
	doc.FindMatcher(m).Each(func(_ int, s *goquery.Selection) {
		if u := href(doc, s); u != "" {
			out = append(out, models.CandidateLink{URL: u})
		}
	})
	return out
}

// nodeText is the textContent of a single DOM node.
func nodeText(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(nodeText(c))
	}
	return b.String()
}

// firstChildText is the text of the first child node of the first element in
// s, which may be a bare text node.
func firstChildText(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	return normalize.Line(nodeText(s.Nodes[0].FirstChild))
}

// lastChildText is the text of the last child node of the first element in s.
func lastChildText(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	return normalize.Line(nodeText(s.Nodes[0].LastChild))
}

// nextSiblingText is the text of the node right after the first element in s.
func nextSiblingText(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	return normalize.Line(nodeText(s.Nodes[0].NextSibling))
}

// slice is Selection.Slice without the panic on short selections.
func slice(s *goquery.Selection, start, end int) *goquery.Selection {
	if end < 0 || end > s.Length() {
		end = s.Length()
	}
	if start > end {
		start = end
	}
	return s.Slice(start, end)
}

// domain is the scheme and host of the document, used to resolve links in
// Markdown descriptions.
func domain(doc *goquery.Document) string {
	if doc.Url == nil {
		return ""
	}
	return doc.Url.Scheme + "://" + doc.Url.Host
}

// numbered builds page URLs whose number sits between prefix and suffix.
// Listing URLs contain percent escapes, so fmt patterns are not usable.
func numbered(prefix, suffix string) pagination.URLFunc {
	return func(n int) string {
		return prefix + strconv.Itoa(n) + suffix
	}
}

// draft starts the record matching the link's content type.
func draft(from models.Jurisdiction, link models.CandidateLink) *models.DraftRecord {
	switch link.ContentType {
	case models.ContentMissing:
		return models.NewMissing(from, link.URL)
	case models.ContentNews:
		return models.NewNews(from, link.URL)
	default:
		return models.NewWanted(from, link.URL)
	}
}

// setPlace stores where and when the notice happened: the crime scene for
// wanted persons, the place last seen for missing ones.
func setPlace(rec *models.DraftRecord, location, date string) {
	switch {
	case rec.Wanted != nil:
		if location != "" {
			rec.Wanted.CrimeSceneLocation = location
		}
		if date != "" {
			rec.Wanted.CrimeSceneDateCrawled = date
		}
	case rec.Missing != nil:
		if location != "" {
			rec.Missing.LastSeenLocation = location
		}
		if date != "" {
			rec.Missing.LastSeenDateCrawled = date
		}
	}
}
