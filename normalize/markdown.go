package normalize

import (
	"strings"
	"sync"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var (
	convOnce sync.Once
	conv     *converter.Converter
)

// markdownConverter is shared by all adapters; converter.Converter is safe
// for concurrent use.
func markdownConverter() *converter.Converter {
	convOnce.Do(func() {
		conv = converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(
					table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
				),
			),
		)
	})
	return conv
}

// Markdown renders an HTML fragment as Markdown. Relative links are resolved
// against domain.
func Markdown(fragment, domain string) (string, error) {
	md, err := markdownConverter().ConvertString(fragment, converter.WithDomain(domain))
	if err != nil {
		return "", err
	}
	return Clean(md), nil
}

// Description renders every node of sel as Markdown. When conversion fails it
// falls back to the block text of the selection.
func Description(sel *goquery.Selection, domain string) string {
	if sel == nil || sel.Length() == 0 {
		return ""
	}
	var b strings.Builder
	sel.Each(func(_ int, s *goquery.Selection) {
		outer, err := goquery.OuterHtml(s)
		if err != nil {
			return
		}
		b.WriteString(outer)
		b.WriteString("\n")
	})
	md, err := Markdown(b.String(), domain)
	if err != nil || md == "" {
		return Text(sel)
	}
	return md
}

// Text returns the visible text of sel with line breaks at block boundaries,
// unlike Selection.Text which runs paragraphs together.
func Text(sel *goquery.Selection) string {
	if sel == nil {
		return ""
	}
	var b strings.Builder
	for i, n := range sel.Nodes {
		if i > 0 {
			b.WriteString("\n")
		}
		blockText(&b, n)
	}
	return Clean(b.String())
}

var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"tr": true, "table": true, "section": true, "article": true, "dd": true, "dt": true,
}

func blockText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript", "template":
			return
		}
	}
	block := n.Type == html.ElementNode && blockElements[n.Data]
	if block {
		b.WriteString("\n")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		blockText(b, c)
	}
	if block {
		b.WriteString("\n")
	}
}
