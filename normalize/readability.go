package normalize

import (
	"log/slog"
	nurl "net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// minMainContent is the shortest readability text accepted as a notice body.
// Shorter results mean the algorithm did not find the article.
const minMainContent = 50

// MainContent runs Mozilla Readability over a whole detail page and returns
// the article body as Markdown. It is the fallback for detail pages whose
// description container was not found, e.g. after a site relaunch. The bool
// is false when nothing usable was extracted.
func MainContent(rawHTML, pageURL string) (string, bool) {
	parsedURL, err := nurl.Parse(pageURL)
	if err != nil {
		slog.Warn("readability: invalid page URL", "url", pageURL, "error", err)
		return "", false
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), parsedURL)
	if err != nil {
		slog.Warn("readability: extraction failed", "url", pageURL, "error", err)
		return "", false
	}
	if len(strings.TrimSpace(article.TextContent)) < minMainContent {
		return "", false
	}

	md, err := Markdown(article.Content, parsedURL.Scheme+"://"+parsedURL.Host)
	if err != nil || md == "" {
		return Clean(article.TextContent), true
	}
	return md, true
}
