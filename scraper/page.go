package scraper

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/fahndung/models"
	"github.com/ysmood/gson"
)

// rodPage is a Page backed by a Chromium tab.
type rodPage struct {
	page     *rod.Page
	router   *rod.HijackRouter
	throttle *Throttle
	timeout  time.Duration
	logger   *slog.Logger
	url      string
}

// bind derives the per-operation deadline and binds it to the tab.
func (p *rodPage) bind(ctx context.Context) (*rod.Page, context.CancelFunc) {
	if p.timeout > 0 {
		ctx, cancel := context.WithTimeout(ctx, p.timeout)
		return p.page.Context(ctx), cancel
	}
	return p.page.Context(ctx), func() {}
}

func (p *rodPage) Navigate(ctx context.Context, target string) error {
	if err := p.throttle.Wait(ctx); err != nil {
		return categorizeError(err, "navigation throttled")
	}
	page, cancel := p.bind(ctx)
	defer cancel()

	if err := page.Navigate(target); err != nil {
		return categorizeError(err, "navigation to "+target+" failed")
	}
	if err := page.WaitLoad(); err != nil {
		return categorizeError(err, "page load of "+target+" did not finish")
	}
	p.settle(page)
	p.url = target
	if info, err := page.Info(); err == nil && info.URL != "" {
		p.url = info.URL
	}
	return nil
}

// settle waits for the DOM to stop changing. Pages that never settle are read
// as they are.
func (p *rodPage) settle(page *rod.Page) {
	if err := page.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		p.logger.Debug("WaitDOMStable did not converge, proceeding with current DOM", "error", err)
	}
}

func (p *rodPage) Document(ctx context.Context) (*goquery.Document, error) {
	page, cancel := p.bind(ctx)
	defer cancel()

	html, err := page.HTML()
	if err != nil {
		return nil, categorizeError(err, "failed to extract page HTML")
	}
	return parseDocument(html, p.url)
}

func (p *rodPage) Click(ctx context.Context, selector string) error {
	page, cancel := p.bind(ctx)
	defer cancel()

	has, el, err := page.Has(selector)
	if err != nil {
		return categorizeError(err, "lookup of "+selector+" failed")
	}
	if !has {
		return models.NewCrawlError(models.ErrCodeNavigation, "element "+selector+" not found", nil)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return categorizeError(err, "click on "+selector+" failed")
	}
	p.settle(page)
	return nil
}

func (p *rodPage) Has(ctx context.Context, selector string) (bool, error) {
	page, cancel := p.bind(ctx)
	defer cancel()

	has, _, err := page.Has(selector)
	if err != nil {
		return false, categorizeError(err, "lookup of "+selector+" failed")
	}
	return has, nil
}

// Global reads window[name] as JSON. A missing global yields "null".
func (p *rodPage) Global(ctx context.Context, name string) ([]byte, error) {
	page, cancel := p.bind(ctx)
	defer cancel()

	res, err := page.Eval(`(n) => JSON.stringify(window[n] === undefined ? null : window[n])`, name)
	if err != nil {
		return nil, categorizeError(err, "failed to read window."+name)
	}
	return []byte(res.Value.Str()), nil
}

func (p *rodPage) URL() string {
	return p.url
}

// Close stops the hijack router and closes the tab.
func (p *rodPage) Close() error {
	if p.router != nil {
		_ = p.router.Stop()
	}
	return p.page.Close()
}

func parseDocument(html, base string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, models.NewCrawlError(models.ErrCodeNavigation, "failed to parse page HTML", err)
	}
	if base != "" {
		if u, err := url.Parse(base); err == nil {
			doc.Url = u
		}
	}
	return doc, nil
}

// Resolve turns href into an absolute URL relative to the document. It
// returns "" for empty, fragment-only and javascript: links.
func Resolve(doc *goquery.Document, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if doc == nil || doc.Url == nil {
		return ref.String()
	}
	return doc.Url.ResolveReference(ref).String()
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}

// categorizeError wraps raw errors into typed CrawlErrors so sessions can
// tell timeouts from navigation failures.
func categorizeError(err error, msg string) *models.CrawlError {
	var ce *models.CrawlError
	if errors.As(err, &ce) {
		return ce
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewCrawlError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewCrawlError(models.ErrCodeTimeout, "operation canceled", err)
	default:
		return models.NewCrawlError(models.ErrCodeNavigation, msg, err)
	}
}
