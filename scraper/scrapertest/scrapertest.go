// Package scrapertest provides an in-memory scraper.Launcher serving fixture
// HTML, for testing adapters and sessions without a browser or network.
package scrapertest

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/fahndung/models"
	"github.com/use-agent/fahndung/scraper"
)

// Site is a fixture web: it is the Launcher, the Browser and the source of
// every page's content. It is safe for concurrent use by several pages.
type Site struct {
	mu       sync.Mutex
	pages    map[string]string
	failures map[string]error
	clicks   map[string][]string
	visits   []string

	launchErr error
	launched  int
	closed    int
}

// New returns an empty site.
func New() *Site {
	return &Site{
		pages:    map[string]string{},
		failures: map[string]error{},
		clicks:   map[string][]string{},
	}
}

// Page registers the HTML served at u.
func (s *Site) Page(u, html string) *Site {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[u] = html
	return s
}

// Fail makes navigation to u return err.
func (s *Site) Fail(u string, err error) *Site {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[u] = err
	return s
}

// OnClick registers the successive DOM states of u after each click on
// selector. Clicking more often than states were given fails.
func (s *Site) OnClick(u, selector string, states ...string) *Site {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clicks[clickKey(u, selector)] = states
	return s
}

// FailLaunch makes Launch return err.
func (s *Site) FailLaunch(err error) *Site {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.launchErr = err
	return s
}

// Visits returns every navigated URL in order.
func (s *Site) Visits() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.visits...)
}

// Visited reports whether u was navigated to.
func (s *Site) Visited(u string) bool {
	for _, v := range s.Visits() {
		if v == u {
			return true
		}
	}
	return false
}

// Launched and Closed count browser lifecycle calls.
func (s *Site) Launched() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.launched
}

func (s *Site) Closed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Launch implements scraper.Launcher.
func (s *Site) Launch(context.Context) (scraper.Browser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.launchErr != nil {
		return nil, s.launchErr
	}
	s.launched++
	return s, nil
}

// NewPage implements scraper.Browser.
func (s *Site) NewPage(context.Context) (scraper.Page, error) {
	return &page{site: s, clicked: map[string]int{}}, nil
}

// Close implements scraper.Browser.
func (s *Site) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

func clickKey(u, selector string) string { return u + "\x00" + selector }

type page struct {
	site    *Site
	url     string
	html    string
	clicked map[string]int
}

func (p *page) Navigate(ctx context.Context, u string) error {
	if err := ctx.Err(); err != nil {
		return models.NewCrawlError(models.ErrCodeTimeout, "operation canceled", err)
	}
	s := p.site
	s.mu.Lock()
	defer s.mu.Unlock()

	s.visits = append(s.visits, u)
	if err, ok := s.failures[u]; ok {
		return models.NewCrawlError(models.ErrCodeNavigation, "navigation to "+u+" failed", err)
	}
	html, ok := s.pages[u]
	if !ok {
		return models.NewCrawlError(models.ErrCodeNavigation, fmt.Sprintf("HTTP 404 for %s", u), nil)
	}
	p.url, p.html = u, html
	p.clicked = map[string]int{}
	return nil
}

func (p *page) Document(context.Context) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(p.html))
	if err != nil {
		return nil, err
	}
	if u, err := url.Parse(p.url); err == nil {
		doc.Url = u
	}
	return doc, nil
}

func (p *page) Click(ctx context.Context, selector string) error {
	if ok, _ := p.Has(ctx, selector); !ok {
		return models.NewCrawlError(models.ErrCodeNavigation, "element "+selector+" not found", nil)
	}
	s := p.site
	s.mu.Lock()
	defer s.mu.Unlock()

	key := clickKey(p.url, selector)
	states := s.clicks[key]
	n := p.clicked[key]
	if n >= len(states) {
		return models.NewCrawlError(models.ErrCodeNavigation, "click on "+selector+" had no effect", nil)
	}
	p.html = states[n]
	p.clicked[key] = n + 1
	return nil
}

func (p *page) Has(ctx context.Context, selector string) (bool, error) {
	doc, err := p.Document(ctx)
	if err != nil {
		return false, err
	}
	return doc.Find(selector).Length() > 0, nil
}

func (p *page) URL() string  { return p.url }
func (p *page) Close() error { return nil }
