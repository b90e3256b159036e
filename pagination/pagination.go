// Package pagination walks the pages of a listing. Each Cursor knows how a
// source exposes its next page: a page number in the URL, an offset, a
// "load more" control or a "next" link.
package pagination

import (
	"context"
	"fmt"

	"github.com/use-agent/fahndung/models"
	"github.com/use-agent/fahndung/scraper"
)

// DefaultLoadMoreIterations bounds how often a load-more trigger is
// activated in one run.
const DefaultLoadMoreIterations = 500

// Cursor is the position inside one listing. A cursor is created per adapter
// run and is not safe for concurrent use.
//
// The caller loads the first position with Start, reads the page, reports the
// number of candidate links it found with Observe and calls Advance until
// Exhausted reports true.
type Cursor interface {
	// Start loads the first listing position into page.
	Start(ctx context.Context, page scraper.Page) error
	// Current is the URL of the loaded position.
	Current() string
	// Observe records how many candidate links the loaded position yielded.
	Observe(found int)
	// Exhausted reports whether no further position exists.
	Exhausted() bool
	// Capped reports whether exhaustion was caused by the iteration cap.
	Capped() bool
	// Advance loads the next position into page.
	Advance(ctx context.Context, page scraper.Page) error
	// Pages is the number of positions loaded so far.
	Pages() int
}

// URLFunc renders the listing URL for a page number or offset.
type URLFunc func(n int) string

// Format returns a URLFunc substituting n into a fmt pattern with one %d verb.
func Format(pattern string) URLFunc {
	return func(n int) string { return fmt.Sprintf(pattern, n) }
}

// Numbered pages through a listing by page number, e.g. ?page=3. It is
// exhausted once a page yields no links or MaxPages pages were read.
type Numbered struct {
	URL  URLFunc
	From int
	Step int
	// First overrides the URL of the first position, for sites whose first
	// page lives at a different address than the numbered ones.
	First string
	// Prime is visited once before the first position, e.g. to switch the
	// site to 50 results per page for the current session.
	Prime    string
	MaxPages int

	n       int
	pages   int
	current string
	done    bool
	capped  bool
}

// NewNumbered starts at start and adds one per page.
func NewNumbered(url URLFunc, start int) *Numbered {
	return &Numbered{URL: url, From: start, Step: 1}
}

// NewOffset starts at offset 0 and adds step per page.
func NewOffset(url URLFunc, step int) *Numbered {
	return &Numbered{URL: url, From: 0, Step: step}
}

func (c *Numbered) Start(ctx context.Context, page scraper.Page) error {
	if c.Prime != "" {
		if err := page.Navigate(ctx, c.Prime); err != nil {
			return err
		}
	}
	c.n = c.From
	target := c.URL(c.n)
	if c.First != "" {
		target = c.First
	}
	return c.load(ctx, page, target)
}

func (c *Numbered) load(ctx context.Context, page scraper.Page, target string) error {
	if err := page.Navigate(ctx, target); err != nil {
		return err
	}
	c.current = target
	c.pages++
	return nil
}

func (c *Numbered) Current() string { return c.current }

func (c *Numbered) Observe(found int) {
	if found == 0 {
		c.done = true
	}
	if c.MaxPages > 0 && c.pages >= c.MaxPages && !c.done {
		c.done, c.capped = true, true
	}
}

func (c *Numbered) Exhausted() bool { return c.done }
func (c *Numbered) Capped() bool    { return c.capped }
func (c *Numbered) Pages() int      { return c.pages }

func (c *Numbered) Advance(ctx context.Context, page scraper.Page) error {
	if c.done {
		return errExhausted
	}
	step := c.Step
	if step == 0 {
		step = 1
	}
	c.n += step
	return c.load(ctx, page, c.URL(c.n))
}

// Single is a listing that fits on one page.
type Single struct {
	URL string

	loaded bool
}

// NewSingle returns a cursor over exactly one page.
func NewSingle(url string) *Single { return &Single{URL: url} }

func (c *Single) Start(ctx context.Context, page scraper.Page) error {
	if err := page.Navigate(ctx, c.URL); err != nil {
		return err
	}
	c.loaded = true
	return nil
}

func (c *Single) Current() string { return c.URL }
func (c *Single) Observe(int)     {}
func (c *Single) Exhausted() bool { return c.loaded }
func (c *Single) Capped() bool    { return false }

func (c *Single) Pages() int {
	if c.loaded {
		return 1
	}
	return 0
}

func (c *Single) Advance(context.Context, scraper.Page) error { return errExhausted }

// LoadMore navigates once and then activates a trigger element that appends
// further items to the same page. It is exhausted when the trigger is gone
// after an activation or after MaxIterations activations.
type LoadMore struct {
	URL           string
	Trigger       string
	MaxIterations int

	clicks  int
	started bool
	done    bool
	capped  bool
}

// NewLoadMore returns a load-more cursor capped at DefaultLoadMoreIterations.
func NewLoadMore(url, trigger string) *LoadMore {
	return &LoadMore{URL: url, Trigger: trigger, MaxIterations: DefaultLoadMoreIterations}
}

func (c *LoadMore) Start(ctx context.Context, page scraper.Page) error {
	if err := page.Navigate(ctx, c.URL); err != nil {
		return err
	}
	c.started = true
	return c.checkTrigger(ctx, page)
}

func (c *LoadMore) checkTrigger(ctx context.Context, page scraper.Page) error {
	ok, err := page.Has(ctx, c.Trigger)
	if err != nil {
		return err
	}
	if !ok {
		c.done = true
	}
	return nil
}

func (c *LoadMore) Current() string { return c.URL }
func (c *LoadMore) Observe(int)     {}
func (c *LoadMore) Exhausted() bool { return c.done }
func (c *LoadMore) Capped() bool    { return c.capped }

func (c *LoadMore) Pages() int {
	if !c.started {
		return 0
	}
	return c.clicks + 1
}

func (c *LoadMore) Advance(ctx context.Context, page scraper.Page) error {
	if c.done {
		return errExhausted
	}
	limit := c.MaxIterations
	if limit <= 0 {
		limit = DefaultLoadMoreIterations
	}
	if c.clicks >= limit {
		c.done, c.capped = true, true
		return errExhausted
	}
	if err := page.Click(ctx, c.Trigger); err != nil {
		return err
	}
	c.clicks++
	if err := c.checkTrigger(ctx, page); err != nil {
		return err
	}
	if !c.done && c.clicks >= limit {
		c.done, c.capped = true, true
	}
	return nil
}

// NextLink follows the href of a "next page" control until it is absent.
type NextLink struct {
	URL      string
	Selector string
	MaxPages int

	current string
	next    string
	pages   int
	done    bool
	capped  bool
}

// NewNextLink returns a cursor starting at url and following selector.
func NewNextLink(url, selector string) *NextLink {
	return &NextLink{URL: url, Selector: selector}
}

func (c *NextLink) Start(ctx context.Context, page scraper.Page) error {
	return c.load(ctx, page, c.URL)
}

func (c *NextLink) load(ctx context.Context, page scraper.Page, target string) error {
	if err := page.Navigate(ctx, target); err != nil {
		return err
	}
	c.current = page.URL()
	if c.current == "" {
		c.current = target
	}
	c.pages++

	doc, err := page.Document(ctx)
	if err != nil {
		return err
	}
	c.next = ""
	if href, ok := doc.Find(c.Selector).First().Attr("href"); ok {
		c.next = scraper.Resolve(doc, href)
	}
	switch {
	case c.next == "" || c.next == c.current:
		c.done = true
	case c.MaxPages > 0 && c.pages >= c.MaxPages:
		c.done, c.capped = true, true
	}
	return nil
}

func (c *NextLink) Current() string { return c.current }
func (c *NextLink) Observe(int)     {}
func (c *NextLink) Exhausted() bool { return c.done }
func (c *NextLink) Capped() bool    { return c.capped }
func (c *NextLink) Pages() int      { return c.pages }

func (c *NextLink) Advance(ctx context.Context, page scraper.Page) error {
	if c.done {
		return errExhausted
	}
	return c.load(ctx, page, c.next)
}

var errExhausted = models.NewCrawlError(models.ErrCodeInternal, "pagination: advance past the last page", nil)

// Limiter is implemented by cursors whose number of pages can be capped
// after construction. n <= 0 leaves the cursor unchanged. LoadMore is not a
// Limiter: its activations are bounded by MaxIterations alone.
type Limiter interface {
	Limit(n int)
}

func (c *Numbered) Limit(n int) {
	if n > 0 {
		c.MaxPages = n
	}
}

func (c *NextLink) Limit(n int) {
	if n > 0 {
		c.MaxPages = n
	}
}
