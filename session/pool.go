package session

import (
	"context"

	"github.com/use-agent/fahndung/models"
	"github.com/use-agent/fahndung/scraper"
)

// pagePool hands out at most cap(idle) pages of one browser. Pages are
// reused across adapters; a page that saw a browser crash is discarded.
type pagePool struct {
	browser scraper.Browser
	idle    chan scraper.Page
}

func (p *pagePool) get(ctx context.Context) (scraper.Page, error) {
	select {
	case page := <-p.idle:
		return page, nil
	default:
		return p.browser.NewPage(ctx)
	}
}

func (p *pagePool) put(page scraper.Page, runErr error) {
	if models.HasCode(runErr, models.ErrCodeBrowserCrash) {
		page.Close()
		return
	}
	select {
	case p.idle <- page:
	default:
		page.Close()
	}
}

func (p *pagePool) close() {
	for {
		select {
		case page := <-p.idle:
			page.Close()
		default:
			return
		}
	}
}
