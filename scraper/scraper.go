// Package scraper is the boundary between crawl logic and the thing that
// actually loads pages: a headless Chromium driven by go-rod, or a static
// HTTP client for sources that render server-side.
package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/fahndung/config"
	"github.com/use-agent/fahndung/models"
)

// Page is one browser tab. It is not safe for concurrent use; every worker
// owns its own page.
type Page interface {
	// Navigate loads url and waits until the DOM settles.
	Navigate(ctx context.Context, url string) error
	// Document snapshots the current DOM.
	Document(ctx context.Context) (*goquery.Document, error)
	// Click activates the first element matching selector and waits for
	// the DOM to settle again.
	Click(ctx context.Context, selector string) error
	// Has reports whether selector matches anything in the current DOM.
	Has(ctx context.Context, selector string) (bool, error)
	// URL is the address of the currently loaded document.
	URL() string
	Close() error
}

// GlobalReader is implemented by pages that can read a JavaScript global of
// the loaded document as JSON.
type GlobalReader interface {
	Global(ctx context.Context, name string) ([]byte, error)
}

// Browser hands out pages. Close releases every resource and must be called
// on all exit paths.
type Browser interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

// Launcher starts a Browser for one crawl session.
type Launcher interface {
	Launch(ctx context.Context) (Browser, error)
}

// NewLauncher picks the page engine configured in cfg.
func NewLauncher(cfg *config.Config, logger *slog.Logger) (Launcher, error) {
	switch cfg.Browser.Engine {
	case "", "rod":
		return NewRodLauncher(cfg.Browser, cfg.Scraper, logger), nil
	case "http":
		return NewHTTPLauncher(cfg.Browser, cfg.Scraper, logger), nil
	default:
		return nil, fmt.Errorf("unknown page engine %q", cfg.Browser.Engine)
	}
}

// RodLauncher starts a headless Chromium per session.
type RodLauncher struct {
	browserCfg config.BrowserConfig
	scraperCfg config.ScraperConfig
	logger     *slog.Logger
}

// NewRodLauncher creates a launcher; no process is started until Launch.
func NewRodLauncher(browserCfg config.BrowserConfig, scraperCfg config.ScraperConfig, logger *slog.Logger) *RodLauncher {
	if logger == nil {
		logger = slog.Default()
	}
	return &RodLauncher{browserCfg: browserCfg, scraperCfg: scraperCfg, logger: logger}
}

// Launch starts Chromium and connects to it.
func (r *RodLauncher) Launch(ctx context.Context) (Browser, error) {
	l := launcher.New().
		Context(ctx).
		Headless(r.browserCfg.Headless).
		NoSandbox(r.browserCfg.NoSandbox)

	if r.browserCfg.BrowserBin != "" {
		l = l.Bin(r.browserCfg.BrowserBin)
	}
	if r.browserCfg.DefaultProxy != "" {
		l = l.Proxy(r.browserCfg.DefaultProxy)
	}

	// ── Stealth flags ────────────────────────────────────────────────
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("ignore-certificate-errors"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))
	l.Set(flags.Flag("lang"), "de-DE")

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewCrawlError(models.ErrCodeBrowserCrash, "failed to launch browser", err)
	}
	r.logger.Info("browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, models.NewCrawlError(models.ErrCodeBrowserCrash, "failed to connect to browser", err)
	}

	return &rodBrowser{
		browser:  browser,
		launcher: l,
		cfg:      r.scraperCfg,
		throttle: NewThrottle(r.scraperCfg.RequestsPerSecond, r.scraperCfg.Burst),
		logger:   r.logger,
	}, nil
}

type rodBrowser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	cfg      config.ScraperConfig
	throttle *Throttle
	logger   *slog.Logger

	closeOnce sync.Once
	closeErr  error
}

// NewPage opens a tab with stealth patches, a desktop viewport and resource
// blocking installed before the first navigation.
func (b *rodBrowser) NewPage(ctx context.Context) (Page, error) {
	page, err := b.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, models.NewCrawlError(models.ErrCodeBrowserCrash, "failed to open page", err)
	}
	page = page.Context(context.Background())

	if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
		b.logger.Warn("stealth injection failed, proceeding without stealth", "error", err)
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:  1920,
		Height: 1080,
	}); err != nil {
		b.logger.Warn("failed to set viewport", "error", err)
	}
	_ = proto.NetworkSetExtraHTTPHeaders{
		Headers: toHeadersMap(map[string]string{"Accept-Language": "de-DE,de;q=0.9,en;q=0.5"}),
	}.Call(page)

	return &rodPage{
		page:     page,
		router:   setupHijack(page, b.cfg.BlockedResourceTypes, b.cfg.BlockAds),
		throttle: b.throttle,
		timeout:  b.cfg.PageTimeout,
		logger:   b.logger,
	}, nil
}

// Close kills the browser process. It is safe to call more than once.
func (b *rodBrowser) Close() error {
	b.closeOnce.Do(func() {
		b.logger.Info("closing browser")
		b.closeErr = b.browser.Close()
		b.launcher.Kill()
		b.launcher.Cleanup()
	})
	return b.closeErr
}
