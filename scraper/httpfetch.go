package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	tls2 "github.com/refraction-networking/utls"
	"github.com/use-agent/fahndung/config"
	"github.com/use-agent/fahndung/models"
)

// HTTPLauncher fetches pages without a browser. It is enough for sources that
// render their listings server-side and need neither clicks nor scripts.
type HTTPLauncher struct {
	browserCfg config.BrowserConfig
	scraperCfg config.ScraperConfig
	logger     *slog.Logger
}

// NewHTTPLauncher creates a static-fetch launcher.
func NewHTTPLauncher(browserCfg config.BrowserConfig, scraperCfg config.ScraperConfig, logger *slog.Logger) *HTTPLauncher {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPLauncher{browserCfg: browserCfg, scraperCfg: scraperCfg, logger: logger}
}

// Launch builds the shared resty client of one session.
func (h *HTTPLauncher) Launch(ctx context.Context) (Browser, error) {
	client := resty.New().
		SetTimeout(h.scraperCfg.PageTimeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(10)).
		SetHeader("User-Agent", h.scraperCfg.UserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "de-DE,de;q=0.9,en;q=0.5").
		SetHeader("Cache-Control", "no-cache")

	if h.browserCfg.ChromeTLS {
		client.SetTransport(&http.Transport{
			DialTLSContext:      dialTLSChrome,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     30 * time.Second,
		})
	}
	// Proxied connections are tunnelled by net/http and do not use the
	// Chrome fingerprint.
	if h.browserCfg.DefaultProxy != "" {
		client.SetProxy(h.browserCfg.DefaultProxy)
	}

	h.logger.Info("http page engine ready", "chromeTLS", h.browserCfg.ChromeTLS)
	return &httpBrowser{
		client:   client,
		throttle: NewThrottle(h.scraperCfg.RequestsPerSecond, h.scraperCfg.Burst),
	}, nil
}

type httpBrowser struct {
	client   *resty.Client
	throttle *Throttle
}

func (b *httpBrowser) NewPage(context.Context) (Page, error) {
	return &httpPage{client: b.client, throttle: b.throttle}, nil
}

func (b *httpBrowser) Close() error {
	b.client.GetClient().CloseIdleConnections()
	return nil
}

// httpPage holds the last fetched document.
type httpPage struct {
	client   *resty.Client
	throttle *Throttle
	url      string
	doc      *goquery.Document
}

func (p *httpPage) Navigate(ctx context.Context, target string) error {
	if err := p.throttle.Wait(ctx); err != nil {
		return categorizeError(err, "navigation throttled")
	}
	resp, err := p.client.R().SetContext(ctx).Get(target)
	if err != nil {
		return categorizeError(err, "request to "+target+" failed")
	}
	if resp.StatusCode() >= 400 {
		return models.NewCrawlError(models.ErrCodeNavigation,
			fmt.Sprintf("HTTP %d for %s", resp.StatusCode(), target), nil)
	}

	final := target
	if raw := resp.RawResponse; raw != nil && raw.Request != nil && raw.Request.URL != nil {
		final = raw.Request.URL.String()
	}
	doc, err := parseDocument(string(resp.Body()), final)
	if err != nil {
		return err
	}
	p.url, p.doc = final, doc
	return nil
}

func (p *httpPage) Document(context.Context) (*goquery.Document, error) {
	if p.doc == nil {
		return nil, models.NewCrawlError(models.ErrCodeNavigation, "no document loaded", nil)
	}
	return p.doc, nil
}

// Click is not possible without a browser.
func (p *httpPage) Click(_ context.Context, selector string) error {
	return models.NewCrawlError(models.ErrCodeUnsupported, "click on "+selector+" needs a browser", nil)
}

func (p *httpPage) Has(_ context.Context, selector string) (bool, error) {
	if p.doc == nil {
		return false, nil
	}
	return p.doc.Find(selector).Length() > 0, nil
}

func (p *httpPage) URL() string  { return p.url }
func (p *httpPage) Close() error { return nil }

// dialTLSChrome establishes a TLS connection using a Chrome fingerprint via
// utls. ALPN is limited to http/1.1 because net/http cannot speak h2 over a
// non-crypto/tls connection.
func dialTLSChrome(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: 15 * time.Second}
	rawConn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	spec, err := tls2.UTLSIdToSpec(tls2.HelloChrome_Auto)
	if err != nil {
		rawConn.Close()
		return nil, fmt.Errorf("chrome tls spec: %w", err)
	}
	for _, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls2.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
		}
	}

	host, _, _ := net.SplitHostPort(addr)
	tlsConn := tls2.UClient(rawConn, &tls2.Config{ServerName: host}, tls2.HelloCustom)
	if err := tlsConn.ApplyPreset(&spec); err != nil {
		rawConn.Close()
		return nil, fmt.Errorf("apply chrome tls spec: %w", err)
	}
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		rawConn.Close()
		return nil, err
	}
	return tlsConn, nil
}
