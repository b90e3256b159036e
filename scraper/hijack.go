package scraper

import (
	"net/url"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// configToProto maps human-readable config strings to Rod protocol resource types.
var configToProto = map[string]proto.NetworkResourceType{
	"Image":      proto.NetworkResourceTypeImage,
	"Stylesheet": proto.NetworkResourceTypeStylesheet,
	"Font":       proto.NetworkResourceTypeFont,
	"Media":      proto.NetworkResourceTypeMedia,
}

// trackerDomains are analytics and consent hosts seen on state police sites.
// None of them is needed to render a listing.
var trackerDomains = map[string]struct{}{
	"google-analytics.com":   {},
	"googletagmanager.com":   {},
	"doubleclick.net":        {},
	"facebook.net":           {},
	"connect.facebook.net":   {},
	"hotjar.com":             {},
	"consensu.org":           {},
	"usercentrics.eu":        {},
	"etracker.com":           {},
	"etracker.de":            {},
	"matomo.cloud":           {},
	"piwik.pro":              {},
	"twitter.com":            {},
	"youtube-nocookie.com":   {},
	"static.ads-twitter.com": {},
}

// isTrackerDomain checks if a hostname (or any parent domain) is blocked.
func isTrackerDomain(host string) bool {
	host = strings.ToLower(host)
	if _, ok := trackerDomains[host]; ok {
		return true
	}
	for {
		idx := strings.IndexByte(host, '.')
		if idx < 0 {
			return false
		}
		host = host[idx+1:]
		if _, ok := trackerDomains[host]; ok {
			return true
		}
	}
}

// setupHijack installs a request interceptor that fails the configured
// resource types and, when blockTrackers is set, requests to tracker hosts.
// It returns nil when there is nothing to block; otherwise the caller must
// Stop the router when the page is closed.
func setupHijack(page *rod.Page, blockedTypes []string, blockTrackers bool) *rod.HijackRouter {
	blocked := make(map[proto.NetworkResourceType]struct{}, len(blockedTypes))
	for _, name := range blockedTypes {
		if rt, ok := configToProto[name]; ok {
			blocked[rt] = struct{}{}
		}
	}
	if len(blocked) == 0 && !blockTrackers {
		return nil
	}

	router := page.HijackRequests()
	_ = router.Add("*", "", func(ctx *rod.Hijack) {
		if _, shouldBlock := blocked[ctx.Request.Type()]; shouldBlock {
			ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		if blockTrackers {
			if u, err := url.Parse(ctx.Request.URL().String()); err == nil && isTrackerDomain(u.Hostname()) {
				ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
				return
			}
		}
		ctx.ContinueRequest(&proto.FetchContinueRequest{})
	})

	// Run blocks until Stop is called.
	go router.Run()

	return router
}
