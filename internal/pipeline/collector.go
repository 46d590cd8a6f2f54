package pipeline

import (
	"context"
	"strings"

	"github.com/sells-group/company-research/internal/browser"
	"github.com/sells-group/company-research/internal/model"
)

// skipHosts are platforms whose pages carry little extractable company data.
var skipHosts = []string{
	"facebook.com",
	"twitter.com",
	"x.com",
	"instagram.com",
	"youtube.com",
	"tiktok.com",
}

// Denied reports whether rawURL belongs to a skipped platform.
func Denied(rawURL string) bool {
	host := browser.Host(rawURL)
	if host == "" {
		return true
	}
	for _, d := range skipHosts {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// Collector fetches page text through a run-scoped cache. It is owned by a
// single run and is not safe for concurrent use.
type Collector struct {
	session browser.Session
	em      emitter
	cache   map[string]string
	fetches int
}

// NewCollector returns a collector with an empty cache.
func NewCollector(session browser.Session, sink EventSink, domain string) *Collector {
	return &Collector{
		session: session,
		em:      newEmitter(sink, domain),
		cache:   make(map[string]string),
	}
}

// Fetch returns the combined text of up to maxCount newly fetched pages.
// Cached pages are included without a fetch and do not count toward
// maxCount. At most 2*maxCount candidates are examined.
func (c *Collector) Fetch(ctx context.Context, urls []string, maxCount int) string {
	if maxCount <= 0 {
		return ""
	}
	candidates := urls
	if len(candidates) > 2*maxCount {
		candidates = candidates[:2*maxCount]
	}

	var b strings.Builder
	fetched := 0
	for _, u := range candidates {
		if fetched >= maxCount || ctx.Err() != nil {
			break
		}
		header, text, fresh, ok := c.page(ctx, u)
		if !ok {
			continue
		}
		if fresh {
			fetched++
		}
		b.WriteString(header + text)
	}
	return b.String()
}

// Top returns the combined text of the first n allowed URLs. Cached and
// freshly fetched pages both count toward n, as do failed fetches.
func (c *Collector) Top(ctx context.Context, urls []string, n int) string {
	var b strings.Builder
	taken := 0
	for _, u := range urls {
		if taken >= n || ctx.Err() != nil {
			break
		}
		if _, hit := c.cache[u]; !hit && Denied(u) {
			c.em.emit(model.Event{Kind: model.EventPageSkipped, URL: u, Message: "denylisted host"})
			continue
		}
		taken++
		if header, text, _, ok := c.page(ctx, u); ok {
			b.WriteString(header + text)
		}
	}
	return b.String()
}

// page returns the framed text of u from the cache or a fresh scrape. fresh
// is true when the text was scraped by this call.
func (c *Collector) page(ctx context.Context, u string) (header, text string, fresh, ok bool) {
	if text, hit := c.cache[u]; hit {
		c.em.emit(model.Event{Kind: model.EventPageCached, URL: u})
		return "\n\n--- CACHED: " + u + " ---\n", text, false, true
	}
	if Denied(u) {
		c.em.emit(model.Event{Kind: model.EventPageSkipped, URL: u, Message: "denylisted host"})
		return "", "", false, false
	}

	c.fetches++
	text, err := c.session.ScrapeText(ctx, u)
	if err != nil {
		c.em.emit(model.Event{Kind: model.EventPageFailed, URL: u, Err: errString(err)})
		return "", "", false, false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		c.em.emit(model.Event{Kind: model.EventPageFailed, URL: u, Message: "empty page"})
		return "", "", false, false
	}
	c.cache[u] = text
	c.em.emit(model.Event{Kind: model.EventPageFetched, URL: u, Count: len(text)})
	return "\n\n--- SOURCE: " + u + " ---\n", text, true, true
}

// cachedText returns the cached text of a URL.
func (c *Collector) cachedText(u string) (string, bool) {
	text, ok := c.cache[u]
	return text, ok
}

// fetchCount returns how many scrape calls were made.
func (c *Collector) fetchCount() int { return c.fetches }
