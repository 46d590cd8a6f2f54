// Package browser drives a headless Chrome session for search and page
// scraping.
package browser

import (
	"context"
	"net/url"
	"time"
)

// Backend names a search engine.
type Backend string

const (
	Google     Backend = "google"
	DuckDuckGo Backend = "ddg"
)

// Backends lists the search backends in primary order.
var Backends = []Backend{Google, DuckDuckGo}

// Other returns the alternate backend.
func (b Backend) Other() Backend {
	if b == Google {
		return DuckDuckGo
	}
	return Google
}

// SearchURL returns the results page URL for a query.
func (b Backend) SearchURL(query string) string {
	q := url.QueryEscape(query)
	if b == Google {
		return "https://www.google.com/search?q=" + q
	}
	return "https://duckduckgo.com/?q=" + q
}

// SearchPage is what one search returned.
type SearchPage struct {
	Backend Backend
	Text    string   // visible listing text
	URLs    []string // result links in page order
}

// Session is one exclusively owned automation session. Tab operations are
// strictly ordered: OpenTab makes a new tab current, CloseTab closes the
// current tab and returns to the previous one. Every call is bounded by the
// session's call timeout.
type Session interface {
	Search(ctx context.Context, backend Backend, query string) (SearchPage, error)
	ScrapeText(ctx context.Context, rawURL string) (string, error)
	ExtractLogo(ctx context.Context, domain string) (string, error)
	OpenTab(ctx context.Context) error
	CloseTab(ctx context.Context) error
	Close() error
}

// Opener acquires a new session.
type Opener func(ctx context.Context) (Session, error)

// Config configures a rod-backed session.
type Config struct {
	Headless     bool
	Bin          string
	UserAgent    string
	CallTimeout  time.Duration
	TabDelay     time.Duration // spacing between searches on the same backend
	LoadWait     time.Duration // settle time after a results page loads
	SwitchDelay  time.Duration // settle time after returning to a previous tab
	LinksPerPage int
}

func (c *Config) defaults() {
	if c.CallTimeout <= 0 {
		c.CallTimeout = 30 * time.Second
	}
	if c.LinksPerPage <= 0 {
		c.LinksPerPage = 6
	}
}
