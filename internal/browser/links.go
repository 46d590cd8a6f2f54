package browser

import (
	"net/url"
	"strings"

	"mvdan.cc/xurls/v2"
)

// Result link selectors per backend.
var resultSelectors = map[Backend]string{
	Google:     "div.g a",
	DuckDuckGo: "a[data-testid='result-title-a']",
}

// FilterResultLinks keeps absolute http(s) links, drops the engine's own
// links, removes duplicates and caps the result at limit.
func FilterResultLinks(backend Backend, hrefs []string, limit int) []string {
	seen := make(map[string]bool, len(hrefs))
	out := make([]string, 0, limit)
	for _, h := range hrefs {
		if len(out) >= limit {
			break
		}
		h = strings.TrimSpace(h)
		if !strings.HasPrefix(h, "http://") && !strings.HasPrefix(h, "https://") {
			continue
		}
		if isEngineLink(backend, h) || seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
	}
	return out
}

func isEngineLink(backend Backend, h string) bool {
	u, err := url.Parse(h)
	if err != nil {
		return true
	}
	host := strings.ToLower(u.Hostname())
	switch backend {
	case Google:
		return strings.Contains(host, "google.")
	case DuckDuckGo:
		return strings.HasSuffix(host, "duckduckgo.com")
	}
	return false
}

// LinksFromText finds result links in rendered page text when the result
// selectors match nothing, e.g. after an engine layout change.
func LinksFromText(backend Backend, text string, limit int) []string {
	return FilterResultLinks(backend, xurls.Strict().FindAllString(text, -1), limit)
}

// Host returns the lowercased host of rawURL, or "" when it does not parse.
func Host(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
