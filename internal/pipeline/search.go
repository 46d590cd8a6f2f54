package pipeline

import (
	"context"
	"errors"
	"strings"

	"github.com/sells-group/company-research/internal/browser"
	"github.com/sells-group/company-research/internal/model"
	"github.com/sells-group/company-research/internal/resilience"
)

// searcher runs single searches through a per-backend circuit breaker and
// formats the listing text.
type searcher struct {
	session   browser.Session
	breakers  *resilience.Breakers
	em        emitter
	serpChars int
}

// search returns the formatted listing and result URLs. Failures are
// emitted and yield empty results.
func (s *searcher) search(ctx context.Context, field string, backend browser.Backend, query string, attempt int) (string, []string) {
	if strings.TrimSpace(query) == "" {
		return "", nil
	}
	page, err := resilience.ExecuteVal(ctx, s.breakers.Get(string(backend)), func(ctx context.Context) (browser.SearchPage, error) {
		return s.session.Search(ctx, backend, query)
	})
	if err != nil {
		kind := model.EventSearchFailed
		if errors.Is(err, resilience.ErrCircuitOpen) {
			kind = model.EventBackendSkipped
		}
		s.em.emit(model.Event{
			Kind:    kind,
			Field:   field,
			Backend: string(backend),
			Attempt: attempt,
			Message: query,
			Err:     errString(err),
		})
		return "", nil
	}

	s.em.emit(model.Event{
		Kind:    model.EventSearchDone,
		Field:   field,
		Backend: string(backend),
		Attempt: attempt,
		Count:   len(page.URLs),
		Message: query,
	})
	return listingBlock(backend, page.Text, s.serpChars), page.URLs
}

func listingBlock(backend browser.Backend, text string, limit int) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	return "\n\n--- " + strings.ToUpper(string(backend)) + " RESULTS ---\n" + truncate(text, limit)
}

// truncate keeps at most n bytes of s without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }

// FanoutResult is the outcome of the initial search pass.
type FanoutResult struct {
	Fields   []string          // searched fields, in request order
	Listings map[string]string // field -> accumulated listing text
	URLs     []string          // deduplicated across all fields, discovery order
	Owner    map[string]string // url -> first field that found it
}

// Fanout issues the initial searches for a batch of fields on one session.
type Fanout struct {
	s *searcher
}

// NewFanout returns a fanout over session.
func NewFanout(session browser.Session, breakers *resilience.Breakers, sink EventSink, domain string, serpChars int) *Fanout {
	return &Fanout{s: &searcher{
		session:   session,
		breakers:  breakers,
		em:        newEmitter(sink, domain),
		serpChars: serpChars,
	}}
}

// Search runs both backends for every field. Even-indexed fields start with
// Google, odd-indexed with DuckDuckGo. Each search after the first gets its
// own tab; the extra tabs are closed before returning. A failed search only
// loses its own results.
func (f *Fanout) Search(ctx context.Context, fields []string, queries map[string]QuerySet) FanoutResult {
	res := FanoutResult{
		Fields:   fields,
		Listings: make(map[string]string, len(fields)),
		Owner:    make(map[string]string),
	}

	opened := 0
	first := true
	for i, field := range fields {
		qs := queries[field]
		primary := browser.Google
		if i%2 == 1 {
			primary = browser.DuckDuckGo
		}
		for _, backend := range []browser.Backend{primary, primary.Other()} {
			query := qs.For(backend)
			if strings.TrimSpace(query) == "" {
				continue
			}
			if ctx.Err() != nil {
				f.closeTabs(ctx, opened)
				return res
			}
			if !first {
				if err := f.s.session.OpenTab(ctx); err != nil {
					f.s.em.emit(model.Event{Kind: model.EventSearchFailed, Field: field, Backend: string(backend), Message: "open tab", Err: errString(err)})
				} else {
					opened++
				}
			}
			first = false

			text, urls := f.s.search(ctx, field, backend, query, 0)
			res.Listings[field] += text
			for _, u := range urls {
				if _, seen := res.Owner[u]; seen {
					continue
				}
				res.Owner[u] = field
				res.URLs = append(res.URLs, u)
			}
		}
	}

	f.closeTabs(ctx, opened)
	return res
}

func (f *Fanout) closeTabs(ctx context.Context, n int) {
	for ; n > 0; n-- {
		if err := f.s.session.CloseTab(context.WithoutCancel(ctx)); err != nil {
			f.s.em.emit(model.Event{Kind: model.EventCloseFailed, Message: "close tab", Err: errString(err)})
			return
		}
	}
}
