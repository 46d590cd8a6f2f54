package pipeline

import (
	"context"
	"strings"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/company-research/internal/browser"
	"github.com/sells-group/company-research/internal/llm"
	"github.com/sells-group/company-research/internal/model"
	"github.com/sells-group/company-research/internal/registry"
)

// --- Generator Mock ---

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) GenerateStructured(ctx context.Context, req llm.Request) (map[string]any, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
}

func (m *mockGenerator) GenerateText(ctx context.Context, req llm.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func purpose(p string) any {
	return mock.MatchedBy(func(r llm.Request) bool { return r.Purpose == p })
}

// --- Scripted Session ---

type searchCall struct {
	Backend browser.Backend
	Query   string
}

// fakeSession answers searches from a script keyed by backend and query and
// records every call.
type fakeSession struct {
	mu sync.Mutex

	results   map[string]browser.SearchPage
	searchErr map[browser.Backend]error
	pages     map[string]string
	pageErr   map[string]error
	logo      string
	logoErr   error
	closeErr  error

	searches   []searchCall
	scrapes    []string
	tabs       int
	maxTabs    int
	openedTabs int
	closedTabs int
	closed     bool
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		results:   make(map[string]browser.SearchPage),
		searchErr: make(map[browser.Backend]error),
		pages:     make(map[string]string),
		pageErr:   make(map[string]error),
		tabs:      1,
		maxTabs:   1,
	}
}

func key(b browser.Backend, q string) string { return string(b) + "|" + q }

func (f *fakeSession) onSearch(b browser.Backend, q, text string, urls ...string) {
	f.results[key(b, q)] = browser.SearchPage{Backend: b, Text: text, URLs: urls}
}

func (f *fakeSession) Search(_ context.Context, b browser.Backend, q string) (browser.SearchPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches = append(f.searches, searchCall{Backend: b, Query: q})
	if err := f.searchErr[b]; err != nil {
		return browser.SearchPage{Backend: b}, err
	}
	if page, ok := f.results[key(b, q)]; ok {
		return page, nil
	}
	return browser.SearchPage{Backend: b}, nil
}

func (f *fakeSession) ScrapeText(_ context.Context, u string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scrapes = append(f.scrapes, u)
	if err := f.pageErr[u]; err != nil {
		return "", err
	}
	return f.pages[u], nil
}

func (f *fakeSession) ExtractLogo(_ context.Context, _ string) (string, error) {
	return f.logo, f.logoErr
}

func (f *fakeSession) OpenTab(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tabs++
	f.openedTabs++
	if f.tabs > f.maxTabs {
		f.maxTabs = f.tabs
	}
	return nil
}

func (f *fakeSession) CloseTab(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tabs--
	f.closedTabs++
	return nil
}

func (f *fakeSession) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return f.closeErr
}

func (f *fakeSession) searched(q string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.searches {
		if c.Query == q {
			return true
		}
	}
	return false
}

func (f *fakeSession) scrapeCount(u string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.scrapes {
		if s == u {
			n++
		}
	}
	return n
}

func opener(s browser.Session) browser.Opener {
	return func(context.Context) (browser.Session, error) { return s, nil }
}

func testFields() *model.FieldRegistry { return registry.Default() }

func testOptions(fields ...string) Options {
	o := DefaultOptions()
	if len(fields) > 0 {
		o.PriorityFields = fields
	}
	return o
}

var longDescription = strings.Repeat("Acme builds developer tooling for enterprise teams. ", 4)
