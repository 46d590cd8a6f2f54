package browser

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/company-research/internal/resilience"
)

// RodSession is a Session backed by one local headless Chrome. It is owned
// by a single run; the mutex only guards against accidental sharing.
type RodSession struct {
	cfg      Config
	lnch     *launcher.Launcher
	browser  *rod.Browser
	text     *TextExtractor
	limiters map[Backend]*rate.Limiter

	mu   sync.Mutex
	tabs []*rod.Page // tabs[len-1] is current
}

// Launch starts Chrome and opens the first tab.
func Launch(ctx context.Context, cfg Config) (*RodSession, error) {
	cfg.defaults()

	l := launcher.New().
		Headless(cfg.Headless).
		Set("disable-blink-features", "AutomationControlled")
	if cfg.Bin != "" {
		l = l.Bin(cfg.Bin)
	}
	u, err := l.Context(ctx).Launch()
	if err != nil {
		return nil, eris.Wrap(err, "browser: launch chrome")
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Cleanup()
		return nil, eris.Wrap(resilience.NewTransientError(err, 0), "browser: connect")
	}

	s := &RodSession{
		cfg:      cfg,
		lnch:     l,
		browser:  b,
		text:     NewTextExtractor(),
		limiters: make(map[Backend]*rate.Limiter, len(Backends)),
	}
	for _, be := range Backends {
		s.limiters[be] = newPacer(cfg.TabDelay)
	}
	if err := s.OpenTab(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	zap.L().Debug("browser: session started", zap.Bool("headless", cfg.Headless))
	return s, nil
}

// NewOpener returns an Opener that launches a fresh RodSession per call.
func NewOpener(cfg Config) Opener {
	return func(ctx context.Context) (Session, error) {
		return Launch(ctx, cfg)
	}
}

func newPacer(every time.Duration) *rate.Limiter {
	if every <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(every), 1)
}

func (s *RodSession) newPage() (*rod.Page, error) {
	page, err := stealth.Page(s.browser)
	if err != nil {
		return nil, eris.Wrap(err, "browser: new page")
	}
	if s.cfg.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: s.cfg.UserAgent}); err != nil {
			_ = page.Close()
			return nil, eris.Wrap(err, "browser: set user agent")
		}
	}
	return page, nil
}

func (s *RodSession) current() (*rod.Page, error) {
	if len(s.tabs) == 0 {
		return nil, eris.New("browser: no open tab")
	}
	return s.tabs[len(s.tabs)-1], nil
}

// OpenTab opens a new tab and makes it current.
func (s *RodSession) OpenTab(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	page, err := s.newPage()
	if err != nil {
		return err
	}
	s.tabs = append(s.tabs, page)
	return nil
}

// CloseTab closes the current tab and switches back to the previous one.
// The first tab is never closed.
func (s *RodSession) CloseTab(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.tabs) <= 1 {
		return eris.New("browser: cannot close last tab")
	}
	page := s.tabs[len(s.tabs)-1]
	s.tabs = s.tabs[:len(s.tabs)-1]
	if err := page.Close(); err != nil {
		return eris.Wrap(err, "browser: close tab")
	}
	prev := s.tabs[len(s.tabs)-1]
	if _, err := prev.Activate(); err != nil {
		return eris.Wrap(err, "browser: switch tab")
	}
	return sleep(ctx, s.cfg.SwitchDelay)
}

// Search runs a query on the current tab and reads the listing.
func (s *RodSession) Search(ctx context.Context, backend Backend, query string) (SearchPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := SearchPage{Backend: backend}
	page, err := s.current()
	if err != nil {
		return out, err
	}
	if err := s.limiters[backend].Wait(ctx); err != nil {
		return out, eris.Wrap(err, "browser: pace search")
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
	defer cancel()
	p := page.Context(ctx)

	if err := p.Navigate(backend.SearchURL(query)); err != nil {
		return out, eris.Wrapf(err, "browser: %s navigate", backend)
	}
	if err := p.WaitLoad(); err != nil {
		return out, eris.Wrapf(err, "browser: %s load", backend)
	}
	if err := sleep(ctx, s.cfg.LoadWait); err != nil {
		return out, eris.Wrapf(err, "browser: %s settle", backend)
	}

	body, err := p.Element("body")
	if err != nil {
		return out, eris.Wrapf(err, "browser: %s body", backend)
	}
	out.Text, err = body.Text()
	if err != nil {
		return out, eris.Wrapf(err, "browser: %s text", backend)
	}

	var hrefs []string
	if els, err := p.Elements(resultSelectors[backend]); err == nil {
		for _, el := range els {
			href, err := el.Property("href")
			if err != nil {
				continue
			}
			hrefs = append(hrefs, href.Str())
		}
	}
	out.URLs = FilterResultLinks(backend, hrefs, s.cfg.LinksPerPage)
	if len(out.URLs) == 0 {
		out.URLs = LinksFromText(backend, out.Text, s.cfg.LinksPerPage)
	}
	return out, nil
}

// ScrapeText loads a page in a throwaway tab and returns its main text.
func (s *RodSession) ScrapeText(ctx context.Context, rawURL string) (string, error) {
	html, err := s.withPage(ctx, rawURL, func(p *rod.Page) (string, error) {
		res, err := p.Eval(`() => document.documentElement.outerHTML`)
		if err != nil {
			return "", err
		}
		return res.Value.Str(), nil
	})
	if err != nil {
		return "", err
	}
	return s.text.PageText(html, rawURL)
}

// ExtractLogo finds a logo image URL on the company homepage.
func (s *RodSession) ExtractLogo(ctx context.Context, domain string) (string, error) {
	logo, err := s.withPage(ctx, "https://"+domain, func(p *rod.Page) (string, error) {
		res, err := p.Eval(logoScript)
		if err != nil {
			return "", err
		}
		return res.Value.Str(), nil
	})
	if err != nil {
		return "", err
	}
	logo = strings.TrimSpace(logo)
	if logo == "" {
		return "", eris.Errorf("browser: no logo on %s", domain)
	}
	return logo, nil
}

func (s *RodSession) withPage(ctx context.Context, rawURL string, fn func(*rod.Page) (string, error)) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
	defer cancel()

	page, err := s.newPage()
	if err != nil {
		return "", err
	}
	defer page.Close() //nolint:errcheck

	p := page.Context(ctx)
	if err := p.Navigate(rawURL); err != nil {
		return "", eris.Wrapf(err, "browser: navigate %s", rawURL)
	}
	if err := p.WaitLoad(); err != nil {
		return "", eris.Wrapf(err, "browser: load %s", rawURL)
	}
	out, err := fn(p)
	if err != nil {
		return "", eris.Wrapf(err, "browser: read %s", rawURL)
	}
	return out, nil
}

// Close closes every tab and shuts Chrome down.
func (s *RodSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for i := len(s.tabs) - 1; i >= 0; i-- {
		if err := s.tabs[i].Close(); err != nil && firstErr == nil {
			firstErr = eris.Wrap(err, "browser: close tab")
		}
	}
	s.tabs = nil
	if s.browser != nil {
		if err := s.browser.Close(); err != nil && firstErr == nil {
			firstErr = eris.Wrap(err, "browser: close")
		}
	}
	if s.lnch != nil {
		s.lnch.Cleanup()
	}
	return firstErr
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

var _ Session = (*RodSession)(nil)
