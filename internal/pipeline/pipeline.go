// Package pipeline researches one company domain: it plans searches, fans
// them out over a browser session, collects pages, extracts fields with a
// language model, validates them and retries the gaps.
package pipeline

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/company-research/internal/browser"
	"github.com/sells-group/company-research/internal/llm"
	"github.com/sells-group/company-research/internal/model"
	"github.com/sells-group/company-research/internal/resilience"
)

var (
	// ErrSessionStart means no browser session could be acquired. It is the
	// only collaborator failure that ends a run.
	ErrSessionStart = eris.New("pipeline: browser session start failed")
	// ErrInvalidDomain is returned for input that is not a domain.
	ErrInvalidDomain = eris.New("pipeline: invalid domain")
)

// Pipeline runs research for one domain at a time. A Pipeline may be shared
// by concurrent runs; each run acquires its own session.
type Pipeline struct {
	open     browser.Opener
	gen      llm.Generator
	fields   *model.FieldRegistry
	opts     Options
	sink     EventSink
	breakers resilience.CircuitBreakerConfig
	launch   resilience.RetryConfig
}

// New creates a Pipeline.
func New(open browser.Opener, gen llm.Generator, fields *model.FieldRegistry, opts Options, sink EventSink) *Pipeline {
	opts = opts.withDefaults()
	launch := resilience.LaunchRetryConfig(opts.LaunchTries)
	launch.OnRetry = resilience.RetryLogger("browser", "launch")
	if sink == nil {
		sink = NopSink{}
	}
	return &Pipeline{
		open:     open,
		gen:      gen,
		fields:   fields,
		opts:     opts,
		sink:     sink,
		breakers: resilience.SearchBreakerConfig(opts.BreakerThreshold, opts.BreakerReset),
		launch:   launch,
	}
}

// WithLaunchRetry overrides the session acquisition policy.
func (p *Pipeline) WithLaunchRetry(cfg resilience.RetryConfig) *Pipeline {
	p.launch = cfg
	return p
}

// NormalizeDomain reduces a URL or host to a bare lowercase domain.
func NormalizeDomain(input string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" {
		return "", eris.Wrap(ErrInvalidDomain, "empty")
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil || u.Hostname() == "" {
		return "", eris.Wrapf(ErrInvalidDomain, "%q", input)
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	if !strings.Contains(host, ".") {
		return "", eris.Wrapf(ErrInvalidDomain, "%q", input)
	}
	return host, nil
}

// DisplayName title-cases the company name derived from a domain.
func DisplayName(domain string) string {
	return cases.Title(language.English).String(CompanyName(domain))
}

// Run researches domain. Collaborator failures become events and empty
// values; only session acquisition failure, an invalid domain or context
// cancellation return an error.
func (p *Pipeline) Run(ctx context.Context, input string) (*model.RunResult, error) {
	start := time.Now()
	domain, err := NormalizeDomain(input)
	if err != nil {
		return nil, err
	}
	em := newEmitter(p.sink, domain)
	em.emit(model.Event{Kind: model.EventRunStarted, Count: len(p.opts.PriorityFields)})

	launch := p.launch
	if launch.ShouldRetry == nil {
		launch.ShouldRetry = func(error) bool { return ctx.Err() == nil }
	}
	session, err := resilience.DoVal(ctx, launch, func(ctx context.Context) (browser.Session, error) {
		return p.open(ctx)
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, eris.Wrapf(ErrSessionStart, "%s: %v", domain, err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			em.emit(model.Event{Kind: model.EventCloseFailed, Message: "session", Err: errString(cerr)})
			return
		}
		em.emit(model.Event{Kind: model.EventSessionClosed})
	}()

	r := p.newRun(session, domain)
	result := r.execute(ctx)
	result.DurationMs = time.Since(start).Milliseconds()

	em.emit(model.Event{Kind: model.EventRunFinished, Count: countResolved(result.Outcomes), Message: sufficiency(result.Sufficient)})
	if err := ctx.Err(); err != nil {
		return result, eris.Wrap(err, "pipeline: run cancelled")
	}
	return result, nil
}

func sufficiency(ok bool) string {
	if ok {
		return "sufficient"
	}
	return "insufficient"
}

func countResolved(outcomes []model.FieldOutcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Status != model.FieldExhausted {
			n++
		}
	}
	return n
}

// run holds the components wired to one session.
type run struct {
	domain    string
	opts      Options
	fields    *model.FieldRegistry
	em        emitter
	session   browser.Session
	planner   *Planner
	fanout    *Fanout
	collector *Collector
	extractor *Extractor
	validator *Validator
	retry     *RetryCoordinator
	assembler *Assembler
}

func (p *Pipeline) newRun(session browser.Session, domain string) *run {
	fanout := NewFanout(session, resilience.NewBreakers(p.breakers), p.sink, domain, p.opts.SerpChars)
	r := &run{
		domain:    domain,
		opts:      p.opts,
		fields:    p.fields,
		em:        newEmitter(p.sink, domain),
		session:   session,
		planner:   NewPlanner(p.fields, domain),
		fanout:    fanout,
		collector: NewCollector(session, p.sink, domain),
		extractor: NewExtractor(p.gen, p.fields, p.sink, domain, p.opts),
		validator: NewValidator(p.fields, p.opts.MinLength),
		assembler: NewAssembler(p.fields),
	}
	r.retry = &RetryCoordinator{
		planner:   r.planner,
		searcher:  fanout.s,
		collector: r.collector,
		extractor: r.extractor,
		validator: r.validator,
		em:        r.em,
		opts:      p.opts,
	}
	return r
}

func (r *run) execute(ctx context.Context) *model.RunResult {
	priority := r.canonical(r.opts.PriorityFields)

	queries := make(map[string]QuerySet, len(priority))
	for _, f := range priority {
		queries[f] = r.planner.Initial(f)
	}
	r.em.emit(model.Event{Kind: model.EventQueriesPlanned, Count: len(queries)})

	found := r.fanout.Search(ctx, priority, queries)
	pages := r.collector.Fetch(ctx, found.URLs, r.opts.MaxURLs)

	state := NewExtractionState()
	bulk := r.extractor.Bulk(ctx, priority, found.Listings, pages)
	for _, f := range priority {
		state.Attempted(f, bulk[f])
		if r.validator.IsSufficient(f, bulk[f]) {
			state.Sufficient(f)
		}
	}

	missing := r.validator.ClassifyMissing(priority, state.Values())
	for _, f := range missing {
		r.em.emit(model.Event{Kind: model.EventFieldMissing, Field: f, Message: r.fields.Tier(f).String()})
	}
	r.retry.Resolve(ctx, state, missing)

	if enrich := r.enrichFields(priority); len(enrich) > 0 && ctx.Err() == nil {
		for f, v := range r.extractor.Enrich(ctx, enrich, found.Listings, pages) {
			state.Fill(f, v)
		}
	}

	profile := model.NewCompanyProfile(DisplayName(r.domain), r.domain)
	r.assembler.Assemble(profile, state.Values())
	profile.LogoURL = r.logo(ctx)
	profile.Graph = DeriveGraph(profile)

	outcomes := r.outcomes(priority, state)
	exhausted := make([]string, 0)
	for _, o := range outcomes {
		if o.Status == model.FieldExhausted {
			exhausted = append(exhausted, o.Field)
		}
	}
	return &model.RunResult{
		Profile:    profile,
		Outcomes:   outcomes,
		Sufficient: !r.validator.CriticalMissing(exhausted),
	}
}

// canonical resolves names through the alias table and drops duplicates.
func (r *run) canonical(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		id, ok := r.fields.Canonical(n)
		if !ok {
			id = n
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func (r *run) enrichFields(priority []string) []string {
	skip := make(map[string]bool, len(priority))
	for _, f := range priority {
		skip[f] = true
	}
	var out []string
	for _, f := range r.canonical(r.opts.EnrichFields) {
		if !skip[f] {
			out = append(out, f)
		}
	}
	return out
}

func (r *run) logo(ctx context.Context) string {
	logo, err := r.session.ExtractLogo(ctx, r.domain)
	if err == nil && strings.TrimSpace(logo) != "" {
		return strings.TrimSpace(logo)
	}
	fallback := browser.FallbackLogoURL(r.domain)
	r.em.emit(model.Event{Kind: model.EventLogoFallback, URL: fallback, Err: errString(err)})
	return fallback
}

func (r *run) outcomes(priority []string, state *ExtractionState) []model.FieldOutcome {
	out := make([]model.FieldOutcome, 0, len(priority))
	for _, f := range priority {
		o := model.FieldOutcome{
			Field:    f,
			Tier:     r.fields.Tier(f).String(),
			Attempts: state.Attempts(f),
		}
		switch state.State(f) {
		case StateSufficient:
			o.Status = model.FieldResolved
		case StateResolved:
			o.Status = model.FieldRetriedResolved
		default:
			o.Status = model.FieldExhausted
		}
		if o.Status != model.FieldExhausted {
			o.Preview = preview(state.Value(f))
		}
		r.em.emit(model.Event{Kind: model.EventFieldStatus, Field: f, Attempt: o.Attempts, Message: string(o.Status)})
		out = append(out, o)
	}
	return out
}
