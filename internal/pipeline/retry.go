package pipeline

import (
	"context"

	"github.com/sells-group/company-research/internal/browser"
	"github.com/sells-group/company-research/internal/model"
)

// RetryCoordinator retries insufficient fields one at a time with
// escalating queries until each resolves or the attempt ceiling is hit.
type RetryCoordinator struct {
	planner   *Planner
	searcher  *searcher
	collector *Collector
	extractor *Extractor
	validator *Validator
	em        emitter
	opts      Options
}

// Resolve works through missing, which must already be in retry order.
func (r *RetryCoordinator) Resolve(ctx context.Context, state *ExtractionState, missing []string) {
	for _, field := range missing {
		if ctx.Err() != nil {
			return
		}
		r.resolveField(ctx, state, field)
	}
}

func (r *RetryCoordinator) resolveField(ctx context.Context, state *ExtractionState, field string) {
	for {
		if ctx.Err() != nil {
			return
		}
		if state.Attempts(field) >= r.opts.MaxRetries {
			state.Exhaust(field)
			r.em.emit(model.Event{Kind: model.EventFieldExhausted, Field: field, Attempt: state.Attempts(field)})
			return
		}
		attempt := state.StartAttempt(field)
		if attempt == 0 {
			return
		}

		qs := r.planner.Retry(field, attempt)
		r.em.emit(model.Event{
			Kind:    model.EventRetryAttempt,
			Field:   field,
			Attempt: attempt,
			Message: qs.For(primaryFor(attempt)),
		})

		val := r.attempt(ctx, field, qs, attempt)
		if r.validator.IsSufficient(field, val) {
			state.Resolve(field, val)
			r.em.emit(model.Event{Kind: model.EventFieldResolved, Field: field, Attempt: attempt, Message: preview(val)})
			return
		}
	}
}

// primaryFor picks Google on odd attempts and DuckDuckGo on even ones.
func primaryFor(attempt int) browser.Backend {
	if attempt%2 == 1 {
		return browser.Google
	}
	return browser.DuckDuckGo
}

// attempt runs one scoped search, scrape and extraction. The secondary
// backend is only tried, in its own tab, when the primary finds no URLs.
func (r *RetryCoordinator) attempt(ctx context.Context, field string, qs QuerySet, attempt int) model.Value {
	primary := primaryFor(attempt)
	listing, urls := r.searcher.search(ctx, field, primary, qs.For(primary), attempt)

	if len(urls) == 0 {
		secondary := primary.Other()
		if err := r.searcher.session.OpenTab(ctx); err != nil {
			r.em.emit(model.Event{Kind: model.EventSearchFailed, Field: field, Backend: string(secondary), Attempt: attempt, Message: "open tab", Err: errString(err)})
		} else {
			more, moreURLs := r.searcher.search(ctx, field, secondary, qs.For(secondary), attempt)
			listing += more
			urls = moreURLs
			if err := r.searcher.session.CloseTab(context.WithoutCancel(ctx)); err != nil {
				r.em.emit(model.Event{Kind: model.EventCloseFailed, Field: field, Message: "close tab", Err: errString(err)})
			}
		}
	}

	pages := r.collector.Top(ctx, urls, r.opts.RetryURLs)
	if listing == "" && pages == "" {
		spec := r.extractor.fields.Lookup(field)
		if spec == nil {
			return model.Scalar("")
		}
		return model.Empty(spec.Shape)
	}
	return r.extractor.Field(ctx, field, listing, pages)
}
