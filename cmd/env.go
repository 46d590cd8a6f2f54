package main

import (
	"context"
	"net/http"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/company-research/internal/browser"
	"github.com/sells-group/company-research/internal/config"
	"github.com/sells-group/company-research/internal/llm"
	"github.com/sells-group/company-research/internal/model"
	"github.com/sells-group/company-research/internal/pipeline"
	"github.com/sells-group/company-research/internal/registry"
	"github.com/sells-group/company-research/internal/report"
	"github.com/sells-group/company-research/internal/store"
	anthropicpkg "github.com/sells-group/company-research/pkg/anthropic"
)

// researchEnv holds the store, collaborators and options needed by the
// run/batch/serve commands.
type researchEnv struct {
	Store   store.Store
	Open    browser.Opener
	Gen     llm.Generator
	Fields  *model.FieldRegistry
	Opts    pipeline.Options
	Reports *report.Writer
	Sink    pipeline.EventSink
}

// Close releases resources held by the environment.
func (e *researchEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initStore opens and migrates the configured run store.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// initEnv validates config for mode and builds the environment. Callers
// should defer env.Close().
func initEnv(ctx context.Context, mode string) (*researchEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	fields, err := registry.Load(cfg.Research.RegistryFile)
	if err != nil {
		return nil, eris.Wrap(err, "load field registry")
	}

	gen, err := newGenerator(cfg.LLM)
	if err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	zap.L().Info("research environment ready",
		zap.String("llm", cfg.LLM.Provider),
		zap.String("model", cfg.LLM.Model),
		zap.String("store", cfg.Store.Driver),
		zap.Int("fields", len(fields.Fields)),
	)

	return &researchEnv{
		Store:   st,
		Open:    browser.NewOpener(browserConfig(cfg.Browser)),
		Gen:     gen,
		Fields:  fields,
		Opts:    pipeline.OptionsFromConfig(cfg),
		Reports: report.NewWriter(cfg.Report),
		Sink:    pipeline.NewZapSink(nil),
	}, nil
}

// newGenerator selects the generation provider.
func newGenerator(c config.LLMConfig) (llm.Generator, error) {
	opts := []llm.Option{llm.WithTimeout(c.Timeout), llm.WithTokenCounter(llm.NewTokenCounter())}
	switch c.Provider {
	case "", "anthropic":
		client := anthropicpkg.NewClient(c.Anthropic.Key)
		return llm.NewAnthropic(client, c.Model, c.MaxTokens, opts...), nil
	case "openai":
		return llm.NewOpenAI(c.OpenAI.Key, c.OpenAI.BaseURL, c.Model, c.MaxTokens, opts...), nil
	case "ollama":
		gen, err := llm.NewOllama(c.Ollama.Host, c.Model, c.Ollama.NumCtxMin, http.DefaultClient, opts...)
		if err != nil {
			return nil, eris.Wrap(err, "init ollama")
		}
		return gen, nil
	default:
		return nil, eris.Errorf("unsupported llm provider: %s", c.Provider)
	}
}

func browserConfig(c config.BrowserConfig) browser.Config {
	return browser.Config{
		Headless:     c.Headless,
		Bin:          c.Bin,
		UserAgent:    c.UserAgent,
		CallTimeout:  c.CallTimeout,
		TabDelay:     c.TabDelay,
		LoadWait:     c.LoadWait,
		SwitchDelay:  c.SwitchDelay,
		LinksPerPage: c.LinksPerPage,
	}
}

// createRun normalizes input and records a queued run.
func (e *researchEnv) createRun(ctx context.Context, input string) (*model.Run, error) {
	domain, err := pipeline.NormalizeDomain(input)
	if err != nil {
		return nil, err
	}
	run, err := e.Store.CreateRun(ctx, domain)
	if err != nil {
		return nil, eris.Wrap(err, "create run")
	}
	return run, nil
}

// execute researches a queued run and records its result and events. The
// result is always persisted, also when the run fails or is cancelled.
func (e *researchEnv) execute(ctx context.Context, run *model.Run) (*model.RunResult, error) {
	log := zap.L().With(zap.String("run_id", run.ID), zap.String("domain", run.Domain))

	if err := e.Store.UpdateRunStatus(ctx, run.ID, model.RunStatusRunning); err != nil {
		return nil, eris.Wrap(err, "mark run running")
	}
	run.Status = model.RunStatusRunning

	events := store.NewEventLog(e.Store, run.ID)
	p := pipeline.New(e.Open, e.Gen, e.Fields, e.Opts, pipeline.MultiSink{e.Sink, events})

	result, runErr := p.Run(ctx, run.Domain)
	if result == nil {
		result = &model.RunResult{}
	}
	if runErr != nil {
		result.Error = runErr.Error()
	}

	pctx := context.WithoutCancel(ctx)
	if err := events.Flush(pctx); err != nil {
		log.Warn("run events not stored", zap.Error(err))
	}
	if err := e.Store.UpdateRunResult(pctx, run.ID, result); err != nil {
		return result, eris.Wrap(err, "store run result")
	}

	run.Result = result
	if runErr != nil {
		run.Status = model.RunStatusFailed
		return result, runErr
	}
	run.Status = model.RunStatusComplete
	log.Info("research complete",
		zap.Bool("sufficient", result.Sufficient),
		zap.Int64("duration_ms", result.DurationMs),
	)
	return result, nil
}

// research creates and executes a run for input.
func (e *researchEnv) research(ctx context.Context, input string) (*model.Run, error) {
	run, err := e.createRun(ctx, input)
	if err != nil {
		return nil, err
	}
	_, err = e.execute(ctx, run)
	return run, err
}
