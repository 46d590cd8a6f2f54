package pipeline

import (
	"time"

	"github.com/sells-group/company-research/internal/config"
)

// Options is the injected configuration surface of the research core.
type Options struct {
	MaxRetries     int      // attempt ceiling per missing field
	MaxURLs        int      // page fetch cap for the bulk pass
	RetryURLs      int      // page fetch cap per retry attempt
	PriorityFields []string // fields of the bulk pass, validated and retried
	EnrichFields   []string // extracted once from the bulk context, never retried
	MinLength      int

	SerpChars      int // listing text kept per engine page
	SerpFieldChars int
	SerpTotalChars int
	PageChars      int
	RetrySerpChars int
	RetryPageChars int

	LaunchTries      int
	BreakerThreshold int
	BreakerReset     time.Duration
}

// DefaultOptions mirrors the config defaults.
func DefaultOptions() Options {
	return Options{
		MaxRetries:     3,
		MaxURLs:        10,
		RetryURLs:      2,
		PriorityFields: append([]string(nil), config.DefaultPriorityFields...),
		MinLength:      5,
		SerpChars:      5000,
		SerpFieldChars: 4000,
		SerpTotalChars: 15000,
		PageChars:      25000,
		RetrySerpChars: 5000,
		RetryPageChars: 8000,
		LaunchTries:    2,
	}
}

// OptionsFromConfig copies the research settings out of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		MaxRetries:       cfg.Research.MaxRetries,
		MaxURLs:          cfg.Research.MaxURLs,
		RetryURLs:        cfg.Research.RetryURLs,
		PriorityFields:   cfg.Research.PriorityFields,
		EnrichFields:     cfg.Research.EnrichFields,
		MinLength:        cfg.Research.MinLength,
		SerpChars:        cfg.Browser.SerpChars,
		SerpFieldChars:   cfg.Research.SerpFieldChars,
		SerpTotalChars:   cfg.Research.SerpTotalChars,
		PageChars:        cfg.Research.PageChars,
		RetrySerpChars:   cfg.Research.RetrySerpChars,
		RetryPageChars:   cfg.Research.RetryPageChars,
		LaunchTries:      cfg.Browser.LaunchTries,
		BreakerThreshold: cfg.Browser.BreakerThreshold,
		BreakerReset:     cfg.Browser.BreakerReset,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxRetries <= 0 {
		o.MaxRetries = d.MaxRetries
	}
	if o.MaxURLs <= 0 {
		o.MaxURLs = d.MaxURLs
	}
	if o.RetryURLs <= 0 {
		o.RetryURLs = d.RetryURLs
	}
	if len(o.PriorityFields) == 0 {
		o.PriorityFields = d.PriorityFields
	}
	if o.MinLength <= 0 {
		o.MinLength = d.MinLength
	}
	if o.SerpChars <= 0 {
		o.SerpChars = d.SerpChars
	}
	if o.SerpFieldChars <= 0 {
		o.SerpFieldChars = d.SerpFieldChars
	}
	if o.SerpTotalChars <= 0 {
		o.SerpTotalChars = d.SerpTotalChars
	}
	if o.PageChars <= 0 {
		o.PageChars = d.PageChars
	}
	if o.RetrySerpChars <= 0 {
		o.RetrySerpChars = d.RetrySerpChars
	}
	if o.RetryPageChars <= 0 {
		o.RetryPageChars = d.RetryPageChars
	}
	if o.LaunchTries <= 0 {
		o.LaunchTries = d.LaunchTries
	}
	return o
}
