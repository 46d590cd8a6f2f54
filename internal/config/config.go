package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator"
	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Research ResearchConfig `yaml:"research" mapstructure:"research"`
	Browser  BrowserConfig  `yaml:"browser" mapstructure:"browser"`
	LLM      LLMConfig      `yaml:"llm" mapstructure:"llm"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Report   ReportConfig   `yaml:"report" mapstructure:"report"`
	Batch    BatchConfig    `yaml:"batch" mapstructure:"batch"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// ResearchConfig configures the extraction and retry loop.
type ResearchConfig struct {
	MaxRetries     int      `yaml:"max_retries" mapstructure:"max_retries" validate:"min=1,max=10"`
	MaxURLs        int      `yaml:"max_urls" mapstructure:"max_urls" validate:"min=1,max=50"`
	RetryURLs      int      `yaml:"retry_urls" mapstructure:"retry_urls" validate:"min=1,max=10"`
	PriorityFields []string `yaml:"priority_fields" mapstructure:"priority_fields" validate:"min=1"`
	EnrichFields   []string `yaml:"enrich_fields" mapstructure:"enrich_fields"`
	RegistryFile   string   `yaml:"registry_file" mapstructure:"registry_file"`
	MinLength      int      `yaml:"min_length" mapstructure:"min_length" validate:"min=1"`
	SerpFieldChars int      `yaml:"serp_field_chars" mapstructure:"serp_field_chars" validate:"min=1"`
	SerpTotalChars int      `yaml:"serp_total_chars" mapstructure:"serp_total_chars" validate:"min=1"`
	PageChars      int      `yaml:"page_chars" mapstructure:"page_chars" validate:"min=1"`
	RetrySerpChars int      `yaml:"retry_serp_chars" mapstructure:"retry_serp_chars" validate:"min=1"`
	RetryPageChars int      `yaml:"retry_page_chars" mapstructure:"retry_page_chars" validate:"min=1"`
}

// BrowserConfig configures the headless browser session.
type BrowserConfig struct {
	Headless     bool          `yaml:"headless" mapstructure:"headless"`
	Bin          string        `yaml:"bin" mapstructure:"bin"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	CallTimeout  time.Duration `yaml:"call_timeout" mapstructure:"call_timeout" validate:"min=1"`
	TabDelay     time.Duration `yaml:"tab_delay" mapstructure:"tab_delay"`
	LoadWait     time.Duration `yaml:"load_wait" mapstructure:"load_wait"`
	SwitchDelay  time.Duration `yaml:"switch_delay" mapstructure:"switch_delay"`
	LinksPerPage int           `yaml:"links_per_page" mapstructure:"links_per_page" validate:"min=1"`
	SerpChars    int           `yaml:"serp_chars" mapstructure:"serp_chars" validate:"min=1"`
	LaunchTries  int           `yaml:"launch_tries" mapstructure:"launch_tries" validate:"min=1"`

	BreakerThreshold int           `yaml:"breaker_threshold" mapstructure:"breaker_threshold"`
	BreakerReset     time.Duration `yaml:"breaker_reset" mapstructure:"breaker_reset"`
}

// LLMConfig selects and configures the generation provider.
type LLMConfig struct {
	Provider  string          `yaml:"provider" mapstructure:"provider" validate:"oneof=anthropic openai ollama"`
	Model     string          `yaml:"model" mapstructure:"model"`
	MaxTokens int             `yaml:"max_tokens" mapstructure:"max_tokens" validate:"min=1"`
	Timeout   time.Duration   `yaml:"timeout" mapstructure:"timeout" validate:"min=1"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	OpenAI    OpenAIConfig    `yaml:"openai" mapstructure:"openai"`
	Ollama    OllamaConfig    `yaml:"ollama" mapstructure:"ollama"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key string `yaml:"key" mapstructure:"key"`
}

// OpenAIConfig holds settings for any OpenAI-compatible endpoint.
type OpenAIConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// OllamaConfig holds local Ollama settings.
type OllamaConfig struct {
	Host      string `yaml:"host" mapstructure:"host"`
	NumCtxMin int    `yaml:"num_ctx_min" mapstructure:"num_ctx_min"`
}

// StoreConfig configures the run history backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver" validate:"oneof=sqlite postgres"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ReportConfig configures spreadsheet export.
type ReportConfig struct {
	Dir    string `yaml:"dir" mapstructure:"dir"`
	Prefix string `yaml:"prefix" mapstructure:"prefix"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	MaxConcurrentCompanies int `yaml:"max_concurrent_companies" mapstructure:"max_concurrent_companies"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DefaultPriorityFields are the fields requested by the bulk pass.
var DefaultPriorityFields = []string{
	"long_description",
	"short_description",
	"sic_code",
	"sic_text",
	"sub_industry",
	"industry",
	"sector",
	"tags",
}

// DefaultEnrichFields are extracted once from the bulk context to fill the
// rest of the profile.
var DefaultEnrichFields = []string{
	"key_people",
	"locations",
	"hq_indicator",
	"products_services",
	"service_type",
	"contact_info",
	"social_media",
	"tech_stack",
	"certifications",
	"registration_number",
	"vat_number",
	"acronym",
	"year_founded",
	"company_size",
}

// Load reads configuration from .env, file and environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		zap.L().Debug("config: no .env file, using process environment")
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.company-research")

	// Environment
	v.SetEnvPrefix("RESEARCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("research.max_retries", 3)
	v.SetDefault("research.max_urls", 10)
	v.SetDefault("research.retry_urls", 2)
	v.SetDefault("research.priority_fields", DefaultPriorityFields)
	v.SetDefault("research.enrich_fields", DefaultEnrichFields)
	v.SetDefault("research.min_length", 5)
	v.SetDefault("research.serp_field_chars", 4000)
	v.SetDefault("research.serp_total_chars", 15000)
	v.SetDefault("research.page_chars", 25000)
	v.SetDefault("research.retry_serp_chars", 5000)
	v.SetDefault("research.retry_page_chars", 8000)
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.call_timeout", 30*time.Second)
	v.SetDefault("browser.tab_delay", 300*time.Millisecond)
	v.SetDefault("browser.load_wait", 2*time.Second)
	v.SetDefault("browser.switch_delay", 500*time.Millisecond)
	v.SetDefault("browser.links_per_page", 6)
	v.SetDefault("browser.serp_chars", 5000)
	v.SetDefault("browser.launch_tries", 2)
	v.SetDefault("browser.breaker_threshold", 3)
	v.SetDefault("browser.breaker_reset", 2*time.Minute)
	v.SetDefault("llm.provider", "anthropic")
	v.SetDefault("llm.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("llm.max_tokens", 4096)
	v.SetDefault("llm.timeout", 90*time.Second)
	v.SetDefault("llm.openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.ollama.host", "http://localhost:11434")
	v.SetDefault("llm.ollama.num_ctx_min", 8192)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "research.db")
	v.SetDefault("report.dir", "reports")
	v.SetDefault("report.prefix", "Bulk_Report")
	v.SetDefault("batch.max_concurrent_companies", 2)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks struct constraints plus the settings a given command
// needs. Mode is one of "run", "batch" or "serve".
func (c *Config) Validate(mode string) error {
	var errs []string

	if err := validator.New().Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				errs = append(errs, fmt.Sprintf("%s failed %s", fieldPath(fe.Namespace()), fe.Tag()))
			}
		} else {
			errs = append(errs, err.Error())
		}
	}

	switch mode {
	case "run", "batch":
		errs = append(errs, c.llmErrors()...)
	case "serve":
		errs = append(errs, c.llmErrors()...)
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Batch.MaxConcurrentCompanies < 1 || c.Batch.MaxConcurrentCompanies > 16 {
		errs = append(errs, "batch.max_concurrent_companies must be between 1 and 16")
	}
	if c.Store.Driver == "postgres" && c.Store.DatabaseURL == "" {
		errs = append(errs, "store.database_url is required")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) llmErrors() []string {
	var errs []string
	switch c.LLM.Provider {
	case "anthropic":
		if c.LLM.Anthropic.Key == "" {
			errs = append(errs, "llm.anthropic.key is required")
		}
	case "openai":
		if c.LLM.OpenAI.Key == "" {
			errs = append(errs, "llm.openai.key is required")
		}
	case "ollama":
		if c.LLM.Ollama.Host == "" {
			errs = append(errs, "llm.ollama.host is required")
		}
	}
	if c.LLM.Model == "" {
		errs = append(errs, "llm.model is required")
	}
	return errs
}

// fieldPath turns "Config.Research.MaxRetries" into "Research.MaxRetries".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
