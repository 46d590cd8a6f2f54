package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Research.MaxRetries)
	assert.Equal(t, 10, cfg.Research.MaxURLs)
	assert.Equal(t, 2, cfg.Research.RetryURLs)
	assert.Equal(t, DefaultPriorityFields, cfg.Research.PriorityFields)
	assert.Equal(t, DefaultEnrichFields, cfg.Research.EnrichFields)
	assert.Equal(t, 5, cfg.Research.MinLength)
	assert.Equal(t, 4000, cfg.Research.SerpFieldChars)
	assert.Equal(t, 15000, cfg.Research.SerpTotalChars)
	assert.Equal(t, 25000, cfg.Research.PageChars)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 30*time.Second, cfg.Browser.CallTimeout)
	assert.Equal(t, 300*time.Millisecond, cfg.Browser.TabDelay)
	assert.Equal(t, 6, cfg.Browser.LinksPerPage)
	assert.Equal(t, 3, cfg.Browser.BreakerThreshold)
	assert.Equal(t, 2*time.Minute, cfg.Browser.BreakerReset)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "reports", cfg.Report.Dir)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 2, cfg.Batch.MaxConcurrentCompanies)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
research:
  max_retries: 5
  priority_fields: [industry, sector]
browser:
  call_timeout: 10s
llm:
  provider: ollama
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Research.MaxRetries)
	assert.Equal(t, []string{"industry", "sector"}, cfg.Research.PriorityFields)
	assert.Equal(t, 10*time.Second, cfg.Browser.CallTimeout)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, "console", cfg.Log.Format)
	// Defaults still apply for unset values
	assert.Equal(t, 10, cfg.Research.MaxURLs)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
research:
  max_retries: 4
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("RESEARCH_RESEARCH_MAX_RETRIES", "7")
	t.Setenv("RESEARCH_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Research.MaxRetries)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("RESEARCH_SERVER_PORT=3000\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("RESEARCH_SERVER_PORT") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Research.MaxRetries = 3
	cfg.Research.MaxURLs = 10
	cfg.Research.RetryURLs = 2
	cfg.Research.PriorityFields = DefaultPriorityFields
	cfg.Research.MinLength = 5
	cfg.Research.SerpFieldChars = 4000
	cfg.Research.SerpTotalChars = 15000
	cfg.Research.PageChars = 25000
	cfg.Research.RetrySerpChars = 5000
	cfg.Research.RetryPageChars = 8000
	cfg.Browser.CallTimeout = 30 * time.Second
	cfg.Browser.LinksPerPage = 6
	cfg.Browser.SerpChars = 5000
	cfg.Browser.LaunchTries = 2
	cfg.LLM.Provider = "anthropic"
	cfg.LLM.Model = "claude-sonnet-4-5-20250929"
	cfg.LLM.MaxTokens = 4096
	cfg.LLM.Timeout = time.Minute
	cfg.LLM.Anthropic.Key = "sk-ant-key"
	cfg.Store.Driver = "sqlite"
	cfg.Batch.MaxConcurrentCompanies = 2
	cfg.Server.Port = 8080
	return cfg
}

func TestValidateRun_AllPresent(t *testing.T) {
	assert.NoError(t, validDefaults().Validate("run"))
}

func TestValidateRun_MissingKey(t *testing.T) {
	cfg := validDefaults()
	cfg.LLM.Anthropic.Key = ""

	err := cfg.Validate("run")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "llm.anthropic.key is required")
}

func TestValidateOpenAIKey(t *testing.T) {
	cfg := validDefaults()
	cfg.LLM.Provider = "openai"

	err := cfg.Validate("batch")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "llm.openai.key is required")

	cfg.LLM.OpenAI.Key = "sk-test"
	assert.NoError(t, cfg.Validate("batch"))
}

func TestValidateRetryCeilingBounds(t *testing.T) {
	cfg := validDefaults()

	cfg.Research.MaxRetries = 0
	err := cfg.Validate("run")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Research.MaxRetries failed min")

	cfg.Research.MaxRetries = 11
	err = cfg.Validate("run")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Research.MaxRetries failed max")

	cfg.Research.MaxRetries = 10
	assert.NoError(t, cfg.Validate("run"))
}

func TestValidateEmptyPriorityFields(t *testing.T) {
	cfg := validDefaults()
	cfg.Research.PriorityFields = nil

	err := cfg.Validate("run")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Research.PriorityFields")
}

func TestValidateUnknownProvider(t *testing.T) {
	cfg := validDefaults()
	cfg.LLM.Provider = "gemini"

	err := cfg.Validate("run")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "LLM.Provider failed oneof")
}

func TestValidatePostgresNeedsURL(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "postgres"

	err := cfg.Validate("run")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required")
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateConcurrencyBounds(t *testing.T) {
	cfg := validDefaults()

	cfg.Batch.MaxConcurrentCompanies = 0
	err := cfg.Validate("batch")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "max_concurrent_companies must be between 1 and 16")

	cfg.Batch.MaxConcurrentCompanies = 16
	assert.NoError(t, cfg.Validate("batch"))
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
