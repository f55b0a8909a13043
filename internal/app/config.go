package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/hrgen/internal/modules/hrcontent/pipelines"
	"github.com/yungbote/hrgen/internal/modules/hrcontent/runner"
	"github.com/yungbote/hrgen/internal/observability"
	"github.com/yungbote/hrgen/internal/platform/envutil"
)

const (
	DefaultConfigPath     = "config.yaml"
	DefaultSpreadsheetURL = "https://docs.google.com/spreadsheets/d/1b3s7oy_9KLLrB46qxCVAQ4pLm4-T3RFMU-msGkovp40/edit?usp=sharing"

	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type OpenAIConfig struct {
	APIKey              string   `yaml:"api_key"`
	BaseURL             string   `yaml:"base_url"`
	Model               string   `yaml:"model"`
	TimeoutSeconds      int      `yaml:"timeout_seconds"`
	NoTemperatureModels []string `yaml:"no_temperature_models"`
}

func (c OpenAIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type GeminiConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

type GoogleConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	CredentialsJSON string `yaml:"credentials_json"`
	// Endpoint points every Workspace API at one base URL, e.g. a local fake.
	Endpoint string `yaml:"endpoint"`
}

// PipelineOverride replaces the built-in targets of one pipeline. Empty
// fields keep the defaults.
type PipelineOverride struct {
	Worksheet     string `yaml:"worksheet"`
	TemplateDocID string `yaml:"template_doc_id"`
	DocSuffix     string `yaml:"doc_suffix"`
	Mirror        string `yaml:"mirror"`
}

type StorageConfig struct {
	Mode         string `yaml:"mode"`
	EmulatorHost string `yaml:"emulator_host"`
}

type LedgerConfig struct {
	DSN      string `yaml:"dsn"`
	Disabled bool   `yaml:"disabled"`
}

type RunnerConfig struct {
	OnGenerationFailure string `yaml:"on_generation_failure"`
	Validation          string `yaml:"validation"`
}

type Config struct {
	LogMode        string                      `yaml:"log_mode"`
	Provider       string                      `yaml:"provider"`
	OpenAI         OpenAIConfig                `yaml:"openai"`
	Gemini         GeminiConfig                `yaml:"gemini"`
	Google         GoogleConfig                `yaml:"google"`
	SpreadsheetURL string                      `yaml:"spreadsheet_url"`
	Pipelines      map[string]PipelineOverride `yaml:"pipelines"`
	Storage        StorageConfig               `yaml:"storage"`
	Ledger         LedgerConfig                `yaml:"ledger"`
	Runner         RunnerConfig                `yaml:"runner"`
	Telemetry      observability.OtelConfig    `yaml:"telemetry"`
	MetricsFile    string                      `yaml:"metrics_file"`
}

func defaultConfig() Config {
	return Config{
		LogMode:        "development",
		Provider:       ProviderOpenAI,
		OpenAI:         OpenAIConfig{Model: "gpt-4o", TimeoutSeconds: 300},
		Gemini:         GeminiConfig{Model: "gemini-2.5-flash"},
		SpreadsheetURL: DefaultSpreadsheetURL,
		Ledger:         LedgerConfig{DSN: "hrgen.db"},
		Runner: RunnerConfig{
			OnGenerationFailure: string(runner.ContinueOnFailure),
			Validation:          string(runner.ValidationLog),
		},
		Telemetry: observability.OtelConfig{ServiceName: "hrgen", SampleRatio: 1},
	}
}

// ConfigPath resolves the config file: the explicit path, then HRGEN_CONFIG,
// then config.yaml in the working directory.
func ConfigPath(explicit string) string {
	if p := strings.TrimSpace(explicit); p != "" {
		return p
	}
	return envutil.String("HRGEN_CONFIG", DefaultConfigPath)
}

// LoadConfig reads the YAML file at path over the defaults and then applies
// environment overrides. A missing default config.yaml is not an error; a
// missing file that was asked for is.
func LoadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		path = DefaultConfigPath
	}
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && path == DefaultConfigPath:
	default:
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.LogMode = envutil.String("LOG_MODE", c.LogMode)
	c.Provider = strings.ToLower(envutil.String("HRGEN_PROVIDER", c.Provider))

	c.OpenAI.APIKey = envutil.String("OPENAI_API_KEY", c.OpenAI.APIKey)
	c.OpenAI.Model = envutil.String("OPENAI_MODEL", c.OpenAI.Model)
	c.OpenAI.BaseURL = envutil.String("OPENAI_BASE_URL", c.OpenAI.BaseURL)
	c.OpenAI.TimeoutSeconds = envutil.Int("OPENAI_TIMEOUT_SECONDS", c.OpenAI.TimeoutSeconds)
	if v := envutil.String("OPENAI_NO_TEMPERATURE_MODELS", ""); v != "" {
		c.OpenAI.NoTemperatureModels = splitList(v)
	}

	c.Gemini.APIKey = envutil.String("GEMINI_API_KEY", c.Gemini.APIKey)
	c.Gemini.Model = envutil.String("GEMINI_MODEL", c.Gemini.Model)

	c.Google.CredentialsFile = envutil.String("GOOGLE_APPLICATION_CREDENTIALS", c.Google.CredentialsFile)
	c.Google.CredentialsJSON = envutil.String("GOOGLE_APPLICATION_CREDENTIALS_JSON", c.Google.CredentialsJSON)
	c.Google.Endpoint = envutil.String("GOOGLE_API_ENDPOINT", c.Google.Endpoint)
	c.SpreadsheetURL = envutil.String("HRGEN_SPREADSHEET_URL", c.SpreadsheetURL)

	c.Storage.Mode = envutil.String("OBJECT_STORAGE_MODE", c.Storage.Mode)
	c.Storage.EmulatorHost = envutil.String("STORAGE_EMULATOR_HOST", c.Storage.EmulatorHost)

	c.Ledger.DSN = envutil.String("LEDGER_DSN", c.Ledger.DSN)
	c.Ledger.Disabled = envutil.Bool("LEDGER_DISABLED", c.Ledger.Disabled)

	c.Runner.OnGenerationFailure = envutil.String("HRGEN_ON_GENERATION_FAILURE", c.Runner.OnGenerationFailure)
	c.Runner.Validation = envutil.String("HRGEN_VALIDATION", c.Runner.Validation)

	c.Telemetry.Enabled = envutil.Bool("OTEL_ENABLED", c.Telemetry.Enabled)
	c.Telemetry.ServiceName = envutil.String("OTEL_SERVICE_NAME", c.Telemetry.ServiceName)
	c.Telemetry.Environment = envutil.String("OTEL_ENVIRONMENT", c.Telemetry.Environment)
	c.Telemetry.Endpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", c.Telemetry.Endpoint)
	c.Telemetry.Headers = envutil.String("OTEL_EXPORTER_OTLP_HEADERS", c.Telemetry.Headers)
	c.Telemetry.Insecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", c.Telemetry.Insecure)
	c.Telemetry.SampleRatio = envutil.Float("OTEL_SAMPLE_RATIO", c.Telemetry.SampleRatio)
	c.Telemetry.Stdout = envutil.Bool("OTEL_STDOUT", c.Telemetry.Stdout)

	c.MetricsFile = envutil.String("HRGEN_METRICS_FILE", c.MetricsFile)
}

func (c Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("unknown provider %q (openai|gemini)", c.Provider)
	}
	if _, err := runner.ParseFailurePolicy(c.Runner.OnGenerationFailure); err != nil {
		return err
	}
	if _, err := runner.ParseValidationMode(c.Runner.Validation); err != nil {
		return err
	}
	for name := range c.Pipelines {
		if _, err := pipelines.Get(pipelines.Name(name)); err != nil {
			return fmt.Errorf("config pipelines: %w", err)
		}
	}
	return nil
}

// Definition returns the registered pipeline with this config's overrides
// applied.
func (c Config) Definition(name pipelines.Name) (pipelines.Definition, error) {
	def, err := pipelines.Get(name)
	if err != nil {
		return pipelines.Definition{}, err
	}
	o, ok := c.Pipelines[string(name)]
	if !ok {
		return def, nil
	}
	if v := strings.TrimSpace(o.Worksheet); v != "" {
		def.Worksheet = v
	}
	if v := strings.TrimSpace(o.TemplateDocID); v != "" {
		def.TemplateDocID = v
	}
	if v := strings.TrimSpace(o.DocSuffix); v != "" {
		def.DocSuffix = v
	}
	if v := strings.TrimSpace(o.Mirror); v != "" {
		def.MirrorPath = v
	}
	return def, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
