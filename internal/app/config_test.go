package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yungbote/hrgen/internal/modules/hrcontent/pipelines"
)

func TestMain(m *testing.M) {
	pipelines.RegisterAll()
	os.Exit(m.Run())
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hrgen.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Provider != ProviderOpenAI || cfg.OpenAI.Model != "gpt-4o" {
		t.Fatalf("provider: got %q model %q", cfg.Provider, cfg.OpenAI.Model)
	}
	if cfg.SpreadsheetURL != DefaultSpreadsheetURL {
		t.Fatalf("spreadsheet: want=%q got=%q", DefaultSpreadsheetURL, cfg.SpreadsheetURL)
	}
	if cfg.Runner.OnGenerationFailure != "continue" || cfg.Runner.Validation != "log" {
		t.Fatalf("runner: got %+v", cfg.Runner)
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("LoadConfig: want error for missing file")
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
provider: gemini
gemini:
  model: gemini-1.5-pro
openai:
  model: gpt-4o-mini
  no_temperature_models: ["o1-*"]
spreadsheet_url: https://docs.google.com/spreadsheets/d/sheet-1/edit
pipelines:
  skills:
    worksheet: Skills (staging)
    mirror: gs://hr-exports/skills.csv
runner:
  on_generation_failure: skip
telemetry:
  enabled: true
  sample_ratio: 0.5
`)
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("HRGEN_VALIDATION", "enforce")
	t.Setenv("OTEL_SAMPLE_RATIO", "0.25")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Provider != ProviderGemini || cfg.Gemini.Model != "gemini-1.5-pro" || cfg.Gemini.APIKey != "g-key" {
		t.Fatalf("gemini: got provider=%q %+v", cfg.Provider, cfg.Gemini)
	}
	if cfg.OpenAI.Model != "gpt-4o-mini" || cfg.OpenAI.TimeoutSeconds != 300 {
		t.Fatalf("openai: got %+v", cfg.OpenAI)
	}
	if cfg.Runner.OnGenerationFailure != "skip" || cfg.Runner.Validation != "enforce" {
		t.Fatalf("runner: got %+v", cfg.Runner)
	}
	if !cfg.Telemetry.Enabled || cfg.Telemetry.SampleRatio != 0.25 || cfg.Telemetry.ServiceName != "hrgen" {
		t.Fatalf("telemetry: got %+v", cfg.Telemetry)
	}

	def, err := cfg.Definition(pipelines.Skills)
	if err != nil {
		t.Fatalf("Definition: %v", err)
	}
	if def.Worksheet != "Skills (staging)" || def.MirrorPath != "gs://hr-exports/skills.csv" {
		t.Fatalf("skills override: worksheet=%q mirror=%q", def.Worksheet, def.MirrorPath)
	}
	def, _ = cfg.Definition(pipelines.Resume)
	if def.Worksheet != "Python (resume)" {
		t.Fatalf("resume: want=%q got=%q", "Python (resume)", def.Worksheet)
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	cases := []struct{ name, body, wantErr string }{
		{"provider", "provider: claude\n", "unknown provider"},
		{"policy", "runner:\n  on_generation_failure: retry\n", "generation failure policy"},
		{"pipeline", "pipelines:\n  cover_letter:\n    worksheet: X\n", "unknown pipeline"},
		{"yaml", "provider: [\n", "parse"},
	}
	for _, tc := range cases {
		_, err := LoadConfig(writeConfig(t, tc.body))
		if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
			t.Fatalf("%s: want error containing %q got %v", tc.name, tc.wantErr, err)
		}
	}
}

func TestConfigPath(t *testing.T) {
	t.Setenv("HRGEN_CONFIG", "")
	if got := ConfigPath(""); got != DefaultConfigPath {
		t.Fatalf("ConfigPath: want=%q got=%q", DefaultConfigPath, got)
	}
	t.Setenv("HRGEN_CONFIG", "/etc/hrgen.yaml")
	if got := ConfigPath(""); got != "/etc/hrgen.yaml" {
		t.Fatalf("ConfigPath(env): got %q", got)
	}
	if got := ConfigPath("local.yaml"); got != "local.yaml" {
		t.Fatalf("ConfigPath(flag): got %q", got)
	}
}

func testApp(t *testing.T) *App {
	t.Helper()
	cfg := defaultConfig()
	cfg.OpenAI.APIKey = "sk-test"
	cfg.Ledger.DSN = ":memory:"
	cfg.Google.Endpoint = "http://127.0.0.1:1/"
	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { a.Close(context.Background()) })
	return a
}

func TestRunnerWiring(t *testing.T) {
	a := testApp(t)
	ctx := context.Background()

	var out bytes.Buffer
	if _, err := a.Runner(ctx, pipelines.Resume, true, &out); err != nil {
		t.Fatalf("Runner(dry run): %v", err)
	}
	if a.workspace != nil {
		t.Fatalf("dry run: google workspace should not be created")
	}

	a.Cfg.Pipelines = map[string]PipelineOverride{"skills": {Mirror: filepath.Join(t.TempDir(), "skills.csv")}}
	if _, err := a.Runner(ctx, pipelines.Skills, false, &out); err != nil {
		t.Fatalf("Runner(skills): %v", err)
	}
	if a.workspace == nil {
		t.Fatalf("workspace: want created")
	}
	if a.store != nil {
		t.Fatalf("local mirror: object store should not be created")
	}

	if _, err := a.Runner(ctx, pipelines.Name("cover_letter"), true, &out); err == nil {
		t.Fatalf("Runner: want error for unknown pipeline")
	}
}

func TestRunnerMissingAPIKey(t *testing.T) {
	a := testApp(t)
	a.Cfg.OpenAI.APIKey = ""
	_, err := a.Runner(context.Background(), pipelines.Resume, true, nil)
	if err == nil || !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Fatalf("Runner: want missing key error got %v", err)
	}
}
