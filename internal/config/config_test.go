package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Format != "text" {
		t.Errorf("Default format = %q, want %q", cfg.Format, "text")
	}
	if cfg.FailOn != "error" {
		t.Errorf("Default failOn = %q, want %q", cfg.FailOn, "error")
	}
	if cfg.Jobs != 4 {
		t.Errorf("Default jobs = %d, want 4", cfg.Jobs)
	}
	if !cfg.Checkers.Chktex.Enabled || !cfg.Checkers.Codespell.Enabled {
		t.Error("chktex and codespell should be enabled by default")
	}
	if cfg.Checkers.LanguageTool.Enabled {
		t.Error("languagetool should be disabled by default")
	}
	if cfg.LLM.Enabled {
		t.Error("LLM review should be disabled by default")
	}
	if cfg.LLM.Provider != "ollama" {
		t.Errorf("Default provider = %q, want %q", cfg.LLM.Provider, "ollama")
	}
	if !cfg.Cache.Enabled {
		t.Error("cache should be enabled by default")
	}
	if cfg.Cache.File != filepath.Join(".redline", "cache.json") {
		t.Errorf("Default cache file = %q", cfg.Cache.File)
	}
	if !cfg.Privacy.RedactSecrets {
		t.Error("Default redactSecrets should be true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	body := `{
  "failOn": "warning",
  "checkers": {
    "chktex": {"enabled": true},
    "codespell": {"enabled": false, "binary": "/opt/bin/codespell"},
    "vale": {"enabled": true}
  },
  "llm": {"enabled": true, "provider": "openai", "model": "gpt-4o"},
  "cache": {"enabled": true, "maxAgeDays": 7}
}`
	if err := os.MkdirAll(filepath.Join(dir, "redline"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "redline", "config.json"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.FailOn != "warning" {
		t.Errorf("failOn = %q", cfg.FailOn)
	}
	if cfg.Format != "text" {
		t.Errorf("untouched default lost: format = %q", cfg.Format)
	}
	if cfg.Checkers.Codespell.Enabled {
		t.Error("explicit false in file should disable codespell")
	}
	if cfg.Checkers.Codespell.Binary != "/opt/bin/codespell" {
		t.Errorf("binary = %q", cfg.Checkers.Codespell.Binary)
	}
	if !cfg.LLM.Enabled || cfg.LLM.Provider != "openai" || cfg.LLM.Model != "gpt-4o" {
		t.Errorf("llm = %+v", cfg.LLM)
	}
	if cfg.Cache.MaxAgeDays != 7 {
		t.Errorf("maxAgeDays = %d", cfg.Cache.MaxAgeDays)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("REDLINE_PROVIDER", "gemini")
	t.Setenv("REDLINE_FAIL_ON", "note")
	t.Setenv("REDLINE_LLM", "true")
	t.Setenv("REDLINE_JOBS", "8")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.LLM.Provider != "gemini" {
		t.Errorf("provider = %q", cfg.LLM.Provider)
	}
	if cfg.FailOn != "note" {
		t.Errorf("failOn = %q", cfg.FailOn)
	}
	if !cfg.LLM.Enabled {
		t.Error("REDLINE_LLM=true should enable LLM review")
	}
	if cfg.Jobs != 8 {
		t.Errorf("jobs = %d", cfg.Jobs)
	}
}

func TestLoad_OverridesBeatEnv(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("REDLINE_FORMAT", "json")

	cfg, err := Load(map[string]string{"format": "sarif", "model": "llama3"})
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Format != "sarif" {
		t.Errorf("format = %q, want flag value", cfg.Format)
	}
	if cfg.LLM.Model != "llama3" {
		t.Errorf("model = %q", cfg.LLM.Model)
	}
}

func TestLoad_InvalidConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("REDLINE_FORMAT", "yaml")

	if _, err := Load(nil); err == nil {
		t.Error("expected validation error for unknown format")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid default", func(c *Config) {}, false},
		{"bad format", func(c *Config) { c.Format = "xml" }, true},
		{"bad failOn", func(c *Config) { c.FailOn = "critical" }, true},
		{"bad provider", func(c *Config) { c.LLM.Provider = "bard" }, true},
		{"empty provider ok", func(c *Config) { c.LLM.Provider = "" }, false},
		{"negative age", func(c *Config) { c.Cache.MaxAgeDays = -1 }, true},
		{"too many jobs", func(c *Config) { c.Jobs = 500 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")
	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir error: %v", err)
	}
	if dir != filepath.Join("/tmp/xdg-test", "redline") {
		t.Errorf("dir = %q", dir)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	want := Default()
	want.FailOn = "none"
	want.Checkers.Latexindent.Enabled = true
	if err := Save(want); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	got, err := Load(nil)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got.FailOn != "none" || !got.Checkers.Latexindent.Enabled {
		t.Errorf("round trip lost values: %+v", got)
	}
}

func TestEnabledCheckers(t *testing.T) {
	cfg := Default()
	got := cfg.EnabledCheckers()
	want := []string{"chktex", "vale", "codespell"}
	if len(got) != len(want) {
		t.Fatalf("EnabledCheckers() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("EnabledCheckers()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
