package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Config represents the redline configuration.
type Config struct {
	Format   string   `json:"format" validate:"oneof=text json markdown sarif"`
	FailOn   string   `json:"failOn" validate:"oneof=none note warning error"`
	Jobs     int      `json:"jobs" validate:"min=0,max=64"`
	Include  []string `json:"include"`
	Exclude  []string `json:"exclude,omitempty"`
	StyleDir string   `json:"styleDir,omitempty"`

	Checkers CheckersConfig `json:"checkers"`
	LLM      LLMConfig      `json:"llm"`
	Cache    CacheConfig    `json:"cache"`
	Privacy  PrivacyConfig  `json:"privacy"`
	History  HistoryConfig  `json:"history"`
}

// ToolConfig configures one subprocess checker. Config is the path to a
// tool-specific settings file (chktexrc, vale.ini) when one is used.
type ToolConfig struct {
	Enabled bool   `json:"enabled"`
	Binary  string `json:"binary,omitempty"`
	Config  string `json:"config,omitempty"`
}

// CheckersConfig enables and configures the document checkers.
type CheckersConfig struct {
	Chktex       ToolConfig         `json:"chktex"`
	Vale         ToolConfig         `json:"vale"`
	Codespell    ToolConfig         `json:"codespell"`
	Latexindent  ToolConfig         `json:"latexindent"`
	LanguageTool LanguageToolConfig `json:"languagetool"`
}

// LanguageToolConfig configures the LanguageTool HTTP checker.
type LanguageToolConfig struct {
	Enabled       bool     `json:"enabled"`
	Server        string   `json:"server,omitempty"`
	Language      string   `json:"language,omitempty"`
	DisabledRules []string `json:"disabledRules,omitempty"`
}

// LLMConfig controls the LLM review pass.
type LLMConfig struct {
	Enabled    bool   `json:"enabled"`
	Provider   string `json:"provider" validate:"omitempty,oneof=ollama openai gemini google"`
	Model      string `json:"model"`
	BaseURL    string `json:"baseURL,omitempty"`
	Adjudicate bool   `json:"adjudicate"`
}

// CacheConfig controls incremental review caching.
type CacheConfig struct {
	Enabled    bool   `json:"enabled"`
	File       string `json:"file,omitempty"`
	MaxAgeDays int    `json:"maxAgeDays" validate:"min=0"`
	Prune      bool   `json:"prune"`
}

// PrivacyConfig controls privacy/redaction behavior.
type PrivacyConfig struct {
	RedactSecrets bool     `json:"redactSecrets"`
	RedactPaths   []string `json:"redactPaths,omitempty"`
}

// HistoryConfig enables optional run-history persistence.
type HistoryConfig struct {
	DSN string `json:"dsn,omitempty"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Format:   "text",
		FailOn:   "error",
		Jobs:     4,
		Include:  []string{"**/*.tex"},
		StyleDir: filepath.Join(".redline", "style"),
		Checkers: CheckersConfig{
			Chktex:       ToolConfig{Enabled: true},
			Vale:         ToolConfig{Enabled: true},
			Codespell:    ToolConfig{Enabled: true},
			Latexindent:  ToolConfig{Enabled: false},
			LanguageTool: LanguageToolConfig{Enabled: false, Language: "en-US"},
		},
		LLM: LLMConfig{
			Enabled:  false,
			Provider: "ollama",
			Model:    "mistral",
		},
		Cache: CacheConfig{
			Enabled:    true,
			File:       filepath.Join(".redline", "cache.json"),
			MaxAgeDays: 30,
		},
		Privacy: PrivacyConfig{
			RedactSecrets: true,
			RedactPaths:   []string{"**/*private*"},
		},
	}
}

// ConfigDir returns the platform-appropriate config directory for redline.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "redline"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "redline"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "redline"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "redline"), nil
	default:
		return filepath.Join(home, ".config", "redline"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config by merging: defaults <- file <- env <-
// overrides, then validates the result. The overrides map comes from CLI
// flags (only non-zero values should be set).
func Load(overrides map[string]string) (Config, error) {
	cfg := Default()

	if err := loadFileInto(&cfg); err != nil {
		return Config{}, err
	}
	mergeEnv(&cfg)
	mergeOverrides(&cfg, overrides)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loadFileInto unmarshals the config file over cfg, so keys present in
// the file overwrite defaults (including explicit false) and absent keys
// keep them. A missing file is not an error.
func loadFileInto(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

var validate = validator.New()

// Validate checks the config against its struct tag rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func mergeEnv(cfg *Config) {
	if v := os.Getenv("REDLINE_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("REDLINE_FAIL_ON"); v != "" {
		cfg.FailOn = v
	}
	if v := os.Getenv("REDLINE_JOBS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Jobs = n
		}
	}
	if v := os.Getenv("REDLINE_LLM"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.LLM.Enabled = b
		}
	}
	if v := os.Getenv("REDLINE_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("REDLINE_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("REDLINE_CACHE_FILE"); v != "" {
		cfg.Cache.File = v
	}
	if v := os.Getenv("REDLINE_LANGUAGETOOL_URL"); v != "" {
		cfg.Checkers.LanguageTool.Server = v
	}
	if v := os.Getenv("REDLINE_HISTORY_DSN"); v != "" {
		cfg.History.DSN = v
	}
}

func mergeOverrides(cfg *Config, overrides map[string]string) {
	if overrides == nil {
		return
	}
	if v, ok := overrides["format"]; ok && v != "" {
		cfg.Format = v
	}
	if v, ok := overrides["failOn"]; ok && v != "" {
		cfg.FailOn = v
	}
	if v, ok := overrides["provider"]; ok && v != "" {
		cfg.LLM.Provider = v
	}
	if v, ok := overrides["model"]; ok && v != "" {
		cfg.LLM.Model = v
	}
	if v, ok := overrides["jobs"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Jobs = n
		}
	}
	if v, ok := overrides["cacheFile"]; ok && v != "" {
		cfg.Cache.File = v
	}
}

// EnabledCheckers lists the names of the checkers the config enables, in
// run order.
func (c *Config) EnabledCheckers() []string {
	var names []string
	if c.Checkers.Chktex.Enabled {
		names = append(names, "chktex")
	}
	if c.Checkers.Vale.Enabled {
		names = append(names, "vale")
	}
	if c.Checkers.Codespell.Enabled {
		names = append(names, "codespell")
	}
	if c.Checkers.Latexindent.Enabled {
		names = append(names, "latexindent")
	}
	if c.Checkers.LanguageTool.Enabled {
		names = append(names, "languagetool")
	}
	return names
}
