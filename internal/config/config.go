// Package config defines the dreamgate configuration model: the theme
// table, symbol pools, color palettes, prompt templates, and fallback
// templates that drive generation. Configs load from YAML or JSON and are
// validated up front; a malformed config is a *ValidationError, never a
// silent attribute miss.
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the full generation configuration.
type Config struct {
	// Model settings for the oracle backend
	Model ModelConfig `yaml:"model" json:"model"`

	// Themes is the ordered theme table. Order is the tie-break order:
	// when two themes score equally against an intent, the earlier one
	// wins.
	Themes []Theme `yaml:"themes" json:"themes"`

	// Symbols holds the named symbol pools plus the global fallback pool.
	Symbols SymbolConfig `yaml:"symbols" json:"symbols"`

	// Colors holds the named color palettes plus the global fallback color.
	Colors ColorConfig `yaml:"colors" json:"colors"`

	// Prompts configures prompt assembly.
	Prompts PromptConfig `yaml:"prompts" json:"prompts"`

	// Fallbacks are theme-tagged phrase/reasoning templates used when the
	// oracle fails. Templates with no theme tags match any theme.
	Fallbacks []FallbackTemplate `yaml:"fallbacks" json:"fallbacks"`

	// Batch settings
	Batch BatchConfig `yaml:"batch" json:"batch"`
}

// Theme is one entry of the theme table.
type Theme struct {
	ID       string   `yaml:"id" json:"id"`
	Keywords []string `yaml:"keywords" json:"keywords"`
	Symbols  []string `yaml:"symbols" json:"symbols"` // symbol pool ids, declaration order preserved
	Colors   []string `yaml:"colors" json:"colors"`   // palette ids, declaration order preserved
}

// SymbolConfig names the symbol pools.
type SymbolConfig struct {
	Pools    map[string][]string `yaml:"pools" json:"pools"`
	Fallback []string            `yaml:"fallback" json:"fallback"`
}

// ColorConfig names the color palettes. Fallback is a single hex value,
// not a palette.
type ColorConfig struct {
	Palettes map[string][]string `yaml:"palettes" json:"palettes"`
	Fallback string              `yaml:"fallback" json:"fallback"`
}

// ModelConfig configures the oracle backend.
type ModelConfig struct {
	Backend string `yaml:"backend" json:"backend"` // ollama, gemini
	Name    string `yaml:"name" json:"name"`
	Timeout string `yaml:"timeout" json:"timeout"` // Go duration string, e.g. "60s"
}

// PromptConfig configures prompt assembly.
type PromptConfig struct {
	BaseTemplate string   `yaml:"base_template" json:"base_template"`
	Variations   []string `yaml:"variations" json:"variations"`
}

// FallbackTemplate is one phrase/reasoning pair used by the fallback
// policy. Themes lists the theme ids it applies to; empty means any.
type FallbackTemplate struct {
	Themes    []string `yaml:"themes" json:"themes"`
	Phrase    string   `yaml:"phrase" json:"phrase"`
	Reasoning string   `yaml:"reasoning" json:"reasoning"`
}

// BatchConfig bounds batch runs.
type BatchConfig struct {
	MaxSources int `yaml:"max_sources" json:"max_sources"`
}

// DefaultMaxSources caps a batch when the config does not set a limit.
const DefaultMaxSources = 32

// DefaultTimeout bounds one oracle call when the config does not set one.
const DefaultTimeout = 60 * time.Second

// ValidationError reports a structural problem in a config. It is the one
// error class that surfaces to callers as a hard failure: it means the
// system cannot even construct a valid fallback.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid config: %s: %s", e.Field, e.Reason)
}

var hexColorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// IsHexColor reports whether s matches #rrggbb (case-insensitive).
func IsHexColor(s string) bool {
	return hexColorRe.MatchString(s)
}

// Load reads and validates a config file. YAML and JSON are both
// accepted (yaml.v3 parses JSON as a subset).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates raw config bytes.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &ValidationError{Field: "(root)", Reason: err.Error()}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks referential integrity of the theme table and the format
// of every configured color.
func (c *Config) Validate() error {
	if len(c.Themes) == 0 {
		return &ValidationError{Field: "themes", Reason: "at least one theme is required"}
	}
	seen := make(map[string]bool, len(c.Themes))
	for i, th := range c.Themes {
		if th.ID == "" {
			return &ValidationError{Field: fmt.Sprintf("themes[%d].id", i), Reason: "empty theme id"}
		}
		if seen[th.ID] {
			return &ValidationError{Field: fmt.Sprintf("themes[%d].id", i), Reason: "duplicate theme id " + th.ID}
		}
		seen[th.ID] = true
		if len(th.Keywords) == 0 {
			return &ValidationError{Field: fmt.Sprintf("themes[%d].keywords", i), Reason: "theme " + th.ID + " has no keywords"}
		}
		for _, pool := range th.Symbols {
			if _, ok := c.Symbols.Pools[pool]; !ok {
				return &ValidationError{
					Field:  fmt.Sprintf("themes[%d].symbols", i),
					Reason: fmt.Sprintf("theme %s references unknown symbol pool %q", th.ID, pool),
				}
			}
		}
		for _, palette := range th.Colors {
			if _, ok := c.Colors.Palettes[palette]; !ok {
				return &ValidationError{
					Field:  fmt.Sprintf("themes[%d].colors", i),
					Reason: fmt.Sprintf("theme %s references unknown color palette %q", th.ID, palette),
				}
			}
		}
	}
	for name, palette := range c.Colors.Palettes {
		for _, hex := range palette {
			if !IsHexColor(hex) {
				return &ValidationError{
					Field:  "colors.palettes." + name,
					Reason: fmt.Sprintf("%q is not a #rrggbb color", hex),
				}
			}
		}
	}
	if c.Colors.Fallback != "" && !IsHexColor(c.Colors.Fallback) {
		return &ValidationError{
			Field:  "colors.fallback",
			Reason: fmt.Sprintf("%q is not a #rrggbb color", c.Colors.Fallback),
		}
	}
	if c.Batch.MaxSources < 0 {
		return &ValidationError{Field: "batch.max_sources", Reason: "must not be negative"}
	}
	return nil
}

// ThemeByID returns the theme table entry with the given id.
func (c *Config) ThemeByID(id string) (Theme, bool) {
	for _, th := range c.Themes {
		if th.ID == id {
			return th, true
		}
	}
	return Theme{}, false
}

// MaxSources returns the configured batch cap, with a default applied.
func (c *Config) MaxSources() int {
	if c.Batch.MaxSources > 0 {
		return c.Batch.MaxSources
	}
	return DefaultMaxSources
}

// ModelTimeout parses the configured timeout, with a default applied.
func (c *Config) ModelTimeout() time.Duration {
	if c.Model.Timeout == "" {
		return DefaultTimeout
	}
	d, err := time.ParseDuration(c.Model.Timeout)
	if err != nil || d <= 0 {
		return DefaultTimeout
	}
	return d
}

// Save writes the config as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
