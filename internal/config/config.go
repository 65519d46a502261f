// Package config loads council configuration from YAML with environment
// variable overrides. When no config file exists the compiled-in defaults
// are used, so the binary works with nothing but OPENROUTER_API_KEY set.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all council configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Transport configuration (OpenRouter-compatible chat completions API)
	Transport TransportConfig `yaml:"transport"`

	// Council roster and quorum
	Council CouncilConfig `yaml:"council"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// TransportConfig configures the chat completions caller.
type TransportConfig struct {
	BaseURL     string  `yaml:"base_url"`
	APIKey      string  `yaml:"api_key"`
	Referer     string  `yaml:"referer"`
	Title       string  `yaml:"title"`
	Timeout     string  `yaml:"timeout"`
	MaxRetries  int     `yaml:"max_retries"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

// CouncilConfig configures the roster, the chairman and the quorum gate.
type CouncilConfig struct {
	MinQuorum  int               `yaml:"min_quorum"`
	Councilors []CouncilorConfig `yaml:"councilors"`
	Chairman   CouncilorConfig   `yaml:"chairman"`
}

// CouncilorConfig identifies one answer-generating model.
type CouncilorConfig struct {
	ID    string `yaml:"id"`
	Model string `yaml:"model"`
	Label string `yaml:"label"`
	Role  string `yaml:"role,omitempty"`
}

// LoggingConfig configures debug logging.
type LoggingConfig struct {
	Debug bool   `yaml:"debug"`
	Dir   string `yaml:"dir"`
	Level string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "council",
		Version: "1.0.0",

		Transport: TransportConfig{
			BaseURL:     "https://openrouter.ai/api/v1",
			Referer:     "https://openclaw.ai",
			Title:       "LLM Council",
			Timeout:     "120s",
			MaxRetries:  2,
			MaxTokens:   1500,
			Temperature: 0.7,
		},

		Council: CouncilConfig{
			MinQuorum: 2,
			Councilors: []CouncilorConfig{
				{ID: "deepseek-r1", Model: "deepseek/deepseek-r1-0528:free", Label: "DeepSeek R1", Role: "Reasoner"},
				{ID: "hermes-405b", Model: "nousresearch/hermes-3-llama-3.1-405b:free", Label: "Hermes 3 405B", Role: "Knowledge"},
				{ID: "qwen3-coder", Model: "qwen/qwen3-coder:free", Label: "Qwen3 Coder 480B", Role: "Structuralist"},
				{ID: "llama-33-70b", Model: "meta-llama/llama-3.3-70b-instruct:free", Label: "Llama 3.3 70B", Role: "Generalist"},
			},
			Chairman: CouncilorConfig{
				ID:    "kimi-k2.5",
				Model: "moonshotai/kimi-k2.5:free",
				Label: "Kimi K2.5 (Chairman)",
			},
		},

		Logging: LoggingConfig{
			Debug: false,
			Dir:   filepath.Join(".council", "logs"),
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. A missing file is not an
// error; defaults plus environment overrides are returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("OPENROUTER_API_KEY"); key != "" {
		c.Transport.APIKey = key
	}
	if url := os.Getenv("COUNCIL_BASE_URL"); url != "" {
		c.Transport.BaseURL = url
	}
	if os.Getenv("COUNCIL_DEBUG") == "1" {
		c.Logging.Debug = true
	}
}

// Validate checks structural invariants that would otherwise surface as
// confusing runtime failures.
func (c *Config) Validate() error {
	if len(c.Council.Councilors) == 0 {
		return fmt.Errorf("config: no councilors configured")
	}
	if c.Council.Chairman.Model == "" {
		return fmt.Errorf("config: chairman model not configured")
	}
	if c.Council.MinQuorum < 1 {
		return fmt.Errorf("config: min_quorum must be at least 1")
	}
	if c.Council.MinQuorum > len(c.Council.Councilors) {
		return fmt.Errorf("config: min_quorum %d exceeds roster size %d",
			c.Council.MinQuorum, len(c.Council.Councilors))
	}
	seen := make(map[string]bool)
	for _, cc := range c.Council.Councilors {
		if cc.ID == "" || cc.Model == "" {
			return fmt.Errorf("config: councilor entries need both id and model")
		}
		if seen[cc.ID] {
			return fmt.Errorf("config: duplicate councilor id %q", cc.ID)
		}
		seen[cc.ID] = true
	}
	return nil
}

// RequestTimeout parses the transport timeout, falling back to 120s.
func (c *Config) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.Transport.Timeout)
	if err != nil || d <= 0 {
		return 120 * time.Second
	}
	return d
}
