package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration structure.
type Config struct {
	Providers   ProvidersConfig  `yaml:"providers"`
	Roles       RolesConfig      `yaml:"roles"`
	Retry       RetryConfig      `yaml:"retry"`
	Checkpoints CheckpointConfig `yaml:"checkpoints"`
	Limits      LimitsConfig     `yaml:"limits"`
	LogLevel    string           `yaml:"log_level"`
}

// ProviderEntry configures a single AI backend.
type ProviderEntry struct {
	Command    string `yaml:"command"`
	Model      string `yaml:"model,omitempty"`
	Timeout    string `yaml:"timeout"`
	MaxRetries int    `yaml:"max_retries"`
}

// TimeoutDuration parses the entry timeout, falling back to 15 minutes.
func (e ProviderEntry) TimeoutDuration() time.Duration {
	if e.Timeout == "" {
		return 900 * time.Second
	}
	d, err := time.ParseDuration(e.Timeout)
	if err != nil {
		return 900 * time.Second
	}
	return d
}

// Retries returns the retry budget for the entry, falling back to 3 when
// unset.
func (e ProviderEntry) Retries() int {
	if e.MaxRetries <= 0 {
		return 3
	}
	return e.MaxRetries
}

type ProvidersConfig struct {
	Ollama         ProviderEntry `yaml:"ollama"`
	Claude         ProviderEntry `yaml:"claude"`
	Gemini         ProviderEntry `yaml:"gemini"`
	OllamaFallback ProviderEntry `yaml:"ollama-fallback"`
}

// RolesConfig holds per-role provider priority lists (fallback order).
type RolesConfig struct {
	Planner    []string `yaml:"planner"`
	Coder      []string `yaml:"coder"`
	Tester     []string `yaml:"tester"`
	Reviewer   []string `yaml:"reviewer"`
	Documenter []string `yaml:"documenter"`
}

// Entry returns the provider entry registered under name. Unknown names
// yield a zero entry.
func (c *Config) Entry(name string) ProviderEntry {
	switch name {
	case "ollama":
		return c.Providers.Ollama
	case "claude":
		return c.Providers.Claude
	case "gemini":
		return c.Providers.Gemini
	case "ollama-fallback":
		return c.Providers.OllamaFallback
	}
	return ProviderEntry{}
}

type RetryConfig struct {
	BaseDelay string `yaml:"base_delay"`
}

// BaseDelayDuration parses the retry base delay, falling back to 2s.
func (r RetryConfig) BaseDelayDuration() time.Duration {
	if r.BaseDelay == "" {
		return 2 * time.Second
	}
	d, err := time.ParseDuration(r.BaseDelay)
	if err != nil {
		return 2 * time.Second
	}
	return d
}

type CheckpointConfig struct {
	Enabled *bool  `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

// IsEnabled reports whether checkpointing is on (default true).
func (c CheckpointConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

type LimitsConfig struct {
	MinPromptChars   int `yaml:"min_prompt_chars"`
	MaxPromptChars   int `yaml:"max_prompt_chars"`
	MaxResponseChars int `yaml:"max_response_chars"`
}

// knownProviders is the set of names role priority lists may reference.
var knownProviders = map[string]bool{
	"ollama":          true,
	"claude":          true,
	"gemini":          true,
	"ollama-fallback": true,
}

// Validate checks that every role has a priority list of known providers.
func (c *Config) Validate() error {
	roles := map[string][]string{
		"planner":    c.Roles.Planner,
		"coder":      c.Roles.Coder,
		"tester":     c.Roles.Tester,
		"reviewer":   c.Roles.Reviewer,
		"documenter": c.Roles.Documenter,
	}
	for role, priorities := range roles {
		if len(priorities) == 0 {
			return fmt.Errorf("roles.%s must list at least one provider", role)
		}
		for _, name := range priorities {
			if !knownProviders[name] {
				return fmt.Errorf("roles.%s references unknown provider %q", role, name)
			}
		}
	}
	for name, entry := range map[string]ProviderEntry{
		"ollama":          c.Providers.Ollama,
		"claude":          c.Providers.Claude,
		"gemini":          c.Providers.Gemini,
		"ollama-fallback": c.Providers.OllamaFallback,
	} {
		if entry.Timeout != "" {
			if _, err := time.ParseDuration(entry.Timeout); err != nil {
				return fmt.Errorf("providers.%s.timeout: %w", name, err)
			}
		}
	}
	return nil
}

// Priorities returns the priority list for a role name, or nil.
func (c *Config) Priorities(role string) []string {
	switch role {
	case "planner":
		return c.Roles.Planner
	case "coder":
		return c.Roles.Coder
	case "tester":
		return c.Roles.Tester
	case "reviewer":
		return c.Roles.Reviewer
	case "documenter":
		return c.Roles.Documenter
	}
	return nil
}

// Load resolves config from project → user → defaults.
func Load() (*Config, error) {
	cfg := defaults()

	// user-level config
	home, err := os.UserHomeDir()
	if err == nil {
		userPath := filepath.Join(home, ".aiorch", "config.yaml")
		if err := mergeFile(cfg, userPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("loading user config: %w", err)
		}
	}

	// project-level config (highest priority)
	projectPath := filepath.Join(".aiorch", "config.yaml")
	if err := mergeFile(cfg, projectPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return cfg, nil
}

func mergeFile(dst *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, dst)
}

func defaults() *Config {
	return &Config{
		Providers: ProvidersConfig{
			Ollama: ProviderEntry{
				Command:    "ollama",
				Model:      "qwen3-coder:480b-cloud",
				Timeout:    "900s",
				MaxRetries: 3,
			},
			Claude: ProviderEntry{
				Command:    "claude",
				Timeout:    "900s",
				MaxRetries: 3,
			},
			Gemini: ProviderEntry{
				Command:    "gemini",
				Timeout:    "900s",
				MaxRetries: 3,
			},
			// Small local model, used only when everything else failed.
			OllamaFallback: ProviderEntry{
				Command:    "ollama",
				Model:      "qwen3-coder:30b",
				Timeout:    "900s",
				MaxRetries: 1,
			},
		},
		Roles: RolesConfig{
			Planner:    []string{"claude", "gemini", "ollama", "ollama-fallback"},
			Coder:      []string{"gemini", "claude", "ollama", "ollama-fallback"},
			Tester:     []string{"gemini", "claude", "ollama", "ollama-fallback"},
			Reviewer:   []string{"claude", "ollama", "gemini", "ollama-fallback"},
			Documenter: []string{"ollama", "gemini", "claude", "ollama-fallback"},
		},
		Retry: RetryConfig{
			BaseDelay: "2s",
		},
		Checkpoints: CheckpointConfig{
			Dir: "checkpoints",
		},
		Limits: LimitsConfig{
			MinPromptChars:   10,
			MaxPromptChars:   4000,
			MaxResponseChars: 100000,
		},
		LogLevel: "info",
	}
}
