// Package config holds clinlint's on-disk configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full set of user-tunable knobs, loaded from clinlint.yaml.
type Config struct {
	// MaximumNumberOfProblems caps diagnostics per analysis pass (spec §6).
	MaximumNumberOfProblems int `yaml:"maximum_number_of_problems"`

	Completion CompletionConfig `yaml:"completion"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// CompletionConfig controls the completion provider.
type CompletionConfig struct {
	TriggerCharacters []string `yaml:"trigger_characters"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	Verbose bool   `yaml:"verbose"`
}

// DefaultConfig returns the configuration used when no clinlint.yaml exists.
func DefaultConfig() *Config {
	return &Config{
		MaximumNumberOfProblems: 100,
		Completion: CompletionConfig{
			TriggerCharacters: []string{"#"},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a clinlint.yaml file, falling back to defaults for any field
// the file does not set. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.MaximumNumberOfProblems <= 0 {
		cfg.MaximumNumberOfProblems = DefaultConfig().MaximumNumberOfProblems
	}
	if len(cfg.Completion.TriggerCharacters) == 0 {
		cfg.Completion.TriggerCharacters = DefaultConfig().Completion.TriggerCharacters
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	return cfg, nil
}
