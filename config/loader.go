package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/agentswarm/logging"
)

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r on top of [Default] and
// validates the result. Unknown keys are rejected.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if !cfg.Provider.Name.IsValid() {
		errs = append(errs, fmt.Errorf("provider.name %q is invalid; valid values: openai, anthropic, mock", cfg.Provider.Name))
	}
	if cfg.Provider.Temperature < 0 || cfg.Provider.Temperature > 2 {
		errs = append(errs, fmt.Errorf("provider.temperature %.2f is out of range [0, 2]", cfg.Provider.Temperature))
	}
	if cfg.Provider.MaxTokens < 0 {
		errs = append(errs, fmt.Errorf("provider.max_tokens %d must not be negative", cfg.Provider.MaxTokens))
	}

	if cfg.Engine.MaxTurns < 0 {
		errs = append(errs, fmt.Errorf("engine.max_turns %d must not be negative; use 0 for unlimited", cfg.Engine.MaxTurns))
	}
	if cfg.Engine.MaxConcurrentRuns < 0 {
		errs = append(errs, fmt.Errorf("engine.max_concurrent_runs %d must not be negative", cfg.Engine.MaxConcurrentRuns))
	}

	if _, err := logging.ParseLevel(cfg.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	switch cfg.Logging.Format {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q is invalid; valid values: text, json", cfg.Logging.Format))
	}

	return errors.Join(errs...)
}

// APIKey resolves the provider API key from the configured environment
// variable. It returns an empty string when no variable is configured.
func (p ProviderConfig) APIKey() string {
	if p.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(p.APIKeyEnv)
}

// LoggerConfig translates the logging section into a [logging.LoggerConfig].
func (l LoggingConfig) LoggerConfig() *logging.LoggerConfig {
	level, _ := logging.ParseLevel(l.Level)

	cfg := logging.DefaultLoggerConfig()
	cfg.Level = level
	if l.Format != "" {
		cfg.Format = l.Format
	}
	cfg.AddSource = l.AddSource
	return cfg
}
