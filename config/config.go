// Package config defines the YAML configuration for an agentswarm process:
// which completion provider to talk to, engine defaults and logging.
//
// A minimal file:
//
//	provider:
//	  name: openai
//	  model: gpt-4o-mini
//	engine:
//	  max_turns: 10
//	logging:
//	  level: debug
package config

// ProviderName identifies a completion transport.
type ProviderName string

const (
	ProviderOpenAI    ProviderName = "openai"
	ProviderAnthropic ProviderName = "anthropic"
	ProviderMock      ProviderName = "mock"
)

// IsValid reports whether p is a known provider.
func (p ProviderName) IsValid() bool {
	switch p {
	case ProviderOpenAI, ProviderAnthropic, ProviderMock:
		return true
	}
	return false
}

// Config is the root configuration.
type Config struct {
	Provider ProviderConfig `yaml:"provider"`
	Engine   EngineConfig   `yaml:"engine"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ProviderConfig selects and tunes the completion transport.
type ProviderConfig struct {
	Name        ProviderName `yaml:"name"`
	Model       string       `yaml:"model"`
	Temperature float64      `yaml:"temperature"`
	MaxTokens   int64        `yaml:"max_tokens"`
	BaseURL     string       `yaml:"base_url"`
	// APIKeyEnv names the environment variable holding the API key. Empty
	// means the SDK's own default variable.
	APIKeyEnv string `yaml:"api_key_env"`
}

// EngineConfig holds run defaults. MaxTurns of zero means unlimited.
type EngineConfig struct {
	MaxTurns          int  `yaml:"max_turns"`
	Debug             bool `yaml:"debug"`
	ExecuteFunctions  bool `yaml:"execute_functions"`
	MaxConcurrentRuns int  `yaml:"max_concurrent_runs"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"` // text or json
	AddSource bool   `yaml:"add_source"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Provider: ProviderConfig{
			Name:        ProviderOpenAI,
			Temperature: 0.7,
			MaxTokens:   4096,
		},
		Engine: EngineConfig{
			ExecuteFunctions: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
