// Package config loads and validates the service configuration from a YAML
// file with environment-variable overrides for secrets.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the full service configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server" validate:"required"`
	LLM     LLMConfig     `yaml:"llm" validate:"required"`
	Store   StoreConfig   `yaml:"store" validate:"required"`
	Search  SearchConfig  `yaml:"search" validate:"required"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `yaml:"addr" validate:"required"`

	// CORSOrigins lists allowed origins; empty allows none.
	CORSOrigins []string `yaml:"cors_origins"`

	// RequestTimeout caps one inbound request end to end.
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// ModelConfig configures one LLM role.
type ModelConfig struct {
	// Provider selects the registered provider: openai, anthropic, google.
	Provider string `yaml:"provider" validate:"required,oneof=openai anthropic google"`

	// Model overrides the provider's default model when set.
	Model string `yaml:"model"`

	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `yaml:"api_key_env" validate:"required"`

	// Timeout caps each individual call.
	Timeout time.Duration `yaml:"timeout"`
}

// LLMConfig configures the two model roles.
type LLMConfig struct {
	Verdict ModelConfig `yaml:"verdict" validate:"required"`
	Keyword ModelConfig `yaml:"keyword" validate:"required"`

	// RateLimit caps requests per second across the service; zero disables.
	RateLimit float64 `yaml:"rate_limit"`
}

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	// Backend is redis or postgres.
	Backend string `yaml:"backend" validate:"required,oneof=redis postgres"`

	// RedisURL is the connection URL when backend is redis.
	RedisURL string `yaml:"redis_url"`

	// PostgresDSN is the connection string when backend is postgres.
	PostgresDSN string `yaml:"postgres_dsn"`

	// CacheTTL expires precedent cache entries; zero keeps them forever.
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// SearchConfig configures the case-law search client.
type SearchConfig struct {
	BaseURL   string        `yaml:"base_url" validate:"required,url"`
	APIKeyEnv string        `yaml:"api_key_env"`
	Timeout   time.Duration `yaml:"timeout"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`

	// Development switches to the human-readable console encoder.
	Development bool `yaml:"development"`
}

// APIKey resolves the configured environment variable.
func (m ModelConfig) APIKey() string { return os.Getenv(m.APIKeyEnv) }

// APIKey resolves the configured environment variable.
func (s SearchConfig) APIKey() string {
	if s.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(s.APIKeyEnv)
}

// Load reads, overrides, and validates the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyEnvOverrides(cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Store.Backend == "redis" && cfg.Store.RedisURL == "" {
		return nil, fmt.Errorf("invalid config: store.redis_url required for redis backend")
	}
	if cfg.Store.Backend == "postgres" && cfg.Store.PostgresDSN == "" {
		return nil, fmt.Errorf("invalid config: store.postgres_dsn required for postgres backend")
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":8080",
			RequestTimeout: 90 * time.Second,
		},
		LLM: LLMConfig{
			Verdict: ModelConfig{Provider: "openai", APIKeyEnv: "OPENAI_API_KEY", Timeout: 60 * time.Second},
			Keyword: ModelConfig{Provider: "openai", APIKeyEnv: "OPENAI_API_KEY", Timeout: 10 * time.Second},
		},
		Store: StoreConfig{Backend: "redis"},
		Search: SearchConfig{
			Timeout: 10 * time.Second,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// applyEnvOverrides lets deployment environments override connection
// endpoints without editing the config file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GAEPAN_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("GAEPAN_REDIS_URL"); v != "" {
		cfg.Store.RedisURL = v
	}
	if v := os.Getenv("GAEPAN_POSTGRES_DSN"); v != "" {
		cfg.Store.PostgresDSN = v
	}
	if v := os.Getenv("GAEPAN_SEARCH_URL"); v != "" {
		cfg.Search.BaseURL = v
	}
}
