// Package config loads the server configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix     = "SCORELINK_"
	envConfigPath = "SCORELINK_CONFIG"
)

// Completion providers
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderMock   = "mock"
)

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("invalid config")

// Config contains process configuration
type Config struct {
	// Addr is the HTTP listen address, e.g. ":8081".
	Addr string `koanf:"addr"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// PromptPath is the prompt template read once at startup.
	PromptPath string `koanf:"prompt_path"`

	// PublicDir holds the static pages.
	PublicDir string `koanf:"public_dir"`

	LLMProvider string `koanf:"llm_provider"`

	// LLMModel is the model identifier; empty selects the provider default
	// ("o1" for openai, "gemini-2.0-flash" for gemini).
	LLMModel     string        `koanf:"llm_model"`
	LLMEndpoint  string        `koanf:"llm_endpoint"`
	LLMAPIKeyEnv string        `koanf:"llm_api_key_env"`
	LLMTimeout   time.Duration `koanf:"llm_timeout"`

	// WSSendBuffer is the per-client outbound queue length of the relay.
	WSSendBuffer int `koanf:"ws_send_buffer"`

	// WSMaxMessageSize caps inbound relay frames in bytes.
	WSMaxMessageSize int64 `koanf:"ws_max_message_size"`

	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// New returns a Config with defaults
func New() *Config {
	return &Config{
		Addr:             ":8081",
		LogLevel:         "info",
		PromptPath:       "prompt.md",
		PublicDir:        "public",
		LLMProvider:      ProviderOpenAI,
		LLMTimeout:       120 * time.Second,
		WSSendBuffer:     256,
		WSMaxMessageSize: 64 * 1024,
		ShutdownTimeout:  10 * time.Second,
	}
}

// Load builds a Config by layering, low to high precedence:
//  1. defaults (New)
//  2. .env in the working directory, if present
//  3. YAML file named by SCORELINK_CONFIG, if set
//  4. SCORELINK_* environment variables
//  5. PORT, which overrides the port of Addr
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	k := koanf.New(".")

	if path := os.Getenv(envConfigPath); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// SCORELINK_LLM_MODEL -> llm_model
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}
	k.Delete("config")

	cfg := New()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Addr = ":" + port
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field values
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.PromptPath == "" {
		return fmt.Errorf("%w: prompt_path must not be empty", ErrInvalidConfig)
	}
	switch c.LLMProvider {
	case ProviderOpenAI, ProviderGemini, ProviderMock:
	default:
		return fmt.Errorf("%w: unknown llm_provider %q", ErrInvalidConfig, c.LLMProvider)
	}
	if c.WSSendBuffer <= 0 {
		return fmt.Errorf("%w: ws_send_buffer must be positive, got %d", ErrInvalidConfig, c.WSSendBuffer)
	}
	if c.WSMaxMessageSize <= 0 {
		return fmt.Errorf("%w: ws_max_message_size must be positive, got %d", ErrInvalidConfig, c.WSMaxMessageSize)
	}
	return nil
}
