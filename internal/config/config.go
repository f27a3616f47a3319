package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the metadata generator. Constructed
// once at startup and threaded explicitly into the extractor, batch runner
// and TUI; nothing reads the process environment after Load returns.
type Config struct {
	DatasetPath string
	SchemaPath  string
	HistoryDB   string
	Provider    ProviderConfig
	Retry       RetryConfig
	RateLimit   RateLimitConfig
	Batch       BatchConfig
}

// ProviderConfig targets the OpenRouter chat-completions API.
type ProviderConfig struct {
	BaseURL  string        // defaults to https://openrouter.ai/api/v1
	Model    string        // provider-qualified model id, e.g. "openai/gpt-4o-mini"
	APIKey   string        // expanded from ${OPENROUTER_API_KEY} by Load
	Timeout  time.Duration // per-request timeout
	Referer  string        // HTTP-Referer attribution header, optional
	AppTitle string        // X-Title attribution header, optional
}

// RequireAPIKey fails when no credential is configured. Called before any
// provider is constructed so a missing key never reaches the network path.
func (p ProviderConfig) RequireAPIKey() error {
	if p.APIKey == "" {
		return fmt.Errorf("provider.api_key is not set (export OPENROUTER_API_KEY or add it to .env)")
	}
	return nil
}

// RetryConfig controls backoff for transient provider errors.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// RateLimitConfig controls the minimum gap between provider requests.
type RateLimitConfig struct {
	MinDelay time.Duration
}

// BatchConfig controls the batch runner.
type BatchConfig struct {
	Limit int // max jobs per batch run
}

const (
	defaultBaseURL  = "https://openrouter.ai/api/v1"
	defaultModel    = "openai/gpt-4o-mini"
	defaultTimeout  = 60 * time.Second
	defaultRetries  = 2
	defaultDelay    = 5 * time.Second
	defaultMinDelay = 1 * time.Second
	defaultLimit    = 10
)

// rawConfig is used for YAML unmarshaling (snake_case fields and durations
// as strings).
type rawConfig struct {
	Dataset   string             `yaml:"dataset"`
	Schema    string             `yaml:"schema"`
	HistoryDB string             `yaml:"history_db"`
	Provider  rawProviderConfig  `yaml:"provider"`
	Retry     rawRetryConfig     `yaml:"retry"`
	RateLimit rawRateLimitConfig `yaml:"rate_limit"`
	Batch     rawBatchConfig     `yaml:"batch"`
}

type rawProviderConfig struct {
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	Timeout  string `yaml:"timeout"`
	Referer  string `yaml:"referer"`
	AppTitle string `yaml:"app_title"`
}

type rawRetryConfig struct {
	MaxRetries *int   `yaml:"max_retries"`
	BaseDelay  string `yaml:"base_delay"`
}

type rawRateLimitConfig struct {
	MinDelay string `yaml:"min_delay"`
}

type rawBatchConfig struct {
	Limit int `yaml:"limit"`
}

// Load reads and parses the YAML config file at path, validates it, and
// returns Config. A .env file next to the working directory is loaded first
// so ${OPENROUTER_API_KEY} in the config expands from it.
func Load(path string) (*Config, error) {
	// Missing .env is fine; the key can come from the real environment.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	timeout := defaultTimeout
	if raw.Provider.Timeout != "" {
		timeout, err = time.ParseDuration(raw.Provider.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse provider.timeout %q: %w", raw.Provider.Timeout, err)
		}
	}

	retries := defaultRetries
	if raw.Retry.MaxRetries != nil {
		retries = *raw.Retry.MaxRetries
	}

	baseDelay := defaultDelay
	if raw.Retry.BaseDelay != "" {
		baseDelay, err = time.ParseDuration(raw.Retry.BaseDelay)
		if err != nil {
			return nil, fmt.Errorf("parse retry.base_delay %q: %w", raw.Retry.BaseDelay, err)
		}
	}

	minDelay := defaultMinDelay
	if raw.RateLimit.MinDelay != "" {
		minDelay, err = time.ParseDuration(raw.RateLimit.MinDelay)
		if err != nil {
			return nil, fmt.Errorf("parse rate_limit.min_delay %q: %w", raw.RateLimit.MinDelay, err)
		}
	}

	baseURL := raw.Provider.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	modelID := raw.Provider.Model
	if modelID == "" {
		modelID = defaultModel
	}

	limit := raw.Batch.Limit
	if limit == 0 {
		limit = defaultLimit
	}

	cfg := &Config{
		DatasetPath: raw.Dataset,
		SchemaPath:  raw.Schema,
		HistoryDB:   raw.HistoryDB,
		Provider: ProviderConfig{
			BaseURL:  baseURL,
			Model:    modelID,
			APIKey:   raw.Provider.APIKey,
			Timeout:  timeout,
			Referer:  raw.Provider.Referer,
			AppTitle: raw.Provider.AppTitle,
		},
		Retry: RetryConfig{
			MaxRetries: retries,
			BaseDelay:  baseDelay,
		},
		RateLimit: RateLimitConfig{
			MinDelay: minDelay,
		},
		Batch: BatchConfig{
			Limit: limit,
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DatasetPath == "" {
		return fmt.Errorf("dataset path is required")
	}
	if cfg.SchemaPath == "" {
		return fmt.Errorf("schema path is required")
	}
	if cfg.HistoryDB == "" {
		return fmt.Errorf("history_db path is required")
	}
	if cfg.Provider.Timeout <= 0 {
		return fmt.Errorf("provider.timeout must be positive, got %v", cfg.Provider.Timeout)
	}
	if cfg.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries must not be negative, got %d", cfg.Retry.MaxRetries)
	}
	if cfg.Batch.Limit <= 0 {
		return fmt.Errorf("batch.limit must be positive, got %d", cfg.Batch.Limit)
	}
	return nil
}
