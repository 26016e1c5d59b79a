// Package config loads skudiag settings from defaults, an optional config
// file, a .env file and the environment, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. SKUDIAG_API_BASEURL
const EnvPrefix = "SKUDIAG"

// Config is the full skudiag configuration
type Config struct {
	API      APIConfig      `json:"api" mapstructure:"api"`
	Cache    CacheConfig    `json:"cache" mapstructure:"cache"`
	Logging  LoggingConfig  `json:"logging" mapstructure:"logging"`
	Display  DisplayConfig  `json:"display" mapstructure:"display"`
	Fixtures FixturesConfig `json:"fixtures" mapstructure:"fixtures"`
}

// APIConfig describes how to reach the backend
type APIConfig struct {
	BaseURL      string            `json:"baseURL" mapstructure:"baseURL"`
	TimeoutMs    int               `json:"timeoutMs" mapstructure:"timeoutMs"`
	UserAgent    string            `json:"userAgent" mapstructure:"userAgent"`
	Headers      map[string]string `json:"headers" mapstructure:"headers"`
	MaxBodyBytes int64             `json:"maxBodyBytes" mapstructure:"maxBodyBytes"`
}

// Timeout returns the per-request transport timeout
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// CacheConfig controls the local trend cache
type CacheConfig struct {
	Enabled         bool   `json:"enabled" mapstructure:"enabled"`
	Path            string `json:"path" mapstructure:"path"`
	TrendTTLSeconds int    `json:"trendTtlSeconds" mapstructure:"trendTtlSeconds"`
}

// TrendTTL returns how long a cached trend stays fresh
func (c CacheConfig) TrendTTL() time.Duration {
	return time.Duration(c.TrendTTLSeconds) * time.Second
}

// LoggingConfig selects the log handler
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"` // "text" or "json"
	Level  string `json:"level" mapstructure:"level"`
}

// DisplayConfig holds user-facing labels
type DisplayConfig struct {
	AssistantName string `json:"assistantName" mapstructure:"assistantName"`
}

// FixturesConfig configures the fixture server
type FixturesConfig struct {
	ScenarioDir string `json:"scenarioDir" mapstructure:"scenarioDir"`
	Addr        string `json:"addr" mapstructure:"addr"`
}

// DefaultConfig returns the configuration used when nothing is set
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:      "http://localhost:8000",
			TimeoutMs:    15000,
			UserAgent:    "skudiag/1.0",
			Headers:      map[string]string{},
			MaxBodyBytes: 10 << 20,
		},
		Cache: CacheConfig{
			Enabled:         false,
			Path:            ".skudiag/cache.db",
			TrendTTLSeconds: 300,
		},
		Logging: LoggingConfig{
			Format: "text",
			Level:  "warn",
		},
		Display: DisplayConfig{
			AssistantName: "Dobby",
		},
		Fixtures: FixturesConfig{
			ScenarioDir: "fixtures/sample",
			Addr:        "127.0.0.1:8000",
		},
	}
}

// Load reads configuration. An empty path skips the config file; a missing
// .env file is ignored.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// API_BASE is the variable the dashboard build already uses
	if err := v.BindEnv("api.baseURL", EnvPrefix+"_API_BASEURL", "API_BASE"); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("api.baseURL", d.API.BaseURL)
	v.SetDefault("api.timeoutMs", d.API.TimeoutMs)
	v.SetDefault("api.userAgent", d.API.UserAgent)
	v.SetDefault("api.headers", d.API.Headers)
	v.SetDefault("api.maxBodyBytes", d.API.MaxBodyBytes)
	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.path", d.Cache.Path)
	v.SetDefault("cache.trendTtlSeconds", d.Cache.TrendTTLSeconds)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("display.assistantName", d.Display.AssistantName)
	v.SetDefault("fixtures.scenarioDir", d.Fixtures.ScenarioDir)
	v.SetDefault("fixtures.addr", d.Fixtures.Addr)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ConfigError{Field: "api.baseURL", Message: fmt.Sprintf("must be an http(s) URL, got %q", c.API.BaseURL)}
	}
	if c.API.TimeoutMs <= 0 {
		return &ConfigError{Field: "api.timeoutMs", Message: "must be positive"}
	}
	if c.API.MaxBodyBytes <= 0 {
		return &ConfigError{Field: "api.maxBodyBytes", Message: "must be positive"}
	}
	if c.Cache.Enabled && c.Cache.Path == "" {
		return &ConfigError{Field: "cache.path", Message: "required when the cache is enabled"}
	}
	if c.Cache.TrendTTLSeconds < 0 {
		return &ConfigError{Field: "cache.trendTtlSeconds", Message: "cannot be negative"}
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: fmt.Sprintf("unknown format %q", c.Logging.Format)}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
