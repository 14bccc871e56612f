// Package config loads server configuration from an optional .env file,
// an optional config.yaml and TRIPGO_* environment variables.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/NERVsystems/tripgomcp/pkg/tripgo"
)

// Transports.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// EnvPrefix prefixes every environment variable, e.g. TRIPGO_API_KEY.
const EnvPrefix = "TRIPGO"

// Config holds all application configuration.
type Config struct {
	APIKey         string        `mapstructure:"api_key"`
	BaseURL        string        `mapstructure:"base_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	RateLimit      float64       `mapstructure:"rate_limit"` // requests per second; 0 disables
	RateBurst      int           `mapstructure:"rate_burst"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RegionCacheTTL time.Duration `mapstructure:"region_cache_ttl"` // 0 disables caching
	Transport      string        `mapstructure:"transport"`
	SSEAddr        string        `mapstructure:"sse_addr"`
	MetricsAddr    string        `mapstructure:"metrics_addr"` // empty disables /metrics
}

// Load reads configuration from .env, config file and environment variables,
// in increasing order of precedence, and validates it.
func Load() (*Config, error) {
	_ = godotenv.Load() // OK if missing

	v := viper.New()

	// Defaults
	v.SetDefault("api_key", "")
	v.SetDefault("base_url", tripgo.DefaultBaseURL)
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("rate_limit", 5.0)
	v.SetDefault("rate_burst", 5)
	v.SetDefault("max_retries", 0)
	v.SetDefault("region_cache_ttl", time.Hour)
	v.SetDefault("transport", TransportStdio)
	v.SetDefault("sse_addr", ":8080")
	v.SetDefault("metrics_addr", "")

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: TRIPGO_API_KEY → api_key
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Transport = strings.ToLower(strings.TrimSpace(cfg.Transport))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.APIKey == "" {
		errs = append(errs, "api_key is required (set TRIPGO_API_KEY)")
	}
	if u, err := url.Parse(c.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Sprintf("base_url must be an http(s) URL, got %q", c.BaseURL))
	}
	if c.Timeout <= 0 {
		errs = append(errs, "timeout must be positive")
	}
	if c.RateLimit < 0 {
		errs = append(errs, "rate_limit must not be negative")
	}
	if c.RateBurst < 1 {
		errs = append(errs, fmt.Sprintf("rate_burst must be at least 1, got %d", c.RateBurst))
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		errs = append(errs, fmt.Sprintf("max_retries must be 0-10, got %d", c.MaxRetries))
	}
	if c.RegionCacheTTL < 0 {
		errs = append(errs, "region_cache_ttl must not be negative")
	}
	switch c.Transport {
	case TransportStdio:
	case TransportSSE:
		if c.SSEAddr == "" {
			errs = append(errs, "sse_addr is required for the sse transport")
		}
	default:
		errs = append(errs, fmt.Sprintf("transport must be %s or %s, got %q", TransportStdio, TransportSSE, c.Transport))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
