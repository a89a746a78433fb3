// Package config loads structured configuration for the metrics subsystem.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"newsletter-api/internal/domain/entity"
)

// MetricsConfig represents metrics subsystem configuration. One immutable
// instance is built at startup and injected into the HTTP surface; nothing
// reads ambient configuration state after that.
type MetricsConfig struct {
	Metrics struct {
		// Environment labels every collected metric: local, staging or production.
		Environment string `yaml:"environment"`
		// TokenEnv names the environment variable holding the bearer secret.
		// The secret itself never appears in config files.
		TokenEnv string `yaml:"token_env"`
		// CollectTimeout bounds the subscriber store reads per snapshot.
		CollectTimeout Duration `yaml:"collect_timeout"`
		Query          struct {
			// MaxSamples caps synthesized samples per range query.
			MaxSamples int `yaml:"max_samples"`
			// RateLimit is the per-IP request budget for the query API, in
			// requests per second. Zero disables rate limiting.
			RateLimit float64 `yaml:"rate_limit"`
			// RateBurst is the per-IP burst allowance.
			RateBurst int `yaml:"rate_burst"`
		} `yaml:"query"`
	} `yaml:"metrics"`
}

// DefaultMetricsConfig returns the configuration used when no YAML file is
// provided. The environment falls back to the ENVIRONMENT variable.
func DefaultMetricsConfig() *MetricsConfig {
	var config MetricsConfig
	config.Metrics.Environment = os.Getenv("ENVIRONMENT")
	if config.Metrics.Environment == "" {
		config.Metrics.Environment = string(entity.EnvLocal)
	}
	config.Metrics.TokenEnv = "METRICS_API_TOKEN"
	config.Metrics.CollectTimeout = Duration(5 * time.Second)
	config.Metrics.Query.MaxSamples = 11000
	config.Metrics.Query.RateLimit = 10
	config.Metrics.Query.RateBurst = 20
	return &config
}

// LoadMetricsConfig loads metrics configuration from a YAML file, filling
// unset fields from defaults. The path parameter is expected to come from a
// trusted source (command-line argument or hardcoded default).
func LoadMetricsConfig(path string) (*MetricsConfig, error) {
	// #nosec G304 -- path is provided by trusted source (CLI arg or config), not user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultMetricsConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validateMetricsConfig(config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// validateMetricsConfig validates the loaded configuration.
func validateMetricsConfig(config *MetricsConfig) error {
	if !entity.Environment(config.Metrics.Environment).Valid() {
		return fmt.Errorf("environment must be one of local, staging, production; got %q", config.Metrics.Environment)
	}

	if config.Metrics.TokenEnv == "" {
		return fmt.Errorf("token_env is required")
	}

	if config.Metrics.CollectTimeout <= 0 {
		return fmt.Errorf("collect_timeout must be positive")
	}

	if config.Metrics.Query.MaxSamples <= 0 {
		return fmt.Errorf("query max_samples must be positive")
	}

	if config.Metrics.Query.RateLimit < 0 {
		return fmt.Errorf("query rate_limit must not be negative")
	}

	return nil
}

// GetEnvironment returns the configured deployment environment.
func (c *MetricsConfig) GetEnvironment() string {
	return c.Metrics.Environment
}

// GetTokenEnv returns the environment variable name holding the bearer secret.
func (c *MetricsConfig) GetTokenEnv() string {
	return c.Metrics.TokenEnv
}

// GetCollectTimeout returns the store read deadline per snapshot.
func (c *MetricsConfig) GetCollectTimeout() time.Duration {
	return c.Metrics.CollectTimeout.Std()
}

// GetMaxSamples returns the range query sample ceiling.
func (c *MetricsConfig) GetMaxSamples() int {
	return c.Metrics.Query.MaxSamples
}
