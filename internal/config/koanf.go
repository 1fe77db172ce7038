// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/declaspectacle/config.yaml",
	"/etc/declaspectacle/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Ticketing: TicketingConfig{
			Timeout:           30 * time.Second,
			RequestsPerSecond: 5,
			Burst:             5,
			UserAgent:         "declaspectacle/1.0",
			Retry: RetryConfig{
				MaxRetries:        3,
				BaseDelay:         time.Second,
				MaxDelay:          30 * time.Second,
				RespectRetryAfter: true,
			},
			CircuitBreaker: CircuitBreakerConfig{
				Enabled:      true,
				MaxRequests:  3,
				Interval:     time.Minute,
				Timeout:      2 * time.Minute,
				MinRequests:  10,
				FailureRatio: 0.6,
			},
		},
		Fetch: FetchConfig{
			Concurrency: 4,
			Lookback:    30 * 24 * time.Hour,
		},
		Sibil: SibilConfig{
			Sandbox: true, // opt in to production explicitly
			Timeout: 30 * time.Second,
		},
		Store: StoreConfig{
			Path: "data/snapshots",
		},
		Watch: WatchConfig{
			Interval:    time.Hour,
			MetricsAddr: "",
		},
	}
}

// Load loads configuration from the default locations.
func Load() (*Config, error) {
	return LoadFrom(findConfigFile())
}

// LoadFrom loads configuration with Koanf v2 layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: configPath, skipped when empty
//  3. Environment Variables: Override any mapped setting
func LoadFrom(configPath string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Ticketing transport
	"ticketing_timeout":             "ticketing.timeout",
	"ticketing_requests_per_second": "ticketing.requests_per_second",
	"ticketing_burst":               "ticketing.burst",
	"ticketing_user_agent":          "ticketing.user_agent",
	"ticketing_max_retries":         "ticketing.retry.max_retries",
	"ticketing_retry_base_delay":    "ticketing.retry.base_delay",
	"ticketing_retry_max_delay":     "ticketing.retry.max_delay",
	"ticketing_respect_retry_after": "ticketing.retry.respect_retry_after",
	"circuit_breaker_enabled":       "ticketing.circuit_breaker.enabled",
	"circuit_breaker_timeout":       "ticketing.circuit_breaker.timeout",
	"circuit_breaker_failure_ratio": "ticketing.circuit_breaker.failure_ratio",

	// Fetch
	"fetch_concurrency": "fetch.concurrency",
	"fetch_lookback":    "fetch.lookback",

	// SIBIL
	"sibil_sandbox":  "sibil.sandbox",
	"sibil_base_url": "sibil.base_url",
	"sibil_username": "sibil.username",
	"sibil_password": "sibil.password",
	"sibil_timeout":  "sibil.timeout",

	// Snapshot store
	"store_path": "store.path",

	// Watch mode
	"watch_interval":     "watch.interval",
	"watch_metrics_addr": "watch.metrics_addr",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - LOG_LEVEL -> logging.level
//   - TICKETING_MAX_RETRIES -> ticketing.retry.max_retries
//   - SIBIL_PASSWORD -> sibil.password
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	// This prevents random environment variables from polluting config
	return ""
}
