// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package config

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// ErrUnknownConnection is returned when a connection name is not configured.
var ErrUnknownConnection = errors.New("unknown connection")

// Config holds all application configuration.
type Config struct {
	Logging     LoggingConfig      `koanf:"logging"`
	Ticketing   TicketingConfig    `koanf:"ticketing"`
	Fetch       FetchConfig        `koanf:"fetch"`
	Sibil       SibilConfig        `koanf:"sibil"`
	Store       StoreConfig        `koanf:"store"`
	Watch       WatchConfig        `koanf:"watch"`
	Connections []ConnectionConfig `koanf:"connections" validate:"dive"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// TicketingConfig holds the HTTP behavior shared by every vendor connector.
type TicketingConfig struct {
	// Timeout bounds each HTTP call, not a whole fetch.
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`

	// RequestsPerSecond paces calls to a single vendor connection. Zero disables pacing.
	RequestsPerSecond float64 `koanf:"requests_per_second" validate:"gte=0"`
	Burst             int     `koanf:"burst" validate:"gte=1"`

	UserAgent      string               `koanf:"user_agent" validate:"required"`
	Retry          RetryConfig          `koanf:"retry"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker"`
}

// RetryConfig is the backoff policy applied to 429 answers.
type RetryConfig struct {
	MaxRetries        int           `koanf:"max_retries" validate:"gte=0,lte=10"`
	BaseDelay         time.Duration `koanf:"base_delay" validate:"gt=0"`
	MaxDelay          time.Duration `koanf:"max_delay" validate:"gtefield=BaseDelay"`
	RespectRetryAfter bool          `koanf:"respect_retry_after"`
}

// CircuitBreakerConfig configures the per-connection breaker.
type CircuitBreakerConfig struct {
	Enabled      bool          `koanf:"enabled"`
	MaxRequests  uint32        `koanf:"max_requests" validate:"gte=1"`
	Interval     time.Duration `koanf:"interval" validate:"gt=0"`
	Timeout      time.Duration `koanf:"timeout" validate:"gt=0"`
	MinRequests  uint32        `koanf:"min_requests" validate:"gte=1"`
	FailureRatio float64       `koanf:"failure_ratio" validate:"gt=0,lte=1"`
}

// FetchConfig controls multi-connection fetches.
type FetchConfig struct {
	// Concurrency bounds how many connections are fetched at once.
	Concurrency int `koanf:"concurrency" validate:"gte=1,lte=32"`

	// Lookback is the default window start, relative to now, when --from is omitted.
	Lookback time.Duration `koanf:"lookback" validate:"gte=0"`
}

// SibilConfig holds the SIBIL account.
type SibilConfig struct {
	Sandbox     bool          `koanf:"sandbox"`
	BaseURL     string        `koanf:"base_url" validate:"omitempty,url"`
	Username    string        `koanf:"username"`
	Password    string        `koanf:"password"`
	PasswordEnv string        `koanf:"password_env"`
	Timeout     time.Duration `koanf:"timeout" validate:"gt=0"`
}

// StoreConfig locates the snapshot database.
type StoreConfig struct {
	Path string `koanf:"path" validate:"required"`
}

// WatchConfig drives the long-running watch mode.
type WatchConfig struct {
	Interval    time.Duration `koanf:"interval" validate:"gte=1m"`
	MetricsAddr string        `koanf:"metrics_addr" validate:"omitempty,hostname_port"`
}

// ConnectionConfig is one configured ticketing-system account.
type ConnectionConfig struct {
	Name   string `koanf:"name" validate:"required"`
	Vendor string `koanf:"vendor" validate:"required,oneof=billetweb helloasso mapado dice soticket supersoniks weezevent secutix yurplan sirius"`

	AccessKey    string `koanf:"access_key"`
	AccessKeyEnv string `koanf:"access_key_env"`
	SecretKey    string `koanf:"secret_key"`
	SecretKeyEnv string `koanf:"secret_key_env"`
	AccountID    string `koanf:"account_id"`
	Sandbox      bool   `koanf:"sandbox"`

	// BaseURL overrides the vendor's default host (self-hosted Secutix, tests).
	BaseURL string `koanf:"base_url" validate:"omitempty,url"`
}

// ResolvedAccessKey returns AccessKey, or the environment variable named by
// AccessKeyEnv when AccessKey is empty.
func (c *ConnectionConfig) ResolvedAccessKey() string {
	return resolveSecret(c.AccessKey, c.AccessKeyEnv)
}

// ResolvedSecretKey returns SecretKey, or the environment variable named by
// SecretKeyEnv when SecretKey is empty.
func (c *ConnectionConfig) ResolvedSecretKey() string {
	return resolveSecret(c.SecretKey, c.SecretKeyEnv)
}

// ResolvedPassword returns the SIBIL password, from PasswordEnv when Password is empty.
func (c *SibilConfig) ResolvedPassword() string {
	return resolveSecret(c.Password, c.PasswordEnv)
}

func resolveSecret(value, envName string) string {
	if value != "" || envName == "" {
		return value
	}
	return os.Getenv(envName)
}

// Connection returns the connection with the given name.
func (c *Config) Connection(name string) (ConnectionConfig, error) {
	for _, conn := range c.Connections {
		if conn.Name == name {
			return conn, nil
		}
	}
	return ConnectionConfig{}, fmt.Errorf("%w: %q", ErrUnknownConnection, name)
}

// ConnectionNames lists configured connection names in file order.
func (c *Config) ConnectionNames() []string {
	names := make([]string, len(c.Connections))
	for i := range c.Connections {
		names[i] = c.Connections[i].Name
	}
	return names
}
