package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/GriffinCanCode/webbridge/internal/shared/naming"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Bridge    BridgeConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8000"`
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	// AllowedOrigins may load bridge.js and manifests cross-origin.
	// Entries may use one "*" wildcard, e.g. "http://localhost:*".
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"*"`
}

// BridgeConfig holds dispatch configuration shared by every window.
type BridgeConfig struct {
	Namespace   string        `envconfig:"BRIDGE_NAMESPACE" default:"bridge"`
	Strict      bool          `envconfig:"BRIDGE_STRICT" default:"false"`
	MaxInFlight int           `envconfig:"BRIDGE_MAX_INFLIGHT" default:"64"`
	CallTimeout time.Duration `envconfig:"BRIDGE_CALL_TIMEOUT" default:"0s"`
	Breaker     bool          `envconfig:"BRIDGE_BREAKER" default:"true"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	// MessagesPerSecond paces inbound messages of one page.
	MessagesPerSecond int `envconfig:"RATE_LIMIT_MESSAGES" default:"200"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the host cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if p, err := strconv.Atoi(c.Server.Port); err != nil || p < 0 || p > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %q", c.Server.Port))
	}
	if err := naming.ValidateIdentifier(c.Bridge.Namespace, "bridge namespace"); err != nil {
		errs = append(errs, err)
	}
	if c.Bridge.MaxInFlight < 0 {
		errs = append(errs, fmt.Errorf("max in-flight must not be negative"))
	}
	if c.Bridge.CallTimeout < 0 {
		errs = append(errs, fmt.Errorf("call timeout must not be negative"))
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		errs = append(errs, fmt.Errorf("rate limit needs positive rps and burst"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8000",
			Host:            "0.0.0.0",
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"*"},
		},
		Bridge: BridgeConfig{
			Namespace:   "bridge",
			Strict:      false,
			MaxInFlight: 64,
			Breaker:     true,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
			MessagesPerSecond: 200,
		},
	}
}
