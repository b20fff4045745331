// Package config provides 12-factor configuration management for the bridge
// host.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables for development flexibility.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host, shutdown grace)
//   - Bridge: page namespace, unknown-binding policy, concurrency bounds
//   - Logging: Log level and output format
//   - RateLimit: Per-IP HTTP limits and per-page message pacing
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Server running on %s\n", cfg.Addr())
//
// Environment Variables:
//   - PORT, HOST, SHUTDOWN_TIMEOUT
//   - BRIDGE_NAMESPACE, BRIDGE_STRICT, BRIDGE_MAX_INFLIGHT, BRIDGE_CALL_TIMEOUT, BRIDGE_BREAKER
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED, RATE_LIMIT_MESSAGES
package config
